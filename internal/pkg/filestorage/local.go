package filestorage

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/atomclub/attendance/internal/pkg/logger"
)

// LocalStorage stores files on the local filesystem under a base directory
type LocalStorage struct {
	basePath string
	baseURL  string // prepended to returned paths when set
}

// NewLocalStorage creates a LocalStorage rooted at basePath, creating the
// directory when missing
func NewLocalStorage(basePath, baseURL string) (*LocalStorage, error) {
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", basePath, err)
	}
	logger.Info().Str("path", basePath).Msg("Local storage directory ensured")

	return &LocalStorage{
		basePath: basePath,
		baseURL:  baseURL,
	}, nil
}

// SaveFile saves an uploaded file into the root directory
func (ls *LocalStorage) SaveFile(fileHeader *multipart.FileHeader) (string, error) {
	return ls.SaveFileWithPath(fileHeader, "")
}

// SaveFileWithPath saves an uploaded file into a subdirectory, assigning a
// random filename so uploads never collide
func (ls *LocalStorage) SaveFileWithPath(fileHeader *multipart.FileHeader, subPath string) (string, error) {
	if fileHeader == nil {
		return "", nil
	}

	file, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	fullDirPath := ls.basePath
	if subPath != "" {
		fullDirPath = filepath.Join(ls.basePath, subPath)
		if err := os.MkdirAll(fullDirPath, 0o755); err != nil {
			return "", fmt.Errorf("failed to create subdirectory: %w", err)
		}
	}

	uniqueFilename := uuid.New().String() + filepath.Ext(fileHeader.Filename)
	dstPath := filepath.Join(fullDirPath, uniqueFilename)

	dst, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, file); err != nil {
		_ = os.Remove(dstPath)
		return "", fmt.Errorf("failed to save file content: %w", err)
	}

	accessiblePath := filepath.ToSlash(filepath.Join("uploads", subPath, uniqueFilename))
	if ls.baseURL != "" {
		accessiblePath = strings.TrimRight(ls.baseURL, "/") + "/" + filepath.ToSlash(filepath.Join(subPath, uniqueFilename))
	}

	logger.Info().
		Str("filename", fileHeader.Filename).
		Str("saved_as", uniqueFilename).
		Msg("File saved")
	return accessiblePath, nil
}

// DeleteFile removes a stored file, tolerating already-missing files
func (ls *LocalStorage) DeleteFile(filePath string) error {
	if filePath == "" {
		return nil
	}

	fullPath := ls.GetFullPath(filePath)
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file %s: %w", fullPath, err)
	}
	return nil
}

// GetFullPath resolves a stored path back to its filesystem location
func (ls *LocalStorage) GetFullPath(filePath string) string {
	trimmed := strings.TrimPrefix(filePath, "uploads/")
	if ls.baseURL != "" {
		trimmed = strings.TrimPrefix(filePath, strings.TrimRight(ls.baseURL, "/")+"/")
	}
	return filepath.Join(ls.basePath, filepath.FromSlash(trimmed))
}
