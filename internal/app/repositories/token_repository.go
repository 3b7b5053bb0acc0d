package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/atomclub/attendance/internal/pkg/apperrors"
)

// TokenRepository stores refresh tokens
type TokenRepository struct {
	db *pgxpool.Pool
	sb squirrel.StatementBuilderType
}

// NewTokenRepository creates a new refresh token repository
func NewTokenRepository(db *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// Create stores a refresh token for a user
func (r *TokenRepository) Create(ctx context.Context, token, userID string, expiry time.Time) error {
	sql, args, err := r.sb.Insert("refresh_tokens").
		Columns("token", "user_id", "expires_at", "revoked", "created_at").
		Values(token, userID, expiry, false, time.Now()).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("error storing refresh token: %w", err)
	}
	return nil
}

// Get looks up a refresh token
func (r *TokenRepository) Get(ctx context.Context, token string) (string, time.Time, bool, error) {
	sql, args, err := r.sb.Select("user_id", "expires_at", "revoked").
		From("refresh_tokens").
		Where(squirrel.Eq{"token": token}).
		ToSql()
	if err != nil {
		return "", time.Time{}, false, fmt.Errorf("failed to build select query: %w", err)
	}

	var userID string
	var expiry time.Time
	var revoked bool
	err = r.db.QueryRow(ctx, sql, args...).Scan(&userID, &expiry, &revoked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", time.Time{}, false, apperrors.ErrTokenNotFound
		}
		return "", time.Time{}, false, fmt.Errorf("error retrieving refresh token: %w", err)
	}
	return userID, expiry, revoked, nil
}

// Revoke marks a refresh token as revoked
func (r *TokenRepository) Revoke(ctx context.Context, token string) error {
	sql, args, err := r.sb.Update("refresh_tokens").
		Set("revoked", true).
		Where(squirrel.Eq{"token": token}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update query: %w", err)
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("error revoking refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrTokenNotFound
	}
	return nil
}
