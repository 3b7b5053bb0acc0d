package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	appauth "github.com/atomclub/attendance/internal/app/auth"
	"github.com/atomclub/attendance/internal/app/models/dto"
	"github.com/atomclub/attendance/internal/app/services"
	"github.com/atomclub/attendance/internal/pkg/apperrors"
	"github.com/atomclub/attendance/internal/pkg/auth"
)

// ViewerContextKey holds the resolved viewer in the gin context
const ViewerContextKey = "viewer"

// AuthMiddleware validates bearer tokens and resolves the acting identity
type AuthMiddleware struct {
	jwtService  *auth.JWTService
	authService *services.AuthService
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(jwtService *auth.JWTService, authService *services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService:  jwtService,
		authService: authService,
	}
}

// JWTAuth validates the Authorization header and stores the resolved viewer
// in the request context
func (m *AuthMiddleware) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := auth.ExtractBearerToken(c.GetHeader("Authorization"))
		if err != nil {
			detail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication required").
				WithDetails("Authorization header missing or malformed")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(detail))
			return
		}

		claims, err := m.jwtService.ValidateToken(tokenString)
		if err != nil {
			code := dto.ErrorCodeInvalidToken
			details := "Invalid token"
			if errors.Is(err, apperrors.ErrTokenExpired) {
				code = dto.ErrorCodeExpiredToken
				details = "Token has expired"
			}
			detail := dto.NewErrorDetail(code, "Authentication failed").WithDetails(details)
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(detail))
			return
		}

		viewer, err := m.authService.ResolveViewer(c.Request.Context(), claims)
		if err != nil {
			// The token is valid but its subject is gone.
			detail := dto.NewErrorDetail(dto.ErrorCodeUnauthorized, "Authentication failed").
				WithDetails("Account no longer exists")
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(detail))
			return
		}

		c.Set(ViewerContextKey, viewer)
		c.Set("userID", viewer.UserID)
		c.Next()
	}
}

// CurrentViewer pulls the resolved viewer out of the gin context
func CurrentViewer(c *gin.Context) (appauth.Viewer, bool) {
	value, exists := c.Get(ViewerContextKey)
	if !exists {
		return appauth.Viewer{}, false
	}
	viewer, ok := value.(appauth.Viewer)
	return viewer, ok
}
