package dto

// LoginRequest carries login credentials. Role is part of the credential:
// logging into the wrong portal fails like a bad password.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"student@karunya.edu"`
	Password string `json:"password" binding:"required" example:"secret123"`
	Role     string `json:"role" binding:"required,oneof=Student Faculty" example:"Student"`
}

// UserInfo is the resolved identity returned to clients
type UserInfo struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role" example:"Faculty"`
	IsHOD *bool  `json:"isHOD,omitempty"` // faculty only
}

// LoginResponse is returned on successful login
type LoginResponse struct {
	User         UserInfo `json:"user"`
	Token        string   `json:"token"`
	RefreshToken string   `json:"refreshToken"`
	ExpiresIn    int      `json:"expiresIn"` // seconds
}

// RefreshTokenRequest asks for a new access token
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// RefreshTokenResponse carries the renewed access token
type RefreshTokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expiresIn"`
}

// LogoutRequest revokes the supplied refresh token
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}
