package application

import (
	"time"

	"github.com/oksasatya/user-account-service/internal/domain/entity"
)

// UserResponse is the projection of a user returned by every use case.
// Password material never appears here.
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Age       *int      `json:"age,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toUserResponse(u *entity.User) *UserResponse {
	return &UserResponse{
		ID:        u.ID().String(),
		Name:      u.Name(),
		Email:     u.Email().String(),
		Role:      u.Role().String(),
		Age:       u.Age(),
		CreatedAt: u.CreatedAt(),
		UpdatedAt: u.UpdatedAt(),
	}
}

// TokenPair carries a freshly issued access/refresh token pair.
type TokenPair struct {
	AccessToken        string    `json:"access_token"`
	AccessTokenExpiry  time.Time `json:"access_token_expiry"`
	RefreshToken       string    `json:"refresh_token"`
	RefreshTokenExpiry time.Time `json:"refresh_token_expiry"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	User   *UserResponse `json:"user"`
	Tokens TokenPair     `json:"tokens"`
}

// ResetRequestResult carries the raw reset token back to the caller exactly
// once. Both fields are nil when the email is unknown, so the response shape
// never reveals whether an account exists.
type ResetRequestResult struct {
	Token     *string    `json:"token"`
	ExpiresAt *time.Time `json:"expires_at"`
}
