package user

import (
	"context"

	"tajriba/models"
)

// RegisterRequest creates a new tourist or host account.
type RegisterRequest struct {
	Name     string      `json:"name" binding:"required"`
	Email    string      `json:"email" binding:"required,email"`
	Password string      `json:"password" binding:"required,min=8"`
	Role     models.Role `json:"role" binding:"required"`
}

// AuthResponse is returned on successful registration or sign-in.
type AuthResponse struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// UserService provides just enough identity for the booking core: an
// authenticated principal with a canonical role. Everything else (OTP,
// devices, social sign-in) belongs to the external identity layer.
type UserService interface {
	Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error)
	Authenticate(ctx context.Context, email, password string) (*AuthResponse, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	RevokeToken(ctx context.Context, token string) error
	UpdateFCMToken(ctx context.Context, userID, token string) error
	UpdateGatewayIDs(ctx context.Context, userID, customerID, accountID string) error
}
