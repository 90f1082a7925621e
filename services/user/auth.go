package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	userRepo "tajriba/database/repository/user"
	"tajriba/models"
	"tajriba/utils"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 72 * time.Hour

// Service-level errors surfaced to handlers.
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidRole        = errors.New("role must be tourist or host")
)

// DefaultUserService is the production implementation backed by Mongo and
// the auth Redis DB (active token hashes, enabling revocation).
type DefaultUserService struct {
	Repo      userRepo.UserRepository
	AuthCache *redis.Client
	Logger    *zap.Logger
}

func (s *DefaultUserService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	// Admin accounts are provisioned out of band, never via the public API.
	if req.Role != models.RoleTourist && req.Role != models.RoleHost {
		return nil, ErrInvalidRole
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	u := &models.User{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: string(hash),
		Role:         req.Role,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Repo.Create(ctx, u); err != nil {
		if err == userRepo.ErrDuplicateEmail {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	return s.issueToken(ctx, u)
}

func (s *DefaultUserService) Authenticate(ctx context.Context, email, password string) (*AuthResponse, error) {
	u, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if err == userRepo.ErrNotFound {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issueToken(ctx, u)
}

func (s *DefaultUserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.Repo.GetByID(ctx, id)
}

// RevokeToken drops the token hash from the auth cache; the middleware then
// rejects the token even though its signature is still valid.
func (s *DefaultUserService) RevokeToken(ctx context.Context, token string) error {
	return s.AuthCache.Del(ctx, utils.HashToken(token)).Err()
}

func (s *DefaultUserService) UpdateFCMToken(ctx context.Context, userID, token string) error {
	return s.Repo.UpdateFCMToken(ctx, userID, token)
}

// UpdateGatewayIDs stores the Stripe ids a booking runs against: the
// tourist's customer id for charges, the host's connected-account id for
// payouts. Empty values leave the stored ids untouched.
func (s *DefaultUserService) UpdateGatewayIDs(ctx context.Context, userID, customerID, accountID string) error {
	return s.Repo.UpdateGatewayIDs(ctx, userID, customerID, accountID)
}

func (s *DefaultUserService) issueToken(ctx context.Context, u *models.User) (*AuthResponse, error) {
	token, err := utils.GenerateToken(u.ID, string(u.Role), tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	if err := s.AuthCache.Set(ctx, utils.HashToken(token), u.ID, tokenTTL).Err(); err != nil {
		return nil, fmt.Errorf("failed to cache token: %w", err)
	}
	s.Logger.Debug("token issued", zap.String("user", u.ID), zap.String("role", string(u.Role)))
	return &AuthResponse{User: u, Token: token}, nil
}
