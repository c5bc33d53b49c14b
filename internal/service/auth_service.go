package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/seva-foundation/darshan-service/internal/auth"
	"github.com/seva-foundation/darshan-service/internal/config"
	"github.com/seva-foundation/darshan-service/internal/domain"
	"github.com/seva-foundation/darshan-service/internal/repository"
	apperrors "github.com/seva-foundation/darshan-service/pkg/util/errorutil"
)

// AuthService coordinates registration and login for the identity directory.
type AuthService struct {
	users      repository.UserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, users repository.UserRepository) *AuthService {
	return &AuthService{
		users:      users,
		tokenMgr:   auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// RegisterInput describes a new account.
type RegisterInput struct {
	Name        string
	UserName    string
	PhoneNumber string
	Role        domain.Role
	Password    string
}

// Register creates a new account. UserName is immutable and globally unique;
// the password is stored only as a bcrypt hash.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	userName := strings.TrimSpace(input.UserName)
	if userName == "" {
		return nil, apperrors.NewValidationError("userName required", nil)
	}
	if !input.Role.IsValid() {
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": input.Role})
	}
	if len(input.Password) < 8 {
		return nil, apperrors.NewValidationError("password must be at least 8 characters", nil)
	}

	if _, err := s.users.GetByUserName(ctx, userName); err == nil {
		return nil, apperrors.NewConflict("username already registered", map[string]any{"userName": userName})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	user := &domain.User{
		Name:         strings.TrimSpace(input.Name),
		UserName:     userName,
		PhoneNumber:  strings.TrimSpace(input.PhoneNumber),
		Role:         input.Role,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// Login authenticates by username and password and issues a credential.
func (s *AuthService) Login(ctx context.Context, userName, password string) (*domain.User, string, time.Time, error) {
	user, err := s.users.GetByUserName(ctx, userName)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("incorrect username or password")
		}
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("incorrect username or password")
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	return user, token, exp, nil
}

// ListUsers returns every account. Admin only at the route level.
func (s *AuthService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// ListLeads returns id/name pairs for the public request form.
func (s *AuthService) ListLeads(ctx context.Context) ([]domain.User, error) {
	leads, err := s.users.ListByRole(ctx, domain.RoleLead)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return leads, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
