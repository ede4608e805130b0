package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/hr-console/internal/auth"
	"github.com/spec-kit/hr-console/internal/config"
	"github.com/spec-kit/hr-console/internal/domain"
	"github.com/spec-kit/hr-console/internal/repository"
	"github.com/spec-kit/hr-console/internal/validation"
	apperrors "github.com/spec-kit/hr-console/pkg/util/errorutil"
)

// AuthService coordinates console sign-in and operator bootstrap.
type AuthService struct {
	users      repository.ConsoleUserRepository
	tokenMgr   *auth.TokenManager
	bcryptCost int
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, users repository.ConsoleUserRepository, tokens *auth.TokenManager) *AuthService {
	if tokens == nil {
		tokens = auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)
	}
	return &AuthService{
		users:      users,
		tokenMgr:   tokens,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// LoginResult is returned on successful sign-in.
type LoginResult struct {
	User      *domain.ConsoleUser
	Token     string
	ExpiresAt time.Time
}

var errInvalidCredentials = apperrors.NewUnauthorized("invalid credentials")

// Login authenticates an operator and issues an access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errInvalidCredentials
		}
		return nil, apperrors.MapError(err)
	}
	if !user.Active {
		return nil, apperrors.NewUnauthorized("user inactive")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, errInvalidCredentials
	}
	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &LoginResult{User: user, Token: token, ExpiresAt: exp}, nil
}

// CreateUserInput describes a new console operator.
type CreateUserInput struct {
	Name     string      `json:"name" validate:"required,max=120" label:"Name"`
	Email    string      `json:"email" validate:"required,email" label:"Email"`
	Role     domain.Role `json:"role" validate:"required,oneof=ADMIN HR VIEWER" label:"Role"`
	Password string      `json:"password" validate:"required,min=8" label:"Password"`
}

// CreateUser registers an operator with a bcrypt password hash.
func (s *AuthService) CreateUser(ctx context.Context, in CreateUserInput) (*domain.ConsoleUser, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Role = domain.Role(strings.ToUpper(string(in.Role)))
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	user := &domain.ConsoleUser{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Role:         in.Role,
		Active:       true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.NewConflict("email already registered", map[string]any{"email": "email already registered"})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}
