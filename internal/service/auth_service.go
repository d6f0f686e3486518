package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/ticketflow/ticketflow/internal/auth"
	"github.com/ticketflow/ticketflow/internal/config"
	"github.com/ticketflow/ticketflow/internal/domain"
	"github.com/ticketflow/ticketflow/internal/events"
	"github.com/ticketflow/ticketflow/internal/repository"
	apperrors "github.com/ticketflow/ticketflow/pkg/util"
)

// AuthService coordinates signup, login and admin user management.
type AuthService struct {
	users      repository.UserRepository
	publisher  events.Publisher
	tokenMgr   *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, users repository.UserRepository, publisher events.Publisher, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:      users,
		publisher:  publisher,
		tokenMgr:   auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		bcryptCost: cfg.BcryptCost,
		logger:     logger,
	}
}

// Signup creates a new account and enqueues the signup event. A duplicate
// email is rejected before anything is created or emitted.
func (s *AuthService) Signup(ctx context.Context, email, password string, skills []string) (*domain.User, string, time.Time, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", time.Time{}, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	user := &domain.User{
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		Skills:       skills,
	}
	if user.Skills == nil {
		user.Skills = []string{}
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}

	if err := s.publisher.Publish(ctx, events.EventUserSignup, events.UserSignupPayload{Email: user.Email}); err != nil {
		s.logger.Error("failed to enqueue signup event", zap.String("email", user.Email), zap.Error(err))
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	return user, token, exp, nil
}

// Login authenticates by email and password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, string, time.Time, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, "", time.Time{}, apperrors.NewUnauthorized("invalid credentials")
	}

	token, exp, err := s.tokenMgr.GenerateToken(user.ID, user.Role)
	if err != nil {
		return nil, "", time.Time{}, apperrors.MapError(err)
	}
	return user, token, exp, nil
}

// Logout is a no-op for stateless JWTs; the client discards the token.
func (s *AuthService) Logout(_ context.Context, _ string) error {
	return nil
}

// UpdateUser lets an admin change another user's role and skills.
func (s *AuthService) UpdateUser(ctx context.Context, actor *domain.User, email string, skills []string, role domain.UserRole) error {
	if actor.Role != domain.RoleAdmin {
		return apperrors.NewForbidden("admin required")
	}

	user, err := s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"email": email})
		}
		return apperrors.MapError(err)
	}

	if len(skills) > 0 {
		user.Skills = skills
	}
	if role != "" {
		if !domain.ValidRole(role) {
			return apperrors.NewValidationError("invalid role", map[string]any{"role": role})
		}
		user.Role = role
	}
	return apperrors.MapError(s.users.Update(ctx, user))
}

// ListUsers returns all accounts, admin only.
func (s *AuthService) ListUsers(ctx context.Context, actor *domain.User) ([]domain.User, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, apperrors.NewForbidden("admin required")
	}
	users, err := s.users.ListAll(ctx)
	return users, apperrors.MapError(err)
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}
