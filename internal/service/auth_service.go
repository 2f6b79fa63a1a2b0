package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/hivemind/support-engine/internal/auth"
	"github.com/hivemind/support-engine/internal/config"
	"github.com/hivemind/support-engine/internal/domain"
	"github.com/hivemind/support-engine/internal/repository"
	apperrors "github.com/hivemind/support-engine/pkg/util/errorutil"
)

// AuthService registers profiles and issues tokens.
type AuthService struct {
	profiles repository.ProfileRepository
	tokens   *auth.TokenManager
	cfg      config.AuthConfig
}

// NewAuthService constructs the service.
func NewAuthService(cfg config.AuthConfig, profiles repository.ProfileRepository) *AuthService {
	return &AuthService{
		profiles: profiles,
		tokens:   auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		cfg:      cfg,
	}
}

// TokenManager exposes the manager for middleware wiring.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}

// Session is an issued access token and its profile.
type Session struct {
	Token     string
	ExpiresAt time.Time
	Profile   *domain.Profile
}

// Register creates a customer profile and issues a session.
func (s *AuthService) Register(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperrors.NewValidationError("valid email required", nil)
	}
	if len(password) < 8 {
		return nil, apperrors.NewValidationError("password must be at least 8 characters", nil)
	}

	hash, err := auth.HashPassword(password, s.cfg.BcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	profile := &domain.Profile{
		Email:        email,
		Role:         domain.RoleCustomer,
		PasswordHash: hash,
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, apperrors.MapError(err)
	}
	return s.issue(profile)
}

// Login verifies credentials and issues a session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	profile, err := s.profiles.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.MapError(err)
	}
	if err := auth.ComparePassword(profile.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}
	return s.issue(profile)
}

func (s *AuthService) issue(profile *domain.Profile) (*Session, error) {
	token, expiresAt, err := s.tokens.GenerateToken(profile.ID, profile.Role)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return &Session{Token: token, ExpiresAt: expiresAt, Profile: profile}, nil
}
