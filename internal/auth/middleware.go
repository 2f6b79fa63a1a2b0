package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/hivemind/support-engine/internal/domain"
	"github.com/hivemind/support-engine/internal/repository"
	apperrors "github.com/hivemind/support-engine/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Principal is the authenticated caller's resolved profile.
type Principal struct {
	Profile *domain.Profile
}

// IsAdmin reports whether the principal holds the admin role.
func (p *Principal) IsAdmin() bool {
	return p != nil && p.Profile != nil && p.Profile.Role == domain.RoleAdmin
}

// Middleware validates bearer tokens and loads the caller's profile.
type Middleware struct {
	tokens   *TokenManager
	profiles repository.ProfileRepository
}

// NewMiddleware constructs middleware.
func NewMiddleware(tokens *TokenManager, profiles repository.ProfileRepository) *Middleware {
	return &Middleware{tokens: tokens, profiles: profiles}
}

// Handle enforces authentication for protected routes.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	profile, err := m.profiles.GetByID(c.Context(), claims.ProfileID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return apperrors.NewUnauthorized("profile not found")
		}
		return apperrors.MapError(err)
	}

	c.Locals(principalKey, &Principal{Profile: profile})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
