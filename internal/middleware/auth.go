package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/hospitalms/hospital-api/internal/authz"
	"github.com/hospitalms/hospital-api/internal/handler"
	"github.com/hospitalms/hospital-api/internal/model"
)

const ContextActor = "actor"

// TokenVerifier validates an access token and returns its claims.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*model.TokenClaims, error)
}

// DoctorResolver resolves the doctor profile for a doctor-role user.
type DoctorResolver interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*model.Doctor, error)
}

type AuthMiddleware struct {
	verifier TokenVerifier
	doctors  DoctorResolver
	policy   *authz.Policy
}

func NewAuthMiddleware(verifier TokenVerifier, doctors DoctorResolver, policy *authz.Policy) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		doctors:  doctors,
		policy:   policy,
	}
}

// Authenticate verifies the bearer token and stores the resolved actor
// in the request context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("missing authorization header"))
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid authorization format"))
			c.Abort()
			return
		}

		claims, err := m.verifier.Verify(c.Request.Context(), parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid token"))
			c.Abort()
			return
		}

		actor := &authz.Actor{
			UserID:      claims.UserID,
			Role:        claims.Role,
			Active:      claims.IsActive,
			IsSuperuser: claims.IsSuperuser,
		}
		if claims.Role == model.RoleDoctor {
			if doctor, err := m.doctors.GetByUserID(c.Request.Context(), claims.UserID); err == nil {
				actor.DoctorID = doctor.ID
			}
		}

		if !actor.Active && !actor.IsSuperuser {
			c.JSON(http.StatusForbidden, handler.NewErrorResponse("account is deactivated"))
			c.Abort()
			return
		}

		c.Set(ContextActor, actor)
		c.Next()
	}
}

// RequireAdmin allows only admin (or superuser) actors through.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := ActorFrom(c)
		if actor == nil || (actor.Role != model.RoleAdmin && !actor.IsSuperuser) {
			c.JSON(http.StatusForbidden, handler.NewErrorResponse("admin access required"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireDoctor allows only actors with a resolved doctor profile.
func (m *AuthMiddleware) RequireDoctor() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := ActorFrom(c)
		if actor == nil || actor.Role != model.RoleDoctor {
			c.JSON(http.StatusForbidden, handler.NewErrorResponse("doctor access required"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// Authorize enforces the access policy for resources without an
// object-level owner. Ownership checks happen in the handlers, where
// the object has been loaded.
func (m *AuthMiddleware) Authorize(action authz.Action, kind string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !m.policy.CanAccess(ActorFrom(c), action, authz.Shared{ResourceKind: kind}) {
			c.JSON(http.StatusForbidden, handler.NewErrorResponse("permission denied"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// ActorFrom returns the authenticated actor stored by Authenticate,
// or nil when the request is unauthenticated.
func ActorFrom(c *gin.Context) *authz.Actor {
	if v, ok := c.Get(ContextActor); ok {
		if actor, ok := v.(*authz.Actor); ok {
			return actor
		}
	}
	return nil
}
