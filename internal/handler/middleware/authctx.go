package middleware

import (
	"net/http"
	"strings"

	"booking-hold-service/internal/engine"
	"booking-hold-service/internal/handler/httperr"
	"booking-hold-service/internal/pkg/authtoken"

	"github.com/gin-gonic/gin"
)

type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
	RoleViewer Role = "VIEWER"
)

const (
	headerTenantID  = "X-Tenant-ID"
	headerUserID    = "X-User-ID"
	headerUserRole  = "X-User-Role"
	headerRequestID = "X-Request-ID"

	ctxActorKey = "actor"
	ctxRoleKey  = "actor_role"
)

// ActorContext is the resolved caller identity for one request. Role is empty
// when the caller presented no role at all; guards treat that as anonymous.
type ActorContext struct {
	TenantID  string
	UserID    string
	Role      Role
	RequestID string
}

func (a ActorContext) Engine() engine.Actor {
	return engine.Actor{
		UserID:    a.UserID,
		TenantID:  a.TenantID,
		IsAdmin:   a.Role == RoleAdmin,
		RequestID: a.RequestID,
	}
}

type AuthMiddleware struct {
	tokens *authtoken.Service
}

// NewAuthMiddleware builds the context resolver. tokens may be nil, in which
// case only the X-* headers are honored (deployment behind a trusted gateway).
func NewAuthMiddleware(tokens *authtoken.Service) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// ResolveActor reads caller identity from a bearer token when present,
// falling back to the X-* headers. It validates the role value but does not
// require identity; per-route guards decide what is mandatory.
func (m *AuthMiddleware) ResolveActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := ActorContext{
			TenantID:  strings.TrimSpace(c.GetHeader(headerTenantID)),
			UserID:    strings.TrimSpace(c.GetHeader(headerUserID)),
			RequestID: strings.TrimSpace(c.GetHeader(headerRequestID)),
		}
		rawRole := strings.TrimSpace(c.GetHeader(headerUserRole))

		if m.tokens != nil {
			if authHeader := c.GetHeader("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
				token := strings.TrimSpace(authHeader[len("Bearer "):])
				claims, err := m.tokens.ValidateToken(token)
				if err != nil {
					httperr.Abort(c, http.StatusUnauthorized, "INVALID_TOKEN", "invalid or expired token", nil)
					return
				}
				// token claims win over headers
				actor.TenantID = claims.TenantID
				actor.UserID = claims.UserID
				rawRole = claims.Role
			}
		}

		if rawRole != "" {
			role := Role(strings.ToUpper(rawRole))
			switch role {
			case RoleAdmin, RoleMember, RoleViewer:
				actor.Role = role
			default:
				httperr.Abort(c, http.StatusBadRequest, "INVALID_ROLE",
					"role must be ADMIN, MEMBER or VIEWER", map[string]any{"role": rawRole})
				return
			}
		}

		c.Set(ctxActorKey, actor)
		c.Next()
	}
}

// RequireTenant gates every /api route: all data is tenant-scoped, so a
// caller with no tenant cannot address anything.
func RequireTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := GetActor(c)
		if actor.TenantID == "" {
			httperr.Abort(c, http.StatusUnauthorized, "MISSING_TENANT", "X-Tenant-ID header is required", nil)
			return
		}
		c.Next()
	}
}

// RequireRole admits only the listed roles. A caller with no role is refused
// outright.
func RequireRole(allowed ...Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := GetActor(c)
		if actor.Role == "" {
			httperr.Abort(c, http.StatusUnauthorized, "MISSING_ROLE", "X-User-Role header is required", nil)
			return
		}
		for _, role := range allowed {
			if actor.Role == role {
				c.Next()
				return
			}
		}
		httperr.Abort(c, http.StatusForbidden, engine.CodeForbidden,
			"insufficient role", map[string]any{"role": actor.Role})
	}
}

// RequireUser refuses callers without a user identity. Mutations need an
// actor to audit.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := GetActor(c)
		if actor.UserID == "" {
			httperr.Abort(c, http.StatusUnauthorized, "MISSING_USER", "X-User-ID header is required", nil)
			return
		}
		c.Next()
	}
}

func GetActor(c *gin.Context) ActorContext {
	if v, exists := c.Get(ctxActorKey); exists {
		if actor, ok := v.(ActorContext); ok {
			return actor
		}
	}
	return ActorContext{}
}
