package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/avelar/clinic-api/internal/model"
	"github.com/avelar/clinic-api/internal/tenantctx"
	"github.com/avelar/clinic-api/pkg/auth"
	apperrors "github.com/avelar/clinic-api/pkg/errors"
	"github.com/avelar/clinic-api/pkg/httputil"
)

type AuthMiddleware struct {
	jwtSvc auth.JWTService
}

func NewAuthMiddleware(jwtSvc auth.JWTService) *AuthMiddleware {
	return &AuthMiddleware{jwtSvc: jwtSvc}
}

// Authenticate validates the bearer token and installs the tenant identity
// into the request context. Everything downstream reads the tenant id from
// there, never from the payload.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			httputil.RespondWithError(c, apperrors.Unauthorized(fmt.Errorf("missing authorization header")))
			c.Abort()
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			httputil.RespondWithError(c, apperrors.Unauthorized(fmt.Errorf("invalid authorization format")))
			c.Abort()
			return
		}

		claims, err := m.jwtSvc.ValidateAccessToken(parts[1])
		if err != nil {
			httputil.RespondWithError(c, apperrors.Unauthorized(err))
			c.Abort()
			return
		}

		ctx := tenantctx.With(c.Request.Context(), tenantctx.TenantContext{
			TenantID: claims.TenantID,
			Email:    claims.Email,
			Role:     model.TenantRole(claims.Role),
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireAdmin gates admin-only routes. Non-admins get a 404, not a 403, so
// the routes do not advertise their existence.
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !tenantctx.IsAdmin(c.Request.Context()) {
			httputil.RespondWithError(c, apperrors.NotFound("resource", nil))
			c.Abort()
			return
		}
		c.Next()
	}
}
