package middleware

import (
	"context"
	"net/http"

	"cafebook/internal/apierror"
	"cafebook/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const ClaimsKey = "claims"

// RequestAuthenticator is satisfied by *auth.Authenticator.
type RequestAuthenticator interface {
	Authenticate(r *http.Request) (*auth.Claims, error)
}

// PermissionChecker is satisfied by service.PermissionService.
type PermissionChecker interface {
	Check(ctx context.Context, roleID uint, code string) (bool, error)
}

// JWTAuth validates the Bearer access token on every protected route and
// stores the claims on both the gin context and the request context.
func JWTAuth(authn RequestAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := authn.Authenticate(c.Request)
		if err != nil {
			status, body := apierror.Status(err)
			c.AbortWithStatusJSON(status, body)
			return
		}
		c.Set(ClaimsKey, claims)
		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), claims))
		c.Next()
	}
}

// RequirePermission asks the permission resolver whether the caller's role
// holds code. It must run after JWTAuth.
func RequirePermission(checker PermissionChecker, code string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apierror.New((&apierror.AuthError{Reason: apierror.AuthMissing}).Error()))
			return
		}
		ok, err := checker.Check(c.Request.Context(), claims.RoleID, code)
		if err != nil {
			log.Error().Err(err).
				Str("request_id", c.GetString(RequestIDKey)).
				Str("permission", code).
				Msg("permission check failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.New("Lỗi hệ thống"))
			return
		}
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, apierror.New("Bạn không có quyền thực hiện thao tác này"))
			return
		}
		c.Next()
	}
}

// GetClaims is a helper to retrieve typed claims from the Gin context.
func GetClaims(c *gin.Context) *auth.Claims {
	v, ok := c.Get(ClaimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}
