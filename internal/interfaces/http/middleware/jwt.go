package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/handwerk/backoffice/internal/domain/identity"
	"github.com/handwerk/backoffice/internal/infrastructure/auth"
	"github.com/handwerk/backoffice/internal/infrastructure/logger"
	"github.com/handwerk/backoffice/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// Context keys and header names used by authentication
const (
	CallerKey     = "caller"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// TokenVerifier validates an access token and returns its claims
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*auth.Claims, error)
}

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	Verifier TokenVerifier
	// SkipPaths are paths that don't require authentication
	SkipPaths []string
	Logger    *zap.Logger
}

// JWTAuthMiddleware authenticates the bearer token and resolves it into an identity.Caller
func JWTAuthMiddleware(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	skip := make(map[string]struct{}, len(cfg.SkipPaths))
	for _, p := range cfg.SkipPaths {
		skip[p] = struct{}{}
	}

	return func(c *gin.Context) {
		if _, ok := skip[c.Request.URL.Path]; ok {
			c.Next()
			return
		}

		header := c.GetHeader(AuthHeaderKey)
		if header == "" {
			abortWithError(c, dto.ErrCodeUnauthorized, "Missing authorization header")
			return
		}
		if !strings.HasPrefix(header, BearerPrefix) {
			abortWithError(c, dto.ErrCodeUnauthorized, "Invalid authorization header format")
			return
		}
		token := strings.TrimSpace(strings.TrimPrefix(header, BearerPrefix))
		if token == "" {
			abortWithError(c, dto.ErrCodeUnauthorized, "Missing token")
			return
		}

		ctx := c.Request.Context()
		claims, err := cfg.Verifier.Verify(ctx, token)
		if err != nil {
			log.Warn("JWT authentication failed", zap.Error(err), zap.String("path", c.Request.URL.Path))
			code, message := authFailure(err)
			abortWithError(c, code, message)
			return
		}
		caller, err := claims.Caller()
		if err != nil {
			log.Warn("JWT claims rejected", zap.Error(err))
			abortWithError(c, dto.ErrCodeUnauthorized, "Invalid token claims")
			return
		}

		c.Set(CallerKey, caller)
		ctx = logger.WithTenantID(ctx, caller.TenantID)
		ctx = logger.WithUserID(ctx, caller.UserID)
		ctx = logger.WithRole(ctx, string(caller.Role))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func authFailure(err error) (code, message string) {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return dto.ErrCodeTokenExpired, "Token has expired"
	case errors.Is(err, auth.ErrTokenRevoked):
		return dto.ErrCodeTokenRevoked, "Token has been revoked"
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrTokenNotYetValid),
		errors.Is(err, auth.ErrInvalidClaims), errors.Is(err, auth.ErrMissingTenantID),
		errors.Is(err, auth.ErrMissingUserID):
		return dto.ErrCodeUnauthorized, "Invalid token"
	default:
		// revocation store unreachable
		return dto.ErrCodeUnauthorized, "Token could not be verified"
	}
}

// GetCaller returns the authenticated caller
func GetCaller(c *gin.Context) (identity.Caller, bool) {
	v, ok := c.Get(CallerKey)
	if !ok {
		return identity.Caller{}, false
	}
	caller, ok := v.(identity.Caller)
	return caller, ok
}

// RequireCapability rejects callers whose role lacks the capability with 403
func RequireCapability(capability identity.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		caller, ok := GetCaller(c)
		if !ok {
			abortWithError(c, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}
		if err := caller.Require(capability); err != nil {
			abortWithError(c, dto.ErrCodeForbidden, err.Error())
			return
		}
		c.Next()
	}
}
