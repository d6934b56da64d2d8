package middleware

import (
	"errors"
	"strings"

	"github.com/erp/consistency/internal/domain/shared"
	"github.com/erp/consistency/internal/infrastructure/auth"
	"github.com/erp/consistency/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// JWT context keys
const (
	JWTClaimsKey  = "jwt_claims"
	AuthHeaderKey = "Authorization"
	BearerPrefix  = "Bearer "
)

// TokenValidator verifies a bearer token
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// JWTAuth rejects requests without a valid bearer token and records the
// caller in both the gin context and the request context
func JWTAuth(validator TokenValidator, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		header := c.GetHeader(AuthHeaderKey)
		token, ok := strings.CutPrefix(header, BearerPrefix)
		if !ok || token == "" {
			abortWithError(c, shared.CodeUnauthorized, "Authentication required")
			return
		}

		claims, err := validator.Validate(token)
		if err != nil {
			log.Warn("authentication failed",
				zap.String("path", c.Request.URL.Path),
				zap.Error(err),
			)
			abortWithError(c, shared.CodeUnauthorized, authMessage(err))
			return
		}

		c.Set(JWTClaimsKey, claims)
		c.Set(logger.GinUserIDKey, claims.UserID)

		ctx, _ := logger.WithActor(c.Request.Context(), logger.FromContext(c.Request.Context()),
			logger.Actor{UserID: claims.UserID, Roles: claims.Roles})
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func authMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return "Token has expired"
	case errors.Is(err, auth.ErrTokenNotYetValid):
		return "Token is not yet valid"
	default:
		return "Invalid token"
	}
}

// RequireAnyRole lets the request through when the caller holds one of roles.
// It must run after JWTAuth.
func RequireAnyRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetClaims(c)
		if claims == nil {
			abortWithError(c, shared.CodeUnauthorized, "Authentication required")
			return
		}
		if !claims.HasAnyRole(roles...) {
			abortWithError(c, shared.CodeForbidden, "Requires one of roles: "+strings.Join(roles, ", "))
			return
		}
		c.Next()
	}
}

// GetClaims retrieves JWT claims from gin.Context
func GetClaims(c *gin.Context) *auth.Claims {
	if claims, ok := c.Value(JWTClaimsKey).(*auth.Claims); ok {
		return claims
	}
	return nil
}

// ActorID returns the authenticated user id, nil when absent or malformed
func ActorID(c *gin.Context) *uuid.UUID {
	claims := GetClaims(c)
	if claims == nil {
		return nil
	}
	id, err := claims.UserUUID()
	if err != nil {
		return nil
	}
	return &id
}
