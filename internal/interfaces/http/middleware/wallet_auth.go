package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"lotellar.backend/internal/domain/entities"
	domainerrors "lotellar.backend/internal/domain/errors"
	"lotellar.backend/internal/interfaces/http/response"
	"lotellar.backend/pkg/logger"
)

const (
	// AuthorizationHeader is the header key for authorization
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens
	BearerPrefix = "Bearer "
	// WalletSessionKey is the gin context key for the wallet session
	WalletSessionKey = "walletSession"
)

// SessionAuthenticator resolves a bearer token to a live wallet session
type SessionAuthenticator interface {
	Authenticate(ctx context.Context, token string) (*entities.WalletSession, error)
}

// WalletAuthMiddleware requires a bearer token backed by a granted wallet session
func WalletAuthMiddleware(auth SessionAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader(AuthorizationHeader)
		if authHeader == "" {
			response.Error(c, domainerrors.Unauthorized("Authorization header is required"))
			c.Abort()
			return
		}
		if !strings.HasPrefix(authHeader, BearerPrefix) {
			response.Error(c, domainerrors.Unauthorized("Invalid authorization format. Use: Bearer <token>"))
			c.Abort()
			return
		}

		session, err := auth.Authenticate(c.Request.Context(), strings.TrimPrefix(authHeader, BearerPrefix))
		if err != nil {
			logger.Warn(c.Request.Context(), "Wallet authentication failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
			response.Error(c, err)
			c.Abort()
			return
		}
		if !session.Granted {
			response.Error(c, domainerrors.Forbidden("wallet access not granted"))
			c.Abort()
			return
		}

		c.Set(WalletSessionKey, session)
		c.Request = c.Request.WithContext(logger.WithWallet(c.Request.Context(), session.Address))

		c.Next()
	}
}

// GetWalletSession returns the session set by WalletAuthMiddleware
func GetWalletSession(c *gin.Context) (*entities.WalletSession, bool) {
	v, exists := c.Get(WalletSessionKey)
	if !exists {
		return nil, false
	}
	session, ok := v.(*entities.WalletSession)
	return session, ok && session != nil
}
