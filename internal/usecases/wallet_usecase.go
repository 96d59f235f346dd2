package usecases

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/stellar/go/strkey"
	"go.uber.org/zap"
	"lotellar.backend/internal/domain/entities"
	domainerrors "lotellar.backend/internal/domain/errors"
	"lotellar.backend/pkg/jwt"
	"lotellar.backend/pkg/logger"
	"lotellar.backend/pkg/redis"
	"lotellar.backend/pkg/utils"
)

// SessionStore persists wallet sessions
type SessionStore interface {
	CreateSession(ctx context.Context, sessionID string, data *redis.SessionData, expiration time.Duration) error
	GetSession(ctx context.Context, sessionID string) (*redis.SessionData, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

// SessionTokens issues and validates session bearer tokens
type SessionTokens interface {
	GenerateSessionToken(sessionID, address string) (string, time.Time, error)
	ValidateToken(token string) (*jwt.Claims, error)
	SessionExpiry() time.Duration
}

// SignerDirectory reports which addresses the server can sign for
type SignerDirectory interface {
	Has(address string) bool
}

// WalletSessionUsecase connects wallets and tracks their sessions
type WalletSessionUsecase struct {
	store   SessionStore
	tokens  SessionTokens
	signers SignerDirectory
	now     func() time.Time
}

// NewWalletSessionUsecase creates a new wallet session usecase
func NewWalletSessionUsecase(store SessionStore, tokens SessionTokens, signers SignerDirectory) *WalletSessionUsecase {
	return &WalletSessionUsecase{
		store:   store,
		tokens:  tokens,
		signers: signers,
		now:     time.Now,
	}
}

// Connect grants a session for address
func (u *WalletSessionUsecase) Connect(ctx context.Context, input *entities.ConnectWalletInput) (*entities.ConnectWalletResponse, error) {
	address := strings.TrimSpace(input.Address)
	if !strkey.IsValidEd25519PublicKey(address) {
		return nil, domainerrors.BadRequest("invalid wallet address")
	}
	if !u.signers.Has(address) {
		return nil, domainerrors.Forbidden("wallet is not available for signing")
	}

	session := entities.WalletSession{
		SessionID:   utils.NewID(),
		Address:     address,
		KeyID:       strings.TrimSpace(input.KeyID),
		Granted:     true,
		ConnectedAt: u.now().UTC(),
	}
	err := u.store.CreateSession(ctx, session.SessionID, &redis.SessionData{
		Address:     session.Address,
		KeyID:       session.KeyID,
		ConnectedAt: session.ConnectedAt,
	}, u.tokens.SessionExpiry())
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}

	token, expiresAt, err := u.tokens.GenerateSessionToken(session.SessionID, address)
	if err != nil {
		_ = u.store.DeleteSession(ctx, session.SessionID)
		return nil, domainerrors.InternalError(err)
	}

	logger.Info(ctx, "Wallet connected", zap.String("session_id", session.SessionID), zap.String("address", address))
	return &entities.ConnectWalletResponse{
		Session:   session,
		Token:     token,
		ExpiresAt: expiresAt.Unix(),
	}, nil
}

// Session returns a live session
func (u *WalletSessionUsecase) Session(ctx context.Context, sessionID string) (*entities.WalletSession, error) {
	data, err := u.store.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, redis.ErrSessionNotFound) {
			return nil, domainerrors.Unauthorized("wallet session not found")
		}
		return nil, domainerrors.InternalError(err)
	}
	return &entities.WalletSession{
		SessionID:   sessionID,
		Address:     data.Address,
		KeyID:       data.KeyID,
		Granted:     true,
		ConnectedAt: data.ConnectedAt,
	}, nil
}

// Authenticate resolves a bearer token to its live session
func (u *WalletSessionUsecase) Authenticate(ctx context.Context, token string) (*entities.WalletSession, error) {
	claims, err := u.tokens.ValidateToken(token)
	if err != nil {
		if errors.Is(err, jwt.ErrExpiredToken) {
			return nil, domainerrors.NewAppError(http.StatusUnauthorized, domainerrors.CodeUnauthorized, "session token expired", domainerrors.ErrTokenExpired)
		}
		return nil, domainerrors.Unauthorized("invalid session token")
	}
	session, err := u.Session(ctx, claims.SessionID())
	if err != nil {
		return nil, err
	}
	if session.Address != claims.Address {
		return nil, domainerrors.Unauthorized("invalid session token")
	}
	return session, nil
}

// Disconnect removes the session and with it the wallet's authorization
func (u *WalletSessionUsecase) Disconnect(ctx context.Context, sessionID string) error {
	if err := u.store.DeleteSession(ctx, sessionID); err != nil {
		return domainerrors.InternalError(err)
	}
	logger.Info(ctx, "Wallet disconnected", zap.String("session_id", sessionID))
	return nil
}
