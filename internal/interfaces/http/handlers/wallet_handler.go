package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"lotellar.backend/internal/domain/entities"
	domainerrors "lotellar.backend/internal/domain/errors"
	"lotellar.backend/internal/interfaces/http/middleware"
	"lotellar.backend/internal/interfaces/http/response"
)

type walletService interface {
	Connect(ctx context.Context, input *entities.ConnectWalletInput) (*entities.ConnectWalletResponse, error)
	Disconnect(ctx context.Context, sessionID string) error
}

// WalletHandler handles wallet session endpoints
type WalletHandler struct {
	walletUsecase walletService
}

// NewWalletHandler creates a new wallet handler
func NewWalletHandler(walletUsecase walletService) *WalletHandler {
	return &WalletHandler{walletUsecase: walletUsecase}
}

// ConnectWallet grants a session for a wallet the service can sign with
// POST /api/v1/wallet/connect
func (h *WalletHandler) ConnectWallet(c *gin.Context) {
	var input entities.ConnectWalletInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	res, err := h.walletUsecase.Connect(c.Request.Context(), &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, res)
}

// GetSession returns the session behind the bearer token
// GET /api/v1/wallet/session
func (h *WalletHandler) GetSession(c *gin.Context) {
	session, ok := middleware.GetWalletSession(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("Wallet not connected"))
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": session})
}

// DisconnectWallet ends the session
// POST /api/v1/wallet/disconnect
func (h *WalletHandler) DisconnectWallet(c *gin.Context) {
	session, ok := middleware.GetWalletSession(c)
	if !ok {
		response.Error(c, domainerrors.Unauthorized("Wallet not connected"))
		return
	}

	if err := h.walletUsecase.Disconnect(c.Request.Context(), session.SessionID); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"message": "Wallet disconnected successfully"})
}
