package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"lotellar.backend/internal/domain/entities"
	domainerrors "lotellar.backend/internal/domain/errors"
	"lotellar.backend/internal/interfaces/http/response"
)

type walletKeyService interface {
	SignUp(ctx context.Context, input *entities.SignUpInput) (string, error)
	Lookup(ctx context.Context, value string) (*entities.WalletKey, error)
}

// UserHandler serves the passkey wallet companion endpoints. Their response
// shapes are fixed by existing wallet clients.
type UserHandler struct {
	walletKeys walletKeyService
}

func NewUserHandler(walletKeys walletKeyService) *UserHandler {
	return &UserHandler{walletKeys: walletKeys}
}

// GetPublicKey resolves a public key or passkey contract to its registered public key.
// GET /api/user/:contract
func (h *UserHandler) GetPublicKey(c *gin.Context) {
	key, err := h.walletKeys.Lookup(c.Request.Context(), c.Param("contract"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"publicKey": key.PublicKey})
}

// SignUp registers a public key against its passkey contract.
// POST /api/user/sign-up
func (h *UserHandler) SignUp(c *gin.Context) {
	var input entities.SignUpInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"body": "invalid request body"})
		return
	}

	publicKey, err := h.walletKeys.SignUp(c.Request.Context(), &input)
	if err != nil {
		var appErr *domainerrors.AppError
		if errors.As(err, &appErr) && appErr.Status == http.StatusUnprocessableEntity {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"body": appErr.Message})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"body": "failed to register wallet key"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"body": publicKey})
}
