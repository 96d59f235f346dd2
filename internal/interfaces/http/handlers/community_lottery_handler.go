package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"lotellar.backend/internal/domain/entities"
	domainerrors "lotellar.backend/internal/domain/errors"
	"lotellar.backend/internal/interfaces/http/middleware"
	"lotellar.backend/internal/interfaces/http/response"
)

type communityLotteryService interface {
	Create(ctx context.Context, address string, draft *entities.CommunityLotteryDraft) (*entities.CommunityMutationResult, error)
	Enter(ctx context.Context, address, id string) (*entities.CommunityMutationResult, error)
	List(ctx context.Context) ([]entities.CommunityLottery, error)
	Get(ctx context.Context, id string) (*entities.CommunityLottery, error)
}

type CommunityLotteryHandler struct {
	communityUsecase communityLotteryService
}

func NewCommunityLotteryHandler(communityUsecase communityLotteryService) *CommunityLotteryHandler {
	return &CommunityLotteryHandler{communityUsecase: communityUsecase}
}

// ListCommunityLotteries returns stored community lotteries reconciled with the ledger.
// A ledger outage still returns the stored records, with a notice.
// GET /api/v1/community-lotteries
func (h *CommunityLotteryHandler) ListCommunityLotteries(c *gin.Context) {
	items, err := h.communityUsecase.List(c.Request.Context())
	if err != nil && !errors.Is(err, domainerrors.ErrLedgerUnavailable) {
		response.Error(c, err)
		return
	}

	body := gin.H{"items": items}
	if err != nil {
		body["notice"] = "Ledger state is temporarily unavailable; showing stored data"
	}
	response.Success(c, http.StatusOK, body)
}

// GET /api/v1/community-lotteries/:id
func (h *CommunityLotteryHandler) GetCommunityLottery(c *gin.Context) {
	item, err := h.communityUsecase.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, item)
}

// CreateCommunityLottery creates the on-chain lottery and stores its community metadata.
// POST /api/v1/community-lotteries
func (h *CommunityLotteryHandler) CreateCommunityLottery(c *gin.Context) {
	var draft entities.CommunityLotteryDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	session, ok := middleware.GetWalletSession(c)
	if !ok {
		response.Error(c, domainerrors.ErrWalletNotConnected)
		return
	}

	result, err := h.communityUsecase.Create(submissionContext(c), session.Address, &draft)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, mutationStatus(result.Transaction, http.StatusCreated), result)
}

// POST /api/v1/community-lotteries/:id/enter
func (h *CommunityLotteryHandler) EnterCommunityLottery(c *gin.Context) {
	session, ok := middleware.GetWalletSession(c)
	if !ok {
		response.Error(c, domainerrors.ErrWalletNotConnected)
		return
	}

	result, err := h.communityUsecase.Enter(submissionContext(c), session.Address, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, mutationStatus(result.Transaction, http.StatusOK), result)
}
