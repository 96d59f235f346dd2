package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"lotellar.backend/internal/domain/entities"
	domainerrors "lotellar.backend/internal/domain/errors"
	"lotellar.backend/internal/interfaces/http/middleware"
	"lotellar.backend/internal/interfaces/http/response"
	"lotellar.backend/pkg/utils"
)

type lotteryService interface {
	CreateLottery(ctx context.Context, address string, input *entities.CreateLotteryInput) (*entities.LotteryMutationResult, error)
	EnterLottery(ctx context.Context, address, lotteryID string) (*entities.LotteryMutationResult, error)
	ListLotteries(ctx context.Context, status entities.LotteryStatus, pagination utils.PaginationParams) ([]entities.Lottery, utils.PaginationMeta, error)
	GetLottery(ctx context.Context, lotteryID string) (*entities.Lottery, error)
}

// LotteryHandler handles on-chain lottery endpoints
type LotteryHandler struct {
	lotteryUsecase lotteryService
}

// NewLotteryHandler creates a new lottery handler
func NewLotteryHandler(lotteryUsecase lotteryService) *LotteryHandler {
	return &LotteryHandler{lotteryUsecase: lotteryUsecase}
}

// ListLotteries lists lotteries filtered by status.
// GET /api/v1/lotteries?status=&page=&limit=
func (h *LotteryHandler) ListLotteries(c *gin.Context) {
	status, ok := entities.ParseLotteryStatus(c.Query("status"))
	if !ok {
		response.Error(c, domainerrors.BadRequest("status must be one of all, active, completed"))
		return
	}
	h.list(c, status)
}

// ListCompletedLotteries lists lotteries that drew a winner.
// GET /api/v1/lotteries/completed
func (h *LotteryHandler) ListCompletedLotteries(c *gin.Context) {
	h.list(c, entities.LotteryStatusCompleted)
}

func (h *LotteryHandler) list(c *gin.Context, status entities.LotteryStatus) {
	var query utils.PaginationParams
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, domainerrors.BadRequest("page and limit must be integers"))
		return
	}
	pagination := utils.GetPaginationParams(query.Page, query.Limit)

	items, meta, err := h.lotteryUsecase.ListLotteries(c.Request.Context(), status, pagination)
	body := gin.H{"items": items, "meta": meta}
	if err != nil {
		body["notice"] = "Lotteries are temporarily unavailable"
	}
	response.Success(c, http.StatusOK, body)
}

// GetLottery returns one lottery by ledger id.
// GET /api/v1/lotteries/:id
func (h *LotteryHandler) GetLottery(c *gin.Context) {
	lottery, err := h.lotteryUsecase.GetLottery(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, lottery)
}

// CreateLottery creates a lottery signed by the session wallet.
// POST /api/v1/lotteries
func (h *LotteryHandler) CreateLottery(c *gin.Context) {
	var input entities.CreateLotteryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}

	session, ok := middleware.GetWalletSession(c)
	if !ok {
		response.Error(c, domainerrors.ErrWalletNotConnected)
		return
	}

	result, err := h.lotteryUsecase.CreateLottery(submissionContext(c), session.Address, &input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, mutationStatus(result.Transaction, http.StatusCreated), result)
}

// EnterLottery enters the session wallet into a lottery.
// POST /api/v1/lotteries/:id/enter
func (h *LotteryHandler) EnterLottery(c *gin.Context) {
	session, ok := middleware.GetWalletSession(c)
	if !ok {
		response.Error(c, domainerrors.ErrWalletNotConnected)
		return
	}

	result, err := h.lotteryUsecase.EnterLottery(submissionContext(c), session.Address, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, mutationStatus(result.Transaction, http.StatusOK), result)
}

// submissionContext keeps request values but outlives a client disconnect;
// a submitted transaction is polled to the end either way.
func submissionContext(c *gin.Context) context.Context {
	return context.WithoutCancel(c.Request.Context())
}

func mutationStatus(tx entities.TxResult, settled int) int {
	if tx.Indeterminate {
		return http.StatusAccepted
	}
	return settled
}
