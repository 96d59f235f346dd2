package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"lotellar.backend/internal/domain/entities"
	domainerrors "lotellar.backend/internal/domain/errors"
	"lotellar.backend/internal/interfaces/http/response"
)

type formService interface {
	NextLottery(state entities.FormState, draft entities.LotteryDraft) (entities.FormState, bool)
	ValidateLottery(draft entities.LotteryDraft) (entities.FieldErrors, bool)
	NextCommunity(state entities.FormState, draft entities.CommunityLotteryDraft) (entities.FormState, bool)
	ValidateCommunity(draft entities.CommunityLotteryDraft) (entities.FieldErrors, bool)
	Back(state entities.FormState) entities.FormState
}

// FormHandler exposes the creation wizards' step transitions
type FormHandler struct {
	forms formService
}

// NewFormHandler creates a new form handler
func NewFormHandler(forms formService) *FormHandler {
	return &FormHandler{forms: forms}
}

type lotteryFormRequest struct {
	State entities.FormState    `json:"state"`
	Draft entities.LotteryDraft `json:"draft"`
}

type communityFormRequest struct {
	State entities.FormState             `json:"state"`
	Draft entities.CommunityLotteryDraft `json:"draft"`
}

// NextLottery validates the current step and advances on success.
// POST /api/v1/forms/lottery/next
func (h *FormHandler) NextLottery(c *gin.Context) {
	var req lotteryFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	state, advanced := h.forms.NextLottery(req.State, req.Draft)
	response.Success(c, http.StatusOK, gin.H{"state": state, "advanced": advanced})
}

// ValidateLottery checks the whole form before submission.
// POST /api/v1/forms/lottery/validate
func (h *FormHandler) ValidateLottery(c *gin.Context) {
	var req lotteryFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	errs, ok := h.forms.ValidateLottery(req.Draft)
	response.Success(c, http.StatusOK, gin.H{"valid": ok, "errors": errs})
}

// POST /api/v1/forms/community/next
func (h *FormHandler) NextCommunity(c *gin.Context) {
	var req communityFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	state, advanced := h.forms.NextCommunity(req.State, req.Draft)
	response.Success(c, http.StatusOK, gin.H{"state": state, "advanced": advanced})
}

// POST /api/v1/forms/community/validate
func (h *FormHandler) ValidateCommunity(c *gin.Context) {
	var req communityFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	errs, ok := h.forms.ValidateCommunity(req.Draft)
	response.Success(c, http.StatusOK, gin.H{"valid": ok, "errors": errs})
}

// Back moves one step back in either wizard. Values are the client's to keep.
// POST /api/v1/forms/{lottery|community}/back
func (h *FormHandler) Back(c *gin.Context) {
	var req struct {
		State entities.FormState `json:"state"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, domainerrors.BadRequest(err.Error()))
		return
	}
	response.Success(c, http.StatusOK, gin.H{"state": h.forms.Back(req.State)})
}
