package usecases

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"lotellar.backend/internal/domain/entities"
	"lotellar.backend/pkg/utils"
)

const (
	entryFeeRangeMessage  = "Entry fee is too large"
	participantCapMessage = "Maximum 4294967295 participants allowed"
)

// ParticipantLimits is the configured inclusive range for a lottery's participant cap
type ParticipantLimits struct {
	Min int
	Max int
}

var (
	formValidate     *validator.Validate
	formValidateOnce sync.Once
)

func getFormValidator() *validator.Validate {
	formValidateOnce.Do(func() {
		v := validator.New()
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		v.RegisterStructValidation(validateRequirementsStep, communityRequirementsStep{})
		_ = v.RegisterValidation("ledger_amount", validateLedgerAmount)
		formValidate = v
	})
	return formValidate
}

// Baseline creation flow, one struct per step. Strings are trimmed before validation.
type lotteryBasicsStep struct {
	Name string `json:"name" validate:"required,min=3"`
}

type lotteryParticipantsStep struct {
	EntryFee        float64 `json:"entryFee" validate:"gt=0,ledger_amount"`
	MaxParticipants int     `json:"maxParticipants" validate:"gtefield=MinAllowed,ltefield=MaxAllowed,lte=4294967295"`
	MinAllowed      int     `json:"-"`
	MaxAllowed      int     `json:"-"`
}

// Community creation flow
type communityBasicsStep struct {
	Name        string `json:"name" validate:"required,min=3"`
	Description string `json:"description" validate:"required,min=10"`
}

type communityParticipantsStep struct {
	EntryFee        float64 `json:"entryFee" validate:"gt=0,ledger_amount"`
	Duration        float64 `json:"duration" validate:"gt=0"`
	MaxParticipants int     `json:"maxParticipants" validate:"gte=2,lte=4294967295"`
	WinnerCount     int     `json:"winnerCount" validate:"ltfield=MaxParticipants,gte=1"`
}

type communityRequirementsStep struct {
	TwitterFollow bool    `json:"twitterFollow"`
	TwitterHandle string  `json:"twitterHandle" validate:"required_if=TwitterFollow true"`
	TokenBalance  bool    `json:"minimumTokenBalance"`
	TokenAmount   float64 `json:"tokenAmount"`
	TokenSymbol   string  `json:"tokenSymbol" validate:"required_if=TokenBalance true"`
	NFTCheck      bool    `json:"nftCheck"`
	NFTCollection string  `json:"nftCollection" validate:"required_if=NFTCheck true"`
}

// validateLedgerAmount accepts amounts that convert to an i128 stroop value
func validateLedgerAmount(fl validator.FieldLevel) bool {
	_, err := utils.ToStroops(fl.Field().Float())
	return err == nil
}

func validateRequirementsStep(sl validator.StructLevel) {
	step := sl.Current().Interface().(communityRequirementsStep)
	if step.TokenBalance && step.TokenAmount <= 0 {
		sl.ReportError(step.TokenAmount, "tokenAmount", "TokenAmount", "positive_when_enabled", "")
	}
}

// fieldMessages maps field -> failed tag -> user message
var fieldMessages = map[string]map[string]string{
	"name": {
		"required": "Lottery name is required",
		"min":      "Lottery name must be at least 3 characters",
	},
	"description": {
		"required": "Description is required",
		"min":      "Description must be at least 10 characters",
	},
	"entryFee": {
		"gt":            "Entry fee must be greater than 0",
		"ledger_amount": entryFeeRangeMessage,
	},
	"duration": {
		"gt": "Duration must be greater than 0",
	},
	"maxParticipants": {
		"gte": "Minimum 2 participants required",
		"lte": participantCapMessage,
	},
	"winnerCount": {
		"gte":     "At least 1 winner required",
		"ltfield": "Winner count must be less than max participants",
	},
	"twitterHandle": {
		"required_if": "Twitter handle is required when Twitter follow is enabled",
	},
	"tokenAmount": {
		"positive_when_enabled": "Token amount must be greater than 0",
	},
	"tokenSymbol": {
		"required_if": "Token symbol is required when token balance check is enabled",
	},
	"nftCollection": {
		"required_if": "NFT collection address is required when NFT check is enabled",
	},
}

// ValidateLotteryDraft validates every rule of steps 0 through step of the
// baseline creation flow. An empty result means the draft may advance.
func ValidateLotteryDraft(draft entities.LotteryDraft, step int, limits ParticipantLimits) entities.FieldErrors {
	out := entities.FieldErrors{}
	if step >= entities.FormStepBasics {
		collect(out, lotteryBasicsStep{Name: strings.TrimSpace(draft.Name)}, nil)
	}
	if step >= entities.FormStepParticipants {
		collect(out, lotteryParticipantsStep{
			EntryFee:        draft.EntryFee,
			MaxParticipants: draft.MaxParticipants,
			MinAllowed:      limits.Min,
			MaxAllowed:      limits.Max,
		}, map[string]map[string]string{
			"maxParticipants": {
				"gtefield": fmt.Sprintf("Minimum %d participants required", limits.Min),
				"ltefield": fmt.Sprintf("Maximum %d participants allowed", limits.Max),
			},
		})
	}
	return out
}

// ValidateCommunityDraft validates every rule of steps 0 through step of the
// community creation flow.
func ValidateCommunityDraft(draft entities.CommunityLotteryDraft, step int) entities.FieldErrors {
	out := entities.FieldErrors{}
	if step >= entities.FormStepBasics {
		collect(out, communityBasicsStep{
			Name:        strings.TrimSpace(draft.Name),
			Description: strings.TrimSpace(draft.Description),
		}, nil)
	}
	if step >= entities.FormStepParticipants {
		collect(out, communityParticipantsStep{
			EntryFee:        draft.EntryFee,
			Duration:        draft.DurationDays,
			MaxParticipants: draft.MaxParticipants,
			WinnerCount:     draft.WinnerCount,
		}, nil)
	}
	if step >= entities.FormStepRequirements {
		r := draft.Requirements
		collect(out, communityRequirementsStep{
			TwitterFollow: r.TwitterFollow,
			TwitterHandle: strings.TrimSpace(r.TwitterHandle),
			TokenBalance:  r.TokenBalance,
			TokenAmount:   r.TokenAmount,
			TokenSymbol:   strings.TrimSpace(r.TokenSymbol),
			NFTCheck:      r.NFTCheck,
			NFTCollection: strings.TrimSpace(r.NFTCollection),
		}, nil)
	}
	return out
}

func collect(out entities.FieldErrors, step interface{}, overrides map[string]map[string]string) {
	err := getFormValidator().Struct(step)
	if err == nil {
		return
	}
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		out["error"] = "Invalid form data"
		return
	}
	for _, e := range validationErrors {
		field := e.Field()
		msg := "Invalid value"
		if m, ok := overrides[field][e.Tag()]; ok {
			msg = m
		} else if m, ok := fieldMessages[field][e.Tag()]; ok {
			msg = m
		}
		out[field] = msg
	}
}

// AdvanceForm moves to the next step when every rule up to the current step
// passes. On failure the step is unchanged and Errors holds exactly the
// violated fields.
func AdvanceForm(state entities.FormState, validate func(step int) entities.FieldErrors) (entities.FormState, bool) {
	step := clampStep(state.Step)
	errs := validate(step)
	if len(errs) > 0 {
		return entities.FormState{Step: step, Errors: errs}, false
	}
	if step < entities.FormLastStep {
		step++
	}
	return entities.FormState{Step: step, Errors: entities.FieldErrors{}}, true
}

// RetreatForm always succeeds; it clears errors but not values
func RetreatForm(state entities.FormState) entities.FormState {
	step := clampStep(state.Step)
	if step > 0 {
		step--
	}
	return entities.FormState{Step: step, Errors: entities.FieldErrors{}}
}

// CanSubmit validates the whole form
func CanSubmit(validate func(step int) entities.FieldErrors) (entities.FieldErrors, bool) {
	errs := validate(entities.FormLastStep)
	return errs, len(errs) == 0
}

func clampStep(step int) int {
	if step < 0 {
		return 0
	}
	if step > entities.FormLastStep {
		return entities.FormLastStep
	}
	return step
}

// FormUsecase drives the creation wizards with the configured limits
type FormUsecase struct {
	limits ParticipantLimits
}

// NewFormUsecase creates a new form usecase
func NewFormUsecase(limits ParticipantLimits) *FormUsecase {
	return &FormUsecase{limits: limits}
}

// Limits returns the configured participant range
func (u *FormUsecase) Limits() ParticipantLimits {
	return u.limits
}

// NextLottery advances the baseline wizard
func (u *FormUsecase) NextLottery(state entities.FormState, draft entities.LotteryDraft) (entities.FormState, bool) {
	return AdvanceForm(state, func(step int) entities.FieldErrors {
		return ValidateLotteryDraft(draft, step, u.limits)
	})
}

// ValidateLottery checks the whole baseline form before submission
func (u *FormUsecase) ValidateLottery(draft entities.LotteryDraft) (entities.FieldErrors, bool) {
	return CanSubmit(func(step int) entities.FieldErrors {
		return ValidateLotteryDraft(draft, step, u.limits)
	})
}

// NextCommunity advances the community wizard
func (u *FormUsecase) NextCommunity(state entities.FormState, draft entities.CommunityLotteryDraft) (entities.FormState, bool) {
	return AdvanceForm(state, func(step int) entities.FieldErrors {
		return ValidateCommunityDraft(draft, step)
	})
}

// ValidateCommunity checks the whole community form before submission
func (u *FormUsecase) ValidateCommunity(draft entities.CommunityLotteryDraft) (entities.FieldErrors, bool) {
	return CanSubmit(func(step int) entities.FieldErrors {
		return ValidateCommunityDraft(draft, step)
	})
}

// Back steps either wizard back, clearing errors
func (u *FormUsecase) Back(state entities.FormState) entities.FormState {
	return RetreatForm(state)
}
