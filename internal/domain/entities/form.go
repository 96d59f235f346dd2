package entities

import "math"

// Form wizard steps
const (
	FormStepBasics       = 0
	FormStepParticipants = 1
	FormStepRequirements = 2
	FormLastStep         = FormStepRequirements
)

// FieldErrors maps a form field name to its validation message
type FieldErrors map[string]string

// LotteryDraft holds the baseline creation form values
type LotteryDraft struct {
	Name            string  `json:"name"`
	EntryFee        float64 `json:"entryFee"`
	Duration        uint64  `json:"duration"`
	MaxParticipants int     `json:"maxParticipants"`
}

// CommunityLotteryDraft holds the community creation form values.
// DurationDays is converted to seconds on submission.
type CommunityLotteryDraft struct {
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	EntryFee        float64 `json:"entryFee"`
	DurationDays    float64 `json:"duration"`
	MaxParticipants int     `json:"maxParticipants"`
	WinnerCount     int     `json:"winnerCount"`

	Requirements CommunityRequirements `json:"requirements"`
}

// DurationSeconds converts the day-based duration to seconds
func (d CommunityLotteryDraft) DurationSeconds() uint64 {
	if !(d.DurationDays > 0) {
		return 0
	}
	secs := d.DurationDays * 86400
	if secs >= math.MaxUint64 {
		return math.MaxUint64
	}
	return uint64(secs)
}

// FormState is the wizard position plus the errors of the last transition
type FormState struct {
	Step   int         `json:"step"`
	Errors FieldErrors `json:"errors"`
}
