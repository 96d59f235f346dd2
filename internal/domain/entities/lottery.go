package entities

import (
	"github.com/volatiletech/null/v8"
)

// Lottery is the application view of a ledger lottery.
// PrizePool is always EntryFee * len(Participants); it is never read from the ledger.
type Lottery struct {
	ID              string      `json:"id"`
	Name            string      `json:"name"`
	EntryFee        float64     `json:"entryFee"`
	PrizePool       float64     `json:"prizePool"`
	MaxParticipants uint32      `json:"maxParticipants"`
	Participants    []string    `json:"participants"`
	Winner          null.String `json:"winner"`
	WinnerTxHash    null.String `json:"winnerTxHash"`
	IsCompleted     bool        `json:"isCompleted"`
	CreatedAt       int64       `json:"createdAt"` // unix milliseconds
	Creator         string      `json:"creator"`
}

// RecomputePrizePool derives the prize pool from the fee and participant count
func (l *Lottery) RecomputePrizePool() {
	l.PrizePool = l.EntryFee * float64(len(l.Participants))
}

// IsFull reports whether no more participants can enter
func (l *Lottery) IsFull() bool {
	return l.MaxParticipants > 0 && uint32(len(l.Participants)) >= l.MaxParticipants
}

// HasParticipant reports whether address already entered
func (l *Lottery) HasParticipant(address string) bool {
	for _, p := range l.Participants {
		if p == address {
			return true
		}
	}
	return false
}

// LotteryStatus filters lottery listings
type LotteryStatus string

const (
	LotteryStatusAll       LotteryStatus = "all"
	LotteryStatusActive    LotteryStatus = "active"
	LotteryStatusCompleted LotteryStatus = "completed"
)

// ParseLotteryStatus maps a query value to a status, defaulting to all
func ParseLotteryStatus(s string) (LotteryStatus, bool) {
	switch LotteryStatus(s) {
	case "", LotteryStatusAll:
		return LotteryStatusAll, true
	case LotteryStatusActive:
		return LotteryStatusActive, true
	case LotteryStatusCompleted:
		return LotteryStatusCompleted, true
	}
	return "", false
}

// Matches reports whether a lottery belongs to the status filter
func (s LotteryStatus) Matches(l Lottery) bool {
	switch s {
	case LotteryStatusActive:
		return !l.IsCompleted
	case LotteryStatusCompleted:
		return l.IsCompleted
	default:
		return true
	}
}

// CreateLotteryInput is the request body for creating a lottery
type CreateLotteryInput struct {
	Name            string  `json:"name"`
	EntryFee        float64 `json:"entryFee"`
	Duration        uint64  `json:"duration"` // seconds, zero means the configured default
	MaxParticipants int     `json:"maxParticipants"`
}

// LotteryMutationResult is returned after a create or enter call
type LotteryMutationResult struct {
	Transaction TxResult  `json:"transaction"`
	LotteryID   string    `json:"lotteryId,omitempty"`
	Lotteries   []Lottery `json:"lotteries"`
}
