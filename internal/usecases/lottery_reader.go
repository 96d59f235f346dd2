package usecases

import (
	"context"
	"fmt"
	"math/big"
	"strconv"

	"github.com/volatiletech/null/v8"
	"go.uber.org/zap"
	"lotellar.backend/internal/domain/entities"
	"lotellar.backend/pkg/logger"
	"lotellar.backend/pkg/metrics"
	"lotellar.backend/pkg/utils"
)

// LedgerQuerier performs read-only contract calls
type LedgerQuerier interface {
	Query(ctx context.Context, fn entities.ContractFunction, args []interface{}) (interface{}, error)
}

// LotteryReader fetches the lottery collections from the contract.
// It never fails past its boundary: callers always get a usable slice and,
// on failure, the error to report.
type LotteryReader struct {
	querier LedgerQuerier
}

// NewLotteryReader creates a new lottery reader
func NewLotteryReader(querier LedgerQuerier) *LotteryReader {
	return &LotteryReader{querier: querier}
}

// FetchAll returns every lottery, active and completed
func (r *LotteryReader) FetchAll(ctx context.Context) ([]entities.Lottery, error) {
	return r.fetch(ctx, entities.FnGetAllLotteries)
}

// FetchCompleted returns the lotteries that have drawn a winner
func (r *LotteryReader) FetchCompleted(ctx context.Context) ([]entities.Lottery, error) {
	return r.fetch(ctx, entities.FnGetCompletedLotteries)
}

func (r *LotteryReader) fetch(ctx context.Context, fn entities.ContractFunction) ([]entities.Lottery, error) {
	raw, err := r.querier.Query(ctx, fn, nil)
	if err == nil {
		var lotteries []entities.Lottery
		if lotteries, err = mapLotteries(raw); err == nil {
			metrics.RecordLedgerRead(string(fn), nil)
			return lotteries, nil
		}
	}
	metrics.RecordLedgerRead(string(fn), err)
	logger.Error(ctx, "Failed to fetch lotteries", zap.String("function", string(fn)), zap.Error(err))
	return []entities.Lottery{}, err
}

func mapLotteries(raw interface{}) ([]entities.Lottery, error) {
	if raw == nil {
		return []entities.Lottery{}, nil
	}
	items, ok := raw.([]interface{})
	if !ok {
		return nil, fmt.Errorf("unexpected lottery collection type %T", raw)
	}
	out := make([]entities.Lottery, 0, len(items))
	for i, item := range items {
		fields, ok := item.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("lottery %d: unexpected type %T", i, item)
		}
		out = append(out, mapLottery(fields))
	}
	return out, nil
}

func mapLottery(f map[string]interface{}) entities.Lottery {
	l := entities.Lottery{
		ID:           "0",
		Name:         "Unknown Lottery",
		Participants: []string{},
	}
	if id, ok := asUint64(f["id"]); ok {
		l.ID = strconv.FormatUint(id, 10)
	}
	if name, ok := f["name"].(string); ok && name != "" {
		l.Name = name
	}
	if fee, ok := asBigInt(f["entry_fee"]); ok {
		l.EntryFee = utils.FromStroops(fee)
	}
	if max, ok := asUint64(f["max_participants"]); ok {
		l.MaxParticipants = uint32(max)
	}
	if participants, ok := f["participants"].([]interface{}); ok {
		for _, p := range participants {
			if s, ok := p.(string); ok {
				l.Participants = append(l.Participants, s)
			}
		}
	}
	if winner, ok := f["winner"].(string); ok && winner != "" {
		l.Winner = null.StringFrom(winner)
	}
	if hash, ok := f["winner_tx_hash"].(string); ok && hash != "" {
		l.WinnerTxHash = null.StringFrom(hash)
	}
	if done, ok := f["is_completed"].(bool); ok {
		l.IsCompleted = done
	}
	if created, ok := asUint64(f["created_at"]); ok {
		l.CreatedAt = int64(created) * 1000
	}
	if creator, ok := f["creator"].(string); ok {
		l.Creator = creator
	}
	l.RecomputePrizePool()
	return l
}

func asUint64(v interface{}) (uint64, bool) {
	switch n := v.(type) {
	case uint32:
		return uint64(n), true
	case uint64:
		return n, true
	case int32:
		if n >= 0 {
			return uint64(n), true
		}
	case int64:
		if n >= 0 {
			return uint64(n), true
		}
	case *big.Int:
		if n != nil && n.Sign() >= 0 && n.IsUint64() {
			return n.Uint64(), true
		}
	}
	return 0, false
}

func asBigInt(v interface{}) (*big.Int, bool) {
	switch n := v.(type) {
	case *big.Int:
		return n, n != nil
	case int64:
		return big.NewInt(n), true
	case uint64:
		return new(big.Int).SetUint64(n), true
	case uint32:
		return big.NewInt(int64(n)), true
	}
	return nil, false
}
