package repositories

import (
	"context"
	"encoding/json"
	"sort"

	"go.uber.org/zap"
	"lotellar.backend/internal/domain/entities"
	"lotellar.backend/pkg/logger"
	"lotellar.backend/pkg/redis"
)

// PendingTransactionsKey is the hash of indeterminate submissions, keyed by tx hash
const PendingTransactionsKey = "tx:pending"

type PendingTransactionRepository struct{}

func NewPendingTransactionRepository() *PendingTransactionRepository {
	return &PendingTransactionRepository{}
}

func (r *PendingTransactionRepository) Track(ctx context.Context, tx entities.PendingTransaction) error {
	payload, err := json.Marshal(tx)
	if err != nil {
		return err
	}
	return redis.HSet(ctx, PendingTransactionsKey, tx.Hash, string(payload))
}

// List returns tracked transactions oldest first. Undecodable entries are dropped.
func (r *PendingTransactionRepository) List(ctx context.Context) ([]entities.PendingTransaction, error) {
	raw, err := redis.HGetAll(ctx, PendingTransactionsKey)
	if err != nil {
		return nil, err
	}
	out := make([]entities.PendingTransaction, 0, len(raw))
	for hash, payload := range raw {
		var tx entities.PendingTransaction
		if err := json.Unmarshal([]byte(payload), &tx); err != nil {
			logger.Warn(ctx, "Dropping malformed pending transaction", zap.String("hash", hash), zap.Error(err))
			_ = redis.HDel(ctx, PendingTransactionsKey, hash)
			continue
		}
		out = append(out, tx)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.Before(out[j].SubmittedAt) })
	return out, nil
}

func (r *PendingTransactionRepository) Remove(ctx context.Context, hash string) error {
	return redis.HDel(ctx, PendingTransactionsKey, hash)
}
