package repositories

import (
	"context"

	"lotellar.backend/internal/domain/entities"
)

// PendingTransactionRepository tracks submissions awaiting a terminal status
type PendingTransactionRepository interface {
	Track(ctx context.Context, tx entities.PendingTransaction) error
	List(ctx context.Context) ([]entities.PendingTransaction, error)
	Remove(ctx context.Context, hash string) error
}
