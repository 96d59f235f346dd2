package jobs

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"lotellar.backend/internal/domain/entities"
	"lotellar.backend/internal/infrastructure/blockchain"
	"lotellar.backend/pkg/logger"
	"lotellar.backend/pkg/metrics"
)

type pendingTransactionStore interface {
	List(ctx context.Context) ([]entities.PendingTransaction, error)
	Remove(ctx context.Context, hash string) error
}

type transactionStatusChecker interface {
	CheckStatus(ctx context.Context, hash string) (*blockchain.GetTransactionResponse, error)
}

// PendingTransactionJob settles submissions whose outcome was unknown when
// polling ran out
type PendingTransactionJob struct {
	store    pendingTransactionStore
	checker  transactionStatusChecker
	interval time.Duration
	maxAge   time.Duration
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

func NewPendingTransactionJob(store pendingTransactionStore, checker transactionStatusChecker, interval, maxAge time.Duration) *PendingTransactionJob {
	return &PendingTransactionJob{
		store:    store,
		checker:  checker,
		interval: interval,
		maxAge:   maxAge,
		now:      time.Now,
		stop:     make(chan struct{}),
	}
}

func (j *PendingTransactionJob) Start(ctx context.Context) {
	logger.Info(ctx, "Starting pending transaction job", zap.Duration("interval", j.interval))

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Pending transaction job stopped (context cancelled)")
			return
		case <-j.stop:
			logger.Info(ctx, "Pending transaction job stopped")
			return
		case <-ticker.C:
			j.processPending(ctx)
		}
	}
}

func (j *PendingTransactionJob) Stop() {
	j.stopOnce.Do(func() { close(j.stop) })
}

func (j *PendingTransactionJob) processPending(ctx context.Context) {
	pending, err := j.store.List(ctx)
	if err != nil {
		logger.Error(ctx, "Failed to list pending transactions", zap.Error(err))
		return
	}

	remaining := 0
	for _, tx := range pending {
		if !j.settle(ctx, tx) {
			remaining++
		}
	}
	metrics.PendingTransactions.Set(float64(remaining))
}

// settle reports whether tx left the pending set
func (j *PendingTransactionJob) settle(ctx context.Context, tx entities.PendingTransaction) bool {
	ctx = logger.WithWallet(logger.WithTransaction(ctx, tx.Hash), tx.Source)
	fields := []zap.Field{zap.String("function", string(tx.Function))}
	expired := j.now().Sub(tx.SubmittedAt) > j.maxAge

	var outcome string
	resp, err := j.checker.CheckStatus(ctx, tx.Hash)
	switch {
	case err != nil:
		logger.Warn(ctx, "Pending transaction status unavailable", append(fields, zap.Error(err))...)
		if !expired {
			return false
		}
		outcome = metrics.OutcomeExpired
	case resp.Status == entities.TxStatusSuccess:
		outcome = metrics.OutcomeConfirmed
		logger.Info(ctx, "Pending transaction confirmed", append(fields, zap.Uint32("ledger", resp.Ledger))...)
	case resp.Status == entities.TxStatusFailed:
		outcome = metrics.OutcomeFailed
		logger.Warn(ctx, "Pending transaction failed", append(fields, zap.String("result_xdr", resp.ResultXDR))...)
	case expired:
		outcome = metrics.OutcomeExpired
		logger.Warn(ctx, "Pending transaction dropped after max age", append(fields, zap.String("status", resp.Status))...)
	default:
		return false
	}

	metrics.RecordTransaction(string(tx.Function), outcome)
	if err := j.store.Remove(ctx, tx.Hash); err != nil {
		logger.Error(ctx, "Failed to remove pending transaction", append(fields, zap.Error(err))...)
		return false
	}
	return true
}
