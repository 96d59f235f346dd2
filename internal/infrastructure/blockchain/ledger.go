package blockchain

import (
	"context"

	"lotellar.backend/internal/domain/entities"
)

// Ledger joins account resolution and Soroban RPC behind one value
type Ledger struct {
	rpc      *SorobanClient
	accounts *HorizonAccountLoader
}

// NewLedger creates a ledger gateway
func NewLedger(rpc *SorobanClient, accounts *HorizonAccountLoader) *Ledger {
	return &Ledger{rpc: rpc, accounts: accounts}
}

func (l *Ledger) LoadAccount(ctx context.Context, address string) (entities.LedgerAccount, error) {
	return l.accounts.LoadAccount(ctx, address)
}

func (l *Ledger) SimulateTransaction(ctx context.Context, txXDR string) (*SimulateTransactionResponse, error) {
	return l.rpc.SimulateTransaction(ctx, txXDR)
}

func (l *Ledger) SendTransaction(ctx context.Context, txXDR string) (*SendTransactionResponse, error) {
	return l.rpc.SendTransaction(ctx, txXDR)
}

func (l *Ledger) GetTransaction(ctx context.Context, hash string) (*GetTransactionResponse, error) {
	return l.rpc.GetTransaction(ctx, hash)
}

func (l *Ledger) GetHealth(ctx context.Context) (*HealthResponse, error) {
	return l.rpc.GetHealth(ctx)
}
