package blockchain

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/stellar/go/clients/horizonclient"
	"lotellar.backend/internal/domain/entities"
)

// HorizonAccountLoader resolves live ledger accounts
type HorizonAccountLoader struct {
	client *horizonclient.Client
}

// NewHorizonAccountLoader creates a loader for a Horizon endpoint
func NewHorizonAccountLoader(horizonURL string) *HorizonAccountLoader {
	return &HorizonAccountLoader{
		client: &horizonclient.Client{
			HorizonURL: horizonURL,
			HTTP:       &http.Client{Timeout: 15 * time.Second},
		},
	}
}

// LoadAccount returns the current sequence number of address
func (l *HorizonAccountLoader) LoadAccount(ctx context.Context, address string) (entities.LedgerAccount, error) {
	if err := ctx.Err(); err != nil {
		return entities.LedgerAccount{}, err
	}
	account, err := l.client.AccountDetail(horizonclient.AccountRequest{AccountID: address})
	if err != nil {
		return entities.LedgerAccount{}, fmt.Errorf("load account %s: %w", address, err)
	}
	seq, err := account.GetSequenceNumber()
	if err != nil {
		return entities.LedgerAccount{}, fmt.Errorf("account %s sequence: %w", address, err)
	}
	return entities.LedgerAccount{Address: account.AccountID, Sequence: seq}, nil
}
