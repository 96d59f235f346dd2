package repositories

import (
	"context"

	"lotellar.backend/internal/domain/entities"
)

// WalletKeyRepository stores public keys registered against passkey contracts
type WalletKeyRepository interface {
	Upsert(ctx context.Context, key *entities.WalletKey) error
	// FindByKeyOrContract matches either column
	FindByKeyOrContract(ctx context.Context, value string) (*entities.WalletKey, error)
}
