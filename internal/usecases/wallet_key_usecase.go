package usecases

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.uber.org/zap"
	"lotellar.backend/internal/domain/entities"
	domainerrors "lotellar.backend/internal/domain/errors"
	"lotellar.backend/internal/domain/repositories"
	"lotellar.backend/pkg/logger"
)

const (
	walletKeyCacheSize = 1024
	walletKeyCacheTTL  = 10 * time.Minute
)

// WalletKeyUsecase registers and looks up passkey wallet public keys
type WalletKeyUsecase struct {
	repo  repositories.WalletKeyRepository
	cache *expirable.LRU[string, *entities.WalletKey]
}

// NewWalletKeyUsecase creates a new wallet key usecase
func NewWalletKeyUsecase(repo repositories.WalletKeyRepository) *WalletKeyUsecase {
	return &WalletKeyUsecase{
		repo:  repo,
		cache: expirable.NewLRU[string, *entities.WalletKey](walletKeyCacheSize, nil, walletKeyCacheTTL),
	}
}

// SignUp stores the registration and returns the registered public key
func (u *WalletKeyUsecase) SignUp(ctx context.Context, input *entities.SignUpInput) (string, error) {
	input.PublicKey = strings.TrimSpace(input.PublicKey)
	input.Contract = strings.TrimSpace(input.Contract)
	switch {
	case input.PublicKey == "":
		return "", domainerrors.Unprocessable("publicKey is required")
	case input.Contract == "":
		return "", domainerrors.Unprocessable("contract is required")
	}

	key := &entities.WalletKey{PublicKey: input.PublicKey, Contract: input.Contract}
	if err := u.repo.Upsert(ctx, key); err != nil {
		logger.Error(ctx, "Failed to register wallet key", zap.Error(err))
		return "", domainerrors.InternalError(err)
	}
	// a re-registration can move a key to another contract
	u.cache.Purge()
	return key.PublicKey, nil
}

// Lookup finds a registration by public key or contract
func (u *WalletKeyUsecase) Lookup(ctx context.Context, value string) (*entities.WalletKey, error) {
	value = strings.TrimSpace(value)
	if key, ok := u.cache.Get(value); ok {
		return key, nil
	}
	key, err := u.repo.FindByKeyOrContract(ctx, value)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("wallet key not found")
		}
		return nil, domainerrors.InternalError(err)
	}
	u.cache.Add(value, key)
	return key, nil
}
