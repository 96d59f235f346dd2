package repositories

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"lotellar.backend/internal/domain/entities"
	domainerrors "lotellar.backend/internal/domain/errors"
	"lotellar.backend/internal/infrastructure/models"
)

type WalletKeyRepository struct {
	db *gorm.DB
}

func NewWalletKeyRepository(db *gorm.DB) *WalletKeyRepository {
	return &WalletKeyRepository{db: db}
}

// Upsert registers key.PublicKey, replacing the contract of an earlier registration
func (r *WalletKeyRepository) Upsert(ctx context.Context, key *entities.WalletKey) error {
	m := r.toModel(key)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "public_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"contract", "updated_at"}),
	}).Create(m).Error
	if err != nil {
		return err
	}
	key.CreatedAt = m.CreatedAt
	return nil
}

func (r *WalletKeyRepository) FindByKeyOrContract(ctx context.Context, value string) (*entities.WalletKey, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, domainerrors.ErrNotFound
	}
	var m models.PublicWalletKey
	err := r.db.WithContext(ctx).
		Where("public_key = ? OR contract = ?", value, value).
		Order("updated_at DESC").
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

func (r *WalletKeyRepository) toEntity(m *models.PublicWalletKey) *entities.WalletKey {
	return &entities.WalletKey{
		PublicKey: m.PublicKey,
		Contract:  m.Contract,
		CreatedAt: m.CreatedAt,
	}
}

func (r *WalletKeyRepository) toModel(e *entities.WalletKey) *models.PublicWalletKey {
	return &models.PublicWalletKey{
		PublicKey: strings.TrimSpace(e.PublicKey),
		Contract:  strings.TrimSpace(e.Contract),
	}
}
