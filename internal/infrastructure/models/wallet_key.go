package models

import "time"

// PublicWalletKey links a wallet public key to its passkey contract
type PublicWalletKey struct {
	PublicKey string `gorm:"column:public_key;type:varchar(255);primaryKey"`
	Contract  string `gorm:"column:contract;type:varchar(255);not null;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (PublicWalletKey) TableName() string {
	return "public_wallet_key"
}
