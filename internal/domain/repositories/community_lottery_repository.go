package repositories

import (
	"context"

	"lotellar.backend/internal/domain/entities"
)

// CommunityLotteryRepository persists the community lottery list as one document
type CommunityLotteryRepository interface {
	Load(ctx context.Context) ([]entities.CommunityLottery, error)
	Save(ctx context.Context, lotteries []entities.CommunityLottery) error
}
