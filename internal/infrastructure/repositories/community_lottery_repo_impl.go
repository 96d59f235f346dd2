package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"lotellar.backend/internal/domain/entities"
	"lotellar.backend/pkg/redis"
)

// CommunityLotteriesKey holds the whole community lottery list as JSON
const CommunityLotteriesKey = "community_lotteries"

var (
	getCommunityValue = redis.Get
	setCommunityValue = redis.Set
)

// CommunityLotteryRepository reads and rewrites the list wholesale.
// Callers serialize read-modify-write cycles.
type CommunityLotteryRepository struct{}

func NewCommunityLotteryRepository() *CommunityLotteryRepository {
	return &CommunityLotteryRepository{}
}

func (r *CommunityLotteryRepository) Load(ctx context.Context) ([]entities.CommunityLottery, error) {
	raw, err := getCommunityValue(ctx, CommunityLotteriesKey)
	if err != nil {
		if redis.IsNil(err) {
			return []entities.CommunityLottery{}, nil
		}
		return nil, err
	}
	out := []entities.CommunityLottery{}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, fmt.Errorf("decode community lotteries: %w", err)
	}
	return out, nil
}

func (r *CommunityLotteryRepository) Save(ctx context.Context, lotteries []entities.CommunityLottery) error {
	if lotteries == nil {
		lotteries = []entities.CommunityLottery{}
	}
	payload, err := json.Marshal(lotteries)
	if err != nil {
		return err
	}
	return setCommunityValue(ctx, CommunityLotteriesKey, string(payload), 0)
}
