package usecases

import (
	"context"
	"math"
	"math/big"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"lotellar.backend/internal/domain/entities"
	domainerrors "lotellar.backend/internal/domain/errors"
	"lotellar.backend/internal/infrastructure/blockchain"
	"lotellar.backend/pkg/logger"
	"lotellar.backend/pkg/utils"
)

// ContractInvoker submits contract calls
type ContractInvoker interface {
	Invoke(ctx context.Context, wallet WalletProvider, fn entities.ContractFunction, args []interface{}) (entities.TxResult, error)
}

// LotteryFetcher reads the lottery collections
type LotteryFetcher interface {
	FetchAll(ctx context.Context) ([]entities.Lottery, error)
	FetchCompleted(ctx context.Context) ([]entities.Lottery, error)
}

// WalletResolver returns the signer for a connected address, or nil
type WalletResolver interface {
	WalletFor(address string) WalletProvider
}

// KeyringWallets resolves wallets from the custodial keyring
type KeyringWallets struct {
	Keyring *blockchain.Keyring
}

func (k KeyringWallets) WalletFor(address string) WalletProvider {
	if w := k.Keyring.Wallet(address); w != nil {
		return w
	}
	return nil
}

// LotteryUsecase handles plain ledger lotteries
type LotteryUsecase struct {
	invoker         ContractInvoker
	reader          LotteryFetcher
	wallets         WalletResolver
	limits          ParticipantLimits
	defaultDuration uint64
}

// NewLotteryUsecase creates a new lottery usecase
func NewLotteryUsecase(invoker ContractInvoker, reader LotteryFetcher, wallets WalletResolver, limits ParticipantLimits, defaultDuration uint64) *LotteryUsecase {
	return &LotteryUsecase{
		invoker:         invoker,
		reader:          reader,
		wallets:         wallets,
		limits:          limits,
		defaultDuration: defaultDuration,
	}
}

// CreateLottery validates the whole creation form, invokes create_lottery
// and re-fetches the collection
func (u *LotteryUsecase) CreateLottery(ctx context.Context, address string, input *entities.CreateLotteryInput) (*entities.LotteryMutationResult, error) {
	draft := entities.LotteryDraft{
		Name:            input.Name,
		EntryFee:        input.EntryFee,
		Duration:        input.Duration,
		MaxParticipants: input.MaxParticipants,
	}
	if errs := ValidateLotteryDraft(draft, entities.FormLastStep, u.limits); len(errs) > 0 {
		return nil, domainerrors.NewFieldValidationError(errs)
	}

	wallet := u.wallets.WalletFor(address)
	if wallet == nil {
		return nil, domainerrors.ErrWalletNotConnected
	}

	duration := input.Duration
	if duration == 0 {
		duration = u.defaultDuration
	}
	fee, maxParticipants, err := creationArgs(input.EntryFee, input.MaxParticipants)
	if err != nil {
		return nil, err
	}

	res, err := u.invoker.Invoke(ctx, wallet, entities.FnCreateLottery, []interface{}{
		address,
		strings.TrimSpace(input.Name),
		fee,
		duration,
		maxParticipants,
	})
	if err != nil {
		return nil, err
	}

	out := &entities.LotteryMutationResult{Transaction: res}
	if id, ok := asUint64(res.ReturnValue); ok {
		out.LotteryID = strconv.FormatUint(id, 10)
	}
	out.Lotteries, _ = u.reader.FetchAll(ctx)
	logger.Info(ctx, "Lottery created", zap.String("lottery_id", out.LotteryID), zap.String("hash", res.Hash), zap.Bool("indeterminate", res.Indeterminate))
	return out, nil
}

// EnterLottery invokes enter_lottery for address and re-fetches the collection.
// Duplicate entry and capacity are enforced by the contract.
func (u *LotteryUsecase) EnterLottery(ctx context.Context, address, lotteryID string) (*entities.LotteryMutationResult, error) {
	id, err := ParseLotteryID(lotteryID)
	if err != nil {
		return nil, err
	}

	wallet := u.wallets.WalletFor(address)
	if wallet == nil {
		return nil, domainerrors.ErrWalletNotConnected
	}

	res, err := u.invoker.Invoke(ctx, wallet, entities.FnEnterLottery, []interface{}{address, id})
	if err != nil {
		return nil, err
	}

	out := &entities.LotteryMutationResult{Transaction: res, LotteryID: lotteryID}
	out.Lotteries, _ = u.reader.FetchAll(ctx)
	logger.Info(ctx, "Lottery entered", zap.String("lottery_id", lotteryID), zap.String("hash", res.Hash))
	return out, nil
}

// ListLotteries returns a page of lotteries. The error, if any, is a notice:
// the returned slice is always usable.
func (u *LotteryUsecase) ListLotteries(ctx context.Context, status entities.LotteryStatus, pagination utils.PaginationParams) ([]entities.Lottery, utils.PaginationMeta, error) {
	var (
		all []entities.Lottery
		err error
	)
	if status == entities.LotteryStatusCompleted {
		all, err = u.reader.FetchCompleted(ctx)
	} else {
		all, err = u.reader.FetchAll(ctx)
	}

	filtered := make([]entities.Lottery, 0, len(all))
	for _, l := range all {
		if status.Matches(l) {
			filtered = append(filtered, l)
		}
	}
	page, meta := utils.Paginate(filtered, pagination)
	return page, meta, err
}

// GetLottery finds one lottery by ledger id
func (u *LotteryUsecase) GetLottery(ctx context.Context, lotteryID string) (*entities.Lottery, error) {
	if _, err := ParseLotteryID(lotteryID); err != nil {
		return nil, err
	}
	all, err := u.reader.FetchAll(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == lotteryID {
			return &all[i], nil
		}
	}
	return nil, domainerrors.NotFound("lottery not found")
}

// ParseLotteryID validates a ledger-assigned lottery id
// creationArgs converts the draft's entry fee and participant cap to the
// contract's i128 and u32 arguments
func creationArgs(entryFee float64, maxParticipants int) (*big.Int, uint32, error) {
	fee, err := utils.ToStroops(entryFee)
	if err != nil {
		return nil, 0, domainerrors.NewFieldValidationError(map[string]string{"entryFee": entryFeeRangeMessage})
	}
	if maxParticipants < 0 || uint64(maxParticipants) > math.MaxUint32 {
		return nil, 0, domainerrors.NewFieldValidationError(map[string]string{"maxParticipants": participantCapMessage})
	}
	return fee, uint32(maxParticipants), nil
}

func ParseLotteryID(s string) (uint32, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, domainerrors.BadRequest("invalid lottery id")
	}
	return uint32(id), nil
}
