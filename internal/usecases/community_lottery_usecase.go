package usecases

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"lotellar.backend/internal/domain/entities"
	domainerrors "lotellar.backend/internal/domain/errors"
	"lotellar.backend/internal/domain/repositories"
	"lotellar.backend/pkg/logger"
	"lotellar.backend/pkg/utils"
)

// CommunityLotteryUsecase manages lotteries with off-ledger metadata. The
// ledger stays authoritative for participants, winner and completion.
type CommunityLotteryUsecase struct {
	invoker ContractInvoker
	reader  LotteryFetcher
	wallets WalletResolver
	repo    repositories.CommunityLotteryRepository

	// mu serializes read-modify-write cycles on the stored list
	mu  sync.Mutex
	now func() time.Time
}

// NewCommunityLotteryUsecase creates a new community lottery usecase
func NewCommunityLotteryUsecase(invoker ContractInvoker, reader LotteryFetcher, wallets WalletResolver, repo repositories.CommunityLotteryRepository) *CommunityLotteryUsecase {
	return &CommunityLotteryUsecase{
		invoker: invoker,
		reader:  reader,
		wallets: wallets,
		repo:    repo,
		now:     time.Now,
	}
}

// Create validates the full community form, creates the lottery on-chain and
// stores its metadata with the ledger-assigned id.
func (u *CommunityLotteryUsecase) Create(ctx context.Context, address string, draft *entities.CommunityLotteryDraft) (*entities.CommunityMutationResult, error) {
	if errs := ValidateCommunityDraft(*draft, entities.FormLastStep); len(errs) > 0 {
		return nil, domainerrors.NewFieldValidationError(errs)
	}
	wallet := u.wallets.WalletFor(address)
	if wallet == nil {
		return nil, domainerrors.ErrWalletNotConnected
	}

	fee, maxParticipants, err := creationArgs(draft.EntryFee, draft.MaxParticipants)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(draft.Name)
	res, err := u.invoker.Invoke(ctx, wallet, entities.FnCreateLottery, []interface{}{
		address,
		name,
		fee,
		draft.DurationSeconds(),
		maxParticipants,
	})
	if err != nil {
		return nil, err
	}

	now := u.now()
	record := entities.CommunityLottery{
		Lottery: entities.Lottery{
			ID:              utils.NewID(),
			Name:            name,
			EntryFee:        draft.EntryFee,
			MaxParticipants: maxParticipants,
			Participants:    []string{},
			CreatedAt:       now.UnixMilli(),
			Creator:         address,
		},
		Description:  strings.TrimSpace(draft.Description),
		WinnerCount:  draft.WinnerCount,
		Duration:     draft.DurationSeconds(),
		Requirements: draft.Requirements,
		UpdatedAt:    now,
	}
	if id, ok := asUint64(res.ReturnValue); ok {
		record.LedgerID = strconv.FormatUint(id, 10)
	} else {
		logger.Warn(ctx, "Community lottery created without a ledger id", zap.String("hash", res.Hash))
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	list, err := u.repo.Load(ctx)
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}
	if err := u.repo.Save(ctx, append(list, record)); err != nil {
		return nil, domainerrors.InternalError(err)
	}

	logger.Info(ctx, "Community lottery created",
		zap.String("id", record.ID),
		zap.String("ledger_id", record.LedgerID),
		zap.String("hash", res.Hash),
	)
	return &entities.CommunityMutationResult{Transaction: res, Lottery: record}, nil
}

// Enter joins the on-chain lottery behind a community record and provisionally
// records the participant until the next reconciliation.
func (u *CommunityLotteryUsecase) Enter(ctx context.Context, address, id string) (*entities.CommunityMutationResult, error) {
	wallet := u.wallets.WalletFor(address)
	if wallet == nil {
		return nil, domainerrors.ErrWalletNotConnected
	}

	record, err := u.find(ctx, id)
	if err != nil {
		return nil, err
	}
	ledgerID, err := u.resolveLedgerID(ctx, record)
	if err != nil {
		return nil, err
	}

	res, err := u.invoker.Invoke(ctx, wallet, entities.FnEnterLottery, []interface{}{address, ledgerID})
	if err != nil {
		return nil, err
	}

	u.mu.Lock()
	defer u.mu.Unlock()
	list, err := u.repo.Load(ctx)
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}
	for i := range list {
		if list[i].ID != id {
			continue
		}
		if !list[i].HasParticipant(address) {
			list[i].Participants = append(list[i].Participants, address)
		}
		list[i].RecomputePrizePool()
		list[i].UpdatedAt = u.now()
		*record = list[i]
		break
	}
	if err := u.repo.Save(ctx, list); err != nil {
		return nil, domainerrors.InternalError(err)
	}

	logger.Info(ctx, "Community lottery entered", zap.String("id", id), zap.Uint32("ledger_id", ledgerID), zap.String("hash", res.Hash))
	return &entities.CommunityMutationResult{Transaction: res, Lottery: *record}, nil
}

// List returns every stored record reconciled with the current ledger state.
// When the ledger read fails the stored records come back with the error.
func (u *CommunityLotteryUsecase) List(ctx context.Context) ([]entities.CommunityLottery, error) {
	list, err := u.repo.Load(ctx)
	if err != nil {
		return []entities.CommunityLottery{}, domainerrors.InternalError(err)
	}
	onChain, fetchErr := u.reader.FetchAll(ctx)
	if fetchErr != nil {
		return list, fmt.Errorf("%w: %w", domainerrors.ErrLedgerUnavailable, fetchErr)
	}
	for i := range list {
		reconcile(&list[i], onChain)
	}
	return list, nil
}

// Get returns one reconciled record
func (u *CommunityLotteryUsecase) Get(ctx context.Context, id string) (*entities.CommunityLottery, error) {
	record, err := u.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if onChain, fetchErr := u.reader.FetchAll(ctx); fetchErr == nil {
		reconcile(record, onChain)
	}
	return record, nil
}

func (u *CommunityLotteryUsecase) find(ctx context.Context, id string) (*entities.CommunityLottery, error) {
	list, err := u.repo.Load(ctx)
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}
	for i := range list {
		if list[i].ID == id {
			return &list[i], nil
		}
	}
	return nil, domainerrors.NotFound("community lottery not found")
}

func (u *CommunityLotteryUsecase) resolveLedgerID(ctx context.Context, record *entities.CommunityLottery) (uint32, error) {
	if record.LedgerID != "" {
		return ParseLotteryID(record.LedgerID)
	}
	onChain, err := u.reader.FetchAll(ctx)
	if err != nil {
		return 0, err
	}
	match, _ := matchByName(record.Name, onChain)
	if match == nil {
		return 0, domainerrors.NotFound("community lottery has no on-chain counterpart")
	}
	return ParseLotteryID(match.ID)
}

// reconcile copies ledger-owned fields onto record. Records without a ledger
// id are joined by name, first match wins.
func reconcile(record *entities.CommunityLottery, onChain []entities.Lottery) {
	var match *entities.Lottery
	if record.LedgerID != "" {
		for i := range onChain {
			if onChain[i].ID == record.LedgerID {
				match = &onChain[i]
				break
			}
		}
		record.Ambiguous = false
	} else {
		var count int
		match, count = matchByName(record.Name, onChain)
		record.Ambiguous = count > 1
	}
	if match == nil {
		return
	}
	record.Participants = append([]string{}, match.Participants...)
	record.Winner = match.Winner
	record.WinnerTxHash = match.WinnerTxHash
	record.IsCompleted = match.IsCompleted
	record.EntryFee = match.EntryFee
	record.MaxParticipants = match.MaxParticipants
	record.RecomputePrizePool()
}

func matchByName(name string, onChain []entities.Lottery) (*entities.Lottery, int) {
	var (
		first *entities.Lottery
		count int
	)
	for i := range onChain {
		if onChain[i].Name != name {
			continue
		}
		if first == nil {
			first = &onChain[i]
		}
		count++
	}
	return first, count
}
