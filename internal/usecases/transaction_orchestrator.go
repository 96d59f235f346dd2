package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"lotellar.backend/internal/domain/entities"
	domainerrors "lotellar.backend/internal/domain/errors"
	"lotellar.backend/internal/infrastructure/blockchain"
	"lotellar.backend/pkg/logger"
	"lotellar.backend/pkg/metrics"
	"lotellar.backend/pkg/utils"
)

// LedgerGateway is the remote network as seen by the orchestrator
type LedgerGateway interface {
	LoadAccount(ctx context.Context, address string) (entities.LedgerAccount, error)
	SimulateTransaction(ctx context.Context, txXDR string) (*blockchain.SimulateTransactionResponse, error)
	SendTransaction(ctx context.Context, txXDR string) (*blockchain.SendTransactionResponse, error)
	GetTransaction(ctx context.Context, hash string) (*blockchain.GetTransactionResponse, error)
}

// WalletProvider is the external signer. Any wallet must offer exactly this shape.
type WalletProvider interface {
	IsConnected(ctx context.Context) (bool, error)
	GetAddress(ctx context.Context) (string, error)
	SignTransaction(ctx context.Context, txXDR string, opts blockchain.SignOptions) (string, error)
}

// PendingTransactionTracker records submissions whose outcome is not yet known
type PendingTransactionTracker interface {
	Track(ctx context.Context, tx entities.PendingTransaction) error
}

// OrchestratorConfig is built once at start-up from the loaded configuration
type OrchestratorConfig struct {
	ContractID        string
	NetworkPassphrase string
	ExplorerURL       string
	BaseFee           int64
	TimeoutSeconds    int64
	Poll              utils.PollConfig
}

// TransactionOrchestrator turns a contract call into a confirmed, failed or
// indeterminate ledger outcome: resolve account, build, simulate, assemble,
// sign, submit, poll.
type TransactionOrchestrator struct {
	ledger  LedgerGateway
	cfg     OrchestratorConfig
	tracker PendingTransactionTracker
	now     func() time.Time
}

// NewTransactionOrchestrator creates a new orchestrator. tracker may be nil.
func NewTransactionOrchestrator(ledger LedgerGateway, cfg OrchestratorConfig, tracker PendingTransactionTracker) *TransactionOrchestrator {
	return &TransactionOrchestrator{
		ledger:  ledger,
		cfg:     cfg,
		tracker: tracker,
		now:     time.Now,
	}
}

// NetworkPassphrase returns the network the orchestrator signs for
func (o *TransactionOrchestrator) NetworkPassphrase() string {
	return o.cfg.NetworkPassphrase
}

// Invoke runs fn with args from the wallet's account. Running out of poll
// attempts is not an error: the result comes back with Indeterminate set.
func (o *TransactionOrchestrator) Invoke(ctx context.Context, wallet WalletProvider, fn entities.ContractFunction, args []interface{}) (result entities.TxResult, err error) {
	outcome := metrics.OutcomeConfirmed
	defer func() {
		if err != nil {
			outcome = outcomeFor(err)
			logger.Error(ctx, "Contract call failed", zap.String("function", string(fn)), zap.Error(err))
		} else if result.Indeterminate {
			outcome = metrics.OutcomeIndeterminate
		}
		metrics.RecordTransaction(string(fn), outcome)
	}()

	if wallet == nil {
		return result, domainerrors.ErrWalletNotConnected
	}
	connected, err := wallet.IsConnected(ctx)
	if err != nil {
		return result, fmt.Errorf("%w: %v", domainerrors.ErrWalletNotConnected, err)
	}
	if !connected {
		return result, domainerrors.ErrWalletNotConnected
	}
	source, err := wallet.GetAddress(ctx)
	if err != nil || source == "" {
		return result, fmt.Errorf("%w: no address", domainerrors.ErrWalletNotConnected)
	}

	scArgs, err := encodeContractArgs(fn, args)
	if err != nil {
		return result, err
	}

	account, err := o.ledger.LoadAccount(ctx, source)
	if err != nil {
		return result, fmt.Errorf("%w: %v", domainerrors.ErrAccountUnavailable, err)
	}

	params := blockchain.InvokeParams{
		SourceAddress:  account.Address,
		Sequence:       account.Sequence,
		ContractID:     o.cfg.ContractID,
		Function:       string(fn),
		Args:           scArgs,
		BaseFee:        o.cfg.BaseFee,
		TimeoutSeconds: o.cfg.TimeoutSeconds,
	}
	if params.SourceAddress == "" {
		params.SourceAddress = source
	}

	unsigned, err := blockchain.BuildInvokeTransaction(params, nil)
	if err != nil {
		return result, domainerrors.InternalError(err)
	}

	logger.Debug(ctx, "Simulating contract call", zap.String("function", string(fn)), zap.String("source", source))
	sim, err := o.ledger.SimulateTransaction(ctx, unsigned)
	if err != nil {
		return result, fmt.Errorf("%w: %v", domainerrors.ErrSimulationFailed, err)
	}
	if sim.Error != "" {
		return result, fmt.Errorf("%w: %s", domainerrors.ErrSimulationFailed, sim.Error)
	}

	assembled, err := blockchain.BuildInvokeTransaction(params, sim)
	if err != nil {
		return result, fmt.Errorf("%w: assemble: %v", domainerrors.ErrSimulationFailed, err)
	}

	signed, err := wallet.SignTransaction(ctx, assembled, blockchain.SignOptions{
		NetworkPassphrase: o.cfg.NetworkPassphrase,
		Address:           source,
	})
	if err != nil {
		return result, fmt.Errorf("%w: %v", domainerrors.ErrSignatureRejected, err)
	}
	if signed == "" {
		return result, fmt.Errorf("%w: wallet returned no signed transaction", domainerrors.ErrSignatureRejected)
	}

	sent, err := o.ledger.SendTransaction(ctx, signed)
	if err != nil {
		return result, fmt.Errorf("%w: %v", domainerrors.ErrSubmissionFailed, err)
	}
	result = entities.TxResult{
		Hash:   sent.Hash,
		Status: sent.Status,
	}
	if result.Hash == "" {
		if h, hashErr := blockchain.TransactionHash(signed, o.cfg.NetworkPassphrase); hashErr == nil {
			result.Hash = h
		}
	}
	result.ExplorerURL = o.explorerURL(result.Hash)
	ctx = logger.WithTransaction(ctx, result.Hash)
	if simulated, ok, _ := blockchain.SimulatedReturnValue(sim); ok {
		result.ReturnValue = simulated
	}

	switch sent.Status {
	case entities.TxStatusPending, entities.TxStatusDuplicate:
	case entities.TxStatusSuccess:
		return result, nil
	default:
		detail := sent.Status
		if sent.ErrorResultXDR != "" {
			detail += ": " + sent.ErrorResultXDR
		}
		return result, fmt.Errorf("%w: %s", domainerrors.ErrSubmissionFailed, detail)
	}

	logger.Info(ctx, "Transaction submitted", zap.String("function", string(fn)), zap.String("source", source))

	attempts := 0
	final, settled, err := utils.Poll(ctx, o.cfg.Poll, (*blockchain.GetTransactionResponse)(nil),
		func(ctx context.Context) (*blockchain.GetTransactionResponse, error) {
			attempts++
			return o.ledger.GetTransaction(ctx, result.Hash)
		},
		func(tx *blockchain.GetTransactionResponse) (bool, error) {
			if tx == nil {
				return false, nil
			}
			switch tx.Status {
			case entities.TxStatusSuccess:
				return true, nil
			case entities.TxStatusFailed:
				return false, fmt.Errorf("%w: %s", domainerrors.ErrTransactionFailed, failurePayload(tx))
			}
			return false, nil
		},
	)
	metrics.TransactionPollAttempts.Observe(float64(attempts))
	if err != nil {
		if final != nil {
			result.Status = final.Status
			result.Ledger = final.Ledger
			result.ResultXDR = final.ResultXDR
		}
		if errors.Is(err, domainerrors.ErrTransactionFailed) {
			return result, err
		}
		// context ended while polling: the submission itself still stands
		o.markIndeterminate(ctx, &result, fn, source)
		return result, nil
	}
	if !settled {
		o.markIndeterminate(ctx, &result, fn, source)
		return result, nil
	}

	result.Status = final.Status
	result.Ledger = final.Ledger
	if v, ok, decodeErr := blockchain.ConfirmedReturnValue(final.ResultMetaXDR); decodeErr != nil {
		logger.Warn(ctx, "Unreadable transaction meta", zap.Error(decodeErr))
	} else if ok {
		result.ReturnValue = v
	}
	logger.Info(ctx, "Transaction confirmed", zap.String("function", string(fn)), zap.Uint32("ledger", result.Ledger))
	return result, nil
}

// Query simulates a read-only call from a throwaway account and returns the decoded value
func (o *TransactionOrchestrator) Query(ctx context.Context, fn entities.ContractFunction, args []interface{}) (interface{}, error) {
	scArgs, err := encodeContractArgs(fn, args)
	if err != nil {
		return nil, err
	}
	unsigned, err := blockchain.BuildInvokeTransaction(blockchain.InvokeParams{
		SourceAddress:  blockchain.ReadOnlySource(),
		ContractID:     o.cfg.ContractID,
		Function:       string(fn),
		Args:           scArgs,
		TimeoutSeconds: o.cfg.TimeoutSeconds,
	}, nil)
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}
	sim, err := o.ledger.SimulateTransaction(ctx, unsigned)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrSimulationFailed, err)
	}
	if sim.Error != "" {
		return nil, fmt.Errorf("%w: %s", domainerrors.ErrSimulationFailed, sim.Error)
	}
	v, ok, err := blockchain.SimulatedReturnValue(sim)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrSimulationFailed, err)
	}
	if !ok {
		return nil, nil
	}
	return v, nil
}

// CheckStatus fetches the current status of a submitted transaction once
func (o *TransactionOrchestrator) CheckStatus(ctx context.Context, hash string) (*blockchain.GetTransactionResponse, error) {
	return o.ledger.GetTransaction(ctx, hash)
}

func (o *TransactionOrchestrator) markIndeterminate(ctx context.Context, result *entities.TxResult, fn entities.ContractFunction, source string) {
	result.Indeterminate = true
	result.Status = entities.TxStatusPending
	logger.Warn(ctx, "Transaction still pending after polling", zap.String("function", string(fn)))
	if o.tracker == nil || result.Hash == "" {
		return
	}
	err := o.tracker.Track(context.WithoutCancel(ctx), entities.PendingTransaction{
		Hash:        result.Hash,
		Function:    fn,
		Source:      source,
		SubmittedAt: o.now(),
	})
	if err != nil {
		logger.Error(ctx, "Failed to track pending transaction", zap.Error(err))
	}
}

func (o *TransactionOrchestrator) explorerURL(hash string) string {
	if o.cfg.ExplorerURL == "" || hash == "" {
		return ""
	}
	return strings.TrimRight(o.cfg.ExplorerURL, "/") + "/tx/" + hash
}

func failurePayload(tx *blockchain.GetTransactionResponse) string {
	if tx.ResultXDR != "" {
		return tx.ResultXDR
	}
	if tx.ResultMetaXDR != "" {
		return tx.ResultMetaXDR
	}
	return tx.Status
}

func outcomeFor(err error) string {
	switch {
	case errors.Is(err, domainerrors.ErrWalletNotConnected):
		return metrics.OutcomeWalletNotConnected
	case errors.Is(err, domainerrors.ErrUnknownFunction):
		return metrics.OutcomeUnknownFunction
	case errors.Is(err, domainerrors.ErrSimulationFailed):
		return metrics.OutcomeSimulationFailed
	case errors.Is(err, domainerrors.ErrSignatureRejected):
		return metrics.OutcomeSignatureRejected
	case errors.Is(err, domainerrors.ErrSubmissionFailed):
		return metrics.OutcomeSubmissionFailed
	case errors.Is(err, domainerrors.ErrTransactionFailed):
		return metrics.OutcomeFailed
	}
	return metrics.OutcomeError
}
