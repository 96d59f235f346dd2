package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stellar/go/txnbuild"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"lotellar.backend/internal/domain/entities"
	domainerrors "lotellar.backend/internal/domain/errors"
	"lotellar.backend/internal/infrastructure/blockchain"
	"lotellar.backend/internal/usecases"
)

func createArgs(w *fakeWallet) []interface{} {
	return []interface{}{w.address, "Weekly #1", int64(20_000_000), uint64(3600), uint32(10)}
}

func TestOrchestrator_UnknownFunctionFailsBeforeSimulation(t *testing.T) {
	ledger := &fakeLedger{}
	wallet := newFakeWallet()
	o := usecases.NewTransactionOrchestrator(ledger, testOrchestratorConfig(t), nil)

	for _, fn := range []entities.ContractFunction{"draw_winner", "", "CREATE_LOTTERY"} {
		_, err := o.Invoke(context.Background(), wallet, fn, nil)
		assert.ErrorIs(t, err, domainerrors.ErrUnknownFunction)
		assert.Contains(t, err.Error(), string(fn))
	}

	_, err := o.Query(context.Background(), "vote", nil)
	assert.ErrorIs(t, err, domainerrors.ErrUnknownFunction)

	load, sim, send, _ := ledger.counts()
	assert.Zero(t, load)
	assert.Zero(t, sim)
	assert.Zero(t, send)
	assert.Zero(t, wallet.signCalls)
}

func TestOrchestrator_WalletNotConnected(t *testing.T) {
	ledger := &fakeLedger{}
	o := usecases.NewTransactionOrchestrator(ledger, testOrchestratorConfig(t), nil)

	wallet := newFakeWallet()
	wallet.connected = false
	_, err := o.Invoke(context.Background(), wallet, entities.FnEnterLottery, []interface{}{wallet.address, uint32(1)})
	assert.ErrorIs(t, err, domainerrors.ErrWalletNotConnected)

	_, err = o.Invoke(context.Background(), nil, entities.FnEnterLottery, nil)
	assert.ErrorIs(t, err, domainerrors.ErrWalletNotConnected)

	noAddr := newFakeWallet()
	noAddr.address = ""
	_, err = o.Invoke(context.Background(), noAddr, entities.FnEnterLottery, nil)
	assert.ErrorIs(t, err, domainerrors.ErrWalletNotConnected)

	load, _, _, _ := ledger.counts()
	assert.Zero(t, load)
}

func TestOrchestrator_ArgumentShapeMismatch(t *testing.T) {
	ledger := &fakeLedger{}
	wallet := newFakeWallet()
	o := usecases.NewTransactionOrchestrator(ledger, testOrchestratorConfig(t), nil)

	_, err := o.Invoke(context.Background(), wallet, entities.FnEnterLottery, []interface{}{wallet.address})
	var appErr *domainerrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, domainerrors.CodeInvalidInput, appErr.Code)

	_, err = o.Invoke(context.Background(), wallet, entities.FnEnterLottery, []interface{}{"not-an-address", uint32(1)})
	require.ErrorAs(t, err, &appErr)
	assert.Contains(t, appErr.Message, "argument 0")
}

func TestOrchestrator_AccountUnavailable(t *testing.T) {
	ledger := &fakeLedger{accountErr: errors.New("404 not found")}
	wallet := newFakeWallet()
	o := usecases.NewTransactionOrchestrator(ledger, testOrchestratorConfig(t), nil)

	_, err := o.Invoke(context.Background(), wallet, entities.FnCreateLottery, createArgs(wallet))
	assert.ErrorIs(t, err, domainerrors.ErrAccountUnavailable)
	_, sim, _, _ := ledger.counts()
	assert.Zero(t, sim)
}

func TestOrchestrator_SimulationErrorFailsFast(t *testing.T) {
	ledger := &fakeLedger{sim: &blockchain.SimulateTransactionResponse{Error: "HostError: Error(Contract, #3)"}}
	wallet := newFakeWallet()
	o := usecases.NewTransactionOrchestrator(ledger, testOrchestratorConfig(t), nil)

	for i := 0; i < 3; i++ {
		_, err := o.Invoke(context.Background(), wallet, entities.FnCreateLottery, createArgs(wallet))
		assert.ErrorIs(t, err, domainerrors.ErrSimulationFailed)
		assert.Contains(t, err.Error(), "HostError: Error(Contract, #3)")
	}
	assert.Zero(t, wallet.signCalls)
	_, sim, send, _ := ledger.counts()
	assert.Equal(t, 3, sim)
	assert.Zero(t, send)

	ledger = &fakeLedger{simErr: errors.New("connection refused")}
	o = usecases.NewTransactionOrchestrator(ledger, testOrchestratorConfig(t), nil)
	_, err := o.Invoke(context.Background(), wallet, entities.FnCreateLottery, createArgs(wallet))
	assert.ErrorIs(t, err, domainerrors.ErrSimulationFailed)
	assert.Zero(t, wallet.signCalls)
}

func TestOrchestrator_SignatureRejected(t *testing.T) {
	ledger := &fakeLedger{sim: simulationReturning(t, u32Val(t, 1))}
	wallet := newFakeWallet()
	wallet.signErr = errors.New("user declined")
	o := usecases.NewTransactionOrchestrator(ledger, testOrchestratorConfig(t), nil)

	_, err := o.Invoke(context.Background(), wallet, entities.FnCreateLottery, createArgs(wallet))
	assert.ErrorIs(t, err, domainerrors.ErrSignatureRejected)
	assert.Contains(t, err.Error(), "user declined")
	_, _, send, _ := ledger.counts()
	assert.Zero(t, send)
}

func TestOrchestrator_SubmissionFailures(t *testing.T) {
	wallet := newFakeWallet()

	ledger := &fakeLedger{sim: simulationReturning(t, u32Val(t, 1)), sendErr: errors.New("503")}
	o := usecases.NewTransactionOrchestrator(ledger, testOrchestratorConfig(t), nil)
	_, err := o.Invoke(context.Background(), wallet, entities.FnCreateLottery, createArgs(wallet))
	assert.ErrorIs(t, err, domainerrors.ErrSubmissionFailed)

	for _, status := range []string{entities.TxStatusError, entities.TxStatusTryAgainLater} {
		ledger = &fakeLedger{
			sim:  simulationReturning(t, u32Val(t, 1)),
			send: &blockchain.SendTransactionResponse{Status: status, Hash: "h1", ErrorResultXDR: "AAAAtxBad"},
		}
		o = usecases.NewTransactionOrchestrator(ledger, testOrchestratorConfig(t), nil)
		res, err := o.Invoke(context.Background(), wallet, entities.FnCreateLottery, createArgs(wallet))
		assert.ErrorIs(t, err, domainerrors.ErrSubmissionFailed)
		assert.Contains(t, err.Error(), status)
		assert.Equal(t, "h1", res.Hash)
		_, _, _, get := ledger.counts()
		assert.Zero(t, get)
	}
}

func TestOrchestrator_ConfirmedCreate(t *testing.T) {
	ledger := &fakeLedger{
		sim:  simulationReturning(t, u32Val(t, 6)),
		send: &blockchain.SendTransactionResponse{Status: entities.TxStatusPending, Hash: "abc"},
		statuses: []*blockchain.GetTransactionResponse{
			{Status: entities.TxStatusNotFound},
			{Status: entities.TxStatusNotFound},
			{Status: entities.TxStatusSuccess, Ledger: 77, ResultMetaXDR: metaReturning(t, u32Val(t, 7))},
		},
	}
	wallet := newFakeWallet()
	o := usecases.NewTransactionOrchestrator(ledger, testOrchestratorConfig(t), nil)

	res, err := o.Invoke(context.Background(), wallet, entities.FnCreateLottery, createArgs(wallet))
	require.NoError(t, err)
	assert.True(t, res.Confirmed())
	assert.False(t, res.Indeterminate)
	assert.Equal(t, "abc", res.Hash)
	assert.Equal(t, uint32(77), res.Ledger)
	assert.Equal(t, uint32(7), res.ReturnValue)
	assert.Equal(t, "https://stellar.expert/explorer/testnet/tx/abc", res.ExplorerURL)

	load, sim, send, get := ledger.counts()
	assert.Equal(t, 1, load)
	assert.Equal(t, 1, sim)
	assert.Equal(t, 1, send)
	assert.Equal(t, 3, get)

	assert.Equal(t, 1, wallet.signCalls)
	assert.Equal(t, wallet.address, wallet.lastOpts.Address)
	assert.Equal(t, o.NetworkPassphrase(), wallet.lastOpts.NetworkPassphrase)

	// the simulated envelope carries the typed arguments in order
	generic, err := txnbuild.TransactionFromXDR(ledger.simulated[0])
	require.NoError(t, err)
	tx, ok := generic.Transaction()
	require.True(t, ok)
	op := tx.Operations()[0].(*txnbuild.InvokeHostFunction)
	args := op.HostFunction.InvokeContract.Args
	require.Len(t, args, 5)
	assert.Equal(t, "create_lottery", string(op.HostFunction.InvokeContract.FunctionName))
	assert.Equal(t, "Weekly #1", string(*args[1].Str))
	assert.Equal(t, uint64(20_000_000), uint64(args[2].I128.Lo))
	assert.Equal(t, int64(0), int64(args[2].I128.Hi))
	assert.Equal(t, uint64(3600), uint64(*args[3].U64))
	assert.Equal(t, uint32(10), uint32(*args[4].U32))

	// the wallet signed the assembled envelope, which carries the resource fee
	generic, err = txnbuild.TransactionFromXDR(ledger.sent[0][len("signed:"):])
	require.NoError(t, err)
	assembled, _ := generic.Transaction()
	assert.Equal(t, int64(1100), assembled.MaxFee())
}

func TestOrchestrator_PollingTimeoutIsIndeterminate(t *testing.T) {
	ledger := &fakeLedger{
		sim:  simulationReturning(t, u32Val(t, 3)),
		send: &blockchain.SendTransactionResponse{Status: entities.TxStatusPending, Hash: "slow"},
	}
	tracker := &fakeTracker{}
	wallet := newFakeWallet()
	o := usecases.NewTransactionOrchestrator(ledger, testOrchestratorConfig(t), tracker)

	res, err := o.Invoke(context.Background(), wallet, entities.FnEnterLottery, []interface{}{wallet.address, uint32(3)})
	require.NoError(t, err)
	assert.True(t, res.Indeterminate)
	assert.Equal(t, entities.TxStatusPending, res.Status)
	assert.Equal(t, "slow", res.Hash)
	assert.False(t, res.Confirmed())

	_, _, _, get := ledger.counts()
	assert.Equal(t, 10, get)
	require.Len(t, tracker.tracked, 1)
	assert.Equal(t, "slow", tracker.tracked[0].Hash)
	assert.Equal(t, entities.FnEnterLottery, tracker.tracked[0].Function)
	assert.Equal(t, wallet.address, tracker.tracked[0].Source)
}

func TestOrchestrator_TransientPollErrors(t *testing.T) {
	ledger := &fakeLedger{
		sim:        simulationReturning(t, u32Val(t, 3)),
		send:       &blockchain.SendTransactionResponse{Status: entities.TxStatusDuplicate, Hash: "dup"},
		statusErrs: []error{errors.New("timeout"), errors.New("timeout")},
		statuses: []*blockchain.GetTransactionResponse{
			nil, nil,
			{Status: entities.TxStatusSuccess, Ledger: 9},
		},
	}
	wallet := newFakeWallet()
	o := usecases.NewTransactionOrchestrator(ledger, testOrchestratorConfig(t), nil)

	res, err := o.Invoke(context.Background(), wallet, entities.FnEnterLottery, []interface{}{wallet.address, uint32(3)})
	require.NoError(t, err)
	assert.True(t, res.Confirmed())
	// without meta the simulated return value stands
	assert.Equal(t, uint32(3), res.ReturnValue)
}

func TestOrchestrator_ConfirmedFailure(t *testing.T) {
	ledger := &fakeLedger{
		sim:  simulationReturning(t, u32Val(t, 3)),
		send: &blockchain.SendTransactionResponse{Status: entities.TxStatusPending, Hash: "bad"},
		statuses: []*blockchain.GetTransactionResponse{
			{Status: entities.TxStatusFailed, ResultXDR: "AAAAAAAAAGT////5AAAAAA=="},
		},
	}
	wallet := newFakeWallet()
	o := usecases.NewTransactionOrchestrator(ledger, testOrchestratorConfig(t), nil)

	res, err := o.Invoke(context.Background(), wallet, entities.FnEnterLottery, []interface{}{wallet.address, uint32(3)})
	assert.ErrorIs(t, err, domainerrors.ErrTransactionFailed)
	assert.Contains(t, err.Error(), "AAAAAAAAAGT////5AAAAAA==")
	assert.Equal(t, entities.TxStatusFailed, res.Status)
	_, _, _, get := ledger.counts()
	assert.Equal(t, 1, get)
}

func TestOrchestrator_Query(t *testing.T) {
	players := randomAddresses(2)
	ledger := &fakeLedger{sim: simulationReturning(t, blockchain.NewScVec(
		lotteryVal(t, 1, "Weekly #1", 20_000_000, 10, players, false),
	))}
	o := usecases.NewTransactionOrchestrator(ledger, testOrchestratorConfig(t), nil)

	v, err := o.Query(context.Background(), entities.FnGetAllLotteries, nil)
	require.NoError(t, err)
	items, ok := v.([]interface{})
	require.True(t, ok)
	assert.Len(t, items, 1)

	// read-only calls are built from a throwaway source at the minimum fee
	generic, err := txnbuild.TransactionFromXDR(ledger.simulated[0])
	require.NoError(t, err)
	tx, _ := generic.Transaction()
	assert.Equal(t, int64(txnbuild.MinBaseFee), tx.MaxFee())
	assert.NotContains(t, players, tx.SourceAccount().AccountID)

	ledger = &fakeLedger{sim: &blockchain.SimulateTransactionResponse{Error: "no such function"}}
	o = usecases.NewTransactionOrchestrator(ledger, testOrchestratorConfig(t), nil)
	_, err = o.Query(context.Background(), entities.FnGetAllLotteries, nil)
	assert.ErrorIs(t, err, domainerrors.ErrSimulationFailed)

	ledger = &fakeLedger{sim: &blockchain.SimulateTransactionResponse{}}
	o = usecases.NewTransactionOrchestrator(ledger, testOrchestratorConfig(t), nil)
	v, err = o.Query(context.Background(), entities.FnGetAllLotteries, nil)
	require.NoError(t, err)
	assert.Nil(t, v)
}
