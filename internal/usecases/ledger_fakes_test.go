package usecases_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stellar/go/keypair"
	"github.com/stellar/go/network"
	"github.com/stellar/go/strkey"
	"github.com/stellar/go/txnbuild"
	"github.com/stellar/go/xdr"
	"github.com/stretchr/testify/require"
	"lotellar.backend/internal/domain/entities"
	"lotellar.backend/internal/infrastructure/blockchain"
	"lotellar.backend/internal/usecases"
	"lotellar.backend/pkg/utils"
)

// fakeLedger scripts network responses and counts calls
type fakeLedger struct {
	mu sync.Mutex

	accountErr error
	simErr     error
	sim        *blockchain.SimulateTransactionResponse
	simulateFn func(txXDR string) (*blockchain.SimulateTransactionResponse, error)
	send       *blockchain.SendTransactionResponse
	sendErr    error
	statuses   []*blockchain.GetTransactionResponse
	statusErrs []error

	loadCalls, simCalls, sendCalls, getCalls int
	simulated                                []string
	sent                                     []string
}

func (f *fakeLedger) LoadAccount(_ context.Context, address string) (entities.LedgerAccount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loadCalls++
	if f.accountErr != nil {
		return entities.LedgerAccount{}, f.accountErr
	}
	return entities.LedgerAccount{Address: address, Sequence: 100}, nil
}

func (f *fakeLedger) SimulateTransaction(_ context.Context, txXDR string) (*blockchain.SimulateTransactionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.simCalls++
	f.simulated = append(f.simulated, txXDR)
	if f.simulateFn != nil {
		return f.simulateFn(txXDR)
	}
	if f.simErr != nil {
		return nil, f.simErr
	}
	return f.sim, nil
}

func (f *fakeLedger) SendTransaction(_ context.Context, txXDR string) (*blockchain.SendTransactionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sendCalls++
	f.sent = append(f.sent, txXDR)
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	return f.send, nil
}

func (f *fakeLedger) GetTransaction(_ context.Context, hash string) (*blockchain.GetTransactionResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.getCalls
	f.getCalls++
	if i < len(f.statusErrs) && f.statusErrs[i] != nil {
		return nil, f.statusErrs[i]
	}
	if len(f.statuses) == 0 {
		return &blockchain.GetTransactionResponse{Status: entities.TxStatusNotFound}, nil
	}
	if i >= len(f.statuses) {
		return f.statuses[len(f.statuses)-1], nil
	}
	return f.statuses[i], nil
}

func (f *fakeLedger) counts() (load, sim, send, get int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loadCalls, f.simCalls, f.sendCalls, f.getCalls
}

// fakeWallet implements the three-method wallet shape
type fakeWallet struct {
	connected bool
	address   string
	signErr   error

	signCalls int
	lastOpts  blockchain.SignOptions
}

func newFakeWallet() *fakeWallet {
	return &fakeWallet{connected: true, address: keypair.MustRandom().Address()}
}

func (w *fakeWallet) IsConnected(context.Context) (bool, error) { return w.connected, nil }

func (w *fakeWallet) GetAddress(context.Context) (string, error) {
	if w.address == "" {
		return "", errors.New("no address")
	}
	return w.address, nil
}

func (w *fakeWallet) SignTransaction(_ context.Context, txXDR string, opts blockchain.SignOptions) (string, error) {
	w.signCalls++
	w.lastOpts = opts
	if w.signErr != nil {
		return "", w.signErr
	}
	return "signed:" + txXDR, nil
}

type fakeTracker struct {
	tracked []entities.PendingTransaction
}

func (t *fakeTracker) Track(_ context.Context, tx entities.PendingTransaction) error {
	t.tracked = append(t.tracked, tx)
	return nil
}

func testContractID(t *testing.T) string {
	t.Helper()
	id, err := strkey.Encode(strkey.VersionByteContract, make([]byte, 32))
	require.NoError(t, err)
	return id
}

func testOrchestratorConfig(t *testing.T) usecases.OrchestratorConfig {
	return usecases.OrchestratorConfig{
		ContractID:        testContractID(t),
		NetworkPassphrase: network.TestNetworkPassphrase,
		ExplorerURL:       "https://stellar.expert/explorer/testnet",
		BaseFee:           100,
		TimeoutSeconds:    300,
		Poll:              utils.PollConfig{Attempts: 10, Interval: time.Millisecond},
	}
}

// simulationReturning builds a successful simulation whose return value is v
func simulationReturning(t *testing.T, v xdr.ScVal) *blockchain.SimulateTransactionResponse {
	t.Helper()
	data, err := xdr.MarshalBase64(xdr.SorobanTransactionData{ResourceFee: 1000})
	require.NoError(t, err)
	ret, err := xdr.MarshalBase64(v)
	require.NoError(t, err)
	return &blockchain.SimulateTransactionResponse{
		TransactionData: data,
		MinResourceFee:  1000,
		Results:         []blockchain.SimulateHostFunctionResult{{XDR: ret}},
	}
}

func u32Val(t *testing.T, n uint32) xdr.ScVal {
	t.Helper()
	v, err := blockchain.EncodeArg(blockchain.ArgU32, n)
	require.NoError(t, err)
	return v
}

func metaReturning(t *testing.T, v xdr.ScVal) string {
	t.Helper()
	meta, err := xdr.MarshalBase64(xdr.TransactionMeta{
		V:  3,
		V3: &xdr.TransactionMetaV3{SorobanMeta: &xdr.SorobanTransactionMeta{ReturnValue: v}},
	})
	require.NoError(t, err)
	return meta
}

// lotteryVal encodes a lottery struct as the contract returns it
func lotteryVal(t *testing.T, id uint32, name string, feeStroops int64, max uint32, participants []string, completed bool) xdr.ScVal {
	t.Helper()
	enc := func(kind blockchain.ArgKind, v interface{}) xdr.ScVal {
		out, err := blockchain.EncodeArg(kind, v)
		require.NoError(t, err)
		return out
	}
	items := make([]xdr.ScVal, 0, len(participants))
	for _, p := range participants {
		items = append(items, enc(blockchain.ArgAddress, p))
	}
	creator := keypair.MustRandom().Address()
	return blockchain.NewScStruct(map[string]xdr.ScVal{
		"id":               enc(blockchain.ArgU32, id),
		"name":             enc(blockchain.ArgString, name),
		"entry_fee":        enc(blockchain.ArgI128, feeStroops),
		"max_participants": enc(blockchain.ArgU32, max),
		"participants":     blockchain.NewScVec(items...),
		"winner":           {Type: xdr.ScValTypeScvVoid},
		"winner_tx_hash":   {Type: xdr.ScValTypeScvVoid},
		"is_completed":     {Type: xdr.ScValTypeScvBool, B: &completed},
		"created_at":       enc(blockchain.ArgU64, uint64(1700000000)),
		"creator":          enc(blockchain.ArgAddress, creator),
	})
}

func randomAddresses(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = keypair.MustRandom().Address()
	}
	return out
}

// functionOf returns the contract function an envelope invokes
func functionOf(t *testing.T, txXDR string) entities.ContractFunction {
	t.Helper()
	generic, err := txnbuild.TransactionFromXDR(txXDR)
	require.NoError(t, err)
	tx, ok := generic.Transaction()
	require.True(t, ok)
	op := tx.Operations()[0].(*txnbuild.InvokeHostFunction)
	return entities.ContractFunction(op.HostFunction.InvokeContract.FunctionName)
}

type walletsByAddress map[string]usecases.WalletProvider

func (w walletsByAddress) WalletFor(address string) usecases.WalletProvider {
	if wallet, ok := w[address]; ok {
		return wallet
	}
	return nil
}
