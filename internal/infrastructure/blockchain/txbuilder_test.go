package blockchain

import (
	"testing"

	"github.com/stellar/go/keypair"
	"github.com/stellar/go/network"
	"github.com/stellar/go/txnbuild"
	"github.com/stellar/go/xdr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testInvokeParams(t *testing.T, source string) InvokeParams {
	t.Helper()
	name, err := EncodeArg(ArgString, "Weekly #1")
	require.NoError(t, err)
	return InvokeParams{
		SourceAddress:  source,
		Sequence:       41,
		ContractID:     testContractID(t),
		Function:       "create_lottery",
		Args:           []xdr.ScVal{name},
		BaseFee:        100,
		TimeoutSeconds: 300,
	}
}

func testSimulation(t *testing.T) *SimulateTransactionResponse {
	t.Helper()
	data := xdr.SorobanTransactionData{
		Resources: xdr.SorobanResources{
			Instructions: 1000,
			ReadBytes:    200,
			WriteBytes:   100,
		},
		ResourceFee: 5000,
	}
	encoded, err := xdr.MarshalBase64(data)
	require.NoError(t, err)

	id, err := EncodeArg(ArgU32, 7)
	require.NoError(t, err)
	ret, err := xdr.MarshalBase64(id)
	require.NoError(t, err)

	return &SimulateTransactionResponse{
		TransactionData: encoded,
		MinResourceFee:  5000,
		Results:         []SimulateHostFunctionResult{{XDR: ret}},
	}
}

func TestBuildInvokeTransaction_Unassembled(t *testing.T) {
	source := keypair.MustRandom().Address()
	out, err := BuildInvokeTransaction(testInvokeParams(t, source), nil)
	require.NoError(t, err)

	generic, err := txnbuild.TransactionFromXDR(out)
	require.NoError(t, err)
	tx, ok := generic.Transaction()
	require.True(t, ok)
	assert.Equal(t, int64(42), tx.SequenceNumber())
	assert.Equal(t, int64(100), tx.MaxFee())
	require.Len(t, tx.Operations(), 1)
	op, ok := tx.Operations()[0].(*txnbuild.InvokeHostFunction)
	require.True(t, ok)
	assert.Equal(t, xdr.ScSymbol("create_lottery"), op.HostFunction.InvokeContract.FunctionName)
	assert.Len(t, op.HostFunction.InvokeContract.Args, 1)
}

func TestBuildInvokeTransaction_AssembledAddsResourceFee(t *testing.T) {
	source := keypair.MustRandom().Address()
	out, err := BuildInvokeTransaction(testInvokeParams(t, source), testSimulation(t))
	require.NoError(t, err)

	generic, err := txnbuild.TransactionFromXDR(out)
	require.NoError(t, err)
	tx, ok := generic.Transaction()
	require.True(t, ok)
	assert.Equal(t, int64(5100), tx.MaxFee())

	env := tx.ToXDR()
	require.NotNil(t, env.V1)
	require.NotNil(t, env.V1.Tx.Ext.SorobanData)
	assert.Equal(t, xdr.Int64(5000), env.V1.Tx.Ext.SorobanData.ResourceFee)
}

func TestBuildInvokeTransaction_Errors(t *testing.T) {
	source := keypair.MustRandom().Address()
	p := testInvokeParams(t, source)
	p.ContractID = "bad"
	_, err := BuildInvokeTransaction(p, nil)
	assert.ErrorContains(t, err, "contract id")

	p = testInvokeParams(t, source)
	_, err = BuildInvokeTransaction(p, &SimulateTransactionResponse{TransactionData: "%%%"})
	assert.ErrorContains(t, err, "decode soroban data")
}

func TestBuildInvokeTransaction_BaseFeeFloor(t *testing.T) {
	p := testInvokeParams(t, ReadOnlySource())
	p.BaseFee = 0
	out, err := BuildInvokeTransaction(p, nil)
	require.NoError(t, err)
	generic, err := txnbuild.TransactionFromXDR(out)
	require.NoError(t, err)
	tx, _ := generic.Transaction()
	assert.Equal(t, int64(txnbuild.MinBaseFee), tx.MaxFee())
}

func TestSimulatedReturnValue(t *testing.T) {
	v, ok, err := SimulatedReturnValue(testSimulation(t))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint32(7), v)

	_, ok, err = SimulatedReturnValue(&SimulateTransactionResponse{})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConfirmedReturnValue(t *testing.T) {
	id, err := EncodeArg(ArgU32, 9)
	require.NoError(t, err)
	meta := xdr.TransactionMeta{
		V: 3,
		V3: &xdr.TransactionMetaV3{
			SorobanMeta: &xdr.SorobanTransactionMeta{ReturnValue: id},
		},
	}
	encoded, err := xdr.MarshalBase64(meta)
	require.NoError(t, err)

	v, ok, err := ConfirmedReturnValue(encoded)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint32(9), v)

	_, ok, err = ConfirmedReturnValue("")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKeypairWallet_SignTransaction(t *testing.T) {
	kp := keypair.MustRandom()
	w, err := NewKeypairWallet(kp.Seed())
	require.NoError(t, err)

	ctx := t.Context()
	connected, err := w.IsConnected(ctx)
	require.NoError(t, err)
	assert.True(t, connected)
	addr, err := w.GetAddress(ctx)
	require.NoError(t, err)
	assert.Equal(t, kp.Address(), addr)

	unsigned, err := BuildInvokeTransaction(testInvokeParams(t, kp.Address()), nil)
	require.NoError(t, err)

	signed, err := w.SignTransaction(ctx, unsigned, SignOptions{NetworkPassphrase: network.TestNetworkPassphrase, Address: kp.Address()})
	require.NoError(t, err)
	generic, err := txnbuild.TransactionFromXDR(signed)
	require.NoError(t, err)
	tx, _ := generic.Transaction()
	assert.Len(t, tx.Signatures(), 1)

	hash, err := TransactionHash(signed, network.TestNetworkPassphrase)
	require.NoError(t, err)
	assert.Len(t, hash, 64)

	_, err = w.SignTransaction(ctx, unsigned, SignOptions{NetworkPassphrase: network.TestNetworkPassphrase, Address: keypair.MustRandom().Address()})
	assert.ErrorContains(t, err, "cannot sign")

	_, err = w.SignTransaction(ctx, unsigned, SignOptions{Address: kp.Address()})
	assert.ErrorContains(t, err, "passphrase")

	_, err = w.SignTransaction(ctx, "garbage", SignOptions{NetworkPassphrase: network.TestNetworkPassphrase})
	assert.Error(t, err)
}

func TestKeypairWallet_NilAndInvalidSeed(t *testing.T) {
	_, err := NewKeypairWallet("SBAD")
	assert.ErrorContains(t, err, "invalid signer seed")

	var w *KeypairWallet
	connected, err := w.IsConnected(t.Context())
	require.NoError(t, err)
	assert.False(t, connected)
	_, err = w.GetAddress(t.Context())
	assert.Error(t, err)
}

func TestKeyring(t *testing.T) {
	a, b := keypair.MustRandom(), keypair.MustRandom()
	k, err := NewKeyring(a.Seed() + ", " + b.Seed() + "," + a.Seed())
	require.NoError(t, err)
	assert.Equal(t, []string{a.Address(), b.Address()}, k.Addresses())
	assert.True(t, k.Has(b.Address()))
	assert.False(t, k.Has(keypair.MustRandom().Address()))
	assert.Nil(t, k.Wallet("GNOPE"))

	addr, err := k.Default().GetAddress(t.Context())
	require.NoError(t, err)
	assert.Equal(t, a.Address(), addr)

	empty, err := NewKeyring("")
	require.NoError(t, err)
	assert.Nil(t, empty.Default())

	_, err = NewKeyring("SBAD")
	assert.Error(t, err)
}
