package blockchain

import (
	"fmt"

	"github.com/stellar/go/keypair"
	"github.com/stellar/go/txnbuild"
	"github.com/stellar/go/xdr"
)

// InvokeParams describes a single contract invocation
type InvokeParams struct {
	SourceAddress  string
	Sequence       int64
	ContractID     string
	Function       string
	Args           []xdr.ScVal
	BaseFee        int64
	TimeoutSeconds int64
}

// BuildInvokeTransaction builds a one-operation invocation envelope. When
// sim is non-nil the result is the assembled transaction: the simulated
// footprint, auth entries and resource fee are merged in.
func BuildInvokeTransaction(p InvokeParams, sim *SimulateTransactionResponse) (string, error) {
	contract, err := EncodeAddress(p.ContractID)
	if err != nil {
		return "", fmt.Errorf("contract id: %w", err)
	}

	op := &txnbuild.InvokeHostFunction{
		HostFunction: xdr.HostFunction{
			Type: xdr.HostFunctionTypeHostFunctionTypeInvokeContract,
			InvokeContract: &xdr.InvokeContractArgs{
				ContractAddress: contract,
				FunctionName:    xdr.ScSymbol(p.Function),
				Args:            xdr.ScVec(p.Args),
			},
		},
		SourceAccount: p.SourceAddress,
	}

	fee := p.BaseFee
	if fee < txnbuild.MinBaseFee {
		fee = txnbuild.MinBaseFee
	}

	if sim != nil {
		var data xdr.SorobanTransactionData
		if err := xdr.SafeUnmarshalBase64(sim.TransactionData, &data); err != nil {
			return "", fmt.Errorf("decode soroban data: %w", err)
		}
		op.Ext = xdr.TransactionExt{V: 1, SorobanData: &data}

		if len(sim.Results) > 0 {
			for _, raw := range sim.Results[0].Auth {
				var entry xdr.SorobanAuthorizationEntry
				if err := xdr.SafeUnmarshalBase64(raw, &entry); err != nil {
					return "", fmt.Errorf("decode auth entry: %w", err)
				}
				op.Auth = append(op.Auth, entry)
			}
		}
		fee += sim.MinResourceFee
	}

	timeout := p.TimeoutSeconds
	if timeout <= 0 {
		timeout = 300
	}

	tx, err := txnbuild.NewTransaction(txnbuild.TransactionParams{
		SourceAccount:        &txnbuild.SimpleAccount{AccountID: p.SourceAddress, Sequence: p.Sequence},
		IncrementSequenceNum: true,
		Operations:           []txnbuild.Operation{op},
		BaseFee:              fee,
		Preconditions:        txnbuild.Preconditions{TimeBounds: txnbuild.NewTimeout(timeout)},
	})
	if err != nil {
		return "", fmt.Errorf("build transaction: %w", err)
	}
	return tx.Base64()
}

// ReadOnlySource returns a throwaway account for simulation-only calls
func ReadOnlySource() string {
	return keypair.MustRandom().Address()
}

// TransactionHash returns the network hash of a signed envelope
func TransactionHash(txXDR, passphrase string) (string, error) {
	tx, err := parseTransaction(txXDR)
	if err != nil {
		return "", err
	}
	return tx.HashHex(passphrase)
}

// ConfirmedReturnValue extracts the contract return value from transaction meta
func ConfirmedReturnValue(resultMetaXDR string) (interface{}, bool, error) {
	if resultMetaXDR == "" {
		return nil, false, nil
	}
	var meta xdr.TransactionMeta
	if err := xdr.SafeUnmarshalBase64(resultMetaXDR, &meta); err != nil {
		return nil, false, fmt.Errorf("decode result meta: %w", err)
	}
	if meta.V3 == nil || meta.V3.SorobanMeta == nil {
		return nil, false, nil
	}
	v, err := DecodeScVal(meta.V3.SorobanMeta.ReturnValue)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

// SimulatedReturnValue extracts the return value of a simulation
func SimulatedReturnValue(sim *SimulateTransactionResponse) (interface{}, bool, error) {
	if sim == nil || len(sim.Results) == 0 || sim.Results[0].XDR == "" {
		return nil, false, nil
	}
	v, err := DecodeScValXDR(sim.Results[0].XDR)
	if err != nil {
		return nil, false, err
	}
	return v, true, nil
}

func parseTransaction(txXDR string) (*txnbuild.Transaction, error) {
	generic, err := txnbuild.TransactionFromXDR(txXDR)
	if err != nil {
		return nil, fmt.Errorf("parse transaction: %w", err)
	}
	tx, ok := generic.Transaction()
	if !ok {
		return nil, fmt.Errorf("fee bump transactions are not supported")
	}
	return tx, nil
}
