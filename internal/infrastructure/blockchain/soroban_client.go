package blockchain

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/rpc"
)

var dialSorobanRPC = rpc.DialContext

// SimulateHostFunctionResult is one invocation result of a simulation
type SimulateHostFunctionResult struct {
	Auth []string `json:"auth"`
	XDR  string   `json:"xdr"`
}

// SimulateTransactionResponse is the simulateTransaction result.
// Error is set when the contract call itself failed.
type SimulateTransactionResponse struct {
	Error           string                       `json:"error,omitempty"`
	TransactionData string                       `json:"transactionData"`
	MinResourceFee  int64                        `json:"minResourceFee,string"`
	Results         []SimulateHostFunctionResult `json:"results"`
	LatestLedger    uint32                       `json:"latestLedger"`
}

// SendTransactionResponse is the sendTransaction result
type SendTransactionResponse struct {
	Status         string `json:"status"`
	Hash           string `json:"hash"`
	ErrorResultXDR string `json:"errorResultXdr,omitempty"`
	LatestLedger   uint32 `json:"latestLedger"`
}

// GetTransactionResponse is the getTransaction result
type GetTransactionResponse struct {
	Status        string `json:"status"`
	ResultXDR     string `json:"resultXdr,omitempty"`
	ResultMetaXDR string `json:"resultMetaXdr,omitempty"`
	EnvelopeXDR   string `json:"envelopeXdr,omitempty"`
	Ledger        uint32 `json:"ledger,omitempty"`
	LatestLedger  uint32 `json:"latestLedger"`
}

// HealthResponse is the getHealth result
type HealthResponse struct {
	Status       string `json:"status"`
	LatestLedger uint32 `json:"latestLedger"`
}

// SorobanClient speaks JSON-RPC 2.0 to a Soroban RPC endpoint
type SorobanClient struct {
	client *rpc.Client
	rpcURL string
}

// NewSorobanClient dials a Soroban RPC endpoint
func NewSorobanClient(ctx context.Context, rpcURL string) (*SorobanClient, error) {
	client, err := dialSorobanRPC(ctx, rpcURL)
	if err != nil {
		return nil, err
	}
	return &SorobanClient{client: client, rpcURL: rpcURL}, nil
}

// URL returns the endpoint the client talks to
func (c *SorobanClient) URL() string {
	return c.rpcURL
}

// call sends params positionally, in the order the RPC method declares them
func (c *SorobanClient) call(ctx context.Context, result interface{}, method string, params ...interface{}) error {
	if c == nil || c.client == nil {
		return fmt.Errorf("soroban rpc client not initialized")
	}
	if err := c.client.CallContext(ctx, result, method, params...); err != nil {
		return fmt.Errorf("%s: %w", method, err)
	}
	return nil
}

// SimulateTransaction dry-runs a transaction envelope
func (c *SorobanClient) SimulateTransaction(ctx context.Context, txXDR string) (*SimulateTransactionResponse, error) {
	var out SimulateTransactionResponse
	if err := c.call(ctx, &out, "simulateTransaction", txXDR); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendTransaction submits a signed transaction envelope
func (c *SorobanClient) SendTransaction(ctx context.Context, txXDR string) (*SendTransactionResponse, error) {
	var out SendTransactionResponse
	if err := c.call(ctx, &out, "sendTransaction", txXDR); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetTransaction fetches the status of a submitted transaction
func (c *SorobanClient) GetTransaction(ctx context.Context, hash string) (*GetTransactionResponse, error) {
	var out GetTransactionResponse
	if err := c.call(ctx, &out, "getTransaction", hash); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetHealth reports whether the endpoint is serving
func (c *SorobanClient) GetHealth(ctx context.Context) (*HealthResponse, error) {
	var out HealthResponse
	if err := c.call(ctx, &out, "getHealth"); err != nil {
		return nil, err
	}
	return &out, nil
}

// Close closes the client connection
func (c *SorobanClient) Close() {
	if c != nil && c.client != nil {
		c.client.Close()
	}
}
