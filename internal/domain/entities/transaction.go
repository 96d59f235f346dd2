package entities

import "time"

// ContractFunction names a lottery contract entry point
type ContractFunction string

const (
	FnCreateLottery         ContractFunction = "create_lottery"
	FnEnterLottery          ContractFunction = "enter_lottery"
	FnGetAllLotteries       ContractFunction = "get_all_lotteries"
	FnGetCompletedLotteries ContractFunction = "get_completed_lotteries"
)

// Transaction statuses reported by the network
const (
	TxStatusPending       = "PENDING"
	TxStatusDuplicate     = "DUPLICATE"
	TxStatusTryAgainLater = "TRY_AGAIN_LATER"
	TxStatusError         = "ERROR"
	TxStatusSuccess       = "SUCCESS"
	TxStatusNotFound      = "NOT_FOUND"
	TxStatusFailed        = "FAILED"
)

// TxResult is the outcome of a submitted contract call.
// Indeterminate is set when polling ran out before a terminal status.
type TxResult struct {
	Hash          string      `json:"hash"`
	Status        string      `json:"status"`
	Ledger        uint32      `json:"ledger,omitempty"`
	ReturnValue   interface{} `json:"returnValue,omitempty"`
	ExplorerURL   string      `json:"explorerUrl,omitempty"`
	Indeterminate bool        `json:"indeterminate"`
	ResultXDR     string      `json:"resultXdr,omitempty"`
}

// Confirmed reports whether the ledger accepted the transaction
func (r TxResult) Confirmed() bool {
	return r.Status == TxStatusSuccess
}

// LedgerAccount is the live state of a source account
type LedgerAccount struct {
	Address  string
	Sequence int64
}

// PendingTransaction is an indeterminate submission awaiting reconciliation
type PendingTransaction struct {
	Hash        string           `json:"hash"`
	Function    ContractFunction `json:"function"`
	Source      string           `json:"source"`
	SubmittedAt time.Time        `json:"submittedAt"`
}
