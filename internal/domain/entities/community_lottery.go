package entities

import "time"

// CommunityRequirements are independently toggleable entry requirements
type CommunityRequirements struct {
	TwitterFollow bool    `json:"twitterFollow"`
	TwitterHandle string  `json:"twitterHandle"`
	TokenBalance  bool    `json:"minimumTokenBalance"`
	TokenAmount   float64 `json:"tokenAmount"`
	TokenSymbol   string  `json:"tokenSymbol"`
	NFTCheck      bool    `json:"nftCheck"`
	NFTCollection string  `json:"nftCollection"`
}

// CommunityLottery extends a ledger lottery with off-ledger metadata.
// LedgerID links it to its on-chain lottery; records written before it existed
// are joined by name and flagged Ambiguous when that join is not unique.
type CommunityLottery struct {
	Lottery
	Description  string                `json:"description"`
	WinnerCount  int                   `json:"winnerCount"`
	Duration     uint64                `json:"duration"` // seconds
	Requirements CommunityRequirements `json:"requirements"`
	LedgerID     string                `json:"ledgerId,omitempty"`
	Ambiguous    bool                  `json:"ambiguous,omitempty"`
	UpdatedAt    time.Time             `json:"updatedAt"`
}

// CommunityMutationResult is returned after a community create or enter call
type CommunityMutationResult struct {
	Transaction TxResult         `json:"transaction"`
	Lottery     CommunityLottery `json:"lottery"`
}
