package entities

import "time"

// WalletSession is an authorized wallet connection
type WalletSession struct {
	SessionID   string    `json:"sessionId"`
	Address     string    `json:"address"`
	KeyID       string    `json:"keyId,omitempty"`
	Granted     bool      `json:"granted"`
	ConnectedAt time.Time `json:"connectedAt"`
}

// ConnectWalletInput represents input for connecting a wallet
type ConnectWalletInput struct {
	Address string `json:"address" binding:"required"`
	KeyID   string `json:"keyId"`
}

// ConnectWalletResponse carries the session and its bearer token
type ConnectWalletResponse struct {
	Session   WalletSession `json:"session"`
	Token     string        `json:"token"`
	ExpiresAt int64         `json:"expiresAt"`
}

// WalletKey registers a public key against a passkey contract
type WalletKey struct {
	PublicKey string    `json:"publicKey"`
	Contract  string    `json:"contract"`
	CreatedAt time.Time `json:"createdAt"`
}

// SignUpInput represents the wallet key registration body
type SignUpInput struct {
	PublicKey string `json:"publicKey"`
	Contract  string `json:"contract"`
}
