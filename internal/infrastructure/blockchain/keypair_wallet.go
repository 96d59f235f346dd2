package blockchain

import (
	"context"
	"fmt"
	"strings"

	"github.com/stellar/go/keypair"
)

// SignOptions carries the network and signer a wallet must sign for
type SignOptions struct {
	NetworkPassphrase string
	Address           string
}

// KeypairWallet signs with a locally held secret seed
type KeypairWallet struct {
	kp *keypair.Full
}

// NewKeypairWallet parses a secret seed into a wallet
func NewKeypairWallet(seed string) (*KeypairWallet, error) {
	kp, err := keypair.ParseFull(strings.TrimSpace(seed))
	if err != nil {
		return nil, fmt.Errorf("invalid signer seed: %w", err)
	}
	return &KeypairWallet{kp: kp}, nil
}

// IsConnected reports whether the wallet holds a key
func (w *KeypairWallet) IsConnected(context.Context) (bool, error) {
	return w != nil && w.kp != nil, nil
}

// GetAddress returns the public address of the wallet
func (w *KeypairWallet) GetAddress(context.Context) (string, error) {
	if w == nil || w.kp == nil {
		return "", fmt.Errorf("wallet has no key")
	}
	return w.kp.Address(), nil
}

// SignTransaction signs a base64 envelope for the given network
func (w *KeypairWallet) SignTransaction(_ context.Context, txXDR string, opts SignOptions) (string, error) {
	if w == nil || w.kp == nil {
		return "", fmt.Errorf("wallet has no key")
	}
	if opts.Address != "" && opts.Address != w.kp.Address() {
		return "", fmt.Errorf("wallet cannot sign for %s", opts.Address)
	}
	if opts.NetworkPassphrase == "" {
		return "", fmt.Errorf("network passphrase is required")
	}
	tx, err := parseTransaction(txXDR)
	if err != nil {
		return "", err
	}
	signed, err := tx.Sign(opts.NetworkPassphrase, w.kp)
	if err != nil {
		return "", fmt.Errorf("sign transaction: %w", err)
	}
	return signed.Base64()
}

// Keyring holds the custodial wallets the service can sign with
type Keyring struct {
	wallets map[string]*KeypairWallet
	order   []string
}

// NewKeyring parses a comma separated list of secret seeds
func NewKeyring(seeds string) (*Keyring, error) {
	k := &Keyring{wallets: make(map[string]*KeypairWallet)}
	for _, seed := range strings.Split(seeds, ",") {
		if strings.TrimSpace(seed) == "" {
			continue
		}
		w, err := NewKeypairWallet(seed)
		if err != nil {
			return nil, err
		}
		addr := w.kp.Address()
		if _, dup := k.wallets[addr]; !dup {
			k.order = append(k.order, addr)
		}
		k.wallets[addr] = w
	}
	return k, nil
}

// Wallet returns the wallet for address, or nil when the keyring has no key for it
func (k *Keyring) Wallet(address string) *KeypairWallet {
	if k == nil {
		return nil
	}
	return k.wallets[address]
}

// Has reports whether the keyring can sign for address
func (k *Keyring) Has(address string) bool {
	return k.Wallet(address) != nil
}

// Default returns the first configured wallet
func (k *Keyring) Default() *KeypairWallet {
	if k == nil || len(k.order) == 0 {
		return nil
	}
	return k.wallets[k.order[0]]
}

// Addresses lists the addresses the keyring can sign for
func (k *Keyring) Addresses() []string {
	if k == nil {
		return nil
	}
	return append([]string(nil), k.order...)
}
