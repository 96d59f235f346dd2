package blockchain

import (
	"context"
	"fmt"
	"sync"
)

var beforeGetSorobanClientWriteLockHook = func(string) {}

// ClientFactory manages ledger clients, one per endpoint
type ClientFactory struct {
	sorobanClients map[string]*SorobanClient
	horizonClients map[string]*HorizonAccountLoader
	mu             sync.RWMutex
}

// NewClientFactory creates a new client factory
func NewClientFactory() *ClientFactory {
	return &ClientFactory{
		sorobanClients: make(map[string]*SorobanClient),
		horizonClients: make(map[string]*HorizonAccountLoader),
	}
}

// GetSorobanClient returns a Soroban RPC client for the given URL
// If a client already exists for the URL, it returns the cached client
func (f *ClientFactory) GetSorobanClient(ctx context.Context, rpcURL string) (*SorobanClient, error) {
	f.mu.RLock()
	client, ok := f.sorobanClients[rpcURL]
	f.mu.RUnlock()
	if ok {
		return client, nil
	}

	beforeGetSorobanClientWriteLockHook(rpcURL)

	f.mu.Lock()
	defer f.mu.Unlock()

	if client, ok := f.sorobanClients[rpcURL]; ok {
		return client, nil
	}

	newClient, err := NewSorobanClient(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create soroban client: %w", err)
	}

	f.sorobanClients[rpcURL] = newClient
	return newClient, nil
}

// RegisterSorobanClient injects/overrides cached client for a specific rpcURL.
func (f *ClientFactory) RegisterSorobanClient(rpcURL string, client *SorobanClient) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sorobanClients[rpcURL] = client
}

// GetAccountLoader returns a Horizon account loader for the given URL
func (f *ClientFactory) GetAccountLoader(horizonURL string) *HorizonAccountLoader {
	f.mu.Lock()
	defer f.mu.Unlock()
	if loader, ok := f.horizonClients[horizonURL]; ok {
		return loader
	}
	loader := NewHorizonAccountLoader(horizonURL)
	f.horizonClients[horizonURL] = loader
	return loader
}

// Close closes every cached RPC client
func (f *ClientFactory) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	for url, c := range f.sorobanClients {
		c.Close()
		delete(f.sorobanClients, url)
	}
}
