// Copyright 2025 the mcp-hetzner authors
// SPDX-License-Identifier: MIT

package hetzner

import (
	"context"
	"sync"
)

type contextKey struct{}

var clientContextKey = contextKey{}

// ClientFactory builds a Client from a configuration. It exists so
// tests can swap the API-backed client for a fake.
type ClientFactory func(cfg Config) Client

// Provider hands out API clients keyed by token. Clients are cached,
// so repeated requests carrying the same token share one client and
// its HTTP connection pool.
type Provider struct {
	cfg     Config
	factory ClientFactory

	mu      sync.Mutex
	clients map[string]Client
}

// ProviderOption customizes a Provider.
type ProviderOption func(*Provider)

// WithClientFactory overrides how clients are constructed.
func WithClientFactory(factory ClientFactory) ProviderOption {
	return func(p *Provider) {
		p.factory = factory
	}
}

// NewProvider creates a Provider. cfg.Token, when set, is used for the
// default client returned when a request carries no token of its own.
func NewProvider(cfg Config, opts ...ProviderOption) *Provider {
	p := &Provider{
		cfg:     cfg,
		factory: NewClient,
		clients: make(map[string]Client),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// ForToken returns the cached client for token, creating it on first use.
// An empty token yields nil.
func (p *Provider) ForToken(token string) Client {
	if token == "" {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if client, ok := p.clients[token]; ok {
		return client
	}

	cfg := p.cfg
	cfg.Token = token
	client := p.factory(cfg)
	p.clients[token] = client

	return client
}

// Default returns the client for the configured token, or nil when no
// token was configured.
func (p *Provider) Default() Client {
	return p.ForToken(p.cfg.Token)
}

// NewContext returns a context carrying client, typically the one
// derived from a request's token header.
func NewContext(ctx context.Context, client Client) context.Context {
	return context.WithValue(ctx, clientContextKey, client)
}

// FromContext returns the client stored in ctx, falling back to the
// provider's default client. The second return is false when neither
// is available.
func (p *Provider) FromContext(ctx context.Context) (Client, bool) {
	if client, ok := ctx.Value(clientContextKey).(Client); ok && client != nil {
		return client, true
	}

	if client := p.Default(); client != nil {
		return client, true
	}

	return nil, false
}
