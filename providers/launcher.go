package providers

import (
	"context"
	"errors"
	"strings"
	"sync"
)

var ErrUnsupportedProvider = errors.New("unsupported provider")

type LaunchRequest struct {
	UserCode     string `json:"user_code" validate:"required"`
	ProviderCode string `json:"provider_code" validate:"required"`
	GameCode     string `json:"game_code"`
	Lang         string `json:"lang"`
	Platform     string `json:"platform" validate:"omitempty,oneof=desktop mobile"`
	Currency     string `json:"currency"`
	IP           string `json:"ip"`
}

// GameProviderLauncher returns the URL a player opens to reach the provider.
type GameProviderLauncher interface {
	StartGame(ctx context.Context, req LaunchRequest) (string, error)
}

// Registry maps provider codes to launchers.
type Registry struct {
	mu        sync.RWMutex
	launchers map[string]GameProviderLauncher
}

func NewRegistry() *Registry {
	return &Registry{launchers: map[string]GameProviderLauncher{}}
}

func (r *Registry) Register(name string, launcher GameProviderLauncher) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.launchers[strings.ToLower(name)] = launcher
}

func (r *Registry) Get(name string) (GameProviderLauncher, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.launchers[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, ErrUnsupportedProvider
	}
	return l, nil
}
