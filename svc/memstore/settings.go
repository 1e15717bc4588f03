package memstore

import (
	"context"
	"sync"

	"github.com/dmitrymomot/guardkit/pkg/totp"
	"github.com/dmitrymomot/guardkit/pkg/twofactor"
)

type SettingsStore struct {
	mu       sync.RWMutex
	settings *totp.Settings
	reads    int
}

func NewSettingsStore() *SettingsStore {
	return &SettingsStore{}
}

func (s *SettingsStore) GetSettings(ctx context.Context) (totp.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.reads++
	if s.settings == nil {
		return totp.Settings{}, twofactor.ErrSettingsNotFound
	}
	return *s.settings, nil
}

func (s *SettingsStore) SaveSettings(ctx context.Context, settings totp.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.settings = &settings
	return nil
}

// Reads reports how many times GetSettings was called.
func (s *SettingsStore) Reads() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reads
}
