package twofactor

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/dmitrymomot/guardkit/pkg/totp"
)

// SettingsProvider serves the system TOTP settings from memory and falls back
// to storage on a cache miss. The row is created with defaults on first read.
type SettingsProvider struct {
	storage  SettingsStorage
	defaults totp.Settings

	mu     sync.RWMutex
	cached *totp.Settings
}

func NewSettingsProvider(storage SettingsStorage, defaults totp.Settings) *SettingsProvider {
	return &SettingsProvider{storage: storage, defaults: defaults}
}

func (p *SettingsProvider) Get(ctx context.Context) (totp.Settings, error) {
	p.mu.RLock()
	if p.cached != nil {
		s := *p.cached
		p.mu.RUnlock()
		return s, nil
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cached != nil {
		return *p.cached, nil
	}

	s, err := p.storage.GetSettings(ctx)
	if errors.Is(err, ErrSettingsNotFound) {
		s = p.defaults
		if err := p.storage.SaveSettings(ctx, s); err != nil {
			return totp.Settings{}, err
		}
	} else if err != nil {
		return totp.Settings{}, err
	}

	p.cached = &s
	return s, nil
}

// Update validates and stores s, then refreshes the cache. Existing
// enrollments keep the digits and period they were created with.
func (p *SettingsProvider) Update(ctx context.Context, s totp.Settings) (totp.Settings, error) {
	s.Issuer = strings.TrimSpace(s.Issuer)
	if err := s.Validate(); err != nil {
		return totp.Settings{}, errors.Join(ErrInvalidSettings, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.storage.SaveSettings(ctx, s); err != nil {
		p.cached = nil
		return totp.Settings{}, err
	}
	p.cached = &s
	return s, nil
}

// Invalidate drops the cached value so the next Get reads storage.
func (p *SettingsProvider) Invalidate() {
	p.mu.Lock()
	p.cached = nil
	p.mu.Unlock()
}
