// Package secrets keeps AI provider API keys in the OS keyring, with the
// process environment as a fallback.
package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/vovakirdan/arcade-studio/internal/config"
)

// Service is the keyring service name.
const Service = "arcade-studio"

// ErrNotFound is returned when a key is in neither the keyring nor the
// environment.
var ErrNotFound = errors.New("secrets: key not found")

// Provider names a stored API key.
type Provider string

const (
	ProviderChat      Provider = "chat"
	ProviderImage     Provider = "image"
	ProviderBgRemoval Provider = "bg-removal"
)

// Providers lists every provider in display order.
func Providers() []Provider {
	return []Provider{ProviderChat, ProviderImage, ProviderBgRemoval}
}

// ParseProvider validates a provider name.
func ParseProvider(s string) (Provider, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Providers() {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("secrets: unknown provider %q (want chat, image or bg-removal)", s)
}

// EnvVar is the environment variable consulted when the keyring has no key.
func (p Provider) EnvVar() string {
	switch p {
	case ProviderChat:
		return config.EnvAPIKey
	case ProviderImage:
		return config.EnvImageAPIKey
	case ProviderBgRemoval:
		return config.EnvBgAPIKey
	}
	return ""
}

// Store reads and writes keys under one keyring service.
type Store struct {
	service string
}

// NewStore creates a store. An empty service uses Service.
func NewStore(service string) *Store {
	if strings.TrimSpace(service) == "" {
		service = Service
	}
	return &Store{service: service}
}

// Set saves a key in the keyring.
func (s *Store) Set(p Provider, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("secrets: empty key for %s", p)
	}
	if err := keyring.Set(s.service, string(p), key); err != nil {
		return fmt.Errorf("secrets: keyring set %s: %w", p, err)
	}
	return nil
}

// Get returns the key from the keyring, falling back to the environment.
func (s *Store) Get(p Provider) (string, error) {
	val, err := keyring.Get(s.service, string(p))
	if err == nil {
		return val, nil
	}
	if env := os.Getenv(p.EnvVar()); env != "" {
		return env, nil
	}
	if errors.Is(err, keyring.ErrNotFound) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, p)
	}
	return "", fmt.Errorf("%w: %s (keyring: %v)", ErrNotFound, p, err)
}

// Delete removes a key from the keyring. Deleting a missing key is not an
// error.
func (s *Store) Delete(p Provider) error {
	if err := keyring.Delete(s.service, string(p)); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("secrets: keyring delete %s: %w", p, err)
	}
	return nil
}

// Fill sets every empty API key of cfg from the store.
func (s *Store) Fill(cfg *config.AIConfig) {
	fill := func(dst *string, p Provider) {
		if *dst != "" {
			return
		}
		if v, err := s.Get(p); err == nil {
			*dst = v
		}
	}
	fill(&cfg.APIKey, ProviderChat)
	fill(&cfg.ImageAPIKey, ProviderImage)
	fill(&cfg.BgRemovalAPIKey, ProviderBgRemoval)
}
