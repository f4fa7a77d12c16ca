package schema

import (
	"fmt"
	"strings"
)

// ServiceConfig defines defaults for the list service.
type ServiceConfig struct {
	// StoreKey is the key the whole collection is stored under.
	StoreKey string
	// Title is the application title appended to list names.
	Title string
	// NamePrefix is used for generated list names ("List 1").
	NamePrefix string
	// DefaultPickCount is the pick count of new lists.
	DefaultPickCount int
}

const (
	// DefaultStoreKey is the store key used by every known client.
	DefaultStoreKey = "data"
	// DefaultTitle is the application title.
	DefaultTitle = "Ahalaj"
	// DefaultNamePrefix prefixes generated list names.
	DefaultNamePrefix = "List"
	// DefaultPickCount is the pick count of a fresh list.
	DefaultPickCount = 2
)

// NormalizeServiceConfig applies defaults and validates the config.
func NormalizeServiceConfig(cfg ServiceConfig) (ServiceConfig, error) {
	cfg.StoreKey = strings.TrimSpace(cfg.StoreKey)
	if cfg.StoreKey == "" {
		cfg.StoreKey = DefaultStoreKey
	}
	if strings.TrimSpace(cfg.Title) == "" {
		cfg.Title = DefaultTitle
	}
	if strings.TrimSpace(cfg.NamePrefix) == "" {
		cfg.NamePrefix = DefaultNamePrefix
	}
	if cfg.DefaultPickCount == 0 {
		cfg.DefaultPickCount = DefaultPickCount
	}
	if cfg.DefaultPickCount < 1 {
		return ServiceConfig{}, fmt.Errorf("%w: default pick count must be positive", ErrInvalidConfig)
	}
	return cfg, nil
}
