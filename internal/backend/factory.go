package backend

import (
	"context"
	"fmt"
	"time"

	"projecthub/internal/backend/memory"
	"projecthub/internal/backend/remote"
	"projecthub/internal/log"
)

// Type selects the backend implementation.
type Type string

const (
	RemoteBackend Type = "remote"
	MemoryBackend Type = "memory"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid
func (t Type) IsValid() bool {
	switch t {
	case RemoteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// Config holds configuration for backend creation
type Config struct {
	Type      Type
	Endpoints remote.Endpoints
	Timeout   time.Duration

	// DataDirectory holds seed.json for the memory backend.
	DataDirectory string
}

// Validate checks the settings the selected type needs.
func (c Config) Validate() error {
	if !c.Type.IsValid() {
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	if c.Type == RemoteBackend {
		if err := c.Endpoints.Validate(); err != nil {
			return fmt.Errorf("remote backend: %w", err)
		}
	}
	return nil
}

// Factory creates backends based on configuration
type Factory struct {
	logger *log.Logger
}

// NewFactory creates a new backend factory
func NewFactory(logger *log.Logger) *Factory {
	if logger == nil {
		logger = log.Discard()
	}
	return &Factory{logger: logger.WithComponent(log.ComponentBackend)}
}

// Create builds the backend described by cfg.
func (f *Factory) Create(_ context.Context, cfg Config) (Backend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Type {
	case RemoteBackend:
		opts := []remote.Option{remote.WithLogger(f.logger)}
		if cfg.Timeout > 0 {
			opts = append(opts, remote.WithTimeout(cfg.Timeout))
		}
		f.logger.Info("Initialized remote backend",
			"stats_url", cfg.Endpoints.Stats,
			"management_url", cfg.Endpoints.Management,
			"timeout", cfg.Timeout.String())
		return remote.New(cfg.Endpoints, opts...), nil

	case MemoryBackend:
		dir := cfg.DataDirectory
		if dir == "" {
			dir = "data"
		}
		store, err := memory.NewFromFiles(dir)
		if err != nil {
			return nil, fmt.Errorf("initialize memory backend: %w", err)
		}
		f.logger.Info("Initialized memory backend", "data_directory", dir, "contents", store.String())
		return store, nil

	default:
		return nil, fmt.Errorf("unsupported backend type: %s", cfg.Type)
	}
}

var (
	_ Backend = (*remote.Client)(nil)
	_ Backend = (*memory.Store)(nil)
)
