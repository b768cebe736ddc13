package types

import (
	"errors"
	"time"
)

// Config holds backend selection and parameters for Backend.Attach and the
// store's autosave wiring.
type Config struct {
	Backend string     `json:"backend" yaml:"backend"`
	DataDir string     `json:"data_dir" yaml:"data_dir"`
	Sync    SyncConfig `json:"sync" yaml:"sync"`
}

// Supported backend names.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
	BackendJSONL  = "jsonl"
)

// Sync strategies decide when store snapshots reach a Saver.
const (
	SyncImmediate = "immediate" // Save after every change.
	SyncOnClose   = "on_close"  // Save the last snapshot on flush or close.
	SyncBatch     = "batch"     // Save on an interval and on flush or close.
)

// DefaultBatchInterval is used by the batch strategy when none is set.
const DefaultBatchInterval = 5 * time.Second

// SyncConfig selects the autosave strategy.
type SyncConfig struct {
	Strategy      string `json:"strategy" yaml:"strategy"`
	BatchInterval int    `json:"batch_interval" yaml:"batch_interval"` // Seconds.
}

// GetStrategy returns the configured strategy, defaulting to immediate.
func (s SyncConfig) GetStrategy() string {
	if s.Strategy == "" {
		return SyncImmediate
	}
	return s.Strategy
}

// GetBatchInterval returns the batch interval as a duration, defaulting to
// DefaultBatchInterval when unset.
func (s SyncConfig) GetBatchInterval() time.Duration {
	if s.BatchInterval == 0 {
		return DefaultBatchInterval
	}
	return time.Duration(s.BatchInterval) * time.Second
}

// Validate checks the sync settings.
func (s SyncConfig) Validate() error {
	if !knownSyncStrategies[s.GetStrategy()] {
		return ErrSyncStrategyUnknown
	}
	if s.BatchInterval < 0 {
		return ErrBatchIntervalInvalid
	}
	return nil
}

// Config validation errors.
var (
	ErrBackendEmpty         = errors.New("backend must not be empty")
	ErrBackendUnknown       = errors.New("unknown backend")
	ErrSyncStrategyUnknown  = errors.New("unknown sync strategy")
	ErrBatchIntervalInvalid = errors.New("batch interval must be positive")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendMemory: true,
	BackendSQLite: true,
	BackendJSONL:  true,
}

var knownSyncStrategies = map[string]bool{
	SyncImmediate: true,
	SyncOnClose:   true,
	SyncBatch:     true,
}

// Validate checks that the Config is well-formed. It returns a sentinel
// error from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	return c.Sync.Validate()
}
