// control/store.go
// Author: momentics <momentics@gmail.com>
//
// Thread-safe configuration store with reload propagation.

package control

import (
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// ConfigStore holds the current configuration and notifies listeners when
// it is replaced.
type ConfigStore struct {
	logger *zap.Logger

	mu        sync.RWMutex
	config    Config         // GUARDED_BY(mu)
	listeners []func(Config) // GUARDED_BY(mu)
}

// NewConfigStore initializes a store holding cfg.
func NewConfigStore(cfg Config, logger *zap.Logger) *ConfigStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConfigStore{config: cfg, logger: logger}
}

// Snapshot returns a copy of the current configuration.
func (cs *ConfigStore) Snapshot() Config {
	cs.mu.RLock()
	defer cs.mu.RUnlock()
	return cs.config
}

// Set validates cfg, installs it and notifies listeners synchronously.
func (cs *ConfigStore) Set(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	cs.mu.Lock()
	cs.config = cfg
	listeners := make([]func(Config), len(cs.listeners))
	copy(listeners, cs.listeners)
	cs.mu.Unlock()

	for _, fn := range listeners {
		fn(cfg)
	}
	return nil
}

// OnReload registers a listener called with every new configuration.
func (cs *ConfigStore) OnReload(fn func(Config)) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.listeners = append(cs.listeners, fn)
}

// Watch re-reads the config file of v on change. Invalid files are logged
// and ignored; the previous configuration stays in effect.
func (cs *ConfigStore) Watch(v *viper.Viper) {
	v.OnConfigChange(func(e fsnotify.Event) {
		cs.Reload(v, e.Name)
	})
	v.WatchConfig()
}

// Reload decodes v and installs the result.
func (cs *ConfigStore) Reload(v *viper.Viper, source string) {
	cfg, err := Decode(v)
	if err == nil {
		err = cs.Set(*cfg)
	}
	if err != nil {
		cs.logger.Warn("config reload rejected", zap.String("source", source), zap.Error(err))
		return
	}
	cs.logger.Info("config reloaded", zap.String("source", source))
}
