// Package adapters
// Author: momentics <momentics@gmail.com>
//
// Control adapter: one handle over configuration, telemetry and debug
// probes, with log-level hot reload wired in.

package adapters

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/momentics/hioload-exec/api"
	"github.com/momentics/hioload-exec/control"
	"github.com/momentics/hioload-exec/failpoint"
	"github.com/momentics/hioload-exec/internal/logger"
)

// ControlAdapter bundles the control-plane services of one process.
type ControlAdapter struct {
	config     *control.ConfigStore
	metrics    *control.PrometheusMetrics
	debug      *control.DebugProbes
	failPoints *failpoint.Set
	log        *logger.Logger
}

// NewControlAdapter creates the control plane for cfg. Metrics are
// registered with registry.
func NewControlAdapter(cfg control.Config, log *logger.Logger, registry prometheus.Registerer) (*ControlAdapter, error) {
	metrics, err := control.NewPrometheusMetrics(cfg.Metrics.Namespace, registry)
	if err != nil {
		return nil, err
	}
	c := &ControlAdapter{
		config:     control.NewConfigStore(cfg, log.Logger),
		metrics:    metrics,
		debug:      control.NewDebugProbes(),
		failPoints: failpoint.NewSet(),
		log:        log,
	}
	for _, name := range cfg.Executor.FailPoints {
		c.failPoints.Get(name)
	}
	control.RegisterPlatformProbes(c.debug)
	c.debug.RegisterProbe("failpoints", func() any { return c.failPoints.Snapshot() })
	c.debug.RegisterProbe("config", func() any { return c.config.Snapshot() })

	c.config.OnReload(func(next control.Config) {
		if err := log.SetLevel(next.Log.Level); err != nil {
			log.Warn("log level not changed", zap.Error(err))
			return
		}
		log.Info("log level changed", zap.String("level", next.Log.Level))
	})
	return c, nil
}

// Config returns the configuration store.
func (c *ControlAdapter) Config() *control.ConfigStore {
	return c.config
}

// Metrics returns the executor telemetry sink.
func (c *ControlAdapter) Metrics() api.ExecutorMetrics {
	return c.metrics
}

// Debug returns the probe registry.
func (c *ControlAdapter) Debug() *control.DebugProbes {
	return c.debug
}

// FailPoints returns the process fail point set.
func (c *ControlAdapter) FailPoints() *failpoint.Set {
	return c.failPoints
}

// Deps returns the services executors are built with.
func (c *ControlAdapter) Deps() Deps {
	return Deps{
		Logger:     c.log.Logger,
		Metrics:    c.metrics,
		FailPoints: c.failPoints,
	}
}

// RegisterExecutor exposes the stats of p as a debug probe.
func (c *ControlAdapter) RegisterExecutor(p Pool) {
	c.debug.RegisterProbe("executor."+p.Name(), func() any { return p.Stats() })
}

// RegisterReactor exposes the state of a reactor as a debug probe.
func (c *ControlAdapter) RegisterReactor(name string, state func() api.ReactorState) {
	c.debug.RegisterProbe("reactor."+name, func() any { return state().String() })
}

// Watch follows config file changes of v.
func (c *ControlAdapter) Watch(v *viper.Viper) {
	c.config.Watch(v)
}

// Stats returns the merged debug state.
func (c *ControlAdapter) Stats() map[string]any {
	return c.debug.DumpState()
}
