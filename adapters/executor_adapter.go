// File: adapters/executor_adapter.go
// Package adapters provides glue between configuration and api.Executor.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// NewExecutor builds the executor described by a control.ExecutorConfig
// and wires the ambient services into it.

package adapters

import (
	"go.uber.org/zap"

	"github.com/momentics/hioload-exec/api"
	"github.com/momentics/hioload-exec/control"
	"github.com/momentics/hioload-exec/executor"
	"github.com/momentics/hioload-exec/failpoint"
)

// Pool is an executor with lifecycle helpers and introspection.
type Pool interface {
	api.Executor
	Name() string
	Stats() executor.Stats
	Close() error
}

var (
	_ Pool = (*executor.Fixed)(nil)
	_ Pool = (*executor.Synchronous)(nil)
)

// Deps are the shared services handed to executors. Zero values fall back
// to the executor defaults.
type Deps struct {
	Logger     *zap.Logger
	Metrics    api.ExecutorMetrics
	FailPoints *failpoint.Set
}

// NewExecutor constructs, but does not start, the executor of cfg.
func NewExecutor(cfg control.ExecutorConfig, deps Deps) (Pool, error) {
	opts := []executor.Option{
		executor.WithName(cfg.Name),
		executor.WithLogger(deps.Logger),
		executor.WithMetrics(deps.Metrics),
	}
	if deps.FailPoints != nil {
		opts = append(opts, executor.WithHooks(executor.HooksFromSet(deps.FailPoints)))
	}

	switch cfg.Kind {
	case control.KindFixed:
		opts = append(opts, executor.WithPinning(cfg.Pin))
		return executor.NewFixed(cfg.ThreadPoolLimits, opts...), nil
	case control.KindSynchronous:
		return executor.NewSynchronous(opts...), nil
	default:
		return nil, api.ErrInvalidArgument.WithContext("executor.kind", string(cfg.Kind))
	}
}
