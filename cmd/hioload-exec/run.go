// File: cmd/hioload-exec/run.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/momentics/hioload-exec/adapters"
	"github.com/momentics/hioload-exec/api"
	"github.com/momentics/hioload-exec/control"
	"github.com/momentics/hioload-exec/internal/logger"
	"github.com/momentics/hioload-exec/internal/session"
	"github.com/momentics/hioload-exec/internal/transport"
	"github.com/momentics/hioload-exec/reactor"
)

type quiescer interface {
	WaitForQuiescence(ctx context.Context) error
}

func runSimulation(ctx context.Context, cfg *control.Config, v *viper.Viper, out io.Writer) error {
	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer log.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	ctrl, err := adapters.NewControlAdapter(*cfg, log, registry)
	if err != nil {
		return err
	}
	if v.ConfigFileUsed() != "" {
		ctrl.Watch(v)
	}

	if cfg.Metrics.Enabled {
		srv := &http.Server{
			Addr:              cfg.Metrics.Address,
			Handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server failed", zap.Error(err))
			}
		}()
		defer srv.Close()
		log.Info("serving metrics", zap.String("address", cfg.Metrics.Address))
	}

	pool, err := adapters.NewExecutor(cfg.Executor, ctrl.Deps())
	if err != nil {
		return err
	}
	if err := pool.Start(); err != nil {
		return fmt.Errorf("start executor: %w", err)
	}
	defer pool.Close()
	ctrl.RegisterExecutor(pool)

	reactorOpts := []reactor.Option{reactor.WithLogger(log.Named("reactor"))}
	if !cfg.Reactor.AllowRun {
		reactorOpts = append(reactorOpts, reactor.WithoutRun())
	}
	loop := reactor.New(reactorOpts...)
	ctrl.RegisterReactor("transport", loop.State)
	stopReactor := startReactor(loop, cfg.Reactor)
	defer stopReactor()

	layer := transport.NewLayer(loop, session.NewManager(0, nil), log.Named("transport"))
	ctrl.Debug().RegisterProbe("transport.sessions", func() any { return layer.Sessions().Len() })
	ctrl.Debug().RegisterProbe("transport.signals", func() any { return layer.Signals() })

	start := time.Now()
	simErr := serveSessions(ctx, pool, layer, cfg.Simulation)
	log.Info("simulation finished", zap.Duration("elapsed", time.Since(start)), zap.Error(simErr))

	layer.Shutdown()
	reactorErr := stopReactor()
	if reactorErr != nil {
		log.Error("reactor fault", zap.Error(reactorErr))
	}

	if err := pool.Shutdown(cfg.Executor.ShutdownTimeout); err != nil {
		if !errors.Is(err, api.ErrShutdownTimeout) {
			return err
		}
		log.Warn("executor still draining", zap.Error(err))
		if q, ok := pool.(quiescer); ok {
			if err := q.WaitForQuiescence(ctx); err != nil {
				return err
			}
		}
	}

	if err := ctrl.Debug().WriteYAML(out); err != nil {
		return err
	}
	return errors.Join(simErr, reactorErr)
}

// serveSessions opens sim.Sessions sessions and serves them concurrently.
// A session that cannot be opened ends the simulation after the sessions
// already open have been served.
func serveSessions(ctx context.Context, pool api.Executor, layer *transport.Layer, sim control.SimulationConfig) error {
	g, gctx := errgroup.WithContext(ctx)
	var openErr error
	for i := 0; i < sim.Sessions; i++ {
		s, err := layer.Open()
		if err != nil {
			openErr = fmt.Errorf("open session %d: %w", i, err)
			break
		}
		g.Go(func() error { return serveSession(gctx, pool, layer, s, sim) })
	}
	return errors.Join(openErr, g.Wait())
}

// serveSession waits for data on s, round after round, handling each
// arrival as an executor task.
func serveSession(ctx context.Context, pool api.Executor, layer *transport.Layer, s *session.Session, sim control.SimulationConfig) error {
	for round := 0; round < sim.Rounds; round++ {
		if err := layer.DeliverAfter(s, sim.Interval); err != nil {
			return err
		}
		done := make(chan error, 1)
		pool.RunOnDataAvailable(s, func(status error) {
			if status == nil && sim.Work > 0 {
				time.Sleep(sim.Work)
			}
			done <- status
		})
		select {
		case err := <-done:
			if err != nil {
				return fmt.Errorf("session %s round %d: %w", s.ID(), round, err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// startReactor drives loop on its own goroutine. The returned func stops
// the loop, waits for driving to end and reports its result; later calls
// return the same result.
func startReactor(loop *reactor.Loop, cfg control.ReactorConfig) func() error {
	done := make(chan error, 1)
	go func() { done <- driveReactor(loop, cfg) }()

	var (
		once sync.Once
		err  error
	)
	return func() error {
		once.Do(func() {
			loop.Stop()
			err = <-done
		})
		return err
	}
}

// driveReactor runs loop until it is stopped or faults.
func driveReactor(loop *reactor.Loop, cfg control.ReactorConfig) error {
	if cfg.AllowRun {
		return loop.Run()
	}
	for {
		if err := loop.RunFor(cfg.RunFor); err != nil {
			return err
		}
		if loop.State() == api.ReactorStopped {
			return nil
		}
	}
}
