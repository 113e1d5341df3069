package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aretw0/pious/pkg/adapters/memory"
	"github.com/aretw0/pious/pkg/adapters/redis"
	"github.com/aretw0/pious/pkg/observability"
	"github.com/aretw0/pious/pkg/ports"
	"github.com/aretw0/pious/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// engineSetup collects what every engine-backed command shares.
type engineSetup struct {
	cfg     session.Config
	opts    []session.Option
	cleanup []func() error
}

// newEngineSetup resolves session options from the configuration and flags.
// A nil reg disables metrics.
func newEngineSetup(cmd *cobra.Command, reg prometheus.Registerer) (*engineSetup, error) {
	grammar, err := appConfig.LineGrammar()
	if err != nil {
		return nil, err
	}
	e := &engineSetup{
		cfg:  appConfig.Session(),
		opts: []session.Option{session.WithLogger(logger), session.WithGrammar(grammar)},
	}

	var store ports.TreeInfoStore = memory.NewStore()
	if addr := appConfig.Store.RedisAddr; addr != "" {
		var ropts []redis.Option
		if appConfig.Store.Prefix != "" {
			ropts = append(ropts, redis.WithPrefix(appConfig.Store.Prefix))
		}
		rs := redis.New(addr, "", 0, ropts...)
		if err := rs.Ping(cmd.Context()); err != nil {
			logger.Warn("tree info store unavailable, using memory", "addr", addr, "error", err)
		} else {
			store = rs
		}
	}
	e.opts = append(e.opts, session.WithTreeInfoStore(store))

	if reg != nil {
		metrics := observability.NewMetrics(reg)
		e.opts = append(e.opts, session.WithHooks(observability.Hooks(metrics, logger)))
	}

	if path, _ := cmd.Flags().GetString("log-file"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("open command log: %w", err)
		}
		e.opts = append(e.opts, session.WithCommandLog(f))
		e.cleanup = append(e.cleanup, f.Close)
	}
	return e, nil
}

func (e *engineSetup) start(ctx context.Context) (*session.Session, error) {
	if err := e.cfg.Process.Validate(); err != nil {
		return nil, fmt.Errorf("%w (run `pious conf` to check the installation)", err)
	}
	return session.Start(ctx, e.cfg, e.opts...)
}

func (e *engineSetup) pool(size int) *session.Pool {
	return session.NewPool(size, e.start, session.WithPoolLogger(logger))
}

func (e *engineSetup) close() {
	for _, fn := range e.cleanup {
		if err := fn(); err != nil {
			logger.Warn("cleanup failed", "error", err)
		}
	}
}

// withSession runs fn on a freshly started session holding tree.
func withSession(cmd *cobra.Command, tree string, fn func(context.Context, *session.Session) error) error {
	if _, err := os.Stat(tree); err != nil {
		return fmt.Errorf("no such file %s", tree)
	}
	setup, err := newEngineSetup(cmd, nil)
	if err != nil {
		return err
	}
	defer setup.close()

	ctx := cmd.Context()
	s, err := setup.start(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(context.Background()); err != nil {
			logger.Warn("engine did not stop cleanly", "error", err)
		}
	}()

	if err := s.LoadTree(ctx, tree); err != nil {
		return err
	}
	return fn(ctx, s)
}
