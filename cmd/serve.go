package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/desertthunder/stockmind/internal/agent"
	"github.com/desertthunder/stockmind/internal/server"
	"github.com/desertthunder/stockmind/internal/services"
	"github.com/desertthunder/stockmind/internal/shared"
	"github.com/urfave/cli/v3"
)

const shutdownTimeout = 10 * time.Second

// Serve runs the full service: strictly sequential bootstrap (config, data
// dir, database and migrations, services), then the HTTP server with the
// agent loop alongside it. Any bootstrap failure exits non-zero before the
// listening socket is created.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config, err := r.resolveConfig(cmd)
	if err != nil {
		return err
	}

	if config.Database.FreshStart {
		r.logger.Warn("fresh start requested, removing database", "path", config.DatabasePath())
		if err := shared.RemoveDatabase(config.DatabasePath()); err != nil {
			return err
		}
	}

	st, err := r.openStack(config)
	if err != nil {
		return err
	}
	defer st.Close()

	location, err := config.Location()
	if err != nil {
		return err
	}

	llm := services.NewAnthropicService(config.Credentials.Anthropic.APIKey, config.Credentials.Anthropic.Model)
	notifier := r.notifier(config)

	r.logger.Info("services ready",
		"market", st.market.Name(),
		"llm", llm.Name(),
		"notifications", notifier.Enabled(),
	)

	ag := agent.New(agent.Opts{
		Engine:    st.engine,
		Market:    st.market,
		LLM:       llm,
		Notifier:  notifier,
		Thoughts:  st.thoughts,
		Trades:    st.trades,
		Watchlist: st.watchlist,
		Memories:  st.memories,
		Location:  location,
		Logger:    r.logger,
	})

	handler := server.NewAPIHandler(server.APIOpts{
		Engine:    st.engine,
		Agent:     ag,
		Market:    st.market,
		Notifier:  notifier,
		Settings:  st.settings,
		Thoughts:  st.thoughts,
		Trades:    st.trades,
		Watchlist: st.watchlist,
		Snapshots: st.snapshots,
		Logger:    r.logger,
		Reset: func() error {
			return r.wipe(st, config)
		},
	})

	router := server.NewBasicRouter()
	router.Use(server.RecoveryMiddleware(r.logger), server.LoggingMiddleware(r.logger))
	router.Handler(handler)

	srv := server.New(config.Addr(), router, r.logger)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if !cmd.Bool("no-agent") {
		go func() {
			// Let the server come up before the first cycle fires.
			delay := time.Duration(config.Agent.StartupDelaySec) * time.Second
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}

			if err := ag.Run(ctx); err != nil {
				r.logger.Error("agent loop stopped", "error", err)
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	ag.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// wipe rolls the schema back and re-initializes it, restoring the starting
// balance and the default watchlist.
func (r *Runner) wipe(st *stack, config *shared.Config) error {
	r.logger.Warn("wiping database")

	if err := shared.RollbackMigration(st.db); err != nil {
		return err
	}
	if err := shared.RunMigrations(st.db); err != nil {
		return err
	}
	if _, err := st.settings.EnsureDefaults(config.Agent.StartingBalance); err != nil {
		return err
	}
	return st.watchlist.SeedDefaults()
}
