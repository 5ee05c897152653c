package main

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/stockmind/internal/repositories"
	"github.com/desertthunder/stockmind/internal/services"
	"github.com/desertthunder/stockmind/internal/shared"
	"github.com/desertthunder/stockmind/internal/trading"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config *shared.Config
	logger *log.Logger
	output io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *shared.Config
	Logger *log.Logger
	Output io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	return &Runner{
		config: opts.Config,
		logger: opts.Logger,
		output: opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		serveCommand, setupCommand, agentCommand, portfolioCommand,
		tradesCommand, watchlistCommand, quoteCommand, resetCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// SetLogger swaps the runner's logger, used by the TUI to redirect logs away
// from the terminal.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
}

// resolveConfig returns the runner's config, re-loaded from the --config flag
// path when one names an existing file. Environment overrides always win.
func (r *Runner) resolveConfig(cmd *cli.Command) (*shared.Config, error) {
	config := r.config

	if path := cmd.String("config"); path != "" && path != "config.toml" {
		loaded, err := shared.LoadConfig(path)
		if err != nil {
			return nil, err
		}
		if err := shared.ApplyEnv(loaded); err != nil {
			return nil, err
		}
		config = loaded
	}

	return config, nil
}

// stack bundles the database handle with the repositories and engine built on
// top of it. Commands that touch the portfolio open one per invocation.
type stack struct {
	db        *sql.DB
	settings  *repositories.SettingsRepository
	holdings  *repositories.HoldingRepository
	trades    *repositories.TradeRepository
	snapshots *repositories.SnapshotRepository
	thoughts  *repositories.ThoughtRepository
	watchlist *repositories.WatchlistRepository
	memories  *repositories.MemoryRepository
	market    services.MarketService
	engine    *trading.Engine
}

func (s *stack) Close() error {
	return s.db.Close()
}

// openStack provisions the data directory, opens the database, and wires the
// repositories and trading engine. Migrations and default seeding are
// idempotent so every command sees an initialized portfolio.
func (r *Runner) openStack(config *shared.Config) (*stack, error) {
	if err := shared.EnsureDataDir(config.Database.DataDir); err != nil {
		return nil, err
	}

	db, err := shared.NewDatabase(config.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	settings := repositories.NewSettingsRepository(db)
	if _, err := settings.EnsureDefaults(config.Agent.StartingBalance); err != nil {
		db.Close()
		return nil, err
	}

	watchlist := repositories.NewWatchlistRepository(db)
	if err := watchlist.SeedDefaults(); err != nil {
		db.Close()
		return nil, err
	}

	holdings := repositories.NewHoldingRepository(db)
	trades := repositories.NewTradeRepository(db)
	snapshots := repositories.NewSnapshotRepository(db)
	market := services.NewYahooService("")

	return &stack{
		db:        db,
		settings:  settings,
		holdings:  holdings,
		trades:    trades,
		snapshots: snapshots,
		thoughts:  repositories.NewThoughtRepository(db),
		watchlist: watchlist,
		memories:  repositories.NewMemoryRepository(db),
		market:    market,
		engine:    trading.NewEngine(settings, holdings, trades, snapshots, market, r.logger),
	}, nil
}

// notifier builds the X client from the configured credentials. Posting stays
// off unless the flag and all four credentials are present.
func (r *Runner) notifier(config *shared.Config) *services.TwitterService {
	tw := config.Credentials.Twitter
	creds := services.TwitterCredentials{
		APIKey:            tw.APIKey,
		APISecret:         tw.APISecret,
		AccessToken:       tw.AccessToken,
		AccessTokenSecret: tw.AccessTokenSecret,
	}

	return services.NewTwitterService(tw.Enabled, creds, config.Server.DashboardURL)
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
