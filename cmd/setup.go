package main

import (
	"context"
	"os"

	"github.com/desertthunder/stockmind/internal/formatter"
	"github.com/desertthunder/stockmind/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup initializes the database, runs migrations, and seeds the default
// settings and watchlist. Creates a config file from the template when the
// given path does not exist yet.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	config := r.config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			r.logger.Warn("failed to load config, using defaults", "error", err)
			config = r.config
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using defaults", "error", err)
		} else {
			r.logger.Info("config file created", "path", configPath)
			if config, err = shared.LoadConfig(configPath); err != nil {
				r.logger.Warn("failed to load created config, using defaults", "error", err)
				config = r.config
			}
		}
	}

	if err := shared.ApplyEnv(config); err != nil {
		return err
	}

	r.logger.Info("initializing database", "path", config.DatabasePath())

	st, err := r.openStack(config)
	if err != nil {
		return err
	}
	defer st.Close()

	cash, err := st.settings.CashBalance()
	if err != nil {
		return err
	}

	r.logger.Infof("setup complete for database: %v", config.DatabasePath())
	r.writePlain("✓ Database initialized\n")
	r.writePlain("Cash balance: %s\n", formatter.Money(cash))
	r.writePlain("Run 'stockmind serve' to start the dashboard and agent\n")
	return nil
}
