// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// serveCommand runs the full service: HTTP server plus agent loop.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the dashboard server and the trading agent",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "no-agent",
				Usage: "Serve the dashboard without starting the agent loop",
			},
		},
		Action: r.Serve,
	}
}

// setupCommand handles database initialization.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Initialize the database, run migrations, and seed defaults",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Setup,
	}
}

// agentCommand runs agent cycles outside the serve loop.
func agentCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "agent",
		Usage: "Agent operations",
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "Run a single agent cycle and exit",
				Flags:  []cli.Flag{configFlag()},
				Action: r.AgentRun,
			},
		},
	}
}

// portfolioCommand prints or exports the current portfolio.
func portfolioCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "portfolio",
		Usage: "Show the portfolio valued at current prices",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.StringFlag{
				Name:    "export",
				Aliases: []string{"o"},
				Usage:   "Export holdings CSV and summary JSON with this base path",
			},
		},
		Action: r.Portfolio,
	}
}

// tradesCommand prints or exports the trade log.
func tradesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "trades",
		Usage: "Show the trade history",
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of trades to show",
				Value: 20,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.StringFlag{
				Name:    "export",
				Aliases: []string{"o"},
				Usage:   "Export trades to a CSV file at this path",
			},
		},
		Action: r.Trades,
	}
}

// watchlistCommand lists and edits the watchlist.
func watchlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "watchlist",
		Usage:  "Show the watchlist with current quotes",
		Flags:  []cli.Flag{configFlag()},
		Action: r.Watchlist,
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "Add a symbol to the watchlist",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "symbol"},
				},
				Flags:  []cli.Flag{configFlag()},
				Action: r.WatchlistAdd,
			},
		},
	}
}

// quoteCommand fetches current quotes for one or more symbols.
func quoteCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "quote",
		Usage: "Fetch current quotes for a comma-separated list of symbols",
		Arguments: []cli.Argument{
			&cli.StringArg{Name: "symbols"},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Quote,
	}
}

// resetCommand wipes the portfolio back to its starting state.
func resetCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "reset",
		Usage: "Wipe the database and start over with the initial balance",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "yes",
				Usage: "Skip the confirmation prompt",
			},
		},
		Action: r.Reset,
	}
}

// tuiCommand returns the top-level TUI command for the terminal dashboard.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch the interactive terminal dashboard",
		Flags:   []cli.Flag{configFlag()},
		Action:  r.TUI,
	}
}
