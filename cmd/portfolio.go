package main

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/desertthunder/stockmind/internal/formatter"
	"github.com/desertthunder/stockmind/internal/services"
	"github.com/desertthunder/stockmind/internal/shared"
	"github.com/urfave/cli/v3"
)

// Portfolio prints the portfolio valued at current prices, optionally as
// JSON or exported to CSV plus a summary JSON file.
func (r *Runner) Portfolio(ctx context.Context, cmd *cli.Command) error {
	config, err := r.resolveConfig(cmd)
	if err != nil {
		return err
	}

	st, err := r.openStack(config)
	if err != nil {
		return err
	}
	defer st.Close()

	summary, err := st.engine.Summary(ctx)
	if err != nil {
		return err
	}

	if base := cmd.String("export"); base != "" {
		result, err := formatter.WritePortfolioExport(summary, base)
		if err != nil {
			return err
		}
		r.writePlain("✓ Exported %s and %s\n", result.HoldingsFile, result.SummaryFile)
		return nil
	}

	if cmd.Bool("json") {
		return r.writeJSON(summary, true)
	}

	text, err := formatter.PortfolioToText(summary)
	if err != nil {
		return err
	}
	return r.writePlain("%s", text)
}

// Trades prints the trade history, newest first.
func (r *Runner) Trades(ctx context.Context, cmd *cli.Command) error {
	config, err := r.resolveConfig(cmd)
	if err != nil {
		return err
	}

	st, err := r.openStack(config)
	if err != nil {
		return err
	}
	defer st.Close()

	trades, err := st.trades.List(int(cmd.Int("limit")))
	if err != nil {
		return err
	}

	if path := cmd.String("export"); path != "" {
		written, err := formatter.WriteTradesExport(trades, path)
		if err != nil {
			return err
		}
		r.writePlain("✓ Exported %s\n", written)
		return nil
	}

	if len(trades) == 0 {
		r.writePlain("No trades yet.\n")
		return nil
	}

	if cmd.Bool("json") {
		views := make([]map[string]any, 0, len(trades))
		for _, trade := range trades {
			views = append(views, map[string]any{
				"symbol":     trade.Symbol(),
				"action":     trade.Action(),
				"shares":     trade.Shares(),
				"price":      trade.Price(),
				"total":      trade.Total(),
				"reasoning":  trade.Reasoning(),
				"created_at": trade.CreatedAt(),
			})
		}
		return r.writeJSON(views, true)
	}

	for _, trade := range trades {
		r.writePlain("%s  %-4s %8s %-6s @ %s  (%s)\n",
			trade.CreatedAt().Format("2006-01-02 15:04"),
			strings.ToUpper(trade.Action()),
			formatter.Shares(trade.Shares()),
			trade.Symbol(),
			formatter.Money(trade.Price()),
			formatter.Money(trade.Total()),
		)
	}
	return nil
}

// Watchlist prints the watchlist with current quotes where available.
func (r *Runner) Watchlist(ctx context.Context, cmd *cli.Command) error {
	config, err := r.resolveConfig(cmd)
	if err != nil {
		return err
	}

	st, err := r.openStack(config)
	if err != nil {
		return err
	}
	defer st.Close()

	symbols, err := st.watchlist.List()
	if err != nil {
		return err
	}
	if len(symbols) == 0 {
		r.writePlain("Watchlist is empty.\n")
		return nil
	}

	quotes, err := st.market.Quotes(ctx, symbols)
	if err != nil {
		r.logger.Warn("quotes unavailable", "error", err)
		quotes = nil
	}

	sort.Strings(symbols)
	for _, symbol := range symbols {
		if quote, ok := quotes[symbol]; ok {
			r.writePlain("%-6s %10s  %s\n", symbol,
				formatter.Money(quote.Price), formatter.Percent(quote.ChangePct))
		} else {
			r.writePlain("%-6s     (no quote)\n", symbol)
		}
	}
	return nil
}

// WatchlistAdd adds a symbol to the watchlist.
func (r *Runner) WatchlistAdd(ctx context.Context, cmd *cli.Command) error {
	symbol := strings.ToUpper(strings.TrimSpace(cmd.StringArg("symbol")))
	if symbol == "" {
		return fmt.Errorf("%w: symbol", shared.ErrMissingArgument)
	}

	config, err := r.resolveConfig(cmd)
	if err != nil {
		return err
	}

	st, err := r.openStack(config)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.watchlist.Add(symbol); err != nil {
		return err
	}

	r.writePlain("✓ Added %s to the watchlist\n", symbol)
	return nil
}

// Quote fetches current quotes for a comma-separated list of symbols. No
// database required.
func (r *Runner) Quote(ctx context.Context, cmd *cli.Command) error {
	raw := cmd.StringArg("symbols")
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("%w: symbols", shared.ErrMissingArgument)
	}

	var symbols []string
	for _, symbol := range strings.Split(raw, ",") {
		if symbol = strings.ToUpper(strings.TrimSpace(symbol)); symbol != "" {
			symbols = append(symbols, symbol)
		}
	}

	market := services.NewYahooService("")
	quotes, err := market.Quotes(ctx, symbols)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(quotes, true)
	}

	for _, symbol := range symbols {
		quote, ok := quotes[symbol]
		if !ok {
			r.writePlain("%-6s     (no quote)\n", symbol)
			continue
		}
		r.writePlain("%-6s %10s  %s (%s)\n", symbol,
			formatter.Money(quote.Price),
			formatter.SignedMoney(quote.Change),
			formatter.Percent(quote.ChangePct),
		)
	}
	return nil
}

// Reset deletes the database file and re-initializes it with the starting
// balance and default watchlist.
func (r *Runner) Reset(ctx context.Context, cmd *cli.Command) error {
	if !cmd.Bool("yes") {
		r.writePlain("This wipes all holdings, trades, and thoughts. Re-run with --yes to confirm.\n")
		return nil
	}

	config, err := r.resolveConfig(cmd)
	if err != nil {
		return err
	}

	if err := shared.RemoveDatabase(config.DatabasePath()); err != nil {
		return err
	}

	st, err := r.openStack(config)
	if err != nil {
		return err
	}
	defer st.Close()

	cash, err := st.settings.CashBalance()
	if err != nil {
		return err
	}

	r.writePlain("✓ Portfolio reset, starting balance %s\n", formatter.Money(cash))
	return nil
}
