// package formatter renders portfolio and trade data for humans: money and
// percent strings for the CLI, plus CSV, Markdown and plain text exports.
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/stockmind/internal/models"
	"github.com/desertthunder/stockmind/internal/trading"
)

// Money formats a dollar amount with thousands separators, e.g. "$1,502.50".
// Negative amounts render as "-$1,502.50".
func Money(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	return fmt.Sprintf("%s$%s", sign, groupThousands(amount))
}

// SignedMoney is like [Money] but prefixes gains with "+", for P&L columns.
func SignedMoney(amount float64) string {
	if amount >= 0 {
		return "+" + Money(amount)
	}
	return Money(amount)
}

// Percent formats a percentage with an explicit sign, e.g. "+1.25%".
func Percent(pct float64) string {
	if pct >= 0 {
		return fmt.Sprintf("+%.2f%%", pct)
	}
	return fmt.Sprintf("%.2f%%", pct)
}

// Shares trims trailing zeros from fractional share counts so whole lots
// print as "10" rather than "10.0000".
func Shares(shares float64) string {
	formatted := strconv.FormatFloat(shares, 'f', 4, 64)
	formatted = strings.TrimRight(formatted, "0")
	return strings.TrimSuffix(formatted, ".")
}

func groupThousands(amount float64) string {
	whole := int64(math.Floor(amount))
	cents := int64(math.Round((amount - float64(whole)) * 100))
	if cents == 100 {
		whole++
		cents = 0
	}

	digits := strconv.FormatInt(whole, 10)
	var buf strings.Builder
	for i, digit := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			buf.WriteByte(',')
		}
		buf.WriteRune(digit)
	}
	return fmt.Sprintf("%s.%02d", buf.String(), cents)
}

// HoldingsToCSV renders the portfolio's positions as CSV with columns:
// Symbol, Shares, AvgCost, CurrentPrice, MarketValue, PnL, PnLPct.
func HoldingsToCSV(summary *trading.Summary) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Symbol", "Shares", "AvgCost", "CurrentPrice", "MarketValue", "PnL", "PnLPct"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, position := range summary.Holdings {
		record := []string{
			position.Symbol,
			Shares(position.Shares),
			strconv.FormatFloat(position.AvgCost, 'f', 2, 64),
			strconv.FormatFloat(position.CurrentPrice, 'f', 2, 64),
			strconv.FormatFloat(position.MarketValue, 'f', 2, 64),
			strconv.FormatFloat(position.PnL, 'f', 2, 64),
			strconv.FormatFloat(position.PnLPct, 'f', 2, 64),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// TradesToCSV renders the trade log as CSV with columns:
// Date, Action, Symbol, Shares, Price, Total, Reasoning.
func TradesToCSV(trades []*models.Trade) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Date", "Action", "Symbol", "Shares", "Price", "Total", "Reasoning"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, trade := range trades {
		record := []string{
			trade.CreatedAt().Format(time.RFC3339),
			trade.Action(),
			trade.Symbol(),
			Shares(trade.Shares()),
			strconv.FormatFloat(trade.Price(), 'f', 2, 64),
			strconv.FormatFloat(trade.Total(), 'f', 2, 64),
			trade.Reasoning(),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// PortfolioToMarkdown renders a portfolio report with holdings and recent
// trades tables.
func PortfolioToMarkdown(summary *trading.Summary, trades []*models.Trade) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Portfolio\n\n")
	buf.WriteString(fmt.Sprintf("**Total value**: %s\n", Money(summary.TotalValue)))
	buf.WriteString(fmt.Sprintf("**Cash**: %s\n", Money(summary.Cash)))
	buf.WriteString(fmt.Sprintf("**P&L**: %s (%s)\n\n", SignedMoney(summary.TotalPnL), Percent(summary.TotalPnLPct)))

	if len(summary.Holdings) > 0 {
		buf.WriteString("## Holdings\n\n")
		buf.WriteString("| Symbol | Shares | Avg Cost | Price | Value | P&L |\n")
		buf.WriteString("|--------|-------:|---------:|------:|------:|----:|\n")
		for _, position := range summary.Holdings {
			buf.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s |\n",
				position.Symbol,
				Shares(position.Shares),
				Money(position.AvgCost),
				Money(position.CurrentPrice),
				Money(position.MarketValue),
				SignedMoney(position.PnL),
			))
		}
		buf.WriteString("\n")
	}

	if len(trades) > 0 {
		buf.WriteString("## Recent Trades\n\n")
		buf.WriteString("| Date | Action | Symbol | Shares | Price | Total |\n")
		buf.WriteString("|------|--------|--------|-------:|------:|------:|\n")
		for _, trade := range trades {
			buf.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s | %s |\n",
				trade.CreatedAt().Format("2006-01-02 15:04"),
				strings.ToUpper(trade.Action()),
				trade.Symbol(),
				Shares(trade.Shares()),
				Money(trade.Price()),
				Money(trade.Total()),
			))
		}
	}

	return buf.Bytes(), nil
}

// PortfolioToText renders a compact plain text summary for the CLI.
func PortfolioToText(summary *trading.Summary) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Total value: %s\n", Money(summary.TotalValue)))
	buf.WriteString(fmt.Sprintf("Cash:        %s\n", Money(summary.Cash)))
	buf.WriteString(fmt.Sprintf("P&L:         %s (%s)\n", SignedMoney(summary.TotalPnL), Percent(summary.TotalPnLPct)))

	if len(summary.Holdings) == 0 {
		buf.WriteString("\nNo open positions.\n")
		return buf.Bytes(), nil
	}

	buf.WriteString("\n")
	for _, position := range summary.Holdings {
		buf.WriteString(fmt.Sprintf("%-6s %8s @ %s  now %s  %s (%s)\n",
			position.Symbol,
			Shares(position.Shares),
			Money(position.AvgCost),
			Money(position.CurrentPrice),
			SignedMoney(position.PnL),
			Percent(position.PnLPct),
		))
	}

	return buf.Bytes(), nil
}

// PortfolioToJSON renders the full summary as indented JSON.
func PortfolioToJSON(summary *trading.Summary) ([]byte, error) {
	return json.MarshalIndent(summary, "", "  ")
}

// ExportResult contains the paths of files created by WritePortfolioExport.
type ExportResult struct {
	HoldingsFile string
	SummaryFile  string
}

// WritePortfolioExport writes the portfolio to {base}_holdings.csv and
// {base}_summary.json. The base path defaults to "portfolio".
func WritePortfolioExport(summary *trading.Summary, baseFilepath string) (*ExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = "portfolio"
	}

	csvData, err := HoldingsToCSV(summary)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	holdingsFile := baseFilepath + "_holdings.csv"
	if err := os.WriteFile(holdingsFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	summaryJSON, err := PortfolioToJSON(summary)
	if err != nil {
		return nil, fmt.Errorf("failed to generate summary JSON: %w", err)
	}

	summaryFile := baseFilepath + "_summary.json"
	if err := os.WriteFile(summaryFile, summaryJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write summary file: %w", err)
	}

	return &ExportResult{
		HoldingsFile: holdingsFile,
		SummaryFile:  summaryFile,
	}, nil
}

// WriteTradesExport writes the trade log as CSV.
//
// Defaults to "trades.csv" as the filename.
func WriteTradesExport(trades []*models.Trade, filepath string) (string, error) {
	if filepath == "" {
		filepath = "trades.csv"
	}

	csvData, err := TradesToCSV(trades)
	if err != nil {
		return "", fmt.Errorf("failed to generate CSV: %w", err)
	}

	if err := os.WriteFile(filepath, csvData, 0644); err != nil {
		return "", fmt.Errorf("failed to write CSV file: %w", err)
	}

	return filepath, nil
}

// WriteMarkdownReport writes the portfolio report to a Markdown file.
//
// Defaults to "portfolio.md" as the filename.
func WriteMarkdownReport(summary *trading.Summary, trades []*models.Trade, filepath string) (string, error) {
	if filepath == "" {
		filepath = "portfolio.md"
	}

	mdData, err := PortfolioToMarkdown(summary, trades)
	if err != nil {
		return "", fmt.Errorf("failed to generate Markdown: %w", err)
	}

	if err := os.WriteFile(filepath, mdData, 0644); err != nil {
		return "", fmt.Errorf("failed to write Markdown file: %w", err)
	}

	return filepath, nil
}
