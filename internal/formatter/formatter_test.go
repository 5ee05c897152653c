package formatter

import (
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/stockmind/internal/models"
	th "github.com/desertthunder/stockmind/internal/testing"
	"github.com/desertthunder/stockmind/internal/trading"
)

func sampleSummary() *trading.Summary {
	return &trading.Summary{
		Cash: 84977.5,
		Holdings: []trading.Position{
			{
				Symbol:       "AAPL",
				Shares:       100,
				AvgCost:      150.25,
				CurrentPrice: 155.5,
				CostBasis:    15025,
				MarketValue:  15550,
				PnL:          525,
				PnLPct:       3.49,
			},
			{
				Symbol:       "NVDA",
				Shares:       2.5,
				AvgCost:      120,
				CurrentPrice: 110,
				CostBasis:    300,
				MarketValue:  275,
				PnL:          -25,
				PnLPct:       -8.33,
			},
		},
		TotalValue:       100802.5,
		TotalInvested:    15325,
		TotalMarketValue: 15825,
		TotalPnL:         500,
		TotalPnLPct:      3.26,
	}
}

func sampleTrades() []*models.Trade {
	created := time.Date(2025, 3, 14, 10, 30, 0, 0, time.UTC)
	return []*models.Trade{
		models.RestoreTrade("t1", 1, "AAPL", models.ActionBuy, 100, 150.25, 15025, "Strong earnings", created),
		models.RestoreTrade("t2", 2, "NVDA", models.ActionSell, 5, 110, 550, "Taking profits", created.Add(time.Hour)),
	}
}

func TestMoney(t *testing.T) {
	cases := []struct {
		amount float64
		want   string
	}{
		{0, "$0.00"},
		{1502.5, "$1,502.50"},
		{100000, "$100,000.00"},
		{1234567.89, "$1,234,567.89"},
		{-25.5, "-$25.50"},
		{999.999, "$1,000.00"},
	}

	for _, tc := range cases {
		if got := Money(tc.amount); got != tc.want {
			t.Errorf("Money(%v) = %q, want %q", tc.amount, got, tc.want)
		}
	}

	if got := SignedMoney(525); got != "+$525.00" {
		t.Errorf("SignedMoney(525) = %q", got)
	}
	if got := SignedMoney(-25); got != "-$25.00" {
		t.Errorf("SignedMoney(-25) = %q", got)
	}
}

func TestPercent(t *testing.T) {
	if got := Percent(3.494); got != "+3.49%" {
		t.Errorf("Percent(3.494) = %q", got)
	}
	if got := Percent(-8.33); got != "-8.33%" {
		t.Errorf("Percent(-8.33) = %q", got)
	}
}

func TestShares(t *testing.T) {
	if got := Shares(100); got != "100" {
		t.Errorf("Shares(100) = %q", got)
	}
	if got := Shares(2.5); got != "2.5" {
		t.Errorf("Shares(2.5) = %q", got)
	}
	if got := Shares(0.3333); got != "0.3333" {
		t.Errorf("Shares(0.3333) = %q", got)
	}
}

func TestExporters(t *testing.T) {
	t.Run("HoldingsToCSV", func(t *testing.T) {
		data, err := HoldingsToCSV(sampleSummary())
		if err != nil {
			t.Fatalf("HoldingsToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "Symbol,Shares,AvgCost,CurrentPrice,MarketValue,PnL,PnLPct") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "AAPL,100,150.25,155.50,15550.00,525.00,3.49") {
			t.Errorf("CSV missing AAPL row, got: %s", output)
		}
		if !strings.Contains(output, "NVDA,2.5,120.00,110.00,275.00,-25.00,-8.33") {
			t.Errorf("CSV missing NVDA row, got: %s", output)
		}
	})

	t.Run("TradesToCSV", func(t *testing.T) {
		data, err := TradesToCSV(sampleTrades())
		if err != nil {
			t.Fatalf("TradesToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "Date,Action,Symbol,Shares,Price,Total,Reasoning") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "buy,AAPL,100,150.25,15025.00,Strong earnings") {
			t.Errorf("CSV missing buy row, got: %s", output)
		}
		if !strings.Contains(output, "2025-03-14T10:30:00Z") {
			t.Errorf("CSV missing timestamp, got: %s", output)
		}
	})

	t.Run("PortfolioToMarkdown", func(t *testing.T) {
		data, err := PortfolioToMarkdown(sampleSummary(), sampleTrades())
		if err != nil {
			t.Fatalf("PortfolioToMarkdown failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "# Portfolio") {
			t.Errorf("Markdown missing title")
		}
		if !strings.Contains(output, "**Total value**: $100,802.50") {
			t.Errorf("Markdown missing total value, got: %s", output)
		}
		if !strings.Contains(output, "**P&L**: +$500.00 (+3.26%)") {
			t.Errorf("Markdown missing P&L line, got: %s", output)
		}
		if !strings.Contains(output, "## Holdings") {
			t.Errorf("Markdown missing holdings section")
		}
		if !strings.Contains(output, "| AAPL | 100 | $150.25 | $155.50 | $15,550.00 | +$525.00 |") {
			t.Errorf("Markdown missing AAPL row, got: %s", output)
		}
		if !strings.Contains(output, "## Recent Trades") {
			t.Errorf("Markdown missing trades section")
		}
		if !strings.Contains(output, "| 2025-03-14 10:30 | BUY | AAPL | 100 | $150.25 | $15,025.00 |") {
			t.Errorf("Markdown missing trade row, got: %s", output)
		}
	})

	t.Run("PortfolioToText", func(t *testing.T) {
		data, err := PortfolioToText(sampleSummary())
		if err != nil {
			t.Fatalf("PortfolioToText failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "Total value: $100,802.50") {
			t.Errorf("Text missing total value, got: %s", output)
		}
		if !strings.Contains(output, "AAPL") || !strings.Contains(output, "+$525.00 (+3.49%)") {
			t.Errorf("Text missing AAPL position, got: %s", output)
		}
	})

	t.Run("PortfolioToText with no positions", func(t *testing.T) {
		summary := &trading.Summary{Cash: 100000, TotalValue: 100000}

		data, err := PortfolioToText(summary)
		if err != nil {
			t.Fatalf("PortfolioToText failed: %v", err)
		}

		if !strings.Contains(string(data), "No open positions.") {
			t.Errorf("Text missing empty state, got: %s", data)
		}
	})

	t.Run("PortfolioToJSON", func(t *testing.T) {
		data, err := PortfolioToJSON(sampleSummary())
		if err != nil {
			t.Fatalf("PortfolioToJSON failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, `"total_value": 100802.5`) {
			t.Errorf("JSON missing total value, got: %s", output)
		}
		if !strings.Contains(output, `"symbol": "AAPL"`) {
			t.Errorf("JSON missing holding, got: %s", output)
		}
	})
}

func TestWriters(t *testing.T) {
	t.Run("WritePortfolioExport", func(t *testing.T) {
		t.Run("WithDefaultPath", func(t *testing.T) {
			tempDir := t.TempDir()
			originalDir := th.MustGetwd(t)
			th.MustChdir(t, tempDir)
			defer th.MustChdir(t, originalDir)

			result, err := WritePortfolioExport(sampleSummary(), "")
			if err != nil {
				t.Fatalf("WritePortfolioExport failed: %v", err)
			}

			if result.HoldingsFile != "portfolio_holdings.csv" {
				t.Errorf("Expected 'portfolio_holdings.csv', got '%s'", result.HoldingsFile)
			}
			if result.SummaryFile != "portfolio_summary.json" {
				t.Errorf("Expected 'portfolio_summary.json', got '%s'", result.SummaryFile)
			}

			th.AssertFileExists(t, result.HoldingsFile)
			th.AssertFileExists(t, result.SummaryFile)

			csvContent := th.MustReadFile(t, result.HoldingsFile)
			if !strings.Contains(csvContent, "AAPL") {
				t.Errorf("CSV missing holding data")
			}

			jsonContent := th.MustReadFile(t, result.SummaryFile)
			if !strings.Contains(jsonContent, `"cash"`) {
				t.Errorf("Summary JSON missing cash field")
			}
		})

		t.Run("WithCustomPath", func(t *testing.T) {
			tempDir := t.TempDir()
			originalDir := th.MustGetwd(t)
			th.MustChdir(t, tempDir)
			defer th.MustChdir(t, originalDir)

			result, err := WritePortfolioExport(sampleSummary(), "march_report")
			if err != nil {
				t.Fatalf("WritePortfolioExport failed: %v", err)
			}

			if result.HoldingsFile != "march_report_holdings.csv" {
				t.Errorf("Expected 'march_report_holdings.csv', got '%s'", result.HoldingsFile)
			}
			th.AssertFileExists(t, result.HoldingsFile)
			th.AssertFileExists(t, result.SummaryFile)
		})
	})

	t.Run("WriteTradesExport", func(t *testing.T) {
		tempDir := t.TempDir()
		originalDir := th.MustGetwd(t)
		th.MustChdir(t, tempDir)
		defer th.MustChdir(t, originalDir)

		filepath, err := WriteTradesExport(sampleTrades(), "")
		if err != nil {
			t.Fatalf("WriteTradesExport failed: %v", err)
		}

		if filepath != "trades.csv" {
			t.Errorf("Expected 'trades.csv', got '%s'", filepath)
		}

		th.AssertFileExists(t, filepath)

		content := th.MustReadFile(t, filepath)
		if !strings.Contains(content, "Strong earnings") {
			t.Errorf("CSV missing trade reasoning")
		}
	})

	t.Run("WriteMarkdownReport", func(t *testing.T) {
		tempDir := t.TempDir()
		originalDir := th.MustGetwd(t)
		th.MustChdir(t, tempDir)
		defer th.MustChdir(t, originalDir)

		filepath, err := WriteMarkdownReport(sampleSummary(), sampleTrades(), "report.md")
		if err != nil {
			t.Fatalf("WriteMarkdownReport failed: %v", err)
		}

		if filepath != "report.md" {
			t.Errorf("Expected 'report.md', got '%s'", filepath)
		}

		th.AssertFileExists(t, filepath)

		content := th.MustReadFile(t, filepath)
		if !strings.Contains(content, "# Portfolio") {
			t.Errorf("Markdown missing title")
		}
	})
}
