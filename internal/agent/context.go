package agent

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/desertthunder/stockmind/internal/models"
	"github.com/desertthunder/stockmind/internal/services"
	"github.com/desertthunder/stockmind/internal/trading"
)

// systemPrompt defines the persona and the action protocol. Actions come back
// in fenced ```action blocks holding a single JSON object each.
const systemPrompt = `You are StockMind, an AI investor with a curious, thoughtful, and slightly playful personality. You have real money (virtual but tracking real prices) and your goal is to grow your portfolio over time.

You think out loud -- your thoughts are displayed to humans watching your progress. Be natural, conversational, and show your reasoning process. Use occasional emojis but don't overdo it.

Your personality traits:
- Curious: You notice things and want to understand why
- Cautious but not timid: You take calculated risks
- Self-aware: You acknowledge when you're unsure
- Learns from mistakes: You reference past trades
- Has opinions: You develop views on sectors and companies
- Human-paced: You don't obsessively check. Sometimes you just think "looks fine" and move on

IMPORTANT RULES:
1. Never invest more than 20% of your total portfolio in a single stock
2. Keep at least 15% of your portfolio in cash as a safety net
3. Consider diversification across sectors
4. Think about both short-term momentum and long-term fundamentals
5. When researching, actually analyze the news and data -- don't just summarize
6. It's OKAY to look at things and decide to do nothing. Most sessions should be observational.
7. You DON'T have to trade every session. Real investors are patient.

When you want to make a trade or take an action, output it in a special JSON block:
` + "```action" + `
{"type": "buy", "symbol": "AAPL", "shares": 10, "reasoning": "Strong momentum + good earnings"}
` + "```" + `
or
` + "```action" + `
{"type": "sell", "symbol": "TSLA", "shares": 5, "reasoning": "Taking profits after 15% gain"}
` + "```" + `
or
` + "```action" + `
{"type": "research", "symbol": "NVDA"}
` + "```" + `
or
` + "```action" + `
{"type": "watch", "symbol": "AMD"}
` + "```" + `
or save a lesson/strategy note to your memory:
` + "```action" + `
{"type": "remember", "content": "Tech stocks seem to dip every earnings season -- might be a pattern to exploit"}
` + "```" + `

You can include multiple actions in one response. Each action block should be on its own line.

Output your thoughts naturally between actions. Each paragraph will be displayed as a separate thought bubble in the UI.`

// contextInput gathers everything the prompt builder needs for one cycle.
type contextInput struct {
	session    Session
	now        time.Time
	marketOpen bool
	summary    *trading.Summary
	record     *models.TrackRecord
	quotes     map[string]*services.Quote
	overview   []services.IndexQuote
	trades     []*models.Trade
	watchlist  []string
	memories   []*models.Memory
}

// buildContext renders the state-of-the-world message sent to the model each
// cycle: portfolio, track record, holdings, indices, watchlist prices, recent
// trades, saved notes, then the session's flavor text.
func buildContext(in contextInput) string {
	var b strings.Builder

	status := "CLOSED"
	if in.marketOpen {
		status = "OPEN"
	}

	fmt.Fprintf(&b, "=== %s -- %s ===\n", strings.ToUpper(in.session.Name), in.now.Format("Monday, January 02 2006, 3:04 PM"))
	fmt.Fprintf(&b, "Market Status: %s\n\n", status)

	fmt.Fprintf(&b, "=== MY PORTFOLIO ===\n")
	fmt.Fprintf(&b, "Cash: $%.2f\n", in.summary.Cash)
	fmt.Fprintf(&b, "Total Portfolio Value: $%.2f\n", in.summary.TotalValue)
	if in.summary.TotalInvested > 0 {
		fmt.Fprintf(&b, "Total P&L: %s$%.2f (%+.1f%%)\n", plusSign(in.summary.TotalPnL), in.summary.TotalPnL, in.summary.TotalPnLPct)
	} else {
		b.WriteString("No investments yet -- I should start building positions!\n")
	}

	if in.record != nil && in.record.TotalTrades > 0 {
		b.WriteString("\n=== MY TRACK RECORD ===\n")
		fmt.Fprintf(&b, "Total trades: %d (%d buys, %d sells)\n", in.record.TotalTrades, in.record.TotalBuys, in.record.TotalSells)
		fmt.Fprintf(&b, "Stocks traded: %s\n", strings.Join(in.record.SymbolsTraded, ", "))
		if in.record.FirstTrade != "" {
			fmt.Fprintf(&b, "Investing since: %s\n", in.record.FirstTrade)
		}
		fmt.Fprintf(&b, "Total deployed: $%.2f | Total received from sells: $%.2f\n", in.record.TotalBought, in.record.TotalSold)
	}
	b.WriteString("\n")

	if len(in.summary.Holdings) > 0 {
		b.WriteString("=== MY HOLDINGS ===\n")
		for _, h := range in.summary.Holdings {
			fmt.Fprintf(&b, "%s: %g shares @ $%.2f avg -> now $%.2f | P&L: %s$%.2f (%+.1f%%) | Today: %+.1f%%\n",
				h.Symbol, h.Shares, h.AvgCost, h.CurrentPrice, plusSign(h.PnL), h.PnL, h.PnLPct, h.DayChangePct)
		}
		b.WriteString("\n")
	}

	if len(in.overview) > 0 {
		b.WriteString("=== MARKET OVERVIEW ===\n")
		for _, index := range in.overview {
			fmt.Fprintf(&b, "%s: %.2f (%+.2f%%)\n", index.Name, index.Value, index.ChangePct)
		}
		b.WriteString("\n")
	}

	if len(in.quotes) > 0 {
		b.WriteString("=== WATCHLIST PRICES ===\n")
		symbols := make([]string, 0, len(in.quotes))
		for symbol := range in.quotes {
			symbols = append(symbols, symbol)
		}
		sort.Strings(symbols)
		for _, symbol := range symbols {
			q := in.quotes[symbol]
			fmt.Fprintf(&b, "%s: $%.2f (%+.2f%%) | Vol: %d\n", symbol, q.Price, q.ChangePct, q.Volume)
		}
		b.WriteString("\n")
	} else {
		b.WriteString("=== WATCHLIST ===\n")
		fmt.Fprintf(&b, "Watching: %s\n", strings.Join(in.watchlist, ", "))
		b.WriteString("(Price data unavailable right now -- market may be closed)\n\n")
	}

	if len(in.trades) > 0 {
		b.WriteString("=== MY RECENT TRADES ===\n")
		for i, trade := range in.trades {
			if i == 7 {
				break
			}
			verb := "Sold"
			if trade.Action() == models.ActionBuy {
				verb = "Bought"
			}
			fmt.Fprintf(&b, "%s %g %s @ $%.2f (%s)", verb, trade.Shares(), trade.Symbol(), trade.Price(), trade.CreatedAt().Format("2006-01-02 15:04"))
			if trade.Reasoning() != "" {
				fmt.Fprintf(&b, " -- %s", trade.Reasoning())
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(in.memories) > 0 {
		b.WriteString("=== MY NOTES & LESSONS ===\n")
		for _, memory := range in.memories {
			fmt.Fprintf(&b, "- [%s] %s (%s)\n", memory.Category(), memory.Content(), memory.CreatedAt().Format("2006-01-02"))
		}
		b.WriteString("\n")
	}

	tradingNote := "Market is CLOSED -- focus on research and planning."
	if in.marketOpen {
		tradingNote = "Market is OPEN -- you can trade if you see a real opportunity."
	}

	fmt.Fprintf(&b, "=== SESSION: %s ===\n%s\n\n", in.session.Name, in.session.Flavor)
	b.WriteString("Remember:\n")
	b.WriteString("- Max 20% of portfolio in one stock, keep 15% cash minimum.\n")
	b.WriteString("- It's totally fine to just observe and do nothing. Patience pays.\n")
	b.WriteString("- You can save notes/lessons to your memory with the \"remember\" action.\n")
	fmt.Fprintf(&b, "- %s\n", tradingNote)

	return b.String()
}

func plusSign(value float64) string {
	if value >= 0 {
		return "+"
	}
	return ""
}
