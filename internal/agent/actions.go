package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/desertthunder/stockmind/internal/models"
	"github.com/desertthunder/stockmind/internal/services"
)

// maxResearchDepth bounds recursive research: an analysis response may emit
// further actions, but never another round of research-on-research.
const maxResearchDepth = 2

// action is the JSON payload inside a fenced action block.
type action struct {
	Type      string  `json:"type"`
	Symbol    string  `json:"symbol"`
	Shares    float64 `json:"shares"`
	Reasoning string  `json:"reasoning"`
	Content   string  `json:"content"`
	Category  string  `json:"category"`
}

// processResponse splits a model response into thoughts and actions.
// Paragraphs become thinking thoughts; fenced action blocks are executed in
// order as they appear.
func (a *Agent) processResponse(ctx context.Context, response string, depth int) error {
	var (
		paragraph []string
		inBlock   bool
		payload   strings.Builder
	)

	flush := func() {
		text := strings.TrimSpace(strings.Join(paragraph, "\n"))
		if text != "" {
			a.think(models.ThoughtThinking, text, nil)
		}
		paragraph = nil
	}

	for _, line := range strings.Split(response, "\n") {
		stripped := strings.TrimSpace(line)

		switch {
		case stripped == "```action":
			flush()
			inBlock = true
			payload.Reset()
		case stripped == "```" && inBlock:
			inBlock = false
			a.executeAction(ctx, strings.TrimSpace(payload.String()), depth)
		case inBlock:
			payload.WriteString(line)
			payload.WriteString("\n")
		case stripped == "":
			flush()
		default:
			paragraph = append(paragraph, stripped)
		}
	}
	flush()

	return nil
}

// executeAction runs one parsed action. Failures become error thoughts
// rather than aborting the cycle.
func (a *Agent) executeAction(ctx context.Context, payload string, depth int) {
	var act action
	if err := json.Unmarshal([]byte(payload), &act); err != nil {
		a.think(models.ThoughtError, "Tried to do something but got confused with the details. Moving on.", nil)
		return
	}

	symbol := strings.ToUpper(strings.TrimSpace(act.Symbol))

	switch act.Type {
	case "buy":
		a.executeBuy(ctx, symbol, act.Shares, act.Reasoning)
	case "sell":
		a.executeSell(ctx, symbol, act.Shares, act.Reasoning)
	case "research":
		a.executeResearch(ctx, symbol, depth)
	case "watch":
		if err := a.watchlist.Add(symbol); err != nil {
			a.think(models.ThoughtError, fmt.Sprintf("Couldn't add %s to the watchlist: %v", symbol, err), nil)
			return
		}
		a.think(models.ThoughtSystem, fmt.Sprintf("Added %s to my watchlist. I'll keep an eye on it!", symbol), nil)
	case "remember":
		if act.Content == "" {
			return
		}
		if err := a.memories.Create(models.NewMemory(act.Category, act.Content)); err != nil {
			a.think(models.ThoughtError, fmt.Sprintf("Couldn't save that note: %v", err), nil)
			return
		}
		a.think(models.ThoughtSystem, fmt.Sprintf("Noted: %q", act.Content), nil)
	default:
		a.logger.Warn("unknown action type", "type", act.Type)
	}
}

func (a *Agent) executeBuy(ctx context.Context, symbol string, shares float64, reasoning string) {
	a.think(models.ThoughtTrade, fmt.Sprintf("Placing buy order: %g shares of %s...", shares, symbol), nil)

	result, err := a.engine.Buy(ctx, symbol, shares, reasoning)
	if err != nil {
		a.think(models.ThoughtError, fmt.Sprintf("Buy order failed: %v", err), nil)
		return
	}

	a.think(models.ThoughtTrade,
		fmt.Sprintf("Bought %g shares of %s at $%.2f for $%.2f. Cash remaining: $%.2f",
			result.Shares, result.Symbol, result.Price, result.Total, result.NewCash),
		map[string]any{"symbol": result.Symbol, "shares": result.Shares, "price": result.Price, "total": result.Total})

	a.notify(ctx, services.TradeMessage(result.Action, result.Symbol, result.Shares, result.Price, result.Total, 0, false, reasoning))
}

func (a *Agent) executeSell(ctx context.Context, symbol string, shares float64, reasoning string) {
	a.think(models.ThoughtTrade, fmt.Sprintf("Placing sell order: %g shares of %s...", shares, symbol), nil)

	result, err := a.engine.Sell(ctx, symbol, shares, reasoning)
	if err != nil {
		a.think(models.ThoughtError, fmt.Sprintf("Sell order failed: %v", err), nil)
		return
	}

	a.think(models.ThoughtTrade,
		fmt.Sprintf("Sold %g shares of %s at $%.2f for $%.2f. P&L: %s$%.2f",
			result.Shares, result.Symbol, result.Price, result.Total, plusSign(result.PnL), result.PnL),
		map[string]any{"symbol": result.Symbol, "shares": result.Shares, "price": result.Price, "pnl": result.PnL})

	a.notify(ctx, services.TradeMessage(result.Action, result.Symbol, result.Shares, result.Price, result.Total, result.PnL, true, reasoning))
}

// executeResearch gathers detail and headlines for a symbol, asks the model
// for an analysis, then feeds that analysis back through the response parser
// so it can emit follow-up actions.
func (a *Agent) executeResearch(ctx context.Context, symbol string, depth int) {
	if depth >= maxResearchDepth {
		a.logger.Warn("research depth limit reached", "symbol", symbol)
		return
	}

	a.think(models.ThoughtResearch, fmt.Sprintf("Researching %s... let me dig into this.", symbol), nil)

	detail, err := a.market.Detail(ctx, symbol)
	if err != nil {
		a.think(models.ThoughtError, fmt.Sprintf("Research failed for %s: %v", symbol, err), nil)
		return
	}

	news, err := a.market.News(ctx, symbol)
	if err != nil {
		a.logger.Warn("news fetch failed", "symbol", symbol, "error", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Research results for %s:\n", symbol)
	fmt.Fprintf(&b, "Name: %s\n", detail.Name)
	fmt.Fprintf(&b, "Price: $%.2f\n", detail.Price)
	fmt.Fprintf(&b, "Month Change: %+.1f%%\n", detail.MonthChangePct)
	fmt.Fprintf(&b, "5-day SMA: $%.2f | 20-day SMA: $%.2f\n", detail.SMA5, detail.SMA20)
	fmt.Fprintf(&b, "Volatility: %.2f%%\n", detail.Volatility)
	if detail.FiftyTwoWeekHigh > 0 {
		fmt.Fprintf(&b, "52wk High: $%.2f\n", detail.FiftyTwoWeekHigh)
	}
	if detail.FiftyTwoWeekLow > 0 {
		fmt.Fprintf(&b, "52wk Low: $%.2f\n", detail.FiftyTwoWeekLow)
	}

	if len(news) > 0 {
		b.WriteString("\nRecent News:\n")
		for _, item := range news {
			fmt.Fprintf(&b, "- %s (%s)\n", item.Title, item.Publisher)
		}
	}

	a.think(models.ThoughtResearch, fmt.Sprintf("Research data for %s gathered. Analyzing...", symbol),
		map[string]any{"symbol": symbol, "news_count": len(news)})

	prompt := fmt.Sprintf("You just researched %s. Here's what you found:\n\n%s\nShare your analysis. Be specific -- is it a buy, sell, or hold? Why? Think out loud.", symbol, b.String())
	analysis, err := a.llm.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		a.think(models.ThoughtError, fmt.Sprintf("Analysis failed for %s: %v", symbol, err), nil)
		return
	}

	a.processResponse(ctx, analysis, depth+1)
	a.notify(ctx, services.ResearchMessage(symbol, analysis))
}
