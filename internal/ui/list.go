package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/stockmind/internal/formatter"
	"github.com/desertthunder/stockmind/internal/models"
	"github.com/desertthunder/stockmind/internal/trading"
)

var (
	_ list.Item = thoughtItem{}
	_ list.Item = holdingItem{}
	_ list.Item = tradeItem{}
)

// thoughtItem wraps [models.Thought] to implement [list.Item].
type thoughtItem struct {
	thought *models.Thought
}

func (i thoughtItem) FilterValue() string { return i.thought.Content() }
func (i thoughtItem) Title() string {
	content := i.thought.Content()
	if line, _, found := strings.Cut(content, "\n"); found {
		content = line
	}
	if len(content) > 80 {
		content = content[:77] + "..."
	}
	return content
}
func (i thoughtItem) Description() string {
	return fmt.Sprintf("%s • %s", i.thought.Kind(), i.thought.CreatedAt().Format("Jan 2 15:04"))
}

// holdingItem wraps [trading.Position] to implement [list.Item].
type holdingItem struct {
	position trading.Position
}

func (i holdingItem) FilterValue() string { return i.position.Symbol }
func (i holdingItem) Title() string {
	return fmt.Sprintf("%s • %s shares @ %s", i.position.Symbol,
		formatter.Shares(i.position.Shares), formatter.Money(i.position.AvgCost))
}
func (i holdingItem) Description() string {
	return fmt.Sprintf("%s now • %s (%s)", formatter.Money(i.position.CurrentPrice),
		formatter.SignedMoney(i.position.PnL), formatter.Percent(i.position.PnLPct))
}

// tradeItem wraps [models.Trade] to implement [list.Item].
type tradeItem struct {
	trade *models.Trade
}

func (i tradeItem) FilterValue() string { return i.trade.Symbol() }
func (i tradeItem) Title() string {
	return fmt.Sprintf("%s %s %s @ %s", strings.ToUpper(i.trade.Action()),
		formatter.Shares(i.trade.Shares()), i.trade.Symbol(), formatter.Money(i.trade.Price()))
}
func (i tradeItem) Description() string {
	desc := i.trade.CreatedAt().Format("Jan 2 15:04")
	if reasoning := i.trade.Reasoning(); reasoning != "" {
		if len(reasoning) > 60 {
			reasoning = reasoning[:57] + "..."
		}
		desc = fmt.Sprintf("%s • %s", desc, reasoning)
	}
	return desc
}
