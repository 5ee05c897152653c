package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/stockmind/internal/formatter"
	"github.com/desertthunder/stockmind/internal/models"
	"github.com/desertthunder/stockmind/internal/repositories"
	"github.com/desertthunder/stockmind/internal/services"
	"github.com/desertthunder/stockmind/internal/trading"
)

// pollInterval is how often the dashboard re-reads the database.
const pollInterval = 2 * time.Second

const feedLimit = 100

// ViewState represents the current view in the TUI.
type ViewState int

const (
	FeedView ViewState = iota
	PortfolioView
	TradeLogView
)

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	view     ViewState
	engine   *trading.Engine
	thoughts *repositories.ThoughtRepository
	trades   *repositories.TradeRepository

	width  int
	height int

	feedList    list.Model
	holdingList list.Model
	tradeList   list.Model
	summary     *trading.Summary

	err  error
	help help.Model
	keys keyMap
}

type summaryFetchedMsg struct {
	summary *trading.Summary
	err     error
}

type thoughtsFetchedMsg struct {
	thoughts []*models.Thought
	err      error
}

type tradesFetchedMsg struct {
	trades []*models.Trade
	err    error
}

type tickMsg time.Time

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, engine *trading.Engine, thoughts *repositories.ThoughtRepository, trades *repositories.TradeRepository) *Model {
	delegate := list.NewDefaultDelegate()

	feedList := list.New(nil, delegate, 0, 0)
	feedList.Title = "Thought Feed"
	feedList.SetShowStatusBar(false)

	holdingList := list.New(nil, delegate, 0, 0)
	holdingList.Title = "Portfolio"
	holdingList.SetShowStatusBar(false)

	tradeList := list.New(nil, delegate, 0, 0)
	tradeList.Title = "Trade Log"
	tradeList.SetShowStatusBar(false)

	return &Model{
		ctx:         ctx,
		view:        FeedView,
		engine:      engine,
		thoughts:    thoughts,
		trades:      trades,
		feedList:    feedList,
		holdingList: holdingList,
		tradeList:   tradeList,
		help:        help.New(),
		keys:        newKeyMap(),
	}
}

// Init kicks off the first fetch and the poll loop.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.fetchSummary(), m.fetchThoughts(), m.fetchTrades(), m.tick())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		listHeight := msg.Height - 6
		m.feedList.SetSize(msg.Width-4, listHeight)
		m.holdingList.SetSize(msg.Width-4, listHeight)
		m.tradeList.SetSize(msg.Width-4, listHeight)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "tab":
			m.view = (m.view + 1) % 3
			return m, nil
		case "r":
			return m, tea.Batch(m.fetchSummary(), m.fetchThoughts(), m.fetchTrades())
		}

	case tickMsg:
		return m, tea.Batch(m.fetchSummary(), m.fetchThoughts(), m.fetchTrades(), m.tick())

	case summaryFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.summary = msg.summary
		items := make([]list.Item, len(msg.summary.Holdings))
		for i, position := range msg.summary.Holdings {
			items[i] = holdingItem{position: position}
		}
		return m, m.holdingList.SetItems(items)

	case thoughtsFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		items := make([]list.Item, len(msg.thoughts))
		for i, thought := range msg.thoughts {
			items[i] = thoughtItem{thought: thought}
		}
		return m, m.feedList.SetItems(items)

	case tradesFetchedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		items := make([]list.Item, len(msg.trades))
		for i, trade := range msg.trades {
			items[i] = tradeItem{trade: trade}
		}
		return m, m.tradeList.SetItems(items)
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	header := m.renderHeader()
	helpView := m.help.ShortHelpView(m.keys.ShortHelp())

	var body string
	switch m.view {
	case FeedView:
		body = m.feedList.View()
	case PortfolioView:
		body = m.holdingList.View()
	case TradeLogView:
		body = m.tradeList.View()
	}

	return fmt.Sprintf("%s\n%s\n\n%s", header, body, helpView)
}

func (m *Model) renderHeader() string {
	market := "market closed"
	if services.IsMarketHours(time.Now()) {
		market = styles.ok.Render("market open")
	}

	if m.err != nil {
		return fmt.Sprintf("%s  %s", market, styles.err.Render(fmt.Sprintf("error: %v", m.err)))
	}
	if m.summary == nil {
		return market
	}

	pnl := fmt.Sprintf("%s (%s)", formatter.SignedMoney(m.summary.TotalPnL), formatter.Percent(m.summary.TotalPnLPct))
	if m.summary.TotalPnL >= 0 {
		pnl = styles.ok.Render(pnl)
	} else {
		pnl = styles.err.Render(pnl)
	}

	return fmt.Sprintf("%s  cash %s  P&L %s  %s",
		styles.title.Render(formatter.Money(m.summary.TotalValue)),
		formatter.Money(m.summary.Cash),
		pnl,
		market,
	)
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case FeedView:
		m.feedList, cmd = m.feedList.Update(msg)
	case PortfolioView:
		m.holdingList, cmd = m.holdingList.Update(msg)
	case TradeLogView:
		m.tradeList, cmd = m.tradeList.Update(msg)
	}
	return m, cmd
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(pollInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *Model) fetchSummary() tea.Cmd {
	return func() tea.Msg {
		summary, err := m.engine.Summary(m.ctx)
		return summaryFetchedMsg{summary: summary, err: err}
	}
}

func (m *Model) fetchThoughts() tea.Cmd {
	return func() tea.Msg {
		thoughts, err := m.thoughts.ListAfter(0, feedLimit)
		return thoughtsFetchedMsg{thoughts: thoughts, err: err}
	}
}

func (m *Model) fetchTrades() tea.Cmd {
	return func() tea.Msg {
		trades, err := m.trades.List(feedLimit)
		return tradesFetchedMsg{trades: trades, err: err}
	}
}
