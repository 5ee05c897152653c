package trading

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/stockmind/internal/models"
	"github.com/desertthunder/stockmind/internal/repositories"
	"github.com/desertthunder/stockmind/internal/services"
	"github.com/desertthunder/stockmind/internal/shared"
)

const (
	// CommissionPerTrade is zero, matching modern retail brokerages.
	CommissionPerTrade float64 = 0.0

	// SlippagePct simulates execution slippage: buys fill slightly above
	// the quote, sells slightly below.
	SlippagePct float64 = 0.01
)

// RiskProfile bounds how the agent sizes positions.
type RiskProfile struct {
	Name           string  `json:"name"`
	MaxPositionPct float64 `json:"max_position_pct"`
	CashReservePct float64 `json:"cash_reserve_pct"`
	Description    string  `json:"description"`
}

// RiskProfiles are the selectable trading styles.
var RiskProfiles = map[string]RiskProfile{
	"safe": {
		Name:           "safe",
		MaxPositionPct: 10,
		CashReservePct: 30,
		Description:    "small positions, large cash buffer",
	},
	"moderate": {
		Name:           "moderate",
		MaxPositionPct: 20,
		CashReservePct: 15,
		Description:    "balanced position sizing",
	},
	"aggressive": {
		Name:           "aggressive",
		MaxPositionPct: 35,
		CashReservePct: 5,
		Description:    "concentrated positions, minimal buffer",
	},
}

// TradeResult reports an executed order.
type TradeResult struct {
	Symbol  string  `json:"symbol"`
	Action  string  `json:"action"`
	Shares  float64 `json:"shares"`
	Price   float64 `json:"price"`
	Total   float64 `json:"total"`
	NewCash float64 `json:"new_cash"`

	// Buy fields
	NewShares float64 `json:"new_shares,omitempty"`
	AvgCost   float64 `json:"avg_cost,omitempty"`

	// Sell fields
	PnL             float64 `json:"pnl"`
	RemainingShares float64 `json:"remaining_shares,omitempty"`
}

// Position is a holding enriched with a live quote.
type Position struct {
	Symbol       string  `json:"symbol"`
	Shares       float64 `json:"shares"`
	AvgCost      float64 `json:"avg_cost"`
	CurrentPrice float64 `json:"current_price"`
	CostBasis    float64 `json:"cost_basis"`
	MarketValue  float64 `json:"market_value"`
	PnL          float64 `json:"pnl"`
	PnLPct       float64 `json:"pnl_pct"`
	DayChangePct float64 `json:"day_change_pct"`
}

// Summary is the full portfolio valued at current prices.
type Summary struct {
	Cash             float64    `json:"cash"`
	Holdings         []Position `json:"holdings"`
	TotalValue       float64    `json:"total_value"`
	TotalInvested    float64    `json:"total_invested"`
	TotalMarketValue float64    `json:"total_market_value"`
	TotalPnL         float64    `json:"total_pnl"`
	TotalPnLPct      float64    `json:"total_pnl_pct"`
}

// Engine executes paper trades and values the portfolio.
type Engine struct {
	settings  *repositories.SettingsRepository
	holdings  *repositories.HoldingRepository
	trades    *repositories.TradeRepository
	snapshots *repositories.SnapshotRepository
	market    services.MarketService
	logger    *log.Logger
}

// NewEngine creates a trading engine over the given repositories and market data source.
func NewEngine(
	settings *repositories.SettingsRepository,
	holdings *repositories.HoldingRepository,
	trades *repositories.TradeRepository,
	snapshots *repositories.SnapshotRepository,
	market services.MarketService,
	logger *log.Logger,
) *Engine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Engine{
		settings:  settings,
		holdings:  holdings,
		trades:    trades,
		snapshots: snapshots,
		market:    market,
		logger:    logger,
	}
}

// Buy executes a buy order at the current quote plus slippage.
//
// Fails with [shared.ErrInsufficientFunds] when cash cannot cover the order;
// the error message includes the maximum affordable share count when there
// is room for a smaller order.
func (e *Engine) Buy(ctx context.Context, symbol string, shares float64, reasoning string) (*TradeResult, error) {
	if shares <= 0 {
		return nil, fmt.Errorf("%w: share count must be positive", shared.ErrInvalidInput)
	}

	quote, err := e.quote(ctx, symbol)
	if err != nil {
		return nil, err
	}
	symbol = quote.Symbol

	execPrice := round2(quote.Price * (1 + SlippagePct/100))
	totalCost := round2(execPrice*shares + CommissionPerTrade)

	cash, err := e.settings.CashBalance()
	if err != nil {
		return nil, err
	}

	if totalCost > cash {
		maxShares := int(cash / execPrice)
		if maxShares <= 0 {
			return nil, fmt.Errorf("%w: need $%.2f, have $%.2f", shared.ErrInsufficientFunds, totalCost, cash)
		}
		return nil, fmt.Errorf("%w: not enough cash for %g shares, max affordable: %d shares",
			shared.ErrInsufficientFunds, shares, maxShares)
	}

	newCash := round2(cash - totalCost)
	if err := e.settings.SetCashBalance(newCash); err != nil {
		return nil, err
	}

	newShares := shares
	newAvg := execPrice
	if existing, err := e.holdings.GetBySymbol(symbol); err == nil {
		oldShares := existing.Shares()
		oldCost := existing.AvgCost()
		newShares = oldShares + shares
		newAvg = round2(((oldShares * oldCost) + (shares * execPrice)) / newShares)
	}

	if err := e.holdings.Upsert(symbol, newShares, newAvg); err != nil {
		return nil, err
	}

	trade := models.NewTrade(symbol, models.ActionBuy, shares, execPrice, totalCost, reasoning)
	if err := e.trades.Create(trade); err != nil {
		return nil, err
	}

	e.logger.Info("executed buy", "symbol", symbol, "shares", shares, "price", execPrice, "cash", newCash)

	return &TradeResult{
		Symbol:    symbol,
		Action:    models.ActionBuy,
		Shares:    shares,
		Price:     execPrice,
		Total:     totalCost,
		NewCash:   newCash,
		NewShares: newShares,
		AvgCost:   newAvg,
	}, nil
}

// Sell executes a sell order at the current quote minus slippage and reports
// the realized P&L against the position's average cost.
func (e *Engine) Sell(ctx context.Context, symbol string, shares float64, reasoning string) (*TradeResult, error) {
	if shares <= 0 {
		return nil, fmt.Errorf("%w: share count must be positive", shared.ErrInvalidInput)
	}

	existing, err := e.holdings.GetBySymbol(symbol)
	if err != nil {
		return nil, fmt.Errorf("%w: no shares of %s to sell", shared.ErrInsufficientShares, symbol)
	}
	if shares > existing.Shares() {
		return nil, fmt.Errorf("%w: only have %g shares of %s, tried to sell %g",
			shared.ErrInsufficientShares, existing.Shares(), symbol, shares)
	}

	quote, err := e.quote(ctx, symbol)
	if err != nil {
		return nil, err
	}
	symbol = quote.Symbol

	execPrice := round2(quote.Price * (1 - SlippagePct/100))
	proceeds := round2(execPrice*shares - CommissionPerTrade)

	costBasis := existing.AvgCost() * shares
	pnl := round2(proceeds - costBasis)

	cash, err := e.settings.CashBalance()
	if err != nil {
		return nil, err
	}
	newCash := round2(cash + proceeds)
	if err := e.settings.SetCashBalance(newCash); err != nil {
		return nil, err
	}

	remaining := round4(existing.Shares() - shares)
	if err := e.holdings.Upsert(symbol, remaining, existing.AvgCost()); err != nil {
		return nil, err
	}

	trade := models.NewTrade(symbol, models.ActionSell, shares, execPrice, proceeds, reasoning)
	if err := e.trades.Create(trade); err != nil {
		return nil, err
	}

	e.logger.Info("executed sell", "symbol", symbol, "shares", shares, "price", execPrice, "pnl", pnl)

	return &TradeResult{
		Symbol:          symbol,
		Action:          models.ActionSell,
		Shares:          shares,
		Price:           execPrice,
		Total:           proceeds,
		NewCash:         newCash,
		PnL:             pnl,
		RemainingShares: remaining,
	}, nil
}

// Summary values every holding at its current quote. Symbols that cannot be
// quoted fall back to cost basis so the totals stay meaningful offline.
func (e *Engine) Summary(ctx context.Context) (*Summary, error) {
	cash, err := e.settings.CashBalance()
	if err != nil {
		return nil, err
	}

	holdings, err := e.holdings.List(0)
	if err != nil {
		return nil, err
	}

	summary := &Summary{Cash: cash, Holdings: []Position{}, TotalValue: cash}
	if len(holdings) == 0 {
		return summary, nil
	}

	symbols := make([]string, len(holdings))
	for i, holding := range holdings {
		symbols[i] = holding.Symbol()
	}

	quotes, err := e.market.Quotes(ctx, symbols)
	if err != nil {
		e.logger.Warn("quote fetch failed, valuing at cost", "error", err)
		quotes = map[string]*services.Quote{}
	}

	var totalMarketValue, totalCostBasis float64
	for _, holding := range holdings {
		costBasis := round2(holding.CostBasis())

		position := Position{
			Symbol:       holding.Symbol(),
			Shares:       holding.Shares(),
			AvgCost:      holding.AvgCost(),
			CurrentPrice: holding.AvgCost(),
			CostBasis:    costBasis,
			MarketValue:  costBasis,
		}

		if quote, ok := quotes[holding.Symbol()]; ok {
			position.CurrentPrice = quote.Price
			position.MarketValue = round2(holding.Shares() * quote.Price)
			position.PnL = round2(position.MarketValue - costBasis)
			if costBasis != 0 {
				position.PnLPct = round2(position.PnL / costBasis * 100)
			}
			position.DayChangePct = quote.ChangePct
		}

		totalMarketValue += position.MarketValue
		totalCostBasis += costBasis
		summary.Holdings = append(summary.Holdings, position)
	}

	sort.Slice(summary.Holdings, func(i, j int) bool {
		return summary.Holdings[i].MarketValue > summary.Holdings[j].MarketValue
	})

	summary.TotalMarketValue = round2(totalMarketValue)
	summary.TotalInvested = round2(totalCostBasis)
	summary.TotalValue = round2(cash + totalMarketValue)
	summary.TotalPnL = round2(totalMarketValue - totalCostBasis)
	if totalCostBasis != 0 {
		summary.TotalPnLPct = round2(summary.TotalPnL / totalCostBasis * 100)
	}

	return summary, nil
}

// TakeSnapshot values the portfolio and persists the result for charting.
func (e *Engine) TakeSnapshot(ctx context.Context) (*models.Snapshot, error) {
	summary, err := e.Summary(ctx)
	if err != nil {
		return nil, err
	}

	snapshot := models.NewSnapshot(summary.TotalValue, summary.Cash, summary.TotalInvested, summary.TotalPnL)
	if err := e.snapshots.Create(snapshot); err != nil {
		return nil, err
	}

	return snapshot, nil
}

// Profile returns the active risk profile.
func (e *Engine) Profile() (RiskProfile, error) {
	name, err := e.settings.RiskProfile()
	if err != nil {
		return RiskProfile{}, err
	}

	profile, ok := RiskProfiles[name]
	if !ok {
		return RiskProfiles[repositories.DefaultRiskProfile], nil
	}
	return profile, nil
}

func (e *Engine) quote(ctx context.Context, symbol string) (*services.Quote, error) {
	quotes, err := e.market.Quotes(ctx, []string{symbol})
	if err != nil {
		return nil, err
	}

	for _, quote := range quotes {
		return quote, nil
	}
	return nil, fmt.Errorf("%w: %s", shared.ErrQuoteUnavailable, symbol)
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}

func round4(value float64) float64 {
	return math.Round(value*10000) / 10000
}
