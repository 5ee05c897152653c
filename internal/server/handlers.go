package server

import (
	"context"
	_ "embed"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/stockmind/internal/agent"
	"github.com/desertthunder/stockmind/internal/models"
	"github.com/desertthunder/stockmind/internal/repositories"
	"github.com/desertthunder/stockmind/internal/services"
	"github.com/desertthunder/stockmind/internal/shared"
	"github.com/desertthunder/stockmind/internal/trading"
)

//go:embed static/index.html
var indexHTML []byte

// AgentController is the slice of the agent loop the API needs.
type AgentController interface {
	Trigger(ctx context.Context) error
	Stop()
	Status() agent.Status
}

// APIHandler serves the dashboard and its JSON API.
type APIHandler struct {
	engine    *trading.Engine
	agent     AgentController
	market    services.MarketService
	notifier  services.Notifier
	settings  *repositories.SettingsRepository
	thoughts  *repositories.ThoughtRepository
	trades    *repositories.TradeRepository
	watchlist *repositories.WatchlistRepository
	snapshots *repositories.SnapshotRepository
	logger    *log.Logger

	// reset wipes and reseeds the database. Wired by the serve command so
	// the handler stays ignorant of migration details.
	reset func() error
}

// APIOpts wires the handler's dependencies.
type APIOpts struct {
	Engine    *trading.Engine
	Agent     AgentController
	Market    services.MarketService
	Notifier  services.Notifier
	Settings  *repositories.SettingsRepository
	Thoughts  *repositories.ThoughtRepository
	Trades    *repositories.TradeRepository
	Watchlist *repositories.WatchlistRepository
	Snapshots *repositories.SnapshotRepository
	Logger    *log.Logger
	Reset     func() error
}

// NewAPIHandler creates the dashboard API handler.
func NewAPIHandler(opts APIOpts) *APIHandler {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &APIHandler{
		engine:    opts.Engine,
		agent:     opts.Agent,
		market:    opts.Market,
		notifier:  opts.Notifier,
		settings:  opts.Settings,
		thoughts:  opts.Thoughts,
		trades:    opts.Trades,
		watchlist: opts.Watchlist,
		snapshots: opts.Snapshots,
		logger:    opts.Logger,
		reset:     opts.Reset,
	}
}

// Routes implements [Handler].
func (h *APIHandler) Routes() []string {
	return []string{
		"GET /{$}",
		"GET /api/portfolio",
		"GET /api/portfolio/history",
		"GET /api/thoughts",
		"GET /api/trades",
		"GET /api/market",
		"GET /api/watchlist",
		"POST /api/watchlist/{symbol}",
		"GET /api/settings",
		"POST /api/settings",
		"POST /api/trigger",
		"POST /api/reset",
		"GET /api/status",
		"GET /api/stream",
	}
}

// ServeHTTP dispatches on the matched route pattern.
func (h *APIHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Pattern {
	case "GET /{$}":
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(indexHTML)
	case "GET /api/portfolio":
		h.handlePortfolio(w, r)
	case "GET /api/portfolio/history":
		h.handleHistory(w, r)
	case "GET /api/thoughts":
		h.handleThoughts(w, r)
	case "GET /api/trades":
		h.handleTrades(w, r)
	case "GET /api/market":
		h.handleMarket(w, r)
	case "GET /api/watchlist":
		h.handleWatchlist(w, r)
	case "POST /api/watchlist/{symbol}":
		h.handleAddWatchlist(w, r)
	case "GET /api/settings":
		h.handleGetSettings(w, r)
	case "POST /api/settings":
		h.handleUpdateSettings(w, r)
	case "POST /api/trigger":
		h.handleTrigger(w, r)
	case "POST /api/reset":
		h.handleReset(w, r)
	case "GET /api/status":
		h.handleStatus(w, r)
	case "GET /api/stream":
		h.handleStream(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *APIHandler) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	summary, err := h.engine.Summary(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}
	h.writeJSON(w, http.StatusOK, summary)
}

func (h *APIHandler) handleHistory(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", 30)

	snapshots, err := h.snapshots.ListSince(time.Duration(days) * 24 * time.Hour)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}

	views := make([]snapshotView, 0, len(snapshots))
	for _, snapshot := range snapshots {
		views = append(views, newSnapshotView(snapshot))
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"snapshots": views})
}

func (h *APIHandler) handleThoughts(w http.ResponseWriter, r *http.Request) {
	after := queryInt(r, "after_id", 0)
	limit := queryInt(r, "limit", 100)

	thoughts, err := h.thoughts.ListAfter(after, limit)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}

	views := make([]thoughtView, 0, len(thoughts))
	for _, thought := range thoughts {
		views = append(views, newThoughtView(thought))
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"thoughts": views})
}

func (h *APIHandler) handleTrades(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)

	trades, err := h.trades.List(limit)
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}

	views := make([]tradeView, 0, len(trades))
	for _, trade := range trades {
		views = append(views, newTradeView(trade))
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"trades": views})
}

func (h *APIHandler) handleMarket(w http.ResponseWriter, r *http.Request) {
	overview, err := h.market.Overview(r.Context())
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"overview":    overview,
		"market_open": services.IsMarketHours(time.Now()),
	})
}

func (h *APIHandler) handleWatchlist(w http.ResponseWriter, r *http.Request) {
	symbols, err := h.watchlist.List()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}

	quotes := map[string]*services.Quote{}
	if len(symbols) > 0 {
		if quotes, err = h.market.Quotes(r.Context(), symbols); err != nil {
			h.logger.Warn("watchlist quotes unavailable", "error", err)
			quotes = map[string]*services.Quote{}
		}
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"watchlist": symbols, "quotes": quotes})
}

func (h *APIHandler) handleAddWatchlist(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(r.PathValue("symbol"))

	if err := h.watchlist.Add(symbol); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"status": "added", "symbol": symbol})
}

func (h *APIHandler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	profile, err := h.settings.RiskProfile()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"risk_profile":    profile,
		"limits":          trading.RiskProfiles[profile],
		"twitter_enabled": h.notifier != nil && h.notifier.Enabled(),
	})
}

func (h *APIHandler) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RiskProfile string `json:"risk_profile"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.writeError(w, http.StatusBadRequest, err)
		return
	}

	if body.RiskProfile != "" {
		if err := h.settings.SetRiskProfile(body.RiskProfile); err != nil {
			h.writeError(w, http.StatusBadRequest, err)
			return
		}
	}

	profile, err := h.settings.RiskProfile()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"status":       "updated",
		"risk_profile": profile,
		"limits":       trading.RiskProfiles[profile],
	})
}

func (h *APIHandler) handleTrigger(w http.ResponseWriter, r *http.Request) {
	// Fire and forget; the cycle records its own progress as thoughts.
	go func() {
		if err := h.agent.Trigger(context.Background()); err != nil {
			h.logger.Error("triggered cycle failed", "error", err)
		}
	}()

	h.writeJSON(w, http.StatusOK, map[string]any{"status": "triggered"})
}

func (h *APIHandler) handleReset(w http.ResponseWriter, r *http.Request) {
	h.agent.Stop()

	if h.reset == nil {
		h.writeError(w, http.StatusInternalServerError, shared.ErrNotImplemented)
		return
	}
	if err := h.reset(); err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"status":  "reset",
		"message": "Database wiped. Restart the service to begin fresh.",
	})
}

func (h *APIHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	cash, err := h.settings.CashBalance()
	if err != nil {
		h.writeError(w, http.StatusInternalServerError, err)
		return
	}

	status := h.agent.Status()
	h.writeJSON(w, http.StatusOK, map[string]any{
		"running":         status.Running,
		"last_cycle":      status.LastCycle,
		"current_session": status.CurrentSession,
		"next_check":      status.NextCheck,
		"next_session":    status.NextSession,
		"cash":            cash,
		"market_open":     services.IsMarketHours(time.Now()),
	})
}

func (h *APIHandler) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *APIHandler) writeError(w http.ResponseWriter, status int, err error) {
	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

// thoughtView is the wire shape of a thought. The sequence number doubles as
// the client-facing id so it can be used as an after_id cursor.
type thoughtView struct {
	ID        int            `json:"id"`
	Type      string         `json:"type"`
	Content   string         `json:"content"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt string         `json:"created_at"`
}

func newThoughtView(thought *models.Thought) thoughtView {
	return thoughtView{
		ID:        thought.Sequence(),
		Type:      thought.Kind(),
		Content:   thought.Content(),
		Metadata:  thought.Metadata(),
		CreatedAt: thought.CreatedAt().Format(time.RFC3339),
	}
}

type tradeView struct {
	ID        int     `json:"id"`
	Symbol    string  `json:"symbol"`
	Action    string  `json:"action"`
	Shares    float64 `json:"shares"`
	Price     float64 `json:"price"`
	Total     float64 `json:"total"`
	Reasoning string  `json:"reasoning,omitempty"`
	CreatedAt string  `json:"created_at"`
}

func newTradeView(trade *models.Trade) tradeView {
	return tradeView{
		ID:        trade.Sequence(),
		Symbol:    trade.Symbol(),
		Action:    trade.Action(),
		Shares:    trade.Shares(),
		Price:     trade.Price(),
		Total:     trade.Total(),
		Reasoning: trade.Reasoning(),
		CreatedAt: trade.CreatedAt().Format(time.RFC3339),
	}
}

type snapshotView struct {
	TotalValue float64 `json:"total_value"`
	Cash       float64 `json:"cash"`
	Invested   float64 `json:"invested"`
	PnL        float64 `json:"pnl"`
	CreatedAt  string  `json:"created_at"`
}

func newSnapshotView(snapshot *models.Snapshot) snapshotView {
	return snapshotView{
		TotalValue: snapshot.TotalValue(),
		Cash:       snapshot.Cash(),
		Invested:   snapshot.Invested(),
		PnL:        snapshot.PnL(),
		CreatedAt:  snapshot.CreatedAt().Format(time.RFC3339),
	}
}
