package agent

import (
	"context"
	"fmt"
	"math/rand"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/stockmind/internal/models"
	"github.com/desertthunder/stockmind/internal/repositories"
	"github.com/desertthunder/stockmind/internal/services"
	"github.com/desertthunder/stockmind/internal/shared"
	"github.com/desertthunder/stockmind/internal/trading"
)

// Opts wires the agent's dependencies.
type Opts struct {
	Engine    *trading.Engine
	Market    services.MarketService
	LLM       services.LLMService
	Notifier  services.Notifier
	Thoughts  *repositories.ThoughtRepository
	Trades    *repositories.TradeRepository
	Watchlist *repositories.WatchlistRepository
	Memories  *repositories.MemoryRepository
	Location  *time.Location
	Logger    *log.Logger

	// Seed fixes the schedule and skip rolls for tests. Zero means seed
	// from the clock.
	Seed int64
}

// Status is a point-in-time view of the agent loop for the dashboard.
type Status struct {
	Running        bool   `json:"running"`
	LastCycle      string `json:"last_cycle,omitempty"`
	CurrentSession string `json:"current_session,omitempty"`
	NextCheck      string `json:"next_check,omitempty"`
	NextSession    string `json:"next_session,omitempty"`
}

// Agent runs the trading persona's session loop.
type Agent struct {
	engine    *trading.Engine
	market    services.MarketService
	llm       services.LLMService
	notifier  services.Notifier
	thoughts  *repositories.ThoughtRepository
	trades    *repositories.TradeRepository
	watchlist *repositories.WatchlistRepository
	memories  *repositories.MemoryRepository
	loc       *time.Location
	logger    *log.Logger
	rng       *rand.Rand

	mu             sync.Mutex
	running        bool
	lastCycle      time.Time
	currentSession string
	nextCheck      time.Time
	nextSession    string
	stop           chan struct{}
}

// New creates an agent from the given dependencies.
func New(opts Opts) *Agent {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &Agent{
		engine:    opts.Engine,
		market:    opts.Market,
		llm:       opts.LLM,
		notifier:  opts.Notifier,
		thoughts:  opts.Thoughts,
		trades:    opts.Trades,
		watchlist: opts.Watchlist,
		memories:  opts.Memories,
		loc:       opts.Location,
		logger:    opts.Logger,
		rng:       rand.New(rand.NewSource(seed)),
		stop:      make(chan struct{}),
	}
}

// Run starts the session loop and blocks until the context is canceled or
// [Agent.Stop] is called. The first cycle runs immediately with the session
// that fits the current time of day; afterwards the loop sleeps until the
// next scheduled window.
func (a *Agent) Run(ctx context.Context) error {
	a.mu.Lock()
	a.running = true
	a.mu.Unlock()
	defer func() {
		a.mu.Lock()
		a.running = false
		a.mu.Unlock()
	}()

	a.greet()

	now := time.Now().In(a.loc)
	if err := a.runCycle(ctx, PickSession(now), false); err != nil {
		a.logger.Error("agent cycle failed", "error", err)
	}

	for {
		now = time.Now().In(a.loc)
		session, at := NextSession(now, a.rng)

		a.mu.Lock()
		a.nextCheck = at
		a.nextSession = session.Name
		a.mu.Unlock()

		a.logger.Info("next session scheduled", "session", session.Name, "at", at.Format("3:04 PM"))

		timer := time.NewTimer(time.Until(at))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-a.stop:
			timer.Stop()
			return nil
		case <-timer.C:
		}

		if err := a.runCycle(ctx, session, false); err != nil {
			a.logger.Error("agent cycle failed", "error", err)
		}
	}
}

// Stop ends the session loop after the current cycle.
func (a *Agent) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.running {
		close(a.stop)
		a.running = false
	}
}

// Trigger runs a cycle immediately with the session that fits the current
// time, bypassing the skip roll. Used by the dashboard's "think now" button.
func (a *Agent) Trigger(ctx context.Context) error {
	return a.runCycle(ctx, PickSession(time.Now().In(a.loc)), true)
}

// Status reports the loop state for the status endpoint.
func (a *Agent) Status() Status {
	a.mu.Lock()
	defer a.mu.Unlock()

	status := Status{
		Running:        a.running,
		CurrentSession: a.currentSession,
		NextSession:    a.nextSession,
	}
	if !a.lastCycle.IsZero() {
		status.LastCycle = a.lastCycle.Format(time.RFC3339)
	}
	if !a.nextCheck.IsZero() {
		status.NextCheck = a.nextCheck.Format(time.RFC3339)
	}
	return status
}

// greet posts the startup thought, referencing the track record when the
// agent is resuming with existing data.
func (a *Agent) greet() {
	record, err := a.trades.TrackRecord()
	if err != nil || record.TotalTrades == 0 {
		a.think(models.ThoughtSystem,
			"Hey! I'm StockMind, your AI investor. Starting fresh. I'll check in throughout the day like a real investor -- morning coffee, midday glance, evening research. Let's see how this goes!",
			nil)
		return
	}

	symbols := "nothing yet"
	if len(record.SymbolsTraded) > 0 {
		symbols = strings.Join(record.SymbolsTraded, ", ")
	}
	a.think(models.ThoughtSystem,
		fmt.Sprintf("I'm back! Let me pick up where I left off. I've made %d trades so far across %s. Let me check how things are doing...",
			record.TotalTrades, symbols),
		nil)
}

var greetings = map[string][]string{
	"morning_coffee": {
		"Morning! Let me check how things are looking today...",
		"Good morning. Coffee in hand, let's see the market...",
		"Alright, new day. What's going on out there?",
	},
	"midday_glance": {
		"Quick midday check...",
		"Glancing at the market real quick...",
		"Let me peek at how things are moving...",
	},
	"afternoon_review": {
		"Wrapping up the day -- let me review how things went.",
		"Market's closing soon, let me take a look.",
		"End of day check-in. How'd we do?",
	},
	"evening_research": {
		"Evening research time. Let me dig into some things...",
		"Got some time to do some deeper reading tonight.",
		"Settling in for some research. What's been on my mind?",
	},
	"weekend_planning": {
		"Weekend thinking. Good time to zoom out and plan.",
		"Lazy weekend morning... let me think about the big picture.",
		"Time for some weekend strategy planning.",
	},
}

// runCycle executes one thinking session: roll the skip chance, gather state,
// ask the model, then act on its response. Errors inside the cycle are
// recorded as thoughts so the dashboard shows what went wrong. A skipped
// session leaves the status untouched; only sessions that actually think are
// reported as the last cycle.
func (a *Agent) runCycle(ctx context.Context, session Session, force bool) error {
	if !force && a.rng.Float64() < session.SkipChance {
		a.logger.Info("skipping session", "session", session.Name)
		return nil
	}

	now := time.Now().In(a.loc)

	a.mu.Lock()
	a.lastCycle = now
	a.currentSession = session.Name
	a.mu.Unlock()

	options := greetings[session.ID]
	if len(options) == 0 {
		options = greetings["morning_coffee"]
	}
	a.think(models.ThoughtSystem, options[a.rng.Intn(len(options))], nil)

	if err := a.cycle(ctx, session, now); err != nil {
		a.think(models.ThoughtError, fmt.Sprintf("Ran into an issue: %v", err), nil)
		return err
	}
	return nil
}

func (a *Agent) cycle(ctx context.Context, session Session, now time.Time) error {
	summary, err := a.engine.Summary(ctx)
	if err != nil {
		return fmt.Errorf("portfolio summary: %w", err)
	}

	watchlist, err := a.watchlist.List()
	if err != nil {
		return fmt.Errorf("watchlist: %w", err)
	}

	trades, err := a.trades.List(10)
	if err != nil {
		return fmt.Errorf("recent trades: %w", err)
	}

	memories, err := a.memories.List(10)
	if err != nil {
		return fmt.Errorf("memories: %w", err)
	}

	record, err := a.trades.TrackRecord()
	if err != nil {
		return fmt.Errorf("track record: %w", err)
	}

	overview, err := a.market.Overview(ctx)
	if err != nil {
		a.logger.Warn("market overview unavailable", "error", err)
	}

	symbols := watchlist
	for _, holding := range summary.Holdings {
		if !slices.Contains(symbols, holding.Symbol) {
			symbols = append(symbols, holding.Symbol)
		}
	}

	quotes, err := a.market.Quotes(ctx, symbols)
	if err != nil {
		a.logger.Warn("quote fetch failed", "error", err)
		quotes = nil
	}

	prompt := buildContext(contextInput{
		session:    session,
		now:        now,
		marketOpen: services.IsMarketHours(now),
		summary:    summary,
		record:     record,
		quotes:     quotes,
		overview:   overview,
		trades:     trades,
		watchlist:  watchlist,
		memories:   memories,
	})

	response, err := a.llm.Complete(ctx, systemPrompt, prompt)
	if err != nil {
		return fmt.Errorf("llm completion: %w", err)
	}

	return a.processResponse(ctx, response, 0)
}

// think records a thought, logging instead of failing when persistence breaks.
func (a *Agent) think(kind, content string, metadata map[string]any) {
	if err := a.thoughts.Create(models.NewThought(kind, content, metadata)); err != nil {
		a.logger.Error("failed to record thought", "error", err)
	}
}

// notify posts to the notifier when it is enabled. Best effort.
func (a *Agent) notify(ctx context.Context, text string) {
	if a.notifier == nil || !a.notifier.Enabled() {
		return
	}
	if err := a.notifier.Post(ctx, text); err != nil {
		a.logger.Warn("notification failed", "error", err)
	}
}
