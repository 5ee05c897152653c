package agent

import (
	"context"
	"strings"
	"testing"

	"github.com/desertthunder/stockmind/internal/models"
	"github.com/desertthunder/stockmind/internal/repositories"
	"github.com/desertthunder/stockmind/internal/services"
	"github.com/desertthunder/stockmind/internal/shared"
	tu "github.com/desertthunder/stockmind/internal/testing"
	"github.com/desertthunder/stockmind/internal/trading"
)

type harness struct {
	agent    *Agent
	thoughts *repositories.ThoughtRepository
	memories *repositories.MemoryRepository
	llm      *tu.MockLLM
	notifier *tu.MockNotifier
}

func setupAgent(t *testing.T, market services.MarketService) *harness {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	settings := repositories.NewSettingsRepository(db)
	if _, err := settings.EnsureDefaults(100000); err != nil {
		t.Fatalf("failed to seed settings: %v", err)
	}

	holdings := repositories.NewHoldingRepository(db)
	trades := repositories.NewTradeRepository(db)
	snapshots := repositories.NewSnapshotRepository(db)
	thoughts := repositories.NewThoughtRepository(db)
	watchlist := repositories.NewWatchlistRepository(db)
	memories := repositories.NewMemoryRepository(db)

	engine := trading.NewEngine(settings, holdings, trades, snapshots, market, nil)
	llm := &tu.MockLLM{Response: "Looks quiet today. Holding steady."}
	notifier := &tu.MockNotifier{Active: true}

	a := New(Opts{
		Engine:    engine,
		Market:    market,
		LLM:       llm,
		Notifier:  notifier,
		Thoughts:  thoughts,
		Trades:    trades,
		Watchlist: watchlist,
		Memories:  memories,
		Seed:      42,
	})

	return &harness{agent: a, thoughts: thoughts, memories: memories, llm: llm, notifier: notifier}
}

func thoughtsOfKind(t *testing.T, repo *repositories.ThoughtRepository, kind string) []*models.Thought {
	t.Helper()

	all, err := repo.List(100)
	if err != nil {
		t.Fatalf("failed to list thoughts: %v", err)
	}

	var matched []*models.Thought
	for _, thought := range all {
		if thought.Kind() == kind {
			matched = append(matched, thought)
		}
	}
	return matched
}

func TestProcessResponse(t *testing.T) {
	ctx := context.Background()

	t.Run("paragraphs become thinking thoughts", func(t *testing.T) {
		h := setupAgent(t, &tu.MockMarket{})

		response := "First observation about the market.\n\nSecond thought, different paragraph."
		if err := h.agent.processResponse(ctx, response, 0); err != nil {
			t.Fatalf("processResponse failed: %v", err)
		}

		thinking := thoughtsOfKind(t, h.thoughts, models.ThoughtThinking)
		if len(thinking) != 2 {
			t.Fatalf("expected 2 thinking thoughts, got %d", len(thinking))
		}
	})

	t.Run("buy action executes a trade", func(t *testing.T) {
		h := setupAgent(t, &tu.MockMarket{QuoteMap: map[string]*services.Quote{
			"AAPL": {Symbol: "AAPL", Price: 150},
		}})

		response := "Apple looks strong here.\n\n```action\n{\"type\": \"buy\", \"symbol\": \"AAPL\", \"shares\": 10, \"reasoning\": \"momentum\"}\n```\n\nDone for now."
		if err := h.agent.processResponse(ctx, response, 0); err != nil {
			t.Fatalf("processResponse failed: %v", err)
		}

		trades := thoughtsOfKind(t, h.thoughts, models.ThoughtTrade)
		if len(trades) != 2 {
			t.Fatalf("expected order + confirmation thoughts, got %d", len(trades))
		}
		if !strings.Contains(trades[0].Content(), "Bought 10 shares of AAPL") {
			t.Errorf("unexpected confirmation: %q", trades[0].Content())
		}

		if len(h.notifier.Posts) != 1 {
			t.Fatalf("expected 1 notification, got %d", len(h.notifier.Posts))
		}
		if !strings.Contains(h.notifier.Posts[0], "StockMind bought") {
			t.Errorf("unexpected notification: %q", h.notifier.Posts[0])
		}
	})

	t.Run("failed order becomes an error thought", func(t *testing.T) {
		h := setupAgent(t, &tu.MockMarket{})

		response := "```action\n{\"type\": \"sell\", \"symbol\": \"TSLA\", \"shares\": 5}\n```"
		if err := h.agent.processResponse(ctx, response, 0); err != nil {
			t.Fatalf("processResponse failed: %v", err)
		}

		errs := thoughtsOfKind(t, h.thoughts, models.ThoughtError)
		if len(errs) != 1 {
			t.Fatalf("expected 1 error thought, got %d", len(errs))
		}
		if !strings.Contains(errs[0].Content(), "Sell order failed") {
			t.Errorf("unexpected error thought: %q", errs[0].Content())
		}
	})

	t.Run("malformed action json is tolerated", func(t *testing.T) {
		h := setupAgent(t, &tu.MockMarket{})

		response := "```action\n{not json}\n```"
		if err := h.agent.processResponse(ctx, response, 0); err != nil {
			t.Fatalf("processResponse failed: %v", err)
		}

		errs := thoughtsOfKind(t, h.thoughts, models.ThoughtError)
		if len(errs) != 1 {
			t.Errorf("expected 1 error thought, got %d", len(errs))
		}
	})

	t.Run("watch action updates the watchlist", func(t *testing.T) {
		h := setupAgent(t, &tu.MockMarket{})

		response := "```action\n{\"type\": \"watch\", \"symbol\": \"amd\"}\n```"
		if err := h.agent.processResponse(ctx, response, 0); err != nil {
			t.Fatalf("processResponse failed: %v", err)
		}

		symbols, err := h.agent.watchlist.List()
		if err != nil {
			t.Fatalf("failed to list watchlist: %v", err)
		}
		if len(symbols) != 1 || symbols[0] != "AMD" {
			t.Errorf("expected [AMD], got %v", symbols)
		}
	})

	t.Run("remember action saves a memory", func(t *testing.T) {
		h := setupAgent(t, &tu.MockMarket{})

		response := "```action\n{\"type\": \"remember\", \"content\": \"chip stocks rally on earnings\"}\n```"
		if err := h.agent.processResponse(ctx, response, 0); err != nil {
			t.Fatalf("processResponse failed: %v", err)
		}

		memories, err := h.memories.List(10)
		if err != nil {
			t.Fatalf("failed to list memories: %v", err)
		}
		if len(memories) != 1 {
			t.Fatalf("expected 1 memory, got %d", len(memories))
		}
		if memories[0].Category() != models.DefaultMemoryCategory {
			t.Errorf("expected default category, got %s", memories[0].Category())
		}
	})
}

func TestExecuteResearch(t *testing.T) {
	ctx := context.Background()

	market := &tu.MockMarket{
		DetailResp: &services.StockDetail{
			Symbol: "NVDA", Name: "NVIDIA Corporation", Price: 500,
			MonthChangePct: 12.5, SMA5: 490, SMA20: 470, Volatility: 3.2,
		},
		NewsItems: []services.NewsItem{{Title: "NVIDIA beats estimates", Publisher: "Newswire"}},
	}

	h := setupAgent(t, market)
	h.llm.Response = "Strong momentum, but priced for perfection. Hold for now."

	response := "```action\n{\"type\": \"research\", \"symbol\": \"NVDA\"}\n```"
	if err := h.agent.processResponse(ctx, response, 0); err != nil {
		t.Fatalf("processResponse failed: %v", err)
	}

	research := thoughtsOfKind(t, h.thoughts, models.ThoughtResearch)
	if len(research) != 2 {
		t.Fatalf("expected researching + gathered thoughts, got %d", len(research))
	}

	if len(h.llm.Prompts) != 1 {
		t.Fatalf("expected 1 analysis prompt, got %d", len(h.llm.Prompts))
	}
	if !strings.Contains(h.llm.Prompts[0], "NVIDIA Corporation") {
		t.Errorf("expected research data in prompt, got %q", h.llm.Prompts[0])
	}
	if !strings.Contains(h.llm.Prompts[0], "NVIDIA beats estimates") {
		t.Error("expected headlines in prompt")
	}

	thinking := thoughtsOfKind(t, h.thoughts, models.ThoughtThinking)
	if len(thinking) == 0 {
		t.Error("expected the analysis to be recorded as thoughts")
	}

	found := false
	for _, post := range h.notifier.Posts {
		if strings.Contains(post, "StockMind analyzed $NVDA") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected research notification, got %v", h.notifier.Posts)
	}
}

func TestRunCycle(t *testing.T) {
	ctx := context.Background()

	t.Run("forced cycle asks the model and records thoughts", func(t *testing.T) {
		h := setupAgent(t, &tu.MockMarket{})

		session := sessionByID("morning_coffee")
		if err := h.agent.runCycle(ctx, session, true); err != nil {
			t.Fatalf("runCycle failed: %v", err)
		}

		if len(h.llm.Prompts) != 1 {
			t.Fatalf("expected 1 prompt, got %d", len(h.llm.Prompts))
		}
		if !strings.Contains(h.llm.Prompts[0], "MORNING COFFEE") {
			t.Errorf("expected session header in prompt, got %q", h.llm.Prompts[0][:80])
		}
		if !strings.Contains(h.llm.Systems[0], "StockMind") {
			t.Error("expected persona system prompt")
		}

		if got := h.agent.Status().CurrentSession; got != "Morning Coffee" {
			t.Errorf("expected status to record the session, got %q", got)
		}
	})

	t.Run("guaranteed skip runs nothing", func(t *testing.T) {
		h := setupAgent(t, &tu.MockMarket{})

		session := sessionByID("morning_coffee")
		session.SkipChance = 1.0

		if err := h.agent.runCycle(ctx, session, false); err != nil {
			t.Fatalf("runCycle failed: %v", err)
		}

		if len(h.llm.Prompts) != 0 {
			t.Errorf("expected no prompts on skip, got %d", len(h.llm.Prompts))
		}

		all, err := h.thoughts.List(10)
		if err != nil {
			t.Fatalf("failed to list thoughts: %v", err)
		}
		if len(all) != 0 {
			t.Errorf("expected no thoughts on skip, got %d", len(all))
		}

		status := h.agent.Status()
		if status.CurrentSession != "" {
			t.Errorf("expected no current session after a skip, got %q", status.CurrentSession)
		}
		if status.LastCycle != "" {
			t.Errorf("expected no last cycle after a skip, got %q", status.LastCycle)
		}
	})

	t.Run("llm failure is recorded as an error thought", func(t *testing.T) {
		h := setupAgent(t, &tu.MockMarket{})
		h.llm.Err = shared.ErrLLMUnavailable

		session := sessionByID("morning_coffee")
		if err := h.agent.runCycle(ctx, session, true); err == nil {
			t.Fatal("expected error from failed completion")
		}

		errs := thoughtsOfKind(t, h.thoughts, models.ThoughtError)
		if len(errs) != 1 {
			t.Errorf("expected 1 error thought, got %d", len(errs))
		}
	})
}

func TestGreet(t *testing.T) {
	t.Run("fresh portfolio", func(t *testing.T) {
		h := setupAgent(t, &tu.MockMarket{})

		h.agent.greet()

		system := thoughtsOfKind(t, h.thoughts, models.ThoughtSystem)
		if len(system) != 1 {
			t.Fatalf("expected 1 system thought, got %d", len(system))
		}
		if !strings.Contains(system[0].Content(), "Starting fresh") {
			t.Errorf("expected fresh greeting, got %q", system[0].Content())
		}
	})

	t.Run("resuming lists traded symbols", func(t *testing.T) {
		h := setupAgent(t, &tu.MockMarket{QuoteMap: map[string]*services.Quote{
			"AAPL": {Symbol: "AAPL", Price: 150},
			"MSFT": {Symbol: "MSFT", Price: 400},
		}})
		ctx := context.Background()

		if _, err := h.agent.engine.Buy(ctx, "AAPL", 2, ""); err != nil {
			t.Fatalf("buy failed: %v", err)
		}
		if _, err := h.agent.engine.Buy(ctx, "MSFT", 1, ""); err != nil {
			t.Fatalf("buy failed: %v", err)
		}

		h.agent.greet()

		system := thoughtsOfKind(t, h.thoughts, models.ThoughtSystem)
		if len(system) != 1 {
			t.Fatalf("expected 1 system thought, got %d", len(system))
		}

		content := system[0].Content()
		if !strings.Contains(content, "2 trades") {
			t.Errorf("expected trade count in greeting, got %q", content)
		}
		for _, symbol := range []string{"AAPL", "MSFT"} {
			if !strings.Contains(content, symbol) {
				t.Errorf("expected %s in greeting, got %q", symbol, content)
			}
		}
		if !strings.Contains(content, ", ") {
			t.Errorf("expected comma-separated symbols, got %q", content)
		}
	})
}

func TestBuildContext(t *testing.T) {
	h := setupAgent(t, &tu.MockMarket{QuoteMap: map[string]*services.Quote{
		"AAPL": {Symbol: "AAPL", Price: 150, ChangePct: 1.2, Volume: 1000},
	}})
	ctx := context.Background()

	if _, err := h.agent.engine.Buy(ctx, "AAPL", 10, ""); err != nil {
		t.Fatalf("buy failed: %v", err)
	}

	session := sessionByID("afternoon_review")
	if err := h.agent.runCycle(ctx, session, true); err != nil {
		t.Fatalf("runCycle failed: %v", err)
	}

	prompt := h.llm.Prompts[len(h.llm.Prompts)-1]
	for _, want := range []string{
		"=== MY PORTFOLIO ===",
		"=== MY HOLDINGS ===",
		"=== MY TRACK RECORD ===",
		"AAPL",
		"=== SESSION: Afternoon Review ===",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("expected prompt to contain %q", want)
		}
	}
}
