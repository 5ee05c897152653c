package main

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/desertthunder/stockmind/internal/shared"
	tu "github.com/desertthunder/stockmind/internal/testing"
)

func testConfig(t *testing.T) *shared.Config {
	t.Helper()

	config := shared.DefaultConfig()
	config.Database.DataDir = t.TempDir()
	return config
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}

			runner := NewRunner(RunnerOpts{
				Config: config,
				Logger: logger,
				Output: output,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})
	})

	t.Run("register returns all commands", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		names := map[string]bool{}
		for _, command := range commands {
			names[command.Name] = true
		}

		for _, expected := range []string{
			"serve", "setup", "agent", "portfolio", "trades",
			"watchlist", "quote", "reset", "tui",
		} {
			if !names[expected] {
				t.Errorf("expected %q command to be registered", expected)
			}
		}
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("compact", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"status": "ok"}, false); err != nil {
				t.Fatalf("writeJSON failed: %v", err)
			}
			if output.String() != "{\"status\":\"ok\"}\n" {
				t.Errorf("unexpected output: %q", output.String())
			}
		})

		t.Run("pretty", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"status": "ok"}, true); err != nil {
				t.Fatalf("writeJSON failed: %v", err)
			}
			if !strings.Contains(output.String(), "  \"status\": \"ok\"") {
				t.Errorf("expected indented output, got %q", output.String())
			}
		})

		t.Run("propagates write failures", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			if err := runner.writeJSON(map[string]string{}, false); err == nil {
				t.Error("expected write error")
			}
		})
	})

	t.Run("writePlain propagates write failures", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

		if err := runner.writePlain("hello"); err == nil {
			t.Error("expected write error")
		}
		if err := runner.writePlainln("hello"); err == nil {
			t.Error("expected write error")
		}
	})

	t.Run("notifier disabled without credentials", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		config := shared.DefaultConfig()
		config.Credentials.Twitter.Enabled = true

		if runner.notifier(config).Enabled() {
			t.Error("expected notifier to stay disabled without credentials")
		}
	})

	t.Run("notifier enabled with full credentials", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		config := shared.DefaultConfig()
		config.Credentials.Twitter.Enabled = true
		config.Credentials.Twitter.APIKey = "key"
		config.Credentials.Twitter.APISecret = "secret"
		config.Credentials.Twitter.AccessToken = "token"
		config.Credentials.Twitter.AccessTokenSecret = "token-secret"

		if !runner.notifier(config).Enabled() {
			t.Error("expected notifier to be enabled")
		}
	})
}

func TestOpenStack(t *testing.T) {
	t.Run("initializes the portfolio", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})
		config := testConfig(t)

		st, err := runner.openStack(config)
		if err != nil {
			t.Fatalf("openStack failed: %v", err)
		}
		defer st.Close()

		cash, err := st.settings.CashBalance()
		if err != nil {
			t.Fatalf("failed to read cash balance: %v", err)
		}
		if cash != config.Agent.StartingBalance {
			t.Errorf("expected starting balance %v, got %v", config.Agent.StartingBalance, cash)
		}

		symbols, err := st.watchlist.List()
		if err != nil {
			t.Fatalf("failed to list watchlist: %v", err)
		}
		if len(symbols) == 0 {
			t.Error("expected the default watchlist to be seeded")
		}
	})

	t.Run("is idempotent", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})
		config := testConfig(t)

		first, err := runner.openStack(config)
		if err != nil {
			t.Fatalf("openStack failed: %v", err)
		}
		first.Close()

		second, err := runner.openStack(config)
		if err != nil {
			t.Fatalf("second openStack failed: %v", err)
		}
		defer second.Close()

		cash, err := second.settings.CashBalance()
		if err != nil {
			t.Fatalf("failed to read cash balance: %v", err)
		}
		if cash != config.Agent.StartingBalance {
			t.Errorf("expected balance to survive reopen, got %v", cash)
		}
	})
}

func TestWipe(t *testing.T) {
	runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})
	config := testConfig(t)

	st, err := runner.openStack(config)
	if err != nil {
		t.Fatalf("openStack failed: %v", err)
	}
	defer st.Close()

	if err := st.settings.SetCashBalance(42); err != nil {
		t.Fatalf("failed to set cash balance: %v", err)
	}

	if err := runner.wipe(st, config); err != nil {
		t.Fatalf("wipe failed: %v", err)
	}

	cash, err := st.settings.CashBalance()
	if err != nil {
		t.Fatalf("failed to read cash balance: %v", err)
	}
	if cash != config.Agent.StartingBalance {
		t.Errorf("expected balance restored to %v, got %v", config.Agent.StartingBalance, cash)
	}
}
