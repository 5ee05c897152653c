package main

import (
	"context"

	"github.com/desertthunder/stockmind/internal/agent"
	"github.com/desertthunder/stockmind/internal/services"
	"github.com/urfave/cli/v3"
)

// AgentRun executes a single agent cycle and exits. The session is picked
// from the current hour and the skip roll is bypassed.
func (r *Runner) AgentRun(ctx context.Context, cmd *cli.Command) error {
	config, err := r.resolveConfig(cmd)
	if err != nil {
		return err
	}

	st, err := r.openStack(config)
	if err != nil {
		return err
	}
	defer st.Close()

	location, err := config.Location()
	if err != nil {
		return err
	}

	llm := services.NewAnthropicService(config.Credentials.Anthropic.APIKey, config.Credentials.Anthropic.Model)

	ag := agent.New(agent.Opts{
		Engine:    st.engine,
		Market:    st.market,
		LLM:       llm,
		Notifier:  r.notifier(config),
		Thoughts:  st.thoughts,
		Trades:    st.trades,
		Watchlist: st.watchlist,
		Memories:  st.memories,
		Location:  location,
		Logger:    r.logger,
	})

	r.logger.Info("running a single agent cycle")
	if err := ag.Trigger(ctx); err != nil {
		return err
	}

	r.writePlain("✓ Cycle complete, see the thought feed for details\n")
	return nil
}
