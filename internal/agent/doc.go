// package agent implements the autonomous trading persona: a daily rhythm of
// check-in sessions, LLM-driven reasoning over portfolio and market state,
// and execution of the actions the model emits.
//
// The agent thinks out loud. Everything it says is persisted as a thought so
// the dashboard and TUI can replay its reasoning.
package agent
