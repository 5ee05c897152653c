// package services defines the external API clients the agent depends on:
// market data (Yahoo Finance), language model completions (Anthropic) and
// trade notifications (X).
//
// Each client implements a small interface so commands, the trading engine
// and the agent loop can be tested against in-memory doubles.
package services
