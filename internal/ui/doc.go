// Package ui implements an interactive terminal dashboard using bubbletea's Elm architecture.
//
// The TUI is a read-only window into the agent's activity with three tabbed views:
//  1. [FeedView] : The live thought feed, newest first
//  2. [PortfolioView] : Open positions valued at current prices
//  3. [TradeLogView] : The trade history
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Data is polled from the database on a fixed tick, so the dashboard stays live
// while the agent runs in another process.
//
// Keyboard navigation uses vim-style bindings (j/k, tab, q) with contextual help
// displayed via charmbracelet/bubbles/help.
package ui
