// package trading implements the paper trading engine: virtual buy and sell
// execution against live quotes, portfolio valuation and risk profiles.
//
// Trades are commission free and simulate a small amount of slippage in the
// unfavorable direction. All cash and position math is rounded to cents
// before it is persisted.
package trading
