// Package marketwatch reconstructs the complete state of a single financial
// portfolio (positions, weighted-average cost basis, cash) at any point in
// time from an append-only sequence of immutable events, and uses that
// reconstructed history to run forward-looking allocation simulations.
//
// The core functionalities include:
//   - Event Ledger: a durable, ordered, append-only record of state-changing
//     facts (position seeds, trades, cash movements, generic trades, target
//     and config updates, corrections). Events are never deleted or mutated:
//     a correction is a new event that supersedes an earlier one.
//   - Replay: a deterministic fold of the effective (correction-resolved)
//     event sequence into a point-in-time Snapshot. Replaying the same prefix
//     of events always yields an identical snapshot.
//   - Analytics: rolling return statistics and empirical quantile ranking of
//     today's move against a lookback window ("what's up").
//   - Simulation: a rolling-window backtest estimating how deploying a given
//     amount into each candidate symbol would have changed forward portfolio
//     volatility ("invest").
//   - Data Persistence: encoding and decoding of the ledger to and from a
//     human-readable, version-controllable JSONL format.
//
// This package serves as the foundational logic for the `mw` command-line
// tool; every operation takes its event source and price source as explicit
// parameters, there is no ambient portfolio selection in the core.
package marketwatch
