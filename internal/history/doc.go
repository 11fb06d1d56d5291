// Package history persists a ledger of normalization runs in SQLite.
//
// Each batch or single-file run is stored with its target and counts, and
// every asset outcome is stored beside it with the measured integrated
// loudness and the failure kind, so "loudlimit history" can show what was
// changed and where staged originals were left.
package history
