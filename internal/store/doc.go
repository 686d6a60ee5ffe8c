// Package store implements the Price Store: an append-only history of fuel
// and gold observations.
//
// Tables:
//   - fuel_prices: one row per observed fuel price change
//   - gold_prices: one row per distinct (mid, buy, sell) gold quote
//
// Rows are never updated or deleted. Deduplication happens twice: the
// fetcher-facing writes compare against the latest stored value, and unique
// indexes reject exact replays at the storage layer.
package store
