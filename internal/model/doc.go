// Package model defines shared data types used across Local-Track.
//
// Both observation types mirror the fuel_prices and gold_prices tables.
//
// Conventions:
//   - Prices: int64 rupiah (minor currency unit, no decimals)
//   - Timestamps: time.Time in UTC
//   - Commodities: canonical catalog names (e.g., "Pertamax Turbo")
package model
