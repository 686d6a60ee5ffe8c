// Package cache keeps the latest prices in Redis for the presentation
// layer. Keys:
//
//	<prefix>:fuel:<commodity>   JSON model.PriceObservation
//	<prefix>:gold               JSON model.GoldObservation
//	<prefix>:fuel:updated_at    RFC 3339 time of the last fuel publish
//
// The cache is a read model only; the Price Store stays the source of truth.
package cache
