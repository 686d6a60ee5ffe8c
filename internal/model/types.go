package model

import "time"

// Gold commodity keys used inside a Prices mapping returned by gold sources.
const (
	GoldMid  = "mid"
	GoldBuy  = "buy"
	GoldSell = "sell"
)

// Domain names a family of commodities fetched by one job.
type Domain string

const (
	DomainFuel Domain = "fuel"
	DomainGold Domain = "gold"
)

// Prices maps a commodity name to its price in rupiah.
type Prices map[string]int64

// Names returns the commodity names in p, unordered.
func (p Prices) Names() []string {
	names := make([]string, 0, len(p))
	for name := range p {
		names = append(names, name)
	}
	return names
}

// -----------------------------------------------------------------------------
// Observations
// -----------------------------------------------------------------------------

// PriceObservation is one timestamped fuel price.
type PriceObservation struct {
	Commodity  string    `json:"commodity"`   // Canonical fuel name
	Price      int64     `json:"price"`       // Rupiah per liter
	Source     string    `json:"source"`      // Source name (e.g., "patra-niaga")
	ObservedAt time.Time `json:"observed_at"` // When the price was fetched
}

// GoldObservation is one timestamped gold quote.
type GoldObservation struct {
	MidPrice   int64     `json:"mid_price"`   // Midpoint of buy and sell
	BuyPrice   int64     `json:"buy_price"`   // Price the dealer buys at
	SellPrice  int64     `json:"sell_price"`  // Price the dealer sells at
	ObservedAt time.Time `json:"observed_at"` // When the quote was fetched
}

// Triple returns the (mid, buy, sell) key that gold deduplication is based on.
func (g GoldObservation) Triple() [3]int64 {
	return [3]int64{g.MidPrice, g.BuyPrice, g.SellPrice}
}

// GoldFromPrices builds a GoldObservation from a gold Prices mapping.
// The second return value is false when buy or sell is missing; mid is
// derived from buy and sell when absent.
func GoldFromPrices(p Prices, observedAt time.Time) (GoldObservation, bool) {
	buy, okBuy := p[GoldBuy]
	sell, okSell := p[GoldSell]
	if !okBuy || !okSell {
		return GoldObservation{}, false
	}
	mid, ok := p[GoldMid]
	if !ok {
		mid = (buy + sell) / 2
	}
	return GoldObservation{
		MidPrice:   mid,
		BuyPrice:   buy,
		SellPrice:  sell,
		ObservedAt: observedAt,
	}, true
}
