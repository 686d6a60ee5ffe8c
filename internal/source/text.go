package source

import (
	"regexp"

	"github.com/rdce-vr/Local-Track/internal/model"
)

// maxPriceDistance bounds how far after a fuel name its price may start.
const maxPriceDistance = 80

var rupiahPattern = regexp.MustCompile(`(?i)\bRp\.?\s*(-|\d[\d.,]*)`)

// TextParser scans a page as plain text for "<fuel> ... Rp <amount>".
//
// The price for a fuel is the first rupiah amount between its name and the
// next fuel name, starting within maxPriceDistance bytes. The first priced
// mention of each fuel wins.
type TextParser struct {
	name    string
	catalog *model.Catalog
}

// NewTextParser creates a TextParser.
func NewTextParser(name string, catalog *model.Catalog) *TextParser {
	return &TextParser{name: name, catalog: catalog}
}

// Parse extracts fuel prices from the visible text of body.
func (p *TextParser) Parse(body []byte) (model.Prices, error) {
	doc, err := parseHTML(body)
	if err != nil {
		return nil, parseErrorf(p.name, "invalid html: %v", err)
	}

	bodySel := doc.Find("body")
	if bodySel.Length() == 0 {
		return nil, parseErrorf(p.name, "page body not found")
	}
	text := nodeText(bodySel)

	prices := make(model.Prices)
	matches := p.catalog.MatchAll(text)
	for i, m := range matches {
		if _, done := prices[m.Name]; done {
			continue
		}

		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1].Start
		}

		// The amount must start within range but is read to its end.
		loc := rupiahPattern.FindStringSubmatchIndex(text[m.End:end])
		if loc == nil || loc[0] > maxPriceDistance {
			continue
		}
		raw := text[m.End+loc[2] : m.End+loc[3]]
		if price, ok, err := ParsePrice(raw); err == nil && ok {
			prices[m.Name] = price
		}
	}

	if len(prices) == 0 {
		return nil, parseErrorf(p.name, "prices not parsed")
	}
	return prices, nil
}
