package source

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/rdce-vr/Local-Track/internal/model"
)

// TableParser reads the province row of a price table.
//
// Two layouts are understood:
//   - wide: a header row names one fuel per column and the province row
//     holds the prices in the same columns
//   - long: each row names the province and a fuel, with the price in the
//     last cell
type TableParser struct {
	name     string
	province string
	catalog  *model.Catalog
}

// NewTableParser creates a TableParser for province.
func NewTableParser(name, province string, catalog *model.Catalog) *TableParser {
	return &TableParser{name: name, province: province, catalog: catalog}
}

// Parse extracts fuel prices for the configured province.
func (p *TableParser) Parse(body []byte) (model.Prices, error) {
	doc, err := parseHTML(body)
	if err != nil {
		return nil, parseErrorf(p.name, "invalid html: %v", err)
	}

	tables := doc.Find("table")
	if tables.Length() == 0 {
		return nil, parseErrorf(p.name, "price table not found")
	}

	prices := make(model.Prices)
	tables.EachWithBreak(func(_ int, table *goquery.Selection) bool {
		rows := tableRows(table)
		p.parseWide(rows, prices)
		if len(prices) == 0 {
			p.parseLong(rows, prices)
		}
		return len(prices) == 0
	})

	if len(prices) == 0 {
		return nil, parseErrorf(p.name, "%s prices not parsed", p.province)
	}
	return prices, nil
}

func tableRows(table *goquery.Selection) [][]string {
	var rows [][]string
	table.Find("tr").Each(func(_ int, tr *goquery.Selection) {
		var cells []string
		tr.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, nodeText(cell))
		})
		if len(cells) > 0 {
			rows = append(rows, cells)
		}
	})
	return rows
}

// parseWide finds the first row naming fuels in its cells and reads the
// province row against those columns.
func (p *TableParser) parseWide(rows [][]string, prices model.Prices) {
	var header map[int]string
	for _, cells := range rows {
		cols := make(map[int]string)
		for i, cell := range cells {
			if name, ok := p.catalog.Match(cell); ok {
				cols[i] = name
			}
		}
		if len(cols) >= 2 {
			header = cols
			break
		}
	}
	if header == nil {
		return
	}

	for _, cells := range rows {
		if len(cells) == 0 || !p.isProvince(cells[0]) {
			continue
		}
		for i, name := range header {
			if i >= len(cells) {
				continue
			}
			if price, ok, err := ParsePrice(cells[i]); err == nil && ok {
				prices[name] = price
			}
		}
		return
	}
}

// parseLong reads rows that mention both the province and a fuel.
func (p *TableParser) parseLong(rows [][]string, prices model.Prices) {
	for _, cells := range rows {
		if len(cells) < 2 {
			continue
		}
		label := strings.Join(cells[:len(cells)-1], " ")
		if !p.isProvince(label) {
			continue
		}
		name, ok := p.catalog.Match(label)
		if !ok {
			continue
		}
		if price, ok, err := ParsePrice(cells[len(cells)-1]); err == nil && ok {
			prices[name] = price
		}
	}
}

func (p *TableParser) isProvince(text string) bool {
	return strings.Contains(strings.ToLower(text), strings.ToLower(p.province))
}
