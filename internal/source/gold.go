package source

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/rdce-vr/Local-Track/internal/model"
)

// GoldParser reads buy, sell and optional mid prices from a JSON document.
// Paths are dot separated; numeric segments index into arrays
// (e.g., "data.0.buy").
type GoldParser struct {
	name     string
	buyPath  string
	sellPath string
	midPath  string
}

// NewGoldParser creates a GoldParser. midPath may be empty, in which case
// mid is derived as the average of buy and sell.
func NewGoldParser(name, buyPath, sellPath, midPath string) *GoldParser {
	return &GoldParser{name: name, buyPath: buyPath, sellPath: sellPath, midPath: midPath}
}

// Parse returns a Prices mapping with model.GoldBuy, model.GoldSell and
// model.GoldMid keys.
func (p *GoldParser) Parse(body []byte) (model.Prices, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, parseErrorf(p.name, "invalid json: %v", err)
	}

	buy, err := p.field(doc, p.buyPath)
	if err != nil {
		return nil, err
	}
	sell, err := p.field(doc, p.sellPath)
	if err != nil {
		return nil, err
	}

	prices := model.Prices{model.GoldBuy: buy, model.GoldSell: sell}
	if p.midPath != "" {
		if mid, err := p.field(doc, p.midPath); err == nil {
			prices[model.GoldMid] = mid
		}
	}
	if _, ok := prices[model.GoldMid]; !ok {
		prices[model.GoldMid] = (buy + sell) / 2
	}
	return prices, nil
}

func (p *GoldParser) field(doc any, path string) (int64, error) {
	v, ok := lookup(doc, path)
	if !ok {
		return 0, parseErrorf(p.name, "field %s missing", path)
	}

	switch val := v.(type) {
	case json.Number:
		f, err := val.Float64()
		if err != nil {
			return 0, parseErrorf(p.name, "field %s: %v", path, err)
		}
		return int64(math.Round(f)), nil
	case string:
		price, ok, err := ParsePrice(val)
		if err != nil {
			return 0, parseErrorf(p.name, "field %s: %v", path, err)
		}
		if !ok {
			return 0, parseErrorf(p.name, "field %s has no value", path)
		}
		return price, nil
	default:
		return 0, parseErrorf(p.name, "field %s has unexpected type %T", path, v)
	}
}

// lookup walks a decoded JSON document along a dotted path.
func lookup(doc any, path string) (any, bool) {
	cur := doc
	for _, seg := range strings.Split(path, ".") {
		switch node := cur.(type) {
		case map[string]any:
			next, ok := node[seg]
			if !ok {
				return nil, false
			}
			cur = next
		case []any:
			i, err := strconv.Atoi(seg)
			if err != nil || i < 0 || i >= len(node) {
				return nil, false
			}
			cur = node[i]
		default:
			return nil, false
		}
	}
	if cur == nil {
		return nil, false
	}
	return cur, true
}
