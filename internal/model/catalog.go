package model

import (
	"regexp"
	"sort"
	"strings"
)

// Fuel describes one tracked fuel product.
type Fuel struct {
	Name    string   // Canonical name stored in fuel_prices.fuel_type
	Aliases []string // Alternative spellings seen on source pages
	Group   string   // Display group ("Gasoline" or "Diesel")
}

// DefaultFuels lists the Pertamina products tracked for the province.
var DefaultFuels = []Fuel{
	{Name: "Pertalite", Group: "Gasoline"},
	{Name: "Pertamax", Group: "Gasoline"},
	{Name: "Pertamax Pertashop", Group: "Gasoline"},
	{Name: "Pertamax Green", Aliases: []string{"Pertamax Green 95"}, Group: "Gasoline"},
	{Name: "Pertamax Turbo", Group: "Gasoline"},
	{Name: "Biosolar", Aliases: []string{"Bio Solar", "Biosolar Subsidi", "Pertamina Biosolar Subsidi"}, Group: "Diesel"},
	{Name: "Dexlite", Group: "Diesel"},
	{Name: "Pertamina Dex", Group: "Diesel"},
}

// Match is one fuel name found in a piece of text.
type Match struct {
	Name  string // Canonical name
	Start int    // Byte offset of the match in the input
	End   int    // Byte offset just past the match
}

// Catalog resolves free text to canonical fuel names.
//
// Matching is case-insensitive and whole-word. Aliases are tried longest
// first, so "Pertamax Turbo" is never reported as "Pertamax".
type Catalog struct {
	fuels   []Fuel
	byAlias map[string]string
	re      *regexp.Regexp
}

// NewCatalog builds a Catalog for the given fuels.
func NewCatalog(fuels []Fuel) *Catalog {
	byAlias := make(map[string]string)
	var aliases []string
	for _, f := range fuels {
		for _, a := range append([]string{f.Name}, f.Aliases...) {
			key := normalizeName(a)
			if _, dup := byAlias[key]; dup {
				continue
			}
			byAlias[key] = f.Name
			aliases = append(aliases, key)
		}
	}

	sort.Slice(aliases, func(i, j int) bool {
		if len(aliases[i]) != len(aliases[j]) {
			return len(aliases[i]) > len(aliases[j])
		}
		return aliases[i] < aliases[j]
	})

	alts := make([]string, len(aliases))
	for i, a := range aliases {
		words := strings.Fields(a)
		for k, w := range words {
			words[k] = regexp.QuoteMeta(w)
		}
		alts[i] = strings.Join(words, `\s+`)
	}
	pattern := `(?i:\b(` + strings.Join(alts, "|") + `)\b)`

	return &Catalog{
		fuels:   fuels,
		byAlias: byAlias,
		re:      regexp.MustCompile(pattern),
	}
}

// DefaultCatalog returns a Catalog over DefaultFuels.
func DefaultCatalog() *Catalog {
	return NewCatalog(DefaultFuels)
}

// Resolve maps a matched alias (any case or spacing) to its canonical name.
func (c *Catalog) Resolve(alias string) (string, bool) {
	name, ok := c.byAlias[normalizeName(alias)]
	return name, ok
}

// Match returns the first fuel named in text.
func (c *Catalog) Match(text string) (string, bool) {
	loc := c.re.FindStringSubmatchIndex(text)
	if loc == nil {
		return "", false
	}
	return c.Resolve(text[loc[2]:loc[3]])
}

// MatchAll returns every non-overlapping fuel name in text, in order.
func (c *Catalog) MatchAll(text string) []Match {
	var out []Match
	for _, loc := range c.re.FindAllStringSubmatchIndex(text, -1) {
		name, ok := c.Resolve(text[loc[2]:loc[3]])
		if !ok {
			continue
		}
		out = append(out, Match{Name: name, Start: loc[0], End: loc[1]})
	}
	return out
}

// Group returns the display group of a canonical fuel name.
func (c *Catalog) Group(name string) string {
	for _, f := range c.fuels {
		if f.Name == name {
			return f.Group
		}
	}
	return ""
}

// Names returns canonical fuel names in catalog order.
func (c *Catalog) Names() []string {
	names := make([]string, len(c.fuels))
	for i, f := range c.fuels {
		names[i] = f.Name
	}
	return names
}

func normalizeName(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
