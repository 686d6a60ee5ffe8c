package source

import (
	"fmt"
	"strconv"
	"strings"
)

// unavailable holds texts that mean "no price published".
var unavailable = map[string]bool{
	"":               true,
	"-":              true,
	"–":              true,
	"—":              true,
	"n/a":            true,
	"na":             true,
	"not available":  true,
	"tidak tersedia": true,
}

var currencyPrefixes = []string{"idr", "rp.", "rp"}

// ParsePrice converts a displayed rupiah amount to an integer.
//
//	"Rp. 13.500"   -> 13500, true
//	"Rp 1.234.567" -> 1234567, true
//	"Rp 13.500,00" -> 13500, true
//	"1.234.567,5"  -> 1234567, true
//	"-"            -> 0, false
//
// ok is false when the text says no price is available. Anything else that
// is not a number returns an error.
func ParsePrice(raw string) (price int64, ok bool, err error) {
	s := strings.ToLower(strings.Join(strings.Fields(raw), " "))
	if unavailable[s] {
		return 0, false, nil
	}

	for _, prefix := range currencyPrefixes {
		if strings.HasPrefix(s, prefix) {
			s = strings.TrimSpace(s[len(prefix):])
			break
		}
	}
	if unavailable[s] {
		return 0, false, nil
	}

	// Drop trailing units such as "/liter".
	if i := strings.IndexFunc(s, func(r rune) bool {
		return !(r >= '0' && r <= '9') && r != '.' && r != ',' && r != ' '
	}); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimRight(strings.TrimSpace(s), ".,")

	// Thousands groups have three digits, so a shorter last group is a
	// decimal part.
	if i := strings.LastIndexAny(s, ".,"); i >= 0 && len(s)-i-1 <= 2 {
		s = s[:i]
	}

	digits := strings.NewReplacer(".", "", ",", "", " ", "").Replace(s)
	if digits == "" {
		return 0, false, fmt.Errorf("%w: %q", errInvalidPrice, raw)
	}

	price, err = strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("%w: %q", errInvalidPrice, raw)
	}
	return price, true, nil
}
