package fetcher

import (
	"errors"
	"fmt"

	"github.com/rdce-vr/Local-Track/internal/model"
)

var (
	errNoSources      = errors.New("no sources configured")
	errIncompleteGold = errors.New("gold quote missing buy or sell")
)

// FetchError signals that no source of a domain produced prices.
// Err is the cause reported by the last source tried.
type FetchError struct {
	Domain model.Domain
	Source string // last source tried, empty when none is configured
	Err    error
}

func (e *FetchError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("fetch %s: %v", e.Domain, e.Err)
	}
	return fmt.Sprintf("fetch %s: all sources failed, last %s: %v", e.Domain, e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
