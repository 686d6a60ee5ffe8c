// Package source retrieves raw pages from upstream price sources and parses
// them into model.Prices.
//
// Source kinds:
//   - table: Patra Niaga price table, one row or column per province
//   - text:  MyPertamina product page, scanned as free text
//   - json:  gold rate API with configurable field paths
//
// Parsers are pure functions of the response body and never retry; the
// fetcher decides what to do when a source fails.
package source
