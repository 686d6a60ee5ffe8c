// Package fetcher implements the fetch-and-reconcile pipeline.
//
// A fuel run tries the configured sources in order until one returns
// prices, then writes every commodity through the store's change-detecting
// writer. A gold run has a single source. Store failures are isolated per
// commodity; only source exhaustion fails a run.
package fetcher
