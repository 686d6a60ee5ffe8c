package store

import "fmt"

// StoreError signals a persistence failure (connect, lock timeout, query).
type StoreError struct {
	Op  string // Operation that failed (e.g., "insert fuel")
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}
