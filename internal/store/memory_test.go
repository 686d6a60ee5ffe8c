package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_Contract(t *testing.T) {
	runStoreContract(t, func(*testing.T) Store { return NewMemory() })
}

func TestMemory_ConcurrentInsertsSameCommodity(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	changedCount := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			changed, err := m.InsertFuelIfChanged(ctx, fuelAt("Pertalite", 10000, i))
			assert.NoError(t, err)
			if changed {
				mu.Lock()
				changedCount++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, changedCount)
	assert.Len(t, m.FuelRows(), 1)
}

func TestMemory_ZeroObservedAtIsStamped(t *testing.T) {
	m := NewMemory()
	obs := goldAt(1, 1, 1, 0)
	obs.ObservedAt = time.Time{}

	changed, err := m.InsertGoldIfNew(context.Background(), obs)
	require.NoError(t, err)
	assert.True(t, changed)

	rows := m.GoldRows()
	require.Len(t, rows, 1)
	assert.False(t, rows[0].ObservedAt.IsZero())
}
