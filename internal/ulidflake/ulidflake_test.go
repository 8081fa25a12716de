// Copyright (C) 2026 Entitystore Authors.
// See LICENSE for copying information.

package ulidflake

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNextIsPositiveAndOrdered(t *testing.T) {
	gen := New()

	prev, err := gen.Next()
	require.NoError(t, err)
	require.Positive(t, prev)

	clock := time.Now()
	fixed := NewWithClock(func() time.Time { return clock })
	a, err := fixed.Next()
	require.NoError(t, err)
	b, err := fixed.Next()
	require.NoError(t, err)
	require.Greater(t, b, a, "same-millisecond ids must stay monotonic")

	clock = clock.Add(time.Second)
	c, err := fixed.Next()
	require.NoError(t, err)
	require.Greater(t, c, b)
}

func TestNextConcurrentUnique(t *testing.T) {
	gen := New()

	const workers, per = 8, 200
	var mu sync.Mutex
	seen := make(map[int64]bool, workers*per)

	var group sync.WaitGroup
	for i := 0; i < workers; i++ {
		group.Add(1)
		go func() {
			defer group.Done()
			for j := 0; j < per; j++ {
				id, err := gen.Next()
				require.NoError(t, err)
				mu.Lock()
				require.False(t, seen[id], "duplicate id %d", id)
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	group.Wait()
}
