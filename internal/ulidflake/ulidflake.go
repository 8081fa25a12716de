// Copyright (C) 2026 Entitystore Authors.
// See LICENSE for copying information.

// Package ulidflake generates 64-bit time-ordered identifiers.
//
// An ID packs a 43-bit millisecond timestamp (custom epoch) above 20 random
// bits, leaving the sign bit clear. IDs sort lexicographically by creation
// time and never repeat within a generator: the random component is bumped
// monotonically when two IDs land in the same millisecond.
package ulidflake

import (
	"crypto/rand"
	"encoding/binary"
	"sync"
	"time"

	"github.com/zeebo/errs"
)

// Error is the ulidflake error class.
var Error = errs.Class("ulidflake")

// Epoch is the custom epoch (2020-01-01T00:00:00Z) the timestamp counts from.
var Epoch = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)

const (
	timestampBits = 43
	entropyBits   = 20
	entropyMask   = 1<<entropyBits - 1
	maxTimestamp  = 1<<timestampBits - 1
)

// Generator allocates ulidflake IDs. The zero value is not usable; use New.
type Generator struct {
	mu      sync.Mutex
	now     func() time.Time
	lastMS  int64
	entropy int64
}

// New returns a generator using the wall clock.
func New() *Generator {
	return &Generator{now: time.Now}
}

// NewWithClock returns a generator with a custom clock, for tests.
func NewWithClock(now func() time.Time) *Generator {
	return &Generator{now: now}
}

// Next allocates a fresh ID. It is safe for concurrent use.
func (gen *Generator) Next() (int64, error) {
	gen.mu.Lock()
	defer gen.mu.Unlock()

	ms := gen.now().UTC().Sub(Epoch).Milliseconds()
	if ms < 0 || ms > maxTimestamp {
		return 0, Error.New("timestamp out of range: %d", ms)
	}

	if ms == gen.lastMS {
		gen.entropy = (gen.entropy + 1) & entropyMask
		if gen.entropy == 0 {
			// Entropy exhausted within this millisecond; move to the next one.
			ms++
		}
	}
	if ms != gen.lastMS {
		var buf [8]byte
		if _, err := rand.Read(buf[:]); err != nil {
			return 0, Error.Wrap(err)
		}
		gen.lastMS = ms
		gen.entropy = int64(binary.BigEndian.Uint64(buf[:])) & entropyMask
	}

	return ms<<entropyBits | gen.entropy, nil
}
