// Copyright (c) 2025, The SNN Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package snn

import (
	"goki.dev/gosl/v2/slrand"
	"goki.dev/gosl/v2/sltype"
)

// Rand is the engine's single counter-based random stream, built on the
// Philox2x32 generator from slrand.  The 64-bit master seed initializes the
// counter directly and derives the stream key; every draw anywhere in the
// engine (connectivity sampling, initial weights, membrane noise) consumes
// one counter increment from this stream, so a fixed seed plus a fixed
// construction sequence replays bit-identically.
type Rand struct {
	Counter slrand.Uint2 `desc:"current counter -- incremented once per draw"`
	Key     uint32       `desc:"stream key derived from the master seed"`
}

// Seed resets the stream from the 64-bit master seed.
func (rn *Rand) Seed(seed uint64) {
	rn.Counter = slrand.Uint2{X: uint32(seed), Y: uint32(seed >> 32)}
	// golden-ratio mix of both words so seeds differing only in the high
	// word still select distinct streams
	rn.Key = (uint32(seed) ^ uint32(seed>>32)) * 0x9E3779B9
}

// Uint32 returns the next uniformly-distributed 32-bit value.
func (rn *Rand) Uint32() uint32 {
	v := slrand.RandUint32(rn.Counter, rn.Key)
	slrand.CounterIncr(&rn.Counter)
	return v
}

// Float returns the next uniform float32 in [0, 1).
func (rn *Rand) Float() float32 {
	v := slrand.RandFloat(rn.Counter, rn.Key)
	slrand.CounterIncr(&rn.Counter)
	return v
}

// Float11 returns the next uniform float32 in [-1, 1).
func (rn *Rand) Float11() float32 {
	v := slrand.RandFloat11(rn.Counter, rn.Key)
	slrand.CounterIncr(&rn.Counter)
	return v
}

// NormFloat returns the next normally-distributed float32 with zero mean
// and unit variance (Box-Muller on the Philox stream).
func (rn *Rand) NormFloat() float32 {
	v := slrand.RandNormFloat(rn.Counter, rn.Key)
	slrand.CounterIncr(&rn.Counter)
	return v
}

// BoolP returns true with probability p.
func (rn *Rand) BoolP(p float32) bool {
	return rn.Float() < p
}

// Intn returns a uniform int in [0, n).  Uses the standard multiply-shift
// reduction; the map bias is < 1 in 2^32 per draw, negligible against the
// network sizes involved.
func (rn *Rand) Intn(n int) int {
	return int((uint64(rn.Uint32()) * uint64(n)) >> 32)
}
