// Copyright (c) 2025, The SNN Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package snn

import (
	"fmt"

	"github.com/goki/ki/kit"
)

// PatternTypes are the supported connectivity patterns for Connect.
type PatternTypes int32

//go:generate stringer -type=PatternTypes

var KiT_PatternTypes = kit.Enums.AddEnum(PatternTypesN, kit.NotBitFlag, nil)

func (ev PatternTypes) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *PatternTypes) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// AllToAll connects every source neuron to every target neuron.
	AllToAll PatternTypes = iota

	// Random connects each source-target pair independently with
	// probability P, sampled on the engine's Philox stream.
	Random

	// OneToOne connects neuron i of the source to neuron i of the target;
	// requires equal population sizes.
	OneToOne

	// Sparse connects each source neuron to K uniformly-chosen distinct
	// targets.
	Sparse

	// Clustered partitions each population into Clusters equal clusters
	// and connects pairs with probability PIn inside a cluster and POut
	// across clusters.
	Clustered

	PatternTypesN
)

// ConnPattern selects a connectivity pattern plus its parameters.  Only the
// fields relevant to the selected Type are consulted; the rest are ignored.
// All random sampling draws from the engine's Philox stream, so a fixed
// master seed and construction sequence reproduces the exact synapse set.
type ConnPattern struct {
	Type     PatternTypes `desc:"which pattern to materialize"`
	P        float32      `viewif:"Type=Random" desc:"per-pair connection probability in [0,1]"`
	K        int          `viewif:"Type=Sparse" desc:"distinct targets per source neuron"`
	Clusters int          `viewif:"Type=Clustered" desc:"number of equal clusters each population is partitioned into"`
	PIn      float32      `viewif:"Type=Clustered" desc:"intra-cluster connection probability in [0,1]"`
	POut     float32      `viewif:"Type=Clustered" desc:"cross-cluster connection probability in [0,1]"`
	SelfCons bool         `desc:"permit self connections when source and target are the same population"`
}

// FullPat returns an all-to-all pattern.
func FullPat() ConnPattern { return ConnPattern{Type: AllToAll} }

// RandomPat returns a Bernoulli pattern with per-pair probability p.
func RandomPat(p float32) ConnPattern { return ConnPattern{Type: Random, P: p} }

// OneToOnePat returns a one-to-one pattern.
func OneToOnePat() ConnPattern { return ConnPattern{Type: OneToOne} }

// SparsePat returns a fixed fan-out pattern with k targets per source.
func SparsePat(k int) ConnPattern { return ConnPattern{Type: Sparse, K: k} }

// ClusteredPat returns a clustered pattern with c clusters and the given
// intra / cross cluster probabilities.
func ClusteredPat(c int, pin, pout float32) ConnPattern {
	return ConnPattern{Type: Clustered, Clusters: c, PIn: pin, POut: pout}
}

// Validate checks the pattern's preconditions against source size ns,
// target size nt, and whether the two populations are the same.
func (cp *ConnPattern) Validate(ns, nt int, same bool) error {
	if ns <= 0 || nt <= 0 {
		return fmt.Errorf("%w: empty population pair (%d x %d)", ErrInvalidConnectivity, ns, nt)
	}
	switch cp.Type {
	case AllToAll:
	case Random:
		if cp.P < 0 || cp.P > 1 {
			return fmt.Errorf("%w: probability p = %v outside [0,1]", ErrInvalidArg, cp.P)
		}
	case OneToOne:
		if ns != nt {
			return fmt.Errorf("%w: one-to-one requires equal sizes, got %d != %d", ErrInvalidConnectivity, ns, nt)
		}
	case Sparse:
		navail := nt
		if same && !cp.SelfCons {
			navail--
		}
		if cp.K <= 0 || cp.K > navail {
			return fmt.Errorf("%w: sparse k = %d outside [1,%d]", ErrInvalidConnectivity, cp.K, navail)
		}
	case Clustered:
		if cp.Clusters <= 0 || ns%cp.Clusters != 0 || nt%cp.Clusters != 0 {
			return fmt.Errorf("%w: %d clusters do not evenly partition %d x %d", ErrInvalidConnectivity, cp.Clusters, ns, nt)
		}
		if cp.PIn < 0 || cp.PIn > 1 || cp.POut < 0 || cp.POut > 1 {
			return fmt.Errorf("%w: cluster probabilities (%v, %v) outside [0,1]", ErrInvalidArg, cp.PIn, cp.POut)
		}
	default:
		return fmt.Errorf("%w: unknown pattern type %v", ErrInvalidArg, cp.Type)
	}
	return nil
}

// Cons materializes the pattern as per-source sorted target index lists,
// drawing any randomness from rnd.  Pattern preconditions must have been
// validated first.
func (cp *ConnPattern) Cons(ns, nt int, same bool, rnd *Rand) [][]int32 {
	cons := make([][]int32, ns)
	skipSelf := same && !cp.SelfCons
	switch cp.Type {
	case AllToAll:
		for si := 0; si < ns; si++ {
			tl := make([]int32, 0, nt)
			for ti := 0; ti < nt; ti++ {
				if skipSelf && ti == si {
					continue
				}
				tl = append(tl, int32(ti))
			}
			cons[si] = tl
		}
	case Random:
		for si := 0; si < ns; si++ {
			var tl []int32
			for ti := 0; ti < nt; ti++ {
				if skipSelf && ti == si {
					continue
				}
				if rnd.BoolP(cp.P) {
					tl = append(tl, int32(ti))
				}
			}
			cons[si] = tl
		}
	case OneToOne:
		for si := 0; si < ns; si++ {
			cons[si] = []int32{int32(si)}
		}
	case Sparse:
		for si := 0; si < ns; si++ {
			cons[si] = cp.sparseTargets(si, nt, skipSelf, rnd)
		}
	case Clustered:
		scl := ns / cp.Clusters
		tcl := nt / cp.Clusters
		for si := 0; si < ns; si++ {
			var tl []int32
			for ti := 0; ti < nt; ti++ {
				if skipSelf && ti == si {
					continue
				}
				p := cp.POut
				if si/scl == ti/tcl {
					p = cp.PIn
				}
				if rnd.BoolP(p) {
					tl = append(tl, int32(ti))
				}
			}
			cons[si] = tl
		}
	}
	return cons
}

// sparseTargets draws K distinct targets for source si by a partial
// Fisher-Yates shuffle of the candidate list, then sorts them so synapse
// ordering is by target index within each source.
func (cp *ConnPattern) sparseTargets(si, nt int, skipSelf bool, rnd *Rand) []int32 {
	cand := make([]int32, 0, nt)
	for ti := 0; ti < nt; ti++ {
		if skipSelf && ti == si {
			continue
		}
		cand = append(cand, int32(ti))
	}
	for i := 0; i < cp.K; i++ {
		j := i + rnd.Intn(len(cand)-i)
		cand[i], cand[j] = cand[j], cand[i]
	}
	sel := cand[:cp.K]
	// insertion sort -- K is small
	for i := 1; i < len(sel); i++ {
		for j := i; j > 0 && sel[j] < sel[j-1]; j-- {
			sel[j], sel[j-1] = sel[j-1], sel[j]
		}
	}
	return sel
}
