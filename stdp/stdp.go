// Copyright (c) 2025, The SNN Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package stdp implements the pairwise additive spike-timing-dependent
plasticity rule.  For a pre-synaptic spike at tPre and a post-synaptic spike
at tPost on the same synapse:

	tPost > tPre:  dW = +APlus  * exp(-(tPost - tPre) / TauPlus)   (LTP)
	tPost < tPre:  dW = -AMinus * exp(-(tPre - tPost) / TauMinus)  (LTD)
	tPost = tPre:  dW = 0

Only nearest-neighbor pairings are considered: the engine keeps one LastPre
and one LastPost time per synapse and calls DWt for each new pairing.
Weight clipping to the allowed range is owned by the caller.
*/
package stdp

import "github.com/chewxy/math32"

// Params holds the STDP window parameters for a projection.
type Params struct {
	TauPlus  float32 `def:"20" min:"0.001" desc:"LTP window time constant (ms)"`
	TauMinus float32 `def:"20" min:"0.001" desc:"LTD window time constant (ms)"`
	APlus    float32 `def:"0.1" min:"0" desc:"LTP amplitude -- weight change at zero pre-post separation"`
	AMinus   float32 `def:"0.12" min:"0" desc:"LTD amplitude -- weight change at zero post-pre separation"`
}

func (sp *Params) Defaults() {
	sp.TauPlus = 20
	sp.TauMinus = 20
	sp.APlus = 0.1
	sp.AMinus = 0.12
	sp.Update()
}

func (sp *Params) Update() {
}

// DWt returns the weight change for the nearest-neighbor pairing of a
// pre spike at tPre and a post spike at tPost (both in ms).
func (sp *Params) DWt(tPre, tPost float64) float32 {
	switch {
	case tPost > tPre:
		return sp.APlus * math32.Exp(-float32(tPost-tPre)/sp.TauPlus)
	case tPost < tPre:
		return -sp.AMinus * math32.Exp(-float32(tPre-tPost)/sp.TauMinus)
	}
	return 0
}
