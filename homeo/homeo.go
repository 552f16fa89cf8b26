// Copyright (c) 2025, The SNN Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package homeo implements slow homeostatic synaptic scaling: every Tau ms
each neuron's incoming plastic weights are multiplied by a factor that
drives the neuron's recent firing rate toward TargetRate.  Scaling acts on
weight magnitude, preserving sign, so inhibitory weights scale the same way
as excitatory ones.
*/
package homeo

// Params holds the homeostatic scaling parameters for a projection.
type Params struct {
	TargetRate float32 `def:"10" min:"0" desc:"target firing rate (Hz) the scaling drives toward"`
	Tau        float32 `def:"1000" min:"1" desc:"scaling interval and trailing rate-measurement window (ms)"`
	ScaleStep  float32 `def:"0.01" min:"0" desc:"fractional weight change per interval at zero measured rate"`
}

func (hp *Params) Defaults() {
	hp.TargetRate = 10
	hp.Tau = 1000
	hp.ScaleStep = 0.01
	hp.Update()
}

func (hp *Params) Update() {
}

// Factor returns the multiplicative weight scale for measured rate r (Hz):
// 1 + ScaleStep * (TargetRate - r) / TargetRate, floored at 0 so a grossly
// overshooting rate can at most zero the weights, never flip their sign.
func (hp *Params) Factor(r float32) float32 {
	if hp.TargetRate <= 0 {
		return 1
	}
	f := 1 + hp.ScaleStep*(hp.TargetRate-r)/hp.TargetRate
	if f < 0 {
		return 0
	}
	return f
}
