// Copyright (c) 2025, The SNN Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package izhi implements the Izhikevich (2003) two-variable spiking neuron
model: a quadratic membrane potential v coupled to a slow recovery variable
u.  The canonical form (v in mV, time in ms) is:

	v' = 0.04 v^2 + 5 v + 140 - u + I
	u' = a (b v - u)

with a spike cut at v >= VPeak, after which v <- C and u <- u + D.
The four parameters a, b, c, d select the standard firing phenotypes
(regular spiking, bursting, chattering, fast spiking, etc).

Integration is fixed-step explicit Euler, driven by the engine's dt.
*/
package izhi

import "github.com/chewxy/math32"

// Params holds the Izhikevich model parameters for one population.
type Params struct {
	A     float32 `def:"0.02" min:"0" desc:"recovery time scale -- smaller is slower recovery"`
	B     float32 `def:"0.2" desc:"sensitivity of recovery u to subthreshold fluctuations of v"`
	C     float32 `def:"-65" desc:"post-spike reset value of v (mV)"`
	D     float32 `def:"8" desc:"post-spike increment of recovery u"`
	VPeak float32 `def:"30" desc:"spike cut value of v (mV) -- crossing emits a spike"`
}

func (ip *Params) Defaults() {
	ip.A = 0.02
	ip.B = 0.2
	ip.C = -65
	ip.D = 8
	ip.VPeak = 30
	ip.Update()
}

func (ip *Params) Update() {
}

// InitU returns the recovery-variable equilibrium b*v for resting potential v.
func (ip *Params) InitU(v float32) float32 {
	return ip.B * v
}

// DvDt returns the instantaneous rate of change of v for given state and
// input current -- used to detect whether the neuron is on a spiking
// trajectory absent further input.
func (ip *Params) DvDt(v, u, curr float32) float32 {
	return 0.04*v*v + 5*v + 140 - u + curr
}

// Step advances v, u by one Euler step of dt ms with input current curr.
// Returns true if v reached VPeak, in which case v is clamped at VPeak and
// the caller must apply Reset.
func (ip *Params) Step(v, u *float32, curr, dt float32) bool {
	dv := ip.DvDt(*v, *u, curr) * dt
	du := ip.A * (ip.B*(*v) - *u) * dt
	*v += dv
	*u += du
	if *v >= ip.VPeak {
		*v = math32.Min(*v, ip.VPeak)
		return true
	}
	return false
}

// Reset applies the post-spike reset: v <- C, u <- u + D.
func (ip *Params) Reset(v, u *float32) {
	*v = ip.C
	*u += ip.D
}
