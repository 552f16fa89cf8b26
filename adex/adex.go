// Copyright (c) 2025, The SNN Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package adex implements the Adaptive Exponential integrate-and-fire neuron
model (Brette & Gerstner, 2005): a leaky membrane with an exponential spike
initiation term and a slow adaptation current w.  The canonical form
(v in mV, time in ms) is:

	tau_m v' = -(v - vRest) + DeltaT exp((v - VT)/DeltaT) - Rm w + Rm I
	tau_w w' = A (v - vRest) - w

A spike is emitted when v crosses the population's firing threshold; after
the spike v is reset and w is incremented by B (spike-triggered adaptation).

Integration is fixed-step explicit Euler, driven by the engine's dt.  The
exponential argument is clamped so a single oversized Euler step cannot
overflow; sustained divergence is still caught by the engine's non-finite
state check.
*/
package adex

import "github.com/chewxy/math32"

// expMax clamps the exponential term argument -- beyond this the neuron is
// far past threshold and the exact slope no longer matters.
const expMax = float32(16)

// Params holds the AdEx model parameters for one population.
type Params struct {
	DeltaT float32 `def:"2" min:"0.001" desc:"slope factor of the exponential spike-initiation term (mV)"`
	VT     float32 `def:"-50.4" desc:"rheobase threshold (mV) where the exponential term takes off"`
	TauW   float32 `def:"144" min:"0.001" desc:"adaptation current time constant (ms)"`
	A      float32 `def:"0.04" desc:"subthreshold adaptation coupling -- scales (v - vRest) drive onto w"`
	B      float32 `def:"0.08" desc:"spike-triggered adaptation increment of w"`
}

func (ap *Params) Defaults() {
	ap.DeltaT = 2
	ap.VT = -50.4
	ap.TauW = 144
	ap.A = 0.04
	ap.B = 0.08
	ap.Update()
}

func (ap *Params) Update() {
}

// DvDt returns tau_m * v' for given state -- the un-normalized membrane
// derivative, used both in Step and to detect a spiking trajectory.
func (ap *Params) DvDt(v, w, vRest, rm, curr float32) float32 {
	arg := (v - ap.VT) / ap.DeltaT
	if arg > expMax {
		arg = expMax
	}
	return -(v - vRest) + ap.DeltaT*math32.Exp(arg) - rm*w + rm*curr
}

// Step advances v, w by one Euler step of dt ms with input current curr,
// for membrane parameters vRest, tauM, rm.
func (ap *Params) Step(v, w *float32, vRest, tauM, rm, curr, dt float32) {
	dv := ap.DvDt(*v, *w, vRest, rm, curr) * dt / tauM
	dw := (ap.A*(*v-vRest) - *w) * dt / ap.TauW
	*v += dv
	*w += dw
}

// SpikeReset applies the spike-triggered adaptation increment w <- w + B.
// The membrane reset itself is owned by the engine (v <- vReset).
func (ap *Params) SpikeReset(w *float32) {
	*w += ap.B
}
