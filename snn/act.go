// Copyright (c) 2025, The SNN Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package snn

import (
	"fmt"
	"math"

	"github.com/emer/etable/minmax"
	"github.com/goki/ki/kit"
	"github.com/goki/mat32"

	"github.com/nsim/snn/adex"
	"github.com/nsim/snn/izhi"
)

///////////////////////////////////////////////////////////////////////
//  act.go contains the membrane dynamics params and integration
//  functions for the event-driven engine

// NeuronModels are the supported point-neuron membrane models.
type NeuronModels int32

//go:generate stringer -type=NeuronModels

var KiT_NeuronModels = kit.Enums.AddEnum(NeuronModelsN, kit.NotBitFlag, nil)

func (ev NeuronModels) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *NeuronModels) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// LIF is the leaky integrate-and-fire model: exponential relaxation
	// toward rest between events, integrated in closed form.
	LIF NeuronModels = iota

	// Izhikevich is the two-variable quadratic model (see package izhi),
	// integrated by fixed-step explicit Euler.
	Izhikevich

	// AdEx is the adaptive exponential integrate-and-fire model (see
	// package adex), integrated by fixed-step explicit Euler.
	AdEx

	NeuronModelsN
)

// ActParams contains all membrane dynamics params for one population.
// This is the per-neuron parameter template: immutable after creation.
type ActParams struct {
	Model    NeuronModels   `desc:"which point-neuron model integrates the membrane"`
	VmRest   float32        `def:"-70" desc:"resting membrane potential (mV)"`
	VmThr    float32        `def:"-55" desc:"firing threshold (mV)"`
	VmReset  float32        `def:"-80" desc:"post-spike reset potential (mV) -- Izhikevich uses its own C instead"`
	TauM     float32        `def:"10" min:"0.001" desc:"membrane time constant (ms)"`
	Rm       float32        `def:"10" desc:"membrane resistance (MOhm) -- scales currents in the AdEx model"`
	TRef     float32        `def:"2" min:"0" desc:"absolute refractory period (ms) -- deliveries inside it are discarded"`
	Noise    NoiseParams    `view:"inline" desc:"query-time Gaussian membrane noise"`
	ThrAdapt ThrAdaptParams `view:"inline" desc:"adaptive threshold -- increments on each spike, decays back to VmThr"`
	VmRange  minmax.F32     `view:"inline" desc:"hard bounds on Vm for numerical safety"`
	Izhi     izhi.Params    `view:"inline" desc:"Izhikevich model extras -- used when Model = Izhikevich"`
	AdEx     adex.Params    `view:"inline" desc:"AdEx model extras -- used when Model = AdEx"`
}

func (ac *ActParams) Defaults() {
	ac.Model = LIF
	ac.VmRest = -70
	ac.VmThr = -55
	ac.VmReset = -80
	ac.TauM = 10
	ac.Rm = 10
	ac.TRef = 2
	ac.Noise.Defaults()
	ac.ThrAdapt.Defaults()
	ac.VmRange.Set(-150, 60)
	ac.Izhi.Defaults()
	ac.AdEx.Defaults()
	ac.Update()
}

// Update must be called after any changes to parameters
func (ac *ActParams) Update() {
	ac.Noise.Update()
	ac.ThrAdapt.Update()
	ac.Izhi.Update()
	ac.AdEx.Update()
}

// InitActs initializes neuron state from this template: Vm at rest,
// no spike history, model-specific extras at their equilibria.
func (ac *ActParams) InitActs(nrn *Neuron) {
	nrn.Flags = 0
	nrn.Vm = ac.VmRest
	nrn.W = 0
	nrn.U = 0
	if ac.Model == Izhikevich {
		nrn.U = ac.Izhi.InitU(nrn.Vm)
	}
	nrn.Thr = ac.VmThr
	nrn.Spikes = 0
	nrn.TLastSpike = math.Inf(-1)
	nrn.TLastUpdate = 0
}

// ThrVal returns the effective firing threshold for the neuron: the
// Izhikevich spike cut VPeak for that model, the (possibly adapted)
// per-neuron threshold otherwise.
func (ac *ActParams) ThrVal(nrn *Neuron) float32 {
	if ac.Model == Izhikevich {
		return ac.Izhi.VPeak
	}
	return nrn.Thr
}

// SpikeReset applies the model-specific post-spike reset to the neuron.
// Threshold adaptation and bookkeeping are owned by the engine.
func (ac *ActParams) SpikeReset(nrn *Neuron) {
	switch ac.Model {
	case Izhikevich:
		ac.Izhi.Reset(&nrn.Vm, &nrn.U)
	case AdEx:
		nrn.Vm = ac.VmReset
		ac.AdEx.SpikeReset(&nrn.W)
	default:
		nrn.Vm = ac.VmReset
	}
}

// OnSpikingTrajectory returns true if the neuron's intrinsic dynamics are
// currently driving Vm upward with no further input, meaning the engine
// must keep polling it to discover the threshold crossing.  Always false
// for LIF, which only relaxes toward rest between events.
func (ac *ActParams) OnSpikingTrajectory(nrn *Neuron) bool {
	switch ac.Model {
	case Izhikevich:
		return ac.Izhi.DvDt(nrn.Vm, nrn.U, 0) > 0
	case AdEx:
		return nrn.Vm > ac.AdEx.VT && ac.AdEx.DvDt(nrn.Vm, nrn.W, ac.VmRest, ac.Rm, 0) > 0
	}
	return false
}

// AdvanceTo advances neuron state lazily from TLastUpdate to time t (ms),
// using fixed Euler step dt for the ODE models.  Query-time noise is drawn
// from rnd when enabled.  If intrinsic dynamics cross threshold during the
// advance, integration stops there and the crossing time is returned;
// otherwise the crossing time is -1.  Non-finite state fails with ErrNumeric.
func (ac *ActParams) AdvanceTo(nrn *Neuron, t float64, dt float32, rnd *Rand) (float64, error) {
	t0 := nrn.TLastUpdate
	if t <= t0 {
		return -1, nil
	}
	del := t - t0
	cross := -1.0
	switch ac.Model {
	case LIF:
		nrn.Vm = ac.VmRest + (nrn.Vm-ac.VmRest)*mat32.Exp(-float32(del)/ac.TauM)
	case Izhikevich:
		cross = ac.eulerTo(t0, t, dt, func(h float32) bool {
			return ac.Izhi.Step(&nrn.Vm, &nrn.U, 0, h)
		})
	case AdEx:
		cross = ac.eulerTo(t0, t, dt, func(h float32) bool {
			ac.AdEx.Step(&nrn.Vm, &nrn.W, ac.VmRest, ac.TauM, ac.Rm, 0, h)
			return nrn.Vm >= nrn.Thr
		})
	}
	if cross < 0 {
		nrn.TLastUpdate = t
		if ac.ThrAdapt.On {
			nrn.Thr = ac.VmThr + (nrn.Thr-ac.VmThr)*mat32.Exp(-float32(del)/ac.ThrAdapt.Tau)
		}
		if ac.Noise.Sigma > 0 {
			nrn.Vm += ac.Noise.Vm(rnd, del)
		}
		nrn.Vm = ac.VmRange.ClipVal(nrn.Vm)
	} else {
		nrn.TLastUpdate = cross
	}
	if mat32.IsNaN(nrn.Vm) || mat32.IsInf(nrn.Vm, 0) ||
		mat32.IsNaN(nrn.W) || mat32.IsInf(nrn.W, 0) ||
		mat32.IsNaN(nrn.U) || mat32.IsInf(nrn.U, 0) {
		return cross, fmt.Errorf("%w: Vm = %v, W = %v, U = %v at t = %g ms", ErrNumeric, nrn.Vm, nrn.W, nrn.U, t)
	}
	return cross, nil
}

// eulerTo steps the given model function from t0 to t at fixed step dt
// (with a shorter final step to land exactly on t), returning the crossing
// time if step reported a threshold crossing, else -1.
func (ac *ActParams) eulerTo(t0, t float64, dt float32, step func(h float32) bool) float64 {
	tcur := t0
	for tcur < t {
		tnext := tcur + float64(dt)
		if tnext > t {
			tnext = t
		}
		if step(float32(tnext - tcur)) {
			return tnext
		}
		tcur = tnext
	}
	return -1
}

// NoiseParams parameterize query-time membrane noise: when a neuron's state
// is advanced across an interval of length del ms, Gaussian noise of
// standard deviation Sigma * sqrt(del) is added, drawn from the engine's
// Philox stream so replay is exact.
type NoiseParams struct {
	Sigma float32 `def:"0" min:"0" desc:"noise magnitude (mV per sqrt ms) -- 0 disables"`
}

func (np *NoiseParams) Defaults() {
	np.Sigma = 0
	np.Update()
}

func (np *NoiseParams) Update() {
}

// Vm returns the noise contribution for an advance across del ms.
func (np *NoiseParams) Vm(rnd *Rand, del float64) float32 {
	if np.Sigma <= 0 || del <= 0 {
		return 0
	}
	return np.Sigma * mat32.Sqrt(float32(del)) * rnd.NormFloat()
}

// ThrAdaptParams parameterize the adaptive firing threshold: each spike
// raises the neuron's threshold by Inc, and between spikes the threshold
// relaxes back toward VmThr with time constant Tau.
type ThrAdaptParams struct {
	On  bool    `desc:"enable threshold adaptation"`
	Inc float32 `def:"2" viewif:"On" desc:"threshold increment per spike (mV)"`
	Tau float32 `def:"50" viewif:"On" min:"0.001" desc:"decay time constant back to VmThr (ms)"`
}

func (ta *ThrAdaptParams) Defaults() {
	ta.On = false
	ta.Inc = 2
	ta.Tau = 50
	ta.Update()
}

func (ta *ThrAdaptParams) Update() {
}
