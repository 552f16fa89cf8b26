// Copyright (c) 2025, The SNN Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package snn

import (
	"math"

	"github.com/nsim/snn/esched"
)

///////////////////////////////////////////////////////////////////////
//  engine.go contains the per-event dynamics: spike emission, delayed
//  delivery, refractory gating, and the plasticity updates

// spike emits a spike from neuron ni of population pp at time t: records
// it, applies the post-spike reset and refractory window, runs post-side
// plasticity pairings, and schedules delayed deliveries on all outgoing
// synapses.
func (nt *Network) spike(pp *Population, ni int, t float64) error {
	nrn := &nt.Neurons[pp.StIdx+ni]
	nt.Ring.Add(int32(pp.Idx), int32(pp.StIdx+ni), t)
	pp.Stats.Spikes++
	nrn.Spikes++
	nrn.TLastSpike = t
	nrn.TLastUpdate = t
	pp.Act.SpikeReset(nrn)
	if pp.Act.ThrAdapt.On {
		nrn.Thr += pp.Act.ThrAdapt.Inc
	}
	if pp.Act.TRef > 0 {
		nrn.SetFlag(NeurInRefrac)
	}
	nt.postPlast(pp, ni, t)
	return nt.scheduleDeliveries(pp, ni, t)
}

// injectSpike records an externally injected spike for neuron ni of pp at
// time t and propagates it downstream.  The neuron's own membrane state,
// reset, and refractory window are untouched: injection substitutes for
// the axonal output, not the soma.
func (nt *Network) injectSpike(pp *Population, ni int, t float64) error {
	nt.Ring.Add(int32(pp.Idx), int32(pp.StIdx+ni), t)
	pp.Stats.Spikes++
	pp.Stats.Injected++
	nt.postPlast(pp, ni, t)
	return nt.scheduleDeliveries(pp, ni, t)
}

// postPlast runs the post-synaptic side of nearest-neighbor STDP for a
// spike of neuron ni of pp at time t: each plastic incoming synapse pairs
// this post spike against its most recent pre spike, then records t as
// the synapse's latest post time.
func (nt *Network) postPlast(pp *Population, ni int, t float64) {
	for _, pj := range pp.RcvPrjns {
		if !pj.Syn.Plastic || pj.Syn.Rule != PlastSTDP {
			continue
		}
		nc := int(pj.RConN[ni])
		st := int(pj.RConIdxSt[ni])
		for ci := 0; ci < nc; ci++ {
			syi := int(pj.RSynIdx[st+ci])
			sy := &pj.Syns[syi]
			// strictly-later post only: an equal-time pair is no change, and
			// an earlier post was already paired when it happened
			if !math.IsInf(sy.LastPre, -1) && t > sy.LastPre {
				nt.applyDWt(pj, syi, sy.LastPre, t)
			}
			sy.LastPost = t
		}
	}
}

// applyDWt computes and applies the STDP weight change for the given
// pre/post pairing on synapse syi of pj, clipping into the weight range.
func (nt *Network) applyDWt(pj *Prjn, syi int, tPre, tPost float64) {
	sy := &pj.Syns[syi]
	dwt := pj.Syn.LRate * pj.Syn.STDP.DWt(tPre, tPost)
	sy.DWt = dwt
	sy.Wt = pj.Syn.WtRange.ClipVal(sy.Wt + dwt)
	if nt.OnPlastic != nil {
		nt.OnPlastic(PlasticEvent{Prjn: pj, SynIdx: syi, TPre: tPre, TPost: tPost, DWt: dwt})
	}
}

// scheduleDeliveries schedules one delayed delivery per outgoing synapse
// of neuron ni of pp, for a spike at time tp.  Delivery times earlier than
// the current clock (possible when an intrinsic crossing is discovered
// after the fact) are clamped to now, preserving causality.
func (nt *Network) scheduleDeliveries(pp *Population, ni int, tp float64) error {
	if pp.Off {
		return nil
	}
	now := nt.Sched.Now()
	for _, pj := range pp.SndPrjns {
		if pj.Off {
			continue
		}
		nc := int(pj.SConN[ni])
		st := int(pj.SConIdxSt[ni])
		for ci := 0; ci < nc; ci++ {
			syi := st + ci
			ri := int(pj.SConIdx[syi])
			td := tp + float64(pj.Syns[syi].Delay)
			if td < now {
				td = now
			}
			epj, esyi, eri, etd := pj, syi, ri, td
			err := nt.Sched.ScheduleAt(td, int32(pj.Recv.Idx), func() error {
				return nt.deliver(epj, esyi, eri, tp, etd)
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// deliver applies one spike delivery: synapse syi of pj, onto receiving
// neuron ri, from a pre spike at tp, arriving at t.  Pre-side STDP pairing
// runs unconditionally (the pre spike happened whether or not the receiver
// can respond); the membrane effect is gated by the refractory window.
func (nt *Network) deliver(pj *Prjn, syi, ri int, tp, t float64) error {
	sy := &pj.Syns[syi]
	if pj.Syn.Plastic && pj.Syn.Rule == PlastSTDP {
		// LTD pairs only a strictly-earlier post; an equal-time pair is
		// no change
		if !math.IsInf(sy.LastPost, -1) && tp > sy.LastPost {
			nt.applyDWt(pj, syi, tp, sy.LastPost)
		}
		sy.LastPre = tp
	}
	rp := pj.Recv
	nrn := &nt.Neurons[rp.StIdx+ri]
	if rp.Off || nrn.HasFlag(NeurOff) {
		return nil
	}
	if nt.inRefrac(rp, nrn, t) {
		rp.Stats.RefDrops++
		return nil
	}
	if err := nt.advanceTo(rp, ri, t); err != nil {
		return err
	}
	// the advance itself may have produced a spike whose window covers t
	if nt.inRefrac(rp, nrn, t) {
		rp.Stats.RefDrops++
		return nil
	}
	nrn.Vm = rp.Act.VmRange.ClipVal(nrn.Vm + sy.Wt)
	if nrn.Vm >= rp.Act.ThrVal(nrn) {
		return nt.spike(rp, ri, t)
	}
	nt.maybePoke(rp, ri, t)
	return nil
}

// inRefrac reports whether the neuron's refractory window covers time t.
func (nt *Network) inRefrac(pp *Population, nrn *Neuron, t float64) bool {
	return nrn.HasFlag(NeurInRefrac) && t < nrn.TLastSpike+float64(pp.Act.TRef)
}

// advanceTo brings neuron ri of pp up to time t, emitting any threshold
// crossings the intrinsic dynamics produce along the way.  A neuron still
// inside its refractory window stays held at reset (its state clock only
// starts moving again at the window's end).
func (nt *Network) advanceTo(pp *Population, ri int, t float64) error {
	nrn := &nt.Neurons[pp.StIdx+ri]
	if nrn.HasFlag(NeurInRefrac) {
		tEnd := nrn.TLastSpike + float64(pp.Act.TRef)
		if t < tEnd {
			return nil
		}
		nrn.ClearFlag(NeurInRefrac)
		nrn.TLastUpdate = tEnd
	}
	for {
		cross, err := pp.Act.AdvanceTo(nrn, t, nt.Cfg.DtMs, &nt.Rnd)
		if err != nil {
			return err
		}
		if cross < 0 {
			return nil
		}
		if err := nt.spike(pp, ri, cross); err != nil {
			return err
		}
		tEnd := cross + float64(pp.Act.TRef)
		if t < tEnd {
			return nil
		}
		nrn.ClearFlag(NeurInRefrac)
		nrn.TLastUpdate = tEnd
	}
}

// maybePoke keeps an intrinsically-spiking neuron (Izhikevich, AdEx) moving
// between inputs: when its dynamics are on an upward trajectory at time t,
// a self-rescheduling probe one integration step later advances it again,
// so the threshold crossing is discovered without any further delivery.
// LIF never needs this: it only relaxes toward rest between events.
func (nt *Network) maybePoke(pp *Population, ri int, t float64) {
	if pp.Act.Model == LIF {
		return
	}
	nrn := &nt.Neurons[pp.StIdx+ri]
	if nrn.HasFlag(NeurInRefrac) || !pp.Act.OnSpikingTrajectory(nrn) {
		return
	}
	// t is the current event time, so t+dt can never be in the past
	_ = nt.Sched.ScheduleAt(t+float64(nt.Cfg.DtMs), esched.NoTag, func() error {
		now := nt.Sched.Now()
		if err := nt.advanceTo(pp, ri, now); err != nil {
			return err
		}
		nt.maybePoke(pp, ri, now)
		return nil
	})
}

// scheduleHomeo arms the recurring homeostatic scaling event for a
// projection: every Homeo.Tau ms the trailing firing rate of each receiving
// neuron is measured from the spike ring and incoming weight magnitudes are
// nudged toward the target rate.
func (nt *Network) scheduleHomeo(pj *Prjn) {
	// Tau > 0, so next is always ahead of the clock
	next := nt.Sched.Now() + float64(pj.Syn.Homeo.Tau)
	_ = nt.Sched.ScheduleAt(next, esched.NoTag, func() error {
		nt.homeoScale(pj, nt.Sched.Now())
		nt.scheduleHomeo(pj)
		return nil
	})
}

// homeoScale performs one homeostatic scaling pass over pj at time tNow:
// per receiving neuron, the spike count in the trailing Tau window becomes
// a rate in Hz, and every incoming weight is multiplied by the scaling
// factor.  Multiplication preserves each weight's sign, so inhibitory
// synapses scale in magnitude like excitatory ones.
func (nt *Network) homeoScale(pj *Prjn, tNow float64) {
	tau := float64(pj.Syn.Homeo.Tau)
	t0 := tNow - tau
	rp := pj.Recv
	counts := make([]int, rp.NNeurons)
	nt.Ring.Do(func(sr *SpikeRecord) {
		if int(sr.Pop) != rp.Idx || sr.Time < t0 || sr.Time > tNow {
			return
		}
		counts[int(sr.Neur)-rp.StIdx]++
	})
	for ri := range counts {
		rate := float32(float64(counts[ri]) * 1000.0 / tau)
		f := pj.Syn.Homeo.Factor(rate)
		if f == 1 {
			continue
		}
		nc := int(pj.RConN[ri])
		st := int(pj.RConIdxSt[ri])
		for ci := 0; ci < nc; ci++ {
			sy := &pj.Syns[pj.RSynIdx[st+ci]]
			sy.Wt = pj.Syn.WtRange.ClipVal(sy.Wt * f)
		}
	}
}
