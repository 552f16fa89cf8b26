// Copyright (c) 2025, The SNN Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package snn

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/emer/emergent/erand"
	"github.com/emer/etable/minmax"
	"github.com/goki/ki/kit"
	"github.com/goki/mat32"

	"github.com/nsim/snn/homeo"
	"github.com/nsim/snn/stdp"
)

// PlasticRules are the synaptic plasticity rules available per projection.
type PlasticRules int32

//go:generate stringer -type=PlasticRules

var KiT_PlasticRules = kit.Enums.AddEnum(PlasticRulesN, kit.NotBitFlag, nil)

func (ev PlasticRules) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *PlasticRules) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// PlastNone: weights are fixed.
	PlastNone PlasticRules = iota

	// PlastSTDP: pairwise additive spike-timing-dependent plasticity
	// (see package stdp).
	PlastSTDP

	// PlastHomeo: slow homeostatic scaling of incoming weights toward a
	// target firing rate (see package homeo).
	PlastHomeo

	PlasticRulesN
)

// WtInitParams describe the initial weight distribution for a projection:
// Mean is the central value (mV), Var the spread per the selected Dist.
// Sampling draws from the engine's Philox stream, not the erand generators,
// so construction replays exactly.
type WtInitParams struct {
	erand.RndParams
}

func (wp *WtInitParams) Defaults() {
	wp.Mean = 1
	wp.Var = 0
	wp.Dist = erand.Mean
}

// Sample returns one initial weight on the engine stream.
func (wp *WtInitParams) Sample(rnd *Rand) float32 {
	switch wp.Dist {
	case erand.Uniform:
		return float32(wp.Mean) + float32(wp.Var)*rnd.Float11()
	case erand.Gaussian:
		return float32(wp.Mean) + float32(wp.Var)*rnd.NormFloat()
	default:
		return float32(wp.Mean)
	}
}

// SynParams is the synapse template applied to every synapse a Connect call
// creates: initial weight distribution, delay, and plasticity rule.
type SynParams struct {
	WtInit  WtInitParams `view:"inline" desc:"initial weight distribution (mV)"`
	Delay   float32      `def:"1" min:"0" desc:"axonal conduction delay (ms) -- strictly > 0"`
	Plastic bool         `desc:"weights on this projection learn during the run"`
	Rule    PlasticRules `viewif:"Plastic" desc:"which plasticity rule applies"`
	LRate   float32      `def:"1" viewif:"Plastic" desc:"multiplier on STDP weight changes"`
	STDP    stdp.Params  `view:"inline" viewif:"Plastic" desc:"STDP window parameters"`
	Homeo   homeo.Params `view:"inline" viewif:"Plastic" desc:"homeostatic scaling parameters"`
	WtRange minmax.F32   `view:"inline" desc:"weight clip bounds for plastic synapses -- zero range defaults to ±4·|WtInit.Mean| at Build"`
}

func (sp *SynParams) Defaults() {
	sp.WtInit.Defaults()
	sp.Delay = 1
	sp.Plastic = false
	sp.Rule = PlastNone
	sp.LRate = 1
	sp.STDP.Defaults()
	sp.Homeo.Defaults()
	sp.WtRange.Set(0, 0)
	sp.Update()
}

func (sp *SynParams) Update() {
	sp.STDP.Update()
	sp.Homeo.Update()
}

// snn.Prjn is a projection: the full set of synapses created by one Connect
// call between a sending and receiving population.  Synapses are stored in
// one flat array ordered by the sending neuron (which owns them), with
// receiver-side index arrays for reverse traversal, following the standard
// sender/receiver connection-index representation.
type Prjn struct {
	Off   bool        `desc:"inactivate this projection -- deliveries are still scheduled but not from new spikes"`
	Cls   string      `desc:"class tag for applying parameter styles, space separated if multiple"`
	Notes string      `desc:"can record notes about this projection here"`
	Send  *Population `desc:"sending population"`
	Recv  *Population `desc:"receiving population"`
	Pat   ConnPattern `desc:"pattern used to materialize the synapses"`
	Idx   int         `desc:"position of this projection in the network's projection list"`
	Syn   SynParams   `view:"add-fields" desc:"synapse template shared by all synapses in this projection"`

	Syns []Synapse `desc:"synaptic state, ordered by sending neuron -- one-to-one with SConIdx"`

	SConN     []int32 `view:"-" desc:"number of sending connections for each neuron in the sending population"`
	SConIdxSt []int32 `view:"-" desc:"starting index into Syns / SConIdx for each sending neuron"`
	SConIdx   []int32 `view:"-" desc:"index of the receiving neuron for each synapse, sender-ordered"`

	RConN     []int32 `view:"-" desc:"number of receiving connections for each neuron in the receiving population"`
	RConIdxSt []int32 `view:"-" desc:"starting index into RConIdx / RSynIdx for each receiving neuron"`
	RConIdx   []int32 `view:"-" desc:"index of the sending neuron for each recv-side connection"`
	RSynIdx   []int32 `view:"-" desc:"index into Syns for each recv-side connection"`
}

// params.Styler interface, for parameter style sheets.
func (pj *Prjn) Name() string {
	return pj.Send.Name() + "To" + pj.Recv.Name()
}
func (pj *Prjn) Class() string    { return pj.Cls }
func (pj *Prjn) TypeName() string { return "Prjn" }
func (pj *Prjn) Label() string    { return pj.Name() }

func (pj *Prjn) Defaults() {
	pj.Syn.Defaults()
}

// UpdateParams updates all params given any changes that might have been
// made to individual values
func (pj *Prjn) UpdateParams() {
	pj.Syn.Update()
}

// NSyns returns the number of synapses in this projection.
func (pj *Prjn) NSyns() int { return len(pj.Syns) }

// Build materializes the synapses per the pattern, drawing connectivity and
// initial weights from the engine stream.  Called exactly once, by Connect.
func (pj *Prjn) Build(rnd *Rand) error {
	ns := pj.Send.NNeurons
	nr := pj.Recv.NNeurons
	same := pj.Send == pj.Recv
	if err := pj.Pat.Validate(ns, nr, same); err != nil {
		return err
	}
	if pj.Syn.Delay <= 0 {
		return fmt.Errorf("%w: synapse delay must be > 0, got %v", ErrInvalidArg, pj.Syn.Delay)
	}
	if pj.Syn.WtRange.Min == 0 && pj.Syn.WtRange.Max == 0 {
		wmax := 4 * mat32.Abs(float32(pj.Syn.WtInit.Mean))
		pj.Syn.WtRange.Set(-wmax, wmax)
	}
	cons := pj.Pat.Cons(ns, nr, same, rnd)

	tot := 0
	pj.SConN = make([]int32, ns)
	pj.SConIdxSt = make([]int32, ns)
	for si, tl := range cons {
		pj.SConIdxSt[si] = int32(tot)
		pj.SConN[si] = int32(len(tl))
		tot += len(tl)
	}
	pj.Syns = make([]Synapse, tot)
	pj.SConIdx = make([]int32, tot)
	pj.RConN = make([]int32, nr)
	idx := 0
	for _, tl := range cons {
		for _, ri := range tl {
			wt := pj.Syn.WtInit.Sample(rnd)
			if pj.Syn.Plastic {
				wt = pj.Syn.WtRange.ClipVal(wt)
			}
			pj.Syns[idx].Init(wt, pj.Syn.Delay)
			pj.SConIdx[idx] = ri
			pj.RConN[ri]++
			idx++
		}
	}

	// recv-side arrays: second pass bins sender-ordered synapses by receiver
	pj.RConIdxSt = make([]int32, nr)
	rtot := 0
	for ri := 0; ri < nr; ri++ {
		pj.RConIdxSt[ri] = int32(rtot)
		rtot += int(pj.RConN[ri])
	}
	pj.RConIdx = make([]int32, rtot)
	pj.RSynIdx = make([]int32, rtot)
	rfill := make([]int32, nr)
	for si := 0; si < ns; si++ {
		st := pj.SConIdxSt[si]
		for ci := int32(0); ci < pj.SConN[si]; ci++ {
			syi := st + ci
			ri := pj.SConIdx[syi]
			rpos := pj.RConIdxSt[ri] + rfill[ri]
			pj.RConIdx[rpos] = int32(si)
			pj.RSynIdx[rpos] = syi
			rfill[ri]++
		}
	}
	return nil
}

// Syn returns the synapse between given send, recv neuron indexes (within
// their populations), or nil if not connected.
func (pj *Prjn) Syn(si, ri int) *Synapse {
	if si < 0 || si >= len(pj.SConN) {
		return nil
	}
	st := pj.SConIdxSt[si]
	for ci := int32(0); ci < pj.SConN[si]; ci++ {
		if pj.SConIdx[st+ci] == int32(ri) {
			return &pj.Syns[st+ci]
		}
	}
	return nil
}

// SynTry returns the synapse between given send, recv neuron indexes,
// with an error if not connected.
func (pj *Prjn) SynTry(si, ri int) (*Synapse, error) {
	if si < 0 || si >= pj.Send.NNeurons {
		return nil, fmt.Errorf("%w: send neuron index %d out of range [0,%d)", ErrNotFound, si, pj.Send.NNeurons)
	}
	if ri < 0 || ri >= pj.Recv.NNeurons {
		return nil, fmt.Errorf("%w: recv neuron index %d out of range [0,%d)", ErrNotFound, ri, pj.Recv.NNeurons)
	}
	sy := pj.Syn(si, ri)
	if sy == nil {
		return nil, fmt.Errorf("%w: no synapse from send %d to recv %d in %s", ErrNotFound, si, ri, pj.Name())
	}
	return sy, nil
}

// SynVals sets values of given variable name for each synapse, in the
// natural (sender-based) ordering, into given float32 slice (only resized
// if not big enough).  Returns error on invalid var name.
func (pj *Prjn) SynVals(vals *[]float32, varNm string) error {
	vidx, err := SynapseVarByName(varNm)
	if err != nil {
		return err
	}
	ns := len(pj.Syns)
	if *vals == nil || cap(*vals) < ns {
		*vals = make([]float32, ns)
	} else if len(*vals) < ns {
		*vals = (*vals)[0:ns]
	}
	for i := range pj.Syns {
		(*vals)[i] = pj.Syns[i].VarByIndex(vidx)
	}
	return nil
}

// AllParams returns a listing of all parameters in the projection
func (pj *Prjn) AllParams() string {
	str := "///////////////////////////////////////////////////\nPrjn: " + pj.Name() + "\n"
	b, _ := json.MarshalIndent(&pj.Syn, "", " ")
	str += "Syn: {\n " + strings.Replace(string(b), "\n", "\n ", -1) + "\n}\n"
	return str
}
