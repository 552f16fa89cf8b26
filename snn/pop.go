// Copyright (c) 2025, The SNN Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package snn

import (
	"encoding/json"
	"fmt"
	"strings"
)

// snn.Population is a contiguous set of neurons sharing one parameter
// template: an id, a display name, and a range [StIdx, StIdx+NNeurons) of
// indexes into the network's global neuron array.  Population ranges are
// disjoint and ids are never reused.
type Population struct {
	Net      *Network  `copy:"-" json:"-" xml:"-" view:"-" desc:"our parent network -- set when added by the network"`
	Nm       string    `desc:"name of the population -- unique within the network"`
	Cls      string    `desc:"class tag for applying parameter styles, space separated if multiple"`
	Off      bool      `desc:"inactivate this population -- its neurons neither receive nor emit"`
	Idx      int       `desc:"population id: position within the network's population list"`
	StIdx    int       `desc:"starting index of this population's neurons in the global neuron array"`
	NNeurons int       `desc:"number of neurons"`
	Act      ActParams `view:"add-fields" desc:"membrane dynamics parameter template for all neurons"`
	RcvPrjns []*Prjn   `desc:"projections into this population"`
	SndPrjns []*Prjn   `desc:"projections out of this population"`
	Stats    PopStats  `view:"inline" desc:"running counters"`
}

// PopStats are cheap running counters derivable from the event flow.
type PopStats struct {
	Spikes   int64 `inactive:"+" desc:"total spikes emitted by this population, injections included"`
	Injected int64 `inactive:"+" desc:"externally injected spikes"`
	RefDrops int64 `inactive:"+" desc:"deliveries discarded inside a refractory window"`
}

// params.Styler interface, for parameter style sheets.
func (pp *Population) Name() string     { return pp.Nm }
func (pp *Population) Class() string    { return pp.Cls }
func (pp *Population) TypeName() string { return "Pop" }
func (pp *Population) Label() string    { return pp.Nm }

func (pp *Population) Defaults() {
	pp.Act.Defaults()
}

// UpdateParams updates all params given any changes that might have been
// made to individual values
func (pp *Population) UpdateParams() {
	pp.Act.Update()
}

// AllParams returns a listing of all parameters in the population
func (pp *Population) AllParams() string {
	str := "///////////////////////////////////////////////////\nPop: " + pp.Name() + "\n"
	b, _ := json.MarshalIndent(&pp.Act, "", " ")
	str += "Act: {\n " + strings.Replace(string(b), "\n", "\n ", -1) + "\n}\n"
	return str
}

// Neurons returns the population's slice of the global neuron array.
func (pp *Population) Neurons() []Neuron {
	return pp.Net.Neurons[pp.StIdx : pp.StIdx+pp.NNeurons]
}

// Neuron returns neuron ni (population-relative index), with range check.
func (pp *Population) Neuron(ni int) (*Neuron, error) {
	if ni < 0 || ni >= pp.NNeurons {
		return nil, fmt.Errorf("%w: neuron %d out of range [0,%d) in population %s", ErrNotFound, ni, pp.NNeurons, pp.Nm)
	}
	return &pp.Net.Neurons[pp.StIdx+ni], nil
}

// GlobalIdx returns the global neuron id of population-relative index ni.
func (pp *Population) GlobalIdx(ni int) int { return pp.StIdx + ni }

// InitActs re-initializes all neuron state from the parameter template.
func (pp *Population) InitActs() {
	nrns := pp.Neurons()
	for i := range nrns {
		pp.Act.InitActs(&nrns[i])
		nrns[i].PopIdx = int32(pp.Idx)
	}
	pp.Stats = PopStats{}
}

// UnitVals fills vals with the named neuron variable for each neuron in
// the population (resized as needed).  Returns error on invalid var name.
func (pp *Population) UnitVals(vals *[]float32, varNm string) error {
	vidx, err := NeuronVarByName(varNm)
	if err != nil {
		return err
	}
	nn := pp.NNeurons
	if *vals == nil || cap(*vals) < nn {
		*vals = make([]float32, nn)
	} else if len(*vals) < nn {
		*vals = (*vals)[0:nn]
	}
	nrns := pp.Neurons()
	for i := range nrns {
		(*vals)[i] = nrns[i].VarByIndex(vidx)
	}
	return nil
}
