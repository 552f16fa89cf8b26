// Copyright (c) 2025, The SNN Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package snn

import (
	"fmt"
	"math"
	"reflect"
)

// snn.Synapse holds state for one directed, delayed connection between two
// neurons.  Weights are the only synapse state mutated during a run (by the
// plasticity rules); everything else is fixed at connection time.
type Synapse struct {
	Wt    float32 `desc:"synaptic efficacy: mV added to the target membrane potential per delivered spike -- negative for inhibitory"`
	DWt   float32 `desc:"most recent plasticity-driven weight change"`
	Delay float32 `desc:"axonal conduction delay (ms) -- strictly > 0, so same-instant loops are impossible"`

	// nearest-neighbor STDP pairing state (ms, -Inf if none):
	LastPre  float64 `desc:"time of the most recent pre-synaptic spike paired on this synapse"`
	LastPost float64 `desc:"time of the most recent post-synaptic spike paired on this synapse"`
}

// Init sets initial weight and delay and clears all pairing state.
func (sy *Synapse) Init(wt, delay float32) {
	sy.Wt = wt
	sy.DWt = 0
	sy.Delay = delay
	sy.LastPre = math.Inf(-1)
	sy.LastPost = math.Inf(-1)
}

// SynapseVars are the named float32 synapse variables, accessible via
// VarByName for logging and testing.
var SynapseVars = []string{"Wt", "DWt", "Delay"}

var SynapseVarsMap map[string]int

func init() {
	SynapseVarsMap = make(map[string]int, len(SynapseVars))
	for i, v := range SynapseVars {
		SynapseVarsMap[v] = i
	}
}

func (sy *Synapse) VarNames() []string {
	return SynapseVars
}

// SynapseVarByName returns the index of the variable in the Synapse, or error
func SynapseVarByName(varNm string) (int, error) {
	i, ok := SynapseVarsMap[varNm]
	if !ok {
		return 0, fmt.Errorf("Synapse VarByName: variable name: %v not valid", varNm)
	}
	return i, nil
}

// VarByIndex returns variable using index (0 = first variable in SynapseVars list)
func (sy *Synapse) VarByIndex(idx int) float32 {
	v := reflect.ValueOf(*sy)
	return v.Field(idx).Interface().(float32)
}

// VarByName returns variable by name, or error
func (sy *Synapse) VarByName(varNm string) (float32, error) {
	i, err := SynapseVarByName(varNm)
	if err != nil {
		return 0, err
	}
	return sy.VarByIndex(i), nil
}
