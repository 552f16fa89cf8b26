// Copyright (c) 2025, The SNN Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package snn

import (
	"fmt"
	"math"
	"reflect"

	"github.com/goki/ki/bitflag"
	"github.com/goki/ki/kit"
)

// NeuronVarStart is the field index in the Neuron struct where the float32
// named variables start.  All non-float32 infrastructure fields must come
// before it, in contiguous order.
const NeuronVarStart = 4

// snn.Neuron holds the mutable per-neuron state for the event-driven
// engine.  Immutable parameters live in the population's ActParams
// template; the engine stores neurons in one dense global array indexed by
// global neuron id.
type Neuron struct {
	// bit flags for binary state variables
	Flags NeurFlags

	// index of the population this neuron belongs to
	PopIdx int32

	// time of the most recent emitted spike (ms) -- -Inf if none yet
	TLastSpike float64

	// simulated time (ms) at which Vm was last advanced -- integration
	// between events is lazy, on demand
	TLastUpdate float64

	// membrane potential (mV)
	Vm float32

	// adaptation current for the AdEx model -- unused otherwise
	W float32

	// membrane recovery variable for the Izhikevich model -- unused otherwise
	U float32

	// current firing threshold (mV) -- tracks above VmThr when the
	// adaptive threshold is enabled, decaying back between spikes
	Thr float32

	// running count of spikes emitted by this neuron's own dynamics --
	// injected spikes are counted on the population stats instead
	Spikes float32
}

// NeuronVars are the named float32 state variables, accessible via VarByName
// for logging and testing.
var NeuronVars = []string{"Vm", "W", "U", "Thr", "Spikes"}

var NeuronVarsMap map[string]int

func init() {
	NeuronVarsMap = make(map[string]int, len(NeuronVars))
	for i, v := range NeuronVars {
		NeuronVarsMap[v] = i
	}
}

func (nrn *Neuron) VarNames() []string {
	return NeuronVars
}

// NeuronVarByName returns the index of the variable in the Neuron, or error
func NeuronVarByName(varNm string) (int, error) {
	i, ok := NeuronVarsMap[varNm]
	if !ok {
		return 0, fmt.Errorf("Neuron VarByName: variable name: %v not valid", varNm)
	}
	return i, nil
}

// VarByIndex returns variable using index (0 = first variable in NeuronVars list)
func (nrn *Neuron) VarByIndex(idx int) float32 {
	v := reflect.ValueOf(*nrn)
	return v.Field(NeuronVarStart + idx).Interface().(float32)
}

// VarByName returns variable by name, or error
func (nrn *Neuron) VarByName(varNm string) (float32, error) {
	i, err := NeuronVarByName(varNm)
	if err != nil {
		return 0, err
	}
	return nrn.VarByIndex(i), nil
}

// HasSpiked returns true if the neuron has emitted at least one spike.
func (nrn *Neuron) HasSpiked() bool {
	return !math.IsInf(nrn.TLastSpike, -1)
}

func (nrn *Neuron) HasFlag(flag NeurFlags) bool {
	return bitflag.Has32(int32(nrn.Flags), int(flag))
}

func (nrn *Neuron) SetFlag(flag NeurFlags) {
	bitflag.Set32((*int32)(&nrn.Flags), int(flag))
}

func (nrn *Neuron) ClearFlag(flag NeurFlags) {
	bitflag.Clear32((*int32)(&nrn.Flags), int(flag))
}

// NeurFlags are bit-flags encoding binary neuron state
type NeurFlags int32

//go:generate stringer -type=NeurFlags

var KiT_NeurFlags = kit.Enums.AddEnum(NeurFlagsN, kit.BitFlag, nil)

func (ev NeurFlags) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *NeurFlags) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// NeurOff flag indicates that this neuron has been turned off (lesioned):
	// deliveries to it are silently dropped and it never spikes
	NeurOff NeurFlags = iota

	// NeurInRefrac flag indicates that this neuron is within its absolute
	// refractory window -- cleared lazily on the first advance past it
	NeurInRefrac

	NeurFlagsN
)
