// Copyright (c) 2025, The SNN Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package snn

import (
	"fmt"
	"log"
	"strings"
	"time"
	"unsafe"

	"github.com/c2h5oh/datasize"
	"github.com/emer/emergent/params"
	"github.com/emer/etable/etensor"
	"github.com/goki/ki/kit"
	"github.com/goki/mat32"

	"github.com/nsim/snn/esched"
)

// NetConfig is the engine-level configuration, set once by Configure before
// any population is created.
type NetConfig struct {
	Seed       uint64  `desc:"master seed for the Philox stream -- all randomness in the engine derives from it"`
	DtMs       float32 `def:"0.1" desc:"fixed Euler integration step (ms) for the ODE neuron models"`
	RingCap    int     `def:"100000" desc:"capacity of the spike record ring buffer"`
	MaxNeurons int     `desc:"optional cap on total neurons across all populations -- 0 means unlimited"`
}

// snn.Network is the complete event-driven spiking network engine: the
// static model (populations, projections), the dense global neuron state
// array, the event scheduler, the random stream, and the spike record ring.
// All operations are single-threaded; external actors may only inject
// spikes or add connections between scheduler turns.
type Network struct {
	Nm      string                 `desc:"name of the network"`
	Cfg     NetConfig              `view:"inline" desc:"engine configuration -- fixed after Configure"`
	Pops    []*Population          `desc:"populations in creation order -- position is the population id"`
	PopMap  map[string]*Population `view:"-" desc:"population name lookup"`
	Neurons []Neuron               `desc:"global dense neuron state array, indexed by global neuron id"`
	Prjns   []*Prjn                `desc:"projections in creation order"`
	Sched   esched.Scheduler       `view:"-" desc:"event scheduler: simulated clock and pending deliveries"`
	Rnd     Rand                   `view:"-" desc:"engine random stream"`
	Ring    SpikeRing              `view:"-" desc:"spike record ring buffer"`

	// OnPlastic, if set, observes every plasticity weight update.  It is
	// a passive tap for analysis tools: nothing in the engine depends on it.
	OnPlastic func(pe PlasticEvent) `view:"-" json:"-" xml:"-"`

	LastWallSecs float64 `inactive:"+" desc:"wall-clock seconds consumed by the most recent RunUntil"`
}

// PlasticEvent describes one plasticity weight update, for observers.
type PlasticEvent struct {
	Prjn   *Prjn   `desc:"projection containing the synapse"`
	SynIdx int     `desc:"index of the synapse within the projection"`
	TPre   float64 `desc:"pre-synaptic spike time of the pairing (ms)"`
	TPost  float64 `desc:"post-synaptic spike time of the pairing (ms)"`
	DWt    float32 `desc:"applied weight change, after learning rate, before clipping"`
}

// NewNetwork returns a new network with the given name, ready for Configure.
func NewNetwork(name string) *Network {
	nt := &Network{Nm: name}
	nt.PopMap = make(map[string]*Population)
	return nt
}

func (nt *Network) Name() string  { return nt.Nm }
func (nt *Network) Label() string { return nt.Nm }

// Now returns the current simulated time in ms.
func (nt *Network) Now() float64 { return nt.Sched.Now() }

// NNeurons returns the total neuron count across all populations.
func (nt *Network) NNeurons() int { return len(nt.Neurons) }

// Configure sets the master seed, integration step, and spike ring capacity.
// Must be called before any population is created.
func (nt *Network) Configure(seed uint64, dtMs float32, ringCap int) error {
	if len(nt.Pops) > 0 {
		return fmt.Errorf("%w: Configure must be called before any population is created", ErrInvalidArg)
	}
	if dtMs <= 0 {
		return fmt.Errorf("%w: dt = %v ms, must be > 0", ErrInvalidArg, dtMs)
	}
	if ringCap <= 0 {
		return fmt.Errorf("%w: ring capacity = %d, must be > 0", ErrInvalidArg, ringCap)
	}
	nt.Cfg.Seed = seed
	nt.Cfg.DtMs = dtMs
	nt.Cfg.RingCap = ringCap
	nt.Rnd.Seed(seed)
	nt.Ring.Init(ringCap)
	nt.Sched.Init()
	return nil
}

// Defaults sets default parameters on all populations and projections.
func (nt *Network) Defaults() {
	for _, pp := range nt.Pops {
		pp.Defaults()
	}
	for _, pj := range nt.Prjns {
		pj.Defaults()
	}
}

// UpdateParams updates all the derived parameters if any have changed,
// for all populations and projections
func (nt *Network) UpdateParams() {
	for _, pp := range nt.Pops {
		pp.UpdateParams()
	}
	for _, pj := range nt.Prjns {
		pj.UpdateParams()
	}
}

// Build validates the assembled structure: the configuration is set,
// population names are unique, and the dense neuron array is consistent
// with the population ranges.  Populations and projections are usable as
// soon as they are created; Build is a final structural check before a run.
func (nt *Network) Build() error {
	if !nt.configuredOK() {
		return fmt.Errorf("%w: network %s is not configured", ErrInvalidArg, nt.Nm)
	}
	names := make(map[string]bool, len(nt.Pops))
	tot := 0
	for _, pp := range nt.Pops {
		if names[pp.Nm] {
			return fmt.Errorf("%w: duplicate population name %q", ErrInvalidArg, pp.Nm)
		}
		names[pp.Nm] = true
		if pp.StIdx != tot {
			return fmt.Errorf("%w: population %s start index %d, expected %d", ErrInvalidArg, pp.Nm, pp.StIdx, tot)
		}
		tot += pp.NNeurons
	}
	if tot != len(nt.Neurons) {
		return fmt.Errorf("%w: %d neurons allocated, populations cover %d", ErrInvalidArg, len(nt.Neurons), tot)
	}
	return nil
}

// NewPopulation allocates size neurons initialized from the given template
// (engine defaults if nil) and returns the new population.  The returned
// population's Idx is its id.  Fails with ErrInvalidArg for size = 0 and
// ErrCapacity when a configured MaxNeurons would be exceeded.
func (nt *Network) NewPopulation(name string, size int, tmpl *ActParams) (*Population, error) {
	if !nt.configuredOK() {
		return nil, fmt.Errorf("%w: Configure must be called before NewPopulation", ErrInvalidArg)
	}
	if size <= 0 {
		return nil, fmt.Errorf("%w: population size must be > 0, got %d", ErrInvalidArg, size)
	}
	if nt.Cfg.MaxNeurons > 0 && len(nt.Neurons)+size > nt.Cfg.MaxNeurons {
		return nil, fmt.Errorf("%w: %d + %d neurons exceeds configured maximum %d", ErrCapacity, len(nt.Neurons), size, nt.Cfg.MaxNeurons)
	}
	pp := &Population{Net: nt, Nm: name, Idx: len(nt.Pops), StIdx: len(nt.Neurons), NNeurons: size}
	if tmpl != nil {
		pp.Act = *tmpl
	} else {
		pp.Act.Defaults()
	}
	pp.Act.Update()
	nt.Neurons = append(nt.Neurons, make([]Neuron, size)...)
	nt.Pops = append(nt.Pops, pp)
	if nt.PopMap == nil {
		nt.PopMap = make(map[string]*Population)
	}
	nt.PopMap[name] = pp
	pp.InitActs()
	return pp, nil
}

// Pop returns the population with the given id.
func (nt *Network) Pop(id int) (*Population, error) {
	if id < 0 || id >= len(nt.Pops) {
		return nil, fmt.Errorf("%w: population id %d out of range [0,%d)", ErrNotFound, id, len(nt.Pops))
	}
	return nt.Pops[id], nil
}

// PopByName returns the population with the given name.
func (nt *Network) PopByName(name string) (*Population, error) {
	pp, ok := nt.PopMap[name]
	if !ok {
		return nil, fmt.Errorf("%w: population named %q", ErrNotFound, name)
	}
	return pp, nil
}

// Connect materializes synapses from src to dst per the template and
// pattern, returning the new projection.  The synapse count is NSyns()
// on the returned projection.  Fails with ErrInvalidArg / ErrInvalidConnectivity
// per the pattern preconditions.
func (nt *Network) Connect(src, dst *Population, syn *SynParams, pat ConnPattern) (*Prjn, error) {
	if src == nil || dst == nil || src.Net != nt || dst.Net != nt {
		return nil, fmt.Errorf("%w: source or target population not in this network", ErrNotFound)
	}
	pj := &Prjn{Send: src, Recv: dst, Pat: pat, Idx: len(nt.Prjns)}
	if syn != nil {
		pj.Syn = *syn
	} else {
		pj.Syn.Defaults()
	}
	pj.Syn.Update()
	if err := pj.Build(&nt.Rnd); err != nil {
		return nil, err
	}
	nt.Prjns = append(nt.Prjns, pj)
	src.SndPrjns = append(src.SndPrjns, pj)
	dst.RcvPrjns = append(dst.RcvPrjns, pj)
	if pj.Syn.Plastic && pj.Syn.Rule == PlastHomeo {
		nt.scheduleHomeo(pj)
	}
	return pj, nil
}

// ConnectNames is Connect with name lookup for both populations.
func (nt *Network) ConnectNames(src, dst string, syn *SynParams, pat ConnPattern) (*Prjn, error) {
	spp, err := nt.PopByName(src)
	if err != nil {
		return nil, err
	}
	dpp, err := nt.PopByName(dst)
	if err != nil {
		return nil, err
	}
	return nt.Connect(spp, dpp, syn, pat)
}

// Inject schedules an external spike for neuron ni of the given population
// at absolute simulated time t (ms).  The spike propagates along every
// outgoing synapse of that neuron exactly as an emitted spike would, but
// does not update the neuron's own membrane state or refractory window.
// Scheduling before Now() fails with ErrInvalidArg.
func (nt *Network) Inject(popID, ni int, t float64) error {
	pp, err := nt.Pop(popID)
	if err != nil {
		return err
	}
	if _, err := pp.Neuron(ni); err != nil {
		return err
	}
	if err := nt.Sched.ScheduleAt(t, esched.NoTag, func() error {
		return nt.injectSpike(pp, ni, t)
	}); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArg, err)
	}
	return nil
}

// InjectModes control how InjectTrain composes with pending deliveries.
type InjectModes int32

//go:generate stringer -type=InjectModes

var KiT_InjectModes = kit.Enums.AddEnum(InjectModesN, kit.NotBitFlag, nil)

func (ev InjectModes) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *InjectModes) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

const (
	// Additive schedules the injected spikes on top of whatever is pending.
	Additive InjectModes = iota

	// Replacement first clears pending deliveries for every population
	// downstream of an injected neuron, then schedules the injected spikes.
	Replacement

	InjectModesN
)

// InjectTrain schedules every spike in the train: NeuronIDs are global
// neuron ids, aligned with SpikeTimes (absolute ms, >= Now()).
func (nt *Network) InjectTrain(std *SpikeTrainData, mode InjectModes) error {
	if std == nil || len(std.NeuronIDs) != len(std.SpikeTimes) {
		return fmt.Errorf("%w: spike train neuron ids and times must align", ErrInvalidArg)
	}
	// validate the whole train before touching any state, so a bad entry
	// cannot leave a prefix of the train scheduled
	for _, gid := range std.NeuronIDs {
		if int(gid) >= len(nt.Neurons) {
			return fmt.Errorf("%w: global neuron id %d out of range [0,%d)", ErrNotFound, gid, len(nt.Neurons))
		}
	}
	now := nt.Sched.Now()
	for _, tm := range std.SpikeTimes {
		if tm < now {
			return fmt.Errorf("%w: spike time %g ms is in the past (now = %g ms)", ErrInvalidArg, tm, now)
		}
	}
	if mode == Replacement {
		cleared := make(map[int]bool)
		for _, gid := range std.NeuronIDs {
			pp := nt.Pops[nt.Neurons[gid].PopIdx]
			for _, pj := range pp.SndPrjns {
				if !cleared[pj.Recv.Idx] {
					cleared[pj.Recv.Idx] = true
					nt.ClearScheduled(pj.Recv.Idx)
				}
			}
		}
	}
	for i, gid := range std.NeuronIDs {
		pp := nt.Pops[nt.Neurons[gid].PopIdx]
		ni := int(gid) - pp.StIdx
		if err := nt.Inject(pp.Idx, ni, std.SpikeTimes[i]); err != nil {
			return err
		}
	}
	return nil
}

// ClearScheduled atomically removes all pending delivery events targeting
// the given population, returning the number removed.  Must only be called
// between scheduler turns.
func (nt *Network) ClearScheduled(popID int) int {
	return nt.Sched.ClearTag(int32(popID))
}

// RunUntil advances the simulation until the event queue is empty or the
// clock reaches tStop ms.  Callback errors (ErrNumeric, ErrNotFound) abort
// the run and propagate.
func (nt *Network) RunUntil(tStop float64) error {
	st := time.Now()
	err := nt.Sched.RunUntil(tStop)
	nt.LastWallSecs = time.Since(st).Seconds()
	return err
}

// InitState re-initializes all mutable state for a fresh run: neuron state
// from templates, the scheduler clock and queue, the spike ring, and the
// random stream (from the configured master seed).  Synapse weights are
// NOT reset: rebuild the network to restore initial weights.
func (nt *Network) InitState() {
	nt.Sched.Init()
	nt.Ring.Reset()
	nt.Rnd.Seed(nt.Cfg.Seed)
	for _, pp := range nt.Pops {
		pp.InitActs()
	}
	for _, pj := range nt.Prjns {
		if pj.Syn.Plastic && pj.Syn.Rule == PlastHomeo {
			nt.scheduleHomeo(pj)
		}
	}
}

// SnapshotWeights returns the weight matrix from src to dst as a
// [srcSize, dstSize] tensor with NaN entries where no synapse exists,
// merging across all projections between the two populations.
func (nt *Network) SnapshotWeights(src, dst *Population) (*etensor.Float32, error) {
	if src == nil || dst == nil || src.Net != nt || dst.Net != nt {
		return nil, fmt.Errorf("%w: source or target population not in this network", ErrNotFound)
	}
	tsr := etensor.NewFloat32([]int{src.NNeurons, dst.NNeurons}, nil, []string{"Send", "Recv"})
	nan := mat32.NaN()
	for i := range tsr.Values {
		tsr.Values[i] = nan
	}
	for _, pj := range src.SndPrjns {
		if pj.Recv != dst {
			continue
		}
		for si := 0; si < src.NNeurons; si++ {
			st := pj.SConIdxSt[si]
			for ci := int32(0); ci < pj.SConN[si]; ci++ {
				ri := pj.SConIdx[st+ci]
				tsr.Values[si*dst.NNeurons+int(ri)] = pj.Syns[st+ci].Wt
			}
		}
	}
	return tsr, nil
}

// ApplyParams applies the given parameter style sheet to all populations
// and projections.  If setMsg is true, a message is printed to confirm each
// parameter that is set; a message is always printed when a parameter fails
// to be set.  Returns true if any params were set, and error for any failures.
func (nt *Network) ApplyParams(pars *params.Sheet, setMsg bool) (bool, error) {
	applied := false
	var rerr error
	for _, pp := range nt.Pops {
		app, err := pars.Apply(pp, setMsg)
		if app {
			applied = true
		}
		if err != nil {
			rerr = err
		}
	}
	for _, pj := range nt.Prjns {
		app, err := pars.Apply(pj, setMsg)
		if app {
			applied = true
		}
		if err != nil {
			rerr = err
		}
	}
	if rerr != nil {
		log.Println(rerr)
	}
	nt.UpdateParams()
	return applied, rerr
}

// AllParams returns a listing of all parameters in the network.
func (nt *Network) AllParams() string {
	str := ""
	for _, pp := range nt.Pops {
		str += pp.AllParams()
	}
	for _, pj := range nt.Prjns {
		str += pj.AllParams()
	}
	return str
}

// SizeReport returns a string reporting the size of each population and
// projection in the network, and total memory footprint.
func (nt *Network) SizeReport() string {
	var b strings.Builder
	syn := 0
	synMem := 0
	neurMem := len(nt.Neurons) * int(unsafe.Sizeof(Neuron{}))
	for _, pp := range nt.Pops {
		fmt.Fprintf(&b, "%14s:\t Neurons: %d\t Sends To:\n", pp.Nm, pp.NNeurons)
		for _, pj := range pp.SndPrjns {
			ns := len(pj.Syns)
			syn += ns
			pmem := ns*int(unsafe.Sizeof(Synapse{})) + (len(pj.SConIdx)+len(pj.RConIdx)+len(pj.RSynIdx))*4
			synMem += pmem
			fmt.Fprintf(&b, "\t%14s:\t Syns: %d\t SynMem: %v\n", pj.Recv.Nm, ns, (datasize.ByteSize)(pmem).HumanReadable())
		}
	}
	fmt.Fprintf(&b, "\n\n%14s:\t Neurons: %d\t NeurMem: %v \t Syns: %d \t SynMem: %v\n", nt.Nm, len(nt.Neurons), (datasize.ByteSize)(neurMem).HumanReadable(), syn, (datasize.ByteSize)(synMem).HumanReadable())
	return b.String()
}

func (nt *Network) configuredOK() bool {
	return nt.Cfg.DtMs > 0 && nt.Cfg.RingCap > 0
}
