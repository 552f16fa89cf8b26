// Copyright (c) 2025, The SNN Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package snn

import (
	"fmt"
	"math"
	"sort"

	"github.com/emer/etable/etable"
	"github.com/emer/etable/etensor"
)

// SpikeRecord is one recorded spike: the population, the global neuron id,
// and the simulated emission time.
type SpikeRecord struct {
	Pop  int32   `desc:"population id"`
	Neur int32   `desc:"global neuron id"`
	Time float64 `desc:"emission time (ms)"`
}

// SpikeRing is a fixed-capacity circular buffer of spike records.  Once
// full, each new spike evicts the oldest: recording never fails and never
// grows, at the cost of a finite retention horizon.
type SpikeRing struct {
	Recs []SpikeRecord `desc:"backing array, capacity fixed at Init"`
	St   int           `desc:"index of the oldest retained record"`
	N    int           `desc:"number of retained records"`
	Tot  int64         `inactive:"+" desc:"total records ever added, evicted included"`
}

// Init allocates the ring at the given capacity and empties it.
func (sr *SpikeRing) Init(cap int) {
	sr.Recs = make([]SpikeRecord, cap)
	sr.Reset()
}

// Reset empties the ring without reallocating.
func (sr *SpikeRing) Reset() {
	sr.St = 0
	sr.N = 0
	sr.Tot = 0
}

// Len returns the number of retained records.
func (sr *SpikeRing) Len() int { return sr.N }

// Add appends one spike record, evicting the oldest when full.
func (sr *SpikeRing) Add(pop, neur int32, t float64) {
	cp := len(sr.Recs)
	if sr.N < cp {
		sr.Recs[(sr.St+sr.N)%cp] = SpikeRecord{Pop: pop, Neur: neur, Time: t}
		sr.N++
	} else {
		sr.Recs[sr.St] = SpikeRecord{Pop: pop, Neur: neur, Time: t}
		sr.St = (sr.St + 1) % cp
	}
	sr.Tot++
}

// Do calls fun for every retained record, oldest first.
func (sr *SpikeRing) Do(fun func(rec *SpikeRecord)) {
	cp := len(sr.Recs)
	for i := 0; i < sr.N; i++ {
		fun(&sr.Recs[(sr.St+i)%cp])
	}
}

// RetentionHorizon returns the earliest time for which the record is
// complete: -Inf when nothing has ever been evicted, otherwise the time of
// the oldest retained record.  Queries reaching back before the horizon
// silently miss evicted spikes.
func (sr *SpikeRing) RetentionHorizon() float64 {
	if sr.Tot <= int64(len(sr.Recs)) {
		return math.Inf(-1)
	}
	return sr.Recs[sr.St].Time
}

// SpikeTrainData is the result of a recording query: the flat aligned
// (neuron id, spike time) pairs ordered by non-decreasing spike time, plus
// the same spikes grouped per neuron.  Neuron ids are global.  The same type carries
// externally supplied trains into InjectTrain, where only the flat aligned
// pair arrays are consulted.
type SpikeTrainData struct {
	NeuronIDs           []uint32             `desc:"global neuron id per spike, aligned with SpikeTimes"`
	SpikeTimes          []float64            `desc:"emission time (ms) per spike, non-decreasing"`
	NeuronSpikeTrains   map[uint32][]float64 `desc:"spike times grouped per neuron"`
	RecordingDurationMs float64              `desc:"length of the query window (ms)"`
	TimestampMs         float64              `desc:"simulated time at which the query was made (end of the window)"`
}

// NSpikes returns the number of recorded spikes.
func (std *SpikeTrainData) NSpikes() int { return len(std.SpikeTimes) }

// Table exports the flat spike list as an etable for logging and analysis,
// with Neuron and Time columns, one row per spike.
func (std *SpikeTrainData) Table() *etable.Table {
	sch := etable.Schema{
		{"Neuron", etensor.INT64, nil, nil},
		{"Time", etensor.FLOAT64, nil, nil},
	}
	dt := &etable.Table{}
	dt.SetFromSchema(sch, len(std.SpikeTimes))
	for i, tm := range std.SpikeTimes {
		dt.SetCellFloat("Neuron", i, float64(std.NeuronIDs[i]))
		dt.SetCellFloat("Time", i, tm)
	}
	return dt
}

// RecordActivity returns the spikes emitted by the given populations over
// the trailing durMs window ending at the current clock.  An empty popIDs
// list selects all populations.  Spikes older than the ring's retention
// horizon are not recoverable and are silently absent.
func (nt *Network) RecordActivity(popIDs []int, durMs float64) (*SpikeTrainData, error) {
	if durMs <= 0 {
		return nil, fmt.Errorf("%w: recording duration = %v ms, must be > 0", ErrInvalidArg, durMs)
	}
	sel := make(map[int32]bool, len(popIDs))
	if len(popIDs) == 0 {
		for _, pp := range nt.Pops {
			sel[int32(pp.Idx)] = true
		}
	} else {
		for _, id := range popIDs {
			if _, err := nt.Pop(id); err != nil {
				return nil, err
			}
			sel[int32(id)] = true
		}
	}
	now := nt.Now()
	t0 := now - durMs
	std := &SpikeTrainData{
		NeuronSpikeTrains:   make(map[uint32][]float64),
		RecordingDurationMs: durMs,
		TimestampMs:         now,
	}
	var recs []SpikeRecord
	nt.Ring.Do(func(rec *SpikeRecord) {
		if !sel[rec.Pop] || rec.Time < t0 || rec.Time > now {
			return
		}
		recs = append(recs, *rec)
	})
	// intrinsic crossings discovered late (at the next delivery rather than
	// by a probe) are added to the ring behind later spikes, so insertion
	// order alone does not guarantee non-decreasing times
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Time < recs[j].Time })
	for i := range recs {
		gid := uint32(recs[i].Neur)
		std.NeuronIDs = append(std.NeuronIDs, gid)
		std.SpikeTimes = append(std.SpikeTimes, recs[i].Time)
		std.NeuronSpikeTrains[gid] = append(std.NeuronSpikeTrains[gid], recs[i].Time)
	}
	return std, nil
}
