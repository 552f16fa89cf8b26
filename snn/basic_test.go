// Copyright (c) 2025, The SNN Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package snn

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/chewxy/math32"
	"github.com/emer/emergent/erand"
	"github.com/emer/emergent/params"
)

// tolerance for float comparisons against analytic values
const difTol = float32(1.0e-4)

func CmprFloats(got, trg []float32, msg string, t *testing.T) {
	t.Helper()
	for i := range got {
		dif := math32.Abs(got[i] - trg[i])
		if dif > difTol { // allow for small numerical diffs
			t.Errorf("%v err: got: %v, trg: %v, dif: %v\n", msg, got[i], trg[i], dif)
		}
	}
}

// twoPops builds a configured network with two one-neuron LIF populations
// and one A -> B projection with the given synapse template.
func twoPops(t *testing.T, syn *SynParams) (*Network, *Population, *Population, *Prjn) {
	t.Helper()
	nt := NewNetwork("TwoPops")
	if err := nt.Configure(42, 0.1, 1000); err != nil {
		t.Fatal(err)
	}
	a, err := nt.NewPopulation("A", 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := nt.NewPopulation("B", 1, nil)
	if err != nil {
		t.Fatal(err)
	}
	pj, err := nt.Connect(a, b, syn, FullPat())
	if err != nil {
		t.Fatal(err)
	}
	return nt, a, b, pj
}

func popSpikeTimes(t *testing.T, nt *Network, pp *Population, durMs float64) []float64 {
	t.Helper()
	std, err := nt.RecordActivity([]int{pp.Idx}, durMs)
	if err != nil {
		t.Fatal(err)
	}
	return std.SpikeTimes
}

func TestDelayedDelivery(t *testing.T) {
	syn := &SynParams{}
	syn.Defaults()
	syn.WtInit.Mean = 20
	syn.Delay = 1
	nt, a, b, _ := twoPops(t, syn)

	if err := nt.Inject(a.Idx, 0, 0); err != nil {
		t.Fatal(err)
	}
	if err := nt.RunUntil(10); err != nil {
		t.Fatal(err)
	}
	if nt.Now() != 10 {
		t.Errorf("clock = %g, want 10", nt.Now())
	}
	if b.Stats.Spikes != 1 {
		t.Errorf("B spikes = %d, want 1", b.Stats.Spikes)
	}
	bst := popSpikeTimes(t, nt, b, 10)
	if len(bst) != 1 || bst[0] != 1.0 {
		t.Errorf("B spike times = %v, want [1]", bst)
	}
	bn, _ := b.Neuron(0)
	if bn.TLastSpike != 1.0 {
		t.Errorf("B TLastSpike = %g, want 1", bn.TLastSpike)
	}
	if bn.Vm != b.Act.VmReset {
		t.Errorf("B Vm = %g, want reset %g", bn.Vm, b.Act.VmReset)
	}
}

func TestRefractoryDrops(t *testing.T) {
	syn := &SynParams{}
	syn.Defaults()
	syn.WtInit.Mean = 20
	syn.Delay = 1
	nt, a, b, _ := twoPops(t, syn)

	for _, tm := range []float64{0, 0.5, 1.0} {
		if err := nt.Inject(a.Idx, 0, tm); err != nil {
			t.Fatal(err)
		}
	}
	if err := nt.RunUntil(10); err != nil {
		t.Fatal(err)
	}
	if a.Stats.Spikes != 3 || a.Stats.Injected != 3 {
		t.Errorf("A spikes = %d injected = %d, want 3 / 3", a.Stats.Spikes, a.Stats.Injected)
	}
	if b.Stats.Spikes != 1 {
		t.Errorf("B spikes = %d, want 1", b.Stats.Spikes)
	}
	if b.Stats.RefDrops != 2 {
		t.Errorf("B refractory drops = %d, want 2", b.Stats.RefDrops)
	}
	bst := popSpikeTimes(t, nt, b, 10)
	if len(bst) != 1 || bst[0] != 1.0 {
		t.Errorf("B spike times = %v, want [1]", bst)
	}
	ast := popSpikeTimes(t, nt, a, 10)
	if len(ast) != 3 || ast[0] != 0 || ast[1] != 0.5 || ast[2] != 1.0 {
		t.Errorf("A spike times = %v, want [0 0.5 1]", ast)
	}
}

func stdpSyn() *SynParams {
	syn := &SynParams{}
	syn.Defaults()
	syn.WtInit.Mean = 5
	syn.Delay = 1
	syn.Plastic = true
	syn.Rule = PlastSTDP
	return syn
}

func TestSTDPPotentiation(t *testing.T) {
	nt, a, b, pj := twoPops(t, stdpSyn())

	// pre spike at 0 (delivered at 1), post spike at 5: dt = 5 inside the
	// LTP window
	if err := nt.Inject(a.Idx, 0, 0); err != nil {
		t.Fatal(err)
	}
	if err := nt.Inject(b.Idx, 0, 5); err != nil {
		t.Fatal(err)
	}
	if err := nt.RunUntil(10); err != nil {
		t.Fatal(err)
	}
	exp := float32(5 + 0.1*math.Exp(-5.0/20.0))
	CmprFloats([]float32{pj.Syns[0].Wt}, []float32{exp}, "potentiated weight", t)
	if b.Stats.Spikes != 1 {
		t.Errorf("B spikes = %d, want only the injected one", b.Stats.Spikes)
	}
}

func TestSTDPDepression(t *testing.T) {
	nt, a, b, pj := twoPops(t, stdpSyn())

	// post spike at 0, pre spike at 5 (delivered at 6): dt = -5, LTD window
	if err := nt.Inject(b.Idx, 0, 0); err != nil {
		t.Fatal(err)
	}
	if err := nt.Inject(a.Idx, 0, 5); err != nil {
		t.Fatal(err)
	}
	if err := nt.RunUntil(10); err != nil {
		t.Fatal(err)
	}
	exp := float32(5 - 0.12*math.Exp(-5.0/20.0))
	CmprFloats([]float32{pj.Syns[0].Wt}, []float32{exp}, "depressed weight", t)
	if b.Stats.Spikes != 1 {
		t.Errorf("B spikes = %d, want only the injected one", b.Stats.Spikes)
	}
}

// randNet builds a 20 -> 20 randomly connected network, injects three
// synchronized input waves, and runs it to 50 ms.
func randNet(t *testing.T, seed uint64) (*Network, *Population, *Population) {
	t.Helper()
	nt := NewNetwork("RandNet")
	if err := nt.Configure(seed, 0.1, 10000); err != nil {
		t.Fatal(err)
	}
	a, err := nt.NewPopulation("In", 20, nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := nt.NewPopulation("Out", 20, nil)
	if err != nil {
		t.Fatal(err)
	}
	syn := &SynParams{}
	syn.Defaults()
	syn.WtInit.Mean = 8
	syn.WtInit.Var = 2
	syn.WtInit.Dist = erand.Uniform
	syn.Delay = 1
	if _, err := nt.Connect(a, b, syn, RandomPat(0.4)); err != nil {
		t.Fatal(err)
	}
	for ni := 0; ni < a.NNeurons; ni++ {
		for _, tm := range []float64{1.0, 1.1, 1.2} {
			if err := nt.Inject(a.Idx, ni, tm); err != nil {
				t.Fatal(err)
			}
		}
	}
	if err := nt.RunUntil(50); err != nil {
		t.Fatal(err)
	}
	return nt, a, b
}

func TestRandomNetActivity(t *testing.T) {
	nt, _, b := randNet(t, 42)
	if b.Stats.Spikes < 1 {
		t.Errorf("no output spikes from synchronized input waves")
	}
	// refractory period caps each output neuron at one spike per wave
	if b.Stats.Spikes > 60 {
		t.Errorf("B spikes = %d, beyond the refractory-limited maximum", b.Stats.Spikes)
	}
	std, err := nt.RecordActivity(nil, 50)
	if err != nil {
		t.Fatal(err)
	}
	if int64(std.NSpikes()) != nt.Pops[0].Stats.Spikes+b.Stats.Spikes {
		t.Errorf("recorded %d spikes, stats say %d", std.NSpikes(), nt.Pops[0].Stats.Spikes+b.Stats.Spikes)
	}
}

func TestReproducibility(t *testing.T) {
	n1, a1, b1 := randNet(t, 42)
	n2, a2, b2 := randNet(t, 42)
	if b1.Stats.Spikes != b2.Stats.Spikes {
		t.Fatalf("same seed, different spike counts: %d vs %d", b1.Stats.Spikes, b2.Stats.Spikes)
	}
	s1, err := n1.RecordActivity(nil, 50)
	if err != nil {
		t.Fatal(err)
	}
	s2, err := n2.RecordActivity(nil, 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(s1.SpikeTimes) != len(s2.SpikeTimes) {
		t.Fatalf("same seed, different spike trains: %d vs %d spikes", len(s1.SpikeTimes), len(s2.SpikeTimes))
	}
	for i := range s1.SpikeTimes {
		if s1.SpikeTimes[i] != s2.SpikeTimes[i] || s1.NeuronIDs[i] != s2.NeuronIDs[i] {
			t.Fatalf("same seed, spike %d differs: (%d, %g) vs (%d, %g)", i, s1.NeuronIDs[i], s1.SpikeTimes[i], s2.NeuronIDs[i], s2.SpikeTimes[i])
		}
	}

	w1, err := n1.SnapshotWeights(a1, b1)
	if err != nil {
		t.Fatal(err)
	}
	w2, err := n2.SnapshotWeights(a2, b2)
	if err != nil {
		t.Fatal(err)
	}
	for i := range w1.Values {
		v1, v2 := w1.Values[i], w2.Values[i]
		if math.IsNaN(float64(v1)) != math.IsNaN(float64(v2)) {
			t.Fatalf("same seed, weight %d differs in connectivity: %g vs %g", i, v1, v2)
		}
		if !math.IsNaN(float64(v1)) && v1 != v2 {
			t.Fatalf("same seed, weight %d differs: %g vs %g", i, v1, v2)
		}
	}

	n3, _, _ := randNet(t, 43)
	w3, err := n3.SnapshotWeights(n3.Pops[0], n3.Pops[1])
	if err != nil {
		t.Fatal(err)
	}
	same := true
	for i := range w1.Values {
		v1, v3 := w1.Values[i], w3.Values[i]
		if math.IsNaN(float64(v1)) != math.IsNaN(float64(v3)) || (!math.IsNaN(float64(v1)) && v1 != v3) {
			same = false
			break
		}
	}
	if same {
		t.Errorf("different seeds produced identical weight matrices")
	}
}

func TestHomeostaticScaling(t *testing.T) {
	syn := &SynParams{}
	syn.Defaults()
	syn.WtInit.Mean = 5
	syn.Delay = 1
	syn.Plastic = true
	syn.Rule = PlastHomeo
	nt, _, _, pj := twoPops(t, syn)

	// silent receiver: rate 0 vs target 10 Hz scales weights up by
	// 1 + ScaleStep each interval
	if err := nt.RunUntil(1500); err != nil {
		t.Fatal(err)
	}
	exp := float32(5 * 1.01)
	if dif := pj.Syns[0].Wt - exp; dif > difTol || dif < -difTol {
		t.Errorf("weight after 1 scaling interval = %v, want %v", pj.Syns[0].Wt, exp)
	}
	if err := nt.RunUntil(2500); err != nil {
		t.Fatal(err)
	}
	exp *= 1.01
	if dif := pj.Syns[0].Wt - exp; dif > difTol || dif < -difTol {
		t.Errorf("weight after 2 scaling intervals = %v, want %v", pj.Syns[0].Wt, exp)
	}
}

func TestConfigureErrors(t *testing.T) {
	nt := NewNetwork("Errs")
	if err := nt.Configure(1, 0, 100); !errors.Is(err, ErrInvalidArg) {
		t.Errorf("dt = 0: err = %v, want ErrInvalidArg", err)
	}
	if err := nt.Configure(1, 0.1, 0); !errors.Is(err, ErrInvalidArg) {
		t.Errorf("ring cap = 0: err = %v, want ErrInvalidArg", err)
	}
	if err := nt.Configure(1, 0.1, 100); err != nil {
		t.Fatal(err)
	}
	if _, err := nt.NewPopulation("P", 0, nil); !errors.Is(err, ErrInvalidArg) {
		t.Errorf("size = 0: err = %v, want ErrInvalidArg", err)
	}
	if _, err := nt.NewPopulation("P", 3, nil); err != nil {
		t.Fatal(err)
	}
	if err := nt.Configure(1, 0.1, 100); !errors.Is(err, ErrInvalidArg) {
		t.Errorf("Configure after populations: err = %v, want ErrInvalidArg", err)
	}
}

func TestCapacityAndLookupErrors(t *testing.T) {
	nt := NewNetwork("Caps")
	if err := nt.Configure(1, 0.1, 100); err != nil {
		t.Fatal(err)
	}
	nt.Cfg.MaxNeurons = 5
	if _, err := nt.NewPopulation("A", 3, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := nt.NewPopulation("B", 3, nil); !errors.Is(err, ErrCapacity) {
		t.Errorf("over capacity: err = %v, want ErrCapacity", err)
	}
	if _, err := nt.Pop(7); !errors.Is(err, ErrNotFound) {
		t.Errorf("bad pop id: err = %v, want ErrNotFound", err)
	}
	if _, err := nt.PopByName("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("bad pop name: err = %v, want ErrNotFound", err)
	}
	if err := nt.Inject(0, 9, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("bad neuron: err = %v, want ErrNotFound", err)
	}
	if err := nt.RunUntil(5); err != nil {
		t.Fatal(err)
	}
	if err := nt.Inject(0, 0, 1); !errors.Is(err, ErrInvalidArg) {
		t.Errorf("inject in the past: err = %v, want ErrInvalidArg", err)
	}
}

func TestClearScheduled(t *testing.T) {
	syn := &SynParams{}
	syn.Defaults()
	syn.WtInit.Mean = 20
	syn.Delay = 1
	nt, a, b, _ := twoPops(t, syn)

	if err := nt.Inject(a.Idx, 0, 0); err != nil {
		t.Fatal(err)
	}
	if err := nt.RunUntil(0.5); err != nil {
		t.Fatal(err)
	}
	if n := nt.ClearScheduled(b.Idx); n != 1 {
		t.Errorf("cleared %d deliveries, want 1", n)
	}
	if err := nt.RunUntil(10); err != nil {
		t.Fatal(err)
	}
	if b.Stats.Spikes != 0 {
		t.Errorf("B spikes = %d after clearing its deliveries, want 0", b.Stats.Spikes)
	}
}

func TestInjectTrainReplacement(t *testing.T) {
	syn := &SynParams{}
	syn.Defaults()
	syn.WtInit.Mean = 20
	syn.Delay = 1
	nt, a, b, _ := twoPops(t, syn)

	if err := nt.Inject(a.Idx, 0, 0); err != nil {
		t.Fatal(err)
	}
	if err := nt.RunUntil(0.5); err != nil {
		t.Fatal(err)
	}
	// pending delivery at t=1 is replaced by the new train's schedule
	std := &SpikeTrainData{
		NeuronIDs:  []uint32{uint32(a.GlobalIdx(0))},
		SpikeTimes: []float64{5},
	}
	if err := nt.InjectTrain(std, Replacement); err != nil {
		t.Fatal(err)
	}
	if err := nt.RunUntil(20); err != nil {
		t.Fatal(err)
	}
	bst := popSpikeTimes(t, nt, b, 20)
	if len(bst) != 1 || bst[0] != 6.0 {
		t.Errorf("B spike times = %v, want [6]", bst)
	}
}

func TestInjectTrainAdditive(t *testing.T) {
	syn := &SynParams{}
	syn.Defaults()
	// second delivery lands on a membrane still recovering from reset, so
	// the weight must cover the gap from below rest
	syn.WtInit.Mean = 25
	syn.Delay = 1
	nt, a, b, _ := twoPops(t, syn)

	std := &SpikeTrainData{
		NeuronIDs:  []uint32{uint32(a.GlobalIdx(0)), uint32(a.GlobalIdx(0))},
		SpikeTimes: []float64{0, 5},
	}
	if err := nt.InjectTrain(std, Additive); err != nil {
		t.Fatal(err)
	}
	if err := nt.RunUntil(20); err != nil {
		t.Fatal(err)
	}
	bst := popSpikeTimes(t, nt, b, 20)
	if len(bst) != 2 || bst[0] != 1.0 || bst[1] != 6.0 {
		t.Errorf("B spike times = %v, want [1 6]", bst)
	}
	if err := nt.InjectTrain(&SpikeTrainData{NeuronIDs: []uint32{0}}, Additive); !errors.Is(err, ErrInvalidArg) {
		t.Errorf("misaligned train: err = %v, want ErrInvalidArg", err)
	}
	// a train with any past spike time rejects whole, scheduling nothing
	bad := &SpikeTrainData{
		NeuronIDs:  []uint32{uint32(a.GlobalIdx(0)), uint32(a.GlobalIdx(0))},
		SpikeTimes: []float64{25, 2},
	}
	injected := a.Stats.Injected
	if err := nt.InjectTrain(bad, Additive); !errors.Is(err, ErrInvalidArg) {
		t.Errorf("past spike time in train: err = %v, want ErrInvalidArg", err)
	}
	if a.Stats.Injected != injected {
		t.Errorf("rejected train still injected spikes: %d -> %d", injected, a.Stats.Injected)
	}
	if err := nt.RunUntil(40); err != nil {
		t.Fatal(err)
	}
	if bst = popSpikeTimes(t, nt, b, 40); len(bst) != 2 {
		t.Errorf("rejected train still scheduled deliveries: B spikes = %v", bst)
	}
}

func TestBuildAndApplyParams(t *testing.T) {
	syn := &SynParams{}
	syn.Defaults()
	syn.Plastic = true
	syn.Rule = PlastSTDP
	nt, a, b, pj := twoPops(t, syn)
	if err := nt.Build(); err != nil {
		t.Fatal(err)
	}
	sheet := &params.Sheet{
		{Sel: "Pop", Desc: "slower membranes",
			Params: params.Params{
				"Pop.Act.TauM": "15",
			}},
		{Sel: "#B", Desc: "longer refractory on the output",
			Params: params.Params{
				"Pop.Act.TRef": "3",
			}},
		{Sel: "Prjn", Desc: "half learning rate",
			Params: params.Params{
				"Prjn.Syn.LRate": "0.5",
			}},
	}
	applied, err := nt.ApplyParams(sheet, false)
	if err != nil {
		t.Fatal(err)
	}
	if !applied {
		t.Fatalf("no params applied")
	}
	if a.Act.TauM != 15 || b.Act.TauM != 15 {
		t.Errorf("TauM = %v / %v, want 15 on both", a.Act.TauM, b.Act.TauM)
	}
	if a.Act.TRef != 2 || b.Act.TRef != 3 {
		t.Errorf("TRef = %v / %v, want 2 / 3", a.Act.TRef, b.Act.TRef)
	}
	if pj.Syn.LRate != 0.5 {
		t.Errorf("LRate = %v, want 0.5", pj.Syn.LRate)
	}
	ap := nt.AllParams()
	if ap == "" {
		t.Errorf("AllParams returned nothing")
	}
	if !strings.Contains(ap, "Pop: A") || !strings.Contains(ap, "Pop: B") {
		t.Errorf("AllParams missing population blocks:\n%s", ap)
	}
	if !strings.Contains(ap, "Prjn: ") {
		t.Errorf("AllParams missing projection block:\n%s", ap)
	}
	if sr := nt.SizeReport(); sr == "" {
		t.Errorf("SizeReport returned nothing")
	}
}

func TestInitStateReplay(t *testing.T) {
	syn := &SynParams{}
	syn.Defaults()
	syn.WtInit.Mean = 20
	syn.Delay = 1
	nt, a, b, _ := twoPops(t, syn)

	run := func() []float64 {
		for _, tm := range []float64{0, 4, 8} {
			if err := nt.Inject(a.Idx, 0, tm); err != nil {
				t.Fatal(err)
			}
		}
		if err := nt.RunUntil(20); err != nil {
			t.Fatal(err)
		}
		return popSpikeTimes(t, nt, b, 20)
	}
	first := run()
	nt.InitState()
	if nt.Now() != 0 || b.Stats.Spikes != 0 {
		t.Fatalf("InitState left clock = %v, B spikes = %d", nt.Now(), b.Stats.Spikes)
	}
	second := run()
	if len(first) != len(second) {
		t.Fatalf("replay spike counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("replay spike %d at %v vs %v", i, first[i], second[i])
		}
	}
}

func TestSnapshotWeights(t *testing.T) {
	nt := NewNetwork("Snap")
	if err := nt.Configure(7, 0.1, 100); err != nil {
		t.Fatal(err)
	}
	a, _ := nt.NewPopulation("A", 3, nil)
	b, _ := nt.NewPopulation("B", 3, nil)
	syn := &SynParams{}
	syn.Defaults()
	syn.WtInit.Mean = 2.5
	if _, err := nt.Connect(a, b, syn, OneToOnePat()); err != nil {
		t.Fatal(err)
	}
	w, err := nt.SnapshotWeights(a, b)
	if err != nil {
		t.Fatal(err)
	}
	for si := 0; si < 3; si++ {
		for ri := 0; ri < 3; ri++ {
			v := w.Value([]int{si, ri})
			if si == ri {
				if v != 2.5 {
					t.Errorf("w[%d,%d] = %v, want 2.5", si, ri, v)
				}
			} else if !math.IsNaN(float64(v)) {
				t.Errorf("w[%d,%d] = %v, want NaN", si, ri, v)
			}
		}
	}
}
