// Copyright (c) 2025, The SNN Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package snn

import (
	"errors"
	"testing"
)

func connNet(t *testing.T, na, nb int) (*Network, *Population, *Population) {
	t.Helper()
	nt := NewNetwork("ConnTest")
	if err := nt.Configure(42, 0.1, 100); err != nil {
		t.Fatal(err)
	}
	a, err := nt.NewPopulation("A", na, nil)
	if err != nil {
		t.Fatal(err)
	}
	b, err := nt.NewPopulation("B", nb, nil)
	if err != nil {
		t.Fatal(err)
	}
	return nt, a, b
}

func TestAllToAll(t *testing.T) {
	nt, a, b := connNet(t, 4, 6)
	pj, err := nt.Connect(a, b, nil, FullPat())
	if err != nil {
		t.Fatal(err)
	}
	if pj.NSyns() != 24 {
		t.Errorf("NSyns = %d, want 24", pj.NSyns())
	}
	// recurrent without self connections drops the diagonal
	rj, err := nt.Connect(a, a, nil, FullPat())
	if err != nil {
		t.Fatal(err)
	}
	if rj.NSyns() != 12 {
		t.Errorf("recurrent NSyns = %d, want 12", rj.NSyns())
	}
	if sy := rj.Syn(1, 1); sy != nil {
		t.Errorf("self synapse exists without SelfCons")
	}
	pat := FullPat()
	pat.SelfCons = true
	sj, err := nt.Connect(a, a, nil, pat)
	if err != nil {
		t.Fatal(err)
	}
	if sj.NSyns() != 16 {
		t.Errorf("recurrent SelfCons NSyns = %d, want 16", sj.NSyns())
	}
}

func TestOneToOne(t *testing.T) {
	nt, a, b := connNet(t, 5, 5)
	pj, err := nt.Connect(a, b, nil, OneToOnePat())
	if err != nil {
		t.Fatal(err)
	}
	if pj.NSyns() != 5 {
		t.Errorf("NSyns = %d, want 5", pj.NSyns())
	}
	for si := 0; si < 5; si++ {
		if sy := pj.Syn(si, si); sy == nil {
			t.Errorf("missing diagonal synapse %d", si)
		}
	}
	c, err := nt.NewPopulation("C", 3, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := nt.Connect(a, c, nil, OneToOnePat()); !errors.Is(err, ErrInvalidConnectivity) {
		t.Errorf("size mismatch: err = %v, want ErrInvalidConnectivity", err)
	}
}

func TestSparse(t *testing.T) {
	nt, a, b := connNet(t, 10, 10)
	pj, err := nt.Connect(a, b, nil, SparsePat(3))
	if err != nil {
		t.Fatal(err)
	}
	if pj.NSyns() != 30 {
		t.Errorf("NSyns = %d, want 30", pj.NSyns())
	}
	for si := 0; si < 10; si++ {
		if pj.SConN[si] != 3 {
			t.Errorf("sender %d has %d targets, want 3", si, pj.SConN[si])
		}
		st := pj.SConIdxSt[si]
		for ci := int32(1); ci < 3; ci++ {
			if pj.SConIdx[st+ci] <= pj.SConIdx[st+ci-1] {
				t.Errorf("sender %d targets not strictly increasing: %v", si, pj.SConIdx[st:st+3])
			}
		}
	}
	if _, err := nt.Connect(a, b, nil, SparsePat(11)); !errors.Is(err, ErrInvalidConnectivity) {
		t.Errorf("k > targets: err = %v, want ErrInvalidConnectivity", err)
	}
	// recurrent without self connections has one fewer candidate
	if _, err := nt.Connect(a, a, nil, SparsePat(10)); !errors.Is(err, ErrInvalidConnectivity) {
		t.Errorf("recurrent k = n: err = %v, want ErrInvalidConnectivity", err)
	}
}

func TestRandomPattern(t *testing.T) {
	nt, a, b := connNet(t, 30, 30)
	pj, err := nt.Connect(a, b, nil, RandomPat(0.25))
	if err != nil {
		t.Fatal(err)
	}
	n := pj.NSyns()
	// 900 Bernoulli(0.25) trials: mean 225, sd 13
	if n < 140 || n > 310 {
		t.Errorf("NSyns = %d, far from expected 225", n)
	}
	// same seed must reproduce the exact same draw: identical count and adjacency
	nt2, a2, b2 := connNet(t, 30, 30)
	pj2, err := nt2.Connect(a2, b2, nil, RandomPat(0.25))
	if err != nil {
		t.Fatal(err)
	}
	if pj2.NSyns() != n {
		t.Errorf("same seed, NSyns = %d vs %d", pj2.NSyns(), n)
	}
	for i := range pj.SConIdx {
		if pj2.SConIdx[i] != pj.SConIdx[i] {
			t.Fatalf("same seed, target %d differs: %d vs %d", i, pj2.SConIdx[i], pj.SConIdx[i])
		}
	}
	if _, err := nt.Connect(a, b, nil, RandomPat(1.5)); !errors.Is(err, ErrInvalidArg) {
		t.Errorf("p > 1: err = %v, want ErrInvalidArg", err)
	}
	if _, err := nt.Connect(a, b, nil, RandomPat(-0.1)); !errors.Is(err, ErrInvalidArg) {
		t.Errorf("p < 0: err = %v, want ErrInvalidArg", err)
	}
}

func TestClustered(t *testing.T) {
	nt, a, b := connNet(t, 12, 12)
	pj, err := nt.Connect(a, b, nil, ClusteredPat(3, 1, 0))
	if err != nil {
		t.Fatal(err)
	}
	// pin = 1, pout = 0: every within-cluster pair, nothing across
	if pj.NSyns() != 3*4*4 {
		t.Errorf("NSyns = %d, want 48", pj.NSyns())
	}
	for si := 0; si < 12; si++ {
		st := pj.SConIdxSt[si]
		for ci := int32(0); ci < pj.SConN[si]; ci++ {
			ri := int(pj.SConIdx[st+ci])
			if si/4 != ri/4 {
				t.Errorf("cross-cluster synapse %d -> %d with pout = 0", si, ri)
			}
		}
	}
	if _, err := nt.Connect(a, b, nil, ClusteredPat(5, 0.5, 0.1)); !errors.Is(err, ErrInvalidConnectivity) {
		t.Errorf("uneven clusters: err = %v, want ErrInvalidConnectivity", err)
	}
}

func TestDelayValidation(t *testing.T) {
	nt, a, b := connNet(t, 2, 2)
	syn := &SynParams{}
	syn.Defaults()
	syn.Delay = 0
	if _, err := nt.Connect(a, b, syn, FullPat()); !errors.Is(err, ErrInvalidArg) {
		t.Errorf("zero delay: err = %v, want ErrInvalidArg", err)
	}
	syn.Delay = -1
	if _, err := nt.Connect(a, b, syn, FullPat()); !errors.Is(err, ErrInvalidArg) {
		t.Errorf("negative delay: err = %v, want ErrInvalidArg", err)
	}
}

func TestRecvIndexes(t *testing.T) {
	nt, a, b := connNet(t, 4, 3)
	pj, err := nt.Connect(a, b, nil, FullPat())
	if err != nil {
		t.Fatal(err)
	}
	for ri := 0; ri < 3; ri++ {
		if pj.RConN[ri] != 4 {
			t.Errorf("receiver %d has %d senders, want 4", ri, pj.RConN[ri])
		}
		st := pj.RConIdxSt[ri]
		for ci := int32(0); ci < pj.RConN[ri]; ci++ {
			si := pj.RConIdx[st+ci]
			syi := pj.RSynIdx[st+ci]
			if pj.SConIdx[syi] != int32(ri) {
				t.Errorf("recv index %d/%d points at synapse for receiver %d", ri, ci, pj.SConIdx[syi])
			}
			if sy := pj.Syn(int(si), ri); sy != &pj.Syns[syi] {
				t.Errorf("Syn(%d,%d) does not match recv-side synapse index", si, ri)
			}
		}
	}
	if _, err := pj.SynTry(0, 9); !errors.Is(err, ErrNotFound) {
		t.Errorf("SynTry out of range: err = %v, want ErrNotFound", err)
	}
}
