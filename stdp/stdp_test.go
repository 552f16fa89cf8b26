// Copyright (c) 2025, The SNN Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package stdp

import (
	"testing"

	"github.com/chewxy/math32"
)

const difTol = float32(1.0e-5)

func TestAntisymmetry(t *testing.T) {
	var sp Params
	sp.Defaults()
	deltas := []float64{0.5, 1, 2, 5, 10, 20, 50}
	for _, del := range deltas {
		ltp := sp.DWt(0, del)
		want := sp.APlus * math32.Exp(-float32(del)/sp.TauPlus)
		if dif := math32.Abs(ltp - want); dif > difTol {
			t.Errorf("LTP at delta %g: got %v, want %v", del, ltp, want)
		}
		ltd := sp.DWt(del, 0)
		want = -sp.AMinus * math32.Exp(-float32(del)/sp.TauMinus)
		if dif := math32.Abs(ltd - want); dif > difTol {
			t.Errorf("LTD at delta %g: got %v, want %v", del, ltd, want)
		}
	}
}

func TestCoincidentNoChange(t *testing.T) {
	var sp Params
	sp.Defaults()
	if dw := sp.DWt(5, 5); dw != 0 {
		t.Errorf("coincident spikes: got %v, want 0", dw)
	}
}

func TestWindowDecay(t *testing.T) {
	var sp Params
	sp.Defaults()
	// magnitude must be monotonically decreasing with separation
	prev := sp.DWt(0, 0.1)
	for del := 1.0; del <= 100; del += 1 {
		cur := sp.DWt(0, del)
		if cur > prev {
			t.Errorf("LTP not decaying at delta %g: %v > %v", del, cur, prev)
		}
		prev = cur
	}
}
