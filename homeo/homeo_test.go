// Copyright (c) 2025, The SNN Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package homeo

import (
	"testing"

	"github.com/chewxy/math32"
)

const difTol = float32(1.0e-6)

func TestFactor(t *testing.T) {
	var hp Params
	hp.Defaults()
	if f := hp.Factor(hp.TargetRate); math32.Abs(f-1) > difTol {
		t.Errorf("at-target factor: got %v, want 1", f)
	}
	if f := hp.Factor(0); math32.Abs(f-(1+hp.ScaleStep)) > difTol {
		t.Errorf("silent-neuron factor: got %v, want %v", f, 1+hp.ScaleStep)
	}
	if f := hp.Factor(2 * hp.TargetRate); f >= 1 {
		t.Errorf("overshooting rate must scale down: got %v", f)
	}
}

func TestFactorFloor(t *testing.T) {
	hp := Params{TargetRate: 1, Tau: 100, ScaleStep: 10}
	if f := hp.Factor(100); f != 0 {
		t.Errorf("factor must floor at 0, got %v", f)
	}
}
