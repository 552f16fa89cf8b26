// Copyright (c) 2025, The SNN Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package izhi

import "testing"

func TestRegularSpiking(t *testing.T) {
	var ip Params
	ip.Defaults()
	v := float32(-70)
	u := ip.InitU(v)
	dt := float32(0.1)
	// constant suprathreshold current must produce repeated spikes
	nspk := 0
	for i := 0; i < 10000; i++ { // 1000 ms
		if ip.Step(&v, &u, 10, dt) {
			ip.Reset(&v, &u)
			nspk++
		}
	}
	if nspk < 2 {
		t.Errorf("regular spiking with I=10 over 1s: got %d spikes, want >= 2", nspk)
	}
	if v >= ip.VPeak {
		t.Errorf("v not reset after spike: %g", v)
	}
}

func TestRestingStable(t *testing.T) {
	var ip Params
	ip.Defaults()
	v := float32(-65) // fixed point of v' = 0 at rest with u = b*v
	u := ip.InitU(v)
	dt := float32(0.1)
	for i := 0; i < 10000; i++ {
		if ip.Step(&v, &u, 0, dt) {
			t.Fatalf("spike with zero input from rest at step %d, v = %g", i, v)
		}
	}
	if v < -80 || v > -50 {
		t.Errorf("resting v drifted out of range: %g", v)
	}
}

func TestReset(t *testing.T) {
	var ip Params
	ip.Defaults()
	v := ip.VPeak
	u := float32(-10)
	ip.Reset(&v, &u)
	if v != ip.C {
		t.Errorf("reset v: got %g, want %g", v, ip.C)
	}
	if u != -10+ip.D {
		t.Errorf("reset u: got %g, want %g", u, -10+ip.D)
	}
}
