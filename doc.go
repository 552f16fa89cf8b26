// Copyright (c) 2025, The SNN Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package snn is the overall repository for the event-driven spiking neural
network engine implemented in the Go language (golang).

This top-level of the repository has no functional code -- everything is
organized into the following sub-packages:

* snn: the core engine: populations, projections, delayed spike delivery,
plasticity, and spike recording, driven by the event scheduler.

* esched: the discrete event scheduler: a priority queue over simulated
time with FIFO ordering among simultaneous events.

* izhi, adex: the Izhikevich and adaptive exponential integrate-and-fire
membrane models, as standalone parameter + dynamics packages.

* stdp, homeo: the spike-timing-dependent and homeostatic plasticity
rules, likewise standalone.

* examples: these compile into runnable programs.  examples/bench runs a
benchmark network and reports spike counts, memory, and timing.
*/
package snn
