// Copyright (c) 2025, The SNN Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package snn implements an event-driven spiking neural network engine:
populations of point neurons (LIF, Izhikevich, AdEx) connected by
projections of individually delayed synapses, simulated by a discrete
event scheduler instead of a global timestep.

Nothing happens between events.  A spike schedules one delivery per
outgoing synapse at spike time + delay; a delivery lazily advances the
receiving neuron's membrane state from its last update to the delivery
time (closed form for LIF, fixed-step Euler for the ODE models), adds the
synaptic weight, and tests the threshold.  Neuron state is stored in one
dense array on the network, with populations holding index views, and
synapses are sender-ordered flat arrays with receiver-side index arrays
for the plasticity traversals.

All randomness (weight init, membrane noise) comes from a single
counter-based Philox stream seeded by Configure, so identical
construction and identical inputs replay identical spike trains.

Plasticity is per-projection: nearest-neighbor pair-based STDP applied
at delivery and spike times, or periodic homeostatic synaptic scaling
driven by trailing firing rates measured from the spike record ring.
*/
package snn
