// Copyright (c) 2025, The SNN Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package snn

import "errors"

// Error kinds surfaced at the engine API boundary.  All engine errors wrap
// exactly one of these sentinels, so callers can classify with errors.Is.
var (
	// ErrInvalidArg: negative delay, zero population size, probability
	// outside [0,1], dt <= 0, or scheduling into the past.
	ErrInvalidArg = errors.New("snn: invalid argument")

	// ErrInvalidConnectivity: pattern preconditions do not hold, e.g.,
	// one-to-one with unequal populations or sparse fan-out exceeding the
	// target population size.
	ErrInvalidConnectivity = errors.New("snn: invalid connectivity")

	// ErrNotFound: unknown population, neuron, or projection.
	ErrNotFound = errors.New("snn: not found")

	// ErrNumeric: non-finite neuron state after integration, indicating
	// unstable parameters.  Fatal: the run aborts.
	ErrNumeric = errors.New("snn: non-finite state after integration")

	// ErrCapacity: creating more neurons than the configured maximum.
	ErrCapacity = errors.New("snn: capacity exceeded")
)
