// Copyright (c) 2025, The SNN Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package esched provides the discrete-event scheduler that drives the SNN
engine: a monotonic simulated clock in milliseconds and a priority queue of
timestamped callbacks.  Events fire in non-decreasing time order, and events
scheduled with equal times fire in scheduling (FIFO) order, enforced by a
strictly increasing insertion sequence number used as the heap tie-break.

The scheduler is single-threaded: RunUntil pops and fires one callback at a
time, and Now() reflects the time of the currently firing callback during
its execution.  Callbacks return an error; the first non-nil error aborts
the run and propagates to the caller unchanged.
*/
package esched

import (
	"container/heap"
	"errors"
	"fmt"
)

// ErrPast is returned when attempting to schedule an event before Now().
var ErrPast = errors.New("esched: cannot schedule an event in the past")

// NoTag is the Tag value for events not associated with any population.
const NoTag = int32(-1)

// Event is a single scheduled callback.
type Event struct {
	Time float64      `desc:"simulated time (ms) at which the callback fires"`
	Seq  int64        `desc:"insertion sequence number -- FIFO tie-break among equal times"`
	Tag  int32        `desc:"target population id for spike deliveries, NoTag otherwise -- allows ClearTag to purge pending deliveries"`
	Fun  func() error `desc:"the callback"`
}

// eventHeap is a min-heap of events ordered by (Time, Seq).
type eventHeap []*Event

func (eh eventHeap) Len() int { return len(eh) }

func (eh eventHeap) Less(i, j int) bool {
	if eh[i].Time != eh[j].Time {
		return eh[i].Time < eh[j].Time
	}
	return eh[i].Seq < eh[j].Seq
}

func (eh eventHeap) Swap(i, j int) { eh[i], eh[j] = eh[j], eh[i] }

func (eh *eventHeap) Push(x any) { *eh = append(*eh, x.(*Event)) }

func (eh *eventHeap) Pop() any {
	old := *eh
	n := len(old)
	ev := old[n-1]
	old[n-1] = nil
	*eh = old[:n-1]
	return ev
}

// Scheduler owns the simulated clock and the pending event queue.
// The zero value is ready to use.
type Scheduler struct {
	Clock  float64 `inactive:"+" desc:"current simulated time (ms) -- monotonically non-decreasing"`
	NSched int64   `inactive:"+" desc:"total events scheduled -- also the next sequence number"`
	NRun   int64   `inactive:"+" desc:"total events fired"`
	queue  eventHeap
}

// Init resets the scheduler to time zero with an empty queue.
func (sc *Scheduler) Init() {
	sc.Clock = 0
	sc.NSched = 0
	sc.NRun = 0
	sc.queue = sc.queue[:0]
}

// Now returns the current simulated time in ms.
func (sc *Scheduler) Now() float64 { return sc.Clock }

// Len returns the number of pending events.
func (sc *Scheduler) Len() int { return len(sc.queue) }

// Empty returns true if no events are pending.
func (sc *Scheduler) Empty() bool { return len(sc.queue) == 0 }

// ScheduleAt enqueues fun to fire at absolute simulated time t (ms),
// with given population tag (NoTag if none).
// Scheduling before Now() fails with ErrPast.
func (sc *Scheduler) ScheduleAt(t float64, tag int32, fun func() error) error {
	if t < sc.Clock {
		return fmt.Errorf("%w: t = %g ms, now = %g ms", ErrPast, t, sc.Clock)
	}
	ev := &Event{Time: t, Seq: sc.NSched, Tag: tag, Fun: fun}
	sc.NSched++
	heap.Push(&sc.queue, ev)
	return nil
}

// ScheduleDelta enqueues fun to fire delta ms after Now().
// A negative delta fails with ErrPast.
func (sc *Scheduler) ScheduleDelta(delta float64, tag int32, fun func() error) error {
	if delta < 0 {
		return fmt.Errorf("%w: delta = %g ms", ErrPast, delta)
	}
	return sc.ScheduleAt(sc.Clock+delta, tag, fun)
}

// RunUntil fires all pending events with Time <= tStop in (Time, Seq) order,
// advancing the clock to each event's time as it fires.  On return the clock
// is tStop (even if the queue emptied earlier) unless a callback failed, in
// which case the clock is the failing event's time and its error is returned.
func (sc *Scheduler) RunUntil(tStop float64) error {
	for len(sc.queue) > 0 && sc.queue[0].Time <= tStop {
		ev := heap.Pop(&sc.queue).(*Event)
		if ev.Time > sc.Clock {
			sc.Clock = ev.Time
		}
		sc.NRun++
		if err := ev.Fun(); err != nil {
			return err
		}
	}
	if tStop > sc.Clock {
		sc.Clock = tStop
	}
	return nil
}

// ClearTag removes all pending events with the given tag, returning the
// number removed.  Must only be called between callbacks.
func (sc *Scheduler) ClearTag(tag int32) int {
	kept := sc.queue[:0]
	nrem := 0
	for _, ev := range sc.queue {
		if ev.Tag == tag {
			nrem++
		} else {
			kept = append(kept, ev)
		}
	}
	if nrem == 0 {
		return 0
	}
	sc.queue = kept
	heap.Init(&sc.queue)
	return nrem
}
