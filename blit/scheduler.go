package blit

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"deedles.dev/fbspan/internal/workq"
)

// ErrStopped is returned by Submit after the scheduler has been
// stopped.
var ErrStopped = errors.New("scheduler stopped")

// A Scheduler runs copy jobs on a single worker goroutine. Each job is
// associated with a slot, and a slot holds at most one in-flight job
// at a time: submitting to a busy slot fails rather than queueing or
// dropping.
//
// Because there is only one worker, jobs run in submission order and a
// descriptor's Notify always fires after every previously submitted
// copy has been performed.
type Scheduler struct {
	done  chan struct{}
	close sync.Once
	queue *workq.Queue
	slots []slot
}

type slot struct {
	busy atomic.Bool
}

// NewScheduler returns a running scheduler with the given number of
// slots, one per copy destination.
func NewScheduler(slots int) *Scheduler {
	s := Scheduler{
		done:  make(chan struct{}),
		queue: workq.New(),
		slots: make([]slot, slots),
	}
	go s.run()

	return &s
}

func (s *Scheduler) run() {
	for {
		select {
		case <-s.done:
			return
		case batch := <-s.queue.Get():
			batch.Run()
		}
	}
}

// Stop stops the worker. Jobs already picked up by the worker run to
// completion; there is no way to cancel an in-flight copy. Stop is
// idempotent.
func (s *Scheduler) Stop() {
	s.close.Do(func() {
		close(s.done)
		s.queue.Stop()
	})
}

// Busy reports whether the slot currently holds an in-flight job.
func (s *Scheduler) Busy(slot int) bool {
	return s.slots[slot].busy.Load()
}

// Submit hands d to the worker. The slot is marked busy until the copy
// has been performed, and is released before d.Notify is called so
// that a completion handler may immediately submit again.
func (s *Scheduler) Submit(slotID int, d *Descriptor) error {
	if (slotID < 0) || (slotID >= len(s.slots)) {
		return SlotRangeError{Slot: slotID, Slots: len(s.slots)}
	}

	sl := &s.slots[slotID]
	if !sl.busy.CompareAndSwap(false, true) {
		return SlotBusyError{Slot: slotID}
	}

	job := func() {
		d.Run()
		sl.busy.Store(false)
		if d.Notify != nil {
			d.Notify()
		}
	}

	select {
	case <-s.done:
		sl.busy.Store(false)
		return ErrStopped
	case s.queue.Add() <- job:
		return nil
	}
}

// SlotBusyError is returned by Submit if the slot's previous job has
// not completed yet.
type SlotBusyError struct {
	Slot int
}

func (err SlotBusyError) Error() string {
	return fmt.Sprintf("slot %v has an in-flight job", err.Slot)
}

// SlotRangeError is returned by Submit if the slot does not exist.
type SlotRangeError struct {
	Slot, Slots int
}

func (err SlotRangeError) Error() string {
	return fmt.Sprintf("slot %v out of range: scheduler has %v slots", err.Slot, err.Slots)
}
