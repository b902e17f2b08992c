package workqueue

import (
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
)

func TestRunsAllTasks(t *testing.T) {
	q := New("test", 4)

	var ran atomic.Int64
	for i := 0; i < 50; i++ {
		q.Enqueue(func() error {
			ran.Add(1)
			return nil
		})
	}
	q.Join()

	if ran.Load() != 50 {
		t.Errorf("ran %d tasks, want 50", ran.Load())
	}
	if q.HasExceptions() {
		t.Errorf("unexpected exceptions: %v", q.Exceptions())
	}
}

func TestCollectsFailures(t *testing.T) {
	q := New("test", 2)

	for i := 0; i < 5; i++ {
		i := i
		q.Enqueue(func() error {
			if i%2 == 0 {
				return fmt.Errorf("task %d failed", i)
			}
			return nil
		})
	}
	q.Join()

	excs := q.Exceptions()
	if len(excs) != 3 {
		t.Fatalf("collected %d exceptions, want 3", len(excs))
	}
}

func TestDrainExceptionsResets(t *testing.T) {
	q := New("test", 1)

	q.Enqueue(func() error { return errors.New("phase one") })
	q.Join()

	drained := q.DrainExceptions()
	if len(drained) != 1 {
		t.Fatalf("drained %d exceptions, want 1", len(drained))
	}
	if q.HasExceptions() {
		t.Errorf("exceptions survive drain")
	}

	// The queue is reusable for a second phase
	q.Enqueue(func() error { return errors.New("phase two") })
	q.Join()

	drained = q.DrainExceptions()
	if len(drained) != 1 || drained[0].Error() != "phase two" {
		t.Fatalf("second phase drained %v", drained)
	}
}

func TestParallelismBound(t *testing.T) {
	q := New("test", 2)

	var current, peak atomic.Int64
	for i := 0; i < 20; i++ {
		q.Enqueue(func() error {
			n := current.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			current.Add(-1)
			return nil
		})
	}
	q.Join()

	if peak.Load() > 2 {
		t.Errorf("observed %d concurrent tasks, bound is 2", peak.Load())
	}
}
