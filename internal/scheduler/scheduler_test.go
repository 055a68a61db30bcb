package scheduler_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sandersn/vetur/internal/scheduler"
)

func TestScheduleRunsInOrder(t *testing.T) {
	s := scheduler.New(4)
	s.Start()
	defer s.Stop()

	done := make(chan string, 2)
	for _, name := range []string{"first", "second"} {
		name := name
		if !s.Schedule(scheduler.Task{Name: name, Execute: func(context.Context) error {
			done <- name
			return nil
		}}) {
			t.Fatalf("failed to schedule %s", name)
		}
	}
	for _, want := range []string{"first", "second"} {
		select {
		case got := <-done:
			if got != want {
				t.Errorf("got %s, want %s", got, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("timed out waiting for %s", want)
		}
	}
}

func TestScheduleFullQueue(t *testing.T) {
	s := scheduler.New(1)
	noop := scheduler.Task{Name: "noop", Execute: func(context.Context) error { return nil }}
	if !s.Schedule(noop) {
		t.Fatalf("expected the first task to fit")
	}
	if s.Schedule(noop) {
		t.Errorf("expected a full queue to reject the task")
	}
	s.Stop()
	if s.Schedule(noop) {
		t.Errorf("expected a stopped scheduler to reject the task")
	}
}

func TestEvery(t *testing.T) {
	s := scheduler.New(4)
	s.Start()

	var runs atomic.Int32
	s.Every(5*time.Millisecond, scheduler.Task{Name: "tick", Execute: func(context.Context) error {
		runs.Add(1)
		return nil
	}})
	deadline := time.Now().Add(time.Second)
	for runs.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	s.Stop()
	if runs.Load() < 3 {
		t.Errorf("expected at least 3 runs, got %d", runs.Load())
	}
}
