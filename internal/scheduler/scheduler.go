// Package scheduler runs background work, such as workspace scans, on a
// single worker so it never overlaps with itself.
package scheduler

import (
	"context"
	"log"
	"sync"
	"time"
)

type Task struct {
	Name    string
	Execute func(ctx context.Context) error
}

type Scheduler struct {
	tasks  chan Task
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

// New creates a scheduler whose queue holds up to queueSize pending tasks.
func New(queueSize int) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{tasks: make(chan Task, queueSize), ctx: ctx, cancel: cancel}
}

// Start runs the worker loop until Stop is called.
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			select {
			case task := <-s.tasks:
				s.run(task)
			case <-s.ctx.Done():
				return
			}
		}
	}()
}

func (s *Scheduler) run(task Task) {
	log.Printf("Executing %s task...", task.Name)
	if err := task.Execute(s.ctx); err != nil {
		log.Printf("Task %s failed: %v", task.Name, err)
	}
}

// Schedule queues task without blocking. It reports false when the queue is
// full or the scheduler is stopped.
func (s *Scheduler) Schedule(task Task) bool {
	if s.ctx.Err() != nil {
		return false
	}
	select {
	case s.tasks <- task:
		return true
	default:
		log.Printf("Skipped scheduling %s. Queue is full.", task.Name)
		return false
	}
}

// Every queues task now and then once per interval.
func (s *Scheduler) Every(interval time.Duration, task Task) {
	s.Schedule(task)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.Schedule(task)
			case <-s.ctx.Done():
				return
			}
		}
	}()
}

// Stop cancels the running task, drops pending ones and waits for the
// worker to exit.
func (s *Scheduler) Stop() {
	s.once.Do(func() {
		log.Println("Stopping scheduler.")
		s.cancel()
		s.wg.Wait()
	})
}
