// Package shutdownqueue provides a LIFO queue of named cleanup tasks.
//
// Register tasks as resources are opened and drain the queue once at the
// end of main:
//
//	q := shutdownqueue.New(logger)
//	q.Add("postgres", func(context.Context) error { return db.Close() })
//	...
//	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
//	defer cancel()
//	err := q.Shutdown(ctx)
//
// Tasks run once, in reverse order of registration. Panics are recovered.
// Shutdown is idempotent and returns an aggregated error via errors.Join;
// every task error is prefixed with the task name.
package shutdownqueue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Task is a shutdown function. It should honor ctx and return an error
// if it can't finish (or ctx is canceled).
type Task func(ctx context.Context) error

type namedTask struct {
	name string
	run  Task
}

type Queue struct {
	mu     sync.Mutex
	tasks  []namedTask
	closed bool
	log    *slog.Logger
}

// New returns an empty queue. A nil logger falls back to slog.Default at
// shutdown time.
func New(log *slog.Logger) *Queue {
	return &Queue{tasks: make([]namedTask, 0, 8), log: log}
}

// Add registers a task to be run on Shutdown, in LIFO order.
// Safe to call from any goroutine.
// If t is nil or shutdown has already started, Add does nothing.
func (q *Queue) Add(name string, t Task) {
	if t == nil {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}

	q.tasks = append(q.tasks, namedTask{name: name, run: t})
}

// Len reports the number of tasks still waiting to run.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.tasks)
}

// Shutdown drains all registered tasks in LIFO order.
// It is safe to call multiple times; after the first complete (or partial) run,
// subsequent calls are no-ops.
//
// If ctx is canceled or times out mid-drain, Shutdown stops early and returns
// an error that includes both the context error and any task errors so far.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()

	if q.closed && len(q.tasks) == 0 {
		q.mu.Unlock()

		return nil
	}

	q.closed = true

	tasks := q.tasks

	q.tasks = nil

	q.mu.Unlock()

	log := q.log
	if log == nil {
		log = slog.Default()
	}

	var errs []error

	for i := len(tasks) - 1; i >= 0; i-- {
		select {
		case <-ctx.Done():
			errs = append(errs, fmt.Errorf("shutdown canceled before %q: %w", tasks[i].name, ctx.Err()))

			return errors.Join(errs...)
		default:
		}

		start := time.Now()

		err := runTask(ctx, tasks[i])
		if err != nil {
			log.ErrorContext(ctx, "shutdown task failed", "task", tasks[i].name, "error", err)
			errs = append(errs, err)

			continue
		}

		log.InfoContext(ctx, "shutdown task done", "task", tasks[i].name, "duration", time.Since(start))
	}

	return errors.Join(errs...)
}

func runTask(ctx context.Context, t namedTask) (err error) {
	defer func() {
		r := recover()
		if r != nil {
			err = fmt.Errorf("panic in shutdown task %q: %v", t.name, r)
		}
	}()

	err = t.run(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", t.name, err)
	}

	return nil
}
