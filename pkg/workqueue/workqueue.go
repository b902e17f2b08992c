package workqueue

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/vigilmon/vigil/pkg/log"
	"github.com/vigilmon/vigil/pkg/metrics"
)

// Queue runs units of work asynchronously with bounded parallelism and
// collects their failures. A queue can be reused for sequential phases:
// Join waits for the in-flight tasks, DrainExceptions hands the failures of
// the finished phase to the caller and resets the list.
type Queue struct {
	name   string
	sem    chan struct{}
	wg     sync.WaitGroup
	logger zerolog.Logger

	mu   sync.Mutex
	errs []error
}

// New creates a named work queue running at most parallelism tasks at once
func New(name string, parallelism int) *Queue {
	if parallelism <= 0 {
		parallelism = 1
	}

	return &Queue{
		name:   name,
		sem:    make(chan struct{}, parallelism),
		logger: log.WithComponent("workqueue").With().Str("queue", name).Logger(),
	}
}

// Name returns the queue name
func (q *Queue) Name() string {
	return q.name
}

// Enqueue submits a unit of work
func (q *Queue) Enqueue(fn func() error) {
	metrics.WorkQueueTasksTotal.WithLabelValues(q.name).Inc()

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()

		q.sem <- struct{}{}
		defer func() { <-q.sem }()

		if err := fn(); err != nil {
			metrics.WorkQueueExceptionsTotal.WithLabelValues(q.name).Inc()
			q.logger.Debug().Err(err).Msg("Task failed")

			q.mu.Lock()
			q.errs = append(q.errs, err)
			q.mu.Unlock()
		}
	}()
}

// Join waits until every enqueued task has finished
func (q *Queue) Join() {
	q.wg.Wait()
}

// Exceptions returns a snapshot of the collected failures
func (q *Queue) Exceptions() []error {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make([]error, len(q.errs))
	copy(out, q.errs)
	return out
}

// DrainExceptions returns the collected failures and clears the list, so
// each phase's failures can be attributed separately.
func (q *Queue) DrainExceptions() []error {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := q.errs
	q.errs = nil
	return out
}

// HasExceptions reports whether any task has failed since the last drain
func (q *Queue) HasExceptions() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.errs) > 0
}
