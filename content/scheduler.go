package content

import (
	"sync"
	"time"

	"content-pipeline/core/logger"

	"go.uber.org/zap"
)

type task struct {
	loader Loader
	state  State
	id     string
}

// Scheduler drives loaders across the pipeline's executors: one file I/O
// goroutine, an N-way worker pool and one render goroutine. A loader never
// owns a thread; after each step it is re-submitted to the queue its next
// state's affinity demands. Loaders parked in StateWaitingForDependency are
// re-queued after a poll interval instead of immediately, so a pending
// network download is polled rather than busy-spun.
type Scheduler struct {
	cfg    Config
	logger *zap.Logger
	done   func(Loader, State)

	fileIO chan task
	worker chan task
	render chan task

	quit    chan struct{}
	wg      sync.WaitGroup
	timerWG sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewScheduler builds a scheduler. done is invoked once per loader when it
// reaches a terminal state.
func NewScheduler(cfg Config, logger *zap.Logger, done func(Loader, State)) *Scheduler {
	s := &Scheduler{
		cfg:    cfg,
		logger: logger,
		done:   done,
		fileIO: make(chan task, cfg.queueDepth()),
		worker: make(chan task, cfg.queueDepth()),
		render: make(chan task, cfg.queueDepth()),
		quit:   make(chan struct{}),
	}

	s.wg.Add(1)
	go s.run(s.fileIO)
	for i := 0; i < cfg.workers(); i++ {
		s.wg.Add(1)
		go s.run(s.worker)
	}
	s.wg.Add(1)
	go s.run(s.render)

	return s
}

// Enqueue submits a loader step for execution at the given state.
func (s *Scheduler) Enqueue(l Loader, state State, id string) {
	s.submit(task{loader: l, state: state, id: id})
}

func (s *Scheduler) submit(t task) {
	var q chan task
	switch t.state.Affinity() {
	case AffinityWorker:
		q = s.worker
	case AffinityRender:
		q = s.render
	default:
		q = s.fileIO
	}

	select {
	case q <- t:
		return
	default:
	}

	// Queue full. The caller may be the queue's own executor (a file I/O
	// step whose next state is file I/O again), so blocking here would
	// starve the only consumer. Hand the send to a timer goroutine instead.
	s.timerWG.Add(1)
	time.AfterFunc(0, func() {
		defer s.timerWG.Done()
		select {
		case q <- t:
		case <-s.quit:
			s.logger.Warn("dropping load step, scheduler closed",
				zap.Stringer("key", t.loader.Key()),
				zap.Stringer("state", t.state),
				zap.String("load_id", t.id))
		}
	})
}

func (s *Scheduler) run(q chan task) {
	defer s.wg.Done()
	for {
		select {
		case t := <-q:
			s.step(t)
		case <-s.quit:
			return
		}
	}
}

func (s *Scheduler) step(t task) {
	next := t.loader.ExecuteStep(t.state)
	logger.WithLoadID(s.logger, t.id).Debug("load step",
		zap.Stringer("key", t.loader.Key()),
		zap.Stringer("from", t.state),
		zap.Stringer("to", next))

	if next.Terminal() {
		if s.done != nil {
			s.done(t.loader, next)
		}
		return
	}

	if next == StateWaitingForDependency {
		// Low priority: park before the next poll instead of re-queueing
		// immediately.
		s.timerWG.Add(1)
		time.AfterFunc(s.cfg.dependencyPoll(), func() {
			defer s.timerWG.Done()
			s.submit(task{loader: t.loader, state: next, id: t.id})
		})
		return
	}

	s.submit(task{loader: t.loader, state: next, id: t.id})
}

// Close stops the executors. Steps already queued may be dropped; callers
// that need a clean shutdown should wait for active loads first.
func (s *Scheduler) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	close(s.quit)
	s.wg.Wait()
	s.timerWG.Wait()
}
