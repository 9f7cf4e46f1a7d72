package content

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// scriptedLoader returns a fixed sequence of next states and records the
// state each step executed at.
type scriptedLoader struct {
	key Key

	mu       sync.Mutex
	script   []State
	executed []State
}

func (l *scriptedLoader) Key() Key { return l.key }

func (l *scriptedLoader) ExecuteStep(state State) State {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.executed = append(l.executed, state)
	if len(l.script) == 0 {
		return StateLoaded
	}
	next := l.script[0]
	l.script = l.script[1:]
	return next
}

func (l *scriptedLoader) executedStates() []State {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]State, len(l.executed))
	copy(out, l.executed)
	return out
}

func newTestScheduler(t *testing.T, done func(Loader, State)) *Scheduler {
	t.Helper()
	s := NewScheduler(Config{Workers: 2, QueueDepth: 16, DependencyPollMS: 5}, zap.NewNop(), done)
	t.Cleanup(s.Close)
	return s
}

func TestScheduler_RunsFullPipeline(t *testing.T) {
	final := make(chan State, 1)
	s := newTestScheduler(t, func(_ Loader, st State) { final <- st })

	l := &scriptedLoader{
		key: NewKey(TypeTexture, "a.tex"),
		script: []State{
			StateLoadingOnWorkerThread,
			StateLoadingOnRenderThread,
			StateLoaded,
		},
	}
	s.Enqueue(l, StateLoadingOnFileIOThread, "test")

	select {
	case st := <-final:
		assert.Equal(t, StateLoaded, st)
	case <-time.After(5 * time.Second):
		t.Fatal("loader never finished")
	}

	assert.Equal(t, []State{
		StateLoadingOnFileIOThread,
		StateLoadingOnWorkerThread,
		StateLoadingOnRenderThread,
	}, l.executedStates())
}

func TestScheduler_ErrorIsTerminal(t *testing.T) {
	final := make(chan State, 1)
	s := newTestScheduler(t, func(_ Loader, st State) { final <- st })

	l := &scriptedLoader{
		key:    NewKey(TypeScript, "a.luac"),
		script: []State{StateError},
	}
	s.Enqueue(l, StateLoadingOnFileIOThread, "test")

	select {
	case st := <-final:
		assert.Equal(t, StateError, st)
	case <-time.After(5 * time.Second):
		t.Fatal("loader never finished")
	}
	assert.Len(t, l.executedStates(), 1)
}

func TestScheduler_DependencyWaitRequeues(t *testing.T) {
	final := make(chan State, 1)
	s := newTestScheduler(t, func(_ Loader, st State) { final <- st })

	l := &scriptedLoader{
		key: NewKey(TypeTexture, "a.tex"),
		script: []State{
			StateWaitingForDependency,
			StateWaitingForDependency,
			StateLoaded,
		},
	}
	s.Enqueue(l, StateLoadingOnFileIOThread, "test")

	select {
	case st := <-final:
		assert.Equal(t, StateLoaded, st)
	case <-time.After(5 * time.Second):
		t.Fatal("loader never finished")
	}

	// Initial step plus one per parked re-poll.
	require.Len(t, l.executedStates(), 3)
	assert.Equal(t, StateWaitingForDependency, l.executedStates()[1])
}

func TestScheduler_SelfRequeueOnFullQueue(t *testing.T) {
	done := make(chan struct{}, 4)
	s := NewScheduler(Config{Workers: 1, QueueDepth: 1, DependencyPollMS: 5}, zap.NewNop(),
		func(Loader, State) { done <- struct{}{} })
	t.Cleanup(s.Close)

	// Several loaders bouncing file I/O -> file I/O against a single slot
	// queue: a step re-submitting to its own full queue must not starve
	// the queue's only executor.
	for i := 0; i < 4; i++ {
		l := &scriptedLoader{
			key: NewKey(TypeData, "q.bin"),
			script: []State{
				StateLoadingOnFileIOThread,
				StateLoadingOnFileIOThread,
				StateLoaded,
			},
		}
		s.Enqueue(l, StateLoadingOnFileIOThread, "test")
	}

	for i := 0; i < 4; i++ {
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("file io executor wedged")
		}
	}
}

func TestScheduler_CloseIsIdempotent(t *testing.T) {
	s := NewScheduler(Config{Workers: 1}, zap.NewNop(), nil)
	s.Close()
	s.Close()
}
