package content

import (
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeStore records the events the Manager fans out.
type fakeStore struct {
	mu      sync.Mutex
	loaded  map[Key]bool
	changes []ChangeEvent
	unloads int
	reloads int
	lru     bool
}

func newFakeStore(loaded ...Key) *fakeStore {
	s := &fakeStore{loaded: make(map[Key]bool)}
	for _, k := range loaded {
		s.loaded[k] = true
	}
	return s
}

func (s *fakeStore) IsFileLoaded(key Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded[key]
}

func (s *fakeStore) FileChange(ev *ChangeEvent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.loaded[ev.New] {
		return false
	}
	s.changes = append(s.changes, *ev)
	return true
}

func (s *fakeStore) Reload(*Reload) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reloads++
}

func (s *fakeStore) Unload() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unloads++
	return 0
}

func (s *fakeStore) UnloadLRU() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lru
}

func (s *fakeStore) changeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.changes)
}

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager(Config{Workers: 2, QueueDepth: 16, DependencyPollMS: 5}, zap.NewNop())
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func TestManager_QueueAndWait(t *testing.T) {
	m := newTestManager(t)

	var completed []Key
	var mu sync.Mutex
	m.OnLoadComplete(func(k Key) {
		mu.Lock()
		completed = append(completed, k)
		mu.Unlock()
	})

	key := NewKey(TypeData, "a.bin")
	m.Queue(&scriptedLoader{key: key, script: []State{StateLoaded}})
	m.WaitUntilAllLoadsAreFinished()

	assert.False(t, m.HasActiveLoads())
	assert.Equal(t, 0, m.ActiveLoads())
	mu.Lock()
	assert.Equal(t, []Key{key}, completed)
	mu.Unlock()
}

func TestManager_FailedLoadSkipsCallbacks(t *testing.T) {
	m := newTestManager(t)

	fired := false
	m.OnLoadComplete(func(Key) { fired = true })

	m.Queue(&scriptedLoader{key: NewKey(TypeData, "a.bin"), script: []State{StateError}})
	m.WaitUntilAllLoadsAreFinished()

	assert.False(t, fired)
}

func TestManager_HotLoadModes(t *testing.T) {
	key := NewKey(TypeTexture, "a.tex")
	ev := ChangeEvent{Old: key, New: key, At: time.Now()}

	t.Run("NoAction buffers", func(t *testing.T) {
		m := newTestManager(t)
		store := newFakeStore(key)
		m.Register(store)

		m.InjectChange(ev)
		m.Poll()
		assert.Equal(t, 0, store.changeCount())

		// The buffered change survives until a mode accepts it.
		m.SetHotLoadMode(HotLoadAccept)
		m.Poll()
		assert.Equal(t, 1, store.changeCount())
	})

	t.Run("Accept applies once", func(t *testing.T) {
		m := newTestManager(t)
		store := newFakeStore(key)
		m.Register(store)

		m.SetHotLoadMode(HotLoadAccept)
		m.InjectChange(ev)
		m.Poll()
		require.Equal(t, 1, store.changeCount())

		// Mode reverted to NoAction: the next change only buffers.
		m.InjectChange(ev)
		m.Poll()
		assert.Equal(t, 1, store.changeCount())
	})

	t.Run("Reject discards", func(t *testing.T) {
		m := newTestManager(t)
		store := newFakeStore(key)
		m.Register(store)

		m.SetHotLoadMode(HotLoadReject)
		m.InjectChange(ev)
		m.Poll()
		assert.Equal(t, 0, store.changeCount())

		// The change is gone, not deferred.
		m.SetHotLoadMode(HotLoadPermanentAccept)
		m.Poll()
		assert.Equal(t, 0, store.changeCount())
	})

	t.Run("PermanentAccept keeps applying", func(t *testing.T) {
		m := newTestManager(t)
		store := newFakeStore(key)
		m.Register(store)

		m.SetHotLoadMode(HotLoadPermanentAccept)
		m.InjectChange(ev)
		m.Poll()
		m.InjectChange(ev)
		m.Poll()
		assert.Equal(t, 2, store.changeCount())
	})
}

func TestManager_HotLoadSuppression(t *testing.T) {
	key := NewKey(TypeTexture, "a.tex")
	m := newTestManager(t)
	store := newFakeStore(key)
	m.Register(store)
	m.SetHotLoadMode(HotLoadPermanentAccept)

	m.BeginHotLoadSuppress()
	assert.True(t, m.IsHotLoadingSuppressed())
	m.InjectChange(ChangeEvent{Old: key, New: key, At: time.Now()})
	m.Poll()
	assert.Equal(t, 0, store.changeCount())

	m.EndHotLoadSuppress()
	m.Poll()
	assert.Equal(t, 1, store.changeCount())
}

func TestManager_HotLoadAcceptDeferredBySuppression(t *testing.T) {
	key := NewKey(TypeTexture, "a.tex")
	m := newTestManager(t)
	store := newFakeStore(key)
	m.Register(store)

	m.BeginHotLoadSuppress()
	m.SetHotLoadMode(HotLoadAccept)
	m.InjectChange(ChangeEvent{Old: key, New: key, At: time.Now()})
	m.Poll()
	assert.Equal(t, 0, store.changeCount())

	// The one-shot accept was not consumed under suppression; it fires on
	// the first poll after the scope ends.
	m.EndHotLoadSuppress()
	m.Poll()
	assert.Equal(t, 1, store.changeCount())
}

func TestManager_PollConcurrentWithInject(t *testing.T) {
	m := newTestManager(t)
	keys := make([]Key, 8)
	for i := range keys {
		keys[i] = NewKey(TypeTexture, "t"+strconv.Itoa(i)+".tex")
	}
	store := newFakeStore(keys...)
	m.Register(store)
	m.SetHotLoadMode(HotLoadPermanentAccept)

	// Injections and polls race from separate goroutines, the way a poll
	// ticker and an HTTP reload handler overlap in a long lived process.
	var wg sync.WaitGroup
	for _, k := range keys {
		wg.Add(1)
		go func(k Key) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				m.InjectChange(ChangeEvent{Old: k, New: k, At: time.Now()})
				m.Poll()
			}
		}(k)
	}
	wg.Wait()
	m.Poll()

	// Events coalesce per key, but every key must have been dispatched at
	// least once.
	store.mu.Lock()
	seen := make(map[Key]bool)
	for _, ev := range store.changes {
		seen[ev.New] = true
	}
	store.mu.Unlock()
	for _, k := range keys {
		assert.True(t, seen[k], k.String())
	}
}

func TestManager_SensitiveContentBlocksHotLoad(t *testing.T) {
	key := NewKey(TypeTexture, "a.tex")
	m := newTestManager(t)
	store := newFakeStore(key)
	m.Register(store)
	m.SetHotLoadMode(HotLoadPermanentAccept)

	m.BeginSensitiveContent()
	assert.True(t, m.IsSensitiveContentLoading())
	m.InjectChange(ChangeEvent{Old: key, New: key, At: time.Now()})
	m.Poll()
	assert.Equal(t, 0, store.changeCount())

	m.EndSensitiveContent()
	m.Poll()
	assert.Equal(t, 1, store.changeCount())
}

func TestManager_TempSuppressHotLoad(t *testing.T) {
	key := NewKey(TypeTexture, "a.tex")
	other := NewKey(TypeTexture, "b.tex")
	m := newTestManager(t)
	store := newFakeStore(key, other)
	m.Register(store)
	m.SetHotLoadMode(HotLoadPermanentAccept)

	// The suppressed key's change is dropped; the other key's goes through.
	m.TempSuppressHotLoad(key)
	m.InjectChange(ChangeEvent{Old: key, New: key, At: time.Now()})
	m.InjectChange(ChangeEvent{Old: other, New: other, At: time.Now()})
	m.Poll()

	require.Equal(t, 1, store.changeCount())
	assert.Equal(t, other, store.changes[0].New)
}

func TestManager_StoreFanOut(t *testing.T) {
	m := newTestManager(t)
	key := NewKey(TypeData, "a.bin")
	a := newFakeStore()
	b := newFakeStore(key)
	m.Register(a)
	m.Register(b)

	assert.True(t, m.IsFileLoaded(key))
	assert.False(t, m.IsFileLoaded(NewKey(TypeData, "missing.bin")))

	m.Reload(&Reload{})
	assert.Equal(t, 1, a.reloads)
	assert.Equal(t, 1, b.reloads)

	m.UnloadAll()
	assert.GreaterOrEqual(t, a.unloads, 1)

	b.lru = true
	assert.True(t, m.UnloadLRU())
}

func TestWaitUntilLoadIsFinished(t *testing.T) {
	m := newTestManager(t)

	e := newEntry(NewKey(TypeData, "a.bin"), new(string))
	h := newHandle(e)
	defer h.Release()

	// Not loading: returns immediately.
	WaitUntilLoadIsFinished(m, h)

	ticket := e.AttachLoader()
	done := make(chan struct{})
	go func() {
		time.Sleep(20 * time.Millisecond)
		ticket.Release()
		close(done)
	}()

	WaitUntilLoadIsFinished(m, h)
	<-done
	assert.False(t, h.IsLoading())
}
