package script_test

import (
	"testing"
	"time"

	"content-pipeline/content"
	"content-pipeline/core/cook"
	"content-pipeline/core/vfs"
	"content-pipeline/feature/script"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newScriptPipeline(t *testing.T, fs vfs.FileSystem, cooker cook.Cooker) (*script.Manager, *content.Manager) {
	t.Helper()
	loads := content.NewManager(content.Config{Workers: 2, QueueDepth: 32, DependencyPollMS: 5}, zap.NewNop())
	t.Cleanup(func() { _ = loads.Close() })
	sm := script.NewManager(script.Config{}, loads, fs, cooker, zap.NewNop())
	return sm, loads
}

func TestLoader_Success(t *testing.T) {
	fs := vfs.NewMem()
	bytecode := []byte("return game.start()")
	data, err := script.Encode(bytecode)
	require.NoError(t, err)
	fs.Put("game/main.luac", data)

	sm, loads := newScriptPipeline(t, fs, nil)

	h := sm.GetScript("game/main.luac")
	defer h.Release()
	content.WaitUntilLoadIsFinished(loads, h)

	v := h.Value()
	require.NotNil(t, v)
	assert.Equal(t, bytecode, v.Bytecode)
	assert.Equal(t, script.Checksum(bytecode), v.Checksum)
}

func TestLoader_MissingFileSubstitutesError(t *testing.T) {
	fs := vfs.NewMem()
	sm, loads := newScriptPipeline(t, fs, nil)

	h := sm.GetScript("missing.luac")
	defer h.Release()
	content.WaitUntilLoadIsFinished(loads, h)

	// The error sentinel is an empty script: always runnable.
	assert.Same(t, sm.ErrorScript(), h.Value())
	assert.Empty(t, h.Value().Bytecode)
}

func TestLoader_CorruptSubstitutesError(t *testing.T) {
	fs := vfs.NewMem()
	fs.Put("game/main.luac", []byte("not a container"))
	sm, loads := newScriptPipeline(t, fs, nil)

	h := sm.GetScript("game/main.luac")
	defer h.Release()
	content.WaitUntilLoadIsFinished(loads, h)

	assert.Same(t, sm.ErrorScript(), h.Value())
}

func TestLoader_CookOnDemand(t *testing.T) {
	fs := vfs.NewMem()
	source := vfs.NewMem()
	source.Put("game/main.lua", []byte("return 7"))

	cooker := cook.NewManager(cook.Config{Enabled: true}, source, fs, nil, zap.NewNop())
	cooker.Register(".luac", script.CookRule())

	sm, loads := newScriptPipeline(t, fs, cooker)

	h := sm.GetScript("game/main.luac")
	defer h.Release()
	content.WaitUntilLoadIsFinished(loads, h)

	require.NotNil(t, h.Value())
	assert.Equal(t, []byte("return 7"), h.Value().Bytecode)
	assert.True(t, fs.Exists("game/main.luac"))
}

func TestLoader_NetworkDisabledSubstitutesError(t *testing.T) {
	fs := vfs.NewMem()
	data, err := script.Encode([]byte("return 1"))
	require.NoError(t, err)
	fs.PutRemote("remote.luac", data)
	fs.SetNetworkEnabled(false)

	sm, loads := newScriptPipeline(t, fs, nil)

	h := sm.GetScript("remote.luac")
	defer h.Release()
	content.WaitUntilLoadIsFinished(loads, h)

	assert.Same(t, sm.ErrorScript(), h.Value())
	assert.Equal(t, 0, fs.Reads())
}

func TestManager_HotReloadReloadsInPlace(t *testing.T) {
	fs := vfs.NewMem()
	v1, err := script.Encode([]byte("return 1"))
	require.NoError(t, err)
	fs.Put("game/main.luac", v1)

	sm, loads := newScriptPipeline(t, fs, nil)
	loads.SetHotLoadMode(content.HotLoadPermanentAccept)

	h := sm.GetScript("game/main.luac")
	defer h.Release()
	content.WaitUntilLoadIsFinished(loads, h)
	require.Equal(t, []byte("return 1"), h.Value().Bytecode)
	oldSum := h.Value().Checksum

	v2, err := script.Encode([]byte("return 2"))
	require.NoError(t, err)
	fs.Put("game/main.luac", v2)

	key := content.NewKey(content.TypeScript, "game/main.luac")
	loads.InjectChange(content.ChangeEvent{Old: key, New: key, At: time.Now()})
	loads.Poll()

	content.WaitUntilLoadIsFinished(loads, h)
	loads.WaitUntilAllLoadsAreFinished()
	assert.Equal(t, []byte("return 2"), h.Value().Bytecode)
	assert.NotEqual(t, oldSum, h.Value().Checksum)
}
