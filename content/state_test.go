package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestState_Terminal(t *testing.T) {
	tests := []struct {
		state State
		want  bool
	}{
		{StateNotLoaded, false},
		{StateLoadingOnFileIOThread, false},
		{StateLoadingOnWorkerThread, false},
		{StateLoadingOnRenderThread, false},
		{StateWaitingForDependency, false},
		{StateLoaded, true},
		{StateError, true},
	}

	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.state.Terminal())
		})
	}
}

func TestState_Affinity(t *testing.T) {
	assert.Equal(t, AffinityFileIO, StateLoadingOnFileIOThread.Affinity())
	assert.Equal(t, AffinityFileIO, StateWaitingForDependency.Affinity())
	assert.Equal(t, AffinityWorker, StateLoadingOnWorkerThread.Affinity())
	assert.Equal(t, AffinityRender, StateLoadingOnRenderThread.Affinity())
}
