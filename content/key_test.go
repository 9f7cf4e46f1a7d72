package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKey_IsValid(t *testing.T) {
	tests := []struct {
		name string
		key  Key
		want bool
	}{
		{"Texture", NewKey(TypeTexture, "a.tex"), true},
		{"Script", NewKey(TypeScript, "a.luac"), true},
		{"Data", NewKey(TypeData, "a.bin"), true},
		{"UnknownType", NewKey(TypeUnknown, "a.tex"), false},
		{"EmptyPath", NewKey(TypeTexture, ""), false},
		{"Zero", Key{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.key.IsValid())
		})
	}
}

func TestKey_Less(t *testing.T) {
	tests := []struct {
		name string
		a, b Key
		want bool
	}{
		{"ByType", NewKey(TypeTexture, "z"), NewKey(TypeScript, "a"), true},
		{"ByPath", NewKey(TypeTexture, "a"), NewKey(TypeTexture, "b"), true},
		{"Equal", NewKey(TypeTexture, "a"), NewKey(TypeTexture, "a"), false},
		{"Greater", NewKey(TypeScript, "a"), NewKey(TypeTexture, "a"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Less(tt.b))
		})
	}
}

func TestKey_String(t *testing.T) {
	assert.Equal(t, "texture:ui/logo.tex", NewKey(TypeTexture, "ui/logo.tex").String())
	assert.Equal(t, "unknown:", Key{}.String())
}
