package texture_test

import (
	"testing"

	"content-pipeline/feature/texture"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeLevel(w, h int, format texture.Format) texture.Level {
	pixels := make([]byte, w*h*format.BytesPerPixel())
	for i := range pixels {
		pixels[i] = byte(i)
	}
	return texture.Level{Width: w, Height: h, Pixels: pixels}
}

func TestCodec_RoundTrip(t *testing.T) {
	tests := []struct {
		name           string
		w, h           int
		format         texture.Format
		scaleU, scaleV float32
	}{
		{"RGBA8", 4, 4, texture.FormatRGBA8, 1, 1},
		{"A8", 8, 2, texture.FormatA8, 1, 1},
		{"Padded", 3, 5, texture.FormatRGBA8, 0.75, 0.625},
		{"OnePixel", 1, 1, texture.FormatRGBA8, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lvl := makeLevel(tt.w, tt.h, tt.format)
			data, err := texture.EncodeLevel(lvl, tt.format, tt.scaleU, tt.scaleV)
			require.NoError(t, err)

			got, format, scaleU, scaleV, err := texture.DecodeLevel(data)
			require.NoError(t, err)
			assert.Equal(t, lvl, got)
			assert.Equal(t, tt.format, format)
			assert.Equal(t, tt.scaleU, scaleU)
			assert.Equal(t, tt.scaleV, scaleV)
		})
	}
}

func TestEncodeLevel_Rejects(t *testing.T) {
	_, err := texture.EncodeLevel(makeLevel(2, 2, texture.FormatRGBA8), texture.FormatInvalid, 1, 1)
	assert.ErrorIs(t, err, texture.ErrBadContainer)

	short := texture.Level{Width: 2, Height: 2, Pixels: []byte{0}}
	_, err = texture.EncodeLevel(short, texture.FormatRGBA8, 1, 1)
	assert.ErrorIs(t, err, texture.ErrBadContainer)
}

func TestDecodeLevel_Rejects(t *testing.T) {
	valid, err := texture.EncodeLevel(makeLevel(2, 2, texture.FormatRGBA8), texture.FormatRGBA8, 1, 1)
	require.NoError(t, err)

	tests := []struct {
		name string
		data []byte
	}{
		{"Empty", nil},
		{"Truncated", valid[:10]},
		{"BadMagic", append([]byte{0, 0, 0, 0}, valid[4:]...)},
		{"TrailingGarbage", append(append([]byte(nil), valid...), 0xff)},
		{"CorruptPayload", corrupt(valid, len(valid)/2)},
		{"CorruptFooter", corrupt(valid, len(valid)-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, _, err := texture.DecodeLevel(tt.data)
			assert.ErrorIs(t, err, texture.ErrBadContainer)
		})
	}
}

func corrupt(data []byte, i int) []byte {
	out := append([]byte(nil), data...)
	out[i] ^= 0xff
	return out
}

func TestFormat(t *testing.T) {
	assert.Equal(t, 4, texture.FormatRGBA8.BytesPerPixel())
	assert.Equal(t, 1, texture.FormatA8.BytesPerPixel())
	assert.Equal(t, 0, texture.FormatInvalid.BytesPerPixel())
}

func TestLevelPath(t *testing.T) {
	assert.Equal(t, "ui/logo.tex", texture.LevelPath("ui/logo.tex", 0))
	assert.Equal(t, "ui/logo.mip1.tex", texture.LevelPath("ui/logo.tex", 1))
	assert.Equal(t, "ui/logo.mip2.tex", texture.LevelPath("ui/logo.tex", 2))
}
