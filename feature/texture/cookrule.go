package texture

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"

	"content-pipeline/core/cook"
)

// CookRule cooks a .tex artifact from a .png source: decode, flatten to
// RGBA8 and wrap in the cooked container. Mip levels below full resolution
// are produced offline; on-demand cooking covers level 0 only.
func CookRule() cook.Rule {
	return cook.Rule{
		SourceExt: ".png",
		Cook: func(source []byte) ([]byte, error) {
			img, err := png.Decode(bytes.NewReader(source))
			if err != nil {
				return nil, fmt.Errorf("%w: %v", cook.ErrCannotCook, err)
			}
			b := img.Bounds()
			rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
			draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
			return EncodeLevel(Level{
				Width:  b.Dx(),
				Height: b.Dy(),
				Pixels: rgba.Pix,
			}, FormatRGBA8, 1, 1)
		},
	}
}
