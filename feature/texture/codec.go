package texture

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/klauspost/compress/zstd"
)

// Cooked texture container: a fixed header, a zstd compressed pixel payload
// and a footer carrying the texcoord scale of padded textures.
//
//	header:  magic u32, version u16, format u16, width u32, height u32,
//	         payload length u32
//	payload: zstd frame of width*height*bpp pixel bytes
//	footer:  scaleU f32, scaleV f32, footer magic u32
const (
	codecMagic       = 0x53544558 // "STEX"
	codecFooterMagic = 0x53544658 // "STFX"
	codecVersion     = 1

	headerSize = 4 + 2 + 2 + 4 + 4 + 4
	footerSize = 4 + 4 + 4
)

// ErrBadContainer is returned when data is not a valid cooked texture.
var ErrBadContainer = errors.New("texture: bad container")

var (
	zstdEncoder, _ = zstd.NewWriter(nil)
	zstdDecoder, _ = zstd.NewReader(nil)
)

// EncodeLevel produces the cooked container for one mip level. Used by the
// texture cook rule and by tests.
func EncodeLevel(lvl Level, format Format, scaleU, scaleV float32) ([]byte, error) {
	bpp := format.BytesPerPixel()
	if bpp == 0 {
		return nil, fmt.Errorf("%w: invalid format", ErrBadContainer)
	}
	if len(lvl.Pixels) != lvl.Width*lvl.Height*bpp {
		return nil, fmt.Errorf("%w: pixel size mismatch", ErrBadContainer)
	}

	payload := zstdEncoder.EncodeAll(lvl.Pixels, nil)

	out := make([]byte, 0, headerSize+len(payload)+footerSize)
	var hdr [headerSize]byte
	binary.LittleEndian.PutUint32(hdr[0:], codecMagic)
	binary.LittleEndian.PutUint16(hdr[4:], codecVersion)
	binary.LittleEndian.PutUint16(hdr[6:], uint16(format))
	binary.LittleEndian.PutUint32(hdr[8:], uint32(lvl.Width))
	binary.LittleEndian.PutUint32(hdr[12:], uint32(lvl.Height))
	binary.LittleEndian.PutUint32(hdr[16:], uint32(len(payload)))
	out = append(out, hdr[:]...)
	out = append(out, payload...)

	var ftr [footerSize]byte
	binary.LittleEndian.PutUint32(ftr[0:], math.Float32bits(scaleU))
	binary.LittleEndian.PutUint32(ftr[4:], math.Float32bits(scaleV))
	binary.LittleEndian.PutUint32(ftr[8:], codecFooterMagic)
	out = append(out, ftr[:]...)
	return out, nil
}

// DecodeLevel parses a cooked container back into pixel data. CPU heavy
// (zstd decompression); the pipeline runs it on a worker.
func DecodeLevel(data []byte) (Level, Format, float32, float32, error) {
	fail := func(msg string) (Level, Format, float32, float32, error) {
		return Level{}, FormatInvalid, 0, 0, fmt.Errorf("%w: %s", ErrBadContainer, msg)
	}

	if len(data) < headerSize+footerSize {
		return fail("truncated")
	}
	if binary.LittleEndian.Uint32(data[0:]) != codecMagic {
		return fail("bad magic")
	}
	if binary.LittleEndian.Uint16(data[4:]) != codecVersion {
		return fail("unsupported version")
	}
	format := Format(binary.LittleEndian.Uint16(data[6:]))
	width := int(binary.LittleEndian.Uint32(data[8:]))
	height := int(binary.LittleEndian.Uint32(data[12:]))
	payloadLen := int(binary.LittleEndian.Uint32(data[16:]))

	bpp := format.BytesPerPixel()
	if bpp == 0 {
		return fail("invalid format")
	}
	if headerSize+payloadLen+footerSize != len(data) {
		return fail("size mismatch")
	}

	ftr := data[len(data)-footerSize:]
	if binary.LittleEndian.Uint32(ftr[8:]) != codecFooterMagic {
		return fail("bad footer")
	}
	scaleU := math.Float32frombits(binary.LittleEndian.Uint32(ftr[0:]))
	scaleV := math.Float32frombits(binary.LittleEndian.Uint32(ftr[4:]))
	if scaleU < 0 || scaleU > 1 || scaleV < 0 || scaleV > 1 {
		return fail("footer scale out of range")
	}

	pixels, err := zstdDecoder.DecodeAll(data[headerSize:headerSize+payloadLen], nil)
	if err != nil {
		return fail("decompress: " + err.Error())
	}
	if len(pixels) != width*height*bpp {
		return fail("decompressed size mismatch")
	}

	return Level{Width: width, Height: height, Pixels: pixels}, format, scaleU, scaleV, nil
}
