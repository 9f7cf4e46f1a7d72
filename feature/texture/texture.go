package texture

// Format identifies the pixel layout of texture data.
type Format uint16

const (
	// FormatInvalid marks unusable data.
	FormatInvalid Format = iota
	// FormatRGBA8 is 8 bits per channel RGBA.
	FormatRGBA8
	// FormatA8 is single channel alpha.
	FormatA8
)

// BytesPerPixel returns the storage size of one pixel, or 0 for invalid
// formats.
func (f Format) BytesPerPixel() int {
	switch f {
	case FormatRGBA8:
		return 4
	case FormatA8:
		return 1
	default:
		return 0
	}
}

func (f Format) String() string {
	switch f {
	case FormatRGBA8:
		return "rgba8"
	case FormatA8:
		return "a8"
	default:
		return "invalid"
	}
}

// Level is one mip level's decoded pixel data.
type Level struct {
	Width, Height int
	Pixels        []byte
}

// Texture is the value published for texture content. During a progressive
// mip chain load each completed level publishes a new Texture whose Levels
// slice has grown by one, so mid-load state stays usable; readers always see
// a complete value.
type Texture struct {
	// Width and Height are the dimensions of the largest loaded level.
	Width, Height int
	Format        Format
	// Levels holds the loaded mip levels, largest first.
	Levels []Level
	// Device is the GPU resident object, nil when no device is wired.
	Device DeviceTexture
	// ScaleU and ScaleV map the usable region of padded textures.
	ScaleU, ScaleV float32
}

// MemoryUsage returns the approximate resident size in bytes.
func (t *Texture) MemoryUsage() int {
	total := 0
	for _, l := range t.Levels {
		total += len(l.Pixels)
	}
	return total
}
