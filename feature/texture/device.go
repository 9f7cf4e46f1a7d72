package texture

import "errors"

// TextureDesc describes the device texture to create.
type TextureDesc struct {
	Width, Height int
	Format        Format
	Levels        int
}

// DeviceTexture is a GPU resident texture object.
type DeviceTexture interface {
	// Release frees the device resources. Safe to call once.
	Release()
}

// Device creates GPU resources from decoded texture data.
type Device interface {
	// CreateTexture uploads the given mip levels (largest first). When
	// called on the render executor it must not block beyond the upload
	// itself.
	CreateTexture(desc TextureDesc, levels []Level) (DeviceTexture, error)

	// SupportsAsyncCreate reports whether CreateTexture may be called from a
	// worker. When it is, successful creations skip straight to the render
	// thread publish; failures are retried once on the render thread.
	SupportsAsyncCreate() bool
}

// NullDevice satisfies Device without any GPU. Tools and tests use it; the
// pipeline behaves exactly as with a real device, minus the upload.
type NullDevice struct {
	// Async makes the null device claim async creation support.
	Async bool
	// FailCreate makes every creation fail, for error path testing.
	FailCreate bool
}

type nullTexture struct{}

func (nullTexture) Release() {}

// CreateTexture implements Device.
func (d *NullDevice) CreateTexture(TextureDesc, []Level) (DeviceTexture, error) {
	if d.FailCreate {
		return nil, errCreateFailed
	}
	return nullTexture{}, nil
}

// SupportsAsyncCreate implements Device.
func (d *NullDevice) SupportsAsyncCreate() bool { return d.Async }

var errCreateFailed = errors.New("texture: device creation failed")
