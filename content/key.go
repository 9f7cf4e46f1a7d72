package content

import "fmt"

// Type discriminates the kind of content a Key refers to.
type Type int8

const (
	// TypeUnknown marks an invalid key. Stores resolve it to a permanent
	// placeholder entry and never attempt a load.
	TypeUnknown Type = iota
	// TypeTexture is image content with an optional mip chain.
	TypeTexture
	// TypeScript is compiled script content.
	TypeScript
	// TypeData is untyped raw content.
	TypeData
)

func (t Type) String() string {
	switch t {
	case TypeTexture:
		return "texture"
	case TypeScript:
		return "script"
	case TypeData:
		return "data"
	default:
		return "unknown"
	}
}

// Key identifies a loadable asset and its kind. Keys are immutable values:
// created once, compared by value and usable as map keys. Path is the
// slash-separated path of the cooked artifact relative to the content root.
type Key struct {
	Type Type
	Path string
}

// NewKey builds a Key for the given type and cooked path.
func NewKey(t Type, path string) Key {
	return Key{Type: t, Path: path}
}

// IsValid reports whether the key refers to loadable content.
func (k Key) IsValid() bool {
	return k.Type != TypeUnknown && k.Path != ""
}

// Less imposes a total order over keys, by type then path.
func (k Key) Less(o Key) bool {
	if k.Type != o.Type {
		return k.Type < o.Type
	}
	return k.Path < o.Path
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%s", k.Type, k.Path)
}
