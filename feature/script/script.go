package script

// Script is loaded compiled script bytecode. Checksum identifies the exact
// bytecode for hot reload comparisons and cache keys.
type Script struct {
	Bytecode []byte
	Checksum uint32
}

// MemoryUsage returns the resident size in bytes.
func (s *Script) MemoryUsage() int {
	if s == nil {
		return 0
	}
	return len(s.Bytecode)
}
