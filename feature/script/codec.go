package script

import (
	"encoding/binary"
	"errors"
	"fmt"
	"hash/fnv"

	"github.com/pierrec/lz4/v4"
)

// Cooked script container: a fixed header followed by the bytecode payload,
// lz4 block compressed unless that would grow it.
//
//	header: magic u32, version u16, flags u16, raw length u32,
//	        payload length u32, checksum u32 (fnv-1a of the raw bytecode)
const (
	codecMagic   = 0x534C5541 // "SLUA"
	codecVersion = 1

	flagCompressed = 1 << 0

	headerSize = 4 + 2 + 2 + 4 + 4 + 4
)

// ErrBadContainer is returned when data is not a valid cooked script.
var ErrBadContainer = errors.New("script: bad container")

// Checksum returns the fnv-1a checksum used by the container.
func Checksum(bytecode []byte) uint32 {
	h := fnv.New32a()
	h.Write(bytecode)
	return h.Sum32()
}

// Encode produces the cooked container for compiled bytecode. Used by the
// script cook rule and by tests.
func Encode(bytecode []byte) ([]byte, error) {
	payload := make([]byte, lz4.CompressBlockBound(len(bytecode)))
	n, err := lz4.CompressBlock(bytecode, payload, nil)
	if err != nil {
		return nil, fmt.Errorf("script: compress: %w", err)
	}

	var flags uint16
	if n > 0 && n < len(bytecode) {
		flags = flagCompressed
		payload = payload[:n]
	} else {
		// Incompressible; store raw.
		payload = bytecode
	}

	out := make([]byte, headerSize, headerSize+len(payload))
	binary.LittleEndian.PutUint32(out[0:], codecMagic)
	binary.LittleEndian.PutUint16(out[4:], codecVersion)
	binary.LittleEndian.PutUint16(out[6:], flags)
	binary.LittleEndian.PutUint32(out[8:], uint32(len(bytecode)))
	binary.LittleEndian.PutUint32(out[12:], uint32(len(payload)))
	binary.LittleEndian.PutUint32(out[16:], Checksum(bytecode))
	return append(out, payload...), nil
}

// Decode parses a cooked container back into bytecode, verifying the stored
// checksum. CPU heavy when compressed; the pipeline runs it on a worker.
func Decode(data []byte) ([]byte, uint32, error) {
	fail := func(msg string) ([]byte, uint32, error) {
		return nil, 0, fmt.Errorf("%w: %s", ErrBadContainer, msg)
	}

	if len(data) < headerSize {
		return fail("truncated")
	}
	if binary.LittleEndian.Uint32(data[0:]) != codecMagic {
		return fail("bad magic")
	}
	if binary.LittleEndian.Uint16(data[4:]) != codecVersion {
		return fail("unsupported version")
	}
	flags := binary.LittleEndian.Uint16(data[6:])
	rawLen := int(binary.LittleEndian.Uint32(data[8:]))
	payloadLen := int(binary.LittleEndian.Uint32(data[12:]))
	sum := binary.LittleEndian.Uint32(data[16:])

	if headerSize+payloadLen != len(data) {
		return fail("size mismatch")
	}
	payload := data[headerSize:]

	var bytecode []byte
	if flags&flagCompressed != 0 {
		bytecode = make([]byte, rawLen)
		n, err := lz4.UncompressBlock(payload, bytecode)
		if err != nil {
			return fail("decompress: " + err.Error())
		}
		if n != rawLen {
			return fail("decompressed size mismatch")
		}
	} else {
		if payloadLen != rawLen {
			return fail("size mismatch")
		}
		bytecode = append([]byte(nil), payload...)
	}

	if Checksum(bytecode) != sum {
		return fail("checksum mismatch")
	}
	return bytecode, sum, nil
}
