package goengine

import "encoding/binary"

// Every spec and state block starts with a fixed header that identifies the
// family that initialized it and the parameters it was built for. Execute
// entry points refuse blocks whose header does not match.
const (
	headerSize   = 64
	headerMagic  = 0x4750_4531 // "GPE1"
	headerFields = (headerSize - 8) / 4
)

type blockKind uint32

const (
	kindFFT blockKind = iota + 1
	kindDFT
	kindPolyphase
	kindNoise
	kindVAD
	kindResize
	kindLZSSEncode
	kindLZSSDecode
)

type header [headerFields]uint32

func writeHeader(mem []byte, kind blockKind, fields ...uint32) {
	binary.LittleEndian.PutUint32(mem[0:], headerMagic)
	binary.LittleEndian.PutUint32(mem[4:], uint32(kind))
	for i := range headerFields {
		var v uint32
		if i < len(fields) {
			v = fields[i]
		}
		binary.LittleEndian.PutUint32(mem[8+4*i:], v)
	}
}

func readHeader(mem []byte, kind blockKind) (header, bool) {
	var h header
	if len(mem) < headerSize {
		return h, false
	}
	if binary.LittleEndian.Uint32(mem[0:]) != headerMagic ||
		blockKind(binary.LittleEndian.Uint32(mem[4:])) != kind {
		return h, false
	}
	for i := range h {
		h[i] = binary.LittleEndian.Uint32(mem[8+4*i:])
	}
	return h, true
}

func setField(mem []byte, i int, v uint32) {
	binary.LittleEndian.PutUint32(mem[8+4*i:], v)
}

// payload returns the bytes following the header.
func payload(mem []byte) []byte {
	return mem[headerSize:]
}
