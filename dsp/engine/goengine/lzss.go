package goengine

import (
	"github.com/cwbudde/algo-ipp/dsp/engine"
)

// LZSS stream layout: a flag byte precedes every group of up to eight items.
// A set bit marks a literal byte; a clear bit marks a two-byte match holding
// a 12-bit distance-1 and a 4-bit length-minMatch. Every call produces or
// consumes one self-contained block.
const (
	lzWindow   = 4096
	lzMinMatch = 3
	lzMaxMatch = lzMinMatch + 15
	lzHashBits = 12
	lzHashSize = 1 << lzHashBits
	lzMaxChain = 64
)

// Header fields of an LZSS state.
const (
	lzBlocks = iota
	lzTotalIn
	lzTotalOut
)

// LZSSGetSize reports the state size shared by encoder and decoder: hash
// heads and chain links for the encoder's match finder.
func (e *Engine) LZSSGetSize() (int, engine.Status) {
	return headerSize + engine.SizeOf[int32](lzHashSize+lzWindow), engine.StatusOK
}

func (e *Engine) lzInit(state []byte, kind blockKind) engine.Status {
	size, _ := e.LZSSGetSize()
	if len(state) < size {
		return engine.StatusSize
	}
	clear(payload(state)[:size-headerSize])
	writeHeader(state, kind)
	return engine.StatusOK
}

// EncodeLZSSInit prepares an encoder state.
func (e *Engine) EncodeLZSSInit(state []byte) engine.Status { return e.lzInit(state, kindLZSSEncode) }

// DecodeLZSSInit prepares a decoder state.
func (e *Engine) DecodeLZSSInit(state []byte) engine.Status { return e.lzInit(state, kindLZSSDecode) }

func lzHash(b []byte) int {
	v := uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2])
	return int((v * 2654435761) >> (32 - lzHashBits))
}

// EncodeLZSS compresses src into dst and returns the number of bytes written.
// dst must hold the worst case of len(src) + ceil(len(src)/8) bytes.
func (e *Engine) EncodeLZSS(src, dst, state []byte) (int, engine.Status) {
	h, ok := readHeader(state, kindLZSSEncode)
	size, _ := e.LZSSGetSize()
	if !ok || len(state) < size {
		return 0, engine.StatusContextMatch
	}
	if len(dst) < len(src)+(len(src)+7)/8 {
		return 0, engine.StatusSize
	}

	tables := engine.View[int32](payload(state))
	head := tables[:lzHashSize]
	link := tables[lzHashSize : lzHashSize+lzWindow]
	clear(head)

	insert := func(pos int) {
		if pos+lzMinMatch > len(src) {
			return
		}
		hv := lzHash(src[pos:])
		link[pos%lzWindow] = head[hv]
		head[hv] = int32(pos + 1)
	}

	out := 0
	flagPos := -1
	bit := 8
	for pos := 0; pos < len(src); {
		if bit == 8 {
			flagPos = out
			dst[out] = 0
			out++
			bit = 0
		}

		bestLen, bestDist := 0, 0
		if pos+lzMinMatch <= len(src) {
			limit := min(lzMaxMatch, len(src)-pos)
			cand := int(head[lzHash(src[pos:])]) - 1
			for chain := 0; cand >= 0 && chain < lzMaxChain; chain++ {
				dist := pos - cand
				if dist <= 0 || dist > lzWindow {
					break
				}
				n := 0
				for n < limit && src[cand+n] == src[pos+n] {
					n++
				}
				if n > bestLen {
					bestLen, bestDist = n, dist
					if n == limit {
						break
					}
				}
				next := int(link[cand%lzWindow]) - 1
				if next >= cand {
					break
				}
				cand = next
			}
		}

		if bestLen >= lzMinMatch {
			d := bestDist - 1
			dst[out] = byte(d)
			dst[out+1] = byte(d>>8)<<4 | byte(bestLen-lzMinMatch)
			out += 2
			for i := range bestLen {
				insert(pos + i)
			}
			pos += bestLen
		} else {
			dst[flagPos] |= 1 << bit
			dst[out] = src[pos]
			out++
			insert(pos)
			pos++
		}
		bit++
	}

	setField(state, lzBlocks, h[lzBlocks]+1)
	setField(state, lzTotalIn, h[lzTotalIn]+uint32(len(src)))
	setField(state, lzTotalOut, h[lzTotalOut]+uint32(out))
	return out, engine.StatusOK
}

// statusCorrupt is returned for streams that reference data before the start
// of the block.
const statusCorrupt engine.Status = -1002

// DecodeLZSS expands src into dst and returns the number of bytes written.
func (e *Engine) DecodeLZSS(src, dst, state []byte) (int, engine.Status) {
	h, ok := readHeader(state, kindLZSSDecode)
	size, _ := e.LZSSGetSize()
	if !ok || len(state) < size {
		return 0, engine.StatusContextMatch
	}

	in, out := 0, 0
	for in < len(src) {
		flags := src[in]
		in++
		for bit := 0; bit < 8 && in < len(src); bit++ {
			if flags&(1<<bit) != 0 {
				if out >= len(dst) {
					return out, engine.StatusSize
				}
				dst[out] = src[in]
				in++
				out++
				continue
			}
			if in+1 >= len(src) {
				return out, statusCorrupt
			}
			dist := (int(src[in]) | int(src[in+1]>>4)<<8) + 1
			n := int(src[in+1]&0x0f) + lzMinMatch
			in += 2
			if dist > out {
				return out, statusCorrupt
			}
			if out+n > len(dst) {
				return out, engine.StatusSize
			}
			for i := range n {
				dst[out+i] = dst[out-dist+i]
			}
			out += n
		}
	}

	setField(state, lzBlocks, h[lzBlocks]+1)
	setField(state, lzTotalIn, h[lzTotalIn]+uint32(len(src)))
	setField(state, lzTotalOut, h[lzTotalOut]+uint32(out))
	return out, engine.StatusOK
}
