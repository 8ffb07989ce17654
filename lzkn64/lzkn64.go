// Package lzkn64 implements the LZ compression format used by Konami's N64
// titles.
//
// A compressed stream starts with a big-endian 32-bit word holding the length
// of the stream including the word itself, followed by single byte commands:
//
//	0x00-0x7f  copy ((cmd&0x7c)>>2)+2 bytes from up to 0x3ff bytes back,
//	           the distance is (cmd&0x03)<<8 | next byte
//	0x80-0x9f  copy cmd&0x1f literal bytes
//	0xc0-0xdf  write (cmd&0x1f)+2 times the next byte
//	0xe0-0xfe  write (cmd&0x1f)+2 zero bytes
//	0xff       write next byte+2 zero bytes
package lzkn64

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var ErrCorrupt = errors.New("lzkn64: corrupt input")

const (
	cmdWindowCopy   = 0x00
	cmdRawCopy      = 0x80
	cmdRLEShort     = 0xc0
	cmdRLEShortZero = 0xe0
	cmdRLELongZero  = 0xff

	cmdNone = 0x7f
)

const (
	windowCopyLengthMask = 0x7c
	windowOffsetHighMask = 0x03
	windowOffsetMask     = 0x3ff
	rawCopyLengthMask    = 0x1f
	rleShortLengthMask   = 0x1f
)

const (
	headerSize = 4

	windowCopyMaxLength = 0x1f + 2
	rawCopyMaxLength    = 0x1f
	rleShortMaxLength   = 0x1f + 2
	rleLongMaxLength    = 0xff + 2

	windowSizeEfficient = 0x3ff
	windowSizeAccurate  = 0x3df
)

// Mode selects the compressor.
type Mode int

const (
	// Accurate produces the same output as the compressor used for the
	// retail ROMs.
	Accurate Mode = iota
	// Efficient compresses slightly better, but doesn't match retail data.
	Efficient
)

func (m Mode) String() string {
	switch m {
	case Accurate:
		return "accurate"
	case Efficient:
		return "efficient"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Pad2 rounds n up to the next 2 byte boundary. Files stored in the ROM are
// padded this way.
func Pad2(n int) int {
	return (n + 1) &^ 1
}

// Compress returns the compressed stream of src.
func Compress(src []byte, mode Mode) []byte {
	e := encoder{src: src, mode: mode, dst: make([]byte, headerSize, headerSize+len(src)+len(src)/rawCopyMaxLength+1)}
	e.encode()

	n := uint32(len(e.dst))
	binary.BigEndian.PutUint32(e.dst, n)
	if mode == Accurate {
		e.dst[0] &= 0x7f
	} else {
		e.dst[0] = 0
	}
	return e.dst
}

type encoder struct {
	src  []byte
	dst  []byte
	mode Mode

	pos     int // next byte to encode
	pending int // start of literals not yet written
}

func (e *encoder) encode() {
	for e.pos < len(e.src) {
		windowOffset, windowLength := e.windowMatch()
		rleValue, rleLength := e.rleMatch()

		cmd := e.pick(windowLength, rleValue, rleLength)

		// Flush literals before emitting a command, when there are too
		// many of them or at the end of input.
		literals := e.pos - e.pending
		atEnd := e.pos+1 >= len(e.src)
		if (cmd != cmdNone && literals > 0) || literals >= rawCopyMaxLength || atEnd {
			if atEnd {
				literals = len(e.src) - e.pending
			}
			e.flushLiterals(literals)
		}

		switch cmd {
		case cmdWindowCopy:
			e.dst = append(e.dst,
				cmdWindowCopy|byte((windowLength-2)<<2)&windowCopyLengthMask|byte(windowOffset>>8)&windowOffsetHighMask,
				byte(windowOffset))
			e.pos += windowLength
			e.pending = e.pos
		case cmdRLEShort:
			for rleLength > 0 {
				n := min(rleLength, rleShortMaxLength)
				e.dst = append(e.dst, cmdRLEShort|byte(n-2)&rleShortLengthMask, rleValue)
				rleLength -= n
				e.pos += n
			}
			e.pending = e.pos
		case cmdRLEShortZero:
			for rleLength > 0 {
				n := min(rleLength, rleShortMaxLength-1)
				e.dst = append(e.dst, cmdRLEShortZero|byte(n-2)&rleShortLengthMask)
				rleLength -= n
				e.pos += n
			}
			e.pending = e.pos
		case cmdRLELongZero:
			for rleLength > 0 {
				n := min(rleLength, rleLongMaxLength)
				e.dst = append(e.dst, cmdRLELongZero, byte(n-2))
				rleLength -= n
				e.pos += n
			}
			e.pending = e.pos
		default:
			e.pos++
		}
	}
}

func (e *encoder) flushLiterals(n int) {
	for n > 0 {
		m := min(n, rawCopyMaxLength)
		e.dst = append(e.dst, cmdRawCopy|byte(m)&rawCopyLengthMask)
		e.dst = append(e.dst, e.src[e.pending:e.pending+m]...)
		e.pending += m
		n -= m
	}
}

// windowMatch finds the longest match in the sliding window. The nearest
// match wins among matches of equal length.
func (e *encoder) windowMatch() (offset, length int) {
	maxLength := min(len(e.src)-e.pos, windowCopyMaxLength)
	windowSize := windowSizeEfficient
	if e.mode == Accurate {
		windowSize = windowSizeAccurate
	}
	maxOffset := min(e.pos, windowSize)

	for i := 1; i <= maxOffset; i++ {
		n := 0
		for n < maxLength && e.src[e.pos-i+n] == e.src[e.pos+n] {
			n++
		}
		if n > length {
			offset, length = i, n
		}
	}
	return
}

// rleMatch returns the run of identical bytes at the current position.
func (e *encoder) rleMatch() (value byte, length int) {
	maxLength := min(len(e.src)-e.pos, rleLongMaxLength)

	nonZeroMax := rleShortMaxLength
	if e.mode == Accurate {
		// The retail compressor ends long runs where they reach
		// rleShortMaxLength bytes into a 0x400 block.
		if maxLength > rleShortMaxLength {
			for i := rleShortMaxLength + 1; i <= maxLength; i++ {
				if ((e.pos+i)&0xfff)%0x400 == rleShortMaxLength {
					maxLength = i
					break
				}
			}
		}
		nonZeroMax = rleShortMaxLength - 1
	}

	value = e.src[e.pos]
	if value != 0 {
		maxLength = min(maxLength, nonZeroMax)
	}
	for length < maxLength && e.src[e.pos+length] == value {
		length++
	}
	return
}

func (e *encoder) pick(windowLength int, rleValue byte, rleLength int) byte {
	if e.mode == Accurate {
		if windowLength >= 4 && windowLength > rleLength {
			return cmdWindowCopy
		}
	} else if windowLength >= 3 {
		return cmdWindowCopy
	}

	switch {
	case rleLength >= 3 && rleValue == 0:
		// A short zero run of rleShortMaxLength would encode as
		// cmdRLELongZero.
		if rleLength < rleShortMaxLength {
			return cmdRLEShortZero
		}
		return cmdRLELongZero
	case rleLength >= 3:
		if rleLength <= rleShortMaxLength {
			return cmdRLEShort
		}
	case rleLength == 2 && rleValue == 0:
		return cmdRLEShortZero
	}
	return cmdNone
}

// CompressedSize returns the stream length stored in the header of src.
func CompressedSize(src []byte) (int, error) {
	if len(src) < headerSize {
		return 0, ErrCorrupt
	}
	return int(binary.BigEndian.Uint32(src)), nil
}

// Decompress returns the decompressed data of the stream src. Trailing bytes
// after the length given in the header are ignored.
func Decompress(src []byte) ([]byte, error) {
	size, err := CompressedSize(src)
	if err != nil {
		return nil, err
	}
	if size > len(src) {
		return nil, fmt.Errorf("%w: stream length %#x exceeds input length %#x", ErrCorrupt, size, len(src))
	}
	src = src[:size]

	dst := make([]byte, 0, 2*len(src))
	pos := headerSize
	next := func() (byte, error) {
		if pos >= len(src) {
			return 0, fmt.Errorf("%w: truncated command at %#x", ErrCorrupt, pos)
		}
		pos++
		return src[pos-1], nil
	}

	for pos < len(src) {
		cmd := src[pos]
		pos++

		switch {
		case cmd < cmdRawCopy:
			lo, err := next()
			if err != nil {
				return nil, err
			}
			length := int(cmd&windowCopyLengthMask)>>2 + 2
			offset := (int(cmd&windowOffsetHighMask)<<8 | int(lo)) & windowOffsetMask
			if offset == 0 || offset > len(dst) {
				return nil, fmt.Errorf("%w: window offset %#x at %#x", ErrCorrupt, offset, pos-2)
			}
			for range length {
				dst = append(dst, dst[len(dst)-offset])
			}
		case cmd < 0xa0:
			length := int(cmd & rawCopyLengthMask)
			if pos+length > len(src) {
				return nil, fmt.Errorf("%w: truncated literals at %#x", ErrCorrupt, pos-1)
			}
			dst = append(dst, src[pos:pos+length]...)
			pos += length
		case cmd < cmdRLEShort:
			// unused
		case cmd < cmdRLEShortZero:
			v, err := next()
			if err != nil {
				return nil, err
			}
			dst = appendRun(dst, v, int(cmd&rleShortLengthMask)+2)
		case cmd < cmdRLELongZero:
			dst = appendRun(dst, 0, int(cmd&rleShortLengthMask)+2)
		default:
			n, err := next()
			if err != nil {
				return nil, err
			}
			dst = appendRun(dst, 0, int(n)+2)
		}
	}
	return dst, nil
}

func appendRun(dst []byte, v byte, n int) []byte {
	for range n {
		dst = append(dst, v)
	}
	return dst
}
