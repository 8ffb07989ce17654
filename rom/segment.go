package rom

import (
	"encoding/binary"
	"io"
	"math"
)

const segmentSize = 8

// Segment is an entry of the file segment table: the virtual address range a
// file is loaded to.
type Segment struct {
	Start, End uint32
}

// Size returns the size of the segment in memory.
func (s Segment) Size() int64 {
	return int64(s.End) - int64(s.Start)
}

// TLBMapped reports whether the segment starts in the TLB mapped user
// segment (KUSEG), i.e. below KSEG0.
func (s Segment) TLBMapped() bool {
	return s.Start <= 0x7fff_ffff
}

// ReadSegment reads the i-th entry of the segment table at off.
func ReadSegment(r io.ReaderAt, off int64, i int) (s Segment, err error) {
	var buf [segmentSize]byte
	err = readFull(r, buf[:], off+int64(i)*segmentSize)
	if err != nil {
		return
	}
	s.Start = binary.BigEndian.Uint32(buf[0:])
	s.End = binary.BigEndian.Uint32(buf[4:])
	return
}

// ReadSegments reads n consecutive entries of the segment table at off.
func ReadSegments(r io.ReaderAt, off int64, n int) ([]Segment, error) {
	if off < 0 || n < 0 || int64(n) > (math.MaxInt64-off)/segmentSize {
		return nil, ErrOutOfRange
	}
	// The table must end inside r before it's allocated.
	if n > 0 {
		var last [1]byte
		if err := readFull(r, last[:], off+int64(n)*segmentSize-1); err != nil {
			return nil, err
		}
	}
	buf := make([]byte, n*segmentSize)
	if err := readFull(r, buf, off); err != nil {
		return nil, err
	}
	segments := make([]Segment, n)
	for i := range segments {
		segments[i].Start = binary.BigEndian.Uint32(buf[i*segmentSize:])
		segments[i].End = binary.BigEndian.Uint32(buf[i*segmentSize+4:])
	}
	return segments, nil
}
