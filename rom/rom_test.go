package rom

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func words(v ...uint32) []byte {
	b := make([]byte, 4*len(v))
	for i, w := range v {
		binary.BigEndian.PutUint32(b[4*i:], w)
	}
	return b
}

func TestReadFileTable(t *testing.T) {
	tests := map[string]struct {
		data    []byte
		off     int64
		entries []Entry
		err     error
	}{
		"plain":        {words(0x100, 0x200, 0x300, 0), 0, []Entry{{0x100}, {0x200}, {0x300}}, nil},
		"offset":       {words(0xdead, 0x100, 0x200, 0), 4, []Entry{{0x100}, {0x200}}, nil},
		"flagged":      {words(0x8000_0100, 0x200, 0), 0, []Entry{{0x8000_0100}, {0x200}}, nil},
		"empty":        {words(0), 0, nil, nil},
		"unterminated": {words(0x100, 0x200), 0, nil, ErrOutOfRange},
		"truncated":    {append(words(0x100), 0, 0), 0, nil, ErrOutOfRange},
		"past end":     {words(0x100, 0), 16, nil, ErrOutOfRange},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			table, err := ReadFileTable(bytes.NewReader(tc.data), tc.off)
			if !errors.Is(err, tc.err) {
				t.Fatalf("expected %v, got %v", tc.err, err)
			}
			if err != nil {
				return
			}
			if diff := cmp.Diff(tc.entries, table.Entries); diff != "" {
				t.Fatalf("entries mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEntry(t *testing.T) {
	e := Entry{0x8012_3456}
	if e.Offset() != 0x12_3456 {
		t.Fatalf("expected offset %#x, got %#x", 0x12_3456, e.Offset())
	}
	if !e.Compressed() {
		t.Fatal("expected compressed entry")
	}
	if NewEntry(0x12_3456, true) != e {
		t.Fatalf("expected %#x, got %#x", e.Raw, NewEntry(0x12_3456, true).Raw)
	}
	if NewEntry(0x8012_3456, false).Compressed() {
		t.Fatal("expected flag to be cleared")
	}
	if Normalize(0xffff_ffff) != 0x7fff_ffff {
		t.Fatalf("expected %#x, got %#x", 0x7fff_ffff, Normalize(0xffff_ffff))
	}
}

func TestFileTable(t *testing.T) {
	table := &FileTable{[]Entry{{0x100}, {0x8000_0200}, {0x200}, {0x300}}}
	if table.Len() != 3 {
		t.Fatalf("expected 3 files, got %d", table.Len())
	}
	sizes := []int64{0x100, 0, 0x100}
	empty := []bool{false, true, false}
	for i := range table.Len() {
		if table.Size(i) != sizes[i] {
			t.Errorf("file %d: expected size %#x, got %#x", i, sizes[i], table.Size(i))
		}
		if table.Empty(i) != empty[i] {
			t.Errorf("file %d: expected empty %v, got %v", i, empty[i], table.Empty(i))
		}
	}
	if (&FileTable{}).Len() != 0 {
		t.Fatal("expected empty table to have no files")
	}
}

type writerAt []byte

func (w writerAt) WriteAt(p []byte, off int64) (int, error) {
	return copy(w[off:], p), nil
}

func TestWriteFileTable(t *testing.T) {
	buf := make(writerAt, 20)
	table := &FileTable{[]Entry{NewEntry(0x100, true), NewEntry(0x180, false)}}
	if err := WriteFileTable(buf, 4, table); err != nil {
		t.Fatal(err)
	}
	want := words(0, 0x8000_0100, 0x180, 0, 0)
	if !bytes.Equal(buf, want) {
		t.Fatalf("expected %x, got %x", want, []byte(buf))
	}
	read, err := ReadFileTable(bytes.NewReader(buf), 4)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(table, read); diff != "" {
		t.Fatalf("table mismatch (-want +got):\n%s", diff)
	}
}

func TestReadSegments(t *testing.T) {
	data := words(0xffff_ffff, 0, 0x10_0000, 0x8000_0000, 0x8000_1000)
	segments, err := ReadSegments(bytes.NewReader(data), 4, 2)
	if err != nil {
		t.Fatal(err)
	}
	want := []Segment{{0, 0x10_0000}, {0x8000_0000, 0x8000_1000}}
	if diff := cmp.Diff(want, segments); diff != "" {
		t.Fatalf("segments mismatch (-want +got):\n%s", diff)
	}

	s, err := ReadSegment(bytes.NewReader(data), 4, 1)
	if err != nil {
		t.Fatal(err)
	}
	if s != want[1] {
		t.Fatalf("expected %v, got %v", want[1], s)
	}

	_, err = ReadSegments(bytes.NewReader(data), 4, 3)
	if !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected %v, got %v", ErrOutOfRange, err)
	}
	_, err = ReadSegment(bytes.NewReader(data), 4, 2)
	if !errors.Is(err, ErrOutOfRange) {
		t.Fatalf("expected %v, got %v", ErrOutOfRange, err)
	}

	segments, err = ReadSegments(bytes.NewReader(data), 4, 0)
	if err != nil || len(segments) != 0 {
		t.Fatalf("expected no segments, got %v, %v", segments, err)
	}
}

func TestReadSegmentsCount(t *testing.T) {
	data := make([]byte, 0x20)
	tests := map[string]struct {
		off int64
		n   int
	}{
		"negative": {0, -1},
		"negoff":   {-8, 1},
		"wrap":     {0, 1 << 61},
		"huge":     {0, 1 << 40},
		"maxint":   {8, math.MaxInt},
		"pastend":  {0x18, 2},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ReadSegments(bytes.NewReader(data), tc.off, tc.n)
			if !errors.Is(err, ErrOutOfRange) {
				t.Fatalf("expected %v, got %v", ErrOutOfRange, err)
			}
		})
	}
}

func TestTLBMapped(t *testing.T) {
	tests := map[string]struct {
		start uint32
		tlb   bool
	}{
		"zero":   {0x0000_0000, true},
		"kuseg":  {0x7fff_ffff, true},
		"kseg0":  {0x8000_0000, false},
		"kseg1":  {0xa000_0000, false},
		"tlbovl": {0x0800_0000, true},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			s := Segment{Start: tc.start, End: tc.start + 0x10}
			if s.TLBMapped() != tc.tlb {
				t.Fatalf("expected %v, got %v", tc.tlb, s.TLBMapped())
			}
		})
	}
}
