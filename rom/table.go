// Package rom reads the file tables of a Nisitenma-Ichigo ROM image.
//
// The file address table is a sequence of big-endian 32-bit words, one per
// file, terminated by a zero word. Bit 31 of a word flags the file starting
// at that offset as lzkn64 compressed, the remaining bits are the ROM
// offset. The last word before the terminator is not a file but the end of
// the previous one.
//
// The file segment table holds one (start, end) pair of virtual addresses per
// file, in the same order as the file address table.
package rom

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

var ErrOutOfRange = errors.New("read past end of rom")

const (
	compressedFlag = 1 << 31
	offsetMask     = compressedFlag - 1
)

// Normalize clears the flag bit of a raw table word.
func Normalize(raw uint32) uint32 {
	return raw & offsetMask
}

// Entry is a single word of the file address table.
type Entry struct {
	Raw uint32
}

// Offset returns the ROM offset of the entry.
func (e Entry) Offset() uint32 { return Normalize(e.Raw) }

// Compressed reports whether the file starting at the entry is compressed.
func (e Entry) Compressed() bool { return e.Raw&compressedFlag != 0 }

// NewEntry returns an entry for offset with the compressed flag set as
// requested.
func NewEntry(offset uint32, compressed bool) Entry {
	e := Entry{Normalize(offset)}
	if compressed {
		e.Raw |= compressedFlag
	}
	return e
}

// FileTable is the file address table without its terminator.
type FileTable struct {
	Entries []Entry
}

// Len returns the number of files, which is one less than the number of
// entries.
func (t *FileTable) Len() int {
	return max(len(t.Entries)-1, 0)
}

// File returns start and end entries of the i-th file (0-based).
func (t *FileTable) File(i int) (start, end Entry) {
	return t.Entries[i], t.Entries[i+1]
}

// Size returns the stored size of the i-th file. It's negative if the table
// is malformed.
func (t *FileTable) Size(i int) int64 {
	start, end := t.File(i)
	return int64(end.Offset()) - int64(start.Offset())
}

// Empty reports whether the i-th file slot has no data.
func (t *FileTable) Empty(i int) bool {
	start, end := t.File(i)
	return start.Offset() == end.Offset()
}

// ReadFileTable reads the file address table at off until the terminating
// zero word.
func ReadFileTable(r io.ReaderAt, off int64) (*FileTable, error) {
	t := &FileTable{}
	var buf [4]byte
	for {
		raw, err := readUint32(r, off, buf[:])
		if err != nil {
			return nil, fmt.Errorf("file address table: %w", err)
		}
		if raw == 0 {
			break
		}
		t.Entries = append(t.Entries, Entry{raw})
		off += 4
	}
	return t, nil
}

// WriteFileTable writes the entries at off. The terminator is expected to be
// in place already, since the number of entries never changes.
func WriteFileTable(w io.WriterAt, off int64, t *FileTable) error {
	buf := make([]byte, 4*len(t.Entries))
	for i, e := range t.Entries {
		binary.BigEndian.PutUint32(buf[4*i:], e.Raw)
	}
	_, err := w.WriteAt(buf, off)
	return err
}

func readUint32(r io.ReaderAt, off int64, buf []byte) (uint32, error) {
	if off < 0 {
		return 0, ErrOutOfRange
	}
	if err := readFull(r, buf[:4], off); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(buf), nil
}

// readFull reads len(buf) bytes at off, reporting short reads as
// ErrOutOfRange.
func readFull(r io.ReaderAt, buf []byte, off int64) error {
	n, err := r.ReadAt(buf, off)
	if n == len(buf) {
		return nil
	}
	if err == nil || err == io.EOF || err == io.ErrUnexpectedEOF {
		return fmt.Errorf("%w: offset %#x", ErrOutOfRange, off)
	}
	return err
}
