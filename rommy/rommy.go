// Package rommy compresses and decompresses all files of a ROM.
//
// Files are packed back to back starting at the offset of the first file and
// the file address table is rewritten to match. Data before the first file is
// kept, data after the last file is dropped.
package rommy

import (
	"bytes"
	"errors"
	"fmt"
	"math/bits"

	"github.com/nisitenma/romtools/lzkn64"
	"github.com/nisitenma/romtools/rom"
)

// MaxSize is the largest ROM supported by the cartridge bus (512 Mbit).
const MaxSize = 0x400_0000

var (
	ErrTooLarge   = errors.New("rommy: rom exceeds maximum size")
	ErrEmptyTable = errors.New("rommy: empty file address table")
)

type Options struct {
	// Reference is the file address table of a retail ROM. If set, only
	// files compressed in the reference are compressed.
	Reference *rom.FileTable

	// Mode is the compressor used for files.
	Mode lzkn64.Mode

	// Pad pads the ROM with zeros to the next power of two.
	Pad bool
}

// convertFunc returns the new contents of the i-th file and whether it's
// stored compressed.
type convertFunc func(i int, data []byte, compressed bool) ([]byte, bool, error)

// Decompress decompresses all compressed files of image, whose file address
// table is at tableOffset.
func Decompress(image []byte, tableOffset int64, opts Options) ([]byte, error) {
	return rebuild(image, tableOffset, opts, func(i int, data []byte, compressed bool) ([]byte, bool, error) {
		if !compressed || len(data) == 0 {
			return data, false, nil
		}
		out, err := lzkn64.Decompress(data)
		if err != nil {
			return nil, false, fmt.Errorf("file_%d: %w", i+1, err)
		}
		return out, false, nil
	})
}

// Compress compresses all uncompressed files of image, whose file address
// table is at tableOffset.
func Compress(image []byte, tableOffset int64, opts Options) ([]byte, error) {
	return rebuild(image, tableOffset, opts, func(i int, data []byte, compressed bool) ([]byte, bool, error) {
		if compressed || len(data) == 0 {
			return data, compressed, nil
		}
		if ref := opts.Reference; ref != nil {
			if i >= ref.Len() || !ref.Entries[i].Compressed() {
				return data, false, nil
			}
		}
		out := lzkn64.Compress(data, opts.Mode)
		if n := lzkn64.Pad2(len(out)); n > len(out) {
			out = append(out, make([]byte, n-len(out))...)
		}
		return out, true, nil
	})
}

func rebuild(image []byte, tableOffset int64, opts Options, convert convertFunc) ([]byte, error) {
	if len(image) > MaxSize {
		return nil, ErrTooLarge
	}

	table, err := rom.ReadFileTable(bytes.NewReader(image), tableOffset)
	if err != nil {
		return nil, err
	}
	if table.Len() == 0 {
		return nil, ErrEmptyTable
	}

	base := table.Entries[0].Offset()
	if int64(base) > int64(len(image)) {
		return nil, fmt.Errorf("%w: file_1 at %#x", rom.ErrOutOfRange, base)
	}
	out := bytes.NewBuffer(make([]byte, 0, len(image)))
	out.Write(image[:base])

	newTable := &rom.FileTable{Entries: make([]rom.Entry, len(table.Entries))}
	for i := range table.Len() {
		start, end := table.File(i)
		if start.Offset() > end.Offset() || int64(end.Offset()) > int64(len(image)) {
			return nil, fmt.Errorf("%w: file_%d at %#x-%#x", rom.ErrOutOfRange, i+1, start.Offset(), end.Offset())
		}

		data, compressed, err := convert(i, image[start.Offset():end.Offset()], start.Compressed())
		if err != nil {
			return nil, err
		}
		if out.Len()+len(data) > MaxSize {
			return nil, ErrTooLarge
		}
		newTable.Entries[i] = rom.NewEntry(uint32(out.Len()), compressed)
		out.Write(data)
	}
	newTable.Entries[table.Len()] = rom.NewEntry(uint32(out.Len()), false)

	if opts.Pad {
		out.Write(make([]byte, padSize(out.Len())-out.Len()))
	}

	result := out.Bytes()
	if tableOffset+int64(4*len(newTable.Entries)) > int64(len(result)) {
		return nil, fmt.Errorf("%w: file address table at %#x", rom.ErrOutOfRange, tableOffset)
	}
	err = rom.WriteFileTable(writerAt(result), tableOffset, newTable)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// padSize returns the next power of two not less than n.
func padSize(n int) int {
	if n <= 1 || n&(n-1) == 0 {
		return n
	}
	return 1 << bits.Len(uint(n))
}

type writerAt []byte

func (w writerAt) WriteAt(p []byte, off int64) (int, error) {
	return copy(w[off:], p), nil
}
