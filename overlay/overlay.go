// Package overlay derives splat segment definitions from the file address
// table and the file segment table of a ROM.
//
// Every file is described as an overlay: its ROM offset, load address and,
// when the segment in memory is larger than the file, the size of the bss
// section following it. Files loaded to the same memory are grouped by an
// exclusive RAM id, so splat doesn't report them as overlapping.
package overlay

import (
	"fmt"
	"io"

	"github.com/nisitenma/romtools/rom"
)

// Descriptor describes a single non-empty file of the ROM.
type Descriptor struct {
	Number int // 1-based file number

	ROMStart uint32
	ROMEnd   uint32
	VRAM     rom.Segment

	Size    int64 // size in ROM
	BSSSize int64 // zero if there is no bss section

	Code           bool
	ExclusiveRAMID string
}

// Name returns the segment name of the file.
func (d *Descriptor) Name() string {
	return fmt.Sprintf("file_%d", d.Number)
}

func (d *Descriptor) HasBSS() bool {
	return d.BSSSize > 0
}

// BSSStart returns the load address of the bss section.
func (d *Descriptor) BSSStart() int64 {
	return int64(d.VRAM.Start) + d.Size
}

// Describe reads the file address table at fat and the file segment table at
// fst and returns a descriptor for each non-empty file, in file order.
func Describe(r io.ReaderAt, fat, fst int64, p *Profile) ([]Descriptor, error) {
	table, err := rom.ReadFileTable(r, fat)
	if err != nil {
		return nil, err
	}

	var descs []Descriptor
	for i := range table.Len() {
		if table.Empty(i) {
			continue
		}

		seg, err := rom.ReadSegment(r, fst, i)
		if err != nil {
			return nil, fmt.Errorf("file segment table: %w", err)
		}

		descs = append(descs, describe(table, i, seg, p))
	}
	return descs, nil
}

func describe(table *rom.FileTable, i int, seg rom.Segment, p *Profile) Descriptor {
	start, end := table.File(i)
	d := Descriptor{
		Number:   i + 1,
		ROMStart: start.Offset(),
		ROMEnd:   end.Offset(),
		VRAM:     seg,
		Size:     table.Size(i),
		Code:     p.IsCode(i + 1),
	}
	if seg.Size() > d.Size {
		d.BSSSize = seg.Size() - d.Size
	}
	d.ExclusiveRAMID = p.Classify(d.Code, seg.Start)
	return d
}
