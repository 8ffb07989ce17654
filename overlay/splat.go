package overlay

import (
	"bufio"
	"fmt"
	"io"

	"golang.org/x/exp/constraints"
)

// hex formats v the way splat configs are written by hand: lowercase prefix,
// uppercase digits, no padding.
func hex[T constraints.Integer](v T) string {
	if v < 0 {
		v = -v
	}
	return fmt.Sprintf("0x%X", v)
}

// WriteSplat writes one splat segment entry per descriptor to w. The output is
// meant to be pasted into the segments list of a splat config.
func WriteSplat(w io.Writer, descs []Descriptor) error {
	bw := bufio.NewWriter(w)
	for i := range descs {
		writeSegment(bw, &descs[i])
	}
	return bw.Flush()
}

func writeSegment(w *bufio.Writer, d *Descriptor) {
	subsegment := "databin"
	if d.Code {
		subsegment = "asm"
	}

	fmt.Fprintf(w, "- name: %s\n", d.Name())
	fmt.Fprintf(w, "  type: code\n")
	fmt.Fprintf(w, "  start: %s\n", hex(d.ROMStart))
	fmt.Fprintf(w, "  vram: %s\n", hex(d.VRAM.Start))
	if d.HasBSS() {
		fmt.Fprintf(w, "  bss_size: %s\n", hex(d.BSSSize))
	}
	fmt.Fprintf(w, "  subalign: 16\n")
	fmt.Fprintf(w, "  overlay: yes\n")
	fmt.Fprintf(w, "  exclusive_ram_id: %s\n", d.ExclusiveRAMID)
	fmt.Fprintf(w, "  subsegments:\n")
	fmt.Fprintf(w, "  - [%s, %s]\n", hex(d.ROMStart), subsegment)
	if d.HasBSS() {
		fmt.Fprintf(w, "\n")
		fmt.Fprintf(w, "  - { start: %s, type: bss, vram: %s }\n", hex(d.ROMEnd), hex(d.BSSStart()))
	}
	fmt.Fprintf(w, "\n")
}
