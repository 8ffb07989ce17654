package rommy

import (
	"bytes"
	"encoding/binary"
	"errors"
	"strings"
	"testing"

	"github.com/nisitenma/romtools/lzkn64"
	"github.com/nisitenma/romtools/rom"
)

const tableOffset = 0x10

// testImage returns a ROM with a header, a file address table at tableOffset
// and the files packed from 0x40.
func testImage(files ...[]byte) []byte {
	image := make([]byte, 0x40)
	copy(image, "NISITENMA-ICHIGO")
	offset := uint32(len(image))
	for i, f := range files {
		binary.BigEndian.PutUint32(image[tableOffset+4*i:], offset)
		image = append(image, f...)
		offset += uint32(len(f))
	}
	binary.BigEndian.PutUint32(image[tableOffset+4*len(files):], offset)
	return image
}

var testFiles = [][]byte{
	[]byte(strings.Repeat("ichigo ", 40) + "!"),
	{},
	make([]byte, 0x200),
	{0xde, 0xad, 0xbe, 0xef},
}

func readTable(t *testing.T, image []byte) *rom.FileTable {
	t.Helper()
	table, err := rom.ReadFileTable(bytes.NewReader(image), tableOffset)
	if err != nil {
		t.Fatal(err)
	}
	return table
}

func TestRoundTrip(t *testing.T) {
	image := testImage(testFiles...)

	compressed, err := Compress(image, tableOffset, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(compressed) >= len(image) {
		t.Fatalf("expected compressed rom to be smaller, got %#x of %#x bytes", len(compressed), len(image))
	}

	table := readTable(t, compressed)
	if table.Len() != len(testFiles) {
		t.Fatalf("expected %d files, got %d", len(testFiles), table.Len())
	}
	for i, f := range testFiles {
		start, end := table.File(i)
		if want := len(f) > 0; start.Compressed() != want {
			t.Errorf("file_%d: expected compressed %v, got %v", i+1, want, start.Compressed())
		}
		if start.Compressed() && table.Size(i)%2 != 0 {
			t.Errorf("file_%d: expected padded size, got %#x", i+1, table.Size(i))
		}
		if end.Offset() > uint32(len(compressed)) {
			t.Errorf("file_%d: end %#x past rom", i+1, end.Offset())
		}
	}
	if !bytes.Equal(compressed[:tableOffset], image[:tableOffset]) {
		t.Fatal("expected header to be kept")
	}

	decompressed, err := Decompress(compressed, tableOffset, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(image, decompressed) {
		t.Fatalf("rom mismatch after round trip:\n%x\n%x", image, decompressed)
	}
}

func TestCompressReference(t *testing.T) {
	image := testImage(testFiles...)
	ref := &rom.FileTable{Entries: []rom.Entry{
		rom.NewEntry(0x40, false),
		rom.NewEntry(0x80, false),
		rom.NewEntry(0x80, true),
		rom.NewEntry(0x100, false),
		rom.NewEntry(0x110, false),
	}}

	compressed, err := Compress(image, tableOffset, Options{Reference: ref})
	if err != nil {
		t.Fatal(err)
	}
	table := readTable(t, compressed)
	for i, want := range []bool{false, false, true, false} {
		start, _ := table.File(i)
		if start.Compressed() != want {
			t.Errorf("file_%d: expected compressed %v, got %v", i+1, want, start.Compressed())
		}
	}

	start, end := table.File(0)
	if !bytes.Equal(compressed[start.Offset():end.Offset()], testFiles[0]) {
		t.Fatal("expected file_1 to be stored uncompressed")
	}
	start, end = table.File(2)
	data, err := lzkn64.Decompress(compressed[start.Offset():end.Offset()])
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(data, testFiles[2]) {
		t.Fatal("file_3 mismatch")
	}
}

func TestCompressKeepsCompressed(t *testing.T) {
	image := testImage(testFiles...)
	once, err := Compress(image, tableOffset, Options{})
	if err != nil {
		t.Fatal(err)
	}
	twice, err := Compress(once, tableOffset, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(once, twice) {
		t.Fatal("expected compressing a compressed rom to be a no-op")
	}
}

func TestPad(t *testing.T) {
	image := testImage(testFiles...)
	padded, err := Decompress(image, tableOffset, Options{Pad: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(padded) != 0x400 {
		t.Fatalf("expected %#x bytes, got %#x", 0x400, len(padded))
	}
	if !bytes.Equal(padded[:len(image)], image) {
		t.Fatal("expected rom contents to be kept")
	}
	if !bytes.Equal(padded[len(image):], make([]byte, len(padded)-len(image))) {
		t.Fatal("expected zero padding")
	}

	for n, want := range map[int]int{0: 0, 1: 1, 2: 2, 3: 4, 0x801: 0x1000, 0x1000: 0x1000} {
		if got := padSize(n); got != want {
			t.Errorf("padSize(%#x): expected %#x, got %#x", n, want, got)
		}
	}
}

func TestErrors(t *testing.T) {
	image := testImage(testFiles...)
	corrupt := testImage([]byte{0, 0, 0, 0x10, 0x81})
	binary.BigEndian.PutUint32(corrupt[tableOffset:], 0x8000_0040)
	pastEnd := testImage(testFiles...)
	binary.BigEndian.PutUint32(pastEnd[tableOffset+4:], 0x1000)

	tests := map[string]struct {
		image  []byte
		offset int64
		err    error
	}{
		"table":    {image, int64(len(image)), rom.ErrOutOfRange},
		"empty":    {make([]byte, 0x40), tableOffset, ErrEmptyTable},
		"corrupt":  {corrupt, tableOffset, lzkn64.ErrCorrupt},
		"pastend":  {pastEnd, tableOffset, rom.ErrOutOfRange},
		"toolarge": {make([]byte, MaxSize+1), tableOffset, ErrTooLarge},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Decompress(tc.image, tc.offset, Options{})
			if !errors.Is(err, tc.err) {
				t.Fatalf("expected %v, got %v", tc.err, err)
			}
		})
	}
}
