package romfs

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sync"
	"time"

	"github.com/nisitenma/romtools/lzkn64"
)

// dotFile is the root directory, which isn't part of the files list.
var dotFile = &File{number: -1}

// File describes a single file of the ROM.
type File struct {
	number     int
	offset     int64
	stored     int64
	compressed bool
	dev        io.ReaderAt

	once sync.Once
	data []byte // decompressed contents
	err  error
}

var (
	_ fs.FileInfo = (*File)(nil)
	_ fs.DirEntry = (*File)(nil)
)

func (f *File) ModTime() time.Time         { return time.Time{} }
func (f *File) IsDir() bool                { return f == dotFile }
func (f *File) Sys() any                   { return nil }
func (f *File) Type() fs.FileMode          { return f.Mode().Type() }
func (f *File) Info() (fs.FileInfo, error) { return f, nil }

func (f *File) Name() string {
	if f.IsDir() {
		return "."
	}
	return fmt.Sprintf("file_%d", f.number)
}

func (f *File) Mode() fs.FileMode {
	if f.IsDir() {
		return fs.ModeDir | 0555
	}
	return 0444
}

// Size returns the size of the file's contents. For compressed files this
// decompresses the file, falling back to the stored size if it's corrupt.
func (f *File) Size() int64 {
	if !f.compressed {
		return f.stored
	}
	if data, err := f.decompress(); err == nil {
		return int64(len(data))
	}
	return f.stored
}

func (f *File) String() string {
	return fs.FormatFileInfo(f)
}

// Number returns the 1-based slot of the file in the file address table.
func (f *File) Number() int { return f.number }

// Offset returns the ROM offset of the file's stored data.
func (f *File) Offset() int64 { return f.offset }

// StoredSize returns the number of bytes the file occupies in the ROM.
func (f *File) StoredSize() int64 { return f.stored }

// Compressed reports whether the file is stored lzkn64 compressed.
func (f *File) Compressed() bool { return f.compressed }

func (f *File) open() (*io.SectionReader, error) {
	if !f.compressed {
		return io.NewSectionReader(f.dev, f.offset, f.stored), nil
	}
	data, err := f.decompress()
	if err != nil {
		return nil, err
	}
	r := bytes.NewReader(data)
	return io.NewSectionReader(r, 0, r.Size()), nil
}

func (f *File) decompress() ([]byte, error) {
	f.once.Do(func() {
		buf := make([]byte, f.stored)
		n, err := f.dev.ReadAt(buf, f.offset)
		if n < len(buf) {
			if err == nil || err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			f.err = err
			return
		}
		f.data, f.err = lzkn64.Decompress(buf)
	})
	return f.data, f.err
}

// An openFile is a regular file open for reading.
type openFile struct {
	*io.SectionReader
	f *File // the file itself
}

func (f *openFile) Close() error               { return nil }
func (f *openFile) Stat() (fs.FileInfo, error) { return f.f, nil }

// An openDir is a directory open for reading. files shrinks as entries are
// read.
type openDir struct {
	f     *File
	files []*File
}

func (d *openDir) Close() error               { return nil }
func (d *openDir) Stat() (fs.FileInfo, error) { return d.f, nil }

func (d *openDir) Read([]byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.f.Name(), Err: errors.New("is a directory")}
}

func (d *openDir) ReadDir(count int) ([]fs.DirEntry, error) {
	if count > 0 && len(d.files) == 0 {
		return nil, io.EOF
	}
	n := len(d.files)
	if count > 0 {
		n = min(n, count)
	}
	list := make([]fs.DirEntry, n)
	for i, f := range d.files[:n] {
		list[i] = f
	}
	d.files = d.files[n:]
	return list, nil
}
