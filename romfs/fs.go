// Package romfs provides read-only access to the files of a ROM.
//
// Every non-empty slot of the file address table shows up as file_<n> in a
// flat root directory, n being the 1-based slot number. Compressed files are
// decompressed when opened, so they read back as the game sees them.
package romfs

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"slices"
	"strings"

	"github.com/nisitenma/romtools/rom"
)

type FS struct {
	dev   io.ReaderAt
	files []*File // sorted by name
}

var (
	_ fs.ReadDirFS  = (*FS)(nil)
	_ fs.ReadFileFS = (*FS)(nil)
)

// New returns the file system of the files listed in table, read from dev.
func New(dev io.ReaderAt, table *rom.FileTable) (*FS, error) {
	fsys := &FS{dev: dev}
	for i := range table.Len() {
		if table.Empty(i) {
			continue
		}
		start, end := table.File(i)
		if start.Offset() > end.Offset() {
			return nil, fmt.Errorf("%w: file_%d at %#x-%#x", rom.ErrOutOfRange, i+1, start.Offset(), end.Offset())
		}
		fsys.files = append(fsys.files, &File{
			number:     i + 1,
			offset:     int64(start.Offset()),
			stored:     table.Size(i),
			compressed: start.Compressed(),
			dev:        dev,
		})
	}
	slices.SortFunc(fsys.files, func(a, b *File) int {
		return strings.Compare(a.Name(), b.Name())
	})
	return fsys, nil
}

// Files returns the files in ROM order.
func (f *FS) Files() []*File {
	list := slices.Clone(f.files)
	slices.SortFunc(list, func(a, b *File) int { return a.number - b.number })
	return list
}

// Open opens the named file for reading and returns it as an [fs.File].
//
// Regular files implement [io.Seeker] and [io.ReaderAt].
func (f *FS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	if name == "." {
		return &openDir{f: dotFile, files: f.files}, nil
	}
	file := f.lookup(name)
	if file == nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	r, err := file.open()
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	return &openFile{r, file}, nil
}

// ReadDir reads and returns the entire named directory.
func (f *FS) ReadDir(name string) ([]fs.DirEntry, error) {
	file, err := f.Open(name)
	if err != nil {
		return nil, err
	}
	dir, ok := file.(*openDir)
	if !ok {
		return nil, &fs.PathError{Op: "read", Path: name, Err: errors.New("not a directory")}
	}
	return dir.ReadDir(-1)
}

// ReadFile reads and returns the content of the named file.
func (f *FS) ReadFile(name string) ([]byte, error) {
	file, err := f.Open(name)
	if err != nil {
		return nil, err
	}
	ofile, ok := file.(*openFile)
	if !ok {
		return nil, &fs.PathError{Op: "read", Path: name, Err: errors.New("is a directory")}
	}
	return io.ReadAll(ofile)
}

// lookup returns the named file, or nil if it is not present.
func (f *FS) lookup(name string) *File {
	i, found := slices.BinarySearchFunc(f.files, name, func(e *File, s string) int {
		return strings.Compare(e.Name(), s)
	})
	if found {
		return f.files[i]
	}
	return nil
}
