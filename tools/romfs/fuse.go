//go:build linux || darwin

package romfs

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"os/exec"
	"syscall"

	"github.com/nisitenma/romtools/romfs"
	"rsc.io/rsc/fuse"
)

func mount(fsys *romfs.FS, dir string, sigintr <-chan os.Signal) error {
	c, err := fuse.Mount(dir)
	if err != nil {
		return err
	}

	go c.Serve(&fusefs{fsys})
	<-sigintr

	cmd := exec.Command("/bin/umount", dir)
	_, err = cmd.CombinedOutput()
	return err
}

// fusefs implements the file system and the root dir Node.
type fusefs struct {
	romfs *romfs.FS
}

func (p *fusefs) Root() (fuse.Node, fuse.Error) {
	return p, nil
}

func (p *fusefs) Attr() fuse.Attr {
	return fuse.Attr{Mode: fs.ModeDir | 0555}
}

func (p *fusefs) Lookup(name string, intr fuse.Intr) (fuse.Node, fuse.Error) {
	f, err := p.romfs.Open(name)
	if err != nil {
		return nil, errno(err)
	}
	defer f.Close()
	stat, err := f.Stat()
	if err != nil {
		return nil, errno(err)
	}
	file, ok := stat.(*romfs.File)
	if !ok || file.IsDir() {
		return p, nil
	}
	return &fusefile{file, p.romfs}, nil
}

func (p *fusefs) ReadDir(intr fuse.Intr) ([]fuse.Dirent, fuse.Error) {
	entries, err := p.romfs.ReadDir(".")
	if err != nil {
		return nil, errno(err)
	}
	fuseEntries := make([]fuse.Dirent, len(entries))
	for i, v := range entries {
		fuseEntries[i] = fuse.Dirent{
			Name: v.Name(),
		}
	}
	return fuseEntries, nil
}

// fusefile implements both Node and Handle.
type fusefile struct {
	*romfs.File

	romfs *romfs.FS
}

func (p *fusefile) Attr() fuse.Attr {
	return fuse.Attr{
		Mode:  p.Mode(),
		Mtime: p.ModTime(),
		Size:  uint64(p.Size()),
	}
}

func (p *fusefile) ReadAll(intr fuse.Intr) ([]byte, fuse.Error) {
	b, err := p.romfs.ReadFile(p.Name())
	if err != nil {
		log.Println("read:", err)
		return nil, errno(err)
	}
	return b, nil
}

func errno(err error) fuse.Error {
	if errors.Is(err, fs.ErrInvalid) {
		return fuse.Errno(syscall.EINVAL)
	} else if errors.Is(err, fs.ErrNotExist) {
		return fuse.Errno(syscall.ENOENT)
	} else {
		return fuse.EIO
	}
}
