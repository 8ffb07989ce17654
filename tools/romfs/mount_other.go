//go:build !(linux || darwin)

package romfs

import (
	"errors"
	"os"

	"github.com/nisitenma/romtools/romfs"
)

func mount(fsys *romfs.FS, dir string, sigintr <-chan os.Signal) error {
	return errors.New("mount not supported on this platform")
}
