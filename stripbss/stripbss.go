// Package stripbss removes bss related lines from splat configs.
package stripbss

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/text/cases"
)

const marker = "bss"

// Keep reports whether line doesn't mention bss, ignoring case.
func Keep(line string) bool {
	return !strings.Contains(cases.Fold().String(line), marker)
}

// Filter copies r to w, dropping lines that mention bss. Line endings are
// preserved.
func Filter(w io.Writer, r io.Reader) error {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" && Keep(line) {
			if _, werr := io.WriteString(w, line); werr != nil {
				return werr
			}
		}
		if err == io.EOF {
			return nil
		} else if err != nil {
			return err
		}
	}
}

// Strip rewrites the file at path without the lines mentioning bss. The file
// is truncated before writing, there is no backup.
func Strip(fsys afero.Fs, path string) error {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return err
	}

	var out bytes.Buffer
	if err := Filter(&out, bytes.NewReader(data)); err != nil {
		return err
	}

	f, err := fsys.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return err
	}
	if _, err := f.Write(out.Bytes()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
