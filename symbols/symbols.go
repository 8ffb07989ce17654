// Package symbols converts symbol maps to linker script assignments.
//
// A symbol map has one symbol per line, an address in hexadecimal without
// prefix followed by a space and the symbol name:
//
//	80001000 foo
//
// which is converted to
//
//	foo = 0x80001000;
package symbols

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"
)

var ErrMalformed = errors.New("malformed symbol line")

// Entry is a single line of a symbol map. The address is kept as written, so
// it's reproduced without reformatting.
type Entry struct {
	Addr string
	Name string
}

// Parse splits a line into address and name at the first space.
func Parse(line string) (Entry, error) {
	addr, name, found := strings.Cut(line, " ")
	if !found {
		return Entry{}, fmt.Errorf("%w: %q", ErrMalformed, line)
	}
	return Entry{Addr: addr, Name: name}, nil
}

func (e Entry) String() string {
	return fmt.Sprintf("%s = 0x%s;", e.Name, e.Addr)
}

// Convert reads a symbol map from r and writes an assignment per symbol to w.
// Empty lines are skipped. On a malformed line, the symbols before it have
// been written.
func Convert(w io.Writer, r io.Reader) error {
	bw := bufio.NewWriter(w)
	scanner := bufio.NewScanner(r)
	for lineno := 1; scanner.Scan(); lineno++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		e, err := Parse(line)
		if err != nil {
			bw.Flush()
			return fmt.Errorf("line %d: %w", lineno, err)
		}
		fmt.Fprintln(bw, e)
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return bw.Flush()
}

// ConvertFile is like Convert, but reads the symbol map from path.
func ConvertFile(w io.Writer, fsys afero.Fs, path string) error {
	f, err := fsys.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return Convert(w, f)
}
