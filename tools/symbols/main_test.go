package symbols

import (
	"bytes"
	"errors"
	"io/fs"
	"testing"

	"github.com/nisitenma/romtools/symbols"
	"github.com/spf13/afero"
)

func TestRun(t *testing.T) {
	fsys := afero.NewMemMapFs()
	err := afero.WriteFile(fsys, "ichigo.sym", []byte("80001000 foo\n80001004 bar\n80001008\n"), 0644)
	if err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	err = run(&out, fsys, "ichigo.sym")
	if !errors.Is(err, symbols.ErrMalformed) {
		t.Fatalf("expected %v, got %v", symbols.ErrMalformed, err)
	}
	if want := "foo = 0x80001000;\nbar = 0x80001004;\n"; out.String() != want {
		t.Fatalf("expected %q, got %q", want, out.String())
	}

	out.Reset()
	err = run(&out, fsys, "missing.sym")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected %v, got %v", fs.ErrNotExist, err)
	}
	if out.Len() != 0 {
		t.Fatalf("expected no output, got %q", out.String())
	}
}
