package symbols

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/nisitenma/romtools/symbols"
	"github.com/spf13/afero"
)

const usageString = `Symbol map to linker script converter.

Reads "<address> <name>" lines and prints "<name> = 0x<address>;".

Usage: %s <symbol_map>

`

var flags = flag.NewFlagSet("symbols", flag.ExitOnError)

func usage() {
	fmt.Fprintf(flags.Output(), usageString, "symbols")
	flags.PrintDefaults()
}

func Main(args []string) {
	flags.Usage = usage
	flags.Parse(args[1:])

	if flags.NArg() != 1 {
		flags.Usage()
		os.Exit(1)
	}

	if err := run(os.Stdout, afero.NewOsFs(), flags.Arg(0)); err != nil {
		log.Fatalln(err)
	}
}

// run flushes the symbols converted so far even if conversion fails.
func run(w io.Writer, fsys afero.Fs, path string) error {
	bw := bufio.NewWriter(w)
	err := symbols.ConvertFile(bw, fsys, path)
	if ferr := bw.Flush(); err == nil {
		err = ferr
	}
	return err
}
