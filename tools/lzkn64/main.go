package lzkn64

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/nisitenma/romtools/lzkn64"
	"github.com/spf13/afero"
)

const usageString = `LZKN64 compressor.

Usage: %s [flags] <infile> <outfile>

`

var (
	flags = flag.NewFlagSet("lzkn64", flag.ExitOnError)

	compress   = flags.Bool("c", false, "compress infile")
	decompress = flags.Bool("d", false, "decompress infile")
	accurate   = flags.Bool("a", false, "compress like the retail ROMs (default)")
	efficient  = flags.Bool("e", false, "compress better, but unlike the retail ROMs")
	pad        = flags.Bool("p", false, "pad compressed output to 2 bytes")
)

func usage() {
	fmt.Fprintf(flags.Output(), usageString, "lzkn64")
	flags.PrintDefaults()
}

func Main(args []string) {
	flags.Usage = usage
	flags.Parse(args[1:])

	if flags.NArg() != 2 || *compress == *decompress || *accurate && *efficient {
		flags.Usage()
		os.Exit(1)
	}

	mode := lzkn64.Accurate
	if *efficient {
		mode = lzkn64.Efficient
	}

	fsys := afero.NewOsFs()
	if err := run(fsys, flags.Arg(0), flags.Arg(1), *compress, mode, *pad); err != nil {
		log.Fatalln(err)
	}
}

func run(fsys afero.Fs, in, out string, compress bool, mode lzkn64.Mode, pad bool) error {
	src, err := afero.ReadFile(fsys, in)
	if err != nil {
		return err
	}

	var dst []byte
	if compress {
		dst = lzkn64.Compress(src, mode)
		if n := lzkn64.Pad2(len(dst)); pad && n > len(dst) {
			dst = append(dst, make([]byte, n-len(dst))...)
		}
	} else {
		dst, err = lzkn64.Decompress(src)
		if err != nil {
			return fmt.Errorf("%s: %w", in, err)
		}
	}

	return afero.WriteFile(fsys, out, dst, 0644)
}
