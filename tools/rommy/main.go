package rommy

import (
	"bytes"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/nisitenma/romtools/lzkn64"
	"github.com/nisitenma/romtools/rom"
	"github.com/nisitenma/romtools/rommy"
	"github.com/spf13/afero"
)

const usageString = `ROM compressor.

Compresses or decompresses all files of a ROM and rewrites its file address
table. The table offset accepts 0x prefixed hex.

Usage: %s -i <infile> -o <outfile> (-c|-d) -a <offset> [-r <reference>] [-e] [-p]

`

var (
	flags = flag.NewFlagSet("rommy", flag.ExitOnError)

	infile     = flags.String("i", "", "input ROM")
	outfile    = flags.String("o", "", "output ROM")
	reference  = flags.String("r", "", "retail ROM, only files compressed there are compressed")
	compress   = flags.Bool("c", false, "compress all files")
	decompress = flags.Bool("d", false, "decompress all files")
	offset     = flags.String("a", "", "offset of the file address table")
	efficient  = flags.Bool("e", false, "compress better, but unlike the retail ROMs")
	pad        = flags.Bool("p", false, "pad the output to the next power of two")
)

func usage() {
	fmt.Fprintf(flags.Output(), usageString, "rommy")
	flags.PrintDefaults()
}

func Main(args []string) {
	flags.Usage = usage
	flags.Parse(args[1:])

	if flags.NArg() != 0 || *infile == "" || *outfile == "" || *offset == "" || *compress == *decompress {
		flags.Usage()
		os.Exit(1)
	}
	tableOffset, err := strconv.ParseInt(*offset, 0, 64)
	if err != nil {
		log.Fatalln("file address table:", err)
	}

	opts := rommy.Options{Pad: *pad}
	if *efficient {
		opts.Mode = lzkn64.Efficient
	}

	fsys := afero.NewOsFs()
	if *reference != "" {
		opts.Reference, err = readReference(fsys, *reference, tableOffset)
		if err != nil {
			log.Fatalln(err)
		}
	}

	if err := run(fsys, *infile, *outfile, tableOffset, *compress, opts); err != nil {
		log.Fatalln(err)
	}
}

func run(fsys afero.Fs, in, out string, tableOffset int64, compress bool, opts rommy.Options) error {
	image, err := afero.ReadFile(fsys, in)
	if err != nil {
		return err
	}
	if tableOffset >= int64(len(image)) {
		return fmt.Errorf("%s: %w: file address table at %#x", in, rom.ErrOutOfRange, tableOffset)
	}

	convert := rommy.Decompress
	if compress {
		convert = rommy.Compress
	}
	result, err := convert(image, tableOffset, opts)
	if err != nil {
		return fmt.Errorf("%s: %w", in, err)
	}

	return afero.WriteFile(fsys, out, result, 0644)
}

func readReference(fsys afero.Fs, path string, tableOffset int64) (*rom.FileTable, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, err
	}
	table, err := rom.ReadFileTable(bytes.NewReader(data), tableOffset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table, nil
}
