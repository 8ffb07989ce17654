package segments

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"github.com/nisitenma/romtools/rom"
	"github.com/spf13/afero"
)

const usageString = `File segment table dump.

Prints count (start, end) pairs read at offset and whether start is TLB
mapped. Offset and count are decimal.

Usage: %s <rom> <offset> <count>

`

var flags = flag.NewFlagSet("segments", flag.ExitOnError)

func usage() {
	fmt.Fprintf(flags.Output(), usageString, "segments")
	flags.PrintDefaults()
}

func Main(args []string) {
	flags.Usage = usage
	flags.Parse(args[1:])

	if flags.NArg() != 3 {
		flags.Usage()
		os.Exit(1)
	}
	offset, err := strconv.ParseInt(flags.Arg(1), 10, 64)
	if err != nil {
		log.Fatalln("offset:", err)
	}
	count, err := strconv.Atoi(flags.Arg(2))
	if err != nil {
		log.Fatalln("count:", err)
	}

	f, err := afero.NewOsFs().Open(flags.Arg(0))
	if err != nil {
		log.Fatalln(err)
	}
	defer f.Close()

	if err := dump(os.Stdout, f, offset, count); err != nil {
		log.Fatalln(err)
	}
}

// dump prints the table only if all entries could be read.
func dump(w io.Writer, r io.ReaderAt, offset int64, count int) error {
	segs, err := rom.ReadSegments(r, offset, count)
	if err != nil {
		return err
	}
	for i, s := range segs {
		_, err := fmt.Fprintf(w, "Entry %d: start = %#x, end = %#x, TLB mapped = %s\n",
			i+1, s.Start, s.End, formatBool(s.TLBMapped()))
		if err != nil {
			return err
		}
	}
	return nil
}

func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
