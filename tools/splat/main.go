package splat

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/nisitenma/romtools/overlay"
	"github.com/spf13/afero"
)

const usageString = `Splat segment generator.

Prints a splat segment for every file listed in the file address table.
Table offsets are hexadecimal and default to the ones of -region.

Usage: %s [flags] <rom> [<file_address_table> <file_segment_table>]

`

var (
	flags = flag.NewFlagSet("splat", flag.ExitOnError)

	profile = flags.String("profile", "", "YAML file overriding the built-in profile")
	region  = flags.String("region", "", "jp | us")
)

func usage() {
	fmt.Fprintf(flags.Output(), usageString, "splat")
	flags.PrintDefaults()
}

func Main(args []string) {
	flags.Usage = usage
	flags.Parse(args[1:])

	if flags.NArg() != 1 && flags.NArg() != 3 {
		flags.Usage()
		os.Exit(1)
	}
	if flags.NArg() == 1 && *region == "" {
		flags.Usage()
		os.Exit(1)
	}

	fsys := afero.NewOsFs()
	p := &overlay.DefaultProfile
	if *profile != "" {
		var err error
		p, err = overlay.LoadProfile(fsys, *profile)
		if err != nil {
			log.Fatalln(err)
		}
	}

	var fat, fst int64
	if flags.NArg() == 3 {
		var err error
		fat, err = parseHex(flags.Arg(1))
		if err != nil {
			log.Fatalln("file address table:", err)
		}
		fst, err = parseHex(flags.Arg(2))
		if err != nil {
			log.Fatalln("file segment table:", err)
		}
	} else {
		r, err := p.Region(*region)
		if err != nil {
			log.Fatalln(err)
		}
		fat, fst = int64(r.FileAddressTable), int64(r.FileSegmentTable)
	}

	w := bufio.NewWriter(os.Stdout)
	err := run(w, fsys, flags.Arg(0), fat, fst, p)
	if ferr := w.Flush(); err == nil {
		err = ferr
	}
	if err != nil {
		log.Fatalln(err)
	}
}

func run(w io.Writer, fsys afero.Fs, path string, fat, fst int64, p *overlay.Profile) error {
	f, err := fsys.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	descs, err := overlay.Describe(f, fat, fst, p)
	if err != nil {
		return err
	}
	return overlay.WriteSplat(w, descs)
}

// parseHex parses a hexadecimal offset with optional 0x prefix.
func parseHex(s string) (int64, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	return strconv.ParseInt(s, 16, 64)
}
