package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/nisitenma/romtools/tools/lzkn64"
	"github.com/nisitenma/romtools/tools/romfs"
	"github.com/nisitenma/romtools/tools/rommy"
	"github.com/nisitenma/romtools/tools/segments"
	"github.com/nisitenma/romtools/tools/splat"
	"github.com/nisitenma/romtools/tools/stripbss"
	"github.com/nisitenma/romtools/tools/symbols"
)

const usageString = `ichigo is a tool for disassembling and rebuilding Nisitenma-Ichigo ROMs.

Usage:

	%s <command> [arguments]

The commands are:

	symbols   convert a symbol map to linker script assignments
	segments  dump a file segment table
	splat     generate splat segments from the file tables
	stripbss  remove bss lines from a splat config
	lzkn64    compress or decompress a single file
	rommy     compress or decompress all files of a ROM
	romfs     list or mount the files of a ROM
`

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), usageString, os.Args[0])
	flag.PrintDefaults()
}

func main() {
	log.Default().SetFlags(0)
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	switch flag.Arg(0) {
	case "symbols":
		symbols.Main(flag.Args())
	case "segments":
		segments.Main(flag.Args())
	case "splat":
		splat.Main(flag.Args())
	case "stripbss":
		stripbss.Main(flag.Args())
	case "lzkn64":
		lzkn64.Main(flag.Args())
	case "rommy":
		rommy.Main(flag.Args())
	case "romfs":
		romfs.Main(flag.Args())
	default:
		fmt.Fprintf(flag.CommandLine.Output(), "unknown command: %s\n", flag.Arg(0))
		flag.Usage()
		os.Exit(1)
	}
}
