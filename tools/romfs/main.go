package romfs

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/nisitenma/romtools/rom"
	"github.com/nisitenma/romtools/romfs"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/afero"
)

const usageString = `ROM File System Utility.

Usage:

	%s <command> [arguments]

The commands are:

	ls <rom> <table>		list the files of the ROM
	mount <rom> <table> <dir>	serve the files of the ROM via fuse

The table offset is hexadecimal.
`

var flags = flag.NewFlagSet("romfs", flag.ExitOnError)

func usage() {
	fmt.Fprintf(flags.Output(), usageString, "romfs")
	flags.PrintDefaults()
}

func Main(args []string) {
	flags.Usage = usage
	flags.Parse(args[1:])

	if flags.NArg() < 1 {
		flags.Usage()
		os.Exit(1)
	}

	switch flags.Arg(0) {
	case "ls":
		if flags.NArg() != 3 {
			flags.Usage()
			os.Exit(1)
		}
		fsys, err := open(afero.NewOsFs(), flags.Arg(1), flags.Arg(2))
		if err != nil {
			log.Fatalln(err)
		}
		list(os.Stdout, fsys)
	case "mount":
		if flags.NArg() != 4 {
			flags.Usage()
			os.Exit(1)
		}
		fsys, err := open(afero.NewOsFs(), flags.Arg(1), flags.Arg(2))
		if err != nil {
			log.Fatalln(err)
		}

		sigintr := make(chan os.Signal, 1)
		signal.Notify(sigintr, os.Interrupt)

		log.Println("serving", flags.Arg(1), "at", flags.Arg(3))
		if err := mount(fsys, flags.Arg(3), sigintr); err != nil {
			log.Fatalln(err)
		}
	default:
		fmt.Fprintf(flags.Output(), "unknown command: %s\n", flags.Arg(0))
		flags.Usage()
		os.Exit(1)
	}
}

// open reads the whole ROM, the file system keeps referencing it.
func open(fsys afero.Fs, path, table string) (*romfs.FS, error) {
	off, err := strconv.ParseInt(strings.TrimPrefix(strings.ToLower(table), "0x"), 16, 64)
	if err != nil {
		return nil, fmt.Errorf("file address table: %w", err)
	}
	f, err := fsys.Open(path)
	if err != nil {
		return nil, err
	}
	image, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		return nil, err
	}

	r := bytes.NewReader(image)
	t, err := rom.ReadFileTable(r, off)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return romfs.New(r, t)
}

func list(w io.Writer, fsys *romfs.FS) {
	table := tablewriter.NewWriter(w)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"File", "Start", "End", "Stored", "Size", "Compressed"})
	table.SetBorder(false)
	for _, f := range fsys.Files() {
		table.Append([]string{
			f.Name(),
			fmt.Sprintf("%#x", f.Offset()),
			fmt.Sprintf("%#x", f.Offset()+f.StoredSize()),
			humanize.IBytes(uint64(f.StoredSize())),
			humanize.IBytes(uint64(f.Size())),
			strconv.FormatBool(f.Compressed()),
		})
	}
	table.Render()
}
