package stripbss

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/nisitenma/romtools/stripbss"
	"github.com/spf13/afero"
)

const usageString = `Usage: %s <path_to_yaml_file>
`

var flags = flag.NewFlagSet("stripbss", flag.ExitOnError)

func usage() {
	fmt.Fprintf(flags.Output(), usageString, "stripbss")
	flags.PrintDefaults()
}

// Main rewrites the given splat config without its bss lines. A wrong number
// of arguments only prints the usage.
func Main(args []string) {
	if err := run(os.Stdout, afero.NewOsFs(), args); err != nil {
		log.Fatalln(err)
	}
}

func run(w io.Writer, fsys afero.Fs, args []string) error {
	flags.SetOutput(w)
	flags.Usage = usage
	flags.Parse(args[1:])

	if flags.NArg() != 1 {
		flags.Usage()
		return nil
	}
	return stripbss.Strip(fsys, flags.Arg(0))
}
