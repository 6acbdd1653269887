// Command uax31gen compiles Unicode identifier classification tables from
// a DerivedCoreProperties.txt file.
//
// The main mode of operation emits the compiled two-level table as a Go
// source file of static data, meant to be checked in next to the code that
// embeds it:
//
//	uax31gen generate -i DerivedCoreProperties.txt -o table_gen.go -p mypkg
//
// Output files are written atomically: an error never leaves a partial or
// inconsistent table behind.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "uax31gen",
		Usage: "compile Unicode identifier classification tables",
		Commands: []*cli.Command{
			generateCommand(),
			statsCommand(),
			propertiesCommand(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "uax31gen:", err)
		os.Exit(1)
	}
}
