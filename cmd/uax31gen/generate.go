package main

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/google/renameio"
	"github.com/urfave/cli/v2"

	"github.com/npillmayer/uax31"
	"github.com/npillmayer/uax31/ucd"
)

const (
	indexValuesPerLine = 8
	classValuesPerLine = 12
)

func tableFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "input",
			Aliases:  []string{"i"},
			Usage:    "path to DerivedCoreProperties.txt",
			Required: true,
		},
		&cli.UintFlag{
			Name:  "shift",
			Usage: "block width in bits",
			Value: uint(uax31.DefaultConfig.Shift),
		},
		&cli.UintFlag{
			Name:  "top-bits",
			Usage: "width of the first-level index",
			Value: uint(uax31.DefaultConfig.TopBits),
		},
	}
}

func configFromFlags(c *cli.Context) uax31.Config {
	cfg := uax31.DefaultConfig
	cfg.Shift = uint32(c.Uint("shift"))
	cfg.TopBits = uint32(c.Uint("top-bits"))
	return cfg
}

func compileFromFlags(c *cli.Context) (*uax31.Table, error) {
	file, err := os.Open(c.String("input"))
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return uax31.CompileTable(configFromFlags(c), ucd.NewReader(file))
}

func generateCommand() *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "emit the compiled table as a Go source file",
		Flags: append(tableFlags(),
			&cli.StringFlag{
				Name:     "output",
				Aliases:  []string{"o"},
				Usage:    "path of the generated file",
				Required: true,
			},
			&cli.StringFlag{
				Name:    "package",
				Aliases: []string{"p"},
				Usage:   "package name of the generated file (defaults to $GOPACKAGE)",
			},
			&cli.StringFlag{
				Name:  "var",
				Usage: "name of the generated table variable",
				Value: "identifierTable",
			},
			&cli.BoolFlag{
				Name:  "binary",
				Usage: "emit the compact binary form instead of Go source",
			},
		),
		Action: runGenerate,
	}
}

func runGenerate(c *cli.Context) error {
	table, err := compileFromFlags(c)
	if err != nil {
		return err
	}
	var data []byte
	if c.Bool("binary") {
		if data, err = table.MarshalBinary(); err != nil {
			return err
		}
	} else {
		pkg := c.String("package")
		if pkg == "" {
			pkg = os.Getenv("GOPACKAGE")
		}
		if pkg == "" {
			return fmt.Errorf("no package name: pass --package or run under go generate")
		}
		data = emitGoSource(table, pkg, c.String("var"))
	}
	// Atomic replace: a failed run never leaves a truncated table file.
	return renameio.WriteFile(c.String("output"), data, 0o644)
}

// emitGoSource renders the table as a composite literal of fixed-width
// integer arrays, one generated variable per file.
func emitGoSource(table *uax31.Table, pkg, varName string) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "// Code generated by \"uax31gen %s\"; DO NOT EDIT.\n\n",
		strings.Join(os.Args[1:], " "))
	fmt.Fprintf(&buf, "package %s\n\n", pkg)
	fmt.Fprintf(&buf, "import \"github.com/npillmayer/uax31\"\n\n")
	fmt.Fprintf(&buf, "var %s = &uax31.Table{\n", varName)
	fmt.Fprintf(&buf, "\tShift:       %d,\n", table.Shift)
	fmt.Fprintf(&buf, "\tLowerBits:   %d,\n", table.LowerBits)
	fmt.Fprintf(&buf, "\tStartOffset: %#x,\n", table.StartOffset)
	emitUint16Array(&buf, "LeafOffsets", table.LeafOffsets)
	emitUint16Array(&buf, "LeafRunStarts", table.LeafRunStarts)
	emitClassArray(&buf, "LeafRunValues", table.LeafRunValues)
	emitUint16Array(&buf, "Level2", table.Level2)
	emitUint16Array(&buf, "Level1", table.Level1)
	fmt.Fprintf(&buf, "}\n")
	return buf.Bytes()
}

func emitUint16Array(buf *bytes.Buffer, field string, data []uint16) {
	fmt.Fprintf(buf, "\t%s: []uint16{\n", field)
	for i, v := range data {
		if i%indexValuesPerLine == 0 {
			fmt.Fprint(buf, "\t\t")
		}
		fmt.Fprintf(buf, "0x%04x,", v)
		if i%indexValuesPerLine == indexValuesPerLine-1 || i+1 == len(data) {
			fmt.Fprintln(buf)
		} else {
			fmt.Fprint(buf, " ")
		}
	}
	fmt.Fprintf(buf, "\t},\n")
}

func emitClassArray(buf *bytes.Buffer, field string, data []uax31.IdentifierClass) {
	fmt.Fprintf(buf, "\t%s: []uax31.IdentifierClass{\n", field)
	for i, v := range data {
		if i%classValuesPerLine == 0 {
			fmt.Fprint(buf, "\t\t")
		}
		fmt.Fprintf(buf, "0x%02x,", byte(v))
		if i%classValuesPerLine == classValuesPerLine-1 || i+1 == len(data) {
			fmt.Fprintln(buf)
		} else {
			fmt.Fprint(buf, " ")
		}
	}
	fmt.Fprintf(buf, "\t},\n")
}
