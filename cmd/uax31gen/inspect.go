package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/urfave/cli/v2"

	"github.com/npillmayer/uax31"
	"github.com/npillmayer/uax31/ucd"
)

func statsCommand() *cli.Command {
	return &cli.Command{
		Name:   "stats",
		Usage:  "print size metrics of the compiled table",
		Flags:  tableFlags(),
		Action: runStats,
	}
}

func runStats(c *cli.Context) error {
	table, err := compileFromFlags(c)
	if err != nil {
		return err
	}
	classifier := uax31.NewClassifier(c.String("input"), table)
	stats := classifier.Stats()
	fmt.Printf("backend:        %s\n", stats.Backend)
	fmt.Printf("blocks:         %d\n", stats.Blocks)
	fmt.Printf("leaves:         %d\n", stats.Leaves)
	fmt.Printf("leaf runs:      %d\n", stats.LeafRuns)
	fmt.Printf("level-2 tables: %d\n", stats.Level2Tables)
	fmt.Printf("table bytes:    %d (%.4f per codepoint)\n",
		stats.SizeBytes, stats.BytesPerCodepoint())

	blob, err := table.MarshalBinary()
	if err != nil {
		return err
	}
	fmt.Printf("binary form:    %d bytes\n", len(blob))
	return nil
}

func propertiesCommand() *cli.Command {
	return &cli.Command{
		Name:  "properties",
		Usage: "list property names found in a UCD file",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "input",
				Aliases:  []string{"i"},
				Usage:    "path to the UCD property file",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "prefix",
				Usage: "only list properties starting with this prefix",
			},
		},
		Action: runProperties,
	}
}

func runProperties(c *cli.Context) error {
	file, err := os.Open(c.String("input"))
	if err != nil {
		return err
	}
	defer file.Close()
	list, err := ucd.Parse(file)
	if err != nil {
		return err
	}
	var names []string
	if prefix := c.String("prefix"); prefix != "" {
		names = list.PropertyNamesWithPrefix(prefix)
	} else {
		names = list.PropertyNames()
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Println(name)
	}
	return nil
}
