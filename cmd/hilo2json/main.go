package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/woozymasta/wpcmap/internal/bulletin"
	"github.com/woozymasta/wpcmap/internal/geo"

	"github.com/jessevdk/go-flags"
	"gopkg.in/yaml.v3"
)

type Options struct {
	Input  string `short:"i" long:"in" description:"Input bulletin file path. Reads from stdin if empty"`
	Output string `short:"o" long:"out" description:"Output file path. Writes to stdout if empty"`
	Format string `short:"f" long:"format" description:"Output format" choice:"json" choice:"yaml" default:"json"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	// Read Input
	var rows []bulletin.Row
	var err error

	if opts.Input != "" {
		rows, err = bulletin.LoadRows(opts.Input)
	} else {
		rows, err = bulletin.ReadRows(os.Stdin)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading bulletin: %v\n", err)
		os.Exit(1)
	}

	b, err := bulletin.Parse(rows)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing bulletin: %v\n", err)
		os.Exit(1)
	}

	fc := geo.FromBulletin(b)

	outputData, err := marshal(fc, opts.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling data: %v\n", err)
		os.Exit(1)
	}

	if opts.Output != "" {
		err = os.WriteFile(opts.Output, outputData, 0644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "Successfully converted %d features to %s (format: %s)\n", len(fc.Features), opts.Output, opts.Format)
	} else {
		_, _ = io.WriteString(os.Stdout, string(outputData)+"\n")
	}
}

func marshal(fc geo.GeoJSONFeatureCollection, format string) ([]byte, error) {
	if format == "yaml" {
		return yaml.Marshal(fc)
	}
	return json.MarshalIndent(fc, "", "  ")
}
