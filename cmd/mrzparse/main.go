// Command mrzparse decodes the machine readable zone in OCR text read from
// a file or stdin and prints it as JSON.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/saturnino-fabrica-de-software/docverify/internal/domain"
	"github.com/saturnino-fabrica-de-software/docverify/internal/mrz"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("mrzparse", flag.ContinueOnError)
	file := fs.String("file", "", "Read OCR text from this file instead of stdin")
	fields := fs.Bool("fields", false, "Print the flattened field map used by the rule validator")
	if err := fs.Parse(args); err != nil {
		return err
	}

	in := stdin
	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer func() { _ = f.Close() }()
		in = f
	}

	text, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	record := mrz.Parse(string(text))

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")

	if *fields {
		return enc.Encode(record.Fields())
	}
	return enc.Encode(struct {
		Found bool              `json:"found"`
		MRZ   *domain.MRZRecord `json:"mrz,omitempty"`
	}{Found: record != nil, MRZ: record})
}
