package operations

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// OutputFormat selects how results are printed
type OutputFormat string

const (
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
)

// ParseOutputFormat validates a format name
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(s); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unknown output format %q (must be table, json or yaml)", s)
	}
}

// Printer writes results either through a Formatter or as structured data
type Printer struct {
	out       io.Writer
	format    OutputFormat
	formatter Formatter
}

// NewPrinter creates a printer writing to out
func NewPrinter(out io.Writer, format OutputFormat, formatter Formatter) *Printer {
	return &Printer{out: out, format: format, formatter: formatter}
}

// Format returns the output format
func (p *Printer) Format() OutputFormat {
	return p.format
}

// Print writes v as JSON or YAML, or the console rendering produced by table.
func (p *Printer) Print(v any, table func(Formatter) string) error {
	switch p.format {
	case FormatJSON:
		enc := json.NewEncoder(p.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		return writeYAML(p.out, v)
	default:
		_, err := io.WriteString(p.out, table(p.formatter))
		return err
	}
}

// writeYAML encodes v through its JSON form so field names match the API.
func writeYAML(w io.Writer, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}

	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return enc.Close()
}
