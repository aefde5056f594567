package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	"github.com/s0up4200/chainreact/chainreact"
)

// inputFs is where request documents are read from
var inputFs afero.Fs = afero.NewOsFs()

// stdin is read when a document path is "-"
var stdin io.Reader = os.Stdin

// readDocument decodes a JSON or YAML file into v. A path of "-" reads stdin.
func readDocument(path string, v any) error {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = afero.ReadFile(inputFs, path)
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	if len(strings.TrimSpace(string(data))) == 0 {
		return fmt.Errorf("%s is empty", path)
	}

	// YAML is a superset of JSON, so one decoder handles both
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

func splitAssignment(s string) (string, string, error) {
	key, value, ok := strings.Cut(s, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", "", fmt.Errorf("invalid assignment %q (expected key=value)", s)
	}
	return key, value, nil
}

// parseAssignments turns key=value pairs into patch members. Values are read
// as YAML scalars or flow collections, so numbers, booleans, lists and maps keep
// their type; anything unparsable is kept as a string.
func parseAssignments(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	fields := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, raw, err := splitAssignment(pair)
		if err != nil {
			return nil, err
		}

		var value any
		if strings.TrimSpace(raw) == "" || yaml.Unmarshal([]byte(raw), &value) != nil {
			value = raw
		}
		fields[key] = value
	}
	return fields, nil
}

// parseHeaders turns key=value pairs into HTTP headers
func parseHeaders(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	headers := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, err := splitAssignment(pair)
		if err != nil {
			return nil, err
		}
		headers[key] = strings.TrimSpace(value)
	}
	return headers, nil
}

// parseDate accepts any common date layout and returns it as YYYY-MM-DD.
// An empty string stays empty.
func parseDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}

	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", s, err)
	}
	return t.Format(chainreact.DateLayout), nil
}

// parseInput builds the execution input from an inline JSON/YAML object or a file.
func parseInput(inline, path string) (map[string]any, error) {
	switch {
	case inline != "" && path != "":
		return nil, fmt.Errorf("--input and --input-file are mutually exclusive")
	case inline != "":
		var input map[string]any
		if err := yaml.Unmarshal([]byte(inline), &input); err != nil {
			return nil, fmt.Errorf("invalid --input: %w", err)
		}
		if input == nil {
			input = map[string]any{}
		}
		return input, nil
	case path != "":
		var input map[string]any
		if err := readDocument(path, &input); err != nil {
			return nil, err
		}
		return input, nil
	default:
		return nil, nil
	}
}
