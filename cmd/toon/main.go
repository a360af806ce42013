// Command toon encodes, decodes and analyzes TOON documents.
//
// Usage:
//
//	echo '{"name":"Alice","age":30}' | toon encode
//	toon encode -i data.json -o data.toon
//	toon encode --filter etag,kind
//	toon encode --filter-preset google -i calendar.json
//	toon decode -i data.toon
//	toon stats -i data.json
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tempuskit/libtempus/toon"
)

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "toon: %v\n", err)
		os.Exit(1)
	}
}

const usage = `Usage: toon <command> [options]

Commands:
  encode    Encode JSON to TOON
  decode    Decode TOON back to pretty-printed JSON
  stats     Show encoding size statistics

Options:
  -i, --input FILE     Read from FILE instead of stdin
  -o, --output FILE    Write to FILE instead of stdout (encode, decode)
  --filter PATTERNS    Comma-separated field patterns to strip (encode)
  --filter-preset NAME Predefined pattern set, e.g. "google" (encode)
`

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stdout, usage)
		return nil
	}
	switch args[0] {
	case "encode":
		return runEncode(args[1:], stdin, stdout)
	case "decode":
		return runDecode(args[1:], stdin, stdout)
	case "stats":
		return runStats(args[1:], stdin, stdout)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	}
	return fmt.Errorf("unknown command %q", args[0])
}

func runEncode(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("encode", flag.ContinueOnError)
	var input, output, filter, preset string
	fs.StringVar(&input, "i", "", "input file")
	fs.StringVar(&input, "input", "", "input file")
	fs.StringVar(&output, "o", "", "output file")
	fs.StringVar(&output, "output", "", "output file")
	fs.StringVar(&filter, "filter", "", "comma-separated field patterns")
	fs.StringVar(&preset, "filter-preset", "", "predefined pattern set")
	if err := fs.Parse(args); err != nil {
		return err
	}

	jsonText, err := readInput(input, stdin)
	if err != nil {
		return err
	}
	patterns, err := buildFilterPatterns(filter, preset)
	if err != nil {
		return err
	}

	var out string
	if len(patterns) == 0 {
		out, err = toon.Encode(jsonText)
	} else {
		out, err = toon.FilterAndEncode(jsonText, patterns)
	}
	if err != nil {
		return err
	}
	return writeOutput(output, stdout, out)
}

func runDecode(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("decode", flag.ContinueOnError)
	var input, output string
	fs.StringVar(&input, "i", "", "input file")
	fs.StringVar(&input, "input", "", "input file")
	fs.StringVar(&output, "o", "", "output file")
	fs.StringVar(&output, "output", "", "output file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	toonText, err := readInput(input, stdin)
	if err != nil {
		return err
	}
	v, err := toon.DecodeValue(toonText)
	if err != nil {
		return err
	}
	return writeOutput(output, stdout, toon.EncodeJSONIndent(v))
}

func runStats(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("stats", flag.ContinueOnError)
	var input string
	fs.StringVar(&input, "i", "", "input file")
	fs.StringVar(&input, "input", "", "input file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	jsonText, err := readInput(input, stdin)
	if err != nil {
		return err
	}
	report, err := toon.Stats(jsonText)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "JSON size:  %d bytes\n", report.JSONBytes)
	fmt.Fprintf(stdout, "TOON size:  %d bytes\n", report.ToonBytes)
	fmt.Fprintf(stdout, "Reduction:  %.1f%%\n", report.Reduction)
	return nil
}

// buildFilterPatterns merges --filter entries with a named preset. An
// empty filter string yields no patterns.
func buildFilterPatterns(filter, preset string) ([]string, error) {
	var patterns []string
	for _, part := range strings.Split(filter, ",") {
		if part = strings.TrimSpace(part); part != "" {
			patterns = append(patterns, part)
		}
	}
	switch preset {
	case "":
	case "google":
		patterns = append(patterns, toon.GoogleCalendarPatterns()...)
	default:
		return nil, fmt.Errorf("unknown filter preset %q (available presets: google)", preset)
	}
	return patterns, nil
}

func readInput(path string, stdin io.Reader) (string, error) {
	if path == "" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return string(data), nil
}

func writeOutput(path string, stdout io.Writer, content string) error {
	if path == "" {
		_, err := fmt.Fprint(stdout, content)
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
