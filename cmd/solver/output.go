package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"solver/internal/diag"
)

type diagnosticsPayload struct {
	Manifest    string            `json:"manifest"`
	Cached      bool              `json:"cached"`
	Diagnostics []diag.Diagnostic `json:"diagnostics"`
	Dropped     int               `json:"dropped,omitempty"`
}

// printDiagnostics renders bag in the short or json format. Short output
// colors the severity label when color is enabled.
func printDiagnostics(out io.Writer, bag *diag.Bag, format string, withNotes bool, manifest string, cached bool) error {
	switch format {
	case "json":
		items := bag.Items()
		if items == nil {
			items = []diag.Diagnostic{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(diagnosticsPayload{Manifest: manifest, Cached: cached, Diagnostics: items, Dropped: bag.Dropped()})
	case "short":
		text := diag.FormatShort(bag.Items(), withNotes)
		if text == "" {
			return nil
		}
		for _, line := range strings.Split(text, "\n") {
			if _, err := fmt.Fprintln(out, colorizeLine(line)); err != nil {
				return err
			}
		}
		if n := bag.Dropped(); n > 0 {
			_, err := fmt.Fprintf(out, "... %d more diagnostic(s) not shown\n", n)
			return err
		}
		return nil
	default:
		return fmt.Errorf("unsupported format %q (must be short or json)", format)
	}
}

func colorizeLine(line string) string {
	label, rest, ok := strings.Cut(line, " ")
	if !ok {
		return line
	}
	switch label {
	case "error":
		label = color.New(color.FgRed, color.Bold).Sprint(label)
	case "warning":
		label = color.New(color.FgYellow, color.Bold).Sprint(label)
	case "note":
		label = color.New(color.FgCyan).Sprint(label)
	default:
		label = color.New(color.FgBlue).Sprint(label)
	}
	return label + " " + rest
}
