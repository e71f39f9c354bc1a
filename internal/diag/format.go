package diag

import (
	"fmt"
	"slices"
	"strings"
)

// FormatShort renders one line per diagnostic:
//
//	error COH4001 impl_name: message
//
// Lines are sorted like Bag.Sort. Notes follow their diagnostic as
// "note <code> <subject>: <msg>" when includeNotes is set.
func FormatShort(diags []Diagnostic, includeNotes bool) string {
	if len(diags) == 0 {
		return ""
	}
	sorted := slices.Clone(diags)
	slices.SortStableFunc(sorted, func(a, b Diagnostic) int {
		switch {
		case less(a, b):
			return -1
		case less(b, a):
			return 1
		}
		return 0
	})

	var b strings.Builder
	for i, d := range sorted {
		if i > 0 {
			b.WriteByte('\n')
		}
		writeLine(&b, d.Severity.Label(), d.Code, d.Subject, d.Message)
		if !includeNotes {
			continue
		}
		for _, n := range d.Notes {
			b.WriteByte('\n')
			writeLine(&b, "note", d.Code, n.Subject, n.Msg)
		}
	}
	return b.String()
}

func writeLine(b *strings.Builder, label string, code Code, subject, msg string) {
	if subject == "" {
		fmt.Fprintf(b, "%s %s %s", label, code.ID(), sanitizeMessage(msg))
		return
	}
	fmt.Fprintf(b, "%s %s %s: %s", label, code.ID(), subject, sanitizeMessage(msg))
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
