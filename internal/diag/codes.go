package diag

import (
	"fmt"
	"strconv"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Header text
	HdrSyntax  Code = 1001
	HdrResolve Code = 1002
	HdrShape   Code = 1003

	// Pattern validation
	PatInferenceMarker Code = 2002

	// Manifest
	CfgUnknownKey    Code = 3002
	CfgMissingField  Code = 3003
	CfgDuplicateItem Code = 3004
	CfgInvalidItem   Code = 3005

	// Coherence
	CohInfo            Code = 4000
	CohOverlap         Code = 4001
	CohSkipped         Code = 4002
	CohInherentOverlap Code = 4004
)

var codeDescription = map[Code]string{
	UnknownCode:        "Unknown error",
	HdrSyntax:          "Malformed impl header",
	HdrResolve:         "Unresolved name in impl header",
	HdrShape:           "Header does not form a valid pattern",
	PatInferenceMarker: "Pattern contains inference markers",
	CfgUnknownKey:      "Unknown manifest key",
	CfgMissingField:    "Missing manifest field",
	CfgDuplicateItem:   "Duplicate item declaration",
	CfgInvalidItem:     "Invalid item declaration",
	CohInfo:            "Coherence information",
	CohOverlap:         "Overlapping impls",
	CohSkipped:         "Impl skipped by coherence check",
	CohInherentOverlap: "Overlapping inherent impls",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("HDR%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("PAT%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("CFG%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("COH%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

func (c Code) MarshalText() ([]byte, error) {
	return []byte(c.ID()), nil
}

// UnmarshalText accepts the ID form produced by MarshalText, e.g. "COH4001".
func (c *Code) UnmarshalText(b []byte) error {
	s := string(b)
	if s == "E0000" {
		*c = UnknownCode
		return nil
	}
	if len(s) != 7 {
		return fmt.Errorf("malformed diagnostic code %q", s)
	}
	n, err := strconv.ParseUint(s[3:], 10, 16)
	if err != nil {
		return fmt.Errorf("malformed diagnostic code %q: %w", s, err)
	}
	code := Code(n)
	if code.ID() != s {
		return fmt.Errorf("malformed diagnostic code %q", s)
	}
	*c = code
	return nil
}
