package roml

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDocument  = errors.New("roml: invalid document")
	ErrUnsupportedValue = errors.New("roml: unsupported value")
)

// IssueKind classifies a problem found while decoding.
type IssueKind uint8

const (
	// IssueSkippedLine is a line no style matched. It is logged but not
	// reported in Result.Errors.
	IssueSkippedLine IssueKind = iota
	IssuePrimeMismatch
	IssueMarkerMissing
	IssueMarkerUnused
)

func (k IssueKind) String() string {
	switch k {
	case IssueSkippedLine:
		return "skipped_line"
	case IssuePrimeMismatch:
		return "prime_mismatch"
	case IssueMarkerMissing:
		return "marker_missing"
	case IssueMarkerUnused:
		return "marker_unused"
	default:
		return "unknown"
	}
}

// Issue is a non-fatal decode problem. Line is 0 for document-level issues.
type Issue struct {
	Line    int
	Kind    IssueKind
	Message string
}

func (i *Issue) Error() string {
	if i.Line > 0 {
		return fmt.Sprintf("line %d: %s", i.Line, i.Message)
	}
	return i.Message
}

// Reported reports whether the issue belongs in Result.Errors.
func (i *Issue) Reported() bool { return i.Kind != IssueSkippedLine }
