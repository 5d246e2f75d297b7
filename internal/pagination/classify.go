package pagination

import (
	"regexp"
	"strings"
)

type LineKind int

const (
	LinePlain LineKind = iota
	LineBlank
	LineBullet
	LineNumbered
	LineHeading
)

// headingMaxLen is the longest a colon-terminated line may be and still
// count as a heading rather than running text.
const headingMaxLen = 60

// indentUnit is how many source spaces make one visual indent step.
const indentUnit = 2

var numberedRe = regexp.MustCompile(`^\d+\.\s`)

// Line is one classified source line. Text keeps the original marker
// verbatim so bullets and numbering survive chunking untouched.
type Line struct {
	Kind   LineKind
	Indent int
	Text   string
}

func ClassifyLine(raw string) Line {
	trimmed := strings.TrimLeft(raw, " ")
	indent := (len(raw) - len(trimmed)) / indentUnit
	trimmed = strings.TrimRight(trimmed, " ")

	switch {
	case trimmed == "":
		return Line{Kind: LineBlank}
	case strings.HasPrefix(trimmed, "• ") || strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* "):
		return Line{Kind: LineBullet, Indent: indent, Text: trimmed}
	case numberedRe.MatchString(trimmed):
		return Line{Kind: LineNumbered, Indent: indent, Text: trimmed}
	case strings.HasSuffix(trimmed, ":") && len(trimmed) < headingMaxLen:
		return Line{Kind: LineHeading, Indent: indent, Text: trimmed}
	default:
		return Line{Kind: LinePlain, Indent: indent, Text: trimmed}
	}
}

// ClassifyChunk classifies every line of a chunk in order.
func ClassifyChunk(chunk string) []Line {
	raw := strings.Split(chunk, "\n")
	lines := make([]Line, 0, len(raw))
	for _, l := range raw {
		lines = append(lines, ClassifyLine(l))
	}
	return lines
}
