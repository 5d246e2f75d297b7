// Package pagination breaks generated text into chunks that each fit one
// render canvas. Fit is decided by a Measurer, so the algorithm itself
// never talks to a browser.
package pagination

import "strings"

type UnitKind int

const (
	// UnitText is a sentence fragment within one source line.
	UnitText UnitKind = iota
	// UnitBreak marks one source line break, so vertical spacing survives
	// re-assembly.
	UnitBreak
)

// Unit is the smallest piece of content the paginator moves between
// chunks. Concatenating the Text of all units reproduces the source text
// exactly.
type Unit struct {
	Kind UnitKind
	Text string
}

// SplitUnits decomposes text into sentence-fragment and line-break units.
// Fragments keep their terminal punctuation and any trailing spaces, which
// is what makes re-assembly lossless.
func SplitUnits(text string) []Unit {
	if text == "" {
		return nil
	}

	var units []Unit
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		for _, frag := range splitFragments(line) {
			units = append(units, Unit{Kind: UnitText, Text: frag})
		}
		if i < len(lines)-1 {
			units = append(units, Unit{Kind: UnitBreak, Text: "\n"})
		}
	}
	return units
}

// splitFragments cuts a line after terminal punctuation followed by
// whitespace. The punctuation and the whitespace stay with the left
// fragment.
func splitFragments(line string) []string {
	if line == "" {
		return nil
	}

	var frags []string
	runes := []rune(line)
	start := 0
	i := 0
	for i < len(runes) {
		if isTerminal(runes[i]) && i+1 < len(runes) && runes[i+1] == ' ' {
			i++
			for i < len(runes) && runes[i] == ' ' {
				i++
			}
			frags = append(frags, string(runes[start:i]))
			start = i
			continue
		}
		i++
	}
	if start < len(runes) {
		frags = append(frags, string(runes[start:]))
	}
	return frags
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// JoinUnits reassembles units into text. Inverse of SplitUnits for any
// full window.
func JoinUnits(units []Unit) string {
	var b strings.Builder
	for _, u := range units {
		b.WriteString(u.Text)
	}
	return b.String()
}
