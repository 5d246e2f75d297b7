package models

import "strings"

// SplitContent splits generated content at ContentDelimiter into its
// question and solution halves. Single-part content comes back as
// (content, "").
func SplitContent(content string) (question, solution string) {
	before, after, found := strings.Cut(content, ContentDelimiter)
	if !found {
		return strings.TrimSpace(content), ""
	}
	return strings.TrimSpace(before), strings.TrimSpace(after)
}
