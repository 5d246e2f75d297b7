package pagination

import (
	"fmt"
	"html"
	"strings"
)

// indentStepPx is the pixel width of one indent step in the card markup.
const indentStepPx = 32

var lineClass = map[LineKind]string{
	LinePlain:    "line",
	LineBullet:   "line bullet",
	LineNumbered: "line numbered",
	LineHeading:  "line heading",
}

// ChunkHTML renders a chunk's classified lines into the content markup
// the card template and the measurement oracle both consume. Blank lines
// become fixed-height spacers.
func ChunkHTML(chunk string) string {
	var b strings.Builder
	for _, line := range ClassifyChunk(chunk) {
		if line.Kind == LineBlank {
			b.WriteString(`<div class="spacer"></div>`)
			continue
		}

		b.WriteString(`<div class="`)
		b.WriteString(lineClass[line.Kind])
		b.WriteString(`"`)
		if line.Indent > 0 {
			fmt.Fprintf(&b, ` style="margin-left:%dpx"`, line.Indent*indentStepPx)
		}
		b.WriteString(`>`)
		b.WriteString(html.EscapeString(line.Text))
		b.WriteString(`</div>`)
	}
	return b.String()
}
