package pagination

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tagRe = regexp.MustCompile(`<[^>]+>`)

// fakeMeasurer is a scripted oracle: content overflows when it has more
// than maxLines line divs or more than maxChars of visible text. Zero
// means unlimited.
type fakeMeasurer struct {
	maxLines int
	maxChars int
	err      error
	calls    int
}

func (f *fakeMeasurer) Measure(_ context.Context, contentHTML string) (bool, error) {
	f.calls++
	if f.err != nil {
		return false, f.err
	}
	if f.maxLines > 0 && strings.Count(contentHTML, `<div class="line`) > f.maxLines {
		return true, nil
	}
	if f.maxChars > 0 && len(tagRe.ReplaceAllString(contentHTML, "")) > f.maxChars {
		return true, nil
	}
	return false, nil
}

func TestPaginate_ShortTextYieldsSingleChunk(t *testing.T) {
	m := &fakeMeasurer{maxLines: 10}
	engine := NewEngine(m)

	text := "First sentence here. Second one follows. And a third."
	chunks, err := engine.Paginate(context.Background(), text)
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0])
}

func TestPaginate_EmptyInputYieldsNoChunks(t *testing.T) {
	engine := NewEngine(&fakeMeasurer{maxLines: 10})

	for _, text := range []string{"", "   ", "\n\n"} {
		chunks, err := engine.Paginate(context.Background(), text)
		require.NoError(t, err)
		assert.Empty(t, chunks)
	}
}

func TestPaginate_ThreeCanvasesPreserveMarkers(t *testing.T) {
	lines := []string{
		"Intro line one about the problem.",
		"• first bullet point to keep",
		"• second bullet point to keep",
		"1. a numbered step to keep",
		"Another plain line of text.",
		"More explanation goes here.",
		"Extra detail line number seven.",
		"Extra detail line number eight.",
		"Extra detail line number nine.",
		"Extra detail line number ten.",
		"Extra detail line number eleven.",
		"Extra detail line number twelve.",
	}
	text := strings.Join(lines, "\n")

	engine := NewEngine(&fakeMeasurer{maxLines: 4})
	chunks, err := engine.Paginate(context.Background(), text)
	require.NoError(t, err)
	assert.Len(t, chunks, 3)

	joined := strings.Join(chunks, "\n")
	assert.Contains(t, joined, "• first bullet point to keep")
	assert.Contains(t, joined, "• second bullet point to keep")
	assert.Contains(t, joined, "1. a numbered step to keep")
}

func TestPaginate_ChunksFitWhenRemeasured(t *testing.T) {
	text := strings.Repeat("A sentence that takes up room. ", 40)
	m := &fakeMeasurer{maxChars: 200}
	engine := NewEngine(m)

	chunks, err := engine.Paginate(context.Background(), text)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	for _, chunk := range chunks {
		overflow, err := m.Measure(context.Background(), ChunkHTML(chunk))
		require.NoError(t, err)
		assert.False(t, overflow, "chunk must fit on its own: %q", chunk)
	}
}

func TestPaginate_CoverageIsLossless(t *testing.T) {
	text := "One sentence here. Another sentence there.\n\n• bullet line\nClosing thought at the end."
	engine := NewEngine(&fakeMeasurer{maxChars: 45})

	chunks, err := engine.Paginate(context.Background(), text)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)

	normalize := func(s string) string {
		return strings.Join(strings.Fields(s), " ")
	}
	assert.Equal(t, normalize(text), normalize(strings.Join(chunks, " ")))
}

func TestPaginate_ForcedSplitTerminates(t *testing.T) {
	// One token far beyond any canvas, with no sentence or line boundary.
	token := strings.Repeat("x", 500)
	engine := NewEngine(&fakeMeasurer{maxChars: 60})

	chunks, err := engine.Paginate(context.Background(), token)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	for _, chunk := range chunks {
		assert.LessOrEqual(t, len(chunk), ForcedSplitBudget)
	}
	assert.Equal(t, token, strings.Join(chunks, ""))
}

func TestPaginate_MeasurerErrorIsFatal(t *testing.T) {
	oracleErr := errors.New("browser crashed")
	engine := NewEngine(&fakeMeasurer{err: oracleErr})

	chunks, err := engine.Paginate(context.Background(), "some text to paginate")
	require.Error(t, err)
	assert.ErrorIs(t, err, oracleErr)
	assert.Nil(t, chunks)
}

func TestSplitUnits_RoundTrips(t *testing.T) {
	text := "First sentence. Second sentence!\nA new line? Yes.\n\nFinal."
	units := SplitUnits(text)
	assert.Equal(t, text, JoinUnits(units))
}

func TestSplitUnits_MarksLineBreaks(t *testing.T) {
	units := SplitUnits("one\ntwo")
	require.Len(t, units, 3)
	assert.Equal(t, UnitText, units[0].Kind)
	assert.Equal(t, UnitBreak, units[1].Kind)
	assert.Equal(t, UnitText, units[2].Kind)
}

func TestClassifyLine(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		kind   LineKind
		indent int
	}{
		{"blank", "   ", LineBlank, 0},
		{"bullet dot", "• point", LineBullet, 0},
		{"bullet dash", "- point", LineBullet, 0},
		{"bullet star", "* point", LineBullet, 0},
		{"numbered", "2. step two", LineNumbered, 0},
		{"heading", "Key ideas:", LineHeading, 0},
		{"long colon line is plain", strings.Repeat("w", 70) + ":", LinePlain, 0},
		{"indented bullet", "    - nested", LineBullet, 2},
		{"plain", "just words", LinePlain, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line := ClassifyLine(tt.raw)
			assert.Equal(t, tt.kind, line.Kind)
			assert.Equal(t, tt.indent, line.Indent)
		})
	}
}

func TestChunkHTML_PreservesMarkersAndSpacers(t *testing.T) {
	out := ChunkHTML("Title:\n\n• first\n  1. nested step")
	assert.Contains(t, out, `class="line heading"`)
	assert.Contains(t, out, `class="spacer"`)
	assert.Contains(t, out, "• first")
	assert.Contains(t, out, `class="line numbered"`)
	assert.Contains(t, out, `style="margin-left:32px"`)
}
