package pagination

import (
	"context"
	"fmt"
	"strings"
)

// ForcedSplitBudget is the character budget used when a single unit alone
// overflows the canvas. Slicing at a fixed rune count ignores glyph widths
// and is a known approximation; it only exists to guarantee termination on
// pathologically long tokens.
const ForcedSplitBudget = 80

// Measurer answers whether a piece of content markup overflows the canvas
// content area. Implementations are expected to be deterministic under
// repeated calls with growing input.
type Measurer interface {
	Measure(ctx context.Context, contentHTML string) (overflow bool, err error)
}

type Engine struct {
	measurer Measurer
}

func NewEngine(measurer Measurer) *Engine {
	return &Engine{measurer: measurer}
}

// Paginate splits text into chunks that each fit one canvas. The window
// over the unit queue grows greedily one unit at a time; the last size the
// measurer accepted becomes the chunk boundary. Measurement errors are
// fatal and abort the whole run.
func (e *Engine) Paginate(ctx context.Context, text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	queue := SplitUnits(text)
	var chunks []string

	for len(queue) > 0 {
		lastFit := 0
		for end := 1; end <= len(queue); end++ {
			candidate := JoinUnits(queue[:end])
			if strings.TrimSpace(candidate) == "" {
				lastFit = end
				continue
			}

			overflow, err := e.measurer.Measure(ctx, ChunkHTML(candidate))
			if err != nil {
				return nil, fmt.Errorf("pagination measurement failed: %w", err)
			}
			if overflow {
				break
			}
			lastFit = end
		}

		if lastFit == 0 {
			var err error
			queue, chunks, err = e.forceSplit(queue, chunks)
			if err != nil {
				return nil, err
			}
			continue
		}

		chunk := strings.TrimSpace(JoinUnits(queue[:lastFit]))
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		queue = queue[lastFit:]
	}

	return chunks, nil
}

// forceSplit handles the window that overflows at size one: the head of
// the first unit is emitted as its own chunk and the remainder goes back
// to the front of the queue.
func (e *Engine) forceSplit(queue []Unit, chunks []string) ([]Unit, []string, error) {
	head := queue[0]
	if head.Kind == UnitBreak {
		// A lone break cannot be the overflow cause; drop it and move on.
		return queue[1:], chunks, nil
	}

	runes := []rune(head.Text)
	if len(runes) <= ForcedSplitBudget {
		chunk := strings.TrimSpace(head.Text)
		if chunk != "" {
			chunks = append(chunks, chunk)
		}
		return queue[1:], chunks, nil
	}

	piece := strings.TrimSpace(string(runes[:ForcedSplitBudget]))
	if piece != "" {
		chunks = append(chunks, piece)
	}
	queue[0] = Unit{Kind: UnitText, Text: string(runes[ForcedSplitBudget:])}
	return queue, chunks, nil
}
