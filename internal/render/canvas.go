// Package render draws post cards with headless Chrome and answers the
// paginator's overflow questions against the same template, so measurement
// and final rendering can never disagree.
package render

// Profile is the fixed canvas a card renders into. ContentHeight is the
// vertical budget for body text; SafetyMargin is subtracted from it before
// any overflow check.
type Profile struct {
	Width         int
	Height        int
	ContentHeight int
	SafetyMargin  int
}

func DefaultProfile() Profile {
	return Profile{
		Width:         1080,
		Height:        1350,
		ContentHeight: 1100,
		SafetyMargin:  40,
	}
}

// AvailableHeight is the content height the paginator may fill.
func (p Profile) AvailableHeight() int {
	return p.ContentHeight - p.SafetyMargin
}

// Kind selects the card layout for a chunk.
type Kind string

const (
	// KindQuestion centers its content on the canvas.
	KindQuestion Kind = "question"
	// KindSolution is left-aligned and tolerates content taller than the
	// visible crop.
	KindSolution Kind = "solution"
	// KindCard is the generic single-part layout, used for job listings.
	KindCard Kind = "card"
)
