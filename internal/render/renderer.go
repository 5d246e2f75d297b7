package render

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/maheshrc27/postpilot/internal/pagination"
)

const renderTimeout = 60 * time.Second

// Renderer turns one text chunk into one PNG card. Every call writes a new
// file; names carry a nanosecond timestamp so nothing is ever overwritten.
type Renderer struct {
	profile Profile
	outDir  string
}

func NewRenderer(profile Profile, outDir string) *Renderer {
	return &Renderer{profile: profile, outDir: outDir}
}

// Render draws chunk as card page/pageCount of a post and returns the path
// of the written PNG.
func (r *Renderer) Render(ctx context.Context, chunk, topic string, page, pageCount int, kind Kind) (string, error) {
	if err := os.MkdirAll(r.outDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create render output dir: %w", err)
	}

	page64 := CardHTML(r.profile, pagination.ChunkHTML(chunk), topic, page, pageCount, kind)

	browserCtx, cancel := newBrowserContext(ctx, renderTimeout)
	defer cancel()

	var shot []byte
	err := chromedp.Run(browserCtx,
		chromedp.EmulateViewport(int64(r.profile.Width), int64(r.profile.Height)),
		chromedp.Navigate(dataURL(page64)),
		chromedp.WaitReady("#card"),
		chromedp.Screenshot("#card", &shot, chromedp.NodeVisible),
	)
	if err != nil {
		return "", fmt.Errorf("card rendering failed: %w", err)
	}

	path := filepath.Join(r.outDir, fmt.Sprintf("%s-%d.png", kind, time.Now().UnixNano()))
	if err := os.WriteFile(path, shot, 0o644); err != nil {
		return "", fmt.Errorf("failed to write rendered card: %w", err)
	}

	return path, nil
}
