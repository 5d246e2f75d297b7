package render

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/chromedp/chromedp"
)

const measureTimeout = 30 * time.Second

// Oracle measures content overflow in headless Chrome. It satisfies
// pagination.Measurer.
type Oracle struct {
	profile Profile
}

func NewOracle(profile Profile) *Oracle {
	return &Oracle{profile: profile}
}

// Measure loads the content markup in the measurement template and asks
// the browser whether the content box overflows its height budget.
func (o *Oracle) Measure(ctx context.Context, contentHTML string) (bool, error) {
	browserCtx, cancel := newBrowserContext(ctx, measureTimeout)
	defer cancel()

	var overflow bool
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(dataURL(measureHTML(o.profile, contentHTML))),
		chromedp.WaitReady("#content"),
		chromedp.Evaluate(`(() => {
			const el = document.querySelector('#content');
			return el.scrollHeight > el.clientHeight;
		})()`, &overflow),
	)
	if err != nil {
		return false, fmt.Errorf("overflow measurement failed: %w", err)
	}
	return overflow, nil
}

// newBrowserContext builds a fresh headless browser context with the flags
// needed to run inside containers.
func newBrowserContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, timeout)

	return browserCtx, func() {
		cancelTimeout()
		cancelBrowser()
		cancelAlloc()
	}
}

func dataURL(html string) string {
	return "data:text/html;charset=utf-8," + url.PathEscape(html)
}
