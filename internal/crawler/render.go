package crawler

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// Renderer returns the HTML of a page after client-side rendering.
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// ChromeRenderer renders pages in a shared headless Chrome instance. The
// marketing site injects its head tags at runtime, so a static fetch does not
// see titles, descriptions or structured data.
type ChromeRenderer struct {
	browserCtx context.Context
	cancel     context.CancelFunc
	timeout    time.Duration
	settle     time.Duration
}

func NewChromeRenderer(ctx context.Context, userAgent string, timeout time.Duration) *ChromeRenderer {
	opts := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.UserAgent(userAgent))
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	return &ChromeRenderer{
		browserCtx: browserCtx,
		cancel: func() {
			cancelBrowser()
			cancelAlloc()
		},
		timeout: timeout,
		settle:  500 * time.Millisecond,
	}
}

func (r *ChromeRenderer) Render(ctx context.Context, url string) (string, error) {
	tabCtx, cancelTab := chromedp.NewContext(r.browserCtx)
	defer cancelTab()

	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, r.timeout)
	defer cancelTimeout()

	// Stop the tab when the caller gives up.
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	var content string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(r.settle),
		chromedp.OuterHTML("html", &content, chromedp.ByQuery),
	)
	if err != nil {
		return "", fmt.Errorf("failed to render %s: %w", url, err)
	}

	return content, nil
}

// Close shuts the browser down.
func (r *ChromeRenderer) Close() {
	r.cancel()
}
