package artifact

import (
	"context"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/julianshen/codefsm/internal/logging"
)

// DefaultSnapshotTimeout bounds a headless render when the caller's
// context has no deadline.
const DefaultSnapshotTimeout = 60 * time.Second

// Snapshot opens the viewer at htmlPath in headless Chrome, waits for
// Mermaid to draw the diagram and saves a PNG of it to pngPath.
// It needs a local Chrome or Chromium and network access to the Mermaid CDN.
func Snapshot(ctx context.Context, htmlPath, pngPath string) error {
	abs, err := filepath.Abs(htmlPath)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", htmlPath, err)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultSnapshotTimeout)
		defer cancel()
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, opts...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	logging.New("artifact").Debug("rendering snapshot", "viewer", abs, "png", pngPath)

	var png []byte
	err = chromedp.Run(browserCtx,
		chromedp.Navigate(fileURL(abs)),
		chromedp.WaitVisible("#diagram svg", chromedp.ByQuery),
		chromedp.Screenshot("#diagram", &png, chromedp.NodeVisible, chromedp.ByQuery),
	)
	if err != nil {
		return fmt.Errorf("rendering snapshot: %w", err)
	}
	return writeFile(pngPath, png)
}

func fileURL(abs string) string {
	p := filepath.ToSlash(abs)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return (&url.URL{Scheme: "file", Path: p}).String()
}
