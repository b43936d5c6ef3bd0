// Package headless fetches fully rendered HTML from pages that build their
// content client-side, behind a small amount of bot-detection evasion.
package headless

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/DataHenHQ/useragent"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const (
	DefaultTimeout    = 45 * time.Second
	DefaultWaitBuffer = 2 * time.Second
)

// WaitStrategy navigates to a URL and blocks until the page has finished
// rendering the content of interest. Site-specific strategies can wait on
// counters, attributes or whatever the page exposes.
type WaitStrategy func(ctx context.Context, url string) error

// WaitVisible is the plain strategy: navigate and wait until the given
// selector is visible.
func WaitVisible(selector string) WaitStrategy {
	return func(ctx context.Context, url string) error {
		return chromedp.Run(ctx,
			chromedp.Navigate(url),
			chromedp.Evaluate(`Object.defineProperty(navigator, 'webdriver', {get: () => false, configurable: true});`, nil),
			chromedp.WaitVisible(selector, chromedp.ByQuery),
		)
	}
}

// FetchRenderedContent navigates to url, runs the strategy to let dynamic
// content settle, and returns the outer HTML of extractionSelector.
func FetchRenderedContent(parentCtx context.Context, logger *zap.Logger, url string, strategy WaitStrategy, extractionSelector string) (io.Reader, error) {
	ua, err := useragent.Desktop()
	if err != nil {
		return nil, fmt.Errorf("could not generate random UA: %w", err)
	}

	ctx, cancel := context.WithTimeout(parentCtx, DefaultTimeout)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(ua),
		chromedp.Headless,
		chromedp.WindowSize(1920, 1080),

		chromedp.Flag("enable-automation", false),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-popup-blocking", true),
		chromedp.Flag("ignore-certificate-errors", true),
		chromedp.Flag("no-default-browser-check", true),
		chromedp.Flag("no-first-run", true),

		// required when running inside containers
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("no-zygote", true),
		chromedp.Flag("single-process", true),
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	chromeCtx, chromeCancel := chromedp.NewContext(allocCtx)
	defer chromeCancel()

	if err := strategy(chromeCtx, url); err != nil {
		return nil, fmt.Errorf("wait strategy failed for %s: %w", url, err)
	}

	var fullHTML string
	tasks := chromedp.Tasks{
		// small buffer after the strategy reports ready
		chromedp.Sleep(DefaultWaitBuffer),
		chromedp.OuterHTML(extractionSelector, &fullHTML, chromedp.ByQuery),
	}
	if err := chromedp.Run(chromeCtx, tasks); err != nil {
		logger.Error("extraction failed",
			zap.String("url", url),
			zap.String("selector", extractionSelector),
			zap.Int("partial_length", len(fullHTML)),
			zap.Error(err))
		return nil, fmt.Errorf("failed to extract HTML from selector %q: %w", extractionSelector, err)
	}

	return bytes.NewReader([]byte(fullHTML)), nil
}
