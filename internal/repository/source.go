package repository

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"cardwise/internal/models"
	"cardwise/pkg/headless"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// DocumentSource produces the raw HTML document for a bank's offer page.
// A missing document yields ErrSourceNotFound; the ingest layer skips that
// bank and continues with the rest.
type DocumentSource interface {
	Fetch(ctx context.Context, bank models.Bank) (io.ReadCloser, error)
}

// DirSource reads pre-scraped documents from a local directory, one file per
// bank named <bank_id>_offers.html.
type DirSource struct {
	dir string
}

func NewDirSource(dir string) *DirSource {
	return &DirSource{dir: dir}
}

// Path returns the expected document location for a bank.
func (s *DirSource) Path(bank models.Bank) string {
	return filepath.Join(s.dir, bank.ID()+"_offers.html")
}

func (s *DirSource) Fetch(ctx context.Context, bank models.Bank) (io.ReadCloser, error) {
	path := s.Path(bank)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("[%s] %w: %s", bank.Name, models.ErrSourceNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f, nil
}

// HTTPSource fetches documents over plain HTTP from configured per-bank
// URLs. Suitable for offer pages that render server-side.
type HTTPSource struct {
	client *resty.Client
	urls   map[string]string // bank id -> page URL
}

func NewHTTPSource(urls map[string]string) *HTTPSource {
	client := resty.New().
		SetTimeout(30 * time.Second).
		SetHeader("Accept", "text/html")
	return &HTTPSource{client: client, urls: urls}
}

func (s *HTTPSource) Fetch(ctx context.Context, bank models.Bank) (io.ReadCloser, error) {
	url, ok := s.urls[bank.ID()]
	if !ok {
		return nil, fmt.Errorf("[%s] %w: no URL configured", bank.Name, models.ErrSourceNotFound)
	}
	resp, err := s.client.R().SetContext(ctx).Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, fmt.Errorf("[%s] %w: %s returned 404", bank.Name, models.ErrSourceNotFound, url)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetching %s returned status %d", url, resp.StatusCode())
	}
	return io.NopCloser(bytes.NewReader(resp.Body())), nil
}

// HeadlessSource fetches documents through a headless browser for offer
// pages that only render client-side. The per-bank selector doubles as the
// render-completion signal and the extraction root.
type HeadlessSource struct {
	urls      map[string]string // bank id -> page URL
	selectors map[string]string // bank id -> container selector
	logger    *zap.Logger
}

func NewHeadlessSource(urls, selectors map[string]string, logger *zap.Logger) *HeadlessSource {
	return &HeadlessSource{urls: urls, selectors: selectors, logger: logger}
}

// resolve maps a bank to its page URL and container selector. Banks without
// a configured selector wait on (and extract) the whole body.
func (s *HeadlessSource) resolve(bank models.Bank) (url, selector string, err error) {
	url, ok := s.urls[bank.ID()]
	if !ok {
		return "", "", fmt.Errorf("[%s] %w: no URL configured", bank.Name, models.ErrSourceNotFound)
	}
	selector, ok = s.selectors[bank.ID()]
	if !ok {
		selector = "body"
	}
	return url, selector, nil
}

func (s *HeadlessSource) Fetch(ctx context.Context, bank models.Bank) (io.ReadCloser, error) {
	url, selector, err := s.resolve(bank)
	if err != nil {
		return nil, err
	}
	reader, err := headless.FetchRenderedContent(ctx, s.logger, url, headless.WaitVisible(selector), selector)
	if err != nil {
		return nil, fmt.Errorf("[%s] headless fetch failed: %w", bank.Name, err)
	}
	return io.NopCloser(reader), nil
}
