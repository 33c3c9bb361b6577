package pricelist

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"

	"github.com/jmakela/bottlecat/internal/domain"
	"github.com/jmakela/bottlecat/internal/logger"
)

// Spreadsheet content types the site serves for the price list. Anything
// else means the download was intercepted (block page, HTML error page) and
// must not be treated as a successful empty result.
var spreadsheetContentTypes = []string{
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"application/vnd.ms-excel",
	"application/octet-stream",
}

// Downloader fetches the published price list spreadsheet. The site only
// serves the file to clients that look like a browser session: the fetch is
// two-step, first visiting the site root for cookies, then requesting the
// spreadsheet with those cookies and a matching referrer.
type Downloader struct {
	client       *http.Client
	siteBaseURL  string
	priceListURL string
	userAgent    string
}

// NewDownloader creates a downloader with its own cookie jar.
func NewDownloader(siteBaseURL, priceListURL, userAgent string) (*Downloader, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return &Downloader{
		client: &http.Client{
			Jar:     jar,
			Timeout: 60 * time.Second,
		},
		siteBaseURL:  siteBaseURL,
		priceListURL: priceListURL,
		userAgent:    userAgent,
	}, nil
}

// Download performs the two-step fetch and returns the raw spreadsheet bytes.
func (d *Downloader) Download(ctx context.Context) ([]byte, error) {
	log := logger.FromContext(ctx)

	if err := d.establishSession(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.priceListURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build price list request: %w", err)
	}
	d.setBrowserHeaders(req)
	req.Header.Set("Referer", d.siteBaseURL+"/")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download price list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", domain.ErrSnapshotBlocked, resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if !isSpreadsheet(contentType) {
		return nil, fmt.Errorf("%w: unexpected content type %q", domain.ErrSnapshotBlocked, contentType)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read price list body: %w", err)
	}

	log.Info("price list downloaded", "bytes", len(data))
	return data, nil
}

// establishSession visits the site root so the jar picks up session cookies.
func (d *Downloader) establishSession(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.siteBaseURL, nil)
	if err != nil {
		return fmt.Errorf("build session request: %w", err)
	}
	d.setBrowserHeaders(req)

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("establish download session: %w", err)
	}
	// Body content is irrelevant, only the Set-Cookie headers matter.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
	resp.Body.Close()

	return nil
}

func (d *Downloader) setBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", d.userAgent)
	req.Header.Set("Accept-Language", "fi-FI,fi;q=0.9,en;q=0.8")
	req.Header.Set("Accept", "*/*")
}

func isSpreadsheet(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	for _, want := range spreadsheetContentTypes {
		if ct == want {
			return true
		}
	}
	return false
}
