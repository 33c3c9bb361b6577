package pricelist

import (
	"context"
	"errors"
	"time"

	"github.com/jmakela/bottlecat/internal/domain"
	"github.com/jmakela/bottlecat/internal/throttle"
)

// Download retry budget. Blocked snapshots are terminal: a 403 or an HTML
// error page won't turn into a spreadsheet by asking again.
const (
	downloadMaxAttempts = 3
	downloadBackoffBase = 2 * time.Second
	downloadBackoffMax  = 30 * time.Second
)

// SnapshotDownloader fetches the raw price list spreadsheet.
type SnapshotDownloader interface {
	Download(ctx context.Context) ([]byte, error)
}

// Source couples the session-managed download with parsing, so consumers see
// one fetch step that yields parsed rows. Transient download failures are
// retried with exponential backoff.
type Source struct {
	downloader SnapshotDownloader
	retry      throttle.Policy
}

// NewSource wraps a downloader.
func NewSource(downloader SnapshotDownloader) *Source {
	return &Source{
		downloader: downloader,
		retry: throttle.Policy{
			MaxAttempts: downloadMaxAttempts,
			Backoff:     throttle.NewBackoff(downloadBackoffBase, 2.0, downloadBackoffMax),
			Retryable: func(err error) bool {
				return !errors.Is(err, domain.ErrSnapshotBlocked)
			},
		},
	}
}

// FetchItems downloads the current price list snapshot and parses it.
func (s *Source) FetchItems(ctx context.Context) (*ParseResult, error) {
	var data []byte
	err := throttle.Retry(ctx, s.retry, func(ctx context.Context) error {
		var err error
		data, err = s.downloader.Download(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return Parse(data)
}
