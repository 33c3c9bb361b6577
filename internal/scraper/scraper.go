package scraper

import (
	"fmt"
	"time"
)

// Scraper exposes the site-facing operations on top of a managed session.
// Every operation is rate-limited and serialized by the session.
type Scraper struct {
	session *Session

	// loadMoreWait is how long lazily loaded content gets to render after
	// each scroll/click round.
	loadMoreWait time.Duration
}

// New creates a scraper over the given session.
func New(session *Session) *Scraper {
	return &Scraper{session: session, loadMoreWait: 500 * time.Millisecond}
}

// Session returns the underlying session, mainly for lifecycle control.
func (sc *Scraper) Session() *Session {
	return sc.session
}

func (sc *Scraper) url(format string, args ...any) string {
	return sc.session.baseURL + fmt.Sprintf(format, args...)
}
