package domain

import "errors"

// Error message string constants - single source of truth for error messages.
// Use these in assert.Contains() checks when testing error messages.
const (
	ErrMsgItemNotFound   = "item not found"
	ErrMsgOutletNotFound = "outlet not found"
	ErrMsgRatingNotFound = "rating not found"

	ErrMsgBotChallenge    = "bot verification challenge detected"
	ErrMsgSessionClosed   = "scraper session is closed"
	ErrMsgScrapeEmpty     = "scrape produced no data"
	ErrMsgSnapshotBlocked = "snapshot download blocked"
	ErrMsgHeaderNotFound  = "price list header row not found"

	ErrMsgInvalidInput = "invalid input"
)

// Common domain errors.
// Wrap these with fmt.Errorf("%w: ...", domain.ErrXxx) for additional context.
var (
	// Normal absences - callers treat these as nil results, not failures.
	ErrItemNotFound   = errors.New(ErrMsgItemNotFound)
	ErrOutletNotFound = errors.New(ErrMsgOutletNotFound)
	ErrRatingNotFound = errors.New(ErrMsgRatingNotFound)

	// Scraper errors.
	ErrBotChallenge  = errors.New(ErrMsgBotChallenge)
	ErrSessionClosed = errors.New(ErrMsgSessionClosed)
	ErrScrapeEmpty   = errors.New(ErrMsgScrapeEmpty)

	// Sync errors.
	ErrSnapshotBlocked = errors.New(ErrMsgSnapshotBlocked)
	ErrHeaderNotFound  = errors.New(ErrMsgHeaderNotFound)

	// Validation errors.
	ErrInvalidInput = errors.New(ErrMsgInvalidInput)
)
