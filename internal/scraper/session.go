package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jmakela/bottlecat/internal/domain"
	"github.com/jmakela/bottlecat/internal/logger"
	"github.com/jmakela/bottlecat/internal/metrics"
	"github.com/jmakela/bottlecat/internal/throttle"
)

// State is the session lifecycle state.
type State string

const (
	StateUninitialized      State = "uninitialized"
	StateBrowserReady       State = "browser_ready"
	StateSessionEstablished State = "session_established"
	StateScraping           State = "scraping"
	StateIdle               State = "idle"
	StateClosed             State = "closed"
)

// maxConsecutiveFailures forces session re-establishment once exceeded.
const maxConsecutiveFailures = 3

// challengeCheckScript inspects the loaded page for the site's bot
// verification interstitial.
const challengeCheckScript = `
(() => {
	const title = (document.title || '').toLowerCase();
	const body = (document.body && document.body.innerText || '').toLowerCase();
	return title.includes('verif') || title.includes('challenge') ||
		body.includes('verify you are human') || body.includes('pyyntösi vaikuttaa automatisoidulta');
})()
`

// consentDismissScript clicks the cookie consent accept button if the prompt
// is present; returns whether anything was clicked.
const consentDismissScript = `
(() => {
	const btn = document.querySelector('#onetrust-accept-btn-handler, .cookie-consent__accept, [data-testid="cookie-accept"]');
	if (btn) { btn.click(); return true; }
	return false;
})()
`

// Session owns the single external-site browsing session. All operations on
// it are serialized by an internal mutex; callers never have to coordinate.
type Session struct {
	mu sync.Mutex

	driver  Driver
	limiter *throttle.Limiter
	backoff *throttle.Backoff
	baseURL string

	state               State
	consecutiveFailures int

	// settleDelay gives challenge scripts time to run after the entry
	// page loads before the page is inspected.
	settleDelay time.Duration
}

// NewSession wraps an already-launched driver. The session is established
// lazily on first use.
func NewSession(driver Driver, limiter *throttle.Limiter, backoff *throttle.Backoff, baseURL string) *Session {
	return &Session{
		driver:      driver,
		limiter:     limiter,
		backoff:     backoff,
		baseURL:     strings.TrimRight(baseURL, "/"),
		state:       StateBrowserReady,
		settleDelay: 2 * time.Second,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Close shuts the browser down. The session cannot be reused afterwards.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return nil
	}
	s.state = StateClosed
	return s.driver.Close()
}

// do runs one scraper operation: rate-limit, ensure the session, run, track
// failures. The mutex serializes concurrent callers for the whole span.
func (s *Session) do(ctx context.Context, operation string, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateClosed {
		return domain.ErrSessionClosed
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	if err := s.establishLocked(ctx); err != nil {
		return err
	}

	s.state = StateScraping
	start := time.Now()
	err := fn(ctx)
	metrics.ScrapeDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	s.state = StateIdle

	if err != nil {
		metrics.ScrapeTotal.WithLabelValues(operation, "error").Inc()
		s.recordFailureLocked(ctx, err)
		// Wait out one backoff step before rethrowing so the next call,
		// retried or not, doesn't hammer the site.
		if IsRetryable(err) {
			s.waitBackoff(ctx)
		}
		return err
	}

	metrics.ScrapeTotal.WithLabelValues(operation, "ok").Inc()
	s.consecutiveFailures = 0
	s.backoff.Reset()
	return nil
}

func (s *Session) waitBackoff(ctx context.Context) {
	delay := s.backoff.NextDelay()
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// establishLocked visits the entry page, waits for the challenge scripts to
// settle and dismisses the cookie consent prompt. No-op when the session is
// already established.
func (s *Session) establishLocked(ctx context.Context) error {
	if s.state == StateSessionEstablished || s.state == StateIdle || s.state == StateScraping {
		return nil
	}

	log := logger.FromContext(ctx)
	log.Info("establishing browsing session", "url", s.baseURL)

	if err := s.driver.Navigate(ctx, s.baseURL+"/"); err != nil {
		return fmt.Errorf("visit entry page: %w", err)
	}

	// Give challenge scripts a moment to run before inspecting the page.
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(s.settleDelay):
	}

	if err := s.checkChallenge(ctx); err != nil {
		return err
	}

	var dismissed bool
	if err := s.driver.Evaluate(ctx, consentDismissScript, &dismissed); err != nil {
		log.Warn("cookie consent dismissal failed", "error", err)
	} else if dismissed {
		log.Debug("cookie consent dismissed")
	}

	s.state = StateSessionEstablished
	return nil
}

// checkChallenge inspects the current page for the bot verification
// interstitial. A detected challenge is a distinct, non-retryable-within-
// this-call error and immediately invalidates the session.
func (s *Session) checkChallenge(ctx context.Context) error {
	var challenged bool
	if err := s.driver.Evaluate(ctx, challengeCheckScript, &challenged); err != nil {
		return fmt.Errorf("challenge check: %w", err)
	}
	if challenged {
		metrics.BotChallengesDetected.Inc()
		s.state = StateBrowserReady
		return domain.ErrBotChallenge
	}
	return nil
}

func (s *Session) recordFailureLocked(ctx context.Context, err error) {
	log := logger.FromContext(ctx)

	if errors.Is(err, domain.ErrBotChallenge) {
		s.state = StateBrowserReady
		s.consecutiveFailures = 0
		log.Warn("bot challenge detected, session invalidated")
		return
	}

	s.consecutiveFailures++
	if s.consecutiveFailures > maxConsecutiveFailures {
		s.state = StateBrowserReady
		s.consecutiveFailures = 0
		metrics.SessionReestablishments.Inc()
		log.Warn("too many consecutive scrape failures, forcing session re-establishment")
	}
}

// IsRetryable classifies scraper errors for the retry combinator: network
// and timeout failures are retryable after a backoff wait, a bot challenge
// is not retryable within the same call.
func IsRetryable(err error) bool {
	if errors.Is(err, domain.ErrBotChallenge) || errors.Is(err, domain.ErrSessionClosed) {
		return false
	}
	return true
}
