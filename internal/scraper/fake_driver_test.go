package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
)

// fakeDriver is a scripted Driver for tests. Evaluate responses are matched
// by a marker substring of the script; repeated markers pop queued values.
type fakeDriver struct {
	mu          sync.Mutex
	navigations []string
	clicks      []string
	responses   map[string][]any
	navErr      error
	clickErr    error
	closed      bool
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{responses: make(map[string][]any)}
}

// respond queues a response for scripts containing marker. Queued values are
// consumed in order; the last one sticks.
func (f *fakeDriver) respond(marker string, values ...any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[marker] = append(f.responses[marker], values...)
}

func (f *fakeDriver) Navigate(ctx context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.navErr != nil {
		return f.navErr
	}
	f.navigations = append(f.navigations, url)
	return nil
}

func (f *fakeDriver) WaitVisible(ctx context.Context, selector string) error {
	return nil
}

func (f *fakeDriver) Click(ctx context.Context, selector string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.clickErr != nil {
		return f.clickErr
	}
	f.clicks = append(f.clicks, selector)
	return nil
}

func (f *fakeDriver) Evaluate(ctx context.Context, script string, out any) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for marker, queue := range f.responses {
		if !strings.Contains(script, marker) || len(queue) == 0 {
			continue
		}
		value := queue[0]
		if len(queue) > 1 {
			f.responses[marker] = queue[1:]
		}
		if out == nil {
			return nil
		}
		data, err := json.Marshal(value)
		if err != nil {
			return err
		}
		return json.Unmarshal(data, out)
	}
	return errors.New("no scripted response for script")
}

func (f *fakeDriver) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeDriver) navigationCount(prefix string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, url := range f.navigations {
		if strings.HasPrefix(url, prefix) {
			n++
		}
	}
	return n
}

// scriptedSession wires a fake driver into a session with fast test timings
// and a quiet establishment path.
func scriptedSession(driver *fakeDriver) *Session {
	driver.respond("pyyntösi", false)
	driver.respond("onetrust", false)
	return newTestSession(driver)
}
