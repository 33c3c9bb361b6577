package bootstrap

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/jmakela/bottlecat/internal/domain"
	"github.com/jmakela/bottlecat/internal/logger"
	"github.com/jmakela/bottlecat/internal/store"
)

// Status is the process-wide data readiness state.
type Status string

const (
	StatusNotChecked Status = "not_checked"
	StatusLoading    Status = "loading"
	StatusChecked    Status = "checked"
)

// SeedImporter loads a seed bundle through the catalog's upsert path.
type SeedImporter interface {
	ImportSeed(ctx context.Context, bundle *domain.SeedBundle) error
}

// Loader performs the ensure-data check exactly once per process. Concurrent
// callers during the load all await the same in-flight operation. The check
// completes into the checked state even when loading fails: a failed seed
// load is not retried within the process lifetime.
type Loader struct {
	mu     sync.Mutex
	status Status
	group  singleflight.Group

	items    store.Collection
	importer SeedImporter
	seedData []byte
}

// New creates a loader. seedData is the embedded seed bundle JSON; nil or
// empty means no seed is available.
func New(st store.Store, importer SeedImporter, seedData []byte) *Loader {
	return &Loader{
		status:   StatusNotChecked,
		items:    st.Collection(store.CollectionItems),
		importer: importer,
		seedData: seedData,
	}
}

// Status returns the current readiness state.
func (l *Loader) Status() Status {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.status
}

func (l *Loader) setStatus(s Status) {
	l.mu.Lock()
	l.status = s
	l.mu.Unlock()
}

// EnsureData guarantees the store has been checked for data this process.
// An empty store is populated from the embedded seed bundle. Only the callers
// awaiting the initial check ever see a load error; once checked, EnsureData
// returns nil immediately.
func (l *Loader) EnsureData(ctx context.Context) error {
	if l.Status() == StatusChecked {
		return nil
	}

	_, err, _ := l.group.Do("ensure-data", func() (any, error) {
		if l.Status() == StatusChecked {
			return nil, nil
		}
		l.setStatus(StatusLoading)
		defer l.setStatus(StatusChecked)
		return nil, l.load(ctx)
	})
	return err
}

func (l *Loader) load(ctx context.Context) error {
	log := logger.FromContext(ctx)

	count, err := l.items.Count(ctx)
	if err != nil {
		return fmt.Errorf("count items: %w", err)
	}
	if count > 0 {
		log.Debug("store already populated", "items", count)
		return nil
	}

	if len(l.seedData) == 0 {
		log.Warn("store is empty and no seed bundle is available")
		return nil
	}

	var bundle domain.SeedBundle
	if err := json.Unmarshal(l.seedData, &bundle); err != nil {
		return fmt.Errorf("decode seed bundle: %w", err)
	}
	if bundle.Empty() {
		log.Warn("seed bundle is empty")
		return nil
	}

	log.Info("populating empty store from seed bundle",
		"version", bundle.Version, "exported_at", bundle.ExportedAt)
	return l.importer.ImportSeed(ctx, &bundle)
}
