package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jmakela/bottlecat/internal/domain"
	"github.com/jmakela/bottlecat/internal/logger"
	"github.com/jmakela/bottlecat/internal/metrics"
	"github.com/jmakela/bottlecat/internal/store"
)

// SyncItems ingests the current price list snapshot. Every run leaves an
// audit record; a failed run is sealed with whatever partial counters it
// reached. Re-running an unchanged snapshot is a no-op for the data but still
// counts every existing row as updated.
func (s *Service) SyncItems(ctx context.Context) (*domain.SyncResult, error) {
	run, err := s.startRun(ctx, domain.SyncKindItems)
	if err != nil {
		return nil, err
	}
	start := s.now()
	log := logger.FromContext(ctx)

	parsed, err := s.source.FetchItems(ctx)
	if err != nil {
		s.failRun(ctx, run, fmt.Sprintf("fetch snapshot: %v", err))
		return nil, fmt.Errorf("fetch snapshot: %w", err)
	}

	valid, invalid := s.validator.Partition(parsed.Items)
	rowErrors := append(append([]string{}, parsed.RowErrors...), invalid...)
	metrics.SyncRowsProcessed.WithLabelValues(string(run.Kind), "invalid").
		Add(float64(len(rowErrors)))

	docs := make([]store.Document, 0, len(valid))
	for _, item := range valid {
		doc, err := store.NewDocument(item.ID, item)
		if err != nil {
			s.failRun(ctx, run, fmt.Sprintf("encode item %s: %v", item.ID, err))
			return nil, fmt.Errorf("encode item %s: %w", item.ID, err)
		}
		docs = append(docs, doc)
	}

	existing, err := s.existingIDs(ctx, s.items)
	if err != nil {
		s.failRun(ctx, run, fmt.Sprintf("list existing items: %v", err))
		return nil, fmt.Errorf("list existing items: %w", err)
	}

	added, updated := 0, 0
	for _, doc := range docs {
		if existing[doc.ID] {
			updated++
		} else {
			added++
		}
	}

	if err := s.bulkUpsert(ctx, s.items, docs); err != nil {
		run.Added = added
		run.Updated = updated
		s.failRun(ctx, run, fmt.Sprintf("write batch: %v", err))
		return nil, fmt.Errorf("write batch: %w", err)
	}

	run.Complete(len(valid), added, updated, rowErrors, s.now())
	if err := s.putRun(ctx, run); err != nil {
		return nil, err
	}
	s.caches.Clear()

	metrics.SyncRowsProcessed.WithLabelValues(string(run.Kind), "added").Add(float64(added))
	metrics.SyncRowsProcessed.WithLabelValues(string(run.Kind), "updated").Add(float64(updated))
	metrics.SyncRunsTotal.WithLabelValues(string(run.Kind), string(run.Status)).Inc()
	metrics.SyncDuration.WithLabelValues(string(run.Kind)).Observe(s.now().Sub(start).Seconds())

	log.Info("item sync completed",
		"run_id", run.ID, "processed", run.Processed,
		"added", added, "updated", updated, "row_errors", len(rowErrors))

	return resultOf(run), nil
}

// SyncOutlets scrapes the outlet listing and upserts every outlet.
func (s *Service) SyncOutlets(ctx context.Context) (*domain.SyncResult, error) {
	run, err := s.startRun(ctx, domain.SyncKindOutlets)
	if err != nil {
		return nil, err
	}
	start := s.now()

	outlets, err := s.scraper.FetchOutlets(ctx)
	if err != nil {
		s.failRun(ctx, run, fmt.Sprintf("fetch outlets: %v", err))
		return nil, fmt.Errorf("fetch outlets: %w", err)
	}

	docs := make([]store.Document, 0, len(outlets))
	for _, outlet := range outlets {
		doc, err := store.NewDocument(outlet.ID, outlet)
		if err != nil {
			s.failRun(ctx, run, fmt.Sprintf("encode outlet %s: %v", outlet.ID, err))
			return nil, fmt.Errorf("encode outlet %s: %w", outlet.ID, err)
		}
		docs = append(docs, doc)
	}

	existing, err := s.existingIDs(ctx, s.outlets)
	if err != nil {
		s.failRun(ctx, run, fmt.Sprintf("list existing outlets: %v", err))
		return nil, fmt.Errorf("list existing outlets: %w", err)
	}
	added, updated := 0, 0
	for _, doc := range docs {
		if existing[doc.ID] {
			updated++
		} else {
			added++
		}
	}

	if err := s.bulkUpsert(ctx, s.outlets, docs); err != nil {
		run.Added = added
		run.Updated = updated
		s.failRun(ctx, run, fmt.Sprintf("write batch: %v", err))
		return nil, fmt.Errorf("write batch: %w", err)
	}

	run.Complete(len(outlets), added, updated, nil, s.now())
	if err := s.putRun(ctx, run); err != nil {
		return nil, err
	}

	metrics.SyncRunsTotal.WithLabelValues(string(run.Kind), string(run.Status)).Inc()
	metrics.SyncDuration.WithLabelValues(string(run.Kind)).Observe(s.now().Sub(start).Seconds())

	logger.FromContext(ctx).Info("outlet sync completed",
		"run_id", run.ID, "processed", run.Processed, "added", added, "updated", updated)

	return resultOf(run), nil
}

// ListSyncRuns returns the most recent sync audit records, newest first.
func (s *Service) ListSyncRuns(ctx context.Context, limit int) ([]domain.SyncRun, error) {
	if limit <= 0 || limit > maxSyncRunListLimit {
		limit = maxSyncRunListLimit
	}
	docs, err := s.syncRuns.Find(ctx, store.Query{
		OrderBy: "started_at",
		Desc:    true,
		Limit:   limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list sync runs: %w", err)
	}
	runs, err := store.DecodeAll[domain.SyncRun](docs)
	if err != nil {
		return nil, fmt.Errorf("decode sync runs: %w", err)
	}
	return runs, nil
}

// bulkUpsert writes documents in batches under the store's batch ceiling.
// The store's upsert preserves each document's original creation timestamp.
func (s *Service) bulkUpsert(ctx context.Context, coll store.Collection, docs []store.Document) error {
	for start := 0; start < len(docs); start += store.MaxBatchSize {
		end := start + store.MaxBatchSize
		if end > len(docs) {
			end = len(docs)
		}
		if err := coll.BulkPut(ctx, docs[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) existingIDs(ctx context.Context, coll store.Collection) (map[string]bool, error) {
	docs, err := coll.Find(ctx, store.Query{})
	if err != nil {
		return nil, err
	}
	ids := make(map[string]bool, len(docs))
	for _, doc := range docs {
		ids[doc.ID] = true
	}
	return ids, nil
}

func (s *Service) startRun(ctx context.Context, kind domain.SyncKind) (*domain.SyncRun, error) {
	run := &domain.SyncRun{
		ID:        uuid.NewString(),
		Kind:      kind,
		Status:    domain.SyncStarted,
		StartedAt: s.now(),
	}
	if err := s.putRun(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

// failRun seals the audit record; the original error is what the caller
// gets, so a failure to persist the seal is only logged.
func (s *Service) failRun(ctx context.Context, run *domain.SyncRun, msg string) {
	run.Fail(msg, s.now())
	metrics.SyncRunsTotal.WithLabelValues(string(run.Kind), string(run.Status)).Inc()
	if err := s.putRun(ctx, run); err != nil {
		logger.FromContext(ctx).Error("sealing failed sync run", "run_id", run.ID, "error", err)
	}
}

func (s *Service) putRun(ctx context.Context, run *domain.SyncRun) error {
	doc, err := store.NewDocument(run.ID, run)
	if err != nil {
		return fmt.Errorf("encode sync run: %w", err)
	}
	if err := s.syncRuns.Put(ctx, doc); err != nil {
		return fmt.Errorf("persist sync run: %w", err)
	}
	return nil
}

func resultOf(run *domain.SyncRun) *domain.SyncResult {
	return &domain.SyncResult{
		RunID:     run.ID,
		Kind:      run.Kind,
		Processed: run.Processed,
		Added:     run.Added,
		Updated:   run.Updated,
		Errors:    run.Errors,
	}
}
