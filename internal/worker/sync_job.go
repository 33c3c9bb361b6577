package worker

import (
	"context"

	"github.com/jmakela/bottlecat/internal/domain"
	"github.com/jmakela/bottlecat/internal/logger"
)

// Syncer runs one catalog sync pass.
type Syncer interface {
	SyncItems(ctx context.Context) (*domain.SyncResult, error)
	SyncOutlets(ctx context.Context) (*domain.SyncResult, error)
}

// SyncJob refreshes one slice of the catalog on a schedule.
type SyncJob struct {
	kind   string
	syncer Syncer
}

// NewItemSyncJob creates the periodic price-list re-sync job.
func NewItemSyncJob(syncer Syncer) *SyncJob {
	return &SyncJob{kind: "items", syncer: syncer}
}

// NewOutletSyncJob creates the periodic outlet re-sync job.
func NewOutletSyncJob(syncer Syncer) *SyncJob {
	return &SyncJob{kind: "outlets", syncer: syncer}
}

func (j *SyncJob) Name() string { return "sync-" + j.kind }

func (j *SyncJob) Process(ctx context.Context) error {
	log := logger.FromContext(ctx)
	log.Info(LogMsgSyncJobStarting, "job", j.Name())

	var (
		result *domain.SyncResult
		err    error
	)
	switch j.kind {
	case "outlets":
		result, err = j.syncer.SyncOutlets(ctx)
	default:
		result, err = j.syncer.SyncItems(ctx)
	}
	if err != nil {
		return err
	}

	log.Info(LogMsgSyncJobCompleted,
		"job", j.Name(),
		"added", result.Added,
		"updated", result.Updated,
		"errors", len(result.Errors))
	return nil
}
