package worker

// ============================================================================
// Log Messages - Worker Pool
// ============================================================================

// LogMsgWorkerJobFailed is logged when a worker fails to process a job
const LogMsgWorkerJobFailed = "worker job failed"

// ============================================================================
// Log Messages - Sync Jobs
// ============================================================================

// Log messages for the periodic catalog sync jobs
const (
	LogMsgSyncJobStarting  = "scheduled sync starting"
	LogMsgSyncJobCompleted = "scheduled sync completed"
	LogMsgSyncJobSkipped   = "scheduled sync skipped, queue full"
)
