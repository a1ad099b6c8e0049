package services

import (
	"context"
	"encoding/json"
	"time"

	"storefront-service/models"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// TransferQueueKey is the Redis list async transfer jobs are pushed to.
	TransferQueueKey  = "transfer:queue"
	transferJobPrefix = "transfer:job:"
	transferJobTTL    = 24 * time.Hour
)

// Transfer job statuses.
const (
	JobQueued  = "queued"
	JobRunning = "running"
	JobDone    = "done"
	JobFailed  = "failed"
)

// TransferProgress is the live progress snapshot stored on a job record.
type TransferProgress struct {
	Current int    `json:"current"`
	Total   int    `json:"total"`
	Message string `json:"message"`
}

// TransferJob is the Redis-persisted record of one async transfer.
type TransferJob struct {
	ID        string                 `json:"id"`
	SourceID  uuid.UUID              `json:"source_id"`
	TargetID  uuid.UUID              `json:"target_id"`
	Options   TransferOptions        `json:"options"`
	Status    string                 `json:"status"`
	Progress  TransferProgress       `json:"progress"`
	Result    *models.TransferResult `json:"result,omitempty"`
	Error     string                 `json:"error,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// TransferJobKey returns the Redis key holding a job record.
func TransferJobKey(id string) string {
	return transferJobPrefix + id
}

func saveTransferJob(ctx context.Context, rdb *redis.Client, job *TransferJob) error {
	job.UpdatedAt = time.Now().UTC()
	b, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return rdb.Set(ctx, TransferJobKey(job.ID), b, transferJobTTL).Err()
}

// EnqueueTransfer persists the job record and pushes its id onto the queue.
func EnqueueTransfer(ctx context.Context, rdb *redis.Client, job *TransferJob) error {
	job.Status = JobQueued
	job.CreatedAt = time.Now().UTC()
	if err := saveTransferJob(ctx, rdb, job); err != nil {
		return err
	}
	return rdb.RPush(ctx, TransferQueueKey, job.ID).Err()
}

// GetTransferJob loads a job record by id.
func GetTransferJob(ctx context.Context, rdb *redis.Client, id string) (*TransferJob, error) {
	val, err := rdb.Get(ctx, TransferJobKey(id)).Result()
	if err != nil {
		return nil, err
	}
	var job TransferJob
	if err := json.Unmarshal([]byte(val), &job); err != nil {
		return nil, err
	}
	return &job, nil
}

// StartTransferWorker starts a background worker that consumes job IDs from
// the Redis queue and runs transfers one at a time. Processing a single job
// at a time is what keeps concurrent transfers against the same target
// tenant from interleaving their quota brackets.
func StartTransferWorker(ctx context.Context, rdb *redis.Client, transferSvc *TransferService) {
	if rdb == nil || transferSvc == nil {
		zap.L().Warn("transfer worker not started: missing dependencies")
		return
	}

	go func() {
		zap.L().Info("transfer worker started", zap.String("queue", TransferQueueKey))
		for {
			select {
			case <-ctx.Done():
				zap.L().Info("transfer worker stopping")
				return
			default:
			}

			res, err := rdb.BLPop(ctx, 0*time.Second, TransferQueueKey).Result()
			if err != nil {
				if err == context.Canceled || err == context.DeadlineExceeded {
					return
				}
				zap.L().Error("redis BLPop failed", zap.Error(err))
				time.Sleep(500 * time.Millisecond)
				continue
			}
			if len(res) < 2 {
				continue
			}
			jobID := res[1]

			job, err := GetTransferJob(ctx, rdb, jobID)
			if err != nil {
				zap.L().Error("failed to read transfer job", zap.String("job", jobID), zap.Error(err))
				continue
			}

			job.Status = JobRunning
			if err := saveTransferJob(ctx, rdb, job); err != nil {
				zap.L().Error("failed to update transfer job", zap.String("job", jobID), zap.Error(err))
			}

			onProgress := func(current, total int, message string) {
				job.Progress = TransferProgress{Current: current, Total: total, Message: message}
				if err := saveTransferJob(ctx, rdb, job); err != nil {
					zap.L().Warn("failed to persist job progress", zap.String("job", jobID), zap.Error(err))
				}
			}

			result := transferSvc.Transfer(ctx, job.SourceID, job.TargetID, job.Options, onProgress)
			job.Result = result
			if result.Success {
				job.Status = JobDone
			} else {
				job.Status = JobFailed
				if len(result.Errors) > 0 {
					job.Error = result.Errors[0]
				}
			}
			if err := saveTransferJob(ctx, rdb, job); err != nil {
				zap.L().Error("failed to store transfer job result", zap.String("job", jobID), zap.Error(err))
			}
		}
	}()
}
