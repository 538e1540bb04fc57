package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vamlemat/sync-ps-to-ps-importer/models"
)

const (
	importQueueKey = "import:queue"
	importJobTTL   = 24 * time.Hour
)

// ImportJob is the Redis-persisted state of one queued import request.
type ImportJob struct {
	ID         string                `json:"id"`
	Status     string                `json:"status"`
	ProductIDs []int                 `json:"product_ids"`
	Error      string                `json:"error,omitempty"`
	Result     *models.ImportSummary `json:"result,omitempty"`
	CreatedAt  time.Time             `json:"created_at"`
}

// ImportQueue queues import requests through Redis so the HTTP handler
// can answer immediately while a background worker drains the queue.
type ImportQueue struct {
	rdb *redis.Client
}

func NewImportQueue(rdb *redis.Client) *ImportQueue {
	return &ImportQueue{rdb: rdb}
}

func jobKey(jobID string) string { return fmt.Sprintf("import:job:%s", jobID) }

// Enqueue registers a pending job and pushes its id onto the queue.
func (q *ImportQueue) Enqueue(ctx context.Context, remoteProductIDs []int) (string, error) {
	job := ImportJob{
		ID:         uuid.NewString(),
		Status:     "pending",
		ProductIDs: remoteProductIDs,
		CreatedAt:  time.Now().UTC(),
	}
	if err := q.saveJob(ctx, &job); err != nil {
		return "", err
	}
	if err := q.rdb.RPush(ctx, importQueueKey, job.ID).Err(); err != nil {
		return "", err
	}
	return job.ID, nil
}

// Job returns the current state of a queued job, nil when unknown or
// expired.
func (q *ImportQueue) Job(ctx context.Context, jobID string) (*ImportJob, error) {
	val, err := q.rdb.Get(ctx, jobKey(jobID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var job ImportJob
	if err := json.Unmarshal([]byte(val), &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (q *ImportQueue) saveJob(ctx context.Context, job *ImportJob) error {
	b, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return q.rdb.Set(ctx, jobKey(job.ID), b, importJobTTL).Err()
}

// StartImportWorker consumes queued jobs and runs them through the
// importer, one job at a time.
func StartImportWorker(ctx context.Context, rdb *redis.Client, importer *ImporterService) {
	if rdb == nil || importer == nil {
		zap.L().Warn("import worker not started: missing dependencies")
		return
	}
	queue := NewImportQueue(rdb)

	go func() {
		zap.L().Info("import worker started", zap.String("queue", importQueueKey))
		for {
			select {
			case <-ctx.Done():
				zap.L().Info("import worker stopping")
				return
			default:
			}

			// BLPop with no timeout blocks until an item is available.
			res, err := rdb.BLPop(ctx, 0*time.Second, importQueueKey).Result()
			if err != nil {
				if ctx.Err() != nil {
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

			job, err := queue.Job(ctx, jobID)
			if err != nil || job == nil {
				zap.L().Error("failed to load job", zap.String("job", jobID), zap.Error(err))
				continue
			}

			job.Status = "processing"
			if err := queue.saveJob(ctx, job); err != nil {
				zap.L().Error("failed to mark job processing", zap.String("job", jobID), zap.Error(err))
			}

			summary := importer.ImportMany(ctx, job.ProductIDs)
			job.Result = &summary
			if summary.Errors > 0 && summary.Success == 0 {
				job.Status = "failed"
				job.Error = fmt.Sprintf("all %d imports failed", summary.Errors)
			} else {
				job.Status = "done"
			}
			if err := queue.saveJob(ctx, job); err != nil {
				zap.L().Error("failed to store job result", zap.String("job", jobID), zap.Error(err))
			}
		}
	}()
}
