package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// QueueReports is the Redis list key for report export jobs.
	QueueReports = "worker:reports"
	// QueueDLQ is the dead-letter queue for failed jobs after retries.
	QueueDLQ = "worker:dlq"
	// MaxRetries is the number of times to retry a job before moving to DLQ.
	MaxRetries = 3
	// RetryBackoff is the delay between retries.
	RetryBackoff = 10 * time.Second
	// DequeueTimeout bounds one BLPOP so the worker notices shutdown.
	DequeueTimeout = 5 * time.Second
	// ExportTTL is how long an export status stays readable.
	ExportTTL = 24 * time.Hour

	exportKeyPrefix = "report:export:"
)

// ErrExportNotFound is returned for unknown or expired export ids.
var ErrExportNotFound = errors.New("export not found")

// JobType identifies the job kind.
type JobType string

const (
	JobTypeReportExport JobType = "report_export"
)

// ReportExportPayload is the payload for report export jobs.
type ReportExportPayload struct {
	ExportID    string `json:"export_id"`
	Format      string `json:"format"`
	RequestedBy string `json:"requested_by,omitempty"`
}

// Job is a generic job envelope.
type Job struct {
	ID        string          `json:"id"`
	Type      JobType         `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Attempt   int             `json:"attempt"`
	CreatedAt time.Time       `json:"created_at"`
}

// Export states.
const (
	ExportPending = "pending"
	ExportRunning = "running"
	ExportDone    = "done"
	ExportFailed  = "failed"
)

// ExportStatus is the progress record of one export, polled by the console.
type ExportStatus struct {
	ID          string    `json:"id"`
	Format      string    `json:"format"`
	Status      string    `json:"status"`
	Filename    string    `json:"filename,omitempty"`
	Key         string    `json:"key,omitempty"`
	URL         string    `json:"url,omitempty"`
	Error       string    `json:"error,omitempty"`
	RequestedBy string    `json:"requestedBy,omitempty"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Queue enqueues and dequeues jobs via Redis.
type Queue struct {
	client redis.UniversalClient
	logger *zap.Logger
}

// NewQueue creates a new Redis-backed job queue.
func NewQueue(client redis.UniversalClient, logger *zap.Logger) *Queue {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Queue{client: client, logger: logger}
}

// EnqueueReportExport records a pending export and enqueues the job that builds it.
func (q *Queue) EnqueueReportExport(ctx context.Context, format, requestedBy string) (*ExportStatus, error) {
	payload := ReportExportPayload{ExportID: uuid.NewString(), Format: format, RequestedBy: requestedBy}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	job := Job{
		ID:        uuid.New().String(),
		Type:      JobTypeReportExport,
		Payload:   body,
		CreatedAt: time.Now(),
	}
	raw, err := json.Marshal(job)
	if err != nil {
		return nil, fmt.Errorf("marshal job: %w", err)
	}
	st := &ExportStatus{ID: payload.ExportID, Format: format, Status: ExportPending, RequestedBy: requestedBy}
	if err := q.SetExportStatus(ctx, st); err != nil {
		return nil, err
	}
	if err := q.client.RPush(ctx, QueueReports, raw).Err(); err != nil {
		return nil, fmt.Errorf("rpush: %w", err)
	}
	q.logger.Debug("enqueued report export job", zap.String("job_id", job.ID), zap.String("export_id", payload.ExportID), zap.String("format", format))
	return st, nil
}

// Dequeue blocks up to DequeueTimeout for a job. A nil job with nil error means the wait timed out.
func (q *Queue) Dequeue(ctx context.Context) (*Job, error) {
	result, err := q.client.BLPop(ctx, DequeueTimeout, QueueReports).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	if len(result) < 2 {
		return nil, nil
	}
	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		q.logger.Warn("invalid job payload", zap.String("raw", result[1]), zap.Error(err))
		return nil, nil
	}
	return &job, nil
}

// Retry re-enqueues a job with incremented attempt. If attempt >= MaxRetries, pushes to DLQ instead
// and reports true.
func (q *Queue) Retry(ctx context.Context, job *Job) (bool, error) {
	job.Attempt++
	raw, err := json.Marshal(job)
	if err != nil {
		return false, err
	}
	if job.Attempt >= MaxRetries {
		if err := q.client.RPush(ctx, QueueDLQ, raw).Err(); err != nil {
			q.logger.Error("dlq push failed", zap.Error(err), zap.String("job_id", job.ID))
			return true, err
		}
		q.logger.Warn("job moved to DLQ", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt))
		return true, nil
	}
	if err := q.client.RPush(ctx, QueueReports, raw).Err(); err != nil {
		return false, err
	}
	q.logger.Info("job retried", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt))
	return false, nil
}

// SetExportStatus stores st under its id, refreshing the TTL.
func (q *Queue) SetExportStatus(ctx context.Context, st *ExportStatus) error {
	st.UpdatedAt = time.Now().UTC()
	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal export status: %w", err)
	}
	if err := q.client.Set(ctx, exportKeyPrefix+st.ID, raw, ExportTTL).Err(); err != nil {
		return fmt.Errorf("set export status: %w", err)
	}
	return nil
}

// GetExportStatus loads the status of export id.
func (q *Queue) GetExportStatus(ctx context.Context, id string) (*ExportStatus, error) {
	raw, err := q.client.Get(ctx, exportKeyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrExportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get export status: %w", err)
	}
	var st ExportStatus
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, fmt.Errorf("unmarshal export status: %w", err)
	}
	return &st, nil
}
