// Package worker consumes report export jobs: refetch every collection, render the report, upload it
// to the reports bucket and publish the export status.
package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/church-console/backend/internal/reports"
	"github.com/church-console/backend/internal/store"
	"github.com/church-console/backend/pkg/queue"
	"github.com/church-console/backend/pkg/storage"
)

// Jobs is the queue side of the processor.
type Jobs interface {
	Dequeue(ctx context.Context) (*queue.Job, error)
	Retry(ctx context.Context, job *queue.Job) (bool, error)
	SetExportStatus(ctx context.Context, st *queue.ExportStatus) error
}

// Source supplies the data a report is built from.
type Source interface {
	FetchAll(ctx context.Context) error
	Snapshot() store.Snapshot
}

// Uploader stores rendered reports.
type Uploader interface {
	Upload(ctx context.Context, bucket, key, contentType string, body io.Reader, contentLength int64, publicRead bool) (string, error)
	GeneratePresignedDownloadURL(ctx context.Context, bucket, key string, expires time.Duration) (string, error)
	ReportsBucket() string
	PresignExpire() time.Duration
}

// ReportProcessor processes report export jobs.
type ReportProcessor struct {
	jobs    Jobs
	source  Source
	files   Uploader
	logger  *zap.Logger
	now     func() time.Time
	backoff time.Duration
}

// NewReportProcessor creates a report export processor.
func NewReportProcessor(jobs Jobs, source Source, files Uploader, logger *zap.Logger) *ReportProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportProcessor{jobs: jobs, source: source, files: files, logger: logger, now: time.Now, backoff: queue.RetryBackoff}
}

// Process executes one report export job.
func (p *ReportProcessor) Process(ctx context.Context, job *queue.Job) error {
	if job.Type != queue.JobTypeReportExport {
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
	var payload queue.ReportExportPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}
	format, err := reports.ParseFormat(payload.Format)
	if err != nil {
		return err
	}

	st := &queue.ExportStatus{ID: payload.ExportID, Format: string(format), Status: queue.ExportRunning, RequestedBy: payload.RequestedBy}
	if err := p.jobs.SetExportStatus(ctx, st); err != nil {
		p.logger.Warn("set export status failed", zap.String("export_id", st.ID), zap.Error(err))
	}

	if err := p.source.FetchAll(ctx); err != nil {
		return fmt.Errorf("fetch collections: %w", err)
	}
	report, err := reports.Build(format, p.source.Snapshot(), p.now())
	if err != nil {
		return err
	}

	bucket := p.files.ReportsBucket()
	key := storage.ReportKey(payload.ExportID, report.Filename)
	if _, err := p.files.Upload(ctx, bucket, key, report.ContentType, bytes.NewReader(report.Body), int64(len(report.Body)), false); err != nil {
		return fmt.Errorf("s3 upload: %w", err)
	}
	url, err := p.files.GeneratePresignedDownloadURL(ctx, bucket, key, p.files.PresignExpire())
	if err != nil {
		return err
	}

	st.Status = queue.ExportDone
	st.Filename = report.Filename
	st.Key = key
	st.URL = url
	if err := p.jobs.SetExportStatus(ctx, st); err != nil {
		return fmt.Errorf("update export status: %w", err)
	}
	p.logger.Info("report export completed", zap.String("export_id", st.ID), zap.String("s3_key", key), zap.Int("bytes", len(report.Body)))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error. Jobs that exhaust their retries are
// marked failed.
func (p *ReportProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("report worker stopping")
			return
		default:
		}

		job, err := p.jobs.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			p.sleep(ctx)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt), zap.Error(err))
			dead, reErr := p.jobs.Retry(ctx, job)
			if reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			if dead {
				p.markFailed(ctx, job, err)
			}
			p.sleep(ctx)
		}
	}
}

func (p *ReportProcessor) markFailed(ctx context.Context, job *queue.Job, cause error) {
	var payload queue.ReportExportPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil || payload.ExportID == "" {
		return
	}
	st := &queue.ExportStatus{ID: payload.ExportID, Format: payload.Format, Status: queue.ExportFailed, Error: cause.Error(), RequestedBy: payload.RequestedBy}
	if err := p.jobs.SetExportStatus(ctx, st); err != nil {
		p.logger.Warn("set export status failed", zap.String("export_id", st.ID), zap.Error(err))
	}
}

func (p *ReportProcessor) sleep(ctx context.Context) {
	t := time.NewTimer(p.backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
