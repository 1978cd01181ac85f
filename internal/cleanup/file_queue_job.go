package cleanup

import (
	"context"
	"fmt"
	"time"

	"github.com/ammargroup/storefront-backend/pkg/db/models"
	"github.com/ammargroup/storefront-backend/pkg/logger"
	"github.com/ammargroup/storefront-backend/pkg/metrics"
	"github.com/sethvargo/go-retry"
	"go.uber.org/multierr"
)

type queueStore interface {
	ListPending(ctx context.Context, maxAttempts int) ([]models.FileCleanup, error)
	Resolve(ctx context.Context, id int64) error
	RecordFailure(ctx context.Context, id int64, message string) error
}

type fileRemover interface {
	Remove(url string) error
}

// FileQueueJob drains the file_cleanup table: deletes the files that inline
// removal missed, retrying each with exponential backoff.
type FileQueueJob struct {
	repo          queueStore
	assets        fileRemover
	logg          *logger.Logger
	metrics       *metrics.JobMetrics
	maxAttempts   int
	retryBaseWait time.Duration
}

// FileQueueJobParams configure the queue drain job.
type FileQueueJobParams struct {
	Repo          queueStore
	Assets        fileRemover
	Logger        *logger.Logger
	Metrics       *metrics.JobMetrics
	MaxAttempts   int
	RetryBaseWait time.Duration
}

// NewFileQueueJob builds the queue drain job.
func NewFileQueueJob(params FileQueueJobParams) (*FileQueueJob, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("cleanup repository required")
	}
	if params.Assets == nil {
		return nil, fmt.Errorf("asset store required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	maxAttempts := params.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	baseWait := params.RetryBaseWait
	if baseWait <= 0 {
		baseWait = 200 * time.Millisecond
	}
	return &FileQueueJob{
		repo:          params.Repo,
		assets:        params.Assets,
		logg:          params.Logger,
		metrics:       params.Metrics,
		maxAttempts:   maxAttempts,
		retryBaseWait: baseWait,
	}, nil
}

// Name identifies the job in logs and metrics.
func (j *FileQueueJob) Name() string {
	return "file-cleanup-queue"
}

// Run processes every pending entry. Entries that keep failing stay queued
// until they exhaust their attempt budget.
func (j *FileQueueJob) Run(ctx context.Context) error {
	pending, err := j.repo.ListPending(ctx, j.maxAttempts)
	if err != nil {
		return fmt.Errorf("list pending cleanups: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	var errs error
	removed := 0
	for _, entry := range pending {
		if err := j.process(ctx, entry); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("cleanup %s: %w", entry.URL, err))
			continue
		}
		removed++
	}
	j.metrics.AddFilesRemoved(j.Name(), removed)
	return errs
}

func (j *FileQueueJob) process(ctx context.Context, entry models.FileCleanup) error {
	backoff := retry.WithMaxRetries(2, retry.NewExponential(j.retryBaseWait))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if removeErr := j.assets.Remove(entry.URL); removeErr != nil {
			return retry.RetryableError(removeErr)
		}
		return nil
	})
	if err != nil {
		if recordErr := j.repo.RecordFailure(ctx, entry.ID, err.Error()); recordErr != nil {
			return multierr.Append(err, recordErr)
		}
		return err
	}
	return j.repo.Resolve(ctx, entry.ID)
}
