package cleanup

import (
	"context"
	"fmt"
	"time"

	"github.com/ammargroup/storefront-backend/pkg/logger"
	"github.com/ammargroup/storefront-backend/pkg/metrics"
	"go.uber.org/multierr"
)

type refStore interface {
	ReferencedURLs(ctx context.Context) (map[string]struct{}, error)
}

type fileLister interface {
	List() ([]string, error)
	ModifiedBefore(url string, cutoff time.Time) (bool, error)
	Remove(url string) error
}

// OrphanSweepJob removes upload files that no catalog row points at. Only
// files older than the retention age are touched, so uploads staged by an
// in-flight request are never swept.
type OrphanSweepJob struct {
	repo      refStore
	assets    fileLister
	logg      *logger.Logger
	metrics   *metrics.JobMetrics
	retention time.Duration
	now       func() time.Time
}

// OrphanSweepJobParams configure the sweep job.
type OrphanSweepJobParams struct {
	Repo      refStore
	Assets    fileLister
	Logger    *logger.Logger
	Metrics   *metrics.JobMetrics
	Retention time.Duration
}

// NewOrphanSweepJob builds the sweep job.
func NewOrphanSweepJob(params OrphanSweepJobParams) (*OrphanSweepJob, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("cleanup repository required")
	}
	if params.Assets == nil {
		return nil, fmt.Errorf("asset store required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	retention := params.Retention
	if retention <= 0 {
		retention = 24 * time.Hour
	}
	return &OrphanSweepJob{
		repo:      params.Repo,
		assets:    params.Assets,
		logg:      params.Logger,
		metrics:   params.Metrics,
		retention: retention,
		now:       time.Now,
	}, nil
}

// Name identifies the job in logs and metrics.
func (j *OrphanSweepJob) Name() string {
	return "orphan-sweep"
}

// Run deletes aged files the database no longer references.
func (j *OrphanSweepJob) Run(ctx context.Context) error {
	refs, err := j.repo.ReferencedURLs(ctx)
	if err != nil {
		return fmt.Errorf("load referenced urls: %w", err)
	}

	stored, err := j.assets.List()
	if err != nil {
		return fmt.Errorf("list stored files: %w", err)
	}

	cutoff := j.now().Add(-j.retention)
	var errs error
	removed := 0
	for _, url := range stored {
		if _, referenced := refs[url]; referenced {
			continue
		}
		aged, err := j.assets.ModifiedBefore(url, cutoff)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("stat %s: %w", url, err))
			continue
		}
		if !aged {
			continue
		}
		if err := j.assets.Remove(url); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("remove %s: %w", url, err))
			continue
		}
		j.logg.Info(j.logg.WithField(ctx, "url", url), "removed orphaned upload")
		removed++
	}
	j.metrics.AddFilesRemoved(j.Name(), removed)
	return errs
}
