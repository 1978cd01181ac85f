package cleanup

import (
	"context"
	"testing"
	"time"

	"github.com/ammargroup/storefront-backend/pkg/logger"
)

type stubRefs struct {
	refs map[string]struct{}
}

func (s *stubRefs) ReferencedURLs(context.Context) (map[string]struct{}, error) {
	return s.refs, nil
}

type stubLister struct {
	files   map[string]time.Time
	removed []string
}

func (s *stubLister) List() ([]string, error) {
	urls := make([]string, 0, len(s.files))
	for url := range s.files {
		urls = append(urls, url)
	}
	return urls, nil
}

func (s *stubLister) ModifiedBefore(url string, cutoff time.Time) (bool, error) {
	return s.files[url].Before(cutoff), nil
}

func (s *stubLister) Remove(url string) error {
	s.removed = append(s.removed, url)
	delete(s.files, url)
	return nil
}

func TestOrphanSweepRemovesOnlyAgedUnreferencedFiles(t *testing.T) {
	now := time.Now()
	lister := &stubLister{files: map[string]time.Time{
		"/uploads/referenced.jpg":   now.Add(-48 * time.Hour),
		"/uploads/aged-orphan.jpg":  now.Add(-48 * time.Hour),
		"/uploads/fresh-orphan.jpg": now.Add(-time.Minute),
	}}
	refs := &stubRefs{refs: map[string]struct{}{
		"/uploads/referenced.jpg": {},
	}}

	job, err := NewOrphanSweepJob(OrphanSweepJobParams{
		Repo:      refs,
		Assets:    lister,
		Logger:    logger.New(logger.Options{ServiceName: "cleanup-test"}),
		Retention: 24 * time.Hour,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(lister.removed) != 1 || lister.removed[0] != "/uploads/aged-orphan.jpg" {
		t.Fatalf("expected only aged orphan removed, got %v", lister.removed)
	}
	if _, ok := lister.files["/uploads/referenced.jpg"]; !ok {
		t.Fatalf("referenced file must survive")
	}
	if _, ok := lister.files["/uploads/fresh-orphan.jpg"]; !ok {
		t.Fatalf("fresh file must survive the retention window")
	}
}
