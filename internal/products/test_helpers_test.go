package products

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/ammargroup/storefront-backend/pkg/config"
	"github.com/ammargroup/storefront-backend/pkg/db"
	"github.com/ammargroup/storefront-backend/pkg/db/models"
	"github.com/ammargroup/storefront-backend/pkg/logger"
	"github.com/ammargroup/storefront-backend/pkg/storage/local"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type harness struct {
	svc   *service
	conn  *gorm.DB
	store *local.Store
	queue *recordingQueue
}

type recordingQueue struct {
	urls []string
}

func (q *recordingQueue) Enqueue(_ context.Context, urls []string) error {
	q.urls = append(q.urls, urls...)
	return nil
}

// failingStore wraps the real store but refuses to delete committed files,
// to exercise the cleanup-queue fallback.
type failingStore struct {
	*local.Store
}

func (f *failingStore) Remove(string) error {
	return io.ErrClosedPipe
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := conn.AutoMigrate(&models.Product{}, &models.ProductImage{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return conn
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	conn := openTestDB(t)

	store, err := local.New(context.Background(), config.UploadsConfig{
		Dir:        t.TempDir(),
		PublicPath: "/uploads",
	}, nil)
	if err != nil {
		t.Fatalf("open asset store: %v", err)
	}

	queue := &recordingQueue{}
	svc, err := NewService(
		NewRepository(conn),
		db.FromConn(conn),
		store,
		queue,
		logger.New(logger.Options{ServiceName: "products-test"}),
	)
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	return &harness{svc: svc.(*service), conn: conn, store: store, queue: queue}
}

func upload(name, content string) FileUpload {
	return FileUpload{Filename: name, Content: strings.NewReader(content)}
}

func mustCreate(t *testing.T, h *harness, files ...FileUpload) *ProductDTO {
	t.Helper()
	dto, err := h.svc.Create(context.Background(), CreateProductInput{
		Name:           "Impact Wrench",
		Specifications: []string{"450 Nm", "1/2 in drive"},
		Features:       []string{"Brushless motor"},
		StockCount:     12,
		InStock:        true,
	}, files)
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	return dto
}

func fileCount(t *testing.T, h *harness) int {
	t.Helper()
	urls, err := h.store.List()
	if err != nil {
		t.Fatalf("list store: %v", err)
	}
	return len(urls)
}
