package inventory

import (
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/shopmesh/shopmesh-backend/pkg/db"
	"github.com/shopmesh/shopmesh-backend/pkg/db/models"
	"github.com/shopmesh/shopmesh-backend/pkg/enums"
	"github.com/shopmesh/shopmesh-backend/pkg/logger"
	"github.com/shopmesh/shopmesh-backend/pkg/outbox"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time {
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

type testEnv struct {
	conn  *gorm.DB
	svc   Service
	clock *testClock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	return newTestEnvWithThreshold(t, 3)
}

func newTestEnvWithThreshold(t *testing.T, threshold int) *testEnv {
	t.Helper()

	dsn := "file:inventory_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{SkipDefaultTransaction: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(
		&models.Product{},
		&models.StockReservation{},
		&models.InventoryTransaction{},
		&models.StockAlert{},
		&models.OutboxEvent{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	clock := &testClock{now: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)}
	logg := logger.New(logger.Options{ServiceName: "inventory-test", Output: io.Discard})
	client := db.NewWithConn(conn)

	svc, err := NewService(ServiceParams{
		DB:                client,
		Repo:              NewRepository(conn),
		Outbox:            outbox.NewService(outbox.NewRepository(conn), logg),
		Logger:            logg,
		ReservationTTL:    30 * time.Minute,
		LowStockThreshold: threshold,
		Now:               clock.Now,
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}

	return &testEnv{conn: conn, svc: svc, clock: clock}
}

func mustCreateProduct(t *testing.T, conn *gorm.DB, stock int) *models.Product {
	t.Helper()
	product := &models.Product{
		SKU:      fmt.Sprintf("SKU-%s", uuid.NewString()),
		Name:     "Test Product",
		Price:    decimal.NewFromFloat(19.99),
		Stock:    stock,
		IsActive: true,
	}
	if err := conn.Create(product).Error; err != nil {
		t.Fatalf("create product: %v", err)
	}
	return product
}

func countOutboxEvents(t *testing.T, conn *gorm.DB, eventType enums.OutboxEventType) int64 {
	t.Helper()
	var count int64
	if err := conn.Model(&models.OutboxEvent{}).Where("event_type = ?", eventType).Count(&count).Error; err != nil {
		t.Fatalf("count outbox events: %v", err)
	}
	return count
}

func reloadReservation(t *testing.T, conn *gorm.DB, id uuid.UUID) *models.StockReservation {
	t.Helper()
	var row models.StockReservation
	if err := conn.First(&row, "id = ?", id).Error; err != nil {
		t.Fatalf("reload reservation %s: %v", id, err)
	}
	return &row
}

func reloadProduct(t *testing.T, conn *gorm.DB, id uuid.UUID) *models.Product {
	t.Helper()
	var row models.Product
	if err := conn.First(&row, "id = ?", id).Error; err != nil {
		t.Fatalf("reload product %s: %v", id, err)
	}
	return &row
}
