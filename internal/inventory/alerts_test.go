package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/shopmesh/shopmesh-backend/pkg/enums"
)

func TestCheckLowStockAlerts(t *testing.T) {
	t.Parallel()

	env := newTestEnvWithThreshold(t, 5)
	ctx := context.Background()
	low := mustCreateProduct(t, env.conn, 2)
	healthy := mustCreateProduct(t, env.conn, 50)
	drained := mustCreateProduct(t, env.conn, 10)

	if _, err := env.svc.Reserve(ctx, ReserveInput{ProductID: drained.ID, Quantity: 8, CustomerID: uuid.New()}); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	flagged, err := env.svc.CheckLowStockAlerts(ctx)
	if err != nil {
		t.Fatalf("check low stock: %v", err)
	}
	if len(flagged) != 2 {
		t.Fatalf("expected 2 flagged products, got %d", len(flagged))
	}
	byID := map[uuid.UUID]LowStockProduct{}
	for _, product := range flagged {
		byID[product.ProductID] = product
	}
	if _, ok := byID[healthy.ID]; ok {
		t.Fatalf("healthy product must not be flagged")
	}
	if got := byID[low.ID]; got.AvailableStock != 2 {
		t.Fatalf("unexpected availability %+v", got)
	}
	if got := byID[drained.ID]; got.AvailableStock != 2 || got.ReservedStock != 8 {
		t.Fatalf("unexpected availability %+v", got)
	}
}

func TestLowStockSweepUpsertsAlertsAndEmitsOneEvent(t *testing.T) {
	t.Parallel()

	env := newTestEnvWithThreshold(t, 5)
	ctx := context.Background()
	first := mustCreateProduct(t, env.conn, 1)
	second := mustCreateProduct(t, env.conn, 3)
	mustCreateProduct(t, env.conn, 50)

	result, err := env.svc.LowStockSweep(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if result.Flagged != 2 {
		t.Fatalf("expected 2 flagged, got %d", result.Flagged)
	}
	if got := countOutboxEvents(t, env.conn, enums.EventLowStockDetected); got != 1 {
		t.Fatalf("expected 1 aggregated event, got %d", got)
	}

	pending := enums.StockAlertStatusPending
	alerts, err := env.svc.GetLowStockAlerts(ctx, &pending)
	if err != nil {
		t.Fatalf("list alerts: %v", err)
	}
	if alerts.Count != 2 {
		t.Fatalf("expected 2 pending alerts, got %d", alerts.Count)
	}
	for _, alert := range alerts.Alerts {
		if alert.ProductID != first.ID && alert.ProductID != second.ID {
			t.Fatalf("unexpected alert product %s", alert.ProductID)
		}
		if alert.Threshold != 5 {
			t.Fatalf("expected threshold 5, got %d", alert.Threshold)
		}
	}

	// A second sweep refreshes the existing alerts instead of duplicating them.
	if _, err := env.svc.LowStockSweep(ctx); err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	alerts, err = env.svc.GetLowStockAlerts(ctx, &pending)
	if err != nil {
		t.Fatalf("list alerts: %v", err)
	}
	if alerts.Count != 2 {
		t.Fatalf("expected 2 pending alerts after rerun, got %d", alerts.Count)
	}
}

func TestLowStockSweepWithNothingFlagged(t *testing.T) {
	t.Parallel()

	env := newTestEnvWithThreshold(t, 2)
	ctx := context.Background()
	mustCreateProduct(t, env.conn, 50)

	result, err := env.svc.LowStockSweep(ctx)
	if err != nil {
		t.Fatalf("sweep: %v", err)
	}
	if result.Flagged != 0 {
		t.Fatalf("expected nothing flagged, got %d", result.Flagged)
	}
	if got := countOutboxEvents(t, env.conn, enums.EventLowStockDetected); got != 0 {
		t.Fatalf("quiet sweep must not emit, got %d", got)
	}
}

func TestGetLowStockAlertsStatusFilter(t *testing.T) {
	t.Parallel()

	env := newTestEnvWithThreshold(t, 5)
	ctx := context.Background()
	product := mustCreateProduct(t, env.conn, 2)

	if _, err := env.svc.LowStockSweep(ctx); err != nil {
		t.Fatalf("sweep: %v", err)
	}

	// Restock above the threshold, then release-driven evaluation resolves it.
	if err := env.conn.Model(product).Update("stock", 20).Error; err != nil {
		t.Fatalf("restock: %v", err)
	}
	hold, err := env.svc.Reserve(ctx, ReserveInput{ProductID: product.ID, Quantity: 1, CustomerID: uuid.New()})
	if err != nil {
		t.Fatalf("reserve: %v", err)
	}
	if _, err := env.svc.Release(ctx, hold.ID); err != nil {
		t.Fatalf("release: %v", err)
	}

	resolved := enums.StockAlertStatusResolved
	alerts, err := env.svc.GetLowStockAlerts(ctx, &resolved)
	if err != nil {
		t.Fatalf("list alerts: %v", err)
	}
	if alerts.Count != 1 {
		t.Fatalf("expected 1 resolved alert, got %d", alerts.Count)
	}

	pending := enums.StockAlertStatusPending
	alerts, err = env.svc.GetLowStockAlerts(ctx, &pending)
	if err != nil {
		t.Fatalf("list alerts: %v", err)
	}
	if alerts.Count != 0 {
		t.Fatalf("expected no pending alerts, got %d", alerts.Count)
	}
}
