package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/shopmesh/shopmesh-backend/pkg/db/models"
	"github.com/shopmesh/shopmesh-backend/pkg/enums"
	pkgerrors "github.com/shopmesh/shopmesh-backend/pkg/errors"
)

func TestBulkUpdateStockAppliesAllItems(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	added := mustCreateProduct(t, env.conn, 10)
	reduced := mustCreateProduct(t, env.conn, 10)
	pinned := mustCreateProduct(t, env.conn, 10)
	reason := "cycle count"

	result, err := env.svc.BulkUpdateStock(ctx, []BulkStockItem{
		{ProductID: added.ID, Quantity: 5, UpdateType: enums.StockUpdateTypeAdd},
		{ProductID: reduced.ID, Quantity: 4, UpdateType: enums.StockUpdateTypeSubtract},
		{ProductID: pinned.ID, Quantity: 25},
	}, &reason)
	if err != nil {
		t.Fatalf("bulk update: %v", err)
	}
	if !result.Success || result.Updated != 3 {
		t.Fatalf("unexpected result %+v", result)
	}

	if got := reloadProduct(t, env.conn, added.ID); got.Stock != 15 {
		t.Fatalf("expected stock 15, got %d", got.Stock)
	}
	if got := reloadProduct(t, env.conn, reduced.ID); got.Stock != 6 {
		t.Fatalf("expected stock 6, got %d", got.Stock)
	}
	if got := reloadProduct(t, env.conn, pinned.ID); got.Stock != 25 {
		t.Fatalf("expected SET default, stock 25, got %d", got.Stock)
	}

	for _, want := range []struct {
		productID uuid.UUID
		txType    enums.TransactionType
		quantity  int
	}{
		{added.ID, enums.TransactionTypeIn, 5},
		{reduced.ID, enums.TransactionTypeOut, -4},
		{pinned.ID, enums.TransactionTypeAdjustment, 15},
	} {
		var entry models.InventoryTransaction
		if err := env.conn.First(&entry, "product_id = ?", want.productID).Error; err != nil {
			t.Fatalf("load ledger entry: %v", err)
		}
		if entry.Type != want.txType || entry.Quantity != want.quantity {
			t.Fatalf("unexpected ledger entry %+v, want %+v", entry, want)
		}
		if entry.Reason == nil || *entry.Reason != reason {
			t.Fatalf("expected audit reason, got %+v", entry.Reason)
		}
	}

	if got := countOutboxEvents(t, env.conn, enums.EventStockAdjusted); got != 3 {
		t.Fatalf("expected 3 stock_adjusted events, got %d", got)
	}
}

func TestBulkUpdateStockRollsBackOnFailure(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	product := mustCreateProduct(t, env.conn, 10)

	_, err := env.svc.BulkUpdateStock(ctx, []BulkStockItem{
		{ProductID: product.ID, Quantity: 5, UpdateType: enums.StockUpdateTypeAdd},
		{ProductID: uuid.New(), Quantity: 1, UpdateType: enums.StockUpdateTypeAdd},
	}, nil)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeBulkUpdateFailed {
		t.Fatalf("expected bulk update failure, got %v", err)
	}

	details, ok := typed.Details().(map[string]any)
	if !ok {
		t.Fatalf("expected details map, got %T", typed.Details())
	}
	results, ok := details["results"].([]BulkItemResult)
	if !ok || len(results) != 2 {
		t.Fatalf("expected 2 per-item results, got %+v", details["results"])
	}
	if !results[0].Success {
		t.Fatalf("first item should have been applicable: %+v", results[0])
	}
	if results[1].Success || results[1].Error == "" {
		t.Fatalf("second item should carry its failure: %+v", results[1])
	}

	if got := reloadProduct(t, env.conn, product.ID); got.Stock != 10 {
		t.Fatalf("expected rollback to stock 10, got %d", got.Stock)
	}
	var count int64
	if err := env.conn.Model(&models.InventoryTransaction{}).Count(&count).Error; err != nil {
		t.Fatalf("count ledger: %v", err)
	}
	if count != 0 {
		t.Fatalf("expected no ledger entries after rollback, got %d", count)
	}
	if got := countOutboxEvents(t, env.conn, enums.EventStockAdjusted); got != 0 {
		t.Fatalf("expected no events after rollback, got %d", got)
	}
}

func TestBulkUpdateStockRespectsReservedFloor(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()
	product := mustCreateProduct(t, env.conn, 10)

	if _, err := env.svc.Reserve(ctx, ReserveInput{ProductID: product.ID, Quantity: 6, CustomerID: uuid.New()}); err != nil {
		t.Fatalf("reserve: %v", err)
	}

	_, err := env.svc.BulkUpdateStock(ctx, []BulkStockItem{
		{ProductID: product.ID, Quantity: 4, UpdateType: enums.StockUpdateTypeSet},
	}, nil)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeBulkUpdateFailed {
		t.Fatalf("expected bulk update failure, got %v", err)
	}
	if got := reloadProduct(t, env.conn, product.ID); got.Stock != 10 {
		t.Fatalf("expected stock unchanged, got %d", got.Stock)
	}

	_, err = env.svc.BulkUpdateStock(ctx, []BulkStockItem{
		{ProductID: product.ID, Quantity: 5, UpdateType: enums.StockUpdateTypeSubtract},
	}, nil)
	if pkgerrors.As(err) == nil {
		t.Fatalf("expected subtract below reserved floor to fail, got %v", err)
	}

	// Setting to exactly the reserved floor is allowed.
	result, err := env.svc.BulkUpdateStock(ctx, []BulkStockItem{
		{ProductID: product.ID, Quantity: 6, UpdateType: enums.StockUpdateTypeSet},
	}, nil)
	if err != nil {
		t.Fatalf("set to floor: %v", err)
	}
	if result.Updated != 1 {
		t.Fatalf("unexpected result %+v", result)
	}
}

func TestBulkUpdateStockValidation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.BulkUpdateStock(ctx, nil, nil)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for empty batch, got %v", err)
	}

	product := mustCreateProduct(t, env.conn, 10)
	_, err = env.svc.BulkUpdateStock(ctx, []BulkStockItem{
		{ProductID: product.ID, Quantity: -1, UpdateType: enums.StockUpdateTypeAdd},
	}, nil)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeBulkUpdateFailed {
		t.Fatalf("expected per-item failure for negative quantity, got %v", err)
	}
}
