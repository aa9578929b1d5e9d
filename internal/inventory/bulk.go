package inventory

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/shopmesh/shopmesh-backend/pkg/db/models"
	"github.com/shopmesh/shopmesh-backend/pkg/enums"
	pkgerrors "github.com/shopmesh/shopmesh-backend/pkg/errors"
	"github.com/shopmesh/shopmesh-backend/pkg/outbox"
	"github.com/shopmesh/shopmesh-backend/pkg/outbox/payloads"
)

// BulkUpdateStock applies every item in one transaction. Any item failure
// rolls the whole batch back; the returned error carries the per-item results
// so callers can see which items would have succeeded.
func (s *service) BulkUpdateStock(ctx context.Context, items []BulkStockItem, reason *string) (*BulkUpdateResult, error) {
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one item is required")
	}

	results := make([]BulkItemResult, 0, len(items))
	updated := 0
	failed := false

	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		for _, item := range items {
			result := s.applyBulkItem(ctx, tx, item, reason)
			results = append(results, result)
			if result.Success {
				updated++
			} else {
				failed = true
			}
		}
		if failed {
			return pkgerrors.New(pkgerrors.CodeBulkUpdateFailed, "one or more items could not be applied").
				WithDetails(map[string]any{"results": results})
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "bulk update stock")
	}

	s.logg.Info(ctx, fmt.Sprintf("bulk update applied to %d products", updated))
	return &BulkUpdateResult{Success: true, Updated: updated, Results: results}, nil
}

func (s *service) applyBulkItem(ctx context.Context, tx *gorm.DB, item BulkStockItem, reason *string) BulkItemResult {
	updateType := item.UpdateType
	if updateType == "" {
		updateType = enums.StockUpdateTypeSet
	}
	result := BulkItemResult{ProductID: item.ProductID, UpdateType: updateType}

	if !updateType.IsValid() {
		result.Error = fmt.Sprintf("invalid update type %q", item.UpdateType)
		return result
	}
	if item.Quantity < 0 {
		result.Error = "quantity must not be negative"
		return result
	}

	auditReason := ""
	if reason != nil {
		auditReason = *reason
	}

	repo := s.repo.WithTx(tx)
	product, err := repo.FindProductByIDForUpdate(ctx, item.ProductID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			result.Error = fmt.Sprintf("Product %s not found", item.ProductID)
		} else {
			result.Error = "failed to load product"
		}
		return result
	}
	result.PreviousStock = product.Stock

	var newStock int
	var txType enums.TransactionType
	switch updateType {
	case enums.StockUpdateTypeAdd:
		newStock = product.Stock + item.Quantity
		txType = enums.TransactionTypeIn
	case enums.StockUpdateTypeSubtract:
		newStock = product.Stock - item.Quantity
		txType = enums.TransactionTypeOut
	case enums.StockUpdateTypeSet:
		newStock = item.Quantity
		txType = enums.TransactionTypeAdjustment
	}

	if newStock < 0 {
		result.Error = fmt.Sprintf("stock cannot go negative (current %d)", product.Stock)
		return result
	}

	// Physical stock may not drop below what customers already hold.
	reserved, err := repo.SumActiveReservations(ctx, product.ID, nil)
	if err != nil {
		result.Error = "failed to sum reservations"
		return result
	}
	if newStock < reserved {
		result.Error = fmt.Sprintf("stock cannot go below reserved quantity (reserved %d)", reserved)
		return result
	}

	if err := repo.UpdateProductStock(ctx, product.ID, newStock); err != nil {
		result.Error = "failed to update stock"
		return result
	}

	entry := &models.InventoryTransaction{
		ProductID:     product.ID,
		Type:          txType,
		Quantity:      newStock - result.PreviousStock,
		PreviousStock: result.PreviousStock,
		NewStock:      newStock,
		Reason:        reason,
	}
	if err := repo.InsertTransaction(ctx, entry); err != nil {
		result.Error = "failed to record transaction"
		return result
	}

	if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventStockAdjusted,
		AggregateType: enums.AggregateProduct,
		AggregateID:   product.ID,
		Version:       1,
		OccurredAt:    s.now(),
		Data: payloads.StockAdjustedEvent{
			ProductID:     product.ID,
			Type:          txType,
			Quantity:      newStock - result.PreviousStock,
			PreviousStock: result.PreviousStock,
			NewStock:      newStock,
			Reason:        auditReason,
		},
	}); err != nil {
		result.Error = "failed to emit event"
		return result
	}

	if err := s.evaluateStockAlert(ctx, tx, product.ID); err != nil {
		result.Error = "failed to evaluate stock alert"
		return result
	}

	result.NewStock = newStock
	result.Success = true
	return result
}
