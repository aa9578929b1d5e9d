package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopmesh/shopmesh-backend/pkg/db"
	"github.com/shopmesh/shopmesh-backend/pkg/db/models"
	"github.com/shopmesh/shopmesh-backend/pkg/enums"
	pkgerrors "github.com/shopmesh/shopmesh-backend/pkg/errors"
	"github.com/shopmesh/shopmesh-backend/pkg/outbox"
	"github.com/shopmesh/shopmesh-backend/pkg/outbox/payloads"
)

// CheckLowStockAlerts scans for products whose availability sits below the
// configured threshold.
func (s *service) CheckLowStockAlerts(ctx context.Context) ([]LowStockProduct, error) {
	products, err := s.repo.ListLowStockProducts(ctx, s.threshold)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "scan low stock")
	}
	return products, nil
}

// LowStockSweep runs the monitoring pass: every flagged product gets its alert
// upserted, and one aggregated event is emitted for the whole run so the
// notification collaborator can batch.
func (s *service) LowStockSweep(ctx context.Context) (*LowStockSweepResult, error) {
	flagged, err := s.CheckLowStockAlerts(ctx)
	if err != nil {
		return nil, err
	}

	sweepID := uuid.New()
	now := s.now()

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		items := make([]payloads.LowStockItem, 0, len(flagged))
		for _, product := range flagged {
			if err := s.upsertAlertTx(ctx, repo, product.ProductID, product.AvailableStock); err != nil {
				return err
			}
			items = append(items, payloads.LowStockItem{
				ProductID: product.ProductID,
				SKU:       product.SKU,
				Stock:     product.AvailableStock,
				Threshold: s.threshold,
			})
		}

		if len(items) == 0 {
			return nil
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventLowStockDetected,
			AggregateType: enums.AggregateStockSweep,
			AggregateID:   sweepID,
			Version:       1,
			OccurredAt:    now,
			Data: payloads.LowStockDetectedEvent{
				SweepID:    sweepID,
				Items:      items,
				DetectedAt: now,
			},
		})
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "low stock sweep")
	}

	logCtx := s.logg.WithField(ctx, "sweep_id", sweepID.String())
	s.logg.Info(logCtx, fmt.Sprintf("low stock sweep flagged %d products", len(flagged)))
	return &LowStockSweepResult{SweepID: sweepID, Flagged: len(flagged)}, nil
}

// GetLowStockAlerts lists alerts, optionally filtered by status.
func (s *service) GetLowStockAlerts(ctx context.Context, status *enums.StockAlertStatus) (*AlertListResult, error) {
	alerts, err := s.repo.ListAlerts(ctx, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list alerts")
	}
	return &AlertListResult{Count: len(alerts), Alerts: alerts}, nil
}

// evaluateStockAlert recomputes availability for a product inside the
// caller's transaction and upserts or resolves its alert accordingly.
func (s *service) evaluateStockAlert(ctx context.Context, tx *gorm.DB, productID uuid.UUID) error {
	repo := s.repo.WithTx(tx)

	product, err := repo.FindProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("Product %s not found", productID))
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	reserved, err := repo.SumActiveReservations(ctx, productID, nil)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum reservations")
	}

	available := product.Stock - reserved
	if available < s.threshold {
		return s.upsertAlertTx(ctx, repo, productID, available)
	}
	return s.resolveAlertTx(ctx, tx, repo, productID, available)
}

// upsertAlertTx keeps a single open alert per product, refreshing its stock
// level while the shortage persists.
func (s *service) upsertAlertTx(ctx context.Context, repo *Repository, productID uuid.UUID, available int) error {
	alert, err := repo.FindOpenAlert(ctx, productID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find alert")
	}
	if alert == nil {
		alert = &models.StockAlert{
			ProductID:  productID,
			Threshold:  s.threshold,
			StockLevel: available,
			Status:     enums.StockAlertStatusPending,
		}
		if err := repo.CreateAlert(ctx, alert); err != nil {
			// A concurrent writer may have opened the alert between the
			// lookup and the insert; the partial index keeps one open row.
			if db.IsUniqueViolation(err, "idx_stock_alerts_open_per_product") {
				return nil
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create alert")
		}
		return nil
	}

	alert.StockLevel = available
	if err := repo.SaveAlert(ctx, alert); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save alert")
	}
	return nil
}

// resolveAlertTx closes the open alert once availability has recovered and
// emits the resolution event in the same transaction.
func (s *service) resolveAlertTx(ctx context.Context, tx *gorm.DB, repo *Repository, productID uuid.UUID, available int) error {
	alert, err := repo.FindOpenAlert(ctx, productID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find alert")
	}
	if alert == nil {
		return nil
	}

	now := s.now()
	alert.Status = enums.StockAlertStatusResolved
	alert.StockLevel = available
	alert.ResolvedAt = &now
	if err := repo.SaveAlert(ctx, alert); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save alert")
	}

	return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventStockAlertResolved,
		AggregateType: enums.AggregateStockAlert,
		AggregateID:   alert.ID,
		Version:       1,
		OccurredAt:    now,
		Data: payloads.StockAlertResolvedEvent{
			AlertID:    alert.ID,
			ProductID:  productID,
			StockLevel: available,
			ResolvedAt: now,
		},
	})
}
