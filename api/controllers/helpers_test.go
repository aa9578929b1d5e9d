package controllers

import (
	"context"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	inventorysvc "github.com/shopmesh/shopmesh-backend/internal/inventory"
	"github.com/shopmesh/shopmesh-backend/pkg/enums"
	"github.com/shopmesh/shopmesh-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func addRouteParam(r *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, routeCtx))
}

// testInventoryService implements inventorysvc.Service with overridable hooks.
type testInventoryService struct {
	stockStatusFn       func(ctx context.Context, productID uuid.UUID) (*inventorysvc.StockStatusResult, error)
	checkAvailabilityFn func(ctx context.Context, productID uuid.UUID, quantity int) (*inventorysvc.AvailabilityResult, error)
	reserveFn           func(ctx context.Context, input inventorysvc.ReserveInput) (*inventorysvc.ReservationDTO, error)
	releaseFn           func(ctx context.Context, reservationID uuid.UUID) (*inventorysvc.ReleaseResult, error)
	confirmFn           func(ctx context.Context, reservationID uuid.UUID, orderID *uuid.UUID) (*inventorysvc.ReservationDTO, error)
	updateQuantityFn    func(ctx context.Context, reservationID uuid.UUID, newQuantity int) (*inventorysvc.ReservationDTO, error)
	customerListFn      func(ctx context.Context, customerID uuid.UUID) ([]inventorysvc.ReservationDTO, error)
	listTransactionsFn  func(ctx context.Context, query inventorysvc.TransactionQuery) (*inventorysvc.TransactionList, error)
	cleanupFn           func(ctx context.Context) (*inventorysvc.CleanupResult, error)
	alertsFn            func(ctx context.Context, status *enums.StockAlertStatus) (*inventorysvc.AlertListResult, error)
	bulkFn              func(ctx context.Context, items []inventorysvc.BulkStockItem, reason *string) (*inventorysvc.BulkUpdateResult, error)
}

func (s *testInventoryService) PhysicalStock(context.Context, uuid.UUID) (int, error)  { return 0, nil }
func (s *testInventoryService) ReservedStock(context.Context, uuid.UUID) (int, error)  { return 0, nil }
func (s *testInventoryService) AvailableStock(context.Context, uuid.UUID) (int, error) { return 0, nil }

func (s *testInventoryService) CheckAvailability(ctx context.Context, productID uuid.UUID, quantity int) (*inventorysvc.AvailabilityResult, error) {
	if s.checkAvailabilityFn != nil {
		return s.checkAvailabilityFn(ctx, productID, quantity)
	}
	return &inventorysvc.AvailabilityResult{}, nil
}

func (s *testInventoryService) ProductStockStatus(ctx context.Context, productID uuid.UUID) (*inventorysvc.StockStatusResult, error) {
	if s.stockStatusFn != nil {
		return s.stockStatusFn(ctx, productID)
	}
	return &inventorysvc.StockStatusResult{}, nil
}

func (s *testInventoryService) Reserve(ctx context.Context, input inventorysvc.ReserveInput) (*inventorysvc.ReservationDTO, error) {
	if s.reserveFn != nil {
		return s.reserveFn(ctx, input)
	}
	return &inventorysvc.ReservationDTO{}, nil
}

func (s *testInventoryService) Release(ctx context.Context, reservationID uuid.UUID) (*inventorysvc.ReleaseResult, error) {
	if s.releaseFn != nil {
		return s.releaseFn(ctx, reservationID)
	}
	return &inventorysvc.ReleaseResult{}, nil
}

func (s *testInventoryService) Confirm(ctx context.Context, reservationID uuid.UUID, orderID *uuid.UUID) (*inventorysvc.ReservationDTO, error) {
	if s.confirmFn != nil {
		return s.confirmFn(ctx, reservationID, orderID)
	}
	return &inventorysvc.ReservationDTO{}, nil
}

func (s *testInventoryService) UpdateQuantity(ctx context.Context, reservationID uuid.UUID, newQuantity int) (*inventorysvc.ReservationDTO, error) {
	if s.updateQuantityFn != nil {
		return s.updateQuantityFn(ctx, reservationID, newQuantity)
	}
	return &inventorysvc.ReservationDTO{}, nil
}

func (s *testInventoryService) ReleaseForCustomer(context.Context, uuid.UUID, uuid.UUID, *uuid.UUID) (*inventorysvc.ReleaseResult, error) {
	return &inventorysvc.ReleaseResult{}, nil
}

func (s *testInventoryService) UpdateQuantityForCustomer(context.Context, uuid.UUID, uuid.UUID, *uuid.UUID, int) (*inventorysvc.ReservationDTO, error) {
	return &inventorysvc.ReservationDTO{}, nil
}

func (s *testInventoryService) ConfirmForCustomer(context.Context, uuid.UUID, uuid.UUID, *uuid.UUID, *uuid.UUID) (*inventorysvc.ReservationDTO, error) {
	return &inventorysvc.ReservationDTO{}, nil
}

func (s *testInventoryService) ActiveReservation(context.Context, uuid.UUID, uuid.UUID) (*inventorysvc.ReservationDTO, error) {
	return nil, nil
}

func (s *testInventoryService) CustomerReservations(ctx context.Context, customerID uuid.UUID) ([]inventorysvc.ReservationDTO, error) {
	if s.customerListFn != nil {
		return s.customerListFn(ctx, customerID)
	}
	return nil, nil
}

func (s *testInventoryService) ListTransactions(ctx context.Context, query inventorysvc.TransactionQuery) (*inventorysvc.TransactionList, error) {
	if s.listTransactionsFn != nil {
		return s.listTransactionsFn(ctx, query)
	}
	return &inventorysvc.TransactionList{}, nil
}

func (s *testInventoryService) CleanupExpiredReservations(ctx context.Context) (*inventorysvc.CleanupResult, error) {
	if s.cleanupFn != nil {
		return s.cleanupFn(ctx)
	}
	return &inventorysvc.CleanupResult{}, nil
}

func (s *testInventoryService) CheckLowStockAlerts(context.Context) ([]inventorysvc.LowStockProduct, error) {
	return nil, nil
}

func (s *testInventoryService) LowStockSweep(context.Context) (*inventorysvc.LowStockSweepResult, error) {
	return &inventorysvc.LowStockSweepResult{}, nil
}

func (s *testInventoryService) GetLowStockAlerts(ctx context.Context, status *enums.StockAlertStatus) (*inventorysvc.AlertListResult, error) {
	if s.alertsFn != nil {
		return s.alertsFn(ctx, status)
	}
	return &inventorysvc.AlertListResult{}, nil
}

func (s *testInventoryService) BulkUpdateStock(ctx context.Context, items []inventorysvc.BulkStockItem, reason *string) (*inventorysvc.BulkUpdateResult, error) {
	if s.bulkFn != nil {
		return s.bulkFn(ctx, items, reason)
	}
	return &inventorysvc.BulkUpdateResult{}, nil
}
