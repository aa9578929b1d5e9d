package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	inventorysvc "github.com/shopmesh/shopmesh-backend/internal/inventory"
	"github.com/shopmesh/shopmesh-backend/pkg/config"
	"github.com/shopmesh/shopmesh-backend/pkg/enums"
	"github.com/shopmesh/shopmesh-backend/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubInventoryService struct{}

func (stubInventoryService) PhysicalStock(context.Context, uuid.UUID) (int, error)  { return 0, nil }
func (stubInventoryService) ReservedStock(context.Context, uuid.UUID) (int, error)  { return 0, nil }
func (stubInventoryService) AvailableStock(context.Context, uuid.UUID) (int, error) { return 0, nil }

func (stubInventoryService) CheckAvailability(context.Context, uuid.UUID, int) (*inventorysvc.AvailabilityResult, error) {
	return &inventorysvc.AvailabilityResult{Available: true, AvailableStock: 5, Message: "5 units available"}, nil
}

func (stubInventoryService) ProductStockStatus(ctx context.Context, productID uuid.UUID) (*inventorysvc.StockStatusResult, error) {
	return &inventorysvc.StockStatusResult{ProductID: productID, Status: enums.StockStatusInStock}, nil
}

func (stubInventoryService) Reserve(context.Context, inventorysvc.ReserveInput) (*inventorysvc.ReservationDTO, error) {
	return &inventorysvc.ReservationDTO{}, nil
}

func (stubInventoryService) Release(context.Context, uuid.UUID) (*inventorysvc.ReleaseResult, error) {
	return &inventorysvc.ReleaseResult{}, nil
}

func (stubInventoryService) Confirm(context.Context, uuid.UUID, *uuid.UUID) (*inventorysvc.ReservationDTO, error) {
	return &inventorysvc.ReservationDTO{}, nil
}

func (stubInventoryService) UpdateQuantity(context.Context, uuid.UUID, int) (*inventorysvc.ReservationDTO, error) {
	return &inventorysvc.ReservationDTO{}, nil
}

func (stubInventoryService) ReleaseForCustomer(context.Context, uuid.UUID, uuid.UUID, *uuid.UUID) (*inventorysvc.ReleaseResult, error) {
	return &inventorysvc.ReleaseResult{}, nil
}

func (stubInventoryService) UpdateQuantityForCustomer(context.Context, uuid.UUID, uuid.UUID, *uuid.UUID, int) (*inventorysvc.ReservationDTO, error) {
	return &inventorysvc.ReservationDTO{}, nil
}

func (stubInventoryService) ConfirmForCustomer(context.Context, uuid.UUID, uuid.UUID, *uuid.UUID, *uuid.UUID) (*inventorysvc.ReservationDTO, error) {
	return &inventorysvc.ReservationDTO{}, nil
}

func (stubInventoryService) ActiveReservation(context.Context, uuid.UUID, uuid.UUID) (*inventorysvc.ReservationDTO, error) {
	return nil, nil
}

func (stubInventoryService) CustomerReservations(context.Context, uuid.UUID) ([]inventorysvc.ReservationDTO, error) {
	return nil, nil
}

func (stubInventoryService) ListTransactions(context.Context, inventorysvc.TransactionQuery) (*inventorysvc.TransactionList, error) {
	return &inventorysvc.TransactionList{}, nil
}

func (stubInventoryService) CleanupExpiredReservations(context.Context) (*inventorysvc.CleanupResult, error) {
	return &inventorysvc.CleanupResult{}, nil
}

func (stubInventoryService) CheckLowStockAlerts(context.Context) ([]inventorysvc.LowStockProduct, error) {
	return nil, nil
}

func (stubInventoryService) LowStockSweep(context.Context) (*inventorysvc.LowStockSweepResult, error) {
	return &inventorysvc.LowStockSweepResult{}, nil
}

func (stubInventoryService) GetLowStockAlerts(context.Context, *enums.StockAlertStatus) (*inventorysvc.AlertListResult, error) {
	return &inventorysvc.AlertListResult{}, nil
}

func (stubInventoryService) BulkUpdateStock(context.Context, []inventorysvc.BulkStockItem, *string) (*inventorysvc.BulkUpdateResult, error) {
	return &inventorysvc.BulkUpdateResult{}, nil
}

func newTestRouter() http.Handler {
	cfg := &config.Config{}
	cfg.App.Env = "dev"
	logg := logger.New(logger.Options{ServiceName: "router-test", Output: io.Discard})
	return NewRouter(cfg, logg, stubPinger{}, stubPinger{}, stubInventoryService{})
}

func TestRouterHealthEndpoints(t *testing.T) {
	router := newTestRouter()

	for _, path := range []string{"/health/live", "/health/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		if resp.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, resp.Code)
		}
		if env := resp.Header().Get("X-ShopMesh-Env"); env != "dev" {
			t.Fatalf("%s: missing env header, got %q", path, env)
		}
	}
}

func TestRouterRoutesInventoryPaths(t *testing.T) {
	router := newTestRouter()
	productID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/inventory/products/"+productID.String()+"/status", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var envelope struct {
		Data inventorysvc.StockStatusResult `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data.ProductID != productID {
		t.Fatalf("route param not threaded, got %+v", envelope.Data)
	}
	if resp.Header().Get("X-Request-Id") == "" {
		t.Fatal("request id middleware not applied")
	}

	req = httptest.NewRequest(http.MethodGet, "/inventory/availability/"+productID.String()+"?quantity=2", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("availability: expected 200, got %d", resp.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/inventory/nope", nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown route, got %d", resp.Code)
	}
}
