package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopmesh/shopmesh-backend/pkg/db"
	"github.com/shopmesh/shopmesh-backend/pkg/db/models"
	"github.com/shopmesh/shopmesh-backend/pkg/enums"
	pkgerrors "github.com/shopmesh/shopmesh-backend/pkg/errors"
	"github.com/shopmesh/shopmesh-backend/pkg/logger"
	"github.com/shopmesh/shopmesh-backend/pkg/outbox"
)

const (
	defaultReservationTTL    = 30 * time.Minute
	defaultLowStockThreshold = 10
)

// Service exposes the stock reservation and inventory operations.
type Service interface {
	PhysicalStock(ctx context.Context, productID uuid.UUID) (int, error)
	ReservedStock(ctx context.Context, productID uuid.UUID) (int, error)
	AvailableStock(ctx context.Context, productID uuid.UUID) (int, error)
	CheckAvailability(ctx context.Context, productID uuid.UUID, quantity int) (*AvailabilityResult, error)
	ProductStockStatus(ctx context.Context, productID uuid.UUID) (*StockStatusResult, error)

	Reserve(ctx context.Context, input ReserveInput) (*ReservationDTO, error)
	Release(ctx context.Context, reservationID uuid.UUID) (*ReleaseResult, error)
	Confirm(ctx context.Context, reservationID uuid.UUID, orderID *uuid.UUID) (*ReservationDTO, error)
	UpdateQuantity(ctx context.Context, reservationID uuid.UUID, newQuantity int) (*ReservationDTO, error)
	ReleaseForCustomer(ctx context.Context, productID, customerID uuid.UUID, cartID *uuid.UUID) (*ReleaseResult, error)
	UpdateQuantityForCustomer(ctx context.Context, productID, customerID uuid.UUID, cartID *uuid.UUID, newQuantity int) (*ReservationDTO, error)
	ConfirmForCustomer(ctx context.Context, productID, customerID uuid.UUID, cartID *uuid.UUID, orderID *uuid.UUID) (*ReservationDTO, error)
	ActiveReservation(ctx context.Context, productID, customerID uuid.UUID) (*ReservationDTO, error)
	CustomerReservations(ctx context.Context, customerID uuid.UUID) ([]ReservationDTO, error)

	ListTransactions(ctx context.Context, query TransactionQuery) (*TransactionList, error)

	CleanupExpiredReservations(ctx context.Context) (*CleanupResult, error)

	CheckLowStockAlerts(ctx context.Context) ([]LowStockProduct, error)
	LowStockSweep(ctx context.Context) (*LowStockSweepResult, error)
	GetLowStockAlerts(ctx context.Context, status *enums.StockAlertStatus) (*AlertListResult, error)

	BulkUpdateStock(ctx context.Context, items []BulkStockItem, reason *string) (*BulkUpdateResult, error)
}

// ServiceParams collects the service dependencies.
type ServiceParams struct {
	DB                *db.Client
	Repo              *Repository
	Outbox            *outbox.Service
	Logger            *logger.Logger
	ReservationTTL    time.Duration
	LowStockThreshold int
	Now               func() time.Time
}

type service struct {
	dbClient  *db.Client
	repo      *Repository
	outbox    *outbox.Service
	logg      *logger.Logger
	ttl       time.Duration
	threshold int
	now       func() time.Time
}

// NewService constructs the inventory service.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("db client required")
	}
	if params.Repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox service required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.ReservationTTL <= 0 {
		params.ReservationTTL = defaultReservationTTL
	}
	if params.LowStockThreshold <= 0 {
		params.LowStockThreshold = defaultLowStockThreshold
	}
	if params.Now == nil {
		params.Now = time.Now
	}
	return &service{
		dbClient:  params.DB,
		repo:      params.Repo,
		outbox:    params.Outbox,
		logg:      params.Logger,
		ttl:       params.ReservationTTL,
		threshold: params.LowStockThreshold,
		now:       params.Now,
	}, nil
}

// PhysicalStock returns the stock column as stored.
func (s *service) PhysicalStock(ctx context.Context, productID uuid.UUID) (int, error) {
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return 0, err
	}
	return product.Stock, nil
}

// ReservedStock totals the ACTIVE holds on the product.
func (s *service) ReservedStock(ctx context.Context, productID uuid.UUID) (int, error) {
	return s.repo.SumActiveReservations(ctx, productID, nil)
}

// AvailableStock is physical stock minus ACTIVE holds.
func (s *service) AvailableStock(ctx context.Context, productID uuid.UUID) (int, error) {
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return 0, err
	}
	reserved, err := s.repo.SumActiveReservations(ctx, productID, nil)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum reservations")
	}
	return product.Stock - reserved, nil
}

// CheckAvailability reports whether the requested quantity can be served.
func (s *service) CheckAvailability(ctx context.Context, productID uuid.UUID, quantity int) (*AvailabilityResult, error) {
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	available, err := s.AvailableStock(ctx, productID)
	if err != nil {
		return nil, err
	}

	result := &AvailabilityResult{
		Available:      available >= quantity,
		AvailableStock: available,
	}
	if result.Available {
		result.Message = fmt.Sprintf("%d units available", quantity)
	} else {
		result.Message = fmt.Sprintf("Only %d units available, requested %d", available, quantity)
	}
	return result, nil
}

// ProductStockStatus reports physical, reserved, and available stock together.
func (s *service) ProductStockStatus(ctx context.Context, productID uuid.UUID) (*StockStatusResult, error) {
	product, err := s.loadProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	reserved, err := s.repo.SumActiveReservations(ctx, productID, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum reservations")
	}

	available := product.Stock - reserved
	status := enums.StockStatusInStock
	if available <= 0 {
		status = enums.StockStatusOutOfStock
	}
	return &StockStatusResult{
		ProductID:      productID,
		PhysicalStock:  product.Stock,
		ReservedStock:  reserved,
		AvailableStock: available,
		Status:         status,
	}, nil
}

// ListTransactions returns a filtered page of the stock ledger.
func (s *service) ListTransactions(ctx context.Context, query TransactionQuery) (*TransactionList, error) {
	if query.Page < 1 {
		query.Page = 1
	}
	if query.Limit < 1 {
		query.Limit = 20
	}
	if query.Limit > 100 {
		query.Limit = 100
	}

	rows, total, err := s.repo.ListTransactions(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list transactions")
	}

	items := make([]TransactionDTO, 0, len(rows))
	for _, row := range rows {
		items = append(items, newTransactionDTO(row))
	}
	return &TransactionList{
		Items: items,
		Total: total,
		Page:  query.Page,
		Limit: query.Limit,
	}, nil
}

func (s *service) loadProduct(ctx context.Context, productID uuid.UUID) (*models.Product, error) {
	product, err := s.repo.FindProductByID(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("Product %s not found", productID))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}
