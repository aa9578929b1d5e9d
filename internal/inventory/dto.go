package inventory

import (
	"time"

	"github.com/google/uuid"

	"github.com/shopmesh/shopmesh-backend/pkg/db/models"
	"github.com/shopmesh/shopmesh-backend/pkg/enums"
)

// ReserveInput carries the validated payload to place a stock hold.
type ReserveInput struct {
	ProductID  uuid.UUID
	Quantity   int
	CustomerID uuid.UUID
	CartID     *uuid.UUID
}

// AvailabilityResult answers a storefront availability probe.
type AvailabilityResult struct {
	Available      bool   `json:"available"`
	AvailableStock int    `json:"available_stock"`
	Message        string `json:"message"`
}

// StockStatusResult summarizes the three stock views for one product.
type StockStatusResult struct {
	ProductID      uuid.UUID         `json:"product_id"`
	PhysicalStock  int               `json:"physical_stock"`
	ReservedStock  int               `json:"reserved_stock"`
	AvailableStock int               `json:"available_stock"`
	Status         enums.StockStatus `json:"status"`
}

// ReservationDTO represents a stock hold returned to clients.
type ReservationDTO struct {
	ID          uuid.UUID               `json:"id"`
	ProductID   uuid.UUID               `json:"product_id"`
	ProductName *string                 `json:"product_name,omitempty"`
	CustomerID  uuid.UUID               `json:"customer_id"`
	CartID      *uuid.UUID              `json:"cart_id,omitempty"`
	Quantity    int                     `json:"quantity"`
	Status      enums.ReservationStatus `json:"status"`
	ExpiresAt   time.Time               `json:"expires_at"`
	CreatedAt   time.Time               `json:"created_at"`
}

// ReleaseResult reports the outcome of a release request.
type ReleaseResult struct {
	Released bool   `json:"released"`
	Message  string `json:"message"`
}

// CleanupResult reports one expiry sweep.
type CleanupResult struct {
	Cleaned        int         `json:"cleaned"`
	ReservationIDs []uuid.UUID `json:"reservation_ids"`
}

// TransactionQuery filters the stock ledger listing.
type TransactionQuery struct {
	ProductID *uuid.UUID
	Type      *enums.TransactionType
	From      *time.Time
	To        *time.Time
	Page      int
	Limit     int
}

// TransactionDTO is one ledger entry returned to clients.
type TransactionDTO struct {
	ID            uuid.UUID             `json:"id"`
	ProductID     uuid.UUID             `json:"product_id"`
	Type          enums.TransactionType `json:"type"`
	Quantity      int                   `json:"quantity"`
	PreviousStock int                   `json:"previous_stock"`
	NewStock      int                   `json:"new_stock"`
	ReferenceType *string               `json:"reference_type,omitempty"`
	ReferenceID   *uuid.UUID            `json:"reference_id,omitempty"`
	Reason        *string               `json:"reason,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
}

// TransactionList is a page of ledger entries.
type TransactionList struct {
	Items []TransactionDTO `json:"items"`
	Total int64            `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

// LowStockProduct is one product whose availability sits below the threshold.
type LowStockProduct struct {
	ProductID      uuid.UUID `json:"product_id"`
	SKU            string    `json:"sku"`
	Name           string    `json:"name"`
	Stock          int       `json:"stock"`
	ReservedStock  int       `json:"reserved_stock"`
	AvailableStock int       `json:"available_stock"`
}

// LowStockSweepResult reports one monitoring sweep.
type LowStockSweepResult struct {
	SweepID uuid.UUID `json:"sweep_id"`
	Flagged int       `json:"flagged"`
}

// AlertDTO is one low-stock alert returned to clients.
type AlertDTO struct {
	ID           uuid.UUID              `json:"id"`
	ProductID    uuid.UUID              `json:"product_id"`
	ProductName  string                 `json:"product_name"`
	CurrentStock int                    `json:"current_stock"`
	Threshold    int                    `json:"threshold"`
	Status       enums.StockAlertStatus `json:"status"`
	CreatedAt    time.Time              `json:"created_at"`
}

// AlertListResult wraps the alert listing with its count.
type AlertListResult struct {
	Count  int        `json:"count"`
	Alerts []AlertDTO `json:"alerts"`
}

// BulkStockItem is one entry in a bulk stock update.
type BulkStockItem struct {
	ProductID  uuid.UUID             `json:"product_id"`
	Quantity   int                   `json:"quantity"`
	UpdateType enums.StockUpdateType `json:"update_type"`
}

// BulkItemResult is the per-item outcome of a bulk update attempt.
type BulkItemResult struct {
	ProductID     uuid.UUID             `json:"product_id"`
	UpdateType    enums.StockUpdateType `json:"update_type"`
	Success       bool                  `json:"success"`
	PreviousStock int                   `json:"previous_stock"`
	NewStock      int                   `json:"new_stock"`
	Error         string                `json:"error,omitempty"`
}

// BulkUpdateResult reports an applied bulk update.
type BulkUpdateResult struct {
	Success bool             `json:"success"`
	Updated int              `json:"updated"`
	Results []BulkItemResult `json:"results"`
}

func newReservationDTO(r *models.StockReservation, productName *string) *ReservationDTO {
	if r == nil {
		return nil
	}
	return &ReservationDTO{
		ID:          r.ID,
		ProductID:   r.ProductID,
		ProductName: productName,
		CustomerID:  r.CustomerID,
		CartID:      r.CartID,
		Quantity:    r.ReservedQuantity,
		Status:      r.Status,
		ExpiresAt:   r.ExpiresAt,
		CreatedAt:   r.CreatedAt,
	}
}

func newTransactionDTO(t models.InventoryTransaction) TransactionDTO {
	return TransactionDTO{
		ID:            t.ID,
		ProductID:     t.ProductID,
		Type:          t.Type,
		Quantity:      t.Quantity,
		PreviousStock: t.PreviousStock,
		NewStock:      t.NewStock,
		ReferenceType: t.ReferenceType,
		ReferenceID:   t.ReferenceID,
		Reason:        t.Reason,
		CreatedAt:     t.CreatedAt,
	}
}
