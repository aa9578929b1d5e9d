package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/shopmesh/shopmesh-backend/pkg/enums"
)

// StockReservedEvent is emitted when a hold is placed or topped up.
type StockReservedEvent struct {
	ReservationID uuid.UUID  `json:"reservation_id"`
	ProductID     uuid.UUID  `json:"product_id"`
	CustomerID    uuid.UUID  `json:"customer_id"`
	CartID        *uuid.UUID `json:"cart_id,omitempty"`
	Quantity      int        `json:"quantity"`
	ExpiresAt     time.Time  `json:"expires_at"`
}

// ReservationReleasedEvent is emitted when a customer gives a hold back.
type ReservationReleasedEvent struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	ProductID     uuid.UUID `json:"product_id"`
	CustomerID    uuid.UUID `json:"customer_id"`
	Quantity      int       `json:"quantity"`
	ReleasedAt    time.Time `json:"released_at"`
	Reason        string    `json:"reason,omitempty"`
}

// ReservationConfirmedEvent is emitted when a hold converts into a sale.
type ReservationConfirmedEvent struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	ProductID     uuid.UUID `json:"product_id"`
	CustomerID    uuid.UUID `json:"customer_id"`
	Quantity      int       `json:"quantity"`
	NewStock      int       `json:"new_stock"`
	ConfirmedAt   time.Time `json:"confirmed_at"`
}

// ReservationExpiredEvent is emitted by the sweeper for each lapsed hold.
type ReservationExpiredEvent struct {
	ReservationID uuid.UUID `json:"reservation_id"`
	ProductID     uuid.UUID `json:"product_id"`
	CustomerID    uuid.UUID `json:"customer_id"`
	Quantity      int       `json:"quantity"`
	ExpiredAt     time.Time `json:"expired_at"`
}

// StockAdjustedEvent mirrors a ledger entry written for a direct stock mutation.
type StockAdjustedEvent struct {
	ProductID     uuid.UUID             `json:"product_id"`
	Type          enums.TransactionType `json:"type"`
	Quantity      int                   `json:"quantity"`
	PreviousStock int                   `json:"previous_stock"`
	NewStock      int                   `json:"new_stock"`
	ReferenceType string                `json:"reference_type,omitempty"`
	ReferenceID   *uuid.UUID            `json:"reference_id,omitempty"`
	Reason        string                `json:"reason,omitempty"`
}

// LowStockItem is one product flagged by the monitoring sweep.
type LowStockItem struct {
	ProductID uuid.UUID `json:"product_id"`
	SKU       string    `json:"sku"`
	Stock     int       `json:"stock"`
	Threshold int       `json:"threshold"`
}

// LowStockDetectedEvent aggregates every product flagged in one sweep run.
type LowStockDetectedEvent struct {
	SweepID    uuid.UUID      `json:"sweep_id"`
	Items      []LowStockItem `json:"items"`
	DetectedAt time.Time      `json:"detected_at"`
}

// StockAlertResolvedEvent is emitted when stock recovers above the threshold.
type StockAlertResolvedEvent struct {
	AlertID    uuid.UUID `json:"alert_id"`
	ProductID  uuid.UUID `json:"product_id"`
	StockLevel int       `json:"stock_level"`
	ResolvedAt time.Time `json:"resolved_at"`
}
