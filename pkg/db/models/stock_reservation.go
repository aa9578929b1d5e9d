package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/shopmesh/shopmesh-backend/pkg/enums"
)

// StockReservation is a time-limited hold on product stock for one customer.
type StockReservation struct {
	ID               uuid.UUID               `gorm:"column:id;type:uuid;primaryKey"`
	ProductID        uuid.UUID               `gorm:"column:product_id;type:uuid;not null;index"`
	CustomerID       uuid.UUID               `gorm:"column:customer_id;type:uuid;not null;index"`
	CartID           *uuid.UUID              `gorm:"column:cart_id;type:uuid"`
	ReservedQuantity int                     `gorm:"column:reserved_quantity;not null"`
	Status           enums.ReservationStatus `gorm:"column:status;type:reservation_status_enum;not null"`
	ExpiresAt        time.Time               `gorm:"column:expires_at;not null;index"`
	CreatedAt        time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

// IsExpired reports whether the hold has passed its deadline at the given time.
func (r StockReservation) IsExpired(now time.Time) bool {
	return !r.ExpiresAt.After(now)
}
