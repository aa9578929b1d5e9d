package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/shopmesh/shopmesh-backend/pkg/enums"
)

// InventoryTransaction is an append-only ledger entry for every stock mutation.
// Quantity carries the sign of the movement; PreviousStock and NewStock pin the
// before/after levels so the ledger can be audited without replaying it.
type InventoryTransaction struct {
	ID            uuid.UUID             `gorm:"column:id;type:uuid;primaryKey"`
	ProductID     uuid.UUID             `gorm:"column:product_id;type:uuid;not null;index"`
	Type          enums.TransactionType `gorm:"column:type;type:transaction_type_enum;not null"`
	Quantity      int                   `gorm:"column:quantity;not null"`
	PreviousStock int                   `gorm:"column:previous_stock;not null"`
	NewStock      int                   `gorm:"column:new_stock;not null"`
	ReferenceType *string               `gorm:"column:reference_type"`
	ReferenceID   *uuid.UUID            `gorm:"column:reference_id;type:uuid"`
	Reason        *string               `gorm:"column:reason"`
	CreatedAt     time.Time             `gorm:"column:created_at;autoCreateTime;index"`
}
