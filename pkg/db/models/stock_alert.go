package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/shopmesh/shopmesh-backend/pkg/enums"
)

// StockAlert records a product that dipped below its low-stock threshold.
type StockAlert struct {
	ID         uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	ProductID  uuid.UUID              `gorm:"column:product_id;type:uuid;not null;index"`
	Threshold  int                    `gorm:"column:threshold;not null"`
	StockLevel int                    `gorm:"column:stock_level;not null"`
	Status     enums.StockAlertStatus `gorm:"column:status;type:stock_alert_status_enum;not null"`
	NotifiedAt *time.Time             `gorm:"column:notified_at"`
	ResolvedAt *time.Time             `gorm:"column:resolved_at"`
	CreatedAt  time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
