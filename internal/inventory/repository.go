package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/shopmesh/shopmesh-backend/pkg/db/models"
	"github.com/shopmesh/shopmesh-backend/pkg/enums"
)

// Repository wires together all inventory persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// forUpdate adds a row lock on postgres. SQLite serializes writers on the
// database lock, so the clause is skipped there.
func (r *Repository) forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// FindProductByID loads the product without locking.
func (r *Repository) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindProductByIDForUpdate loads the product under a row lock.
func (r *Repository) FindProductByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.forUpdate(r.db.WithContext(ctx)).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// SumActiveReservations totals the ACTIVE holds on a product, optionally
// excluding one reservation (used when re-validating a quantity change).
func (r *Repository) SumActiveReservations(ctx context.Context, productID uuid.UUID, exclude *uuid.UUID) (int, error) {
	qb := r.db.WithContext(ctx).
		Model(&models.StockReservation{}).
		Where("product_id = ?", productID).
		Where("status = ?", enums.ReservationStatusActive)
	if exclude != nil {
		qb = qb.Where("id <> ?", *exclude)
	}

	var total *int
	if err := qb.Select("SUM(reserved_quantity)").Scan(&total).Error; err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

// FindReservationByID loads a reservation by primary key.
func (r *Repository) FindReservationByID(ctx context.Context, id uuid.UUID) (*models.StockReservation, error) {
	var reservation models.StockReservation
	if err := r.db.WithContext(ctx).First(&reservation, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &reservation, nil
}

// FindActiveReservation returns the ACTIVE hold for (product, customer),
// narrowed to the cart when one is given. Returns nil when none exists.
func (r *Repository) FindActiveReservation(ctx context.Context, productID, customerID uuid.UUID, cartID *uuid.UUID) (*models.StockReservation, error) {
	qb := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Where("customer_id = ?", customerID).
		Where("status = ?", enums.ReservationStatusActive)
	if cartID != nil {
		qb = qb.Where("cart_id = ?", *cartID)
	}

	var reservation models.StockReservation
	if err := qb.First(&reservation).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &reservation, nil
}

type customerReservationRecord struct {
	models.StockReservation
	ProductName *string
}

// ListCustomerReservations returns the customer's ACTIVE holds, newest first,
// with the product name joined in for display.
func (r *Repository) ListCustomerReservations(ctx context.Context, customerID uuid.UUID) ([]models.StockReservation, map[uuid.UUID]string, error) {
	var records []customerReservationRecord
	err := r.db.WithContext(ctx).
		Table("stock_reservations r").
		Select("r.*, p.name AS product_name").
		Joins("JOIN products p ON p.id = r.product_id").
		Where("r.customer_id = ?", customerID).
		Where("r.status = ?", enums.ReservationStatusActive).
		Order("r.created_at DESC").
		Scan(&records).Error
	if err != nil {
		return nil, nil, err
	}

	rows := make([]models.StockReservation, 0, len(records))
	names := make(map[uuid.UUID]string, len(records))
	for _, record := range records {
		rows = append(rows, record.StockReservation)
		if record.ProductName != nil {
			names[record.ID] = *record.ProductName
		}
	}
	return rows, names, nil
}

// CreateReservation inserts a new reservation row.
func (r *Repository) CreateReservation(ctx context.Context, reservation *models.StockReservation) error {
	return r.db.WithContext(ctx).Create(reservation).Error
}

// SaveReservation persists all fields of an existing reservation.
func (r *Repository) SaveReservation(ctx context.Context, reservation *models.StockReservation) error {
	return r.db.WithContext(ctx).Save(reservation).Error
}

// UpdateProductStock writes the new physical stock level.
func (r *Repository) UpdateProductStock(ctx context.Context, productID uuid.UUID, newStock int) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Update("stock", newStock).Error
}

// InsertTransaction appends a ledger entry.
func (r *Repository) InsertTransaction(ctx context.Context, entry *models.InventoryTransaction) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListTransactions returns a filtered, paged slice of the ledger plus the
// total match count.
func (r *Repository) ListTransactions(ctx context.Context, query TransactionQuery) ([]models.InventoryTransaction, int64, error) {
	qb := r.db.WithContext(ctx).Model(&models.InventoryTransaction{})
	if query.ProductID != nil {
		qb = qb.Where("product_id = ?", *query.ProductID)
	}
	if query.Type != nil {
		qb = qb.Where("type = ?", *query.Type)
	}
	if query.From != nil {
		qb = qb.Where("created_at >= ?", *query.From)
	}
	if query.To != nil {
		qb = qb.Where("created_at <= ?", *query.To)
	}

	var total int64
	if err := qb.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := query.Page
	if page < 1 {
		page = 1
	}
	limit := query.Limit
	if limit < 1 {
		limit = 20
	}

	var rows []models.InventoryTransaction
	err := qb.
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&rows).Error
	return rows, total, err
}

// ListExpiredActiveReservations returns ACTIVE holds whose deadline has passed.
func (r *Repository) ListExpiredActiveReservations(ctx context.Context, now time.Time) ([]models.StockReservation, error) {
	var rows []models.StockReservation
	err := r.db.WithContext(ctx).
		Where("status = ?", enums.ReservationStatusActive).
		Where("expires_at < ?", now).
		Order("expires_at ASC").
		Find(&rows).Error
	return rows, err
}

// FindOpenAlert returns the unresolved alert for a product, nil when none.
func (r *Repository) FindOpenAlert(ctx context.Context, productID uuid.UUID) (*models.StockAlert, error) {
	var alert models.StockAlert
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Where("status <> ?", enums.StockAlertStatusResolved).
		First(&alert).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &alert, nil
}

// CreateAlert inserts a new alert row.
func (r *Repository) CreateAlert(ctx context.Context, alert *models.StockAlert) error {
	return r.db.WithContext(ctx).Create(alert).Error
}

// SaveAlert persists all fields of an existing alert.
func (r *Repository) SaveAlert(ctx context.Context, alert *models.StockAlert) error {
	return r.db.WithContext(ctx).Save(alert).Error
}

type alertRecord struct {
	ID          uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	StockLevel  int
	Threshold   int
	Status      enums.StockAlertStatus
	CreatedAt   time.Time
}

// ListAlerts returns alerts joined with their product names, newest first,
// optionally filtered by status.
func (r *Repository) ListAlerts(ctx context.Context, status *enums.StockAlertStatus) ([]AlertDTO, error) {
	qb := r.db.WithContext(ctx).
		Table("stock_alerts a").
		Select("a.id, a.product_id, p.name AS product_name, a.stock_level, a.threshold, a.status, a.created_at").
		Joins("JOIN products p ON p.id = a.product_id")
	if status != nil {
		qb = qb.Where("a.status = ?", *status)
	}

	var records []alertRecord
	if err := qb.Order("a.created_at DESC").Scan(&records).Error; err != nil {
		return nil, err
	}

	alerts := make([]AlertDTO, 0, len(records))
	for _, record := range records {
		alerts = append(alerts, AlertDTO{
			ID:           record.ID,
			ProductID:    record.ProductID,
			ProductName:  record.ProductName,
			CurrentStock: record.StockLevel,
			Threshold:    record.Threshold,
			Status:       record.Status,
			CreatedAt:    record.CreatedAt,
		})
	}
	return alerts, nil
}

type lowStockRecord struct {
	ProductID uuid.UUID
	SKU       string
	Name      string
	Stock     int
	Reserved  int
}

// ListLowStockProducts scans active products whose availability, net of
// ACTIVE holds, sits below the threshold.
func (r *Repository) ListLowStockProducts(ctx context.Context, threshold int) ([]LowStockProduct, error) {
	var records []lowStockRecord
	err := r.db.WithContext(ctx).
		Table("products p").
		Select("p.id AS product_id, p.sku, p.name, p.stock, COALESCE(res.total, 0) AS reserved").
		Joins(
			"LEFT JOIN (SELECT product_id, SUM(reserved_quantity) AS total FROM stock_reservations WHERE status = ? GROUP BY product_id) res ON res.product_id = p.id",
			enums.ReservationStatusActive,
		).
		Where("p.is_active = ?", true).
		Where("p.stock - COALESCE(res.total, 0) < ?", threshold).
		Order("p.stock - COALESCE(res.total, 0) ASC").
		Scan(&records).Error
	if err != nil {
		return nil, err
	}

	products := make([]LowStockProduct, 0, len(records))
	for _, record := range records {
		products = append(products, LowStockProduct{
			ProductID:      record.ProductID,
			SKU:            record.SKU,
			Name:           record.Name,
			Stock:          record.Stock,
			ReservedStock:  record.Reserved,
			AvailableStock: record.Stock - record.Reserved,
		})
	}
	return products, nil
}
