package inventory

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/shopmesh/shopmesh-backend/pkg/db/models"
	"github.com/shopmesh/shopmesh-backend/pkg/enums"
	pkgerrors "github.com/shopmesh/shopmesh-backend/pkg/errors"
	"github.com/shopmesh/shopmesh-backend/pkg/outbox"
	"github.com/shopmesh/shopmesh-backend/pkg/outbox/payloads"
)

// Reserve places or tops up a hold on product stock. The product row is
// locked so availability is recomputed against a stable stock level.
func (s *service) Reserve(ctx context.Context, input ReserveInput) (*ReservationDTO, error) {
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}

	var saved *models.StockReservation
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		product, err := repo.FindProductByIDForUpdate(ctx, input.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("Product %s not found", input.ProductID))
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		if !product.IsActive {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("Product %s is not active", input.ProductID))
		}

		reserved, err := repo.SumActiveReservations(ctx, product.ID, nil)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum reservations")
		}
		available := product.Stock - reserved
		if available < input.Quantity {
			return pkgerrors.New(pkgerrors.CodeInsufficientStock,
				fmt.Sprintf("Insufficient stock. Available: %d, Requested: %d", available, input.Quantity),
			).WithDetails(map[string]int{"available": available, "requested": input.Quantity})
		}

		existing, err := repo.FindActiveReservation(ctx, product.ID, input.CustomerID, nil)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find reservation")
		}

		now := s.now()
		expiresAt := now.Add(s.ttl)

		if existing != nil {
			newAvailable := available - existing.ReservedQuantity
			if newAvailable < input.Quantity {
				return pkgerrors.New(pkgerrors.CodeInsufficientStock,
					fmt.Sprintf("Insufficient stock. Available: %d, Requested additional: %d", newAvailable, input.Quantity),
				).WithDetails(map[string]int{"available": newAvailable, "requested": input.Quantity})
			}
			existing.ReservedQuantity += input.Quantity
			existing.ExpiresAt = expiresAt
			if err := repo.SaveReservation(ctx, existing); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save reservation")
			}
			saved = existing
		} else {
			reservation := &models.StockReservation{
				ProductID:        product.ID,
				CustomerID:       input.CustomerID,
				CartID:           input.CartID,
				ReservedQuantity: input.Quantity,
				Status:           enums.ReservationStatusActive,
				ExpiresAt:        expiresAt,
			}
			if err := repo.CreateReservation(ctx, reservation); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create reservation")
			}
			saved = reservation
		}

		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventStockReserved,
			AggregateType: enums.AggregateReservation,
			AggregateID:   saved.ID,
			Version:       1,
			OccurredAt:    now,
			Data: payloads.StockReservedEvent{
				ReservationID: saved.ID,
				ProductID:     saved.ProductID,
				CustomerID:    saved.CustomerID,
				CartID:        saved.CartID,
				Quantity:      saved.ReservedQuantity,
				ExpiresAt:     saved.ExpiresAt,
			},
		})
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve stock")
	}

	logCtx := s.logg.WithProductID(ctx, saved.ProductID.String())
	s.logg.Info(logCtx, "stock reserved")
	return newReservationDTO(saved, nil), nil
}

// Release cancels an ACTIVE hold and hands the units back to availability.
func (s *service) Release(ctx context.Context, reservationID uuid.UUID) (*ReleaseResult, error) {
	var result *ReleaseResult
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		reservation, err := s.loadReservationTx(ctx, repo, reservationID)
		if err != nil {
			return err
		}
		if reservation.Status != enums.ReservationStatusActive {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("Reservation is already %s", strings.ToLower(string(reservation.Status))))
		}

		reservation.Status = enums.ReservationStatusCancelled
		if err := repo.SaveReservation(ctx, reservation); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save reservation")
		}

		now := s.now()
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventReservationReleased,
			AggregateType: enums.AggregateReservation,
			AggregateID:   reservation.ID,
			Version:       1,
			OccurredAt:    now,
			Data: payloads.ReservationReleasedEvent{
				ReservationID: reservation.ID,
				ProductID:     reservation.ProductID,
				CustomerID:    reservation.CustomerID,
				Quantity:      reservation.ReservedQuantity,
				ReleasedAt:    now,
			},
		}); err != nil {
			return err
		}

		if err := s.evaluateStockAlert(ctx, tx, reservation.ProductID); err != nil {
			return err
		}

		result = &ReleaseResult{
			Released: true,
			Message: fmt.Sprintf("Reservation %s released. %d units now available.",
				reservation.ID, reservation.ReservedQuantity),
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "release reservation")
	}
	return result, nil
}

// Confirm converts an ACTIVE hold into a sale: physical stock is deducted and
// an OUT ledger entry written, both under the product row lock.
func (s *service) Confirm(ctx context.Context, reservationID uuid.UUID, orderID *uuid.UUID) (*ReservationDTO, error) {
	var confirmed *models.StockReservation
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		reservation, err := s.loadReservationTx(ctx, repo, reservationID)
		if err != nil {
			return err
		}
		if reservation.Status != enums.ReservationStatusActive {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("Cannot confirm reservation. Status is %s", strings.ToLower(string(reservation.Status))))
		}

		product, err := repo.FindProductByIDForUpdate(ctx, reservation.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("Product %s not found", reservation.ProductID))
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}

		// The first status read ran before the product lock; a concurrent
		// confirm or release may have landed in between, so re-read now
		// that the lock is held.
		reservation, err = s.loadReservationTx(ctx, repo, reservationID)
		if err != nil {
			return err
		}
		if reservation.Status != enums.ReservationStatusActive {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("Cannot confirm reservation. Status is %s", strings.ToLower(string(reservation.Status))))
		}

		previousStock := product.Stock
		newStock := previousStock - reservation.ReservedQuantity
		if newStock < 0 {
			return pkgerrors.New(pkgerrors.CodeIntegrity,
				fmt.Sprintf("confirming reservation %s would drive stock negative", reservation.ID))
		}

		if err := repo.UpdateProductStock(ctx, product.ID, newStock); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update stock")
		}

		reservation.Status = enums.ReservationStatusCompleted
		if err := repo.SaveReservation(ctx, reservation); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save reservation")
		}

		referenceType := "ORDER"
		reason := fmt.Sprintf("Order confirmed from reservation #%s", reservation.ID)
		entry := &models.InventoryTransaction{
			ProductID:     reservation.ProductID,
			Type:          enums.TransactionTypeOut,
			Quantity:      -reservation.ReservedQuantity,
			PreviousStock: previousStock,
			NewStock:      newStock,
			ReferenceType: &referenceType,
			ReferenceID:   orderID,
			Reason:        &reason,
		}
		if err := repo.InsertTransaction(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert transaction")
		}

		now := s.now()
		if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventReservationConfirmed,
			AggregateType: enums.AggregateReservation,
			AggregateID:   reservation.ID,
			Version:       1,
			OccurredAt:    now,
			Data: payloads.ReservationConfirmedEvent{
				ReservationID: reservation.ID,
				ProductID:     reservation.ProductID,
				CustomerID:    reservation.CustomerID,
				Quantity:      reservation.ReservedQuantity,
				NewStock:      newStock,
				ConfirmedAt:   now,
			},
		}); err != nil {
			return err
		}

		if err := s.evaluateStockAlert(ctx, tx, product.ID); err != nil {
			return err
		}

		confirmed = reservation
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "confirm reservation")
	}

	logCtx := s.logg.WithProductID(ctx, confirmed.ProductID.String())
	s.logg.Info(logCtx, "reservation confirmed")
	return newReservationDTO(confirmed, nil), nil
}

// UpdateQuantity changes the size of an ACTIVE hold. A quantity of zero or
// less cancels it; increases are re-validated against availability excluding
// the hold's own units; decreases always succeed. The TTL is refreshed.
func (s *service) UpdateQuantity(ctx context.Context, reservationID uuid.UUID, newQuantity int) (*ReservationDTO, error) {
	var updated *models.StockReservation
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		reservation, err := s.loadReservationTx(ctx, repo, reservationID)
		if err != nil {
			return err
		}
		if reservation.Status != enums.ReservationStatusActive {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("Cannot update %s reservation", reservation.Status))
		}

		if newQuantity <= 0 {
			reservation.Status = enums.ReservationStatusCancelled
			if err := repo.SaveReservation(ctx, reservation); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save reservation")
			}
			now := s.now()
			if err := s.outbox.Emit(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventReservationReleased,
				AggregateType: enums.AggregateReservation,
				AggregateID:   reservation.ID,
				Version:       1,
				OccurredAt:    now,
				Data: payloads.ReservationReleasedEvent{
					ReservationID: reservation.ID,
					ProductID:     reservation.ProductID,
					CustomerID:    reservation.CustomerID,
					Quantity:      reservation.ReservedQuantity,
					ReleasedAt:    now,
					Reason:        "quantity set to zero",
				},
			}); err != nil {
				return err
			}
			if err := s.evaluateStockAlert(ctx, tx, reservation.ProductID); err != nil {
				return err
			}
			updated = reservation
			return nil
		}

		if newQuantity > reservation.ReservedQuantity {
			product, err := repo.FindProductByIDForUpdate(ctx, reservation.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
			}

			otherReserved, err := repo.SumActiveReservations(ctx, reservation.ProductID, &reservation.ID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum reservations")
			}

			additionalNeeded := newQuantity - reservation.ReservedQuantity
			availableStock := product.Stock - otherReserved - reservation.ReservedQuantity
			if availableStock < additionalNeeded {
				return pkgerrors.New(pkgerrors.CodeInsufficientStock,
					fmt.Sprintf("Insufficient stock. Can only add %d more units.", availableStock),
				).WithDetails(map[string]int{"available": availableStock, "requested": additionalNeeded})
			}
		}

		reservation.ReservedQuantity = newQuantity
		reservation.ExpiresAt = s.now().Add(s.ttl)
		if err := repo.SaveReservation(ctx, reservation); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save reservation")
		}
		updated = reservation
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update reservation quantity")
	}
	return newReservationDTO(updated, nil), nil
}

// ReleaseForCustomer releases the ACTIVE hold matching (product, customer[,
// cart]). A missing hold is not an error; carts retry removals freely.
func (s *service) ReleaseForCustomer(ctx context.Context, productID, customerID uuid.UUID, cartID *uuid.UUID) (*ReleaseResult, error) {
	reservation, err := s.repo.FindActiveReservation(ctx, productID, customerID, cartID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find reservation")
	}
	if reservation == nil {
		return &ReleaseResult{Released: false, Message: "No active reservation found to release"}, nil
	}
	return s.Release(ctx, reservation.ID)
}

// UpdateQuantityForCustomer resizes the customer's hold on a product,
// reserving fresh stock when no hold exists yet.
func (s *service) UpdateQuantityForCustomer(ctx context.Context, productID, customerID uuid.UUID, cartID *uuid.UUID, newQuantity int) (*ReservationDTO, error) {
	reservation, err := s.repo.FindActiveReservation(ctx, productID, customerID, cartID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find reservation")
	}
	if reservation == nil {
		if newQuantity > 0 {
			return s.Reserve(ctx, ReserveInput{
				ProductID:  productID,
				Quantity:   newQuantity,
				CustomerID: customerID,
				CartID:     cartID,
			})
		}
		return nil, pkgerrors.New(pkgerrors.CodeNotFound,
			fmt.Sprintf("No active reservation found for product %s", productID))
	}
	return s.UpdateQuantity(ctx, reservation.ID, newQuantity)
}

// ConfirmForCustomer confirms the customer's hold on a product.
func (s *service) ConfirmForCustomer(ctx context.Context, productID, customerID uuid.UUID, cartID *uuid.UUID, orderID *uuid.UUID) (*ReservationDTO, error) {
	reservation, err := s.repo.FindActiveReservation(ctx, productID, customerID, cartID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find reservation")
	}
	if reservation == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound,
			fmt.Sprintf("No active reservation found for product %s and customer %s", productID, customerID))
	}
	return s.Confirm(ctx, reservation.ID, orderID)
}

// ActiveReservation returns the customer's ACTIVE hold on a product, or nil.
func (s *service) ActiveReservation(ctx context.Context, productID, customerID uuid.UUID) (*ReservationDTO, error) {
	reservation, err := s.repo.FindActiveReservation(ctx, productID, customerID, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find reservation")
	}
	if reservation == nil {
		return nil, nil
	}
	return newReservationDTO(reservation, nil), nil
}

// CustomerReservations lists the customer's ACTIVE holds, newest first.
func (s *service) CustomerReservations(ctx context.Context, customerID uuid.UUID) ([]ReservationDTO, error) {
	rows, names, err := s.repo.ListCustomerReservations(ctx, customerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reservations")
	}

	reservations := make([]ReservationDTO, 0, len(rows))
	for i := range rows {
		var name *string
		if n, ok := names[rows[i].ID]; ok {
			name = &n
		}
		reservations = append(reservations, *newReservationDTO(&rows[i], name))
	}
	return reservations, nil
}

func (s *service) loadReservationTx(ctx context.Context, repo *Repository, reservationID uuid.UUID) (*models.StockReservation, error) {
	reservation, err := repo.FindReservationByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("Reservation %s not found", reservationID))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load reservation")
	}
	return reservation, nil
}
