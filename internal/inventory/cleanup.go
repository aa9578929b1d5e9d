package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/shopmesh/shopmesh-backend/pkg/enums"
	pkgerrors "github.com/shopmesh/shopmesh-backend/pkg/errors"
	"github.com/shopmesh/shopmesh-backend/pkg/outbox"
	"github.com/shopmesh/shopmesh-backend/pkg/outbox/payloads"
)

// CleanupExpiredReservations flips lapsed ACTIVE holds to EXPIRED. Each
// reservation is processed in its own transaction so one bad row cannot stall
// the rest of the sweep; failures are aggregated into the returned error.
func (s *service) CleanupExpiredReservations(ctx context.Context) (*CleanupResult, error) {
	now := s.now()
	expired, err := s.repo.ListExpiredActiveReservations(ctx, now)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list expired reservations")
	}

	result := &CleanupResult{ReservationIDs: []uuid.UUID{}}
	if len(expired) == 0 {
		return result, nil
	}

	var sweepErr error
	for _, reservation := range expired {
		reservationID := reservation.ID
		err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
			repo := s.repo.WithTx(tx)

			// Re-read under the transaction: a confirm or release may have
			// landed since the snapshot was taken.
			current, err := repo.FindReservationByID(ctx, reservationID)
			if err != nil {
				return err
			}
			if current.Status != enums.ReservationStatusActive || !current.IsExpired(now) {
				return nil
			}

			current.Status = enums.ReservationStatusExpired
			if err := repo.SaveReservation(ctx, current); err != nil {
				return err
			}

			if err := s.outbox.EmitIfNotExists(ctx, tx, outbox.DomainEvent{
				EventType:     enums.EventReservationExpired,
				AggregateType: enums.AggregateReservation,
				AggregateID:   current.ID,
				Version:       1,
				OccurredAt:    now,
				Data: payloads.ReservationExpiredEvent{
					ReservationID: current.ID,
					ProductID:     current.ProductID,
					CustomerID:    current.CustomerID,
					Quantity:      current.ReservedQuantity,
					ExpiredAt:     now,
				},
			}); err != nil {
				return err
			}

			return s.evaluateStockAlert(ctx, tx, current.ProductID)
		})
		if err != nil {
			sweepErr = multierr.Append(sweepErr, fmt.Errorf("reservation %s: %w", reservationID, err))
			continue
		}
		result.Cleaned++
		result.ReservationIDs = append(result.ReservationIDs, reservationID)
	}

	if result.Cleaned > 0 {
		s.logg.Info(ctx, fmt.Sprintf("cleaned up %d expired reservations", result.Cleaned))
	}
	return result, sweepErr
}
