package cron

import (
	"context"
	"fmt"

	"github.com/shopmesh/shopmesh-backend/internal/inventory"
	"github.com/shopmesh/shopmesh-backend/pkg/logger"
)

// ReservationExpiryJobParams configure the reservation expiry sweeper.
type ReservationExpiryJobParams struct {
	Logger    *logger.Logger
	Inventory expirySweeper
}

type expirySweeper interface {
	CleanupExpiredReservations(ctx context.Context) (*inventory.CleanupResult, error)
}

// NewReservationExpiryJob builds the cron job that expires lapsed holds.
func NewReservationExpiryJob(params ReservationExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Inventory == nil {
		return nil, fmt.Errorf("inventory service required")
	}
	return &reservationExpiryJob{
		logg:      params.Logger,
		inventory: params.Inventory,
	}, nil
}

type reservationExpiryJob struct {
	logg      *logger.Logger
	inventory expirySweeper
}

func (j *reservationExpiryJob) Name() string { return "reservation-expiry" }

func (j *reservationExpiryJob) Run(ctx context.Context) error {
	result, err := j.inventory.CleanupExpiredReservations(ctx)
	if result != nil && result.Cleaned > 0 {
		logCtx := j.logg.WithFields(ctx, map[string]any{"count": result.Cleaned})
		j.logg.Info(logCtx, "reservation expiry loop complete")
	}
	if err != nil {
		return fmt.Errorf("expire reservations: %w", err)
	}
	return nil
}
