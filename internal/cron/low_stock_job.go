package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/shopmesh/shopmesh-backend/internal/inventory"
	"github.com/shopmesh/shopmesh-backend/pkg/logger"
)

const defaultLowStockScanEvery = 24 * time.Hour

// LowStockJobParams configure the low-stock monitoring sweep.
type LowStockJobParams struct {
	Logger    *logger.Logger
	Inventory lowStockScanner
	Every     time.Duration
}

type lowStockScanner interface {
	LowStockSweep(ctx context.Context) (*inventory.LowStockSweepResult, error)
}

// NewLowStockJob builds the cron job that flags products running low.
func NewLowStockJob(params LowStockJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Inventory == nil {
		return nil, fmt.Errorf("inventory service required")
	}
	every := params.Every
	if every <= 0 {
		every = defaultLowStockScanEvery
	}
	return &lowStockJob{
		logg:      params.Logger,
		inventory: params.Inventory,
		every:     every,
		now:       time.Now,
	}, nil
}

type lowStockJob struct {
	logg      *logger.Logger
	inventory lowStockScanner
	every     time.Duration
	lastRun   time.Time
	now       func() time.Time
}

func (j *lowStockJob) Name() string { return "low-stock-scan" }

// Run throttles itself: the worker ticks on the reservation sweep cadence,
// but the scan only needs to go out once per configured period.
func (j *lowStockJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	if !j.lastRun.IsZero() && now.Sub(j.lastRun) < j.every {
		return nil
	}
	result, err := j.inventory.LowStockSweep(ctx)
	if err != nil {
		return fmt.Errorf("low stock sweep: %w", err)
	}
	j.lastRun = now
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"sweep_id": result.SweepID,
		"flagged":  result.Flagged,
	})
	j.logg.Info(logCtx, "low stock scan complete")
	return nil
}
