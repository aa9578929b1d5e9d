package cron

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/shopmesh/shopmesh-backend/internal/inventory"
	"github.com/shopmesh/shopmesh-backend/pkg/logger"
)

type fakeExpirySweeper struct {
	result *inventory.CleanupResult
	err    error
	calls  int
}

func (f *fakeExpirySweeper) CleanupExpiredReservations(context.Context) (*inventory.CleanupResult, error) {
	f.calls++
	return f.result, f.err
}

func TestReservationExpiryJobRunsSweep(t *testing.T) {
	sweeper := &fakeExpirySweeper{
		result: &inventory.CleanupResult{
			Cleaned:        2,
			ReservationIDs: []uuid.UUID{uuid.New(), uuid.New()},
		},
	}
	job, err := NewReservationExpiryJob(ReservationExpiryJobParams{
		Logger:    logger.New(logger.Options{ServiceName: "test"}),
		Inventory: sweeper,
	})
	if err != nil {
		t.Fatalf("NewReservationExpiryJob: %v", err)
	}
	if job.Name() != "reservation-expiry" {
		t.Fatalf("unexpected name %q", job.Name())
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sweeper.calls != 1 {
		t.Fatalf("expected one sweep, got %d", sweeper.calls)
	}
}

func TestReservationExpiryJobPropagatesError(t *testing.T) {
	sweeper := &fakeExpirySweeper{
		result: &inventory.CleanupResult{Cleaned: 1, ReservationIDs: []uuid.UUID{uuid.New()}},
		err:    errors.New("boom"),
	}
	job, err := NewReservationExpiryJob(ReservationExpiryJobParams{
		Logger:    logger.New(logger.Options{ServiceName: "test"}),
		Inventory: sweeper,
	})
	if err != nil {
		t.Fatalf("NewReservationExpiryJob: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func TestReservationExpiryJobRequiresDeps(t *testing.T) {
	if _, err := NewReservationExpiryJob(ReservationExpiryJobParams{
		Inventory: &fakeExpirySweeper{},
	}); err == nil {
		t.Fatal("expected error without logger")
	}
	if _, err := NewReservationExpiryJob(ReservationExpiryJobParams{
		Logger: logger.New(logger.Options{ServiceName: "test"}),
	}); err == nil {
		t.Fatal("expected error without inventory service")
	}
}
