package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateReservation OutboxAggregateType = "reservation"
	AggregateProduct     OutboxAggregateType = "product"
	AggregateStockSweep  OutboxAggregateType = "stock_sweep"
	AggregateStockAlert  OutboxAggregateType = "stock_alert"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateReservation,
	AggregateProduct,
	AggregateStockSweep,
	AggregateStockAlert,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventStockReserved        OutboxEventType = "stock_reserved"
	EventReservationReleased  OutboxEventType = "reservation_released"
	EventReservationConfirmed OutboxEventType = "reservation_confirmed"
	EventReservationExpired   OutboxEventType = "reservation_expired"
	EventStockAdjusted        OutboxEventType = "stock_adjusted"
	EventLowStockDetected     OutboxEventType = "low_stock_detected"
	EventStockAlertResolved   OutboxEventType = "stock_alert_resolved"
)

var validOutboxEventTypes = []OutboxEventType{
	EventStockReserved,
	EventReservationReleased,
	EventReservationConfirmed,
	EventReservationExpired,
	EventStockAdjusted,
	EventLowStockDetected,
	EventStockAlertResolved,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
