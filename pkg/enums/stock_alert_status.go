package enums

import "fmt"

// StockAlertStatus tracks a low-stock alert from detection to resolution.
type StockAlertStatus string

const (
	StockAlertStatusPending  StockAlertStatus = "PENDING"
	StockAlertStatusNotified StockAlertStatus = "NOTIFIED"
	StockAlertStatusResolved StockAlertStatus = "RESOLVED"
)

var validStockAlertStatuses = []StockAlertStatus{
	StockAlertStatusPending,
	StockAlertStatusNotified,
	StockAlertStatusResolved,
}

// String implements fmt.Stringer.
func (s StockAlertStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known StockAlertStatus.
func (s StockAlertStatus) IsValid() bool {
	for _, candidate := range validStockAlertStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseStockAlertStatus converts raw input into a StockAlertStatus.
func ParseStockAlertStatus(value string) (StockAlertStatus, error) {
	for _, candidate := range validStockAlertStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock alert status %q", value)
}
