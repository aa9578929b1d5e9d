package enums

import "fmt"

// StockUpdateType describes how a bulk adjustment mutates the stock level.
type StockUpdateType string

const (
	StockUpdateTypeAdd      StockUpdateType = "ADD"
	StockUpdateTypeSubtract StockUpdateType = "SUBTRACT"
	StockUpdateTypeSet      StockUpdateType = "SET"
)

var validStockUpdateTypes = []StockUpdateType{
	StockUpdateTypeAdd,
	StockUpdateTypeSubtract,
	StockUpdateTypeSet,
}

// String implements fmt.Stringer.
func (t StockUpdateType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known StockUpdateType.
func (t StockUpdateType) IsValid() bool {
	for _, candidate := range validStockUpdateTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseStockUpdateType converts raw input into a StockUpdateType.
func ParseStockUpdateType(value string) (StockUpdateType, error) {
	for _, candidate := range validStockUpdateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid stock update type %q", value)
}
