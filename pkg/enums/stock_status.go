package enums

// StockStatus is the coarse availability signal reported to storefronts.
type StockStatus string

const (
	StockStatusInStock    StockStatus = "IN_STOCK"
	StockStatusOutOfStock StockStatus = "OUT_OF_STOCK"
)

// String implements fmt.Stringer.
func (s StockStatus) String() string {
	return string(s)
}
