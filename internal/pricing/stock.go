package pricing

// StockStatus is derived from the product's current stock on every read.
// It is never stored, so it cannot go stale.
type StockStatus string

const (
	OutOfStock StockStatus = "OUT_OF_STOCK"
	LowStock   StockStatus = "LOW_STOCK"
	InStock    StockStatus = "IN_STOCK"
)

const lowStockThreshold = 5

// StatusOf maps a stock count to its status: 0 or less is out of stock,
// 1-5 is low, anything above is in stock.
func StatusOf(stock int) StockStatus {
	switch {
	case stock <= 0:
		return OutOfStock
	case stock <= lowStockThreshold:
		return LowStock
	default:
		return InStock
	}
}
