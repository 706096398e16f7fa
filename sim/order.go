package sim

// Order is an in-flight purchase: a destination facility asks a source
// facility's distribution for a quantity of one product. Immutable once
// created.
type Order struct {
	DestinationID int64
	ProductID     int64
	Quantity      int64
	LeadTime      int64
}

// OpenOrderBook is the per-consumer ledger of outstanding quantities keyed
// by (source facility, product). It is incremented once per placed order and
// decremented once per received delivery by the delivered amount, so after a
// correctly paired place/receive sequence no entry is ever negative.
type OpenOrderBook struct {
	outstanding map[int64]map[int64]int64
}

// NewOpenOrderBook creates an empty ledger.
func NewOpenOrderBook() *OpenOrderBook {
	return &OpenOrderBook{outstanding: make(map[int64]map[int64]int64)}
}

// Add applies a signed adjustment to the (source, product) entry. Positive
// deltas record placed orders; negative deltas record deliveries or the
// rollback of an abandoned vehicle job.
func (b *OpenOrderBook) Add(sourceID, productID, delta int64) {
	byProduct, ok := b.outstanding[sourceID]
	if !ok {
		byProduct = make(map[int64]int64)
		b.outstanding[sourceID] = byProduct
	}
	byProduct[productID] += delta
}

// Outstanding returns the open quantity for one (source, product) pair.
func (b *OpenOrderBook) Outstanding(sourceID, productID int64) int64 {
	return b.outstanding[sourceID][productID]
}

// InTransit sums the open quantities of one product across all sources.
func (b *OpenOrderBook) InTransit(productID int64) int64 {
	var total int64
	for _, byProduct := range b.outstanding {
		total += byProduct[productID]
	}
	return total
}

// Reset drops every entry.
func (b *OpenOrderBook) Reset() {
	b.outstanding = make(map[int64]map[int64]int64)
}
