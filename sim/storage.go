// storage.go
//
// Capacity-bounded multi-product container owned by one facility. All
// inventory mutation in the simulation flows through the three batch
// operations here; no other entity touches quantities directly.

package sim

import "sort"

// Storage holds per-product quantities under a single shared capacity.
// Invariant: every quantity is >= 0 and the sum of quantities never
// exceeds the capacity.
type Storage struct {
	capacity   int64
	used       int64
	quantities map[int64]int64
	initial    map[int64]int64
}

// NewStorage creates a Storage with the given capacity and initial stock.
// The initial stock is also the state Reset restores.
func NewStorage(capacity int64, initial map[int64]int64) *Storage {
	s := &Storage{
		capacity: capacity,
		initial:  make(map[int64]int64, len(initial)),
	}
	for productID, qty := range initial {
		s.initial[productID] = qty
	}
	s.Reset()
	return s
}

// Capacity returns the shared capacity across all products.
func (s *Storage) Capacity() int64 { return s.capacity }

// Used returns the sum of all product quantities.
func (s *Storage) Used() int64 { return s.used }

// RemainingSpace returns the unoccupied capacity.
func (s *Storage) RemainingSpace() int64 { return s.capacity - s.used }

// Quantity returns the current quantity of one product.
func (s *Storage) Quantity(productID int64) int64 { return s.quantities[productID] }

// ProductIDs returns the products with non-zero quantity, sorted.
func (s *Storage) ProductIDs() []int64 {
	ids := make([]int64, 0, len(s.quantities))
	for id, qty := range s.quantities {
		if qty > 0 {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// TryTake atomically removes the requested quantities. It succeeds only if
// every requested product has at least the requested amount; on failure no
// quantity is modified. Failure signals insufficient stock, not an error.
func (s *Storage) TryTake(requests map[int64]int64) bool {
	for productID, qty := range requests {
		if s.quantities[productID] < qty {
			return false
		}
	}
	for productID, qty := range requests {
		s.quantities[productID] -= qty
		s.used -= qty
	}
	return true
}

// TryAdd stores the delivered quantities, bounded by remaining capacity.
//
// With allOrNothing set, either every requested quantity fits and is added,
// or nothing is. Otherwise each product is added independently, in product ID
// order, taking as much as still fits. The result maps product ID to the
// amount actually added; products that could not be added at all are absent.
func (s *Storage) TryAdd(deliveries map[int64]int64, allOrNothing bool) map[int64]int64 {
	added := map[int64]int64{}

	if allOrNothing {
		var total int64
		for _, qty := range deliveries {
			total += qty
		}
		if total > s.RemainingSpace() {
			return added
		}
		for productID, qty := range deliveries {
			if qty <= 0 {
				continue
			}
			s.quantities[productID] += qty
			s.used += qty
			added[productID] = qty
		}
		return added
	}

	// Per-product application in sorted order: the shared capacity makes the
	// outcome order-dependent, and map order would break reproducibility.
	for _, productID := range sortedKeys(deliveries) {
		qty := deliveries[productID]
		if qty <= 0 {
			continue
		}
		take := min(qty, s.RemainingSpace())
		if take <= 0 {
			continue
		}
		s.quantities[productID] += take
		s.used += take
		added[productID] = take
	}
	return added
}

// TakeAvailable removes up to quantity units of one product and returns the
// amount actually removed. Used by sellers to fill stochastic demand.
func (s *Storage) TakeAvailable(productID, quantity int64) int64 {
	take := min(quantity, s.quantities[productID])
	if take <= 0 {
		return 0
	}
	s.quantities[productID] -= take
	s.used -= take
	return take
}

// Reset restores the initial stock.
func (s *Storage) Reset() {
	s.quantities = make(map[int64]int64, len(s.initial))
	s.used = 0
	for productID, qty := range s.initial {
		s.quantities[productID] = qty
		s.used += qty
	}
}

func sortedKeys(m map[int64]int64) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
