// Package frame provides tick-indexed typed scalar storage for observable
// unit state. This package has no dependencies on sim/ — it stores pure data.
//
// Units publish their per-tick counters here during the flush pass and zero
// the transient fields during post-step, so a snapshot taken between the two
// passes is always internally consistent for that tick.
package frame

// Field names for the scalar attributes units publish each tick.
const (
	FieldReceived          = "received"
	FieldTotalReceived     = "total_received"
	FieldPurchased         = "purchased"
	FieldTotalPurchased    = "total_purchased"
	FieldOrderQuantity     = "order_quantity"
	FieldOrderProductCost  = "order_product_cost"
	FieldOrderCost         = "order_cost"
	FieldPayload           = "payload"
	FieldTransportCost     = "transport_cost"
	FieldSold              = "sold"
	FieldDemand            = "demand"
	FieldTotalSold         = "total_sold"
	FieldTotalDemand       = "total_demand"
	FieldBacklog           = "backlog"
	FieldManufactured      = "manufactured"
	FieldTotalManufactured = "total_manufactured"
	FieldDelayOrderPenalty = "delay_order_penalty"
	FieldStock             = "stock"
	FieldRemainingSpace    = "remaining_space"
)

// Key addresses one scalar attribute: a node (unit or facility ID) and a field name.
type Key struct {
	Node  int64
	Field string
}

// Store is the in-memory attribute engine. The simulation core only ever
// calls the typed get/set/reset methods; how values are kept is an
// implementation detail.
//
// Thread-safety: NOT thread-safe. All mutation happens on the single
// simulation goroutine.
type Store struct {
	ints   map[Key]int64
	floats map[Key]float64
	tick   int64
}

// New creates an empty Store.
func New() *Store {
	return &Store{
		ints:   make(map[Key]int64),
		floats: make(map[Key]float64),
	}
}

// BeginTick marks the tick the next flush pass belongs to.
func (s *Store) BeginTick(tick int64) { s.tick = tick }

// Tick returns the tick of the most recent flush pass.
func (s *Store) Tick() int64 { return s.tick }

// SetInt writes an integer attribute for a node.
func (s *Store) SetInt(node int64, field string, v int64) {
	s.ints[Key{Node: node, Field: field}] = v
}

// AddInt adds delta to an integer attribute for a node.
func (s *Store) AddInt(node int64, field string, delta int64) {
	s.ints[Key{Node: node, Field: field}] += delta
}

// Int reads an integer attribute; missing attributes read as zero.
func (s *Store) Int(node int64, field string) int64 {
	return s.ints[Key{Node: node, Field: field}]
}

// SetFloat writes a float attribute for a node.
func (s *Store) SetFloat(node int64, field string, v float64) {
	s.floats[Key{Node: node, Field: field}] = v
}

// Float reads a float attribute; missing attributes read as zero.
func (s *Store) Float(node int64, field string) float64 {
	return s.floats[Key{Node: node, Field: field}]
}

// SnapshotInts returns a copy of all integer attributes. Used by tests and
// by reset-determinism checks; never by the simulation itself.
func (s *Store) SnapshotInts() map[Key]int64 {
	out := make(map[Key]int64, len(s.ints))
	for k, v := range s.ints {
		out[k] = v
	}
	return out
}

// Reset clears every attribute. Called once per episode reset.
func (s *Store) Reset() {
	s.ints = make(map[Key]int64)
	s.floats = make(map[Key]float64)
	s.tick = 0
}
