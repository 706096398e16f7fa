package trace

// EpisodeTrace collects the physical-flow events of one episode.
type EpisodeTrace struct {
	Orders     []OrderRecord
	Deliveries []DeliveryRecord
	Abandons   []AbandonRecord
}

// NewEpisodeTrace creates an EpisodeTrace ready for recording.
func NewEpisodeTrace() *EpisodeTrace {
	return &EpisodeTrace{
		Orders:     make([]OrderRecord, 0),
		Deliveries: make([]DeliveryRecord, 0),
		Abandons:   make([]AbandonRecord, 0),
	}
}

// RecordOrder appends an order placement record.
func (t *EpisodeTrace) RecordOrder(r OrderRecord) {
	t.Orders = append(t.Orders, r)
}

// RecordDelivery appends a delivery record.
func (t *EpisodeTrace) RecordDelivery(r DeliveryRecord) {
	t.Deliveries = append(t.Deliveries, r)
}

// RecordAbandon appends an abandonment record.
func (t *EpisodeTrace) RecordAbandon(r AbandonRecord) {
	t.Abandons = append(t.Abandons, r)
}

// Reset drops all records for the next episode.
func (t *EpisodeTrace) Reset() {
	t.Orders = t.Orders[:0]
	t.Deliveries = t.Deliveries[:0]
	t.Abandons = t.Abandons[:0]
}
