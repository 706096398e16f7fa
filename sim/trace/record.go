// Package trace provides physical-flow event recording for offline episode
// analysis. This package has no dependencies on sim/ — it stores pure data
// types and persists them.
package trace

// OrderRecord captures one placed purchase order.
type OrderRecord struct {
	Tick          int64
	SourceID      int64
	DestinationID int64
	ProductID     int64
	Quantity      int64
}

// DeliveryRecord captures one (possibly partial) vehicle unload.
// Requested is the original job quantity the delivery belongs to.
type DeliveryRecord struct {
	Tick          int64
	SourceID      int64
	DestinationID int64
	ProductID     int64
	Quantity      int64
	Requested     int64
}

// AbandonRecord captures a vehicle job rolled back after patience exhaustion.
type AbandonRecord struct {
	Tick          int64
	SourceID      int64
	DestinationID int64
	ProductID     int64
	Quantity      int64
}

// Summary carries the per-episode aggregates persisted next to the events.
type Summary struct {
	Episode           int
	Ticks             int64
	OrdersPlaced      int64
	QuantityOrdered   int64
	QuantityDelivered int64
	OrdersAbandoned   int64
	QuantityAbandoned int64
	QuantitySold      int64
	TotalDemand       int64
	TransportCost     int64
}
