// Tracks episode-wide counters for final reporting. Useful for evaluating
// replenishment policies and for debugging flow behavior over time.

package sim

import "fmt"

// Metrics aggregates statistics about one episode.
type Metrics struct {
	Ticks int64

	OrdersPlaced      int64
	QuantityOrdered   int64
	QuantityDelivered int64
	OrdersAbandoned   int64
	QuantityAbandoned int64

	QuantitySold         int64
	TotalDemand          int64
	QuantityManufactured int64

	TransportCost     int64
	DelayOrderPenalty int64
	OrderProductCost  int64
	OrderCost         int64
}

// NewMetrics creates a zeroed Metrics.
func NewMetrics() *Metrics {
	return &Metrics{}
}

// Print displays aggregated metrics at the end of the episode.
func (m *Metrics) Print() {
	fmt.Println("=== Episode Metrics ===")
	fmt.Printf("Ticks                : %d\n", m.Ticks)
	fmt.Printf("Orders Placed        : %d (qty %d)\n", m.OrdersPlaced, m.QuantityOrdered)
	fmt.Printf("Quantity Delivered   : %d\n", m.QuantityDelivered)
	fmt.Printf("Orders Abandoned     : %d (qty %d)\n", m.OrdersAbandoned, m.QuantityAbandoned)
	fmt.Printf("Quantity Sold        : %d (demand %d)\n", m.QuantitySold, m.TotalDemand)
	fmt.Printf("Quantity Manufactured: %d\n", m.QuantityManufactured)
	fmt.Printf("Transport Cost       : %d\n", m.TransportCost)
	fmt.Printf("Delay Order Penalty  : %d\n", m.DelayOrderPenalty)
	fmt.Printf("Order Product Cost   : %d\n", m.OrderProductCost)
	fmt.Printf("Order Cost           : %d\n", m.OrderCost)
}
