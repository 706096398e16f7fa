package sim

import (
	"fmt"
	"sort"

	"github.com/supplychain-sim/supplychain-sim/sim/frame"
)

// DistributionUnit is the per-facility dispatcher: it queues incoming orders
// and assigns them FIFO to idle vehicles. One per facility.
type DistributionUnit struct {
	unitBase

	vehicles   []*VehicleUnit
	orderQueue []Order

	// per-tick accumulators, keyed by product, flushed then cleared
	delayPenalty map[int64]int64
}

// Vehicles returns the fleet, in stable order.
func (d *DistributionUnit) Vehicles() []*VehicleUnit { return d.vehicles }

// PendingOrders returns the number of orders waiting for a vehicle.
func (d *DistributionUnit) PendingOrders() int { return len(d.orderQueue) }

// PlaceOrder queues an order for dispatch and returns the order product
// cost (the facility's SKU price times the quantity). Orders for SKUs this
// facility does not carry, or with non-positive quantities, are rejected:
// nothing is queued and ok is false, so the caller can roll back any
// bookkeeping it did for the order.
func (d *DistributionUnit) PlaceOrder(order Order) (cost int64, ok bool) {
	if order.Quantity <= 0 {
		return 0, false
	}
	sku := d.facility().SKU(order.ProductID)
	if sku == nil {
		return 0, false
	}
	d.orderQueue = append(d.orderQueue, order)
	return sku.Price * order.Quantity, true
}

// TransportCost sums the fleet's transport cost for the current tick.
func (d *DistributionUnit) TransportCost() int64 {
	var total int64
	for _, v := range d.vehicles {
		total += v.Cost()
	}
	return total
}

// DelayPenalty returns the penalty accrued this tick for one product.
func (d *DistributionUnit) DelayPenalty(productID int64) int64 {
	return d.delayPenalty[productID]
}

func (d *DistributionUnit) Initialize() {
	d.delayPenalty = make(map[int64]int64)
	for _, v := range d.vehicles {
		v.Initialize()
	}
}

// Step assigns queued orders to idle vehicles, advances the fleet, then
// charges the delay penalty for orders still waiting. An unreachable
// destination is a configuration defect; the dispatch panics rather than
// silently dropping the order.
func (d *DistributionUnit) Step(tick int64) {
	for _, v := range d.vehicles {
		if len(d.orderQueue) == 0 {
			break
		}
		if !v.Idle() {
			continue
		}
		order := d.orderQueue[0]
		destination := d.world.Facility(order.DestinationID)
		if err := v.Schedule(destination, order.ProductID, order.Quantity, order.LeadTime); err != nil {
			panic(fmt.Errorf("dispatch %d units of sku %d to facility %d: %w",
				order.Quantity, order.ProductID, order.DestinationID, err))
		}
		d.orderQueue = d.orderQueue[1:]
	}

	for _, v := range d.vehicles {
		v.Step(tick)
	}

	unitPenalty := d.facility().config.DelayOrderPenalty
	for _, order := range d.orderQueue {
		d.delayPenalty[order.ProductID] += unitPenalty
	}
}

// FlushStates publishes the tick's transport cost and delay penalties and
// delegates to the fleet.
func (d *DistributionUnit) FlushStates(tick int64) {
	fs := d.world.frame
	fs.SetInt(d.id, frame.FieldTransportCost, d.TransportCost())
	for _, productID := range sortedKeys(d.delayPenalty) {
		fs.AddInt(d.id, frame.FieldDelayOrderPenalty, d.delayPenalty[productID])
	}
	for _, v := range d.vehicles {
		v.FlushStates(tick)
	}
}

// PostStep clears the per-tick accumulators and delegates to the fleet.
func (d *DistributionUnit) PostStep(tick int64) {
	d.delayPenalty = make(map[int64]int64)
	fs := d.world.frame
	fs.SetInt(d.id, frame.FieldTransportCost, 0)
	fs.SetInt(d.id, frame.FieldDelayOrderPenalty, 0)
	for _, v := range d.vehicles {
		v.PostStep(tick)
	}
}

// Reset drops queued orders and resets the fleet.
func (d *DistributionUnit) Reset() {
	d.orderQueue = nil
	d.delayPenalty = make(map[int64]int64)
	for _, v := range d.vehicles {
		v.Reset()
	}
}

// DelayPenaltyTotal sums this tick's penalty across products, in product
// order for determinism.
func (d *DistributionUnit) DelayPenaltyTotal() int64 {
	var total int64
	ids := make([]int64, 0, len(d.delayPenalty))
	for id := range d.delayPenalty {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		total += d.delayPenalty[id]
	}
	return total
}
