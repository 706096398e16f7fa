// vehicle.go
//
// VehicleUnit moves a quantity of one product along a route between two
// facilities. Lifecycle: idle → scheduled → loading (retried under a
// patience budget) → moving → unloading (retried without limit, partial
// deliveries allowed) → idle. Abandonment while loading is the only exit
// that rolls an open order back without a delivery.

package sim

import (
	"fmt"

	"github.com/supplychain-sim/supplychain-sim/sim/frame"
)

// VehicleUnit is owned by its facility's DistributionUnit.
type VehicleUnit struct {
	unitBase

	maxPatience       int64
	unitTransportCost int64

	// current job; destinationID == 0 means idle
	destinationID     int64
	productID         int64
	requestedQuantity int64
	path              []Waypoint
	location          int
	velocity          int64
	steps             int64
	payload           int64
	patience          int64
	delivered         int64 // total unloaded for the current job

	cost int64 // per-tick transport cost
}

// Idle reports whether the vehicle has no job assigned.
func (v *VehicleUnit) Idle() bool { return v.destinationID == 0 }

// Payload returns the quantity currently carried.
func (v *VehicleUnit) Payload() int64 { return v.payload }

// Cost returns the transport cost accrued this tick.
func (v *VehicleUnit) Cost() int64 { return v.cost }

// Patience returns the remaining load-wait budget.
func (v *VehicleUnit) Patience() int64 { return v.patience }

// Schedule arms a job: route the vehicle from its facility to destination,
// set the distance budget to the order's lead time, and reset patience.
// Scheduling an unreachable destination is fatal to the call; it indicates a
// configuration defect, and the caller must not retry.
func (v *VehicleUnit) Schedule(destination *Facility, productID, quantity, leadTime int64) error {
	origin := v.facility()
	path := v.world.FindPath(origin.x, origin.y, destination.x, destination.y)
	if path == nil {
		return fmt.Errorf("vehicle %d: %w: %q -> %q", v.id, ErrUnreachable, origin.Name(), destination.Name())
	}
	if leadTime < 1 {
		leadTime = 1
	}

	v.destinationID = destination.ID()
	v.productID = productID
	v.requestedQuantity = quantity
	v.path = path
	v.location = 0
	// One tick of motion advances the remaining distance budget by exactly
	// one unit of progress; velocity scales the position along the route.
	v.velocity = leadTime
	v.steps = leadTime
	v.payload = 0
	v.delivered = 0
	v.patience = v.maxPatience
	return nil
}

// Step advances the vehicle by one tick. Loading consumes a full tick;
// arrival and the first unload attempt share the arrival tick.
func (v *VehicleUnit) Step(tick int64) {
	switch {
	case v.steps > 0 && v.location == 0 && v.payload == 0:
		// Waiting at the source for the full requested quantity.
		if !v.tryLoad() {
			v.patience--
			if v.patience < 0 {
				v.abandon(tick)
			}
		}

	case v.steps > 0 && v.payload > 0:
		v.location += int(v.velocity)
		v.steps--
		if v.location >= len(v.path) {
			v.location = len(v.path) - 1
		}
		if v.steps == 0 {
			v.tryUnload(tick)
			if v.payload == 0 {
				v.clearJob()
			}
		}

	case v.payload > 0:
		// Arrived with payload left from an earlier partial unload.
		v.tryUnload(tick)
		if v.payload == 0 {
			v.clearJob()
		}

	case v.destinationID != 0:
		v.clearJob()
	}

	v.cost = v.payload * v.unitTransportCost
}

// tryLoad reserves the full requested quantity from the source storage.
// All-or-nothing: a partial load never happens.
func (v *VehicleUnit) tryLoad() bool {
	if v.facility().Storage().TryTake(map[int64]int64{v.productID: v.requestedQuantity}) {
		v.payload = v.requestedQuantity
		return true
	}
	return false
}

// tryUnload delivers as much payload as the destination storage accepts and
// notifies the destination consumer with the delivered and requested amounts.
func (v *VehicleUnit) tryUnload(tick int64) {
	destination := v.world.Facility(v.destinationID)
	added := destination.Storage().TryAdd(map[int64]int64{v.productID: v.payload}, false)
	unloaded := added[v.productID]
	if unloaded <= 0 {
		return
	}

	if product := destination.Product(v.productID); product != nil && product.Consumer != nil {
		product.Consumer.OnOrderReception(v.facilityID, v.productID, unloaded, v.requestedQuantity)
	}
	v.payload -= unloaded
	v.delivered += unloaded
	v.world.recordDelivery(tick, v.facilityID, v.destinationID, v.productID, unloaded, v.requestedQuantity)
}

// abandon rolls the open order back by the unfulfilled quantity and clears
// the job. Patience exhaustion is a deterministic, counted exit, not an
// external cancellation.
func (v *VehicleUnit) abandon(tick int64) {
	destination := v.world.Facility(v.destinationID)
	if product := destination.Product(v.productID); product != nil && product.Consumer != nil {
		product.Consumer.UpdateOpenOrders(v.facilityID, v.productID, -v.requestedQuantity)
	}
	v.world.recordAbandon(tick, v.facilityID, v.destinationID, v.productID, v.requestedQuantity)
	v.clearJob()
}

func (v *VehicleUnit) clearJob() {
	v.destinationID = 0
	v.productID = 0
	v.requestedQuantity = 0
	v.path = nil
	v.location = 0
	v.velocity = 0
	v.steps = 0
	v.payload = 0
	v.delivered = 0
	v.patience = v.maxPatience
}

// FlushStates publishes the payload and the tick's transport cost.
func (v *VehicleUnit) FlushStates(tick int64) {
	fs := v.world.frame
	fs.SetInt(v.id, frame.FieldPayload, v.payload)
	fs.SetInt(v.id, frame.FieldTransportCost, v.cost)
}

// PostStep zeroes the per-tick transport cost field.
func (v *VehicleUnit) PostStep(tick int64) {
	v.world.frame.SetInt(v.id, frame.FieldTransportCost, 0)
}

// Reset clears any job in progress.
func (v *VehicleUnit) Reset() {
	v.clearJob()
	v.cost = 0
}
