package sim

import (
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/supplychain-sim/supplychain-sim/sim/frame"
)

// ConsumerUnit issues purchase orders for one SKU, driven by externally
// supplied actions. There is no discrete state machine here; the state is
// the open-order ledger plus the lead-time-bucketed pending window.
type ConsumerUnit struct {
	unitBase
	productID int64
	parent    *ProductUnit

	// sources holds the facility IDs this consumer may purchase from,
	// resolved once during Initialize.
	sources []int64

	open    *OpenOrderBook
	pending []int64 // quantity expected to arrive, bucketed by remaining lead time

	action *ConsumerAction

	// per-tick counters, flushed then cleared
	received         int64
	purchased        int64
	orderProductCost int64
	orderCost        int64

	// cumulative, cleared on reset
	totalReceived  int64
	totalPurchased int64
}

// ProductID returns the SKU this consumer purchases.
func (c *ConsumerUnit) ProductID() int64 { return c.productID }

// Sources returns the resolved source facility IDs.
func (c *ConsumerUnit) Sources() []int64 { return c.sources }

// OpenOrders exposes the ledger for tests and policy layers.
func (c *ConsumerUnit) OpenOrders() *OpenOrderBook { return c.open }

// InTransitQuantity sums open-order quantities across all sources for this
// unit's product. Used by policy layers, not by the core itself.
func (c *ConsumerUnit) InTransitQuantity() int64 { return c.open.InTransit(c.productID) }

// PendingWindow returns the lead-time-bucketed pending-order window.
func (c *ConsumerUnit) PendingWindow() []int64 { return c.pending }

// OrderProductCost returns the cost of the order placed this tick, if any.
func (c *ConsumerUnit) OrderProductCost() int64 { return c.orderProductCost }

// OrderCost returns the fixed per-order cost charged this tick, if any.
func (c *ConsumerUnit) OrderCost() int64 { return c.orderCost }

// Received returns the quantity received this tick.
func (c *ConsumerUnit) Received() int64 { return c.received }

// Purchased returns the quantity ordered this tick.
func (c *ConsumerUnit) Purchased() int64 { return c.purchased }

// SetAction arms the purchase decision for the current tick.
func (c *ConsumerUnit) SetAction(a *ConsumerAction) { c.action = a }

// Initialize resolves the purchase sources from the facility's upstream
// adjacency. A consumer with no resolvable sources stays inert for
// purchasing; that is a configuration warning, not a fatal error.
func (c *ConsumerUnit) Initialize() {
	c.pending = make([]int64, c.world.settings.PendingOrderLen)

	f := c.facility()
	sku := c.world.SKU(c.productID)

	for _, sourceID := range f.Upstreams(c.productID) {
		source := c.world.Facility(sourceID)
		if source == nil {
			continue
		}
		if c.parent != nil && c.parent.Manufacture != nil {
			// We produce this SKU; the consumer purchases bill-of-materials
			// inputs, so a valid source must carry at least one of them.
			for _, inputID := range sortedBOMInputs(sku) {
				if source.SKU(inputID) != nil {
					c.sources = append(c.sources, sourceID)
					break
				}
			}
		} else if source.SKU(c.productID) != nil {
			c.sources = append(c.sources, sourceID)
		}
	}

	if len(c.sources) == 0 {
		logrus.Warnf("no sources for consumer %d, sku %d in facility %q", c.id, c.productID, f.Name())
	}
}

// Step shifts the pending window and, when a valid action is present,
// records the order and places it with the source facility's distribution.
func (c *ConsumerUnit) Step(tick int64) {
	c.shiftPendingWindow()

	a := c.action
	if !a.valid() {
		return
	}

	c.open.Add(a.SourceID, a.ProductID, a.Quantity)

	order := Order{
		DestinationID: c.facilityID,
		ProductID:     a.ProductID,
		Quantity:      a.Quantity,
		LeadTime:      a.LeadTime,
	}

	source := c.world.Facility(a.SourceID)
	if source == nil {
		logrus.Warnf("consumer %d: action names unknown source facility %d", c.id, a.SourceID)
		c.open.Add(a.SourceID, a.ProductID, -a.Quantity)
		return
	}

	cost, ok := source.Distribution().PlaceOrder(order)
	if !ok {
		logrus.Warnf("consumer %d: source facility %q rejected order for sku %d", c.id, source.Name(), a.ProductID)
		c.open.Add(a.SourceID, a.ProductID, -a.Quantity)
		return
	}

	c.orderProductCost = cost
	c.orderCost = c.facility().config.OrderCost
	c.purchased = a.Quantity
	c.totalPurchased += a.Quantity

	if a.LeadTime >= 1 && a.LeadTime <= int64(len(c.pending)) {
		c.pending[a.LeadTime-1] += a.Quantity
	}

	c.world.recordOrder(tick, a.SourceID, c.facilityID, a.ProductID, a.Quantity)
}

// OnOrderReception is called by the delivering vehicle. quantity is the
// amount physically unloaded this tick; originalQuantity is the requested
// quantity of the job the delivery belongs to (the vehicle carries the
// pairing). The ledger is decremented by the delivered amount so that
// partial unloads never over-close the order.
func (c *ConsumerUnit) OnOrderReception(sourceID, productID, quantity, originalQuantity int64) {
	c.received += quantity
	c.totalReceived += quantity
	c.open.Add(sourceID, productID, -quantity)
}

// UpdateOpenOrders applies a signed ledger adjustment. Vehicles use the
// negative form to roll back the unfulfilled quantity of an abandoned job.
func (c *ConsumerUnit) UpdateOpenOrders(sourceID, productID, delta int64) {
	c.open.Add(sourceID, productID, delta)
}

// FlushStates publishes per-tick and cumulative counters.
func (c *ConsumerUnit) FlushStates(tick int64) {
	fs := c.world.frame
	if c.received > 0 {
		fs.SetInt(c.id, frame.FieldReceived, c.received)
		fs.SetInt(c.id, frame.FieldTotalReceived, c.totalReceived)
	}
	if c.purchased > 0 {
		fs.SetInt(c.id, frame.FieldPurchased, c.purchased)
		fs.SetInt(c.id, frame.FieldTotalPurchased, c.totalPurchased)
		fs.SetInt(c.id, frame.FieldOrderQuantity, c.purchased)
	}
	if c.orderProductCost > 0 {
		fs.SetInt(c.id, frame.FieldOrderProductCost, c.orderProductCost)
	}
	if c.orderCost > 0 {
		fs.SetInt(c.id, frame.FieldOrderCost, c.orderCost)
	}
}

// PostStep clears the applied action and the transient per-tick fields so
// stale values never leak into the next tick's snapshot.
func (c *ConsumerUnit) PostStep(tick int64) {
	c.action = nil

	fs := c.world.frame
	if c.received > 0 {
		fs.SetInt(c.id, frame.FieldReceived, 0)
		c.received = 0
	}
	if c.purchased > 0 {
		fs.SetInt(c.id, frame.FieldPurchased, 0)
		fs.SetInt(c.id, frame.FieldOrderQuantity, 0)
		c.purchased = 0
	}
	if c.orderProductCost > 0 {
		fs.SetInt(c.id, frame.FieldOrderProductCost, 0)
		c.orderProductCost = 0
	}
	if c.orderCost > 0 {
		fs.SetInt(c.id, frame.FieldOrderCost, 0)
		c.orderCost = 0
	}
}

// Reset re-arms per-episode state. Sources are permanent graph state and
// survive; ledgers, windows, and counters do not.
func (c *ConsumerUnit) Reset() {
	c.pending = make([]int64, c.world.settings.PendingOrderLen)
	c.open.Reset()
	c.action = nil
	c.received = 0
	c.purchased = 0
	c.orderProductCost = 0
	c.orderCost = 0
	c.totalReceived = 0
	c.totalPurchased = 0
}

// shiftPendingWindow drops the oldest bucket and opens a fresh one at the
// far end of the tracked lead-time horizon.
func (c *ConsumerUnit) shiftPendingWindow() {
	if len(c.pending) == 0 {
		return
	}
	copy(c.pending, c.pending[1:])
	c.pending[len(c.pending)-1] = 0
}

func sortedBOMInputs(sku *SKU) []int64 {
	if sku == nil {
		return nil
	}
	inputs := make([]int64, 0, len(sku.BOM))
	for id := range sku.BOM {
		inputs = append(inputs, id)
	}
	sort.Slice(inputs, func(i, j int) bool { return inputs[i] < inputs[j] })
	return inputs
}
