package sim

import (
	"github.com/sirupsen/logrus"

	"github.com/supplychain-sim/supplychain-sim/sim/frame"
)

// ManufactureKind selects the production variant at graph-construction time.
type ManufactureKind string

const (
	// ManufactureSimple produces the requested rate without consuming inputs.
	ManufactureSimple ManufactureKind = "simple"
	// ManufactureSourced consumes bill-of-materials inputs per unit produced.
	ManufactureSourced ManufactureKind = "sourced"
)

// Manufacturer is the production slot of a ProductUnit; the simple and
// source-aware units are alternative implementations.
type Manufacturer interface {
	Unit
	ProductID() int64
	Manufactured() int64
	SetAction(a *ManufactureAction)
}

// ManufactureUnit is the source-aware producer: each produced unit consumes
// its SKU's bill of materials from the facility storage. Production is
// capped by the facility's per-SKU capacity share — the total capacity
// divided evenly across the SKUs it carries. Equal division is a simplifying
// fairness policy inherited from the scenario, not a true allocator.
type ManufactureUnit struct {
	unitBase
	productID int64

	action *ManufactureAction

	// per-tick counter, flushed then cleared
	manufactured int64

	// cumulative, cleared on reset
	totalManufactured int64
}

// ProductID returns the SKU this unit produces.
func (m *ManufactureUnit) ProductID() int64 { return m.productID }

// Manufactured returns the quantity produced this tick.
func (m *ManufactureUnit) Manufactured() int64 { return m.manufactured }

// SetAction arms the production rate for the current tick.
func (m *ManufactureUnit) SetAction(a *ManufactureAction) { m.action = a }

// Step produces up to the requested rate, bounded by the capacity share and
// by bill-of-materials availability.
func (m *ManufactureUnit) Step(tick int64) {
	m.manufactured = 0
	if m.action == nil || m.action.Rate <= 0 {
		return
	}

	n := m.producible(m.action.Rate)
	if n <= 0 {
		return
	}

	sku := m.world.SKU(m.productID)
	if len(sku.BOM) > 0 {
		n = m.produceFromInputs(sku, n)
	} else {
		added := m.facility().Storage().TryAdd(map[int64]int64{m.productID: n}, true)
		n = added[m.productID]
	}

	m.manufactured = n
	m.totalManufactured += n
}

// producible caps the rate by the per-SKU capacity share.
func (m *ManufactureUnit) producible(rate int64) int64 {
	f := m.facility()
	share := f.Storage().Capacity() / int64(len(f.skus))
	current := f.Storage().Quantity(m.productID)
	n := min(share-current, rate)
	if n < 0 {
		return 0
	}
	return n
}

// produceFromInputs takes BOM inputs for n output units and stores the
// output. Returns the quantity actually produced.
func (m *ManufactureUnit) produceFromInputs(sku *SKU, n int64) int64 {
	storage := m.facility().Storage()

	// Scale down to what the inputs on hand can cover.
	for _, inputID := range sortedBOMInputs(sku) {
		per := sku.BOM[inputID]
		if per <= 0 {
			continue
		}
		n = min(n, storage.Quantity(inputID)/per)
	}
	if n <= 0 {
		return 0
	}

	requests := make(map[int64]int64, len(sku.BOM))
	for inputID, per := range sku.BOM {
		requests[inputID] = per * n
	}
	if !storage.TryTake(requests) {
		return 0
	}

	// Taking the inputs freed at least n units of space, so the
	// all-or-nothing add cannot fail on a single simulation thread.
	added := storage.TryAdd(map[int64]int64{m.productID: n}, true)
	if added[m.productID] != n {
		logrus.Warnf("manufacture %d: output add failed after input take [THIS SHOULD NEVER HAPPEN]", m.id)
		storage.TryAdd(requests, true)
		return 0
	}
	return n
}

func (m *ManufactureUnit) FlushStates(tick int64) {
	fs := m.world.frame
	if m.manufactured > 0 {
		fs.SetInt(m.id, frame.FieldManufactured, m.manufactured)
		fs.SetInt(m.id, frame.FieldTotalManufactured, m.totalManufactured)
	}
}

func (m *ManufactureUnit) PostStep(tick int64) {
	m.action = nil
	if m.manufactured > 0 {
		m.world.frame.SetInt(m.id, frame.FieldManufactured, 0)
		m.manufactured = 0
	}
}

func (m *ManufactureUnit) Reset() {
	m.action = nil
	m.manufactured = 0
	m.totalManufactured = 0
}

// SimpleManufactureUnit ignores the bill of materials and generates the
// requested quantity outright, still under the capacity-share cap.
type SimpleManufactureUnit struct {
	ManufactureUnit
}

func (m *SimpleManufactureUnit) Step(tick int64) {
	m.manufactured = 0
	if m.action == nil || m.action.Rate <= 0 {
		return
	}

	n := m.producible(m.action.Rate)
	if n <= 0 {
		return
	}
	added := m.facility().Storage().TryAdd(map[int64]int64{m.productID: n}, true)
	m.manufactured = added[m.productID]
	m.totalManufactured += m.manufactured
}
