// Package policy provides baseline action providers so the simulator runs
// end-to-end without an external decision layer. Real training setups
// replace these with an RL agent behind the same ActionProvider interface.
package policy

import (
	sim "github.com/supplychain-sim/supplychain-sim/sim"
)

// BaseStockPolicy orders every purchasable SKU up to a target level,
// counting on-hand stock plus in-transit quantity against the target, and
// runs every manufacture unit at a constant rate. It is deliberately
// simple: a deterministic reference policy, not a tuned heuristic.
type BaseStockPolicy struct {
	TargetLevel    int64
	ProductionRate int64
}

// Actions implements sim.ActionProvider.
func (p *BaseStockPolicy) Actions(w *sim.World, tick int64) sim.ActionSet {
	actions := sim.NewActionSet()

	w.EachProduct(func(f *sim.Facility, product *sim.ProductUnit) {
		if c := product.Consumer; c != nil && len(c.Sources()) > 0 {
			onHand := f.Storage().Quantity(product.ProductID())
			inTransit := c.InTransitQuantity()
			gap := p.TargetLevel - onHand - inTransit
			if gap > 0 {
				sourceID := c.Sources()[0]
				actions.Consumer[c.ID()] = sim.ConsumerAction{
					SourceID:  sourceID,
					ProductID: c.ProductID(),
					Quantity:  gap,
					LeadTime:  leadTimeFrom(w, sourceID, c.ProductID()),
				}
			}
		}
		if m := product.Manufacture; m != nil && p.ProductionRate > 0 {
			actions.Manufacture[m.ID()] = sim.ManufactureAction{Rate: p.ProductionRate}
		}
	})
	return actions
}

// ConstantProductionPolicy runs every manufacture unit at a fixed rate and
// places no purchase orders. Useful for isolating production behavior.
type ConstantProductionPolicy struct {
	Rate int64
}

// Actions implements sim.ActionProvider.
func (p *ConstantProductionPolicy) Actions(w *sim.World, tick int64) sim.ActionSet {
	actions := sim.NewActionSet()
	if p.Rate <= 0 {
		return actions
	}
	w.EachProduct(func(f *sim.Facility, product *sim.ProductUnit) {
		if m := product.Manufacture; m != nil {
			actions.Manufacture[m.ID()] = sim.ManufactureAction{Rate: p.Rate}
		}
	})
	return actions
}

func leadTimeFrom(w *sim.World, sourceID, productID int64) int64 {
	if source := w.Facility(sourceID); source != nil {
		if sku := source.SKU(productID); sku != nil && sku.LeadTime > 0 {
			return sku.LeadTime
		}
	}
	return 1
}
