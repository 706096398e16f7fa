package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sim "github.com/supplychain-sim/supplychain-sim/sim"
)

// newChain builds supplier (1, produced) -> retailer (2, purchased) for one SKU.
func newChain(t *testing.T, retailerStock int64) *sim.World {
	t.Helper()

	w := sim.NewWorld(42, sim.GridPathFinder{}, sim.Settings{})
	w.AddSKU(&sim.SKU{ID: 10, Name: "widget"})

	_, err := w.AddFacility(sim.FacilityParams{
		ID: 1, Name: "supplier", Capacity: 200,
		Config: sim.FacilityConfig{VehicleCount: 1, VehiclePatience: 10, UnitTransportCost: 1},
		SKUs: []sim.FacilitySKU{
			{ProductID: 10, Kind: sim.SKUProduced, Price: 5, InitStock: 100, LeadTime: 3},
		},
	})
	require.NoError(t, err)

	_, err = w.AddFacility(sim.FacilityParams{
		ID: 2, Name: "retailer", X: 2, Capacity: 200,
		SKUs: []sim.FacilitySKU{
			{ProductID: 10, Kind: sim.SKUPurchased, Price: 8, InitStock: retailerStock},
		},
	})
	require.NoError(t, err)

	require.NoError(t, w.Link(10, 1, 2))
	w.Initialize()
	return w
}

func TestBaseStock_OrdersUpToTarget(t *testing.T) {
	// GIVEN 30 on hand against a target of 50
	w := newChain(t, 30)
	p := &BaseStockPolicy{TargetLevel: 50, ProductionRate: 10}

	actions := p.Actions(w, 0)

	c := w.Facility(2).Product(10).Consumer
	a, ok := actions.Consumer[c.ID()]
	require.True(t, ok)
	assert.Equal(t, int64(20), a.Quantity)
	assert.Equal(t, int64(1), a.SourceID)
	// lead time comes from the source facility's SKU
	assert.Equal(t, int64(3), a.LeadTime)
}

func TestBaseStock_CountsInTransitAgainstTarget(t *testing.T) {
	w := newChain(t, 30)
	c := w.Facility(2).Product(10).Consumer
	c.UpdateOpenOrders(1, 10, 15)
	p := &BaseStockPolicy{TargetLevel: 50}

	actions := p.Actions(w, 0)

	a, ok := actions.Consumer[c.ID()]
	require.True(t, ok)
	assert.Equal(t, int64(5), a.Quantity)
}

func TestBaseStock_NoOrderAtOrAboveTarget(t *testing.T) {
	w := newChain(t, 80)
	p := &BaseStockPolicy{TargetLevel: 50}

	actions := p.Actions(w, 0)

	c := w.Facility(2).Product(10).Consumer
	_, ok := actions.Consumer[c.ID()]
	assert.False(t, ok)
}

func TestBaseStock_RunsManufactureAtConstantRate(t *testing.T) {
	w := newChain(t, 0)
	p := &BaseStockPolicy{TargetLevel: 50, ProductionRate: 10}

	actions := p.Actions(w, 0)

	m := w.Facility(1).Product(10).Manufacture
	a, ok := actions.Manufacture[m.ID()]
	require.True(t, ok)
	assert.Equal(t, int64(10), a.Rate)

	// a zero rate produces no manufacture actions at all
	actions = (&BaseStockPolicy{TargetLevel: 50}).Actions(w, 0)
	assert.Empty(t, actions.Manufacture)
}

func TestConstantProduction_ManufactureOnly(t *testing.T) {
	w := newChain(t, 0)
	p := &ConstantProductionPolicy{Rate: 7}

	actions := p.Actions(w, 0)

	m := w.Facility(1).Product(10).Manufacture
	assert.Equal(t, sim.ManufactureAction{Rate: 7}, actions.Manufacture[m.ID()])
	assert.Empty(t, actions.Consumer)

	actions = (&ConstantProductionPolicy{}).Actions(w, 0)
	assert.Empty(t, actions.Manufacture)
}

func TestBaseStock_ClosedLoopConverges(t *testing.T) {
	// Driving the simulator with the policy should pull the retailer's stock
	// up toward the target.
	w := newChain(t, 0)
	s := sim.NewSimulator(w, 30)
	s.Policy = &BaseStockPolicy{TargetLevel: 50, ProductionRate: 10}

	m := s.RunEpisode()

	onHand := w.Facility(2).Storage().Quantity(10)
	inTransit := w.Facility(2).Product(10).Consumer.InTransitQuantity()
	assert.Equal(t, int64(50), onHand+inTransit)
	assert.Greater(t, m.QuantityDelivered, int64(0))
}
