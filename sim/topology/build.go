package topology

import (
	"fmt"

	sim "github.com/supplychain-sim/supplychain-sim/sim"
)

// Build constructs and initializes the world a spec describes. The returned
// world's graph is frozen; only episode state mutates afterwards.
func Build(spec *Spec) (*sim.World, error) {
	return BuildWithPathFinder(spec, sim.GridPathFinder{})
}

// BuildWithPathFinder is Build with an explicit routing collaborator.
func BuildWithPathFinder(spec *Spec, pathFinder sim.PathFinder) (*sim.World, error) {
	w := sim.NewWorld(spec.Seed, pathFinder, sim.Settings{
		PendingOrderLen: spec.Settings.PendingOrderLen,
		SaleHistLen:     spec.Settings.SaleHistLen,
	})

	for _, skuSpec := range spec.SKUs {
		sku := &sim.SKU{ID: skuSpec.ID, Name: skuSpec.Name}
		if len(skuSpec.BOM) > 0 {
			sku.BOM = make(map[int64]int64, len(skuSpec.BOM))
			for inputID, per := range skuSpec.BOM {
				sku.BOM[inputID] = per
			}
		}
		w.AddSKU(sku)
	}

	for _, facilitySpec := range spec.Facilities {
		params := sim.FacilityParams{
			ID:       facilitySpec.ID,
			Name:     facilitySpec.Name,
			X:        facilitySpec.X,
			Y:        facilitySpec.Y,
			Capacity: facilitySpec.Capacity,
			Config: sim.FacilityConfig{
				OrderCost:         facilitySpec.OrderCost,
				DelayOrderPenalty: facilitySpec.DelayOrderPenalty,
				UnitTransportCost: facilitySpec.UnitTransportCost,
				VehiclePatience:   facilitySpec.VehiclePatience,
				VehicleCount:      facilitySpec.Vehicles,
			},
		}
		for _, skuSpec := range facilitySpec.SKUs {
			params.SKUs = append(params.SKUs, sim.FacilitySKU{
				ProductID:    skuSpec.ProductID,
				Kind:         sim.SKUKind(skuSpec.Kind),
				Price:        skuSpec.Price,
				Cost:         skuSpec.Cost,
				InitStock:    skuSpec.InitStock,
				LeadTime:     skuSpec.LeadTime,
				SaleGamma:    skuSpec.SaleGamma,
				BacklogRatio: skuSpec.BacklogRatio,
				Manufacture:  sim.ManufactureKind(skuSpec.Manufacture),
			})
		}
		if _, err := w.AddFacility(params); err != nil {
			return nil, fmt.Errorf("topology %q: %w", spec.Name, err)
		}
	}

	for _, link := range spec.Links {
		if err := w.Link(link.ProductID, link.Upstream, link.Downstream); err != nil {
			return nil, fmt.Errorf("topology %q: %w", spec.Name, err)
		}
	}

	w.Initialize()
	return w, nil
}
