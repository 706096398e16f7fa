package sim

import "testing"

// Identifiers shared by the two-facility test network: supplier A ships
// product P to retailer B over a 4-waypoint route with one vehicle.
const (
	testProductP  = int64(10)
	testSupplierA = int64(1)
	testRetailerB = int64(2)
)

// testNetworkConfig tweaks the knobs individual tests care about.
type testNetworkConfig struct {
	supplierStock    int64
	retailerStock    int64
	retailerCapacity int64
	patience         int64
	saleGamma        float64
}

// newTestNetwork builds and initializes the canonical A→B network.
func newTestNetwork(t *testing.T, cfg testNetworkConfig) *World {
	t.Helper()

	if cfg.retailerCapacity == 0 {
		cfg.retailerCapacity = 100
	}
	if cfg.patience == 0 {
		cfg.patience = 3
	}

	w := NewWorld(42, GridPathFinder{}, Settings{PendingOrderLen: 4, SaleHistLen: 4})
	w.AddSKU(&SKU{ID: testProductP, Name: "widget"})

	_, err := w.AddFacility(FacilityParams{
		ID: testSupplierA, Name: "supplier-a", X: 0, Y: 0, Capacity: 100,
		Config: FacilityConfig{
			UnitTransportCost: 1,
			VehiclePatience:   cfg.patience,
			VehicleCount:      1,
		},
		SKUs: []FacilitySKU{{
			ProductID: testProductP,
			Kind:      SKUProduced,
			Price:     5,
			InitStock: cfg.supplierStock,
			LeadTime:  2,
		}},
	})
	if err != nil {
		t.Fatalf("add supplier: %v", err)
	}

	_, err = w.AddFacility(FacilityParams{
		ID: testRetailerB, Name: "retailer-b", X: 3, Y: 0, Capacity: cfg.retailerCapacity,
		Config: FacilityConfig{OrderCost: 2, UnitTransportCost: 1, VehiclePatience: cfg.patience},
		SKUs: []FacilitySKU{{
			ProductID: testProductP,
			Kind:      SKUPurchased,
			Price:     8,
			InitStock: cfg.retailerStock,
			SaleGamma: cfg.saleGamma,
		}},
	})
	if err != nil {
		t.Fatalf("add retailer: %v", err)
	}

	if err := w.Link(testProductP, testSupplierA, testRetailerB); err != nil {
		t.Fatalf("link: %v", err)
	}
	w.Initialize()
	return w
}

// retailerConsumer returns B's consumer for product P.
func retailerConsumer(t *testing.T, w *World) *ConsumerUnit {
	t.Helper()
	c := w.Facility(testRetailerB).Product(testProductP).Consumer
	if c == nil {
		t.Fatal("retailer has no consumer for product P")
	}
	return c
}

// supplierVehicle returns A's single vehicle.
func supplierVehicle(t *testing.T, w *World) *VehicleUnit {
	t.Helper()
	vehicles := w.Facility(testSupplierA).Distribution().Vehicles()
	if len(vehicles) != 1 {
		t.Fatalf("expected 1 vehicle at supplier, got %d", len(vehicles))
	}
	return vehicles[0]
}

// orderP arms B's consumer with a purchase of qty units from A at lead time 2.
func orderP(t *testing.T, w *World, qty int64) {
	t.Helper()
	c := retailerConsumer(t, w)
	if err := w.SetConsumerAction(c.ID(), ConsumerAction{
		SourceID:  testSupplierA,
		ProductID: testProductP,
		Quantity:  qty,
		LeadTime:  2,
	}); err != nil {
		t.Fatalf("set consumer action: %v", err)
	}
}

// runTicks drives the full per-tick protocol n times, starting at tick from.
func runTicks(w *World, from, n int64) {
	for tick := from; tick < from+n; tick++ {
		w.Step(tick)
		w.FlushStates(tick)
		w.PostStep(tick)
	}
}

// scriptedPolicy replays a fixed per-tick action script.
type scriptedPolicy struct {
	script map[int64]ActionSet
}

func (p *scriptedPolicy) Actions(w *World, tick int64) ActionSet {
	if actions, ok := p.script[tick]; ok {
		return actions
	}
	return NewActionSet()
}
