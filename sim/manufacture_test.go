package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testPartQ = int64(11)

// newFactory builds a single-facility world carrying a produced widget and a
// purchased part. With two SKUs the per-SKU capacity share is capacity / 2.
func newFactory(t *testing.T, capacity, widgetStock, partStock int64, kind ManufactureKind, bom map[int64]int64) (*World, Manufacturer) {
	t.Helper()

	w := NewWorld(42, GridPathFinder{}, Settings{})
	w.AddSKU(&SKU{ID: testProductP, Name: "widget", BOM: bom})
	w.AddSKU(&SKU{ID: testPartQ, Name: "part"})

	_, err := w.AddFacility(FacilityParams{
		ID: testSupplierA, Name: "factory", Capacity: capacity,
		SKUs: []FacilitySKU{
			{ProductID: testProductP, Kind: SKUProduced, Price: 5, InitStock: widgetStock, Manufacture: kind},
			{ProductID: testPartQ, Kind: SKUPurchased, InitStock: partStock},
		},
	})
	require.NoError(t, err)
	w.Initialize()

	m := w.Facility(testSupplierA).Product(testProductP).Manufacture
	require.NotNil(t, m)
	return w, m
}

func setRate(t *testing.T, w *World, m Manufacturer, rate int64) {
	t.Helper()
	require.NoError(t, w.SetManufactureAction(m.ID(), ManufactureAction{Rate: rate}))
}

func TestSimpleManufacture_CappedByCapacityShare(t *testing.T) {
	// GIVEN capacity 100 split across 2 SKUs (share 50) and 40 widgets on hand
	w, m := newFactory(t, 100, 40, 0, ManufactureSimple, nil)
	setRate(t, w, m, 20)

	// WHEN a rate above the remaining share is requested
	m.Step(0)

	// THEN production tops out at the share
	assert.Equal(t, int64(10), m.Manufactured())
	assert.Equal(t, int64(50), w.Facility(testSupplierA).Storage().Quantity(testProductP))
}

func TestSimpleManufacture_NothingWithoutAction(t *testing.T) {
	w, m := newFactory(t, 100, 0, 0, ManufactureSimple, nil)

	m.Step(0)
	assert.Zero(t, m.Manufactured())

	setRate(t, w, m, 0)
	m.Step(1)
	assert.Zero(t, m.Manufactured())
}

func TestSimpleManufacture_BlockedByTotalCapacity(t *testing.T) {
	// GIVEN a share of 10 but only 5 units of physical space left
	w, m := newFactory(t, 20, 0, 15, ManufactureSimple, nil)
	setRate(t, w, m, 10)

	m.Step(0)

	// the all-or-nothing store rejects the batch, so nothing is produced
	assert.Zero(t, m.Manufactured())
	assert.Equal(t, int64(0), w.Facility(testSupplierA).Storage().Quantity(testProductP))
}

func TestSourcedManufacture_ConsumesBillOfMaterials(t *testing.T) {
	// GIVEN each widget consumes 2 parts and 10 parts are on hand
	w, m := newFactory(t, 100, 0, 10, ManufactureSourced, map[int64]int64{testPartQ: 2})
	setRate(t, w, m, 3)

	m.Step(0)

	storage := w.Facility(testSupplierA).Storage()
	assert.Equal(t, int64(3), m.Manufactured())
	assert.Equal(t, int64(3), storage.Quantity(testProductP))
	assert.Equal(t, int64(4), storage.Quantity(testPartQ))
}

func TestSourcedManufacture_ScalesToInputAvailability(t *testing.T) {
	// GIVEN a requested rate the parts on hand cannot cover
	w, m := newFactory(t, 100, 0, 10, ManufactureSourced, map[int64]int64{testPartQ: 2})
	setRate(t, w, m, 10)

	m.Step(0)

	storage := w.Facility(testSupplierA).Storage()
	// 10 parts at 2 per widget cover only 5
	assert.Equal(t, int64(5), m.Manufactured())
	assert.Equal(t, int64(0), storage.Quantity(testPartQ))
}

func TestSourcedManufacture_NoInputsNoOutput(t *testing.T) {
	w, m := newFactory(t, 100, 0, 1, ManufactureSourced, map[int64]int64{testPartQ: 2})
	setRate(t, w, m, 5)

	m.Step(0)

	assert.Zero(t, m.Manufactured())
	assert.Equal(t, int64(1), w.Facility(testSupplierA).Storage().Quantity(testPartQ))
}

func TestManufacturePostStep_ClearsActionAndCounter(t *testing.T) {
	w, m := newFactory(t, 100, 0, 0, ManufactureSimple, nil)
	setRate(t, w, m, 5)
	m.Step(0)
	require.Equal(t, int64(5), m.Manufactured())
	m.FlushStates(0)

	m.PostStep(0)

	assert.Zero(t, m.Manufactured())
	// without a fresh action the next tick is idle
	m.Step(1)
	assert.Zero(t, m.Manufactured())
}
