package topology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild_ConstructsInitializedWorld(t *testing.T) {
	spec, err := Parse([]byte(twoEchelonYAML))
	require.NoError(t, err)

	w, err := Build(spec)
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2}, w.FacilityIDs())
	assert.Equal(t, 6, w.Settings().PendingOrderLen)

	supplier := w.Facility(1)
	assert.Equal(t, "supplier-a", supplier.Name())
	assert.Equal(t, int64(50), supplier.Storage().Quantity(10))
	assert.Len(t, supplier.Distribution().Vehicles(), 2)
	assert.NotNil(t, supplier.Product(10).Manufacture)

	retailer := w.Facility(2)
	assert.NotNil(t, retailer.Product(10).Consumer)
	assert.NotNil(t, retailer.Product(10).Seller)
	// the link wires both adjacency directions
	assert.Equal(t, []int64{1}, retailer.Upstreams(10))
	assert.Equal(t, []int64{2}, supplier.Downstreams(10))
	assert.Equal(t, []int64{1}, retailer.Product(10).Consumer.Sources())
}

func TestBuild_CarriesBOMIntoCatalog(t *testing.T) {
	spec, err := Parse([]byte(twoEchelonYAML))
	require.NoError(t, err)

	w, err := Build(spec)
	require.NoError(t, err)

	gadget := w.SKU(12)
	require.NotNil(t, gadget)
	assert.Equal(t, map[int64]int64{11: 2}, gadget.BOM)
}

func TestBuild_SurfacesGraphErrors(t *testing.T) {
	// Validate catches most defects; Build still reports what the world
	// constructor rejects, like a frozen or colliding graph.
	spec, err := Parse([]byte(twoEchelonYAML))
	require.NoError(t, err)
	spec.Facilities = append(spec.Facilities, spec.Facilities[0])

	_, err = Build(spec)

	assert.Error(t, err)
}
