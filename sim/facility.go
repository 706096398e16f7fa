package sim

import (
	"sort"

	"github.com/supplychain-sim/supplychain-sim/sim/frame"
)

// SKU is a catalog entry shared by the whole network: a product identity and
// its bill of materials (input product → units per output unit; empty for
// raw materials and pass-through goods).
type SKU struct {
	ID   int64
	Name string
	BOM  map[int64]int64
}

// SKUKind tags how a facility handles a SKU.
type SKUKind string

const (
	// SKUProduced SKUs get a manufacture unit and no consumer.
	SKUProduced SKUKind = "produced"
	// SKUPurchased SKUs get a consumer and no manufacture unit.
	SKUPurchased SKUKind = "purchased"
)

// FacilitySKU is one facility's static configuration for a SKU it carries.
type FacilitySKU struct {
	ProductID    int64
	Kind         SKUKind
	Price        int64
	Cost         int64
	InitStock    int64
	LeadTime     int64 // ticks a vehicle needs when shipping from this facility
	SaleGamma    float64
	BacklogRatio float64
	Manufacture  ManufactureKind // variant for produced SKUs; defaults to simple
}

// FacilityConfig carries the facility-level static knobs.
type FacilityConfig struct {
	OrderCost         int64
	DelayOrderPenalty int64
	UnitTransportCost int64
	VehiclePatience   int64
	VehicleCount      int
}

// Facility is one network node: storage, a distribution unit, one product
// unit per SKU it carries, and the precomputed upstream/downstream adjacency
// per product. The graph shape is immutable after construction; only the
// inventory and unit state mutate.
type Facility struct {
	id    int64
	name  string
	x, y  int
	world *World

	config FacilityConfig

	skus map[int64]*FacilitySKU

	storage      *Storage
	distribution *DistributionUnit
	products     map[int64]*ProductUnit
	productIDs   []int64 // sorted

	upstreams   map[int64][]int64 // product → source facility IDs, sorted
	downstreams map[int64][]int64 // product → destination facility IDs, sorted
}

// ID returns the facility's arena identifier.
func (f *Facility) ID() int64 { return f.id }

// Name returns the configured facility name.
func (f *Facility) Name() string { return f.name }

// Coords returns the facility's grid coordinates.
func (f *Facility) Coords() (int, int) { return f.x, f.y }

// Storage returns the facility's owned storage.
func (f *Facility) Storage() *Storage { return f.storage }

// Distribution returns the facility's owned dispatcher.
func (f *Facility) Distribution() *DistributionUnit { return f.distribution }

// Product returns the product unit for one SKU, or nil.
func (f *Facility) Product(productID int64) *ProductUnit { return f.products[productID] }

// ProductIDs returns the SKUs carried here, sorted.
func (f *Facility) ProductIDs() []int64 { return f.productIDs }

// SKU returns the facility-level configuration for one SKU, or nil.
func (f *Facility) SKU(productID int64) *FacilitySKU { return f.skus[productID] }

// Upstreams returns the source facilities for one product, sorted.
func (f *Facility) Upstreams(productID int64) []int64 { return f.upstreams[productID] }

// Downstreams returns the destination facilities for one product, sorted.
func (f *Facility) Downstreams(productID int64) []int64 { return f.downstreams[productID] }

func (f *Facility) initialize() {
	f.distribution.Initialize()
	for _, productID := range f.productIDs {
		f.products[productID].Initialize()
	}
}

// stepProducts runs the first pass of the tick: every product unit and its
// children advance. Dispatch runs in a later pass so orders placed this tick
// can still be assigned this tick, independent of facility iteration order.
func (f *Facility) stepProducts(tick int64) {
	for _, productID := range f.productIDs {
		f.products[productID].Step(tick)
	}
}

func (f *Facility) stepDistribution(tick int64) {
	f.distribution.Step(tick)
}

func (f *Facility) flushStates(tick int64) {
	fs := f.world.frame
	fs.SetInt(f.id, frame.FieldStock, f.storage.Used())
	fs.SetInt(f.id, frame.FieldRemainingSpace, f.storage.RemainingSpace())
	for _, productID := range f.productIDs {
		f.products[productID].FlushStates(tick)
	}
	f.distribution.FlushStates(tick)
}

func (f *Facility) postStep(tick int64) {
	for _, productID := range f.productIDs {
		f.products[productID].PostStep(tick)
	}
	f.distribution.PostStep(tick)
}

func (f *Facility) reset() {
	f.storage.Reset()
	f.distribution.Reset()
	for _, productID := range f.productIDs {
		f.products[productID].Reset()
	}
}

func (f *Facility) addLink(productID int64, m map[int64][]int64, facilityID int64) {
	ids := append(m[productID], facilityID)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	m[productID] = ids
}
