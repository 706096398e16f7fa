// world.go
//
// World is the single simulation context: the entity arena, the SKU catalog,
// the path-finding handle, and the tick driver. It is constructed once,
// passed by reference to every entity that needs graph lookups, and reset
// per episode without reallocating the graph.

package sim

import (
	"fmt"
	"sort"

	"github.com/supplychain-sim/supplychain-sim/sim/frame"
)

// Settings are the network-wide static knobs.
type Settings struct {
	PendingOrderLen int // tracked lead-time window length for consumers
	SaleHistLen     int // demand history window for seller statistics
}

// Recorder receives the physical-flow events of an episode. Implemented by
// the Simulator to feed metrics and the trace sink; nil disables recording.
type Recorder interface {
	OrderPlaced(tick, sourceID, destinationID, productID, quantity int64)
	Delivered(tick, sourceID, destinationID, productID, quantity, requested int64)
	Abandoned(tick, sourceID, destinationID, productID, quantity int64)
}

// World owns the facility graph and drives the per-tick lifecycle protocol.
type World struct {
	settings Settings

	facilities  map[int64]*Facility
	facilityIDs []int64 // sorted; all iteration is ID-ordered for determinism
	skus        map[int64]*SKU
	units       map[int64]Unit

	pathFinder PathFinder
	rng        *PartitionedRNG
	frame      *frame.Store
	recorder   Recorder

	nextUnitID  int64
	initialized bool
}

// FacilityParams describes one facility for AddFacility.
type FacilityParams struct {
	ID       int64
	Name     string
	X, Y     int
	Capacity int64
	Config   FacilityConfig
	SKUs     []FacilitySKU
}

// NewWorld creates an empty world. Facilities, SKUs, and links are added
// before Initialize; the graph is immutable afterwards.
func NewWorld(seed int64, pathFinder PathFinder, settings Settings) *World {
	if settings.PendingOrderLen <= 0 {
		settings.PendingOrderLen = 4
	}
	if settings.SaleHistLen <= 0 {
		settings.SaleHistLen = 4
	}
	return &World{
		settings:   settings,
		facilities: make(map[int64]*Facility),
		skus:       make(map[int64]*SKU),
		units:      make(map[int64]Unit),
		pathFinder: pathFinder,
		rng:        NewPartitionedRNG(NewSimulationKey(seed)),
		frame:      frame.New(),
		// unit IDs live above the facility ID range so the two arenas
		// never collide in the frame store
		nextUnitID: 1000,
	}
}

// Settings returns the network-wide knobs.
func (w *World) Settings() Settings { return w.settings }

// Frame returns the attribute store units flush into.
func (w *World) Frame() *frame.Store { return w.frame }

// SetRecorder installs the episode event recorder.
func (w *World) SetRecorder(r Recorder) { w.recorder = r }

// Facility resolves a facility ID through the arena; nil if unknown.
func (w *World) Facility(id int64) *Facility { return w.facilities[id] }

// FacilityIDs returns all facility IDs, sorted.
func (w *World) FacilityIDs() []int64 { return w.facilityIDs }

// SKU resolves a catalog entry; nil if unknown.
func (w *World) SKU(id int64) *SKU { return w.skus[id] }

// UnitByID resolves a unit through the arena; nil if unknown.
func (w *World) UnitByID(id int64) Unit { return w.units[id] }

// FindPath delegates to the configured path finder.
func (w *World) FindPath(x1, y1, x2, y2 int) []Waypoint {
	return w.pathFinder.FindPath(x1, y1, x2, y2)
}

// AddSKU registers a catalog entry. Must be called before Initialize.
func (w *World) AddSKU(sku *SKU) {
	w.skus[sku.ID] = sku
}

// AddFacility builds one facility with its storage, dispatcher, fleet, and
// product units. SKU slot rules: produced SKUs get a manufacture unit
// (plus a consumer when upstream links supply bill-of-materials inputs),
// purchased SKUs get a consumer, and any SKU with a positive sale gamma gets
// a seller.
func (w *World) AddFacility(params FacilityParams) (*Facility, error) {
	if w.initialized {
		return nil, fmt.Errorf("add facility %d: graph is frozen after Initialize", params.ID)
	}
	// ID 0 is the vehicles' idle sentinel and negative IDs would collide
	// with nothing meaningful either.
	if params.ID <= 0 {
		return nil, fmt.Errorf("add facility %d: id must be positive", params.ID)
	}
	if _, exists := w.facilities[params.ID]; exists {
		return nil, fmt.Errorf("add facility %d: duplicate id", params.ID)
	}

	f := &Facility{
		id:          params.ID,
		name:        params.Name,
		x:           params.X,
		y:           params.Y,
		world:       w,
		config:      params.Config,
		skus:        make(map[int64]*FacilitySKU),
		products:    make(map[int64]*ProductUnit),
		upstreams:   make(map[int64][]int64),
		downstreams: make(map[int64][]int64),
	}

	skus := append([]FacilitySKU(nil), params.SKUs...)
	sort.Slice(skus, func(i, j int) bool { return skus[i].ProductID < skus[j].ProductID })

	initial := make(map[int64]int64, len(skus))
	for i := range skus {
		sku := &skus[i]
		if _, known := w.skus[sku.ProductID]; !known {
			return nil, fmt.Errorf("facility %d: sku %d not in catalog", params.ID, sku.ProductID)
		}
		f.skus[sku.ProductID] = sku
		f.productIDs = append(f.productIDs, sku.ProductID)
		initial[sku.ProductID] = sku.InitStock
	}

	f.storage = NewStorage(params.Capacity, initial)
	f.distribution = w.buildDistribution(f, params.Config)

	for _, productID := range f.productIDs {
		f.products[productID] = w.buildProduct(f, f.skus[productID])
	}

	w.facilities[params.ID] = f
	w.facilityIDs = append(w.facilityIDs, params.ID)
	sort.Slice(w.facilityIDs, func(i, j int) bool { return w.facilityIDs[i] < w.facilityIDs[j] })
	return f, nil
}

// Link records that upstream supplies productID to downstream. Both
// adjacency maps are updated; call before Initialize.
func (w *World) Link(productID, upstreamID, downstreamID int64) error {
	up, ok := w.facilities[upstreamID]
	if !ok {
		return fmt.Errorf("link product %d: unknown upstream facility %d", productID, upstreamID)
	}
	down, ok := w.facilities[downstreamID]
	if !ok {
		return fmt.Errorf("link product %d: unknown downstream facility %d", productID, downstreamID)
	}
	down.addLink(productID, down.upstreams, upstreamID)
	up.addLink(productID, up.downstreams, downstreamID)
	return nil
}

// Initialize runs once after the full graph exists, so every cross-reference
// a unit resolves is valid. The graph is frozen from here on.
func (w *World) Initialize() {
	w.initialized = true
	for _, id := range w.facilityIDs {
		w.facilities[id].initialize()
	}
}

// Step advances every unit by one tick: first all product units across all
// facilities, then every dispatcher. The two sub-passes keep same-tick order
// placement and vehicle loading independent of facility ordering.
func (w *World) Step(tick int64) {
	for _, id := range w.facilityIDs {
		w.facilities[id].stepProducts(tick)
	}
	for _, id := range w.facilityIDs {
		w.facilities[id].stepDistribution(tick)
	}
}

// FlushStates publishes every unit's accumulated per-tick counters.
func (w *World) FlushStates(tick int64) {
	w.frame.BeginTick(tick)
	for _, id := range w.facilityIDs {
		w.facilities[id].flushStates(tick)
	}
}

// PostStep clears transient per-tick state and applied actions.
func (w *World) PostStep(tick int64) {
	for _, id := range w.facilityIDs {
		w.facilities[id].postStep(tick)
	}
}

// Reset restores every unit to its post-Initialize state without
// reconstructing the graph: storages back to initial stock, ledgers and
// counters cleared, vehicles idle, demand streams rewound, frame emptied.
func (w *World) Reset() {
	for _, id := range w.facilityIDs {
		w.facilities[id].reset()
	}
	w.frame.Reset()
}

// SetConsumerAction arms a consumer's purchase decision for this tick.
func (w *World) SetConsumerAction(unitID int64, a ConsumerAction) error {
	consumer, ok := w.units[unitID].(*ConsumerUnit)
	if !ok {
		return fmt.Errorf("unit %d is not a consumer", unitID)
	}
	consumer.SetAction(&a)
	return nil
}

// SetManufactureAction arms a manufacture unit's rate for this tick.
func (w *World) SetManufactureAction(unitID int64, a ManufactureAction) error {
	manufacturer, ok := w.units[unitID].(Manufacturer)
	if !ok {
		return fmt.Errorf("unit %d is not a manufacture unit", unitID)
	}
	manufacturer.SetAction(&a)
	return nil
}

// EachProduct visits every product unit in (facility ID, product ID) order.
func (w *World) EachProduct(fn func(f *Facility, p *ProductUnit)) {
	for _, facilityID := range w.facilityIDs {
		f := w.facilities[facilityID]
		for _, productID := range f.productIDs {
			fn(f, f.products[productID])
		}
	}
}

// === unit construction ===

func (w *World) allocUnitID() int64 {
	id := w.nextUnitID
	w.nextUnitID++
	return id
}

func (w *World) register(u Unit) {
	w.units[u.ID()] = u
}

func (w *World) buildDistribution(f *Facility, config FacilityConfig) *DistributionUnit {
	d := &DistributionUnit{
		unitBase:     unitBase{id: w.allocUnitID(), facilityID: f.id, world: w},
		delayPenalty: make(map[int64]int64),
	}
	for i := 0; i < config.VehicleCount; i++ {
		v := &VehicleUnit{
			unitBase:          unitBase{id: w.allocUnitID(), facilityID: f.id, world: w},
			maxPatience:       config.VehiclePatience,
			unitTransportCost: config.UnitTransportCost,
		}
		v.patience = v.maxPatience
		d.vehicles = append(d.vehicles, v)
		w.register(v)
	}
	w.register(d)
	return d
}

func (w *World) buildProduct(f *Facility, sku *FacilitySKU) *ProductUnit {
	p := &ProductUnit{
		unitBase:  unitBase{id: w.allocUnitID(), facilityID: f.id, world: w},
		productID: sku.ProductID,
	}

	if sku.Kind == SKUProduced {
		p.Manufacture = w.buildManufacture(f, sku)
		p.children = append(p.children, p.Manufacture)
	}

	catalog := w.skus[sku.ProductID]
	needsConsumer := sku.Kind == SKUPurchased ||
		(sku.Kind == SKUProduced && catalog != nil && len(catalog.BOM) > 0)
	if needsConsumer {
		c := &ConsumerUnit{
			unitBase:  unitBase{id: w.allocUnitID(), facilityID: f.id, world: w},
			productID: sku.ProductID,
			parent:    p,
			open:      NewOpenOrderBook(),
		}
		p.Consumer = c
		p.children = append(p.children, c)
		w.register(c)
	}

	if sku.SaleGamma > 0 {
		s := &SellerUnit{
			unitBase:     unitBase{id: w.allocUnitID(), facilityID: f.id, world: w},
			productID:    sku.ProductID,
			backlogRatio: sku.BacklogRatio,
		}
		s.demandSource = NewPoissonDemand(sku.SaleGamma, w.rng.DeriveSeed(SubsystemSeller(s.id)))
		p.Seller = s
		p.children = append(p.children, s)
		w.register(s)
	}

	w.register(p)
	return p
}

func (w *World) buildManufacture(f *Facility, sku *FacilitySKU) Manufacturer {
	base := ManufactureUnit{
		unitBase:  unitBase{id: w.allocUnitID(), facilityID: f.id, world: w},
		productID: sku.ProductID,
	}
	var m Manufacturer
	if sku.Manufacture == ManufactureSourced {
		m = &base
	} else {
		m = &SimpleManufactureUnit{ManufactureUnit: base}
	}
	w.register(m)
	return m
}

// === recorder hooks (nil-safe) ===

func (w *World) recordOrder(tick, sourceID, destinationID, productID, quantity int64) {
	if w.recorder != nil {
		w.recorder.OrderPlaced(tick, sourceID, destinationID, productID, quantity)
	}
}

func (w *World) recordDelivery(tick, sourceID, destinationID, productID, quantity, requested int64) {
	if w.recorder != nil {
		w.recorder.Delivered(tick, sourceID, destinationID, productID, quantity, requested)
	}
}

func (w *World) recordAbandon(tick, sourceID, destinationID, productID, quantity int64) {
	if w.recorder != nil {
		w.recorder.Abandoned(tick, sourceID, destinationID, productID, quantity)
	}
}
