package sim

// Unit is the lifecycle contract every simulation entity implements.
// The World drives all units through the same per-tick protocol:
//
//	Initialize — once, after the full graph exists (cross-references valid)
//	Step       — advance simulation state for one tick
//	FlushStates — publish accumulated per-tick counters to the frame store
//	PostStep   — clear transient per-tick state and applied actions
//	Reset      — re-arm per-episode state without reconstructing the graph
type Unit interface {
	ID() int64
	Initialize()
	Step(tick int64)
	FlushStates(tick int64)
	PostStep(tick int64)
	Reset()
}

// unitBase carries the identity and the non-owning graph references shared
// by every unit kind. Cross-entity access always resolves identifiers
// through the world arena.
type unitBase struct {
	id         int64
	facilityID int64
	world      *World
}

func (u *unitBase) ID() int64 { return u.id }

func (u *unitBase) facility() *Facility { return u.world.Facility(u.facilityID) }

// Lifecycle defaults; concrete units override the phases they participate in.
func (u *unitBase) Initialize()            {}
func (u *unitBase) Step(tick int64)        {}
func (u *unitBase) FlushStates(tick int64) {}
func (u *unitBase) PostStep(tick int64)    {}
func (u *unitBase) Reset()                 {}

// ConsumerAction asks a consumer to place one purchase order this tick.
// An action with non-positive quantity or product ID, or a zero source ID,
// is ignored for the tick.
type ConsumerAction struct {
	SourceID  int64
	ProductID int64
	Quantity  int64
	LeadTime  int64
}

func (a *ConsumerAction) valid() bool {
	return a != nil && a.Quantity > 0 && a.ProductID > 0 && a.SourceID != 0
}

// ManufactureAction asks a manufacture unit for a production rate this tick.
// A non-positive rate is ignored.
type ManufactureAction struct {
	Rate int64
}

// ActionSet carries one tick's worth of externally supplied decisions,
// keyed by unit ID. Actions are cleared in the post-step pass, so every
// tick needs a fresh set or defaults to "no action".
type ActionSet struct {
	Consumer    map[int64]ConsumerAction
	Manufacture map[int64]ManufactureAction
}

// NewActionSet creates an empty ActionSet.
func NewActionSet() ActionSet {
	return ActionSet{
		Consumer:    make(map[int64]ConsumerAction),
		Manufacture: make(map[int64]ManufactureAction),
	}
}

// ActionProvider is the decision layer's hook. It is consulted once per tick
// before the step pass; the simulation core never generates actions itself.
type ActionProvider interface {
	Actions(w *World, tick int64) ActionSet
}
