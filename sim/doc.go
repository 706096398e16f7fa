// Package sim provides the discrete-event simulation core for a
// multi-facility supply-chain network.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - unit.go: the Unit lifecycle (initialize → step → flush → post-step → reset)
//     and the per-tick action inputs
//   - world.go: the entity arena, the facility graph, and the tick driver
//   - simulator.go: the episode loop that applies actions and collects metrics
//
// # Architecture
//
// The sim package owns the entity graph and its per-tick protocol;
// supporting concerns live in sub-packages:
//   - sim/frame/: tick-indexed typed attribute storage (the observable state sink)
//   - sim/topology/: YAML scenario specs and world construction
//   - sim/trace/: order/delivery/abandonment records and the SQLite sink
//   - sim/policy/: baseline action providers for running without an external agent
//
// # Key Interfaces
//
// The extension points are small interfaces:
//   - Unit: lifecycle contract implemented by every entity kind
//   - Manufacturer: production variants (simple vs. source-aware), selected
//     at graph-construction time
//   - DemandSource: per-tick stochastic demand for sellers
//   - PathFinder: waypoint routing between facility coordinates
//   - ActionProvider: the external decision layer's hook into each tick
//
// Ownership is strictly tree-shaped: World owns Facilities, Facilities own
// ProductUnits and a DistributionUnit, ProductUnits own their consumer,
// seller, and manufacture slots. Every other reference is an int64 identifier
// resolved through the World arena, so the cyclic back-references of the
// domain (vehicle → destination consumer, unit → facility → world) never
// become cyclic pointers.
package sim
