// Package core implements the reef core accounting engine.
//
// A Core owns the stratigraphic record of one simulation run: net thickness
// per layer, the height each species (plus one clastic slot) contributed to
// each layer, the thickness removed from each layer by karst erosion, and the
// distance between the depositional surface and the accommodation ceiling.
//
// Advance is the accretion step. It is called once per simulation time step
// and applies exactly one of five accommodation regimes:
//
//  1. no accommodation, no erosion: no-op
//  2. no accommodation, erosion demanded: backward karst pass
//  3. accommodation filled by clastic input alone
//  4. accommodation filled by carbonate and clastic input combined
//  5. ample accommodation: everything is deposited
//
// # Invariants
//
// For every layer the sum of slot heights equals the layer thickness. Karst
// erosion per layer never decreases. After regimes 3 to 5 the top elevation
// is non-negative.
//
// Invariant violations indicate a caller bug and panic with *InvariantError.
// They are never clamped, since a silently corrected record is worse than no
// record.
//
// A Core is not safe for concurrent use. Parameter sweeps construct one Core
// per run.
package core
