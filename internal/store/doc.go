// Package store provides SQLite-backed storage for completed core runs.
//
// A run is written once, in a single transaction, after the simulation
// finishes. Aborted runs are never written. Each run holds:
//   - runs: header, canonical scenario JSON, and the snapshot digest
//   - layers: per-layer thickness, karst, and the forcing sampled at the
//     layer's start time
//   - deposits: per-layer, per-slot heights (clastic slot last)
//   - steps: the per-step trace of regime and accommodation
//
// All reads order by logical position (seq, layer, slot, step), so the
// same database always yields the same records.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
