// Package harness runs reef core cases and checks them.
//
// A case is a YAML file naming a scenario (inline or by path) and the
// expectations its run must meet. Running a case drives the simulation
// while a checker inspects the core after every step:
//
//   - every layer's thickness is non-negative
//   - every layer's slot heights sum to its thickness
//   - the karst record of a layer never decreases
//   - unmet erosion never decreases
//   - a fill regime leaves the surface exactly at the ceiling and the
//     open regime never leaves it above
//
// Property failures and unmet expectations are collected in Result.Errors
// rather than stopping the run. A core invariant panic aborts the run and
// is returned as an error.
//
// RunWithGolden additionally compares the final record's canonical JSON
// against testdata/golden/<case>.golden. Regenerate golden files with:
//
//	go test ./internal/harness -update
package harness
