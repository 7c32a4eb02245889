// Package sim drives a reef core through simulation time.
//
// The Driver is the single owner of a core.Core for the duration of a run.
// Each step it:
//
//  1. samples the environment at the step time
//  2. shifts accommodation by the sea-level change over the previous step
//     plus tectonic subsidence (skipped on the first step)
//  3. reads the community's population and growth vectors
//  4. calls core.Advance with the clastic rate and the karst erosion signal
//  5. records the step and notifies observers
//
// Steps run strictly in order on the caller's goroutine. Context
// cancellation is checked between steps. Parameter sweeps build one Driver
// (and so one Core) per run.
package sim
