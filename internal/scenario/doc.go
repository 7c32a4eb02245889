// Package scenario loads and validates reef core scenario files.
//
// # Scenario Format
//
// Scenarios are YAML (or CUE, or canonical JSON) documents:
//
//	name: lagoon_rise
//	description: "Two communities under a slow transgression"
//	time:
//	  start: 0        # years
//	  end: 2000
//	  step: 10        # accretion step
//	  layer: 100      # stratigraphic layer span, a multiple of step
//	core:
//	  initial_depth: 2.0
//	  production_scale: 50
//	species:
//	  - name: massive
//	    max_production: 0.004   # m/yr
//	    population: { constant: 40 }
//	  - name: branching
//	    max_production: 0.012
//	    population:
//	      points: [[0, 5], [2000, 60]]
//	    growth: { constant: 1 }
//	forcing:
//	  sea_level:
//	    points: [[0, 0], [2000, 4]]
//	  tectonic: { constant: 0.0005 }   # m/yr subsidence
//	  clastic: { constant: 0.0001 }    # m/yr
//	  flow: { constant: 0.2 }          # m/s, reported only
//	  karst: { constant: 0.002 }       # m/yr while subaerial
//
// YAML is decoded strictly: unknown fields are rejected. CUE files are
// unified with the embedded #Scenario schema before decoding. All formats
// then go through the same validation.
package scenario
