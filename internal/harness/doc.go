// Package harness runs simulation scenarios as executable tests.
//
// A scenario names an experiment (inline or as a CUE file), runs it with a
// deterministic wall clock against an in-memory store, and checks
// assertions over the stored event log and the network reconstructed from
// it.
//
// # Scenario Format
//
//	name: cycle_iterative
//	description: "B catalyses A into C, C decays back"
//	experiment:
//	  reactor: iterative
//	  network: |
//	    A + B -> B + C
//	    C -2.0> A
//	  pool: {A: 5, B: 3}
//	  budget: 20
//	  seed: 7
//	assertions:
//	  - type: event_count
//	    count: 20
//	  - type: network_subset
//
// # Assertion Types
//
//   - event_count: exactly count events
//   - elastic_count: exactly count elastic events
//   - event_contains: some event turns reactants into products
//   - time_ordered: event times never decrease
//   - network_subset: every reconstructed reaction is in the source network
//   - network_equals: the reconstructed network equals network
//   - reaction_count: the reconstructed network has count reactions
//   - final_counts: species counts after the last event, subset match
//
// # Golden Logs
//
// RunWithGolden compares the event log and reconstructed network against
// testdata/golden/<name>.golden. Regenerate with:
//
//	go test ./internal/harness -update
package harness
