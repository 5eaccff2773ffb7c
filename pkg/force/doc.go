// Package force implements the force-directed layout of a path graph.
//
// A [Simulation] owns the mutable positions of one [graph.Graph] and advances
// them one tick per call to [Simulation.Step]. Each tick sums three forces:
//
//   - a link spring along every edge toward LinkDistance, with stiffness
//     LinkStrength/min(degree) and the correction split by degree so hubs
//     move less
//   - an inverse-square charge between every pair of nodes, exact or
//     approximated with a Barnes-Hut quadtree when Theta > 0
//   - a centering translation that pulls the centroid toward the canvas centre
//
// Link and charge forces are scaled by alpha, which cools geometrically from
// 1 toward its target. Once alpha drops below AlphaMin the simulation is
// converged and Step leaves the nodes alone until a restart.
//
// # Interaction
//
// [Simulation.Pin] holds a node at a model position; pinned nodes still push
// and pull their neighbours. [Simulation.DragStart] warms the simulation to
// DragAlphaTarget so the rest of the graph follows a drag, and
// [Simulation.DragEnd] lets it cool again.
//
// # Failure Handling
//
// A tick is computed into scratch buffers and committed only when every value
// is finite. A tick that produces NaN or infinity, or panics, is discarded and
// reported through [observability.SimulationHooks]; the next Step continues
// from the last good positions.
//
// # Headless Use
//
//	sim, err := force.New(graph.Build(path), force.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	ticks, err := sim.Run(ctx, 0)
package force
