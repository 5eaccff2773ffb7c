// Package graph builds the node-link model of a word path and defines the
// serialization types used around it.
//
// # Model
//
// A path is an ordered list of words, for example the route "cat → cot → cog
// → dog" returned by a route-finding service. [Build] turns it into a
// [Graph]:
//
//   - one [Node] per distinct word, in first-occurrence order
//   - one [Edge] per consecutive pair of path entries
//   - a [Group] per node: the first word is [GroupOrigin], the last word is
//     [GroupDestination], everything else is [GroupIntermediate]
//
// Identifiers are case-normalized, so "Cat" and "cat" are the same node. A
// path that revisits a word resolves to the same *Node, and the edges on the
// repeat occurrence reference it:
//
//	g := graph.Build([]string{"cat", "cot", "cog", "dog"})
//	g.NodeCount() // 4
//	g.EdgeCount() // 3
//
// An absent or empty path is a valid "nothing to draw" state: Build returns an
// empty graph and never fails.
//
// # Edge Policy
//
// By default every consecutive pair produces an edge, even when a route
// crosses an already visited word. [WithEdgePolicy]([EdgesCollapse]) drops
// duplicate undirected pairs and self-loops instead.
//
// # Serialization
//
//   - [Route]: the input envelope emitted by the route service (path plus
//     metadata the layout does not interpret)
//   - [Layout]: the JSON output of a finished simulation
//
// Use [ReadRoute]/[ReadRouteFile] and [MarshalLayout]/[UnmarshalLayout] to
// move between files, HTTP bodies, and caches.
package graph
