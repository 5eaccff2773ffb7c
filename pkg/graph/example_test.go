package graph_test

import (
	"fmt"

	"github.com/matzehuels/wordpath/pkg/graph"
)

func ExampleBuild() {
	g := graph.Build([]string{"cat", "cot", "cog", "dog"})

	for _, n := range g.Nodes {
		fmt.Println(n.ID, n.Group)
	}
	fmt.Println("Edges:", g.Edges)
	// Output:
	// cat origin
	// cot intermediate
	// cog intermediate
	// dog destination
	// Edges: [{cat cot} {cot cog} {cog dog}]
}

func ExampleBuild_revisit() {
	// A route that crosses an already visited word
	g := graph.Build([]string{"cat", "cot", "cat", "bat"})

	fmt.Println("Nodes:", g.NodeCount())
	fmt.Println("Edges:", g.EdgeCount())
	fmt.Println("Degree of cat:", g.Degree("cat"))
	// Output:
	// Nodes: 3
	// Edges: 3
	// Degree of cat: 3
}

func ExampleParsePath() {
	fmt.Println(graph.ParsePath("cold -> cord -> card -> ward -> warm"))
	// Output:
	// [cold cord card ward warm]
}
