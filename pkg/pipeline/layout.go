package pipeline

import (
	"context"
	"time"

	"github.com/matzehuels/wordpath/pkg/errors"
	"github.com/matzehuels/wordpath/pkg/force"
	"github.com/matzehuels/wordpath/pkg/graph"
	"github.com/matzehuels/wordpath/pkg/observability"
)

// ComputeLayout builds the graph for opts.Route and runs the simulation
// until it rests or opts.MaxTicks is reached. An empty route yields an
// empty layout, not an error. The route is attached to the result.
func ComputeLayout(ctx context.Context, opts Options) (graph.Layout, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return graph.Layout{}, err
	}

	route := opts.Route
	g := route.Graph(graph.WithEdgePolicy(opts.Policy()))
	hooks := observability.Pipeline()
	hooks.OnLayoutStart(ctx, g.NodeCount())
	start := time.Now()

	sim, err := force.New(g, opts.Force, force.WithLogger(opts.Logger))
	if err != nil {
		hooks.OnLayoutComplete(ctx, 0, time.Since(start), err)
		return graph.Layout{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "create simulation")
	}
	ticks, err := sim.Run(ctx, opts.MaxTicks)
	hooks.OnLayoutComplete(ctx, ticks, time.Since(start), err)
	if err != nil {
		return graph.Layout{}, err
	}
	if !sim.Converged() {
		opts.Logger.Warn("layout stopped before converging", "ticks", ticks, "alpha", sim.Alpha())
	}
	if n := sim.Skipped(); n > 0 {
		opts.Logger.Warn("ticks discarded", "count", n)
	}

	l := sim.Layout()
	if len(route.Path) > 0 {
		l.Route = &route
	}
	return l, nil
}
