package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// =============================================================================
// Route - Input Envelope
// =============================================================================

// Route is the response shape of the route-finding service. Only Path drives
// the graph; the remaining fields are carried through to outputs as-is.
type Route struct {
	Origin          string           `json:"origin,omitempty" toml:"origin" yaml:"origin,omitempty"`
	Destination     string           `json:"destination,omitempty" toml:"destination" yaml:"destination,omitempty"`
	Path            []string         `json:"path" toml:"path" yaml:"path"`
	Steps           int              `json:"steps,omitempty" toml:"steps" yaml:"steps,omitempty"`
	RouteType       string           `json:"routeType,omitempty" toml:"route_type" yaml:"routeType,omitempty"`   // FASTEST, ALTERNATIVE
	Difficulty      string           `json:"difficulty,omitempty" toml:"difficulty" yaml:"difficulty,omitempty"` // EASY, MEDIUM, HARD
	Transformations []Transformation `json:"transformations,omitempty" toml:"transformations" yaml:"transformations,omitempty"`
}

// Transformation describes one step of a route.
type Transformation struct {
	From        string `json:"from" toml:"from" yaml:"from"`
	To          string `json:"to" toml:"to" yaml:"to"`
	StepNumber  int    `json:"stepNumber" toml:"step_number" yaml:"stepNumber"`
	Description string `json:"description,omitempty" toml:"description" yaml:"description,omitempty"`
}

// HasMetadata reports whether any field besides Path is set.
func (r *Route) HasMetadata() bool {
	if r == nil {
		return false
	}
	return r.Steps > 0 || r.RouteType != "" || r.Difficulty != "" || len(r.Transformations) > 0
}

// Caption returns a one-line summary such as "cat → dog · 3 steps · EASY · FASTEST".
// It returns "" for a route without a path.
func (r *Route) Caption() string {
	if r == nil || len(r.Path) == 0 {
		return ""
	}
	parts := []string{r.Path[0] + " → " + r.Path[len(r.Path)-1]}
	steps := r.Steps
	if steps == 0 {
		steps = len(r.Path) - 1
	}
	if steps == 1 {
		parts = append(parts, "1 step")
	} else {
		parts = append(parts, fmt.Sprintf("%d steps", steps))
	}
	if r.Difficulty != "" {
		parts = append(parts, r.Difficulty)
	}
	if r.RouteType != "" {
		parts = append(parts, r.RouteType)
	}
	return strings.Join(parts, " · ")
}

// Graph builds the graph for the route's path.
func (r *Route) Graph(opts ...BuildOption) *Graph {
	if r == nil {
		return Build(nil, opts...)
	}
	return Build(r.Path, opts...)
}

// =============================================================================
// Route Decoding
// =============================================================================

// ReadRoute decodes a route from r. Either a full route object or a bare JSON
// array of words is accepted.
func ReadRoute(r io.Reader) (Route, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Route{}, fmt.Errorf("read route: %w", err)
	}
	return UnmarshalRoute(data)
}

// UnmarshalRoute decodes route JSON bytes.
func UnmarshalRoute(data []byte) (Route, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var path []string
		if err := json.Unmarshal(data, &path); err != nil {
			return Route{}, fmt.Errorf("decode path: %w", err)
		}
		return Route{Path: path}, nil
	}
	var route Route
	if err := json.Unmarshal(data, &route); err != nil {
		return Route{}, fmt.Errorf("decode route: %w", err)
	}
	return route, nil
}

// ReadRouteFile reads a route from a JSON file.
func ReadRouteFile(path string) (Route, error) {
	f, err := os.Open(path)
	if err != nil {
		return Route{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadRoute(f)
}
