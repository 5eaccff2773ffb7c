package pipeline

import (
	"io"
	"os"
	"strings"

	"github.com/matzehuels/wordpath/pkg/errors"
	"github.com/matzehuels/wordpath/pkg/graph"
)

// ParseInput resolves a command-line argument to a route:
//
//   - "-" reads route JSON (object or bare array) from stdin
//   - an existing file, or any argument ending in .json, is read as route JSON
//   - anything else is a textual path such as "cat,cot,dog" or "cat -> dog"
func ParseInput(arg string, stdin io.Reader) (graph.Route, error) {
	if arg == "-" {
		r, err := graph.ReadRoute(stdin)
		if err != nil {
			return graph.Route{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read route from stdin")
		}
		return r, nil
	}
	file := isFile(arg)
	if !file && strings.HasSuffix(strings.ToLower(arg), ".json") {
		return graph.Route{}, errors.New(errors.ErrCodeFileNotFound, "route file %s not found", arg)
	}
	if file {
		r, err := graph.ReadRouteFile(arg)
		if err != nil {
			return graph.Route{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "read route file %s", arg)
		}
		return r, nil
	}
	return graph.Route{Path: graph.ParsePath(arg)}, nil
}

// ParseArgs joins several positional arguments into one route. A single
// argument goes through [ParseInput]; several are taken as the words.
func ParseArgs(args []string, stdin io.Reader) (graph.Route, error) {
	switch len(args) {
	case 0:
		return graph.Route{}, nil
	case 1:
		return ParseInput(args[0], stdin)
	}
	return graph.Route{Path: graph.ParsePath(strings.Join(args, " "))}, nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
