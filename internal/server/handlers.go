package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/matzehuels/wordpath/pkg/buildinfo"
	"github.com/matzehuels/wordpath/pkg/errors"
	"github.com/matzehuels/wordpath/pkg/graph"
	"github.com/matzehuels/wordpath/pkg/pipeline"
	"github.com/matzehuels/wordpath/pkg/render/sink"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    errors.Code `json:"code"`
	Message string      `json:"message"`
}

func newErrorBody(err error) errorBody {
	return errorBody{Error: errorDetail{Code: errors.CodeOf(err), Message: errors.UserMessage(err)}}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, newErrorBody(err))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"build":  buildinfo.Get(),
	})
}

// readRoute decodes the request body as a route object or a bare array.
func (s *Server) readRoute(w http.ResponseWriter, r *http.Request) (graph.Route, error) {
	body := http.MaxBytesReader(w, r.Body, s.Config().Server.MaxBodyBytes)
	route, err := graph.ReadRoute(body)
	if err != nil {
		return graph.Route{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid route body")
	}
	return route, nil
}

func (s *Server) options(route graph.Route) pipeline.Options {
	opts := pipeline.FromConfig(s.Config())
	opts.Route = route
	return opts
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	route, err := s.readRoute(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	l, err := s.runner.Layout(r.Context(), s.options(route))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := sink.RenderJSON(l)
	if err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "encode layout"))
		return
	}
	w.Header().Set("Content-Type", pipeline.ContentTypes[pipeline.FormatJSON])
	_, _ = w.Write(data)
}

// handleRender serves one artifact. Query parameters: format (default svg),
// scale, transparent, glow, caption, detailed.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	format := strings.ToLower(q.Get("format"))
	if format == "" {
		format = pipeline.FormatSVG
	}
	if err := pipeline.ValidateFormat(format); err != nil {
		s.writeError(w, r, err)
		return
	}

	route, err := s.readRoute(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts := s.options(route)
	opts.Formats = []string{format}
	if v := q.Get("scale"); v != "" {
		scale, err := strconv.ParseFloat(v, 64)
		if err != nil {
			s.writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "invalid scale %q", v))
			return
		}
		opts.Scale = scale
	}
	opts.Transparent = boolParam(q.Get("transparent"), opts.Transparent)
	opts.NoGlow = !boolParam(q.Get("glow"), !opts.NoGlow)
	opts.NoCaption = !boolParam(q.Get("caption"), !opts.NoCaption)
	opts.Detailed = boolParam(q.Get("detailed"), false)

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", pipeline.ContentTypes[format])
	if result.CacheInfo.RenderHit {
		w.Header().Set("X-Cache", "hit")
	} else {
		w.Header().Set("X-Cache", "miss")
	}
	_, _ = w.Write(result.Artifacts[format])
}

func boolParam(v string, def bool) bool {
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
