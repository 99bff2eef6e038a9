package server

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/orgchart/pkg/buildinfo"
	"github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/geom"
	"github.com/matzehuels/orgchart/pkg/hierarchy"
	"github.com/matzehuels/orgchart/pkg/layout"
	"github.com/matzehuels/orgchart/pkg/pipeline"
)

// Response headers describing placeholder artifacts.
const (
	HeaderUnavailable = "X-Orgchart-Unavailable"
	HeaderEmpty       = "X-Orgchart-Empty"
	HeaderCache       = "X-Orgchart-Cache"
)

var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatPNG:  "image/png",
	pipeline.FormatPDF:  "application/pdf",
	pipeline.FormatJSON: "application/json",
	pipeline.FormatText: "text/plain; charset=utf-8",
}

type healthResponse struct {
	Status string `json:"status"`
	buildinfo.Info
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Info: buildinfo.Get()})
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		writeError(w, r, err)
		return
	}
	opts.Formats = []string{format}

	res, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, r, err)
		return
	}

	ct := contentTypes[format]
	if reason, ok := res.Unavailable[format]; ok {
		ct = contentTypes[pipeline.FormatSVG]
		w.Header().Set(HeaderUnavailable, errors.UserMessage(reason))
	}
	if res.Empty {
		w.Header().Set(HeaderEmpty, "true")
	}
	if res.CacheInfo.RenderHit {
		w.Header().Set(HeaderCache, "hit")
	} else {
		w.Header().Set(HeaderCache, "miss")
	}
	w.Header().Set("Content-Type", ct)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifacts[format])
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	_, l, err := s.layout(r.Context(), opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	data, err := layout.Marshal(l)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[pipeline.FormatJSON])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// hitResponse describes what lies under a world-space point.
type hitResponse struct {
	Hit        bool                  `json:"hit"`
	Marker     bool                  `json:"marker"`
	Node       *layout.GeometricNode `json:"node,omitempty"`
	Attributes hierarchy.Attributes  `json:"attributes,omitempty"`
}

func (s *Server) handleHit(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, err := parsePoint(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	root, l, err := s.layout(r.Context(), opts)
	if err != nil {
		writeError(w, r, err)
		return
	}

	var resp hitResponse
	if g, ok := l.MarkerAt(p); ok {
		resp.Marker = true
		resp.Hit = true
		resp.Node = &g
	} else if g, ok := l.NodeAt(p); ok {
		resp.Hit = true
		resp.Node = &g
	}
	if resp.Node != nil {
		if n := hierarchy.Find(root, resp.Node.NodeID); n != nil {
			resp.Attributes = n.Attributes
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// layout loads the hierarchy and computes its layout. An organization
// without data yields an empty layout.
func (s *Server) layout(ctx context.Context, opts pipeline.Options) (*hierarchy.OrgNode, *layout.Layout, error) {
	root, err := s.runner.Load(ctx, opts)
	if err != nil && !errors.Is(err, errors.ErrCodeEmptyData) {
		return nil, nil, err
	}
	l, err := s.runner.GenerateLayout(ctx, root, opts)
	if err != nil {
		return nil, nil, err
	}
	return root, l, nil
}

// options builds pipeline options from the route and query parameters,
// starting from the server defaults.
func (s *Server) options(r *http.Request) (pipeline.Options, error) {
	opts := s.defaults
	opts.OrganizationID = chi.URLParam(r, "org")
	if err := errors.ValidateOrganizationID(opts.OrganizationID); err != nil {
		return opts, err
	}
	mode, err := hierarchy.ParseViewMode(chi.URLParam(r, "mode"))
	if err != nil {
		return opts, err
	}
	opts.ViewMode = string(mode)

	q := r.URL.Query()
	if v := q.Get("detail"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return opts, errors.New(errors.ErrCodeInvalidInput, "detail must be a positive integer, got %q", v)
		}
		opts.DetailLevel = n
	}
	if v := q.Get("scale"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return opts, errors.New(errors.ErrCodeInvalidInput, "scale must be a positive number, got %q", v)
		}
		opts.Scale = f
	}
	for name, dst := range map[string]*bool{
		"expand_all":  &opts.ExpandAll,
		"detailed":    &opts.Detailed,
		"interactive": &opts.Interactive,
		"refresh":     &opts.Refresh,
	} {
		if v := q.Get(name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return opts, errors.New(errors.ErrCodeInvalidInput, "%s must be a boolean, got %q", name, v)
			}
			*dst = b
		}
	}
	if v := q.Get("theme"); v != "" {
		opts.Theme = v
	}
	if v := q.Get("type"); v != "" {
		opts.VizType = v
	}
	if v := q.Get("collapse"); v != "" {
		if opts.Collapse, err = nodeIDs(v); err != nil {
			return opts, err
		}
	}
	if v := q.Get("expand"); v != "" {
		if opts.Expand, err = nodeIDs(v); err != nil {
			return opts, err
		}
	}
	return opts, nil
}

func nodeIDs(s string) ([]string, error) {
	var ids []string
	for _, id := range strings.Split(s, ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if err := errors.ValidateNodeID(id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parsePoint(r *http.Request) (geom.Point, error) {
	var p geom.Point
	for _, c := range []struct {
		name string
		dst  *float64
	}{{"x", &p.X}, {"y", &p.Y}} {
		v := r.URL.Query().Get(c.name)
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return p, errors.New(errors.ErrCodeInvalidInput, "query parameter %s must be a number, got %q", c.name, v)
		}
		*c.dst = f
	}
	return p, nil
}
