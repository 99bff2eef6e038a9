package pipeline

import (
	"context"

	"github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/hierarchy"
	"github.com/matzehuels/orgchart/pkg/layout"
	"github.com/matzehuels/orgchart/pkg/render"
)

// Artifact is one rendered output.
type Artifact struct {
	Data []byte
	// Unavailable is non-nil when Data is a placeholder standing in for a
	// backend that is missing on this machine.
	Unavailable error
}

// Scene builds the render scene for a pipeline result. A nil root yields a
// "no data" scene carrying message.
func Scene(root *hierarchy.OrgNode, l *layout.Layout, opts Options, message string) (render.Scene, error) {
	theme, err := render.ThemeByName(opts.Theme)
	if err != nil {
		return render.Scene{}, err
	}
	s, err := render.NewScene(root, l, theme)
	if err != nil {
		return render.Scene{}, err
	}
	if root == nil {
		s.Status = render.StatusEmpty
		s.Message = message
	}
	return s, nil
}

// RenderFormat produces one artifact. json and txt never fail over to a
// placeholder; drawn formats fall back to an instructional SVG when their
// backend is missing.
func RenderFormat(ctx context.Context, format string, s render.Scene, root *hierarchy.OrgNode, opts Options) (Artifact, error) {
	switch format {
	case FormatJSON:
		data, err := layout.Marshal(s.Layout)
		return Artifact{Data: data}, err
	case FormatText:
		text := render.ListText(root, opts.CollapseState(), opts.detailFor(root), render.ListStyles{})
		if text != "" {
			text += "\n"
		}
		return Artifact{Data: []byte(text)}, nil
	}

	f, err := render.ParseFormat(format)
	if err != nil {
		return Artifact{}, err
	}
	r := render.Select(ctx, f, render.VizType(opts.VizType), opts.renderOptions()...)
	data, err := r.Render(ctx, s)
	if err != nil {
		return Artifact{}, errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
	}
	return Artifact{Data: data, Unavailable: r.Err()}, nil
}
