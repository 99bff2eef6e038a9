package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/orgchart/pkg/hierarchy"
	"github.com/matzehuels/orgchart/pkg/layout"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds role and email lines to node labels.
	// When false, only the display name is shown.
	Detailed bool

	Fill      string
	Stroke    string
	FontColor string
	EdgeColor string
}

func (o Options) withDefaults() Options {
	if o.Fill == "" {
		o.Fill = "white"
	}
	if o.Stroke == "" {
		o.Stroke = "#57606a"
	}
	if o.FontColor == "" {
		o.FontColor = "black"
	}
	if o.EdgeColor == "" {
		o.EdgeColor = "#8c959f"
	}
	return o
}

// ToDOT converts the visible part of a hierarchy to Graphviz DOT. Nodes
// below a collapsed node are omitted; detailLevel supplies the default
// collapse state as in the card layout.
func ToDOT(root *hierarchy.OrgNode, collapse layout.CollapseState, detailLevel int, opts Options) string {
	opts = opts.withDefaults()

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	fmt.Fprintf(&buf, "  node [shape=box, style=\"rounded,filled\", fillcolor=%q, color=%q, fontcolor=%q, fontsize=14, margin=\"0.2,0.1\"];\n",
		opts.Fill, opts.Stroke, opts.FontColor)
	fmt.Fprintf(&buf, "  edge [color=%q, arrowsize=0.6];\n", opts.EdgeColor)
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	var edges []string
	hierarchy.Walk(root, func(n *hierarchy.OrgNode, level int) bool {
		collapsed := !n.IsLeaf() && collapse.Collapsed(n.ID, level, detailLevel)
		attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, opts.Detailed))}
		if collapsed {
			attrs = append(attrs, "style=\"rounded,filled,dashed\"", fmt.Sprintf("tooltip=%q", fmt.Sprintf("%d hidden", hierarchy.Count(n)-1)))
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
		if collapsed {
			return false
		}
		for _, c := range n.Children {
			edges = append(edges, fmt.Sprintf("  %q -> %q;\n", n.ID, c.ID))
		}
		return true
	})

	buf.WriteString("\n")
	for _, e := range edges {
		buf.WriteString(e)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n *hierarchy.OrgNode, detailed bool) string {
	if !detailed {
		return n.Label()
	}
	parts := []string{n.Label()}
	for _, v := range []string{n.Attributes.Role(), n.Attributes.Email()} {
		if v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, "\n")
}

// Probe reports whether the Graphviz runtime can be initialized.
func Probe(ctx context.Context) error {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return fmt.Errorf("init graphviz: %w", err)
	}
	return gv.Close()
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}
