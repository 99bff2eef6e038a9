package render

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"github.com/matzehuels/orgchart/pkg/errors"
)

const rsvgHint = "requires librsvg. Install with:\n  macOS:  brew install librsvg\n  Linux:  apt install librsvg2-bin"

// LookPathFunc locates an executable, like exec.LookPath.
type LookPathFunc func(file string) (string, error)

// ToPDF converts SVG bytes to PDF using rsvg-convert.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func ToPDF(ctx context.Context, svg []byte) ([]byte, error) {
	return rsvgConvert(ctx, exec.LookPath, svg, "pdf")
}

// ToPNG converts SVG bytes to PNG using rsvg-convert with the given scale factor.
func ToPNG(ctx context.Context, svg []byte, scale float64) ([]byte, error) {
	return rsvgConvert(ctx, exec.LookPath, svg, "png", "-z", fmt.Sprintf("%.2f", scale))
}

// probeRSVG reports whether rsvg-convert can be found.
func probeRSVG(lookPath LookPathFunc, format string) error {
	if _, err := lookPath("rsvg-convert"); err != nil {
		return errors.RenderUnavailable(format, fmt.Sprintf("%s export %s", format, rsvgHint), err)
	}
	return nil
}

// rsvgConvert shells out to rsvg-convert for format conversion.
func rsvgConvert(ctx context.Context, lookPath LookPathFunc, svg []byte, format string, extraArgs ...string) ([]byte, error) {
	if err := probeRSVG(lookPath, format); err != nil {
		return nil, err
	}

	args := append([]string{"-f", format}, extraArgs...)
	cmd := exec.CommandContext(ctx, "rsvg-convert", args...)
	cmd.Stdin = bytes.NewReader(svg)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("rsvg-convert: %v: %s", err, errBuf.String())
	}
	return out.Bytes(), nil
}
