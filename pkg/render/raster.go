package render

import (
	"bytes"
	"encoding/base64"
	"image"
	"io"
	"math"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/geom"
)

// AvatarResolver loads the image behind an avatar reference.
type AvatarResolver func(ref string) (image.Image, error)

// RasterOption configures a RasterCanvas.
type RasterOption func(*RasterCanvas)

// WithAvatarResolver replaces the default avatar loader.
func WithAvatarResolver(fn AvatarResolver) RasterOption {
	return func(c *RasterCanvas) { c.avatars = fn }
}

// RasterCanvas draws into an RGBA image using the Go fonts.
type RasterCanvas struct {
	dc      *gg.Context
	avatars AvatarResolver
	faces   map[faceKey]font.Face
}

type faceKey struct {
	size float64
	bold bool
}

var (
	fontsOnce            sync.Once
	regularFont, boldTTF *truetype.Font
	fontsErr             error
)

func loadFonts() error {
	fontsOnce.Do(func() {
		if regularFont, fontsErr = truetype.Parse(goregular.TTF); fontsErr != nil {
			return
		}
		boldTTF, fontsErr = truetype.Parse(gobold.TTF)
	})
	return fontsErr
}

// NewRasterCanvas creates a w×h pixel canvas.
func NewRasterCanvas(w, h int, opts ...RasterOption) (*RasterCanvas, error) {
	if w <= 0 || h <= 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "raster size must be positive, got %dx%d", w, h)
	}
	if err := loadFonts(); err != nil {
		return nil, errors.RenderUnavailable("png", "embedded fonts could not be parsed", err)
	}
	c := &RasterCanvas{
		dc:      gg.NewContext(w, h),
		avatars: LoadAvatar,
		faces:   make(map[faceKey]font.Face),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *RasterCanvas) Rect(r geom.Rect, radius float64, fill, stroke string, strokeWidth float64) {
	if fill != "" {
		c.dc.DrawRoundedRectangle(r.X, r.Y, r.W, r.H, radius)
		c.dc.SetHexColor(fill)
		c.dc.Fill()
	}
	if stroke != "" && strokeWidth > 0 {
		c.dc.DrawRoundedRectangle(r.X, r.Y, r.W, r.H, radius)
		c.dc.SetHexColor(stroke)
		c.dc.SetLineWidth(strokeWidth)
		c.dc.Stroke()
	}
}

func (c *RasterCanvas) Circle(p geom.Point, radius float64, fill, stroke string) {
	if fill != "" {
		c.dc.DrawCircle(p.X, p.Y, radius)
		c.dc.SetHexColor(fill)
		c.dc.Fill()
	}
	if stroke != "" {
		c.dc.DrawCircle(p.X, p.Y, radius)
		c.dc.SetHexColor(stroke)
		c.dc.SetLineWidth(1)
		c.dc.Stroke()
	}
}

func (c *RasterCanvas) Text(p geom.Point, s string, size float64, color string, bold bool) {
	if s == "" || size < 1 {
		return
	}
	c.dc.SetFontFace(c.face(size, bold))
	c.dc.SetHexColor(color)
	c.dc.DrawStringAnchored(s, p.X, p.Y, 0.5, 0.35)
}

func (c *RasterCanvas) face(size float64, bold bool) font.Face {
	key := faceKey{size: math.Round(size*2) / 2, bold: bold}
	if f, ok := c.faces[key]; ok {
		return f
	}
	ttf := regularFont
	if bold {
		ttf = boldTTF
	}
	f := truetype.NewFace(ttf, &truetype.Options{Size: key.size})
	c.faces[key] = f
	return f
}

func (c *RasterCanvas) Image(r geom.Rect, ref string) error {
	img, err := c.avatars(ref)
	if err != nil {
		return err
	}
	side := int(math.Round(min(r.W, r.H)))
	if side <= 0 {
		return errors.New(errors.ErrCodeInvalidInput, "avatar box is empty")
	}
	img = imaging.Fill(img, side, side, imaging.Center, imaging.Lanczos)

	center := r.Center()
	c.dc.DrawCircle(center.X, center.Y, float64(side)/2)
	c.dc.Clip()
	c.dc.DrawImageAnchored(img, int(center.X), int(center.Y), 0.5, 0.5)
	c.dc.ResetClip()
	return nil
}

func (c *RasterCanvas) Polyline(pts []geom.Point, stroke string, width float64) {
	if len(pts) < 2 {
		return
	}
	c.dc.MoveTo(pts[0].X, pts[0].Y)
	for _, p := range pts[1:] {
		c.dc.LineTo(p.X, p.Y)
	}
	c.dc.SetHexColor(stroke)
	c.dc.SetLineWidth(width)
	c.dc.Stroke()
}

// EncodePNG writes the canvas as PNG.
func (c *RasterCanvas) EncodePNG(w io.Writer) error { return c.dc.EncodePNG(w) }

// PNG returns the canvas encoded as PNG.
func (c *RasterCanvas) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := c.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// LoadAvatar is the default avatar resolver. It decodes base64 data URIs and
// opens local files; remote URLs are not fetched.
func LoadAvatar(ref string) (image.Image, error) {
	switch {
	case strings.HasPrefix(ref, "data:"):
		_, payload, ok := strings.Cut(ref, ";base64,")
		if !ok {
			return nil, errors.New(errors.ErrCodeUnsupported, "avatar data URI is not base64 encoded")
		}
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode avatar data URI")
		}
		return imaging.Decode(bytes.NewReader(data))
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return nil, errors.New(errors.ErrCodeUnsupported, "remote avatars are not fetched by the raster backend")
	default:
		return imaging.Open(ref)
	}
}
