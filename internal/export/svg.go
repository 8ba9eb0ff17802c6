package export

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/san-kum/seals/internal/boundary"
	"github.com/san-kum/seals/internal/snapshot"
	"github.com/san-kum/seals/internal/viz"
)

// SVGOptions control the look of an SVG export.
type SVGOptions struct {
	Width, Height int
	Stroke        string
	Background    string
	// PointRadius draws every point as a dot when positive.
	PointRadius float64
}

func DefaultSVGOptions() SVGOptions {
	return SVGOptions{Width: 800, Height: 800, Stroke: "#00ff88", Background: "#0a0a0a"}
}

// SVG writes a frame as an SVG drawing of its edges. 3D frames are projected
// onto the XY plane.
func SVG(w io.Writer, f *snapshot.Frame, opts SVGOptions) error {
	if len(f.Positions) == 0 {
		return fmt.Errorf("frame has no points")
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return fmt.Errorf("invalid size %dx%d", opts.Width, opts.Height)
	}

	// Find bounds
	minX, maxX := f.Positions[0][0], f.Positions[0][0]
	minY, maxY := f.Positions[0][1], f.Positions[0][1]
	for _, p := range f.Positions {
		minX, maxX = math.Min(minX, p[0]), math.Max(maxX, p[0])
		minY, maxY = math.Min(minY, p[1]), math.Max(maxY, p[1])
	}
	circle := f.Boundary != nil && f.Boundary.Kind == boundary.KindSphere
	if circle {
		r := float64(f.Boundary.Radius)
		minX, maxX = math.Min(minX, -r), math.Max(maxX, r)
		minY, maxY = math.Min(minY, -r), math.Max(maxY, r)
	}

	// Add padding, keeping the aspect ratio
	rangeX := maxX - minX
	rangeY := maxY - minY
	span := math.Max(rangeX, rangeY)
	if span == 0 {
		span = 1
	}
	span *= 1.1
	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	scale := math.Min(float64(opts.Width), float64(opts.Height)) / span
	toX := func(x float64) float64 { return float64(opts.Width)/2 + (x-cx)*scale }
	toY := func(y float64) float64 { return float64(opts.Height)/2 - (y-cy)*scale }

	var sb strings.Builder
	fmt.Fprintf(&sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, opts.Width, opts.Height, opts.Width, opts.Height, opts.Background)

	if circle {
		fmt.Fprintf(&sb, `<circle cx="%.2f" cy="%.2f" r="%.2f" fill="none" stroke="#444466" stroke-dasharray="4 4"/>
`, toX(0), toY(0), float64(f.Boundary.Radius)*scale)
	}

	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1" d="`, opts.Stroke))
	for k, e := range viz.Edges(f) {
		a, b := f.Positions[e[0]], f.Positions[e[1]]
		if k > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "M%.2f,%.2f L%.2f,%.2f", toX(a[0]), toY(a[1]), toX(b[0]), toY(b[1]))
	}
	sb.WriteString("\"/>\n")

	if opts.PointRadius > 0 {
		fmt.Fprintf(&sb, "<g fill=\"%s\">\n", opts.Stroke)
		for _, p := range f.Positions {
			fmt.Fprintf(&sb, "<circle cx=\"%.2f\" cy=\"%.2f\" r=\"%.2f\"/>\n", toX(p[0]), toY(p[1]), opts.PointRadius)
		}
		sb.WriteString("</g>\n")
	}
	sb.WriteString("</svg>\n")

	_, err := io.WriteString(w, sb.String())
	return err
}
