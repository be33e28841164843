// Package plot renders recorded frames: joint loci as PNG images and single
// coordinates as terminal charts.
package plot

import (
	"errors"
	"fmt"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/mesh-intelligence/linkage/pkg/trajectory"
	"github.com/mesh-intelligence/linkage/pkg/types"
)

// ErrNoFrames is returned when there is nothing to draw.
var ErrNoFrames = errors.New("no frames to plot")

// Options controls Locus. Zero values pick defaults.
type Options struct {
	Title  string
	Joints []string // joints to draw; all when empty
	Width  vg.Length
	Height vg.Length
	DPI    int
}

func (o Options) withDefaults() Options {
	if o.Width == 0 {
		o.Width = 6 * vg.Inch
	}
	if o.Height == 0 {
		o.Height = 6 * vg.Inch
	}
	if o.DPI == 0 {
		o.DPI = 150
	}
	return o
}

// Locus draws the path of each joint across frames plus the final pose as
// linked markers. The returned value writes a PNG image.
func Locus(frames []types.Frame, opts Options) (io.WriterTo, error) {
	if len(frames) == 0 {
		return nil, ErrNoFrames
	}
	opts = opts.withDefaults()
	names := opts.Joints
	if len(names) == 0 {
		names = frames[0].Names()
	}

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	p.Add(plotter.NewGrid())
	p.Legend.Top = true

	for i, name := range names {
		pts, err := trajectory.Locus(frames, name)
		if err != nil {
			return nil, err
		}
		line, err := plotter.NewLine(xys(pts))
		if err != nil {
			return nil, fmt.Errorf("locus of %q: %w", name, err)
		}
		line.LineStyle.Width = vg.Points(1.5)
		line.LineStyle.Color = plotutil.Color(i)
		p.Add(line)
		p.Legend.Add(name, line)
	}

	pose, err := finalPose(frames[len(frames)-1], names)
	if err != nil {
		return nil, err
	}
	p.Add(pose...)

	c := vgimg.NewWith(vgimg.UseWH(opts.Width, opts.Height), vgimg.UseDPI(opts.DPI))
	p.Draw(draw.New(c))
	return vgimg.PngCanvas{Canvas: c}, nil
}

func finalPose(f types.Frame, names []string) ([]plot.Plotter, error) {
	pts := make([]types.Point, 0, len(names))
	for _, name := range names {
		pt, ok := f.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w: joint %q missing at step %d", types.ErrFrameMismatch, name, f.Step)
		}
		pts = append(pts, pt)
	}
	line, points, err := plotter.NewLinePoints(xys(pts))
	if err != nil {
		return nil, fmt.Errorf("final pose: %w", err)
	}
	line.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
	points.GlyphStyle.Shape = draw.CircleGlyph{}
	points.GlyphStyle.Radius = vg.Points(3)
	return []plot.Plotter{line, points}, nil
}

func xys(pts []types.Point) plotter.XYs {
	out := make(plotter.XYs, len(pts))
	for i, p := range pts {
		out[i].X, out[i].Y = p.X, p.Y
	}
	return out
}
