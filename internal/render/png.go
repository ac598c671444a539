package render

import (
	"fmt"
	"io"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/hotfire.report/internal/telemetry"
)

const (
	pngWidth  = 14 * vg.Inch
	pngHeight = 6 * vg.Inch
)

// Plot builds a gonum plot of every channel in res against time, with the
// phase segments shaded behind the lines.
func Plot(res *telemetry.Result, style Style) (*plot.Plot, error) {
	if len(res.Time) == 0 {
		return nil, fmt.Errorf("nothing to plot: analysis window is empty")
	}

	p := plot.New()
	p.Title.Text = style.Title
	if res.Anchor.Fallback {
		p.Title.Text += " (fallback anchor)"
	}
	p.X.Label.Text = "Time since ignition command (s)"
	p.Y.Label.Text = "Reading"

	lo, hi := valueRange(res)
	for _, span := range res.SegmentTimes() {
		poly, err := plotter.NewPolygon(plotter.XYs{
			{X: span.Start, Y: lo},
			{X: span.End, Y: lo},
			{X: span.End, Y: hi},
			{X: span.Start, Y: hi},
		})
		if err != nil {
			return nil, fmt.Errorf("shade %s: %w", span.State, err)
		}
		poly.Color = withAlpha(style.Colors.For(span.State), style.Alpha)
		poly.LineStyle.Width = 0
		p.Add(poly)
	}

	for i, ch := range res.Channels {
		pts := make(plotter.XYs, len(ch.Values))
		for j, v := range ch.Values {
			pts[j] = plotter.XY{X: res.Time[j], Y: v}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, fmt.Errorf("channel %s: %w", ch.Name, err)
		}
		line.Color = plotutil.Color(i)
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(seriesLabel(ch), line)
	}

	p.Legend.Top = true
	p.Legend.Left = true
	p.Legend.XOffs = 10
	p.Legend.YOffs = -10
	return p, nil
}

// PNG renders the plot as a PNG image to w.
func PNG(w io.Writer, res *telemetry.Result, style Style) error {
	p, err := Plot(res, style)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(pngWidth, pngHeight, "png")
	if err != nil {
		return fmt.Errorf("png writer: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write png: %w", err)
	}
	return nil
}

// SavePNG renders the plot to a file.
func SavePNG(path string, res *telemetry.Result, style Style) error {
	p, err := Plot(res, style)
	if err != nil {
		return err
	}
	if err := p.Save(pngWidth, pngHeight, path); err != nil {
		return fmt.Errorf("save plot: %w", err)
	}
	return nil
}

// valueRange spans every plotted value, padded so the shading reaches past
// the lines.
func valueRange(res *telemetry.Result) (lo, hi float64) {
	first := true
	for _, ch := range res.Channels {
		if len(ch.Values) == 0 {
			continue
		}
		cmin, cmax := floats.Min(ch.Values), floats.Max(ch.Values)
		if first || cmin < lo {
			lo = cmin
		}
		if first || cmax > hi {
			hi = cmax
		}
		first = false
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = 1
	}
	return lo - pad, hi + pad
}

func seriesLabel(ch telemetry.ChannelSeries) string {
	if ch.Unit == "" {
		return ch.Name
	}
	return fmt.Sprintf("%s (%s)", ch.Name, ch.Unit)
}
