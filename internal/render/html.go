package render

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/hotfire.report/internal/telemetry"
)

// Chart builds an interactive go-echarts line chart of res with one mark
// area per phase segment.
func Chart(res *telemetry.Result, style Style) (*charts.Line, error) {
	if len(res.Time) == 0 {
		return nil, fmt.Errorf("nothing to chart: analysis window is empty")
	}

	subtitle := fmt.Sprintf("anchor=%d window=[%d,%d) records=%d", res.Anchor.Index, res.Window.Start, res.Window.End, res.Records)
	if res.Anchor.Fallback {
		subtitle += " fallback anchor"
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: style.Title, Width: "1400px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: style.Title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "10%"}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "Time since ignition command (s)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "Reading"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}),
	)

	areas := make([]opts.MarkAreaNameCoordItem, 0, len(res.Segments))
	for _, span := range res.SegmentTimes() {
		areas = append(areas, opts.MarkAreaNameCoordItem{
			Name:        span.State.String(),
			Coordinate0: []interface{}{span.Start, "min"},
			Coordinate1: []interface{}{span.End, "max"},
			ItemStyle:   &opts.ItemStyle{Color: cssColor(style.Colors.For(span.State), style.Alpha)},
		})
	}

	for i, ch := range res.Channels {
		data := make([]opts.LineData, len(ch.Values))
		for j, v := range ch.Values {
			data[j] = opts.LineData{Value: []interface{}{res.Time[j], v}}
		}
		seriesOpts := []charts.SeriesOpts{
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
		}
		if i == 0 {
			seriesOpts = append(seriesOpts, charts.WithMarkAreaNameCoordItemOpts(areas...))
		}
		line.AddSeries(seriesLabel(ch), data, seriesOpts...)
	}
	return line, nil
}

// HTML renders the chart as a standalone HTML page to w.
func HTML(w io.Writer, res *telemetry.Result, style Style) error {
	line, err := Chart(res, style)
	if err != nil {
		return err
	}
	if err := line.Render(w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}
