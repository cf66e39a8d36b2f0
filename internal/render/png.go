package render

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"path/filepath"
	"sort"

	"github.com/KaramelBytes/custinsights-cli/internal/segment"
	"github.com/KaramelBytes/custinsights-cli/internal/utils"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// ErrNoPoints is returned when there is nothing to draw.
var ErrNoPoints = errors.New("no points to plot")

// projection is a 2D view of the RFM cloud.
type projection struct {
	file   string
	title  string
	xLabel string
	yLabel string
	x, y   func(segment.SegmentedPoint) float64
}

var projections = []projection{
	{
		file: "segments_recency_frequency.png", title: "Recency vs Frequency",
		xLabel: "Recency (Days)", yLabel: "Frequency",
		x: func(p segment.SegmentedPoint) float64 { return p.Recency },
		y: func(p segment.SegmentedPoint) float64 { return p.Frequency },
	},
	{
		file: "segments_recency_monetary.png", title: "Recency vs Monetary Value",
		xLabel: "Recency (Days)", yLabel: "Monetary Value (€)",
		x: func(p segment.SegmentedPoint) float64 { return p.Recency },
		y: func(p segment.SegmentedPoint) float64 { return p.MonetaryValue },
	},
	{
		file: "segments_frequency_monetary.png", title: "Frequency vs Monetary Value",
		xLabel: "Frequency", yLabel: "Monetary Value (€)",
		x: func(p segment.SegmentedPoint) float64 { return p.Frequency },
		y: func(p segment.SegmentedPoint) float64 { return p.MonetaryValue },
	},
}

var (
	pngBackground = color.RGBA{R: 0x12, G: 0x12, B: 0x12, A: 0xff}
	pngForeground = color.RGBA{R: 0xB3, G: 0xB3, B: 0xB3, A: 0xff}
)

// WritePNGProjections draws the three pairwise projections of points into dir
// and returns the written paths.
func WritePNGProjections(dir string, points []segment.SegmentedPoint) ([]string, error) {
	if len(points) == 0 {
		return nil, ErrNoPoints
	}
	if err := utils.EnsureDir(dir); err != nil {
		return nil, fmt.Errorf("ensure png dir: %w", err)
	}
	var written []string
	for _, pr := range projections {
		b, err := drawProjection(pr, points)
		if err != nil {
			return written, err
		}
		path := filepath.Join(dir, pr.file)
		if err := utils.SafeWriteFile(path, b); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

func drawProjection(pr projection, points []segment.SegmentedPoint) ([]byte, error) {
	p := plot.New()
	p.BackgroundColor = pngBackground
	p.Title.Text = pr.title
	p.Title.TextStyle.Color = pngForeground
	p.Legend.TextStyle.Color = pngForeground
	p.Legend.Top = true
	for _, ax := range []*plot.Axis{&p.X, &p.Y} {
		ax.LineStyle.Color = pngForeground
		ax.Label.TextStyle.Color = pngForeground
		ax.Tick.Label.Color = pngForeground
		ax.Tick.LineStyle.Color = pngForeground
	}
	p.X.Label.Text = pr.xLabel
	p.Y.Label.Text = pr.yLabel

	byCluster := map[int]plotter.XYs{}
	for _, pt := range points {
		byCluster[pt.Cluster] = append(byCluster[pt.Cluster], plotter.XY{X: pr.x(pt), Y: pr.y(pt)})
	}
	ids := make([]int, 0, len(byCluster))
	for id := range byCluster {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		s, err := plotter.NewScatter(byCluster[id])
		if err != nil {
			return nil, fmt.Errorf("scatter for cluster %d: %w", id, err)
		}
		c, err := parseHexColor(ClusterColor(id))
		if err != nil {
			return nil, err
		}
		s.GlyphStyle.Color = c
		s.GlyphStyle.Radius = vg.Points(2)
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(s)
		p.Legend.Add(fmt.Sprintf("cluster %d", id), s)
	}

	wt, err := p.WriterTo(6*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		return nil, fmt.Errorf("png writer: %w", err)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
