// Package render turns analysis results into render models (plot traces and
// persona cards) and writes them to the available sinks.
package render

import (
	"github.com/KaramelBytes/custinsights-cli/internal/segment"
)

// PlotTitle is the heading shown above the 3D scatter.
const PlotTitle = "3D Customer Segments (RFM)"

// Marker styles the points of a trace.
type Marker struct {
	Color   []string `json:"color"`
	Size    int      `json:"size"`
	Opacity float64  `json:"opacity"`
}

// Trace is a plotly-compatible scatter3d trace.
type Trace struct {
	X      []float64 `json:"x"`
	Y      []float64 `json:"y"`
	Z      []float64 `json:"z"`
	Mode   string    `json:"mode"`
	Type   string    `json:"type"`
	Marker Marker    `json:"marker"`
}

// Font sets a text colour.
type Font struct {
	Color string `json:"color"`
}

// Title is a plot heading.
type Title struct {
	Text string `json:"text"`
	Font Font   `json:"font"`
}

// Axis labels and colours one scene axis.
type Axis struct {
	Title     string `json:"title"`
	Color     string `json:"color"`
	GridColor string `json:"gridcolor"`
}

// Scene holds the three axes of the 3D view.
type Scene struct {
	XAxis Axis `json:"xaxis"`
	YAxis Axis `json:"yaxis"`
	ZAxis Axis `json:"zaxis"`
}

// Margin is the plot margin in pixels.
type Margin struct {
	L int `json:"l"`
	R int `json:"r"`
	B int `json:"b"`
	T int `json:"t"`
}

// Layout is the dark, transparent plot layout.
type Layout struct {
	Title        Title  `json:"title"`
	PaperBGColor string `json:"paper_bgcolor"`
	PlotBGColor  string `json:"plot_bgcolor"`
	Margin       Margin `json:"margin"`
	Scene        Scene  `json:"scene"`
}

// PlotModel is everything a charting sink needs to draw the point cloud.
type PlotModel struct {
	Traces []Trace `json:"data"`
	Layout Layout  `json:"layout"`
	// Points keeps the source rows for sinks that project them differently.
	Points []segment.SegmentedPoint `json:"-"`
}

// BuildPlot maps Recency, Frequency and MonetaryValue to x, y and z and colours
// each point by its cluster.
func BuildPlot(points []segment.SegmentedPoint) PlotModel {
	tr := Trace{
		X:    make([]float64, len(points)),
		Y:    make([]float64, len(points)),
		Z:    make([]float64, len(points)),
		Mode: "markers",
		Type: "scatter3d",
		Marker: Marker{
			Color:   make([]string, len(points)),
			Size:    5,
			Opacity: 0.8,
		},
	}
	for i, p := range points {
		tr.X[i] = p.Recency
		tr.Y[i] = p.Frequency
		tr.Z[i] = p.MonetaryValue
		tr.Marker.Color[i] = ClusterColor(p.Cluster)
	}
	axis := func(title string) Axis {
		return Axis{Title: title, Color: "#B3B3B3", GridColor: "#2c2c2c"}
	}
	return PlotModel{
		Traces: []Trace{tr},
		Layout: Layout{
			Title:        Title{Text: PlotTitle, Font: Font{Color: "#EAEAEA"}},
			PaperBGColor: "rgba(0,0,0,0)",
			PlotBGColor:  "rgba(0,0,0,0)",
			Margin:       Margin{T: 40},
			Scene: Scene{
				XAxis: axis("Recency (Days)"),
				YAxis: axis("Frequency"),
				ZAxis: axis("Monetary Value (€)"),
			},
		},
		Points: append([]segment.SegmentedPoint(nil), points...),
	}
}
