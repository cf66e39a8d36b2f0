package render

import (
	"bytes"
	"encoding/json"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/KaramelBytes/custinsights-cli/internal/segment"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClusterColorWrapsPalette(t *testing.T) {
	for id := 0; id < 16; id++ {
		assert.Equal(t, Palette[id%8], ClusterColor(id), "cluster %d", id)
	}
	assert.Equal(t, ClusterColor(0), ClusterColor(8))
	assert.Equal(t, Palette[7], ClusterColor(-1))
}

func TestFormatMonetary(t *testing.T) {
	assert.Equal(t, "1234.50", FormatMonetary(1234.5))
	assert.Equal(t, "0.00", FormatMonetary(0))
	assert.Equal(t, "19.99", FormatMonetary(19.99))
	assert.Equal(t, "0.00", FormatMonetary(math.Copysign(0, -1)))
	assert.Equal(t, "0", FormatNumber(math.Copysign(0, -1)))
}

func TestBuildPersonaCardsKeepsOrder(t *testing.T) {
	personas := []segment.PersonaSummary{
		{ClusterID: 9, Persona: "Champions", Description: "Bought recently", AvgRecency: 12.5, AvgFrequency: 14, AvgMonetary: 1234.5},
		{ClusterID: 0, Persona: "At Risk", AvgRecency: 200, AvgFrequency: 2, AvgMonetary: 0},
		{ClusterID: 9, Persona: "Champions", AvgRecency: 1, AvgFrequency: 1, AvgMonetary: 1},
	}
	cards := BuildPersonaCards(personas)
	require.Len(t, cards, 3)
	for i, c := range cards {
		assert.Equal(t, personas[i].Persona, c.Persona)
		assert.Equal(t, Palette[personas[i].ClusterID%8], c.Color)
	}
	assert.Equal(t, "12.5 days", cards[0].Recency)
	assert.Equal(t, "14", cards[0].Frequency)
	assert.Equal(t, "1234.50", cards[0].Monetary)
	assert.Equal(t, "0.00", cards[1].Monetary)

	m := cards[0].Metrics()
	require.Len(t, m, 3)
	assert.Equal(t, "Avg. Recency:", m[0].Label)
	assert.Equal(t, "1234.50", m[2].Value)
}

func TestBuildPlot(t *testing.T) {
	pts := []segment.SegmentedPoint{
		{Recency: 10, Frequency: 2, MonetaryValue: 99.5, Cluster: 0},
		{Recency: 300, Frequency: 1, MonetaryValue: 12, Cluster: 11},
	}
	pm := BuildPlot(pts)
	require.Len(t, pm.Traces, 1)
	tr := pm.Traces[0]
	assert.Equal(t, []float64{10, 300}, tr.X)
	assert.Equal(t, []float64{2, 1}, tr.Y)
	assert.Equal(t, []float64{99.5, 12}, tr.Z)
	assert.Equal(t, []string{Palette[0], Palette[3]}, tr.Marker.Color)
	assert.Equal(t, "scatter3d", tr.Type)
	assert.Equal(t, "rgba(0,0,0,0)", pm.Layout.PaperBGColor)
	assert.Equal(t, "Recency (Days)", pm.Layout.Scene.XAxis.Title)
	assert.Equal(t, "Frequency", pm.Layout.Scene.YAxis.Title)
	assert.Equal(t, "Monetary Value (€)", pm.Layout.Scene.ZAxis.Title)
}

func TestBuildPlotEmptyEncodesArrays(t *testing.T) {
	b, err := json.Marshal(BuildPlot(nil).Traces[0])
	require.NoError(t, err)
	assert.Contains(t, string(b), `"x":[]`)
	assert.Contains(t, string(b), `"color":[]`)
}

func TestHTMLReport(t *testing.T) {
	pm := BuildPlot([]segment.SegmentedPoint{{Recency: 5, Frequency: 3, MonetaryValue: 40, Cluster: 2}})
	cards := BuildPersonaCards([]segment.PersonaSummary{{ClusterID: 2, Persona: "<Loyal>", Description: "Regulars", AvgMonetary: 40}})
	out, err := HTMLReport(pm, cards, "run-1", time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))
	require.NoError(t, err)
	html := string(out)
	assert.Contains(t, html, "Plotly.newPlot")
	assert.Contains(t, html, `"scatter3d"`)
	assert.Contains(t, html, "background-color:"+Palette[2])
	assert.Contains(t, html, "&lt;Loyal&gt;")
	assert.NotContains(t, html, "<Loyal>")
	assert.Contains(t, html, "40.00")
	assert.Contains(t, html, "run run-1")
}

func TestTerminalCards(t *testing.T) {
	cards := BuildPersonaCards([]segment.PersonaSummary{
		{ClusterID: 0, Persona: "First", AvgMonetary: 1234.5},
		{ClusterID: 1, Persona: "Second"},
	})
	out := TerminalCards(cards, 40)
	first := strings.Index(out, "First")
	second := strings.Index(out, "Second")
	require.True(t, first >= 0 && second > first, "cards out of order:\n%s", out)
	assert.Contains(t, out, "1234.50")
	assert.Empty(t, TerminalCards(nil, 40))
}

func TestWritePNGProjections(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "png")
	pts := []segment.SegmentedPoint{
		{Recency: 1, Frequency: 10, MonetaryValue: 500, Cluster: 0},
		{Recency: 40, Frequency: 3, MonetaryValue: 80, Cluster: 1},
		{Recency: 200, Frequency: 1, MonetaryValue: 15, Cluster: 9},
	}
	paths, err := WritePNGProjections(dir, pts)
	require.NoError(t, err)
	require.Len(t, paths, 3)
	for _, p := range paths {
		b, err := os.ReadFile(p)
		require.NoError(t, err)
		_, err = png.Decode(bytes.NewReader(b))
		require.NoError(t, err, "decode %s", p)
	}

	_, err = WritePNGProjections(dir, nil)
	assert.ErrorIs(t, err, ErrNoPoints)
}
