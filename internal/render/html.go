package render

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

const tmplReport = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width,initial-scale=1">
<title>Customer Segments</title>
<script src="https://cdn.plot.ly/plotly-2.35.2.min.js"></script>
<style>
*{box-sizing:border-box;margin:0;padding:0}
body{font-family:Inter,system-ui,sans-serif;background:#121212;color:#EAEAEA;font-size:14px;line-height:1.5;padding:24px}
h1{font-size:20px;font-weight:700;margin-bottom:4px}
.dim{color:#B3B3B3;font-size:12px;margin-bottom:16px}
#plot{width:100%;height:600px;background:#1e1e1e;border-radius:8px;margin-bottom:24px}
.personas{display:grid;grid-template-columns:repeat(auto-fill,minmax(260px,1fr));gap:16px}
.persona-card{background:#1e1e1e;border:1px solid #2c2c2c;border-radius:8px;padding:16px}
.persona-card h3{font-size:16px;display:flex;align-items:center;gap:8px;margin-bottom:8px}
.color-dot{display:inline-block;width:12px;height:12px;border-radius:50%}
.persona-card ul{list-style:none;margin-top:8px}
.persona-card li span{color:#B3B3B3;margin-right:4px}
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p class="dim">Generated {{.GeneratedAt}}{{if .RunID}} · run {{.RunID}}{{end}}</p>
<div id="plot"></div>
<div class="personas">
{{range .Cards}}<div class="persona-card">
<h3><span class="color-dot" style="{{swatch .Color}}"></span>{{.Persona}}</h3>
<p>{{.Description}}</p>
<ul>
{{range .Metrics}}<li><span title="{{.Hint}}">{{.Label}}</span>{{.Value}}</li>
{{end}}</ul>
</div>
{{end}}</div>
<script>
Plotly.newPlot('plot', {{.Plot.Traces}}, {{.Plot.Layout}});
</script>
</body>
</html>
`

var reportTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"swatch": func(c string) template.CSS {
		if _, err := parseHexColor(c); err != nil {
			return ""
		}
		return template.CSS("background-color:" + c)
	},
}).Parse(tmplReport))

type reportData struct {
	Title       string
	GeneratedAt string
	RunID       string
	Plot        PlotModel
	Cards       []PersonaCard
}

// HTMLReport renders a self-contained page with the interactive 3D plot and
// the persona cards.
func HTMLReport(plot PlotModel, cards []PersonaCard, runID string, now time.Time) ([]byte, error) {
	data := reportData{
		Title:       plot.Layout.Title.Text,
		GeneratedAt: now.Format("Jan 2 2006 15:04:05"),
		RunID:       runID,
		Plot:        plot,
		Cards:       cards,
	}
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render html report: %w", err)
	}
	return buf.Bytes(), nil
}
