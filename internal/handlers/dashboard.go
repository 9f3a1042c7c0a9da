package handlers

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"

	"github.com/gorilla/mux"

	"konservasi-platform/internal/efektivitas"
	"konservasi-platform/internal/services"
	"konservasi-platform/pkg/logging"
	"konservasi-platform/pkg/metrics"
)

const noTrendData = "Tidak ada data untuk analisis trend"

var dashboardFuncs = template.FuncMap{
	"score": func(row efektivitas.PivotRow, year int) string {
		if s, ok := row.Score(year); ok {
			return fmt.Sprint(s)
		}
		return "-"
	},
	"percent": func(p *int) string {
		if p == nil {
			return "N/A"
		}
		return fmt.Sprintf("%+d%%", *p)
	},
	"signed": func(n int) string { return fmt.Sprintf("%+d", n) },
	"count": func(b efektivitas.Breakdown, c efektivitas.Category) int {
		return b[c]
	},
	"categories": func() []efektivitas.Category { return efektivitas.Categories },
}

var dashboardTemplate = template.Must(template.New("dashboard").Funcs(dashboardFuncs).Parse(`<!DOCTYPE html>
<html lang="id">
<head>
    <meta charset="UTF-8">
    <title>Efektivitas Pengelolaan Kawasan Konservasi</title>
    <style>
        body { font-family: sans-serif; margin: 2rem; color: #1f2937; }
        .cards { display: flex; gap: 1rem; flex-wrap: wrap; }
        .card { border: 1px solid #e5e7eb; border-radius: 6px; padding: 1rem; min-width: 10rem; }
        .card .value { font-size: 1.6rem; font-weight: bold; }
        table { border-collapse: collapse; margin-top: 1rem; }
        th, td { border: 1px solid #e5e7eb; padding: .35rem .6rem; text-align: left; }
        .badge { padding: .1rem .4rem; border-radius: 4px; color: #fff; }
    </style>
</head>
<body>
<h1>Efektivitas Pengelolaan Kawasan Konservasi</h1>

{{with .Statistics}}
<div class="cards">
    <div class="card"><div>Total Kawasan</div><div class="value">{{.Summary.TotalAreas}}</div></div>
    <div class="card"><div>Total Penilaian</div><div class="value">{{.Summary.TotalAssessments}}</div></div>
    <div class="card"><div>Rata-rata Skor</div><div class="value">{{printf "%.1f" .Summary.AverageScore}}</div></div>
    <div class="card"><div>Penilaian {{.Summary.CurrentYear}}</div><div class="value">{{.Summary.RecentAssessments}}</div></div>
</div>
<h2>Sebaran Kategori Tahun {{.SelectedYear}}</h2>
<table>
    <tr>{{range categories}}<th><span class="badge" style="background:{{.Color}}">{{.Label}}</span></th>{{end}}</tr>
    <tr>{{$b := .YearBreakdown}}{{range categories}}<td>{{count $b .}}</td>{{end}}</tr>
</table>
{{end}}

<h2>Matriks Efektivitas</h2>
{{if .Pivot.Rows}}
<table>
    <tr>
        <th>Kawasan</th>
        {{range .Pivot.Years}}<th>{{.}}</th>{{end}}
        <th>Skor Terakhir</th>
        <th>Kategori</th>
    </tr>
    {{$years := .Pivot.Years}}
    {{range .Pivot.Rows}}
    <tr>
        <td>{{.AreaName}}</td>
        {{$row := .}}{{range $years}}<td>{{score $row .}}</td>{{end}}
        <td>{{.LatestScore}}</td>
        <td><span class="badge" style="background:{{.Category.Color}}">{{.Label}}</span></td>
    </tr>
    {{end}}
</table>
{{else}}
<p>Belum ada kawasan terdaftar.</p>
{{end}}

<h2>Analisis Trend</h2>
{{with .Trend}}
<p>Trend keseluruhan: <strong>{{.Trend}}</strong></p>
<table>
    <tr><th>Tahun</th><th>Rata-rata</th><th>Jumlah</th><th>Kategori</th></tr>
    {{range .YearlyAverages}}
    <tr><td>{{.Year}}</td><td>{{printf "%.1f" .Average}}</td><td>{{.Count}}</td><td>{{.Category.Label}}</td></tr>
    {{end}}
</table>
<h3>Perubahan Terbesar</h3>
<table>
    <tr><th>Kawasan</th><th>Periode</th><th>Skor</th><th>Perubahan</th><th>Persen</th></tr>
    {{range .TopChanges}}
    <tr>
        <td>{{.AreaName}}</td>
        <td>{{.FirstYear}} - {{.LastYear}}</td>
        <td>{{.FirstScore}} &rarr; {{.LastScore}}</td>
        <td>{{signed .Change}}</td>
        <td>{{percent .ChangePercent}}</td>
    </tr>
    {{end}}
</table>
{{else}}
<p>` + noTrendData + `</p>
{{end}}
</body>
</html>`))

// DashboardHandler renders the server-side effectiveness dashboard
type DashboardHandler struct {
	base
	stats *services.StatisticsService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(stats *services.StatisticsService, logger *logging.StructuredLogger, metricsCollector *metrics.Collector) *DashboardHandler {
	return &DashboardHandler{
		base:  base{logger: logger, metrics: metricsCollector},
		stats: stats,
	}
}

// Dashboard handles GET /efektivitas
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	const endpoint = "/efektivitas"
	defer h.observe(endpoint)()

	year, err := queryInt(r, "year")
	if err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}

	view, err := h.stats.Dashboard(r.Context(), year)
	if err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}

	var buf bytes.Buffer
	if err := dashboardTemplate.Execute(&buf, view); err != nil {
		h.handleError(w, r, endpoint, err)
		return
	}

	h.metrics.RecordAPIRequest(endpoint, r.Method, "200")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	buf.WriteTo(w)
}

// RegisterRoutes registers the dashboard route
func (h *DashboardHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/efektivitas", h.Dashboard).Methods("GET")
}
