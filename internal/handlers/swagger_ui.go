package handlers

import (
	"html/template"
	"net/http"
)

// swaggerAssets is the CDN root of the pinned swagger-ui-dist release
const swaggerAssets = "https://unpkg.com/swagger-ui-dist@5.10.0"

type swaggerPage struct {
	Title   string
	Version string
	SpecURL string
	Assets  string
}

var swaggerTemplate = template.Must(template.New("swagger").Parse(`<!DOCTYPE html>
<html lang="id">
<head>
<meta charset="UTF-8">
<title>{{.Title}} {{.Version}}</title>
<link rel="stylesheet" href="{{.Assets}}/swagger-ui.css">
<style>body { margin: 0; } .topbar { display: none; }</style>
</head>
<body>
<div id="swagger-ui"></div>
<script src="{{.Assets}}/swagger-ui-bundle.js"></script>
<script>
window.ui = SwaggerUIBundle({
  url: {{.SpecURL}},
  dom_id: "#swagger-ui",
  deepLinking: true,
  docExpansion: "list",
  tagsSorter: "alpha",
  presets: [SwaggerUIBundle.presets.apis]
});
</script>
</body>
</html>`))

// SwaggerUI serves an interactive page for the document at openAPIPath
func SwaggerUI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	swaggerTemplate.Execute(w, swaggerPage{
		Title:   apiTitle,
		Version: apiVersion,
		SpecURL: openAPIPath,
		Assets:  swaggerAssets,
	})
}
