package handlers

import (
	"encoding/json"
	"net/http"
)

const (
	apiTitle       = "Konservasi Platform API"
	apiDescription = "Conservation area registry and management effectiveness assessment"
	apiVersion     = "1.0.0"
	docsPath       = "/api/docs"
	openAPIPath    = docsPath + "/openapi.json"
)

type apiParam struct {
	name, in, typ, description string
	required                   bool
}

func queryParam(name, typ, description string) apiParam {
	return apiParam{name: name, in: "query", typ: typ, description: description}
}

func pathParam(name, description string) apiParam {
	return apiParam{name: name, in: "path", typ: "integer", description: description, required: true}
}

// operation builds one OpenAPI operation object
func operation(tag, summary string, responses map[string]string, params ...apiParam) map[string]interface{} {
	op := map[string]interface{}{
		"tags":    []string{tag},
		"summary": summary,
	}

	if len(params) > 0 {
		list := make([]map[string]interface{}, 0, len(params))
		for _, p := range params {
			list = append(list, map[string]interface{}{
				"name":        p.name,
				"in":          p.in,
				"description": p.description,
				"required":    p.required,
				"schema":      map[string]string{"type": p.typ},
			})
		}
		op["parameters"] = list
	}

	resp := make(map[string]interface{}, len(responses))
	for code, desc := range responses {
		resp[code] = map[string]string{"description": desc}
	}
	op["responses"] = resp
	return op
}

var (
	respOK          = map[string]string{"200": "Successful response", "500": "Internal server error"}
	respOKOrMissing = map[string]string{"200": "Successful response", "404": "Not found", "500": "Internal server error"}
	respCreated     = map[string]string{"201": "Created", "400": "Validation failed", "404": "Area not found"}
	respUpdated     = map[string]string{"200": "Updated", "400": "Validation failed", "404": "Not found"}
	respDeleted     = map[string]string{"204": "Deleted", "404": "Not found"}
	respUploaded    = map[string]string{"200": "Validated records and counts", "400": "Unreadable file", "429": "Rate limited"}
)

// OpenAPISpec returns the OpenAPI 3.0 specification for the Konservasi Platform API
func OpenAPISpec(w http.ResponseWriter, r *http.Request) {
	areaID := pathParam("id", "Area ID")
	recordKind := apiParam{name: "kind", in: "path", typ: "string", required: true, description: "sk-documents, blocks, biodiversity, rpjp, ecosystems, land-cover, open-areas, important-values or surveys"}
	year := queryParam("year", "integer", "Assessment year (2000-2030)")
	area := queryParam("area_id", "integer", "Filter by area ID")

	spec := map[string]interface{}{
		"openapi": "3.0.0",
		"info": map[string]interface{}{
			"title":       apiTitle,
			"description": apiDescription,
			"version":     apiVersion,
			"contact": map[string]string{
				"name": "Konservasi Platform Team",
			},
		},
		"servers": []map[string]string{
			{"url": "http://localhost:8080", "description": "Local development server"},
		},
		"paths": map[string]interface{}{
			"/health": map[string]interface{}{
				"get": operation("System", "Health check", map[string]string{"200": "Healthy", "503": "Database unreachable"}),
			},
			"/api/areas": map[string]interface{}{
				"get":  operation("Areas", "List conservation areas", respOK, queryParam("search", "string", "Case-insensitive name filter")),
				"post": operation("Areas", "Register an area", map[string]string{"201": "Created", "400": "Validation failed", "409": "Name already registered"}),
			},
			"/api/areas/{id}": map[string]interface{}{
				"get":    operation("Areas", "Get an area", respOKOrMissing, areaID),
				"put":    operation("Areas", "Update an area", respUpdated, areaID),
				"delete": operation("Areas", "Delete an area with its assessments and records", respDeleted, areaID),
			},
			"/api/areas/{id}/overview": map[string]interface{}{
				"get": operation("Areas", "Area with record counts", respOKOrMissing, areaID),
			},
			"/api/areas/{id}/boundary": map[string]interface{}{
				"put": operation("Map", "Store a GeoJSON Polygon or MultiPolygon boundary", map[string]string{"204": "Stored", "400": "Not a polygon", "404": "Not found"}, areaID),
			},
			"/api/areas/{id}/{kind}": map[string]interface{}{
				"get":  operation("Records", "List an area's records", respOKOrMissing, areaID, recordKind),
				"post": operation("Records", "Attach a record to an area", respCreated, areaID, recordKind),
			},
			"/api/records/{kind}/{id}": map[string]interface{}{
				"delete": operation("Records", "Delete a record", respDeleted, recordKind, pathParam("id", "Record ID")),
			},
			"/api/efektivitas": map[string]interface{}{
				"get":  operation("Efektivitas", "List assessments, newest year first", respOK, area, year),
				"post": operation("Efektivitas", "Record an assessment", respCreated),
			},
			"/api/efektivitas/{id}": map[string]interface{}{
				"put":    operation("Efektivitas", "Update an assessment", respUpdated, pathParam("id", "Assessment ID")),
				"delete": operation("Efektivitas", "Delete an assessment", respDeleted, pathParam("id", "Assessment ID")),
			},
			"/api/efektivitas/pivot": map[string]interface{}{
				"get": operation("Efektivitas", "Area by year score matrix", respOK),
			},
			"/api/efektivitas/trend": map[string]interface{}{
				"get": operation("Efektivitas", "Yearly averages, overall direction and largest changes", respOK, area, year),
			},
			"/api/efektivitas/statistics": map[string]interface{}{
				"get": operation("Efektivitas", "Summary statistics and category breakdown of a year", respOK, year),
			},
			"/api/efektivitas/export": map[string]interface{}{
				"get": operation("Efektivitas", "Download assessments as CSV or XLSX",
					map[string]string{"200": "File download", "400": "Invalid format or scope"},
					queryParam("format", "string", "csv (default) or xlsx"),
					queryParam("scope", "string", "all (default), year or area"),
					year, area,
				),
			},
			"/api/efektivitas/import/template": map[string]interface{}{
				"get": operation("Import", "Download the CSV import template", respOK),
			},
			"/api/efektivitas/import/preview": map[string]interface{}{
				"post": operation("Import", "Validate an uploaded CSV or XLSX file without storing it", respUploaded),
			},
			"/api/efektivitas/import": map[string]interface{}{
				"post": operation("Import", "Validate an uploaded file and store its valid rows", respUploaded),
			},
			"/api/map/areas.geojson": map[string]interface{}{
				"get": operation("Map", "FeatureCollection of areas coloured by latest category", respOK),
			},
			"/api/map/style": map[string]interface{}{
				"get": operation("Map", "Map style", respOK),
			},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(spec)
}
