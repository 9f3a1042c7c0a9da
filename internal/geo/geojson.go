// Package geo handles area boundaries: GeoJSON parsing and the map layer,
// shapefile ingest and the map style configuration.
package geo

import (
	"encoding/json"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"konservasi-platform/internal/efektivitas"
	"konservasi-platform/internal/models"
)

// ErrNotPolygonal is returned for boundaries that are not (multi)polygons
var ErrNotPolygonal = eris.New("boundary must be a Polygon or MultiPolygon")

// ParseBoundary decodes a GeoJSON geometry (or a Feature wrapping one) and
// normalises it to a MultiPolygon
func ParseBoundary(data []byte) (*geom.MultiPolygon, error) {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, eris.Wrap(err, "invalid GeoJSON")
	}

	var g geom.T
	if envelope.Type == "Feature" {
		var f geojson.Feature
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, eris.Wrap(err, "invalid GeoJSON feature")
		}
		g = f.Geometry
	} else {
		if err := geojson.Unmarshal(data, &g); err != nil {
			return nil, eris.Wrap(err, "invalid GeoJSON geometry")
		}
	}

	return toMultiPolygon(g)
}

func toMultiPolygon(g geom.T) (*geom.MultiPolygon, error) {
	switch t := g.(type) {
	case *geom.MultiPolygon:
		if t.NumPolygons() == 0 {
			return nil, ErrNotPolygonal
		}
		return t, nil
	case *geom.Polygon:
		if t.NumLinearRings() == 0 {
			return nil, ErrNotPolygonal
		}
		mp := geom.NewMultiPolygon(t.Layout())
		if err := mp.Push(t); err != nil {
			return nil, eris.Wrap(err, "failed to build multipolygon")
		}
		return mp, nil
	default:
		return nil, ErrNotPolygonal
	}
}

// EncodeBoundary renders a boundary as a GeoJSON geometry string for storage
func EncodeBoundary(mp *geom.MultiPolygon) (string, error) {
	data, err := geojson.Marshal(mp)
	if err != nil {
		return "", eris.Wrap(err, "failed to encode boundary")
	}
	return string(data), nil
}

// NormalizeBoundary validates raw GeoJSON and returns the stored representation
func NormalizeBoundary(data []byte) (string, error) {
	mp, err := ParseBoundary(data)
	if err != nil {
		return "", err
	}
	return EncodeBoundary(mp)
}

// LayerResult is the map layer plus the areas that could not be drawn
type LayerResult struct {
	Collection *geojson.FeatureCollection
	Skipped    []int64
}

// AreaLayer builds a FeatureCollection of every area with a stored boundary,
// coloured by its latest effectiveness category
func AreaLayer(areas []models.Area, rows []efektivitas.PivotRow, style *Style) LayerResult {
	latest := make(map[int64]efektivitas.PivotRow, len(rows))
	for _, r := range rows {
		latest[r.AreaID] = r
	}

	result := LayerResult{Collection: &geojson.FeatureCollection{Features: []*geojson.Feature{}}}
	for _, a := range areas {
		if !a.HasBoundary() {
			continue
		}

		mp, err := ParseBoundary([]byte(*a.Boundary))
		if err != nil {
			result.Skipped = append(result.Skipped, a.ID)
			continue
		}

		row, ok := latest[a.ID]
		if !ok {
			row = efektivitas.PivotRow{Category: efektivitas.NotAssessed}
		}

		props := map[string]interface{}{
			"id":                     a.ID,
			"name":                   a.Name,
			"category":               string(a.Category),
			"latest_score":           row.LatestScore,
			"effectiveness_category": string(row.Category),
			"effectiveness_label":    row.Category.Label(),
			"fill":                   style.FillFor(row.Category),
		}
		if a.RegistrationNo != nil {
			props["NOREGKK"] = *a.RegistrationNo
		}
		if row.LatestYear != 0 {
			props["latest_year"] = row.LatestYear
		}

		result.Collection.Features = append(result.Collection.Features, &geojson.Feature{
			ID:         strconv.FormatInt(a.ID, 10),
			Geometry:   mp,
			Properties: props,
		})
	}

	return result
}
