package geo

import (
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// ShapeBoundary is one polygon record read from a shapefile
type ShapeBoundary struct {
	RegistrationNo string
	Attributes     map[string]string
	Geometry       *geom.MultiPolygon
}

// ShapefileResult holds the usable records and the count of skipped ones
type ShapefileResult struct {
	Boundaries []ShapeBoundary
	Skipped    int
}

// ReadShapefile loads polygon records from a .shp file. keyField names the
// attribute holding the area registration number; records without it or
// without a polygon geometry are skipped.
func ReadShapefile(path, keyField string) (*ShapefileResult, error) {
	reader, err := shp.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	names := make([]string, len(fields))
	keyIdx := -1
	for i, f := range fields {
		names[i] = strings.TrimRight(f.String(), "\x00")
		if strings.EqualFold(names[i], keyField) {
			keyIdx = i
		}
	}
	if keyIdx < 0 {
		return nil, eris.Errorf("shapefile has no %s attribute", keyField)
	}

	result := &ShapefileResult{}
	for reader.Next() {
		_, shape := reader.Shape()

		attrs := make(map[string]string, len(names))
		for i, name := range names {
			attrs[name] = strings.TrimSpace(strings.TrimRight(reader.Attribute(i), "\x00"))
		}

		key := attrs[names[keyIdx]]
		poly, ok := shape.(*shp.Polygon)
		if key == "" || !ok {
			result.Skipped++
			continue
		}

		mp := polygonToMultiPolygon(poly)
		if mp == nil {
			result.Skipped++
			continue
		}

		result.Boundaries = append(result.Boundaries, ShapeBoundary{
			RegistrationNo: key,
			Attributes:     attrs,
			Geometry:       mp,
		})
	}

	return result, nil
}

// polygonToMultiPolygon converts each shapefile part into its own polygon
func polygonToMultiPolygon(p *shp.Polygon) *geom.MultiPolygon {
	if p == nil || p.NumParts == 0 || len(p.Points) == 0 {
		return nil
	}

	mp := geom.NewMultiPolygon(geom.XY)
	for i := int32(0); i < p.NumParts; i++ {
		start := p.Parts[i]
		end := int32(len(p.Points))
		if i+1 < p.NumParts {
			end = p.Parts[i+1]
		}

		flat := make([]float64, 0, 2*(end-start))
		for j := start; j < end; j++ {
			flat = append(flat, p.Points[j].X, p.Points[j].Y)
		}

		poly := geom.NewPolygon(geom.XY)
		if err := poly.Push(geom.NewLinearRingFlat(geom.XY, flat)); err != nil {
			continue
		}
		if err := mp.Push(poly); err != nil {
			continue
		}
	}

	if mp.NumPolygons() == 0 {
		return nil
	}
	return mp
}
