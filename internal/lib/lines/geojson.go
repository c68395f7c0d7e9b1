package lines

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/strandlab/shoreline/internal/lib/geo"
	"github.com/strandlab/shoreline/internal/survey"
)

type geoJSONCollection struct {
	Type     string           `json:"type"`
	Features []geoJSONFeature `json:"features"`
}

type geoJSONFeature struct {
	Type       string          `json:"type"`
	Geometry   geoJSONGeometry `json:"geometry"`
	Properties struct {
		TransectID string `json:"transect_id"`
		SurveyDate string `json:"survey_date"`
	} `json:"properties"`
}

type geoJSONGeometry struct {
	Type        string      `json:"type"`
	Coordinates [][]float64 `json:"coordinates"`
}

// LoadGeoJSON reads a FeatureCollection of LineString transects. Each feature
// carries transect_id and survey_date properties; coordinates are
// [lon, lat(, elevation)] per GeoJSON convention. Features that are not
// LineStrings, have fewer than two vertices, or carry malformed coordinates
// are skipped rather than failing the batch.
func LoadGeoJSON(r io.Reader, kind survey.LineKind) ([]survey.ReferenceLine, error) {
	var collection geoJSONCollection
	if err := json.NewDecoder(r).Decode(&collection); err != nil {
		return nil, fmt.Errorf("failed to parse GeoJSON: %w", err)
	}
	if collection.Type != "FeatureCollection" {
		return nil, fmt.Errorf("expected FeatureCollection, got %q", collection.Type)
	}

	var result []survey.ReferenceLine
	for _, feature := range collection.Features {
		if feature.Geometry.Type != "LineString" {
			continue
		}
		if len(feature.Geometry.Coordinates) < 2 {
			continue
		}
		if feature.Properties.TransectID == "" {
			continue
		}

		vertices := make([]geo.Point, 0, len(feature.Geometry.Coordinates))
		for _, coord := range feature.Geometry.Coordinates {
			if len(coord) < 2 {
				vertices = nil
				break
			}
			p := geo.Point{Latitude: coord[1], Longitude: coord[0]}
			if !geo.IsValidCoordinate(p) {
				vertices = nil
				break
			}
			vertices = append(vertices, p)
		}
		// Malformed geometry drops the feature, not the batch.
		if len(vertices) < 2 {
			continue
		}

		result = append(result, survey.ReferenceLine{
			ID:             feature.Properties.TransectID,
			Kind:           kind,
			DefinitionDate: feature.Properties.SurveyDate,
			Vertices:       vertices,
		})
	}
	return result, nil
}
