package lines

import (
	"fmt"

	"github.com/twpayne/go-polyline"

	"github.com/strandlab/shoreline/internal/lib/geo"
	"github.com/strandlab/shoreline/internal/survey"
)

// EncodedLine is a reference line supplied inline in configuration as a
// Google encoded polyline rather than a geometry file.
type EncodedLine struct {
	ID             string `yaml:"id" json:"id" validate:"required"`
	Kind           string `yaml:"kind" json:"kind" validate:"required,oneof=transect mop"`
	DefinitionDate string `yaml:"definition_date" json:"definition_date"`
	Encoded        string `yaml:"encoded" json:"encoded" validate:"required"`
}

// DecodeLines expands config-supplied encoded polylines into reference lines.
func DecodeLines(encoded []EncodedLine) ([]survey.ReferenceLine, error) {
	result := make([]survey.ReferenceLine, 0, len(encoded))
	for _, e := range encoded {
		coords, _, err := polyline.DecodeCoords([]byte(e.Encoded))
		if err != nil {
			return nil, fmt.Errorf("line %q: failed to decode polyline: %w", e.ID, err)
		}
		if len(coords) < 2 {
			return nil, fmt.Errorf("line %q: polyline has fewer than 2 vertices", e.ID)
		}
		vertices := make([]geo.Point, len(coords))
		for i, c := range coords {
			vertices[i] = geo.Point{Latitude: c[0], Longitude: c[1]}
			if !geo.IsValidCoordinate(vertices[i]) {
				return nil, fmt.Errorf("line %q: coordinate out of range", e.ID)
			}
		}
		result = append(result, survey.ReferenceLine{
			ID:             e.ID,
			Kind:           survey.LineKind(e.Kind),
			DefinitionDate: e.DefinitionDate,
			Vertices:       vertices,
		})
	}
	return result, nil
}

// EncodeLine renders a reference line's vertices as an encoded polyline,
// the compact form the read API serves geometry in.
func EncodeLine(line survey.ReferenceLine) string {
	coords := make([][]float64, len(line.Vertices))
	for i, v := range line.Vertices {
		coords[i] = []float64{v.Latitude, v.Longitude}
	}
	return string(polyline.EncodeCoords(coords))
}
