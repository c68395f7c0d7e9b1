package lines

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	kml "github.com/twpayne/go-kml/v2"

	"github.com/strandlab/shoreline/internal/lib/geo"
	"github.com/strandlab/shoreline/internal/survey"
)

// kmlDocument mirrors the subset of KML that monitoring-line files use:
// Placemarks carrying LineString geometry, possibly nested in Folders.
type kmlDocument struct {
	XMLName    xml.Name       `xml:"kml"`
	Document   kmlContainer   `xml:"Document"`
	Placemarks []kmlPlacemark `xml:"Placemark"`
}

type kmlContainer struct {
	Folders    []kmlContainer `xml:"Folder"`
	Placemarks []kmlPlacemark `xml:"Placemark"`
}

type kmlPlacemark struct {
	Name       string   `xml:"name"`
	LineString *kmlLine `xml:"LineString"`
}

type kmlLine struct {
	Coordinates string `xml:"coordinates"`
}

// LoadKML reads Placemark LineStrings from a KML stream and returns them as
// reference lines of the given kind. Placemark names become line IDs (spaces
// replaced with underscores, the convention monitoring-line names follow).
// Placemarks without LineString geometry, with fewer than two vertices, or
// with malformed coordinates are skipped rather than failing the batch.
// Duplicate names keep the first occurrence.
func LoadKML(r io.Reader, kind survey.LineKind, definitionDate string, filter Filter) ([]survey.ReferenceLine, error) {
	var doc kmlDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse KML: %w", err)
	}

	var placemarks []kmlPlacemark
	placemarks = append(placemarks, doc.Placemarks...)
	placemarks = append(placemarks, collectPlacemarks(doc.Document)...)

	seen := make(map[string]struct{})
	var result []survey.ReferenceLine
	for _, pm := range placemarks {
		if pm.LineString == nil {
			continue
		}
		vertices, err := parseKMLCoordinates(pm.LineString.Coordinates)
		if err != nil {
			// Malformed geometry drops the placemark, not the batch.
			continue
		}
		if len(vertices) < 2 {
			continue
		}
		if !filter.accepts(vertices[0].Longitude, vertices[0].Latitude) {
			continue
		}

		id := strings.ReplaceAll(strings.TrimSpace(pm.Name), " ", "_")
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		result = append(result, survey.ReferenceLine{
			ID:             id,
			Kind:           kind,
			DefinitionDate: definitionDate,
			Vertices:       vertices,
		})
	}
	return result, nil
}

func collectPlacemarks(c kmlContainer) []kmlPlacemark {
	out := append([]kmlPlacemark(nil), c.Placemarks...)
	for _, folder := range c.Folders {
		out = append(out, collectPlacemarks(folder)...)
	}
	return out
}

// parseKMLCoordinates parses the whitespace-separated lon,lat[,alt] tuples
// inside a <coordinates> element.
func parseKMLCoordinates(s string) ([]geo.Point, error) {
	var vertices []geo.Point
	for _, tuple := range strings.Fields(s) {
		parts := strings.Split(tuple, ",")
		if len(parts) < 2 {
			return nil, fmt.Errorf("malformed coordinate tuple %q", tuple)
		}
		lon, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return nil, fmt.Errorf("malformed longitude %q: %w", parts[0], err)
		}
		lat, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return nil, fmt.Errorf("malformed latitude %q: %w", parts[1], err)
		}
		p := geo.Point{Latitude: lat, Longitude: lon}
		if !geo.IsValidCoordinate(p) {
			return nil, fmt.Errorf("coordinate out of range: %q", tuple)
		}
		vertices = append(vertices, p)
	}
	return vertices, nil
}

// WriteKML emits reference lines as a KML document, one Placemark LineString
// per line, for inspection in GIS tools alongside the source monitoring-line
// files.
func WriteKML(w io.Writer, refLines []survey.ReferenceLine) error {
	doc := kml.Document()
	for _, line := range refLines {
		coords := make([]kml.Coordinate, len(line.Vertices))
		for i, v := range line.Vertices {
			coords[i] = kml.Coordinate{Lon: v.Longitude, Lat: v.Latitude}
		}
		doc.Add(kml.Placemark(
			kml.Name(line.ID),
			kml.Description(fmt.Sprintf("kind=%s defined=%s", line.Kind, line.DefinitionDate)),
			kml.LineString(kml.Coordinates(coords...)),
		))
	}
	return kml.KML(doc).WriteIndent(w, "", "  ")
}
