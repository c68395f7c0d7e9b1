// Command test-projection is a manual verification harness for the geometry
// and binning primitives. Not part of the pipeline; useful for sanity-checking
// numbers against survey field notes.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/strandlab/shoreline/internal/lib/geo"
	"github.com/strandlab/shoreline/internal/lib/profile"
	"github.com/strandlab/shoreline/internal/lib/projection"
	"github.com/strandlab/shoreline/internal/survey"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "segment-distance":
		handleSegmentDistance()
	case "project":
		handleProject()
	case "bin":
		handleBin()
	case "help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func handleSegmentDistance() {
	fs := flag.NewFlagSet("segment-distance", flag.ExitOnError)
	lat := fs.Float64("lat", 0, "Latitude of point")
	lng := fs.Float64("lng", 0, "Longitude of point")
	segment := fs.String("segment", "", "Segment as \"lat1,lng1;lat2,lng2\"")
	refLat := fs.Float64("ref-lat", 33.2, "Reference latitude for the planar frame")

	fs.Parse(os.Args[2:])

	if *segment == "" {
		fmt.Println("Example usage:")
		fmt.Println("  test-projection segment-distance --lat 33.1905 --lng -117.3799 --segment \"33.1900,-117.38;33.1909,-117.38\"")
		os.Exit(1)
	}

	vertices, err := parseCoordinatePairs(*segment)
	if err != nil {
		log.Fatalf("Error parsing segment: %v", err)
	}
	if len(vertices) != 2 {
		log.Fatalf("Segment needs exactly 2 vertices, got %d", len(vertices))
	}

	frame, err := geo.NewFrame(*refLat)
	if err != nil {
		log.Fatalf("Error building frame: %v", err)
	}

	point := geo.Point{Latitude: *lat, Longitude: *lng}
	result := frame.PointToSegment(point, vertices[0], vertices[1])

	fmt.Printf("Point to segment:\n")
	fmt.Printf("  Point: (%.6f, %.6f)\n", point.Latitude, point.Longitude)
	fmt.Printf("  Segment: (%.6f, %.6f) to (%.6f, %.6f)\n",
		vertices[0].Latitude, vertices[0].Longitude,
		vertices[1].Latitude, vertices[1].Longitude)
	fmt.Printf("  Perpendicular distance: %.3f meters\n", result.DistanceMeters)
	fmt.Printf("  Projection parameter t: %.4f\n", result.T)
	fmt.Printf("  Along-segment distance: %.3f meters\n", result.AlongMeters)
}

func handleProject() {
	fs := flag.NewFlagSet("project", flag.ExitOnError)
	lat := fs.Float64("lat", 0, "Latitude of point")
	lng := fs.Float64("lng", 0, "Longitude of point")
	lineStr := fs.String("line", "", "Polyline as \"lat1,lng1;lat2,lng2;...\"")
	buffer := fs.Float64("buffer", 1.0, "Inclusion buffer in meters")
	refLat := fs.Float64("ref-lat", 33.2, "Reference latitude for the planar frame")

	fs.Parse(os.Args[2:])

	if *lineStr == "" {
		fmt.Println("Example usage:")
		fmt.Println("  test-projection project --lat 33.1905 --lng -117.38 --line \"33.1900,-117.38;33.1909,-117.38\" --buffer 1.0")
		os.Exit(1)
	}

	vertices, err := parseCoordinatePairs(*lineStr)
	if err != nil {
		log.Fatalf("Error parsing line: %v", err)
	}

	frame, err := geo.NewFrame(*refLat)
	if err != nil {
		log.Fatalf("Error building frame: %v", err)
	}

	line := survey.ReferenceLine{ID: "manual", Kind: survey.LineKindTransect, Vertices: vertices}
	point := survey.GeoPoint{Latitude: *lat, Longitude: *lng}

	projector := projection.NewProjector(frame, *buffer)
	proj, ok := projector.Project(point, line)

	fmt.Printf("Projection onto %d-vertex line (buffer %.1fm):\n", len(vertices), *buffer)
	fmt.Printf("  Point: (%.6f, %.6f)\n", point.Latitude, point.Longitude)
	fmt.Printf("  Line length: %.2f meters\n", line.LengthMeters())
	if !ok {
		fmt.Printf("  Result: REJECTED (outside buffer or degenerate line)\n")
		return
	}
	fmt.Printf("  Result: ACCEPTED\n")
	fmt.Printf("  Perpendicular distance: %.3f meters\n", proj.PerpDistanceMeters)
	fmt.Printf("  Along-line distance: %.3f meters\n", proj.AlongLineMeters)
}

func handleBin() {
	fs := flag.NewFlagSet("bin", flag.ExitOnError)
	samples := fs.String("samples", "", "Samples as \"along:elev,along:elev,...\"")
	binWidth := fs.Float64("bin-width", 0.5, "Bin width in meters")
	minBins := fs.Int("min-bins", 1, "Minimum non-empty bins to keep a date")

	fs.Parse(os.Args[2:])

	if *samples == "" {
		fmt.Println("Example usage:")
		fmt.Println("  test-projection bin --samples \"0.1:2.5,0.4:2.4,1.2:2.1,1.9:1.8\" --bin-width 0.5")
		os.Exit(1)
	}

	var projections []survey.Projection
	for _, sample := range strings.Split(*samples, ",") {
		parts := strings.Split(strings.TrimSpace(sample), ":")
		if len(parts) != 2 {
			log.Fatalf("Invalid sample: %s", sample)
		}
		along, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			log.Fatalf("Invalid along-line distance: %s", parts[0])
		}
		elev, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			log.Fatalf("Invalid elevation: %s", parts[1])
		}
		projections = append(projections, survey.Projection{
			AlongLineMeters: along,
			Elevation:       elev,
			SurveyDate:      "manual",
		})
	}

	agg := profile.NewAggregator(*binWidth, *minBins)
	profiles := agg.Aggregate(projections, 0)

	prof, ok := profiles["manual"]
	if !ok {
		fmt.Printf("No profile: fewer than %d non-empty bins\n", *minBins)
		return
	}

	fmt.Printf("Binned profile (%d samples, %.2fm bins):\n", len(projections), *binWidth)
	for i := range prof.Distances {
		fmt.Printf("  %6.2fm  ->  %7.3fm elevation\n", prof.Distances[i], prof.Elevations[i])
	}
}

func printUsage() {
	fmt.Printf(`test-projection - Projection and binning verification tool

USAGE:
    test-projection <command> [options]

COMMANDS:
    segment-distance    Point-to-segment distance in the planar frame
    project             Project a point onto a polyline with buffer semantics
    bin                 Bin along:elevation samples into a profile
    help                Show this help message

EXAMPLES:
    # Perpendicular distance from a point to a transect segment
    test-projection segment-distance --lat 33.1905 --lng -117.3799 --segment "33.1900,-117.38;33.1909,-117.38"

    # Full projection with the 1m inclusion buffer
    test-projection project --lat 33.1905 --lng -117.38 --line "33.1900,-117.38;33.1909,-117.38"

    # Bin a handful of samples
    test-projection bin --samples "0.1:2.5,0.4:2.4,1.2:2.1" --bin-width 0.5
`)
}

// parseCoordinatePairs parses "lat,lng;lat,lng;..." strings.
func parseCoordinatePairs(coordStr string) ([]geo.Point, error) {
	if coordStr == "" {
		return nil, fmt.Errorf("empty coordinate string")
	}

	pairs := strings.Split(coordStr, ";")
	points := make([]geo.Point, 0, len(pairs))

	for _, pair := range pairs {
		coords := strings.Split(strings.TrimSpace(pair), ",")
		if len(coords) != 2 {
			return nil, fmt.Errorf("invalid coordinate pair: %s", pair)
		}

		lat, err := strconv.ParseFloat(strings.TrimSpace(coords[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid latitude: %s", coords[0])
		}

		lng, err := strconv.ParseFloat(strings.TrimSpace(coords[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid longitude: %s", coords[1])
		}

		points = append(points, geo.Point{Latitude: lat, Longitude: lng})
	}

	return points, nil
}
