// Command process runs the batch pipeline: load survey points and reference
// lines, project and bin, and write the output directory the server reads.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/strandlab/shoreline/internal/config"
	"github.com/strandlab/shoreline/internal/lib/lines"
	"github.com/strandlab/shoreline/internal/pipeline"
	"github.com/strandlab/shoreline/internal/store"
	"github.com/strandlab/shoreline/internal/survey"
)

func main() {
	pointsPath := flag.String("points", "", "survey points file (overrides config)")
	outputDir := flag.String("output", "", "output directory (overrides config)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *pointsPath != "" {
		cfg.Pipeline.PointsPath = *pointsPath
	}
	if *outputDir != "" {
		cfg.Pipeline.OutputDir = *outputDir
	}
	if cfg.Pipeline.PointsPath == "" {
		log.Fatal("No points file configured; set pipeline.points_path or -points")
	}
	if cfg.Pipeline.OutputDir == "" {
		log.Fatal("No output directory configured; set pipeline.output_dir or -output")
	}

	points, err := loadPoints(cfg.Pipeline.PointsPath)
	if err != nil {
		log.Fatalf("Failed to load points: %v", err)
	}

	refLines, err := loadLines(cfg.Pipeline.Lines)
	if err != nil {
		log.Fatalf("Failed to load reference lines: %v", err)
	}

	log.Printf("Loaded %d points and %d reference lines", len(points), len(refLines))

	orch, err := pipeline.New(cfg.Engine.ToPipeline())
	if err != nil {
		log.Fatalf("Invalid engine configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := orch.Run(ctx, points, refLines)
	if err != nil {
		log.Fatalf("Pipeline run failed: %v", err)
	}

	if err := writeOutputs(cfg, result, points, refLines); err != nil {
		log.Fatalf("Failed to write outputs: %v", err)
	}

	log.Printf("Run %s complete in %v", result.RunID, result.Duration)
	log.Printf("Records: %d of %d selected lines", len(result.Records), result.SelectedLines)
	for reason, count := range result.SkipCounts() {
		log.Printf("Skipped %d lines: %s", count, reason)
	}
}

// loadPoints reads survey points from a JSON array file or a JSON-lines
// stream, detected by the first non-space byte.
func loadPoints(path string) ([]survey.GeoPoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	br := bufio.NewReader(f)
	first, err := firstNonSpace(br)
	if err != nil {
		return nil, fmt.Errorf("empty points file %s", path)
	}

	if first == '[' {
		var points []survey.GeoPoint
		if err := json.NewDecoder(br).Decode(&points); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		return points, nil
	}

	var points []survey.GeoPoint
	dec := json.NewDecoder(br)
	for {
		var p survey.GeoPoint
		if err := dec.Decode(&p); err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
		points = append(points, p)
	}
	return points, nil
}

func firstNonSpace(br *bufio.Reader) (byte, error) {
	for {
		b, err := br.ReadByte()
		if err != nil {
			return 0, err
		}
		if b == ' ' || b == '\t' || b == '\n' || b == '\r' {
			continue
		}
		if err := br.UnreadByte(); err != nil {
			return 0, err
		}
		return b, nil
	}
}

// loadLines resolves each configured source: inline encoded polylines, KML
// files, or GeoJSON files (format inferred from the extension when unset).
func loadLines(sources []config.LineSource) ([]survey.ReferenceLine, error) {
	var all []survey.ReferenceLine
	for _, src := range sources {
		if src.Encoded != "" {
			decoded, err := lines.DecodeLines([]lines.EncodedLine{src.ToEncodedLine()})
			if err != nil {
				return nil, err
			}
			all = append(all, decoded...)
			continue
		}

		format := src.Format
		if format == "" {
			switch strings.ToLower(filepath.Ext(src.Path)) {
			case ".kml":
				format = "kml"
			case ".geojson", ".json":
				format = "geojson"
			default:
				return nil, fmt.Errorf("cannot infer format for %s; set format explicitly", src.Path)
			}
		}

		f, err := os.Open(src.Path)
		if err != nil {
			return nil, err
		}

		var loaded []survey.ReferenceLine
		switch format {
		case "kml":
			loaded, err = lines.LoadKML(f, survey.LineKind(src.Kind), src.DefinitionDate, lines.Filter{})
		case "geojson":
			loaded, err = lines.LoadGeoJSON(f, survey.LineKind(src.Kind))
		}
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", src.Path, err)
		}
		all = append(all, loaded...)
	}
	return all, nil
}

func writeOutputs(cfg *config.Config, result *pipeline.Result, points []survey.GeoPoint, refLines []survey.ReferenceLine) error {
	s := store.New(cfg.Pipeline.OutputDir, 0)

	fingerprint, err := s.WriteRecords(result.Records)
	if err != nil {
		return err
	}

	if err := s.WriteSummary(survey.Summarize(points, refLines)); err != nil {
		return err
	}

	lineInfos := make([]store.LineInfo, 0, len(refLines))
	for _, line := range refLines {
		lineInfos = append(lineInfos, store.LineInfo{
			ID:              line.ID,
			Kind:            string(line.Kind),
			DefinitionDate:  line.DefinitionDate,
			EncodedPolyline: lines.EncodeLine(line),
			LengthMeters:    survey.RoundTo(line.LengthMeters(), 2),
		})
	}
	if err := s.WriteLines(lineInfos); err != nil {
		return err
	}

	skipped := make(map[string]int)
	for reason, count := range result.SkipCounts() {
		skipped[string(reason)] = count
	}
	if err := s.WriteManifest(store.Manifest{
		RunID:       result.RunID,
		GeneratedAt: result.StartedAt,
		Fingerprint: fingerprint,
		RecordCount: len(result.Records),
		PointCount:  result.PointCount,
		LineCount:   result.LineCount,
		Skipped:     skipped,
		Duration:    result.Duration.String(),
	}); err != nil {
		return err
	}

	if cfg.Pipeline.WriteKML {
		f, err := os.Create(filepath.Join(cfg.Pipeline.OutputDir, "lines.kml"))
		if err != nil {
			return err
		}
		defer f.Close()
		if err := lines.WriteKML(f, refLines); err != nil {
			return fmt.Errorf("failed to write KML export: %w", err)
		}
	}
	return nil
}
