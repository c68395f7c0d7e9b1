// Package config defines the engine, pipeline, and server configuration.
// Values load from prefab.yaml (or PF__ env vars) through the prefab config
// system and are validated before anything runs.
package config

import (
	"fmt"
	"math"
	"time"

	"github.com/dpup/prefab"
	"github.com/go-playground/validator/v10"

	"github.com/strandlab/shoreline/internal/lib/lines"
	"github.com/strandlab/shoreline/internal/pipeline"
)

// maxGridRadiusCells bounds how far the grid index may need to widen its
// neighborhood to cover the buffer. Past this the cell size is misconfigured.
const maxGridRadiusCells = 100

// Config is the complete application configuration.
type Config struct {
	Engine   EngineConfig   `yaml:"engine"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Server   ServerConfig   `yaml:"server"`
}

// EngineConfig tunes the projection and binning engine.
type EngineConfig struct {
	BufferMeters        float64 `yaml:"buffer_meters" validate:"gt=0"`
	BinWidthMeters      float64 `yaml:"bin_width_meters" validate:"gt=0"`
	MinBinsPerDate      int     `yaml:"min_bins_per_date" validate:"gte=1"`
	MinDateCoverage     int     `yaml:"min_date_coverage" validate:"gte=1"`
	MinMOPDateCoverage  int     `yaml:"min_mop_date_coverage" validate:"gte=1"`
	GridCellSizeDegrees float64 `yaml:"grid_cell_size_degrees" validate:"gt=0"`
	ReferenceLatitude   float64 `yaml:"reference_latitude" validate:"gte=-90,lte=90"`
	MaxReferenceLines   int     `yaml:"max_reference_lines" validate:"gte=0"`
	Workers             int     `yaml:"workers" validate:"gte=0"`
}

// LineSource names one reference-line input: a geometry file or an inline
// encoded polyline.
type LineSource struct {
	ID             string `yaml:"id" validate:"required_with=Encoded"`
	Path           string `yaml:"path" validate:"required_without=Encoded"`
	Format         string `yaml:"format" validate:"omitempty,oneof=kml geojson"`
	Kind           string `yaml:"kind" validate:"required,oneof=transect mop"`
	DefinitionDate string `yaml:"definition_date"`
	Encoded        string `yaml:"encoded" validate:"required_without=Path,excluded_with=Path"`
}

// PipelineConfig names the batch run's inputs and outputs.
type PipelineConfig struct {
	PointsPath string       `yaml:"points_path"`
	Lines      []LineSource `yaml:"lines" validate:"dive"`
	OutputDir  string       `yaml:"output_dir"`
	WriteKML   bool         `yaml:"write_kml"`
}

// ServerConfig tunes the read-only HTTP server.
type ServerConfig struct {
	DataDir        string        `yaml:"data_dir"`
	ReloadInterval time.Duration `yaml:"reload_interval" validate:"gte=0"`
}

// Default returns the engine defaults the field surveys were processed with.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			BufferMeters:        1.0,
			BinWidthMeters:      0.5,
			MinBinsPerDate:      5,
			MinDateCoverage:     2,
			MinMOPDateCoverage:  1,
			GridCellSizeDegrees: 0.0001,
			ReferenceLatitude:   33.2,
		},
		Server: ServerConfig{
			DataDir:        "data",
			ReloadInterval: 5 * time.Minute,
		},
	}
}

// Load reads configuration from the prefab config system over the defaults.
func Load() (*Config, error) {
	cfg := Default()
	if err := prefab.Config.Unmarshal("engine", &cfg.Engine); err != nil {
		return nil, fmt.Errorf("failed to unmarshal engine section: %w", err)
	}
	if err := prefab.Config.Unmarshal("pipeline", &cfg.Pipeline); err != nil {
		return nil, fmt.Errorf("failed to unmarshal pipeline section: %w", err)
	}
	if err := prefab.Config.Unmarshal("server", &cfg.Server); err != nil {
		return nil, fmt.Errorf("failed to unmarshal server section: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate applies struct-tag validation plus the grid coverage constraint:
// the cell size must be able to cover the buffer within a sane neighborhood
// radius at the configured latitude.
func (c *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(c.Engine); err != nil {
		return fmt.Errorf("invalid engine config: %w", err)
	}
	for i, src := range c.Pipeline.Lines {
		if err := v.Struct(src); err != nil {
			return fmt.Errorf("invalid line source %d: %w", i, err)
		}
	}
	if err := v.Struct(c.Server); err != nil {
		return fmt.Errorf("invalid server config: %w", err)
	}

	lonScale := 110574 * math.Cos(c.Engine.ReferenceLatitude*math.Pi/180)
	cellMeters := c.Engine.GridCellSizeDegrees * lonScale
	if cellMeters <= 0 || c.Engine.BufferMeters/cellMeters > maxGridRadiusCells {
		return fmt.Errorf("grid cell size %v deg cannot cover buffer %vm at latitude %v",
			c.Engine.GridCellSizeDegrees, c.Engine.BufferMeters, c.Engine.ReferenceLatitude)
	}
	return nil
}

// ToPipeline maps the config section onto the orchestrator's runtime config.
func (e EngineConfig) ToPipeline() pipeline.Config {
	return pipeline.Config{
		BufferMeters:        e.BufferMeters,
		BinWidthMeters:      e.BinWidthMeters,
		MinBinsPerDate:      e.MinBinsPerDate,
		MinDateCoverage:     e.MinDateCoverage,
		MinMOPDateCoverage:  e.MinMOPDateCoverage,
		GridCellSizeDegrees: e.GridCellSizeDegrees,
		ReferenceLatitude:   e.ReferenceLatitude,
		MaxReferenceLines:   e.MaxReferenceLines,
		Workers:             e.Workers,
	}
}

// ToEncodedLine maps an inline line source onto the loader's input type.
func (s LineSource) ToEncodedLine() lines.EncodedLine {
	return lines.EncodedLine{
		ID:             s.ID,
		Kind:           s.Kind,
		DefinitionDate: s.DefinitionDate,
		Encoded:        s.Encoded,
	}
}
