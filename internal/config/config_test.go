package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())

	assert.Equal(t, 1.0, cfg.Engine.BufferMeters)
	assert.Equal(t, 0.5, cfg.Engine.BinWidthMeters)
	assert.Equal(t, 5, cfg.Engine.MinBinsPerDate)
	assert.Equal(t, 2, cfg.Engine.MinDateCoverage)
	assert.Equal(t, 1, cfg.Engine.MinMOPDateCoverage)
	assert.Equal(t, 0.0001, cfg.Engine.GridCellSizeDegrees)
}

func TestValidate_RejectsBadEngineValues(t *testing.T) {
	for name, mutate := range map[string]func(*Config){
		"zero buffer":       func(c *Config) { c.Engine.BufferMeters = 0 },
		"negative binwidth": func(c *Config) { c.Engine.BinWidthMeters = -1 },
		"zero min bins":     func(c *Config) { c.Engine.MinBinsPerDate = 0 },
		"zero coverage":     func(c *Config) { c.Engine.MinDateCoverage = 0 },
		"latitude over 90":  func(c *Config) { c.Engine.ReferenceLatitude = 90.5 },
		"negative workers":  func(c *Config) { c.Engine.Workers = -1 },
	} {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestValidate_GridCoverageConstraint(t *testing.T) {
	cfg := Default()
	// A nanodegree cell would need thousands of neighborhood cells to span
	// a 1m buffer.
	cfg.Engine.GridCellSizeDegrees = 1e-9
	assert.Error(t, cfg.Validate())

	cfg.Engine.GridCellSizeDegrees = 0.0001
	assert.NoError(t, cfg.Validate())
}

func TestValidate_LineSources(t *testing.T) {
	cfg := Default()

	cfg.Pipeline.Lines = []LineSource{{Path: "mops.kml", Format: "kml", Kind: "mop"}}
	assert.NoError(t, cfg.Validate())

	cfg.Pipeline.Lines = []LineSource{{Kind: "transect"}}
	assert.Error(t, cfg.Validate(), "a source needs a path or an encoded polyline")

	cfg.Pipeline.Lines = []LineSource{{Path: "a.kml", Encoded: "xyz", ID: "x", Kind: "mop"}}
	assert.Error(t, cfg.Validate(), "path and encoded are mutually exclusive")

	cfg.Pipeline.Lines = []LineSource{{Encoded: "xyz", Kind: "mop"}}
	assert.Error(t, cfg.Validate(), "encoded sources need an id")

	cfg.Pipeline.Lines = []LineSource{{Path: "a.txt", Format: "csv", Kind: "mop"}}
	assert.Error(t, cfg.Validate(), "unknown formats are rejected")
}

func TestToPipeline_MapsAllFields(t *testing.T) {
	engine := Default().Engine
	engine.MaxReferenceLines = 40
	engine.Workers = 8

	pc := engine.ToPipeline()
	assert.Equal(t, engine.BufferMeters, pc.BufferMeters)
	assert.Equal(t, engine.BinWidthMeters, pc.BinWidthMeters)
	assert.Equal(t, engine.MinBinsPerDate, pc.MinBinsPerDate)
	assert.Equal(t, engine.MinDateCoverage, pc.MinDateCoverage)
	assert.Equal(t, engine.MinMOPDateCoverage, pc.MinMOPDateCoverage)
	assert.Equal(t, engine.GridCellSizeDegrees, pc.GridCellSizeDegrees)
	assert.Equal(t, engine.ReferenceLatitude, pc.ReferenceLatitude)
	assert.Equal(t, 40, pc.MaxReferenceLines)
	assert.Equal(t, 8, pc.Workers)
}

func TestToEncodedLine(t *testing.T) {
	src := LineSource{ID: "T-1", Kind: "transect", DefinitionDate: "2023-01-01", Encoded: "abc"}
	enc := src.ToEncodedLine()
	require.Equal(t, "T-1", enc.ID)
	assert.Equal(t, "transect", enc.Kind)
	assert.Equal(t, "2023-01-01", enc.DefinitionDate)
	assert.Equal(t, "abc", enc.Encoded)
}
