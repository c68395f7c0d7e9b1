package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strandlab/shoreline/internal/survey"
)

func sampleRecords() map[string]survey.TimeSeriesRecord {
	return map[string]survey.TimeSeriesRecord{
		"T-0001": {
			LineID:   "T-0001",
			Kind:     survey.LineKindTransect,
			BaseDate: "2023-05-17",
			Profiles: map[string]survey.DateProfile{
				"2023-05-17": {
					SurveyDate: "2023-05-17",
					Distances:  []float64{0.25, 0.75, 1.25},
					Elevations: []float64{2.1, 2.05, 1.98},
					PointCount: 3,
				},
			},
			DateCount: 1,
		},
	}
}

func TestStore_WriteAndReadRecords(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, 0)

	fingerprint, err := s.WriteRecords(sampleRecords())
	require.NoError(t, err)
	assert.Len(t, fingerprint, 64)

	loaded, err := s.Records()
	require.NoError(t, err)
	assert.Equal(t, sampleRecords(), loaded)
}

func TestStore_WriteIsDeterministic(t *testing.T) {
	dirA, dirB := t.TempDir(), t.TempDir()

	fpA, err := New(dirA, 0).WriteRecords(sampleRecords())
	require.NoError(t, err)
	fpB, err := New(dirB, 0).WriteRecords(sampleRecords())
	require.NoError(t, err)

	assert.Equal(t, fpA, fpB)

	bytesA, err := os.ReadFile(filepath.Join(dirA, "records.json"))
	require.NoError(t, err)
	bytesB, err := os.ReadFile(filepath.Join(dirB, "records.json"))
	require.NoError(t, err)
	assert.Equal(t, bytesA, bytesB, "identical records must serialize identically")
}

func TestStore_FingerprintChangesWithContent(t *testing.T) {
	records := sampleRecords()
	fpA, err := Fingerprint(records)
	require.NoError(t, err)

	modified := sampleRecords()
	rec := modified["T-0001"]
	rec.DateCount = 2
	modified["T-0001"] = rec

	fpB, err := Fingerprint(modified)
	require.NoError(t, err)
	assert.NotEqual(t, fpA, fpB)
}

func TestStore_CachedReadSurvivesFileRemoval(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, time.Minute)

	_, err := s.WriteRecords(sampleRecords())
	require.NoError(t, err)
	_, err = s.Records()
	require.NoError(t, err)

	require.NoError(t, os.Remove(filepath.Join(dir, "records.json")))

	cached, err := s.Records()
	require.NoError(t, err, "fresh cache entry must serve without disk")
	assert.Len(t, cached, 1)

	s.Invalidate()
	_, err = s.Records()
	assert.Error(t, err, "invalidated cache must fall through to the missing file")
}

func TestStore_WriteInvalidatesCachedEntry(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, time.Minute)

	_, err := s.WriteRecords(sampleRecords())
	require.NoError(t, err)
	_, err = s.Records()
	require.NoError(t, err)

	updated := sampleRecords()
	rec := updated["T-0001"]
	rec.DateCount = 5
	updated["T-0001"] = rec
	_, err = s.WriteRecords(updated)
	require.NoError(t, err)

	loaded, err := s.Records()
	require.NoError(t, err)
	assert.Equal(t, 5, loaded["T-0001"].DateCount)
}

func TestStore_ManifestRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, 0)

	m := Manifest{
		RunID:       "run-1",
		GeneratedAt: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Fingerprint: "abc",
		RecordCount: 1,
		PointCount:  40,
		LineCount:   2,
		Skipped:     map[string]int{"low_date_coverage": 1},
		Duration:    "1.2s",
	}
	require.NoError(t, s.WriteManifest(m))

	loaded, err := s.Manifest()
	require.NoError(t, err)
	assert.Equal(t, m, loaded)
}

func TestStore_LinesRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, 0)

	lineInfos := []LineInfo{
		{ID: "MOP_582", Kind: "mop", EncodedPolyline: "_p~iF~ps|U", LengthMeters: 111.2},
	}
	require.NoError(t, s.WriteLines(lineInfos))

	loaded, err := s.Lines()
	require.NoError(t, err)
	assert.Equal(t, lineInfos, loaded)
}

func TestStore_MissingFiles(t *testing.T) {
	s := New(t.TempDir(), 0)
	_, err := s.Records()
	assert.Error(t, err)
	_, err = s.Summary()
	assert.Error(t, err)
}
