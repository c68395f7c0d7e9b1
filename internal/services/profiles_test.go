package services

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strandlab/shoreline/internal/store"
	"github.com/strandlab/shoreline/internal/survey"
)

func seededService(t *testing.T) *ProfilesService {
	t.Helper()
	s := store.New(t.TempDir(), 0)

	records := map[string]survey.TimeSeriesRecord{
		"T-0001": {
			LineID:   "T-0001",
			Kind:     survey.LineKindTransect,
			BaseDate: "2023-05-17",
			Profiles: map[string]survey.DateProfile{
				"2023-05-17": {
					SurveyDate: "2023-05-17",
					Distances:  []float64{0.25, 0.75},
					Elevations: []float64{2.1, 2.0},
					PointCount: 2,
				},
			},
			DateCount: 1,
		},
	}
	fingerprint, err := s.WriteRecords(records)
	require.NoError(t, err)
	require.NoError(t, s.WriteLines([]store.LineInfo{
		{ID: "T-0001", Kind: "transect", EncodedPolyline: "_p~iF~ps|U", LengthMeters: 99.5},
	}))
	require.NoError(t, s.WriteSummary(survey.Summary{TotalPoints: 2}))
	require.NoError(t, s.WriteManifest(store.Manifest{
		RunID:       "run-1",
		GeneratedAt: time.Now(),
		Fingerprint: fingerprint,
		RecordCount: 1,
	}))
	return NewProfilesService(s)
}

func TestListLines(t *testing.T) {
	svc := seededService(t)

	rec := httptest.NewRecorder()
	svc.ListLines(rec, httptest.NewRequest(http.MethodGet, "/api/v1/lines", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	var body struct {
		Count int              `json:"count"`
		Lines []store.LineInfo `json:"lines"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
	require.Len(t, body.Lines, 1)
	assert.Equal(t, "T-0001", body.Lines[0].ID)
	assert.NotEmpty(t, body.Lines[0].EncodedPolyline)
}

func TestGetRecord(t *testing.T) {
	svc := seededService(t)

	rec := httptest.NewRecorder()
	svc.GetRecord(rec, httptest.NewRequest(http.MethodGet, "/api/v1/records/T-0001", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var record survey.TimeSeriesRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &record))
	assert.Equal(t, "T-0001", record.LineID)
	assert.Equal(t, 1, record.DateCount)
	require.Contains(t, record.Profiles, "2023-05-17")
	assert.Equal(t, []float64{0.25, 0.75}, record.Profiles["2023-05-17"].Distances)
}

func TestGetRecord_UnknownLine(t *testing.T) {
	svc := seededService(t)

	rec := httptest.NewRecorder()
	svc.GetRecord(rec, httptest.NewRequest(http.MethodGet, "/api/v1/records/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetRecord_EmptyID(t *testing.T) {
	svc := seededService(t)

	rec := httptest.NewRecorder()
	svc.GetRecord(rec, httptest.NewRequest(http.MethodGet, "/api/v1/records/", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetSummary(t *testing.T) {
	svc := seededService(t)

	rec := httptest.NewRecorder()
	svc.GetSummary(rec, httptest.NewRequest(http.MethodGet, "/api/v1/summary", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var summary survey.Summary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, 2, summary.TotalPoints)
}

func TestHealth(t *testing.T) {
	svc := seededService(t)

	rec := httptest.NewRecorder()
	svc.Health(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["healthy"])
	assert.Equal(t, "run-1", body["run_id"])
}

func TestHealth_EmptyStore(t *testing.T) {
	svc := NewProfilesService(store.New(t.TempDir(), 0))

	rec := httptest.NewRecorder()
	svc.Health(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestEndpoints_EmptyStoreUnavailable(t *testing.T) {
	svc := NewProfilesService(store.New(t.TempDir(), 0))

	for name, handler := range map[string]http.HandlerFunc{
		"lines":    svc.ListLines,
		"summary":  svc.GetSummary,
		"manifest": svc.GetManifest,
	} {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))
			assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		})
	}
}
