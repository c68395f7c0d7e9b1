package survey

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// QualityCounts breaks a date's points down by RTK solution quality.
type QualityCounts struct {
	Fix    int `json:"fix"`
	Float  int `json:"float"`
	Single int `json:"single"`
}

// LineStats summarizes the reference lines defined on a survey date.
type LineStats struct {
	TotalLengthMeters float64 `json:"total_length_meters"`
	AvgLengthMeters   float64 `json:"avg_length_meters"`
	MinLengthMeters   float64 `json:"min_length_meters"`
	MaxLengthMeters   float64 `json:"max_length_meters"`
}

// DateSummary is the metadata entry for a single survey date, used by
// downstream consumers to build timeline controls without loading point data.
type DateSummary struct {
	Date             string        `json:"date"`
	TotalPoints      int           `json:"total_points"`
	TotalLines       int           `json:"total_lines"`
	RTKFixPercentage float64       `json:"rtk_fix_percentage"`
	QualityCounts    QualityCounts `json:"quality_counts"`
	Bounds           Bounds        `json:"bounds"`
	LineStats        LineStats     `json:"line_stats"`
}

// Summary is the full survey metadata index across all dates.
type Summary struct {
	Dates          []DateSummary `json:"surveys"`
	TotalDates     int           `json:"total_survey_dates"`
	DateRangeStart string        `json:"date_range_start"`
	DateRangeEnd   string        `json:"date_range_end"`
	TotalPoints    int           `json:"total_points"`
	TotalLines     int           `json:"total_lines"`
}

// Summarize builds the per-date metadata index from the full point set and the
// reference lines grouped by their definition date. Dates are emitted in
// ascending order so output is stable across runs.
func Summarize(points []GeoPoint, lines []ReferenceLine) Summary {
	pointsByDate := make(map[string][]GeoPoint)
	for _, p := range points {
		pointsByDate[p.SurveyDate] = append(pointsByDate[p.SurveyDate], p)
	}

	linesByDate := make(map[string][]ReferenceLine)
	for _, l := range lines {
		linesByDate[l.DefinitionDate] = append(linesByDate[l.DefinitionDate], l)
	}

	dates := make([]string, 0, len(pointsByDate))
	for d := range pointsByDate {
		dates = append(dates, d)
	}
	for d := range linesByDate {
		if _, seen := pointsByDate[d]; !seen {
			dates = append(dates, d)
		}
	}
	sort.Strings(dates)

	summary := Summary{Dates: make([]DateSummary, 0, len(dates))}
	for _, d := range dates {
		entry := summarizeDate(d, pointsByDate[d], linesByDate[d])
		summary.Dates = append(summary.Dates, entry)
		summary.TotalPoints += entry.TotalPoints
		summary.TotalLines += entry.TotalLines
	}

	summary.TotalDates = len(summary.Dates)
	if len(summary.Dates) > 0 {
		summary.DateRangeStart = summary.Dates[0].Date
		summary.DateRangeEnd = summary.Dates[len(summary.Dates)-1].Date
	}
	return summary
}

func summarizeDate(date string, points []GeoPoint, lines []ReferenceLine) DateSummary {
	entry := DateSummary{
		Date:        date,
		TotalPoints: len(points),
		TotalLines:  len(lines),
	}

	for i, p := range points {
		switch p.Quality {
		case QualityFix:
			entry.QualityCounts.Fix++
		case QualityFloat:
			entry.QualityCounts.Float++
		case QualitySingle:
			entry.QualityCounts.Single++
		}

		if i == 0 {
			entry.Bounds = Bounds{
				MinLat: p.Latitude, MaxLat: p.Latitude,
				MinLon: p.Longitude, MaxLon: p.Longitude,
			}
		} else {
			entry.Bounds.extend(p.Longitude, p.Latitude)
		}
	}

	if len(points) > 0 {
		entry.RTKFixPercentage = RoundTo(float64(entry.QualityCounts.Fix)/float64(len(points))*100, 1)
	}

	if len(lines) > 0 {
		lengths := make([]float64, len(lines))
		for i, l := range lines {
			lengths[i] = l.LengthMeters()
		}
		entry.LineStats = LineStats{
			TotalLengthMeters: RoundTo(floats.Sum(lengths), 2),
			AvgLengthMeters:   RoundTo(stat.Mean(lengths, nil), 2),
			MinLengthMeters:   RoundTo(floats.Min(lengths), 2),
			MaxLengthMeters:   RoundTo(floats.Max(lengths), 2),
		}
	}

	return entry
}

// RoundTo rounds x to the given number of decimal places. Emitted distances
// and elevations are rounded so output is stable across runs despite GPS
// sub-centimeter noise.
func RoundTo(x float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(x*scale) / scale
}
