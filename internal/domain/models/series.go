package models

import (
	"sort"
	"strings"
)

// Source tells whether data came from the live API or the synthetic fallback.
type Source string

const (
	SourceLive      Source = "live"
	SourceSynthetic Source = "synthetic"
	SourceMixed     Source = "mixed"
)

// CombineSources folds per-institution sources into one flag.
func CombineSources(sources ...Source) Source {
	var out Source
	for _, s := range sources {
		switch {
		case s == "":
		case out == "":
			out = s
		case out != s:
			return SourceMixed
		}
	}
	if out == "" {
		return SourceLive
	}
	return out
}

type Point struct {
	Period Quarter `json:"period"`
	Value  float64 `json:"value"`
}

// MetricSeries holds at most one value per quarter, ordered by period.
type MetricSeries struct {
	InstitutionID string  `json:"institution_id"`
	Metric        string  `json:"metric"`
	Points        []Point `json:"points"`
	Source        Source  `json:"source"`
}

// NewMetricSeries sorts points by period and keeps the last value seen for
// any repeated period.
func NewMetricSeries(institutionID, metric string, points []Point, src Source) MetricSeries {
	byIndex := make(map[int]float64, len(points))
	for _, p := range points {
		byIndex[p.Period.Index()] = p.Value
	}
	out := make([]Point, 0, len(byIndex))
	for idx, v := range byIndex {
		out = append(out, Point{Period: QuarterFromIndex(idx), Value: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period.Before(out[j].Period) })
	return MetricSeries{InstitutionID: institutionID, Metric: metric, Points: out, Source: src}
}

func (s MetricSeries) Len() int { return len(s.Points) }

// ValueAt returns the value for q, if present.
func (s MetricSeries) ValueAt(q Quarter) (float64, bool) {
	i := sort.Search(len(s.Points), func(i int) bool { return !s.Points[i].Period.Before(q) })
	if i < len(s.Points) && s.Points[i].Period == q {
		return s.Points[i].Value, true
	}
	return 0, false
}

// Values returns the raw values in period order.
func (s MetricSeries) Values() []float64 {
	out := make([]float64, len(s.Points))
	for i, p := range s.Points {
		out[i] = p.Value
	}
	return out
}

// Within keeps only points in [start, end].
func (s MetricSeries) Within(start, end Quarter) MetricSeries {
	out := s
	out.Points = nil
	for _, p := range s.Points {
		if !p.Period.Before(start) && !p.Period.After(end) {
			out.Points = append(out.Points, p)
		}
	}
	return out
}

// InstitutionData is everything fetched for one institution in one call:
// one series per requested metric over [Start, End].
type InstitutionData struct {
	InstitutionID string         `json:"institution_id"`
	Start         Quarter        `json:"start"`
	End           Quarter        `json:"end"`
	Series        []MetricSeries `json:"series"`
	Source        Source         `json:"source"`
}

// Get returns the series for metric.
func (d InstitutionData) Get(metric string) (MetricSeries, bool) {
	for _, s := range d.Series {
		if s.Metric == metric {
			return s, true
		}
	}
	return MetricSeries{}, false
}

// Empty reports whether no series has a single point.
func (d InstitutionData) Empty() bool {
	for _, s := range d.Series {
		if s.Len() > 0 {
			return false
		}
	}
	return true
}

// SeriesKey identifies one cacheable fetch.
type SeriesKey struct {
	InstitutionID string
	Start         Quarter
	End           Quarter
	Metrics       []string
}

// String is stable under metric order.
func (k SeriesKey) String() string {
	metrics := append([]string(nil), k.Metrics...)
	sort.Strings(metrics)
	return k.InstitutionID + "|" + k.Start.String() + "|" + k.End.String() + "|" + strings.Join(metrics, ",")
}
