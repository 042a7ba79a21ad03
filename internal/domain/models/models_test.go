package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestParseQuarterFormats(t *testing.T) {
	cases := map[string]Quarter{
		"2024Q1":     {2024, 1},
		"2024-Q3":    {2024, 3},
		"2023q4":     {2023, 4},
		"20240630":   {2024, 2},
		"2024-11-15": {2024, 4},
	}
	for in, want := range cases {
		got, err := ParseQuarter(in)
		if err != nil || got != want {
			t.Fatalf("ParseQuarter(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	for _, bad := range []string{"", "2024Q5", "Q1 2024", "yesterday"} {
		if _, err := ParseQuarter(bad); err == nil {
			t.Fatalf("ParseQuarter(%q) should fail", bad)
		}
	}
}

func TestQuarterArithmetic(t *testing.T) {
	q := Quarter{2023, 4}
	if q.Next() != (Quarter{2024, 1}) || q.Prev() != (Quarter{2023, 3}) {
		t.Fatalf("next/prev around %s", q)
	}
	if q.ReportDate() != "20231231" || (Quarter{2024, 1}).ReportDate() != "20240331" {
		t.Fatalf("report dates = %s %s", q.ReportDate(), Quarter{2024, 1}.ReportDate())
	}
	if got := QuarterRange(Quarter{2023, 3}, Quarter{2024, 2}); len(got) != 4 || got[3] != (Quarter{2024, 2}) {
		t.Fatalf("range = %v", got)
	}
	if QuarterSpan(Quarter{2024, 2}, Quarter{2024, 1}) != 0 {
		t.Fatalf("reversed span should be 0")
	}
	if LastCompleted(time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)) != (Quarter{2024, 1}) {
		t.Fatalf("last completed quarter")
	}
}

func TestQuarterJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		P Quarter `json:"p"`
	}{Quarter{2024, 2}})
	if err != nil || string(b) != `{"p":"2024Q2"}` {
		t.Fatalf("marshal = %s %v", b, err)
	}
	var back struct {
		P Quarter `json:"p"`
	}
	if err := json.Unmarshal(b, &back); err != nil || back.P != (Quarter{2024, 2}) {
		t.Fatalf("unmarshal = %+v %v", back, err)
	}
}

func TestMetricSeriesDedupesAndSorts(t *testing.T) {
	s := NewMetricSeries("1", "roa", []Point{
		{Period: Quarter{2024, 2}, Value: 2},
		{Period: Quarter{2024, 1}, Value: 1},
		{Period: Quarter{2024, 2}, Value: 3},
	}, SourceLive)
	if s.Len() != 2 || s.Points[0].Period != (Quarter{2024, 1}) {
		t.Fatalf("points = %+v", s.Points)
	}
	if v, ok := s.ValueAt(Quarter{2024, 2}); !ok || v != 3 {
		t.Fatalf("last value should win, got %v %v", v, ok)
	}
	if _, ok := s.ValueAt(Quarter{2024, 3}); ok {
		t.Fatalf("missing quarter reported present")
	}
	if got := s.Within(Quarter{2024, 2}, Quarter{2024, 4}); got.Len() != 1 {
		t.Fatalf("within = %+v", got.Points)
	}
}

func TestCombineSources(t *testing.T) {
	if CombineSources() != SourceLive {
		t.Fatalf("empty should be live")
	}
	if CombineSources(SourceSynthetic, SourceSynthetic) != SourceSynthetic {
		t.Fatalf("all synthetic")
	}
	if CombineSources(SourceLive, SourceSynthetic) != SourceMixed {
		t.Fatalf("mixed")
	}
}

func TestSeriesKeyStableUnderMetricOrder(t *testing.T) {
	a := SeriesKey{InstitutionID: "1", Start: Quarter{2024, 1}, End: Quarter{2024, 4}, Metrics: []string{"b", "a"}}
	b := a
	b.Metrics = []string{"a", "b"}
	if a.String() != b.String() {
		t.Fatalf("%s != %s", a, b)
	}
	if a.Metrics[0] != "b" {
		t.Fatalf("String must not reorder the caller's slice")
	}
}

func TestQueryValidate(t *testing.T) {
	base := Query{Focal: "33124", Peers: []string{"628", "3510"}, Metrics: []string{"return_on_assets"}, Start: Quarter{2024, 1}, End: Quarter{2024, 4}}
	limits := QueryLimits{MaxPeers: 2, MaxQuarters: 8}
	if err := base.Validate(limits); err != nil {
		t.Fatalf("valid query rejected: %v", err)
	}

	cases := []struct {
		name  string
		edit  func(q *Query)
		field string
	}{
		{"bad focal", func(q *Query) { q.Focal = "GS" }, "focal"},
		{"no peers", func(q *Query) { q.Peers = nil }, "peers"},
		{"too many peers", func(q *Query) { q.Peers = []string{"1", "2", "3"} }, "peers"},
		{"duplicate peer", func(q *Query) { q.Peers = []string{"628", "628"} }, "peers"},
		{"no metrics", func(q *Query) { q.Metrics = nil }, "metrics"},
		{"missing start", func(q *Query) { q.Start = Quarter{} }, "start"},
		{"window too long", func(q *Query) { q.Start = Quarter{2020, 1} }, "start"},
	}
	for _, tc := range cases {
		q := base
		tc.edit(&q)
		err := q.Validate(limits)
		var qe *QueryError
		if !errors.As(err, &qe) || qe.Field != tc.field || !errors.Is(err, ErrInvalidQuery) {
			t.Fatalf("%s: err = %v", tc.name, err)
		}
	}
}

func TestCompareRequestNormalize(t *testing.T) {
	r := CompareRequest{Focal: " GS ", Peers: []string{"JPM, BAC", "JPM"}, Metrics: []string{"ROA,return_on_assets", "roa"}}
	r.Normalize()
	if r.Focal != "GS" || len(r.Peers) != 2 || r.Peers[1] != "BAC" {
		t.Fatalf("normalized = %+v", r)
	}
	if len(r.Metrics) != 2 || r.Metrics[0] != "roa" {
		t.Fatalf("metrics = %v", r.Metrics)
	}
}
