package analytics

import (
	"math"
	"testing"

	"PeerBench/internal/domain/models"
)

var roa = models.MetricInfo{Name: "return_on_assets", Unit: models.UnitPercent, HigherIsBetter: true}

var window = models.QuarterRange(models.Quarter{Year: 2024, Q: 1}, models.Quarter{Year: 2024, Q: 4})

func build(id string, values ...float64) models.MetricSeries {
	pts := make([]models.Point, 0, len(values))
	for i, v := range values {
		if math.IsNaN(v) {
			continue
		}
		pts = append(pts, models.Point{Period: window[i], Value: v})
	}
	return models.NewMetricSeries(id, roa.Name, pts, models.SourceLive)
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-3 }

func TestComparePercentilesAcrossPeers(t *testing.T) {
	gs := build("33124", 1.2, 1.3, 1.1, 1.4)
	jpm := build("628", 1.5, 1.6, 1.0, 1.5)
	bac := build("3510", 1.0, 1.4, 0.9, 1.2)

	res := NewEngine().Compare(roa, gs, []models.MetricSeries{jpm, bac}, window)

	want := []float64{66.667, 33.333, 100, 66.667}
	if len(res.Periods) != len(want) {
		t.Fatalf("periods = %d, want %d", len(res.Periods), len(want))
	}
	for i, w := range want {
		p := res.Periods[i]
		if !p.Percentile.Valid || !near(p.Percentile.Float64, w) {
			t.Fatalf("period %s percentile = %v, want %v", p.Period, p.Percentile, w)
		}
		if p.Count != 3 {
			t.Fatalf("period %s count = %d", p.Period, p.Count)
		}
	}
	if res.Periods[2].Rank.Int64 != 1 || res.Periods[1].Rank.Int64 != 3 {
		t.Fatalf("ranks = %d, %d", res.Periods[2].Rank.Int64, res.Periods[1].Rank.Int64)
	}
	if !near(res.Periods[0].PeerMedian.Float64, 1.25) {
		t.Fatalf("peer median = %v", res.Periods[0].PeerMedian)
	}

	if !near(res.Focal.GrowthRate.Float64, 16.667) {
		t.Fatalf("growth = %v", res.Focal.GrowthRate)
	}
	if !near(res.Focal.Volatility.Float64, 0.25166) {
		t.Fatalf("volatility = %v", res.Focal.Volatility)
	}
	if res.Latest == nil || res.Latest.Period != window[3] {
		t.Fatalf("latest = %+v", res.Latest)
	}
	if len(res.Correlations) != 2 || !res.Correlations[0].Correlation.Valid {
		t.Fatalf("correlations = %+v", res.Correlations)
	}
}

func TestPercentileTies(t *testing.T) {
	if got := Percentile(5, []float64{5, 5}); got != 75 {
		t.Fatalf("tie percentile = %v, want 75", got)
	}
	if got := Percentile(1, []float64{1}); got != 100 {
		t.Fatalf("single percentile = %v, want 100", got)
	}
	if got := Rank(5, []float64{5, 7, 5, 1}); got != 2 {
		t.Fatalf("rank = %d, want 2", got)
	}
}

func TestMissingFocalPeriodIsUndefined(t *testing.T) {
	gs := build("33124", 1.2, math.NaN(), 1.1, 1.4)
	jpm := build("628", 1.5, 1.6, 1.0, 1.5)

	res := NewEngine().Compare(roa, gs, []models.MetricSeries{jpm}, window)
	p := res.Periods[1]
	if p.Percentile.Valid || p.Rank.Valid || p.FocalValue.Valid {
		t.Fatalf("period without focal value should be undefined: %+v", p)
	}
	if p.Count != 1 || !near(p.PeerMean.Float64, 1.6) {
		t.Fatalf("peer side should still be reported: %+v", p)
	}
}

func TestSingleQuarterPeerHasNoVolatility(t *testing.T) {
	gs := build("33124", 1.2, 1.3, 1.1, 1.4)
	lone := build("9999", math.NaN(), math.NaN(), math.NaN(), 1.0)

	res := NewEngine().Compare(roa, gs, []models.MetricSeries{lone}, window)
	peer := res.Peers[0]
	if peer.Volatility.Valid || peer.GrowthRate.Valid {
		t.Fatalf("one-quarter peer should have undefined volatility and growth: %+v", peer)
	}
	if res.PeerAvgVolatility.Valid {
		t.Fatalf("peer average volatility should be undefined")
	}
	if res.Correlations[0].Correlation.Valid {
		t.Fatalf("correlation needs three overlapping quarters")
	}
	if res.MostSimilarPeer != "" {
		t.Fatalf("no peer should be most similar, got %q", res.MostSimilarPeer)
	}
}

func TestGrowthRate(t *testing.T) {
	cases := []struct {
		name   string
		values []float64
		want   float64
		valid  bool
	}{
		{"rise", []float64{100, 110}, 10, true},
		{"negative base", []float64{-2, -1}, 50, true},
		{"zero base", []float64{0, 5}, 0, false},
		{"single", []float64{3}, 0, false},
	}
	for _, tc := range cases {
		got := GrowthRate(tc.values)
		if got.Valid != tc.valid || (tc.valid && !near(got.Float64, tc.want)) {
			t.Fatalf("%s: growth = %v, want %v (valid=%v)", tc.name, got, tc.want, tc.valid)
		}
	}
}

func TestAnnualizedGrowth(t *testing.T) {
	if got := AnnualizedGrowth(100, 121, 8); !near(got.Float64, 10) {
		t.Fatalf("annualized = %v, want 10", got)
	}
	if AnnualizedGrowth(-1, 2, 4).Valid {
		t.Fatalf("negative start should be undefined")
	}
	if AnnualizedGrowth(1, 2, 0).Valid {
		t.Fatalf("zero span should be undefined")
	}
}

func TestCorrelation(t *testing.T) {
	got := Correlation([]float64{1, 2, 3, 4}, []float64{2, 4, 6, 8})
	if !got.Valid || !near(got.Float64, 1) {
		t.Fatalf("correlation = %v, want 1", got)
	}
	if Correlation([]float64{1, 2}, []float64{2, 4}).Valid {
		t.Fatalf("two points should be undefined")
	}
	if Correlation([]float64{1, 1, 1}, []float64{2, 4, 6}).Valid {
		t.Fatalf("constant side should be undefined")
	}
}

func TestGroupAndZScore(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5}
	if g := Group(5, values, true); g != models.QuartileTop {
		t.Fatalf("group = %s", g)
	}
	if g := Group(5, values, false); g != models.QuartileBottom {
		t.Fatalf("inverted group = %s", g)
	}
	if g := Group(3, values, true); g != models.QuartileMiddle {
		t.Fatalf("middle group = %s", g)
	}
	z := ZScore(3, values)
	if !z.Valid || !near(z.Float64, 0) {
		t.Fatalf("z = %v", z)
	}
	if ZScore(1, []float64{1, 1}).Valid {
		t.Fatalf("zero spread should be undefined")
	}
}

func TestTrendDirection(t *testing.T) {
	up := Summarize(build("a", 1, 2, 3, 4))
	if up.Trend != models.TrendIncreasing || !near(up.Slope.Float64, 1) {
		t.Fatalf("trend = %s slope = %v", up.Trend, up.Slope)
	}
	flat := Summarize(build("b", 2, 2, 2, 2))
	if flat.Trend != models.TrendFlat {
		t.Fatalf("trend = %s", flat.Trend)
	}
	if Summarize(build("c", 2)).Trend != models.TrendUnknown {
		t.Fatalf("one point should be unknown")
	}
}
