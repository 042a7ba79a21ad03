package analytics

import (
	"math"
	"sort"

	"PeerBench/internal/domain/models"
	domsvc "PeerBench/internal/domain/service"
	"PeerBench/internal/services/features"

	"github.com/guregu/null/v6"
	"gonum.org/v1/gonum/stat"
)

const (
	minCorrelationOverlap = 3
	// slopes smaller than this fraction of the series scale count as flat
	flatTolerance = 1e-9
)

// Engine is the pure statistics core. It has no state and is safe for
// concurrent use.
type Engine struct{}

func NewEngine() *Engine { return &Engine{} }

// Compare computes every statistic for one metric. Series are clipped to
// the window spanned by periods.
func (e *Engine) Compare(metric models.MetricInfo, focal models.MetricSeries, peers []models.MetricSeries, periods []models.Quarter) models.MetricComparison {
	out := models.MetricComparison{Metric: metric.Name, Unit: metric.Unit}
	if len(periods) > 0 {
		start, end := periods[0], periods[len(periods)-1]
		focal = focal.Within(start, end)
		clipped := make([]models.MetricSeries, len(peers))
		for i, p := range peers {
			clipped[i] = p.Within(start, end)
		}
		peers = clipped
	}

	out.Periods = make([]models.PeriodStat, 0, len(periods))
	for _, q := range periods {
		out.Periods = append(out.Periods, periodStat(q, focal, peers))
	}

	out.Focal = Summarize(focal)
	out.Peers = make([]models.SeriesStats, 0, len(peers))
	var growths, vols []float64
	for _, p := range peers {
		st := Summarize(p)
		out.Peers = append(out.Peers, st)
		if st.GrowthRate.Valid {
			growths = append(growths, st.GrowthRate.Float64)
		}
		if st.Volatility.Valid {
			vols = append(vols, st.Volatility.Float64)
		}
	}
	out.PeerAvgGrowth = meanOf(growths)
	out.PeerAvgVolatility = meanOf(vols)

	out.Correlations = make([]models.PeerCorrelation, 0, len(peers))
	for _, p := range peers {
		xs, ys := features.Paired(focal, p)
		out.Correlations = append(out.Correlations, models.PeerCorrelation{
			PeerID:      p.InstitutionID,
			Correlation: Correlation(xs, ys),
			Overlap:     len(xs),
		})
	}
	out.MostSimilarPeer, out.LeastSimilarPeer = similarity(out.Correlations)

	out.Latest = snapshot(metric, focal, peers)
	return out
}

func periodStat(q models.Quarter, focal models.MetricSeries, peers []models.MetricSeries) models.PeriodStat {
	st := models.PeriodStat{Period: q}
	peerVals := features.CrossSection(q, peers...)
	st.PeerMedian = median(peerVals)
	st.PeerMean = meanOf(peerVals)

	v, ok := focal.ValueAt(q)
	if !ok {
		st.Count = len(peerVals)
		return st
	}
	all := append([]float64{v}, peerVals...)
	st.FocalValue = null.NewFloat(v, true)
	st.Count = len(all)
	st.Percentile = null.NewFloat(Percentile(v, all), true)
	st.Rank = null.NewInt(int64(Rank(v, all)), true)
	return st
}

// Percentile is the average-rank percentile of v within values, which must
// include v. Ties share the mean of their rank percentiles.
func Percentile(v float64, values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	less, lessOrEqual := 0, 0
	for _, x := range values {
		if x < v {
			less++
		}
		if x <= v {
			lessOrEqual++
		}
	}
	extra := 0
	if lessOrEqual > less {
		extra = 1
	}
	return float64(less+lessOrEqual+extra) * 50 / float64(len(values))
}

// Rank is 1 plus the number of values strictly greater than v.
func Rank(v float64, values []float64) int {
	r := 1
	for _, x := range values {
		if x > v {
			r++
		}
	}
	return r
}

// Summarize computes the time-series statistics for one series.
func Summarize(s models.MetricSeries) models.SeriesStats {
	st := models.SeriesStats{InstitutionID: s.InstitutionID, Periods: s.Len(), Trend: models.TrendUnknown}
	if s.Len() == 0 {
		return st
	}
	values := s.Values()
	first, last := values[0], values[len(values)-1]
	st.First = null.NewFloat(first, true)
	st.Last = null.NewFloat(last, true)
	st.Mean = null.NewFloat(stat.Mean(values, nil), true)
	st.GrowthRate = GrowthRate(values)
	st.AnnualizedGrowth = AnnualizedGrowth(first, last, features.Span(s))
	st.Volatility = Volatility(features.Changes(s))

	xs, ys := features.Offsets(s)
	st.Slope, st.Trend = trend(xs, ys)
	return st
}

// GrowthRate is the simple change between the first and last value, in
// percent of the absolute first value.
func GrowthRate(values []float64) null.Float {
	if len(values) < 2 {
		return null.Float{}
	}
	first, last := values[0], values[len(values)-1]
	if first == 0 {
		return null.Float{}
	}
	return finite((last - first) / math.Abs(first) * 100)
}

// AnnualizedGrowth compounds the change over quarters into a yearly rate.
// Only defined when both endpoints are positive.
func AnnualizedGrowth(first, last float64, quarters int) null.Float {
	if quarters <= 0 || first <= 0 || last <= 0 {
		return null.Float{}
	}
	return finite((math.Pow(last/first, 4/float64(quarters)) - 1) * 100)
}

// Volatility is the sample standard deviation of the given changes.
func Volatility(changes []float64) null.Float {
	if len(changes) < 2 {
		return null.Float{}
	}
	return finite(stat.StdDev(changes, nil))
}

// Correlation is Pearson's r over paired values. Undefined with fewer than
// three pairs or when either side does not vary.
func Correlation(xs, ys []float64) null.Float {
	if len(xs) != len(ys) || len(xs) < minCorrelationOverlap {
		return null.Float{}
	}
	if constant(xs) || constant(ys) {
		return null.Float{}
	}
	return finite(stat.Correlation(xs, ys, nil))
}

// ZScore uses the population standard deviation of values.
func ZScore(v float64, values []float64) null.Float {
	if len(values) < 2 {
		return null.Float{}
	}
	mean, std := stat.PopMeanStdDev(values, nil)
	if std == 0 {
		return null.Float{}
	}
	return finite((v - mean) / std)
}

// Group places v into a quartile band of values. Values above the upper
// quartile are top when higher is better; the bands flip otherwise.
func Group(v float64, values []float64, higherIsBetter bool) models.QuartileGroup {
	if len(values) < 2 {
		return ""
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	q1, q3 := quantile(sorted, 0.25), quantile(sorted, 0.75)
	if higherIsBetter {
		switch {
		case v > q3:
			return models.QuartileTop
		case v <= q1:
			return models.QuartileBottom
		}
		return models.QuartileMiddle
	}
	switch {
	case v < q1:
		return models.QuartileTop
	case v >= q3:
		return models.QuartileBottom
	}
	return models.QuartileMiddle
}

func snapshot(metric models.MetricInfo, focal models.MetricSeries, peers []models.MetricSeries) *models.Snapshot {
	if focal.Len() == 0 {
		return nil
	}
	latest := focal.Points[focal.Len()-1]
	all := append([]float64{latest.Value}, features.CrossSection(latest.Period, peers...)...)
	return &models.Snapshot{
		Period:     latest.Period,
		Value:      null.NewFloat(latest.Value, true),
		Percentile: null.NewFloat(Percentile(latest.Value, all), true),
		ZScore:     ZScore(latest.Value, all),
		Group:      Group(latest.Value, all, metric.HigherIsBetter),
	}
}

func trend(xs, ys []float64) (null.Float, models.Trend) {
	if len(xs) < 2 {
		return null.Float{}, models.TrendUnknown
	}
	_, slope := stat.LinearRegression(xs, ys, nil, false)
	if math.IsNaN(slope) || math.IsInf(slope, 0) {
		return null.Float{}, models.TrendUnknown
	}
	scale := math.Max(1, math.Abs(stat.Mean(ys, nil)))
	switch {
	case slope > flatTolerance*scale:
		return null.NewFloat(slope, true), models.TrendIncreasing
	case slope < -flatTolerance*scale:
		return null.NewFloat(slope, true), models.TrendDecreasing
	}
	return null.NewFloat(slope, true), models.TrendFlat
}

func similarity(corrs []models.PeerCorrelation) (most, least string) {
	hi, lo := math.Inf(-1), math.Inf(1)
	for _, c := range corrs {
		if !c.Correlation.Valid {
			continue
		}
		if c.Correlation.Float64 > hi {
			hi, most = c.Correlation.Float64, c.PeerID
		}
		if c.Correlation.Float64 < lo {
			lo, least = c.Correlation.Float64, c.PeerID
		}
	}
	return most, least
}

// quantile interpolates linearly between closest ranks of sorted data.
func quantile(sorted []float64, p float64) float64 {
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (sorted[hi]-sorted[lo])*(pos-float64(lo))
}

func median(values []float64) null.Float {
	if len(values) == 0 {
		return null.Float{}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	return null.NewFloat(quantile(sorted, 0.5), true)
}

func meanOf(values []float64) null.Float {
	if len(values) == 0 {
		return null.Float{}
	}
	return finite(stat.Mean(values, nil))
}

func constant(values []float64) bool {
	for _, v := range values[1:] {
		if v != values[0] {
			return false
		}
	}
	return true
}

func finite(v float64) null.Float {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return null.Float{}
	}
	return null.NewFloat(v, true)
}

var _ domsvc.ComparisonEngine = (*Engine)(nil)
