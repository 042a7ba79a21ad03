package features

import (
	"PeerBench/internal/domain/models"
)

// Changes returns absolute quarter-over-quarter changes. A change is only
// taken between calendar-adjacent quarters that both carry a value, so a
// gap never produces a multi-quarter jump.
func Changes(s models.MetricSeries) []float64 {
	if len(s.Points) < 2 {
		return nil
	}
	out := make([]float64, 0, len(s.Points)-1)
	for i := 1; i < len(s.Points); i++ {
		prev, cur := s.Points[i-1], s.Points[i]
		if prev.Period.Next() != cur.Period {
			continue
		}
		out = append(out, cur.Value-prev.Value)
	}
	return out
}

// Paired returns the values of a and b at the quarters where both report,
// in period order.
func Paired(a, b models.MetricSeries) (xs, ys []float64) {
	i, j := 0, 0
	for i < len(a.Points) && j < len(b.Points) {
		pa, pb := a.Points[i].Period, b.Points[j].Period
		switch {
		case pa == pb:
			xs = append(xs, a.Points[i].Value)
			ys = append(ys, b.Points[j].Value)
			i++
			j++
		case pa.Before(pb):
			i++
		default:
			j++
		}
	}
	return xs, ys
}

// CrossSection collects the values reported for q. Series without a value
// for q are skipped.
func CrossSection(q models.Quarter, series ...models.MetricSeries) []float64 {
	out := make([]float64, 0, len(series))
	for _, s := range series {
		if v, ok := s.ValueAt(q); ok {
			out = append(out, v)
		}
	}
	return out
}

// Offsets returns each point's distance in quarters from the first point,
// alongside the values. Used as regression inputs.
func Offsets(s models.MetricSeries) (xs, ys []float64) {
	if len(s.Points) == 0 {
		return nil, nil
	}
	base := s.Points[0].Period.Index()
	xs = make([]float64, len(s.Points))
	ys = make([]float64, len(s.Points))
	for i, p := range s.Points {
		xs[i] = float64(p.Period.Index() - base)
		ys[i] = p.Value
	}
	return xs, ys
}

// Span is the number of quarters between the first and last point.
func Span(s models.MetricSeries) int {
	if len(s.Points) < 2 {
		return 0
	}
	return s.Points[len(s.Points)-1].Period.Index() - s.Points[0].Period.Index()
}
