package features

import (
	"reflect"
	"testing"

	"PeerBench/internal/domain/models"
)

func q(y, n int) models.Quarter { return models.Quarter{Year: y, Q: n} }

func series(id string, pts ...models.Point) models.MetricSeries {
	return models.NewMetricSeries(id, "return_on_assets", pts, models.SourceLive)
}

func TestChangesSkipGaps(t *testing.T) {
	s := series("a",
		models.Point{Period: q(2023, 3), Value: 1},
		models.Point{Period: q(2023, 4), Value: 3},
		models.Point{Period: q(2024, 2), Value: 10},
		models.Point{Period: q(2024, 3), Value: 9},
	)
	got := Changes(s)
	want := []float64{2, -1}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("changes = %v, want %v", got, want)
	}
	if Changes(series("b", models.Point{Period: q(2024, 1), Value: 1})) != nil {
		t.Fatalf("single point should have no changes")
	}
}

func TestPairedAlignsByPeriod(t *testing.T) {
	a := series("a",
		models.Point{Period: q(2024, 1), Value: 1},
		models.Point{Period: q(2024, 2), Value: 2},
		models.Point{Period: q(2024, 4), Value: 4},
	)
	b := series("b",
		models.Point{Period: q(2024, 2), Value: 20},
		models.Point{Period: q(2024, 3), Value: 30},
		models.Point{Period: q(2024, 4), Value: 40},
	)
	xs, ys := Paired(a, b)
	if !reflect.DeepEqual(xs, []float64{2, 4}) || !reflect.DeepEqual(ys, []float64{20, 40}) {
		t.Fatalf("paired = %v %v", xs, ys)
	}
}

func TestCrossSectionAndOffsets(t *testing.T) {
	a := series("a", models.Point{Period: q(2024, 1), Value: 1}, models.Point{Period: q(2024, 3), Value: 3})
	b := series("b", models.Point{Period: q(2024, 3), Value: 5})
	if got := CrossSection(q(2024, 3), a, b); !reflect.DeepEqual(got, []float64{3, 5}) {
		t.Fatalf("cross section = %v", got)
	}
	if got := CrossSection(q(2024, 2), a, b); len(got) != 0 {
		t.Fatalf("expected empty cross section, got %v", got)
	}
	xs, _ := Offsets(a)
	if !reflect.DeepEqual(xs, []float64{0, 2}) {
		t.Fatalf("offsets = %v", xs)
	}
	if Span(a) != 2 {
		t.Fatalf("span = %d", Span(a))
	}
}
