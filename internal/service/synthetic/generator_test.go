package synthetic

import (
	"reflect"
	"testing"

	"PeerBench/internal/domain/models"
)

func key(id string, metrics ...string) models.SeriesKey {
	return models.SeriesKey{
		InstitutionID: id,
		Start:         models.Quarter{Year: 2023, Q: 1},
		End:           models.Quarter{Year: 2024, Q: 4},
		Metrics:       metrics,
	}
}

func TestGenerateIsDeterministic(t *testing.T) {
	k := key("33124", "return_on_assets", "total_assets")
	a := New(42).Generate(k)
	b := New(42).Generate(k)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("same seed and key produced different data")
	}
	if a.Source != models.SourceSynthetic || a.Series[0].Source != models.SourceSynthetic {
		t.Fatalf("synthetic data must be flagged as such")
	}
}

func TestGenerateDiffersBySeedAndInstitution(t *testing.T) {
	q := models.Quarter{Year: 2024, Q: 1}
	if New(1).Value("33124", "return_on_assets", q) == New(2).Value("33124", "return_on_assets", q) {
		t.Fatalf("seed had no effect")
	}
	if New(1).Value("33124", "return_on_assets", q) == New(1).Value("628", "return_on_assets", q) {
		t.Fatalf("institution had no effect")
	}
}

func TestGenerateCoversWindowWithinBounds(t *testing.T) {
	d := New(7).Generate(key("628", "efficiency_ratio"))
	s := d.Series[0]
	if s.Len() != 8 {
		t.Fatalf("expected 8 quarters, got %d", s.Len())
	}
	for _, p := range s.Points {
		if p.Value < 50 || p.Value > 70 {
			t.Fatalf("efficiency ratio %v outside 50..70", p.Value)
		}
	}
}

func TestOverlappingWindowsAgree(t *testing.T) {
	g := New(42)
	wide := g.Generate(key("3510", "total_deposits"))
	narrow := g.Generate(models.SeriesKey{
		InstitutionID: "3510",
		Start:         models.Quarter{Year: 2024, Q: 2},
		End:           models.Quarter{Year: 2024, Q: 3},
		Metrics:       []string{"total_deposits"},
	})
	for _, p := range narrow.Series[0].Points {
		v, ok := wide.Series[0].ValueAt(p.Period)
		if !ok || v != p.Value {
			t.Fatalf("quarter %s differs across windows: %v vs %v", p.Period, v, p.Value)
		}
	}
}
