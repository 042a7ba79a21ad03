package cache

import "testing"

func TestKeyAndDigest(t *testing.T) {
	if got := Key("series", "628", "abc"); got != "series:628:abc" {
		t.Fatalf("key = %q", got)
	}
	a, b := Digest("628|2024Q1|2024Q4|roa"), Digest("628|2024Q1|2024Q4|roa")
	if a != b {
		t.Fatalf("digest not stable: %s vs %s", a, b)
	}
	if a == Digest("628|2024Q1|2024Q4|nim") {
		t.Fatalf("distinct inputs share a digest")
	}
}
