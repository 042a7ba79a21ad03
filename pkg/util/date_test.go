package util

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"
)

func TestParseDateLayouts(t *testing.T) {
	want := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	for _, s := range []string{"20240331", "2024-03-31", "2024-03-31T00:00:00Z"} {
		got, ok := ParseDate(s)
		if !ok {
			t.Fatalf("%q: expected ok", s)
		}
		if !got.Equal(want) {
			t.Fatalf("%q: got %v", s, got)
		}
	}
}

func TestParseDateRejectsGarbage(t *testing.T) {
	if _, ok := ParseDate("Q1-2024"); ok {
		t.Fatalf("expected failure")
	}
	if _, ok := ParseDate(""); ok {
		t.Fatalf("expected failure on empty")
	}
}

func TestFormatCompactDate(t *testing.T) {
	if got := FormatCompactDate(time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)); got != "20231231" {
		t.Fatalf("got %s", got)
	}
}

func TestSplitList(t *testing.T) {
	got := SplitList("a, b", "", "c,a", " d ")
	want := []string{"a", "b", "c", "d"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}
}

func TestFloat(t *testing.T) {
	cases := []struct {
		in   interface{}
		want float64
		ok   bool
	}{
		{1.5, 1.5, true},
		{"2.25", 2.25, true},
		{json.Number("3"), 3, true},
		{nil, 0, false},
		{"", 0, false},
		{"n/a", 0, false},
		{true, 0, false},
	}
	for _, tc := range cases {
		got, ok := Float(tc.in)
		if ok != tc.ok || got != tc.want {
			t.Fatalf("Float(%v) = %v,%v want %v,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestParseIntDefault(t *testing.T) {
	if ParseIntDefault("", 7) != 7 || ParseIntDefault("x", 7) != 7 || ParseIntDefault("3", 7) != 3 {
		t.Fatalf("unexpected ParseIntDefault results")
	}
}
