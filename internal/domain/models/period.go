package models

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"PeerBench/pkg/util"
)

// Quarter is a calendar quarter. The zero value is invalid.
type Quarter struct {
	Year int
	Q    int
}

var quarterPattern = regexp.MustCompile(`^(\d{4})-?[Qq]([1-4])$`)

// ParseQuarter accepts 2024Q1, 2024-Q1, 20240331 and 2024-03-31. A date maps
// to the quarter containing it.
func ParseQuarter(s string) (Quarter, error) {
	s = strings.TrimSpace(s)
	if m := quarterPattern.FindStringSubmatch(s); m != nil {
		year, _ := strconv.Atoi(m[1])
		q, _ := strconv.Atoi(m[2])
		return Quarter{Year: year, Q: q}, nil
	}
	if t, ok := util.ParseDate(s); ok {
		return QuarterOf(t), nil
	}
	return Quarter{}, fmt.Errorf("invalid quarter %q", s)
}

// QuarterOf returns the quarter containing t.
func QuarterOf(t time.Time) Quarter {
	t = t.UTC()
	return Quarter{Year: t.Year(), Q: (int(t.Month())-1)/3 + 1}
}

// QuarterFromIndex inverts Index.
func QuarterFromIndex(i int) Quarter {
	return Quarter{Year: i / 4, Q: i%4 + 1}
}

// LastCompleted returns the most recent quarter that ended before now.
func LastCompleted(now time.Time) Quarter {
	return QuarterOf(now).Prev()
}

func (q Quarter) IsZero() bool { return q.Year == 0 && q.Q == 0 }

func (q Quarter) Valid() bool { return q.Year > 0 && q.Q >= 1 && q.Q <= 4 }

// Index is a dense ordinal: consecutive quarters differ by one.
func (q Quarter) Index() int { return q.Year*4 + q.Q - 1 }

func (q Quarter) Next() Quarter { return QuarterFromIndex(q.Index() + 1) }

func (q Quarter) Prev() Quarter { return QuarterFromIndex(q.Index() - 1) }

func (q Quarter) Before(o Quarter) bool { return q.Index() < o.Index() }

func (q Quarter) After(o Quarter) bool { return q.Index() > o.Index() }

// End is the last calendar day of the quarter, the FDIC report date.
func (q Quarter) End() time.Time {
	return time.Date(q.Year, time.Month(q.Q*3)+1, 0, 0, 0, 0, 0, time.UTC)
}

// ReportDate renders End as YYYYMMDD.
func (q Quarter) ReportDate() string {
	return util.FormatCompactDate(q.End())
}

func (q Quarter) String() string {
	if !q.Valid() {
		return ""
	}
	return fmt.Sprintf("%04dQ%d", q.Year, q.Q)
}

func (q Quarter) MarshalText() ([]byte, error) {
	return []byte(q.String()), nil
}

func (q *Quarter) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*q = Quarter{}
		return nil
	}
	parsed, err := ParseQuarter(string(b))
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}

// QuarterSpan counts quarters from start to end inclusive. Zero when end
// precedes start.
func QuarterSpan(start, end Quarter) int {
	n := end.Index() - start.Index() + 1
	if n < 0 {
		return 0
	}
	return n
}

// QuarterRange lists every quarter from start to end inclusive.
func QuarterRange(start, end Quarter) []Quarter {
	n := QuarterSpan(start, end)
	out := make([]Quarter, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, QuarterFromIndex(start.Index()+i))
	}
	return out
}
