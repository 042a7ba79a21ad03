package fdic

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"PeerBench/internal/domain/models"
	"PeerBench/pkg/util"
)

// envelope is the BankFind response shape shared by every endpoint.
type envelope struct {
	Data []struct {
		Data map[string]interface{} `json:"data"`
	} `json:"data"`
	Totals struct {
		Count int `json:"count"`
	} `json:"totals"`
}

func parseReportDate(v interface{}) (models.Quarter, bool) {
	var s string
	switch x := v.(type) {
	case string:
		s = x
	case float64:
		s = strconv.FormatFloat(x, 'f', 0, 64)
	default:
		return models.Quarter{}, false
	}
	t, ok := util.ParseDate(s)
	if !ok {
		return models.Quarter{}, false
	}
	return models.QuarterOf(t), true
}

// toRecords keys rows by quarter. Rows without a usable REPDTE are dropped
// and a repeated quarter keeps the last row.
func toRecords(env *envelope) map[models.Quarter]record {
	out := make(map[models.Quarter]record, len(env.Data))
	for _, row := range env.Data {
		q, ok := parseReportDate(row.Data["REPDTE"])
		if !ok {
			continue
		}
		out[q] = record{period: q, fields: row.Data}
	}
	return out
}

// normalize turns raw rows into one series per metric over [start, end].
// Rows before start are only read by derivations that look back.
func (c *Catalog) normalize(institutionID string, rows map[models.Quarter]record, metrics []string, start, end models.Quarter) ([]models.MetricSeries, error) {
	periods := make([]models.Quarter, 0, len(rows))
	for q := range rows {
		if !q.Before(start) && !q.After(end) {
			periods = append(periods, q)
		}
	}
	sort.Slice(periods, func(i, j int) bool { return periods[i].Before(periods[j]) })

	lookup := func(q models.Quarter) (record, bool) {
		r, ok := rows[q]
		return r, ok
	}

	out := make([]models.MetricSeries, 0, len(metrics))
	for _, name := range metrics {
		d, err := c.def(name)
		if err != nil {
			return nil, err
		}
		points := make([]models.Point, 0, len(periods))
		for _, q := range periods {
			r := rows[q]
			var v float64
			var ok bool
			if d.derive != nil {
				v, ok = d.derive(r, lookup)
			} else {
				v, ok = r.value(d.field)
			}
			if ok {
				points = append(points, models.Point{Period: q, Value: v})
			}
		}
		out = append(out, models.NewMetricSeries(institutionID, name, points, models.SourceLive))
	}
	return out, nil
}

func financialsFilter(cert string, from, to models.Quarter) string {
	return fmt.Sprintf("CERT:%s AND REPDTE:[%s TO %s]", cert, from.ReportDate(), to.ReportDate())
}

func joinFields(fields []string) string {
	return strings.Join(fields, ",")
}
