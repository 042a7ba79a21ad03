package models

type Unit string

const (
	UnitPercent   Unit = "percent"
	UnitThousands Unit = "thousands_usd"
	UnitRatio     Unit = "ratio"
)

// MetricInfo describes one entry of the metric catalogue.
type MetricInfo struct {
	Name        string   `json:"name"`
	Label       string   `json:"label"`
	Unit        Unit     `json:"unit"`
	Description string   `json:"description"`
	Fields      []string `json:"fields"`
	Derived     bool     `json:"derived"`
	// HigherIsBetter drives the quartile group; false for cost and risk ratios.
	HigherIsBetter bool `json:"higher_is_better"`
}
