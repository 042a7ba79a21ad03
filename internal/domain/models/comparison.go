package models

import (
	"time"

	"github.com/guregu/null/v6"
)

type Status string

const (
	StatusOK               Status = "ok"
	StatusFocalUnavailable Status = "focal_unavailable"
)

type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendFlat       Trend = "flat"
	TrendUnknown    Trend = "unknown"
)

type QuartileGroup string

const (
	QuartileTop    QuartileGroup = "top_25"
	QuartileMiddle QuartileGroup = "middle_50"
	QuartileBottom QuartileGroup = "bottom_25"
)

// PeriodStat is the focal institution's standing in one quarter.
type PeriodStat struct {
	Period     Quarter    `json:"period"`
	FocalValue null.Float `json:"focal_value"`
	Percentile null.Float `json:"percentile"`
	Rank       null.Int   `json:"rank"`
	// Count is the size of the comparison set (focal plus reporting peers).
	Count      int        `json:"count"`
	PeerMedian null.Float `json:"peer_median"`
	PeerMean   null.Float `json:"peer_mean"`
}

// SeriesStats summarises one institution's series over the window.
type SeriesStats struct {
	InstitutionID    string     `json:"institution_id"`
	Periods          int        `json:"periods"`
	First            null.Float `json:"first"`
	Last             null.Float `json:"last"`
	Mean             null.Float `json:"mean"`
	GrowthRate       null.Float `json:"growth_rate"`
	AnnualizedGrowth null.Float `json:"annualized_growth"`
	Volatility       null.Float `json:"volatility"`
	Slope            null.Float `json:"slope"`
	Trend            Trend      `json:"trend"`
}

type PeerCorrelation struct {
	PeerID      string     `json:"peer_id"`
	Correlation null.Float `json:"correlation"`
	Overlap     int        `json:"overlap"`
}

// Snapshot describes the latest quarter in which the focal bank reported.
type Snapshot struct {
	Period     Quarter       `json:"period"`
	Value      null.Float    `json:"value"`
	Percentile null.Float    `json:"percentile"`
	ZScore     null.Float    `json:"z_score"`
	Group      QuartileGroup `json:"group,omitempty"`
}

type MetricComparison struct {
	Metric            string            `json:"metric"`
	Unit              Unit              `json:"unit"`
	Periods           []PeriodStat      `json:"periods"`
	Focal             SeriesStats       `json:"focal"`
	Peers             []SeriesStats     `json:"peers"`
	Correlations      []PeerCorrelation `json:"correlations"`
	Latest            *Snapshot         `json:"latest,omitempty"`
	MostSimilarPeer   string            `json:"most_similar_peer,omitempty"`
	LeastSimilarPeer  string            `json:"least_similar_peer,omitempty"`
	PeerAvgGrowth     null.Float        `json:"peer_avg_growth"`
	PeerAvgVolatility null.Float        `json:"peer_avg_volatility"`
}

type ExcludedPeer struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// ComparisonResult is assembled once per query and never mutated after.
type ComparisonResult struct {
	ID          string             `json:"id"`
	Status      Status             `json:"status"`
	Message     string             `json:"message,omitempty"`
	Focal       Institution        `json:"focal"`
	Peers       []Institution      `json:"peers"`
	Excluded    []ExcludedPeer     `json:"excluded,omitempty"`
	Metrics     []string           `json:"metrics"`
	Start       Quarter            `json:"start"`
	End         Quarter            `json:"end"`
	DataSource  Source             `json:"data_source,omitempty"`
	Sources     map[string]Source  `json:"sources"`
	Comparisons []MetricComparison `json:"comparisons"`
	GeneratedAt time.Time          `json:"generated_at"`
}
