package service

import "PeerBench/internal/domain/models"

// ComparisonEngine computes the statistics for one metric. periods is the
// full quarter window; series may have gaps.
type ComparisonEngine interface {
	Compare(metric models.MetricInfo, focal models.MetricSeries, peers []models.MetricSeries, periods []models.Quarter) models.MetricComparison
}
