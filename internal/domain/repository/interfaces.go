package repository

import (
	"context"
	"time"

	"PeerBench/internal/domain/models"
)

// SeriesFetcher loads quarterly series for one institution from the
// upstream API. Failures wrap models.ErrDataUnavailable.
type SeriesFetcher interface {
	FetchSeries(ctx context.Context, institutionID string, start, end models.Quarter, metrics []string) ([]models.MetricSeries, error)
}

// InstitutionLookup resolves a certificate number to its registered name.
type InstitutionLookup interface {
	LookupInstitution(ctx context.Context, institutionID string) (models.Institution, error)
}

// FetchFunc produces fresh data for a cache miss.
type FetchFunc func(ctx context.Context) (models.InstitutionData, error)

// SeriesCache memoises fetches by key and substitutes synthetic data when a
// fetch fails and fallback is enabled.
type SeriesCache interface {
	GetOrFetch(ctx context.Context, key models.SeriesKey, fetch FetchFunc) (models.InstitutionData, error)
}

// InstitutionDirectory is the configured roster of known banks.
type InstitutionDirectory interface {
	// Resolve matches a certificate number, name or alias.
	Resolve(ref string) (models.Institution, bool)
	All() []models.Institution
}

// MetricCatalog lists the metrics the fetcher knows how to produce.
type MetricCatalog interface {
	Lookup(name string) (models.MetricInfo, bool)
	All() []models.MetricInfo
}

// ResultPublisher ships assembled comparisons to downstream consumers.
type ResultPublisher interface {
	Publish(ctx context.Context, result *models.ComparisonResult) error
	Close() error
}

type Metrics interface {
	RecordFetch(endpoint string, dur time.Duration, err error)
	RecordCacheEvent(event string)
	RecordComparison(status, source string, dur time.Duration)
	RecordPublish(topic string, bytes int, err error)
	RecordError(kind string)
}
