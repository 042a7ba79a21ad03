//go:build wireinject
// +build wireinject

package di

import (
	domrepo "PeerBench/internal/domain/repository"
	"PeerBench/pkg/config"
	"PeerBench/pkg/metrics"
	"PeerBench/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Observability
		ProvideLogger,
		ProvideMetrics,
		wire.Bind(new(domrepo.Metrics), new(*metrics.Recorder)),

		// Infrastructure
		ProvideCacheStore,
		ProvideResultPublisher,

		// Data access
		ProvideCatalog,
		ProvideFDICClient,
		ProvideSeriesCache,
		ProvideInstitutionCache,
		ProvideRoster,

		// Use cases
		ProvideEngine,
		ProvideComparisonUseCase,

		// HTTP
		ProvideRateLimiter,
		ProvideHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
