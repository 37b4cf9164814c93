//go:build wireinject
// +build wireinject

package di

import (
	"GovTracker/internal/domain/repository"
	"GovTracker/internal/usecase"
	"GovTracker/pkg/config"
	"GovTracker/pkg/metrics"
	"GovTracker/pkg/server"

	"github.com/google/wire"
)

var commonSet = wire.NewSet(
	ProvideLogger,
	ProvideMetrics,
	wire.Bind(new(repository.Metrics), new(*metrics.Recorder)),
	ProvideUniverse,
)

// InitializeApp wires the dashboard server.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		commonSet,

		// Snapshot reads
		ProvideCache,
		ProvideSeriesCache,
		ProvideSnapshotStore,

		// Use cases
		usecase.NewDashboardUseCase,
		ProvideRefreshEventsHandler,

		// Transport
		ProvideHealth,
		ProvideHTTPHandler,
		ProvideHTTPServer,
		ProvideKafkaConsumer,

		ProvideApp,
	)
	return nil, nil, nil
}

// InitializeFetchJob wires the snapshot refresh job.
func InitializeFetchJob(cfg *config.Config) (*server.FetchJob, func(), error) {
	wire.Build(
		commonSet,

		// Sinks
		ProvideFetchStore,
		ProvideClickHouseClient,
		ProvideYieldMirror,
		ProvideKafkaProducer,
		ProvideRefreshPublisher,

		// Source
		ProvideEODSource,

		ProvideSnapshotRefresher,
		server.NewFetchJob,
	)
	return nil, nil, nil
}
