//go:build wireinject
// +build wireinject

package di

import (
	"EventWeights/pkg/config"
	"EventWeights/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Infrastructure
		ProvideKafkaProducer,
		ProvideLogger,
		ProvideMetrics,
		ProvideSource,
		ProvideResponseCache,
		ProvideTraceReporter,

		// Snapshot and use cases
		ProvideInstruments,
		ProvideHolder,
		ProvideReloader,
		ProvideWeightCalculator,

		// HTTP
		ProvideWeightsHandler,
		ProvideHTTPServer,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
