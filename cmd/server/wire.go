//go:build wireinject
// +build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"

	"jan-server/services/video-conference-api/internal/config"
	"jan-server/services/video-conference-api/internal/domain"
	"jan-server/services/video-conference-api/internal/infrastructure"
	"jan-server/services/video-conference-api/internal/interfaces/httpserver"
)

// ProviderSet is the wire provider set for the application.
var ProviderSet = wire.NewSet(
	// Infrastructure providers
	infrastructure.InfrastructureProvider,

	// Domain providers
	domain.ServiceProvider,
	ProvideSessionService,

	// Interface providers
	ProvideReadinessChecks,
	httpserver.New,

	// Application
	NewApplication,
)

// CreateApplication creates the application with all dependencies wired.
func CreateApplication(
	ctx context.Context,
	cfg *config.Config,
	log zerolog.Logger,
) (*Application, func(), error) {
	wire.Build(ProviderSet)
	return nil, nil, nil
}
