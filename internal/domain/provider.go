package domain

import (
	"github.com/google/wire"

	"jan-server/services/video-conference-api/internal/config"
	"jan-server/services/video-conference-api/internal/domain/videosession"
)

// ServiceProvider provides domain configuration for the session service.
var ServiceProvider = wire.NewSet(
	ProvidePolicy,
	ProvideServiceOptions,
)

// ProvidePolicy builds the authorization policy from config.
func ProvidePolicy(cfg *config.Config) videosession.Policy {
	return videosession.NewPolicy(videosession.PolicyOptions{
		EnforceOwnership: cfg.EnforceOwnership,
	})
}

// ProvideServiceOptions maps config onto service options.
func ProvideServiceOptions(cfg *config.Config) videosession.Options {
	return videosession.Options{
		MediaURL: cfg.LiveKitURL,
	}
}
