package handlers

import (
	"jan-server/services/video-conference-api/internal/domain/videosession"
)

// Provider holds all HTTP handlers.
type Provider struct {
	Session *SessionHandler
}

// NewProvider creates a new handler provider.
func NewProvider(session *SessionHandler) *Provider {
	return &Provider{
		Session: session,
	}
}

// NewProviderFromService builds the handlers directly from the service.
func NewProviderFromService(service videosession.Service) *Provider {
	return NewProvider(NewSessionHandler(service))
}
