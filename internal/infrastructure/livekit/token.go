package livekit

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/livekit/protocol/auth"

	"jan-server/services/video-conference-api/internal/config"
	"jan-server/services/video-conference-api/internal/domain/videosession"
)

// participantMetadata is attached to every token so clients can tell who is who.
// TokenID makes every issuance distinct even within the same second.
type participantMetadata struct {
	Role    string `json:"role"`
	TokenID string `json:"token_id"`
}

// TokenGenerator generates LiveKit access tokens.
type TokenGenerator struct {
	apiKey    string
	apiSecret string
	ttl       time.Duration
	now       func() time.Time
}

// NewTokenGenerator creates a new token generator.
func NewTokenGenerator(cfg *config.Config) *TokenGenerator {
	return &TokenGenerator{
		apiKey:    cfg.LiveKitAPIKey,
		apiSecret: cfg.LiveKitAPISecret,
		ttl:       cfg.LiveKitTokenTTL,
		now:       time.Now,
	}
}

// Generate creates a LiveKit access token that lets the participant join the
// grant's room. Teacher and student receive the same media permissions.
func (g *TokenGenerator) Generate(grant videosession.ParticipantGrant) (*videosession.Credential, error) {
	if grant.RoomName == "" {
		return nil, fmt.Errorf("room name is required")
	}
	if grant.ParticipantID == "" {
		return nil, fmt.Errorf("participant identity is required")
	}

	metadata, err := json.Marshal(participantMetadata{
		Role:    string(grant.Role),
		TokenID: uuid.NewString(),
	})
	if err != nil {
		return nil, fmt.Errorf("encode participant metadata: %w", err)
	}

	canPublish := true
	canSubscribe := true
	canPublishData := true

	videoGrant := &auth.VideoGrant{
		RoomJoin:       true,
		Room:           grant.RoomName,
		CanPublish:     &canPublish,
		CanSubscribe:   &canSubscribe,
		CanPublishData: &canPublishData,
	}

	name := grant.ParticipantName
	if name == "" {
		name = grant.ParticipantID
	}

	at := auth.NewAccessToken(g.apiKey, g.apiSecret)
	at.AddGrant(videoGrant).
		SetIdentity(grant.ParticipantID).
		SetName(name).
		SetMetadata(string(metadata)).
		SetValidFor(g.ttl)

	issuedAt := g.now()
	token, err := at.ToJWT()
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	return &videosession.Credential{
		Token:     token,
		ExpiresAt: issuedAt.Add(g.ttl).UTC(),
		RoomName:  grant.RoomName,
		Identity:  grant.ParticipantID,
	}, nil
}
