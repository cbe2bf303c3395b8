package livekit

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"jan-server/services/video-conference-api/internal/domain/videosession"
	"jan-server/services/video-conference-api/internal/utils/idgen"
)

const generatedRoomIDLength = 16

var _ videosession.TokenIssuer = (*Issuer)(nil)

// Issuer provisions LiveKit rooms and signs participant tokens.
type Issuer struct {
	rooms  *RoomClient
	tokens *TokenGenerator
	log    zerolog.Logger
}

// NewIssuer creates an issuer on top of the room client and token generator.
func NewIssuer(rooms *RoomClient, tokens *TokenGenerator, log zerolog.Logger) *Issuer {
	return &Issuer{
		rooms:  rooms,
		tokens: tokens,
		log:    log.With().Str("component", "livekit-issuer").Logger(),
	}
}

// CreateRoom provisions roomName, or a freshly generated name when it is empty.
func (i *Issuer) CreateRoom(ctx context.Context, roomName string) (*videosession.Room, error) {
	name := strings.TrimSpace(roomName)
	if name == "" {
		generated, err := idgen.GenerateSecureID("room", generatedRoomIDLength)
		if err != nil {
			return nil, fmt.Errorf("generate room name: %w", err)
		}
		name = generated
	}

	room, err := i.rooms.CreateRoom(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("create room %s: %w", name, err)
	}

	i.log.Debug().
		Str("room", room.Name).
		Int("max_participants", room.MaxParticipants).
		Dur("empty_timeout", room.EmptyTimeout).
		Msg("room provisioned")
	return room, nil
}

// IssueToken signs a credential for the grant. Signing is local, so it is
// never retried.
func (i *Issuer) IssueToken(_ context.Context, grant videosession.ParticipantGrant) (*videosession.Credential, error) {
	return i.tokens.Generate(grant)
}

// DestroyRoom deletes the room, tolerating rooms that are already gone.
func (i *Issuer) DestroyRoom(ctx context.Context, roomName string) error {
	if err := i.rooms.DeleteRoom(ctx, roomName); err != nil {
		return fmt.Errorf("delete room %s: %w", roomName, err)
	}
	i.log.Debug().Str("room", roomName).Msg("room deleted")
	return nil
}
