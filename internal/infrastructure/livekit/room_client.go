package livekit

import (
	"context"
	"errors"
	"time"

	"github.com/livekit/protocol/livekit"
	lksdk "github.com/livekit/server-sdk-go/v2"
	"github.com/rs/zerolog"
	"github.com/twitchtv/twirp"

	"jan-server/services/video-conference-api/internal/config"
	"jan-server/services/video-conference-api/internal/domain/videosession"
	"jan-server/services/video-conference-api/internal/utils/retry"
)

// roomService is the subset of lksdk.RoomServiceClient used here.
type roomService interface {
	CreateRoom(ctx context.Context, req *livekit.CreateRoomRequest) (*livekit.Room, error)
	DeleteRoom(ctx context.Context, req *livekit.DeleteRoomRequest) (*livekit.DeleteRoomResponse, error)
	ListRooms(ctx context.Context, req *livekit.ListRoomsRequest) (*livekit.ListRoomsResponse, error)
	ListParticipants(ctx context.Context, req *livekit.ListParticipantsRequest) (*livekit.ListParticipantsResponse, error)
}

var _ videosession.RoomDirectory = (*RoomClient)(nil)

// RoomClient provides access to LiveKit room management APIs.
type RoomClient struct {
	client          roomService
	timeout         time.Duration
	emptyTimeout    time.Duration
	maxParticipants int
	createPolicy    retry.Policy
	log             zerolog.Logger
}

// NewRoomClient creates a new LiveKit room client.
func NewRoomClient(cfg *config.Config, log zerolog.Logger) *RoomClient {
	client := lksdk.NewRoomServiceClient(cfg.LiveKitURL, cfg.LiveKitAPIKey, cfg.LiveKitAPISecret)
	return newRoomClient(client, cfg, log)
}

func newRoomClient(client roomService, cfg *config.Config, log zerolog.Logger) *RoomClient {
	return &RoomClient{
		client:          client,
		timeout:         cfg.LiveKitRequestTimeout,
		emptyTimeout:    cfg.RoomEmptyTimeout,
		maxParticipants: cfg.RoomMaxParticipants,
		createPolicy: retry.Policy{
			MaxRetries:      cfg.RoomCreateMaxRetries,
			InitialDelay:    cfg.RoomCreateRetryBackoff,
			MaxDelay:        5 * time.Second,
			BackoffStrategy: retry.BackoffExponential,
			JitterFactor:    0.2,
			Retryable:       isTransient,
		},
		log: log.With().Str("component", "livekit-room-client").Logger(),
	}
}

// CreateRoom provisions a room. LiveKit returns the existing room when the
// name is already live, so retrying with the same name is safe.
func (c *RoomClient) CreateRoom(ctx context.Context, name string) (*videosession.Room, error) {
	room, err := retry.ExecuteWithResult(ctx, c.createPolicy, func(ctx context.Context, attempt int) (*livekit.Room, error) {
		if attempt > 0 {
			c.log.Warn().Str("room", name).Int("attempt", attempt).Msg("retrying room creation")
		}
		reqCtx, cancel := c.withTimeout(ctx)
		defer cancel()
		// The departure timeout shares the empty timeout so a room outlives
		// its last participant as long as it would have waited for the first.
		timeout := uint32(c.emptyTimeout / time.Second)
		return c.client.CreateRoom(reqCtx, &livekit.CreateRoomRequest{
			Name:             name,
			EmptyTimeout:     timeout,
			DepartureTimeout: timeout,
			MaxParticipants:  uint32(c.maxParticipants),
		})
	})
	if err != nil {
		return nil, err
	}
	return toRoom(room), nil
}

// DeleteRoom closes a room and disconnects everyone in it. A room that no
// longer exists is not an error.
func (c *RoomClient) DeleteRoom(ctx context.Context, name string) error {
	reqCtx, cancel := c.withTimeout(ctx)
	defer cancel()

	_, err := c.client.DeleteRoom(reqCtx, &livekit.DeleteRoomRequest{Room: name})
	if err != nil && twirpCode(err) == twirp.NotFound {
		return nil
	}
	return err
}

// ListRooms returns all live rooms keyed by name.
func (c *RoomClient) ListRooms(ctx context.Context) (map[string]videosession.Room, error) {
	reqCtx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.client.ListRooms(reqCtx, &livekit.ListRoomsRequest{})
	if err != nil {
		return nil, err
	}

	rooms := make(map[string]videosession.Room, len(resp.Rooms))
	for _, room := range resp.Rooms {
		rooms[room.Name] = *toRoom(room)
	}
	return rooms, nil
}

// ListParticipants returns the participants connected to a room.
func (c *RoomClient) ListParticipants(ctx context.Context, room string) ([]videosession.Participant, error) {
	reqCtx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.client.ListParticipants(reqCtx, &livekit.ListParticipantsRequest{Room: room})
	if err != nil {
		if twirpCode(err) == twirp.NotFound {
			return []videosession.Participant{}, nil
		}
		return nil, err
	}

	participants := make([]videosession.Participant, 0, len(resp.Participants))
	for _, p := range resp.Participants {
		participants = append(participants, videosession.Participant{
			Identity: p.Identity,
			Name:     p.Name,
			State:    p.State.String(),
			JoinedAt: time.Unix(p.JoinedAt, 0).UTC(),
		})
	}
	return participants, nil
}

func (c *RoomClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func toRoom(room *livekit.Room) *videosession.Room {
	return &videosession.Room{
		Name:            room.Name,
		MaxParticipants: int(room.MaxParticipants),
		EmptyTimeout:    time.Duration(room.EmptyTimeout) * time.Second,
		NumParticipants: int(room.NumParticipants),
	}
}

func twirpCode(err error) twirp.ErrorCode {
	var twerr twirp.Error
	if errors.As(err, &twerr) {
		return twerr.Code()
	}
	return ""
}

// isTransient reports whether a failed call may succeed if repeated.
func isTransient(err error) bool {
	if errors.Is(err, context.Canceled) {
		return false
	}
	switch twirpCode(err) {
	case twirp.InvalidArgument, twirp.Unauthenticated, twirp.PermissionDenied,
		twirp.AlreadyExists, twirp.FailedPrecondition, twirp.OutOfRange:
		return false
	}
	return true
}
