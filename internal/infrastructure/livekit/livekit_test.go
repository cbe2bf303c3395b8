package livekit

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/livekit/protocol/livekit"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twitchtv/twirp"

	"jan-server/services/video-conference-api/internal/config"
	"jan-server/services/video-conference-api/internal/domain/videosession"
)

const (
	testAPIKey    = "devkey"
	testAPISecret = "0123456789abcdef0123456789abcdef"
)

func testConfig() *config.Config {
	return &config.Config{
		LiveKitURL:             "ws://livekit.test:7880",
		LiveKitAPIKey:          testAPIKey,
		LiveKitAPISecret:       testAPISecret,
		LiveKitTokenTTL:        time.Hour,
		LiveKitRequestTimeout:  time.Second,
		RoomEmptyTimeout:       30 * time.Minute,
		RoomMaxParticipants:    2,
		RoomCreateMaxRetries:   2,
		RoomCreateRetryBackoff: time.Millisecond,
	}
}

type fakeRoomService struct {
	mu           sync.Mutex
	createErrs   []error
	createCalls  []*livekit.CreateRoomRequest
	deleteErr    error
	deleted      []string
	rooms        []*livekit.Room
	participants []*livekit.ParticipantInfo
}

func (f *fakeRoomService) CreateRoom(_ context.Context, req *livekit.CreateRoomRequest) (*livekit.Room, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls = append(f.createCalls, req)
	if len(f.createErrs) > 0 {
		err := f.createErrs[0]
		f.createErrs = f.createErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &livekit.Room{Name: req.Name, EmptyTimeout: req.EmptyTimeout, MaxParticipants: req.MaxParticipants}, nil
}

func (f *fakeRoomService) DeleteRoom(_ context.Context, req *livekit.DeleteRoomRequest) (*livekit.DeleteRoomResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	f.deleted = append(f.deleted, req.Room)
	return &livekit.DeleteRoomResponse{}, nil
}

func (f *fakeRoomService) ListRooms(context.Context, *livekit.ListRoomsRequest) (*livekit.ListRoomsResponse, error) {
	return &livekit.ListRoomsResponse{Rooms: f.rooms}, nil
}

func (f *fakeRoomService) ListParticipants(_ context.Context, req *livekit.ListParticipantsRequest) (*livekit.ListParticipantsResponse, error) {
	if req.Room != "room_live" {
		return nil, twirp.NewError(twirp.NotFound, "room not found")
	}
	return &livekit.ListParticipantsResponse{Participants: f.participants}, nil
}

func parseToken(t *testing.T, token string) jwt.MapClaims {
	t.Helper()
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(tok *jwt.Token) (any, error) {
		return []byte(testAPISecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	return claims
}

func TestTokenGenerator_Generate(t *testing.T) {
	gen := NewTokenGenerator(testConfig())

	cred, err := gen.Generate(videosession.ParticipantGrant{
		RoomName:        "room_abc",
		ParticipantID:   "T1",
		ParticipantName: "Alice",
		Role:            videosession.RoleTeacher,
	})
	require.NoError(t, err)
	assert.Equal(t, "room_abc", cred.RoomName)
	assert.Equal(t, "T1", cred.Identity)
	assert.WithinDuration(t, time.Now().Add(time.Hour), cred.ExpiresAt, 5*time.Second)

	claims := parseToken(t, cred.Token)
	assert.Equal(t, testAPIKey, claims["iss"])
	assert.Equal(t, "T1", claims["sub"])
	assert.Equal(t, "Alice", claims["name"])

	video, ok := claims["video"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "room_abc", video["room"])
	assert.Equal(t, true, video["roomJoin"])
	assert.Equal(t, true, video["canPublish"])
	assert.Equal(t, true, video["canSubscribe"])
	assert.Equal(t, true, video["canPublishData"])

	var meta participantMetadata
	require.NoError(t, json.Unmarshal([]byte(claims["metadata"].(string)), &meta))
	assert.Equal(t, "teacher", meta.Role)
	assert.NotEmpty(t, meta.TokenID)
}

func TestTokenGenerator_SymmetricGrantsAndDistinctTokens(t *testing.T) {
	gen := NewTokenGenerator(testConfig())

	teacher, err := gen.Generate(videosession.ParticipantGrant{RoomName: "r", ParticipantID: "T1", Role: videosession.RoleTeacher})
	require.NoError(t, err)
	student1, err := gen.Generate(videosession.ParticipantGrant{RoomName: "r", ParticipantID: "S1", Role: videosession.RoleStudent})
	require.NoError(t, err)
	student2, err := gen.Generate(videosession.ParticipantGrant{RoomName: "r", ParticipantID: "S1", Role: videosession.RoleStudent})
	require.NoError(t, err)

	assert.NotEqual(t, student1.Token, student2.Token)
	assert.Equal(t, parseToken(t, teacher.Token)["video"], parseToken(t, student1.Token)["video"])
	// Without a display name the identity is used.
	assert.Equal(t, "S1", parseToken(t, student1.Token)["name"])
}

func TestTokenGenerator_RejectsIncompleteGrant(t *testing.T) {
	gen := NewTokenGenerator(testConfig())

	_, err := gen.Generate(videosession.ParticipantGrant{ParticipantID: "T1"})
	assert.Error(t, err)
	_, err = gen.Generate(videosession.ParticipantGrant{RoomName: "r"})
	assert.Error(t, err)
}

func TestRoomClient_CreateRoomRetriesTransientErrors(t *testing.T) {
	svc := &fakeRoomService{createErrs: []error{
		twirp.NewError(twirp.Unavailable, "starting up"),
		twirp.NewError(twirp.Internal, "hiccup"),
	}}
	client := newRoomClient(svc, testConfig(), zerolog.Nop())

	room, err := client.CreateRoom(context.Background(), "room_x")
	require.NoError(t, err)
	assert.Equal(t, "room_x", room.Name)
	assert.Equal(t, 2, room.MaxParticipants)
	assert.Equal(t, 30*time.Minute, room.EmptyTimeout)

	require.Len(t, svc.createCalls, 3)
	for _, call := range svc.createCalls {
		assert.Equal(t, "room_x", call.Name)
		assert.Equal(t, uint32(1800), call.EmptyTimeout)
		assert.Equal(t, uint32(1800), call.DepartureTimeout)
		assert.Equal(t, uint32(2), call.MaxParticipants)
	}
}

func TestRoomClient_CreateRoomGivesUp(t *testing.T) {
	down := twirp.NewError(twirp.Unavailable, "down")
	svc := &fakeRoomService{createErrs: []error{down, down, down, down}}
	client := newRoomClient(svc, testConfig(), zerolog.Nop())

	_, err := client.CreateRoom(context.Background(), "room_x")
	assert.Error(t, err)
	assert.Len(t, svc.createCalls, 3)
}

func TestRoomClient_CreateRoomDoesNotRetryPermanentErrors(t *testing.T) {
	svc := &fakeRoomService{createErrs: []error{twirp.NewError(twirp.PermissionDenied, "bad key")}}
	client := newRoomClient(svc, testConfig(), zerolog.Nop())

	_, err := client.CreateRoom(context.Background(), "room_x")
	assert.Error(t, err)
	assert.Len(t, svc.createCalls, 1)
}

func TestRoomClient_DeleteRoomIsIdempotent(t *testing.T) {
	svc := &fakeRoomService{deleteErr: twirp.NewError(twirp.NotFound, "room not found")}
	client := newRoomClient(svc, testConfig(), zerolog.Nop())
	assert.NoError(t, client.DeleteRoom(context.Background(), "gone"))

	svc.deleteErr = twirp.NewError(twirp.Unavailable, "down")
	assert.Error(t, client.DeleteRoom(context.Background(), "room_x"))
}

func TestRoomClient_ListRoomsAndParticipants(t *testing.T) {
	svc := &fakeRoomService{
		rooms: []*livekit.Room{
			{Name: "room_live", NumParticipants: 2, MaxParticipants: 2},
			{Name: "room_idle"},
		},
		participants: []*livekit.ParticipantInfo{
			{Identity: "T1", Name: "Alice", State: livekit.ParticipantInfo_ACTIVE, JoinedAt: 1700000000},
		},
	}
	client := newRoomClient(svc, testConfig(), zerolog.Nop())

	rooms, err := client.ListRooms(context.Background())
	require.NoError(t, err)
	require.Len(t, rooms, 2)
	assert.Equal(t, 2, rooms["room_live"].NumParticipants)

	participants, err := client.ListParticipants(context.Background(), "room_live")
	require.NoError(t, err)
	require.Len(t, participants, 1)
	assert.Equal(t, "T1", participants[0].Identity)
	assert.Equal(t, "ACTIVE", participants[0].State)
	assert.Equal(t, int64(1700000000), participants[0].JoinedAt.Unix())

	empty, err := client.ListParticipants(context.Background(), "room_gone")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestIssuer_CreateRoomGeneratesName(t *testing.T) {
	svc := &fakeRoomService{}
	issuer := NewIssuer(newRoomClient(svc, testConfig(), zerolog.Nop()), NewTokenGenerator(testConfig()), zerolog.Nop())

	room, err := issuer.CreateRoom(context.Background(), "")
	require.NoError(t, err)
	assert.Regexp(t, `^room_[0-9a-z]{16}$`, room.Name)

	named, err := issuer.CreateRoom(context.Background(), "  math-101 ")
	require.NoError(t, err)
	assert.Equal(t, "math-101", named.Name)

	require.NoError(t, issuer.DestroyRoom(context.Background(), "math-101"))
	assert.Equal(t, []string{"math-101"}, svc.deleted)
}
