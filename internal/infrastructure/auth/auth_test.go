package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jan-server/services/video-conference-api/internal/config"
	"jan-server/services/video-conference-api/internal/domain/videosession"
)

const testSecret = "test-secret-for-video-sessions"

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestValidator(t *testing.T, mutate func(*config.Config)) *Validator {
	t.Helper()
	cfg := &config.Config{
		AuthEnabled:   true,
		AuthJWTSecret: testSecret,
		AuthCacheSize: 16,
	}
	if mutate != nil {
		mutate(cfg)
	}
	v, err := NewValidator(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	return v
}

func signHS256(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func validClaims(sub, role string) jwt.MapClaims {
	return jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
		"iat":  time.Now().Unix(),
	}
}

type callerResponse struct {
	ID            string `json:"id"`
	Role          string `json:"role"`
	Authenticated bool   `json:"authenticated"`
}

func serve(t *testing.T, v *Validator, headers map[string]string) (*httptest.ResponseRecorder, callerResponse) {
	t.Helper()
	router := gin.New()
	router.Use(v.Middleware())
	router.GET("/whoami", func(c *gin.Context) {
		caller := CallerFrom(c)
		c.JSON(http.StatusOK, callerResponse{ID: caller.ID, Role: string(caller.Role), Authenticated: caller.Authenticated})
	})

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	for k, val := range headers {
		req.Header.Set(k, val)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var body callerResponse
	if w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func TestMiddleware_AnonymousWithoutToken(t *testing.T) {
	w, body := serve(t, newTestValidator(t, nil), nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, body.Authenticated)
	assert.Empty(t, body.ID)
}

func TestMiddleware_ValidToken(t *testing.T) {
	token := signHS256(t, validClaims("T1", "TEACHER"))
	w, body := serve(t, newTestValidator(t, nil), map[string]string{"Authorization": "Bearer " + token})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, callerResponse{ID: "T1", Role: "teacher", Authenticated: true}, body)
}

func TestMiddleware_RejectsBadTokens(t *testing.T) {
	wrongKey, err := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims("T1", "teacher")).SignedString([]byte("other-secret"))
	require.NoError(t, err)

	expired := validClaims("T1", "teacher")
	expired["exp"] = time.Now().Add(-2 * time.Hour).Unix()

	noExpiry := validClaims("T1", "teacher")
	delete(noExpiry, "exp")

	noSubject := validClaims("", "teacher")

	tests := map[string]string{
		"wrong key":  wrongKey,
		"expired":    signHS256(t, expired),
		"no expiry":  signHS256(t, noExpiry),
		"no subject": signHS256(t, noSubject),
		"garbage":    "not-a-jwt",
	}

	v := newTestValidator(t, nil)
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			w, _ := serve(t, v, map[string]string{"Authorization": "Bearer " + token})
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), "unauthorized_error")
		})
	}
}

func TestMiddleware_AudienceIsChecked(t *testing.T) {
	v := newTestValidator(t, func(cfg *config.Config) { cfg.AuthAudience = "jan-client" })

	claims := validClaims("S1", "student")
	claims["aud"] = "someone-else"
	w, _ := serve(t, v, map[string]string{"Authorization": "Bearer " + signHS256(t, claims)})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	claims["aud"] = []string{"account", "jan-client"}
	w, body := serve(t, v, map[string]string{"Authorization": "Bearer " + signHS256(t, claims)})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "S1", body.ID)
}

func TestMiddleware_GatewayHeaders(t *testing.T) {
	headers := map[string]string{"X-User-ID": "A1", "X-User-Role": "admin"}

	untrusted := newTestValidator(t, nil)
	_, body := serve(t, untrusted, headers)
	assert.False(t, body.Authenticated)

	trusted := newTestValidator(t, func(cfg *config.Config) { cfg.AuthTrustGatewayHeaders = true })
	_, body = serve(t, trusted, headers)
	assert.Equal(t, callerResponse{ID: "A1", Role: "admin", Authenticated: true}, body)

	disabled := newTestValidator(t, func(cfg *config.Config) { cfg.AuthEnabled = false })
	_, body = serve(t, disabled, headers)
	assert.Equal(t, "A1", body.ID)

	// With auth disabled a bearer token is ignored, not rejected.
	w, body := serve(t, disabled, map[string]string{"Authorization": "Bearer garbage"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.False(t, body.Authenticated)
}

func TestCallerFromClaims_RolePrecedence(t *testing.T) {
	claims := jwt.MapClaims{
		"sub":      "U1",
		"userType": "student",
		"realm_access": map[string]any{
			"roles": []any{"offline_access", "teacher", "admin"},
		},
	}
	caller, err := callerFromClaims(claims)
	require.NoError(t, err)
	assert.Equal(t, videosession.RoleAdmin, caller.Role)

	caller, err = callerFromClaims(jwt.MapClaims{"id": "U2", "userType": "TEACHER"})
	require.NoError(t, err)
	assert.Equal(t, "U2", caller.ID)
	assert.Equal(t, videosession.RoleTeacher, caller.Role)

	caller, err = callerFromClaims(jwt.MapClaims{"sub": "U3"})
	require.NoError(t, err)
	assert.Equal(t, videosession.Role(""), caller.Role)
	assert.True(t, caller.Authenticated)
}

func TestAuthenticate_CachesUntilExpiry(t *testing.T) {
	v := newTestValidator(t, nil)
	now := time.Now()
	v.now = func() time.Time { return now }

	claims := validClaims("T1", "teacher")
	claims["exp"] = now.Add(10 * time.Minute).Unix()
	token := signHS256(t, claims)

	caller, err := v.Authenticate(token)
	require.NoError(t, err)
	assert.Equal(t, "T1", caller.ID)
	assert.Equal(t, 1, v.cache.Len())

	// Well past expiry and leeway the cached entry is dropped and the token refused.
	now = now.Add(time.Hour)
	_, err = v.Authenticate(token)
	assert.ErrorIs(t, err, errInvalidToken)
	assert.Equal(t, 0, v.cache.Len())
}

func TestAuthenticate_RSATokenWithoutJWKS(t *testing.T) {
	v := newTestValidator(t, nil)
	// Header claims RS256; the signature is never checked because no key exists.
	token := "eyJhbGciOiJSUzI1NiIsInR5cCI6IkpXVCJ9.eyJzdWIiOiJUMSJ9.c2ln"
	_, err := v.Authenticate(token)
	assert.ErrorIs(t, err, errInvalidToken)
}

func TestNewValidator_WarnsWhenHeadersAreTrusted(t *testing.T) {
	var buf bytes.Buffer
	_, err := NewValidator(context.Background(), &config.Config{AuthEnabled: false}, zerolog.New(&buf))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), "authentication disabled")

	buf.Reset()
	_, err = NewValidator(context.Background(), &config.Config{
		AuthEnabled:             true,
		AuthJWTSecret:           "secret",
		AuthTrustGatewayHeaders: true,
	}, zerolog.New(&buf))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "trusting X-User-ID")
	assert.NotContains(t, buf.String(), "authentication disabled")

	buf.Reset()
	_, err = NewValidator(context.Background(), &config.Config{AuthEnabled: true, AuthJWTSecret: "secret"}, zerolog.New(&buf))
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}

func TestReady(t *testing.T) {
	assert.True(t, newTestValidator(t, nil).Ready())
	assert.True(t, newTestValidator(t, func(cfg *config.Config) { cfg.AuthEnabled = false }).Ready())
}
