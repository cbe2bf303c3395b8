package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/zerolog"

	"jan-server/services/video-conference-api/internal/config"
	"jan-server/services/video-conference-api/internal/domain/videosession"
)

const clockSkew = time.Minute

var (
	errInvalidToken = errors.New("invalid token")
	errNoKey        = errors.New("no verification key for token algorithm")
)

type cachedCaller struct {
	caller    videosession.Caller
	expiresAt time.Time
}

// Validator verifies bearer tokens and maps their claims to a Caller.
// HS256 tokens are checked against JWT_SECRET, RS* tokens against the
// Keycloak JWKS. Verified callers are cached by token digest until expiry.
type Validator struct {
	cfg    *config.Config
	log    zerolog.Logger
	secret []byte
	jwks   *keyfunc.JWKS
	cache  *lru.Cache
	now    func() time.Time
}

// NewValidator initializes key material when auth is enabled.
func NewValidator(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Validator, error) {
	v := &Validator{
		cfg: cfg,
		log: log.With().Str("component", "auth").Logger(),
		now: time.Now,
	}
	if !cfg.AuthEnabled {
		v.log.Warn().Msg("authentication disabled: X-User-ID and X-User-Role headers are trusted from any client")
		return v, nil
	}
	if cfg.AuthTrustGatewayHeaders {
		v.log.Warn().Msg("trusting X-User-ID and X-User-Role headers; the service must only be reachable through the gateway")
	}

	if secret := strings.TrimSpace(cfg.AuthJWTSecret); secret != "" {
		v.secret = []byte(secret)
	}

	if cfg.AuthJWKSURL != "" {
		refresh := cfg.AuthJWKSRefresh
		if refresh <= 0 {
			refresh = time.Hour
		}
		jwks, err := keyfunc.Get(cfg.AuthJWKSURL, keyfunc.Options{
			Ctx:               ctx,
			RefreshInterval:   refresh,
			RefreshUnknownKID: true,
			RefreshErrorHandler: func(err error) {
				v.log.Error().Err(err).Msg("jwks refresh error")
			},
		})
		if err != nil {
			return nil, fmt.Errorf("load jwks: %w", err)
		}
		v.jwks = jwks
	}

	if cfg.AuthCacheSize > 0 {
		cache, err := lru.New(cfg.AuthCacheSize)
		if err != nil {
			return nil, fmt.Errorf("create claims cache: %w", err)
		}
		v.cache = cache
	}

	return v, nil
}

// Ready indicates if the validator is prepared.
func (v *Validator) Ready() bool {
	if v == nil || !v.cfg.AuthEnabled {
		return true
	}
	return v.secret != nil || v.jwks != nil
}

// Close stops the JWKS background refresh.
func (v *Validator) Close() {
	if v != nil && v.jwks != nil {
		v.jwks.EndBackground()
	}
}

// Authenticate verifies token and returns the caller it identifies.
func (v *Validator) Authenticate(token string) (videosession.Caller, error) {
	key := digest(token)
	if v.cache != nil {
		if cached, ok := v.cache.Get(key); ok {
			entry := cached.(cachedCaller)
			if v.now().Before(entry.expiresAt) {
				return entry.caller, nil
			}
			v.cache.Remove(key)
		}
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256", "RS256", "RS384", "RS512"}),
		jwt.WithLeeway(clockSkew),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(v.now),
	}
	if audience := strings.TrimSpace(v.cfg.AuthAudience); audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, v.keyFor, opts...)
	if err != nil || !parsed.Valid {
		return videosession.Caller{}, fmt.Errorf("%w: %v", errInvalidToken, err)
	}

	// Keycloak tokens must come from the configured realm.
	if _, isRSA := parsed.Method.(*jwt.SigningMethodRSA); isRSA {
		if issuer := strings.TrimSpace(v.cfg.AuthIssuer); issuer != "" {
			if iss, _ := claims.GetIssuer(); iss != issuer {
				return videosession.Caller{}, fmt.Errorf("%w: unexpected issuer %q", errInvalidToken, iss)
			}
		}
	}

	caller, err := callerFromClaims(claims)
	if err != nil {
		return videosession.Caller{}, err
	}

	if v.cache != nil {
		if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
			v.cache.Add(key, cachedCaller{caller: caller, expiresAt: exp.Time})
		}
	}
	return caller, nil
}

func (v *Validator) keyFor(token *jwt.Token) (any, error) {
	switch token.Method.(type) {
	case *jwt.SigningMethodHMAC:
		if v.secret == nil {
			return nil, errNoKey
		}
		return v.secret, nil
	case *jwt.SigningMethodRSA:
		if v.jwks == nil {
			return nil, errNoKey
		}
		return v.jwks.Keyfunc(token)
	default:
		return nil, errNoKey
	}
}

// callerFromClaims reads the subject and the most privileged known role.
// Roles may arrive as "role", "userType" or Keycloak realm roles.
func callerFromClaims(claims jwt.MapClaims) (videosession.Caller, error) {
	id, _ := claims.GetSubject()
	if id == "" {
		id, _ = claims["id"].(string)
	}
	if id == "" {
		return videosession.Caller{}, fmt.Errorf("%w: missing subject", errInvalidToken)
	}

	roles := make([]string, 0, 4)
	for _, key := range []string{"role", "userType"} {
		if raw, ok := claims[key].(string); ok {
			roles = append(roles, raw)
		}
	}
	if realm, ok := claims["realm_access"].(map[string]any); ok {
		if list, ok := realm["roles"].([]any); ok {
			for _, r := range list {
				if s, ok := r.(string); ok {
					roles = append(roles, s)
				}
			}
		}
	}

	return videosession.NewCaller(id, strongestRole(roles)), nil
}

func strongestRole(raw []string) videosession.Role {
	var best videosession.Role
	rank := map[videosession.Role]int{
		videosession.RoleStudent: 1,
		videosession.RoleTeacher: 2,
		videosession.RoleAdmin:   3,
	}
	for _, r := range raw {
		role := videosession.ParseRole(r)
		if rank[role] > rank[best] {
			best = role
		}
	}
	return best
}

func digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
