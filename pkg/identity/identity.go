// Package identity validates Microsoft Entra ID tokens against the tenant's
// published key set.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc"
	"github.com/golang-jwt/jwt/v4"
)

const (
	defaultFetchTimeout = 10 * time.Second
	maxKeySetBytes      = 1 << 20
)

// ErrInvalidToken covers every validation failure, including failing to
// fetch the key set.
var ErrInvalidToken = errors.New("invalid identity token")

// Config configures a Validator.
type Config struct {
	JWKSURL  string
	Issuer   string
	Audience string

	HTTPClient *http.Client

	// Cache is consulted only when CacheTTL > 0.
	Cache    KeySetCache
	CacheTTL time.Duration
}

// Claims are the identity attributes the exchange needs.
type Claims struct {
	Subject  string
	ObjectID string
	Email    string
	Name     string
}

type idTokenClaims struct {
	PreferredUsername string `json:"preferred_username"`
	Email             string `json:"email"`
	Name              string `json:"name"`
	OID               string `json:"oid"`
	jwt.RegisteredClaims
}

// Validator verifies RS256 identity tokens.
type Validator struct {
	jwksURL    string
	issuer     string
	audience   string
	httpClient *http.Client
	cache      KeySetCache
	cacheTTL   time.Duration
}

// NewValidator creates a Validator. It performs no network I/O.
func NewValidator(cfg Config) (*Validator, error) {
	jwksURL := strings.TrimSpace(cfg.JWKSURL)
	if jwksURL == "" {
		return nil, errors.New("identity validator requires a jwks url")
	}
	if strings.TrimSpace(cfg.Issuer) == "" || strings.TrimSpace(cfg.Audience) == "" {
		return nil, errors.New("identity validator requires issuer and audience")
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultFetchTimeout}
	}
	v := &Validator{
		jwksURL:    jwksURL,
		issuer:     strings.TrimSpace(cfg.Issuer),
		audience:   strings.TrimSpace(cfg.Audience),
		httpClient: client,
	}
	if cfg.Cache != nil && cfg.CacheTTL > 0 {
		v.cache = cfg.Cache
		v.cacheTTL = cfg.CacheTTL
	}
	return v, nil
}

// Validate checks signature, issuer, audience and time claims and returns
// the decoded identity.
func (v *Validator) Validate(ctx context.Context, rawToken string) (*Claims, error) {
	raw, cached, err := v.keySet(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, err := v.parse(rawToken, raw)
	if err != nil && cached && errors.Is(err, keyfunc.ErrKIDNotFound) {
		// Cached set may predate a key rotation.
		if raw, _, err = v.keySet(ctx, true); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
		}
		claims, err = v.parse(rawToken, raw)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	email := claims.PreferredUsername
	if email == "" {
		email = claims.Email
	}
	return &Claims{
		Subject:  claims.Subject,
		ObjectID: claims.OID,
		Email:    email,
		Name:     claims.Name,
	}, nil
}

func (v *Validator) parse(rawToken string, keySet json.RawMessage) (*idTokenClaims, error) {
	jwks, err := keyfunc.NewJSON(keySet)
	if err != nil {
		return nil, fmt.Errorf("parse jwks: %w", err)
	}

	claims := &idTokenClaims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))
	token, err := parser.ParseWithClaims(rawToken, claims, jwks.Keyfunc)
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token not valid")
	}
	if !claims.VerifyIssuer(v.issuer, true) {
		return nil, errors.New("issuer mismatch")
	}
	if !claims.VerifyAudience(v.audience, true) {
		return nil, errors.New("audience mismatch")
	}
	return claims, nil
}

// keySet returns the raw JWKS document and whether it came from the cache.
func (v *Validator) keySet(ctx context.Context, skipCache bool) (json.RawMessage, bool, error) {
	if v.cache != nil && !skipCache {
		raw, ok, err := v.cache.Get(ctx, v.issuer)
		if err != nil {
			slog.WarnContext(ctx, "jwks cache read failed", "issuer", v.issuer, "error", err)
		} else if ok {
			return raw, true, nil
		}
	}

	raw, err := v.fetch(ctx)
	if err != nil {
		return nil, false, err
	}
	if v.cache != nil {
		if err := v.cache.Set(ctx, v.issuer, raw, v.cacheTTL); err != nil {
			slog.WarnContext(ctx, "jwks cache write failed", "issuer", v.issuer, "error", err)
		}
	}
	return raw, false, nil
}

func (v *Validator) fetch(ctx context.Context) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.jwksURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := v.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch jwks from %s: %w", v.jwksURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch jwks from %s: status %d", v.jwksURL, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxKeySetBytes))
	if err != nil {
		return nil, fmt.Errorf("read jwks: %w", err)
	}
	if !json.Valid(body) {
		return nil, errors.New("jwks response is not json")
	}
	return json.RawMessage(body), nil
}
