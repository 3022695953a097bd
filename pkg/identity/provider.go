package identity

import (
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// ProviderOptions describe the Microsoft Entra tenant and how key sets are cached.
type ProviderOptions struct {
	Issuer   string
	JWKSURL  string
	ClientID string

	// CacheTTL of zero fetches the key set on every validation.
	CacheTTL time.Duration
	// Redis, when set, shares cached key sets between instances.
	Redis *redis.Client
}

// InitMicrosoft builds the validator for Microsoft ID tokens, choosing the
// key-set cache from opts.
func InitMicrosoft(opts ProviderOptions) (*Validator, error) {
	cfg := Config{
		JWKSURL:  opts.JWKSURL,
		Issuer:   opts.Issuer,
		Audience: opts.ClientID,
		CacheTTL: opts.CacheTTL,
	}

	cacheKind := "none"
	switch {
	case opts.CacheTTL <= 0:
	case opts.Redis != nil:
		cfg.Cache = NewRedisCache(opts.Redis)
		cacheKind = "redis"
	default:
		cfg.Cache = NewMemoryCache()
		cacheKind = "memory"
	}

	v, err := NewValidator(cfg)
	if err != nil {
		return nil, err
	}
	slog.Info("microsoft identity validator initialized", "issuer", opts.Issuer, "jwks_cache", cacheKind, "jwks_cache_ttl", opts.CacheTTL)
	return v, nil
}
