package medications

import (
	"context"
	"errors"

	"github.com/orchestrate-poc/endpoints/backends"
)

var cacheLogger = log.WithField("prefix", "HIV CACHE")

// CachedChecker remembers answers of the wrapped Checker in a backend. Cache
// failures are logged and never fail a check.
type CachedChecker struct {
	Checker Checker
	Cache   backends.Backend
	// OnHit is called for every answer served from the cache
	OnHit func()
}

func (c *CachedChecker) IsHIV(ctx context.Context, presentacion string) (bool, error) {
	var cached bool
	err := c.Cache.GetKey(presentacion, &cached)
	switch {
	case err == nil:
		if c.OnHit != nil {
			c.OnHit()
		}
		return cached, nil
	case !errors.Is(err, backends.ErrNotFound):
		cacheLogger.WithError(err).Warn("Cache lookup failed")
	}

	esHIV, err := c.Checker.IsHIV(ctx, presentacion)
	if err != nil {
		return false, err
	}

	if err := c.Cache.SetKey(presentacion, esHIV); err != nil {
		cacheLogger.WithError(err).Warn("Cache store failed")
	}
	return esHIV, nil
}
