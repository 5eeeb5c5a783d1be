package cache

import (
	"time"

	"github.com/TemirB/orders-api/internal/domain"
)

// DefaultTTL applies whenever Set is called with a non-positive ttl.
const DefaultTTL = time.Hour

func effectiveTTL(ttl, def time.Duration) time.Duration {
	if ttl > 0 {
		return ttl
	}
	if def > 0 {
		return def
	}
	return DefaultTTL
}

var (
	_ domain.Cache = (*Redis)(nil)
	_ domain.Cache = (*Memory)(nil)
)
