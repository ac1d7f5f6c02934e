package source

import (
	"context"
	"strconv"

	"github.com/anisan-cli/skipsync/internal/cache"
	"github.com/anisan-cli/skipsync/log"
)

// Cached remembers what Source answered for a request, including that it knew nothing.
// Failed lookups are not remembered.
type Cached struct {
	Source Source
	Cache  cache.Cache
}

func (c Cached) Name() string { return c.Source.Name() }

func (c Cached) Segments(ctx context.Context, req Request) (Result, error) {
	key := cache.Key(c.Source.Name(), strconv.Itoa(req.MALID), strconv.Itoa(req.Episode), req.Media)

	var r Result
	if c.Cache.Read(key, &r) {
		log.Debugf("source: %s answered from cache", c.Source.Name())
		return r, nil
	}

	r, err := c.Source.Segments(ctx, req)
	if err != nil || r.Status == 0 {
		return r, err
	}

	if err := c.Cache.Write(key, r); err != nil {
		log.Warnf("source: caching %s: %v", c.Source.Name(), err)
	}
	return r, nil
}
