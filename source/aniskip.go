package source

import (
	"context"

	"github.com/anisan-cli/skipsync/aniskip"
)

// Aniskip looks up anime episodes by MAL id.
type Aniskip struct {
	Client *aniskip.Client
}

func (Aniskip) Name() string { return "aniskip" }

func (s Aniskip) Segments(ctx context.Context, req Request) (Result, error) {
	if req.MALID <= 0 || req.Episode <= 0 {
		return Result{}, nil
	}

	r, err := s.Client.SkipTimes(ctx, req.MALID, req.Episode, req.Duration)
	return Result{
		Status:   r.Status,
		Found:    r.Found,
		Duration: r.EpisodeLength,
		Segments: r.Segments,
	}, err
}
