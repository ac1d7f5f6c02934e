// Package source looks up the segments of a video from local files and online providers.
package source

import (
	"context"

	"github.com/anisan-cli/skipsync/segment"
	"github.com/anisan-cli/skipsync/util"
	"golang.org/x/sync/errgroup"
)

// Request describes the video being looked up.
type Request struct {
	// Media is the path or URL loaded in the player.
	Media string
	// MALID and Episode identify an anime episode. Zero when unknown.
	MALID   int
	Episode int
	// Duration of the media in seconds. Zero when unknown.
	Duration float64
}

// Stem is the name segment files of the media are stored under.
func (r Request) Stem() string {
	return util.SanitizeFilename(util.FileStem(r.Media))
}

// Result is what a source knows about the video.
type Result struct {
	Source   string
	Status   int
	Found    bool
	Duration float64
	Locked   []segment.Category
	Segments []segment.Segment
}

// Source provides segments.
type Source interface {
	// Name identifies the source in logs and CLI output.
	Name() string

	// Segments looks up req. Not knowing the video is not an error.
	Segments(ctx context.Context, req Request) (Result, error)
}

// Lookup queries every source concurrently and hands each result to found as it
// arrives. found is never called concurrently. The first error is returned once every
// source is done; the other sources still report.
func Lookup(ctx context.Context, req Request, found func(Result, error), sources ...Source) error {
	results := make(chan lookupResult)

	var g errgroup.Group
	for _, s := range sources {
		g.Go(func() error {
			r, err := s.Segments(ctx, req)
			r.Source = s.Name()
			results <- lookupResult{r, err}
			return err
		})
	}

	done := make(chan error, 1)
	go func() {
		done <- g.Wait()
		close(results)
	}()

	for r := range results {
		found(r.Result, r.err)
	}
	return <-done
}

type lookupResult struct {
	Result
	err error
}
