// Package aniskip fetches opening, ending and recap times from the AniSkip API and
// turns them into segments.
package aniskip

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/anisan-cli/skipsync/log"
	"github.com/anisan-cli/skipsync/network"
	"github.com/anisan-cli/skipsync/segment"
	"github.com/samber/lo"
)

// DefaultBaseURL is the public AniSkip v2 endpoint.
const DefaultBaseURL = "https://api.aniskip.com/v2/skip-times"

// SkipType is an AniSkip segment type.
type SkipType string

const (
	Opening      SkipType = "op"
	Ending       SkipType = "ed"
	MixedOpening SkipType = "mixed-op"
	MixedEnding  SkipType = "mixed-ed"
	Recap        SkipType = "recap"
)

// Category maps t to the segment category it is skipped as.
func (t SkipType) Category() (segment.Category, bool) {
	switch t {
	case Opening, MixedOpening:
		return segment.Intro, true
	case Ending, MixedEnding:
		return segment.Outro, true
	case Recap:
		return segment.Filler, true
	default:
		return "", false
	}
}

// Result is the lookup outcome. Status is the HTTP status of the response.
type Result struct {
	Status        int
	Found         bool
	EpisodeLength float64
	Segments      []segment.Segment
}

type response struct {
	Found   bool `json:"found"`
	Results []struct {
		Interval struct {
			StartTime float64 `json:"startTime"`
			EndTime   float64 `json:"endTime"`
		} `json:"interval"`
		SkipType      SkipType `json:"skipType"`
		SkipID        string   `json:"skipId"`
		EpisodeLength float64  `json:"episodeLength"`
	} `json:"results"`
}

// Client queries AniSkip.
type Client struct {
	BaseURL string
	HTTP    *http.Client
	Types   []SkipType
}

// New returns a client for the public API asking for types.
func New(types ...SkipType) *Client {
	if len(types) == 0 {
		types = []SkipType{Opening, Ending, Recap}
	}
	return &Client{BaseURL: DefaultBaseURL, HTTP: network.Client, Types: types}
}

// SkipTimes looks up the segments of an episode. episodeLength may be 0 when unknown.
//
// A missing entry is not an error: the result has Found set to false.
func (c *Client) SkipTimes(ctx context.Context, malID, episode int, episodeLength float64) (Result, error) {
	if malID <= 0 || episode <= 0 {
		return Result{}, fmt.Errorf("aniskip: invalid mal id %d or episode %d", malID, episode)
	}

	query := url.Values{}
	for _, t := range c.Types {
		query.Add("types[]", string(t))
	}
	query.Set("episodeLength", strconv.FormatFloat(episodeLength, 'f', -1, 64))
	endpoint := fmt.Sprintf("%s/%d/%d?%s", c.BaseURL, malID, episode, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Result{}, fmt.Errorf("aniskip: %w", err)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("aniskip: %w", err)
	}
	defer resp.Body.Close()

	result := Result{Status: resp.StatusCode}
	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return result, nil
	default:
		return result, fmt.Errorf("aniskip: unexpected status %d", resp.StatusCode)
	}

	var data response
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return result, fmt.Errorf("aniskip: parse response: %w", err)
	}

	result.Found = data.Found && len(data.Results) > 0
	for i, r := range data.Results {
		category, ok := r.SkipType.Category()
		if !ok {
			log.Debugf("aniskip: ignoring skip type %q", r.SkipType)
			continue
		}

		id := r.SkipID
		if id == "" {
			id = fmt.Sprintf("aniskip-%d-%d-%s-%d", malID, episode, r.SkipType, i)
		}

		result.EpisodeLength = max(result.EpisodeLength, r.EpisodeLength)
		result.Segments = append(result.Segments, segment.Segment{
			ID:       segment.ID(id),
			Start:    r.Interval.StartTime,
			End:      r.Interval.EndTime,
			Category: category,
		})
	}

	result.Segments = lo.Filter(result.Segments, func(seg segment.Segment, _ int) bool {
		return seg.Validate() == nil
	})

	return result, nil
}
