package anilist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/anisan-cli/skipsync/internal/cache"
	"github.com/anisan-cli/skipsync/log"
	"github.com/anisan-cli/skipsync/network"
	"github.com/anisan-cli/skipsync/util"
)

// DefaultURL is the AniList GraphQL endpoint.
const DefaultURL = "https://graphql.anilist.co"

// SearchLifetime is how long search results are cached.
const SearchLifetime = 10 * 24 * time.Hour

// ErrNotFound is returned when no anime matches.
var ErrNotFound = errors.New("anime not found on AniList")

// Client queries AniList.
type Client struct {
	URL  string
	HTTP *http.Client
	// Cache keeps search results. Nil disables caching.
	Cache *cache.Cache
}

// New creates a client for DefaultURL.
func New() *Client {
	return &Client{URL: DefaultURL, HTTP: network.Client}
}

type searchByNameResponse struct {
	Data struct {
		Page struct {
			Media []Anime `json:"media"`
		} `json:"page"`
	} `json:"data"`
}

type searchByIDResponse struct {
	Data struct {
		Media *Anime `json:"media"`
	} `json:"data"`
}

// Search returns the anime matching name, best matches first as ranked by AniList.
func (c *Client) Search(ctx context.Context, name string) ([]Anime, error) {
	name = normalizedName(name)
	key := cache.Key("anilist", "search", name)

	var animes []Anime
	if c.Cache != nil && c.Cache.Read(key, &animes) {
		return animes, nil
	}

	log.Infof("anilist: searching for %q", name)
	var response searchByNameResponse
	if err := c.do(ctx, searchByNameQuery, map[string]any{"query": name}, &response); err != nil {
		return nil, err
	}

	animes = response.Data.Page.Media
	log.Infof("anilist: %d results for %q", len(animes), name)
	if c.Cache != nil {
		if err := c.Cache.Write(key, animes); err != nil {
			log.Warnf("anilist: caching search: %v", err)
		}
	}
	return animes, nil
}

// ByID returns the anime with the given AniList id.
func (c *Client) ByID(ctx context.Context, id int) (Anime, error) {
	var response searchByIDResponse
	if err := c.do(ctx, searchByIDQuery, map[string]any{"id": id}, &response); err != nil {
		return Anime{}, err
	}
	if response.Data.Media == nil {
		return Anime{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	return *response.Data.Media, nil
}

func (c *Client) do(ctx context.Context, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(map[string]any{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("anilist: %w", err)
	}
	defer util.Ignore(resp.Body.Close)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("anilist: invalid response code %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
