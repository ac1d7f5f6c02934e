package anilist

import (
	"context"
	"fmt"
	"strings"

	"github.com/anisan-cli/skipsync/log"
	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/samber/lo"
)

// maxTries bounds how many shorter names FindClosest searches for.
const maxTries = 3

func normalizedName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// FindClosest searches for name and returns the result whose titles are closest to it.
// When nothing matches, the last word of the name is dropped and the search repeated.
func (c *Client) FindClosest(ctx context.Context, name string) (Anime, error) {
	name = normalizedName(name)

	for query, try := name, 0; try < maxTries; try++ {
		animes, err := c.Search(ctx, query)
		if err != nil {
			return Anime{}, err
		}

		if len(animes) > 0 {
			closest := lo.MinBy(animes, func(a, b Anime) bool {
				return distance(name, a) < distance(name, b)
			})
			log.Infof("anilist: closest match for %q is %q", name, closest.Name())
			return closest, nil
		}

		words := strings.Fields(query)
		if len(words) <= 2 {
			break
		}
		query = strings.Join(words[:len(words)-1], " ")
		log.Infof("anilist: no results, trying %q", query)
	}

	return Anime{}, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// distance is the smallest edit distance between name and any title of a.
func distance(name string, a Anime) int {
	return lo.Min(lo.Map(a.Names(), func(n string, _ int) int {
		return levenshtein.Distance(name, normalizedName(n))
	}))
}
