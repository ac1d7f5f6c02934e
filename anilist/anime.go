// Package anilist resolves anime titles to their AniList and MyAnimeList ids.
package anilist

// Anime is the part of an AniList media record skipsync uses.
type Anime struct {
	// ID is the unique identifier for the anime on Anilist.
	ID int `json:"id"`
	// IDMal is the id of the anime on MyAnimeList, zero when AniList does not know it.
	IDMal int `json:"idMal"`
	Title struct {
		Romaji  string `json:"romaji"`
		English string `json:"english"`
		Native  string `json:"native"`
	} `json:"title"`
	// Synonyms are alternative titles.
	Synonyms []string `json:"synonyms"`
	// Episodes is the number of episodes when complete.
	Episodes int `json:"episodes"`
	// Duration of an episode in minutes.
	Duration   int    `json:"duration"`
	Format     string `json:"format"`
	SeasonYear int    `json:"seasonYear"`
}

// Name returns the primary display name of the anime. If English is available, it is preferred; otherwise, Romaji is used.
func (a *Anime) Name() string {
	if a.Title.English == "" {
		return a.Title.Romaji
	}
	return a.Title.English
}

// Names lists every title the anime is known by.
func (a *Anime) Names() []string {
	names := []string{a.Title.English, a.Title.Romaji, a.Title.Native}
	names = append(names, a.Synonyms...)

	var out []string
	for _, n := range names {
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}
