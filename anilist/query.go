package anilist

import "fmt"

var animeSubquery = `
id
idMal
title {
	romaji
	english
	native
}
synonyms
episodes
duration
format
seasonYear
`

var searchByNameQuery = fmt.Sprintf(`
query ($query: String) {
	Page (page: 1, perPage: 20) {
		media (search: $query, type: ANIME) {
			%s
		}
	}
}
`, animeSubquery)

var searchByIDQuery = fmt.Sprintf(`
query ($id: Int) {
	Media (id: $id, type: ANIME) {
		%s
	}
}`, animeSubquery)
