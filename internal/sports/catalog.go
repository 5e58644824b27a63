// Package sports aggregates scoreboard, news, and betting odds into a single
// chat-sized league report.
package sports

import "strings"

// League is a static catalog entry tying a league key to its data sources.
type League struct {
	Key        string // user-facing key, e.g. "nfl"
	OddsID     string // sport key at the odds provider
	Scoreboard string // ESPN scoreboard endpoint
	News       string // ESPN news endpoint
}

const espnSiteAPI = "https://site.api.espn.com/apis/site/v2/sports"

// leagues is the supported catalog in display order.
var leagues = []League{
	{
		Key:        "nfl",
		OddsID:     "americanfootball_nfl",
		Scoreboard: espnSiteAPI + "/football/nfl/scoreboard",
		News:       espnSiteAPI + "/football/nfl/news",
	},
	{
		Key:        "nba",
		OddsID:     "basketball_nba",
		Scoreboard: espnSiteAPI + "/basketball/nba/scoreboard",
		News:       espnSiteAPI + "/basketball/nba/news",
	},
	{
		Key:        "nhl",
		OddsID:     "icehockey_nhl",
		Scoreboard: espnSiteAPI + "/hockey/nhl/scoreboard",
		News:       espnSiteAPI + "/hockey/nhl/news",
	},
	{
		Key:        "mlb",
		OddsID:     "baseball_mlb",
		Scoreboard: espnSiteAPI + "/baseball/mlb/scoreboard",
		News:       espnSiteAPI + "/baseball/mlb/news",
	},
}

// LookupLeague resolves a league key case-insensitively.
func LookupLeague(key string) (League, bool) {
	key = strings.ToLower(key)
	for _, l := range leagues {
		if l.Key == key {
			return l, true
		}
	}
	return League{}, false
}

// ValidKeys returns the supported league keys joined for user messages.
func ValidKeys() string {
	keys := make([]string, len(leagues))
	for i, l := range leagues {
		keys[i] = l.Key
	}
	return strings.Join(keys, ", ")
}
