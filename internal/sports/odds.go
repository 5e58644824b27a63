package sports

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/sourcehf/convo/internal/fetch"
)

// Bookmaker keys and display labels for the rendered odds block.
const (
	bookmakerFanDuel    = "fanduel"
	bookmakerDraftKings = "draftkings"
)

// OddsGame is one game's quotes at the odds provider. Team names here are
// full names ("Kansas City Chiefs"), not scoreboard abbreviations.
type OddsGame struct {
	HomeTeam   string      `json:"home_team"`
	AwayTeam   string      `json:"away_team"`
	Bookmakers []Bookmaker `json:"bookmakers"`
}

// Bookmaker carries one book's markets for a game.
type Bookmaker struct {
	Key     string   `json:"key"`
	Markets []Market `json:"markets"`
}

// Market is a quoted market ("h2h" moneyline or "spreads").
type Market struct {
	Key      string    `json:"key"`
	Outcomes []Outcome `json:"outcomes"`
}

// Outcome is one team's quote in a market. Point is nil for moneylines.
type Outcome struct {
	Name  string   `json:"name"`
	Price float64  `json:"price"`
	Point *float64 `json:"point"`
}

// bookmaker returns the named book, if it quoted this game.
func (g OddsGame) bookmaker(key string) (Bookmaker, bool) {
	for _, b := range g.Bookmakers {
		if b.Key == key {
			return b, true
		}
	}
	return Bookmaker{}, false
}

// outcome finds a team's outcome in the named market.
func (b Bookmaker) outcome(marketKey, team string) (Outcome, bool) {
	for _, m := range b.Markets {
		if m.Key != marketKey {
			continue
		}
		for _, o := range m.Outcomes {
			if o.Name == team {
				return o, true
			}
		}
	}
	return Outcome{}, false
}

// OddsClient fetches bookmaker quotes from the-odds-api.com.
type OddsClient struct {
	client  *fetch.Client
	apiKey  string
	baseURL string
	group   singleflight.Group
}

const oddsAPIBase = "https://api.the-odds-api.com/v4"

// NewOddsClient wraps the shared fetch client. An empty API key disables the
// client; Games then reports no data and the report omits odds.
func NewOddsClient(client *fetch.Client, apiKey string) *OddsClient {
	return &OddsClient{client: client, apiKey: apiKey, baseURL: oddsAPIBase}
}

// Games returns the league's quoted games, restricted to the two rendered
// bookmakers. Concurrent requests for one league collapse to a single call;
// the provider meters by request, so deduplication directly saves quota.
func (c *OddsClient) Games(ctx context.Context, league League) ([]OddsGame, error) {
	if c.apiKey == "" {
		return nil, nil
	}

	params := url.Values{}
	params.Set("apiKey", c.apiKey)
	params.Set("regions", "us")
	params.Set("markets", "h2h,spreads")
	params.Set("bookmakers", bookmakerFanDuel+","+bookmakerDraftKings)
	reqURL := fmt.Sprintf("%s/sports/%s/odds?%s", c.baseURL, league.OddsID, params.Encode())

	v, err, _ := c.group.Do(reqURL, func() (any, error) {
		var games []OddsGame
		if err := c.client.GetJSON(ctx, reqURL, &games); err != nil {
			return nil, fmt.Errorf("fetch odds: %w", err)
		}
		return games, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]OddsGame), nil
}

// MatchGame finds the quoted game for a scoreboard matchup. The scoreboard
// hands us abbreviations while the provider uses full team names, so matching
// is case-insensitive substring containment in either direction, for both
// sides at once. Two same-day games whose teams alias each other under this
// rule would collide; league schedules make that practically impossible.
func MatchGame(games []OddsGame, homeAbbrev, awayAbbrev string) (OddsGame, bool) {
	for _, g := range games {
		if fuzzyTeamMatch(g.HomeTeam, homeAbbrev) && fuzzyTeamMatch(g.AwayTeam, awayAbbrev) {
			return g, true
		}
	}
	return OddsGame{}, false
}

// fuzzyTeamMatch reports whether either name contains the other,
// case-insensitively.
func fuzzyTeamMatch(providerName, abbrev string) bool {
	a := strings.ToLower(providerName)
	b := strings.ToLower(abbrev)
	return strings.Contains(a, b) || strings.Contains(b, a)
}
