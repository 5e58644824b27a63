package sports

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sourcehf/convo/internal/fetch"
	"github.com/sourcehf/convo/internal/logger"
)

const testScoreboard = `{
  "events": [
    {
      "date": "2025-01-17T18:00Z",
      "competitions": [{
        "status": {"type": {"state": "pre", "detail": "Fri, January 17th at 1:00 PM EST"}},
        "competitors": [
          {"homeAway": "home", "score": "0", "team": {"abbreviation": "NYJ"}},
          {"homeAway": "away", "score": "0", "team": {"abbreviation": "NE"}}
        ]
      }]
    },
    {
      "date": "2025-01-15T18:30Z",
      "competitions": [{
        "status": {"type": {"state": "pre", "detail": "Wed, January 15th at 1:30 PM EST"}},
        "competitors": [
          {"homeAway": "home", "score": "0", "team": {"abbreviation": "DAL"}},
          {"homeAway": "away", "score": "0", "team": {"abbreviation": "PHI"}}
        ]
      }]
    },
    {
      "date": "2025-01-15T10:00Z",
      "competitions": [{
        "status": {"period": 4, "displayClock": "2:15", "type": {"state": "in"}},
        "competitors": [
          {"homeAway": "home", "score": "21", "team": {"abbreviation": "KC"}},
          {"homeAway": "away", "score": "17", "team": {"abbreviation": "BUF"}}
        ]
      }]
    }
  ]
}`

const testNews = `{
  "articles": [{
    "headline": "Big trade shakes the league",
    "published": "2025-01-15T09:00:00Z",
    "links": {"web": {"href": "https://example.com/story"}}
  }]
}`

const testOdds = `[
  {
    "home_team": "Dallas Cowboys",
    "away_team": "Philadelphia Eagles",
    "bookmakers": [
      {
        "key": "fanduel",
        "markets": [
          {"key": "h2h", "outcomes": [
            {"name": "Dallas Cowboys", "price": -140},
            {"name": "Philadelphia Eagles", "price": 120}
          ]},
          {"key": "spreads", "outcomes": [
            {"name": "Dallas Cowboys", "price": -110, "point": -2.5},
            {"name": "Philadelphia Eagles", "price": -110, "point": 2.5}
          ]}
        ]
      },
      {
        "key": "draftkings",
        "markets": [
          {"key": "h2h", "outcomes": [
            {"name": "Dallas Cowboys", "price": -145},
            {"name": "Philadelphia Eagles", "price": 125}
          ]}
        ]
      }
    ]
  }
]`

// testHarness serves canned league data and returns an aggregator pinned to
// 2025-01-15 12:00 UTC.
type testHarness struct {
	agg        *Aggregator
	scoreboard string
	news       string
	odds       string
	newsStatus int
	oddsStatus int
}

func newHarness(t *testing.T) *testHarness {
	t.Helper()

	h := &testHarness{
		scoreboard: testScoreboard,
		news:       testNews,
		odds:       testOdds,
		newsStatus: http.StatusOK,
		oddsStatus: http.StatusOK,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/scoreboard", func(w http.ResponseWriter, r *http.Request) {
		if h.scoreboard == "" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, h.scoreboard)
	})
	mux.HandleFunc("/news", func(w http.ResponseWriter, r *http.Request) {
		if h.newsStatus != http.StatusOK {
			w.WriteHeader(h.newsStatus)
			return
		}
		fmt.Fprint(w, h.news)
	})
	mux.HandleFunc("/sports/americanfootball_nfl/odds", func(w http.ResponseWriter, r *http.Request) {
		if h.oddsStatus != http.StatusOK {
			w.WriteHeader(h.oddsStatus)
			return
		}
		fmt.Fprint(w, h.odds)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	league := League{
		Key:        "nfl",
		OddsID:     "americanfootball_nfl",
		Scoreboard: srv.URL + "/scoreboard",
		News:       srv.URL + "/news",
	}

	client := fetch.NewClient(5*time.Second, 0)
	odds := NewOddsClient(client, "test-key")
	odds.baseURL = srv.URL

	log := logger.NewWithWriter("error", io.Discard)
	agg := NewAggregator(NewESPNClient(client), odds, log)
	agg.now = func() time.Time { return time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC) }
	agg.lookup = func(key string) (League, bool) {
		if key == "nfl" {
			return league, true
		}
		return League{}, false
	}

	h.agg = agg
	return h
}

func TestFetchLeagueDataFullReport(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	want := strings.Join([]string{
		"🏆 NFL Games:",
		"",
		"📰 Latest: Big trade shakes the league (3h ago)",
		"🔗 https://example.com/story",
		"",
		"⚔️ BUF @ KC",
		"🔴 LIVE (4 2:15): BUF 17 - KC 21",
		"",
		"⚔️ PHI @ DAL",
		"⏰ Starts in 6h 30m",
		"PHI:",
		"   FD: +120 (+2.5: -110)",
		"   DK: +125",
		"DAL:",
		"   FD: -140 (-2.5: -110)",
		"   DK: -145",
	}, "\n")

	got := h.agg.FetchLeagueData(context.Background(), "nfl")
	if got != want {
		t.Errorf("report mismatch:\ngot:\n%s\n\nwant:\n%s", got, want)
	}
	if strings.Contains(got, "NYJ") {
		t.Error("games beyond the 24h window must be excluded")
	}
}

func TestFetchLeagueDataInvalidSport(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	got := h.agg.FetchLeagueData(context.Background(), "soccer")
	if want := "Invalid sport. Valid sports are: nfl, nba, nhl, mlb"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFetchLeagueDataScoreboardFailure(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.scoreboard = ""

	got := h.agg.FetchLeagueData(context.Background(), "nfl")
	if want := "Error fetching NFL data. Please try again later."; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFetchLeagueDataNoEvents(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.scoreboard = `{"events": []}`

	got := h.agg.FetchLeagueData(context.Background(), "nfl")
	if want := "No games found for NFL."; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFetchLeagueDataNothingInWindow(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.scoreboard = `{
	  "events": [{
	    "date": "2025-01-20T18:00Z",
	    "competitions": [{
	      "status": {"type": {"state": "pre", "detail": "next week"}},
	      "competitors": [
	        {"homeAway": "home", "score": "0", "team": {"abbreviation": "KC"}},
	        {"homeAway": "away", "score": "0", "team": {"abbreviation": "BUF"}}
	      ]
	    }]
	  }]
	}`

	got := h.agg.FetchLeagueData(context.Background(), "nfl")
	if want := "No upcoming or live games in the next 24 hours for NFL."; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestFetchLeagueDataNewsFailureDegrades(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.newsStatus = http.StatusInternalServerError

	got := h.agg.FetchLeagueData(context.Background(), "nfl")
	if strings.Contains(got, "📰") {
		t.Error("news block should be omitted when the feed fails")
	}
	if !strings.Contains(got, "🔴 LIVE (4 2:15): BUF 17 - KC 21") {
		t.Errorf("scores must survive a news failure, got:\n%s", got)
	}
}

func TestFetchLeagueDataOddsFailureDegrades(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.oddsStatus = http.StatusInternalServerError

	got := h.agg.FetchLeagueData(context.Background(), "nfl")
	if strings.Contains(got, "FD:") || strings.Contains(got, "DK:") {
		t.Error("odds block should be omitted when the provider fails")
	}
	if !strings.Contains(got, "⏰ Starts in 6h 30m") {
		t.Errorf("countdown must survive an odds failure, got:\n%s", got)
	}
}

func TestFetchLeagueDataNoOddsMatch(t *testing.T) {
	t.Parallel()
	h := newHarness(t)
	h.odds = `[{"home_team": "Green Bay Packers", "away_team": "Chicago Bears", "bookmakers": []}]`

	got := h.agg.FetchLeagueData(context.Background(), "nfl")
	if strings.Contains(got, "FD:") {
		t.Error("unmatched games should render without an odds block")
	}
}

func TestFetchLeagueDataLiveGamesSortFirst(t *testing.T) {
	t.Parallel()
	h := newHarness(t)

	got := h.agg.FetchLeagueData(context.Background(), "nfl")
	liveIdx := strings.Index(got, "BUF @ KC")
	upcomingIdx := strings.Index(got, "PHI @ DAL")
	if liveIdx < 0 || upcomingIdx < 0 || liveIdx > upcomingIdx {
		t.Errorf("live game should precede upcoming game:\n%s", got)
	}
}
