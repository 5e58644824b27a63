package sports

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/sourcehf/convo/internal/errors"
	"github.com/sourcehf/convo/internal/fetch"
)

// Scoreboard response shapes, limited to the fields the report consumes.

type scoreboardResponse struct {
	Events []Event `json:"events"`
}

// Event is one scheduled or in-progress game.
type Event struct {
	Date         string        `json:"date"`
	Competitions []Competition `json:"competitions"`
}

// StartTime parses the event date. ESPN emits minute-precision timestamps
// ("2026-01-15T18:00Z") alongside full RFC 3339 in some feeds.
func (e Event) StartTime() (time.Time, error) {
	for _, layout := range []string{"2006-01-02T15:04Z07:00", time.RFC3339} {
		if t, err := time.Parse(layout, e.Date); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable event date %q", e.Date)
}

// Competition carries the status and competitor list of an event. The report
// only ever reads the first competition.
type Competition struct {
	Status      GameStatus   `json:"status"`
	Competitors []Competitor `json:"competitors"`
}

// GameStatus describes where a game stands.
type GameStatus struct {
	Period       int        `json:"period"`
	DisplayClock string     `json:"displayClock"`
	Type         StatusType `json:"type"`
}

// StatusType is ESPN's coarse game state.
type StatusType struct {
	State     string `json:"state"` // "pre", "in", "post"
	Completed bool   `json:"completed"`
	Detail    string `json:"detail"`
}

// Live reports whether the game is in progress.
func (s GameStatus) Live() bool { return s.Type.State == "in" }

// Competitor is one side of a competition.
type Competitor struct {
	HomeAway string `json:"homeAway"`
	Score    string `json:"score"`
	Team     struct {
		Abbreviation string `json:"abbreviation"`
	} `json:"team"`
	Records []struct {
		Summary string `json:"summary"`
	} `json:"records"`
}

// RecordSummary returns the competitor's leading win-loss record, if any.
func (c Competitor) RecordSummary() string {
	if len(c.Records) == 0 {
		return ""
	}
	return c.Records[0].Summary
}

// News response shapes.

type newsResponse struct {
	Articles []struct {
		Headline  string `json:"headline"`
		Published string `json:"published"`
		Links     struct {
			Web struct {
				Href string `json:"href"`
			} `json:"web"`
		} `json:"links"`
	} `json:"articles"`
}

// Article is the latest headline for a league.
type Article struct {
	Headline  string
	Link      string
	Published time.Time
}

// ESPNClient fetches scoreboard and news data. Concurrent requests for the
// same URL are deduplicated, so a burst of /sports commands for one league
// costs a single upstream call.
type ESPNClient struct {
	client *fetch.Client
	group  singleflight.Group
}

// NewESPNClient wraps the shared fetch client.
func NewESPNClient(client *fetch.Client) *ESPNClient {
	return &ESPNClient{client: client}
}

// Scoreboard returns the league's current event list.
func (c *ESPNClient) Scoreboard(ctx context.Context, league League) ([]Event, error) {
	v, err, _ := c.group.Do(league.Scoreboard, func() (any, error) {
		var resp scoreboardResponse
		if err := c.client.GetJSON(ctx, league.Scoreboard, &resp); err != nil {
			return nil, fmt.Errorf("fetch scoreboard: %w", err)
		}
		return resp.Events, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]Event), nil
}

// LatestNews returns the league's most recent article.
// Returns ErrNoData when the feed is empty.
func (c *ESPNClient) LatestNews(ctx context.Context, league League) (Article, error) {
	url := league.News + "?limit=1"
	v, err, _ := c.group.Do(url, func() (any, error) {
		var resp newsResponse
		if err := c.client.GetJSON(ctx, url, &resp); err != nil {
			return Article{}, fmt.Errorf("fetch news: %w", err)
		}
		if len(resp.Articles) == 0 {
			return Article{}, errors.ErrNoData
		}

		raw := resp.Articles[0]
		published, err := time.Parse(time.RFC3339, raw.Published)
		if err != nil {
			// Keep the headline; the time-ago suffix degrades to the epoch.
			published = time.Time{}
		}
		return Article{
			Headline:  raw.Headline,
			Link:      raw.Links.Web.Href,
			Published: published,
		}, nil
	})
	if err != nil {
		return Article{}, err
	}
	return v.(Article), nil
}
