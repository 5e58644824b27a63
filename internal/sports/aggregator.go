package sports

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sourcehf/convo/internal/logger"
)

// Aggregator builds the /sports league report: latest headline, then up to
// MaxGames live or soon-to-start games with scores or countdown and odds.
type Aggregator struct {
	espn *ESPNClient
	odds *OddsClient
	log  *logger.Logger

	// MaxGames caps the games per report.
	MaxGames int

	// UpcomingWindow is how far ahead a scheduled game may start and still
	// make the report.
	UpcomingWindow time.Duration

	now    func() time.Time
	lookup func(string) (League, bool)
}

// NewAggregator wires the aggregator with its data sources.
func NewAggregator(espn *ESPNClient, odds *OddsClient, log *logger.Logger) *Aggregator {
	return &Aggregator{
		espn:           espn,
		odds:           odds,
		log:            log.WithModule("sports"),
		MaxGames:       3,
		UpcomingWindow: 24 * time.Hour,
		now:            time.Now,
		lookup:         LookupLeague,
	}
}

// reportGame is one retained scoreboard event with its derived fields.
type reportGame struct {
	event Event
	comp  Competition
	start time.Time
	home  Competitor
	away  Competitor
}

// FetchLeagueData builds the full report text for a league key. Every
// failure path returns user-facing text; errors never escape to the caller.
func (a *Aggregator) FetchLeagueData(ctx context.Context, key string) string {
	league, ok := a.lookup(key)
	if !ok {
		return "Invalid sport. Valid sports are: " + ValidKeys()
	}

	report, err := a.buildReport(ctx, league)
	if err != nil {
		a.log.WithError(err).WithField("league", league.Key).Error("report build failed")
		return fmt.Sprintf("Error fetching %s data. Please try again later.", strings.ToUpper(league.Key))
	}
	return report
}

func (a *Aggregator) buildReport(ctx context.Context, league League) (string, error) {
	// News is best-effort: a dead feed must not cost the scores.
	var article *Article
	if art, err := a.espn.LatestNews(ctx, league); err == nil {
		article = &art
	} else {
		a.log.WithError(err).WithField("league", league.Key).Warn("news unavailable")
	}

	events, err := a.espn.Scoreboard(ctx, league)
	if err != nil {
		return "", err
	}
	if len(events) == 0 {
		return fmt.Sprintf("No games found for %s.", strings.ToUpper(league.Key)), nil
	}

	games := a.selectGames(events)
	if len(games) == 0 {
		return fmt.Sprintf("No upcoming or live games in the next 24 hours for %s.", strings.ToUpper(league.Key)), nil
	}

	// One odds call covers every upcoming game in the report.
	var oddsGames []OddsGame
	if hasUpcoming(games) {
		if og, err := a.odds.Games(ctx, league); err == nil {
			oddsGames = og
		} else {
			a.log.WithError(err).WithField("league", league.Key).Warn("odds unavailable")
		}
	}

	return a.compose(league, article, games, oddsGames), nil
}

// selectGames filters events to live games and games starting within the
// upcoming window, orders live first then by start time, and caps the count.
func (a *Aggregator) selectGames(events []Event) []reportGame {
	now := a.now()
	horizon := now.Add(a.UpcomingWindow)

	var games []reportGame
	for _, event := range events {
		if len(event.Competitions) == 0 {
			continue
		}
		comp := event.Competitions[0]

		start, err := event.StartTime()
		if err != nil {
			a.log.WithError(err).Warn("skipping event with bad date")
			continue
		}

		live := comp.Status.Live()
		upcoming := !start.Before(now) && !start.After(horizon)
		if !live && !upcoming {
			continue
		}

		game := reportGame{event: event, comp: comp, start: start}
		for _, c := range comp.Competitors {
			switch c.HomeAway {
			case "home":
				game.home = c
			case "away":
				game.away = c
			}
		}
		games = append(games, game)
	}

	sort.SliceStable(games, func(i, j int) bool {
		li, lj := games[i].comp.Status.Live(), games[j].comp.Status.Live()
		if li != lj {
			return li
		}
		return games[i].start.Before(games[j].start)
	})

	if len(games) > a.MaxGames {
		games = games[:a.MaxGames]
	}
	return games
}

func hasUpcoming(games []reportGame) bool {
	for _, g := range games {
		if !g.comp.Status.Live() {
			return true
		}
	}
	return false
}

// compose renders the final report text.
func (a *Aggregator) compose(league League, article *Article, games []reportGame, oddsGames []OddsGame) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "🏆 %s Games:\n\n", strings.ToUpper(league.Key))

	if article != nil {
		fmt.Fprintf(&sb, "📰 Latest: %s (%s)\n", article.Headline, timeAgo(a.now(), article.Published))
		fmt.Fprintf(&sb, "🔗 %s\n\n", article.Link)
	}

	for _, g := range games {
		homeName := g.home.Team.Abbreviation
		awayName := g.away.Team.Abbreviation
		fmt.Fprintf(&sb, "⚔️ %s @ %s\n", awayName, homeName)

		if g.comp.Status.Live() {
			fmt.Fprintf(&sb, "🔴 LIVE (%s): %s %s - %s %s\n",
				statusLine(g.comp.Status), awayName, g.away.Score, homeName, g.home.Score)
		} else {
			if cd := countdown(a.now(), g.start); cd != "" {
				fmt.Fprintf(&sb, "⏰ Starts in %s\n", cd)
			}
			if odds, ok := MatchGame(oddsGames, homeName, awayName); ok && len(odds.Bookmakers) > 0 {
				writeTeamOdds(&sb, odds, awayName, odds.AwayTeam)
				writeTeamOdds(&sb, odds, homeName, odds.HomeTeam)
			}
		}

		sb.WriteString("\n")
	}

	return strings.TrimSpace(sb.String())
}
