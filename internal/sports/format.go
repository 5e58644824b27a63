package sports

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// timeAgo renders the elapsed time since t in the largest whole unit.
func timeAgo(now, t time.Time) string {
	seconds := int(now.Sub(t).Seconds())
	minutes := seconds / 60
	hours := minutes / 60
	days := hours / 24

	switch {
	case days > 0:
		return fmt.Sprintf("%dd ago", days)
	case hours > 0:
		return fmt.Sprintf("%dh ago", hours)
	case minutes > 0:
		return fmt.Sprintf("%dm ago", minutes)
	default:
		return fmt.Sprintf("%ds ago", seconds)
	}
}

// countdown renders the time until start as "Xh Ym", dropping the hour part
// when zero. Returns "" for games already past their start time; the caller
// suppresses the line.
func countdown(now, start time.Time) string {
	diff := start.Sub(now)
	if diff < 0 {
		return ""
	}

	hours := int(diff.Hours())
	minutes := int(diff.Minutes()) % 60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// statusLine describes where a game stands: "Final" once completed,
// "{period} {clock}" while live, otherwise ESPN's detail string. A live
// game missing both period and clock falls back to the detail string too.
func statusLine(status GameStatus) string {
	if status.Type.Completed {
		return "Final"
	}
	if status.Live() {
		if status.Period == 0 && status.DisplayClock == "" {
			return status.Type.Detail
		}
		return fmt.Sprintf("%d %s", status.Period, status.DisplayClock)
	}
	return status.Type.Detail
}

// formatPrice renders an odds price with an explicit sign on positives.
func formatPrice(price float64) string {
	s := strconv.FormatFloat(price, 'f', -1, 64)
	if price > 0 {
		return "+" + s
	}
	return s
}

// formatPoint renders a spread point with an explicit sign on positives.
func formatPoint(point float64) string {
	s := strconv.FormatFloat(point, 'f', -1, 64)
	if point > 0 {
		return "+" + s
	}
	return s
}

// writeTeamOdds appends one team's quotes across both bookmakers:
//
//	AWAY:
//	   FD: +120 (+3.5: -110)
//	   DK: +125
//
// A bookmaker with no moneyline for the team is omitted; the spread
// parenthetical is omitted when the book did not quote it.
func writeTeamOdds(sb *strings.Builder, game OddsGame, abbrev, providerName string) {
	sb.WriteString(abbrev + ":\n")
	writeBookLine(sb, game, bookmakerFanDuel, "FD", providerName)
	writeBookLine(sb, game, bookmakerDraftKings, "DK", providerName)
}

func writeBookLine(sb *strings.Builder, game OddsGame, bookKey, label, providerName string) {
	book, ok := game.bookmaker(bookKey)
	if !ok {
		return
	}
	ml, ok := book.outcome("h2h", providerName)
	if !ok {
		return
	}

	sb.WriteString(fmt.Sprintf("   %s: %s", label, formatPrice(ml.Price)))
	if spread, ok := book.outcome("spreads", providerName); ok && spread.Point != nil {
		sb.WriteString(fmt.Sprintf(" (%s: %s)", formatPoint(*spread.Point), formatPrice(spread.Price)))
	}
	sb.WriteString("\n")
}
