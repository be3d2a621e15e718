package notifier

import (
	"fmt"
	"html"
	"strings"

	"NextDay/internal/game"
	"NextDay/internal/session"
	"NextDay/internal/stats"
)

// FormatHelp lists the bot commands.
func FormatHelp() string {
	var b strings.Builder
	b.WriteString("📈 <b>NextDay</b>: guess whether the next trading day closes higher.\n\n")
	b.WriteString("Commands:\n")
	b.WriteString("• /play SYMBOL: start a round\n")
	b.WriteString("• /up, /down: make a prediction\n")
	b.WriteString("• /end: end the round\n")
	b.WriteString("• /score: round summary")
	return b.String()
}

// FormatStart renders the seed window of a new round.
func FormatStart(v session.View) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📊 <b>%s</b> | %s\n\n", html.EscapeString(v.Symbol), v.CurrentDate))
	for _, p := range v.Points {
		b.WriteString(fmt.Sprintf("%s  %s\n", p.Date, p.Price.StringFixed(2)))
	}
	b.WriteString(fmt.Sprintf("\nScore: %d\n", v.Score))
	if v.CanGuess {
		b.WriteString(game.MsgPrompt + " /up or /down")
	} else {
		b.WriteString(game.MsgExhausted)
	}
	return b.String()
}

// FormatOutcome renders one guess and, when the round is over, its end message.
func FormatOutcome(v session.View, out game.Outcome) string {
	var b strings.Builder
	if out.Correct {
		b.WriteString("✅ " + game.MsgCorrect + "\n")
	} else {
		b.WriteString("❌ " + game.MsgIncorrect + "\n")
	}
	arrow := "▼"
	if out.WentUp {
		arrow = "▲"
	}
	b.WriteString(fmt.Sprintf("%s %s → %s %s %s\n",
		out.PrevDate, out.PrevPrice.StringFixed(2), out.Revealed.Date, out.Revealed.Price.StringFixed(2), arrow))
	b.WriteString(fmt.Sprintf("Score: %d\n", v.Score))
	if !v.CanGuess {
		b.WriteString("\n" + game.MsgExhausted)
	}
	return b.String()
}

// FormatSummary renders the statistics of a round.
func FormatSummary(s stats.Summary) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("📦 <b>%s summary</b>\n\n", html.EscapeString(s.Symbol)))
	b.WriteString(fmt.Sprintf("Guesses: %d | Correct: %d\n", s.Guesses, s.Correct))
	b.WriteString(fmt.Sprintf("Accuracy: %.0f%%\n", s.Accuracy*100))
	b.WriteString(fmt.Sprintf("Longest streak: %d\n", s.LongestStreak))
	b.WriteString(fmt.Sprintf("Range: %.2f – %.2f (%+.1f%%)\n", s.Low, s.High, s.ChangePct))
	b.WriteString(fmt.Sprintf("Rating: %s\n", s.Rating))
	b.WriteString(fmt.Sprintf("Status: %s", s.Phase))
	return b.String()
}
