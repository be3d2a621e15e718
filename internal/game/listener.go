package game

import "github.com/shopspring/decimal"

// EndReason tells the render layer why a round stopped accepting guesses.
type EndReason string

const (
	EndExhausted EndReason = "exhausted"
	EndUser      EndReason = "user"
)

// Feedback messages shown to the player.
const (
	MsgPrompt    = "Make a prediction to reveal the next day."
	MsgCorrect   = "Correct!"
	MsgIncorrect = "Incorrect."
	MsgExhausted = "No more data to continue. You reached the end."
	MsgEnded     = "Game ended. You can enter a new ticker to play again."
)

// Listener receives render notifications from a Round. Implementations own
// all presentation state.
type Listener interface {
	OnInitialWindow(dates []string, prices []decimal.Decimal)
	OnReveal(date string, price decimal.Decimal)
	OnScoreChanged(score int)
	OnFeedback(message string, correct bool)
	OnRoundEnded(reason EndReason)
}

// NopListener discards every notification.
type NopListener struct{}

func (NopListener) OnInitialWindow([]string, []decimal.Decimal) {}
func (NopListener) OnReveal(string, decimal.Decimal)             {}
func (NopListener) OnScoreChanged(int)                           {}
func (NopListener) OnFeedback(string, bool)                      {}
func (NopListener) OnRoundEnded(EndReason)                       {}
