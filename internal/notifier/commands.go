package notifier

import (
	"context"
	"errors"
	"log"
	"strconv"
	"strings"

	"NextDay/internal/collector"
	"NextDay/internal/game"
	"NextDay/internal/session"
)

const noRoundMsg = "No active round. Send /play SYMBOL to start."

// Commands maps bot commands onto per-chat rounds.
type Commands struct {
	Manager *session.Manager
}

// NewCommands creates a new Commands.
func NewCommands(mgr *session.Manager) *Commands {
	return &Commands{Manager: mgr}
}

// ChatKey is the session key of a Telegram chat.
func ChatKey(chatID int64) string {
	return "tg:" + strconv.FormatInt(chatID, 10)
}

// Handle processes a user command and returns a reply. It matches CommandHandler.
func (c *Commands) Handle(ctx context.Context, chatID int64, text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return FormatHelp()
	}
	cmd := strings.ToLower(fields[0])
	if i := strings.Index(cmd, "@"); i > 0 {
		cmd = cmd[:i]
	}
	key := ChatKey(chatID)

	switch cmd {
	case "/play":
		symbol := ""
		if len(fields) > 1 {
			symbol = fields[1]
		}
		view, _, err := c.Manager.Start(ctx, key, symbol)
		if err != nil {
			log.Printf("[WARN] chat %d /play %q: %v", chatID, symbol, err)
			return "⚠️ " + UserMessage(err)
		}
		return FormatStart(view)
	case "/up", "/down":
		view, out, _, err := c.Manager.Guess(key, cmd == "/up")
		switch {
		case errors.Is(err, session.ErrSessionNotFound):
			return noRoundMsg
		case errors.Is(err, game.ErrRoundNotActive):
			return game.MsgEnded
		case err != nil:
			return "⚠️ " + UserMessage(err)
		}
		return FormatOutcome(view, out)
	case "/end":
		_, _, ended, err := c.Manager.End(key)
		if err != nil {
			return noRoundMsg
		}
		if !ended {
			return "Round is already over. " + game.MsgEnded
		}
		return game.MsgEnded
	case "/score":
		sum, err := c.Manager.Summary(key)
		if err != nil {
			return noRoundMsg
		}
		return FormatSummary(sum)
	default:
		return FormatHelp()
	}
}

// UserMessage turns an error into the sentence shown to a player.
func UserMessage(err error) string {
	for _, known := range []error{
		collector.ErrEmptySymbol,
		collector.ErrInvalidSymbol,
		collector.ErrNotFound,
		collector.ErrRateLimited,
		collector.ErrMalformedResponse,
		game.ErrInsufficientData,
		game.ErrInsufficientHistory,
	} {
		if errors.Is(err, known) {
			return sentence(known.Error())
		}
	}
	return "Failed to load data."
}

func sentence(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:] + "."
}
