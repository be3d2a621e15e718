package collector

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrEmptySymbol       = errors.New("please enter a stock ticker symbol")
	ErrInvalidSymbol     = errors.New("invalid ticker symbol")
	ErrNotFound          = errors.New("ticker not found, please try another symbol")
	ErrRateLimited       = errors.New("rate limit reached, please wait a minute and try again")
	ErrMalformedResponse = errors.New("unexpected API response")
)

var symbolPattern = regexp.MustCompile(`^[A-Z0-9.\-^=]{1,12}$`)

// NormalizeSymbol trims and upper-cases a ticker.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// ValidateSymbol checks a normalized ticker.
func ValidateSymbol(symbol string) error {
	if symbol == "" {
		return ErrEmptySymbol
	}
	if !symbolPattern.MatchString(symbol) {
		return fmt.Errorf("%w: %q", ErrInvalidSymbol, symbol)
	}
	return nil
}

// Kind names the failure class of err for metrics and logs.
func Kind(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrEmptySymbol), errors.Is(err, ErrInvalidSymbol):
		return "invalid_symbol"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, ErrMalformedResponse):
		return "malformed"
	default:
		return "upstream"
	}
}

// classifyMessage maps an opaque SDK error onto the taxonomy using its text.
func classifyMessage(source string, err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "429"), strings.Contains(msg, "too many requests"), strings.Contains(msg, "rate limit"):
		return fmt.Errorf("%w: %s: %v", ErrRateLimited, source, err)
	case strings.Contains(msg, "404"), strings.Contains(msg, "not found"), strings.Contains(msg, "no data found"):
		return fmt.Errorf("%w: %s: %v", ErrNotFound, source, err)
	default:
		return fmt.Errorf("%s: %w", source, err)
	}
}
