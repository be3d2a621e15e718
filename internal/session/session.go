package session

import (
	"sync"
	"time"

	"NextDay/internal/game"
	"NextDay/internal/model"
	"NextDay/internal/stats"
)

// View is the caller-facing snapshot of a round.
type View struct {
	ID          string             `json:"id"`
	Symbol      string             `json:"symbol"`
	Source      string             `json:"source"`
	Phase       string             `json:"phase"`
	Score       int                `json:"score"`
	Guesses     int                `json:"guesses"`
	CurrentDate string             `json:"current_date"`
	CanGuess    bool               `json:"can_guess"`
	EndReason   game.EndReason     `json:"end_reason,omitempty"`
	Points      []model.PricePoint `json:"points"`
}

// Session holds the round owned by one caller key.
type Session struct {
	ID        string
	Source    string
	CreatedAt time.Time

	mu       sync.Mutex
	round    *game.Round
	events   *eventLog
	lastSeen time.Time
}

func newSession(id, source string, now time.Time) *Session {
	return &Session{
		ID:        id,
		Source:    source,
		CreatedAt: now,
		events:    newEventLog(),
		lastSeen:  now,
	}
}

// viewLocked must be called with s.mu held.
func (s *Session) viewLocked() View {
	st := s.round.State()
	return View{
		ID:          s.ID,
		Symbol:      st.Symbol,
		Source:      s.Source,
		Phase:       st.Phase.String(),
		Score:       st.Score,
		Guesses:     len(s.round.History()),
		CurrentDate: s.round.DisplayDate(),
		CanGuess:    s.round.CanGuess(),
		EndReason:   s.round.EndReason(),
		Points:      s.round.Visible(),
	}
}

func (s *Session) summaryLocked() stats.Summary {
	return stats.Summarize(s.round)
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}
