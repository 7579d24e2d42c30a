package executor

import "github.com/google/uuid"

// Session carries the per-client state threaded through every command: the
// currently selected database. A wire connection owns exactly one Session.
type Session struct {
	ID       uuid.UUID
	database string
}

func NewSession() *Session {
	return &Session{ID: uuid.New()}
}

// Database returns the selected database, or "" when none is selected.
func (s *Session) Database() string { return s.database }

// switchTo selects db and returns the previous selection so a failed USE can
// put it back.
func (s *Session) switchTo(db string) (prev string) {
	prev, s.database = s.database, db
	return prev
}
