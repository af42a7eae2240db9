package analytics

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is the explicit per-session context threaded through the
// pipeline. It replaces ambient global state: the session identifier
// and the quota-alert latch live here and nowhere else.
type Session struct {
	ID        string
	CreatedAt time.Time

	quotaAlertOnce sync.Once
}

// NewSession creates a session with a fresh identifier
func NewSession() *Session {
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
	}
}

// AlertQuotaOnce runs fn the first time it is called on this session and
// never again, so sustained quota exhaustion produces exactly one
// operator alert per session instead of a notification storm.
func (s *Session) AlertQuotaOnce(fn func()) {
	s.quotaAlertOnce.Do(fn)
}
