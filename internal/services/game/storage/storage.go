// Package storage defines the persistence interfaces for the game
// service. Implementations live in subpackages; callers depend only on
// these interfaces.
package storage

import (
	"context"
	"time"

	apperrors "github.com/louisbranch/killchain/internal/platform/errors"
	"github.com/louisbranch/killchain/internal/services/game/domain/action"
	"github.com/louisbranch/killchain/internal/services/game/domain/session"
)

// ErrNotFound indicates a requested persistence record is missing.
// Callers use this to differentiate between legitimate "no such entity"
// states and transport or data corruption failures.
var ErrNotFound = apperrors.New(apperrors.CodeNotFound, "record not found")

// SessionStore persists run sessions. Expired sessions behave as
// missing on read.
type SessionStore interface {
	PutSession(ctx context.Context, s *session.Session) error
	GetSession(ctx context.Context, id string) (*session.Session, error)
	DeleteSession(ctx context.Context, id string) error
	// DeleteExpiredSessions removes sessions whose expiry passed and
	// returns how many were dropped.
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int, error)
}

// ActionLogStore owns the append-only per-session action log.
type ActionLogStore interface {
	// AppendAction assigns the next sequence number and persists the
	// entry, returning it with Seq set.
	AppendAction(ctx context.Context, e action.Entry) (action.Entry, error)
	// ListActions returns entries for a session in sequence order,
	// optionally narrowed by an AIP-160 filter expression.
	ListActions(ctx context.Context, sessionID, filter string) ([]action.Entry, error)
}

// Store bundles all persistence interfaces behind one handle.
type Store interface {
	SessionStore
	ActionLogStore
	Close() error
}
