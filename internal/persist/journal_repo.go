package persist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// EntryKind tags a journal entry.
type EntryKind int

const (
	EntrySessionStart EntryKind = iota
	EntrySessionEnd
	EntryHookFailure
)

func (k EntryKind) String() string {
	switch k {
	case EntrySessionStart:
		return "session_start"
	case EntrySessionEnd:
		return "session_end"
	case EntryHookFailure:
		return "hook_failure"
	}
	return "unknown"
}

// Entry is one journal row. Fields not used by the kind are zero.
type Entry struct {
	Kind     EntryKind
	Epoch    uint32
	Level    string // start
	Entities int    // start
	Reason   string // end
	Event    string // failure
	Handler  int    // failure
	Message  string // failure
	At       time.Time
}

// SessionSummary is one row of the sessions table.
type SessionSummary struct {
	Boot      int64
	Epoch     uint32
	Level     string
	Entities  int
	StartedAt time.Time
	EndedAt   *time.Time
	EndReason string
	Failures  int
}

type JournalRepo struct {
	db *DB
}

func NewJournalRepo(db *DB) *JournalRepo {
	return &JournalRepo{db: db}
}

// Write stores a batch of entries for one server boot in a single
// transaction. Entries are applied in order so an end always follows its
// start.
func (r *JournalRepo) Write(ctx context.Context, boot int64, entries []Entry) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("journal begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, e := range entries {
		var err error
		switch e.Kind {
		case EntrySessionStart:
			_, err = tx.Exec(ctx,
				`INSERT INTO sessions (boot, epoch, level, entities, started_at)
				 VALUES ($1, $2, $3, $4, $5)
				 ON CONFLICT (boot, epoch) DO NOTHING`,
				boot, int64(e.Epoch), e.Level, e.Entities, e.At,
			)
		case EntrySessionEnd:
			_, err = tx.Exec(ctx,
				`UPDATE sessions SET ended_at = $3, end_reason = $4
				 WHERE boot = $1 AND epoch = $2 AND ended_at IS NULL`,
				boot, int64(e.Epoch), e.At, e.Reason,
			)
		case EntryHookFailure:
			_, err = tx.Exec(ctx,
				`INSERT INTO hook_failures (boot, epoch, event, handler, message, at)
				 VALUES ($1, $2, $3, $4, $5, $6)`,
				boot, int64(e.Epoch), e.Event, e.Handler, e.Message, e.At,
			)
		default:
			err = fmt.Errorf("unknown entry kind %d", e.Kind)
		}
		if err != nil {
			return fmt.Errorf("journal %s: %w", e.Kind, err)
		}
	}

	return tx.Commit(ctx)
}

// LastSession returns the most recently started session of any boot, or nil
// if the journal is empty.
func (r *JournalRepo) LastSession(ctx context.Context) (*SessionSummary, error) {
	var s SessionSummary
	var epoch int64
	var reason *string
	err := r.db.Pool.QueryRow(ctx,
		`SELECT s.boot, s.epoch, s.level, s.entities, s.started_at, s.ended_at, s.end_reason,
		        (SELECT COUNT(*) FROM hook_failures f WHERE f.boot = s.boot AND f.epoch = s.epoch)
		 FROM sessions s
		 ORDER BY s.started_at DESC, s.id DESC LIMIT 1`,
	).Scan(&s.Boot, &epoch, &s.Level, &s.Entities, &s.StartedAt, &s.EndedAt, &reason, &s.Failures)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query last session: %w", err)
	}
	s.Epoch = uint32(epoch)
	if reason != nil {
		s.EndReason = *reason
	}
	return &s, nil
}
