// Package sqlite provides a SQLite-backed game storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/louisbranch/killchain/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/killchain/internal/services/game/core/filter"
	"github.com/louisbranch/killchain/internal/services/game/domain/action"
	"github.com/louisbranch/killchain/internal/services/game/domain/session"
	"github.com/louisbranch/killchain/internal/services/game/storage"
	"github.com/louisbranch/killchain/internal/services/game/storage/sqlite/migrations"
)

// Store persists game state in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite game store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// PutSession upserts a session row.
func (s *Store) PutSession(ctx context.Context, sess *session.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if sess == nil || strings.TrimSpace(sess.ID) == "" {
		return fmt.Errorf("session id is required")
	}

	contextJSON, err := json.Marshal(sess.Context)
	if err != nil {
		return fmt.Errorf("marshal context: %w", err)
	}
	planJSON, err := json.Marshal(sess.Plan)
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}
	resultsJSON, err := json.Marshal(sess.Results)
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	cluesJSON, err := json.Marshal(sess.CollectedClues)
	if err != nil {
		return fmt.Errorf("marshal clues: %w", err)
	}
	discoveredJSON, err := json.Marshal(sess.DiscoveredNodes)
	if err != nil {
		return fmt.Errorf("marshal discovered nodes: %w", err)
	}
	compromisedJSON, err := json.Marshal(sess.CompromisedNodes)
	if err != nil {
		return fmt.Errorf("marshal compromised nodes: %w", err)
	}

	var completedAt sql.NullInt64
	if !sess.CompletedAt.IsZero() {
		completedAt = sql.NullInt64{Int64: toMillis(sess.CompletedAt), Valid: true}
	}

	_, err = s.sqlDB.ExecContext(
		ctx,
		`INSERT INTO sessions (
		   id, story_id, context, plan, results, seed,
		   stealth, detection, password_attempts, locked_out,
		   collected_clues, discovered_nodes, compromised_nodes,
		   has_admin, backup_disabled,
		   created_at, updated_at, completed_at, expires_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   results = excluded.results,
		   stealth = excluded.stealth,
		   detection = excluded.detection,
		   password_attempts = excluded.password_attempts,
		   locked_out = excluded.locked_out,
		   collected_clues = excluded.collected_clues,
		   discovered_nodes = excluded.discovered_nodes,
		   compromised_nodes = excluded.compromised_nodes,
		   has_admin = excluded.has_admin,
		   backup_disabled = excluded.backup_disabled,
		   updated_at = excluded.updated_at,
		   completed_at = excluded.completed_at,
		   expires_at = excluded.expires_at`,
		sess.ID,
		sess.StoryID,
		string(contextJSON),
		string(planJSON),
		string(resultsJSON),
		sess.Seed,
		sess.Stealth,
		sess.Detection,
		sess.PasswordAttempts,
		boolToInt(sess.LockedOut),
		string(cluesJSON),
		string(discoveredJSON),
		string(compromisedJSON),
		boolToInt(sess.HasAdmin),
		boolToInt(sess.BackupDisabled),
		toMillis(sess.CreatedAt),
		toMillis(sess.UpdatedAt),
		completedAt,
		toMillis(sess.ExpiresAt),
	)
	if err != nil {
		return fmt.Errorf("put session: %w", err)
	}
	return nil
}

// GetSession loads a session by id. Expired rows read as missing.
func (s *Store) GetSession(ctx context.Context, id string) (*session.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("session id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		`SELECT id, story_id, context, plan, results, seed,
		        stealth, detection, password_attempts, locked_out,
		        collected_clues, discovered_nodes, compromised_nodes,
		        has_admin, backup_disabled,
		        created_at, updated_at, completed_at, expires_at
		   FROM sessions
		  WHERE id = ?`,
		id,
	)

	var (
		sess                                session.Session
		contextJSON, planJSON, resultsJSON  string
		cluesJSON, discoveredJSON           string
		compromisedJSON                     string
		lockedOut, hasAdmin, backupDisabled int
		createdAt, updatedAt, expiresAt     int64
		completedAt                         sql.NullInt64
	)
	err := row.Scan(
		&sess.ID, &sess.StoryID, &contextJSON, &planJSON, &resultsJSON, &sess.Seed,
		&sess.Stealth, &sess.Detection, &sess.PasswordAttempts, &lockedOut,
		&cluesJSON, &discoveredJSON, &compromisedJSON,
		&hasAdmin, &backupDisabled,
		&createdAt, &updatedAt, &completedAt, &expiresAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if err := json.Unmarshal([]byte(contextJSON), &sess.Context); err != nil {
		return nil, fmt.Errorf("unmarshal context: %w", err)
	}
	if err := json.Unmarshal([]byte(planJSON), &sess.Plan); err != nil {
		return nil, fmt.Errorf("unmarshal plan: %w", err)
	}
	if err := json.Unmarshal([]byte(resultsJSON), &sess.Results); err != nil {
		return nil, fmt.Errorf("unmarshal results: %w", err)
	}
	if err := json.Unmarshal([]byte(cluesJSON), &sess.CollectedClues); err != nil {
		return nil, fmt.Errorf("unmarshal clues: %w", err)
	}
	if err := json.Unmarshal([]byte(discoveredJSON), &sess.DiscoveredNodes); err != nil {
		return nil, fmt.Errorf("unmarshal discovered nodes: %w", err)
	}
	if err := json.Unmarshal([]byte(compromisedJSON), &sess.CompromisedNodes); err != nil {
		return nil, fmt.Errorf("unmarshal compromised nodes: %w", err)
	}
	sess.LockedOut = lockedOut != 0
	sess.HasAdmin = hasAdmin != 0
	sess.BackupDisabled = backupDisabled != 0
	sess.CreatedAt = fromMillis(createdAt)
	sess.UpdatedAt = fromMillis(updatedAt)
	sess.ExpiresAt = fromMillis(expiresAt)
	if completedAt.Valid {
		sess.CompletedAt = fromMillis(completedAt.Int64)
	}

	if sess.Expired(time.Now()) {
		return nil, storage.ErrNotFound
	}
	return &sess, nil
}

// DeleteSession removes a session and its action log.
func (s *Store) DeleteSession(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM action_log WHERE session_id = ?`, id); err != nil {
		return fmt.Errorf("delete action log: %w", err)
	}
	return nil
}

// DeleteExpiredSessions removes sessions past their expiry.
func (s *Store) DeleteExpiredSessions(ctx context.Context, now time.Time) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}
	if _, err := s.sqlDB.ExecContext(
		ctx,
		`DELETE FROM action_log WHERE session_id IN (SELECT id FROM sessions WHERE expires_at <= ?)`,
		toMillis(now),
	); err != nil {
		return 0, fmt.Errorf("delete expired action logs: %w", err)
	}
	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at <= ?`, toMillis(now))
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return int(affected), nil
}

// AppendAction assigns the next per-session sequence number and inserts
// the entry.
func (s *Store) AppendAction(ctx context.Context, e action.Entry) (action.Entry, error) {
	if err := ctx.Err(); err != nil {
		return action.Entry{}, err
	}
	if s == nil || s.sqlDB == nil {
		return action.Entry{}, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(e.SessionID) == "" {
		return action.Entry{}, fmt.Errorf("session id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return action.Entry{}, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM action_log WHERE session_id = ?`, e.SessionID)
	var maxSeq int64
	if err := row.Scan(&maxSeq); err != nil {
		return action.Entry{}, fmt.Errorf("next action seq: %w", err)
	}
	e.Seq = maxSeq + 1

	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO action_log (session_id, seq, action_type, target, success, stealth_cost, detection, at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.SessionID, e.Seq, string(e.Type), e.Target, boolToInt(e.Success), e.StealthCost, e.Detection, toMillis(e.At),
	); err != nil {
		return action.Entry{}, fmt.Errorf("append action: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return action.Entry{}, fmt.Errorf("commit action: %w", err)
	}
	return e, nil
}

// ListActions returns the session's action log in sequence order,
// optionally narrowed by an AIP-160 filter.
func (s *Store) ListActions(ctx context.Context, sessionID, filterStr string) ([]action.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	query := `SELECT session_id, seq, action_type, target, success, stealth_cost, detection, at
	            FROM action_log
	           WHERE session_id = ?`
	params := []any{sessionID}

	cond, err := filter.ParseActionFilter(filterStr)
	if err != nil {
		return nil, err
	}
	if cond.Clause != "" {
		query += " AND " + cond.Clause
		params = append(params, cond.Params...)
	}
	query += " ORDER BY seq ASC"

	rows, err := s.sqlDB.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, fmt.Errorf("list actions: %w", err)
	}
	defer rows.Close()

	var out []action.Entry
	for rows.Next() {
		var (
			e       action.Entry
			typ     string
			success int
			at      int64
		)
		if err := rows.Scan(&e.SessionID, &e.Seq, &typ, &e.Target, &success, &e.StealthCost, &e.Detection, &at); err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		e.Type = action.Type(typ)
		e.Success = success != 0
		e.At = fromMillis(at)
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list actions: %w", err)
	}
	return out, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
