// Package journal records split sessions in a SQLite database next to the
// repository so that abandoned sessions can be recovered and past splits
// reviewed.
//
// Each session stores its changed paths once in the files table; a commit
// refers to its paths through a serialized roaring bitmap of file ids.
package journal

import (
	"bytes"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/RoaringBitmap/roaring"
	_ "modernc.org/sqlite"

	"github.com/agentic-research/gitsplit/internal/split"
)

// Status is the lifecycle state of a journaled session.
type Status string

const (
	StatusRunning   Status = "running"
	StatusApplied   Status = "applied"
	StatusAborted   Status = "aborted"
	StatusFailed    Status = "failed"
	StatusRecovered Status = "recovered"
)

// ErrUnknownPath is returned when a commit names a path that was not part of
// the session's change list.
var ErrUnknownPath = errors.New("path not in session")

// SessionInfo describes a session when it starts.
type SessionInfo struct {
	Repo       string
	Branch     string
	TempBranch string
	Depth      int
}

// Commit is a journaled commit.
type Commit struct {
	Seq     int      `json:"seq"`
	Message string   `json:"message"`
	Paths   []string `json:"paths"`
	Hash    string   `json:"hash,omitempty"`
}

// Session is a journaled session with its commits.
type Session struct {
	ID         int64     `json:"id"`
	Repo       string    `json:"repo"`
	Branch     string    `json:"branch"`
	TempBranch string    `json:"temp_branch"`
	Depth      int       `json:"depth"`
	Started    time.Time `json:"started"`
	Finished   time.Time `json:"finished,omitempty"`
	Status     Status    `json:"status"`
	Commits    []Commit  `json:"commits,omitempty"`
}

// Journal is an open journal database.
type Journal struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	repo TEXT NOT NULL,
	branch TEXT NOT NULL,
	temp_branch TEXT NOT NULL,
	depth INTEGER NOT NULL,
	started INTEGER NOT NULL,
	finished INTEGER,
	status TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS files (
	session_id INTEGER NOT NULL,
	id INTEGER NOT NULL,
	path TEXT NOT NULL,
	PRIMARY KEY (session_id, id)
);
CREATE TABLE IF NOT EXISTS commits (
	session_id INTEGER NOT NULL,
	seq INTEGER NOT NULL,
	message TEXT NOT NULL,
	files BLOB NOT NULL,
	hash TEXT,
	PRIMARY KEY (session_id, seq)
);
CREATE INDEX IF NOT EXISTS idx_sessions_status ON sessions(status);
`

// Open opens or creates the journal at path.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open journal %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Journal{db: db}, nil
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Begin records a new running session and its change list.
func (j *Journal) Begin(info SessionInfo, files []string) (int64, error) {
	tx, err := j.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin session: %w", err)
	}
	defer func() { _ = tx.Rollback() }() // no-op once committed

	res, err := tx.Exec(
		`INSERT INTO sessions (repo, branch, temp_branch, depth, started, status) VALUES (?, ?, ?, ?, ?, ?)`,
		info.Repo, info.Branch, info.TempBranch, info.Depth, time.Now().UnixNano(), StatusRunning,
	)
	if err != nil {
		return 0, fmt.Errorf("insert session: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	stmt, err := tx.Prepare(`INSERT INTO files (session_id, id, path) VALUES (?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare files insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, p := range files {
		if _, err := stmt.Exec(id, i, p); err != nil {
			return 0, fmt.Errorf("insert file %s: %w", p, err)
		}
	}
	return id, tx.Commit()
}

// RecordCommit stores a created commit. Its paths must belong to the
// session's change list.
func (j *Journal) RecordCommit(sessionID int64, seq int, c split.Candidate, hash string) error {
	ids, err := j.fileIDs(sessionID)
	if err != nil {
		return err
	}

	bm := roaring.New()
	for _, p := range c.Paths {
		id, ok := ids[p]
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownPath, p)
		}
		bm.Add(id)
	}

	var buf bytes.Buffer
	if _, err := bm.WriteTo(&buf); err != nil {
		return fmt.Errorf("serialize bitmap: %w", err)
	}

	_, err = j.db.Exec(
		`INSERT OR REPLACE INTO commits (session_id, seq, message, files, hash) VALUES (?, ?, ?, ?, ?)`,
		sessionID, seq, c.Message, buf.Bytes(), hash,
	)
	if err != nil {
		return fmt.Errorf("insert commit: %w", err)
	}
	return nil
}

// Finish sets the final status of a session.
func (j *Journal) Finish(sessionID int64, status Status) error {
	_, err := j.db.Exec(
		`UPDATE sessions SET status = ?, finished = ? WHERE id = ?`,
		status, time.Now().UnixNano(), sessionID,
	)
	if err != nil {
		return fmt.Errorf("finish session %d: %w", sessionID, err)
	}
	return nil
}

// Pending returns sessions still marked running, oldest first.
func (j *Journal) Pending() ([]Session, error) {
	return j.query(`WHERE status = ? ORDER BY id ASC`, StatusRunning)
}

// History returns the most recent sessions with their commits, newest first.
// A limit of zero or less returns everything.
func (j *Journal) History(limit int) ([]Session, error) {
	if limit <= 0 {
		limit = -1
	}
	sessions, err := j.query(`ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		commits, err := j.commits(sessions[i].ID)
		if err != nil {
			return nil, err
		}
		sessions[i].Commits = commits
	}
	return sessions, nil
}

func (j *Journal) query(clause string, args ...any) ([]Session, error) {
	rows, err := j.db.Query(
		`SELECT id, repo, branch, temp_branch, depth, started, finished, status FROM sessions `+clause,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Session
	for rows.Next() {
		var (
			s        Session
			started  int64
			finished sql.NullInt64
			status   string
		)
		if err := rows.Scan(&s.ID, &s.Repo, &s.Branch, &s.TempBranch, &s.Depth, &started, &finished, &status); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		s.Started = time.Unix(0, started)
		if finished.Valid {
			s.Finished = time.Unix(0, finished.Int64)
		}
		s.Status = Status(status)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (j *Journal) fileIDs(sessionID int64) (map[string]uint32, error) {
	rows, err := j.db.Query(`SELECT id, path FROM files WHERE session_id = ?`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("query files: %w", err)
	}
	defer func() { _ = rows.Close() }()

	ids := make(map[string]uint32)
	for rows.Next() {
		var (
			id uint32
			p  string
		)
		if err := rows.Scan(&id, &p); err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		ids[p] = id
	}
	return ids, rows.Err()
}

func (j *Journal) filePaths(sessionID int64) (map[uint32]string, error) {
	ids, err := j.fileIDs(sessionID)
	if err != nil {
		return nil, err
	}
	paths := make(map[uint32]string, len(ids))
	for p, id := range ids {
		paths[id] = p
	}
	return paths, nil
}

func (j *Journal) commits(sessionID int64) ([]Commit, error) {
	paths, err := j.filePaths(sessionID)
	if err != nil {
		return nil, err
	}

	rows, err := j.db.Query(
		`SELECT seq, message, files, hash FROM commits WHERE session_id = ? ORDER BY seq ASC`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("query commits: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Commit
	for rows.Next() {
		var (
			c    Commit
			blob []byte
			hash sql.NullString
		)
		if err := rows.Scan(&c.Seq, &c.Message, &blob, &hash); err != nil {
			return nil, fmt.Errorf("scan commit: %w", err)
		}
		c.Hash = hash.String

		bm := roaring.New()
		if err := bm.UnmarshalBinary(blob); err != nil {
			return nil, fmt.Errorf("unmarshal bitmap: %w", err)
		}
		it := bm.Iterator()
		for it.HasNext() {
			if p, ok := paths[it.Next()]; ok {
				c.Paths = append(c.Paths, p)
			}
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Path returns the journal location inside a git directory.
func Path(gitDir string) string {
	return filepath.Join(gitDir, "gitsplit", "journal.db")
}

// String renders a one-line summary of the session.
func (s Session) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "#%d %s %s depth=%d %s", s.ID, s.Started.Format(time.RFC3339), s.Branch, s.Depth, s.Status)
	if len(s.Commits) > 0 {
		fmt.Fprintf(&b, " commits=%d", len(s.Commits))
	}
	return b.String()
}
