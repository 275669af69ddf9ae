package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/matsen/bibclean/internal/remark"
	_ "modernc.org/sqlite"
)

// ErrNoRun is returned when remarks are recorded before BeginRun.
var ErrNoRun = errors.New("no run started")

// RunConfig is the effective configuration stored with a run.
type RunConfig struct {
	Template    string
	ReplaceKeys bool
}

// Run is one recorded invocation of the cleaner.
type Run struct {
	ID          int64     `json:"id"`
	Input       string    `json:"input"`
	Template    string    `json:"template"`
	ReplaceKeys bool      `json:"replace_keys"`
	StartedAt   time.Time `json:"started_at"`
	Entries     int       `json:"entries"`
	KeysChanged int       `json:"keys_changed"`
	Remarks     int       `json:"remarks"`
}

// StoredRemark is a remark with the run and position it was recorded at.
type StoredRemark struct {
	remark.Remark
	RunID int64 `json:"run_id"`
	Seq   int   `json:"seq"`
}

// RemarkFilter selects stored remarks. Zero values match everything.
type RemarkFilter struct {
	RunID    int64
	Severity remark.Severity
	EntryKey string
}

// RemarkDB stores remarks of successive runs in SQLite. It is a
// remark.Sink for the run started last; the first insert error is kept
// and returned by Err.
type RemarkDB struct {
	db     *sql.DB
	insert *sql.Stmt
	runID  int64
	seq    int
	err    error
	now    func() time.Time
}

// OpenRemarkDB opens or creates a SQLite database at the given path.
func OpenRemarkDB(path string) (*RemarkDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite doesn't support concurrent writes

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	insert, err := db.Prepare(`
		INSERT INTO remarks (run_id, seq, severity, entry_key, message)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("preparing remark insert: %w", err)
	}

	return &RemarkDB{db: db, insert: insert, now: time.Now}, nil
}

// Close closes the database connection.
func (d *RemarkDB) Close() error {
	d.insert.Close()
	return d.db.Close()
}

func createSchema(db *sql.DB) error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			input TEXT NOT NULL,
			template TEXT NOT NULL,
			replace_keys INTEGER NOT NULL,
			started_at INTEGER NOT NULL,
			entries INTEGER NOT NULL DEFAULT 0,
			keys_changed INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS remarks (
			run_id INTEGER NOT NULL REFERENCES runs(id),
			seq INTEGER NOT NULL,
			severity TEXT NOT NULL,
			entry_key TEXT NOT NULL,
			message TEXT NOT NULL,
			PRIMARY KEY (run_id, seq)
		);

		CREATE INDEX IF NOT EXISTS idx_remarks_entry_key ON remarks(entry_key);
	`

	_, err := db.Exec(schema)
	return err
}

// BeginRun registers a new run and directs subsequent remarks to it.
func (d *RemarkDB) BeginRun(input string, cfg RunConfig) (int64, error) {
	res, err := d.db.Exec(`
		INSERT INTO runs (input, template, replace_keys, started_at)
		VALUES (?, ?, ?, ?)
	`, input, cfg.Template, boolToInt(cfg.ReplaceKeys), d.now().Unix())
	if err != nil {
		return 0, fmt.Errorf("inserting run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}

	d.runID = id
	d.seq = 0
	d.err = nil
	return id, nil
}

// Record inserts r into the current run.
func (d *RemarkDB) Record(r remark.Remark) {
	if d.err != nil {
		return
	}
	if d.runID == 0 {
		d.err = ErrNoRun
		return
	}
	d.seq++
	if _, err := d.insert.Exec(d.runID, d.seq, string(r.Severity), r.EntryKey, r.Message); err != nil {
		d.err = fmt.Errorf("inserting remark %d: %w", d.seq, err)
	}
}

// Err returns the first error met by Record in the current run.
func (d *RemarkDB) Err() error {
	return d.err
}

// FinishRun stores the summary counts of the current run.
func (d *RemarkDB) FinishRun(entries, keysChanged int) error {
	if d.runID == 0 {
		return ErrNoRun
	}
	_, err := d.db.Exec(`UPDATE runs SET entries = ?, keys_changed = ? WHERE id = ?`,
		entries, keysChanged, d.runID)
	if err != nil {
		return fmt.Errorf("updating run %d: %w", d.runID, err)
	}
	return d.err
}

// ListRemarks returns the stored remarks matching f, in run and emission
// order.
func (d *RemarkDB) ListRemarks(f RemarkFilter) ([]StoredRemark, error) {
	var conditions []string
	var args []interface{}

	if f.RunID != 0 {
		conditions = append(conditions, "run_id = ?")
		args = append(args, f.RunID)
	}
	if f.Severity != "" {
		conditions = append(conditions, "severity = ?")
		args = append(args, string(f.Severity))
	}
	if f.EntryKey != "" {
		conditions = append(conditions, "entry_key = ?")
		args = append(args, f.EntryKey)
	}

	query := `SELECT run_id, seq, severity, entry_key, message FROM remarks`
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY run_id, seq"

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying remarks: %w", err)
	}
	defer rows.Close()

	var remarks []StoredRemark
	for rows.Next() {
		var r StoredRemark
		var severity string
		if err := rows.Scan(&r.RunID, &r.Seq, &severity, &r.EntryKey, &r.Message); err != nil {
			return nil, fmt.Errorf("scanning remark: %w", err)
		}
		r.Severity = remark.Severity(severity)
		remarks = append(remarks, r)
	}
	return remarks, rows.Err()
}

// ListRuns returns every run, oldest first, with its remark count.
func (d *RemarkDB) ListRuns() ([]Run, error) {
	rows, err := d.db.Query(`
		SELECT r.id, r.input, r.template, r.replace_keys, r.started_at,
			r.entries, r.keys_changed, COUNT(m.seq)
		FROM runs r
		LEFT JOIN remarks m ON m.run_id = r.id
		GROUP BY r.id
		ORDER BY r.id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var replaceKeys int
		var startedAt int64
		if err := rows.Scan(&run.ID, &run.Input, &run.Template, &replaceKeys, &startedAt,
			&run.Entries, &run.KeysChanged, &run.Remarks); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		run.ReplaceKeys = replaceKeys != 0
		run.StartedAt = time.Unix(startedAt, 0).UTC()
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
