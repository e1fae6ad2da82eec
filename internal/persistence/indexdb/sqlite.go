// Package indexdb maintains a queryable sqlite index next to the flat-file
// saves: audit history, save records and periodic game stats. It is a
// secondary index; losing it loses nothing the flat files and JSONL logs do
// not still hold.
package indexdb

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"warptrade.io/internal/sim/catalogs"
	"warptrade.io/internal/sim/tuning"
	"warptrade.io/internal/sim/world"
)

type SQLiteIndex struct {
	db *sql.DB

	ch   chan req
	wg   sync.WaitGroup
	once sync.Once

	closed atomic.Bool
}

type reqKind int

const (
	reqAudit reqKind = iota + 1
	reqSave
	reqStats
)

type req struct {
	kind reqKind

	audit world.AuditEntry
	save  saveRow
	stats statsRow
}

type saveRow struct {
	Path       string
	RecordedAt string
	Sectors    int
	Ports      int
	Planets    int
	Ships      int
	Players    int
}

type statsRow struct {
	RecordedAt string
	Players    int
	Online     int
	Planets    int
	Citadels   int
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		// High buffer: audit writes burst during busy trading hours and
		// must never stall the world lock.
		ch: make(chan req, 65536),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads.
	// NORMAL is a decent durability/perf tradeoff for a secondary index.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS catalogs (
			name TEXT PRIMARY KEY,
			digest TEXT NOT NULL,
			json TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS audits (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			at TEXT NOT NULL,
			actor INTEGER NOT NULL,
			action TEXT NOT NULL,
			sector INTEGER NOT NULL,
			detail TEXT,
			code TEXT,
			raw_json TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_audits_actor_at ON audits(actor, at);`,
		`CREATE INDEX IF NOT EXISTS idx_audits_action_at ON audits(action, at);`,
		`CREATE TABLE IF NOT EXISTS saves (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			recorded_at TEXT NOT NULL,
			path TEXT NOT NULL,
			sectors INTEGER NOT NULL,
			ports INTEGER NOT NULL,
			planets INTEGER NOT NULL,
			ships INTEGER NOT NULL,
			players INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS stats (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			recorded_at TEXT NOT NULL,
			players INTEGER NOT NULL,
			online INTEGER NOT NULL,
			planets INTEGER NOT NULL,
			citadels INTEGER NOT NULL
		);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

// WriteAudit implements world.AuditLogger. Entries are queued for the writer
// goroutine; when the indexer falls behind entries drop, the JSONL audit log
// remains the source of truth.
func (s *SQLiteIndex) WriteAudit(entry world.AuditEntry) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	select {
	case s.ch <- req{kind: reqAudit, audit: entry}:
	default:
	}
	return nil
}

// RecordSave notes one completed flat-file save and its entity counts.
func (s *SQLiteIndex) RecordSave(path string, st world.Stats, ships int) {
	if s == nil || s.closed.Load() {
		return
	}
	r := saveRow{
		Path:       path,
		RecordedAt: time.Now().UTC().Format(time.RFC3339Nano),
		Sectors:    st.Sectors,
		Ports:      st.Ports,
		Planets:    st.Planets,
		Ships:      ships,
		Players:    st.Players,
	}
	select {
	case s.ch <- req{kind: reqSave, save: r}:
	default:
	}
}

// RecordStats appends one periodic stats sample.
func (s *SQLiteIndex) RecordStats(st world.Stats) {
	if s == nil || s.closed.Load() {
		return
	}
	r := statsRow{
		RecordedAt: time.Now().UTC().Format(time.RFC3339Nano),
		Players:    st.Players,
		Online:     st.Online,
		Planets:    st.Planets,
		Citadels:   st.Citadels,
	}
	select {
	case s.ch <- req{kind: reqStats, stats: r}:
	default:
	}
}

// UpsertCatalogs stores the loaded catalog digests and the applied tuning so
// a save can always be matched to the data files it ran with.
func (s *SQLiteIndex) UpsertCatalogs(cats *catalogs.Catalogs, tune tuning.Tuning) error {
	if s == nil {
		return nil
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)

	type kv struct {
		name   string
		digest string
		json   []byte
	}
	var rows []kv
	if b, _ := json.Marshal(cats.ShipTypes); len(b) > 0 {
		rows = append(rows, kv{name: "ship_types", digest: cats.Digest, json: b})
	}
	if b, _ := json.Marshal(cats.PlanetClasses); len(b) > 0 {
		rows = append(rows, kv{name: "planet_classes", digest: cats.Digest, json: b})
	}
	{
		b, _ := json.Marshal(tune)
		sum := sha256.Sum256(b)
		rows = append(rows, kv{name: "tuning", digest: hex.EncodeToString(sum[:]), json: b})
	}

	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1')`); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO catalogs(name,digest,json,updated_at) VALUES(?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if r.name == "" || r.digest == "" || len(r.json) == 0 {
			continue
		}
		if _, err := stmt.Exec(r.name, r.digest, string(r.json), now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertAudit, _ := s.db.Prepare(`INSERT INTO audits(at,actor,action,sector,detail,code,raw_json) VALUES(?,?,?,?,?,?,?)`)
	insertSave, _ := s.db.Prepare(`INSERT INTO saves(recorded_at,path,sectors,ports,planets,ships,players) VALUES(?,?,?,?,?,?,?)`)
	insertStats, _ := s.db.Prepare(`INSERT INTO stats(recorded_at,players,online,planets,citadels) VALUES(?,?,?,?,?)`)
	defer func() {
		if insertAudit != nil {
			_ = insertAudit.Close()
		}
		if insertSave != nil {
			_ = insertSave.Close()
		}
		if insertStats != nil {
			_ = insertStats.Close()
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 2000
		commitMaxWait = 2 * time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			// If we can't start a tx, we can't do much; sleep a bit.
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}

	flushIfNeeded := func() {
		if tx == nil {
			return
		}
		if opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait {
			commit()
		}
	}

	for r := range s.ch {
		begin()
		if tx == nil {
			continue
		}
		switch r.kind {
		case reqAudit:
			a := r.audit
			raw, _ := json.Marshal(a)
			if insertAudit != nil {
				if _, err := tx.Stmt(insertAudit).Exec(
					a.Time.UTC().Format(time.RFC3339Nano),
					a.Actor,
					a.Action,
					a.Sector,
					a.Detail,
					a.Code,
					string(raw),
				); err != nil {
					rollback()
					continue
				}
				opCount++
			}

		case reqSave:
			sr := r.save
			if insertSave != nil {
				if _, err := tx.Stmt(insertSave).Exec(
					sr.RecordedAt,
					sr.Path,
					sr.Sectors,
					sr.Ports,
					sr.Planets,
					sr.Ships,
					sr.Players,
				); err != nil {
					rollback()
					continue
				}
				opCount++
			}

		case reqStats:
			st := r.stats
			if insertStats != nil {
				if _, err := tx.Stmt(insertStats).Exec(
					st.RecordedAt,
					st.Players,
					st.Online,
					st.Planets,
					st.Citadels,
				); err != nil {
					rollback()
					continue
				}
				opCount++
			}
		}
		flushIfNeeded()
	}

	commit()
}
