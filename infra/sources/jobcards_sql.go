package sources

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/hydrolox-0/ff-sih-backup/core/model"
)

// ErrJobCardNotFound is returned when updating an unknown work order.
var ErrJobCardNotFound = errors.New("job card not found")

// Dialect adapts the job card queries to a SQL engine.
type Dialect struct {
	Name   string
	driver string
	schema string
	dollar bool
}

var (
	// SQLite stores work orders in a local file; used for single-depot setups.
	SQLite = Dialect{Name: "sqlite", driver: "sqlite", schema: `CREATE TABLE IF NOT EXISTS job_cards (
        job_id TEXT PRIMARY KEY,
        trainset_id TEXT NOT NULL,
        status TEXT NOT NULL,
        priority INTEGER NOT NULL,
        estimated_hours REAL NOT NULL DEFAULT 0,
        description TEXT NOT NULL DEFAULT '',
        created_at INTEGER NOT NULL
    );
    CREATE INDEX IF NOT EXISTS job_cards_status ON job_cards (status);`}

	// Postgres reads work orders mirrored from the maintenance system.
	Postgres = Dialect{Name: "postgres", driver: "postgres", dollar: true, schema: `CREATE TABLE IF NOT EXISTS job_cards (
        job_id TEXT PRIMARY KEY,
        trainset_id TEXT NOT NULL,
        status TEXT NOT NULL,
        priority INTEGER NOT NULL,
        estimated_hours DOUBLE PRECISION NOT NULL DEFAULT 0,
        description TEXT NOT NULL DEFAULT '',
        created_at BIGINT NOT NULL
    );
    CREATE INDEX IF NOT EXISTS job_cards_status ON job_cards (status);`}
)

// rebind rewrites ? placeholders as $1..$n for engines that need it.
func (d Dialect) rebind(q string) string {
	if !d.dollar {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// SQLJobCardStore keeps work orders in a SQL database.
type SQLJobCardStore struct {
	db      *sql.DB
	dialect Dialect
}

// OpenSQLiteJobCardStore opens or creates the database at path and ensures schema.
func OpenSQLiteJobCardStore(path string) (*SQLJobCardStore, error) {
	db, err := sql.Open(SQLite.driver, path)
	if err != nil {
		return nil, err
	}
	// A single connection keeps in-memory databases consistent.
	db.SetMaxOpenConns(1)
	return prepare(db, SQLite)
}

// OpenPostgresJobCardStore connects to dsn and ensures schema.
func OpenPostgresJobCardStore(dsn string) (*SQLJobCardStore, error) {
	db, err := sql.Open(Postgres.driver, dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)
	return prepare(db, Postgres)
}

func prepare(db *sql.DB, d Dialect) (*SQLJobCardStore, error) {
	if _, err := db.Exec(d.schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, fmt.Errorf("%s schema: %w", d.Name, err)
	}
	return NewSQLJobCardStore(db, d), nil
}

// NewSQLJobCardStore wraps an already prepared database handle.
func NewSQLJobCardStore(db *sql.DB, d Dialect) *SQLJobCardStore {
	return &SQLJobCardStore{db: db, dialect: d}
}

// Upsert inserts or replaces a work order.
func (s *SQLJobCardStore) Upsert(ctx context.Context, jc model.JobCard) error {
	if err := jc.Validate(); err != nil {
		return err
	}
	if _, err := model.ParseJobCardStatus(string(jc.Status)); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, s.dialect.rebind(
		`INSERT INTO job_cards (job_id, trainset_id, status, priority, estimated_hours, description, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT(job_id) DO UPDATE SET
           trainset_id = excluded.trainset_id,
           status = excluded.status,
           priority = excluded.priority,
           estimated_hours = excluded.estimated_hours,
           description = excluded.description,
           created_at = excluded.created_at`),
		jc.ID, jc.TrainsetID, string(jc.Status), jc.Priority, jc.EstimatedHours, jc.Description, jc.CreatedDate.UnixNano())
	return err
}

// FetchJobCards returns every work order that is not closed, oldest first.
func (s *SQLJobCardStore) FetchJobCards(ctx context.Context) ([]model.JobCard, error) {
	rows, err := s.db.QueryContext(ctx, s.dialect.rebind(
		`SELECT job_id, trainset_id, status, priority, estimated_hours, description, created_at
         FROM job_cards WHERE status != ? ORDER BY created_at, job_id`), string(model.JobClosed))
	if err != nil {
		return nil, fmt.Errorf("query job cards: %w", err)
	}
	defer func() { _ = rows.Close() }()
	res := []model.JobCard{}
	for rows.Next() {
		var (
			jc      model.JobCard
			status  string
			created int64
		)
		if err := rows.Scan(&jc.ID, &jc.TrainsetID, &status, &jc.Priority, &jc.EstimatedHours, &jc.Description, &created); err != nil {
			return nil, fmt.Errorf("scan job card: %w", err)
		}
		jc.Status = model.JobCardStatus(status)
		jc.CreatedDate = time.Unix(0, created).UTC()
		res = append(res, jc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// UpdateStatus moves a work order to a new lifecycle state.
func (s *SQLJobCardStore) UpdateStatus(ctx context.Context, jobID string, status model.JobCardStatus) error {
	if _, err := model.ParseJobCardStatus(string(status)); err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, s.dialect.rebind(`UPDATE job_cards SET status = ? WHERE job_id = ?`), string(status), jobID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrJobCardNotFound, jobID)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLJobCardStore) Close() error { return s.db.Close() }
