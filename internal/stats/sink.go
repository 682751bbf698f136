package stats

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const createSamplesTable = `
CREATE TABLE IF NOT EXISTS samples (
	run          TEXT    NOT NULL,
	seq          INTEGER NOT NULL,
	elapsed_us   INTEGER NOT NULL,
	heap_objects INTEGER NOT NULL,
	stack_frames INTEGER NOT NULL,
	heap_bytes   INTEGER NOT NULL
)`

const insertSample = `INSERT INTO samples
	(run, seq, elapsed_us, heap_objects, stack_frames, heap_bytes)
	VALUES (?, ?, ?, ?, ?, ?)`

// rebindPlaceholders rewrites ? placeholders into the numbered $1..$N form
// for postgres, which rejects the ? syntax at parse time. sqlite3 and mysql
// take ? as is.
func rebindPlaceholders(driver, query string) string {
	if driver != "postgres" {
		return query
	}

	var buf strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			buf.WriteByte('$')
			buf.WriteString(strconv.Itoa(n))
			continue
		}
		buf.WriteRune(c)
	}
	return buf.String()
}

// Sink persists recorded samples into a SQL database. The driver is chosen
// by name, so the same sink works against sqlite, mysql, and postgres.
type Sink struct {
	db     *sql.DB
	driver string
	run    string
}

func OpenSink(driver, dsn string) (*Sink, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open stats sink: %w", err)
	}

	if _, err := db.Exec(createSamplesTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare samples table: %w", err)
	}

	return &Sink{
		db:     db,
		driver: driver,
		run:    time.Now().UTC().Format(time.RFC3339Nano),
	}, nil
}

// Flush writes every sample of the recorder in one transaction.
func (s *Sink) Flush(r *Recorder) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin stats transaction: %w", err)
	}

	stmt, err := tx.Prepare(rebindPlaceholders(s.driver, insertSample))
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to prepare stats insert: %w", err)
	}
	defer stmt.Close()

	for seq, sample := range r.Samples() {
		_, err := stmt.Exec(s.run, seq,
			sample.Elapsed.Microseconds(),
			sample.HeapObjects,
			sample.StackFrames,
			int64(sample.HeapBytes))
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert sample %d: %w", seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit stats transaction: %w", err)
	}

	slog.Debug("flushed samples",
		slog.String("run", s.run),
		slog.Int("count", r.Len()))
	return nil
}

func (s *Sink) Close() error {
	return s.db.Close()
}
