package sim

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// Recorder writes samples to a SQLite database, one row per cycle.
// Rows are buffered and written in batches; pending rows are flushed at
// process exit through atexit.
type Recorder struct {
	*sql.DB
	statement *sql.Stmt

	dbName    string
	runID     string
	pending   []Sample
	batchSize int
}

// NewRecorder creates a recorder. An empty path picks a unique file
// name in the working directory.
func NewRecorder(path string) *Recorder {
	r := &Recorder{
		dbName:    path,
		runID:     xid.New().String(),
		batchSize: 1000,
	}

	atexit.Register(func() {
		if err := r.Flush(); err != nil {
			log.Printf("trace %s: %v", r.Filename(), err)
		}
	})

	return r
}

// Init creates the database and the cycle table
func (r *Recorder) Init() error {
	if r.dbName == "" {
		r.dbName = "motorsim_" + r.runID
	}

	filename := r.dbName + ".sqlite3"
	if _, err := os.Stat(filename); err == nil {
		return fmt.Errorf("file %s already exists", filename)
	}

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return err
	}
	r.DB = db

	_, err = r.Exec(`
		create table if not exists cycle
		(
			run_id    varchar(32) not null,
			time_us   integer     not null,
			cycle     integer     not null,
			pulses    integer     not null,
			rpm       integer     not null,
			setpoint  integer     not null,
			output    integer     not null,
			direction varchar(16) not null,
			magnitude integer     not null,
			motor_rpm float       not null,
			display   varchar(32) default '',
			error     varchar(200) default ''
		);
	`)
	if err != nil {
		return err
	}

	r.statement, err = r.Prepare(`INSERT INTO cycle VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	return err
}

// Filename returns the database file path
func (r *Recorder) Filename() string {
	return r.dbName + ".sqlite3"
}

// RunID identifies this run's rows
func (r *Recorder) RunID() string {
	return r.runID
}

// Write buffers a sample, flushing when a full batch is pending
func (r *Recorder) Write(s Sample) error {
	r.pending = append(r.pending, s)
	if len(r.pending) >= r.batchSize {
		return r.Flush()
	}
	return nil
}

// Flush writes all buffered samples in one transaction
func (r *Recorder) Flush() error {
	if len(r.pending) == 0 || r.DB == nil {
		return nil
	}

	tx, err := r.Begin()
	if err != nil {
		return err
	}
	stmt := tx.Stmt(r.statement)
	for _, s := range r.pending {
		errText := ""
		if s.Err != nil {
			errText = s.Err.Error()
		}
		_, err := stmt.Exec(
			r.runID,
			s.Time.Microseconds(),
			s.Cycle,
			s.Pulses,
			s.RPM,
			s.Setpoint,
			s.Output,
			s.Direction.String(),
			s.Magnitude,
			s.MotorRPM,
			s.Display,
			errText,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("cycle %d: %w", s.Cycle, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}

	r.pending = nil
	return nil
}

// Close flushes and closes the database
func (r *Recorder) Close() error {
	if r.DB == nil {
		return nil
	}
	if err := r.Flush(); err != nil {
		return err
	}
	return r.DB.Close()
}
