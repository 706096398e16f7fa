package trace

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id     TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	created_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS episodes (
	run_id             TEXT NOT NULL,
	episode            INTEGER NOT NULL,
	ticks              INTEGER NOT NULL,
	orders_placed      INTEGER NOT NULL,
	quantity_ordered   INTEGER NOT NULL,
	quantity_delivered INTEGER NOT NULL,
	orders_abandoned   INTEGER NOT NULL,
	quantity_abandoned INTEGER NOT NULL,
	quantity_sold      INTEGER NOT NULL,
	total_demand       INTEGER NOT NULL,
	transport_cost     INTEGER NOT NULL,
	PRIMARY KEY (run_id, episode)
);
CREATE TABLE IF NOT EXISTS events (
	run_id      TEXT NOT NULL,
	episode     INTEGER NOT NULL,
	tick        INTEGER NOT NULL,
	kind        TEXT NOT NULL,
	source      INTEGER NOT NULL,
	destination INTEGER NOT NULL,
	product     INTEGER NOT NULL,
	quantity    INTEGER NOT NULL,
	requested   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_events_run_episode ON events (run_id, episode, tick);
`

// Event kinds persisted in the events table.
const (
	kindOrder    = "order"
	kindDelivery = "delivery"
	kindAbandon  = "abandon"
)

// SQLiteSink persists episode traces and summaries to a SQLite database.
// Each sink owns one run, identified by a fresh UUID.
type SQLiteSink struct {
	db    *sql.DB
	runID string
}

// OpenSQLiteSink opens (or creates) the database at path, installs the
// schema, and registers a new run under the given name.
func OpenSQLiteSink(path, name string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open trace db: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create trace schema: %w", err)
	}

	runID := uuid.NewString()
	if _, err := db.Exec(
		`INSERT INTO runs (run_id, name, created_at) VALUES (?, ?, ?)`,
		runID, name, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		db.Close()
		return nil, fmt.Errorf("register run: %w", err)
	}
	return &SQLiteSink{db: db, runID: runID}, nil
}

// RunID returns the UUID of the run this sink writes under.
func (s *SQLiteSink) RunID() string { return s.runID }

// WriteEpisode persists one episode's summary and events in a single
// transaction.
func (s *SQLiteSink) WriteEpisode(t *EpisodeTrace, summary Summary) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin episode write: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		`INSERT INTO episodes (run_id, episode, ticks, orders_placed, quantity_ordered,
			quantity_delivered, orders_abandoned, quantity_abandoned, quantity_sold,
			total_demand, transport_cost)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.runID, summary.Episode, summary.Ticks, summary.OrdersPlaced, summary.QuantityOrdered,
		summary.QuantityDelivered, summary.OrdersAbandoned, summary.QuantityAbandoned,
		summary.QuantitySold, summary.TotalDemand, summary.TransportCost,
	); err != nil {
		return fmt.Errorf("write episode summary: %w", err)
	}

	stmt, err := tx.Prepare(
		`INSERT INTO events (run_id, episode, tick, kind, source, destination, product, quantity, requested)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare event insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range t.Orders {
		if _, err := stmt.Exec(s.runID, summary.Episode, r.Tick, kindOrder,
			r.SourceID, r.DestinationID, r.ProductID, r.Quantity, r.Quantity); err != nil {
			return fmt.Errorf("write order event: %w", err)
		}
	}
	for _, r := range t.Deliveries {
		if _, err := stmt.Exec(s.runID, summary.Episode, r.Tick, kindDelivery,
			r.SourceID, r.DestinationID, r.ProductID, r.Quantity, r.Requested); err != nil {
			return fmt.Errorf("write delivery event: %w", err)
		}
	}
	for _, r := range t.Abandons {
		if _, err := stmt.Exec(s.runID, summary.Episode, r.Tick, kindAbandon,
			r.SourceID, r.DestinationID, r.ProductID, r.Quantity, r.Quantity); err != nil {
			return fmt.Errorf("write abandon event: %w", err)
		}
	}
	return tx.Commit()
}

// Close releases the database handle.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
