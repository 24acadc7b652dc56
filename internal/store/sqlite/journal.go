// Package sqlite keeps a durable local mirror of the order ledger. The
// Redis blob is the shared source of truth; the journal survives a Redis
// flush and serves audit queries.
package sqlite

import (
	"database/sql"
	"log"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"fivecoin/internal/model"
)

// Journal persists order adds and deletions to SQLite.
type Journal struct {
	mu sync.Mutex
	db *sql.DB
}

// NewJournal opens (or creates) the journal database.
func NewJournal(dbPath string) (*Journal, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	schema := `
	CREATE TABLE IF NOT EXISTS orders (
		order_id    TEXT PRIMARY KEY,
		item_id     TEXT NOT NULL,
		side        TEXT NOT NULL,
		price       REAL NOT NULL,
		note        TEXT,
		created_at  DATETIME NOT NULL,
		deleted_at  DATETIME
	);
	CREATE INDEX IF NOT EXISTS idx_orders_item ON orders(item_id);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}

	log.Printf("[journal] opened order journal at %s", dbPath)
	return &Journal{db: db}, nil
}

// DB returns the underlying sql.DB for health checks.
func (j *Journal) DB() *sql.DB { return j.db }

// RecordOrder persists a newly created order.
func (j *Journal) RecordOrder(o model.Order) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	_, err := j.db.Exec(
		`INSERT OR REPLACE INTO orders (order_id, item_id, side, price, note, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		o.ID, o.ItemID, string(o.Side), o.Price, o.Note, o.CreatedAt.Format(time.RFC3339),
	)
	return err
}

// RecordDeletion marks an order deleted. The row is kept for audit.
func (j *Journal) RecordDeletion(orderID string) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	_, err := j.db.Exec(
		`UPDATE orders SET deleted_at = ? WHERE order_id = ?`,
		time.Now().UTC().Format(time.RFC3339), orderID,
	)
	return err
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}
