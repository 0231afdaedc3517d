package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Transaction represents a persisted payment transaction
type Transaction struct {
	ID            int64          `json:"id"`
	TransactionID string         `json:"transactionId"`
	Provider      string         `json:"provider"`
	Reference     string         `json:"reference"`
	Amount        float64        `json:"amount"`
	Currency      string         `json:"currency"`
	Status        string         `json:"status"`
	CustomerEmail string         `json:"customerEmail,omitempty"`
	FailureReason string         `json:"failureReason,omitempty"`
	Metadata      map[string]any `json:"metadata,omitempty"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

// TransactionStore handles persistent storage of payment transactions
type TransactionStore struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// retryOperation executes a database operation with retry logic for SQLITE_BUSY errors
func (s *TransactionStore) retryOperation(operation func() error, maxRetries int) error {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}

		// Check if it's a busy error
		if strings.Contains(err.Error(), "SQLITE_BUSY") || strings.Contains(err.Error(), "database is locked") {
			lastErr = err
			if attempt < maxRetries {
				// Exponential backoff: 10ms, 20ms, 40ms, 80ms
				backoff := time.Duration(10*(1<<attempt)) * time.Millisecond
				log.Printf("SQLite busy, retrying in %v (attempt %d/%d)", backoff, attempt+1, maxRetries+1)
				time.Sleep(backoff)
				continue
			}
		} else {
			// Not a retry-able error
			return err
		}
	}

	return fmt.Errorf("operation failed after %d retries, last error: %w", maxRetries+1, lastErr)
}

// NewTransactionStore creates a new SQLite-backed transaction store
func NewTransactionStore(dbPath string) (*TransactionStore, error) {
	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	// SQLite connection string with multi-process optimizations
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=1000&_timeout=20000&_txlock=immediate", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(0)

	store := &TransactionStore{
		db:   db,
		path: dbPath,
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if err := store.optimizeForMultiProcess(); err != nil {
		log.Printf("Warning: Failed to apply optimizations: %v", err)
	}

	log.Printf("Transaction store initialized at: %s", dbPath)
	return store, nil
}

// initSchema creates the necessary tables
func (s *TransactionStore) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS transactions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		transaction_id TEXT NOT NULL UNIQUE,
		provider TEXT NOT NULL,
		reference TEXT NOT NULL,
		amount REAL NOT NULL,
		currency TEXT NOT NULL,
		status TEXT NOT NULL,
		customer_email TEXT,
		failure_reason TEXT,
		metadata TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_provider ON transactions(provider);
	CREATE INDEX IF NOT EXISTS idx_transactions_reference ON transactions(reference);
	CREATE INDEX IF NOT EXISTS idx_transactions_status ON transactions(status);

	-- Trigger to update updated_at column
	CREATE TRIGGER IF NOT EXISTS update_transactions_updated_at
		AFTER UPDATE ON transactions
	BEGIN
		UPDATE transactions SET updated_at = CURRENT_TIMESTAMP WHERE id = NEW.id;
	END;
	`

	_, err := s.db.Exec(query)
	return err
}

// optimizeForMultiProcess applies SQLite optimizations for multi-process access
func (s *TransactionStore) optimizeForMultiProcess() error {
	optimizations := []string{
		"PRAGMA journal_mode = WAL;",    // Write-Ahead Logging for better concurrency
		"PRAGMA synchronous = NORMAL;",  // Balance between safety and speed
		"PRAGMA cache_size = 1000;",     // Increase cache size
		"PRAGMA busy_timeout = 30000;",  // 30 second timeout for lock waits
		"PRAGMA temp_store = memory;",   // Store temp tables in memory
		"PRAGMA mmap_size = 268435456;", // 256MB memory mapping
		"PRAGMA optimize;",              // Optimize database
	}

	for _, pragma := range optimizations {
		if _, err := s.db.Exec(pragma); err != nil {
			log.Printf("Warning: Failed to execute %s: %v", pragma, err)
		}
	}

	var journalMode string
	err := s.db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode)
	if err != nil {
		return fmt.Errorf("failed to check journal mode: %w", err)
	}

	log.Printf("SQLite journal mode: %s", journalMode)
	return nil
}

// SaveTransaction inserts a new transaction record
func (s *TransactionStore) SaveTransaction(txn Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	metadataJSON, err := json.Marshal(txn.Metadata)
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %w", err)
	}

	return s.retryOperation(func() error {
		query := `
		INSERT INTO transactions (transaction_id, provider, reference, amount, currency, status, customer_email, failure_reason, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`

		_, err := s.db.Exec(query,
			txn.TransactionID, txn.Provider, txn.Reference,
			txn.Amount, txn.Currency, txn.Status,
			txn.CustomerEmail, txn.FailureReason, string(metadataJSON),
		)
		if err != nil {
			return fmt.Errorf("failed to save transaction: %w", err)
		}

		return nil
	}, 3) // Max 3 retries
}

// UpdateStatus updates the status of a transaction by its transaction ID
func (s *TransactionStore) UpdateStatus(transactionID, status, failureReason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.retryOperation(func() error {
		query := `
		UPDATE transactions
		SET status = ?, failure_reason = ?
		WHERE transaction_id = ?
		`

		result, err := s.db.Exec(query, status, failureReason, transactionID)
		if err != nil {
			return fmt.Errorf("failed to update transaction status: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}

		if rowsAffected == 0 {
			return fmt.Errorf("no transaction found with ID: %s", transactionID)
		}

		return nil
	}, 3) // Max 3 retries
}

// GetByTransactionID loads a transaction by its transaction ID
func (s *TransactionStore) GetByTransactionID(transactionID string) (*Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var txn Transaction
	err := s.retryOperation(func() error {
		query := `
		SELECT id, transaction_id, provider, reference, amount, currency, status,
			COALESCE(customer_email, ''), COALESCE(failure_reason, ''), COALESCE(metadata, '{}'),
			created_at, updated_at
		FROM transactions
		WHERE transaction_id = ?
		`

		var metadataJSON string
		err := s.db.QueryRow(query, transactionID).Scan(
			&txn.ID, &txn.TransactionID, &txn.Provider, &txn.Reference,
			&txn.Amount, &txn.Currency, &txn.Status,
			&txn.CustomerEmail, &txn.FailureReason, &metadataJSON,
			&txn.CreatedAt, &txn.UpdatedAt,
		)
		if err != nil {
			if err == sql.ErrNoRows {
				return fmt.Errorf("no transaction found with ID: %s", transactionID)
			}
			return fmt.Errorf("failed to load transaction: %w", err)
		}

		if err := json.Unmarshal([]byte(metadataJSON), &txn.Metadata); err != nil {
			return fmt.Errorf("failed to unmarshal metadata: %w", err)
		}

		return nil
	}, 3) // Max 3 retries

	if err != nil {
		return nil, err
	}
	return &txn, nil
}

// ListRecent returns the most recent transactions, optionally filtered by provider
func (s *TransactionStore) ListRecent(provider string, limit int) ([]Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 50
	}

	var txns []Transaction
	err := s.retryOperation(func() error {
		query := `
		SELECT id, transaction_id, provider, reference, amount, currency, status,
			COALESCE(customer_email, ''), COALESCE(failure_reason, ''), COALESCE(metadata, '{}'),
			created_at, updated_at
		FROM transactions
		`
		args := []any{}
		if provider != "" {
			query += " WHERE provider = ?"
			args = append(args, provider)
		}
		query += " ORDER BY created_at DESC LIMIT ?"
		args = append(args, limit)

		rows, err := s.db.Query(query, args...)
		if err != nil {
			return fmt.Errorf("failed to query transactions: %w", err)
		}
		defer rows.Close()

		txns = nil
		for rows.Next() {
			var txn Transaction
			var metadataJSON string
			if err := rows.Scan(
				&txn.ID, &txn.TransactionID, &txn.Provider, &txn.Reference,
				&txn.Amount, &txn.Currency, &txn.Status,
				&txn.CustomerEmail, &txn.FailureReason, &metadataJSON,
				&txn.CreatedAt, &txn.UpdatedAt,
			); err != nil {
				return fmt.Errorf("failed to scan row: %w", err)
			}

			if err := json.Unmarshal([]byte(metadataJSON), &txn.Metadata); err != nil {
				log.Printf("Warning: failed to unmarshal metadata for transaction %s: %v", txn.TransactionID, err)
			}

			txns = append(txns, txn)
		}

		if err = rows.Err(); err != nil {
			return fmt.Errorf("error iterating rows: %w", err)
		}

		return nil
	}, 3) // Max 3 retries

	if err != nil {
		return nil, err
	}
	return txns, nil
}

// Close closes the database connection
func (s *TransactionStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// GetStats returns database statistics
func (s *TransactionStore) GetStats() (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := make(map[string]any)

	var totalTransactions int
	err := s.db.QueryRow("SELECT COUNT(*) FROM transactions").Scan(&totalTransactions)
	if err != nil {
		return nil, fmt.Errorf("failed to count transactions: %w", err)
	}
	stats["total_transactions"] = totalTransactions

	// Count per status
	rows, err := s.db.Query("SELECT status, COUNT(*) FROM transactions GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}
	defer rows.Close()

	byStatus := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		byStatus[status] = count
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating status rows: %w", err)
	}
	stats["by_status"] = byStatus

	// Database file size
	if fileInfo, err := os.Stat(s.path); err == nil {
		stats["db_size_bytes"] = fileInfo.Size()
	}

	stats["db_path"] = s.path

	return stats, nil
}
