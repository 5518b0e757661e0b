package config

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// ErrNoSettings is returned when a store scope has no stored settings
var ErrNoSettings = errors.New("no settings found")

// SQLiteStorage handles persistent storage of store scoped settings
type SQLiteStorage struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// retryOperation executes a database operation with retry logic for SQLITE_BUSY errors
func (s *SQLiteStorage) retryOperation(operation func() error, maxRetries int) error {
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := operation()
		if err == nil {
			return nil
		}

		if !isBusy(err) {
			return err
		}

		lastErr = err
		if attempt < maxRetries {
			// 10ms, 20ms, 40ms
			backoff := time.Duration(10*(1<<attempt)) * time.Millisecond
			log.Printf("SQLite busy, retrying in %v (attempt %d/%d)", backoff, attempt+1, maxRetries+1)
			time.Sleep(backoff)
		}
	}

	return fmt.Errorf("operation failed after %d retries, last error: %w", maxRetries+1, lastErr)
}

func isBusy(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// NewSQLiteStorage opens (or creates) the settings database at dbPath
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_timeout=20000&_txlock=immediate", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(0)

	storage := &SQLiteStorage{
		db:   db,
		path: dbPath,
	}

	if err := storage.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if err := storage.applyPragmas(); err != nil {
		log.Printf("Warning: Failed to apply pragmas: %v", err)
	}

	log.Printf("SQLite settings storage initialized at: %s", dbPath)
	return storage, nil
}

func (s *SQLiteStorage) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS store_settings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		store_id INTEGER NOT NULL,
		setting_key TEXT NOT NULL,
		setting_value TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(store_id, setting_key)
	);

	CREATE INDEX IF NOT EXISTS idx_store_settings_store ON store_settings(store_id);

	CREATE TRIGGER IF NOT EXISTS update_store_settings_updated_at
		AFTER UPDATE ON store_settings
	BEGIN
		UPDATE store_settings SET updated_at = CURRENT_TIMESTAMP WHERE id = NEW.id;
	END;
	`

	_, err := s.db.Exec(query)
	return err
}

func (s *SQLiteStorage) applyPragmas() error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		"PRAGMA busy_timeout = 30000;",
		"PRAGMA temp_store = memory;",
	}

	for _, pragma := range pragmas {
		if _, err := s.db.Exec(pragma); err != nil {
			log.Printf("Warning: Failed to execute %s: %v", pragma, err)
		}
	}

	var journalMode string
	if err := s.db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		return fmt.Errorf("failed to check journal mode: %w", err)
	}

	return nil
}

// SaveStoreSettings upserts the given keys for a store scope in one transaction.
// A key with an empty value is removed from the scope.
func (s *SQLiteStorage) SaveStoreSettings(storeID int, values map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.retryOperation(func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return fmt.Errorf("failed to begin transaction: %w", err)
		}
		defer tx.Rollback()

		for key, value := range values {
			if value == "" {
				if _, err := tx.Exec(`DELETE FROM store_settings WHERE store_id = ? AND setting_key = ?`, storeID, key); err != nil {
					return fmt.Errorf("failed to delete setting %s: %w", key, err)
				}
				continue
			}

			query := `
			INSERT INTO store_settings (store_id, setting_key, setting_value, updated_at)
			VALUES (?, ?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(store_id, setting_key)
			DO UPDATE SET
				setting_value = excluded.setting_value,
				updated_at = CURRENT_TIMESTAMP
			`
			if _, err := tx.Exec(query, storeID, key, value); err != nil {
				return fmt.Errorf("failed to save setting %s: %w", key, err)
			}
		}

		return tx.Commit()
	}, 3)
}

// LoadStoreSettings loads the keys stored for exactly one store scope
func (s *SQLiteStorage) LoadStoreSettings(storeID int) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var values map[string]string
	err := s.retryOperation(func() error {
		rows, err := s.db.Query(`SELECT setting_key, setting_value FROM store_settings WHERE store_id = ?`, storeID)
		if err != nil {
			return fmt.Errorf("failed to load store settings: %w", err)
		}
		defer rows.Close()

		values = make(map[string]string)
		for rows.Next() {
			var key, value string
			if err := rows.Scan(&key, &value); err != nil {
				return fmt.Errorf("failed to scan row: %w", err)
			}
			values[key] = value
		}
		return rows.Err()
	}, 3)
	if err != nil {
		return nil, err
	}

	if len(values) == 0 {
		return nil, fmt.Errorf("%w for store: %d", ErrNoSettings, storeID)
	}
	return values, nil
}

// LoadAllStoreSettings loads every stored scope keyed by store ID
func (s *SQLiteStorage) LoadAllStoreSettings() (map[int]map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var all map[int]map[string]string
	err := s.retryOperation(func() error {
		rows, err := s.db.Query(`SELECT store_id, setting_key, setting_value FROM store_settings ORDER BY store_id`)
		if err != nil {
			return fmt.Errorf("failed to query store settings: %w", err)
		}
		defer rows.Close()

		all = make(map[int]map[string]string)
		for rows.Next() {
			var (
				storeID    int
				key, value string
			)
			if err := rows.Scan(&storeID, &key, &value); err != nil {
				return fmt.Errorf("failed to scan row: %w", err)
			}
			if all[storeID] == nil {
				all[storeID] = make(map[string]string)
			}
			all[storeID][key] = value
		}
		return rows.Err()
	}, 3)
	if err != nil {
		return nil, err
	}

	log.Printf("Loaded settings for %d store scopes from SQLite", len(all))
	return all, nil
}

// DeleteStoreSettings removes every key of a store scope
func (s *SQLiteStorage) DeleteStoreSettings(storeID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.retryOperation(func() error {
		result, err := s.db.Exec(`DELETE FROM store_settings WHERE store_id = ?`, storeID)
		if err != nil {
			return fmt.Errorf("failed to delete store settings: %w", err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return fmt.Errorf("%w for store: %d", ErrNoSettings, storeID)
		}
		return nil
	}, 3)
}

// DeleteAll removes every stored setting of every scope
func (s *SQLiteStorage) DeleteAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.retryOperation(func() error {
		if _, err := s.db.Exec(`DELETE FROM store_settings`); err != nil {
			return fmt.Errorf("failed to delete settings: %w", err)
		}
		return nil
	}, 3)
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// GetStats returns database statistics
func (s *SQLiteStorage) GetStats() (map[string]any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := make(map[string]any)

	var totalSettings int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM store_settings").Scan(&totalSettings); err != nil {
		return nil, fmt.Errorf("failed to count settings: %w", err)
	}
	stats["total_settings"] = totalSettings

	var stores int
	if err := s.db.QueryRow("SELECT COUNT(DISTINCT store_id) FROM store_settings").Scan(&stores); err != nil {
		return nil, fmt.Errorf("failed to count stores: %w", err)
	}
	stats["store_scopes"] = stores

	if fileInfo, err := os.Stat(s.path); err == nil {
		stats["db_size_bytes"] = fileInfo.Size()
	}
	stats["db_path"] = s.path

	return stats, nil
}
