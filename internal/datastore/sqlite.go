package datastore

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore persists VIN cache entries, discovery run history, and DTC
// read history — the durable, low-frequency state the facade needs across
// reconnects. High-frequency telemetry lives in InfluxDBStore instead.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) a SQLite-backed store at dbPath.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) initialize() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS vin_cache (
			vin TEXT PRIMARY KEY,
			brand_hint TEXT,
			protocol TEXT,
			addressing TEXT,
			modules JSON,
			cached_at TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS discovery_results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			vin TEXT NOT NULL,
			timestamp TIMESTAMP NOT NULL,
			protocol TEXT,
			addressing TEXT,
			module_count INTEGER,
			elapsed_ms INTEGER,
			error_message TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS dtc_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			vin TEXT NOT NULL,
			timestamp TIMESTAMP NOT NULL,
			mode TEXT NOT NULL,
			codes JSON,
			mil_on BOOLEAN
		)`,
		`CREATE INDEX IF NOT EXISTS idx_discovery_vin_time
			ON discovery_results(vin, timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_dtc_history_vin_time
			ON dtc_history(vin, timestamp)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

func (s *SQLiteStore) SaveVINCacheEntry(entry *VINCacheEntry) error {
	query := `INSERT OR REPLACE INTO vin_cache (
		vin, brand_hint, protocol, addressing, modules, cached_at
	) VALUES (?, ?, ?, ?, ?, ?)`

	cachedAt := entry.CachedAt
	if cachedAt.IsZero() {
		cachedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(query, entry.VIN, entry.BrandHint, entry.Protocol,
		entry.Addressing, entry.Modules, cachedAt)
	if err != nil {
		return fmt.Errorf("failed to save VIN cache entry: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetVINCacheEntry(vin string) (*VINCacheEntry, error) {
	query := `SELECT vin, brand_hint, protocol, addressing, modules, cached_at
		FROM vin_cache WHERE vin = ?`

	var entry VINCacheEntry
	err := s.db.QueryRow(query, vin).Scan(
		&entry.VIN, &entry.BrandHint, &entry.Protocol, &entry.Addressing,
		&entry.Modules, &entry.CachedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no cache entry for VIN: %s", vin)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get VIN cache entry: %w", err)
	}
	return &entry, nil
}

func (s *SQLiteStore) ListVINCacheEntries() ([]*VINCacheEntry, error) {
	rows, err := s.db.Query(`SELECT vin, brand_hint, protocol, addressing, modules, cached_at
		FROM vin_cache ORDER BY cached_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list VIN cache entries: %w", err)
	}
	defer rows.Close()

	var entries []*VINCacheEntry
	for rows.Next() {
		var entry VINCacheEntry
		if err := rows.Scan(&entry.VIN, &entry.BrandHint, &entry.Protocol,
			&entry.Addressing, &entry.Modules, &entry.CachedAt); err != nil {
			return nil, fmt.Errorf("failed to scan VIN cache row: %w", err)
		}
		entries = append(entries, &entry)
	}
	return entries, rows.Err()
}

func (s *SQLiteStore) DeleteVINCacheEntry(vin string) error {
	result, err := s.db.Exec("DELETE FROM vin_cache WHERE vin = ?", vin)
	if err != nil {
		return fmt.Errorf("failed to delete VIN cache entry: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("no cache entry for VIN: %s", vin)
	}
	return nil
}

func (s *SQLiteStore) SaveDiscoveryResultSQL(vin string, rec *DiscoveryRecord) error {
	query := `INSERT INTO discovery_results (
		vin, timestamp, protocol, addressing, module_count, elapsed_ms, error_message
	) VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.Exec(query, vin, rec.Timestamp, rec.Protocol, rec.Addressing,
		rec.ModuleCount, rec.ElapsedMS, rec.ErrorMessage)
	if err != nil {
		return fmt.Errorf("failed to save discovery result: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetDiscoveryResultsSQL(vin string, start, end time.Time) ([]*DiscoveryRecord, error) {
	rows, err := s.db.Query(`
		SELECT timestamp, protocol, addressing, module_count, elapsed_ms, error_message
		FROM discovery_results WHERE vin = ? AND timestamp BETWEEN ? AND ?
		ORDER BY timestamp DESC`, vin, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query discovery results: %w", err)
	}
	defer rows.Close()

	var results []*DiscoveryRecord
	for rows.Next() {
		var rec DiscoveryRecord
		var errMsg sql.NullString
		if err := rows.Scan(&rec.Timestamp, &rec.Protocol, &rec.Addressing,
			&rec.ModuleCount, &rec.ElapsedMS, &errMsg); err != nil {
			return nil, fmt.Errorf("failed to scan discovery result: %w", err)
		}
		rec.ErrorMessage = errMsg.String
		results = append(results, &rec)
	}
	return results, rows.Err()
}

func (s *SQLiteStore) SaveDTCReadoutSQL(vin string, readout *DTCReadout, codesJSON []byte) error {
	query := `INSERT INTO dtc_history (
		vin, timestamp, mode, codes, mil_on
	) VALUES (?, ?, ?, ?, ?)`

	_, err := s.db.Exec(query, vin, readout.Timestamp, readout.Mode, codesJSON, readout.MILOn)
	if err != nil {
		return fmt.Errorf("failed to save DTC readout: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetDTCHistorySQL(vin string, start, end time.Time) ([]*DTCReadout, []([]byte), error) {
	rows, err := s.db.Query(`
		SELECT timestamp, mode, codes, mil_on
		FROM dtc_history WHERE vin = ? AND timestamp BETWEEN ? AND ?
		ORDER BY timestamp DESC`, vin, start, end)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query DTC history: %w", err)
	}
	defer rows.Close()

	var readouts []*DTCReadout
	var rawCodes [][]byte
	for rows.Next() {
		var r DTCReadout
		var codesJSON []byte
		if err := rows.Scan(&r.Timestamp, &r.Mode, &codesJSON, &r.MILOn); err != nil {
			return nil, nil, fmt.Errorf("failed to scan DTC history row: %w", err)
		}
		readouts = append(readouts, &r)
		rawCodes = append(rawCodes, codesJSON)
	}
	return readouts, rawCodes, rows.Err()
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}
	return nil
}
