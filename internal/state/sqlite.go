package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/tallerhub/taller-status/internal/core"
)

// SQLiteStore implements Store on a single SQLite file. It suits a one-node
// workshop install where DynamoDB is not available.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLiteStore opens (or creates) the database at path and applies the
// schema.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite %q: %w", p, err)
		}
	}

	if err := migrateSQLite(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite migrate: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func migrateSQLite(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS vehicles (
			id          TEXT    PRIMARY KEY,
			plate       TEXT    NOT NULL,
			brand       TEXT    NOT NULL DEFAULT '',
			model       TEXT    NOT NULL DEFAULT '',
			year        INTEGER NOT NULL DEFAULT 0,
			owner_id    TEXT    NOT NULL DEFAULT '',
			mechanic_id TEXT    NOT NULL DEFAULT '',
			status_id   INTEGER NOT NULL,
			created_at  TEXT    NOT NULL,
			updated_at  TEXT    NOT NULL DEFAULT ''
		)`,
		`CREATE TABLE IF NOT EXISTS service_requests (
			id          TEXT    PRIMARY KEY,
			vehicle_id  TEXT    NOT NULL REFERENCES vehicles(id),
			client_id   TEXT    NOT NULL DEFAULT '',
			description TEXT    NOT NULL,
			status_id   INTEGER NOT NULL,
			created_at  TEXT    NOT NULL,
			updated_at  TEXT    NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS idx_vehicles_created ON vehicles(created_at, id)`,
		`CREATE INDEX IF NOT EXISTS idx_requests_created ON service_requests(created_at, id)`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Type implements Store.
func (s *SQLiteStore) Type() string { return "sqlite" }

func (s *SQLiteStore) PutVehicle(ctx context.Context, r *VehicleRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO vehicles (id, plate, brand, model, year, owner_id, mechanic_id, status_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Plate, r.Brand, r.Model, r.Year, r.OwnerID, r.MechanicID, r.StatusID, r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to put vehicle: %w", uniqueViolation(err))
	}
	return nil
}

func (s *SQLiteStore) GetVehicle(ctx context.Context, id string) (*VehicleRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, plate, brand, model, year, owner_id, mechanic_id, status_id, created_at, updated_at
		 FROM vehicles WHERE id = ?`, id)
	v, err := scanVehicle(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to get vehicle %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vehicle %s: %w", id, err)
	}
	return VehicleToRecord(v), nil
}

func (s *SQLiteStore) ListVehicles(ctx context.Context) ([]*VehicleRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, plate, brand, model, year, owner_id, mechanic_id, status_id, created_at, updated_at
		 FROM vehicles ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list vehicles: %w", err)
	}
	defer rows.Close()

	var records []*VehicleRecord
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to list vehicles: %w", err)
		}
		records = append(records, VehicleToRecord(v))
	}
	return records, rows.Err()
}

func (s *SQLiteStore) UpdateVehicleStatus(ctx context.Context, id string, from, to int, updatedAt string) error {
	if err := s.updateStatus(ctx, "vehicles", id, from, to, updatedAt); err != nil {
		return fmt.Errorf("failed to update vehicle status: %w", err)
	}
	return nil
}

func (s *SQLiteStore) PutServiceRequest(ctx context.Context, r *ServiceRequestRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO service_requests (id, vehicle_id, client_id, description, status_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.VehicleID, r.ClientID, r.Description, r.StatusID, r.CreatedAt, r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to put service request: %w", uniqueViolation(err))
	}
	return nil
}

func (s *SQLiteStore) GetServiceRequest(ctx context.Context, id string) (*ServiceRequestRecord, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, vehicle_id, client_id, description, status_id, created_at, updated_at
		 FROM service_requests WHERE id = ?`, id)
	sr, err := scanServiceRequest(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("failed to get service request %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get service request %s: %w", id, err)
	}
	return ServiceRequestToRecord(sr), nil
}

func (s *SQLiteStore) ListServiceRequests(ctx context.Context) ([]*ServiceRequestRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, vehicle_id, client_id, description, status_id, created_at, updated_at
		 FROM service_requests ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list service requests: %w", err)
	}
	defer rows.Close()

	var records []*ServiceRequestRecord
	for rows.Next() {
		sr, err := scanServiceRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to list service requests: %w", err)
		}
		records = append(records, ServiceRequestToRecord(sr))
	}
	return records, rows.Err()
}

func (s *SQLiteStore) UpdateServiceRequestStatus(ctx context.Context, id string, from, to int, updatedAt string) error {
	if err := s.updateStatus(ctx, "service_requests", id, from, to, updatedAt); err != nil {
		return fmt.Errorf("failed to update service request status: %w", err)
	}
	return nil
}

// updateStatus applies the compare-and-set inside a transaction so a lost
// race and a missing row can be told apart.
func (s *SQLiteStore) updateStatus(ctx context.Context, table, id string, from, to int, updatedAt string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE `+table+` SET status_id = ?, updated_at = ? WHERE id = ? AND status_id = ?`,
		to, updatedAt, id, from,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var exists int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM `+table+` WHERE id = ?`, id).Scan(&exists)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return ErrStatusConflict
	}
	return tx.Commit()
}

// Ping checks that the database file is reachable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping sqlite: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanVehicle(row rowScanner) (*core.Vehicle, error) {
	var v core.Vehicle
	err := row.Scan(&v.ID, &v.Plate, &v.Brand, &v.Model, &v.Year, &v.OwnerID, &v.MechanicID,
		&v.StatusID, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func scanServiceRequest(row rowScanner) (*core.ServiceRequest, error) {
	var sr core.ServiceRequest
	err := row.Scan(&sr.ID, &sr.VehicleID, &sr.ClientID, &sr.Description, &sr.StatusID,
		&sr.CreatedAt, &sr.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &sr, nil
}

func uniqueViolation(err error) error {
	if strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return errors.New("item already exists")
	}
	return err
}
