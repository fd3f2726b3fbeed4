package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ndewijer/Currency-Rate-Loader/internal/apperrors"
	"github.com/ndewijer/Currency-Rate-Loader/internal/model"
)

// RateTypeRepository provides data access methods for the rate_type table.
// It stores the configuration of every rate type and the summary of its last run.
type RateTypeRepository struct {
	db *sql.DB
}

// NewRateTypeRepository creates a new RateTypeRepository with the provided database connection.
func NewRateTypeRepository(db *sql.DB) *RateTypeRepository {
	return &RateTypeRepository{db: db}
}

const rateTypeColumns = `
	id, name, autoload_method, base_currency, active, interval_value, tickers,
	autoload_lastrun, autoload_lastresult, created_at`

// ListRateTypes retrieves every rate type ordered by name.
// Returns an empty slice if none exist.
func (r *RateTypeRepository) ListRateTypes(ctx context.Context) ([]model.RateType, error) {
	return r.query(ctx, `SELECT `+rateTypeColumns+` FROM rate_type ORDER BY name`)
}

// ListActiveRateTypes retrieves the rate types the scheduler considers.
func (r *RateTypeRepository) ListActiveRateTypes(ctx context.Context) ([]model.RateType, error) {
	return r.query(ctx, `SELECT `+rateTypeColumns+` FROM rate_type WHERE active = 1 ORDER BY name`)
}

// GetRateType retrieves a single rate type.
// Returns apperrors.ErrRateTypeNotFound when no row matches.
func (r *RateTypeRepository) GetRateType(ctx context.Context, id string) (model.RateType, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+rateTypeColumns+` FROM rate_type WHERE id = ?`, id)

	rt, err := scanRateType(row)
	if isNoRows(err) {
		return model.RateType{}, apperrors.ErrRateTypeNotFound
	}
	if err != nil {
		return model.RateType{}, fmt.Errorf("failed to query rate_type table: %w", err)
	}
	return rt, nil
}

// InsertRateType stores a new rate type.
// Returns apperrors.ErrDuplicateEntry if the name is taken.
func (r *RateTypeRepository) InsertRateType(ctx context.Context, rt model.RateType) error {
	query := `
		INSERT INTO rate_type (id, name, autoload_method, base_currency, active, interval_value, tickers, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		rt.ID,
		rt.Name,
		rt.AutoloadMethod,
		nullString(rt.BaseCurrency),
		rt.Active,
		rt.IntervalValue,
		rt.Tickers,
		formatTime(rt.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert rate type: %w", mapConstraintError(err))
	}
	return nil
}

// UpdateRateType stores the configuration fields of rt. Run results are
// left untouched.
func (r *RateTypeRepository) UpdateRateType(ctx context.Context, rt model.RateType) error {
	query := `
		UPDATE rate_type
		SET name = ?, autoload_method = ?, base_currency = ?, active = ?, interval_value = ?, tickers = ?
		WHERE id = ?
	`

	result, err := r.db.ExecContext(ctx, query,
		rt.Name,
		rt.AutoloadMethod,
		nullString(rt.BaseCurrency),
		rt.Active,
		rt.IntervalValue,
		rt.Tickers,
		rt.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update rate type: %w", mapConstraintError(err))
	}
	return requireAffected(result, apperrors.ErrRateTypeNotFound)
}

// DeleteRateType removes a rate type and, through the foreign key, its rates.
func (r *RateTypeRepository) DeleteRateType(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM rate_type WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete rate type: %w", err)
	}
	return requireAffected(result, apperrors.ErrRateTypeNotFound)
}

// SaveRunResult records when a rate type last ran and what it produced.
func (r *RateTypeRepository) SaveRunResult(ctx context.Context, id string, lastRun time.Time, result model.RunResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode run result: %w", err)
	}

	res, err := r.db.ExecContext(ctx,
		`UPDATE rate_type SET autoload_lastrun = ?, autoload_lastresult = ? WHERE id = ?`,
		formatTime(lastRun), string(payload), id,
	)
	if err != nil {
		return fmt.Errorf("failed to save run result: %w", err)
	}
	return requireAffected(res, apperrors.ErrRateTypeNotFound)
}

func (r *RateTypeRepository) query(ctx context.Context, query string, args ...any) ([]model.RateType, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query rate_type table: %w", err)
	}
	defer rows.Close()

	rateTypes := []model.RateType{}
	for rows.Next() {
		rt, err := scanRateType(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rate_type table results: %w", err)
		}
		rateTypes = append(rateTypes, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rate_type table: %w", err)
	}
	return rateTypes, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRateType(s scanner) (model.RateType, error) {
	var (
		rt         model.RateType
		base       sql.NullString
		lastRun    sql.NullString
		lastResult sql.NullString
		createdAt  sql.NullString
	)

	err := s.Scan(
		&rt.ID,
		&rt.Name,
		&rt.AutoloadMethod,
		&base,
		&rt.Active,
		&rt.IntervalValue,
		&rt.Tickers,
		&lastRun,
		&lastResult,
		&createdAt,
	)
	if err != nil {
		return model.RateType{}, err
	}

	rt.BaseCurrency = base.String

	if lastRun.Valid && lastRun.String != "" {
		t, err := ParseTime(lastRun.String)
		if err != nil {
			return model.RateType{}, err
		}
		rt.LastRun = &t
	}

	if lastResult.Valid && lastResult.String != "" {
		var result model.RunResult
		if err := json.Unmarshal([]byte(lastResult.String), &result); err != nil {
			return model.RateType{}, err
		}
		rt.LastResult = &result
	}

	if createdAt.Valid && createdAt.String != "" {
		t, err := ParseTime(createdAt.String)
		if err != nil {
			return model.RateType{}, err
		}
		rt.CreatedAt = t
	}

	return rt, nil
}

func requireAffected(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}
