package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ndewijer/Currency-Rate-Loader/internal/model"
)

// CurrencyRateRepository provides data access methods for the currency_rate table.
type CurrencyRateRepository struct {
	db *sql.DB
}

// NewCurrencyRateRepository creates a new CurrencyRateRepository with the provided database connection.
func NewCurrencyRateRepository(db *sql.DB) *CurrencyRateRepository {
	return &CurrencyRateRepository{db: db}
}

// Exists reports whether a rate with the same key is already stored.
// Rates are compared in their canonical decimal form, so 90.50 and 90.5 match.
func (r *CurrencyRateRepository) Exists(ctx context.Context, key model.RateKey) (bool, error) {
	query := `
		SELECT 1
		FROM currency_rate
		WHERE rate_type_id = ?
		AND currency_from = ?
		AND currency_to = ?
		AND rate_date = ?
		AND rate = ?
		AND nominal = ?
		LIMIT 1
	`

	var one int
	err := r.db.QueryRowContext(ctx, query,
		key.RateTypeID,
		key.CurrencyFrom,
		key.CurrencyTo,
		formatDate(key.RateDate),
		key.Rate.String(),
		key.Nominal,
	).Scan(&one)
	if isNoRows(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query currency_rate table: %w", err)
	}
	return true, nil
}

// Insert stores a new rate.
// Returns apperrors.ErrDuplicateEntry when an identical rate already exists.
func (r *CurrencyRateRepository) Insert(ctx context.Context, rate model.CurrencyRate) error {
	query := `
		INSERT INTO currency_rate (id, rate_type_id, currency_from, currency_to, rate, rate_date, nominal, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		rate.ID,
		rate.RateTypeID,
		rate.CurrencyFrom,
		rate.CurrencyTo,
		rate.Rate.String(),
		formatDate(rate.RateDate),
		rate.Nominal,
		formatTime(rate.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert currency rate: %w", mapConstraintError(err))
	}
	return nil
}

// ListByRateType retrieves stored rates of a rate type, newest date first.
// Zero-valued filter fields are ignored.
func (r *CurrencyRateRepository) ListByRateType(ctx context.Context, rateTypeID string, filter model.CurrencyRateFilter) ([]model.CurrencyRate, error) {
	var (
		where = []string{"rate_type_id = ?"}
		args  = []any{rateTypeID}
	)

	if filter.CurrencyFrom != "" {
		where = append(where, "currency_from = ?")
		args = append(args, strings.ToUpper(filter.CurrencyFrom))
	}
	if filter.CurrencyTo != "" {
		where = append(where, "currency_to = ?")
		args = append(args, strings.ToUpper(filter.CurrencyTo))
	}
	if !filter.RateDate.IsZero() {
		where = append(where, "rate_date = ?")
		args = append(args, formatDate(filter.RateDate))
	}

	query := `
		SELECT id, rate_type_id, currency_from, currency_to, rate, rate_date, nominal, created_at
		FROM currency_rate
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY rate_date DESC, currency_from ASC, currency_to ASC
	`
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query currency_rate table: %w", err)
	}
	defer rows.Close()

	rates := []model.CurrencyRate{}
	for rows.Next() {
		var (
			rate      model.CurrencyRate
			rateText  string
			rateDate  string
			createdAt sql.NullString
		)

		err := rows.Scan(
			&rate.ID,
			&rate.RateTypeID,
			&rate.CurrencyFrom,
			&rate.CurrencyTo,
			&rateText,
			&rateDate,
			&rate.Nominal,
			&createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan currency_rate table results: %w", err)
		}

		rate.Rate, err = decimal.NewFromString(rateText)
		if err != nil {
			return nil, fmt.Errorf("failed to parse stored rate %q: %w", rateText, err)
		}

		rate.RateDate, err = ParseTime(rateDate)
		if err != nil {
			return nil, err
		}

		if createdAt.Valid && createdAt.String != "" {
			rate.CreatedAt, err = ParseTime(createdAt.String)
			if err != nil {
				return nil, err
			}
		}

		rates = append(rates, rate)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating currency_rate table: %w", err)
	}
	return rates, nil
}
