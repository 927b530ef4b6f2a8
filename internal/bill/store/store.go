package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MrJamesThe3rd/ebill/internal/bill"
	"github.com/MrJamesThe3rd/ebill/internal/tariff"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// Expected column order matches selectBillColumns.
func scanBill(s scanner) (*bill.Bill, error) {
	var b bill.Bill

	var customerType, status string

	if err := s.Scan(
		&b.ID, &b.Number, &b.CustomerName, &customerType, &b.Units,
		&b.EnergyCharge, &b.FixedCharge, &b.GST, &b.Total,
		&status, &b.CreatedAt,
	); err != nil {
		return nil, err
	}

	b.CustomerType = tariff.CustomerType(customerType)
	b.Status = bill.Status(status)

	return &b, nil
}

const selectBillColumns = `
	id, bill_no, customer_name, customer_type, units,
	energy_charge, fixed_charge, gst, total, status, created_at
`

func (s *Store) SaveBill(ctx context.Context, b *bill.Bill) error {
	query := `
		INSERT INTO bills (bill_no, customer_name, customer_type, units, energy_charge, fixed_charge, gst, total, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`

	err := s.db.QueryRowContext(ctx, query,
		b.Number,
		b.CustomerName,
		b.CustomerType,
		b.Units,
		b.EnergyCharge,
		b.FixedCharge,
		b.GST,
		b.Total,
		b.Status,
		b.CreatedAt,
	).Scan(&b.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return bill.ErrDuplicateNumber
		}

		return fmt.Errorf("saving bill: %w", err)
	}

	return nil
}

func (s *Store) GetBill(ctx context.Context, number string) (*bill.Bill, error) {
	query := `SELECT ` + selectBillColumns + ` FROM bills WHERE bill_no = $1`

	b, err := scanBill(s.db.QueryRowContext(ctx, query, number))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, bill.ErrNotFound
		}

		return nil, fmt.Errorf("getting bill: %w", err)
	}

	return b, nil
}

func (s *Store) ListBills(ctx context.Context, filter bill.ListFilter) ([]*bill.Bill, error) {
	query := `SELECT ` + selectBillColumns + ` FROM bills WHERE 1=1`

	var args []any

	argIdx := 1

	if filter.CustomerType != nil {
		query += fmt.Sprintf(" AND customer_type = $%d", argIdx)

		args = append(args, *filter.CustomerType)
		argIdx++
	}

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.From != nil {
		query += fmt.Sprintf(" AND created_at >= $%d", argIdx)

		args = append(args, startOfDay(*filter.From))
		argIdx++
	}

	if filter.To != nil {
		query += fmt.Sprintf(" AND created_at < $%d", argIdx)

		args = append(args, startOfDay(*filter.To).AddDate(0, 0, 1))
		argIdx++
	}

	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing bills: %w", err)
	}
	defer rows.Close()

	var bills []*bill.Bill

	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning bill: %w", err)
		}

		bills = append(bills, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating bill rows: %w", err)
	}

	return bills, nil
}

func (s *Store) UpdateStatus(ctx context.Context, number string, status bill.Status) error {
	query := `UPDATE bills SET status = $1 WHERE bill_no = $2`

	res, err := s.db.ExecContext(ctx, query, status, number)
	if err != nil {
		return fmt.Errorf("updating status: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("updating status: %w", err)
	}

	if n == 0 {
		return bill.ErrNotFound
	}

	return nil
}

// startOfDay keeps the calendar date of t in its own location.
func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
