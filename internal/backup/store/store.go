package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/MrJamesThe3rd/ebill/internal/backup"
	"github.com/MrJamesThe3rd/ebill/internal/bill"
	"github.com/MrJamesThe3rd/ebill/internal/tariff"
	"github.com/MrJamesThe3rd/ebill/internal/user"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// ExportAll reads both tables from one repeatable-read snapshot.
func (s *Store) ExportAll(ctx context.Context) ([]*user.User, []*bill.Bill, error) {
	dbTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	if err != nil {
		return nil, nil, fmt.Errorf("beginning export tx: %w", err)
	}
	defer dbTx.Rollback()

	users, err := exportUsers(ctx, dbTx)
	if err != nil {
		return nil, nil, err
	}

	bills, err := exportBills(ctx, dbTx)
	if err != nil {
		return nil, nil, err
	}

	if err := dbTx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("committing export tx: %w", err)
	}

	return users, bills, nil
}

func exportUsers(ctx context.Context, dbTx *sql.Tx) ([]*user.User, error) {
	rows, err := dbTx.QueryContext(ctx, `
		SELECT id, username, password_hash, role, created_at
		FROM users
		ORDER BY created_at, username
	`)
	if err != nil {
		return nil, fmt.Errorf("exporting users: %w", err)
	}
	defer rows.Close()

	var users []*user.User

	for rows.Next() {
		var (
			u    user.User
			role string
		)

		if err := rows.Scan(&u.ID, &u.Username, &u.PasswordHash, &role, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}

		u.Role = user.Role(role)
		users = append(users, &u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating user rows: %w", err)
	}

	return users, nil
}

func exportBills(ctx context.Context, dbTx *sql.Tx) ([]*bill.Bill, error) {
	rows, err := dbTx.QueryContext(ctx, `
		SELECT id, bill_no, customer_name, customer_type, units,
			energy_charge, fixed_charge, gst, total, status, created_at
		FROM bills
		ORDER BY created_at, bill_no
	`)
	if err != nil {
		return nil, fmt.Errorf("exporting bills: %w", err)
	}
	defer rows.Close()

	var bills []*bill.Bill

	for rows.Next() {
		var (
			b                    bill.Bill
			customerType, status string
		)

		if err := rows.Scan(
			&b.ID, &b.Number, &b.CustomerName, &customerType, &b.Units,
			&b.EnergyCharge, &b.FixedCharge, &b.GST, &b.Total,
			&status, &b.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning bill: %w", err)
		}

		b.CustomerType = tariff.CustomerType(customerType)
		b.Status = bill.Status(status)
		bills = append(bills, &b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating bill rows: %w", err)
	}

	return bills, nil
}

type restoreTx struct {
	tx *sql.Tx
}

// BeginRestore opens the restore transaction and locks both tables so no
// bill is written between the delete and the commit.
func (s *Store) BeginRestore(ctx context.Context) (backup.RestoreTx, error) {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning restore tx: %w", err)
	}

	if _, err := dbTx.ExecContext(ctx, "LOCK TABLE users, bills IN ACCESS EXCLUSIVE MODE"); err != nil {
		dbTx.Rollback()
		return nil, fmt.Errorf("locking tables: %w", err)
	}

	return &restoreTx{tx: dbTx}, nil
}

func (rtx *restoreTx) Commit() error   { return rtx.tx.Commit() }
func (rtx *restoreTx) Rollback() error { return rtx.tx.Rollback() }

func (rtx *restoreTx) DeleteAll(ctx context.Context) error {
	if _, err := rtx.tx.ExecContext(ctx, "DELETE FROM bills"); err != nil {
		return fmt.Errorf("deleting bills: %w", err)
	}

	if _, err := rtx.tx.ExecContext(ctx, "DELETE FROM users"); err != nil {
		return fmt.Errorf("deleting users: %w", err)
	}

	return nil
}

func (rtx *restoreTx) InsertUsers(ctx context.Context, users []*user.User) error {
	stmt, err := rtx.tx.PrepareContext(ctx, `
		INSERT INTO users (id, username, password_hash, role, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`)
	if err != nil {
		return fmt.Errorf("preparing user insert: %w", err)
	}
	defer stmt.Close()

	for _, u := range users {
		if _, err := stmt.ExecContext(ctx, u.ID, u.Username, u.PasswordHash, u.Role, u.CreatedAt); err != nil {
			return fmt.Errorf("inserting user %s: %w", u.Username, err)
		}
	}

	return nil
}

func (rtx *restoreTx) InsertBills(ctx context.Context, bills []*bill.Bill) error {
	stmt, err := rtx.tx.PrepareContext(ctx, `
		INSERT INTO bills (id, bill_no, customer_name, customer_type, units, energy_charge, fixed_charge, gst, total, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`)
	if err != nil {
		return fmt.Errorf("preparing bill insert: %w", err)
	}
	defer stmt.Close()

	for _, b := range bills {
		if _, err := stmt.ExecContext(ctx,
			b.ID, b.Number, b.CustomerName, b.CustomerType, b.Units,
			b.EnergyCharge, b.FixedCharge, b.GST, b.Total,
			b.Status, b.CreatedAt,
		); err != nil {
			return fmt.Errorf("inserting bill %s: %w", b.Number, err)
		}
	}

	return nil
}
