package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/MrJamesThe3rd/ebill/internal/bill"
	"github.com/MrJamesThe3rd/ebill/internal/user"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=backup
type Repository interface {
	ExportAll(ctx context.Context) ([]*user.User, []*bill.Bill, error)
	BeginRestore(ctx context.Context) (RestoreTx, error)
}

// RestoreTx replaces the stored data atomically. Nothing is visible to other
// sessions until Commit.
type RestoreTx interface {
	DeleteAll(ctx context.Context) error
	InsertUsers(ctx context.Context, users []*user.User) error
	InsertBills(ctx context.Context, bills []*bill.Bill) error
	Commit() error
	Rollback() error
}

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Backup writes a JSON snapshot of every user and bill to w.
func (s *Service) Backup(ctx context.Context, w io.Writer) error {
	users, bills, err := s.repo.ExportAll(ctx)
	if err != nil {
		return fmt.Errorf("exporting data: %w", err)
	}

	snap := newSnapshot(s.now().UTC(), users, bills)

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	if err := enc.Encode(snap); err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	slog.Info("backup written", "users", len(snap.Users), "bills", len(snap.Bills))

	return nil
}

// RestoreStats counts what a restore wrote.
type RestoreStats struct {
	Users int `json:"users"`
	Bills int `json:"bills"`
}

// Restore validates the snapshot read from r and replaces all users and bills
// with its content in a single transaction.
func (s *Service) Restore(ctx context.Context, r io.Reader) (*RestoreStats, error) {
	var snap Snapshot

	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&snap); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}

	if err := snap.Validate(); err != nil {
		return nil, err
	}

	rtx, err := s.repo.BeginRestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin restore: %w", err)
	}
	defer rtx.Rollback()

	if err := rtx.DeleteAll(ctx); err != nil {
		return nil, fmt.Errorf("clearing data: %w", err)
	}

	if err := rtx.InsertUsers(ctx, snap.users()); err != nil {
		return nil, fmt.Errorf("restoring users: %w", err)
	}

	if err := rtx.InsertBills(ctx, snap.bills()); err != nil {
		return nil, fmt.Errorf("restoring bills: %w", err)
	}

	if err := rtx.Commit(); err != nil {
		return nil, fmt.Errorf("commit restore: %w", err)
	}

	stats := &RestoreStats{Users: len(snap.Users), Bills: len(snap.Bills)}
	slog.Info("backup restored", "users", stats.Users, "bills", stats.Bills, "snapshot_created_at", snap.CreatedAt)

	return stats, nil
}
