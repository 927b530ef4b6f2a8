package backup

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/ebill/internal/bill"
	"github.com/MrJamesThe3rd/ebill/internal/tariff"
	"github.com/MrJamesThe3rd/ebill/internal/user"
)

// Version is the snapshot format written by Backup.
const Version = 1

var (
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
	ErrInvalidSnapshot    = errors.New("invalid snapshot")
	ErrNoAdmin            = errors.New("snapshot has no admin user")
)

// Snapshot is the full content of the ledger and the user table.
type Snapshot struct {
	Version   int          `json:"version"`
	CreatedAt time.Time    `json:"created_at"`
	Users     []UserRecord `json:"users"`
	Bills     []BillRecord `json:"bills"`
}

type UserRecord struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"password_hash"`
	Role         user.Role `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

type BillRecord struct {
	ID           uuid.UUID           `json:"id"`
	Number       string              `json:"bill_no"`
	CustomerName string              `json:"customer_name"`
	CustomerType tariff.CustomerType `json:"customer_type"`
	Units        float64             `json:"units"`
	EnergyCharge float64             `json:"energy_charge"`
	FixedCharge  float64             `json:"fixed_charge"`
	GST          float64             `json:"gst"`
	Total        float64             `json:"total"`
	Status       bill.Status         `json:"status"`
	CreatedAt    time.Time           `json:"created_at"`
}

func newSnapshot(now time.Time, users []*user.User, bills []*bill.Bill) *Snapshot {
	snap := &Snapshot{
		Version:   Version,
		CreatedAt: now,
		Users:     make([]UserRecord, 0, len(users)),
		Bills:     make([]BillRecord, 0, len(bills)),
	}

	for _, u := range users {
		snap.Users = append(snap.Users, UserRecord{
			ID:           u.ID,
			Username:     u.Username,
			PasswordHash: u.PasswordHash,
			Role:         u.Role,
			CreatedAt:    u.CreatedAt,
		})
	}

	for _, b := range bills {
		snap.Bills = append(snap.Bills, BillRecord{
			ID:           b.ID,
			Number:       b.Number,
			CustomerName: b.CustomerName,
			CustomerType: b.CustomerType,
			Units:        b.Units,
			EnergyCharge: b.EnergyCharge,
			FixedCharge:  b.FixedCharge,
			GST:          b.GST,
			Total:        b.Total,
			Status:       b.Status,
			CreatedAt:    b.CreatedAt,
		})
	}

	return snap
}

// Validate checks that the snapshot can replace the current data without
// violating the table constraints or locking every admin out.
func (s *Snapshot) Validate() error {
	if s.Version != Version {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, s.Version)
	}

	usernames := make(map[string]bool, len(s.Users))
	hasAdmin := false

	for i, u := range s.Users {
		if u.Username == "" || u.PasswordHash == "" {
			return fmt.Errorf("%w: user %d lacks username or password hash", ErrInvalidSnapshot, i)
		}

		if usernames[u.Username] {
			return fmt.Errorf("%w: duplicate username %q", ErrInvalidSnapshot, u.Username)
		}
		usernames[u.Username] = true

		role, err := user.ParseRole(string(u.Role))
		if err != nil {
			return fmt.Errorf("%w: user %q: %w", ErrInvalidSnapshot, u.Username, err)
		}

		hasAdmin = hasAdmin || role == user.RoleAdmin
	}

	if !hasAdmin {
		return ErrNoAdmin
	}

	numbers := make(map[string]bool, len(s.Bills))

	for i, b := range s.Bills {
		if b.Number == "" || b.CustomerName == "" {
			return fmt.Errorf("%w: bill %d lacks number or customer name", ErrInvalidSnapshot, i)
		}

		if numbers[b.Number] {
			return fmt.Errorf("%w: duplicate bill number %q", ErrInvalidSnapshot, b.Number)
		}
		numbers[b.Number] = true

		if _, err := bill.ParseStatus(string(b.Status)); err != nil {
			return fmt.Errorf("%w: bill %q: %w", ErrInvalidSnapshot, b.Number, err)
		}

		if err := b.validateCharges(); err != nil {
			return fmt.Errorf("%w: bill %q: %w", ErrInvalidSnapshot, b.Number, err)
		}
	}

	return nil
}

// validateCharges reprices the record and requires the stored amounts to match
// to the cent.
func (b BillRecord) validateCharges() error {
	if b.Units < 0 {
		return fmt.Errorf("negative units %v", b.Units)
	}

	charges, err := tariff.ComputeCharges(b.Units, b.CustomerType)
	if err != nil {
		return err
	}

	stored := tariff.Charges{
		EnergyCharge: b.EnergyCharge,
		FixedCharge:  b.FixedCharge,
		GST:          b.GST,
		Total:        b.Total,
	}
	if !sameCents(charges, stored) {
		return fmt.Errorf("charges %+v do not match %v units (want %+v)", stored, b.Units, charges)
	}

	return nil
}

func sameCents(a, b tariff.Charges) bool {
	cents := func(v float64) int64 { return int64(math.Round(v * 100)) }

	return cents(a.EnergyCharge) == cents(b.EnergyCharge) &&
		cents(a.FixedCharge) == cents(b.FixedCharge) &&
		cents(a.GST) == cents(b.GST) &&
		cents(a.Total) == cents(b.Total)
}

func (s *Snapshot) users() []*user.User {
	users := make([]*user.User, 0, len(s.Users))

	for _, r := range s.Users {
		role, _ := user.ParseRole(string(r.Role))

		users = append(users, &user.User{
			ID:           idOrNew(r.ID),
			Username:     r.Username,
			PasswordHash: r.PasswordHash,
			Role:         role,
			CreatedAt:    r.CreatedAt,
		})
	}

	return users
}

func (s *Snapshot) bills() []*bill.Bill {
	bills := make([]*bill.Bill, 0, len(s.Bills))

	for _, r := range s.Bills {
		status, _ := bill.ParseStatus(string(r.Status))

		bills = append(bills, &bill.Bill{
			ID:           idOrNew(r.ID),
			Number:       r.Number,
			CustomerName: r.CustomerName,
			CustomerType: tariff.ScheduleFor(r.CustomerType).Type,
			Units:        r.Units,
			EnergyCharge: r.EnergyCharge,
			FixedCharge:  r.FixedCharge,
			GST:          r.GST,
			Total:        r.Total,
			Status:       status,
			CreatedAt:    r.CreatedAt,
		})
	}

	return bills
}

func idOrNew(id uuid.UUID) uuid.UUID {
	if id == uuid.Nil {
		return uuid.New()
	}

	return id
}
