package bill

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/ebill/internal/metrics"
	"github.com/MrJamesThe3rd/ebill/internal/tariff"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=bill
type Repository interface {
	SaveBill(ctx context.Context, b *Bill) error
	GetBill(ctx context.Context, number string) (*Bill, error)
	ListBills(ctx context.Context, filter ListFilter) ([]*Bill, error)
	UpdateStatus(ctx context.Context, number string, status Status) error
}

// maxNumberAttempts bounds how many fresh numbers Generate tries after a collision.
const maxNumberAttempts = 3

type Service struct {
	repo      Repository
	assembler Assembler
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// WithAssembler replaces the assembler used by Generate.
func (s *Service) WithAssembler(a Assembler) *Service {
	s.assembler = a
	return s
}

type GenerateParams struct {
	CustomerName string
	CustomerType tariff.CustomerType
	Units        float64
	Status       Status
}

// ListFilter narrows a ledger query. Nil fields match everything; From and To
// are inclusive calendar days.
type ListFilter struct {
	From         *time.Time
	To           *time.Time
	CustomerType *tariff.CustomerType
	Status       *Status
}

// Generate prices and persists a new bill. Tariff errors are returned
// unwrapped and nothing is stored.
func (s *Service) Generate(ctx context.Context, params GenerateParams) (*Bill, error) {
	name := strings.TrimSpace(params.CustomerName)
	customerType := string(tariff.ScheduleFor(params.CustomerType).Type)

	if name == "" {
		metrics.IncBillRejected(customerType, "missing_name")
		return nil, ErrMissingCustomerName
	}

	status := StatusUnpaid
	if params.Status != "" {
		parsed, err := ParseStatus(string(params.Status))
		if err != nil {
			metrics.IncBillRejected(customerType, "invalid_status")
			return nil, err
		}

		status = parsed
	}

	for attempt := 1; ; attempt++ {
		b, err := s.assembler.CreateBill(name, params.CustomerType, params.Units, status)
		if err != nil {
			metrics.IncBillRejected(customerType, "usage_ceiling")
			return nil, err
		}

		err = s.repo.SaveBill(ctx, b)
		if err == nil {
			metrics.ObserveBillGenerated(customerType, b.Units)
			return b, nil
		}

		if !errors.Is(err, ErrDuplicateNumber) || attempt == maxNumberAttempts {
			return nil, fmt.Errorf("saving bill: %w", err)
		}
	}
}

func (s *Service) Get(ctx context.Context, number string) (*Bill, error) {
	return s.repo.GetBill(ctx, number)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Bill, error) {
	return s.repo.ListBills(ctx, filter)
}

// UpdateStatus is the only mutation a stored bill accepts.
func (s *Service) UpdateStatus(ctx context.Context, number string, status Status) error {
	status, err := ParseStatus(string(status))
	if err != nil {
		return err
	}

	if err := s.repo.UpdateStatus(ctx, number, status); err != nil {
		return err
	}

	metrics.IncStatusUpdate(string(status))

	return nil
}
