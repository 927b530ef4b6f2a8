package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/MrJamesThe3rd/ebill/internal/bill"
	"github.com/MrJamesThe3rd/ebill/internal/tariff"
)

// Generator is the slice of the bill service an import needs.
type Generator interface {
	Generate(ctx context.Context, params bill.GenerateParams) (*bill.Bill, error)
}

// Rejection is a reading that parsed but could not be billed.
type Rejection struct {
	Line         int    `json:"line"`
	CustomerName string `json:"customer_name"`
	Reason       string `json:"reason"`
}

type Result struct {
	Created  []*bill.Bill
	Rejected []Rejection
	// StoppedAt is the line that aborted the batch, 0 when every reading
	// was processed.
	StoppedAt int
}

type Service struct {
	bills Generator
}

func NewService(bills Generator) *Service {
	return &Service{bills: bills}
}

// Import parses r and generates one bill per reading. Readings over the usage
// ceiling are collected as rejections; any other failure stops the batch.
func (s *Service) Import(ctx context.Context, r io.Reader) (*Result, error) {
	readings, err := Parse(r)
	if err != nil {
		return nil, err
	}

	result := &Result{}

	for _, reading := range readings {
		b, err := s.bills.Generate(ctx, reading.Params)
		if err != nil {
			if errors.Is(err, tariff.ErrUsageCeilingExceeded) {
				result.Rejected = append(result.Rejected, Rejection{
					Line:         reading.Line,
					CustomerName: reading.Params.CustomerName,
					Reason:       err.Error(),
				})

				continue
			}

			result.StoppedAt = reading.Line

			return result, fmt.Errorf("line %d: generating bill: %w", reading.Line, err)
		}

		result.Created = append(result.Created, b)
	}

	slog.Info("readings imported", "created", len(result.Created), "rejected", len(result.Rejected))

	return result, nil
}
