package bill

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/ebill/internal/bill"
	"github.com/MrJamesThe3rd/ebill/internal/tariff"
)

type BillResponse struct {
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

func ToResponse(b *bill.Bill) BillResponse {
	return BillResponse{
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
	}
}

func ToResponseList(bills []*bill.Bill) []BillResponse {
	resp := make([]BillResponse, len(bills))
	for i, b := range bills {
		resp[i] = ToResponse(b)
	}

	return resp
}
