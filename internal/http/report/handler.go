package report

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/ebill/internal/export"
	"github.com/MrJamesThe3rd/ebill/internal/http/httpx"
	"github.com/MrJamesThe3rd/ebill/internal/report"
	"github.com/MrJamesThe3rd/ebill/internal/tariff"
)

type Handler struct {
	svc *report.Service
}

func NewHandler(svc *report.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/summary", h.summary)
	r.Get("/export.csv", h.exportCSV)
	r.Get("/export.xlsx", h.exportXLSX)
}

type typeTotalsResponse struct {
	Bills   int     `json:"bills"`
	Revenue float64 `json:"revenue"`
}

type dailyResponse struct {
	Date    string  `json:"date"`
	Bills   int     `json:"bills"`
	Revenue float64 `json:"revenue"`
}

type summaryResponse struct {
	TotalBills   int                                         `json:"total_bills"`
	TotalRevenue float64                                     `json:"total_revenue"`
	AverageUnits float64                                     `json:"average_units"`
	ByType       map[tariff.CustomerType]typeTotalsResponse `json:"by_type"`
	Daily        []dailyResponse                             `json:"daily"`
}

func toSummaryResponse(s report.Summary) summaryResponse {
	resp := summaryResponse{
		TotalBills:   s.TotalBills,
		TotalRevenue: s.TotalRevenue,
		AverageUnits: s.AverageUnits,
		ByType:       make(map[tariff.CustomerType]typeTotalsResponse, len(s.ByType)),
		Daily:        make([]dailyResponse, 0, len(s.Daily)),
	}

	for ct, t := range s.ByType {
		resp.ByType[ct] = typeTotalsResponse{Bills: t.Bills, Revenue: t.Revenue}
	}

	for _, d := range s.Daily {
		resp.Daily = append(resp.Daily, dailyResponse{
			Date:    d.Date.Format(time.DateOnly),
			Bills:   d.Bills,
			Revenue: d.Revenue,
		})
	}

	return resp
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	filter, err := httpx.ListFilter(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	summary, _, err := h.svc.Build(r.Context(), filter)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, toSummaryResponse(summary))
}

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	filter, err := httpx.ListFilter(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	_, bills, err := h.svc.Build(r.Context(), filter)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="bills_report.csv"`)

	if err := export.BillCSV(w, bills...); err != nil {
		httpx.WriteError(w, err)
	}
}

func (h *Handler) exportXLSX(w http.ResponseWriter, r *http.Request) {
	filter, err := httpx.ListFilter(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	summary, bills, err := h.svc.Build(r.Context(), filter)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	data, err := export.ReportXLSX(summary, bills)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="bills_report.xlsx"`)
	_, _ = w.Write(data)
}
