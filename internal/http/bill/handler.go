package bill

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrJamesThe3rd/ebill/internal/auth"
	"github.com/MrJamesThe3rd/ebill/internal/bill"
	"github.com/MrJamesThe3rd/ebill/internal/export"
	"github.com/MrJamesThe3rd/ebill/internal/http/httpx"
	"github.com/MrJamesThe3rd/ebill/internal/tariff"
	"github.com/MrJamesThe3rd/ebill/internal/user"
)

type Handler struct {
	svc *bill.Service
}

func NewHandler(svc *bill.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.With(middleware.AllowContentType("application/json")).Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/{number}", h.get)
	r.Get("/{number}/pdf", h.pdf)
	r.Get("/{number}/csv", h.csv)
	r.With(
		auth.RequireRole(user.RoleAdmin),
		middleware.AllowContentType("application/json"),
	).Patch("/{number}/status", h.updateStatus)
}

type createBillRequest struct {
	CustomerName string `json:"customer_name" validate:"required,max=200"`
	CustomerType string `json:"customer_type" validate:"max=32"`
	Units        Units  `json:"units"`
	Status       string `json:"status"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createBillRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}

	var status bill.Status

	if req.Status != "" {
		parsed, err := bill.ParseStatus(req.Status)
		if err != nil {
			httpx.WriteError(w, err)
			return
		}

		status = parsed
	}

	b, err := h.svc.Generate(r.Context(), bill.GenerateParams{
		CustomerName: req.CustomerName,
		CustomerType: tariff.ParseCustomerType(req.CustomerType),
		Units:        float64(req.Units),
		Status:       status,
	})
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, ToResponse(b))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filter, err := httpx.ListFilter(r)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	bills, err := h.svc.List(r.Context(), filter)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, ToResponseList(bills))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	b, err := h.svc.Get(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, ToResponse(b))
}

func (h *Handler) pdf(w http.ResponseWriter, r *http.Request) {
	b, err := h.svc.Get(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	data, err := export.BillPDF(b)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", b.Number+".pdf"))
	_, _ = w.Write(data)
}

func (h *Handler) csv(w http.ResponseWriter, r *http.Request) {
	b, err := h.svc.Get(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", b.Number+".csv"))

	if err := export.BillCSV(w, b); err != nil {
		httpx.WriteError(w, err)
	}
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, err)
		return
	}

	number := chi.URLParam(r, "number")

	if err := h.svc.UpdateStatus(r.Context(), number, bill.Status(req.Status)); err != nil {
		httpx.WriteError(w, err)
		return
	}

	b, err := h.svc.Get(r.Context(), number)
	if err != nil {
		httpx.WriteError(w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, ToResponse(b))
}
