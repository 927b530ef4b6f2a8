package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/MrJamesThe3rd/ebill/internal/backup"
	"github.com/MrJamesThe3rd/ebill/internal/bill"
	"github.com/MrJamesThe3rd/ebill/internal/importer"
	"github.com/MrJamesThe3rd/ebill/internal/tariff"
	"github.com/MrJamesThe3rd/ebill/internal/user"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

var ErrInvalidRequest = errors.New("invalid request")

// DecodeJSON decodes the request body into dst and validates its struct tags.
func DecodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	if err := validate.Struct(dst); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidRequest, describe(err))
	}

	return nil
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s", strings.ToLower(fe.Field()), fe.Tag()))
	}

	return strings.Join(msgs, ", ")
}

// WriteJSON writes v with the given status code.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// StatusFor maps a domain error to its HTTP status code.
func StatusFor(err error) int {
	switch {
	// A rejected snapshot can wrap domain errors such as the usage ceiling.
	case errors.Is(err, backup.ErrInvalidSnapshot):
		return http.StatusBadRequest
	case errors.Is(err, tariff.ErrUsageCeilingExceeded):
		return http.StatusUnprocessableEntity
	case errors.Is(err, bill.ErrNotFound), errors.Is(err, user.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, bill.ErrDuplicateNumber), errors.Is(err, user.ErrUserExists):
		return http.StatusConflict
	case errors.Is(err, user.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, bill.ErrInvalidStatus),
		errors.Is(err, bill.ErrMissingCustomerName),
		errors.Is(err, user.ErrInvalidRole),
		errors.Is(err, user.ErrMissingFields),
		errors.Is(err, importer.ErrMissingColumns),
		errors.Is(err, backup.ErrUnsupportedVersion),
		errors.Is(err, backup.ErrNoAdmin):
		return http.StatusBadRequest
	}

	var rowErr *importer.RowError
	if errors.As(err, &rowErr) {
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}

// ClientError returns the status and client-facing message for err. Internal
// errors are logged and their text replaced.
func ClientError(err error) (int, string) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("request failed", "error", err)
		return status, "internal error"
	}

	return status, err.Error()
}

// WriteError writes err as plain text.
func WriteError(w http.ResponseWriter, err error) {
	status, msg := ClientError(err)
	http.Error(w, msg, status)
}

// ListFilter reads the bill filter from the query string. Accepted keys are
// customer_type and status (omitted or "all" match everything) and from/to
// as YYYY-MM-DD.
func ListFilter(r *http.Request) (bill.ListFilter, error) {
	q := r.URL.Query()
	filter := bill.ListFilter{}

	if s := q.Get("customer_type"); s != "" && !strings.EqualFold(s, "all") {
		filter.CustomerType = new(tariff.ParseCustomerType(s))
	}

	if s := q.Get("status"); s != "" && !strings.EqualFold(s, "all") {
		status, err := bill.ParseStatus(s)
		if err != nil {
			return bill.ListFilter{}, err
		}

		filter.Status = new(status)
	}

	for key, dst := range map[string]**time.Time{"from": &filter.From, "to": &filter.To} {
		s := q.Get(key)
		if s == "" {
			continue
		}

		t, err := time.Parse(time.DateOnly, s)
		if err != nil {
			return bill.ListFilter{}, fmt.Errorf("%w: %s must be YYYY-MM-DD", ErrInvalidRequest, key)
		}

		*dst = new(t)
	}

	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return bill.ListFilter{}, fmt.Errorf("%w: to is before from", ErrInvalidRequest)
	}

	return filter, nil
}
