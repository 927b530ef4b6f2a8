package importcsv

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	billHandler "github.com/MrJamesThe3rd/ebill/internal/http/bill"
	"github.com/MrJamesThe3rd/ebill/internal/http/httpx"
	"github.com/MrJamesThe3rd/ebill/internal/importer"
)

// maxUploadSize bounds the multipart form kept in memory.
const maxUploadSize = 10 << 20

type Handler struct {
	importSvc *importer.Service
}

func NewHandler(importSvc *importer.Service) *Handler {
	return &Handler{importSvc: importSvc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importCSV)
}

type importResponse struct {
	Imported  int                        `json:"imported"`
	Bills     []billHandler.BillResponse `json:"bills"`
	Rejected  []importer.Rejection       `json:"rejected"`
	StoppedAt int                        `json:"stopped_at_line,omitempty"`
	Error     string                     `json:"error,omitempty"`
}

func newImportResponse(result *importer.Result) importResponse {
	rejected := result.Rejected
	if rejected == nil {
		rejected = []importer.Rejection{}
	}

	return importResponse{
		Imported:  len(result.Created),
		Bills:     billHandler.ToResponseList(result.Created),
		Rejected:  rejected,
		StoppedAt: result.StoppedAt,
	}
}

func (h *Handler) importCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "failed to parse form: "+err.Error(), http.StatusBadRequest)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	result, err := h.importSvc.Import(r.Context(), file)
	if err != nil {
		if result == nil {
			httpx.WriteError(w, err)
			return
		}

		// Bills before the failing line are already stored.
		status, msg := httpx.ClientError(err)

		resp := newImportResponse(result)
		resp.Error = msg

		httpx.WriteJSON(w, status, resp)

		return
	}

	resp := newImportResponse(result)

	status := http.StatusCreated
	if resp.Imported == 0 && len(resp.Rejected) > 0 {
		status = http.StatusUnprocessableEntity
	}

	httpx.WriteJSON(w, status, resp)
}
