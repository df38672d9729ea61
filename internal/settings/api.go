package settings

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/samueltrindadern/crmclinica/internal/shared/auth"
	"github.com/samueltrindadern/crmclinica/internal/shared/errors"
)

// Handler provides HTTP handlers for the settings module
type Handler struct {
	repo Repository
}

// NewHandler creates a new settings handler
func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// Routes registers the settings routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.GetSettings)
	r.Put("/", h.UpdateSettings)

	return r
}

// GetSettings returns the settings of the current clinic
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.repo.Get(r.Context(), auth.ClinicID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, s)
}

// UpdateSettings updates the settings of the current clinic
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	clinicID := auth.ClinicID(r.Context())

	s, err := h.repo.Get(r.Context(), clinicID)
	if err != nil {
		if !errors.IsNotFound(err) {
			writeError(w, err)
			return
		}
		s = &ClinicSettings{ClinicID: clinicID}
	}

	var req UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}

	if req.Name != nil {
		s.Name = *req.Name
	}
	if req.CNPJ != nil {
		s.CNPJ = *req.CNPJ
	}
	if req.Email != nil {
		s.Email = *req.Email
	}
	if req.Phone != nil {
		s.Phone = *req.Phone
	}
	if req.WhatsAppNumber != nil {
		s.WhatsAppNumber = *req.WhatsAppNumber
	}
	if req.Address != nil {
		s.Address = *req.Address
	}
	if req.City != nil {
		s.City = *req.City
	}
	if req.State != nil {
		s.State = *req.State
	}
	if req.ZipCode != nil {
		s.ZipCode = *req.ZipCode
	}
	if req.EmailSignature != nil {
		s.EmailSignature = *req.EmailSignature
	}
	if req.WhatsAppTemplate != nil {
		s.WhatsAppTemplate = *req.WhatsAppTemplate
	}
	if req.EmailTemplate != nil {
		s.EmailTemplate = *req.EmailTemplate
	}

	if err := h.repo.Upsert(r.Context(), s); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, s)
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")

	if appErr, ok := err.(*errors.AppError); ok {
		w.WriteHeader(appErr.HTTPStatus)
		json.NewEncoder(w).Encode(map[string]any{
			"error":   appErr.Message,
			"code":    appErr.Code,
			"details": appErr.Details,
		})
		return
	}

	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(map[string]string{"error": "internal server error"})
}
