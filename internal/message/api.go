package message

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/samueltrindadern/crmclinica/internal/shared/errors"
	"github.com/samueltrindadern/crmclinica/internal/shared/types"
)

// Handler provides HTTP handlers for the message module
type Handler struct {
	repo Repository
}

// NewHandler creates a new message handler
func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// Routes registers the message routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListMessages)
	r.Get("/{messageID}", h.GetMessage)

	return r
}

// ListMessages lists sent messages with optional filters
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{
		Type:   Type(r.URL.Query().Get("type")),
		Status: Status(r.URL.Query().Get("status")),
	}

	if p := r.URL.Query().Get("patient"); p != "" {
		id, err := types.ParseID(p)
		if err != nil {
			writeError(w, errors.BadRequest("invalid patient ID"))
			return
		}
		filter.PatientID = id
	}

	messages, total, err := h.repo.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  messages,
		"total": total,
	})
}

// GetMessage gets a message by ID
func (h *Handler) GetMessage(w http.ResponseWriter, r *http.Request) {
	id, err := types.ParseID(chi.URLParam(r, "messageID"))
	if err != nil {
		writeError(w, errors.BadRequest("invalid message ID"))
		return
	}

	m, err := h.repo.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, m)
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
