package alert

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/samueltrindadern/crmclinica/internal/shared/auth"
	"github.com/samueltrindadern/crmclinica/internal/shared/errors"
	"github.com/samueltrindadern/crmclinica/internal/shared/events"
	"github.com/samueltrindadern/crmclinica/internal/shared/metrics"
	"github.com/samueltrindadern/crmclinica/internal/shared/types"
)

// Handler provides HTTP handlers for the alert module
type Handler struct {
	repo       Repository
	patients   PatientGetter
	dispatcher *Dispatcher
	bus        *events.Bus
}

// NewHandler creates a new alert handler
func NewHandler(repo Repository, patients PatientGetter, dispatcher *Dispatcher, bus *events.Bus) *Handler {
	return &Handler{repo: repo, patients: patients, dispatcher: dispatcher, bus: bus}
}

// Routes registers the alert routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListAlerts)
	r.Post("/", h.CreateAlert)
	r.Get("/{alertID}", h.GetAlert)
	r.Post("/{alertID}/send", h.SendAlert)

	return r
}

// ListAlerts lists alerts with optional filters
func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
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

	alerts, total, err := h.repo.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  alerts,
		"total": total,
	})
}

// CreateAlert raises an alert manually. This is the only path that
// may create urgent alerts.
func (h *Handler) CreateAlert(w http.ResponseWriter, r *http.Request) {
	var req CreateAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}

	if req.Message == "" {
		writeError(w, errors.Validation("validation failed", map[string]string{
			"message": "message is required",
		}))
		return
	}

	switch req.Type {
	case TypeReminder, TypeOverdue, TypeUrgent:
	default:
		writeError(w, errors.Validation("validation failed", map[string]string{
			"type": "must be checkup_reminder, overdue or urgent",
		}))
		return
	}

	patientID, err := types.ParseID(req.PatientID)
	if err != nil {
		writeError(w, errors.BadRequest("invalid patient ID"))
		return
	}

	p, err := h.patients.Get(r.Context(), patientID)
	if err != nil {
		writeError(w, err)
		return
	}

	a := &Alert{
		ID:           types.NewID(),
		PatientID:    p.ID,
		PatientName:  p.Name,
		Type:         req.Type,
		Message:      req.Message,
		ScheduledFor: time.Now(),
		Status:       StatusPending,
		CreatedAt:    time.Now(),
	}

	created, err := h.repo.CreatePending(r.Context(), a)
	if err != nil {
		writeError(w, err)
		return
	}
	if !created {
		writeError(w, errors.Conflict("patient already has a pending alert"))
		return
	}

	metrics.RecordAlertCreated(string(a.Type))
	h.publish(r, "alert.created", a)

	writeJSON(w, http.StatusCreated, a)
}

// GetAlert gets an alert by ID
func (h *Handler) GetAlert(w http.ResponseWriter, r *http.Request) {
	id, err := types.ParseID(chi.URLParam(r, "alertID"))
	if err != nil {
		writeError(w, errors.BadRequest("invalid alert ID"))
		return
	}

	a, err := h.repo.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, a)
}

// SendAlert dispatches an alert over the clinic's channels
func (h *Handler) SendAlert(w http.ResponseWriter, r *http.Request) {
	id, err := types.ParseID(chi.URLParam(r, "alertID"))
	if err != nil {
		writeError(w, errors.BadRequest("invalid alert ID"))
		return
	}

	ok, err := h.dispatcher.Send(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": ok})
}

func (h *Handler) publish(r *http.Request, eventType string, a *Alert) {
	if h.bus == nil {
		return
	}

	actorID := types.ID("")
	if user := auth.GetUser(r.Context()); user != nil {
		actorID = user.ID
	}

	event := events.NewEvent(eventType, "api", map[string]any{
		"alert_id":   a.ID,
		"patient_id": a.PatientID,
		"type":       a.Type,
	}).WithActor(actorID, "user")

	h.bus.Publish(r.Context(), event)
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
