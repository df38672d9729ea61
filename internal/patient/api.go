package patient

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/samueltrindadern/crmclinica/internal/shared/auth"
	"github.com/samueltrindadern/crmclinica/internal/shared/errors"
	"github.com/samueltrindadern/crmclinica/internal/shared/events"
	"github.com/samueltrindadern/crmclinica/internal/shared/types"
)

// Handler provides HTTP handlers for the patient module
type Handler struct {
	repo Repository
	bus  *events.Bus
}

// NewHandler creates a new patient handler
func NewHandler(repo Repository, bus *events.Bus) *Handler {
	return &Handler{repo: repo, bus: bus}
}

// Routes registers the patient routes
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListPatients)
	r.Post("/", h.CreatePatient)

	r.Route("/{patientID}", func(r chi.Router) {
		r.Get("/", h.GetPatient)
		r.Put("/", h.UpdatePatient)
		r.Delete("/", h.DeletePatient)
	})

	return r
}

// ListPatients lists patients of the current clinic
func (h *Handler) ListPatients(w http.ResponseWriter, r *http.Request) {
	filter := ListFilter{
		ClinicID: auth.ClinicID(r.Context()),
		Search:   r.URL.Query().Get("search"),
	}

	if s := r.URL.Query().Get("status"); s != "" {
		status := Status(s)
		filter.Status = &status
	}

	if risk := r.URL.Query().Get("risk"); risk != "" {
		profile := RiskProfile(risk)
		filter.Risk = &profile
	}

	patients, total, err := h.repo.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"data":  patients,
		"total": total,
	})
}

// GetPatient gets a patient by ID
func (h *Handler) GetPatient(w http.ResponseWriter, r *http.Request) {
	id, err := types.ParseID(chi.URLParam(r, "patientID"))
	if err != nil {
		writeError(w, errors.BadRequest("invalid patient ID"))
		return
	}

	p, err := h.repo.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// CreatePatient creates a new patient and derives its next check-up date
func (h *Handler) CreatePatient(w http.ResponseWriter, r *http.Request) {
	var req CreatePatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}

	if req.Name == "" || req.CPF == "" || req.ExamType == "" {
		writeError(w, errors.Validation("validation failed", map[string]string{
			"name":      "name is required",
			"cpf":       "cpf is required",
			"exam_type": "exam_type is required",
		}))
		return
	}

	lastExam, err := time.Parse(DateLayout, req.LastExamDate)
	if err != nil {
		writeError(w, errors.Validation("validation failed", map[string]string{
			"last_exam_date": "must be a date in the form 2006-01-02",
		}))
		return
	}

	now := time.Now()
	p := &Patient{
		ID:              types.NewID(),
		ClinicID:        auth.ClinicID(r.Context()),
		Name:            req.Name,
		CPF:             req.CPF,
		Phone:           req.Phone,
		Email:           req.Email,
		ExamType:        req.ExamType,
		LastExamDate:    lastExam,
		RiskProfile:     req.RiskProfile,
		NextCheckupDate: NextCheckupDate(lastExam, req.RiskProfile),
		Status:          StatusActive,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := h.repo.Create(r.Context(), p); err != nil {
		writeError(w, err)
		return
	}

	h.publish(r, "patient.created", p)

	writeJSON(w, http.StatusCreated, p)
}

// UpdatePatient updates a patient, recomputing the next check-up date when
// the last exam date or the risk profile changed
func (h *Handler) UpdatePatient(w http.ResponseWriter, r *http.Request) {
	id, err := types.ParseID(chi.URLParam(r, "patientID"))
	if err != nil {
		writeError(w, errors.BadRequest("invalid patient ID"))
		return
	}

	p, err := h.repo.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	var req UpdatePatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.BadRequest("invalid request body"))
		return
	}

	recompute := false

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.CPF != nil {
		p.CPF = *req.CPF
	}
	if req.Phone != nil {
		p.Phone = *req.Phone
	}
	if req.Email != nil {
		p.Email = *req.Email
	}
	if req.ExamType != nil {
		p.ExamType = *req.ExamType
	}
	if req.LastExamDate != nil {
		lastExam, err := time.Parse(DateLayout, *req.LastExamDate)
		if err != nil {
			writeError(w, errors.Validation("validation failed", map[string]string{
				"last_exam_date": "must be a date in the form 2006-01-02",
			}))
			return
		}
		p.LastExamDate = lastExam
		recompute = true
	}
	if req.RiskProfile != nil {
		p.RiskProfile = *req.RiskProfile
		recompute = true
	}
	if req.Status != nil {
		p.Status = *req.Status
	}

	if recompute {
		p.NextCheckupDate = NextCheckupDate(p.LastExamDate, p.RiskProfile)
	}
	p.UpdatedAt = time.Now()

	if err := h.repo.Update(r.Context(), p); err != nil {
		writeError(w, err)
		return
	}

	h.publish(r, "patient.updated", p)

	writeJSON(w, http.StatusOK, p)
}

// DeletePatient deletes a patient
func (h *Handler) DeletePatient(w http.ResponseWriter, r *http.Request) {
	id, err := types.ParseID(chi.URLParam(r, "patientID"))
	if err != nil {
		writeError(w, errors.BadRequest("invalid patient ID"))
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) publish(r *http.Request, eventType string, p *Patient) {
	if h.bus == nil {
		return
	}

	actorID := types.ID("")
	if user := auth.GetUser(r.Context()); user != nil {
		actorID = user.ID
	}

	event := events.NewEvent(eventType, "patient", map[string]any{
		"patient_id":        p.ID,
		"clinic_id":         p.ClinicID,
		"risk_profile":      p.RiskProfile,
		"next_checkup_date": p.NextCheckupDate.Format(DateLayout),
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
