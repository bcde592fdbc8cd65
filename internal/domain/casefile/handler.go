package casefile

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"case-tracker/internal/domain/audit"
	"case-tracker/internal/domain/cases"
	"case-tracker/internal/domain/deadline"
	"case-tracker/internal/middleware"
	"case-tracker/internal/platform/validation"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Post("/cases", createCaseHandler(svc))
	r.Get("/cases", dashboardHandler(svc))
	r.Get("/cases/{caseID}", overviewHandler(svc))

	// Verificación (check-in): una transacción, una entrada de auditoría
	r.Post("/cases/{caseID}/checkins", checkInHandler(svc))
}

// createCaseRequest es el cuerpo del alta de un caso.
type createCaseRequest struct {
	Number             string               `json:"number" validate:"required,max=64"`
	SubjectName        string               `json:"subject_name" validate:"required,max=200"`
	Judge              string               `json:"judge" validate:"max=200"`
	RepresentativeName string               `json:"representative_name" validate:"max=200"`
	RepresentativeKind string               `json:"representative_kind" validate:"max=64"`
	Classification     cases.Classification `json:"classification" enums:"civil,health,family,other"`
	Note               string               `json:"note" validate:"max=2000"`
	Legacy             bool                 `json:"legacy"`
	Defendants         []string             `json:"defendants" validate:"dive,max=200"`
	Items              []cases.ItemPayload  `json:"items" validate:"dive"`
}

type itemEditRequest struct {
	ID               string  `json:"id" validate:"required"`
	Quantity         *string `json:"quantity,omitempty"`
	Location         *string `json:"location,omitempty"`
	PrescriptionDate *string `json:"prescription_date,omitempty"`
	Unnecessary      *bool   `json:"unnecessary,omitempty"`
	Blocked          *bool   `json:"blocked,omitempty"`
}

// checkInRequest: responsible sale del token (claims), nunca del cuerpo.
type checkInRequest struct {
	Phase             string            `json:"phase" validate:"max=100"`
	Note              *string           `json:"note,omitempty" validate:"omitempty,max=2000"`
	DiligenceDone     bool              `json:"diligence_done"`
	DiligenceDoneDesc string            `json:"diligence_done_desc" validate:"max=2000"`
	DiligencePending  bool              `json:"diligence_pending"`
	PendingDesc       string            `json:"pending_desc" validate:"max=2000"`
	BaseDate          string            `json:"base_date" validate:"max=10"`       // dd/mm/yyyy
	ManualDeadline    string            `json:"manual_deadline" validate:"max=10"` // dd/mm/yyyy
	ItemEdits         []itemEditRequest `json:"item_edits" validate:"dive"`
}

type dashboardRowResponse struct {
	cases.CaseResponse
	StatusLabel string            `json:"status_label"`
	Severity    deadline.Severity `json:"severity"`
	DaysLeft    *int              `json:"days_left,omitempty"`
}

type overviewResponse struct {
	Case        cases.CaseResponse        `json:"case"`
	StatusLabel string                    `json:"status_label"`
	Severity    deadline.Severity         `json:"severity"`
	Balance     string                    `json:"balance"`
	Defendants  []cases.DefendantResponse `json:"defendants"`
	Items       []cases.ItemResponse      `json:"items"`
	LastCheckIn *audit.EntryResponse      `json:"last_check_in,omitempty"`
}

// createCaseHandler godoc
// @Summary Crear caso
// @Description Crea el caso con demandados e ítems (solo health), calcula el primer plazo y registra la entrada inicial de auditoría, todo en una transacción.
// @Tags cases
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param payload body createCaseRequest true "Datos del caso"
// @Success 201 {object} cases.CaseResponse
// @Failure 400 {string} string "invalid json / reglas de negocio"
// @Failure 401 {string} string "unauthorized"
// @Router /cases [post]
func createCaseHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(w, r)
		if !ok {
			return
		}

		var req createCaseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := validation.Struct(req); err != nil {
			http.Error(w, validation.Message(err), http.StatusBadRequest)
			return
		}

		items := make([]cases.ItemInput, 0, len(req.Items))
		for _, it := range req.Items {
			items = append(items, it.Input())
		}

		c, err := svc.CreateCase(r.Context(), actor, cases.NewCase{
			Number:             req.Number,
			SubjectName:        req.SubjectName,
			Judge:              req.Judge,
			RepresentativeName: req.RepresentativeName,
			RepresentativeKind: req.RepresentativeKind,
			Classification:     req.Classification,
			Note:               req.Note,
			Legacy:             req.Legacy,
			Defendants:         req.Defendants,
			Items:              items,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, cases.ToCaseResponse(c))
	}
}

// dashboardHandler godoc
// @Summary Tablero de casos
// @Description Lista casos con etiqueta de urgencia (OVERDUE, DUE TODAY, Due in N days, On Track, No Deadline). Filtra por número o nombre.
// @Tags cases
// @Produce json
// @Param q query string false "Texto a buscar en número o nombre"
// @Param limit query int false "Máximo de casos (1-500). Por defecto 500"
// @Success 200 {array} dashboardRowResponse
// @Failure 401 {string} string "unauthorized"
// @Router /cases [get]
func dashboardHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := actorFrom(w, r); !ok {
			return
		}

		filter := cases.ListFilter{Query: r.URL.Query().Get("q")}
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
				filter.Limit = n
			}
		}

		rows, err := svc.Dashboard(r.Context(), filter)
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]dashboardRowResponse, 0, len(rows))
		for _, row := range rows {
			out = append(out, dashboardRowResponse{
				CaseResponse: cases.ToCaseResponse(row.Case),
				StatusLabel:  row.Label,
				Severity:     row.Severity,
				DaysLeft:     row.DaysLeft,
			})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// overviewHandler godoc
// @Summary Ver caso
// @Description Cabecera del caso con estado del plazo, saldo lanzado, demandados, ítems y última verificación.
// @Tags cases
// @Produce json
// @Param caseID path string true "ID del caso"
// @Success 200 {object} overviewResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "case not found"
// @Router /cases/{caseID} [get]
func overviewHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := actorFrom(w, r); !ok {
			return
		}

		ov, err := svc.Overview(r.Context(), chi.URLParam(r, "caseID"))
		if err != nil {
			writeError(w, err)
			return
		}

		out := overviewResponse{
			Case:        cases.ToCaseResponse(ov.Case),
			StatusLabel: ov.Label,
			Severity:    ov.Severity,
			Balance:     ov.Balance.StringFixed(2),
			Defendants:  cases.ToDefendantResponses(ov.Defendants),
			Items:       cases.ToItemResponses(ov.Items),
		}
		if ov.LastCheckIn != nil {
			e := audit.ToEntryResponse(*ov.LastCheckIn)
			out.LastCheckIn = &e
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// checkInHandler godoc
// @Summary Registrar verificación
// @Description Aplica ediciones de ítems, recalcula el plazo (manual_deadline gana sobre base_date), registra la entrada de auditoría y actualiza fase/observación/plazo del caso. Si hay pendencia, pending_desc es obligatorio.
// @Tags audit
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param caseID path string true "ID del caso"
// @Param payload body checkInRequest true "Verificación"
// @Success 201 {object} audit.EntryResponse
// @Failure 400 {string} string "invalid json / pendencia sin descripción"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "case not found"
// @Router /cases/{caseID}/checkins [post]
func checkInHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(w, r)
		if !ok {
			return
		}

		var req checkInRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := validation.Struct(req); err != nil {
			http.Error(w, validation.Message(err), http.StatusBadRequest)
			return
		}

		edits := make([]audit.ItemEdit, 0, len(req.ItemEdits))
		for _, e := range req.ItemEdits {
			edits = append(edits, audit.ItemEdit{
				ID:               e.ID,
				Quantity:         e.Quantity,
				Location:         e.Location,
				PrescriptionDate: e.PrescriptionDate,
				Unnecessary:      e.Unnecessary,
				Blocked:          e.Blocked,
			})
		}

		entry, err := svc.RecordCheckIn(r.Context(), audit.CheckIn{
			CaseID:            chi.URLParam(r, "caseID"),
			Phase:             req.Phase,
			Note:              req.Note,
			Actor:             actor,
			DiligenceDone:     req.DiligenceDone,
			DiligenceDoneDesc: req.DiligenceDoneDesc,
			DiligencePending:  req.DiligencePending,
			PendingDesc:       req.PendingDesc,
			Deadline: audit.DeadlineInput{
				BaseDate:       req.BaseDate,
				ManualOverride: req.ManualDeadline,
			},
			ItemEdits: edits,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, audit.ToEntryResponse(entry))
	}
}

func actorFrom(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return "", false
	}
	return claims.UserID, true
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, cases.ErrNotFound):
		http.Error(w, "case not found", http.StatusNotFound)
	case errors.Is(err, cases.ErrInvalidInput), errors.Is(err, audit.ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
