package cases

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"case-tracker/internal/middleware"
	"case-tracker/internal/platform/validation"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Patch("/cases/{caseID}", updateCaseHandler(svc))
	r.Delete("/cases/{caseID}", deleteCaseHandler(svc))

	r.Get("/cases/{caseID}/defendants", listDefendantsHandler(svc))
	r.Put("/cases/{caseID}/defendants", replaceDefendantsHandler(svc))

	// Edición de ítems fuera del check-in (silenciosa, sin auditoría)
	r.Get("/cases/{caseID}/items", listItemsHandler(svc))
	r.Put("/cases/{caseID}/items", replaceItemsHandler(svc))

	r.Get("/phases", phasesHandler())
}

// updateCaseRequest: solo se actualizan los campos presentes.
type updateCaseRequest struct {
	Number             *string         `json:"number,omitempty" validate:"omitempty,max=64"`
	SubjectName        *string         `json:"subject_name,omitempty" validate:"omitempty,max=200"`
	Judge              *string         `json:"judge,omitempty" validate:"omitempty,max=200"`
	RepresentativeName *string         `json:"representative_name,omitempty" validate:"omitempty,max=200"`
	RepresentativeKind *string         `json:"representative_kind,omitempty" validate:"omitempty,max=64"`
	Classification     *Classification `json:"classification,omitempty" enums:"civil,health,family,other"`
	Legacy             *bool           `json:"legacy,omitempty"`
}

type replaceDefendantsRequest struct {
	Names []string `json:"names" validate:"dive,max=200"`
}

// ItemPayload es el formato JSON de un ítem (lo reutiliza el coordinador).
type ItemPayload struct {
	ID               string `json:"id,omitempty"`
	Category         string `json:"category" validate:"max=64"`
	Name             string `json:"name" validate:"required,max=200"`
	Quantity         string `json:"quantity" validate:"max=64"`
	Frequency        string `json:"frequency" validate:"max=64"`
	Location         string `json:"location" validate:"max=200"`
	PrescriptionDate string `json:"prescription_date" validate:"max=10"`
	Unnecessary      bool   `json:"unnecessary"`
	Blocked          bool   `json:"blocked"`
}

func (p ItemPayload) Input() ItemInput {
	return ItemInput{
		Category:         p.Category,
		Name:             p.Name,
		Quantity:         p.Quantity,
		Frequency:        p.Frequency,
		Location:         p.Location,
		PrescriptionDate: p.PrescriptionDate,
		Unnecessary:      p.Unnecessary,
		Blocked:          p.Blocked,
	}
}

type replaceItemsRequest struct {
	Items []ItemPayload `json:"items" validate:"dive"`
}

// CaseResponse representa la cabecera de un caso.
type CaseResponse struct {
	ID                 string         `json:"id"`
	Number             string         `json:"number"`
	SubjectName        string         `json:"subject_name"`
	Judge              string         `json:"judge"`
	RepresentativeName string         `json:"representative_name"`
	RepresentativeKind string         `json:"representative_kind"`
	Classification     Classification `json:"classification"`
	Phase              string         `json:"phase"`
	Note               string         `json:"note"`
	CachedDeadline     string         `json:"cached_deadline"`
	Legacy             bool           `json:"legacy"`
	CreatedAt          string         `json:"created_at"`
	UpdatedAt          string         `json:"updated_at"`
}

type DefendantResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type ItemResponse struct {
	ID               string `json:"id"`
	Category         string `json:"category"`
	Name             string `json:"name"`
	Quantity         string `json:"quantity"`
	Frequency        string `json:"frequency"`
	Location         string `json:"location"`
	PrescriptionDate string `json:"prescription_date"`
	Unnecessary      bool   `json:"unnecessary"`
	Blocked          bool   `json:"blocked"`
}

// updateCaseHandler godoc
// @Summary Editar datos del caso
// @Description Actualiza número, partes, juez, clasificación o flag legacy. Fase, observación y plazo solo cambian vía check-in.
// @Tags cases
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param caseID path string true "ID del caso"
// @Param payload body updateCaseRequest true "Campos a actualizar"
// @Success 200 {object} CaseResponse
// @Failure 400 {string} string "invalid json / reglas de negocio"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "case not found"
// @Router /cases/{caseID} [patch]
func updateCaseHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := actorFrom(w, r); !ok {
			return
		}

		var req updateCaseRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := validation.Struct(req); err != nil {
			http.Error(w, validation.Message(err), http.StatusBadRequest)
			return
		}

		c, err := svc.UpdateDetails(r.Context(), chi.URLParam(r, "caseID"), DetailsPatch{
			Number:             req.Number,
			SubjectName:        req.SubjectName,
			Judge:              req.Judge,
			RepresentativeName: req.RepresentativeName,
			RepresentativeKind: req.RepresentativeKind,
			Classification:     req.Classification,
			Legacy:             req.Legacy,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ToCaseResponse(c))
	}
}

// deleteCaseHandler godoc
// @Summary Borrar caso
// @Description Borra el caso con sus demandados, ítems, movimientos y auditoría.
// @Tags cases
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param caseID path string true "ID del caso"
// @Success 204
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "case not found"
// @Router /cases/{caseID} [delete]
func deleteCaseHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := actorFrom(w, r); !ok {
			return
		}
		if err := svc.Delete(r.Context(), chi.URLParam(r, "caseID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// listDefendantsHandler godoc
// @Summary Listar demandados
// @Tags cases
// @Produce json
// @Param caseID path string true "ID del caso"
// @Success 200 {array} DefendantResponse
// @Failure 401 {string} string "unauthorized"
// @Router /cases/{caseID}/defendants [get]
func listDefendantsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := actorFrom(w, r); !ok {
			return
		}
		ds, err := svc.ListDefendants(r.Context(), chi.URLParam(r, "caseID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ToDefendantResponses(ds))
	}
}

// replaceDefendantsHandler godoc
// @Summary Reemplazar demandados
// @Description Reemplaza el conjunto completo de demandados en una transacción.
// @Tags cases
// @Accept json
// @Produce json
// @Param caseID path string true "ID del caso"
// @Param payload body replaceDefendantsRequest true "Nombres"
// @Success 200 {array} DefendantResponse
// @Failure 400 {string} string "invalid json"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "case not found"
// @Router /cases/{caseID}/defendants [put]
func replaceDefendantsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := actorFrom(w, r); !ok {
			return
		}
		var req replaceDefendantsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := validation.Struct(req); err != nil {
			http.Error(w, validation.Message(err), http.StatusBadRequest)
			return
		}
		ds, err := svc.ReplaceDefendants(r.Context(), chi.URLParam(r, "caseID"), req.Names)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ToDefendantResponses(ds))
	}
}

// listItemsHandler godoc
// @Summary Listar ítems de salud
// @Tags cases
// @Produce json
// @Param caseID path string true "ID del caso"
// @Success 200 {array} ItemResponse
// @Failure 401 {string} string "unauthorized"
// @Router /cases/{caseID}/items [get]
func listItemsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := actorFrom(w, r); !ok {
			return
		}
		items, err := svc.ListItems(r.Context(), chi.URLParam(r, "caseID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ToItemResponses(items))
	}
}

// replaceItemsHandler godoc
// @Summary Reemplazar ítems de salud
// @Description Reemplaza todos los ítems del caso (solo clasificación health). No genera entrada de auditoría.
// @Tags cases
// @Accept json
// @Produce json
// @Param caseID path string true "ID del caso"
// @Param payload body replaceItemsRequest true "Ítems"
// @Success 200 {array} ItemResponse
// @Failure 400 {string} string "invalid json / caso sin ítems"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "case not found"
// @Router /cases/{caseID}/items [put]
func replaceItemsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := actorFrom(w, r); !ok {
			return
		}
		var req replaceItemsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := validation.Struct(req); err != nil {
			http.Error(w, validation.Message(err), http.StatusBadRequest)
			return
		}
		in := make([]ItemInput, 0, len(req.Items))
		for _, it := range req.Items {
			in = append(in, it.Input())
		}
		items, err := svc.ReplaceTrackedItems(r.Context(), chi.URLParam(r, "caseID"), in)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, ToItemResponses(items))
	}
}

// phasesHandler godoc
// @Summary Fases sugeridas
// @Tags cases
// @Produce json
// @Success 200 {array} string
// @Router /phases [get]
func phasesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, SuggestedPhases())
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
	case errors.Is(err, ErrNotFound):
		http.Error(w, "case not found", http.StatusNotFound)
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func ToCaseResponse(c Case) CaseResponse {
	return CaseResponse{
		ID:                 c.ID,
		Number:             c.Number,
		SubjectName:        c.SubjectName,
		Judge:              c.Judge,
		RepresentativeName: c.RepresentativeName,
		RepresentativeKind: c.RepresentativeKind,
		Classification:     c.Classification,
		Phase:              c.Phase,
		Note:               c.Note,
		CachedDeadline:     c.CachedDeadline,
		Legacy:             c.Legacy,
		CreatedAt:          c.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:          c.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func ToDefendantResponses(ds []Defendant) []DefendantResponse {
	out := make([]DefendantResponse, 0, len(ds))
	for _, d := range ds {
		out = append(out, DefendantResponse{ID: d.ID, Name: d.Name})
	}
	return out
}

func ToItemResponses(items []TrackedItem) []ItemResponse {
	out := make([]ItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, ItemResponse{
			ID:               it.ID,
			Category:         it.Category,
			Name:             it.Name,
			Quantity:         it.Quantity,
			Frequency:        it.Frequency,
			Location:         it.Location,
			PrescriptionDate: it.PrescriptionDate,
			Unnecessary:      it.Unnecessary,
			Blocked:          it.Blocked,
		})
	}
	return out
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
