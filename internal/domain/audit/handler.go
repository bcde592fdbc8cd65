package audit

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"case-tracker/internal/middleware"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Get("/cases/{caseID}/history", historyHandler(svc))
}

// EntryResponse representa una verificación registrada.
type EntryResponse struct {
	ID                string `json:"id"`
	CaseID            string `json:"case_id"`
	RecordedAt        string `json:"recorded_at"`
	Phase             string `json:"phase"`
	Actor             string `json:"actor"`
	DiligenceDone     bool   `json:"diligence_done"`
	DiligenceDoneDesc string `json:"diligence_done_desc"`
	DiligencePending  bool   `json:"diligence_pending"`
	PendingDesc       string `json:"pending_desc"`
	Deadline          string `json:"deadline"`
	NotifyBy          string `json:"notify_by"`
	Summary           string `json:"summary"`
	ItemsSnapshot     string `json:"items_snapshot"`
}

// historyHandler godoc
// @Summary Historial de verificaciones
// @Description Lista las verificaciones del caso, la más reciente primero.
// @Tags audit
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param caseID path string true "ID del caso"
// @Success 200 {array} EntryResponse
// @Failure 401 {string} string "unauthorized"
// @Router /cases/{caseID}/history [get]
func historyHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		entries, err := svc.GetHistory(r.Context(), chi.URLParam(r, "caseID"))
		if err != nil {
			if errors.Is(err, ErrInvalidInput) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]EntryResponse, 0, len(entries))
		for _, e := range entries {
			out = append(out, ToEntryResponse(e))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func ToEntryResponse(e Entry) EntryResponse {
	return EntryResponse{
		ID:                e.ID,
		CaseID:            e.CaseID,
		RecordedAt:        e.RecordedAt.UTC().Format(time.RFC3339),
		Phase:             e.Phase,
		Actor:             e.Actor,
		DiligenceDone:     e.DiligenceDone,
		DiligenceDoneDesc: e.DiligenceDoneDesc,
		DiligencePending:  e.DiligencePending,
		PendingDesc:       e.PendingDesc,
		Deadline:          e.Deadline,
		NotifyBy:          e.NotifyBy,
		Summary:           e.Summary,
		ItemsSnapshot:     e.ItemsSnapshot,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
