package ledger

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"case-tracker/internal/domain/deadline"
	"case-tracker/internal/middleware"
	"case-tracker/internal/platform/validation"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/cases/{caseID}/ledger", func(lr chi.Router) {
		lr.Get("/", getLedgerHandler(svc))
		lr.Get("/balance", getBalanceHandler(svc))
		lr.Post("/entries", addDraftHandler(svc))

		// Lanzar todos los borradores del caso
		lr.Post("/post", postAllDraftsHandler(svc))
	})

	r.Route("/ledger/entries/{entryID}", func(er chi.Router) {
		er.Get("/", getEntryHandler(svc))
		er.Patch("/", updateEntryHandler(svc))
		er.Delete("/", deleteEntryHandler(svc))
	})
}

// addEntryRequest: amount acepta "1.234,56", "1234,56" o "1234.56".
type addEntryRequest struct {
	Date           string    `json:"date" validate:"omitempty,max=10"` // dd/mm/yyyy
	Type           EntryType `json:"type" validate:"required" enums:"grant,medication,therapy,consultation,exam,supply,expense"`
	Amount         string    `json:"amount" validate:"required,max=32"`
	Description    string    `json:"description" validate:"max=500"`
	DocumentNumber string    `json:"document_number" validate:"max=64"`
	MovementCode   string    `json:"movement_code" validate:"max=64"`
	ItemName       string    `json:"item_name" validate:"max=200"`
	Quantity       string    `json:"quantity" validate:"max=32"`
	RefMonth       string    `json:"ref_month" validate:"max=2"`
	RefYear        string    `json:"ref_year" validate:"max=4"`
	Notes          string    `json:"notes" validate:"max=500"`
	Attachment     bool      `json:"attachment"`
}

type updateEntryRequest struct {
	Date           *string    `json:"date,omitempty" validate:"omitempty,max=10"`
	Type           *EntryType `json:"type,omitempty"`
	Amount         *string    `json:"amount,omitempty" validate:"omitempty,max=32"`
	Description    *string    `json:"description,omitempty" validate:"omitempty,max=500"`
	DocumentNumber *string    `json:"document_number,omitempty"`
	MovementCode   *string    `json:"movement_code,omitempty"`
	ItemName       *string    `json:"item_name,omitempty"`
	Quantity       *string    `json:"quantity,omitempty"`
	RefMonth       *string    `json:"ref_month,omitempty"`
	RefYear        *string    `json:"ref_year,omitempty"`
	Notes          *string    `json:"notes,omitempty"`
}

// entryResponse representa un movimiento; montos con 2 decimales como string.
type entryResponse struct {
	ID             string    `json:"id"`
	CaseID         string    `json:"case_id"`
	Date           string    `json:"date"`
	Type           EntryType `json:"type"`
	Credit         string    `json:"credit"`
	Debit          string    `json:"debit"`
	Description    string    `json:"description"`
	DocumentNumber string    `json:"document_number"`
	MovementCode   string    `json:"movement_code"`
	ItemName       string    `json:"item_name"`
	Quantity       string    `json:"quantity"`
	RefMonth       string    `json:"ref_month"`
	RefYear        string    `json:"ref_year"`
	Notes          string    `json:"notes"`
	Responsible    string    `json:"responsible"`
	Status         Status    `json:"status"`
	CreatedAt      string    `json:"created_at"`
}

type postedRowResponse struct {
	entryResponse
	Running string `json:"running"`
}

type ledgerResponse struct {
	CaseID      string              `json:"case_id"`
	Drafts      []entryResponse     `json:"drafts"`
	Posted      []postedRowResponse `json:"posted"`
	TotalCredit string              `json:"total_credit"`
	TotalDebit  string              `json:"total_debit"`
	Balance     string              `json:"balance"`
}

type balanceResponse struct {
	CaseID  string `json:"case_id"`
	Balance string `json:"balance"`
}

type postResponse struct {
	Posted int `json:"posted"`
}

// getLedgerHandler godoc
// @Summary Ver libro del caso
// @Description Devuelve borradores y movimientos lanzados (fecha asc) con saldo acumulado por fila.
// @Tags ledger
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param caseID path string true "ID del caso"
// @Success 200 {object} ledgerResponse
// @Failure 401 {string} string "unauthorized"
// @Router /cases/{caseID}/ledger [get]
func getLedgerHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := actorFrom(w, r); !ok {
			return
		}
		l, err := svc.GetLedger(r.Context(), chi.URLParam(r, "caseID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toLedgerResponse(l))
	}
}

// getBalanceHandler godoc
// @Summary Saldo del caso
// @Description Suma de (crédito - débito) sobre los movimientos lanzados.
// @Tags ledger
// @Produce json
// @Param caseID path string true "ID del caso"
// @Success 200 {object} balanceResponse
// @Failure 401 {string} string "unauthorized"
// @Router /cases/{caseID}/ledger/balance [get]
func getBalanceHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := actorFrom(w, r); !ok {
			return
		}
		caseID := chi.URLParam(r, "caseID")
		b, err := svc.GetBalance(r.Context(), caseID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, balanceResponse{CaseID: caseID, Balance: money(b)})
	}
}

// addDraftHandler godoc
// @Summary Agregar borrador
// @Description Registra un movimiento en estado draft. grant acredita; el resto debita. Sin descripción se sintetiza el histórico.
// @Tags ledger
// @Accept json
// @Produce json
// @Param caseID path string true "ID del caso"
// @Param payload body addEntryRequest true "Movimiento"
// @Success 201 {object} entryResponse
// @Failure 400 {string} string "invalid json / monto inválido"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "case not found"
// @Router /cases/{caseID}/ledger/entries [post]
func addDraftHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := actorFrom(w, r)
		if !ok {
			return
		}

		var req addEntryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := validation.Struct(req); err != nil {
			http.Error(w, validation.Message(err), http.StatusBadRequest)
			return
		}
		amount, err := ParseAmount(req.Amount)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		e, err := svc.AddDraftEntry(r.Context(), chi.URLParam(r, "caseID"), actor, NewEntry{
			Date:           req.Date,
			Type:           req.Type,
			Amount:         amount,
			Description:    req.Description,
			DocumentNumber: req.DocumentNumber,
			MovementCode:   req.MovementCode,
			ItemName:       req.ItemName,
			Quantity:       req.Quantity,
			RefMonth:       req.RefMonth,
			RefYear:        req.RefYear,
			Notes:          req.Notes,
			Attachment:     req.Attachment,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, toEntryResponse(e))
	}
}

// postAllDraftsHandler godoc
// @Summary Lanzar borradores
// @Description Pasa todos los borradores del caso a posted en una transacción. Repetirlo no tiene efecto.
// @Tags ledger
// @Produce json
// @Param caseID path string true "ID del caso"
// @Success 200 {object} postResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "case not found"
// @Router /cases/{caseID}/ledger/post [post]
func postAllDraftsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := actorFrom(w, r); !ok {
			return
		}
		n, err := svc.PostAllDrafts(r.Context(), chi.URLParam(r, "caseID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, postResponse{Posted: n})
	}
}

// getEntryHandler godoc
// @Summary Ver movimiento
// @Tags ledger
// @Produce json
// @Param entryID path string true "ID del movimiento"
// @Success 200 {object} entryResponse
// @Failure 404 {string} string "entry not found"
// @Router /ledger/entries/{entryID} [get]
func getEntryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := actorFrom(w, r); !ok {
			return
		}
		e, err := svc.GetEntry(r.Context(), chi.URLParam(r, "entryID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toEntryResponse(e))
	}
}

// updateEntryHandler godoc
// @Summary Corregir movimiento
// @Description Edita un movimiento en cualquier estado; el estado no cambia.
// @Tags ledger
// @Accept json
// @Produce json
// @Param entryID path string true "ID del movimiento"
// @Param payload body updateEntryRequest true "Campos a corregir"
// @Success 200 {object} entryResponse
// @Failure 400 {string} string "invalid json / monto inválido"
// @Failure 404 {string} string "entry not found"
// @Router /ledger/entries/{entryID} [patch]
func updateEntryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := actorFrom(w, r); !ok {
			return
		}

		var req updateEntryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := validation.Struct(req); err != nil {
			http.Error(w, validation.Message(err), http.StatusBadRequest)
			return
		}

		patch := EntryPatch{
			Date:           req.Date,
			Type:           req.Type,
			Description:    req.Description,
			DocumentNumber: req.DocumentNumber,
			MovementCode:   req.MovementCode,
			ItemName:       req.ItemName,
			Quantity:       req.Quantity,
			RefMonth:       req.RefMonth,
			RefYear:        req.RefYear,
			Notes:          req.Notes,
		}
		if req.Amount != nil {
			amount, err := ParseAmount(*req.Amount)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			patch.Amount = &amount
		}

		e, err := svc.UpdateEntry(r.Context(), chi.URLParam(r, "entryID"), patch)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toEntryResponse(e))
	}
}

// deleteEntryHandler godoc
// @Summary Borrar movimiento
// @Description Borra un movimiento en cualquier estado.
// @Tags ledger
// @Param entryID path string true "ID del movimiento"
// @Success 204
// @Failure 404 {string} string "entry not found"
// @Router /ledger/entries/{entryID} [delete]
func deleteEntryHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := actorFrom(w, r); !ok {
			return
		}
		if err := svc.DeleteEntry(r.Context(), chi.URLParam(r, "entryID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
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
	case errors.Is(err, ErrCaseNotFound):
		http.Error(w, "case not found", http.StatusNotFound)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "entry not found", http.StatusNotFound)
	case errors.Is(err, ErrInvalidInput):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func toEntryResponse(e Entry) entryResponse {
	return entryResponse{
		ID:             e.ID,
		CaseID:         e.CaseID,
		Date:           deadline.FormatDate(e.Date),
		Type:           e.Type,
		Credit:         money(e.Credit),
		Debit:          money(e.Debit),
		Description:    e.Description,
		DocumentNumber: e.DocumentNumber,
		MovementCode:   e.MovementCode,
		ItemName:       e.ItemName,
		Quantity:       e.Quantity,
		RefMonth:       e.RefMonth,
		RefYear:        e.RefYear,
		Notes:          e.Notes,
		Responsible:    e.Responsible,
		Status:         e.Status,
		CreatedAt:      e.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toLedgerResponse(l Ledger) ledgerResponse {
	out := ledgerResponse{
		CaseID:      l.CaseID,
		Drafts:      make([]entryResponse, 0, len(l.Drafts)),
		Posted:      make([]postedRowResponse, 0, len(l.Posted)),
		TotalCredit: money(l.TotalCredit),
		TotalDebit:  money(l.TotalDebit),
		Balance:     money(l.Balance),
	}
	for _, e := range l.Drafts {
		out.Drafts = append(out.Drafts, toEntryResponse(e))
	}
	for _, row := range l.Posted {
		out.Posted = append(out.Posted, postedRowResponse{
			entryResponse: toEntryResponse(row.Entry),
			Running:       money(row.Running),
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
