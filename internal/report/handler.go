package report

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"case-tracker/internal/domain/cases"
	"case-tracker/internal/domain/ledger"
	"case-tracker/internal/middleware"

	"github.com/go-chi/chi/v5"
)

type CaseReader interface {
	GetByID(ctx context.Context, id string) (cases.Case, error)
}

type LedgerReader interface {
	GetLedger(ctx context.Context, caseID string) (ledger.Ledger, error)
}

func RegisterRoutes(r chi.Router, cs CaseReader, lr LedgerReader) {
	r.Get("/cases/{caseID}/ledger/statement.md", markdownHandler(cs, lr))
	r.Get("/cases/{caseID}/ledger/statement.xlsx", xlsxHandler(cs, lr))
}

// markdownHandler godoc
// @Summary Extracto en markdown
// @Description Movimientos lanzados con saldo acumulado, totales y borradores pendientes.
// @Tags ledger
// @Produce text/markdown
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param caseID path string true "ID del caso"
// @Success 200 {string} string "markdown"
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "case not found"
// @Router /cases/{caseID}/ledger/statement.md [get]
func markdownHandler(cs CaseReader, lr LedgerReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, l, ok := load(w, r, cs, lr)
		if !ok {
			return
		}
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(Markdown(c, l)))
	}
}

// xlsxHandler godoc
// @Summary Extracto en planilla
// @Tags ledger
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario para depuración"
// @Param Authorization header string false "Bearer token en producción"
// @Param caseID path string true "ID del caso"
// @Success 200 {file} file
// @Failure 401 {string} string "unauthorized"
// @Failure 404 {string} string "case not found"
// @Router /cases/{caseID}/ledger/statement.xlsx [get]
func xlsxHandler(cs CaseReader, lr LedgerReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, l, ok := load(w, r, cs, lr)
		if !ok {
			return
		}
		f, err := XLSX(c, l)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		defer f.Close()

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", "attachment; filename=statement.xlsx")
		if err := f.Write(w); err != nil {
			http.Error(w, "Failed to write file", http.StatusInternalServerError)
		}
	}
}

func load(w http.ResponseWriter, r *http.Request, cs CaseReader, lr LedgerReader) (cases.Case, ledger.Ledger, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return cases.Case{}, ledger.Ledger{}, false
	}

	c, err := cs.GetByID(r.Context(), chi.URLParam(r, "caseID"))
	if err != nil {
		switch {
		case errors.Is(err, cases.ErrNotFound):
			http.Error(w, "case not found", http.StatusNotFound)
		case errors.Is(err, cases.ErrInvalidInput):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return cases.Case{}, ledger.Ledger{}, false
	}

	l, err := lr.GetLedger(r.Context(), c.ID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return cases.Case{}, ledger.Ledger{}, false
	}
	return c, l, true
}
