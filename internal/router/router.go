package router

import (
	"context"
	"net/http"
	"time"

	_ "case-tracker/docs"
	"case-tracker/internal/adapters/storage/memory"
	"case-tracker/internal/adapters/storage/sqlstore"
	"case-tracker/internal/domain/audit"
	"case-tracker/internal/domain/casefile"
	"case-tracker/internal/domain/cases"
	"case-tracker/internal/domain/ledger"
	"case-tracker/internal/middleware"
	"case-tracker/internal/platform/logger"
	"case-tracker/internal/platform/metrics"
	"case-tracker/internal/platform/tx"
	"case-tracker/internal/ports/auth"
	"case-tracker/internal/ports/backup"
	"case-tracker/internal/ports/clock"
	"case-tracker/internal/report"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev)

	// Opcional: si viene, usa ese store SQL (postgres o sqlite). Si no, in-memory.
	SQL *sqlstore.Store

	Backups  backup.Trigger       // nil = sin backups
	Logger   logger.Logger        // nil = Nop
	Registry *prometheus.Registry // nil = registro propio
	Metrics  *metrics.Metrics     // nil = se registran en Registry
	Clock    clock.Clock          // nil = reloj del sistema
}

// caseStore: los repos de casos también responden Exists para el ledger.
type caseStore interface {
	cases.Repository
	ledger.CaseChecker
}

type repos struct {
	tx     tx.Runner
	cases  caseStore
	ledger ledger.Repository
	audit  audit.Repository
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.New(reg)
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Recover(log))
	r.Use(middleware.RequestLog(log))

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if opts.SQL != nil {
			ctx, cancel := context.WithTimeout(req.Context(), 2*time.Second)
			defer cancel()
			if err := opts.SQL.Ping(ctx); err != nil {
				http.Error(w, "db unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	var rp repos
	if opts.SQL != nil {
		rp = repos{
			tx:     opts.SQL,
			cases:  sqlstore.NewCasesRepo(opts.SQL),
			ledger: sqlstore.NewLedgerRepo(opts.SQL),
			audit:  sqlstore.NewAuditRepo(opts.SQL),
		}
	} else {
		st := memory.NewStore()
		rp = repos{
			tx:     st,
			cases:  memory.NewCaseRepo(st),
			ledger: memory.NewLedgerRepo(st),
			audit:  memory.NewAuditRepo(st),
		}
	}

	// Services por módulo
	casesSvc := cases.NewService(rp.cases, rp.tx, opts.Clock)
	ledgerSvc := ledger.NewService(rp.ledger, rp.cases, rp.tx, opts.Backups, m, opts.Clock)
	auditSvc := audit.NewService(rp.audit)
	caseFileSvc := casefile.NewService(casefile.Deps{
		Tx:       rp.tx,
		Cases:    rp.cases,
		Audit:    rp.audit,
		Balances: ledgerSvc,
		Clock:    opts.Clock,
		Backups:  opts.Backups,
		Metrics:  m,
		Log:      log,
	})

	// Rutas por módulo
	casefile.RegisterRoutes(r, caseFileSvc)
	cases.RegisterRoutes(r, casesSvc)
	audit.RegisterRoutes(r, auditSvc)
	report.RegisterRoutes(r, casesSvc, ledgerSvc)
	ledger.RegisterRoutes(r, ledgerSvc)

	return r
}
