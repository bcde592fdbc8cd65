package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"case-tracker/internal/adapters/storage/sqlstore"
	"case-tracker/internal/app"
	"case-tracker/internal/domain/casefile"
	"case-tracker/internal/domain/cases"
	"case-tracker/internal/domain/ledger"
	"case-tracker/internal/platform/config"
	"case-tracker/internal/platform/logger"

	"github.com/charmbracelet/glamour"
)

var errMemoryDriver = errors.New("DB_DRIVER=memory has nothing to operate on; use postgres or sqlite")

// services es lo que necesitan los comandos de lectura.
type services struct {
	cases    *cases.Service
	ledger   *ledger.Service
	casefile *casefile.Service
}

func openStorage(ctx context.Context) (*app.Storage, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.Database.Driver == config.DriverMemory {
		return nil, errMemoryDriver
	}
	return app.OpenStorage(ctx, cfg)
}

func newServices(st *sqlstore.Store) services {
	caseRepo := sqlstore.NewCasesRepo(st)
	auditRepo := sqlstore.NewAuditRepo(st)
	ledgerSvc := ledger.NewService(sqlstore.NewLedgerRepo(st), caseRepo, st, nil, nil, nil)

	return services{
		cases:  cases.NewService(caseRepo, st, nil),
		ledger: ledgerSvc,
		casefile: casefile.NewService(casefile.Deps{
			Tx:       st,
			Cases:    caseRepo,
			Audit:    auditRepo,
			Balances: ledgerSvc,
			Log:      logger.NewFromEnv(),
		}),
	}
}

func printMarkdown(md string) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(120))
	if err != nil {
		fmt.Print(md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Print(md)
		return
	}
	fmt.Fprint(os.Stdout, out)
}
