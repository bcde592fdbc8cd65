package casefile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"case-tracker/internal/domain/audit"
	"case-tracker/internal/domain/cases"
	"case-tracker/internal/domain/deadline"
	"case-tracker/internal/platform/logger"
	"case-tracker/internal/platform/metrics"
	"case-tracker/internal/platform/tx"
	"case-tracker/internal/ports/backup"
	"case-tracker/internal/ports/clock"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer trace.Tracer = otel.Tracer("case-tracker/casefile")

// BalanceReader es lo único que el coordinador necesita del ledger.
type BalanceReader interface {
	GetBalance(ctx context.Context, caseID string) (decimal.Decimal, error)
}

type Deps struct {
	Tx       tx.Runner
	Cases    cases.Repository
	Audit    audit.Repository
	Balances BalanceReader

	Clock    clock.Clock
	Snapshot audit.SnapshotSerializer
	Backups  backup.Trigger
	Metrics  *metrics.Metrics
	Log      logger.Logger
}

// Service coordina las operaciones compuestas del caso: cada una es una sola transacción.
type Service struct {
	tx       tx.Runner
	cases    cases.Repository
	audit    audit.Repository
	balances BalanceReader

	clock    clock.Clock
	engine   *deadline.Engine
	snapshot audit.SnapshotSerializer
	backups  backup.Trigger
	metrics  *metrics.Metrics
	log      logger.Logger
}

func NewService(d Deps) *Service {
	if d.Clock == nil {
		d.Clock = clock.System{}
	}
	if d.Snapshot == nil {
		d.Snapshot = audit.JSONSnapshot{}
	}
	if d.Backups == nil {
		d.Backups = backup.Nop{}
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	return &Service{
		tx:       d.Tx,
		cases:    d.Cases,
		audit:    d.Audit,
		balances: d.Balances,
		clock:    d.Clock,
		engine:   deadline.NewEngine(d.Clock),
		snapshot: d.Snapshot,
		backups:  d.Backups,
		metrics:  d.Metrics,
		log:      d.Log,
	}
}

// CreateCase da de alta el caso con demandados, ítems, primer plazo y entrada inicial de auditoría.
// Si algo falla no queda ninguna fila.
func (s *Service) CreateCase(ctx context.Context, actor string, in cases.NewCase) (cases.Case, error) {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return cases.Case{}, audit.ErrMissingResponsible
	}

	now := s.clock.Now()
	c, err := cases.BuildCase(in, now)
	if err != nil {
		return cases.Case{}, err
	}
	defendants := cases.BuildDefendants(c.ID, in.Defendants)
	items, err := cases.BuildItems(c.ID, in.Items)
	if err != nil {
		return cases.Case{}, err
	}

	ctx, span := tracer.Start(ctx, "casefile.CreateCase", trace.WithAttributes(attribute.String("case.id", c.ID)))
	defer span.End()

	// Primer plazo: base = hoy, sin override.
	res := s.engine.Compute("", "")
	c.CachedDeadline = res.Deadline

	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.cases.Create(ctx, c); err != nil {
			return fmt.Errorf("create case: %w", err)
		}
		if len(defendants) > 0 {
			if err := s.cases.ReplaceDefendants(ctx, c.ID, defendants); err != nil {
				return fmt.Errorf("insert defendants: %w", err)
			}
		}
		if len(items) > 0 {
			if err := s.cases.ReplaceItems(ctx, c.ID, items); err != nil {
				return fmt.Errorf("insert items: %w", err)
			}
		}

		snap, err := s.snapshot.Serialize(items)
		if err != nil {
			return fmt.Errorf("snapshot items: %w", err)
		}
		if _, err := s.audit.Append(ctx, audit.InitialEntry(c.ID, actor, res, snap, now)); err != nil {
			return fmt.Errorf("append audit: %w", err)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create case failed")
		return cases.Case{}, err
	}

	s.metrics.IncCaseCreated()
	s.log.Info("case created", map[string]any{"case_id": c.ID, "actor": actor, "deadline": c.CachedDeadline})
	s.backups.Trigger("case.create")
	return c, nil
}

// RecordCheckIn registra una verificación. En una transacción:
// aplica ediciones de ítems, calcula el plazo, guarda la entrada con el snapshot
// y actualiza fase, observación y plazo cacheado del caso.
func (s *Service) RecordCheckIn(ctx context.Context, in audit.CheckIn) (audit.Entry, error) {
	if err := in.Validate(); err != nil {
		return audit.Entry{}, err
	}
	caseID := strings.TrimSpace(in.CaseID)

	start := time.Now()
	defer s.metrics.ObserveCheckIn(start)

	ctx, span := tracer.Start(ctx, "casefile.RecordCheckIn", trace.WithAttributes(attribute.String("case.id", caseID)))
	defer span.End()

	var stored audit.Entry
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		c, err := s.cases.GetByID(ctx, caseID)
		if err != nil {
			return err
		}

		items, err := s.cases.ListItems(ctx, c.ID)
		if err != nil {
			return fmt.Errorf("list items: %w", err)
		}
		if len(in.ItemEdits) > 0 && !c.TracksItems() {
			return cases.ErrItemsNotAllowed
		}
		items, err = s.applyItemEdits(ctx, items, in.ItemEdits)
		if err != nil {
			return err
		}

		res := s.engine.Compute(in.Deadline.BaseDate, in.Deadline.ManualOverride)

		snap, err := s.snapshot.Serialize(items)
		if err != nil {
			return fmt.Errorf("snapshot items: %w", err)
		}

		phase := strings.TrimSpace(in.Phase)
		if phase == "" {
			phase = c.Phase
		}
		now := s.clock.Now()

		stored, err = s.audit.Append(ctx, audit.NewEntry(in, phase, res, snap, now))
		if err != nil {
			return fmt.Errorf("append audit: %w", err)
		}

		c.Phase = phase
		if in.Note != nil {
			c.Note = strings.TrimSpace(*in.Note)
		}
		c.CachedDeadline = res.Deadline
		c.UpdatedAt = now
		if err := s.cases.Update(ctx, c); err != nil {
			return fmt.Errorf("update case: %w", err)
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "check-in failed")
		return audit.Entry{}, err
	}

	s.metrics.IncCheckIn()
	s.log.Debug("check-in recorded", map[string]any{"case_id": caseID, "actor": stored.Actor, "deadline": stored.Deadline})
	s.backups.Trigger("case.checkin")
	return stored, nil
}

func (s *Service) applyItemEdits(ctx context.Context, items []cases.TrackedItem, edits []audit.ItemEdit) ([]cases.TrackedItem, error) {
	if len(edits) == 0 {
		return items, nil
	}
	idx := make(map[string]int, len(items))
	for i, it := range items {
		idx[it.ID] = i
	}
	for _, e := range edits {
		i, ok := idx[strings.TrimSpace(e.ID)]
		if !ok {
			return nil, audit.ErrUnknownItem
		}
		items[i] = e.Apply(items[i])
		if err := s.cases.UpdateItem(ctx, items[i]); err != nil {
			return nil, fmt.Errorf("update item: %w", err)
		}
	}
	return items, nil
}

type Overview struct {
	Case       cases.Case
	Label      string
	Severity   deadline.Severity
	Balance    decimal.Decimal
	Defendants []cases.Defendant
	Items      []cases.TrackedItem
	// LastCheckIn es nil si el caso no tiene entradas (no debería pasar tras CreateCase).
	LastCheckIn *audit.Entry
}

func (s *Service) Overview(ctx context.Context, caseID string) (Overview, error) {
	caseID = strings.TrimSpace(caseID)
	if caseID == "" {
		return Overview{}, cases.ErrInvalidInput
	}

	c, err := s.cases.GetByID(ctx, caseID)
	if err != nil {
		return Overview{}, err
	}
	ds, err := s.cases.ListDefendants(ctx, c.ID)
	if err != nil {
		return Overview{}, err
	}
	items, err := s.cases.ListItems(ctx, c.ID)
	if err != nil {
		return Overview{}, err
	}
	balance, err := s.balances.GetBalance(ctx, c.ID)
	if err != nil {
		return Overview{}, err
	}

	ov := Overview{
		Case:       c,
		Balance:    balance,
		Defendants: ds,
		Items:      items,
	}
	ov.Label, ov.Severity = s.engine.Classify(c.CachedDeadline)

	last, err := s.audit.Latest(ctx, c.ID)
	switch {
	case err == nil:
		ov.LastCheckIn = &last
	case isNotFound(err):
	default:
		return Overview{}, err
	}
	return ov, nil
}

type DashboardRow struct {
	Case     cases.Case
	Label    string
	Severity deadline.Severity
	DaysLeft *int
}

// Dashboard lista casos (búsqueda por número o nombre) con su etiqueta de urgencia.
func (s *Service) Dashboard(ctx context.Context, filter cases.ListFilter) ([]DashboardRow, error) {
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 500
	}
	filter.Query = strings.TrimSpace(filter.Query)

	list, err := s.cases.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	out := make([]DashboardRow, 0, len(list))
	for _, c := range list {
		row := DashboardRow{Case: c}
		row.Label, row.Severity = deadline.Classify(c.CachedDeadline, now)
		if due, ok := deadline.ParseDate(c.CachedDeadline); ok {
			d := deadline.DaysUntil(due, now)
			row.DaysLeft = &d
		}
		out = append(out, row)
	}
	return out, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, audit.ErrNotFound)
}
