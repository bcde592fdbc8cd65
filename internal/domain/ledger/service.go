package ledger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"case-tracker/internal/domain/deadline"
	"case-tracker/internal/platform/metrics"
	"case-tracker/internal/platform/tx"
	"case-tracker/internal/ports/backup"
	"case-tracker/internal/ports/clock"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("not found")
	ErrInvalidAmount = fmt.Errorf("%w: amount must be greater than zero with at most two decimals", ErrInvalidInput)
	ErrInvalidDate   = fmt.Errorf("%w: date must be dd/mm/yyyy", ErrInvalidInput)
	ErrInvalidType   = fmt.Errorf("%w: unknown entry type", ErrInvalidInput)
	ErrCaseNotFound  = fmt.Errorf("case %w", ErrNotFound)
)

var tracer trace.Tracer = otel.Tracer("case-tracker/ledger")

type Service struct {
	repo    Repository
	cases   CaseChecker
	tx      tx.Runner
	backups backup.Trigger
	metrics *metrics.Metrics
	now     func() time.Time
}

// CaseChecker evita movimientos huérfanos (el store SQL además tiene FK).
type CaseChecker interface {
	Exists(ctx context.Context, caseID string) (bool, error)
}

// NewService: backups, m y c pueden ser nil (sin backup, sin métricas, reloj del sistema).
func NewService(repo Repository, cases CaseChecker, runner tx.Runner, backups backup.Trigger, m *metrics.Metrics, c clock.Clock) *Service {
	if backups == nil {
		backups = backup.Nop{}
	}
	if c == nil {
		c = clock.System{}
	}
	return &Service{
		repo:    repo,
		cases:   cases,
		tx:      runner,
		backups: backups,
		metrics: m,
		now:     c.Now,
	}
}

type NewEntry struct {
	Date   string // dd/mm/yyyy; vacío = hoy
	Type   EntryType
	Amount decimal.Decimal

	Description    string // vacío = se sintetiza
	DocumentNumber string
	MovementCode   string
	ItemName       string
	Quantity       string
	RefMonth       string
	RefYear        string
	Notes          string
	Attachment     bool // fuerza MovementCode = "Attachment"
}

// AddDraftEntry registra un movimiento en estado draft.
func (s *Service) AddDraftEntry(ctx context.Context, caseID, actor string, in NewEntry) (Entry, error) {
	caseID = strings.TrimSpace(caseID)
	actor = strings.TrimSpace(actor)
	if caseID == "" || actor == "" {
		return Entry{}, ErrInvalidInput
	}
	if !in.Type.Valid() {
		return Entry{}, ErrInvalidType
	}
	if !validAmount(in.Amount) {
		return Entry{}, ErrInvalidAmount
	}

	date, err := s.entryDate(in.Date)
	if err != nil {
		return Entry{}, err
	}

	ctx, span := tracer.Start(ctx, "ledger.AddDraftEntry", trace.WithAttributes(attribute.String("case.id", caseID)))
	defer span.End()

	ok, err := s.cases.Exists(ctx, caseID)
	if err != nil {
		return Entry{}, err
	}
	if !ok {
		return Entry{}, ErrCaseNotFound
	}

	e := Entry{
		ID:             uuid.NewString(),
		CaseID:         caseID,
		Date:           date,
		Type:           in.Type,
		DocumentNumber: strings.TrimSpace(in.DocumentNumber),
		MovementCode:   strings.TrimSpace(in.MovementCode),
		Quantity:       strings.TrimSpace(in.Quantity),
		RefMonth:       strings.TrimSpace(in.RefMonth),
		RefYear:        strings.TrimSpace(in.RefYear),
		Notes:          strings.TrimSpace(in.Notes),
		Responsible:    actor,
		Status:         StatusDraft,
		CreatedAt:      s.now(),
	}
	if in.Attachment {
		e.MovementCode = MovementAttachment
	}
	if !e.Type.IsCredit() {
		e.ItemName = strings.TrimSpace(in.ItemName)
		if e.ItemName == "" {
			e.ItemName = DefaultItemName
		}
	}
	setAmount(&e, in.Amount)

	e.Description = strings.TrimSpace(in.Description)
	if e.Description == "" {
		e.Description = describeEntry(e)
	}

	return s.repo.Create(ctx, e)
}

type EntryPatch struct {
	Date           *string
	Type           *EntryType
	Amount         *decimal.Decimal
	Description    *string // "" = volver a sintetizar
	DocumentNumber *string
	MovementCode   *string
	ItemName       *string
	Quantity       *string
	RefMonth       *string
	RefYear        *string
	Notes          *string
}

// UpdateEntry corrige un movimiento en cualquier estado; el estado no cambia.
func (s *Service) UpdateEntry(ctx context.Context, entryID string, p EntryPatch) (Entry, error) {
	entryID = strings.TrimSpace(entryID)
	if entryID == "" {
		return Entry{}, ErrInvalidInput
	}
	e, err := s.repo.GetByID(ctx, entryID)
	if err != nil {
		return Entry{}, err
	}

	if p.Date != nil {
		d, err := s.entryDate(*p.Date)
		if err != nil {
			return Entry{}, err
		}
		e.Date = d
	}

	// descripción sintetizada antes del patch: se regenera si cambian sus partes
	synthesized := e.Description == describeEntry(e)

	amount := e.Amount()
	if p.Type != nil {
		if !p.Type.Valid() {
			return Entry{}, ErrInvalidType
		}
		e.Type = *p.Type
	}
	if p.Amount != nil {
		if !validAmount(*p.Amount) {
			return Entry{}, ErrInvalidAmount
		}
		amount = *p.Amount
	}
	setAmount(&e, amount)

	setTrimmed(&e.DocumentNumber, p.DocumentNumber)
	setTrimmed(&e.MovementCode, p.MovementCode)
	setTrimmed(&e.ItemName, p.ItemName)
	setTrimmed(&e.Quantity, p.Quantity)
	setTrimmed(&e.RefMonth, p.RefMonth)
	setTrimmed(&e.RefYear, p.RefYear)
	setTrimmed(&e.Notes, p.Notes)

	if e.Type.IsCredit() {
		e.ItemName = ""
	} else if e.ItemName == "" {
		e.ItemName = DefaultItemName
	}

	switch {
	case p.Description != nil:
		e.Description = strings.TrimSpace(*p.Description)
		if e.Description == "" {
			e.Description = describeEntry(e)
		}
	case synthesized:
		e.Description = describeEntry(e)
	}

	if err := s.repo.Update(ctx, e); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// PostAllDrafts lanza todos los borradores del caso en una transacción. Idempotente.
func (s *Service) PostAllDrafts(ctx context.Context, caseID string) (int, error) {
	caseID = strings.TrimSpace(caseID)
	if caseID == "" {
		return 0, ErrInvalidInput
	}

	ctx, span := tracer.Start(ctx, "ledger.PostAllDrafts", trace.WithAttributes(attribute.String("case.id", caseID)))
	defer span.End()

	var posted int
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		ok, err := s.cases.Exists(ctx, caseID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrCaseNotFound
		}
		posted, err = s.repo.PostDrafts(ctx, caseID)
		return err
	})
	if err != nil {
		span.RecordError(err)
		return 0, err
	}

	span.SetAttributes(attribute.Int("ledger.posted", posted))
	s.metrics.AddDraftsPosted(posted)
	s.backups.Trigger("ledger.post_all_drafts")
	return posted, nil
}

// DeleteEntry borra en cualquier estado; el saldo se recalcula en la próxima lectura.
func (s *Service) DeleteEntry(ctx context.Context, entryID string) error {
	entryID = strings.TrimSpace(entryID)
	if entryID == "" {
		return ErrInvalidInput
	}
	return s.repo.Delete(ctx, entryID)
}

func (s *Service) GetEntry(ctx context.Context, entryID string) (Entry, error) {
	entryID = strings.TrimSpace(entryID)
	if entryID == "" {
		return Entry{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, entryID)
}

func (s *Service) GetLedger(ctx context.Context, caseID string) (Ledger, error) {
	caseID = strings.TrimSpace(caseID)
	if caseID == "" {
		return Ledger{}, ErrInvalidInput
	}
	entries, err := s.repo.ListByCase(ctx, caseID)
	if err != nil {
		return Ledger{}, err
	}
	l := Build(entries)
	l.CaseID = caseID
	return l, nil
}

func (s *Service) GetBalance(ctx context.Context, caseID string) (decimal.Decimal, error) {
	l, err := s.GetLedger(ctx, caseID)
	if err != nil {
		return decimal.Zero, err
	}
	return l.Balance, nil
}

// Build separa borradores y lanzados y calcula el saldo acumulado.
// Lanzados: fecha asc, empate por orden de inserción.
func Build(entries []Entry) Ledger {
	l := Ledger{
		Drafts:      make([]Entry, 0),
		Posted:      make([]PostedRow, 0),
		TotalCredit: decimal.Zero,
		TotalDebit:  decimal.Zero,
		Balance:     decimal.Zero,
	}

	posted := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.Status == StatusPosted {
			posted = append(posted, e)
		} else {
			l.Drafts = append(l.Drafts, e)
		}
	}
	sortBySeq(l.Drafts)
	sortBySeq(posted)
	sort.SliceStable(posted, func(i, j int) bool {
		return posted[i].Date.Before(posted[j].Date)
	})

	running := decimal.Zero
	for _, e := range posted {
		running = running.Add(e.Signed())
		l.TotalCredit = l.TotalCredit.Add(e.Credit)
		l.TotalDebit = l.TotalDebit.Add(e.Debit)
		l.Posted = append(l.Posted, PostedRow{Entry: e, Running: running})
	}
	l.Balance = running
	return l
}

// validAmount: positivo y en centavos. Postgres guarda NUMERIC(14,2) y redondearía en silencio.
func validAmount(d decimal.Decimal) bool {
	return d.IsPositive() && d.Equal(d.Round(2))
}

func sortBySeq(es []Entry) {
	sort.SliceStable(es, func(i, j int) bool { return es[i].Seq < es[j].Seq })
}

func (s *Service) entryDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		now := s.now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	d, ok := deadline.ParseDate(v)
	if !ok {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

func setAmount(e *Entry, amount decimal.Decimal) {
	if e.Type.IsCredit() {
		e.Credit, e.Debit = amount, decimal.Zero
		return
	}
	e.Credit, e.Debit = decimal.Zero, amount
}

func setTrimmed(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

func describeEntry(e Entry) string {
	return Describe(e.Type, e.DocumentNumber, e.ItemName, e.Quantity, e.RefMonth, e.RefYear, e.Notes)
}
