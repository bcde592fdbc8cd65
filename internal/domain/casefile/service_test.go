package casefile

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"case-tracker/internal/adapters/storage/memory"
	"case-tracker/internal/domain/audit"
	"case-tracker/internal/domain/cases"
	"case-tracker/internal/domain/deadline"
	"case-tracker/internal/domain/ledger"
	"case-tracker/internal/ports/clock"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTrigger struct {
	mu      sync.Mutex
	reasons []string
}

func (r *recordingTrigger) Trigger(reason string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reasons = append(r.reasons, reason)
}

// failingAudit deja pasar las primeras `ok` entradas y luego falla.
type failingAudit struct {
	audit.Repository
	ok int
}

func (f *failingAudit) Append(ctx context.Context, e audit.Entry) (audit.Entry, error) {
	if f.ok <= 0 {
		return audit.Entry{}, errors.New("disk full")
	}
	f.ok--
	return f.Repository.Append(ctx, e)
}

type fixture struct {
	svc     *Service
	store   *memory.Store
	cases   *memory.CaseRepo
	audit   audit.Repository
	ledger  *ledger.Service
	backups *recordingTrigger
}

// 01/01/2025 es miércoles.
var jan1 = time.Date(2025, 1, 1, 10, 30, 0, 0, time.UTC)

func newFixture(t *testing.T, now time.Time, wrapAudit func(audit.Repository) audit.Repository) fixture {
	t.Helper()

	store := memory.NewStore()
	caseRepo := memory.NewCaseRepo(store)
	auditRepo := memory.NewAuditRepo(store)
	if wrapAudit != nil {
		auditRepo = wrapAudit(auditRepo)
	}
	led := ledger.NewService(memory.NewLedgerRepo(store), caseRepo, store, nil, nil, clock.Fixed(now))
	trig := &recordingTrigger{}

	svc := NewService(Deps{
		Tx:       store,
		Cases:    caseRepo,
		Audit:    auditRepo,
		Balances: led,
		Clock:    clock.Fixed(now),
		Backups:  trig,
	})
	return fixture{svc: svc, store: store, cases: caseRepo, audit: auditRepo, ledger: led, backups: trig}
}

func healthCase() cases.NewCase {
	return cases.NewCase{
		Number:         "00012345620258260100",
		SubjectName:    "Maria Silva",
		Classification: cases.ClassificationHealth,
		Defendants:     []string{"State of São Paulo", "  "},
		Items: []cases.ItemInput{
			{Category: "Medication", Name: "Insulin", Quantity: "2"},
			{Category: "Supply", Name: "Syringe", Quantity: "100"},
		},
	}
}

func TestCreateCase_FirstDeadlineAndInitialEntry(t *testing.T) {
	f := newFixture(t, jan1, nil)
	ctx := context.Background()

	c, err := f.svc.CreateCase(ctx, "ana", healthCase())
	require.NoError(t, err)
	assert.Equal(t, "15/01/2025", c.CachedDeadline)
	assert.Equal(t, "0001234-56.2025.8.26.0100", c.Number)

	stored, err := f.cases.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "15/01/2025", stored.CachedDeadline)

	ds, err := f.cases.ListDefendants(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, ds, 1)

	items, err := f.cases.ListItems(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, items, 2)

	first, err := f.audit.Latest(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, audit.CaseCreatedSummary, first.Summary)
	assert.Equal(t, cases.PhaseInitialRegistration, first.Phase)
	assert.Equal(t, "ana", first.Actor)
	assert.Equal(t, "15/01/2025", first.Deadline)
	assert.Equal(t, "08/01/2025", first.NotifyBy)
	assert.Contains(t, first.ItemsSnapshot, "Insulin")

	assert.Equal(t, []string{"case.create"}, f.backups.reasons)
}

func TestCreateCase_Rejections(t *testing.T) {
	f := newFixture(t, jan1, nil)
	ctx := context.Background()

	_, err := f.svc.CreateCase(ctx, " ", healthCase())
	assert.ErrorIs(t, err, audit.ErrMissingResponsible)

	civil := healthCase()
	civil.Classification = cases.ClassificationCivil
	_, err = f.svc.CreateCase(ctx, "ana", civil)
	assert.ErrorIs(t, err, cases.ErrItemsNotAllowed)

	list, err := f.cases.List(ctx, cases.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Empty(t, f.backups.reasons)
}

func TestCreateCase_RollsBackWhenAuditFails(t *testing.T) {
	f := newFixture(t, jan1, func(r audit.Repository) audit.Repository {
		return &failingAudit{Repository: r}
	})
	ctx := context.Background()

	_, err := f.svc.CreateCase(ctx, "ana", healthCase())
	require.Error(t, err)

	list, err := f.cases.List(ctx, cases.ListFilter{})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.Empty(t, f.backups.reasons)
}

func TestRecordCheckIn_UpdatesCaseAndMatchesLatestEntry(t *testing.T) {
	f := newFixture(t, jan1, nil)
	ctx := context.Background()

	c, err := f.svc.CreateCase(ctx, "ana", healthCase())
	require.NoError(t, err)

	note := "  keep an eye on the pharmacy  "
	e, err := f.svc.RecordCheckIn(ctx, audit.CheckIn{
		CaseID:            c.ID,
		Phase:             cases.PhaseEnforcement,
		Note:              &note,
		Actor:             "bruno",
		DiligenceDone:     true,
		DiligenceDoneDesc: "filed petition",
		Deadline:          audit.DeadlineInput{ManualOverride: "20/02/2025"},
	})
	require.NoError(t, err)
	assert.Equal(t, "20/02/2025", e.Deadline)
	assert.Equal(t, "13/02/2025", e.NotifyBy)
	assert.Equal(t, "[Action] filed petition", e.Summary)

	stored, err := f.cases.GetByID(ctx, c.ID)
	require.NoError(t, err)
	latest, err := f.audit.Latest(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, latest.Deadline, stored.CachedDeadline)
	assert.Equal(t, cases.PhaseEnforcement, stored.Phase)
	assert.Equal(t, "keep an eye on the pharmacy", stored.Note)

	// Fase vacía y nota nil mantienen lo anterior; base en sábado corre al lunes.
	e, err = f.svc.RecordCheckIn(ctx, audit.CheckIn{
		CaseID:   c.ID,
		Actor:    "bruno",
		Deadline: audit.DeadlineInput{BaseDate: "04/01/2025"},
	})
	require.NoError(t, err)
	assert.Equal(t, "20/01/2025", e.Deadline)
	assert.Equal(t, cases.PhaseEnforcement, e.Phase)
	assert.Equal(t, audit.RoutineSummary, e.Summary)

	stored, err = f.cases.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "20/01/2025", stored.CachedDeadline)
	assert.Equal(t, "keep an eye on the pharmacy", stored.Note)

	hist, err := f.audit.ListByCase(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, hist, 3)

	assert.Equal(t, []string{"case.create", "case.checkin", "case.checkin"}, f.backups.reasons)
}

func TestRecordCheckIn_PendingWithoutDescriptionPersistsNothing(t *testing.T) {
	f := newFixture(t, jan1, nil)
	ctx := context.Background()

	c, err := f.svc.CreateCase(ctx, "ana", healthCase())
	require.NoError(t, err)

	_, err = f.svc.RecordCheckIn(ctx, audit.CheckIn{
		CaseID:           c.ID,
		Phase:            cases.PhaseAppeal,
		Actor:            "ana",
		DiligencePending: true,
		PendingDesc:      "  ",
	})
	require.ErrorIs(t, err, audit.ErrMissingPendingDescription)

	hist, err := f.audit.ListByCase(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, hist, 1)

	stored, err := f.cases.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, cases.PhaseMerits, stored.Phase)
}

func TestRecordCheckIn_ItemEditsInSnapshot(t *testing.T) {
	f := newFixture(t, jan1, nil)
	ctx := context.Background()

	c, err := f.svc.CreateCase(ctx, "ana", healthCase())
	require.NoError(t, err)
	items, err := f.cases.ListItems(ctx, c.ID)
	require.NoError(t, err)

	blocked := true
	loc := "Central pharmacy"
	_, err = f.svc.RecordCheckIn(ctx, audit.CheckIn{
		CaseID:    c.ID,
		Actor:     "ana",
		ItemEdits: []audit.ItemEdit{{ID: items[0].ID, Blocked: &blocked, Location: &loc}},
	})
	require.NoError(t, err)

	items, err = f.cases.ListItems(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, items[0].Blocked)
	assert.Equal(t, "Central pharmacy", items[0].Location)

	latest, err := f.audit.Latest(ctx, c.ID)
	require.NoError(t, err)
	assert.Contains(t, latest.ItemsSnapshot, "Central pharmacy")
}

func TestRecordCheckIn_RollsBackItemEditsOnFailure(t *testing.T) {
	// la entrada inicial pasa, la verificación falla al escribir auditoría
	f := newFixture(t, jan1, func(r audit.Repository) audit.Repository {
		return &failingAudit{Repository: r, ok: 1}
	})
	ctx := context.Background()

	c, err := f.svc.CreateCase(ctx, "ana", healthCase())
	require.NoError(t, err)
	items, err := f.cases.ListItems(ctx, c.ID)
	require.NoError(t, err)

	blocked := true
	_, err = f.svc.RecordCheckIn(ctx, audit.CheckIn{
		CaseID:    c.ID,
		Phase:     cases.PhaseAppeal,
		Actor:     "ana",
		ItemEdits: []audit.ItemEdit{{ID: items[0].ID, Blocked: &blocked}},
		Deadline:  audit.DeadlineInput{ManualOverride: "01/03/2025"},
	})
	require.Error(t, err)

	items, err = f.cases.ListItems(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, items[0].Blocked)

	stored, err := f.cases.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "15/01/2025", stored.CachedDeadline)
	assert.Equal(t, cases.PhaseMerits, stored.Phase)
}

func TestRecordCheckIn_UnknownItemAndCase(t *testing.T) {
	f := newFixture(t, jan1, nil)
	ctx := context.Background()

	c, err := f.svc.CreateCase(ctx, "ana", healthCase())
	require.NoError(t, err)

	blocked := true
	_, err = f.svc.RecordCheckIn(ctx, audit.CheckIn{
		CaseID:    c.ID,
		Actor:     "ana",
		ItemEdits: []audit.ItemEdit{{ID: "not-an-item", Blocked: &blocked}},
	})
	assert.ErrorIs(t, err, audit.ErrUnknownItem)

	_, err = f.svc.RecordCheckIn(ctx, audit.CheckIn{CaseID: "missing", Actor: "ana"})
	assert.ErrorIs(t, err, cases.ErrNotFound)

	hist, err := f.audit.ListByCase(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, hist, 1)
}

func TestRecordCheckIn_ItemEditsRejectedForNonHealth(t *testing.T) {
	f := newFixture(t, jan1, nil)
	ctx := context.Background()

	in := healthCase()
	in.Classification = cases.ClassificationFamily
	in.Items = nil
	c, err := f.svc.CreateCase(ctx, "ana", in)
	require.NoError(t, err)

	blocked := true
	_, err = f.svc.RecordCheckIn(ctx, audit.CheckIn{
		CaseID:    c.ID,
		Actor:     "ana",
		ItemEdits: []audit.ItemEdit{{ID: "x", Blocked: &blocked}},
	})
	assert.ErrorIs(t, err, cases.ErrItemsNotAllowed)
}

func TestOverview_BalanceAndLabel(t *testing.T) {
	f := newFixture(t, jan1, nil)
	ctx := context.Background()

	c, err := f.svc.CreateCase(ctx, "ana", healthCase())
	require.NoError(t, err)

	_, err = f.ledger.AddDraftEntry(ctx, c.ID, "ana", ledger.NewEntry{Date: "02/01/2025", Type: ledger.TypeGrant, Amount: decimal.NewFromInt(500)})
	require.NoError(t, err)
	_, err = f.ledger.PostAllDrafts(ctx, c.ID)
	require.NoError(t, err)
	// draft no cuenta para el saldo
	_, err = f.ledger.AddDraftEntry(ctx, c.ID, "ana", ledger.NewEntry{Date: "03/01/2025", Type: ledger.TypeMedication, Amount: decimal.NewFromInt(120)})
	require.NoError(t, err)

	ov, err := f.svc.Overview(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, ov.Balance.Equal(decimal.NewFromInt(500)))
	assert.Equal(t, deadline.SeverityOK, ov.Severity)
	assert.Equal(t, deadline.LabelOnTrack, ov.Label)
	require.NotNil(t, ov.LastCheckIn)
	assert.Equal(t, audit.CaseCreatedSummary, ov.LastCheckIn.Summary)
	assert.Len(t, ov.Items, 2)

	_, err = f.svc.Overview(ctx, "missing")
	assert.ErrorIs(t, err, cases.ErrNotFound)
}

func TestDashboard_LabelsPerCase(t *testing.T) {
	f := newFixture(t, jan1, nil)
	ctx := context.Background()

	c, err := f.svc.CreateCase(ctx, "ana", healthCase())
	require.NoError(t, err)

	other := healthCase()
	other.Number = "999"
	other.SubjectName = "João Souza"
	other.Items = nil
	d, err := f.svc.CreateCase(ctx, "ana", other)
	require.NoError(t, err)
	_, err = f.svc.RecordCheckIn(ctx, audit.CheckIn{CaseID: d.ID, Actor: "ana", Deadline: audit.DeadlineInput{ManualOverride: "01/01/2025"}})
	require.NoError(t, err)

	rows, err := f.svc.Dashboard(ctx, cases.ListFilter{})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byID := map[string]DashboardRow{}
	for _, r := range rows {
		byID[r.Case.ID] = r
	}
	assert.Equal(t, deadline.LabelOnTrack, byID[c.ID].Label)
	require.NotNil(t, byID[c.ID].DaysLeft)
	assert.Equal(t, 14, *byID[c.ID].DaysLeft)
	assert.Equal(t, deadline.LabelDueToday, byID[d.ID].Label)

	rows, err = f.svc.Dashboard(ctx, cases.ListFilter{Query: "joão"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, d.ID, rows[0].Case.ID)
}
