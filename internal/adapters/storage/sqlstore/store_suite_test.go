package sqlstore

import (
	"context"
	"errors"
	"time"

	"case-tracker/internal/domain/audit"
	"case-tracker/internal/domain/cases"
	"case-tracker/internal/domain/ledger"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// storeSuite corre igual contra sqlite y (con -tags integration) contra postgres.
type storeSuite struct {
	suite.Suite

	open  func() *Store
	store *Store

	cases  *CasesRepo
	ledger *LedgerRepo
	audit  *AuditRepo
}

func (s *storeSuite) SetupTest() {
	s.store = s.open()
	s.cases = NewCasesRepo(s.store)
	s.ledger = NewLedgerRepo(s.store)
	s.audit = NewAuditRepo(s.store)
}

var t0 = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func (s *storeSuite) seedCase(id, number, subject string, created time.Time) cases.Case {
	c := cases.Case{
		ID:                 id,
		Number:             number,
		SubjectName:        subject,
		RepresentativeKind: cases.DefaultRepresentativeKind,
		Classification:     cases.ClassificationHealth,
		Phase:              cases.PhaseMerits,
		CachedDeadline:     "15/01/2025",
		CreatedAt:          created,
		UpdatedAt:          created,
	}
	s.Require().NoError(s.cases.Create(context.Background(), c))
	return c
}

func (s *storeSuite) TestCaseRoundTrip() {
	ctx := context.Background()
	want := s.seedCase("c1", "0001234-56.2025.8.26.0100", "Maria Silva", t0)

	got, err := s.cases.GetByID(ctx, "c1")
	s.Require().NoError(err)
	s.Equal(want.Number, got.Number)
	s.Equal(cases.ClassificationHealth, got.Classification)
	s.Equal("15/01/2025", got.CachedDeadline)
	s.True(got.CreatedAt.Equal(t0))

	got.Phase = cases.PhaseAppeal
	got.Legacy = true
	s.Require().NoError(s.cases.Update(ctx, got))

	got, err = s.cases.GetByID(ctx, "c1")
	s.Require().NoError(err)
	s.Equal(cases.PhaseAppeal, got.Phase)
	s.True(got.Legacy)

	_, err = s.cases.GetByID(ctx, "missing")
	s.ErrorIs(err, cases.ErrNotFound)
	s.ErrorIs(s.cases.Update(ctx, cases.Case{ID: "missing"}), cases.ErrNotFound)

	ok, err := s.cases.Exists(ctx, "c1")
	s.Require().NoError(err)
	s.True(ok)
	ok, err = s.cases.Exists(ctx, "missing")
	s.Require().NoError(err)
	s.False(ok)
}

func (s *storeSuite) TestListSearchAndOrder() {
	ctx := context.Background()
	s.seedCase("c1", "0001", "Maria Silva", t0)
	s.seedCase("c2", "0002", "Joao Souza", t0.Add(time.Hour))
	s.seedCase("c3", "0003", "Mario Lima", t0.Add(2*time.Hour))

	all, err := s.cases.List(ctx, cases.ListFilter{})
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal("c3", all[0].ID)

	byName, err := s.cases.List(ctx, cases.ListFilter{Query: "MARI"})
	s.Require().NoError(err)
	s.Len(byName, 2)

	byNumber, err := s.cases.List(ctx, cases.ListFilter{Query: "0002"})
	s.Require().NoError(err)
	s.Require().Len(byNumber, 1)
	s.Equal("c2", byNumber[0].ID)

	limited, err := s.cases.List(ctx, cases.ListFilter{Limit: 2})
	s.Require().NoError(err)
	s.Len(limited, 2)
}

func (s *storeSuite) TestListSearchIsLiteral() {
	ctx := context.Background()
	s.seedCase("c1", "0001", "Ana_Lima", t0)
	s.seedCase("c2", "0002", "AnaXLima", t0.Add(time.Hour))
	s.seedCase("c3", "0003", "100% Saude", t0.Add(2*time.Hour))

	got, err := s.cases.List(ctx, cases.ListFilter{Query: "a_l"})
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal("c1", got[0].ID)

	got, err = s.cases.List(ctx, cases.ListFilter{Query: "0%"})
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal("c3", got[0].ID)

	got, err = s.cases.List(ctx, cases.ListFilter{Query: `\`})
	s.Require().NoError(err)
	s.Empty(got)
}

func (s *storeSuite) TestReplaceSetsAndItemUpdate() {
	ctx := context.Background()
	s.seedCase("c1", "1", "Ana", t0)

	s.Require().NoError(s.cases.ReplaceDefendants(ctx, "c1", []cases.Defendant{
		{ID: "d1", CaseID: "c1", Name: "State"},
		{ID: "d2", CaseID: "c1", Name: "City"},
	}))
	s.Require().NoError(s.cases.ReplaceDefendants(ctx, "c1", []cases.Defendant{
		{ID: "d3", CaseID: "c1", Name: "Health plan"},
	}))
	ds, err := s.cases.ListDefendants(ctx, "c1")
	s.Require().NoError(err)
	s.Require().Len(ds, 1)
	s.Equal("Health plan", ds[0].Name)

	s.Require().NoError(s.cases.ReplaceItems(ctx, "c1", []cases.TrackedItem{
		{ID: "i1", CaseID: "c1", Position: 0, Name: "Insulin", Quantity: "2"},
		{ID: "i2", CaseID: "c1", Position: 1, Name: "Syringe"},
	}))

	s.Require().NoError(s.cases.UpdateItem(ctx, cases.TrackedItem{
		ID: "i2", CaseID: "c1", Position: 1, Name: "Syringe", Location: "Pharmacy", Blocked: true,
	}))
	s.ErrorIs(s.cases.UpdateItem(ctx, cases.TrackedItem{ID: "i2", CaseID: "other"}), cases.ErrNotFound)

	items, err := s.cases.ListItems(ctx, "c1")
	s.Require().NoError(err)
	s.Require().Len(items, 2)
	s.Equal("Insulin", items[0].Name)
	s.True(items[1].Blocked)
	s.Equal("Pharmacy", items[1].Location)
	s.False(items[1].Unnecessary)
}

func (s *storeSuite) TestLedgerEntries() {
	ctx := context.Background()
	s.seedCase("c1", "1", "Ana", t0)

	_, err := s.ledger.Create(ctx, ledger.Entry{ID: "x", CaseID: "missing", Date: t0, Status: ledger.StatusDraft})
	s.ErrorIs(err, ledger.ErrCaseNotFound)

	day := func(d int) time.Time { return time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC) }
	grant, err := s.ledger.Create(ctx, ledger.Entry{
		ID: "e1", CaseID: "c1", Date: day(2), Type: ledger.TypeGrant,
		Credit: decimal.RequireFromString("500.00"), Debit: decimal.Zero,
		Status: ledger.StatusDraft, CreatedAt: t0,
	})
	s.Require().NoError(err)
	s.Equal(int64(1), grant.Seq)

	med, err := s.ledger.Create(ctx, ledger.Entry{
		ID: "e2", CaseID: "c1", Date: day(3), Type: ledger.TypeMedication,
		Credit: decimal.Zero, Debit: decimal.RequireFromString("120.50"),
		ItemName: "Insulin", Status: ledger.StatusDraft, CreatedAt: t0,
	})
	s.Require().NoError(err)
	s.Equal(int64(2), med.Seq)

	got, err := s.ledger.GetByID(ctx, "e2")
	s.Require().NoError(err)
	s.True(got.Debit.Equal(decimal.RequireFromString("120.5")))
	s.True(got.Date.Equal(day(3)))
	s.Equal(ledger.TypeMedication, got.Type)

	got.Notes = "receipt 42"
	s.Require().NoError(s.ledger.Update(ctx, got))

	n, err := s.ledger.PostDrafts(ctx, "c1")
	s.Require().NoError(err)
	s.Equal(2, n)
	n, err = s.ledger.PostDrafts(ctx, "c1")
	s.Require().NoError(err)
	s.Equal(0, n)

	list, err := s.ledger.ListByCase(ctx, "c1")
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal("e1", list[0].ID)
	s.Equal("receipt 42", list[1].Notes)
	s.Equal(ledger.StatusPosted, list[1].Status)

	l := ledger.Build(list)
	s.True(l.Balance.Equal(decimal.RequireFromString("379.50")))

	s.Require().NoError(s.ledger.Delete(ctx, "e2"))
	s.ErrorIs(s.ledger.Delete(ctx, "e2"), ledger.ErrNotFound)
	_, err = s.ledger.GetByID(ctx, "e2")
	s.ErrorIs(err, ledger.ErrNotFound)
}

func (s *storeSuite) TestAuditAppendAndLatest() {
	ctx := context.Background()
	s.seedCase("c1", "1", "Ana", t0)

	_, err := s.audit.Latest(ctx, "c1")
	s.ErrorIs(err, audit.ErrNotFound)

	for i, id := range []string{"a1", "a2", "a3"} {
		e, err := s.audit.Append(ctx, audit.Entry{
			ID: id, CaseID: "c1", RecordedAt: t0.Add(time.Duration(i) * time.Minute),
			Actor: "ana", Deadline: "15/01/2025", NotifyBy: "08/01/2025",
			DiligencePending: i == 2, PendingDesc: "await", ItemsSnapshot: "[]",
		})
		s.Require().NoError(err)
		s.Equal(int64(i+1), e.Seq)
	}

	hist, err := s.audit.ListByCase(ctx, "c1")
	s.Require().NoError(err)
	s.Require().Len(hist, 3)
	s.Equal("a3", hist[0].ID)
	s.True(hist[0].DiligencePending)

	last, err := s.audit.Latest(ctx, "c1")
	s.Require().NoError(err)
	s.Equal("a3", last.ID)
	s.Equal("08/01/2025", last.NotifyBy)
}

func (s *storeSuite) TestDeleteCascades() {
	ctx := context.Background()
	s.seedCase("c1", "1", "Ana", t0)

	s.Require().NoError(s.cases.ReplaceDefendants(ctx, "c1", []cases.Defendant{{ID: "d1", CaseID: "c1", Name: "State"}}))
	s.Require().NoError(s.cases.ReplaceItems(ctx, "c1", []cases.TrackedItem{{ID: "i1", CaseID: "c1", Name: "Insulin"}}))
	_, err := s.ledger.Create(ctx, ledger.Entry{ID: "e1", CaseID: "c1", Date: t0, Type: ledger.TypeGrant,
		Credit: decimal.NewFromInt(1), Debit: decimal.Zero, Status: ledger.StatusDraft, CreatedAt: t0})
	s.Require().NoError(err)
	_, err = s.audit.Append(ctx, audit.Entry{ID: "a1", CaseID: "c1", RecordedAt: t0, Actor: "ana", ItemsSnapshot: "[]"})
	s.Require().NoError(err)

	s.Require().NoError(s.cases.Delete(ctx, "c1"))
	s.ErrorIs(s.cases.Delete(ctx, "c1"), cases.ErrNotFound)

	ds, _ := s.cases.ListDefendants(ctx, "c1")
	items, _ := s.cases.ListItems(ctx, "c1")
	entries, _ := s.ledger.ListByCase(ctx, "c1")
	hist, _ := s.audit.ListByCase(ctx, "c1")
	s.Empty(ds)
	s.Empty(items)
	s.Empty(entries)
	s.Empty(hist)
}

func (s *storeSuite) TestRunInTxRollsBack() {
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.store.RunInTx(ctx, func(ctx context.Context) error {
		s.Require().NoError(s.cases.Create(ctx, cases.Case{
			ID: "c1", Number: "1", SubjectName: "Ana", Classification: cases.ClassificationOther,
			CreatedAt: t0, UpdatedAt: t0,
		}))
		_, err := s.audit.Append(ctx, audit.Entry{ID: "a1", CaseID: "c1", RecordedAt: t0, Actor: "ana", ItemsSnapshot: "[]"})
		s.Require().NoError(err)
		return boom
	})
	s.ErrorIs(err, boom)

	ok, err := s.cases.Exists(ctx, "c1")
	s.Require().NoError(err)
	s.False(ok)
}
