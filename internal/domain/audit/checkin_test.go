package audit

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"case-tracker/internal/domain/cases"
	"case-tracker/internal/domain/deadline"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckInValidate(t *testing.T) {
	ok := CheckIn{CaseID: "c1", Actor: "ana"}
	require.NoError(t, ok.Validate())

	pending := ok
	pending.DiligencePending = true
	pending.PendingDesc = "   "
	assert.ErrorIs(t, pending.Validate(), ErrMissingPendingDescription)

	pending.PendingDesc = "waiting for the pharmacy"
	assert.NoError(t, pending.Validate())

	noActor := ok
	noActor.Actor = " "
	assert.ErrorIs(t, noActor.Validate(), ErrMissingResponsible)
	assert.ErrorIs(t, noActor.Validate(), ErrInvalidInput)

	assert.ErrorIs(t, CheckIn{Actor: "ana"}.Validate(), ErrInvalidInput)
}

func TestSummary(t *testing.T) {
	assert.Equal(t, "[Action] filed petition", Summary(true, " filed petition "))
	assert.Equal(t, RoutineSummary, Summary(false, "ignored"))
}

func TestNewEntry_CopiesCheckIn(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	res := deadline.Result{Deadline: "15/01/2025", NotifyBy: "08/01/2025"}

	e := NewEntry(CheckIn{
		CaseID:            "c1",
		Actor:             " ana ",
		DiligenceDone:     true,
		DiligenceDoneDesc: "called court",
		DiligencePending:  true,
		PendingDesc:       "await reply",
	}, cases.PhaseAppeal, res, "[]", now)

	assert.NotEmpty(t, e.ID)
	assert.Equal(t, "ana", e.Actor)
	assert.Equal(t, cases.PhaseAppeal, e.Phase)
	assert.Equal(t, "15/01/2025", e.Deadline)
	assert.Equal(t, "08/01/2025", e.NotifyBy)
	assert.Equal(t, "[Action] called court", e.Summary)
	assert.Equal(t, "await reply", e.PendingDesc)
	assert.Equal(t, now, e.RecordedAt)

	first := InitialEntry("c1", "ana", res, "[]", now)
	assert.Equal(t, CaseCreatedSummary, first.Summary)
	assert.Equal(t, cases.PhaseInitialRegistration, first.Phase)
}

func TestJSONSnapshot(t *testing.T) {
	s, err := JSONSnapshot{}.Serialize(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", s)

	s, err = JSONSnapshot{}.Serialize([]cases.TrackedItem{{ID: "i1", Name: "Insulin", Quantity: "2", Blocked: true}})
	require.NoError(t, err)

	var got []map[string]any
	require.NoError(t, json.Unmarshal([]byte(s), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Insulin", got[0]["name"])
	assert.Equal(t, true, got[0]["blocked"])
	assert.Equal(t, false, got[0]["unnecessary"])
}

type historyRepo struct{ entries []Entry }

func (r *historyRepo) Append(ctx context.Context, e Entry) (Entry, error) {
	e.Seq = int64(len(r.entries) + 1)
	r.entries = append(r.entries, e)
	return e, nil
}

func (r *historyRepo) ListByCase(ctx context.Context, caseID string) ([]Entry, error) {
	out := make([]Entry, 0)
	for i := len(r.entries) - 1; i >= 0; i-- {
		if r.entries[i].CaseID == caseID {
			out = append(out, r.entries[i])
		}
	}
	return out, nil
}

func (r *historyRepo) Latest(ctx context.Context, caseID string) (Entry, error) {
	l, _ := r.ListByCase(ctx, caseID)
	if len(l) == 0 {
		return Entry{}, ErrNotFound
	}
	return l[0], nil
}

func TestService_History(t *testing.T) {
	repo := &historyRepo{}
	svc := NewService(repo)
	ctx := context.Background()

	_, _ = repo.Append(ctx, Entry{ID: "a", CaseID: "c1"})
	_, _ = repo.Append(ctx, Entry{ID: "b", CaseID: "c1"})
	_, _ = repo.Append(ctx, Entry{ID: "x", CaseID: "c2"})

	h, err := svc.GetHistory(ctx, "c1")
	require.NoError(t, err)
	require.Len(t, h, 2)
	assert.Equal(t, "b", h[0].ID)

	latest, err := svc.Latest(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "b", latest.ID)

	_, err = svc.Latest(ctx, "none")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.GetHistory(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestItemEdit_ApplyOnlyTouchesSetFields(t *testing.T) {
	it := cases.TrackedItem{ID: "i1", Name: "Insulin", Quantity: "2", Location: "Home", Blocked: true}

	qty := " 3 "
	unblocked := false
	got := ItemEdit{ID: "i1", Quantity: &qty, Blocked: &unblocked}.Apply(it)

	assert.Equal(t, "3", got.Quantity)
	assert.False(t, got.Blocked)
	assert.Equal(t, "Home", got.Location)
	assert.Equal(t, "Insulin", got.Name)
}
