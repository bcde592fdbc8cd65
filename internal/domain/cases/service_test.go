package cases

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"case-tracker/internal/ports/clock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	byID       map[string]Case
	defendants map[string][]Defendant
	items      map[string][]TrackedItem
}

func newTestRepo() *testRepo {
	return &testRepo{
		byID:       map[string]Case{},
		defendants: map[string][]Defendant{},
		items:      map[string][]TrackedItem{},
	}
}

func (r *testRepo) Create(ctx context.Context, c Case) error {
	if _, ok := r.byID[c.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.byID[c.ID] = c
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Case, error) {
	c, ok := r.byID[id]
	if !ok {
		return Case{}, ErrNotFound
	}
	return c, nil
}

func (r *testRepo) List(ctx context.Context, filter ListFilter) ([]Case, error) {
	out := make([]Case, 0)
	for _, c := range r.byID {
		if filter.Query != "" && !strings.Contains(c.Number+c.SubjectName, filter.Query) {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubjectName < out[j].SubjectName })
	return out, nil
}

func (r *testRepo) Update(ctx context.Context, c Case) error {
	if _, ok := r.byID[c.ID]; !ok {
		return ErrNotFound
	}
	r.byID[c.ID] = c
	return nil
}

func (r *testRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return ErrNotFound
	}
	delete(r.byID, id)
	delete(r.defendants, id)
	delete(r.items, id)
	return nil
}

func (r *testRepo) ReplaceDefendants(ctx context.Context, caseID string, ds []Defendant) error {
	r.defendants[caseID] = append([]Defendant(nil), ds...)
	return nil
}

func (r *testRepo) ListDefendants(ctx context.Context, caseID string) ([]Defendant, error) {
	return append([]Defendant(nil), r.defendants[caseID]...), nil
}

func (r *testRepo) ReplaceItems(ctx context.Context, caseID string, items []TrackedItem) error {
	r.items[caseID] = append([]TrackedItem(nil), items...)
	return nil
}

func (r *testRepo) ListItems(ctx context.Context, caseID string) ([]TrackedItem, error) {
	return append([]TrackedItem(nil), r.items[caseID]...), nil
}

func (r *testRepo) UpdateItem(ctx context.Context, it TrackedItem) error {
	for i, cur := range r.items[it.CaseID] {
		if cur.ID == it.ID {
			r.items[it.CaseID][i] = it
			return nil
		}
	}
	return ErrNotFound
}

// passthrough: el fake no necesita rollback real.
type inlineTx struct{ calls int }

func (t *inlineTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.calls++
	return fn(ctx)
}

var t0 = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

func newTestService() (*Service, *testRepo, *inlineTx) {
	repo := newTestRepo()
	runner := &inlineTx{}
	svc := NewService(repo, runner, clock.Fixed(t0))
	return svc, repo, runner
}

func seedCase(t *testing.T, repo *testRepo, class Classification) Case {
	t.Helper()
	c, err := BuildCase(NewCase{Number: "1234567", SubjectName: "Maria", Classification: class}, t0)
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), c))
	return c
}

// -------------------------
// Tests
// -------------------------

func TestBuildCase_Defaults(t *testing.T) {
	c, err := BuildCase(NewCase{
		Number:      "00012345620248260100",
		SubjectName: "  João  ",
	}, t0)
	require.NoError(t, err)

	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "0001234-56.2024.8.26.0100", c.Number)
	assert.Equal(t, "João", c.SubjectName)
	assert.Equal(t, ClassificationOther, c.Classification)
	assert.Equal(t, PhaseMerits, c.Phase)
	assert.Equal(t, DefaultRepresentativeKind, c.RepresentativeKind)
	assert.Empty(t, c.CachedDeadline)
	assert.Equal(t, t0, c.CreatedAt)
}

func TestBuildCase_Validation(t *testing.T) {
	_, err := BuildCase(NewCase{Number: "", SubjectName: "x"}, t0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = BuildCase(NewCase{Number: "abc", SubjectName: "x"}, t0)
	assert.ErrorIs(t, err, ErrInvalidInput, "number without digits")

	_, err = BuildCase(NewCase{Number: "1", SubjectName: "  "}, t0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = BuildCase(NewCase{Number: "1", SubjectName: "x", Classification: "tax"}, t0)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = BuildCase(NewCase{
		Number: "1", SubjectName: "x", Classification: ClassificationCivil,
		Items: []ItemInput{{Name: "Insulin"}},
	}, t0)
	assert.ErrorIs(t, err, ErrItemsNotAllowed)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestBuildItems_KeepsOrderAndRequiresName(t *testing.T) {
	items, err := BuildItems("c1", []ItemInput{{Name: "A"}, {Name: " B ", Blocked: true}})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, 0, items[0].Position)
	assert.Equal(t, "B", items[1].Name)
	assert.True(t, items[1].Blocked)
	assert.Equal(t, "c1", items[1].CaseID)

	_, err = BuildItems("c1", []ItemInput{{Name: ""}})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateDetails_PatchesOnlyGivenFields(t *testing.T) {
	svc, repo, _ := newTestService()
	c := seedCase(t, repo, ClassificationCivil)

	judge := "Dr. Silva"
	class := ClassificationHealth
	updated, err := svc.UpdateDetails(context.Background(), c.ID, DetailsPatch{
		Judge:          &judge,
		Classification: &class,
	})
	require.NoError(t, err)
	assert.Equal(t, "Dr. Silva", updated.Judge)
	assert.Equal(t, ClassificationHealth, updated.Classification)
	assert.Equal(t, c.SubjectName, updated.SubjectName)
	assert.Equal(t, c.Phase, updated.Phase)

	stored, _ := repo.GetByID(context.Background(), c.ID)
	assert.Equal(t, updated, stored)

	empty := " "
	_, err = svc.UpdateDetails(context.Background(), c.ID, DetailsPatch{SubjectName: &empty})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.UpdateDetails(context.Background(), "missing", DetailsPatch{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReplaceDefendants_ReplacesWholeSet(t *testing.T) {
	svc, repo, runner := newTestService()
	c := seedCase(t, repo, ClassificationCivil)
	ctx := context.Background()

	_, err := svc.ReplaceDefendants(ctx, c.ID, []string{"State", "City"})
	require.NoError(t, err)

	got, err := svc.ReplaceDefendants(ctx, c.ID, []string{"Health Plan", ""})
	require.NoError(t, err)
	require.Len(t, got, 1)

	listed, _ := svc.ListDefendants(ctx, c.ID)
	require.Len(t, listed, 1)
	assert.Equal(t, "Health Plan", listed[0].Name)
	assert.Equal(t, 2, runner.calls)
}

func TestReplaceTrackedItems_OnlyHealthCases(t *testing.T) {
	svc, repo, _ := newTestService()
	ctx := context.Background()

	civil := seedCase(t, repo, ClassificationCivil)
	_, err := svc.ReplaceTrackedItems(ctx, civil.ID, []ItemInput{{Name: "Insulin"}})
	assert.ErrorIs(t, err, ErrItemsNotAllowed)

	health := seedCase(t, repo, ClassificationHealth)
	items, err := svc.ReplaceTrackedItems(ctx, health.ID, []ItemInput{{Name: "Insulin", Quantity: "2"}})
	require.NoError(t, err)
	require.Len(t, items, 1)

	listed, _ := svc.ListItems(ctx, health.ID)
	assert.Equal(t, items, listed)

	_, err = svc.ReplaceTrackedItems(ctx, "missing", nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDelete(t *testing.T) {
	svc, repo, _ := newTestService()
	c := seedCase(t, repo, ClassificationCivil)

	require.NoError(t, svc.Delete(context.Background(), c.ID))
	_, err := svc.GetByID(context.Background(), c.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.Delete(context.Background(), " "), ErrInvalidInput)
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "", FormatNumber(""))
	assert.Equal(t, "123", FormatNumber("1-2.3"))
	assert.Equal(t, "1234567890123456", FormatNumber("1234567890123456"))
	assert.Equal(t, "1234567-89.0123.4.56.7", FormatNumber("12345678901234567"))
	assert.Equal(t, "0001234-56.2024.8.26.0100", FormatNumber("0001234-56.2024.8.26.0100"))
	// máximo 20 dígitos
	assert.Equal(t, "0001234-56.2024.8.26.0100", FormatNumber("000123456202482601009999"))
}
