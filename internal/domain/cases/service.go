package cases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"case-tracker/internal/platform/tx"
	"case-tracker/internal/ports/clock"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotFound        = errors.New("not found")
	ErrItemsNotAllowed = fmt.Errorf("%w: tracked items only apply to health cases", ErrInvalidInput)
)

type Service struct {
	repo Repository
	tx   tx.Runner
	now  func() time.Time
}

// NewService: c nil = reloj del sistema.
func NewService(repo Repository, runner tx.Runner, c clock.Clock) *Service {
	if c == nil {
		c = clock.System{}
	}
	return &Service{
		repo: repo,
		tx:   runner,
		now:  c.Now,
	}
}

type NewCase struct {
	Number             string
	SubjectName        string
	Judge              string
	RepresentativeName string
	RepresentativeKind string
	Classification     Classification
	Note               string
	Legacy             bool

	Defendants []string
	Items      []ItemInput
}

type ItemInput struct {
	Category         string
	Name             string
	Quantity         string
	Frequency        string
	Location         string
	PrescriptionDate string
	Unnecessary      bool
	Blocked          bool
}

// BuildCase valida el alta y arma el registro sin persistir (fase inicial, ID, timestamps).
func BuildCase(in NewCase, now time.Time) (Case, error) {
	number := FormatNumber(in.Number)
	subject := strings.TrimSpace(in.SubjectName)
	if number == "" || subject == "" {
		return Case{}, ErrInvalidInput
	}

	class := in.Classification
	if class == "" {
		class = ClassificationOther
	}
	if !class.Valid() {
		return Case{}, ErrInvalidInput
	}
	if len(in.Items) > 0 && class != ClassificationHealth {
		return Case{}, ErrItemsNotAllowed
	}

	kind := strings.TrimSpace(in.RepresentativeKind)
	if kind == "" {
		kind = DefaultRepresentativeKind
	}

	return Case{
		ID:                 uuid.NewString(),
		Number:             number,
		SubjectName:        subject,
		Judge:              strings.TrimSpace(in.Judge),
		RepresentativeName: strings.TrimSpace(in.RepresentativeName),
		RepresentativeKind: kind,
		Classification:     class,
		Phase:              PhaseMerits,
		Note:               strings.TrimSpace(in.Note),
		Legacy:             in.Legacy,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

// BuildDefendants ignora nombres vacíos.
func BuildDefendants(caseID string, names []string) []Defendant {
	out := make([]Defendant, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		out = append(out, Defendant{ID: uuid.NewString(), CaseID: caseID, Name: n})
	}
	return out
}

func BuildItems(caseID string, in []ItemInput) ([]TrackedItem, error) {
	out := make([]TrackedItem, 0, len(in))
	for i, it := range in {
		name := strings.TrimSpace(it.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: item %d name required", ErrInvalidInput, i)
		}
		out = append(out, TrackedItem{
			ID:               uuid.NewString(),
			CaseID:           caseID,
			Position:         i,
			Category:         strings.TrimSpace(it.Category),
			Name:             name,
			Quantity:         strings.TrimSpace(it.Quantity),
			Frequency:        strings.TrimSpace(it.Frequency),
			Location:         strings.TrimSpace(it.Location),
			PrescriptionDate: strings.TrimSpace(it.PrescriptionDate),
			Unnecessary:      it.Unnecessary,
			Blocked:          it.Blocked,
		})
	}
	return out, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Case, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Case{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Case, error) {
	if filter.Limit <= 0 || filter.Limit > 500 {
		filter.Limit = 500
	}
	filter.Query = strings.TrimSpace(filter.Query)
	return s.repo.List(ctx, filter)
}

type DetailsPatch struct {
	Number             *string
	SubjectName        *string
	Judge              *string
	RepresentativeName *string
	RepresentativeKind *string
	Classification     *Classification
	Legacy             *bool
}

// UpdateDetails edita los datos de cabecera. Fase, observación y plazo solo cambian vía check-in.
func (s *Service) UpdateDetails(ctx context.Context, id string, p DetailsPatch) (Case, error) {
	c, err := s.GetByID(ctx, id)
	if err != nil {
		return Case{}, err
	}

	if p.Number != nil {
		n := FormatNumber(*p.Number)
		if n == "" {
			return Case{}, ErrInvalidInput
		}
		c.Number = n
	}
	if p.SubjectName != nil {
		v := strings.TrimSpace(*p.SubjectName)
		if v == "" {
			return Case{}, ErrInvalidInput
		}
		c.SubjectName = v
	}
	if p.Judge != nil {
		c.Judge = strings.TrimSpace(*p.Judge)
	}
	if p.RepresentativeName != nil {
		c.RepresentativeName = strings.TrimSpace(*p.RepresentativeName)
	}
	if p.RepresentativeKind != nil {
		c.RepresentativeKind = strings.TrimSpace(*p.RepresentativeKind)
	}
	if p.Classification != nil {
		if !p.Classification.Valid() {
			return Case{}, ErrInvalidInput
		}
		c.Classification = *p.Classification
	}
	if p.Legacy != nil {
		c.Legacy = *p.Legacy
	}

	c.UpdatedAt = s.now()
	if err := s.repo.Update(ctx, c); err != nil {
		return Case{}, err
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidInput
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListDefendants(ctx context.Context, caseID string) ([]Defendant, error) {
	return s.repo.ListDefendants(ctx, caseID)
}

func (s *Service) ListItems(ctx context.Context, caseID string) ([]TrackedItem, error) {
	return s.repo.ListItems(ctx, caseID)
}

// ReplaceDefendants reemplaza el conjunto de demandados en una sola transacción.
func (s *Service) ReplaceDefendants(ctx context.Context, caseID string, names []string) ([]Defendant, error) {
	var out []Defendant
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		c, err := s.GetByID(ctx, caseID)
		if err != nil {
			return err
		}
		out = BuildDefendants(c.ID, names)
		return s.repo.ReplaceDefendants(ctx, c.ID, out)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReplaceTrackedItems reemplaza los ítems fuera de un check-in: no genera entrada de auditoría.
func (s *Service) ReplaceTrackedItems(ctx context.Context, caseID string, in []ItemInput) ([]TrackedItem, error) {
	var out []TrackedItem
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		c, err := s.GetByID(ctx, caseID)
		if err != nil {
			return err
		}
		if !c.TracksItems() {
			return ErrItemsNotAllowed
		}
		items, err := BuildItems(c.ID, in)
		if err != nil {
			return err
		}
		out = items
		return s.repo.ReplaceItems(ctx, c.ID, items)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
