package audit

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"case-tracker/internal/domain/cases"
	"case-tracker/internal/domain/deadline"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput              = errors.New("invalid input")
	ErrNotFound                  = errors.New("not found")
	ErrMissingPendingDescription = fmt.Errorf("%w: pending issue requires a description", ErrInvalidInput)
	ErrMissingResponsible        = fmt.Errorf("%w: responsible is required", ErrInvalidInput)
	ErrUnknownItem               = fmt.Errorf("%w: item does not belong to case", ErrInvalidInput)
)

const (
	RoutineSummary     = "Routine check-in"
	CaseCreatedSummary = "Case Created"
)

type DeadlineInput struct {
	BaseDate       string // dd/mm/yyyy; vacío = hoy
	ManualOverride string // dd/mm/yyyy; gana si es válido
}

// CheckIn es la entrada de una verificación.
type CheckIn struct {
	CaseID string
	Phase  string  // vacío = mantiene la fase actual
	Note   *string // nil = mantiene la observación fija
	Actor  string

	DiligenceDone     bool
	DiligenceDoneDesc string

	DiligencePending bool
	PendingDesc      string

	Deadline DeadlineInput

	// ItemEdits se aplican antes del snapshot, así la foto ya refleja la edición.
	ItemEdits []ItemEdit
}

// ItemEdit corrige los campos operativos de un ítem existente (por ID).
type ItemEdit struct {
	ID               string
	Quantity         *string
	Location         *string
	PrescriptionDate *string
	Unnecessary      *bool
	Blocked          *bool
}

// Apply devuelve el ítem con la edición aplicada.
func (e ItemEdit) Apply(it cases.TrackedItem) cases.TrackedItem {
	if e.Quantity != nil {
		it.Quantity = strings.TrimSpace(*e.Quantity)
	}
	if e.Location != nil {
		it.Location = strings.TrimSpace(*e.Location)
	}
	if e.PrescriptionDate != nil {
		it.PrescriptionDate = strings.TrimSpace(*e.PrescriptionDate)
	}
	if e.Unnecessary != nil {
		it.Unnecessary = *e.Unnecessary
	}
	if e.Blocked != nil {
		it.Blocked = *e.Blocked
	}
	return it
}

// Validate corre antes de tocar el storage.
func (c CheckIn) Validate() error {
	if strings.TrimSpace(c.CaseID) == "" {
		return ErrInvalidInput
	}
	if c.DiligencePending && strings.TrimSpace(c.PendingDesc) == "" {
		return ErrMissingPendingDescription
	}
	if strings.TrimSpace(c.Actor) == "" {
		return ErrMissingResponsible
	}
	for _, e := range c.ItemEdits {
		if strings.TrimSpace(e.ID) == "" {
			return ErrUnknownItem
		}
	}
	return nil
}

// Summary: "[Action] <desc>" si hubo diligencia, si no "Routine check-in".
func Summary(diligenceDone bool, desc string) string {
	if diligenceDone {
		return "[Action] " + strings.TrimSpace(desc)
	}
	return RoutineSummary
}

// NewEntry arma la entrada de una verificación ya validada.
func NewEntry(c CheckIn, phase string, res deadline.Result, snapshot string, now time.Time) Entry {
	return Entry{
		ID:                uuid.NewString(),
		CaseID:            strings.TrimSpace(c.CaseID),
		RecordedAt:        now,
		Phase:             phase,
		Actor:             strings.TrimSpace(c.Actor),
		DiligenceDone:     c.DiligenceDone,
		DiligenceDoneDesc: strings.TrimSpace(c.DiligenceDoneDesc),
		DiligencePending:  c.DiligencePending,
		PendingDesc:       strings.TrimSpace(c.PendingDesc),
		Deadline:          res.Deadline,
		NotifyBy:          res.NotifyBy,
		Summary:           Summary(c.DiligenceDone, c.DiligenceDoneDesc),
		ItemsSnapshot:     snapshot,
	}
}

// InitialEntry es la primera entrada de un caso recién creado.
func InitialEntry(caseID, actor string, res deadline.Result, snapshot string, now time.Time) Entry {
	return Entry{
		ID:            uuid.NewString(),
		CaseID:        caseID,
		RecordedAt:    now,
		Phase:         cases.PhaseInitialRegistration,
		Actor:         strings.TrimSpace(actor),
		Deadline:      res.Deadline,
		NotifyBy:      res.NotifyBy,
		Summary:       CaseCreatedSummary,
		ItemsSnapshot: snapshot,
	}
}
