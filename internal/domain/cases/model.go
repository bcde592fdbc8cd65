package cases

import "time"

type Case struct {
	ID     string
	Number string // formato CNJ cuando hay dígitos suficientes

	SubjectName string
	Judge       string

	RepresentativeName string
	RepresentativeKind string

	Classification Classification
	Phase          string
	Note           string

	// CachedDeadline replica el plazo de la última entrada de auditoría (dd/mm/yyyy o vacío).
	CachedDeadline string

	Legacy bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (c Case) TracksItems() bool {
	return c.Classification == ClassificationHealth
}

type Defendant struct {
	ID     string
	CaseID string
	Name   string
}

type TrackedItem struct {
	ID       string
	CaseID   string
	Position int

	Category         string
	Name             string
	Quantity         string
	Frequency        string
	Location         string
	PrescriptionDate string

	Unnecessary bool
	Blocked     bool
}
