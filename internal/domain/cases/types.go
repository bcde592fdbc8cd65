package cases

type Classification string

const (
	ClassificationCivil  Classification = "civil"
	ClassificationHealth Classification = "health"
	ClassificationFamily Classification = "family"
	ClassificationOther  Classification = "other"
)

func (c Classification) Valid() bool {
	switch c {
	case ClassificationCivil, ClassificationHealth, ClassificationFamily, ClassificationOther:
		return true
	default:
		return false
	}
}

// Fases: vocabulario abierto. Estas son solo sugerencias para la UI; no se valida transición.
const (
	PhaseMerits              = "Investigation/Merits"
	PhaseEnforcement         = "Post-Judgment Enforcement"
	PhaseAppeal              = "Appeal"
	PhaseArchived            = "Archived"
	PhaseStayedPendingAppeal = "Stayed Pending Appeal"
	PhaseAwaitingFinality    = "Judged–Awaiting Finality"
	PhaseProvisionalEnforce  = "Provisional Enforcement"
	PhaseInterlocutoryAppeal = "Interlocutory Appeal"
)

// Fase del alta (solo se usa en la primera entrada de auditoría).
const PhaseInitialRegistration = "Initial Registration"

const DefaultRepresentativeKind = "Parent"

func SuggestedPhases() []string {
	return []string{
		PhaseMerits,
		PhaseEnforcement,
		PhaseAppeal,
		PhaseArchived,
		PhaseStayedPendingAppeal,
		PhaseAwaitingFinality,
		PhaseProvisionalEnforce,
		PhaseInterlocutoryAppeal,
	}
}
