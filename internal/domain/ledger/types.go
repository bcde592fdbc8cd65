package ledger

type EntryType string

// Solo TypeGrant acredita; el resto son gastos (débito).
const (
	TypeGrant        EntryType = "grant"
	TypeMedication   EntryType = "medication"
	TypeTherapy      EntryType = "therapy"
	TypeConsultation EntryType = "consultation"
	TypeExam         EntryType = "exam"
	TypeSupply       EntryType = "supply"
	TypeExpense      EntryType = "expense"
)

func (t EntryType) Valid() bool {
	_, ok := typeLabels[t]
	return ok
}

func (t EntryType) IsCredit() bool { return t == TypeGrant }

// Label es el texto usado en el histórico y en los reportes.
func (t EntryType) Label() string {
	if l, ok := typeLabels[t]; ok {
		return l
	}
	return string(t)
}

var typeLabels = map[EntryType]string{
	TypeGrant:        "Grant",
	TypeMedication:   "Medication",
	TypeTherapy:      "Therapy",
	TypeConsultation: "Consultation",
	TypeExam:         "Exam",
	TypeSupply:       "Supply",
	TypeExpense:      "Expense",
}

type Status string

const (
	StatusDraft  Status = "draft"
	StatusPosted Status = "posted"
)

const (
	MovementAttachment = "Attachment"
	DefaultItemName    = "Miscellaneous expense"
)
