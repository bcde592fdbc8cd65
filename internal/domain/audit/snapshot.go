package audit

import (
	"encoding/json"

	"case-tracker/internal/domain/cases"
)

// SnapshotSerializer congela los ítems del caso en un string durable.
// El dominio nunca lo vuelve a leer.
type SnapshotSerializer interface {
	Serialize(items []cases.TrackedItem) (string, error)
}

type JSONSnapshot struct{}

type snapshotItem struct {
	ID               string `json:"id"`
	Category         string `json:"category"`
	Name             string `json:"name"`
	Quantity         string `json:"quantity"`
	Frequency        string `json:"frequency"`
	Location         string `json:"location"`
	PrescriptionDate string `json:"prescription_date"`
	Unnecessary      bool   `json:"unnecessary"`
	Blocked          bool   `json:"blocked"`
}

func (JSONSnapshot) Serialize(items []cases.TrackedItem) (string, error) {
	out := make([]snapshotItem, 0, len(items))
	for _, it := range items {
		out = append(out, snapshotItem{
			ID:               it.ID,
			Category:         it.Category,
			Name:             it.Name,
			Quantity:         it.Quantity,
			Frequency:        it.Frequency,
			Location:         it.Location,
			PrescriptionDate: it.PrescriptionDate,
			Unnecessary:      it.Unnecessary,
			Blocked:          it.Blocked,
		})
	}
	b, err := json.Marshal(out)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
