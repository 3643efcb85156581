package fhir

import (
	"encoding/json"
	"strings"
	"time"
)

// The SMART sandbox serves FHIR STU3, so the resource subset below follows the
// STU3 shapes (single family name string, effectiveDateTime on Observation).

type Meta struct {
	VersionID   string     `json:"versionId,omitempty"`
	LastUpdated *time.Time `json:"lastUpdated,omitempty"`
}

type Coding struct {
	System  string `json:"system,omitempty"`
	Code    string `json:"code,omitempty"`
	Display string `json:"display,omitempty"`
}

type CodeableConcept struct {
	Coding []Coding `json:"coding,omitempty"`
	Text   string   `json:"text,omitempty"`
}

// DisplayName returns the human-readable text of a concept, preferring the
// narrative text over coding displays.
func (c *CodeableConcept) DisplayName() string {
	if c == nil {
		return ""
	}
	if c.Text != "" {
		return c.Text
	}
	for _, coding := range c.Coding {
		if coding.Display != "" {
			return coding.Display
		}
	}
	return ""
}

type Reference struct {
	Reference string `json:"reference,omitempty"`
	Display   string `json:"display,omitempty"`
}

// ID returns the logical id of the referenced resource, i.e. "42" for
// "Medication/42" or for an absolute URL ending in "Medication/42".
func (r *Reference) ID() string {
	if r == nil {
		return ""
	}
	idx := strings.LastIndex(r.Reference, "/")
	return r.Reference[idx+1:]
}

type Quantity struct {
	Value  *float64 `json:"value,omitempty"`
	Unit   string   `json:"unit,omitempty"`
	System string   `json:"system,omitempty"`
	Code   string   `json:"code,omitempty"`
}

type HumanName struct {
	Use    string   `json:"use,omitempty"`
	Text   string   `json:"text,omitempty"`
	Family string   `json:"family,omitempty"`
	Given  []string `json:"given,omitempty"`
	Prefix []string `json:"prefix,omitempty"`
}

type Patient struct {
	ResourceType string      `json:"resourceType,omitempty"`
	ID           string      `json:"id,omitempty"`
	Meta         *Meta       `json:"meta,omitempty"`
	Name         []HumanName `json:"name,omitempty"`
	Gender       string      `json:"gender,omitempty"`
	BirthDate    string      `json:"birthDate,omitempty"`
}

// FullName assembles a display name from the first recorded name.
func (p *Patient) FullName() string {
	if p == nil || len(p.Name) == 0 {
		return ""
	}
	name := p.Name[0]
	if name.Text != "" {
		return name.Text
	}
	parts := append([]string{}, name.Given...)
	if name.Family != "" {
		parts = append(parts, name.Family)
	}
	return strings.Join(parts, " ")
}

type ObservationComponent struct {
	Code          *CodeableConcept `json:"code,omitempty"`
	ValueQuantity *Quantity        `json:"valueQuantity,omitempty"`
}

type Observation struct {
	ResourceType      string                 `json:"resourceType,omitempty"`
	ID                string                 `json:"id,omitempty"`
	Meta              *Meta                  `json:"meta,omitempty"`
	Status            string                 `json:"status,omitempty"`
	Code              *CodeableConcept       `json:"code,omitempty"`
	Subject           *Reference             `json:"subject,omitempty"`
	EffectiveDateTime string                 `json:"effectiveDateTime,omitempty"`
	ValueQuantity     *Quantity              `json:"valueQuantity,omitempty"`
	Component         []ObservationComponent `json:"component,omitempty"`
}

// ComponentQuantity returns the value of the component coded with the given
// LOINC code, or nil when the component is absent or carries no value.
func (o *Observation) ComponentQuantity(code string) *Quantity {
	for _, component := range o.Component {
		if component.Code == nil {
			continue
		}
		for _, coding := range component.Code.Coding {
			if coding.Code == code {
				return component.ValueQuantity
			}
		}
	}
	return nil
}

// RecordedAt is the server record timestamp used for last-write-wins
// reconciliation. The zero time sorts before any real record.
func (o *Observation) RecordedAt() time.Time {
	if o.Meta == nil || o.Meta.LastUpdated == nil {
		return time.Time{}
	}
	return *o.Meta.LastUpdated
}

type MedicationRequest struct {
	ResourceType              string           `json:"resourceType,omitempty"`
	ID                        string           `json:"id,omitempty"`
	Meta                      *Meta            `json:"meta,omitempty"`
	Status                    string           `json:"status,omitempty"`
	Intent                    string           `json:"intent,omitempty"`
	MedicationReference       *Reference       `json:"medicationReference,omitempty"`
	MedicationCodeableConcept *CodeableConcept `json:"medicationCodeableConcept,omitempty"`
	Subject                   *Reference       `json:"subject,omitempty"`
	AuthoredOn                string           `json:"authoredOn,omitempty"`
}

type Medication struct {
	ResourceType string           `json:"resourceType,omitempty"`
	ID           string           `json:"id,omitempty"`
	Meta         *Meta            `json:"meta,omitempty"`
	Code         *CodeableConcept `json:"code,omitempty"`
}

type BundleEntry struct {
	FullURL  string          `json:"fullUrl,omitempty"`
	Resource json.RawMessage `json:"resource,omitempty"`
}

type Bundle struct {
	ResourceType string        `json:"resourceType,omitempty"`
	Type         string        `json:"type,omitempty"`
	Total        *int          `json:"total,omitempty"`
	Entry        []BundleEntry `json:"entry,omitempty"`
}

// UnmarshalEntries decodes every entry resource of a search bundle into T.
// A bundle without entries yields an empty slice.
func UnmarshalEntries[T any](bundle *Bundle) ([]T, error) {
	results := make([]T, 0, len(bundle.Entry))
	for _, entry := range bundle.Entry {
		if len(entry.Resource) == 0 {
			continue
		}
		var resource T
		if err := json.Unmarshal(entry.Resource, &resource); err != nil {
			return nil, err
		}
		results = append(results, resource)
	}
	return results, nil
}
