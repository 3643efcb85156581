package dashboard

import (
	"github.com/cardioview/dashboard-worker/fhir"
	"github.com/cardioview/dashboard-worker/medications"
	"github.com/cardioview/dashboard-worker/series"
)

// State is the lifecycle of a patient session. Demographics are mandatory;
// every other category degrades the model instead of failing it.
type State string

const (
	StateEmpty              State = "empty"
	StateLoading            State = "loading"
	StateReady              State = "ready"
	StatePartiallyAvailable State = "partially-available"
	StateFailed             State = "failed"
)

type Demographics struct {
	ID        string
	Name      string
	Gender    string
	BirthDate string
}

// Availability flags the categories that could not be loaded for the current
// patient. A set flag means the corresponding dashboard section is omitted.
type Availability struct {
	BloodPressureUnavailable bool
	WeightUnavailable        bool
	HeightUnavailable        bool
	MedicationsUnavailable   bool
}

func (a Availability) Degraded() bool {
	return a.BloodPressureUnavailable ||
		a.WeightUnavailable ||
		a.HeightUnavailable ||
		a.MedicationsUnavailable
}

// Model is the view model consumed by the presentation layer. It is replaced
// wholesale on every patient load and mutated only through the medication
// list operations.
type Model struct {
	Demographics Demographics
	Series       []series.Point
	Medications  medications.List
	Availability Availability
}

func demographicsOf(patient *fhir.Patient) Demographics {
	return Demographics{
		ID:        patient.ID,
		Name:      patient.FullName(),
		Gender:    patient.Gender,
		BirthDate: patient.BirthDate,
	}
}
