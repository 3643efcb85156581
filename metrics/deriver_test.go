package metrics_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/cardioview/dashboard-worker/fhir"
	"github.com/cardioview/dashboard-worker/metrics"
)

func quantity(value float64, unit string) *fhir.Quantity {
	return &fhir.Quantity{Value: &value, Unit: unit}
}

func component(code string, quantity *fhir.Quantity) fhir.ObservationComponent {
	return fhir.ObservationComponent{
		Code:          &fhir.CodeableConcept{Coding: []fhir.Coding{{System: "http://loinc.org", Code: code}}},
		ValueQuantity: quantity,
	}
}

func bpObservation(id, effective string, systolic, diastolic float64, recordedAt time.Time) fhir.Observation {
	return fhir.Observation{
		ID:                id,
		Meta:              &fhir.Meta{LastUpdated: &recordedAt},
		EffectiveDateTime: effective,
		Component: []fhir.ObservationComponent{
			component(fhir.LoincSystolic, quantity(systolic, "mm[Hg]")),
			component(fhir.LoincDiastolic, quantity(diastolic, "mm[Hg]")),
		},
	}
}

func valueObservation(id, effective string, quantity *fhir.Quantity, recordedAt time.Time) fhir.Observation {
	return fhir.Observation{
		ID:                id,
		Meta:              &fhir.Meta{LastUpdated: &recordedAt},
		EffectiveDateTime: effective,
		ValueQuantity:     quantity,
	}
}

func day(value string) time.Time {
	parsed, err := time.Parse("2006-01-02", value)
	Expect(err).ToNot(HaveOccurred())
	year, month, dayOfMonth := parsed.Date()
	return time.Date(year, month, dayOfMonth, 0, 0, 0, 0, time.UTC)
}

var _ = Describe("Deriver", func() {
	var deriver *metrics.Deriver
	recordedAt := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	BeforeEach(func() {
		deriver = metrics.NewDeriver(zap.NewNop().Sugar())
	})

	Describe("BloodPressure", func() {
		It("derives the mean and band from a systolic and diastolic pair", func() {
			readings := deriver.BloodPressure([]fhir.Observation{
				bpObservation("bp-1", "2024-01-10T08:30:00Z", 145, 90, recordedAt),
			})
			Expect(readings).To(HaveLen(1))
			Expect(readings[0].Date).To(Equal(day("2024-01-10")))
			Expect(readings[0].Systolic).To(Equal(145.0))
			Expect(readings[0].Diastolic).To(Equal(90.0))
			Expect(readings[0].Mean).To(Equal(117.5))
			Expect(readings[0].Band).To(Equal(metrics.BandHigh))
		})

		It("classifies by systolic only, with exact boundaries", func() {
			Expect(metrics.ClassifyBloodPressure(129)).To(Equal(metrics.BandNormal))
			Expect(metrics.ClassifyBloodPressure(130)).To(Equal(metrics.BandElevated))
			Expect(metrics.ClassifyBloodPressure(139)).To(Equal(metrics.BandElevated))
			Expect(metrics.ClassifyBloodPressure(140)).To(Equal(metrics.BandHigh))
		})

		It("excludes dates missing either component", func() {
			observation := fhir.Observation{
				ID:                "bp-2",
				Meta:              &fhir.Meta{LastUpdated: &recordedAt},
				EffectiveDateTime: "2024-01-11T08:30:00Z",
				Component: []fhir.ObservationComponent{
					component(fhir.LoincSystolic, quantity(120, "mm[Hg]")),
				},
			}
			Expect(deriver.BloodPressure([]fhir.Observation{observation})).To(BeEmpty())
		})

		It("excludes observations without an effective date", func() {
			observation := bpObservation("bp-3", "", 120, 80, recordedAt)
			Expect(deriver.BloodPressure([]fhir.Observation{observation})).To(BeEmpty())
		})

		It("excludes components without a numeric value", func() {
			observation := fhir.Observation{
				ID:                "bp-4",
				Meta:              &fhir.Meta{LastUpdated: &recordedAt},
				EffectiveDateTime: "2024-01-11T08:30:00Z",
				Component: []fhir.ObservationComponent{
					component(fhir.LoincSystolic, &fhir.Quantity{Unit: "mm[Hg]"}),
					component(fhir.LoincDiastolic, quantity(80, "mm[Hg]")),
				},
			}
			Expect(deriver.BloodPressure([]fhir.Observation{observation})).To(BeEmpty())
		})

		It("lets the most recently recorded instance win for the same date", func() {
			readings := deriver.BloodPressure([]fhir.Observation{
				bpObservation("bp-new", "2024-01-10T08:30:00Z", 150, 95, recordedAt.Add(time.Hour)),
				bpObservation("bp-old", "2024-01-10T16:00:00Z", 120, 80, recordedAt),
			})
			Expect(readings).To(HaveLen(1))
			Expect(readings[0].Systolic).To(Equal(150.0))
			Expect(readings[0].Diastolic).To(Equal(95.0))
		})

		It("returns readings sorted ascending by date", func() {
			readings := deriver.BloodPressure([]fhir.Observation{
				bpObservation("bp-b", "2024-02-01T08:00:00Z", 120, 80, recordedAt),
				bpObservation("bp-a", "2024-01-01T08:00:00Z", 135, 85, recordedAt),
			})
			Expect(readings).To(HaveLen(2))
			Expect(readings[0].Date).To(Equal(day("2024-01-01")))
			Expect(readings[1].Date).To(Equal(day("2024-02-01")))
		})
	})

	Describe("BodyMass", func() {
		It("derives BMI from a weight and height recorded on the same day", func() {
			readings := deriver.BodyMass(
				[]fhir.Observation{valueObservation("w-1", "2024-01-10T08:00:00Z", quantity(70, "kg"), recordedAt)},
				[]fhir.Observation{valueObservation("h-1", "2024-01-10T09:00:00Z", quantity(1.75, "m"), recordedAt)},
			)
			Expect(readings).To(HaveLen(1))
			Expect(readings[0].Date).To(Equal(day("2024-01-10")))
			Expect(readings[0].BMI).To(BeNumerically("~", 22.857, 0.001))
			Expect(readings[0].Band).To(Equal(metrics.BandNormal))
		})

		It("classifies with exact boundaries", func() {
			Expect(metrics.ClassifyBodyMass(18.49)).To(Equal(metrics.BandUnderweight))
			Expect(metrics.ClassifyBodyMass(18.5)).To(Equal(metrics.BandNormal))
			Expect(metrics.ClassifyBodyMass(24.99)).To(Equal(metrics.BandNormal))
			Expect(metrics.ClassifyBodyMass(25)).To(Equal(metrics.BandOverweight))
		})

		It("requires exact date matches between weight and height", func() {
			readings := deriver.BodyMass(
				[]fhir.Observation{valueObservation("w-1", "2024-01-10T08:00:00Z", quantity(70, "kg"), recordedAt)},
				[]fhir.Observation{valueObservation("h-1", "2024-01-11T08:00:00Z", quantity(1.75, "m"), recordedAt)},
			)
			Expect(readings).To(BeEmpty())
		})

		It("normalizes centimeters and pounds", func() {
			readings := deriver.BodyMass(
				[]fhir.Observation{valueObservation("w-1", "2024-01-10T08:00:00Z", quantity(154.324, "lb"), recordedAt)},
				[]fhir.Observation{valueObservation("h-1", "2024-01-10T09:00:00Z", quantity(175, "cm"), recordedAt)},
			)
			Expect(readings).To(HaveLen(1))
			Expect(readings[0].WeightKg).To(BeNumerically("~", 70, 0.01))
			Expect(readings[0].HeightM).To(BeNumerically("~", 1.75, 0.0001))
			Expect(readings[0].BMI).To(BeNumerically("~", 22.857, 0.01))
		})

		It("excludes readings with unrecognized units", func() {
			readings := deriver.BodyMass(
				[]fhir.Observation{valueObservation("w-1", "2024-01-10T08:00:00Z", quantity(70, "stone"), recordedAt)},
				[]fhir.Observation{valueObservation("h-1", "2024-01-10T09:00:00Z", quantity(1.75, "m"), recordedAt)},
			)
			Expect(readings).To(BeEmpty())
		})

		It("lets the most recently recorded weight win for the same date", func() {
			readings := deriver.BodyMass(
				[]fhir.Observation{
					valueObservation("w-old", "2024-01-10T08:00:00Z", quantity(70, "kg"), recordedAt),
					valueObservation("w-new", "2024-01-10T08:00:00Z", quantity(72, "kg"), recordedAt.Add(time.Hour)),
				},
				[]fhir.Observation{valueObservation("h-1", "2024-01-10T09:00:00Z", quantity(1.75, "m"), recordedAt)},
			)
			Expect(readings).To(HaveLen(1))
			Expect(readings[0].WeightKg).To(Equal(72.0))
		})
	})
})
