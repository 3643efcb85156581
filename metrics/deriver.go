package metrics

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/cardioview/dashboard-worker/fhir"
)

// Deriver turns raw observation streams into chart-ready readings. Readings
// missing a required component, date or value are excluded rather than
// reported as errors.
type Deriver struct {
	logger *zap.SugaredLogger
}

func NewDeriver(logger *zap.SugaredLogger) *Deriver {
	return &Deriver{logger: logger}
}

// sample is a candidate value for one date. When multiple records exist for
// the same date and code, the most recently recorded instance wins.
type sample struct {
	value      float64
	recordedAt time.Time
}

func (s *sample) supersededBy(candidate sample) bool {
	return s == nil || !candidate.recordedAt.Before(s.recordedAt)
}

// BloodPressure derives one reading per calendar day that carries both a
// systolic and a diastolic component.
func (d *Deriver) BloodPressure(observations []fhir.Observation) []BPReading {
	systolic := map[time.Time]*sample{}
	diastolic := map[time.Time]*sample{}

	for i := range observations {
		observation := &observations[i]
		date, ok := effectiveDate(observation)
		if !ok {
			d.logger.Debugw("excluding observation without effective date", "observationId", observation.ID)
			continue
		}
		d.collectComponent(systolic, observation, fhir.LoincSystolic, date)
		d.collectComponent(diastolic, observation, fhir.LoincDiastolic, date)
	}

	readings := make([]BPReading, 0, len(systolic))
	for date, sys := range systolic {
		dia, ok := diastolic[date]
		if !ok {
			d.logger.Debugw("excluding blood pressure reading without diastolic component", "date", date)
			continue
		}
		readings = append(readings, BPReading{
			Date:      date,
			Systolic:  sys.value,
			Diastolic: dia.value,
			Mean:      (sys.value + dia.value) / 2,
			Band:      ClassifyBloodPressure(sys.value),
		})
	}
	sortByDate(readings, func(r BPReading) time.Time { return r.Date })
	return readings
}

// BodyMass derives one reading per calendar day on which both a weight and a
// height were recorded. Dates must match exactly; there is no interpolation.
func (d *Deriver) BodyMass(weights, heights []fhir.Observation) []AnthroReading {
	weightByDate := d.collectQuantities(weights, normalizeWeight)
	heightByDate := d.collectQuantities(heights, normalizeHeight)

	readings := make([]AnthroReading, 0, len(weightByDate))
	for date, weight := range weightByDate {
		height, ok := heightByDate[date]
		if !ok {
			continue
		}
		if height.value <= 0 {
			d.logger.Debugw("excluding body mass reading with non-positive height", "date", date)
			continue
		}
		bmi := weight.value / (height.value * height.value)
		readings = append(readings, AnthroReading{
			Date:     date,
			WeightKg: weight.value,
			HeightM:  height.value,
			BMI:      bmi,
			Band:     ClassifyBodyMass(bmi),
		})
	}
	sortByDate(readings, func(r AnthroReading) time.Time { return r.Date })
	return readings
}

func (d *Deriver) collectComponent(samples map[time.Time]*sample, observation *fhir.Observation, code string, date time.Time) {
	quantity := observation.ComponentQuantity(code)
	if quantity == nil || quantity.Value == nil {
		d.logger.Debugw("excluding observation component without numeric value",
			"observationId", observation.ID, "component", code)
		return
	}
	candidate := sample{value: *quantity.Value, recordedAt: observation.RecordedAt()}
	if samples[date].supersededBy(candidate) {
		samples[date] = &candidate
	}
}

func (d *Deriver) collectQuantities(observations []fhir.Observation, normalize func(*fhir.Quantity) (float64, bool)) map[time.Time]*sample {
	samples := map[time.Time]*sample{}
	for i := range observations {
		observation := &observations[i]
		date, ok := effectiveDate(observation)
		if !ok {
			d.logger.Debugw("excluding observation without effective date", "observationId", observation.ID)
			continue
		}
		value, ok := normalize(observation.ValueQuantity)
		if !ok {
			d.logger.Debugw("excluding observation without usable numeric value",
				"observationId", observation.ID)
			continue
		}
		candidate := sample{value: value, recordedAt: observation.RecordedAt()}
		if samples[date].supersededBy(candidate) {
			samples[date] = &candidate
		}
	}
	return samples
}

// effectiveDate truncates the observation's effective timestamp to a UTC
// calendar day, which is the alignment key for all derivations.
func effectiveDate(observation *fhir.Observation) (time.Time, bool) {
	raw := observation.EffectiveDateTime
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			year, month, day := parsed.Date()
			return time.Date(year, month, day, 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

func normalizeWeight(quantity *fhir.Quantity) (float64, bool) {
	if quantity == nil || quantity.Value == nil {
		return 0, false
	}
	switch unitOf(quantity) {
	case "kg":
		return *quantity.Value, true
	case "g":
		return *quantity.Value / 1000, true
	case "lb", "lbs", "[lb_av]":
		return *quantity.Value * 0.45359237, true
	default:
		return 0, false
	}
}

func normalizeHeight(quantity *fhir.Quantity) (float64, bool) {
	if quantity == nil || quantity.Value == nil {
		return 0, false
	}
	switch unitOf(quantity) {
	case "m":
		return *quantity.Value, true
	case "cm":
		return *quantity.Value / 100, true
	case "in", "[in_i]":
		return *quantity.Value * 0.0254, true
	default:
		return 0, false
	}
}

func unitOf(quantity *fhir.Quantity) string {
	if quantity.Code != "" {
		return quantity.Code
	}
	return quantity.Unit
}

func sortByDate[T any](readings []T, date func(T) time.Time) {
	sort.Slice(readings, func(i, j int) bool {
		return date(readings[i]).Before(date(readings[j]))
	})
}
