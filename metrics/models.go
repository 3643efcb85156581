package metrics

import "time"

// Band is a named classification derived from a numeric threshold. The
// presentation layer maps bands to colors; the names below are its contract.
type Band string

const (
	BandNormal      Band = "Normal"
	BandElevated    Band = "Elevated"
	BandHigh        Band = "High"
	BandUnderweight Band = "Underweight"
	BandOverweight  Band = "Overweight"
)

// BPReading is one derived blood pressure point. Mean is the arithmetic mean
// of systolic and diastolic, matching the upstream behavior (it is not the
// clinical mean arterial pressure).
type BPReading struct {
	Date      time.Time
	Systolic  float64
	Diastolic float64
	Mean      float64
	Band      Band
}

// AnthroReading is one derived body-mass point from a weight and height
// recorded on the same calendar day.
type AnthroReading struct {
	Date     time.Time
	WeightKg float64
	HeightM  float64
	BMI      float64
	Band     Band
}

// ClassifyBloodPressure bands a reading by its systolic component only.
func ClassifyBloodPressure(systolic float64) Band {
	switch {
	case systolic < 130:
		return BandNormal
	case systolic < 140:
		return BandElevated
	default:
		return BandHigh
	}
}

// ClassifyBodyMass bands a BMI value.
func ClassifyBodyMass(bmi float64) Band {
	switch {
	case bmi < 18.5:
		return BandUnderweight
	case bmi < 25:
		return BandNormal
	default:
		return BandOverweight
	}
}
