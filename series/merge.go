// Package series aligns independently derived metric streams into a single
// date-ordered sequence suitable for a dual-axis chart.
package series

import (
	"sort"
	"time"

	"github.com/cardioview/dashboard-worker/metrics"
)

// Point is one merged chart row. A nil field renders as a gap; by
// construction at least one of the two fields is set.
type Point struct {
	Date   time.Time
	MeanBP *float64
	BMI    *float64
}

// Merge performs an outer join on date across the blood pressure and body
// mass series. Each input holds at most one reading per date, so the result
// is duplicate free and sorted ascending.
func Merge(bp []metrics.BPReading, anthro []metrics.AnthroReading) []Point {
	byDate := make(map[time.Time]*Point, len(bp)+len(anthro))

	pointAt := func(date time.Time) *Point {
		point, ok := byDate[date]
		if !ok {
			point = &Point{Date: date}
			byDate[date] = point
		}
		return point
	}

	for i := range bp {
		mean := bp[i].Mean
		pointAt(bp[i].Date).MeanBP = &mean
	}
	for i := range anthro {
		bmi := anthro[i].BMI
		pointAt(anthro[i].Date).BMI = &bmi
	}

	points := make([]Point, 0, len(byDate))
	for _, point := range byDate {
		points = append(points, *point)
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
	return points
}
