package export

import (
	"bytes"
	"fmt"
	"math"

	"github.com/phpdave11/gofpdf"

	"layover-route-service/internal/domain"
)

// clockHHMM formats minutes-since-midnight as HH:MM. Negative departures
// (leaving before the reference midnight) fold back into the previous day.
func clockHHMM(min float64) string {
	m := int(math.Round(min))
	for m < 0 {
		m += domain.MinutesPerDay
	}
	m %= domain.MinutesPerDay
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// BuildItineraryPDF renders the planned route as a one-page PDF itinerary:
// departure, each visit with drive and stay times, the return leg, and the
// aggregate totals.
func BuildItineraryPDF(tl *domain.RouteTimeline, baseName string) ([]byte, error) {
	if baseName == "" {
		baseName = "base"
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Route Itinerary", false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "ROUTE ITINERARY")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	if len(tl.Stops) == 0 {
		pdf.Cell(0, 7, "No stops planned.")
		pdf.Ln(7)
	} else {
		pdf.Cell(0, 7, fmt.Sprintf("Depart %s at %s", baseName, clockHHMM(tl.DepartureMin)))
		pdf.Ln(9)

		for i, v := range tl.Visits() {
			pdf.Cell(0, 7, fmt.Sprintf("%d) %s: drive %.0f min, arrive %s",
				i+1, v.Stop.Name, tl.Legs[i].Minutes, clockHHMM(v.ArriveMin)))
			pdf.Ln(7)
			if v.StartMin > v.ArriveMin {
				pdf.Cell(0, 7, fmt.Sprintf("    wait until the %s start", clockHHMM(v.StartMin)))
				pdf.Ln(7)
			}
			pdf.Cell(0, 7, fmt.Sprintf("    stay %d min, leave %s", v.Stop.ServiceMinutes, clockHHMM(v.LeaveMin)))
			pdf.Ln(7)
		}

		pdf.Ln(2)
		pdf.Cell(0, 7, fmt.Sprintf("Return to %s: drive %.0f min, arrive %s",
			baseName, tl.Legs[len(tl.Legs)-1].Minutes, clockHHMM(tl.ReturnMin())))
		pdf.Ln(9)
	}

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, fmt.Sprintf("Driving %.1f min | At stops %d min | Total %.1f min",
		tl.DrivingMinutes(), tl.ServiceMinutes(), tl.TotalMinutes()))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render itinerary pdf: %w", err)
	}
	return buf.Bytes(), nil
}
