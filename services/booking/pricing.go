package booking

import (
	"math"

	"tajriba/models"
)

// CalculateTotalPrice computes a booking total from the frozen price
// snapshot, the booked window length and the guest count. The result is
// stored on the booking at creation and never recomputed.
func CalculateTotalPrice(price models.Price, durationMinutes, guests int) float64 {
	var base float64
	switch price.Unit {
	case models.PricePerHour:
		base = price.Amount * float64(durationMinutes) / 60
	case models.PricePerDay:
		days := math.Ceil(float64(durationMinutes) / (24 * 60))
		base = price.Amount * days
	default: // fixed price per session
		base = price.Amount
	}
	return base * float64(guests)
}
