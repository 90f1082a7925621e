package models

import "time"

// BookingStatus is the lifecycle state of a booking. Transitions are
// enforced by the state machine in services/booking; repositories only ever
// move status with a compare-and-swap on (status, version).
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
	BookingDisputed  BookingStatus = "disputed"
)

// Booking represents a tourist's reservation of a service window.
type Booking struct {
	ID        string `bson:"id" json:"id"`
	ServiceID string `bson:"service_id" json:"service_id"`
	TouristID string `bson:"tourist_id" json:"tourist_id"`
	HostID    string `bson:"host_id" json:"host_id"` // denormalized from the service at creation

	Start  time.Time `bson:"start" json:"start"`
	End    time.Time `bson:"end" json:"end"`
	Guests int       `bson:"guests" json:"guests"`

	// PriceSnapshot freezes the service price at creation time. TotalPrice
	// is computed once from the snapshot and never recomputed.
	PriceSnapshot Price   `bson:"price_snapshot" json:"price_snapshot"`
	TotalPrice    float64 `bson:"total_price" json:"total_price"`

	Status    BookingStatus `bson:"status" json:"status"`
	PaymentID string        `bson:"payment_id" json:"payment_id"`
	Version   int           `bson:"version" json:"-"` // optimistic lock

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// ActiveStatuses are the states in which a booking occupies its slot.
func ActiveStatuses() []BookingStatus {
	return []BookingStatus{BookingPending, BookingConfirmed}
}

// Terminal reports whether the status admits no further transitions.
func (s BookingStatus) Terminal() bool {
	return s == BookingCompleted || s == BookingCancelled || s == BookingDisputed
}

// AvailableInterval is a free window of a service, returned by the
// availability preview.
type AvailableInterval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}
