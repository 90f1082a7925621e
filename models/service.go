package models

import "time"

// ServiceCategory classifies an experience.
type ServiceCategory string

const (
	CategorySpace   ServiceCategory = "space"
	CategorySkills  ServiceCategory = "skills"
	CategoryConnect ServiceCategory = "connect"
)

// PriceUnit determines how a service price is applied to a booking window.
type PriceUnit string

const (
	PricePerHour PriceUnit = "per_hour"
	PricePerDay  PriceUnit = "per_day"
	PriceFixed   PriceUnit = "fixed"
)

// Price is the host-set price of a service. Bookings copy it into a frozen
// snapshot at creation time, so later edits never touch existing bookings.
type Price struct {
	Amount   float64   `bson:"amount" json:"amount"`
	Unit     PriceUnit `bson:"unit" json:"unit"`
	Currency string    `bson:"currency" json:"currency"`
}

// Location is the place a service is offered.
type Location struct {
	City string  `bson:"city" json:"city"`
	Lat  float64 `bson:"lat,omitempty" json:"lat,omitempty"`
	Lng  float64 `bson:"lng,omitempty" json:"lng,omitempty"`
}

// Service is a bookable micro-experience offered by a host.
type Service struct {
	ID              string          `bson:"id" json:"id"`
	HostID          string          `bson:"host_id" json:"host_id"`
	Name            string          `bson:"name" json:"name"`
	Description     string          `bson:"description,omitempty" json:"description,omitempty"`
	Category        ServiceCategory `bson:"category" json:"category"`
	Price           Price           `bson:"price" json:"price"`
	Capacity        int             `bson:"capacity" json:"capacity"`                 // max guests per booking
	DurationMinutes int             `bson:"duration_minutes" json:"duration_minutes"` // length of one session
	Location        Location        `bson:"location" json:"location"`
	Active          bool            `bson:"active" json:"active"`
	CreatedAt       time.Time       `bson:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `bson:"updated_at" json:"updated_at"`
}
