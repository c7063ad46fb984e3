package models

import (
	"errors"

	"github.com/church-console/backend/pkg/rowmap"
)

// Payment states of a registration.
const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentFailed    = "failed"
)

// MaxAdditionalParticipants caps how many guests one registration may bring.
const MaxAdditionalParticipants = 10

var ErrPaymentStatus = errors.New("payment status must be pending, completed or failed")

// ValidPaymentStatus reports whether s is a known payment state.
func ValidPaymentStatus(s string) bool {
	return s == PaymentPending || s == PaymentCompleted || s == PaymentFailed
}

// Registration is a seat booking nested inside an EducationEvent.
type Registration struct {
	ID                     string  `json:"id"`
	Name                   string  `json:"name"`
	Email                  string  `json:"email"`
	Phone                  string  `json:"phone"`
	AdditionalParticipants int     `json:"additionalParticipants"`
	SpecialRequirements    *string `json:"specialRequirements,omitempty"`
	PaymentStatus          string  `json:"paymentStatus"`
	PaymentAmount          float64 `json:"paymentAmount"`
	RegisteredAt           string  `json:"registeredAt"`
}

// Seats is the number of places the registration occupies.
func (r Registration) Seats() int {
	return 1 + r.AdditionalParticipants
}

// EducationEvent is a course session or seminar that accepts registrations.
type EducationEvent struct {
	ID              string         `json:"id"`
	Title           string         `json:"title"`
	Subtitle        *string        `json:"subtitle,omitempty"`
	Description     string         `json:"description"`
	Date            string         `json:"date"`
	Time            string         `json:"time"`
	Location        string         `json:"location"`
	ImageURL        *string        `json:"imageUrl,omitempty"`
	LogoURL         *string        `json:"logoUrl,omitempty"`
	IsFree          bool           `json:"isFree"`
	Price           *float64       `json:"price,omitempty"`
	MaxParticipants *int           `json:"maxParticipants,omitempty"`
	Registrations   []Registration `json:"registrations"`
	CreatedAt       string         `json:"createdAt"`
}

// Full reports whether the event has reached MaxParticipants. Events without a cap never fill.
func (e EducationEvent) Full() bool {
	return e.MaxParticipants != nil && len(e.Registrations) >= *e.MaxParticipants
}

// PriceFor returns the amount due for a registration bringing additional guests.
func (e EducationEvent) PriceFor(additional int) float64 {
	if e.IsFree || e.Price == nil {
		return 0
	}
	return *e.Price * float64(1+additional)
}

// EducationEventSchema maps EducationEvent to the education_events table.
var EducationEventSchema = &rowmap.Schema[EducationEvent]{
	Table:   "education_events",
	Key:     "id",
	Created: "created_at",
	Order:   rowmap.Order{Column: "date"},
	Fields: []rowmap.Field[EducationEvent]{
		rowmap.Col("id", "id", func(e *EducationEvent) any { return &e.ID }),
		rowmap.Col("title", "title", func(e *EducationEvent) any { return &e.Title }),
		rowmap.Col("subtitle", "subtitle", func(e *EducationEvent) any { return &e.Subtitle }),
		rowmap.Col("description", "description", func(e *EducationEvent) any { return &e.Description }),
		rowmap.Col("date", "date", func(e *EducationEvent) any { return &e.Date }),
		rowmap.Col("time", "time", func(e *EducationEvent) any { return &e.Time }),
		rowmap.Col("location", "location", func(e *EducationEvent) any { return &e.Location }),
		rowmap.Col("imageUrl", "image_url", func(e *EducationEvent) any { return &e.ImageURL }),
		rowmap.Col("logoUrl", "logo_url", func(e *EducationEvent) any { return &e.LogoURL }),
		rowmap.Col("isFree", "is_free", func(e *EducationEvent) any { return &e.IsFree }),
		rowmap.Col("price", "price", func(e *EducationEvent) any { return &e.Price }),
		rowmap.Col("maxParticipants", "max_participants", func(e *EducationEvent) any { return &e.MaxParticipants }),
		rowmap.JSONCol("registrations", "registrations", func(e *EducationEvent) any { return &e.Registrations }),
		rowmap.Col("createdAt", "created_at", func(e *EducationEvent) any { return &e.CreatedAt }),
	},
}
