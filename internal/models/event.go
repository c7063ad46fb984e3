package models

import "github.com/church-console/backend/pkg/rowmap"

// Calendar event types.
const (
	EventService = "service"
	EventMeeting = "meeting"
	EventSpecial = "special"
	EventOther   = "other"
)

// Cost is the admission of a calendar event. Amount is only meaningful when IsFree is false.
type Cost struct {
	IsFree bool     `json:"isFree"`
	Amount *float64 `json:"amount,omitempty"`
}

// Event is a calendar entry.
type Event struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Date        string  `json:"date"`
	Time        string  `json:"time"`
	Location    string  `json:"location"`
	ImageURL    *string `json:"imageUrl,omitempty"`
	Cost        Cost    `json:"cost"`
	Type        string  `json:"type"`
	Attendees   int     `json:"attendees"`
	CreatedAt   string  `json:"createdAt"`
}

// EventSchema maps Event to the events table. Cost is flattened into two columns.
var EventSchema = &rowmap.Schema[Event]{
	Table:   "events",
	Key:     "id",
	Created: "created_at",
	Order:   rowmap.Order{Column: "date"},
	Fields: []rowmap.Field[Event]{
		rowmap.Col("id", "id", func(e *Event) any { return &e.ID }),
		rowmap.Col("title", "title", func(e *Event) any { return &e.Title }),
		rowmap.Col("description", "description", func(e *Event) any { return &e.Description }),
		rowmap.Col("date", "date", func(e *Event) any { return &e.Date }),
		rowmap.Col("time", "time", func(e *Event) any { return &e.Time }),
		rowmap.Col("location", "location", func(e *Event) any { return &e.Location }),
		rowmap.Col("imageUrl", "image_url", func(e *Event) any { return &e.ImageURL }),
		rowmap.Col("cost", "cost_is_free", func(e *Event) any { return &e.Cost.IsFree }),
		rowmap.Col("cost", "cost_amount", func(e *Event) any { return &e.Cost.Amount }),
		rowmap.Col("type", "type", func(e *Event) any { return &e.Type }),
		rowmap.Col("attendees", "attendees", func(e *Event) any { return &e.Attendees }),
		rowmap.Col("createdAt", "created_at", func(e *Event) any { return &e.CreatedAt }),
	},
}
