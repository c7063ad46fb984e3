package models

import (
	"errors"

	"github.com/church-console/backend/pkg/rowmap"
)

// Group status values.
const (
	GroupActive   = "active"
	GroupInactive = "inactive"
)

var ErrGroupStatus = errors.New("group status must be active or inactive")

// MeetingSchedule is the weekly meeting slot of a group.
type MeetingSchedule struct {
	Day      string `json:"day"`
	Time     string `json:"time"`
	Location string `json:"location"`
}

// Group is a cell group, ministry or team. Members holds Member ids.
type Group struct {
	ID              string           `json:"id"`
	Name            string           `json:"name"`
	Description     string           `json:"description"`
	Category        string           `json:"category"`
	Status          string           `json:"status"`
	Leader          *string          `json:"leader,omitempty"`
	Members         []string         `json:"members"`
	MeetingSchedule *MeetingSchedule `json:"meetingSchedule,omitempty"`
	CreatedAt       string           `json:"createdAt"`
}

// Validate checks the group status.
func (g Group) Validate() error { return g.ValidateFields() }

// ValidateFields runs the checks of the named view fields only.
func (g Group) ValidateFields(fields ...string) error {
	if covers(fields, "status") && g.Status != GroupActive && g.Status != GroupInactive {
		return ErrGroupStatus
	}
	return nil
}

// HasMember reports whether memberID belongs to the group.
func (g Group) HasMember(memberID string) bool {
	for _, id := range g.Members {
		if id == memberID {
			return true
		}
	}
	return false
}

// GroupSchema maps Group to the groups table.
var GroupSchema = &rowmap.Schema[Group]{
	Table:   "groups",
	Key:     "id",
	Created: "created_at",
	Order:   rowmap.Order{Column: "created_at", Desc: true},
	Fields: []rowmap.Field[Group]{
		rowmap.Col("id", "id", func(g *Group) any { return &g.ID }),
		rowmap.Col("name", "name", func(g *Group) any { return &g.Name }),
		rowmap.Col("description", "description", func(g *Group) any { return &g.Description }),
		rowmap.Col("category", "category", func(g *Group) any { return &g.Category }),
		rowmap.Col("status", "status", func(g *Group) any { return &g.Status }),
		rowmap.Col("leader", "leader", func(g *Group) any { return &g.Leader }),
		rowmap.JSONCol("members", "members", func(g *Group) any { return &g.Members }),
		rowmap.JSONCol("meetingSchedule", "meeting_schedule", func(g *Group) any { return &g.MeetingSchedule }),
		rowmap.Col("createdAt", "created_at", func(g *Group) any { return &g.CreatedAt }),
	},
}
