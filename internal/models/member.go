package models

import "github.com/church-console/backend/pkg/rowmap"

// Permission is one grant of the console permission set.
type Permission string

const (
	PermissionDashboard Permission = "Dashboard Access"
	PermissionCalendar  Permission = "Calendar Management"
	PermissionMedia     Permission = "Media Upload"
	PermissionFinance   Permission = "Financial Reports"
	PermissionMembers   Permission = "Member Management"
	PermissionAssets    Permission = "Asset Management"
)

// Member status values shown in the directory.
const (
	MemberActive   = "Active"
	MemberInactive = "Inactive"
)

// Address is a member's postal address (Brazilian layout: neighborhood + CEP).
type Address struct {
	Street       string `json:"street"`
	Number       string `json:"number"`
	Neighborhood string `json:"neighborhood"`
	City         string `json:"city"`
	State        string `json:"state"`
	CEP          string `json:"cep"`
}

// Member is an entry of the member directory.
type Member struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Email          string       `json:"email"`
	Phone          string       `json:"phone"`
	Photo          *string      `json:"photo,omitempty"`
	Address        Address      `json:"address"`
	BirthDate      string       `json:"birthDate"`
	Role           string       `json:"role"`
	Status         string       `json:"status"`
	Permissions    []Permission `json:"permissions"`
	ConversionDate *string      `json:"conversionDate,omitempty"`
	BaptismDate    *string      `json:"baptismDate,omitempty"`
	IsBaptized     bool         `json:"isBaptized"`
	Category       string       `json:"category"`
	Position       *string      `json:"position,omitempty"`
	MaritalStatus  *string      `json:"maritalStatus,omitempty"`
	CreatedAt      string       `json:"createdAt"`
}

// HasPermission reports whether p is in the member's permission set.
func (m *Member) HasPermission(p Permission) bool {
	for _, got := range m.Permissions {
		if got == p {
			return true
		}
	}
	return false
}

// MemberSchema maps Member to the members table.
var MemberSchema = &rowmap.Schema[Member]{
	Table:   "members",
	Key:     "id",
	Created: "created_at",
	Order:   rowmap.Order{Column: "created_at", Desc: true},
	Fields: []rowmap.Field[Member]{
		rowmap.Col("id", "id", func(m *Member) any { return &m.ID }),
		rowmap.Col("name", "name", func(m *Member) any { return &m.Name }),
		rowmap.Col("email", "email", func(m *Member) any { return &m.Email }),
		rowmap.Col("phone", "phone", func(m *Member) any { return &m.Phone }),
		rowmap.Col("photo", "photo", func(m *Member) any { return &m.Photo }),
		rowmap.JSONCol("address", "address", func(m *Member) any { return &m.Address }),
		rowmap.Col("birthDate", "birth_date", func(m *Member) any { return &m.BirthDate }),
		rowmap.Col("role", "role", func(m *Member) any { return &m.Role }),
		rowmap.Col("status", "status", func(m *Member) any { return &m.Status }),
		rowmap.JSONCol("permissions", "permissions", func(m *Member) any { return &m.Permissions }),
		rowmap.Col("conversionDate", "conversion_date", func(m *Member) any { return &m.ConversionDate }),
		rowmap.Col("baptismDate", "baptism_date", func(m *Member) any { return &m.BaptismDate }),
		rowmap.Col("isBaptized", "is_baptized", func(m *Member) any { return &m.IsBaptized }),
		rowmap.Col("category", "category", func(m *Member) any { return &m.Category }),
		rowmap.Col("position", "position", func(m *Member) any { return &m.Position }),
		rowmap.Col("maritalStatus", "marital_status", func(m *Member) any { return &m.MaritalStatus }),
		rowmap.Col("createdAt", "created_at", func(m *Member) any { return &m.CreatedAt }),
	},
}
