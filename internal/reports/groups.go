package reports

import (
	"io"
	"math"
	"sort"

	"github.com/church-console/backend/internal/models"
)

// GroupsReportFilename is the download name of the group list.
const GroupsReportFilename = "groups-report.xlsx"

// GroupFilter selects groups by category and status. Empty fields match everything.
type GroupFilter struct {
	Category string
	Status   string
}

// Match reports whether g passes the filter.
func (f GroupFilter) Match(g models.Group) bool {
	if f.Category != "" && g.Category != f.Category {
		return false
	}
	return f.Status == "" || g.Status == f.Status
}

// GroupStats summarizes every group, regardless of any filter.
type GroupStats struct {
	Total          int            `json:"total"`
	Active         int            `json:"active"`
	TotalMembers   int            `json:"totalMembers"`
	AverageMembers int            `json:"averageMembers"`
	ByCategory     map[string]int `json:"byCategory"`
}

// SummarizeGroups counts groups per category and their memberships.
func SummarizeGroups(groups []models.Group) GroupStats {
	st := GroupStats{Total: len(groups), ByCategory: make(map[string]int)}
	for _, g := range groups {
		st.ByCategory[g.Category]++
		st.TotalMembers += len(g.Members)
		if g.Status == models.GroupActive {
			st.Active++
		}
	}
	if st.Total > 0 {
		st.AverageMembers = int(math.Round(float64(st.TotalMembers) / float64(st.Total)))
	}
	return st
}

// GroupsWorkbook writes the filtered group list and a Summary sheet with the category breakdown of
// all groups.
func GroupsWorkbook(w io.Writer, groups []models.Group, filter GroupFilter) error {
	rows := [][]interface{}{{
		"Name", "Category", "Status", "Members Count", "Meeting Day", "Meeting Time", "Meeting Location", "Created At",
	}}
	for _, g := range groups {
		if !filter.Match(g) {
			continue
		}
		day, at, where := "N/A", "N/A", "N/A"
		if ms := g.MeetingSchedule; ms != nil {
			day, at, where = orNA(ms.Day), orNA(ms.Time), orNA(ms.Location)
		}
		rows = append(rows, []interface{}{
			g.Name, g.Category, g.Status, len(g.Members), day, at, where, LongDate(g.CreatedAt),
		})
	}

	st := SummarizeGroups(groups)
	summary := [][]interface{}{{"Category", "Groups"}}
	categories := make([]string, 0, len(st.ByCategory))
	for c := range st.ByCategory {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	for _, c := range categories {
		summary = append(summary, []interface{}{c, st.ByCategory[c]})
	}
	summary = append(summary,
		[]interface{}{},
		[]interface{}{"Total Groups", st.Total},
		[]interface{}{"Active Groups", st.Active},
		[]interface{}{"Total Members", st.TotalMembers},
		[]interface{}{"Average Members", st.AverageMembers},
	)

	return writeWorkbook(w, []sheet{
		{name: "Groups", rows: rows},
		{name: "Summary", rows: summary},
	})
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}
