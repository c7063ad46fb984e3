package store

import (
	"sort"
	"time"

	"github.com/church-console/backend/internal/models"
)

// Snapshot is a consistent copy of every collection, taken under one lock.
type Snapshot struct {
	Members          []models.Member          `json:"members"`
	Assets           []models.Asset           `json:"assets"`
	FinancialRecords []models.FinancialRecord `json:"financialRecords"`
	Events           []models.Event           `json:"events"`
	EducationEvents  []models.EducationEvent  `json:"educationEvents"`
	MediaFiles       []models.MediaFile       `json:"mediaFiles"`
	Groups           []models.Group           `json:"groups"`
}

// Snapshot copies all collections. Empty collections are empty slices, not nil.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Members:          clone(s.Members.items),
		Assets:           clone(s.Assets.items),
		FinancialRecords: clone(s.Financial.items),
		Events:           clone(s.Events.items),
		EducationEvents:  clone(s.Education.items),
		MediaFiles:       clone(s.Media.items),
		Groups:           clone(s.Groups.items),
	}
}

// TotalAssetValue sums the value of every asset.
func (sn Snapshot) TotalAssetValue() float64 {
	var total float64
	for _, a := range sn.Assets {
		total += a.Value
	}
	return total
}

// AssetsByStatus counts assets per status. Every known status is present, possibly with 0.
func (sn Snapshot) AssetsByStatus() map[models.AssetStatus]int {
	counts := make(map[models.AssetStatus]int, len(models.AssetStatuses))
	for _, st := range models.AssetStatuses {
		counts[st] = 0
	}
	for _, a := range sn.Assets {
		counts[a.Status]++
	}
	return counts
}

// FinancialSummary aggregates the ledger.
type FinancialSummary struct {
	Income            float64            `json:"income"`
	Expenses          float64            `json:"expenses"`
	Net               float64            `json:"net"`
	IncomeByCategory  map[string]float64 `json:"incomeByCategory"`
	ExpenseByCategory map[string]float64 `json:"expenseByCategory"`
}

// FinancialSummary totals income and expenses. Amounts are positive; the type carries the sign.
func (sn Snapshot) FinancialSummary() FinancialSummary {
	fs := FinancialSummary{
		IncomeByCategory:  make(map[string]float64),
		ExpenseByCategory: make(map[string]float64),
	}
	for _, r := range sn.FinancialRecords {
		switch r.Type {
		case models.TypeIncome:
			fs.Income += r.Amount
			fs.IncomeByCategory[r.Category] += r.Amount
		case models.TypeExpense:
			fs.Expenses += r.Amount
			fs.ExpenseByCategory[r.Category] += r.Amount
		}
	}
	fs.Net = fs.Income - fs.Expenses
	return fs
}

// MemberStatusCounts counts members per status.
func (sn Snapshot) MemberStatusCounts() map[string]int {
	counts := map[string]int{models.MemberActive: 0, models.MemberInactive: 0}
	for _, m := range sn.Members {
		counts[m.Status]++
	}
	return counts
}

// MediaTypeCounts counts media files per kind.
func (sn Snapshot) MediaTypeCounts() map[string]int {
	counts := map[string]int{models.MediaImage: 0, models.MediaVideo: 0, models.MediaDocument: 0}
	for _, f := range sn.MediaFiles {
		counts[f.Type]++
	}
	return counts
}

// UpcomingEvents returns the events dated today or later relative to now, soonest first.
// n <= 0 returns all of them.
func (sn Snapshot) UpcomingEvents(now time.Time, n int) []models.Event {
	today := now.Format(time.DateOnly)
	var out []models.Event
	for _, e := range sn.Events {
		if e.Date >= today {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Time < out[j].Time
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// BirthdaysInMonth returns members born in month, ordered by day of month. Members without a
// parseable birth date are skipped.
func (sn Snapshot) BirthdaysInMonth(month time.Month) []models.Member {
	type entry struct {
		day int
		m   models.Member
	}
	var list []entry
	for _, m := range sn.Members {
		d, err := time.Parse(time.DateOnly, m.BirthDate)
		if err != nil || d.Month() != month {
			continue
		}
		list = append(list, entry{day: d.Day(), m: m})
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].day < list[j].day })
	out := make([]models.Member, len(list))
	for i, e := range list {
		out[i] = e.m
	}
	return out
}

// GroupMembers resolves the member ids of a group. Ids without a cached member are skipped.
func (sn Snapshot) GroupMembers(groupID string) []models.Member {
	g, ok := sn.group(groupID)
	if !ok {
		return nil
	}
	byID := make(map[string]models.Member, len(sn.Members))
	for _, m := range sn.Members {
		byID[m.ID] = m
	}
	var out []models.Member
	for _, id := range g.Members {
		if m, ok := byID[id]; ok {
			out = append(out, m)
		}
	}
	return out
}

// AvailableMembers returns the members not yet in the group.
func (sn Snapshot) AvailableMembers(groupID string) []models.Member {
	g, ok := sn.group(groupID)
	if !ok {
		return nil
	}
	var out []models.Member
	for _, m := range sn.Members {
		if !g.HasMember(m.ID) {
			out = append(out, m)
		}
	}
	return out
}

func (sn Snapshot) group(id string) (models.Group, bool) {
	for _, g := range sn.Groups {
		if g.ID == id {
			return g, true
		}
	}
	return models.Group{}, false
}

// EducationSummary aggregates registrations over all education events.
type EducationSummary struct {
	Events         int     `json:"events"`
	Registrations  int     `json:"registrations"`
	Seats          int     `json:"seats"`
	Revenue        float64 `json:"revenue"`
	PendingRevenue float64 `json:"pendingRevenue"`
}

// EducationSummary counts registrations and sums payments. Revenue only includes completed payments.
func (sn Snapshot) EducationSummary() EducationSummary {
	es := EducationSummary{Events: len(sn.EducationEvents)}
	for _, e := range sn.EducationEvents {
		for _, r := range e.Registrations {
			es.Registrations++
			es.Seats += r.Seats()
			switch r.PaymentStatus {
			case models.PaymentCompleted:
				es.Revenue += r.PaymentAmount
			case models.PaymentPending:
				es.PendingRevenue += r.PaymentAmount
			}
		}
	}
	return es
}

// DashboardStats is the dashboard payload.
type DashboardStats struct {
	TotalMembers     int                        `json:"totalMembers"`
	MemberStatus     map[string]int             `json:"memberStatus"`
	TotalAssetValue  float64                    `json:"totalAssetValue"`
	AssetsByStatus   map[models.AssetStatus]int `json:"assetsByStatus"`
	MaintenanceCount int                        `json:"maintenanceCount"`
	Financial        FinancialSummary           `json:"financial"`
	MediaTypes       map[string]int             `json:"mediaTypes"`
	UpcomingEvents   []models.Event             `json:"upcomingEvents"`
	Birthdays        []models.Member            `json:"birthdays"`
	Education        EducationSummary           `json:"education"`
	Groups           int                        `json:"groups"`
}

// Dashboard computes every dashboard widget relative to now.
func (sn Snapshot) Dashboard(now time.Time) DashboardStats {
	byStatus := sn.AssetsByStatus()
	return DashboardStats{
		TotalMembers:     len(sn.Members),
		MemberStatus:     sn.MemberStatusCounts(),
		TotalAssetValue:  sn.TotalAssetValue(),
		AssetsByStatus:   byStatus,
		MaintenanceCount: byStatus[models.AssetMaintenance],
		Financial:        sn.FinancialSummary(),
		MediaTypes:       sn.MediaTypeCounts(),
		UpcomingEvents:   sn.UpcomingEvents(now, 5),
		Birthdays:        sn.BirthdaysInMonth(now.Month()),
		Education:        sn.EducationSummary(),
		Groups:           len(sn.Groups),
	}
}
