package models

import (
	"reflect"
	"strings"
	"testing"

	"github.com/church-console/backend/pkg/rowmap"
)

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }
func intPtr(i int) *int           { return &i }

func roundTrip[T any](t *testing.T, schema *rowmap.Schema[T], v T) {
	t.Helper()
	row, err := schema.Map(v)
	if err != nil {
		t.Fatalf("map %s: %v", schema.Table, err)
	}
	for col := range row {
		if col != strings.ToLower(col) || strings.ContainsAny(col, " -") {
			t.Fatalf("%s: column %q is not snake_case", schema.Table, col)
		}
	}
	got, err := schema.Unmap(row)
	if err != nil {
		t.Fatalf("unmap %s: %v", schema.Table, err)
	}
	if !reflect.DeepEqual(got, v) {
		t.Fatalf("%s round trip mismatch\n got: %+v\nwant: %+v", schema.Table, got, v)
	}
}

func TestRoundTripMember(t *testing.T) {
	full := Member{
		ID: "m1", Name: "Ana Souza", Email: "ana@example.com", Phone: "(555) 123-4567",
		Photo:          strPtr("https://cdn.example.com/ana.jpg"),
		Address:        Address{Street: "Rua A", Number: "10", Neighborhood: "Centro", City: "Recife", State: "PE", CEP: "50000-000"},
		BirthDate:      "1990-05-01",
		Role:           "Leader",
		Status:         MemberActive,
		Permissions:    []Permission{PermissionDashboard, PermissionMembers},
		ConversionDate: strPtr("2005-01-01"),
		BaptismDate:    strPtr("2006-02-02"),
		IsBaptized:     true,
		Category:       "Ministry Leader",
		Position:       strPtr("Deacon"),
		MaritalStatus:  strPtr("married"),
		CreatedAt:      "2024-01-01T10:00:00Z",
	}
	roundTrip(t, MemberSchema, full)
	roundTrip(t, MemberSchema, Member{ID: "m2", Name: "Bia", Status: MemberInactive, CreatedAt: "2024-01-02T00:00:00Z"})
}

func TestRoundTripAsset(t *testing.T) {
	roundTrip(t, AssetSchema, Asset{
		ID: "a1", Name: "Piano", Description: "Grand piano", Category: "Musical Instruments",
		Location: "Main Sanctuary", Status: AssetInUse, AcquisitionDate: "2019-03-03", Value: 12500.5,
		Documents:      []Document{{Name: "invoice.pdf", Type: "application/pdf", Size: 2048, URL: "https://x/invoice.pdf", UploadedAt: "2019-03-04T00:00:00Z"}},
		LastModifiedAt: strPtr("2024-02-01T00:00:00Z"),
		LastModifiedBy: strPtr("user-1"),
		CreatedAt:      "2024-01-01T00:00:00Z",
	})
	roundTrip(t, AssetSchema, Asset{ID: "a2", Status: AssetAvailable, Documents: []Document{}})
	roundTrip(t, AssetSchema, Asset{ID: "a3", Status: AssetRetired})
}

func TestRoundTripFinancialRecord(t *testing.T) {
	roundTrip(t, FinancialRecordSchema, FinancialRecord{
		ID: "r1", Type: TypeIncome, Amount: 50, Category: "Tithes", Description: "Sunday",
		Date: "2024-01-01", Status: "confirmed", CreatedAt: "2024-01-01T12:00:00Z",
	})
}

func TestRoundTripEvent(t *testing.T) {
	roundTrip(t, EventSchema, Event{
		ID: "e1", Title: "Retreat", Description: "Youth retreat", Date: "2024-07-01", Time: "09:00",
		Location: "Camp", ImageURL: strPtr("https://x/retreat.png"),
		Cost: Cost{IsFree: false, Amount: floatPtr(35)}, Type: EventSpecial, Attendees: 40,
		CreatedAt: "2024-01-01T00:00:00Z",
	})
	roundTrip(t, EventSchema, Event{ID: "e2", Cost: Cost{IsFree: true}, Type: EventService})
}

func TestRoundTripEducationEvent(t *testing.T) {
	roundTrip(t, EducationEventSchema, EducationEvent{
		ID: "c1", Title: "Hermeneutics", Subtitle: strPtr("Module 1"), Description: "Intro",
		Date: "2024-03-01", Time: "19:30", Location: "Room 2",
		ImageURL: strPtr("https://x/img.png"), LogoURL: strPtr("https://x/logo.png"),
		IsFree: false, Price: floatPtr(20), MaxParticipants: intPtr(30),
		Registrations: []Registration{{
			ID: "g1", Name: "Caio", Email: "caio@example.com", Phone: "123", AdditionalParticipants: 1,
			SpecialRequirements: strPtr("wheelchair"), PaymentStatus: PaymentCompleted, PaymentAmount: 40,
			RegisteredAt: "2024-02-01T00:00:00Z",
		}},
		CreatedAt: "2024-01-01T00:00:00Z",
	})
	roundTrip(t, EducationEventSchema, EducationEvent{ID: "c2", IsFree: true})
}

func TestRoundTripMediaFile(t *testing.T) {
	roundTrip(t, MediaFileSchema, MediaFile{
		ID: "f1", Title: "Easter", Type: MediaVideo, URL: "https://x/easter.mp4",
		Thumbnail: strPtr("https://x/thumb.jpg"), Size: 1 << 20, Category: "Services",
		Folder: strPtr("2024"), StorageKey: strPtr("media/2024/easter.mp4"), UploadDate: "2024-04-01T00:00:00Z",
	})
	roundTrip(t, MediaFileSchema, MediaFile{ID: "f2", Type: MediaImage})
}

func TestRoundTripGroup(t *testing.T) {
	roundTrip(t, GroupSchema, Group{
		ID: "g1", Name: "Worship", Description: "Sunday band", Category: "Worship Team",
		Status: GroupActive, Leader: strPtr("m1"), Members: []string{"m1", "m2"},
		MeetingSchedule: &MeetingSchedule{Day: "Thursday", Time: "20:00", Location: "Hall"},
		CreatedAt:       "2024-01-01T00:00:00Z",
	})
	roundTrip(t, GroupSchema, Group{ID: "g2", Status: GroupInactive})
}

// Patches use JSON keys as field masks, so every view name must be a json tag of the model.
func TestViewNamesMatchJSONTags(t *testing.T) {
	check := func(name string, model any, views []string) {
		tags := map[string]bool{}
		rt := reflect.TypeOf(model)
		for i := 0; i < rt.NumField(); i++ {
			tag := strings.Split(rt.Field(i).Tag.Get("json"), ",")[0]
			tags[tag] = true
		}
		for _, v := range views {
			if !tags[v] {
				t.Errorf("%s: view field %q has no json tag", name, v)
			}
		}
	}
	check("member", Member{}, MemberSchema.ViewFields())
	check("asset", Asset{}, AssetSchema.ViewFields())
	check("financial", FinancialRecord{}, FinancialRecordSchema.ViewFields())
	check("event", Event{}, EventSchema.ViewFields())
	check("education", EducationEvent{}, EducationEventSchema.ViewFields())
	check("media", MediaFile{}, MediaFileSchema.ViewFields())
	check("group", Group{}, GroupSchema.ViewFields())
}

func TestFinancialRecordValidate(t *testing.T) {
	tests := []struct {
		name string
		rec  FinancialRecord
		want error
	}{
		{"income ok", FinancialRecord{Type: TypeIncome, Amount: 10}, nil},
		{"expense ok", FinancialRecord{Type: TypeExpense, Amount: 0.01}, nil},
		{"zero", FinancialRecord{Type: TypeIncome, Amount: 0}, ErrAmountNotPositive},
		{"negative", FinancialRecord{Type: TypeExpense, Amount: -5}, ErrAmountNotPositive},
		{"too high", FinancialRecord{Type: TypeIncome, Amount: 2_000_000}, ErrAmountTooHigh},
		{"bad type", FinancialRecord{Type: "refund", Amount: 5}, ErrRecordType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.rec.Validate(); got != tt.want {
				t.Fatalf("Validate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestValidateFieldsScopesChecks(t *testing.T) {
	if err := (FinancialRecord{Amount: -5}).ValidateFields("amount"); err != ErrAmountNotPositive {
		t.Fatalf("amount patch: %v", err)
	}
	if err := (FinancialRecord{Description: "x"}).ValidateFields("description"); err != nil {
		t.Fatalf("description patch checked unrelated fields: %v", err)
	}
	if err := (Asset{Value: 2_000_000}).ValidateFields("value"); err != ErrAssetValue {
		t.Fatalf("asset value patch: %v", err)
	}
	if err := (Asset{Name: "Piano"}).ValidateFields("name"); err != nil {
		t.Fatalf("asset name patch: %v", err)
	}
	if err := (Group{Status: "archived"}).ValidateFields("status"); err != ErrGroupStatus {
		t.Fatalf("group status patch: %v", err)
	}
	if err := (MediaFile{Title: "Easter", Type: "audio"}).ValidateFields(); err != ErrMediaType {
		t.Fatalf("media full check: %v", err)
	}
	if err := (MediaFile{Title: "  "}).ValidateFields("title"); err != ErrMediaTitle {
		t.Fatalf("blank media title: %v", err)
	}
	if err := (MediaFile{Category: "x"}).ValidateFields("category"); err != nil {
		t.Fatalf("media category patch: %v", err)
	}
}

func TestEducationEventFull(t *testing.T) {
	e := EducationEvent{MaxParticipants: intPtr(1)}
	if e.Full() {
		t.Fatal("empty event reported full")
	}
	e.Registrations = append(e.Registrations, Registration{ID: "r"})
	if !e.Full() {
		t.Fatal("event at capacity not reported full")
	}
	if (EducationEvent{Registrations: make([]Registration, 100)}).Full() {
		t.Fatal("uncapped event reported full")
	}
}

func TestPriceFor(t *testing.T) {
	e := EducationEvent{Price: floatPtr(15)}
	if got := e.PriceFor(2); got != 45 {
		t.Fatalf("PriceFor(2) = %v, want 45", got)
	}
	e.IsFree = true
	if got := e.PriceFor(2); got != 0 {
		t.Fatalf("free PriceFor(2) = %v, want 0", got)
	}
}
