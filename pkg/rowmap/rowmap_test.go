package rowmap

import (
	"errors"
	"reflect"
	"testing"
)

type place struct {
	Lat  float64 `json:"lat"`
	Long float64 `json:"long"`
}

type widget struct {
	ID        string
	Name      string
	Count     int
	Note      *string
	Where     place
	Tags      []string
	CreatedAt string
}

var widgetSchema = &Schema[widget]{
	Table:   "widgets",
	Key:     "id",
	Created: "created_at",
	Order:   Order{Column: "created_at", Desc: true},
	Fields: []Field[widget]{
		Col("id", "id", func(w *widget) any { return &w.ID }),
		Col("name", "name", func(w *widget) any { return &w.Name }),
		Col("count", "count", func(w *widget) any { return &w.Count }),
		Col("note", "note", func(w *widget) any { return &w.Note }),
		Col("where", "where_lat", func(w *widget) any { return &w.Where.Lat }),
		Col("where", "where_long", func(w *widget) any { return &w.Where.Long }),
		JSONCol("tags", "tags", func(w *widget) any { return &w.Tags }),
		Col("createdAt", "created_at", func(w *widget) any { return &w.CreatedAt }),
	},
}

func TestMapFlattensAndEncodes(t *testing.T) {
	note := "fragile"
	row, err := widgetSchema.Map(widget{ID: "w1", Name: "bolt", Count: 3, Note: &note, Where: place{Lat: 1.5, Long: -2}, Tags: []string{"a"}})
	if err != nil {
		t.Fatalf("Map: %v", err)
	}
	want := Row{
		"id": "w1", "name": "bolt", "count": 3, "note": "fragile",
		"where_lat": 1.5, "where_long": -2.0, "tags": `["a"]`, "created_at": "",
	}
	if !reflect.DeepEqual(row, want) {
		t.Fatalf("Map() = %#v, want %#v", row, want)
	}
}

func TestUnmapConvertsDriverTypes(t *testing.T) {
	got, err := widgetSchema.Unmap(Row{"id": "w1", "count": int64(7), "note": []byte("x"), "tags": []byte(`["p","q"]`)})
	if err != nil {
		t.Fatalf("Unmap: %v", err)
	}
	if got.Count != 7 || got.Note == nil || *got.Note != "x" || len(got.Tags) != 2 {
		t.Fatalf("Unmap() = %+v", got)
	}
	if _, err := widgetSchema.Unmap(Row{"count": "seven"}); err == nil {
		t.Fatal("expected error assigning string to int")
	}
}

func TestPatchRow(t *testing.T) {
	row, err := widgetSchema.PatchRow(NewPatch(widget{Name: "nut", Where: place{Lat: 9}}, "name", "where"))
	if err != nil {
		t.Fatalf("PatchRow: %v", err)
	}
	want := Row{"name": "nut", "where_lat": 9.0, "where_long": 0.0}
	if !reflect.DeepEqual(row, want) {
		t.Fatalf("PatchRow() = %#v, want %#v", row, want)
	}

	if _, err := widgetSchema.PatchRow(NewPatch(widget{}, "colour")); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("unknown field: got %v", err)
	}
	if _, err := widgetSchema.PatchRow(NewPatch(widget{ID: "x"}, "id")); !errors.Is(err, ErrReadOnlyField) {
		t.Fatalf("id patch: got %v", err)
	}
	if _, err := widgetSchema.PatchRow(NewPatch(widget{}, "createdAt")); !errors.Is(err, ErrReadOnlyField) {
		t.Fatalf("createdAt patch: got %v", err)
	}
	if _, err := widgetSchema.PatchRow(Patch[widget]{}); err == nil {
		t.Fatal("expected error for empty patch")
	}
}

func TestApplyKeepsUnpatchedFields(t *testing.T) {
	dst := widget{ID: "w1", Name: "bolt", Count: 3, Tags: []string{"a"}}
	if err := widgetSchema.Apply(&dst, NewPatch(widget{Count: 10, Name: "ignored"}, "count")); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	want := widget{ID: "w1", Name: "bolt", Count: 10, Tags: []string{"a"}}
	if !reflect.DeepEqual(dst, want) {
		t.Fatalf("Apply() = %+v, want %+v", dst, want)
	}
}

func TestScanTargetsAndStamp(t *testing.T) {
	var w widget
	targets := widgetSchema.ScanTargets(&w)
	if len(targets) != len(widgetSchema.Columns()) {
		t.Fatalf("targets = %d, columns = %d", len(targets), len(widgetSchema.Columns()))
	}
	*(targets[1].(*string)) = "scanned"
	if err := targets[6].(interface{ Scan(any) error }).Scan(`["z"]`); err != nil {
		t.Fatalf("json scan: %v", err)
	}
	widgetSchema.Stamp(&w, "w9", "2024-01-01T00:00:00Z")
	if w.Name != "scanned" || len(w.Tags) != 1 || w.ID != "w9" || w.CreatedAt != "2024-01-01T00:00:00Z" {
		t.Fatalf("unexpected widget %+v", w)
	}
	if widgetSchema.ID(&w) != "w9" {
		t.Fatalf("ID() = %q", widgetSchema.ID(&w))
	}
}

func TestSortAndValues(t *testing.T) {
	rows := []Row{
		{"id": "1", "created_at": "2024-01-01", "count": 1},
		{"id": "2", "created_at": "2024-03-01", "count": 2},
		{"id": "3", "created_at": "2024-02-01", "count": 3},
	}
	widgetSchema.Sort(rows)
	var order []string
	for _, r := range rows {
		order = append(order, r["id"].(string))
	}
	if !reflect.DeepEqual(order, []string{"2", "3", "1"}) {
		t.Fatalf("order = %v", order)
	}
	args := widgetSchema.Values(rows[0], []string{"count", "id"})
	if args[0] != int64(2) || args[1] != "2" {
		t.Fatalf("Values() = %#v", args)
	}
}
