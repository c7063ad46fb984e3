package crud

import (
	"errors"
	"reflect"
	"testing"

	"github.com/church-console/backend/internal/models"
)

func TestDecodePatch(t *testing.T) {
	p, err := DecodePatch([]byte(`{"id":"x","uploadDate":"2024","title":"Easter","size":10}`), models.MediaFileSchema)
	if err != nil {
		t.Fatalf("DecodePatch: %v", err)
	}
	if !reflect.DeepEqual(p.Fields, []string{"size", "title"}) {
		t.Fatalf("fields = %v", p.Fields)
	}
	if p.Value.Title != "Easter" || p.Value.Size != 10 {
		t.Fatalf("value = %+v", p.Value)
	}
}

func TestDecodePatchErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not an object", `[1,2]`},
		{"wrong type", `{"value":"big"}`},
		{"only read-only keys", `{"id":"x","createdAt":"y"}`},
		{"empty", `{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodePatch([]byte(tt.body), models.AssetSchema); err == nil {
				t.Fatal("expected error")
			}
		})
	}
	if _, err := DecodePatch([]byte(`{}`), models.AssetSchema); !errors.Is(err, ErrEmptyPatch) {
		t.Fatalf("empty patch error = %v", err)
	}
}
