package httperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/church-console/backend/internal/gateway"
	"github.com/church-console/backend/internal/store"
	"github.com/church-console/backend/pkg/response"
)

func TestWriteStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"rejected", gateway.Rejected("assets", gateway.OpCreate, errors.New("check constraint")), http.StatusBadRequest},
		{"not found", fmt.Errorf("update: %w", gateway.NotFound("assets", gateway.OpUpdate)), http.StatusNotFound},
		{"transport", gateway.Transport("assets", gateway.OpGetAll, errors.New("dial tcp")), http.StatusServiceUnavailable},
		{"partial fetch", &store.PartialFetchFailure{Failed: map[string]error{"groups": errors.New("x")}}, http.StatusServiceUnavailable},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			Write(c, tt.err)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d", w.Code, tt.want)
			}
			var body response.Body
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Success || body.Error == "" {
				t.Fatalf("body = %+v", body)
			}
		})
	}
}

func TestWriteListsFailedCollections(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	Write(c, &store.PartialFetchFailure{Failed: map[string]error{"groups": errors.New("x"), "assets": errors.New("y")}})
	var body response.Body
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Failed) != 2 || body.Failed[0] != "assets" || body.Failed[1] != "groups" {
		t.Fatalf("failed = %v", body.Failed)
	}
}
