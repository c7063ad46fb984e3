package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		name    string
		send    func(*gin.Context)
		want    int
		success bool
	}{
		{"ok", func(c *gin.Context) { OK(c, gin.H{"id": "m1"}) }, http.StatusOK, true},
		{"created", func(c *gin.Context) { Created(c, gin.H{"id": "m1"}) }, http.StatusCreated, true},
		{"accepted", func(c *gin.Context) { Accepted(c, gin.H{"id": "x1"}) }, http.StatusAccepted, true},
		{"bad request", func(c *gin.Context) { BadRequest(c, "invalid") }, http.StatusBadRequest, false},
		{"forbidden", func(c *gin.Context) { Forbidden(c, "no") }, http.StatusForbidden, false},
		{"too large", func(c *gin.Context) { TooLarge(c, "big") }, http.StatusRequestEntityTooLarge, false},
		{"unavailable", func(c *gin.Context) { ServiceUnavailable(c, "down") }, http.StatusServiceUnavailable, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			tt.send(c)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d", w.Code, tt.want)
			}
			var body Body
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Success != tt.success {
				t.Fatalf("body = %+v", body)
			}
			if !tt.success && body.Error == "" {
				t.Fatal("error message missing")
			}
		})
	}
}
