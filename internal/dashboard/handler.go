package dashboard

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/church-console/backend/internal/store"
	"github.com/church-console/backend/pkg/response"
)

// Handler handles dashboard endpoints.
type Handler struct {
	store *store.Store
	now   func() time.Time
}

// NewHandler creates a dashboard handler.
func NewHandler(st *store.Store) *Handler {
	return &Handler{store: st, now: time.Now}
}

// Stats handles GET /dashboard/stats.
func (h *Handler) Stats(c *gin.Context) {
	response.OK(c, h.store.Snapshot().Dashboard(h.now()))
}

// Birthdays handles GET /dashboard/birthdays?month=1..12; the current month by default.
func (h *Handler) Birthdays(c *gin.Context) {
	month := h.now().Month()
	if m := c.Query("month"); m != "" {
		t, err := time.Parse("1", m)
		if err != nil {
			response.BadRequest(c, "invalid month")
			return
		}
		month = t.Month()
	}
	response.OK(c, h.store.Snapshot().BirthdaysInMonth(month))
}
