package calendar

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/church-console/backend/internal/crud"
	"github.com/church-console/backend/internal/models"
	"github.com/church-console/backend/internal/store"
	"github.com/church-console/backend/pkg/response"
)

// CreateRequest is the body for POST /events.
type CreateRequest struct {
	Title       string      `json:"title" binding:"required,max=200"`
	Description string      `json:"description"`
	Date        string      `json:"date" binding:"required,datetime=2006-01-02"`
	Time        string      `json:"time" binding:"omitempty,datetime=15:04"`
	Location    string      `json:"location"`
	ImageURL    *string     `json:"imageUrl" binding:"omitempty,url"`
	Cost        models.Cost `json:"cost"`
	Type        string      `json:"type" binding:"omitempty,oneof=service meeting special other"`
	Attendees   int         `json:"attendees" binding:"gte=0"`
}

func (r CreateRequest) event() models.Event {
	e := models.Event{
		Title:       r.Title,
		Description: r.Description,
		Date:        r.Date,
		Time:        r.Time,
		Location:    r.Location,
		ImageURL:    r.ImageURL,
		Cost:        r.Cost,
		Type:        r.Type,
		Attendees:   r.Attendees,
	}
	if e.Type == "" {
		e.Type = models.EventOther
	}
	if e.Cost.IsFree {
		e.Cost.Amount = nil
	}
	return e
}

// Handler handles calendar endpoints.
type Handler struct {
	*crud.Handler[models.Event]
	now func() time.Time
}

// NewHandler creates a calendar handler.
func NewHandler(st *store.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Handler: crud.New(st.Events, models.EventSchema, crud.BindJSON(CreateRequest.event), nil, logger),
		now:     time.Now,
	}
}

// Register mounts the calendar routes.
func (h *Handler) Register(rg *gin.RouterGroup, write ...gin.HandlerFunc) {
	rg.GET("/upcoming", h.Upcoming)
	h.Handler.Register(rg, write...)
}

// Upcoming handles GET /events/upcoming?limit=n.
func (h *Handler) Upcoming(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "5"))
	if err != nil || limit <= 0 {
		response.BadRequest(c, "invalid limit")
		return
	}
	sn := store.Snapshot{Events: h.Collection().All()}
	response.OK(c, sn.UpcomingEvents(h.now(), limit))
}
