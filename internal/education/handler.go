package education

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/church-console/backend/internal/crud"
	"github.com/church-console/backend/internal/httperr"
	"github.com/church-console/backend/internal/models"
	"github.com/church-console/backend/internal/store"
	"github.com/church-console/backend/pkg/response"
)

// CreateRequest is the body for POST /education.
type CreateRequest struct {
	Title           string   `json:"title" binding:"required,max=200"`
	Subtitle        *string  `json:"subtitle"`
	Description     string   `json:"description"`
	Date            string   `json:"date" binding:"required,datetime=2006-01-02"`
	Time            string   `json:"time" binding:"omitempty,datetime=15:04"`
	Location        string   `json:"location"`
	ImageURL        *string  `json:"imageUrl" binding:"omitempty,url"`
	LogoURL         *string  `json:"logoUrl" binding:"omitempty,url"`
	IsFree          bool     `json:"isFree"`
	Price           *float64 `json:"price" binding:"omitempty,gte=0"`
	MaxParticipants *int     `json:"maxParticipants" binding:"omitempty,gt=0"`
}

func (r CreateRequest) event() models.EducationEvent {
	e := models.EducationEvent{
		Title:           r.Title,
		Subtitle:        r.Subtitle,
		Description:     r.Description,
		Date:            r.Date,
		Time:            r.Time,
		Location:        r.Location,
		ImageURL:        r.ImageURL,
		LogoURL:         r.LogoURL,
		IsFree:          r.IsFree,
		Price:           r.Price,
		MaxParticipants: r.MaxParticipants,
		Registrations:   []models.Registration{},
	}
	if e.IsFree {
		e.Price = nil
	}
	return e
}

// RegisterRequest is the body for POST /education/:id/registrations.
type RegisterRequest struct {
	Name                   string  `json:"name" binding:"required,max=100"`
	Email                  string  `json:"email" binding:"required,email"`
	Phone                  string  `json:"phone" binding:"required"`
	AdditionalParticipants int     `json:"additionalParticipants" binding:"gte=0,lte=10"`
	SpecialRequirements    *string `json:"specialRequirements"`
}

// PaymentRequest is the body for PATCH /education/:id/registrations/:regId/payment.
type PaymentRequest struct {
	PaymentStatus string `json:"paymentStatus" binding:"required,oneof=pending completed failed"`
}

// Handler handles education event endpoints.
type Handler struct {
	*crud.Handler[models.EducationEvent]
	store *store.Store
}

// NewHandler creates an education handler.
func NewHandler(st *store.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Handler: crud.New(st.Education, models.EducationEventSchema, crud.BindJSON(CreateRequest.event), nil, logger),
		store:   st,
	}
}

// Register mounts the education routes. write guards event edits and payment updates; registration
// is open to any authenticated user.
func (h *Handler) Register(rg *gin.RouterGroup, write ...gin.HandlerFunc) {
	rg.GET("/summary", h.Summary)
	h.Handler.Register(rg, write...)
	rg.POST("/:id/registrations", h.AddRegistration)
	rg.PATCH("/:id/registrations/:regId/payment", crud.Guarded(write, h.UpdatePayment)...)
}

// AddRegistration handles POST /education/:id/registrations.
func (h *Handler) AddRegistration(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	event, err := h.store.AddEventRegistration(c.Request.Context(), c.Param("id"), models.Registration{
		Name:                   req.Name,
		Email:                  req.Email,
		Phone:                  req.Phone,
		AdditionalParticipants: req.AdditionalParticipants,
		SpecialRequirements:    req.SpecialRequirements,
	})
	if err != nil {
		httperr.Write(c, err)
		return
	}
	response.Created(c, event)
}

// UpdatePayment handles PATCH /education/:id/registrations/:regId/payment.
func (h *Handler) UpdatePayment(c *gin.Context) {
	var req PaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	event, err := h.store.UpdateRegistrationPayment(c.Request.Context(), c.Param("id"), c.Param("regId"), req.PaymentStatus)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	response.OK(c, event)
}

// Summary handles GET /education/summary.
func (h *Handler) Summary(c *gin.Context) {
	sn := store.Snapshot{EducationEvents: h.Collection().All()}
	response.OK(c, sn.EducationSummary())
}
