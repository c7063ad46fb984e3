package members

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/church-console/backend/internal/crud"
	"github.com/church-console/backend/internal/models"
	"github.com/church-console/backend/internal/store"
)

// CreateRequest is the body for POST /members.
type CreateRequest struct {
	Name           string              `json:"name" binding:"required,max=100"`
	Email          string              `json:"email" binding:"omitempty,email"`
	Phone          string              `json:"phone"`
	Photo          *string             `json:"photo" binding:"omitempty,url"`
	Address        models.Address      `json:"address"`
	BirthDate      string              `json:"birthDate" binding:"omitempty,datetime=2006-01-02"`
	Role           string              `json:"role"`
	Status         string              `json:"status" binding:"omitempty,oneof=Active Inactive"`
	Permissions    []models.Permission `json:"permissions"`
	ConversionDate *string             `json:"conversionDate" binding:"omitempty,datetime=2006-01-02"`
	BaptismDate    *string             `json:"baptismDate" binding:"omitempty,datetime=2006-01-02"`
	IsBaptized     bool                `json:"isBaptized"`
	Category       string              `json:"category"`
	Position       *string             `json:"position"`
	MaritalStatus  *string             `json:"maritalStatus"`
}

func (r CreateRequest) member() models.Member {
	m := models.Member{
		Name:           r.Name,
		Email:          r.Email,
		Phone:          r.Phone,
		Photo:          r.Photo,
		Address:        r.Address,
		BirthDate:      r.BirthDate,
		Role:           r.Role,
		Status:         r.Status,
		Permissions:    r.Permissions,
		ConversionDate: r.ConversionDate,
		BaptismDate:    r.BaptismDate,
		IsBaptized:     r.IsBaptized,
		Category:       r.Category,
		Position:       r.Position,
		MaritalStatus:  r.MaritalStatus,
	}
	if m.Status == "" {
		m.Status = models.MemberActive
	}
	if m.Permissions == nil {
		m.Permissions = []models.Permission{}
	}
	return m
}

// Handler handles member directory endpoints.
type Handler struct {
	*crud.Handler[models.Member]
}

// NewHandler creates a member handler.
func NewHandler(st *store.Store, logger *zap.Logger) *Handler {
	return &Handler{crud.New(st.Members, models.MemberSchema, crud.BindJSON(CreateRequest.member), nil, logger)}
}

// Register mounts the member routes.
func (h *Handler) Register(rg *gin.RouterGroup, write ...gin.HandlerFunc) {
	h.Handler.Register(rg, write...)
}
