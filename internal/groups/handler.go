package groups

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/church-console/backend/internal/crud"
	"github.com/church-console/backend/internal/httperr"
	"github.com/church-console/backend/internal/models"
	"github.com/church-console/backend/internal/store"
	"github.com/church-console/backend/pkg/response"
)

// CreateRequest is the body for POST /groups.
type CreateRequest struct {
	Name            string                  `json:"name" binding:"required,max=100"`
	Description     string                  `json:"description" binding:"max=500"`
	Category        string                  `json:"category" binding:"required"`
	Status          string                  `json:"status" binding:"omitempty,oneof=active inactive"`
	Leader          *string                 `json:"leader"`
	Members         []string                `json:"members"`
	MeetingSchedule *models.MeetingSchedule `json:"meetingSchedule"`
}

func (r CreateRequest) group() models.Group {
	g := models.Group{
		Name:            r.Name,
		Description:     r.Description,
		Category:        r.Category,
		Status:          r.Status,
		Leader:          r.Leader,
		Members:         r.Members,
		MeetingSchedule: r.MeetingSchedule,
	}
	if g.Status == "" {
		g.Status = models.GroupActive
	}
	if g.Members == nil {
		g.Members = []string{}
	}
	return g
}

// AddMemberRequest is the body for POST /groups/:id/members.
type AddMemberRequest struct {
	MemberID string `json:"memberId" binding:"required"`
}

// Handler handles group endpoints.
type Handler struct {
	*crud.Handler[models.Group]
	store *store.Store
}

// NewHandler creates a group handler.
func NewHandler(st *store.Store, logger *zap.Logger) *Handler {
	return &Handler{
		Handler: crud.New(st.Groups, models.GroupSchema, crud.BindJSON(CreateRequest.group), models.Group.ValidateFields, logger),
		store:   st,
	}
}

// Register mounts the group routes.
func (h *Handler) Register(rg *gin.RouterGroup, write ...gin.HandlerFunc) {
	h.Handler.Register(rg, write...)
	rg.GET("/:id/members", h.ListMembers)
	rg.GET("/:id/available-members", h.AvailableMembers)
	rg.POST("/:id/members", crud.Guarded(write, h.AddMember)...)
	rg.DELETE("/:id/members/:memberId", crud.Guarded(write, h.RemoveMember)...)
}

// ListMembers handles GET /groups/:id/members: the member records of the group.
func (h *Handler) ListMembers(c *gin.Context) {
	if _, ok := h.store.Groups.Get(c.Param("id")); !ok {
		response.NotFound(c, "group not found")
		return
	}
	response.OK(c, h.store.Snapshot().GroupMembers(c.Param("id")))
}

// AvailableMembers handles GET /groups/:id/available-members: members not yet in the group.
func (h *Handler) AvailableMembers(c *gin.Context) {
	if _, ok := h.store.Groups.Get(c.Param("id")); !ok {
		response.NotFound(c, "group not found")
		return
	}
	response.OK(c, h.store.Snapshot().AvailableMembers(c.Param("id")))
}

// AddMember handles POST /groups/:id/members.
func (h *Handler) AddMember(c *gin.Context) {
	var req AddMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	g, err := h.store.AddMemberToGroup(c.Request.Context(), c.Param("id"), req.MemberID)
	if err != nil {
		httperr.Write(c, err)
		return
	}
	response.OK(c, g)
}

// RemoveMember handles DELETE /groups/:id/members/:memberId.
func (h *Handler) RemoveMember(c *gin.Context) {
	g, err := h.store.RemoveMemberFromGroup(c.Request.Context(), c.Param("id"), c.Param("memberId"))
	if err != nil {
		httperr.Write(c, err)
		return
	}
	response.OK(c, g)
}
