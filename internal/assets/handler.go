package assets

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/church-console/backend/internal/crud"
	"github.com/church-console/backend/internal/middleware"
	"github.com/church-console/backend/internal/models"
	"github.com/church-console/backend/internal/store"
	"github.com/church-console/backend/pkg/response"
	"github.com/church-console/backend/pkg/rowmap"
)

// CreateRequest is the body for POST /assets.
type CreateRequest struct {
	Name            string             `json:"name" binding:"required,max=100"`
	Description     string             `json:"description" binding:"max=500"`
	Category        string             `json:"category" binding:"required"`
	Location        string             `json:"location"`
	Status          models.AssetStatus `json:"status" binding:"required"`
	AcquisitionDate string             `json:"acquisitionDate" binding:"omitempty,datetime=2006-01-02"`
	Value           float64            `json:"value" binding:"gte=0,lte=1000000"`
	Documents       []models.Document  `json:"documents"`
}

func (r CreateRequest) asset() models.Asset {
	return models.Asset{
		Name:            r.Name,
		Description:     r.Description,
		Category:        r.Category,
		Location:        r.Location,
		Status:          r.Status,
		AcquisitionDate: r.AcquisitionDate,
		Value:           r.Value,
		Documents:       r.Documents,
	}
}

// Handler handles inventory endpoints.
type Handler struct {
	*crud.Handler[models.Asset]
	now func() time.Time
}

// NewHandler creates an asset handler.
func NewHandler(st *store.Store, logger *zap.Logger) *Handler {
	h := &Handler{
		Handler: crud.New(st.Assets, models.AssetSchema, crud.BindJSON(CreateRequest.asset), models.Asset.ValidateFields, logger),
		now:     time.Now,
	}
	h.BeforeUpdate = h.stampModified
	return h
}

// Register mounts the asset routes.
func (h *Handler) Register(rg *gin.RouterGroup, write ...gin.HandlerFunc) {
	rg.GET("/summary", h.Summary)
	h.Handler.Register(rg, write...)
}

// Summary handles GET /assets/summary: total value and counts per status.
func (h *Handler) Summary(c *gin.Context) {
	sn := store.Snapshot{Assets: h.Collection().All()}
	response.OK(c, gin.H{
		"count":      len(sn.Assets),
		"totalValue": sn.TotalAssetValue(),
		"byStatus":   sn.AssetsByStatus(),
	})
}

// stampModified records when and by whom the asset was last edited.
func (h *Handler) stampModified(c *gin.Context, p *rowmap.Patch[models.Asset]) {
	at := h.now().UTC().Format(time.RFC3339)
	p.Value.LastModifiedAt = &at
	p.Fields = append(p.Fields, "lastModifiedAt")
	if by := middleware.UserID(c); by != "" {
		p.Value.LastModifiedBy = &by
		p.Fields = append(p.Fields, "lastModifiedBy")
	}
}
