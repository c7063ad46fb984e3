package finance

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/church-console/backend/internal/crud"
	"github.com/church-console/backend/internal/models"
	"github.com/church-console/backend/internal/store"
	"github.com/church-console/backend/pkg/response"
)

// Record states; entries awaiting approval are pending.
const (
	StatusCompleted = "completed"
	StatusPending   = "pending"
)

// CreateRequest is the body for POST /finance.
type CreateRequest struct {
	Type        string  `json:"type" binding:"required,oneof=income expense"`
	Amount      float64 `json:"amount" binding:"required,gt=0,lte=1000000"`
	Category    string  `json:"category" binding:"required"`
	Description string  `json:"description" binding:"required,min=3,max=200"`
	Date        string  `json:"date"`
	Status      string  `json:"status" binding:"omitempty,oneof=completed pending"`
}

// Handler handles ledger endpoints.
type Handler struct {
	*crud.Handler[models.FinancialRecord]
	now func() time.Time
}

// NewHandler creates a ledger handler.
func NewHandler(st *store.Store, logger *zap.Logger) *Handler {
	h := &Handler{now: time.Now}
	h.Handler = crud.New(st.Financial, models.FinancialRecordSchema, crud.BindJSON(h.record), models.FinancialRecord.ValidateFields, logger)
	return h
}

// record converts the form. A missing date means today.
func (h *Handler) record(r CreateRequest) models.FinancialRecord {
	rec := models.FinancialRecord{
		Type:        r.Type,
		Amount:      r.Amount,
		Category:    r.Category,
		Description: r.Description,
		Date:        r.Date,
		Status:      r.Status,
	}
	if rec.Date == "" {
		rec.Date = h.now().UTC().Format(time.DateOnly)
	}
	if rec.Status == "" {
		rec.Status = StatusCompleted
	}
	return rec
}

// Register mounts the ledger routes.
func (h *Handler) Register(rg *gin.RouterGroup, write ...gin.HandlerFunc) {
	rg.GET("/summary", h.Summary)
	rg.GET("/categories", h.Categories)
	h.Handler.Register(rg, write...)
}

// Summary handles GET /finance/summary.
func (h *Handler) Summary(c *gin.Context) {
	records := h.Collection().All()
	sn := store.Snapshot{FinancialRecords: records}
	pending := 0
	for _, r := range records {
		if r.Status == StatusPending {
			pending++
		}
	}
	response.OK(c, gin.H{"summary": sn.FinancialSummary(), "pendingApprovals": pending})
}

// Categories handles GET /finance/categories.
func (h *Handler) Categories(c *gin.Context) {
	response.OK(c, gin.H{"income": models.IncomeCategories, "expense": models.ExpenseCategories})
}
