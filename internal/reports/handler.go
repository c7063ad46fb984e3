package reports

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/church-console/backend/internal/middleware"
	"github.com/church-console/backend/internal/store"
	"github.com/church-console/backend/pkg/queue"
	"github.com/church-console/backend/pkg/response"
)

// Exports is the queue side of asynchronous exports.
type Exports interface {
	EnqueueReportExport(ctx context.Context, format, requestedBy string) (*queue.ExportStatus, error)
	GetExportStatus(ctx context.Context, id string) (*queue.ExportStatus, error)
}

// Signer presigns downloads of finished exports.
type Signer interface {
	GeneratePresignedDownloadURL(ctx context.Context, bucket, key string, expires time.Duration) (string, error)
	ReportsBucket() string
	PresignExpire() time.Duration
}

// ExportRequest is the body for POST /reports/exports.
type ExportRequest struct {
	Format string `json:"format" binding:"required,oneof=csv xlsx pdf"`
}

// Handler serves report downloads and export jobs.
type Handler struct {
	store      *store.Store
	exports    Exports
	signer     Signer
	churchName string
	logger     *zap.Logger
	now        func() time.Time
}

// NewHandler creates a report handler. exports and signer may be nil; the export endpoints then
// answer 503. churchName heads member cards.
func NewHandler(st *store.Store, exports Exports, signer Signer, churchName string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: st, exports: exports, signer: signer, churchName: churchName, logger: logger, now: time.Now}
}

// Download returns a handler rendering the cached collections in format.
func (h *Handler) Download(format Format) gin.HandlerFunc {
	return func(c *gin.Context) {
		r, err := Build(format, h.store.Snapshot(), h.now())
		if err != nil {
			h.logger.Error("build report failed", zap.String("format", string(format)), zap.Error(err))
			response.Internal(c, "failed to build report")
			return
		}
		send(c, r)
	}
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// MembersReport handles GET /reports/members.xlsx?role=&status=&category=&baptized=.
func (h *Handler) MembersReport(c *gin.Context) {
	filter := MemberFilter{Role: c.Query("role"), Status: c.Query("status"), Category: c.Query("category")}
	if v := c.Query("baptized"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			response.BadRequest(c, "baptized must be true or false")
			return
		}
		filter.Baptized = &b
	}
	var buf bytes.Buffer
	if err := MembersWorkbook(&buf, h.store.Members.All(), filter); err != nil {
		h.logger.Error("build members report failed", zap.Error(err))
		response.Internal(c, "failed to build report")
		return
	}
	send(c, Report{Filename: MembersReportFilename, ContentType: xlsxContentType, Body: buf.Bytes()})
}

// GroupsReport handles GET /reports/groups.xlsx?category=&status=.
func (h *Handler) GroupsReport(c *gin.Context) {
	filter := GroupFilter{Category: c.Query("category"), Status: c.Query("status")}
	var buf bytes.Buffer
	if err := GroupsWorkbook(&buf, h.store.Groups.All(), filter); err != nil {
		h.logger.Error("build groups report failed", zap.Error(err))
		response.Internal(c, "failed to build report")
		return
	}
	send(c, Report{Filename: GroupsReportFilename, ContentType: xlsxContentType, Body: buf.Bytes()})
}

// MemberCard handles GET /members/:id/card.pdf.
func (h *Handler) MemberCard(c *gin.Context) {
	m, ok := h.store.Members.Get(c.Param("id"))
	if !ok {
		response.NotFound(c, "member not found")
		return
	}
	var buf bytes.Buffer
	if err := MemberCardPDF(&buf, m, h.churchName); err != nil {
		h.logger.Error("build member card failed", zap.String("member_id", m.ID), zap.Error(err))
		response.Internal(c, "failed to build member card")
		return
	}
	send(c, Report{Filename: MemberCardFilename(m.ID), ContentType: "application/pdf", Body: buf.Bytes()})
}

func send(c *gin.Context, r Report) {
	c.Header("Content-Disposition", `attachment; filename="`+r.Filename+`"`)
	c.Header("Content-Length", strconv.Itoa(len(r.Body)))
	c.Data(http.StatusOK, r.ContentType, r.Body)
}

// Enqueue handles POST /reports/exports.
func (h *Handler) Enqueue(c *gin.Context) {
	if h.exports == nil || h.signer == nil {
		response.ServiceUnavailable(c, "report exports not configured")
		return
	}
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	st, err := h.exports.EnqueueReportExport(c.Request.Context(), req.Format, middleware.UserID(c))
	if err != nil {
		h.logger.Error("enqueue report export failed", zap.Error(err))
		response.ServiceUnavailable(c, "failed to queue export")
		return
	}
	response.Accepted(c, st)
}

// Status handles GET /reports/exports/:id. Finished exports get a fresh download URL.
func (h *Handler) Status(c *gin.Context) {
	if h.exports == nil || h.signer == nil {
		response.ServiceUnavailable(c, "report exports not configured")
		return
	}
	st, err := h.exports.GetExportStatus(c.Request.Context(), c.Param("id"))
	if errors.Is(err, queue.ErrExportNotFound) {
		response.NotFound(c, "export not found")
		return
	}
	if err != nil {
		response.ServiceUnavailable(c, err.Error())
		return
	}
	if st.Status == queue.ExportDone && st.Key != "" {
		url, err := h.signer.GeneratePresignedDownloadURL(c.Request.Context(), h.signer.ReportsBucket(), st.Key, h.signer.PresignExpire())
		if err != nil {
			h.logger.Warn("presign report download failed", zap.String("export_id", st.ID), zap.Error(err))
		} else {
			st.URL = url
		}
	}
	response.OK(c, st)
}
