// Package session serves the console session lifecycle: the initial load, sign-out and the
// notification feed.
package session

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/church-console/backend/internal/httperr"
	"github.com/church-console/backend/internal/middleware"
	"github.com/church-console/backend/internal/store"
	"github.com/church-console/backend/pkg/response"
)

// Handler handles session endpoints.
type Handler struct {
	store  *store.Store
	logger *zap.Logger
}

// NewHandler creates a session handler.
func NewHandler(st *store.Store, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{store: st, logger: logger}
}

// Load handles POST /session/load: fetch every collection. Either all collections are replaced or
// none are, and the failed ones are listed.
func (h *Handler) Load(c *gin.Context) {
	if err := h.store.FetchAll(c.Request.Context()); err != nil {
		httperr.Write(c, err)
		return
	}
	h.logger.Info("session loaded", zap.String("user_id", middleware.UserID(c)))
	response.OK(c, h.store.Status())
}

// Reset handles POST /session/reset (sign-out). It ends the caller's view only: their pending
// notification is discarded, while the shared cache stays loaded for every other user.
func (h *Handler) Reset(c *gin.Context) {
	userID := middleware.UserID(c)
	h.store.TakeNotification(userID)
	h.logger.Info("session reset", zap.String("user_id", userID))
	response.OK(c, gin.H{"signedOut": true})
}

// State handles GET /session/state.
func (h *Handler) State(c *gin.Context) {
	response.OK(c, h.store.Status())
}

// NextNotification handles GET /notifications/next: the caller's pending notification. It answers
// 204 when nothing is pending.
func (h *Handler) NextNotification(c *gin.Context) {
	n, ok := h.store.TakeNotification(middleware.UserID(c))
	if !ok {
		response.NoContent(c)
		return
	}
	response.OK(c, n)
}
