// Package httperr maps store and gateway failures to HTTP responses.
package httperr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/church-console/backend/internal/gateway"
	"github.com/church-console/backend/internal/store"
	"github.com/church-console/backend/pkg/response"
)

// Write sends err with its status: rejected 400, not found 404, transport and partial fetch 503.
// Anything else is a 500.
func Write(c *gin.Context, err error) {
	var pf *store.PartialFetchFailure
	if errors.As(err, &pf) {
		c.JSON(http.StatusServiceUnavailable, response.Body{Success: false, Error: err.Error(), Failed: pf.Collections()})
		return
	}
	switch gateway.KindOf(err) {
	case gateway.KindRejected:
		response.BadRequest(c, err.Error())
	case gateway.KindNotFound:
		response.NotFound(c, err.Error())
	case gateway.KindTransport:
		response.ServiceUnavailable(c, err.Error())
	default:
		response.Internal(c, err.Error())
	}
}
