package server

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/guidegen/errors"
	"github.com/kbukum/guidegen/logger"
	"github.com/kbukum/guidegen/resilience"
)

// DataResponse is the standard success envelope.
type DataResponse struct {
	Data any   `json:"data"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta carries list metadata.
type Meta struct {
	Total int `json:"total"`
	Limit int `json:"limit,omitempty"`
}

// RespondWithError writes the error envelope for err. Limiter denials map
// to 429; errors that are not AppErrors become a logged 500 without the
// cause in the body.
func RespondWithError(c *gin.Context, err error) {
	if stderrors.Is(err, resilience.ErrRateLimited) && !errors.IsAppError(err) {
		err = errors.RateLimited("").WithCause(err)
	}
	appErr := errors.From(err)
	if appErr.HTTPStatus >= http.StatusInternalServerError {
		logger.WithComponent("server").WithContext(c.Request.Context()).Error("Request failed", logger.Fields(
			"path", c.FullPath(),
			logger.FieldError, err.Error(),
		))
	}
	body := appErr.ToResponse().WithRequestID(logger.RequestIDFromContext(c.Request.Context()))
	c.AbortWithStatusJSON(appErr.HTTPStatus, body)
}

// RespondOK sends a 200 response wrapping data.
func RespondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, DataResponse{Data: data})
}

// RespondOKWithMeta sends a 200 response with data and metadata.
func RespondOKWithMeta(c *gin.Context, data any, meta *Meta) {
	c.JSON(http.StatusOK, DataResponse{Data: data, Meta: meta})
}
