package api

import (
	stderrors "errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/guidegen/errors"
	"github.com/kbukum/guidegen/guide"
	"github.com/kbukum/guidegen/logger"
	"github.com/kbukum/guidegen/server"
	"github.com/kbukum/guidegen/validation"
)

// HeaderRunID names the run of a stream response.
const HeaderRunID = "X-Run-Id"

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// StreamGuide starts a generation run and streams its frames as
// server-sent events. A consumer that disconnects detaches the stream;
// the run stops at the next step boundary.
func (h *Handler) StreamGuide(c *gin.Context) {
	var req guide.Request
	if !bind(c, &req) {
		return
	}

	stream, err := h.guides.Generate(c.Request.Context(), req)
	switch {
	case stderrors.Is(err, guide.ErrBusy):
		c.Header("Retry-After", "5")
		server.RespondWithError(c, errors.ServiceUnavailable("guide service").WithCause(err))
		return
	case stderrors.Is(err, guide.ErrStopped):
		server.RespondWithError(c, errors.ServiceUnavailable("guide service").WithCause(err))
		return
	case err != nil:
		server.RespondWithError(c, err)
		return
	}

	c.Header(HeaderRunID, stream.ID())
	if err := stream.Serve(c.Request.Context(), c.Writer); err != nil {
		h.log.WithContext(c.Request.Context()).Debug("Stream ended early", logger.Fields(
			logger.FieldRunID, stream.ID(),
			logger.FieldError, err.Error(),
		))
	}
}

// GetRun returns the latest snapshot of a run still held by the hub.
func (h *Handler) GetRun(c *gin.Context) {
	id := c.Param("id")
	if _, err := validation.ValidateUUID("id", id); err != nil {
		server.RespondWithError(c, err)
		return
	}
	state, ok := h.hub.Snapshot(id)
	if !ok {
		server.RespondWithError(c, errors.NotFound("run", id))
		return
	}
	server.RespondOK(c, gin.H{"runId": id, "state": state})
}

// GetGuide returns a stored guide.
func (h *Handler) GetGuide(c *gin.Context) {
	if g, ok := h.lookupGuide(c); ok {
		server.RespondOK(c, g)
	}
}

// ExportGuide renders a stored guide as Markdown.
func (h *Handler) ExportGuide(c *gin.Context) {
	g, ok := h.lookupGuide(c)
	if !ok {
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+g.ID+`.md"`)
	c.Data(http.StatusOK, "text/markdown; charset=utf-8", guide.Markdown(g))
}

// lookupGuide loads the guide named by the :id parameter, responding with
// an error when there is none.
func (h *Handler) lookupGuide(c *gin.Context) (*guide.TravelGuide, bool) {
	id := c.Param("id")
	if _, err := validation.ValidateUUID("id", id); err != nil {
		server.RespondWithError(c, err)
		return nil, false
	}
	g, err := h.guides.Repository().Get(c.Request.Context(), id)
	if stderrors.Is(err, guide.ErrNotFound) {
		server.RespondWithError(c, errors.NotFound("guide", id))
		return nil, false
	}
	if err != nil {
		server.RespondWithError(c, err)
		return nil, false
	}
	return g, true
}

// ListGuides returns the most recent guides, newest first. ?limit= caps
// the list at 100.
func (h *Handler) ListGuides(c *gin.Context) {
	limit := defaultListLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		v := validation.New().Custom(err == nil, "limit", "must be a number")
		if err == nil {
			v.Range("limit", n, 1, maxListLimit)
		}
		if err := v.Err(); err != nil {
			server.RespondWithError(c, err)
			return
		}
		limit = n
	}

	summaries, err := h.guides.Repository().Recent(c.Request.Context(), limit)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	if summaries == nil {
		summaries = []guide.Summary{}
	}
	server.RespondOKWithMeta(c, summaries, &server.Meta{Total: len(summaries), Limit: limit})
}
