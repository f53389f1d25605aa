package api

import (
	"context"
	stderrors "errors"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/guidegen/errors"
	"github.com/kbukum/guidegen/resilience"
	"github.com/kbukum/guidegen/server"
	"github.com/kbukum/guidegen/validation"
	"github.com/kbukum/guidegen/weather"
)

const (
	dateLayout      = "2006-01-02"
	maxStayDays     = 30
	defaultStayDays = 3
)

// GeocodeRequest resolves one address. Addresses the resolver cannot use,
// such as overlong ones, yield a null result rather than a 400.
type GeocodeRequest struct {
	Address string `json:"address" validate:"required,max=1024"`
	Hint    string `json:"hint" validate:"max=256"`
}

// BatchGeocodeRequest resolves many addresses. Entries that are not
// strings resolve to null in place. An empty list is a valid, empty batch;
// a missing one is a 400.
type BatchGeocodeRequest struct {
	Addresses []any  `json:"addresses" validate:"required,max=100"`
	Hint      string `json:"hint" validate:"max=256"`
}

// Geocode resolves a single address with the primary-then-hint strategy.
func (h *Handler) Geocode(c *gin.Context) {
	var req GeocodeRequest
	if !bind(c, &req) {
		return
	}
	res, err := h.resolver.Resolve(c.Request.Context(), req.Address, req.Hint)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, res)
}

// GeocodeBatch resolves every address; a miss is a null entry.
func (h *Handler) GeocodeBatch(c *gin.Context) {
	var req BatchGeocodeRequest
	if !bind(c, &req) {
		return
	}
	addresses := make([]string, len(req.Addresses))
	for i, a := range req.Addresses {
		if s, ok := a.(string); ok {
			addresses[i] = s
		}
	}
	server.RespondOK(c, h.resolver.ResolveBatch(c.Request.Context(), addresses, req.Hint))
}

// Weather returns an advisory for ?place=. With ?start= or ?days= it covers
// that stay, falling back to seasonal guidance past the forecast horizon.
func (h *Handler) Weather(c *gin.Context) {
	place := strings.TrimSpace(c.Query("place"))
	start := c.Query("start")
	rawDays := c.Query("days")

	v := validation.New().
		Required("place", place).
		MaxLength("place", place, 256).
		Date("start", start, dateLayout)
	days := 0
	if rawDays != "" {
		n, err := strconv.Atoi(rawDays)
		v.Custom(err == nil, "days", "must be a number")
		if err == nil {
			v.Range("days", n, 1, maxStayDays)
			days = n
		}
	}
	if err := v.Err(); err != nil {
		server.RespondWithError(c, err)
		return
	}

	ctx := c.Request.Context()
	var (
		advisory string
		err      error
	)
	if start == "" && days == 0 {
		advisory, err = h.advisor.Advise(ctx, place)
	} else {
		if days == 0 {
			days = defaultStayDays
		}
		var from time.Time
		if start != "" {
			from, _ = time.Parse(dateLayout, start)
		}
		advisory, err = h.advisor.AdviseForDateRange(ctx, place, from, days)
	}
	if err != nil {
		server.RespondWithError(c, weatherError(place, err))
		return
	}

	resp := gin.H{"place": place, "advisory": advisory}
	if days > 0 {
		resp["days"] = days
	}
	if start != "" {
		resp["start"] = start
	}
	server.RespondOK(c, resp)
}

// RateLimits reports the current window of every provider limiter.
func (h *Handler) RateLimits(c *gin.Context) {
	server.RespondOK(c, h.limits.Statuses())
}

func weatherError(place string, err error) error {
	switch {
	case stderrors.Is(err, weather.ErrUnknownPlace):
		return errors.NotFound("place", place).WithCause(err)
	case errors.IsAppError(err),
		stderrors.Is(err, context.Canceled),
		stderrors.Is(err, context.DeadlineExceeded),
		stderrors.Is(err, resilience.ErrRateLimited):
		return err
	default:
		return errors.ExternalServiceError("weather", err)
	}
}

// bind decodes and validates a JSON body, writing the error response and
// returning false when it is unusable.
func bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		server.RespondWithError(c, errors.Validation("request body must be a JSON object").WithCause(err))
		return false
	}
	if err := validation.Struct(dst); err != nil {
		server.RespondWithError(c, err)
		return false
	}
	return true
}
