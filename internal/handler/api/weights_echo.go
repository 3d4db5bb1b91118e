package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	models "EventWeights/internal/domain/models"
	domrepo "EventWeights/internal/domain/repository"
	icache "EventWeights/internal/service/cache"
	"EventWeights/internal/services/features"
	"EventWeights/internal/usecase"
	xhttp "EventWeights/pkg/http"
	xlogger "EventWeights/pkg/logger"
	xutil "EventWeights/pkg/util"

	"github.com/labstack/echo/v4"
)

// ServiceName is reported by the metadata endpoint and used as trace node default.
const ServiceName = "brain-weights-microservice"

// HealthFunc checks the relational store behind the snapshot.
type HealthFunc func(ctx context.Context) error

// WeightsEchoHandler serves weight vectors and the weight-code catalog.
type WeightsEchoHandler struct {
	logger   *xlogger.Logger
	calc     *usecase.WeightCalculator
	cache    icache.BytesCache
	cacheTTL time.Duration
	health   HealthFunc
	version  string
}

func NewWeightsEchoHandler(logger *xlogger.Logger, calc *usecase.WeightCalculator, version string) *WeightsEchoHandler {
	if logger == nil {
		logger = xlogger.NewNop()
	}
	return &WeightsEchoHandler{logger: logger, calc: calc, version: version}
}

// SetCache enables the /values response cache. A nil cache disables it.
func (h *WeightsEchoHandler) SetCache(c icache.BytesCache, ttl time.Duration) {
	h.cache = c
	h.cacheTTL = ttl
}

// SetHealth sets the store check reported by the metadata endpoint.
func (h *WeightsEchoHandler) SetHealth(fn HealthFunc) { h.health = fn }

func (h *WeightsEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/", h.Metadata)
	e.GET("/values", h.Values)
	e.GET("/weights", h.Weights)
	e.GET("/new_weights", h.NewWeights)
}

func (h *WeightsEchoHandler) Values(c echo.Context) error {
	req := &models.ValuesRequest{}
	if verr := xhttp.BindQuery(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if c.QueryParam("pair") == "" {
		req.Pair = domrepo.DefaultInstrumentID
	}
	target, ok := xutil.ParseTimestamp(req.Date)
	if !ok {
		return xhttp.AppErrorResponse(c,
			xhttp.NewAppError("ERR_INVALID_DATE", "date", "Invalid date format", http.StatusBadRequest).
				WithParam("value", req.Date))
	}

	snap, err := h.calc.Snapshot()
	if err != nil {
		return h.unavailable(c, err)
	}

	ctx := c.Request().Context()
	g := models.GranularityFromFlag(req.Day)
	key := icache.ValuesKey(snap.Version, req.Pair, int(g), target.Unix())
	if h.cache != nil {
		if b, hit, err := h.cache.GetBytes(ctx, key); err != nil {
			h.logger.Warn("values cache get failed", xlogger.String("key", key), xlogger.Error(err))
		} else if hit {
			return c.JSONBlob(http.StatusOK, b)
		}
	}

	vals, err := h.calc.ComputeOn(ctx, snap, req.Pair, g, target)
	if err != nil {
		h.logger.Error("values compute error",
			xlogger.Int("pair", req.Pair),
			xlogger.String("granularity", g.String()),
			xlogger.Time("date", target),
			xlogger.Error(err),
		)
		return xhttp.AppErrorResponse(c, xhttp.InternalError("compute failed").WithError(err))
	}
	b, err := json.Marshal(vals)
	if err != nil {
		return xhttp.AppErrorResponse(c, xhttp.InternalError("encode failed").WithError(err))
	}

	if h.cache != nil {
		if err := h.cache.SetBytes(ctx, key, b, h.cacheTTL); err != nil {
			h.logger.Warn("values cache set failed", xlogger.String("key", key), xlogger.Error(err))
		}
	}
	return c.JSONBlob(http.StatusOK, b)
}

func (h *WeightsEchoHandler) Weights(c echo.Context) error {
	snap, err := h.calc.Snapshot()
	if err != nil {
		return h.unavailable(c, err)
	}
	return xhttp.RawResponse(c, features.CodeStrings(snap.Codes()))
}

func (h *WeightsEchoHandler) NewWeights(c echo.Context) error {
	req := &models.NewWeightsRequest{}
	if verr := xhttp.BindQuery(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	code, err := models.ParseWeightCode(req.Code)
	if err != nil {
		return xhttp.AppErrorResponse(c,
			xhttp.NewAppError("ERR_INVALID_CODE", "code", "Invalid weight_code format", http.StatusBadRequest).
				WithParam("value", req.Code).
				WithError(err))
	}

	snap, err := h.calc.Snapshot()
	if err != nil {
		return h.unavailable(c, err)
	}
	return xhttp.RawResponse(c, features.CodeStrings(snap.CodesAfter(code)))
}

func (h *WeightsEchoHandler) Metadata(c echo.Context) error {
	info := models.ServiceInfo{
		Status:  "ok",
		Name:    ServiceName,
		Version: h.version,
		Text:    "Calculates historical market weights based on cyclical economic events",
		Metadata: map[string]string{
			"stack": "Go + echo",
		},
	}

	if snap, err := h.calc.Snapshot(); err == nil {
		st := snap.Stats()
		info.Snapshot = &models.SnapshotInfo{
			Version:     snap.Version,
			LoadedAt:    snap.LoadedAt.Format(time.RFC3339),
			Events:      st.Events,
			Occurrences: st.Occurrences,
			Series:      st.Series,
			Rates:       st.Rates,
			Codes:       st.Codes,
		}
	} else {
		info.Status = "loading"
	}

	if h.health != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()
		if err := h.health(ctx); err != nil {
			info.Status = "error"
			info.Error = err.Error()
		}
	}
	return xhttp.RawResponse(c, info)
}

func (h *WeightsEchoHandler) unavailable(c echo.Context, err error) error {
	if errors.Is(err, usecase.ErrNoSnapshot) {
		return xhttp.AppErrorResponse(c, xhttp.ServiceUnavailableError("snapshot not loaded yet").WithError(err))
	}
	return xhttp.AppErrorResponse(c, xhttp.InternalError("snapshot unavailable").WithError(err))
}
