// Package http exposes the use cases over a gin router.
package http

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"

	"go.ngs.io/surge-forcing/internal/adapter/store/era5"
	"go.ngs.io/surge-forcing/internal/domain"
	"go.ngs.io/surge-forcing/internal/usecase"
)

// BlendDefaults fill fields a blend request leaves empty.
type BlendDefaults struct {
	StepCount      int
	Policy         domain.WindPolicy
	Encoding       era5.Encoding
	FillValue      float64
	LatitudeOrder  domain.LatitudeOrder
	LongitudeRange domain.LongitudeRange
}

// Handler handles HTTP requests for datasets and blends.
type Handler struct {
	blendUC   *usecase.BlendUseCase
	inspectUC *usecase.InspectUseCase
	defaults  BlendDefaults
	clock     clockwork.Clock
}

// NewHandler creates a new HTTP handler.
func NewHandler(blendUC *usecase.BlendUseCase, inspectUC *usecase.InspectUseCase, defaults BlendDefaults, clock clockwork.Clock) *Handler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Handler{
		blendUC:   blendUC,
		inspectUC: inspectUC,
		defaults:  defaults,
		clock:     clock,
	}
}

// statusFor maps use case errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput),
		errors.Is(err, domain.ErrShapeMismatch),
		errors.Is(err, domain.ErrUnsupportedPolicy):
		return http.StatusBadRequest
	case errors.Is(err, fs.ErrNotExist):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	_ = c.Error(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal error"
	}
	c.JSON(status, gin.H{"error": msg})
}

// ListDatasets handles GET /v1/datasets.
func (h *Handler) ListDatasets(c *gin.Context) {
	infos, err := h.inspectUC.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if infos == nil {
		infos = []era5.DatasetInfo{}
	}
	c.JSON(http.StatusOK, gin.H{
		"datasets": infos,
		"count":    len(infos),
	})
}

// GetDataset handles GET /v1/datasets/:name. A region is selected when all
// of lat_min, lat_max, lon_min and lon_max are given.
func (h *Handler) GetDataset(c *gin.Context) {
	req := usecase.InspectRequest{Name: c.Param("name")}

	if stepStr := c.Query("step"); stepStr != "" {
		step, err := strconv.Atoi(stepStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid step: %v", err)})
			return
		}
		req.Step = step
	}

	keys := []string{"lat_min", "lat_max", "lon_min", "lon_max"}
	var bounds [4]float64
	given := 0
	for i, key := range keys {
		s := c.Query(key)
		if s == "" {
			continue
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid %s: %v", key, err)})
			return
		}
		bounds[i] = v
		given++
	}
	switch given {
	case 0:
	case len(keys):
		req.Region = &domain.Bounds{LatMin: bounds[0], LatMax: bounds[1], LonMin: bounds[2], LonMax: bounds[3]}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat_min, lat_max, lon_min and lon_max must be given together"})
		return
	}

	resp, err := h.inspectUC.Summary(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ProbeDataset handles GET /v1/datasets/:name/probe.
func (h *Handler) ProbeDataset(c *gin.Context) {
	latStr := c.Query("lat")
	lonStr := c.Query("lon")
	if latStr == "" || lonStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lon parameters are required"})
		return
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid latitude: %v", err)})
		return
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid longitude: %v", err)})
		return
	}

	resp, err := h.inspectUC.Probe(c.Request.Context(), c.Param("name"), lat, lon)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// blendBody is the JSON body of POST /v1/blend. Paths are relative to the
// data directory.
type blendBody struct {
	Source         string `json:"source" binding:"required"`
	Observations   string `json:"observations" binding:"required"`
	Output         string `json:"output" binding:"required"`
	StepCount      *int   `json:"step_count" binding:"omitempty,min=0"`
	Policy         string `json:"policy"`
	LatitudeOrder  string `json:"latitude_order"`
	LongitudeRange string `json:"longitude_range"`
	Encoding       string `json:"encoding"`
}

func (b *blendBody) toRequest(d BlendDefaults) (usecase.BlendRequest, error) {
	req := usecase.BlendRequest{
		Source:         b.Source,
		Observations:   b.Observations,
		Output:         b.Output,
		StepCount:      d.StepCount,
		Policy:         d.Policy,
		LatitudeOrder:  d.LatitudeOrder,
		LongitudeRange: d.LongitudeRange,
		Encoding:       d.Encoding,
		FillValue:      era5.Fill(d.FillValue),
	}
	var err error
	if b.StepCount != nil {
		req.StepCount = *b.StepCount
	}
	if b.Policy != "" {
		if req.Policy, err = domain.ParseWindPolicy(b.Policy); err != nil {
			return req, err
		}
	}
	if b.LatitudeOrder != "" {
		if req.LatitudeOrder, err = domain.ParseLatitudeOrder(b.LatitudeOrder); err != nil {
			return req, err
		}
	}
	if b.LongitudeRange != "" {
		if req.LongitudeRange, err = domain.ParseLongitudeRange(b.LongitudeRange); err != nil {
			return req, err
		}
	}
	if b.Encoding != "" {
		if req.Encoding, err = era5.ParseEncoding(b.Encoding); err != nil {
			return req, err
		}
	}
	return req, nil
}

// Blend handles POST /v1/blend.
func (h *Handler) Blend(c *gin.Context) {
	var body blendBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request body: %v", err)})
		return
	}
	req, err := body.toRequest(h.defaults)
	if err != nil {
		writeError(c, err)
		return
	}

	res, err := h.blendUC.Execute(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   h.clock.Now().UTC().Format(time.RFC3339),
	})
}
