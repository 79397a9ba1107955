package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/materialerosion/PACK2/internal/bottle"
	"github.com/materialerosion/PACK2/internal/coverage"
	"github.com/materialerosion/PACK2/internal/fillrange"
	"github.com/materialerosion/PACK2/internal/geometry"
	"github.com/materialerosion/PACK2/internal/series"
	"github.com/materialerosion/PACK2/internal/standards"
	"github.com/materialerosion/PACK2/internal/storage"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

// Series size accepted by the generation endpoint. The calculation core
// tolerates any count; this is the service boundary's validation.
const (
	minBottleCount = 3
	maxBottleCount = 10
)

// Handler wires the geometry engine, series generator, coverage analyzer,
// and storage into HTTP handlers.
type Handler struct {
	engine    geometry.Engine
	generator *series.Generator
	analyzer  *coverage.Analyzer
	storage   storage.Storage

	minFillPercent float64
	maxFillPercent float64

	clock func() time.Time

	mu                 sync.RWMutex
	standardsUpdatedAt time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithFillDefaults overrides the default fill percentages applied when a
// generation request omits them.
func WithFillDefaults(minPct, maxPct float64) HandlerOption {
	return func(h *Handler) {
		h.minFillPercent = minPct
		h.maxFillPercent = maxPct
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(engine geometry.Engine, gen *series.Generator, analyzer *coverage.Analyzer, store storage.Storage, opts ...HandlerOption) *Handler {
	h := &Handler{
		engine:         engine,
		generator:      gen,
		analyzer:       analyzer,
		storage:        store,
		minFillPercent: fillrange.DefaultMinPercent,
		maxFillPercent: fillrange.DefaultMaxPercent,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	h.standardsUpdatedAt = h.clock()
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleVolume(w http.ResponseWriter, r *http.Request) {
	var req volumeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	shape, ok := bottle.ParseShape(req.Shape)
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown shape", fmt.Sprintf("shape %q is not supported", req.Shape))
		return
	}

	resp := volumeResponse{
		Shape:       shape,
		Volume:      h.engine.Volume(shape, req.Dimensions),
		SurfaceArea: h.engine.SurfaceArea(req.Dimensions),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleEstimate(w http.ResponseWriter, r *http.Request) {
	var req estimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	if req.TargetVolume <= 0 {
		writeError(w, http.StatusBadRequest, "Invalid request", "targetVolume must be positive")
		return
	}
	shape, ok := bottle.ParseShape(req.Shape)
	if !ok {
		writeError(w, http.StatusBadRequest, "Unknown shape", fmt.Sprintf("shape %q is not supported", req.Shape))
		return
	}

	base := req.BaseDimensions
	if base.BodyDiameter <= 0 {
		// No usable starting point; fit from the shape's default template.
		base = h.generator.Template(bottle.GenerationConfig{BaseTemplateID: string(shape)}, nil).Dimensions
	}

	dims := h.engine.EstimateDimensions(req.TargetVolume, shape, base)
	resp := estimateResponse{
		Shape:      shape,
		Dimensions: dims,
		Volume:     h.engine.Volume(shape, dims),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleListContainers(w http.ResponseWriter, r *http.Request) {
	_ = r
	writeJSON(w, http.StatusOK, containersResponse{Containers: h.storage.ListContainers()})
}

func (h *Handler) handlePutContainer(w http.ResponseWriter, r *http.Request) {
	var c bottle.Container
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	if _, ok := bottle.ParseShape(string(c.Shape)); !ok {
		writeError(w, http.StatusBadRequest, "Unknown shape", fmt.Sprintf("shape %q is not supported", c.Shape))
		return
	}

	// Derived fields are owned by the engine, whatever the client sent.
	c.Volume = h.engine.Volume(c.Shape, c.Dimensions)
	c.SurfaceArea = h.engine.SurfaceArea(c.Dimensions)
	if c.CreatedAt.IsZero() {
		c.CreatedAt = h.clock()
	}

	if err := h.storage.PutContainer(c); err != nil {
		if errors.Is(err, storage.ErrMissingID) {
			writeError(w, http.StatusBadRequest, "Invalid container", err.Error())
			return
		}
		writeInternalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) handleGetStandards(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := standardsResponse{
		Tables:    h.storage.GetStandards(),
		UpdatedAt: h.currentStandardsUpdatedAt(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handlePutStandards(w http.ResponseWriter, r *http.Request) {
	var req standards.Tables
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	if err := h.storage.SetStandards(req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid standards tables", err.Error())
		return
	}

	h.markStandardsUpdated()

	resp := standardsResponse{
		Tables:    h.storage.GetStandards(),
		UpdatedAt: h.currentStandardsUpdatedAt(),
		Message:   "Standards tables updated successfully",
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGenerateSeries(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	cfg := req.Config
	if cfg.MinFillPercent <= 0 && cfg.MaxFillPercent <= 0 {
		cfg.MinFillPercent = h.minFillPercent
		cfg.MaxFillPercent = h.maxFillPercent
	}
	if details, ok := validateGenerationConfig(cfg); !ok {
		writeError(w, http.StatusBadRequest, "Invalid generation config", details)
		return
	}

	start := time.Now()
	generated, err := h.generator.Generate(cfg, h.storage.GetStandards(), h.storage.GetContainer)
	elapsed := time.Since(start)

	if err != nil {
		switch {
		case errors.Is(err, series.ErrInvalidVolumeBounds), errors.Is(err, series.ErrUnknownAlgorithm):
			writeError(w, http.StatusBadRequest, "Invalid generation config", err.Error())
		default:
			writeInternalError(w, err)
		}
		return
	}

	saved, err := h.storage.SaveSeries(generated)
	if err != nil {
		writeInternalError(w, err)
		return
	}

	resp := generateResponse{
		Series:            saved,
		CalculationTimeMs: elapsed.Milliseconds(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleAnalyzeSeries(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	s, details, ok := h.resolveSeries(req.SeriesID, req.Series)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid series", details)
		return
	}

	writeJSON(w, http.StatusOK, h.analyzer.AnalyzeSeries(s, nil))
}

func (h *Handler) handleCompareSeries(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	s1, details, ok := h.resolveSeries(req.Series1ID, req.Series1)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid series1", details)
		return
	}
	s2, details, ok := h.resolveSeries(req.Series2ID, req.Series2)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid series2", details)
		return
	}

	writeJSON(w, http.StatusOK, h.analyzer.Compare(s1, s2))
}

// resolveSeries returns a stored series when an id is given, otherwise the
// inline payload. A series must carry at least one bottle to be analyzable.
func (h *Handler) resolveSeries(id string, inline *bottle.Series) (bottle.Series, string, bool) {
	if id != "" {
		s, ok := h.storage.GetSeries(id)
		if !ok {
			return bottle.Series{}, fmt.Sprintf("series %q not found", id), false
		}
		return s, "", true
	}
	if inline == nil || len(inline.Bottles) == 0 {
		return bottle.Series{}, "a series with at least one bottle is required", false
	}
	return *inline, "", true
}

func validateGenerationConfig(cfg bottle.GenerationConfig) (string, bool) {
	if cfg.BottleCount < minBottleCount || cfg.BottleCount > maxBottleCount {
		return fmt.Sprintf("bottleCount must be between %d and %d", minBottleCount, maxBottleCount), false
	}
	if cfg.MinVolume <= 0 {
		return "minVolume must be positive", false
	}
	if cfg.MaxVolume <= cfg.MinVolume {
		return "maxVolume must exceed minVolume", false
	}
	if cfg.MinFillPercent < 0 || cfg.MaxFillPercent > 100 || cfg.MinFillPercent > cfg.MaxFillPercent {
		return "fill percentages must satisfy 0 <= min <= max <= 100", false
	}
	return "", true
}

func (h *Handler) currentStandardsUpdatedAt() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.standardsUpdatedAt
}

func (h *Handler) markStandardsUpdated() {
	h.mu.Lock()
	h.standardsUpdatedAt = h.clock()
	h.mu.Unlock()
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type volumeRequest struct {
	Shape      string            `json:"shape"`
	Dimensions bottle.Dimensions `json:"dimensions"`
}

type volumeResponse struct {
	Shape       bottle.Shape `json:"shape"`
	Volume      float64      `json:"volume"`
	SurfaceArea float64      `json:"surfaceArea"`
}

type estimateRequest struct {
	TargetVolume   float64           `json:"targetVolume"`
	Shape          string            `json:"shape"`
	BaseDimensions bottle.Dimensions `json:"baseDimensions"`
}

type estimateResponse struct {
	Shape      bottle.Shape      `json:"shape"`
	Dimensions bottle.Dimensions `json:"dimensions"`
	Volume     float64           `json:"volume"`
}

type containersResponse struct {
	Containers []bottle.Container `json:"containers"`
}

type standardsResponse struct {
	Tables    standards.Tables `json:"tables"`
	UpdatedAt time.Time        `json:"updatedAt"`
	Message   string           `json:"message,omitempty"`
}

type generateRequest struct {
	Config bottle.GenerationConfig `json:"config"`
}

type generateResponse struct {
	Series            bottle.Series `json:"series"`
	CalculationTimeMs int64         `json:"calculationTimeMs"`
}

type analyzeRequest struct {
	SeriesID string         `json:"seriesId,omitempty"`
	Series   *bottle.Series `json:"series,omitempty"`
}

type compareRequest struct {
	Series1ID string         `json:"series1Id,omitempty"`
	Series1   *bottle.Series `json:"series1,omitempty"`
	Series2ID string         `json:"series2Id,omitempty"`
	Series2   *bottle.Series `json:"series2,omitempty"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
