package integration

import (
	"bytes"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap/zaptest"

	"github.com/materialerosion/PACK2/internal/api"
	"github.com/materialerosion/PACK2/internal/coverage"
	"github.com/materialerosion/PACK2/internal/geometry"
	"github.com/materialerosion/PACK2/internal/series"
	"github.com/materialerosion/PACK2/internal/storage"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()

	store := storage.NewMemoryStorage(uuid.NewString)
	engine := geometry.New()
	gen := series.New(engine, series.DefaultLimits())
	analyzer := coverage.New(coverage.DefaultThresholds())
	handler := api.NewHandler(engine, gen, analyzer, store)
	logger := zaptest.NewLogger(t)
	return api.NewRouter(handler, logger)
}

func performRequest(t *testing.T, handler http.Handler, method, target string, body []byte, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestIntegrationFlow(t *testing.T) {
	handler := newRouter(t)
	jsonHeaders := map[string]string{"Content-Type": "application/json"}

	rec := performRequest(t, handler, http.MethodGet, "/api/health", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from health, got %d", rec.Code)
	}

	// Register a custom base template.
	container := map[string]any{
		"id":    "template-1",
		"name":  "House Boston round",
		"shape": "boston-round",
		"dimensions": map[string]any{
			"height":         105,
			"bodyHeight":     90,
			"bodyDiameter":   45,
			"neckHeight":     10,
			"neckDiameter":   37,
			"neckFinish":     "38-400",
			"shoulderRadius": 12,
			"shoulderAngle":  60,
			"baseProfile":    "flat",
			"baseDiameter":   45,
			"wallThickness":  1.2,
		},
	}
	body, _ := json.Marshal(container)
	rec = performRequest(t, handler, http.MethodPost, "/api/containers", body, jsonHeaders)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from container create, got %d: %s", rec.Code, rec.Body.String())
	}

	// Generate a series scaled from it.
	generate := map[string]any{
		"config": map[string]any{
			"algorithm":      "linear",
			"minVolume":      100,
			"maxVolume":      500,
			"bottleCount":    5,
			"baseTemplateId": "template-1",
		},
	}
	body, _ = json.Marshal(generate)
	rec = performRequest(t, handler, http.MethodPost, "/api/series/generate", body, jsonHeaders)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from generate, got %d: %s", rec.Code, rec.Body.String())
	}

	var generated struct {
		Series struct {
			ID      string `json:"id"`
			Bottles []struct {
				Volume float64 `json:"volume"`
			} `json:"bottles"`
		} `json:"series"`
		CalculationTimeMs int64 `json:"calculationTimeMs"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&generated); err != nil {
		t.Fatalf("decode generate response: %v", err)
	}
	if generated.Series.ID == "" {
		t.Fatalf("expected generated series to carry an id")
	}
	if len(generated.Series.Bottles) != 5 {
		t.Fatalf("expected 5 bottles, got %d", len(generated.Series.Bottles))
	}
	targets := []float64{100, 200, 300, 400, 500}
	for i, b := range generated.Series.Bottles {
		if math.Abs(b.Volume-targets[i]) > 0.015*targets[i] {
			t.Fatalf("bottle %d: volume %f too far from target %f", i, b.Volume, targets[i])
		}
	}

	// Analyze the stored series by id.
	body, _ = json.Marshal(map[string]any{"seriesId": generated.Series.ID})
	rec = performRequest(t, handler, http.MethodPost, "/api/series/analyze", body, jsonHeaders)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from analyze, got %d: %s", rec.Code, rec.Body.String())
	}

	var analysis struct {
		CoverageSpan       float64 `json:"coverageSpan"`
		CoverageEfficiency float64 `json:"coverageEfficiency"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&analysis); err != nil {
		t.Fatalf("decode analyze response: %v", err)
	}
	if analysis.CoverageSpan <= 0 || analysis.CoverageEfficiency <= 0 {
		t.Fatalf("expected positive coverage metrics, got %+v", analysis)
	}

	// Generate a second series and compare the two.
	generate["config"].(map[string]any)["algorithm"] = "logarithmic"
	body, _ = json.Marshal(generate)
	rec = performRequest(t, handler, http.MethodPost, "/api/series/generate", body, jsonHeaders)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from second generate, got %d: %s", rec.Code, rec.Body.String())
	}
	var second struct {
		Series struct {
			ID string `json:"id"`
		} `json:"series"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&second); err != nil {
		t.Fatalf("decode second generate response: %v", err)
	}

	compare := map[string]any{
		"series1Id": generated.Series.ID,
		"series2Id": second.Series.ID,
	}
	body, _ = json.Marshal(compare)
	rec = performRequest(t, handler, http.MethodPost, "/api/series/compare", body, jsonHeaders)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from compare, got %d: %s", rec.Code, rec.Body.String())
	}

	var comparison struct {
		CombinedCoverage float64  `json:"combinedCoverage"`
		Recommendations  []string `json:"recommendations"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&comparison); err != nil {
		t.Fatalf("decode compare response: %v", err)
	}
	if comparison.CombinedCoverage <= 0 {
		t.Fatalf("expected positive combined coverage, got %f", comparison.CombinedCoverage)
	}
	if len(comparison.Recommendations) == 0 {
		t.Fatalf("expected at least one recommendation")
	}
}

func TestIntegrationStandardsUpdateAffectsGeneration(t *testing.T) {
	handler := newRouter(t)
	jsonHeaders := map[string]string{"Content-Type": "application/json"}

	// Collapse the tables to a single wide bracket.
	tables := map[string]any{
		"diameterBrackets": []map[string]any{
			{"maxVolume": 5000, "diameter": 60},
		},
		"neckStandards": []map[string]any{
			{"bodyDiameter": 60, "neckDiameter": 33, "finish": "33-400"},
		},
	}
	body, _ := json.Marshal(tables)
	rec := performRequest(t, handler, http.MethodPut, "/api/standards", body, jsonHeaders)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from standards update, got %d: %s", rec.Code, rec.Body.String())
	}

	generate := map[string]any{
		"config": map[string]any{
			"algorithm":   "linear",
			"minVolume":   100,
			"maxVolume":   300,
			"bottleCount": 3,
		},
	}
	body, _ = json.Marshal(generate)
	rec = performRequest(t, handler, http.MethodPost, "/api/series/generate", body, jsonHeaders)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from generate, got %d: %s", rec.Code, rec.Body.String())
	}

	var generated struct {
		Series struct {
			Bottles []struct {
				Dimensions struct {
					BodyDiameter float64 `json:"bodyDiameter"`
					NeckFinish   string  `json:"neckFinish"`
				} `json:"dimensions"`
			} `json:"bottles"`
		} `json:"series"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&generated); err != nil {
		t.Fatalf("decode generate response: %v", err)
	}
	for i, b := range generated.Series.Bottles {
		if b.Dimensions.BodyDiameter != 60 {
			t.Fatalf("bottle %d: expected snapped diameter 60, got %f", i, b.Dimensions.BodyDiameter)
		}
		if b.Dimensions.NeckFinish != "33-400" {
			t.Fatalf("bottle %d: expected neck finish 33-400, got %s", i, b.Dimensions.NeckFinish)
		}
	}
}
