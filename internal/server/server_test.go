package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wajidashraf/CostModelAppTraining/internal/clock"
	"github.com/wajidashraf/CostModelAppTraining/internal/config"
	"github.com/wajidashraf/CostModelAppTraining/internal/costmodel/domain"
	"github.com/wajidashraf/CostModelAppTraining/internal/costmodel/repository"
	"github.com/wajidashraf/CostModelAppTraining/internal/costmodel/service"
	"github.com/wajidashraf/CostModelAppTraining/internal/idgen"
	"github.com/wajidashraf/CostModelAppTraining/internal/nrm2"
	obsmetrics "github.com/wajidashraf/CostModelAppTraining/internal/observability/metrics"
	"github.com/wajidashraf/CostModelAppTraining/internal/providers/pdf"
	"go.uber.org/zap"
)

type envelope struct {
	Success bool            `json:"success"`
	Count   int             `json:"count"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *errorPayload   `json:"error"`
}

type failingTemplates struct{}

func (failingTemplates) Defaults() ([]nrm2.Element, error) {
	return nil, &nrm2.ConfigurationError{Source: "test", Reason: "broken"}
}

func newTestServer(t *testing.T, cfg config.Config, templates nrm2.Source) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	clk := clock.NewFakeClock(time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC))
	repo := repository.New(idgen.NewSnowflake(node), clk)

	reg := prometheus.NewRegistry()
	domainMetrics, err := obsmetrics.New(obsmetrics.Config{}, reg)
	require.NoError(t, err)
	httpMetrics, err := obsmetrics.NewHTTPMetrics(obsmetrics.Config{}, reg)
	require.NoError(t, err)

	svc := service.New(service.Params{
		Log:       zap.NewNop(),
		Repo:      repo,
		Templates: templates,
		Metrics:   domainMetrics,
	})

	engine := NewEngine(EngineParams{
		Cfg:         cfg,
		Log:         zap.NewNop(),
		HTTPMetrics: httpMetrics,
		Registry:    reg,
	})
	NewServer(ServerParams{
		Gin:          engine,
		Cfg:          cfg,
		Log:          zap.NewNop(),
		Clock:        clk,
		CostModelSvc: svc,
		PDF:          pdf.New(),
	})
	return engine
}

func defaultServer(t *testing.T) *gin.Engine {
	return newTestServer(t, config.Config{Environment: "test"}, nrm2.NewProvider("", nil))
}

func templateSize(t *testing.T) int {
	t.Helper()
	elements, err := nrm2.NewProvider("", nil).Defaults()
	require.NoError(t, err)
	return len(elements)
}

func do(t *testing.T, r http.Handler, method, path, body string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func createModel(t *testing.T, r http.Handler, body string) domain.ModelDetail {
	t.Helper()
	w, env := do(t, r, http.MethodPost, "/api/models", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var detail domain.ModelDetail
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	return detail
}

func TestCreateAndCalculateScenario(t *testing.T) {
	r := defaultServer(t)

	w, env := do(t, r, http.MethodPost, "/api/models", `{"projectName":"Test","gifa":100}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, env.Success)
	assert.Equal(t, "Cost model created", env.Message)

	var detail domain.ModelDetail
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	assert.Equal(t, "Test", detail.Model.ProjectName)
	assert.Equal(t, 0.0, detail.Model.TotalCost)
	assert.Equal(t, domain.StatusDraft, detail.Model.Status)
	assert.Equal(t, templateSize(t), detail.WorksCount)
	require.Len(t, detail.Works, templateSize(t))
	for _, work := range detail.Works {
		assert.Equal(t, detail.Model.ID, work.CostModelID)
		assert.Zero(t, work.TotalCost)
	}

	w, env = do(t, r, http.MethodPost, "/api/models/"+detail.Model.ID+"/calculate", "")
	require.Equal(t, http.StatusOK, w.Code)
	var result domain.CalculationResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, 0.0, result.TotalCost)
	assert.Equal(t, detail.Model.ID, result.Model.ID)
}

func TestCreateUsesCamelCaseWireFormat(t *testing.T) {
	r := defaultServer(t)

	w, _ := do(t, r, http.MethodPost, "/api/models", `{"projectName":"Wire","projectRef":"W-1","preparedBy":"QS"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var raw struct {
		Data struct {
			Model map[string]any `json:"model"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &raw))
	model := raw.Data.Model
	assert.Equal(t, "W-1", model["projectRef"])
	assert.Equal(t, "QS", model["preparedBy"])
	assert.Contains(t, model, "totalCost")
	assert.Contains(t, model, "createdAt")
}

func TestCreateValidation(t *testing.T) {
	r := defaultServer(t)

	cases := []struct {
		name  string
		body  string
		field string
		code  string
	}{
		{"missing name", `{}`, "projectName", "required"},
		{"long name", `{"projectName":"` + strings.Repeat("a", 201) + `"}`, "projectName", "too_big"},
		{"negative gifa", `{"projectName":"A","gifa":-1}`, "gifa", "too_small"},
		{"zero gifa", `{"projectName":"A","gifa":0}`, "gifa", "too_small"},
		{"bad status", `{"projectName":"A","status":"pending"}`, "status", "invalid_enum_value"},
		{"long ref", `{"projectName":"A","projectRef":"` + strings.Repeat("r", 51) + `"}`, "projectRef", "too_big"},
		{"wrong type", `{"projectName":42}`, "projectName", "invalid_type"},
		{"blank name", `{"projectName":"   "}`, "projectName", "invalid_project_name"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, env := do(t, r, http.MethodPost, "/api/models", tc.body)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.False(t, env.Success)
			require.NotNil(t, env.Error)
			assert.Equal(t, "validation_error", env.Error.Type)
			require.NotEmpty(t, env.Error.Errors)
			assert.Equal(t, tc.field, env.Error.Errors[0].Field)
			assert.Equal(t, tc.code, env.Error.Errors[0].Code)
		})
	}

	_, env := do(t, r, http.MethodGet, "/api/models", "")
	assert.Equal(t, 0, env.Count)
}

func TestCreateTemplateFailureIsConfigurationError(t *testing.T) {
	r := newTestServer(t, config.Config{Environment: "test"}, failingTemplates{})

	w, env := do(t, r, http.MethodPost, "/api/models", `{"projectName":"A"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "configuration_error", env.Error.Type)
	assert.NotContains(t, w.Body.String(), "broken")

	w, _ = do(t, r, http.MethodGet, "/api/nrm2/elements", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	_, env = do(t, r, http.MethodGet, "/api/models", "")
	assert.Equal(t, 0, env.Count)
}

func TestGetAndListModels(t *testing.T) {
	r := defaultServer(t)
	first := createModel(t, r, `{"projectName":"First"}`)
	createModel(t, r, `{"projectName":"Second"}`)

	w, env := do(t, r, http.MethodGet, "/api/models", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 2, env.Count)
	var models []domain.CostModel
	require.NoError(t, json.Unmarshal(env.Data, &models))
	assert.Equal(t, "First", models[0].ProjectName)
	assert.Equal(t, "Second", models[1].ProjectName)

	w, env = do(t, r, http.MethodGet, "/api/models/"+first.Model.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	var detail domain.ModelDetail
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	assert.Equal(t, templateSize(t), detail.WorksCount)

	w, env = do(t, r, http.MethodGet, "/api/models/does-not-exist", "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "not_found", env.Error.Type)
	assert.Equal(t, "cost model not found", env.Error.Message)
}

func TestUpdateMeasuredWork(t *testing.T) {
	r := defaultServer(t)
	detail := createModel(t, r, `{"projectName":"Riverside"}`)
	workPath := "/api/measured-works/" + detail.Works[0].ID

	w, env := do(t, r, http.MethodPatch, workPath, `{"quantity":450,"unitRate":150}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Measured work updated", env.Message)
	var work domain.MeasuredWork
	require.NoError(t, json.Unmarshal(env.Data, &work))
	assert.Equal(t, 67500.0, work.TotalCost)

	w, env = do(t, r, http.MethodPatch, workPath, `{"notes":"from drawings rev C"}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &work))
	assert.Equal(t, 67500.0, work.TotalCost)
	assert.Equal(t, "from drawings rev C", work.Notes)

	w, env = do(t, r, http.MethodPatch, "/api/measured-works/"+detail.Works[1].ID, `{"quantity":250,"unitRate":170,"unit":"t"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w, env = do(t, r, http.MethodGet, "/api/models/"+detail.Model.ID, "")
	require.Equal(t, http.StatusOK, w.Code)
	var fetched domain.ModelDetail
	require.NoError(t, json.Unmarshal(env.Data, &fetched))
	assert.Equal(t, 0.0, fetched.Model.TotalCost)

	w, env = do(t, r, http.MethodPost, "/api/models/"+detail.Model.ID+"/calculate", "")
	require.Equal(t, http.StatusOK, w.Code)
	var result domain.CalculationResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, 110000.0, result.TotalCost)
}

func TestUpdateMeasuredWorkRejectsBadBodies(t *testing.T) {
	r := defaultServer(t)
	detail := createModel(t, r, `{"projectName":"A"}`)
	workPath := "/api/measured-works/" + detail.Works[0].ID

	cases := []struct {
		name  string
		body  string
		field string
		code  string
	}{
		{"empty object", `{}`, "body", "invalid_update"},
		{"empty body", ``, "body", "invalid_update"},
		{"all null", `{"notes":null}`, "body", "invalid_update"},
		{"unknown field", `{"quantity":1,"colour":"red"}`, "colour", "unrecognized_key"},
		{"negative quantity", `{"quantity":-1}`, "quantity", "too_small"},
		{"negative rate", `{"unitRate":-5}`, "unitRate", "too_small"},
		{"bad unit", `{"unit":"ft"}`, "unit", "invalid_enum_value"},
		{"empty code", `{"elementCode":""}`, "elementCode", "too_small"},
		{"long notes", `{"notes":"` + strings.Repeat("n", 501) + `"}`, "notes", "too_big"},
		{"string quantity", `{"quantity":"ten"}`, "quantity", "invalid_type"},
		{"overflowing total", `{"quantity":1e200,"unitRate":1e200}`, "totalCost", "total_out_of_range"},
		{"total above maximum", `{"quantity":1e7,"unitRate":1e7}`, "totalCost", "total_out_of_range"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w, env := do(t, r, http.MethodPatch, workPath, tc.body)
			require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			require.NotNil(t, env.Error)
			require.NotEmpty(t, env.Error.Errors)
			assert.Equal(t, tc.field, env.Error.Errors[0].Field)
			assert.Equal(t, tc.code, env.Error.Errors[0].Code)
		})
	}

	w, env := do(t, r, http.MethodGet, workPath, "")
	require.Equal(t, http.StatusOK, w.Code)
	var work domain.MeasuredWork
	require.NoError(t, json.Unmarshal(env.Data, &work))
	assert.Zero(t, work.Quantity)
	assert.Equal(t, detail.Works[0].UpdatedAt, work.UpdatedAt)

	w, _ = do(t, r, http.MethodPatch, "/api/measured-works/missing", `{"quantity":1}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = do(t, r, http.MethodGet, "/api/models/"+detail.Model.ID, "")
	assert.Equal(t, http.StatusOK, w.Code)
	w, env = do(t, r, http.MethodPost, "/api/models/"+detail.Model.ID+"/calculate", "")
	require.Equal(t, http.StatusOK, w.Code)
	var result domain.CalculationResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Zero(t, result.TotalCost)
}

func TestListMeasuredWorks(t *testing.T) {
	r := defaultServer(t)
	first := createModel(t, r, `{"projectName":"First"}`)
	createModel(t, r, `{"projectName":"Second"}`)

	_, env := do(t, r, http.MethodGet, "/api/measured-works", "")
	assert.Equal(t, 2*templateSize(t), env.Count)

	_, env = do(t, r, http.MethodGet, "/api/measured-works?costModelId="+first.Model.ID, "")
	assert.Equal(t, templateSize(t), env.Count)
	var works []domain.MeasuredWork
	require.NoError(t, json.Unmarshal(env.Data, &works))
	for _, w := range works {
		assert.Equal(t, first.Model.ID, w.CostModelID)
	}

	w, env := do(t, r, http.MethodGet, "/api/measured-works?costModelId=unknown", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, env.Count)
	assert.JSONEq(t, `[]`, string(env.Data))
}

func TestDeleteModelCascades(t *testing.T) {
	r := defaultServer(t)
	detail := createModel(t, r, `{"projectName":"Doomed"}`)

	w, _ := do(t, r, http.MethodDelete, "/api/models/"+detail.Model.ID, "")
	require.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	w, _ = do(t, r, http.MethodGet, "/api/models/"+detail.Model.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	_, env := do(t, r, http.MethodGet, "/api/measured-works?costModelId="+detail.Model.ID, "")
	assert.Equal(t, 0, env.Count)

	w, _ = do(t, r, http.MethodGet, "/api/measured-works/"+detail.Works[0].ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = do(t, r, http.MethodDelete, "/api/models/"+detail.Model.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteMeasuredWork(t *testing.T) {
	r := defaultServer(t)
	detail := createModel(t, r, `{"projectName":"A"}`)
	path := "/api/measured-works/" + detail.Works[0].ID

	w, _ := do(t, r, http.MethodDelete, path, "")
	require.Equal(t, http.StatusNoContent, w.Code)

	w, env := do(t, r, http.MethodDelete, path, "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "measured work not found", env.Error.Message)

	_, env = do(t, r, http.MethodGet, "/api/models/"+detail.Model.ID, "")
	var fetched domain.ModelDetail
	require.NoError(t, json.Unmarshal(env.Data, &fetched))
	assert.Equal(t, templateSize(t)-1, fetched.WorksCount)
}

func TestListNRM2Elements(t *testing.T) {
	r := defaultServer(t)

	w, env := do(t, r, http.MethodGet, "/api/nrm2/elements", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, templateSize(t), env.Count)

	var elements []nrm2.Element
	require.NoError(t, json.Unmarshal(env.Data, &elements))
	assert.Equal(t, "1", elements[0].Code)
}

func TestAdminRoutes(t *testing.T) {
	r := defaultServer(t)

	w, env := do(t, r, http.MethodPost, "/api/admin/seed", "")
	require.Equal(t, http.StatusCreated, w.Code)
	var detail domain.ModelDetail
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	assert.Equal(t, "Riverside Office Block", detail.Model.ProjectName)
	assert.Equal(t, 110000.0, detail.Model.TotalCost)

	w, env = do(t, r, http.MethodGet, "/api/admin/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"models":1,"works":2}`, string(env.Data))

	w, _ = do(t, r, http.MethodDelete, "/api/admin/data", "")
	require.Equal(t, http.StatusNoContent, w.Code)

	_, env = do(t, r, http.MethodGet, "/api/admin/stats", "")
	assert.JSONEq(t, `{"models":0,"works":0}`, string(env.Data))
}

func TestAdminRoutesHiddenInProduction(t *testing.T) {
	r := newTestServer(t, config.Config{Environment: "production"}, nrm2.NewProvider("", nil))

	w, env := do(t, r, http.MethodPost, "/api/admin/seed", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "not_found", env.Error.Type)

	w, _ = do(t, r, http.MethodDelete, "/api/admin/data", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDownloadCostReport(t *testing.T) {
	r := defaultServer(t)
	detail := createModel(t, r, `{"projectName":"Riverside Office Block","gifa":2400}`)

	w, _ := do(t, r, http.MethodGet, "/api/models/"+detail.Model.ID+"/report", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="riverside-office-block-cost-report.pdf"`, w.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF"))

	w, _ = do(t, r, http.MethodGet, "/api/models/missing/report", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthMetricsAndFallback(t *testing.T) {
	r := defaultServer(t)

	w, _ := do(t, r, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	do(t, r, http.MethodGet, "/api/models", "")
	w, _ = do(t, r, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "costmodel_http_requests_total")

	w, env := do(t, r, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, env.Success)
}

func TestMapError(t *testing.T) {
	status, payload := mapError(errors.New("boom"))
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.Equal(t, "internal server error", payload.Message)

	status, payload = mapError(domain.ErrInvalidGIFA)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "gifa", payload.Errors[0].Field)

	status, _ = mapError(domain.ErrWorkNotFound)
	assert.Equal(t, http.StatusNotFound, status)

	typ, code := classifyErrorForLog(domain.ErrModelNotFound)
	assert.Equal(t, "not_found", typ)
	assert.Equal(t, "model_not_found", code)

	typ, code = classifyErrorForLog(&nrm2.ConfigurationError{Source: "x", Reason: "y"})
	assert.Equal(t, "configuration_error", typ)
	assert.Equal(t, "configuration_error", code)
}

func TestReportFilename(t *testing.T) {
	assert.Equal(t, "canary-wharf-tower-3-cost-report.pdf", reportFilename("Canary Wharf: Tower #3"))
	assert.Equal(t, "cost-model-cost-report.pdf", reportFilename("!!!"))
}
