package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/Alias1177/HeartRisk/internal/history"
	"github.com/Alias1177/HeartRisk/internal/riskcheck"
	"github.com/Alias1177/HeartRisk/internal/session"
	"github.com/Alias1177/HeartRisk/internal/storage"
	"github.com/Alias1177/HeartRisk/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type fakePredictor struct {
	mu     sync.Mutex
	result models.PredictionResult
	err    error
	calls  int
}

func (f *fakePredictor) Predict(ctx context.Context, req models.PredictionRequest) (*models.PredictionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	r := f.result
	return &r, nil
}

func setupTestRouter(p models.Predictor) *gin.Engine {
	gin.SetMode(gin.TestMode)
	repo := history.NewRepository(storage.NewMemoryStore())
	sessions := session.NewManager("prediction_history", p, repo)
	return SetupRouter(NewHandlers(sessions), "*")
}

func validValues() url.Values {
	return url.Values{
		"age":      {"45"},
		"sex":      {"1"},
		"trestbps": {"130"},
		"chol":     {"230"},
		"fbs":      {"0"},
		"exang":    {"1"},
		"oldpeak":  {""},
	}
}

func postForm(router *gin.Engine, values url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func doJSON(router *gin.Engine, method, path, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func sessionCookies(t *testing.T, w *httptest.ResponseRecorder) []*http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookie {
			return []*http.Cookie{c}
		}
	}
	t.Fatal("response did not set the session cookie")
	return nil
}

func TestHealthCheck(t *testing.T) {
	router := setupTestRouter(&fakePredictor{})

	w := doJSON(router, http.MethodGet, "/api/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "healthy", response["status"])
}

func TestIndexRendersEmptyForm(t *testing.T) {
	router := setupTestRouter(&fakePredictor{})

	w := doJSON(router, http.MethodGet, "/", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Heart Disease Risk Checker")
	assert.Contains(t, body, "No history yet.")
	assert.Contains(t, body, "Educational use only")
	assert.NotContains(t, body, "Risk</h2>")
	sessionCookies(t, w)
}

func TestSubmitFormInvalid(t *testing.T) {
	p := &fakePredictor{}
	router := setupTestRouter(p)

	values := validValues()
	values.Set("age", "")
	values.Set("chol", "500")
	w := postForm(router, values, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "Enter a valid age (1–120)")
	assert.Contains(t, body, "Cholesterol should be 100–400 mg/dL")
	assert.Equal(t, 0, p.calls)
}

func TestSubmitFormSuccess(t *testing.T) {
	p := &fakePredictor{result: models.PredictionResult{Risk: "High", Probability: 82}}
	router := setupTestRouter(p)

	w := postForm(router, validValues(), nil)

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "High Risk")
	assert.Contains(t, body, "82%")
	assert.Contains(t, body, riskcheck.HighRiskExplanation)
	assert.Contains(t, body, "High – 82%")
	assert.Equal(t, 1, p.calls)
}

func TestHistoryFollowsTheCookie(t *testing.T) {
	p := &fakePredictor{result: models.PredictionResult{Risk: "Low", Probability: 12}}
	router := setupTestRouter(p)

	w := postForm(router, validValues(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	cookies := sessionCookies(t, w)

	w = doJSON(router, http.MethodGet, "/api/history", "", cookies)
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		History []models.PredictionResult `json:"history"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Len(t, response.History, 1)
	assert.Equal(t, "Low", response.History[0].Risk)

	// a different browser sees its own empty history
	w = doJSON(router, http.MethodGet, "/api/history", "", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Empty(t, response.History)
}

func TestMalformedCookieStartsNewSession(t *testing.T) {
	router := setupTestRouter(&fakePredictor{})

	w := doJSON(router, http.MethodGet, "/api/state", "", []*http.Cookie{{Name: SessionCookie, Value: "../../etc"}})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEqual(t, "../../etc", sessionCookies(t, w)[0].Value)
}

func TestAPIUpdateAndCheck(t *testing.T) {
	p := &fakePredictor{result: models.PredictionResult{Risk: "High", Probability: 91}}
	router := setupTestRouter(p)

	w := doJSON(router, http.MethodPut, "/api/form", `{"age":"63","sex":"1","trestbps":"145","chol":"233","fbs":"1","exang":"0","unknown":"x"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	cookies := sessionCookies(t, w)

	var snap models.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, "63", snap.Form.Age)
	assert.Equal(t, models.StateIdle, snap.State)
	assert.Equal(t, 0, p.calls)

	w = doJSON(router, http.MethodPost, "/api/check", "", cookies)
	require.Equal(t, http.StatusOK, w.Code)

	snap = models.Snapshot{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, models.StateSucceeded, snap.State)
	require.NotNil(t, snap.Result)
	assert.Equal(t, 91.0, snap.Result.Probability)
	assert.Equal(t, "high", snap.RiskClass)
	assert.Len(t, snap.History, 1)
}

func TestAPICheckInvalid(t *testing.T) {
	router := setupTestRouter(&fakePredictor{})

	w := doJSON(router, http.MethodPost, "/api/check", `{"age":"200","trestbps":"130","chol":"230"}`, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var snap models.Snapshot
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.Equal(t, models.StateInvalid, snap.State)
	assert.Equal(t, "Enter a valid age (1–120)", snap.Errors["age"])
}

func TestAPICheckBadJSON(t *testing.T) {
	router := setupTestRouter(&fakePredictor{})

	w := doJSON(router, http.MethodPost, "/api/check", `{not json`, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmitFailure(t *testing.T) {
	p := &fakePredictor{err: errors.New("connection refused")}
	router := setupTestRouter(p)

	w := postForm(router, validValues(), nil)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), riskcheck.FailureMessage)
	assert.Contains(t, w.Body.String(), "No history yet.")
}

func TestExportHistory(t *testing.T) {
	p := &fakePredictor{result: models.PredictionResult{Risk: "High", Probability: 82}}
	router := setupTestRouter(p)

	w := postForm(router, validValues(), nil)
	cookies := sessionCookies(t, w)

	w = doJSON(router, http.MethodGet, "/api/history/export", "", cookies)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/x-yaml", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "history.yaml")

	var exported struct {
		History []map[string]interface{} `yaml:"history"`
	}
	require.NoError(t, yaml.Unmarshal(w.Body.Bytes(), &exported))
	require.Len(t, exported.History, 1)
	assert.Equal(t, "High", exported.History[0]["risk"])
}

func TestCORSPreflight(t *testing.T) {
	router := setupTestRouter(&fakePredictor{})

	w := doJSON(router, http.MethodOptions, "/api/check", "", nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"), "credentials are not allowed with a wildcard origin")
}

func TestCORSWithExplicitOrigin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sessions := session.NewManager("prediction_history", &fakePredictor{}, history.NewRepository(storage.NewMemoryStore()))
	router := SetupRouter(NewHandlers(sessions), "https://heart.example.org")

	w := doJSON(router, http.MethodOptions, "/api/check", "", nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://heart.example.org", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, http.StatusOK},
		{"invalid", riskcheck.ErrInvalidForm, http.StatusUnprocessableEntity},
		{"in flight", riskcheck.ErrSubmitInFlight, http.StatusConflict},
		{"failed", errors.New("boom"), http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}
