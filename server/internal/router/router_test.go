package router

import (
	"context"
	"html"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/geordievannese/garuda-calculator/server/internal/calculator"
	"github.com/geordievannese/garuda-calculator/server/internal/config"
	"github.com/geordievannese/garuda-calculator/server/internal/metrics"
	"github.com/geordievannese/garuda-calculator/server/internal/models"
	"github.com/geordievannese/garuda-calculator/server/internal/repository"
	"github.com/geordievannese/garuda-calculator/server/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type predictFunc func(ctx context.Context, record models.PredictorRecord) (*models.PredictionResponse, error)

func (f predictFunc) Predict(ctx context.Context, record models.PredictorRecord) (*models.PredictionResponse, error) {
	return f(ctx, record)
}

var csrfInput = regexp.MustCompile(`name="_csrf" value="([^"]+)"`)

func testConfig(t *testing.T, perMinute uint) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			SessionSecret: "test-secret",
			AssetsDir:     t.TempDir(),
			PageTTL:       time.Hour,
		},
		RateLimit: config.RateLimitConfig{PerMinute: perMinute},
	}
}

func newTestRouter(t *testing.T, perMinute uint) (*gin.Engine, *repository.PageStore) {
	return newRouterWithPredictor(t, perMinute, predictFunc(func(context.Context, models.PredictorRecord) (*models.PredictionResponse, error) {
		return &models.PredictionResponse{
			PredictionResult: models.PredictionResult{MortalityCoil: models.Float64Of(12.5)},
		}, nil
	}))
}

func newRouterWithPredictor(t *testing.T, perMinute uint, predictor services.Predictor) (*gin.Engine, *repository.PageStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	def, err := models.LoadFormDefinition("../../../config/form.yaml")
	require.NoError(t, err)

	m := metrics.NewRegistry()
	pages := repository.NewPageStore(time.Hour, func() *calculator.Controller {
		return calculator.NewController(zap.NewNop(), predictor, m, def.Defaults())
	})

	r := Setup(zap.NewNop(), testConfig(t, perMinute), Deps{
		Form:     def,
		Pages:    pages,
		Recorder: repository.NoopRecorder{},
		Metrics:  m,
	})
	return r, pages
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	var found *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == "garuda_session" {
			found = c
		}
	}
	require.NotNil(t, found, "session cookie not set")
	return found
}

func TestSetup_PageHeaders(t *testing.T) {
	r, pages := newTestRouter(t, 60)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, w.Code)
	csp := w.Header().Get("Content-Security-Policy")
	assert.Contains(t, csp, "'nonce-")
	assert.Contains(t, csp, "https://unpkg.com")
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, w.Body.String(), `id="calc-form"`)
	sessionCookie(t, w)
	assert.Equal(t, 1, pages.Len())
}

func TestSetup_CalculateRequiresCSRF(t *testing.T) {
	r, _ := newTestRouter(t, 60)

	req := httptest.NewRequest(http.MethodPost, "/calculate", strings.NewReader("age=55"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "/", w.Header().Get("HX-Redirect"))
}

func TestSetup_CalculateWithSessionToken(t *testing.T) {
	r, pages := newTestRouter(t, 60)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, w.Code)
	cookie := sessionCookie(t, w)

	match := csrfInput.FindStringSubmatch(w.Body.String())
	require.Len(t, match, 2)
	token := html.UnescapeString(match[1])

	form := url.Values{"_csrf": {token}, "age": {"55"}}
	req := httptest.NewRequest(http.MethodPost, "/calculate", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	req.AddCookie(cookie)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "12.5%")
	assert.Empty(t, w.Header().Get("Content-Security-Policy"), "fragments inherit the page policy")
	assert.Equal(t, 1, pages.Len(), "the same page is reused")
}

func TestSetup_APISkipsCSRF(t *testing.T) {
	r, _ := newTestRouter(t, 60)

	req := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(`{"age":40,"location":"mca"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"mortality_coil"`)
}

func TestSetup_RateLimitsPredictions(t *testing.T) {
	r, _ := newTestRouter(t, 2)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/predict", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestSetup_Health(t *testing.T) {
	r, _ := newTestRouter(t, 60)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

// openPage loads the calculator as the browser at ip and returns its session cookie and CSRF token.
func openPage(t *testing.T, r http.Handler, ip string) (*http.Cookie, string) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = ip + ":40000"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	match := csrfInput.FindStringSubmatch(w.Body.String())
	require.Len(t, match, 2)
	return sessionCookie(t, w), html.UnescapeString(match[1])
}

func submitFrom(r http.Handler, ip string, cookie *http.Cookie, token string) *httptest.ResponseRecorder {
	form := url.Values{"_csrf": {token}, "age": {"55"}, "gcs": {"14"}}
	req := httptest.NewRequest(http.MethodPost, "/calculate", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	req.RemoteAddr = ip + ":40000"
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestSetup_BrowsersDoNotShareThePredictLimit(t *testing.T) {
	var client *services.PredictorClient
	r, _ := newRouterWithPredictor(t, 2, predictFunc(func(ctx context.Context, record models.PredictorRecord) (*models.PredictionResponse, error) {
		return client.Predict(ctx, record)
	}))
	srv := httptest.NewServer(r)
	defer srv.Close()
	client = services.NewPredictorClient(zap.NewNop(), srv.URL+"/api/predict", 0, nil)

	type browser struct {
		cookie *http.Cookie
		token  string
	}
	browsers := map[string]browser{}
	for _, ip := range []string{"10.0.0.1", "10.0.0.2"} {
		cookie, token := openPage(t, r, ip)
		browsers[ip] = browser{cookie, token}

		for i := 0; i < 2; i++ {
			w := submitFrom(r, ip, cookie, token)
			require.Equal(t, http.StatusOK, w.Code, "%s submission %d", ip, i+1)
			assert.Empty(t, w.Header().Get("HX-Retarget"), "%s submission %d", ip, i+1)
			assert.Contains(t, w.Body.String(), `class="card result"`)
		}
	}

	// Each browser still has its own /calculate budget.
	a := browsers["10.0.0.1"]
	w := submitFrom(r, "10.0.0.1", a.cookie, a.token)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestIsInternalCall(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		name   string
		remote string
		header string
		want   bool
	}{
		{"loopback v4", "127.0.0.1:5000", "", true},
		{"loopback v6", "[::1]:5000", "", true},
		{"remote client", "10.0.0.1:5000", "", false},
		{"behind local proxy", "127.0.0.1:5000", "10.0.0.9", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodPost, "/api/predict", nil)
			c.Request.RemoteAddr = tt.remote
			if tt.header != "" {
				c.Request.Header.Set("X-Forwarded-For", tt.header)
			}
			assert.Equal(t, tt.want, isInternalCall(c))
		})
	}
}

func TestSetup_ServesAlertingScript(t *testing.T) {
	gin.SetMode(gin.TestMode)
	def, err := models.LoadFormDefinition("../../../config/form.yaml")
	require.NoError(t, err)

	conf := testConfig(t, 60)
	conf.Server.AssetsDir = "../../../assets"
	m := metrics.NewRegistry()
	r := Setup(zap.NewNop(), conf, Deps{
		Form: def,
		Pages: repository.NewPageStore(time.Hour, func() *calculator.Controller {
			return calculator.NewController(zap.NewNop(), nil, m, def.Defaults())
		}),
		Recorder: repository.NoopRecorder{},
		Metrics:  m,
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/assets/js/calculator.js", nil))

	require.Equal(t, http.StatusOK, w.Code)
	js := w.Body.String()
	for _, hook := range []string{"htmx:responseError", "htmx:sendError", "alert-template", "429"} {
		assert.Contains(t, js, hook)
	}
}
