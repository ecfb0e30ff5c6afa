// server/internal/router/router.go
package router

import (
	"net"
	"net/http"
	"time"

	"github.com/geordievannese/garuda-calculator/server/internal/config"
	"github.com/geordievannese/garuda-calculator/server/internal/handlers"
	"github.com/geordievannese/garuda-calculator/server/internal/metrics"
	"github.com/geordievannese/garuda-calculator/server/internal/models"
	"github.com/geordievannese/garuda-calculator/server/internal/repository"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/unrolled/secure"
	"go.uber.org/zap"
)

// Deps are the long-lived services the routes are built on.
type Deps struct {
	Form     *models.FormDefinition
	Pages    *repository.PageStore
	Recorder repository.PredictionRecorder
	History  repository.PredictionHistory
	Metrics  *metrics.Registry
}

func keyFunc(c *gin.Context) string {
	return c.ClientIP()
}

func errorHandler(c *gin.Context, info ratelimit.Info) {
	c.String(http.StatusTooManyRequests, "Too many requests. Try again later.")
}

// isInternalCall reports a request made by this server to itself: a loopback peer
// with no proxy headers. Traffic relayed by a local reverse proxy carries
// X-Forwarded-For and is limited per client as usual.
func isInternalCall(c *gin.Context) bool {
	if c.GetHeader("X-Forwarded-For") != "" || c.GetHeader("X-Real-IP") != "" {
		return false
	}
	ip := net.ParseIP(c.RemoteIP())
	return ip != nil && ip.IsLoopback()
}

// exceptInternal applies limiter to everyone except the server's own calls.
// Browsers are already limited per client on /calculate, and every page's
// controller reaches /api/predict from the same loopback address.
func exceptInternal(limiter gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		if isInternalCall(c) {
			c.Next()
			return
		}
		limiter(c)
	}
}

func newLimiter(perMinute uint) gin.HandlerFunc {
	store := ratelimit.InMemoryStore(&ratelimit.InMemoryOptions{
		Rate:  time.Minute,
		Limit: perMinute,
	})
	return ratelimit.RateLimiter(store, &ratelimit.Options{
		ErrorHandler: errorHandler,
		KeyFunc:      keyFunc,
	})
}

func Setup(log *zap.Logger, conf *config.Config, deps Deps) *gin.Engine {
	// Set up a new Gin router, add recovery middleware and request logging.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(log))

	store := cookie.NewStore([]byte(conf.Server.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   conf.Server.SecureCookies,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(conf.Server.PageTTL / time.Second),
	})
	router.Use(sessions.Sessions("garuda_session", store))

	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
	})
	router.Use(func(c *gin.Context) {
		err := secureMiddleware.Process(c.Writer, c.Request)
		if err != nil {
			c.Abort()
			return
		}
	})

	router.Static("/assets", conf.Server.AssetsDir)

	// Handlers and routes
	calculatorHandler := handlers.NewCalculatorHandler(log, deps.Form)
	predictHandler := handlers.NewPredictHandler(log, deps.Recorder, deps.History, deps.Metrics)
	metricsHandler := handlers.NewMetricsHandler(log, deps.Metrics)

	// The page routes carry the browser session state; the API is plain JSON and
	// is called by the calculator itself, so it skips CSRF.
	pages := router.Group("/")
	pages.Use(NonceMiddleware(), CSRFProtection(), ContentSecurityPolicy(), PageLoaderMiddleware(log, deps.Pages))
	{
		pages.GET("/", calculatorHandler.ShowCalculator)
		pages.POST("/calculate", newLimiter(conf.RateLimit.PerMinute), calculatorHandler.Calculate)
		pages.POST("/reset", calculatorHandler.Reset)
		pages.GET("/results/chart", calculatorHandler.Chart)
	}

	api := router.Group("/api")
	{
		api.POST("/predict", exceptInternal(newLimiter(conf.RateLimit.PerMinute)), predictHandler.Predict)
		api.GET("/predictions", predictHandler.Recent)
		api.GET("/health", metricsHandler.Health)
		api.GET("/metrics", metricsHandler.ShowMetrics)
	}

	return router
}
