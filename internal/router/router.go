package router

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/avelar/clinic-api/internal/middleware"
)

type Handler interface {
	RegisterRoutes(*gin.RouterGroup)
}

type AdminHandler interface {
	Handler
	RegisterAdminRoutes(*gin.RouterGroup)
}

type Config struct {
	RateLimitRPS   float64
	RateLimitBurst int
	CORSConfig     middleware.CORSConfig
	MetricsPrefix  string
}

type Router struct {
	engine        *gin.Engine
	db            *sqlx.DB
	auth          *middleware.AuthMiddleware
	gate          *middleware.SubscriptionGate
	authH         Handler
	specialtyH    Handler
	staffH        Handler
	patientH      Handler
	appointmentH  Handler
	sessionH      Handler
	paymentH      Handler
	subscriptionH Handler
	tenantH       AdminHandler
	reportH       Handler
	metrics       *routerMetrics
}

type routerMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
}

func NewRouter(
	db *sqlx.DB,
	auth *middleware.AuthMiddleware,
	gate *middleware.SubscriptionGate,
	authH Handler,
	specialtyH Handler,
	staffH Handler,
	patientH Handler,
	appointmentH Handler,
	sessionH Handler,
	paymentH Handler,
	subscriptionH Handler,
	tenantH AdminHandler,
	reportH Handler,
	logger zerolog.Logger,
	config Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	middleware.RegisterValidations()
	engine := gin.New()

	r := &Router{
		engine:        engine,
		db:            db,
		auth:          auth,
		gate:          gate,
		authH:         authH,
		specialtyH:    specialtyH,
		staffH:        staffH,
		patientH:      patientH,
		appointmentH:  appointmentH,
		sessionH:      sessionH,
		paymentH:      paymentH,
		subscriptionH: subscriptionH,
		tenantH:       tenantH,
		reportH:       reportH,
		metrics:       newRouterMetrics(config.MetricsPrefix),
	}

	engine.Use(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		r.metricsMiddleware(),
		middleware.CORS(config.CORSConfig),
		middleware.NewRateLimiter(config.RateLimitRPS, config.RateLimitBurst).Limit(),
	)

	return r
}

// Setup wires the route tree. Auth routes are public; subscription routes
// require only authentication so a lapsed tenant can reactivate; everything
// else sits behind the subscription gate.
func (r *Router) Setup() {
	r.setupHealth()

	api := r.engine.Group("/api/v1")

	r.authH.RegisterRoutes(api.Group("/auth"))

	authed := api.Group("")
	authed.Use(r.auth.Authenticate())

	r.subscriptionH.RegisterRoutes(authed.Group("/subscription"))
	r.tenantH.RegisterRoutes(authed.Group("/tenant"))

	admin := authed.Group("/admin")
	admin.Use(r.auth.RequireAdmin())
	r.tenantH.RegisterAdminRoutes(admin)

	clinic := authed.Group("")
	clinic.Use(r.gate.Require())

	r.specialtyH.RegisterRoutes(clinic.Group("/specialties"))
	r.staffH.RegisterRoutes(clinic.Group("/staff"))
	r.patientH.RegisterRoutes(clinic.Group("/patients"))
	r.appointmentH.RegisterRoutes(clinic.Group("/appointments"))
	r.sessionH.RegisterRoutes(clinic.Group("/sessions"))
	r.paymentH.RegisterRoutes(clinic.Group("/payments"))
	r.reportH.RegisterRoutes(clinic.Group("/reports"))
}

func (r *Router) setupHealth() {
	r.engine.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.engine.GET("/health/ready", func(c *gin.Context) {
		if err := r.db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (r *Router) Engine() *gin.Engine {
	return r.engine
}

func newRouterMetrics(prefix string) *routerMetrics {
	return &routerMetrics{
		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name: prefix + "_request_duration_seconds",
			Help: "Duration of HTTP requests in seconds",
		}, []string{"method", "path", "status"}),
		requestTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: prefix + "_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
	}
}

func (r *Router) metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		r.metrics.requestDuration.WithLabelValues(c.Request.Method, path, status).Observe(time.Since(start).Seconds())
		r.metrics.requestTotal.WithLabelValues(c.Request.Method, path, status).Inc()
	}
}
