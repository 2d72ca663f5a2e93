package http

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"go.ngs.io/surge-forcing/internal/observability"
)

// RouterOptions configures SetupRouter.
type RouterOptions struct {
	Logger         *zap.Logger
	Metrics        *observability.Metrics
	Gatherer       prometheus.Gatherer
	AllowedOrigins []string      // Empty allows all origins.
	BlendLimiter   *rate.Limiter // Nil disables rate limiting of POST /v1/blend.
}

// SetupRouter creates and configures the Gin router.
//
// Dataset names may contain slashes; clients escape them as %2F.
func SetupRouter(handler *Handler, opts RouterOptions) *gin.Engine {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Metrics == nil {
		opts.Metrics = observability.NewMetrics(prometheus.NewRegistry())
	}
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}

	router := gin.New()
	router.UseRawPath = true
	router.UnescapePathValues = true
	router.Use(gin.Recovery(), RequestLogger(opts.Logger), Metrics(opts.Metrics))

	// Setup CORS middleware.
	corsConfig := cors.DefaultConfig()
	if len(opts.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = opts.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	router.Use(cors.New(corsConfig))

	// API v1 routes.
	v1 := router.Group("/v1")
	datasets := v1.Group("/datasets")
	datasets.GET("", handler.ListDatasets)
	datasets.GET("/:name", handler.GetDataset)
	datasets.GET("/:name/probe", handler.ProbeDataset)

	v1.POST("/blend", RateLimit(opts.BlendLimiter, opts.Metrics), handler.Blend)

	// Health check and metrics.
	router.GET("/health", handler.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))

	return router
}
