package api

import (
	"context"
	"net/http"
	"path/filepath"
	"time"

	"github.com/Domenick1991/airbooking-modify/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	httpSwagger "github.com/swaggo/http-swagger"
)

// HealthCheck probes one dependency for GET /health.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

type Handlers struct {
	Bookings *BookingHandler
	Drafts   *DraftHandler
	Requests *RequestHandler
	Fares    *FareHandler
}

func NewRouter(cfg config.HTTPConfig, log *logrus.Logger, h Handlers, checks ...HealthCheck) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestID())
	router.Use(RequestLogger(log))
	if len(cfg.CORSOrigins) > 0 {
		router.Use(cors.New(corsConfig(cfg.CORSOrigins)))
	}

	router.GET("/health", healthHandler(checks))

	if cfg.SwaggerDir != "" {
		router.StaticFile("/swagger/doc.json", filepath.Join(cfg.SwaggerDir, "swagger.json"))
		router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json"))))
	}

	v1 := router.Group("/api/v1", Identity())
	{
		bookings := v1.Group("/bookings")
		h.Bookings.Register(bookings)
		h.Drafts.Register(bookings)

		h.Requests.Register(v1.Group("/requests"))
		h.Requests.RegisterAdmin(v1.Group("/admin/requests"))

		h.Fares.Register(v1.Group("/fares"))
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	cc := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept",
			HeaderRequestID, HeaderUserID, HeaderUserEmail, HeaderUserName, HeaderUserRole,
		},
		ExposeHeaders: []string{"Content-Length", HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cc.AllowAllOrigins = true
			return cc
		}
	}
	cc.AllowOrigins = origins
	return cc
}

func healthHandler(checks []HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		report := gin.H{}
		for _, hc := range checks {
			if err := hc.Check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				report[hc.Name] = err.Error()
				continue
			}
			report[hc.Name] = "ok"
		}
		report["status"] = http.StatusText(status)
		c.JSON(status, report)
	}
}
