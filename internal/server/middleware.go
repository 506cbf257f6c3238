package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/wajidashraf/CostModelAppTraining/internal/config"
	obsmiddleware "github.com/wajidashraf/CostModelAppTraining/internal/observability/logger"
)

func corsMiddleware(cfg config.Config) gin.HandlerFunc {
	corsCfg := cors.Config{
		AllowMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", obsmiddleware.RequestIDHeader},
		ExposeHeaders: []string{obsmiddleware.RequestIDHeader, "Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}

	origins := cfg.CORSAllowedOrigins
	if len(origins) == 0 || containsWildcard(origins) {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = origins
	}
	return cors.New(corsCfg)
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
