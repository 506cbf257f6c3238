package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/wajidashraf/CostModelAppTraining/internal/clock"
	"github.com/wajidashraf/CostModelAppTraining/internal/config"
	"github.com/wajidashraf/CostModelAppTraining/internal/costmodel/domain"
	obsmiddleware "github.com/wajidashraf/CostModelAppTraining/internal/observability/logger"
	obsmetrics "github.com/wajidashraf/CostModelAppTraining/internal/observability/metrics"
	obstracing "github.com/wajidashraf/CostModelAppTraining/internal/observability/tracing"
	"github.com/wajidashraf/CostModelAppTraining/internal/providers/pdf"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var Module = fx.Module("http.server",
	fx.Provide(registerGin),
	fx.Invoke(NewServer),
	fx.Invoke(run),
)

type EngineParams struct {
	fx.In

	Cfg         config.Config
	Log         *zap.Logger
	Tracer      *sdktrace.TracerProvider `optional:"true"`
	HTTPMetrics *obsmetrics.HTTPMetrics  `optional:"true"`
	Registry    *prometheus.Registry     `optional:"true"`
}

func NewEngine(p EngineParams) *gin.Engine {
	registerValidatorTagNames()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(corsMiddleware(p.Cfg))
	r.Use(obsmiddleware.GinMiddleware(obsmiddleware.MiddlewareConfig{
		Logger:      p.Log,
		QuietRoutes: []string{"/health", "/metrics"},
		Classify:    classifyErrorForLog,
	}))
	tracingCfg := obstracing.MiddlewareConfig{Classify: classifyErrorForLog}
	if p.Tracer != nil {
		tracingCfg.Provider = p.Tracer
	}
	r.Use(obstracing.GinMiddleware(tracingCfg))
	r.Use(p.HTTPMetrics.GinMiddleware())
	r.Use(ErrorHandlingMiddleware(p.Log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if p.Registry != nil {
		r.GET("/metrics", gin.WrapH(obsmetrics.Handler(p.Registry)))
	}

	return r
}

func registerGin(p EngineParams) *gin.Engine {
	if p.Cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	return NewEngine(p)
}

func run(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ln, err := net.Listen("tcp", srv.Addr)
			if err != nil {
				return err
			}
			log.Info("http server listening", zap.String("addr", ln.Addr().String()))
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}

type Server struct {
	engine *gin.Engine
	cfg    config.Config
	log    *zap.Logger
	clock  clock.Clock

	costModelSvc domain.Service
	pdf          pdf.Provider
}

type ServerParams struct {
	fx.In

	Gin          *gin.Engine
	Cfg          config.Config
	Log          *zap.Logger
	Clock        clock.Clock
	CostModelSvc domain.Service
	PDF          pdf.Provider
}

func NewServer(p ServerParams) *Server {
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		engine:       p.Gin,
		cfg:          p.Cfg,
		log:          log.Named("http"),
		clock:        p.Clock,
		costModelSvc: p.CostModelSvc,
		pdf:          p.PDF,
	}

	s.registerAPIRoutes()
	if !s.cfg.IsProduction() {
		s.registerAdminRoutes()
	}
	s.registerFallback()

	return s
}

func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerAPIRoutes() {
	api := s.engine.Group("/api")

	// -------- Cost models --------
	api.GET("/models", s.ListCostModels)
	api.POST("/models", s.CreateCostModel)
	api.GET("/models/:id", s.GetCostModel)
	api.DELETE("/models/:id", s.DeleteCostModel)
	api.POST("/models/:id/calculate", s.CalculateCostModel)
	api.GET("/models/:id/report", s.DownloadCostReport)

	// -------- Measured works --------
	api.GET("/measured-works", s.ListMeasuredWorks)
	api.GET("/measured-works/:id", s.GetMeasuredWork)
	api.PATCH("/measured-works/:id", s.UpdateMeasuredWork)
	api.DELETE("/measured-works/:id", s.DeleteMeasuredWork)

	// -------- Reference data --------
	api.GET("/nrm2/elements", s.ListNRM2Elements)
}

func (s *Server) registerAdminRoutes() {
	admin := s.engine.Group("/api/admin")

	admin.GET("/stats", s.GetStoreStats)
	admin.POST("/seed", s.SeedSampleData)
	admin.DELETE("/data", s.ClearData)
}

func (s *Server) registerFallback() {
	s.engine.NoRoute(func(c *gin.Context) {
		AbortWithError(c, ErrNotFound)
	})
}

var validatorOnce sync.Once

// registerValidatorTagNames makes field errors report json names.
func registerValidatorTagNames() {
	validatorOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				return f.Name
			}
			return name
		})
	})
}
