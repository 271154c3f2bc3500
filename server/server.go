package server

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"costdb/exporter"
	"costdb/internal/config"
	"costdb/server/handlers"
	"costdb/server/middleware"
	"costdb/server/services"
	"costdb/storage"
)

// Options зависимости сервера. Runs может быть nil, если реестр выключен.
type Options struct {
	Config *config.Config
	Store  *storage.Store
	Runs   services.RunLister
	Runner services.PipelineRunner
	Logger *slog.Logger
}

// Server HTTP слой поверх результатов конвейера
type Server struct {
	config config.ServerConfig
	logger *slog.Logger

	dataset    *services.DatasetService
	upload     *services.UploadService
	processing *services.ProcessingService
	exporter   *exporter.ExcelExporter

	handlerOnce sync.Once
	httpHandler http.Handler
	httpServer  *http.Server
}

// NewServer собирает сервисы и обработчики
func NewServer(opts Options) (*Server, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if opts.Runner == nil {
		return nil, fmt.Errorf("pipeline runner is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cfg := opts.Config
	dataset := services.NewDatasetService(opts.Store, opts.Runs, logger)
	if err := dataset.Reload(); err != nil {
		logger.Warn("Initial dataset load failed", "error", err)
	}

	return &Server{
		config:     cfg.Server,
		logger:     logger,
		dataset:    dataset,
		upload:     services.NewUploadService(opts.Store, cfg.Paths.UploadDir, cfg.Server.MaxUploadSize, logger),
		processing: services.NewProcessingService(opts.Runner, dataset, cfg.Server.ProcessTimeout, logger),
		exporter:   exporter.NewExcelExporter(opts.Store),
	}, nil
}

// Handler возвращает собранный gin router
func (s *Server) Handler() http.Handler {
	s.handlerOnce.Do(func() {
		s.httpHandler = s.buildHTTPHandler()
	})
	return s.httpHandler
}

func (s *Server) buildHTTPHandler() http.Handler {
	// GIN_MODE переопределяет режим
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.GinRequestIDMiddleware())
	router.Use(middleware.GinCORSMiddleware())
	router.Use(middleware.GinGzipMiddleware())
	router.Use(middleware.GinLoggerMiddleware(s.logger))
	router.Use(middleware.GinRecoveryMiddleware(s.logger))

	handlers.RegisterSwaggerRoutes(router, "localhost:"+s.config.Port)
	s.registerRoutes(router)

	router.NoRoute(func(c *gin.Context) {
		handlers.SendJSONError(c, http.StatusNotFound, "Not found")
	})

	return router
}

func (s *Server) registerRoutes(router *gin.Engine) {
	dataset := handlers.NewDatasetHandler(s.dataset)
	ingest := handlers.NewIngestHandler(s.upload, s.processing, s.config.MaxUploadSize)
	export := handlers.NewExportHandler(s.exporter)

	api := router.Group("/api")
	{
		api.GET("/health", dataset.HandleHealth)
		api.GET("/dashboard/stats", dataset.HandleDashboardStats)
		api.GET("/items", dataset.HandleItems)
		api.GET("/analytics", dataset.HandleAnalytics)
		api.GET("/anomalies", dataset.HandleAnomalies)
		api.GET("/anomalies/summary", dataset.HandleAnomalySummary)
		api.GET("/price-trends", dataset.HandlePriceTrends)
		api.GET("/suppliers", dataset.HandleSuppliers)
		api.GET("/categories", dataset.HandleCategories)
		api.GET("/runs", dataset.HandleRuns)
		api.GET("/download-template", ingest.HandleDownloadTemplate)
		api.GET("/export/xlsx", export.HandleExportXLSX)
		api.POST("/reload", dataset.HandleReload)
	}

	// Загрузка и запуск конвейера тяжелые, поэтому ограничены по частоте
	limited := api.Group("")
	limited.Use(middleware.GinRateLimitMiddleware(float64(s.config.RateLimitPerSec), s.config.RateLimitPerSec))
	{
		limited.POST("/upload", ingest.HandleUpload)
		limited.POST("/process", ingest.HandleProcess)
	}
}

// ServeHTTP реализует http.Handler для тестов
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Handler().ServeHTTP(w, r)
}

// Start запускает HTTP сервер и блокируется до его остановки
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%s", s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout, // больше времени обработки конвейера
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Сервер запускается на порту %s", s.config.Port)
	log.Printf("API доступно по адресу: http://localhost%s/api, Swagger: http://localhost%s/swagger/index.html", addr, addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("не удалось запустить HTTP сервер на %s: %w", addr, err)
	}
	return nil
}

// Shutdown останавливает HTTP сервер, дожидаясь текущих запросов
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}

	log.Println("Initiating graceful shutdown...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка остановки сервера: %w", err)
	}
	log.Println("Graceful shutdown completed")
	return nil
}
