package server

import (
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/tariffhub/tariff-ingest/internal/service"
)

// Server holds the state for the REST API boundary.
type Server struct {
	svc    *service.Service
	logger *slog.Logger
	router *gin.Engine
}

// NewServer creates a new Server instance.
func NewServer(svc *service.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	r := gin.Default()
	s := &Server{
		svc:    svc,
		logger: logger,
		router: r,
	}
	s.setupRoutes()
	return s
}

// Handler exposes the router for http.Server wiring and tests.
func (s *Server) Handler() *gin.Engine {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.healthCheck)
	s.router.POST("/v1/extract", s.handleExtract)
	s.router.POST("/v1/extract/file", s.handleExtractFile)
}
