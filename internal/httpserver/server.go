// Package httpserver serves the mock SOC backend API.
package httpserver

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tinytelemetry/soclens/internal/model"
	"github.com/tinytelemetry/soclens/internal/simulate"
)

// RecentAlertLimit is how many alerts /api/alerts returns.
const RecentAlertLimit = 20

// AlertStore is the narrow store contract required by the HTTP API.
type AlertStore interface {
	Recent(n int) ([]model.AlertRecord, error)
	Stats() (model.StatsSnapshot, error)
	Incident(id int64) (simulate.Incident, bool, error)
	MapPoints() ([]model.MapPoint, error)
	Len() (int, error)
}

// Server provides the alert, stats and incident endpoints.
type Server struct {
	addr      string
	store     AlertStore
	points    []model.MapPoint
	logger    *zap.Logger
	server    *http.Server
	listener  net.Listener
	ctx       context.Context
	cancel    context.CancelFunc
	startTime time.Time
}

// NewServer creates a new mock backend server. When points is non-nil it is
// served from /api/map-points instead of the store's live locations.
func NewServer(addr string, store AlertStore, points []model.MapPoint, logger *zap.Logger) *Server {
	if addr == "" {
		addr = "127.0.0.1:5000"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		addr:      addr,
		store:     store,
		points:    points,
		logger:    logger.Named("http"),
		ctx:       ctx,
		cancel:    cancel,
		startTime: time.Now(),
	}
}

// Handler returns the gin engine with every route registered.
func (s *Server) Handler() http.Handler {
	r := gin.New()
	r.Use(gin.Recovery(), s.accessLog())

	r.GET("/api/health", s.handleHealth)
	r.GET("/api/alerts", s.handleAlerts)
	r.GET("/api/stats", s.handleStats)
	r.GET("/api/map-points", s.handleMapPoints)
	r.GET("/incident/:id", s.handleIncident)
	return r
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	gin.SetMode(gin.ReleaseMode)

	s.server = &http.Server{
		Handler:           s.Handler(),
		BaseContext:       func(_ net.Listener) context.Context { return s.ctx },
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.listener = listener
	s.startTime = time.Now()
	s.logger.Info("listening", zap.String("addr", listener.Addr().String()))

	go s.server.Serve(listener)
	return nil
}

// Addr returns the bound address once Start has succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.addr
	}
	return s.listener.Addr().String()
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop() error {
	s.cancel()
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	n, err := s.store.Len()
	if err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"uptime":      time.Since(s.startTime).String(),
		"alert_count": n,
	})
}

func (s *Server) handleAlerts(c *gin.Context) {
	alerts, err := s.store.Recent(RecentAlertLimit)
	if err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, alerts)
}

func (s *Server) handleStats(c *gin.Context) {
	stats, err := s.store.Stats()
	if err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (s *Server) handleMapPoints(c *gin.Context) {
	if s.points != nil {
		c.JSON(http.StatusOK, s.points)
		return
	}
	points, err := s.store.MapPoints()
	if err != nil {
		s.storeError(c, err)
		return
	}
	c.JSON(http.StatusOK, points)
}

func (s *Server) handleIncident(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "incident id must be an integer"})
		return
	}
	inc, ok, err := s.store.Incident(id)
	if err != nil {
		s.storeError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "incident not found"})
		return
	}
	c.JSON(http.StatusOK, inc)
}

func (s *Server) storeError(c *gin.Context, err error) {
	s.logger.Error("store query failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
