package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"portals-watcher/internal/domain"
	"portals-watcher/internal/observability"
)

// Server - HTTP-поверхность: CRUD подписок для WebApp, сама разметка
// WebApp и /metrics. Ошибки сдерживаются на границе запроса.
type Server struct {
	engine  *gin.Engine
	watches domain.WatchRepository
	logger  *slog.Logger
}

func NewServer(watches domain.WatchRepository, debug bool, logger *slog.Logger) *Server {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		engine:  gin.New(),
		watches: watches,
		logger:  logger,
	}

	s.engine.Use(gin.Recovery())

	s.engine.GET("/", s.home)
	s.engine.GET("/webapp", s.webapp)
	s.engine.GET("/metrics", gin.WrapH(observability.Handler()))

	api := s.engine.Group("/api")
	{
		api.GET("/watches", s.listWatches)
		api.POST("/watches", s.createWatch)
		api.DELETE("/watches/:id", s.deleteWatch)
	}

	return s
}

// Handler отдает роутер (нужно тестам).
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run поднимает сервер и гасит его по отмене контекста.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// --- Handlers ---

func (s *Server) home(c *gin.Context) {
	c.String(http.StatusOK, "Bot is running!")
}

func (s *Server) webapp(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(webappHTML))
}

type watchJSON struct {
	ID           int64           `json:"id"`
	Collection   string          `json:"collection"`
	Model        string          `json:"model"`
	ThresholdPct decimal.Decimal `json:"threshold_pct"`
}

func (s *Server) listWatches(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "user_id required"})
		return
	}

	watches, err := s.watches.ListByUser(c.Request.Context(), userID)
	if err != nil {
		s.logger.Error("list watches failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal error"})
		return
	}

	out := make([]watchJSON, 0, len(watches))
	for _, w := range watches {
		out = append(out, watchJSON{
			ID:           w.ID,
			Collection:   w.Collection,
			Model:        w.Model,
			ThresholdPct: w.ThresholdPct,
		})
	}
	c.JSON(http.StatusOK, out)
}

type createWatchRequest struct {
	UserID       int64           `json:"user_id" binding:"required"`
	Collection   string          `json:"collection" binding:"required"`
	Model        string          `json:"model" binding:"required"`
	ThresholdPct decimal.Decimal `json:"threshold_pct"`
}

func (s *Server) createWatch(c *gin.Context) {
	var req createWatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid request body"})
		return
	}
	if req.ThresholdPct.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "threshold_pct must be >= 0"})
		return
	}

	watch := &domain.Watch{
		UserID:       req.UserID,
		Collection:   req.Collection,
		Model:        req.Model,
		ThresholdPct: req.ThresholdPct,
	}
	if err := s.watches.Create(c.Request.Context(), watch); err != nil {
		s.logger.Error("create watch failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) deleteWatch(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "invalid id"})
		return
	}
	userID, err := strconv.ParseInt(c.Query("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "error": "user_id required"})
		return
	}

	err = s.watches.Delete(c.Request.Context(), id, userID)
	switch {
	case errors.Is(err, domain.ErrWatchNotFound):
		c.JSON(http.StatusNotFound, gin.H{"ok": false, "error": "not found"})
	case err != nil:
		s.logger.Error("delete watch failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": "internal error"})
	default:
		c.JSON(http.StatusOK, gin.H{"ok": true})
	}
}
