// Package adminhttp exposes the read-only admin API: health plus the trade
// and decision history out of the audit store.
package adminhttp

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"bitgyeol/internal/logger"
	"bitgyeol/internal/store/tradelog"
)

const defaultListLimit = 50
const maxListLimit = 500

// Server serves the admin API over gin.
type Server struct {
	addr   string
	router *gin.Engine
}

// ServerConfig describes the admin server dependencies.
type ServerConfig struct {
	Addr string
	Logs *tradelog.Store
}

func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Logs == nil {
		return nil, errors.New("admin http server requires the trade log store")
	}
	if cfg.Addr == "" {
		cfg.Addr = ":9981"
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	api.GET("/trades", handleTrades(cfg.Logs))
	api.GET("/decisions", handleDecisions(cfg.Logs))

	return &Server{addr: cfg.Addr, router: router}, nil
}

func handleTrades(logs *tradelog.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := logs.RecentTrades(c.Request.Context(), listLimit(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"trades": rows})
	}
}

func handleDecisions(logs *tradelog.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		rows, err := logs.RecentDecisions(c.Request.Context(), listLimit(c))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"decisions": rows})
	}
}

func listLimit(c *gin.Context) int {
	raw := c.Query("limit")
	if raw == "" {
		return defaultListLimit
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return defaultListLimit
	}
	if n > maxListLimit {
		return maxListLimit
	}
	return n
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery
		client := c.ClientIP()
		c.Next()
		dur := time.Since(start)
		status := c.Writer.Status()
		fullPath := path
		if query != "" {
			fullPath = path + "?" + query
		}
		logger.Debugf("HTTP %s %s status=%d ip=%s dur=%s", method, fullPath, status, client, dur)
	}
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	if s == nil {
		return ""
	}
	return s.addr
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is cancelled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	srv := &http.Server{Addr: s.addr, Handler: s.router}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
