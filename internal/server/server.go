// Package server exposes the budgeting sessions over a JSON HTTP API.
package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ciceromayk/parametrico/internal/budget"
	"github.com/ciceromayk/parametrico/internal/redistribute"
	"github.com/ciceromayk/parametrico/internal/session"
	"github.com/ciceromayk/parametrico/pkg/constants"
)

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

type handler struct {
	manager *session.Manager
	logger  *zap.Logger
	version string
}

// NewHandler constructs the HTTP handler that serves the budgeting API.
func NewHandler(manager *session.Manager, cfg *Config, logger *zap.Logger, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg == nil {
		cfg = &Config{}
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{manager: manager, logger: logger, version: trimmedVersion}

	router := gin.New()
	router.Use(gin.Recovery(), requestID(logger), limitBody(cfg.BodySizeBytes()))
	if len(cfg.AllowedOrigins) > 0 {
		router.Use(cors.New(corsConfig(cfg.AllowedOrigins)))
	}

	api := router.Group("/api")
	api.GET("/version", h.handleVersion)
	api.GET("/reference", h.handleReference)
	api.GET("/archives/:category", h.handleListArchive)

	api.GET("/projects", h.handleListProjects)
	api.POST("/projects", h.handleCreateProject)

	project := api.Group("/projects/:id")
	project.GET("", h.handleGetProject)
	project.DELETE("", h.handleDeleteProject)
	project.POST("/open", h.handleOpenProject)
	project.POST("/save", h.handleSaveProject)
	project.POST("/discard", h.handleDiscardProject)
	project.PUT("/info", h.handleUpdateInfo)
	project.PUT("/floors", h.handleSetFloors)
	project.POST("/floors", h.handleAddFloor)
	project.DELETE("/floors/last", h.handleRemoveLastFloor)
	project.PUT("/stages", h.handleSetStage)
	project.POST("/stages/reference", h.handleApplyStageReference)
	project.PUT("/indirect", h.handleSetIndirect)
	project.POST("/indirect/reference", h.handleApplyIndirectReference)
	project.PUT("/site-admin", h.handleSetSiteAdmin)
	project.PUT("/fixed-indirect", h.handleSetFixedIndirect)
	project.POST("/archive/:category", h.handleArchive)
	project.GET("/export/:format", h.handleExport)

	return router
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	c.AllowOrigins = origins
	c.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}
	c.AllowHeaders = []string{"Origin", "Content-Type", "Accept", RequestIDHeader}
	c.ExposeHeaders = []string{"Content-Disposition", RequestIDHeader}
	c.MaxAge = 12 * time.Hour
	return c
}

// requestID tags every request with an id, taken from the request header
// when present, and logs the outcome.
func requestID(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(RequestIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDHeader, id)
		c.Header(RequestIDHeader, id)

		start := time.Now()
		c.Next()

		logger.Debug("request handled",
			zap.String("op", "server.request"),
			zap.String("request_id", id),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
}

func limitBody(limit int64) gin.HandlerFunc {
	if limit <= 0 {
		limit = constants.DefaultMaxBodySizeBytes
	}
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}
		c.Next()
	}
}

// respondError maps domain errors onto status codes. Anything unexpected is
// logged and reported as a bare 500.
func (h *handler) respondError(c *gin.Context, op string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, budget.ErrInvalid),
		errors.Is(err, redistribute.ErrMultipleChanges),
		errors.Is(err, redistribute.ErrMismatchedSets):
		status = http.StatusBadRequest
	case errors.Is(err, session.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, session.ErrNotOpen):
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("op", op),
			zap.String("request_id", c.GetString(RequestIDHeader)),
			zap.Error(err),
		)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func (h *handler) badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// bind decodes the JSON body into dst and answers 400 on failure.
func (h *handler) bind(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "request body too large"})
			return false
		}
		h.badRequest(c, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func (h *handler) projectID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		h.badRequest(c, "invalid project id")
		return 0, false
	}
	return id, true
}

// openSession resolves the open session addressed by the :id parameter.
func (h *handler) openSession(c *gin.Context, op string) (*session.Session, bool) {
	id, ok := h.projectID(c)
	if !ok {
		return nil, false
	}
	s, err := h.manager.Get(id)
	if err != nil {
		h.respondError(c, op, err)
		return nil, false
	}
	return s, true
}
