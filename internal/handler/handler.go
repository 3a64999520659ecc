// Package handler exposes the dashboard API over gin.
package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"myimpact/internal/audit"
	"myimpact/internal/auth"
	"myimpact/internal/export"
	"myimpact/internal/kpi"
	"myimpact/internal/model"
	"myimpact/internal/settings"
	"myimpact/internal/verification"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

// Deps are the services the handlers call.
type Deps struct {
	Engine       *kpi.Engine
	Verification *verification.Service
	Audit        *audit.Log
	Settings     *settings.Service
	Export       *export.Service
	Actors       auth.Provider
	// CurrentTerm is used when KPI and export requests omit term_id.
	CurrentTerm string
	// IssueToken enables the development token route when set.
	IssueToken func(model.Actor) (auth.Token, error)
	Log        *zap.SugaredLogger
}

type Handler struct {
	Deps
}

func New(d Deps) *Handler {
	if d.Log == nil {
		d.Log = zap.NewNop().Sugar()
	}
	if d.Actors == nil {
		d.Actors = auth.NewStaticProvider(model.Actor{})
	}
	return &Handler{Deps: d}
}

// RegisterPublic mounts routes that never require a token.
func (h *Handler) RegisterPublic(r gin.IRouter) {
	r.GET("/health", h.Health)
	if h.IssueToken != nil {
		r.POST("/dev/token", h.DevToken)
	}
}

// Register mounts the dashboard routes.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/terms", h.ListTerms)
	r.GET("/terms/:id", h.GetTerm)
	r.GET("/programs", h.ListPrograms)
	r.GET("/programs/:id", h.GetProgram)
	r.GET("/students", h.ListStudents)
	r.GET("/students/:id", h.GetStudent)
	r.GET("/service-logs", h.ListServiceLogs)

	r.GET("/verification-requests", h.ListVerificationRequests)
	r.POST("/verification-requests/confirm", h.Confirm)
	r.POST("/verification-requests/reject", h.Reject)
	r.POST("/verification-requests/flag", h.Flag)

	r.GET("/kpis", h.KPIs)
	r.GET("/audit-events", h.ListAuditEvents)

	r.GET("/settings", h.GetSettings)
	r.PUT("/settings", h.UpdateSettings)

	r.GET("/export/verified-logs", h.ExportVerifiedLogs)
	r.GET("/export/audit-trail", h.ExportAuditTrail)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "version": Version})
}

// fail maps an error to a status code and writes {"error": ...}.
func (h *Handler) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case errors.Is(err, model.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, model.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, auth.ErrNoActor):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		h.Log.Errorw("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func (h *Handler) actor(c *gin.Context) (model.Actor, bool) {
	actor, err := h.Actors.Actor(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return model.Actor{}, false
	}
	return actor, true
}

func (h *Handler) termOrCurrent(c *gin.Context) string {
	if id := c.Query("term_id"); id != "" {
		return id
	}
	return h.CurrentTerm
}

func (h *Handler) DevToken(c *gin.Context) {
	var req struct {
		UserID string          `json:"user_id"`
		Name   string          `json:"name"`
		Role   model.ActorRole `json:"role"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	actor := auth.DevAdmin
	if req.UserID != "" {
		actor = model.Actor{UserID: req.UserID, Name: req.Name, Role: req.Role}
	}
	if !actor.Role.Valid() {
		h.fail(c, &model.InvalidArgumentError{Field: "role", Value: string(actor.Role), Reason: "unknown role"})
		return
	}
	tok, err := h.IssueToken(actor)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"access_token": tok.AccessToken, "expires_at": tok.ExpiresAt.Format(time.RFC3339)})
}

func (h *Handler) ListAuditEvents(c *gin.Context) {
	limit := audit.DefaultLimit
	if v := c.Query("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			h.fail(c, &model.InvalidArgumentError{Field: "limit", Value: v, Reason: "must be a positive integer"})
			return
		}
		limit = parsed
	}
	events, err := h.Audit.List(limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *Handler) GetSettings(c *gin.Context) {
	s, err := h.Settings.Get()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *Handler) UpdateSettings(c *gin.Context) {
	var req settings.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	s, err := h.Settings.Update(c.Request.Context(), actor, req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func (h *Handler) ExportVerifiedLogs(c *gin.Context) {
	h.serveExport(c, export.KindVerifiedLogs, h.Export.VerifiedLogs)
}

func (h *Handler) ExportAuditTrail(c *gin.Context) {
	h.serveExport(c, export.KindAuditTrail, h.Export.AuditTrail)
}

type exportFunc func(ctx context.Context, termID string, f export.Format, actor model.Actor, w io.Writer) (export.Result, error)

func (h *Handler) serveExport(c *gin.Context, kind export.Kind, run exportFunc) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		h.fail(c, err)
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	termID := h.termOrCurrent(c)

	header := c.Writer.Header()
	header.Set("Content-Type", format.ContentType())
	header.Set("Content-Disposition", "attachment; filename="+export.FileName(kind, termID, format))
	if _, err := run(c.Request.Context(), termID, format, actor, c.Writer); err != nil {
		if !c.Writer.Written() {
			header.Del("Content-Type")
			header.Del("Content-Disposition")
			h.fail(c, err)
			return
		}
		h.Log.Warnw("export interrupted", "kind", kind, "term_id", termID, "error", err)
	}
}
