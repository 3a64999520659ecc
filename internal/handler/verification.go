package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"myimpact/internal/model"
)

type confirmRequest struct {
	RequestID string `json:"request_id" binding:"required"`
}

type rejectRequest struct {
	RequestID string `json:"request_id" binding:"required"`
	Reason    string `json:"reason" binding:"required"`
}

type flagRequest struct {
	RequestID string `json:"request_id" binding:"required"`
	Reason    string `json:"reason"`
}

func (h *Handler) ListVerificationRequests(c *gin.Context) {
	views, err := h.Verification.ListRequests(c.Query("term_id"), model.RequestStatus(c.Query("status")))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, views)
}

func (h *Handler) Confirm(c *gin.Context) {
	var req confirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	res, err := h.Verification.Confirm(c.Request.Context(), req.RequestID, actor)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":        res.Success,
		"message":        "Verification confirmed",
		"audit_event_id": res.AuditEventID,
		"hours_added":    res.HoursAdded,
	})
}

func (h *Handler) Reject(c *gin.Context) {
	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	res, err := h.Verification.Reject(c.Request.Context(), req.RequestID, model.RejectionReason(req.Reason), actor)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":        res.Success,
		"message":        "Verification rejected",
		"reason":         res.Reason,
		"audit_event_id": res.AuditEventID,
	})
}

func (h *Handler) Flag(c *gin.Context) {
	var req flagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	res, err := h.Verification.Flag(c.Request.Context(), req.RequestID, req.Reason, actor)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":        res.Success,
		"message":        "Verification flagged for review",
		"audit_event_id": res.AuditEventID,
	})
}
