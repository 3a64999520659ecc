package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"myimpact/internal/model"
)

func (h *Handler) ListTerms(c *gin.Context) {
	terms, err := h.Engine.Terms()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, terms)
}

func (h *Handler) GetTerm(c *gin.Context) {
	term, err := h.Engine.Term(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, term)
}

func (h *Handler) ListPrograms(c *gin.Context) {
	programs, err := h.Engine.Programs(c.Query("term_id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, programs)
}

func (h *Handler) GetProgram(c *gin.Context) {
	stats, err := h.Engine.ProgramStats(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) ListStudents(c *gin.Context) {
	students, err := h.Engine.StudentsForTerm(c.Query("term_id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, students)
}

func (h *Handler) GetStudent(c *gin.Context) {
	stats, err := h.Engine.StudentStats(c.Param("id"), c.Query("term_id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) ListServiceLogs(c *gin.Context) {
	entries, err := h.Verification.ListEntries(c.Query("term_id"), model.EntryStatus(c.Query("status")))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (h *Handler) KPIs(c *gin.Context) {
	kpis, err := h.Engine.ComputeKPIs(h.termOrCurrent(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, kpis)
}
