package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/capmatchph/capital-match-api/internal/audit"
	"github.com/capmatchph/capital-match-api/internal/httperr"
	"github.com/capmatchph/capital-match-api/internal/httpresp"
)

type AuditLogsHandler struct {
	recorder *audit.Recorder
}

func NewAuditLogsHandler(recorder *audit.Recorder) *AuditLogsHandler {
	return &AuditLogsHandler{recorder: recorder}
}

// List is the read side of the audit trail: reverse-chronological,
// paginated, filterable by actor, action and date range. Routed
// behind the ADMIN role gate.
func (h *AuditLogsHandler) List(c *gin.Context) {
	var f audit.Filter

	if actorStr := c.Query("actor_id"); actorStr != "" {
		if actor, err := strconv.ParseUint(actorStr, 10, 32); err == nil {
			id := uint(actor)
			f.ActorID = &id
		}
	}

	if action := c.Query("action"); action != "" {
		f.Action = audit.Action(action)
	}

	if fromStr := c.Query("from"); fromStr != "" {
		if from, err := time.Parse("2006-01-02", fromStr); err == nil {
			f.From = &from
		}
	}

	if toStr := c.Query("to"); toStr != "" {
		if to, err := time.Parse("2006-01-02", toStr); err == nil {
			end := to.Add(24 * time.Hour)
			f.To = &end
		}
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	entries, total, err := h.recorder.Query(c.Request.Context(), f, page, limit)
	if err != nil {
		httperr.Internal(c, "audit_list_failed", "Failed to list audit entries.")
		return
	}

	httpresp.Paged(c, page, limit, total, entries)
}
