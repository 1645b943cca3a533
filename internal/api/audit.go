package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/nerrad567/colo-planner-core/internal/audit"
)

// recordChange appends e to the change log. Failures are logged and do
// not fail the request that caused the change.
func (s *Server) recordChange(ctx context.Context, e audit.Entry) {
	if s.audit == nil {
		return
	}
	if err := s.audit.Create(context.WithoutCancel(ctx), &e); err != nil {
		s.logger.Warn("failed to record change", "action", e.Action, "error", err)
	}
}

// handleListAudit returns the change log, newest first.
//
// Query parameters:
//   - action, colo, datacenter: exact matches
//   - since: RFC 3339 timestamp
//   - limit (default 50, max 200), offset
func (s *Server) handleListAudit(w http.ResponseWriter, r *http.Request) {
	if s.audit == nil {
		writeNotFound(w, "change log is disabled")
		return
	}

	q := r.URL.Query()
	filter := audit.Filter{
		Action:       q.Get("action"),
		ColoID:       q.Get("colo"),
		DataCenterID: q.Get("datacenter"),
	}
	if v := q.Get("since"); v != "" {
		since, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeBadRequest(w, "since must be an RFC 3339 timestamp")
			return
		}
		filter.Since = since
	}
	for name, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeBadRequest(w, name+" must be a non-negative integer")
			return
		}
		*dst = n
	}

	res, err := s.audit.List(r.Context(), filter)
	if err != nil {
		writeInternalError(w, "failed to list changes")
		return
	}
	writeJSON(w, http.StatusOK, res)
}
