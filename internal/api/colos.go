package api

import (
	"bytes"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/colo-planner-core/internal/audit"
	"github.com/nerrad567/colo-planner-core/internal/colo"
	"github.com/nerrad567/colo-planner-core/internal/overlay"
)

// handleListColos returns the stored snapshots without their tiles.
func (s *Server) handleListColos(w http.ResponseWriter, r *http.Request) {
	infos, err := s.colos.ListSnapshots(r.Context())
	if err != nil {
		writeInternalError(w, "failed to list colos")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"colos": infos, "count": len(infos)})
}

// handlePutColo stores a colo snapshot. The colo ID in the path wins over
// the body's. The response carries the snapshot fingerprint as ETag.
func (s *Server) handlePutColo(w http.ResponseWriter, r *http.Request) {
	coloID := chi.URLParam(r, "coloID")

	body, err := readBody(r)
	if err != nil {
		writeBodyError(w, err)
		return
	}
	snap, err := colo.DecodeSnapshot(bytes.NewReader(body), coloID)
	if err != nil {
		writeDomainError(w, err, "failed to decode snapshot")
		return
	}

	fp, changed, err := s.colos.SaveSnapshot(r.Context(), snap)
	if err != nil {
		writeDomainError(w, err, "failed to store snapshot")
		return
	}
	s.logger.Info("colo snapshot stored", "colo_id", coloID, "tiles", len(snap.Tiles), "changed", changed)
	if changed {
		s.recordChange(r.Context(), audit.Entry{
			Action:  audit.ActionColoStore,
			ColoID:  coloID,
			Source:  audit.SourceAPI,
			Details: map[string]any{"fingerprint": fp, "tiles": len(snap.Tiles)},
		})
	}

	if changed && s.metrics != nil {
		data := colo.NewData(snap)
		src := s.loadSources(r.Context(), coloID)
		s.recordPower(coloID, overlay.RackPower(data, data.Frame(s.layoutCfg.BaseFrame()), overlay.PowerSources{
			Racks:        src.Racks,
			Reservations: src.Reservations,
			SKUs:         src.SKUs,
		}))
	}

	status := http.StatusOK
	if changed {
		status = http.StatusCreated
	}
	w.Header().Set("ETag", quoteETag(fp))
	writeJSON(w, status, map[string]any{
		"coloId":      coloID,
		"fingerprint": fp,
		"changed":     changed,
		"tiles":       len(snap.Tiles),
	})
}

// handleGetColo returns a stored snapshot. A matching If-None-Match
// answers 304 without a body.
func (s *Server) handleGetColo(w http.ResponseWriter, r *http.Request) {
	snap, fp, err := s.colos.GetSnapshot(r.Context(), chi.URLParam(r, "coloID"))
	if err != nil {
		writeDomainError(w, err, "failed to read snapshot")
		return
	}

	etag := quoteETag(fp)
	w.Header().Set("ETag", etag)
	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	body, err := snap.Encode()
	if err != nil {
		writeInternalError(w, "failed to encode snapshot")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body) //nolint:errcheck // Best-effort write to response
}

// handleDeleteColo removes a stored snapshot.
func (s *Server) handleDeleteColo(w http.ResponseWriter, r *http.Request) {
	coloID := chi.URLParam(r, "coloID")
	if err := s.colos.DeleteSnapshot(r.Context(), coloID); err != nil {
		writeDomainError(w, err, "failed to delete snapshot")
		return
	}
	s.recordChange(r.Context(), audit.Entry{Action: audit.ActionColoDelete, ColoID: coloID, Source: audit.SourceAPI})
	w.WriteHeader(http.StatusNoContent)
}

// handleColoStats returns tile counts by class, status and brand.
func (s *Server) handleColoStats(w http.ResponseWriter, r *http.Request) {
	data, fp, err := s.loadColo(r.Context(), chi.URLParam(r, "coloID"))
	if err != nil {
		writeDomainError(w, err, "failed to read snapshot")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"coloId":      data.ColoID(),
		"fingerprint": fp,
		"stats":       data.Stats(),
	})
}

// handleColoLayout renders a colo as JSON.
//
// Query parameters:
//   - overlays: overlay names or mask (default from config)
//   - zoom: zoom factor (default 1)
func (s *Server) handleColoLayout(w http.ResponseWriter, r *http.Request) {
	layout, ok := s.buildLayout(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, layout.View())
}

// handleColoLayoutSVG renders a colo as an SVG document.
func (s *Server) handleColoLayoutSVG(w http.ResponseWriter, r *http.Request) {
	layout, ok := s.buildLayout(w, r)
	if !ok {
		return
	}
	var buf bytes.Buffer
	if err := layout.WriteSVG(&buf); err != nil {
		writeInternalError(w, "failed to render SVG")
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes()) //nolint:errcheck // Best-effort write to response
}

// buildLayout renders the colo named in the path with the requested
// overlays and zoom. It writes the error response itself and reports
// false on failure.
func (s *Server) buildLayout(w http.ResponseWriter, r *http.Request) (*overlay.Layout, bool) {
	q := r.URL.Query()

	flags := s.overlays
	if v := q.Get("overlays"); v != "" {
		f, err := overlay.ParseFlags(v)
		if err != nil {
			writeBadRequest(w, err.Error())
			return nil, false
		}
		flags = f
	}

	zoom := 1.0
	if v := q.Get("zoom"); v != "" {
		z, err := strconv.ParseFloat(v, 64)
		if err != nil || z <= 0 {
			writeBadRequest(w, "zoom must be a positive number")
			return nil, false
		}
		zoom = z
	}

	coloID := chi.URLParam(r, "coloID")
	data, _, err := s.loadColo(r.Context(), coloID)
	if err != nil {
		writeDomainError(w, err, "failed to read snapshot")
		return nil, false
	}

	layout := overlay.New(data, s.layoutCfg.BaseFrame(), s.loadSources(r.Context(), coloID))
	layout.SetZoom(zoom)
	layout.SetOverlays(flags)
	if p, ok := layout.Power(); ok {
		s.recordPower(coloID, p)
	}
	return layout, true
}

func quoteETag(fp string) string {
	return `"` + fp + `"`
}

// etagMatches reports whether an If-None-Match header names etag. Weak
// validators compare equal to their strong form.
func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimPrefix(strings.TrimSpace(candidate), "W/")
		if candidate == "*" || candidate == etag {
			return true
		}
	}
	return false
}
