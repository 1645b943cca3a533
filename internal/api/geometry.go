package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/nerrad567/colo-planner-core/internal/tilespace"
)

// rectsRequest is the body of POST /geometry/rects.
type rectsRequest struct {
	Tiles []tilespace.Tile    `json:"tiles"`
	Frame tilespace.GridFrame `json:"frame"`
	// Strict rejects tiles with malformed labels instead of placing them
	// at the frame origin.
	Strict bool `json:"strict"`
}

// groupsRequest is the body of POST /geometry/groups.
type groupsRequest struct {
	Tiles []tilespace.Tile `json:"tiles"`
	// Axis is "row" or "column". Empty groups each tile along the axis of
	// its own direction.
	Axis  string               `json:"axis"`
	Frame *tilespace.GridFrame `json:"frame,omitempty"`
}

// handleGeometryRects maps tiles to pixel rectangles in a frame.
func (s *Server) handleGeometryRects(w http.ResponseWriter, r *http.Request) {
	var req rectsRequest
	if err := decodeBody(r, &req); err != nil {
		writeBodyError(w, err)
		return
	}
	if err := req.Frame.Validate(); err != nil {
		writeDomainError(w, err, "")
		return
	}

	var rects []tilespace.TileRect
	if req.Strict {
		var errs []error
		rects = make([]tilespace.TileRect, 0, len(req.Tiles))
		for _, t := range req.Tiles {
			tr, err := tilespace.TileToRectStrict(t, req.Frame)
			if err != nil {
				errs = append(errs, fmt.Errorf("tile %d: %w", t.ID, err))
				continue
			}
			rects = append(rects, tr)
		}
		if err := errors.Join(errs...); err != nil {
			writeDomainError(w, err, "")
			return
		}
	} else {
		rects = tilespace.TileRects(req.Tiles, req.Frame)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"rects": rects,
		"path":  tilespace.PathData(rects),
	})
}

// handleGeometryGroups partitions tiles into spans of adjacent tiles, and
// maps the spans to rectangles when a frame is given.
func (s *Server) handleGeometryGroups(w http.ResponseWriter, r *http.Request) {
	var req groupsRequest
	if err := decodeBody(r, &req); err != nil {
		writeBodyError(w, err)
		return
	}

	var spans []tilespace.Span
	if req.Axis == "" {
		spans = tilespace.GroupConnected(req.Tiles)
	} else {
		axis, ok := tilespace.ParseAxis(req.Axis)
		if !ok {
			writeBadRequest(w, fmt.Sprintf("axis %q must be row or column", req.Axis))
			return
		}
		spans = tilespace.GroupAdjacent(req.Tiles, axis)
	}
	if spans == nil {
		spans = []tilespace.Span{}
	}

	resp := map[string]any{"spans": spans}
	if req.Frame != nil {
		if err := req.Frame.Validate(); err != nil {
			writeDomainError(w, err, "")
			return
		}
		rects := tilespace.SpanRects(spans, *req.Frame)
		resp["rects"] = rects
		resp["path"] = tilespace.PathData(rects)
	}
	writeJSON(w, http.StatusOK, resp)
}
