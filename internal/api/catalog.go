package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/colo-planner-core/internal/audit"
	"github.com/nerrad567/colo-planner-core/internal/colo"
	"github.com/nerrad567/colo-planner-core/internal/reservation"
)

// handlePutDataCenters replaces the data-center directory.
func (s *Server) handlePutDataCenters(w http.ResponseWriter, r *http.Request) {
	var dcs []colo.DataCenter
	if err := decodeBody(r, &dcs); err != nil {
		writeBodyError(w, err)
		return
	}
	for _, dc := range dcs {
		if dc.ID == "" {
			writeError(w, http.StatusUnprocessableEntity, ErrCodeValidation, "data center Id is required")
			return
		}
	}
	if err := s.colos.ReplaceCatalog(r.Context(), dcs); err != nil {
		writeDomainError(w, err, "failed to store data centers")
		return
	}
	s.recordChange(r.Context(), audit.Entry{
		Action:  audit.ActionCatalogReplace,
		Source:  audit.SourceAPI,
		Details: map[string]any{"datacenters": len(dcs)},
	})
	writeJSON(w, http.StatusOK, map[string]any{"count": len(dcs)})
}

// handleListDataCenters returns the data-center directory.
func (s *Server) handleListDataCenters(w http.ResponseWriter, r *http.Request) {
	catalog, err := s.colos.LoadCatalog(r.Context())
	if err != nil {
		writeInternalError(w, "failed to load data centers")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"datacenters": catalog.DataCenters, "count": len(catalog.DataCenters)})
}

// handlePutRacks replaces the racks of a data center.
func (s *Server) handlePutRacks(w http.ResponseWriter, r *http.Request) {
	dcID := chi.URLParam(r, "dcID")
	var racks []colo.Rack
	if err := decodeBody(r, &racks); err != nil {
		writeBodyError(w, err)
		return
	}
	if err := s.colos.ReplaceRacks(r.Context(), dcID, racks); err != nil {
		writeDomainError(w, err, "failed to store racks")
		return
	}
	s.recordChange(r.Context(), audit.Entry{
		Action:       audit.ActionRacksReplace,
		DataCenterID: dcID,
		Source:       audit.SourceAPI,
		Details:      map[string]any{"racks": len(racks)},
	})
	s.refreshSessions(r.Context(), dcID)
	writeJSON(w, http.StatusOK, map[string]any{"datacenterId": dcID, "count": len(racks)})
}

// handleListRacks returns the racks of a data center.
func (s *Server) handleListRacks(w http.ResponseWriter, r *http.Request) {
	racks, err := s.colos.ListRacks(r.Context(), chi.URLParam(r, "dcID"))
	if err != nil {
		writeInternalError(w, "failed to list racks")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"racks": racks, "count": len(racks)})
}

// handlePutSKUs upserts SKU power ratings.
func (s *Server) handlePutSKUs(w http.ResponseWriter, r *http.Request) {
	var skus []colo.SKU
	if err := decodeBody(r, &skus); err != nil {
		writeBodyError(w, err)
		return
	}
	if err := s.colos.ReplaceSKUs(r.Context(), skus); err != nil {
		writeDomainError(w, err, "failed to store SKUs")
		return
	}
	s.recordChange(r.Context(), audit.Entry{
		Action:  audit.ActionSKUsReplace,
		Source:  audit.SourceAPI,
		Details: map[string]any{"skus": len(skus)},
	})
	writeJSON(w, http.StatusOK, map[string]any{"count": len(skus)})
}

// handleListSKUs returns the SKU catalog.
func (s *Server) handleListSKUs(w http.ResponseWriter, r *http.Request) {
	skus, err := s.colos.ListSKUs(r.Context())
	if err != nil {
		writeInternalError(w, "failed to list SKUs")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"skus": skus, "count": len(skus)})
}

// handlePutReservations replaces the group reservations of a data center.
// The body is the facility API's {"GroupReservations": [...]} envelope or
// a bare array. Open sessions of the data center's colos pick up the new
// reservations.
func (s *Server) handlePutReservations(w http.ResponseWriter, r *http.Request) {
	dcID := chi.URLParam(r, "dcID")
	body, err := readBody(r)
	if err != nil {
		writeBodyError(w, err)
		return
	}
	groups, err := reservation.Decode(bytes.NewReader(body))
	if err != nil {
		writeDomainError(w, err, "failed to decode reservations")
		return
	}
	if err := s.reservations.Replace(r.Context(), dcID, groups); err != nil {
		writeDomainError(w, err, "failed to store reservations")
		return
	}
	s.logger.Info("reservations stored", "datacenter_id", dcID, "groups", len(groups))
	s.recordChange(r.Context(), audit.Entry{
		Action:       audit.ActionReservationsReplace,
		DataCenterID: dcID,
		Source:       audit.SourceAPI,
		Details:      map[string]any{"groups": len(groups)},
	})
	s.refreshSessions(r.Context(), dcID)
	writeJSON(w, http.StatusOK, map[string]any{"datacenterId": dcID, "count": len(groups)})
}

// handleListReservations returns the group reservations of a data center.
func (s *Server) handleListReservations(w http.ResponseWriter, r *http.Request) {
	groups, err := s.reservations.Load(r.Context(), chi.URLParam(r, "dcID"))
	if err != nil {
		writeDomainError(w, err, "failed to load reservations")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"groupReservations": groups, "count": len(groups)})
}

// handleGroupAssignments lists the tiles of one group reservation with the
// order each is assigned to.
func (s *Server) handleGroupAssignments(w http.ResponseWriter, r *http.Request) {
	groupID := chi.URLParam(r, "groupID")
	groups, err := s.reservations.Load(r.Context(), chi.URLParam(r, "dcID"))
	if err != nil {
		writeDomainError(w, err, "failed to load reservations")
		return
	}
	assignments, ok := reservation.NewIndex(groups).Assignments(groupID)
	if !ok {
		writeDomainError(w, fmt.Errorf("%w: %s", reservation.ErrGroupNotFound, groupID), "")
		return
	}
	if assignments == nil {
		assignments = []reservation.Assignment{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"groupId": groupID, "assignments": assignments})
}
