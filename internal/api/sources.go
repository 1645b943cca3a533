package api

import (
	"context"
	"errors"

	"github.com/nerrad567/colo-planner-core/internal/colo"
	"github.com/nerrad567/colo-planner-core/internal/overlay"
	"github.com/nerrad567/colo-planner-core/internal/reservation"
)

// loadColo reads a stored snapshot and wraps it for rendering.
func (s *Server) loadColo(ctx context.Context, coloID string) (*colo.Data, string, error) {
	snap, fp, err := s.colos.GetSnapshot(ctx, coloID)
	if err != nil {
		return nil, "", err
	}
	return colo.NewData(snap), fp, nil
}

// loadSources gathers reservations, racks and SKUs for a colo. Anything
// missing leaves its part of the sources empty; overlays then render
// without it.
func (s *Server) loadSources(ctx context.Context, coloID string) overlay.Sources {
	src := overlay.Sources{Families: s.families}

	skus, err := s.colos.ListSKUs(ctx)
	if err != nil {
		s.logger.Warn("loading SKU catalog failed", "error", err)
	}
	src.SKUs = colo.NewSKUCatalog(skus)

	catalog, err := s.colos.LoadCatalog(ctx)
	if err != nil {
		s.logger.Warn("loading data-center catalog failed", "error", err)
		return src
	}
	dc, ok := catalog.DataCenterForColo(coloID)
	if !ok {
		s.logger.Debug("colo not in data-center catalog", "colo_id", coloID)
		return src
	}

	groups, err := s.reservations.Load(ctx, dc.ID)
	switch {
	case errors.Is(err, reservation.ErrDataCenterNotFound):
	case err != nil:
		s.logger.Warn("loading reservations failed", "datacenter_id", dc.ID, "error", err)
	default:
		src.Reservations = reservation.NewIndex(groups)
	}

	racks, err := s.colos.ListRacks(ctx, dc.ID)
	if err != nil {
		s.logger.Warn("loading racks failed", "datacenter_id", dc.ID, "error", err)
	} else {
		src.Racks = colo.NewRackIndex(racks)
	}
	return src
}

// refreshSessions pushes fresh sources into the open sessions of every
// colo in a data center.
func (s *Server) refreshSessions(ctx context.Context, dataCenterID string) {
	catalog, err := s.colos.LoadCatalog(ctx)
	if err != nil {
		s.logger.Warn("loading data-center catalog failed", "error", err)
		return
	}
	dc, ok := catalog.DataCenter(dataCenterID)
	if !ok {
		return
	}
	for _, c := range dc.Colocations {
		sessions := s.sessions.ForColo(c.ID)
		if len(sessions) == 0 {
			continue
		}
		src := s.loadSources(ctx, c.ID)
		for _, sess := range sessions {
			sess.SetSources(src)
		}
		s.logger.Debug("refreshed session sources", "colo_id", c.ID, "sessions", len(sessions))
	}
}

// recordPower writes the colo's power totals when metrics are enabled.
func (s *Server) recordPower(coloID string, p overlay.PowerOverlay) {
	if s.metrics == nil {
		return
	}
	deployed, reserved, unknown := p.Totals()
	s.metrics.WriteColoPower(coloID, deployed, reserved, unknown)
}
