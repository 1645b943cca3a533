package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/colo-planner-core/internal/interaction"
	"github.com/nerrad567/colo-planner-core/internal/overlay"
	"github.com/nerrad567/colo-planner-core/internal/reservation"
	"github.com/nerrad567/colo-planner-core/internal/tilespace"
	"github.com/nerrad567/colo-planner-core/internal/workspace"
)

// helloTimeout bounds the store reads made when a session opens.
const helloTimeout = 10 * time.Second

var errNoSession = errors.New("no session: send hello first")

type wsModePayload struct {
	Mode string `json:"mode"`
}

type wsZoomPayload struct {
	Direction string `json:"direction"`
}

type wsDemandPayload struct {
	GroupID string `json:"groupId"`
}

type wsOverlaysPayload struct {
	Overlays string `json:"overlays"`
}

// handleMessage processes an incoming WebSocket message.
func (c *WSClient) handleMessage(data []byte) {
	var msg WSMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.sendError("", "invalid JSON message")
		return
	}

	var err error
	switch msg.Type {
	case WSTypePing:
		c.sendResponse(msg.ID, WSTypePong, nil)
	case WSTypeHello:
		err = c.handleHello(msg)
	case WSTypeDevice:
		err = c.handleDevice(msg)
	case WSTypeMode:
		err = c.handleMode(msg)
	case WSTypeZoom:
		err = c.handleZoom(msg)
	case WSTypeDemand:
		err = c.handleDemand(msg)
	case WSTypeAssign:
		err = c.handleAssign(msg)
	case WSTypeUnassign:
		err = c.handleUnassign(msg)
	case WSTypeOverlays:
		err = c.handleOverlays(msg)
	case WSTypeOrigin:
		err = c.handleOrigin(msg)
	case WSTypeClear:
		err = c.withSession(func(s *workspace.Session) error {
			s.ClearSelection()
			c.sendResponse(msg.ID, WSTypeResponse, s.State())
			return nil
		})
	default:
		err = fmt.Errorf("unknown message type: %s", msg.Type)
	}
	if err != nil {
		c.sendError(msg.ID, err.Error())
	}
}

// decodePayload converts a generic payload into v.
func decodePayload(payload any, v any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}

func (c *WSClient) withSession(fn func(*workspace.Session) error) error {
	s := c.currentSession()
	if s == nil {
		return errNoSession
	}
	return fn(s)
}

// handleHello opens a session on the requested colo, replacing any
// session the client already had.
func (c *WSClient) handleHello(msg WSMessage) error {
	var hello WSHelloPayload
	if err := decodePayload(msg.Payload, &hello); err != nil {
		return err
	}
	if hello.ColoID == "" {
		return errors.New("hello: coloId is required")
	}

	srv := c.server
	flags := srv.overlays
	if hello.Overlays != "" {
		f, err := overlay.ParseFlags(hello.Overlays)
		if err != nil {
			return fmt.Errorf("hello: %w", err)
		}
		flags = f
	}
	caps := interaction.Capabilities{PointerEvents: srv.interCfg.PointerEvents}
	if hello.PointerEvents != nil {
		caps.PointerEvents = *hello.PointerEvents
	}

	ctx, cancel := context.WithTimeout(context.Background(), helloTimeout)
	defer cancel()
	data, _, err := srv.loadColo(ctx, hello.ColoID)
	if err != nil {
		return fmt.Errorf("hello: %w", err)
	}

	c.closeSession()
	sess := srv.sessions.Open(data, workspace.Config{
		Capabilities:      caps,
		Frame:             srv.layoutCfg.BaseFrame(),
		ClientOrigin:      hello.ClientOrigin,
		ZoomRate:          srv.layoutCfg.ZoomRate,
		SelectionDisabled: hello.SelectionDisabled || !srv.interCfg.SelectionEnabled,
		Overlays:          flags,
		Sources:           srv.loadSources(ctx, hello.ColoID),
	}, c.sendEvent)

	c.mu.Lock()
	c.session = sess
	c.mu.Unlock()

	srv.logger.Info("gesture session opened",
		"session_id", sess.ID(),
		"colo_id", hello.ColoID,
		"pointer_events", caps.PointerEvents,
	)
	c.sendResponse(msg.ID, WSTypeWelcome, WSWelcomePayload{Session: sess.State(), View: sess.View()})
	return nil
}

// handleDevice feeds one device event into the session. Only requests
// carrying an id are acknowledged.
func (c *WSClient) handleDevice(msg WSMessage) error {
	var ev interaction.DeviceEvent
	if err := decodePayload(msg.Payload, &ev); err != nil {
		return err
	}
	return c.withSession(func(s *workspace.Session) error {
		consumed, err := s.HandleDevice(ev)
		if err != nil {
			return err
		}
		if msg.ID != "" {
			c.sendResponse(msg.ID, WSTypeResponse, map[string]bool{"consumed": consumed})
		}
		return nil
	})
}

func (c *WSClient) handleMode(msg WSMessage) error {
	var p wsModePayload
	if err := decodePayload(msg.Payload, &p); err != nil {
		return err
	}
	return c.withSession(func(s *workspace.Session) error {
		state, err := s.SetMode(p.Mode)
		if err != nil {
			return err
		}
		c.sendResponse(msg.ID, WSTypeResponse, state)
		return nil
	})
}

func (c *WSClient) handleZoom(msg WSMessage) error {
	var p wsZoomPayload
	if err := decodePayload(msg.Payload, &p); err != nil {
		return err
	}
	return c.withSession(func(s *workspace.Session) error {
		zoom, err := s.Zoom(p.Direction)
		if err != nil {
			return err
		}
		view := s.View()
		c.sendResponse(msg.ID, WSTypeResponse, map[string]float64{
			"zoom":   zoom,
			"width":  view.Width,
			"height": view.Height,
		})
		return nil
	})
}

// handleDemand sets or clears the demand group being edited.
func (c *WSClient) handleDemand(msg WSMessage) error {
	var p wsDemandPayload
	if err := decodePayload(msg.Payload, &p); err != nil {
		return err
	}
	return c.withSession(func(s *workspace.Session) error {
		s.SetActiveDemand(p.GroupID)
		c.sendResponse(msg.ID, WSTypeResponse, s.State())
		return nil
	})
}

// handleAssign records an assignment in this client's session only.
// Colo-wide assignments arrive over MQTT.
func (c *WSClient) handleAssign(msg WSMessage) error {
	raw, err := json.Marshal(msg.Payload)
	if err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	a, err := reservation.DecodeAssignment(raw)
	if err != nil {
		return err
	}
	return c.withSession(func(s *workspace.Session) error {
		s.Assign(a)
		c.sendResponse(msg.ID, WSTypeResponse, a)
		return nil
	})
}

func (c *WSClient) handleUnassign(msg WSMessage) error {
	raw, err := json.Marshal(msg.Payload)
	if err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	tileID, err := reservation.DecodeUnassignment(raw)
	if err != nil {
		return err
	}
	return c.withSession(func(s *workspace.Session) error {
		s.Unassign(tileID)
		c.sendResponse(msg.ID, WSTypeResponse, map[string]int64{"tileId": tileID})
		return nil
	})
}

// handleOverlays changes the visible overlays and returns the new view.
func (c *WSClient) handleOverlays(msg WSMessage) error {
	var p wsOverlaysPayload
	if err := decodePayload(msg.Payload, &p); err != nil {
		return err
	}
	flags, err := overlay.ParseFlags(p.Overlays)
	if err != nil {
		return err
	}
	return c.withSession(func(s *workspace.Session) error {
		shown, hidden := s.SetOverlays(flags)
		view := s.View()
		if view.Power != nil {
			c.server.recordPower(s.ColoID(), *view.Power)
		}
		c.sendResponse(msg.ID, WSTypeResponse, map[string]any{
			"shown":  shown.String(),
			"hidden": hidden.String(),
			"view":   view,
		})
		return nil
	})
}

// handleOrigin moves the client origin after a client layout change.
func (c *WSClient) handleOrigin(msg WSMessage) error {
	var p tilespace.Point
	if err := decodePayload(msg.Payload, &p); err != nil {
		return err
	}
	return c.withSession(func(s *workspace.Session) error {
		s.SetClientOrigin(p)
		return nil
	})
}
