// Package workspace hosts planner sessions.
//
// A Session is one client's view of one colo: a rendered overlay.Layout,
// an interaction.Viewport fed with the client's pointer or mouse events
// through a Dispatcher, and a selection.Selector that turns the viewport's
// selection steps into committed tile sets. All of a session's events are
// serialized behind one mutex, so callers on different goroutines (a
// WebSocket read loop, an MQTT handler, an HTTP handler) can share it.
//
// A Manager owns sessions by ID:
//
//	m := workspace.NewManager(workspace.Hooks{MQTT: client, Metrics: influx})
//	s := m.Open(data, cfg, sink)
//	defer m.Close(s.ID())
package workspace
