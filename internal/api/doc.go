// Package api implements the HTTP REST API and WebSocket server of the colo
// planner.
//
// This package provides:
//   - REST endpoints that cache colo snapshots, reservations, racks, SKUs
//     and the data-center directory in SQLite
//   - layout rendering as JSON or SVG with selectable overlays
//   - stateless geometry endpoints (tiles to rects, tiles to spans)
//   - WebSocket gesture sessions that turn client device events into tile
//     selections
//   - a change log of every stored snapshot, catalog and assignment event
//   - the browser colo map, served outside /api/v1
//   - Middleware stack (request ID, logging, recovery, CORS, body limit)
//
// # Gesture sessions
//
// A client connects to /api/v1/ws and sends hello with a colo ID. The
// server opens a workspace.Session and answers welcome with the session
// state and the rendered view. Device events then flow in; selection,
// scroll and committed messages flow out.
//
// # Graceful Degradation
//
// MQTT, InfluxDB and the change log are optional. Without MQTT, assignment
// events only arrive through the WebSocket; without InfluxDB no metrics are
// written.
package api
