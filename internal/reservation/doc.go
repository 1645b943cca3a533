// Package reservation indexes the group reservations of a data center.
//
// A group reservation belongs to a capacity demand and holds orders, each
// listing the rack reservations (tile, part number, power) it needs. The
// Index answers the lookups the planner renders from: which reservation
// holds a tile, which part numbers are in play, and which tiles of a colo
// each order occupies, grouped into adjacent spans.
package reservation
