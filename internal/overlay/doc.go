// Package overlay renders a colo's tile map and its optional overlays.
//
// A Layout holds one colo, a grid frame and a zoom level. Overlays are
// switched with bit flags; switching one on renders it from the colo data
// and the reservation, rack and SKU sources, switching it off drops the
// rendered data. View returns the whole map as JSON-ready values and
// WriteSVG draws the same view as a standalone SVG document.
package overlay
