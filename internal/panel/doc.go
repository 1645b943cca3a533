// Package panel serves the browser colo map.
//
// The page lists the stored colos, draws the chosen one from its SVG
// layout and runs a gesture session over the WebSocket API so tiles can
// be drag-selected in the browser. Assets are embedded; a directory on
// disk can replace them while working on the page.
package panel
