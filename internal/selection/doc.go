// Package selection tracks which rack tiles a drag rectangle selects.
//
// A Selector consumes the selection steps of a Viewport, hit-tests them
// against the tiles that are currently selectable and commits the result
// to its Host when the gesture ends. Which tiles are selectable depends
// on tile status, the reservation data and the demand group being edited;
// changes to that context made during a gesture are held back until the
// gesture ends.
package selection
