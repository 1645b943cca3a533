// Package interaction turns raw device events into panning and
// rectangle-selection gestures.
//
// Events reach the package through a Surface. A Dispatcher is the in-memory
// Surface fed by a remote client or a terminal. Trackers bind to a surface
// and drive a Behavior. PointerTracker follows one captured pointer id;
// MouseTracker follows the held mouse through document-level listeners.
// A TrackerFactory picks between them from the Capabilities the caller
// detected.
//
// A Viewport owns one panning tracker and one selection tracker and keeps
// exactly one of them enabled. It also holds the zoom level and scroll
// offset of the view.
package interaction
