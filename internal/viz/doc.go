// Package viz draws a running world in the terminal with Bubble Tea.
//
//   - [Model]: live view of one world on a Braille [Canvas]
//   - preset picker started with [RunInteractive]
//
// # Key Bindings
//
//	Space - Toggle the closest-pair line
//	P     - Pause/Resume
//	R     - Resample every body
//	Esc   - Clear the selection
//	T     - Cycle colour themes
//	Q     - Quit
//
// A left click selects the body under the pointer; the side panel then
// shows its nearest neighbour, answered by the quadtree.
package viz
