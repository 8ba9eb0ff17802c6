// Package viz draws growing surfaces in the terminal.
//
// Frames are rendered onto a braille [Canvas], 2D frames flat and 3D frames
// through a rotating [Camera]. [Watch] runs a simulation behind a Bubble Tea
// live view fed by a [Feed]; [PlotTelemetry] charts a run's telemetry with
// asciigraph.
//
// # Key Bindings
//
//	Space - Freeze/unfreeze the view
//	x y z - Rotate (shift reverses)
//	+ -   - Zoom
//	R     - Reset the camera
//	T     - Cycle color themes
//	?     - Show help overlay
//	Q     - Stop the run and quit
package viz
