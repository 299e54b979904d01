// Package viz renders propagated orbits in the terminal.
//
// [Replay] is a Bubble Tea model that steps through the samples of a stored
// solution, drawing the x-y track, the current state and a radius sparkline.
// The lipgloss styles and [Summary] are shared with the CLI output.
//
// # Key Bindings
//
//	Space   - Pause/Resume playback
//	Left/H  - Step back one sample
//	Right/L - Step forward one sample
//	+/-     - Change playback speed
//	R       - Restart from the first sample
//	Q       - Quit
package viz
