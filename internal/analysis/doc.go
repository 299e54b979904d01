// Package analysis post-processes propagated trajectories.
//
//   - [PowerSpectrum] and [DominantPeriod]: spectral content of a uniformly
//     sampled solution component, computed with go-dsp
//   - [ProjectPhase]: 2D projection of a solution for terminal plots
//   - [PoincareSection]: interpolated crossings of a threshold plane
//
// Spectral analysis expects samples from FixedSteps; the shorter last step
// that FixedSteps takes to land on t1 is dropped automatically.
//
//	sol := cowell.FixedSteps(d, x0, 20*period, period/64)
//	p, err := analysis.DominantPeriod(sol, 0)
package analysis
