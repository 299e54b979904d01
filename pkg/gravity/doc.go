// Package gravity provides the force models and events used to assemble
// Cowell vector fields: point-mass gravity, the J2 zonal perturbation and a
// minimum-radius event.
//
// Every function reads its parameters from the dynamo.Args of the
// integration, using the keys below. Missing keys fall back to canonical
// units.
//
//	mu    gravitational parameter   (default 1)
//	J2    second zonal harmonic     (default 0)
//	R_eq  equatorial radius         (default 1)
//	rmin  minimum radius for events (default R_eq)
package gravity
