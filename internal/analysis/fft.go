package analysis

import (
	"errors"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"

	"github.com/san-kum/cowell/pkg/dynamo"
)

var (
	ErrTooFewSamples = errors.New("analysis: not enough samples")
	ErrNonUniform    = errors.New("analysis: samples are not uniformly spaced")
	ErrNoPeak        = errors.New("analysis: no spectral peak")
)

const uniformTol = 1e-9

// PowerSpectrum returns the magnitude of the first n/2 bins of the Hann
// windowed, mean-removed signal.
func PowerSpectrum(data []float64) []float64 {
	n := len(data)
	if n < 2 {
		return []float64{}
	}

	mean := 0.0
	for _, v := range data {
		mean += v
	}
	mean /= float64(n)

	x := make([]float64, n)
	for i, v := range data {
		x[i] = v - mean
	}
	window.Apply(x, window.Hann)

	spec := fft.FFTReal(x)
	ps := make([]float64, n/2)
	for i := range ps {
		ps[i] = cmplx.Abs(spec[i])
	}
	return ps
}

// DominantFrequency returns the frequency of the strongest non-zero bin,
// refined by parabolic interpolation over its neighbours.
func DominantFrequency(data []float64, dt float64) (float64, error) {
	if len(data) < 4 {
		return 0, ErrTooFewSamples
	}
	ps := PowerSpectrum(data)

	peak := 0
	for k := 1; k < len(ps); k++ {
		if ps[k] > ps[peak] || peak == 0 {
			peak = k
		}
	}
	if peak == 0 || ps[peak] == 0 {
		return 0, ErrNoPeak
	}

	offset := 0.0
	if peak > 0 && peak < len(ps)-1 {
		a, b, c := ps[peak-1], ps[peak], ps[peak+1]
		if denom := a - 2*b + c; denom != 0 {
			offset = 0.5 * (a - c) / denom
		}
	}
	return (float64(peak) + offset) / (float64(len(data)) * dt), nil
}

// DominantPeriod estimates the period of component i of a uniformly sampled
// solution.
func DominantPeriod(sol *dynamo.Solution, i int) (float64, error) {
	ts, data, err := uniformSamples(sol, i)
	if err != nil {
		return 0, err
	}
	f, err := DominantFrequency(data, ts[1]-ts[0])
	if err != nil {
		return 0, err
	}
	return 1 / f, nil
}

func uniformSamples(sol *dynamo.Solution, i int) ([]float64, []float64, error) {
	ts := sol.Ts
	data := sol.Component(i)
	if len(ts) < 4 || len(data) != len(ts) {
		return nil, nil, ErrTooFewSamples
	}

	dt := ts[1] - ts[0]
	if last := ts[len(ts)-1] - ts[len(ts)-2]; math.Abs(last-dt) > uniformTol*math.Max(1, math.Abs(dt)) {
		ts = ts[:len(ts)-1]
		data = data[:len(data)-1]
	}
	for k := 2; k < len(ts); k++ {
		if math.Abs(ts[k]-ts[k-1]-dt) > uniformTol*math.Max(1, math.Abs(ts[k])) {
			return nil, nil, ErrNonUniform
		}
	}
	return ts, data, nil
}
