// Package spectrum provides frequency analysis of complex blocks.
package spectrum

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// Power returns the squared magnitude of spectrum coefficients. Index i
// corresponds to frequency Freq(len(samples), i).
func Power(samples []complex64) []float64 {
	if len(samples) == 0 {
		return nil
	}
	seq := make([]complex128, len(samples))
	for i, s := range samples {
		seq[i] = complex128(s)
	}
	fft := fourier.NewCmplxFFT(len(seq))
	coeffs := fft.Coefficients(nil, seq)
	power := make([]float64, len(coeffs))
	for i, c := range coeffs {
		a := cmplx.Abs(c)
		power[i] = a * a
	}
	return power
}

// Freq returns the relative frequency of coefficient i for a block of n
// items, in cycles per item within [-0.5, 0.5).
func Freq(n, i int) float64 {
	return fourier.NewCmplxFFT(n).Freq(i)
}

// Peak returns the dominant frequency of samples in Hz. Zero is returned
// for empty input.
func Peak(samples []complex64, sampleRate float64) float64 {
	power := Power(samples)
	if len(power) == 0 {
		return 0
	}
	peak := 0
	for i, p := range power {
		if p > power[peak] {
			peak = i
		}
	}
	return Freq(len(samples), peak) * sampleRate
}
