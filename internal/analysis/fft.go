// Package analysis provides frequency analysis of replayed gesture
// traces, used to quantify settle wobble.
package analysis

import (
	"math"
	"math/cmplx"
)

// FFT computes the radix-2 transform. Input is zero-padded up to the
// next power of two.
func FFT(data []float64) []complex128 {
	padded := pad(data)
	return fft(padded)
}

func pad(data []float64) []float64 {
	n := 1
	for n < len(data) {
		n *= 2
	}
	if n == len(data) {
		return data
	}
	padded := make([]float64, n)
	copy(padded, data)
	return padded
}

func fft(data []float64) []complex128 {
	n := len(data)
	if n <= 1 {
		result := make([]complex128, n)
		for i := range data {
			result[i] = complex(data[i], 0)
		}
		return result
	}

	even := make([]float64, n/2)
	odd := make([]float64, n/2)

	for i := 0; i < n/2; i++ {
		even[i] = data[2*i]
		odd[i] = data[2*i+1]
	}

	feven := fft(even)
	fodd := fft(odd)

	result := make([]complex128, n)
	for k := 0; k < n/2; k++ {
		w := cmplx.Exp(complex(0, -2*math.Pi*float64(k)/float64(n)))
		result[k] = feven[k] + w*fodd[k]
		result[k+n/2] = feven[k] - w*fodd[k]
	}

	return result
}

// PowerSpectrum returns the magnitude of the positive-frequency half.
func PowerSpectrum(data []float64) []float64 {
	transformed := FFT(data)
	ps := make([]float64, len(transformed)/2)

	for i := range ps {
		ps[i] = cmplx.Abs(transformed[i])
	}

	return ps
}
