package analysis

// TraceSpectrum is the frequency profile of one position trace.
type TraceSpectrum struct {
	Power        []float64
	DominantHz   float64
	DominantBin  int
	SampleRateHz float64
}

// AnalyzeTrace computes the power spectrum of a trace sampled at the
// given times. The mean is removed first so the DC term does not
// swamp the wobble frequencies.
func AnalyzeTrace(times, values []float64) TraceSpectrum {
	if len(values) < 2 || len(times) != len(values) {
		return TraceSpectrum{}
	}

	span := times[len(times)-1] - times[0]
	if span <= 0 {
		return TraceSpectrum{}
	}
	sampleRate := float64(len(times)-1) / span

	mean := 0.0
	for _, v := range values {
		mean += v
	}
	mean /= float64(len(values))

	centered := make([]float64, len(values))
	for i, v := range values {
		centered[i] = v - mean
	}

	ps := PowerSpectrum(centered)
	spec := TraceSpectrum{Power: ps, SampleRateHz: sampleRate}

	// Skip bin 0; a settled trace is dominated by its residual offset.
	maxPower := 0.0
	for i := 1; i < len(ps); i++ {
		if ps[i] > maxPower {
			maxPower = ps[i]
			spec.DominantBin = i
		}
	}
	if spec.DominantBin > 0 {
		// Bin width is sampleRate / fftSize; the spectrum holds half.
		spec.DominantHz = float64(spec.DominantBin) * sampleRate / float64(2*len(ps))
	}

	return spec
}
