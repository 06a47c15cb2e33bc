package voice

// Resample16k converts a PCM16 buffer captured at rateIn to 16 kHz by linear
// interpolation. At 16 kHz the input is returned as-is. Output length is
// floor(duration * 16000); query positions are spread evenly across the
// original sample index range and interpolated amplitudes are clipped to the
// int16 range.
func Resample16k(in []int16, rateIn int) []int16 {
	if rateIn == 16000 || len(in) == 0 {
		return in
	}

	duration := float64(len(in)) / float64(rateIn)
	nOut := int(duration * 16000)
	if nOut <= 0 {
		return in
	}

	out := make([]int16, nOut)
	if nOut == 1 {
		out[0] = in[0]
		return out
	}

	step := float64(len(in)-1) / float64(nOut-1)
	for i := 0; i < nOut; i++ {
		pos := float64(i) * step
		i0 := int(pos)
		if i0 >= len(in)-1 {
			out[i] = in[len(in)-1]
			continue
		}
		frac := pos - float64(i0)
		y := float64(in[i0])*(1-frac) + float64(in[i0+1])*frac
		if y > 32767 {
			y = 32767
		} else if y < -32768 {
			y = -32768
		}
		out[i] = int16(y)
	}
	return out
}
