package scale

// Window is the number of points kept for display.
const Window = 2000

// MaxTimeScale is the largest time scale index, the end of the time slider.
const MaxTimeScale = 2

// Points is the number of most recent points shown at time scale t,
// clamped to 0..MaxTimeScale.
func Points(t int) int {
	t = clampTimeScale(t)
	n := Window
	for ; t > 0 && n > 1; t-- {
		n /= 10
	}
	return n
}

// SecondsPerDiv is the horizontal scale at time scale t.
func SecondsPerDiv(t int) float64 {
	t = clampTimeScale(t)
	s := 1.0
	for ; t > 0; t-- {
		s /= 10
	}
	return s
}

func clampTimeScale(t int) int {
	switch {
	case t < 0:
		return 0
	case t > MaxTimeScale:
		return MaxTimeScale
	}
	return t
}
