package util

// Number covers the sample and amplitude types that flow through the
// pipeline.
type Number interface {
	~int | ~int16 | ~int32 | ~float32 | ~float64
}

// EqualSlices reports element-wise equality.
func EqualSlices[T comparable](a, b []T) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// CloseSlices reports element-wise equality within tol. Interpolated or
// format-converted audio buffers rarely compare exactly.
func CloseSlices[T Number](a, b []T, tol float64) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		if d < 0 {
			d = -d
		}
		if d > tol {
			return false
		}
	}
	return true
}
