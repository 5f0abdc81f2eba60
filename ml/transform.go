package ml

import "math"

// SignedLog1p compresses magnitude while preserving sign: sign(x) * log(1+|x|).
// Unlike plain log1p it is defined on the whole real line and maps 0 to 0.
func SignedLog1p(x float64) float64 {
	if x < 0 {
		return -math.Log1p(-x)
	}
	return math.Log1p(x)
}

// SignedExpm1 is the exact inverse of SignedLog1p: sign(y) * (exp(|y|)-1).
func SignedExpm1(y float64) float64 {
	if y < 0 {
		return -math.Expm1(-y)
	}
	return math.Expm1(y)
}
