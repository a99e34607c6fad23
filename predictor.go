package jpegls

// MED prediction, prediction correction, the signed/unsigned error value
// mapping and near-lossless reconstruction (ISO/IEC 14495-1 A.4, A.5.2,
// A.9).

// MedPredict is the Median Edge Detector predictor of ITU-T T.87 A.4.1.
func MedPredict(ra, rb, rc int) int {
	minAB := ra
	if rb < minAB {
		minAB = rb
	}
	maxAB := ra
	if rb > maxAB {
		maxAB = rb
	}
	if rc <= minAB {
		return maxAB
	}
	if rc >= maxAB {
		return minAB
	}
	return ra + rb - rc
}

// applySign returns value if sign>=0, -value otherwise.
func applySign(value, sign int) int {
	if sign < 0 {
		return -value
	}
	return value
}

// correctPrediction clamps a corrected prediction into [0, maxVal].
func correctPrediction(p, maxVal int) int {
	if p < 0 {
		return 0
	}
	if p > maxVal {
		return maxVal
	}
	return p
}

// predictWithContext computes the context-corrected prediction: the MED
// predictor with the context's signed bias correction applied, clamped to
// [0, MAXVAL] (A.4.2).
func predictWithContext(ra, rb, rc, biasCorrection, sign, maxVal int) int {
	predicted := MedPredict(ra, rb, rc)
	predicted += applySign(biasCorrection, sign)
	return correctPrediction(predicted, maxVal)
}

// reduceErrorModulo keeps errVal within the canonical representative range
// [-floor(RANGE/2), ceil(RANGE/2)-1] required by A.4.5 so every residual
// maps to a unique small value regardless of how far the raw subtraction
// drifted.
func reduceErrorModulo(errVal, rangeVal int) int {
	errVal %= rangeVal
	if errVal < 0 {
		errVal += rangeVal
	}
	if errVal >= (rangeVal+1)/2 {
		errVal -= rangeVal
	}
	return errVal
}

// mapErrorValue maps a signed error to a non-negative value suitable for
// Golomb-Rice coding: mapped = (e>>30)^(2e), computed with explicit 32-bit
// semantics so it matches the reference bit trick exactly. Values outside
// [-2^30, 2^30) are out of the domain this trick is defined for, which is
// always true for any valid JPEG-LS prediction error.
func mapErrorValue(e int) int {
	e32 := int32(e)
	return int(((e32 >> 30) ^ (2 * e32)))
}

// unmapErrorValue is the inverse of mapErrorValue.
func unmapErrorValue(m int) int {
	m32 := int32(m)
	signExt := (m32 << 31) >> 31
	return int(signExt ^ (m32 >> 1))
}

// dequantizeNear converts a (already range-folded) quantized error back to
// sample-domain units for near-lossless coding.
func dequantizeNear(errVal, near int) int {
	return errVal * (2*near + 1)
}

// computeReconstructedSample reconstructs a decoded sample from a
// predicted value, a signed context-space error, the active sign flip and
// NEAR/MAXVAL/RANGE: wrap into [-NEAR, MAXVAL+NEAR], then clamp (A.8.2).
// The wrap period is rangeVal*(2*near+1), matching charls'
// default_traits::fix_reconstructed_value (the period that actually
// inverts reduceErrorModulo's modulus-rangeVal reduction) rather than
// maxVal+1+2*near, which only coincides with it when (maxVal+2*near) is
// evenly divisible by (2*near+1).
func computeReconstructedSample(predicted, errVal, sign, near, maxVal, rangeVal int) int {
	delta := applySign(dequantizeNear(errVal, near), sign)
	reconstructed := predicted + delta
	period := rangeVal * (2*near + 1)
	if reconstructed < -near {
		reconstructed += period
	} else if reconstructed > maxVal+near {
		reconstructed -= period
	}
	return correctPrediction(reconstructed, maxVal)
}

// quantizeNearError maps a raw (unsigned-domain) prediction error to its
// near-lossless quantized representative, per A.4.2.
func quantizeNearError(diff, near int) int {
	if near == 0 {
		return diff
	}
	if diff >= 0 {
		return (diff + near) / (2*near + 1)
	}
	return -((near - diff) / (2*near + 1))
}
