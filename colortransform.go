package jpegls

// Reversible HP color transforms, applied component-wise before encoding
// and inverted after decoding a 3-component image, matching charls'
// color_transform.hpp (these transforms predate and sit outside ISO/IEC
// 14495-1 itself, but are the de facto interchange convention). All
// arithmetic wraps modulo the sample range (a power of two, since the
// transforms are only defined for 8- and 16-bit samples), which is what
// makes them exactly invertible.

func applyColorTransformHP1(r, g, b, rangeVal int) (v1, v2, v3 int) {
	mask := rangeVal - 1
	half := rangeVal / 2
	return (r - g + half) & mask, g, (b - g + half) & mask
}

func invertColorTransformHP1(v1, v2, v3, rangeVal int) (r, g, b int) {
	mask := rangeVal - 1
	half := rangeVal / 2
	g = v2
	r = (v1 + g - half) & mask
	b = (v3 + g - half) & mask
	return r, g, b
}

func applyColorTransformHP2(r, g, b, rangeVal int) (v1, v2, v3 int) {
	mask := rangeVal - 1
	half := rangeVal / 2
	return (r - g + half) & mask, g, (b - ((r + g) >> 1) - half) & mask
}

func invertColorTransformHP2(v1, v2, v3, rangeVal int) (r, g, b int) {
	mask := rangeVal - 1
	half := rangeVal / 2
	g = v2
	r = (v1 + g - half) & mask
	b = (v3 + ((r + g) >> 1) - half) & mask
	return r, g, b
}

func applyColorTransformHP3(r, g, b, rangeVal int) (v1, v2, v3 int) {
	mask := rangeVal - 1
	half := rangeVal / 2
	v2 = (b - g + half) & mask
	v3 = (r - g + half) & mask
	v1 = (g + ((v2 + v3) >> 2) - rangeVal/4) & mask
	return v1, v2, v3
}

func invertColorTransformHP3(v1, v2, v3, rangeVal int) (r, g, b int) {
	mask := rangeVal - 1
	half := rangeVal / 2
	g = (v1 - ((v3 + v2) >> 2) + rangeVal/4) & mask
	r = (v3 + g - half) & mask
	b = (v2 + g - half) & mask
	return r, g, b
}

// ApplyColorTransform dispatches to the selected forward transform for a
// full pixel. bitsPerSample must be 8 or 16 (validated at the coding-
// parameter boundary); the sample range is 2^bitsPerSample.
func ApplyColorTransform(ct ColorTransformation, bitsPerSample int, p0, p1, p2 int) (int, int, int) {
	rangeVal := 1 << uint(bitsPerSample)
	switch ct {
	case ColorTransformHP1:
		return applyColorTransformHP1(p0, p1, p2, rangeVal)
	case ColorTransformHP2:
		return applyColorTransformHP2(p0, p1, p2, rangeVal)
	case ColorTransformHP3:
		return applyColorTransformHP3(p0, p1, p2, rangeVal)
	default:
		return p0, p1, p2
	}
}

// InvertColorTransform is the decode-side inverse of ApplyColorTransform.
func InvertColorTransform(ct ColorTransformation, bitsPerSample int, p0, p1, p2 int) (int, int, int) {
	rangeVal := 1 << uint(bitsPerSample)
	switch ct {
	case ColorTransformHP1:
		return invertColorTransformHP1(p0, p1, p2, rangeVal)
	case ColorTransformHP2:
		return invertColorTransformHP2(p0, p1, p2, rangeVal)
	case ColorTransformHP3:
		return invertColorTransformHP3(p0, p1, p2, rangeVal)
	default:
		return p0, p1, p2
	}
}
