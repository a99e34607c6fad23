package jpegls

import "testing"

func TestColorTransformRoundTrip8Bit(t *testing.T) {
	transforms := []ColorTransformation{ColorTransformNone, ColorTransformHP1, ColorTransformHP2, ColorTransformHP3}
	for _, ct := range transforms {
		for r := 0; r <= 255; r += 17 {
			for g := 0; g <= 255; g += 23 {
				for b := 0; b <= 255; b += 29 {
					c0, c1, c2 := ApplyColorTransform(ct, 8, r, g, b)
					if c0 < 0 || c0 > 255 || c1 < 0 || c1 > 255 || c2 < 0 || c2 > 255 {
						t.Fatalf("ct=%v (%d,%d,%d) -> (%d,%d,%d), transformed value out of sample range",
							ct, r, g, b, c0, c1, c2)
					}
					gotR, gotG, gotB := InvertColorTransform(ct, 8, c0, c1, c2)
					if gotR != r || gotG != g || gotB != b {
						t.Fatalf("ct=%v (%d,%d,%d) -> (%d,%d,%d) -> (%d,%d,%d), want round trip",
							ct, r, g, b, c0, c1, c2, gotR, gotG, gotB)
					}
				}
			}
		}
	}
}

func TestColorTransformRoundTrip16Bit(t *testing.T) {
	transforms := []ColorTransformation{ColorTransformHP1, ColorTransformHP2, ColorTransformHP3}
	samples := []int{0, 1, 255, 4096, 32767, 65535}
	for _, ct := range transforms {
		for _, r := range samples {
			for _, g := range samples {
				for _, b := range samples {
					c0, c1, c2 := ApplyColorTransform(ct, 16, r, g, b)
					gotR, gotG, gotB := InvertColorTransform(ct, 16, c0, c1, c2)
					if gotR != r || gotG != g || gotB != b {
						t.Fatalf("ct=%v (%d,%d,%d) -> (%d,%d,%d) -> (%d,%d,%d), want round trip",
							ct, r, g, b, c0, c1, c2, gotR, gotG, gotB)
					}
				}
			}
		}
	}
}

// TestColorTransformHP1MidpointOffset pins the +range/2 bias: a neutral
// gray maps its difference planes to the range midpoint, not to zero.
func TestColorTransformHP1MidpointOffset(t *testing.T) {
	v1, v2, v3 := ApplyColorTransform(ColorTransformHP1, 8, 100, 100, 100)
	if v1 != 128 || v2 != 100 || v3 != 128 {
		t.Fatalf("HP1(100,100,100) = (%d,%d,%d), want (128,100,128)", v1, v2, v3)
	}
}
