package jpegls

import "testing"

// genGradient fills a deterministic, non-trivial test image: a smooth
// gradient plus a few step edges, the kind of content that exercises both
// regular mode (gradients) and run mode (flat steps).
func genGradient(width, height, maxVal int) []uint16 {
	samples := make([]uint16, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := (x*7 + y*13) % (maxVal + 1)
			if (x/4+y/4)%3 == 0 {
				v = maxVal / 2 // flat runs
			}
			samples[y*width+x] = uint16(v)
		}
	}
	return samples
}

func encodeDecodeRoundTrip(t *testing.T, fi FrameInfo, cp CodingParameters, samples []uint16) []uint16 {
	t.Helper()
	enc, err := NewEncoder(fi)
	if err != nil {
		t.Fatalf("NewEncoder failed: %v", err)
	}
	if err := enc.SetCodingParameters(cp); err != nil {
		t.Fatalf("SetCodingParameters failed: %v", err)
	}
	dst := make([]byte, enc.EstimatedDestinationSize())
	n, err := enc.Encode(dst, samples)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	dec := NewDecoder()
	result, err := dec.Decode(dst[:n])
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if result.Frame != fi {
		t.Errorf("decoded FrameInfo = %+v, want %+v", result.Frame, fi)
	}
	if len(result.Samples) != len(samples) {
		t.Fatalf("decoded sample count = %d, want %d", len(result.Samples), len(samples))
	}
	return result.Samples
}

func TestRoundTripLosslessGrayscale8Bit(t *testing.T) {
	width, height := 17, 11
	fi := FrameInfo{Width: uint32(width), Height: uint32(height), BitsPerSample: 8, ComponentCount: 1}
	samples := genGradient(width, height, 255)
	got := encodeDecodeRoundTrip(t, fi, CodingParameters{}, samples)
	for i := range samples {
		if got[i] != samples[i] {
			t.Fatalf("sample %d: got %d, want %d (lossless)", i, got[i], samples[i])
		}
	}
}

func TestRoundTripLossless16Bit(t *testing.T) {
	width, height := 9, 6
	fi := FrameInfo{Width: uint32(width), Height: uint32(height), BitsPerSample: 16, ComponentCount: 1}
	samples := genGradient(width, height, 65535)
	got := encodeDecodeRoundTrip(t, fi, CodingParameters{}, samples)
	for i := range samples {
		if got[i] != samples[i] {
			t.Fatalf("sample %d: got %d, want %d (lossless)", i, got[i], samples[i])
		}
	}
}

func TestRoundTripLossless12Bit(t *testing.T) {
	width, height := 13, 9
	fi := FrameInfo{Width: uint32(width), Height: uint32(height), BitsPerSample: 12, ComponentCount: 1}
	samples := genGradient(width, height, 4095)
	got := encodeDecodeRoundTrip(t, fi, CodingParameters{}, samples)
	for i := range samples {
		if got[i] != samples[i] {
			t.Fatalf("sample %d: got %d, want %d (lossless)", i, got[i], samples[i])
		}
	}
}

func TestRoundTripNearLossless(t *testing.T) {
	width, height := 15, 10
	near := 3
	fi := FrameInfo{Width: uint32(width), Height: uint32(height), BitsPerSample: 8, ComponentCount: 1}
	samples := genGradient(width, height, 255)
	got := encodeDecodeRoundTrip(t, fi, CodingParameters{NearLossless: near}, samples)
	for i := range samples {
		diff := int(got[i]) - int(samples[i])
		if diff < 0 {
			diff = -diff
		}
		if diff > near {
			t.Fatalf("sample %d: |%d-%d|=%d exceeds NEAR=%d", i, got[i], samples[i], diff, near)
		}
	}
}

func TestRoundTripUniformImageCompresses(t *testing.T) {
	width, height := 64, 64
	fi := FrameInfo{Width: uint32(width), Height: uint32(height), BitsPerSample: 8, ComponentCount: 1}
	samples := make([]uint16, width*height)
	for i := range samples {
		samples[i] = 128
	}
	enc, err := NewEncoder(fi)
	if err != nil {
		t.Fatalf("NewEncoder failed: %v", err)
	}
	dst := make([]byte, enc.EstimatedDestinationSize())
	n, err := enc.Encode(dst, samples)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	ratio := float64(n) / float64(len(samples))
	if ratio > 0.5 {
		t.Errorf("uniform image compression ratio %.3f too high (want < 0.5), encoded=%d bytes", ratio, n)
	}
	dec := NewDecoder()
	result, err := dec.Decode(dst[:n])
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	for i, v := range result.Samples {
		if v != 128 {
			t.Fatalf("sample %d = %d, want 128", i, v)
		}
	}
}

func TestRoundTripMultiComponentSampleInterleave(t *testing.T) {
	width, height, nc := 11, 7, 3
	fi := FrameInfo{Width: uint32(width), Height: uint32(height), BitsPerSample: 8, ComponentCount: nc}
	samples := make([]uint16, width*height*nc)
	for i := range samples {
		samples[i] = uint16((i*31 + (i/nc)*5) % 256)
	}
	got := encodeDecodeRoundTrip(t, fi, CodingParameters{InterleaveMode: InterleaveSample}, samples)
	for i := range samples {
		if got[i] != samples[i] {
			t.Fatalf("sample %d: got %d, want %d", i, got[i], samples[i])
		}
	}
}

func TestRoundTripMultiComponentLineInterleave(t *testing.T) {
	width, height, nc := 11, 7, 3
	fi := FrameInfo{Width: uint32(width), Height: uint32(height), BitsPerSample: 8, ComponentCount: nc}
	samples := make([]uint16, width*height*nc)
	for i := range samples {
		samples[i] = uint16((i*17 + 3) % 256)
	}
	got := encodeDecodeRoundTrip(t, fi, CodingParameters{InterleaveMode: InterleaveLine}, samples)
	for i := range samples {
		if got[i] != samples[i] {
			t.Fatalf("sample %d: got %d, want %d", i, got[i], samples[i])
		}
	}
}

func TestRoundTripMultiComponentNoInterleave(t *testing.T) {
	width, height, nc := 9, 5, 3
	fi := FrameInfo{Width: uint32(width), Height: uint32(height), BitsPerSample: 8, ComponentCount: nc}
	samples := make([]uint16, width*height*nc)
	for i := range samples {
		samples[i] = uint16((i * 23) % 256)
	}
	got := encodeDecodeRoundTrip(t, fi, CodingParameters{InterleaveMode: InterleaveNone}, samples)
	for i := range samples {
		if got[i] != samples[i] {
			t.Fatalf("sample %d: got %d, want %d", i, got[i], samples[i])
		}
	}
}

func TestRoundTripWithColorTransformHP1(t *testing.T) {
	width, height := 10, 8
	fi := FrameInfo{Width: uint32(width), Height: uint32(height), BitsPerSample: 8, ComponentCount: 3}
	samples := make([]uint16, width*height*3)
	for i := 0; i < width*height; i++ {
		samples[i*3] = uint16((i * 3) % 256)
		samples[i*3+1] = uint16((i * 5) % 256)
		samples[i*3+2] = uint16((i * 7) % 256)
	}
	got := encodeDecodeRoundTrip(t, fi, CodingParameters{InterleaveMode: InterleaveSample, ColorTransformation: ColorTransformHP1}, samples)
	for i := range samples {
		if got[i] != samples[i] {
			t.Fatalf("sample %d: got %d, want %d", i, got[i], samples[i])
		}
	}
}

func TestRoundTripRestartIntervals(t *testing.T) {
	width, height := 8, 7
	fi := FrameInfo{Width: uint32(width), Height: uint32(height), BitsPerSample: 8, ComponentCount: 1}
	samples := genGradient(width, height, 255)
	got := encodeDecodeRoundTrip(t, fi, CodingParameters{RestartInterval: 2}, samples)
	for i := range samples {
		if got[i] != samples[i] {
			t.Fatalf("sample %d: got %d, want %d", i, got[i], samples[i])
		}
	}
}

// TestRemovedRestartMarkerFails: corrupting a stream by deleting one RSTm
// marker must surface a restart-marker error rather than silently decoding
// garbage.
func TestRemovedRestartMarkerFails(t *testing.T) {
	width, height := 8, 7
	fi := FrameInfo{Width: uint32(width), Height: uint32(height), BitsPerSample: 8, ComponentCount: 1}
	samples := genGradient(width, height, 255)

	enc, err := NewEncoder(fi)
	if err != nil {
		t.Fatalf("NewEncoder failed: %v", err)
	}
	if err := enc.SetCodingParameters(CodingParameters{RestartInterval: 2}); err != nil {
		t.Fatalf("SetCodingParameters failed: %v", err)
	}
	dst := make([]byte, enc.EstimatedDestinationSize())
	n, err := enc.Encode(dst, samples)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	encoded := dst[:n]

	idx := -1
	for i := 0; i+1 < len(encoded); i++ {
		if encoded[i] == 0xFF && isRestartMarker(encoded[i+1]) {
			idx = i
			break
		}
	}
	if idx < 0 {
		t.Fatal("expected at least one RSTm marker in encoded stream")
	}
	corrupted := append(append([]byte(nil), encoded[:idx]...), encoded[idx+2:]...)

	dec := NewDecoder()
	if _, err := dec.Decode(corrupted); err == nil || !IsKind(err, KindRestartMarkerNotFound) {
		t.Fatalf("expected restart_marker_not_found, got %v", err)
	}
}

func TestDestinationTooSmallFails(t *testing.T) {
	fi := FrameInfo{Width: 16, Height: 16, BitsPerSample: 8, ComponentCount: 1}
	samples := genGradient(16, 16, 255)
	enc, err := NewEncoder(fi)
	if err != nil {
		t.Fatalf("NewEncoder failed: %v", err)
	}
	_, err = enc.Encode(make([]byte, 4), samples)
	if err == nil || !IsKind(err, KindDestinationTooSmall) {
		t.Fatalf("expected destination_too_small, got %v", err)
	}
}

// TestRoundTripOversizeImage: a frame dimension beyond SOF55's 16-bit
// fields forces Encoder to emit an LSE oversize-dimension segment right
// after SOF55, and Decoder to recover the true dimensions from it rather
// than from SOF55's truncated fields.
func TestRoundTripOversizeImage(t *testing.T) {
	width, height := 1<<16, 1
	fi := FrameInfo{Width: uint32(width), Height: uint32(height), BitsPerSample: 8, ComponentCount: 1}
	samples := genGradient(width, height, 255)
	got := encodeDecodeRoundTrip(t, fi, CodingParameters{}, samples)
	for i := range samples {
		if got[i] != samples[i] {
			t.Fatalf("sample %d: got %d, want %d (lossless)", i, got[i], samples[i])
		}
	}
}

// TestRoundTripNonDefaultPresetCodingParameters exercises non-default
// PC parameters, which Encoder carries as an LSE(1) segment emitted right
// after SOF55: a decoder that drops segments following SOF55 would instead
// silently fall back to computed defaults, corrupting thresholds/RESET.
func TestRoundTripNonDefaultPresetCodingParameters(t *testing.T) {
	width, height := 12, 9
	fi := FrameInfo{Width: uint32(width), Height: uint32(height), BitsPerSample: 8, ComponentCount: 1}
	samples := genGradient(width, height, 255)

	enc, err := NewEncoder(fi)
	if err != nil {
		t.Fatalf("NewEncoder failed: %v", err)
	}
	pc := PresetCodingParameters{MaximumSampleValue: 255, Threshold1: 5, Threshold2: 9, Threshold3: 30, ResetValue: 32}
	if err := enc.SetPresetCodingParameters(pc); err != nil {
		t.Fatalf("SetPresetCodingParameters failed: %v", err)
	}
	dst := make([]byte, enc.EstimatedDestinationSize())
	n, err := enc.Encode(dst, samples)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	dec := NewDecoder()
	result, err := dec.Decode(dst[:n])
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	for i := range samples {
		if result.Samples[i] != samples[i] {
			t.Fatalf("sample %d: got %d, want %d (lossless)", i, result.Samples[i], samples[i])
		}
	}
}

// TestMappingTableRoundTrip: a table registered via WriteMappingTable is
// carried in an LSE type-2 segment after SOF55 and must come back out
// through DecodedImage.MappingTables.
func TestMappingTableRoundTrip(t *testing.T) {
	width, height := 6, 4
	fi := FrameInfo{Width: uint32(width), Height: uint32(height), BitsPerSample: 8, ComponentCount: 1}
	samples := genGradient(width, height, 255)

	enc, err := NewEncoder(fi)
	if err != nil {
		t.Fatalf("NewEncoder failed: %v", err)
	}
	palette := make([]byte, 3*256) // entrySize=3 (RGB), 256 entries
	for i := range palette {
		palette[i] = byte(i)
	}
	if err := enc.WriteMappingTable(1, 3, palette); err != nil {
		t.Fatalf("WriteMappingTable failed: %v", err)
	}
	dst := make([]byte, enc.EstimatedDestinationSize())
	n, err := enc.Encode(dst, samples)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	dec := NewDecoder()
	result, err := dec.Decode(dst[:n])
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if result.MappingTables == nil {
		t.Fatal("expected MappingTables to be populated")
	}
	table := result.MappingTables.Table(1)
	if table == nil {
		t.Fatal("expected table id 1 to be present")
	}
	if !table.Complete() {
		t.Fatal("expected table to be complete")
	}
	if got := table.EntryCount(); got != 256 {
		t.Fatalf("EntryCount() = %d, want 256", got)
	}
	for i := 0; i < 256; i++ {
		entry := table.Entry(i)
		for j, b := range entry {
			want := byte(i*3 + j)
			if b != want {
				t.Fatalf("entry %d byte %d = %d, want %d", i, j, b, want)
			}
		}
	}
	for i := range samples {
		if result.Samples[i] != samples[i] {
			t.Fatalf("sample %d: got %d, want %d (lossless)", i, result.Samples[i], samples[i])
		}
	}
}

// TestAbbreviatedFormatRoundTrip covers the "abbreviated table specification"
// stream: SOI, mapping tables, EOI, with no frame at all.
func TestAbbreviatedFormatRoundTrip(t *testing.T) {
	fi := FrameInfo{Width: 1, Height: 1, BitsPerSample: 8, ComponentCount: 1}
	enc, err := NewEncoder(fi)
	if err != nil {
		t.Fatalf("NewEncoder failed: %v", err)
	}
	data := []byte{10, 20, 30, 40}
	if err := enc.WriteMappingTable(7, 2, data); err != nil {
		t.Fatalf("WriteMappingTable failed: %v", err)
	}
	dst := make([]byte, 256)
	n, err := enc.CreateAbbreviatedFormat(dst)
	if err != nil {
		t.Fatalf("CreateAbbreviatedFormat failed: %v", err)
	}

	dec := NewDecoder()
	result, err := dec.Decode(dst[:n])
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !result.IsAbbreviated() {
		t.Fatal("expected IsAbbreviated() == true")
	}
	table := result.MappingTables.Table(7)
	if table == nil || table.EntryCount() != 2 {
		t.Fatalf("expected table 7 with 2 entries, got %+v", table)
	}
}

func TestEncodeSampleCountMismatchFails(t *testing.T) {
	fi := FrameInfo{Width: 4, Height: 4, BitsPerSample: 8, ComponentCount: 1}
	enc, err := NewEncoder(fi)
	if err != nil {
		t.Fatalf("NewEncoder failed: %v", err)
	}
	_, err = enc.Encode(make([]byte, 64), make([]uint16, 4))
	if err == nil {
		t.Fatal("expected error for mismatched sample buffer length")
	}
}
