package jpegls

// Marker segment parsing: a marker-at-a-time walk over the byte stream
// plus the per-segment payload readers, shaped after charls'
// jpeg_stream_reader but reporting *Error values instead of exceptions.

// markerSegment is one parsed [0xFF, code, length?, payload?] unit.
type markerSegment struct {
	code    byte
	payload []byte
}

// streamReader walks a JPEG-LS byte stream marker by marker.
type streamReader struct {
	src []byte
	pos int
}

func newStreamReader(src []byte) *streamReader { return &streamReader{src: src} }

// Position returns the current byte offset (used to locate where bitstream
// entropy data for a scan begins).
func (r *streamReader) Position() int { return r.pos }

func (r *streamReader) atEnd() bool { return r.pos >= len(r.src) }

// NextMarker scans forward for the next 0xFF marker pair and returns its
// code and, for segments with a length field, its payload (excluding the
// 2-byte length itself). Standalone markers (SOI/EOI/TEM/RSTm) return a
// nil payload.
func (r *streamReader) NextMarker() (markerSegment, error) {
	for {
		if r.pos >= len(r.src) {
			return markerSegment{}, newError(KindNeedMoreData, "source exhausted looking for marker")
		}
		if r.src[r.pos] != 0xFF {
			return markerSegment{}, newError(KindJpegMarkerStartByteNotFound, "expected 0xFF marker prefix")
		}
		r.pos++
		for r.pos < len(r.src) && r.src[r.pos] == 0xFF {
			r.pos++ // fill bytes between markers
		}
		if r.pos >= len(r.src) {
			return markerSegment{}, newError(KindNeedMoreData, "source exhausted reading marker code")
		}
		code := r.src[r.pos]
		r.pos++
		if isStandaloneMarker(code) {
			return markerSegment{code: code}, nil
		}
		if r.pos+2 > len(r.src) {
			return markerSegment{}, newError(KindNeedMoreData, "source exhausted reading marker length")
		}
		length := int(r.src[r.pos])<<8 | int(r.src[r.pos+1])
		if length < 2 || r.pos+length > len(r.src) {
			return markerSegment{}, newError(KindInvalidMarkerSegmentSize, "marker segment length out of range")
		}
		payload := r.src[r.pos+2 : r.pos+length]
		r.pos += length
		return markerSegment{code: code, payload: payload}, nil
	}
}

// readFrameSegment parses a SOF55 payload into a FrameSegment.
func readFrameSegment(payload []byte) (FrameSegment, error) {
	if len(payload) < 6 {
		return FrameSegment{}, newError(KindInvalidMarkerSegmentSize, "SOF55 segment too short")
	}
	fs := FrameSegment{
		BitsPerSample:  int(payload[0]),
		Height:         uint32(payload[1])<<8 | uint32(payload[2]),
		Width:          uint32(payload[3])<<8 | uint32(payload[4]),
		ComponentCount: int(payload[5]),
	}
	needed := 6 + 3*fs.ComponentCount
	if len(payload) < needed {
		return FrameSegment{}, newError(KindInvalidMarkerSegmentSize, "SOF55 component table truncated")
	}
	for i := 0; i < fs.ComponentCount; i++ {
		fs.ComponentIDs = append(fs.ComponentIDs, payload[6+3*i])
	}
	return fs, nil
}

// readScanSegment parses a SOS payload into a ScanSegment, validating the
// component count, the interleave selector and the reserved Ah/Al byte.
func readScanSegment(payload []byte, remainingComponents int) (ScanSegment, error) {
	if len(payload) < 1 {
		return ScanSegment{}, newError(KindInvalidMarkerSegmentSize, "SOS segment too short")
	}
	count := int(payload[0])
	if count < 1 || count > 4 {
		return ScanSegment{}, newError(KindInvalidParameterComponentCount, "SOS component count out of range")
	}
	if count > remainingComponents {
		return ScanSegment{}, newError(KindInvalidParameterComponentCount, "SOS names more components than the frame has left")
	}
	needed := 1 + 2*count + 3
	if len(payload) < needed {
		return ScanSegment{}, newError(KindInvalidMarkerSegmentSize, "SOS component table truncated")
	}
	ss := ScanSegment{}
	for i := 0; i < count; i++ {
		id := payload[1+2*i]
		ss.ComponentIndices = append(ss.ComponentIndices, int(id)-1)
		ss.TableIDs = append(ss.TableIDs, payload[2+2*i])
	}
	base := 1 + 2*count
	ss.NearLossless = int(payload[base])
	ilv := payload[base+1]
	if ilv > 2 {
		return ScanSegment{}, newError(KindInvalidParameterInterleaveMode, "SOS interleave selector out of range")
	}
	ss.InterleaveMode = InterleaveMode(ilv)
	if payload[base+2] != 0 {
		return ScanSegment{}, newError(KindParameterValueNotSupported, "SOS point transform must be 0")
	}
	return ss, nil
}

// readColorTransformSegment parses the 5-byte APP8 "mrfx" payload; ok is
// false when the payload isn't a color-transform record at all.
func readColorTransformSegment(payload []byte) (ColorTransformation, bool, error) {
	if len(payload) != 5 || string(payload[:4]) != colorTransformMagic {
		return ColorTransformNone, false, nil
	}
	ct := ColorTransformation(payload[4])
	if ct > ColorTransformHP3 {
		return ColorTransformNone, true, newError(KindInvalidParameterColorTransformation, "unknown color transform selector")
	}
	return ct, true, nil
}

// readPresetCodingParameters parses an LSE preset-coding-parameters
// payload (type byte already consumed by the caller).
func readPresetCodingParameters(payload []byte) (PresetCodingParameters, error) {
	if len(payload) < 10 {
		return PresetCodingParameters{}, newError(KindInvalidMarkerSegmentSize, "LSE preset coding parameters segment too short")
	}
	return PresetCodingParameters{
		MaximumSampleValue: int(payload[0])<<8 | int(payload[1]),
		Threshold1:         int(payload[2])<<8 | int(payload[3]),
		Threshold2:         int(payload[4])<<8 | int(payload[5]),
		Threshold3:         int(payload[6])<<8 | int(payload[7]),
		ResetValue:         int(payload[8])<<8 | int(payload[9]),
	}, nil
}

// readOversizeImageSegment parses an LSE X-dimension payload (type byte
// already consumed).
func readOversizeImageSegment(payload []byte) (OversizeImageSegment, error) {
	if len(payload) < 1 {
		return OversizeImageSegment{}, newError(KindInvalidMarkerSegmentSize, "LSE oversize segment too short")
	}
	dimBytes := int(payload[0])
	if dimBytes < 2 || dimBytes > 4 {
		return OversizeImageSegment{}, newError(KindInvalidParameterJpegLSPresetParameters, "oversize dimension width must be 2, 3 or 4 bytes")
	}
	if len(payload) < 1+2*dimBytes {
		return OversizeImageSegment{}, newError(KindInvalidMarkerSegmentSize, "LSE oversize segment truncated")
	}
	readDim := func(b []byte) uint32 {
		var v uint32
		for _, x := range b {
			v = v<<8 | uint32(x)
		}
		return v
	}
	return OversizeImageSegment{
		DimensionBytes: dimBytes,
		Height:         readDim(payload[1 : 1+dimBytes]),
		Width:          readDim(payload[1+dimBytes : 1+2*dimBytes]),
	}, nil
}

// readBigEndian reads a 2-, 3- or 4-byte big-endian value, the variable
// widths DRI and DNL segments may use (C.2.5/C.2.6).
func readBigEndian(b []byte) (uint32, error) {
	if len(b) < 2 || len(b) > 4 {
		return 0, newError(KindInvalidMarkerSegmentSize, "big-endian field must be 2, 3 or 4 bytes")
	}
	var v uint32
	for _, x := range b {
		v = v<<8 | uint32(x)
	}
	return v, nil
}

func readRestartIntervalSegment(payload []byte) (RestartIntervalSegment, error) {
	v, err := readBigEndian(payload)
	if err != nil {
		return RestartIntervalSegment{}, wrapError(KindInvalidMarkerSegmentSize, "DRI segment", err)
	}
	return RestartIntervalSegment{Interval: v}, nil
}

func readDNLSegment(payload []byte) (DNLSegment, error) {
	v, err := readBigEndian(payload)
	if err != nil {
		return DNLSegment{}, wrapError(KindInvalidMarkerSegmentSize, "DNL segment", err)
	}
	return DNLSegment{Height: v}, nil
}
