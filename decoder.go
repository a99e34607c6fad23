package jpegls

// Public decode API, the inverse of encoder.go: a marker-driven read
// loop shaped after charls' charls_jpegls_decoder and jpeg_stream_reader.

// DecodedImage is the result of a successful Decode.
type DecodedImage struct {
	Frame         FrameInfo
	Coding        CodingParameters
	Samples       []uint16 // row-major, natural (post-inverse-color-transform) sample order
	Spiff         *SpiffHeader
	MappingTables *MappingTableSet // tables declared via LSE(2)/LSE(3); an empty set if none

	// ComponentTableIDs holds each component's mapping table selector from
	// its SOS segment (0 = no table), indexed by component.
	ComponentTableIDs []byte
}

// IsAbbreviated reports whether the decoded stream carried only mapping
// tables with no SOF55/scan (the "abbreviated table specification" format
// of ITU-T T.87 C.4, used to share palette tables between images without
// repeating them in every file).
func (d *DecodedImage) IsAbbreviated() bool { return d.Frame.Width == 0 }

// Decoder parses a JPEG-LS bitstream produced by Encoder or any
// conformant encoder (arithmetic-coded ISO/IEC 14495-2 extensions are out
// of scope).
type Decoder struct {
	// OnComment, if set, is invoked for every COM segment's payload. A
	// non-nil return aborts the decode with callback_failed.
	OnComment func(data []byte) error

	// OnApplicationData, if set, is invoked for every APPn segment with
	// its id (0..15) and payload. A non-nil return aborts the decode with
	// callback_failed.
	OnApplicationData func(id int, data []byte) error
}

// NewDecoder creates a decoder. Per-stream state lives in the per-call
// decodeState, so one Decoder may decode any number of streams in turn.
func NewDecoder() *Decoder { return &Decoder{} }

// decodeState carries everything accumulated while walking one stream's
// marker segments.
type decodeState struct {
	sr              *streamReader
	frame           *FrameSegment
	preset          PresetCodingParameters
	restartInterval uint32
	oversize        *OversizeImageSegment
	colorTransform  ColorTransformation
	spiff           *SpiffHeader
	tables          *MappingTableSet
}

// Decode parses src in full and reconstructs the image it encodes.
func (d *Decoder) Decode(src []byte) (*DecodedImage, error) {
	st := &decodeState{
		sr:     newStreamReader(src),
		tables: NewMappingTableSet(),
	}

	first, err := st.sr.NextMarker()
	if err != nil {
		return nil, err
	}
	if first.code != markerSOI {
		return nil, newError(KindStartOfImageMarkerNotFound, "stream does not begin with SOI")
	}
	// Header section: every segment up to the first SOS (or an EOI for an
	// abbreviated table-specification stream).
	var pending *markerSegment
	for pending == nil {
		seg, err := st.sr.NextMarker()
		if err != nil {
			return nil, err
		}
		done, err := d.handleHeaderSegment(st, seg)
		if err != nil {
			return nil, err
		}
		if done {
			s := seg
			pending = &s
		}
	}

	if pending.code == markerEOI {
		if st.frame != nil {
			return nil, newError(KindUnexpectedEndOfImageMarker, "EOI before any scan data")
		}
		if st.spiff != nil {
			return nil, newError(KindAbbreviatedFormatAndSpiffHeaderMismatch, "SPIFF header on a table-only stream")
		}
		// No SOF55 was ever seen: an "abbreviated table specification"
		// stream carrying only mapping tables (C.4).
		return &DecodedImage{MappingTables: st.tables}, nil
	}
	if st.frame == nil {
		return nil, newError(KindUnexpectedStartOfScanMarker, "encountered SOS before SOF55")
	}

	fi := FrameInfo{
		BitsPerSample:  st.frame.BitsPerSample,
		Height:         st.frame.Height,
		Width:          st.frame.Width,
		ComponentCount: st.frame.ComponentCount,
	}
	if st.oversize != nil {
		if err := applyOversize(&fi, st.oversize); err != nil {
			return nil, err
		}
	}
	if fi.Height == 0 {
		// SOF55 deferred the line count to a DNL segment after the first
		// scan; locate it by look-ahead before allocating planes.
		h, err := findDNLHeight(src[st.sr.Position():])
		if err != nil {
			return nil, err
		}
		fi.Height = h
	}
	if err := fi.validate(); err != nil {
		return nil, err
	}

	result := &DecodedImage{
		Frame:             fi,
		Spiff:             st.spiff,
		ComponentTableIDs: make([]byte, fi.ComponentCount),
	}
	if result.Spiff != nil {
		if err := result.Spiff.validate(fi); err != nil {
			return nil, err
		}
	}

	width := int(fi.Width)
	height := int(fi.Height)
	planes := make([][]uint16, fi.ComponentCount)
	for c := range planes {
		planes[c] = make([]uint16, width*height)
	}

	var coding CodingParameters
	componentsDecoded := 0
	seg := *pending
	for {
		switch seg.code {
		case markerEOI:
			if componentsDecoded < fi.ComponentCount {
				return nil, newError(KindUnexpectedEndOfImageMarker, "EOI before all components were decoded")
			}
			coding.ColorTransformation = st.colorTransform
			coding.RestartInterval = st.restartInterval
			result.Coding = coding
			result.Samples = interleaveFromPlanes(planes, width, height, fi.ComponentCount, st.colorTransform, fi.BitsPerSample)
			result.MappingTables = st.tables
			return result, nil
		case markerSOS:
			ss, err := readScanSegment(seg.payload, fi.ComponentCount-componentsDecoded)
			if err != nil {
				return nil, err
			}
			coding.NearLossless = ss.NearLossless
			coding.InterleaveMode = ss.InterleaveMode
			for i, idx := range ss.ComponentIndices {
				if idx < 0 || idx >= fi.ComponentCount {
					return nil, newError(KindInvalidParameterComponentCount, "SOS references component not declared in SOF55")
				}
				result.ComponentTableIDs[idx] = ss.TableIDs[i]
			}
			localPreset, err := resolvePresetCodingParameters(fi.BitsPerSample, ss.NearLossless, st.preset)
			if err != nil {
				return nil, err
			}
			scanPlanes := make([][]uint16, len(ss.ComponentIndices))
			for i, idx := range ss.ComponentIndices {
				scanPlanes[i] = planes[idx]
			}
			cp := CodingParameters{
				NearLossless:    ss.NearLossless,
				InterleaveMode:  ss.InterleaveMode,
				RestartInterval: st.restartInterval,
			}
			if err := decodeScan(st.sr, localPreset, cp, scanPlanes, width, height, fi.BitsPerSample); err != nil {
				return nil, err
			}
			componentsDecoded += len(ss.ComponentIndices)
		case markerDNL:
			dnl, err := readDNLSegment(seg.payload)
			if err != nil {
				return nil, err
			}
			if st.frame.Height != 0 && dnl.Height != st.frame.Height {
				return nil, newError(KindInvalidParameterHeight, "DNL height contradicts SOF55")
			}
		case markerDRI:
			ri, err := readRestartIntervalSegment(seg.payload)
			if err != nil {
				return nil, err
			}
			st.restartInterval = ri.Interval
		case markerCOM:
			if err := d.fireComment(seg.payload); err != nil {
				return nil, err
			}
		case markerSOF55:
			return nil, newError(KindDuplicateStartOfFrameMarker, "second SOF55 in stream")
		case markerSOI:
			return nil, newError(KindDuplicateStartOfImageMarker, "second SOI in stream")
		default:
			if err := d.handleMiscSegment(st, seg); err != nil {
				return nil, err
			}
		}
		s, err := st.sr.NextMarker()
		if err != nil {
			return nil, err
		}
		seg = s
	}
}

// handleHeaderSegment processes one pre-scan segment; done reports that seg
// (a SOS or EOI) ends the header section and must be handled by the caller.
func (d *Decoder) handleHeaderSegment(st *decodeState, seg markerSegment) (done bool, err error) {
	switch seg.code {
	case markerSOS, markerEOI:
		return true, nil
	case markerSOI:
		return false, newError(KindDuplicateStartOfImageMarker, "second SOI in stream")
	case markerSOF55:
		if st.frame != nil {
			return false, newError(KindDuplicateStartOfFrameMarker, "second SOF55 in stream")
		}
		fs, err := readFrameSegment(seg.payload)
		if err != nil {
			return false, err
		}
		if st.oversize != nil {
			if err := checkOversizeAgainstFrame(FrameInfo{Height: fs.Height, Width: fs.Width}, st.oversize); err != nil {
				return false, err
			}
		}
		st.frame = &fs
		return false, nil
	case markerLSE:
		return false, d.handleLSE(st, seg.payload)
	case markerDRI:
		ri, err := readRestartIntervalSegment(seg.payload)
		if err != nil {
			return false, err
		}
		st.restartInterval = ri.Interval
		return false, nil
	case markerCOM:
		return false, d.fireComment(seg.payload)
	default:
		return false, d.handleMiscSegment(st, seg)
	}
}

// handleMiscSegment covers the markers legal anywhere in the header or
// between scans: application data (including SPIFF and the mrfx transform
// record) and the classification of everything this codec cannot decode.
func (d *Decoder) handleMiscSegment(st *decodeState, seg markerSegment) error {
	switch {
	case seg.code == markerAPP8:
		if ct, ok, err := readColorTransformSegment(seg.payload); ok {
			if err != nil {
				return err
			}
			st.colorTransform = ct
		} else if h, err := parseSpiffHeader(seg.payload); err == nil {
			if st.frame == nil && st.spiff == nil {
				st.spiff = &h
			}
		}
		return d.fireApplicationData(8, seg.payload)
	case isApplicationDataMarker(seg.code):
		return d.fireApplicationData(int(seg.code-markerAPP0), seg.payload)
	case isUnsupportedFrameMarker(seg.code):
		return newError(KindEncodingNotSupported, "frame uses a JPEG coding process other than JPEG-LS")
	case isRestartMarker(seg.code):
		return newError(KindUnexpectedRestartMarker, "restart marker outside entropy-coded data")
	default:
		return newError(KindUnknownJpegMarkerFound, "marker not defined for JPEG-LS streams")
	}
}

func (d *Decoder) fireComment(data []byte) error {
	if d.OnComment == nil {
		return nil
	}
	if err := d.OnComment(data); err != nil {
		return wrapError(KindCallbackFailed, "comment callback", err)
	}
	return nil
}

func (d *Decoder) fireApplicationData(id int, data []byte) error {
	if d.OnApplicationData == nil {
		return nil
	}
	if err := d.OnApplicationData(id, data); err != nil {
		return wrapError(KindCallbackFailed, "application data callback", err)
	}
	return nil
}

// handleLSE dispatches the four LSE sub-types of C.2.4.1. Types 0x5..0xD
// are defined by JPEG-LS extensions this codec doesn't implement; anything
// else is not a defined preset parameter type at all.
func (d *Decoder) handleLSE(st *decodeState, payload []byte) error {
	if len(payload) < 1 {
		return newError(KindInvalidMarkerSegmentSize, "LSE segment missing type byte")
	}
	switch payload[0] {
	case lsePresetCodingParameters:
		pc, err := readPresetCodingParameters(payload[1:])
		if err != nil {
			return err
		}
		st.preset = pc
	case lseMappingTableSpecification:
		if len(payload) < 3 {
			return newError(KindInvalidMarkerSegmentSize, "LSE mapping table specification too short")
		}
		return st.tables.Specification(payload[1], int(payload[2]), payload[3:])
	case lseMappingTableContinuation:
		if len(payload) < 2 {
			return newError(KindInvalidMarkerSegmentSize, "LSE mapping table continuation too short")
		}
		return st.tables.Continuation(payload[1], payload[2:])
	case lseXDimension:
		os, err := readOversizeImageSegment(payload[1:])
		if err != nil {
			return err
		}
		if st.frame != nil {
			fi := FrameInfo{Height: st.frame.Height, Width: st.frame.Width}
			if err := checkOversizeAgainstFrame(fi, &os); err != nil {
				return err
			}
		}
		st.oversize = &os
	default:
		if payload[0] >= 0x5 && payload[0] <= 0xD {
			return newError(KindJpegLSPresetExtendedParameterTypeNotSupported, "extension LSE preset parameter type")
		}
		return newError(KindInvalidJpegLSPresetParameterType, "undefined LSE preset parameter type")
	}
	return nil
}

// applyOversize substitutes the LSE(4) dimensions for SOF55's, after
// verifying any non-zero SOF dimensions agree.
func applyOversize(fi *FrameInfo, os *OversizeImageSegment) error {
	if err := checkOversizeAgainstFrame(*fi, os); err != nil {
		return err
	}
	fi.Height = os.Height
	fi.Width = os.Width
	return nil
}

func checkOversizeAgainstFrame(fi FrameInfo, os *OversizeImageSegment) error {
	if fi.Height != 0 && fi.Height != os.Height {
		return newError(KindInvalidParameterHeight, "oversize LSE height contradicts SOF55")
	}
	if fi.Width != 0 && fi.Width != os.Width {
		return newError(KindInvalidParameterWidth, "oversize LSE width contradicts SOF55")
	}
	return nil
}

// findDNLHeight scans forward through entropy data for the DNL segment
// that carries the deferred line count (SOF55 height 0). Entropy data
// never contains 0xFF followed by a byte >= 0x80, so a linear marker scan
// cannot misfire inside a scan's bit stream.
func findDNLHeight(rest []byte) (uint32, error) {
	for i := 0; i+1 < len(rest); i++ {
		if rest[i] != 0xFF || rest[i+1] != markerDNL {
			continue
		}
		if i+4 > len(rest) {
			break
		}
		length := int(rest[i+2])<<8 | int(rest[i+3])
		if length < 4 || i+2+length > len(rest) {
			return 0, newError(KindInvalidMarkerSegmentSize, "DNL segment length out of range")
		}
		dnl, err := readDNLSegment(rest[i+4 : i+2+length])
		if err != nil {
			return 0, err
		}
		return dnl.Height, nil
	}
	return 0, newError(KindInvalidParameterHeight, "SOF55 height 0 but no DNL segment found")
}

func decodeScan(sr *streamReader, preset PresetCodingParameters, cp CodingParameters, planes [][]uint16, width, height, bitsPerSample int) error {
	sc := newScanConstants(bitsPerSample, cp.NearLossless, preset)
	codec := NewScanCodec(sc, width, len(planes), cp.InterleaveMode)

	br := NewBitReader(sr.src[sr.Position():])
	rows := make([][]int, len(planes))
	for i := range rows {
		rows[i] = make([]int, width)
	}
	lineCount := 0
	for y := 0; y < height; y++ {
		if err := codec.DecodeLine(br, rows); err != nil {
			return err
		}
		for ci := range planes {
			for x := 0; x < width; x++ {
				planes[ci][y*width+x] = uint16(rows[ci][x])
			}
		}
		lineCount++
		if cp.RestartInterval != 0 && uint32(lineCount)%cp.RestartInterval == 0 && y != height-1 {
			if err := br.AlignToMarker(); err != nil {
				return err
			}
			code, err := br.ConsumeMarker()
			if err != nil {
				return err
			}
			if !isRestartMarker(code) {
				return newError(KindRestartMarkerNotFound, "expected RSTm marker not found")
			}
			expected := markerRST0 + byte((lineCount/int(cp.RestartInterval)-1)%8)
			if code != expected {
				return newError(KindRestartMarkerNotFound, "restart marker out of sequence")
			}
			br.SkipFillBytes()
			codec.ResetForRestart()
		}
	}
	if err := br.AlignToMarker(); err != nil {
		return err
	}
	sr.pos += br.Position()
	return nil
}

// interleaveFromPlanes is the inverse of deinterleaveToPlanes.
func interleaveFromPlanes(planes [][]uint16, width, height, componentCount int, ct ColorTransformation, bitsPerSample int) []uint16 {
	samples := make([]uint16, width*height*componentCount)
	for i := 0; i < width*height; i++ {
		base := i * componentCount
		if componentCount == 3 && ct != ColorTransformNone {
			r, g, b := InvertColorTransform(ct, bitsPerSample, int(planes[0][i]), int(planes[1][i]), int(planes[2][i]))
			samples[base] = uint16(r)
			samples[base+1] = uint16(g)
			samples[base+2] = uint16(b)
			continue
		}
		for c := 0; c < componentCount; c++ {
			samples[base+c] = planes[c][i]
		}
	}
	return samples
}
