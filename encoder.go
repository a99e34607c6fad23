package jpegls

// Public encode API, shaped after charls' charls_jpegls_encoder:
// multi-component interleave modes, near-lossless coding, restart
// intervals, SPIFF headers, mapping tables, comments/application data and
// LSE preset-parameter emission.

// Encoder is the public entry point for compressing a frame of raster
// samples into a JPEG-LS bitstream: configure FrameInfo/CodingParameters/
// PresetCodingParameters, optionally a SpiffHeader, tables, comments and
// application data, then call Encode.
type Encoder struct {
	frame    FrameInfo
	coding   CodingParameters
	preset   PresetCodingParameters
	spiff    *SpiffHeader
	tables   []mappingTableToWrite
	tableIDs []byte // per-component SOS mapping table selector
	comments []segmentToWrite
	appData  []segmentToWrite

	// IncludePCParametersJAI forces emission of LSE preset coding
	// parameters whenever BitsPerSample>12, even if they match the
	// computed defaults exactly. This is an interop opt-in for decoders
	// (notably some JAI-derived ones) that assume a stream is malformed
	// if it omits PC parameters above 12 bits; it's off by default because
	// it produces a larger, non-minimal stream.
	IncludePCParametersJAI bool

	// EvenDestinationSize pads the stream with one 0xFF fill byte before
	// EOI when the encoded byte count would otherwise be odd. Some
	// containers (DICOM most prominently) require even-length fragments.
	EvenDestinationSize bool
}

type mappingTableToWrite struct {
	tableID   byte
	entrySize int
	data      []byte
}

type segmentToWrite struct {
	id   int // APPn id; unused for comments
	data []byte
}

// NewEncoder creates an encoder for the given frame shape. Coding
// parameters default to lossless, scalar/line interleave depending on
// component count, and default preset coding parameters.
func NewEncoder(frame FrameInfo) (*Encoder, error) {
	if err := frame.validate(); err != nil {
		return nil, err
	}
	interleave := InterleaveNone
	if frame.ComponentCount > 1 {
		interleave = InterleaveLine
	}
	return &Encoder{
		frame:    frame,
		coding:   CodingParameters{InterleaveMode: interleave},
		tableIDs: make([]byte, frame.ComponentCount),
	}, nil
}

// SetCodingParameters overrides the scan's NEAR/interleave/restart/color
// transform settings.
func (e *Encoder) SetCodingParameters(cp CodingParameters) error {
	if err := cp.validate(e.frame); err != nil {
		return err
	}
	e.coding = cp
	return nil
}

// SetPresetCodingParameters overrides MAXVAL/T1/T2/T3/RESET; zero fields
// keep their defaults.
func (e *Encoder) SetPresetCodingParameters(pc PresetCodingParameters) error {
	maxVal := maxValFor(e.frame.BitsPerSample)
	if err := pc.validate(maxVal); err != nil {
		return err
	}
	e.preset = pc
	return nil
}

// SetSpiffHeader attaches a SPIFF header to be emitted after SOI; pass nil
// to omit it.
func (e *Encoder) SetSpiffHeader(h *SpiffHeader) { e.spiff = h }

// SetMappingTableID selects the mapping table the given component's SOS
// entry references (0 clears the selection). The table itself must be
// registered with WriteMappingTable before Encode.
func (e *Encoder) SetMappingTableID(componentIndex int, tableID byte) error {
	if componentIndex < 0 || componentIndex >= e.frame.ComponentCount {
		return newError(KindInvalidArgument, "component index out of range")
	}
	e.tableIDs[componentIndex] = tableID
	return nil
}

// WriteMappingTable registers a palette/mapping table to be emitted as an
// LSE mapping-table-specification segment (split across continuation
// segments as needed), before the frame's scans. entrySize must be in
// [1,255].
func (e *Encoder) WriteMappingTable(tableID byte, entrySize int, data []byte) error {
	if entrySize < 1 || entrySize > 255 {
		return newError(KindInvalidArgument, "mapping table entry size out of range")
	}
	if tableID == 0 {
		return newError(KindInvalidArgument, "mapping table id must be non-zero")
	}
	e.tables = append(e.tables, mappingTableToWrite{tableID: tableID, entrySize: entrySize, data: append([]byte(nil), data...)})
	return nil
}

// WriteComment registers a COM segment to be emitted in the stream header.
func (e *Encoder) WriteComment(data []byte) error {
	if len(data) > maxMarkerSegmentLength-2 {
		return newError(KindInvalidArgument, "comment exceeds marker segment capacity")
	}
	e.comments = append(e.comments, segmentToWrite{data: append([]byte(nil), data...)})
	return nil
}

// WriteApplicationData registers an APPn segment (id in [0,15]) to be
// emitted in the stream header.
func (e *Encoder) WriteApplicationData(id int, data []byte) error {
	if id < 0 || id > 15 {
		return newError(KindInvalidArgument, "application data id out of range")
	}
	if len(data) > maxMarkerSegmentLength-2 {
		return newError(KindInvalidArgument, "application data exceeds marker segment capacity")
	}
	e.appData = append(e.appData, segmentToWrite{id: id, data: append([]byte(nil), data...)})
	return nil
}

// CreateAbbreviatedFormat emits an "abbreviated table specification"
// stream: SOI, every mapping table registered via WriteMappingTable, and
// EOI, with no SOF55/scan at all. Used to share palette tables between
// images without repeating them in every encoded file (C.4).
func (e *Encoder) CreateAbbreviatedFormat(dst []byte) (int, error) {
	bw := NewBitWriter(dst)
	if err := bw.WriteMarker(markerSOI); err != nil {
		return 0, err
	}
	for _, t := range e.tables {
		if err := writeMappingTable(bw, t.tableID, t.entrySize, t.data); err != nil {
			return 0, err
		}
	}
	if err := bw.WriteMarker(markerEOI); err != nil {
		return 0, err
	}
	return bw.Len(), nil
}

// EstimatedDestinationSize returns a safe upper bound for the encoded size
// of the configured frame: header overhead plus, for each component, the
// worst-case entropy-coded size including stuffing overhead.
func (e *Encoder) EstimatedDestinationSize() int {
	pixelCount := int(e.frame.Width) * int(e.frame.Height) * e.frame.ComponentCount
	bytesPerSample := (e.frame.BitsPerSample + 7) / 8
	if bytesPerSample < 1 {
		bytesPerSample = 1
	}
	overhead := 1024
	for _, t := range e.tables {
		overhead += len(t.data) + 64
	}
	for _, c := range e.comments {
		overhead += len(c.data) + 4
	}
	for _, a := range e.appData {
		overhead += len(a.data) + 4
	}
	// Worst case roughly doubles raw size to allow for stuffing and
	// marker overhead; comfortably safe without materially overallocating
	// for typical images.
	return overhead + pixelCount*bytesPerSample*2
}

// Encode compresses samples (one uint16 per sample, row-major, component-
// interleaved in natural pixel order regardless of the on-wire interleave
// mode selected) into dst, returning the number of bytes written.
func (e *Encoder) Encode(dst []byte, samples []uint16) (int, error) {
	width := int(e.frame.Width)
	height := int(e.frame.Height)
	componentCount := e.frame.ComponentCount
	if len(samples) != width*height*componentCount {
		return 0, newError(KindInvalidArgument, "sample buffer length does not match frame dimensions")
	}

	preset, err := resolvePresetCodingParameters(e.frame.BitsPerSample, e.coding.NearLossless, e.preset)
	if err != nil {
		return 0, err
	}

	bw := NewBitWriter(dst)
	if err := bw.WriteMarker(markerSOI); err != nil {
		return 0, err
	}
	if e.spiff != nil {
		if err := e.spiff.validate(e.frame); err != nil {
			return 0, err
		}
		if err := writeSpiffHeader(bw, *e.spiff); err != nil {
			return 0, err
		}
	}
	for _, c := range e.comments {
		if err := writeCommentSegment(bw, c.data); err != nil {
			return 0, err
		}
	}
	for _, a := range e.appData {
		if err := writeApplicationDataSegment(bw, a.id, a.data); err != nil {
			return 0, err
		}
	}
	if err := writeFrameSegment(bw, e.frame); err != nil {
		return 0, err
	}
	if e.coding.ColorTransformation != ColorTransformNone {
		if err := writeColorTransformSegment(bw, e.coding.ColorTransformation); err != nil {
			return 0, err
		}
	}
	defaults, err := resolvePresetCodingParameters(e.frame.BitsPerSample, e.coding.NearLossless, PresetCodingParameters{})
	if err != nil {
		return 0, err
	}
	if preset != defaults || (e.IncludePCParametersJAI && e.frame.BitsPerSample > 12) {
		if err := writePresetCodingParameters(bw, preset); err != nil {
			return 0, err
		}
	}
	for _, t := range e.tables {
		if err := writeMappingTable(bw, t.tableID, t.entrySize, t.data); err != nil {
			return 0, err
		}
	}
	if e.coding.RestartInterval != 0 {
		if err := writeRestartIntervalSegment(bw, e.coding.RestartInterval); err != nil {
			return 0, err
		}
	}

	planes := deinterleaveToPlanes(samples, width, height, componentCount, e.coding.ColorTransformation, e.frame.BitsPerSample)

	switch e.coding.InterleaveMode {
	case InterleaveNone:
		for c := 0; c < componentCount; c++ {
			if err := e.encodeScan(bw, preset, []int{c}, planes[c:c+1], width, height); err != nil {
				return 0, err
			}
		}
	default:
		indices := make([]int, componentCount)
		for c := range indices {
			indices[c] = c
		}
		if err := e.encodeScan(bw, preset, indices, planes, width, height); err != nil {
			return 0, err
		}
	}

	if e.EvenDestinationSize && bw.Len()%2 == 1 {
		// EOI adds two bytes, so an odd count here means an odd total;
		// one 0xFF fill byte before EOI restores parity.
		if err := bw.WriteByte(0xFF); err != nil {
			return 0, err
		}
	}
	if err := bw.WriteMarker(markerEOI); err != nil {
		return 0, err
	}
	return bw.Len(), nil
}

func (e *Encoder) encodeScan(bw *BitWriter, preset PresetCodingParameters, indices []int, planes [][]uint16, width, height int) error {
	if err := writeScanSegment(bw, indices, e.tableIDs, e.coding); err != nil {
		return err
	}

	sc := newScanConstants(e.frame.BitsPerSample, e.coding.NearLossless, preset)
	codec := NewScanCodec(sc, width, len(indices), e.coding.InterleaveMode)

	restart := e.coding.RestartInterval
	rows := make([][]int, len(indices))
	for i := range rows {
		rows[i] = make([]int, width)
	}
	lineCount := 0
	for y := 0; y < height; y++ {
		for ci, plane := range planes {
			for x := 0; x < width; x++ {
				rows[ci][x] = int(plane[y*width+x])
			}
		}
		if err := codec.EncodeLine(bw, rows); err != nil {
			return err
		}
		lineCount++
		if restart != 0 && uint32(lineCount)%restart == 0 && y != height-1 {
			if err := bw.Flush(); err != nil {
				return err
			}
			restartCode := markerRST0 + byte((lineCount/int(restart)-1)%8)
			if err := bw.WriteMarker(restartCode); err != nil {
				return err
			}
			codec.ResetForRestart()
		}
	}
	return bw.Flush()
}

// deinterleaveToPlanes splits a sample-interleaved buffer into one plane
// per component, applying the color transform first when requested.
func deinterleaveToPlanes(samples []uint16, width, height, componentCount int, ct ColorTransformation, bitsPerSample int) [][]uint16 {
	planes := make([][]uint16, componentCount)
	for c := range planes {
		planes[c] = make([]uint16, width*height)
	}
	for i := 0; i < width*height; i++ {
		base := i * componentCount
		if componentCount == 3 && ct != ColorTransformNone {
			p0, p1, p2 := ApplyColorTransform(ct, bitsPerSample, int(samples[base]), int(samples[base+1]), int(samples[base+2]))
			planes[0][i] = uint16(p0)
			planes[1][i] = uint16(p1)
			planes[2][i] = uint16(p2)
			continue
		}
		for c := 0; c < componentCount; c++ {
			planes[c][i] = samples[base+c]
		}
	}
	return planes
}
