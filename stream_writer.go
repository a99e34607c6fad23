package jpegls

// Marker segment emission for SOF55, LSE, DRI, SOS, COM and APPn,
// following the segment layouts of ITU-T T.87 Annex C (the same split
// charls keeps in its jpeg_stream_writer).

func writeFrameSegment(bw *BitWriter, fi FrameInfo) error {
	if err := bw.WriteMarker(markerSOF55); err != nil {
		return err
	}
	length := 8 + 3*fi.ComponentCount
	if err := bw.WriteUint16(uint16(length)); err != nil {
		return err
	}
	if err := bw.WriteByte(byte(fi.BitsPerSample)); err != nil {
		return err
	}
	if err := bw.WriteUint16(clampUint16(fi.Height)); err != nil {
		return err
	}
	if err := bw.WriteUint16(clampUint16(fi.Width)); err != nil {
		return err
	}
	if err := bw.WriteByte(byte(fi.ComponentCount)); err != nil {
		return err
	}
	for i := 0; i < fi.ComponentCount; i++ {
		if err := bw.WriteByte(byte(i + 1)); err != nil { // component ID
			return err
		}
		if err := bw.WriteByte(0x11); err != nil { // sampling factors, fixed 1x1
			return err
		}
		if err := bw.WriteByte(0); err != nil { // mapping table selector, none
			return err
		}
	}
	if fi.Height > 0xFFFF || fi.Width > 0xFFFF {
		return writeOversizeImageSegment(bw, fi)
	}
	return nil
}

func clampUint16(v uint32) uint16 {
	if v > 0xFFFF {
		return 0
	}
	return uint16(v)
}

func writeOversizeImageSegment(bw *BitWriter, fi FrameInfo) error {
	if err := bw.WriteMarker(markerLSE); err != nil {
		return err
	}
	if err := bw.WriteUint16(12); err != nil {
		return err
	}
	if err := bw.WriteByte(lseXDimension); err != nil {
		return err
	}
	if err := bw.WriteByte(4); err != nil {
		return err
	}
	if err := writeUint32(bw, fi.Height); err != nil {
		return err
	}
	return writeUint32(bw, fi.Width)
}

func writePresetCodingParameters(bw *BitWriter, pc PresetCodingParameters) error {
	if err := bw.WriteMarker(markerLSE); err != nil {
		return err
	}
	if err := bw.WriteUint16(13); err != nil {
		return err
	}
	if err := bw.WriteByte(lsePresetCodingParameters); err != nil {
		return err
	}
	if err := bw.WriteUint16(uint16(pc.MaximumSampleValue)); err != nil {
		return err
	}
	if err := bw.WriteUint16(uint16(pc.Threshold1)); err != nil {
		return err
	}
	if err := bw.WriteUint16(uint16(pc.Threshold2)); err != nil {
		return err
	}
	if err := bw.WriteUint16(uint16(pc.Threshold3)); err != nil {
		return err
	}
	return bw.WriteUint16(uint16(pc.ResetValue))
}

// maxMappingTableSegmentData bounds how many entry bytes fit in a single
// LSE mapping-table-specification or continuation segment: the 16-bit
// segment length field caps total segment size at 0xFFFF, minus the
// length field itself and, for the specification segment, the type/id/
// entry-size header bytes.
const maxMappingTableSegmentData = 65530

// writeMappingTable emits one LSE mapping-table-specification segment
// followed by as many LSE continuation segments as needed to carry all of
// data, splitting at maxMappingTableSegmentData-byte boundaries.
func writeMappingTable(bw *BitWriter, tableID byte, entrySize int, data []byte) error {
	first := data
	rest := []byte(nil)
	if len(first) > maxMappingTableSegmentData {
		first, rest = data[:maxMappingTableSegmentData], data[maxMappingTableSegmentData:]
	}
	if err := bw.WriteMarker(markerLSE); err != nil {
		return err
	}
	length := 2 + 1 + 1 + 1 + len(first)
	if err := bw.WriteUint16(uint16(length)); err != nil {
		return err
	}
	if err := bw.WriteByte(lseMappingTableSpecification); err != nil {
		return err
	}
	if err := bw.WriteByte(tableID); err != nil {
		return err
	}
	if err := bw.WriteByte(byte(entrySize)); err != nil {
		return err
	}
	if _, err := bw.dst.Write(first); err != nil {
		return err
	}
	for len(rest) > 0 {
		chunk := rest
		if len(chunk) > maxMappingTableSegmentData {
			chunk, rest = rest[:maxMappingTableSegmentData], rest[maxMappingTableSegmentData:]
		} else {
			rest = nil
		}
		if err := bw.WriteMarker(markerLSE); err != nil {
			return err
		}
		clength := 2 + 1 + 1 + len(chunk)
		if err := bw.WriteUint16(uint16(clength)); err != nil {
			return err
		}
		if err := bw.WriteByte(lseMappingTableContinuation); err != nil {
			return err
		}
		if err := bw.WriteByte(tableID); err != nil {
			return err
		}
		if _, err := bw.dst.Write(chunk); err != nil {
			return err
		}
	}
	return nil
}

func writeRestartIntervalSegment(bw *BitWriter, interval uint32) error {
	if err := bw.WriteMarker(markerDRI); err != nil {
		return err
	}
	if err := bw.WriteUint16(4); err != nil {
		return err
	}
	return bw.WriteUint16(uint16(interval))
}

// writeScanSegment emits a SOS segment: Ns, then (Ci, Tm) pairs where Tm
// selects the component's mapping table (0 when none), then NEAR, ILV and
// the reserved Ah/Al byte, which a JPEG-LS scan always transmits as 0.
func writeScanSegment(bw *BitWriter, componentIndices []int, tableIDs []byte, cp CodingParameters) error {
	if err := bw.WriteMarker(markerSOS); err != nil {
		return err
	}
	length := 6 + 2*len(componentIndices)
	if err := bw.WriteUint16(uint16(length)); err != nil {
		return err
	}
	if err := bw.WriteByte(byte(len(componentIndices))); err != nil {
		return err
	}
	for _, idx := range componentIndices {
		if err := bw.WriteByte(byte(idx + 1)); err != nil {
			return err
		}
		var tableID byte
		if idx < len(tableIDs) {
			tableID = tableIDs[idx]
		}
		if err := bw.WriteByte(tableID); err != nil {
			return err
		}
	}
	if err := bw.WriteByte(byte(cp.NearLossless)); err != nil {
		return err
	}
	if err := bw.WriteByte(byte(cp.InterleaveMode)); err != nil {
		return err
	}
	return bw.WriteByte(0)
}

// writeColorTransformSegment emits the 5-byte APP8 "mrfx" segment that
// records an HP color transform; conformant decoders that don't know the
// convention skip it as ordinary application data.
func writeColorTransformSegment(bw *BitWriter, ct ColorTransformation) error {
	if err := bw.WriteMarker(markerAPP8); err != nil {
		return err
	}
	if err := bw.WriteUint16(7); err != nil {
		return err
	}
	for _, b := range []byte(colorTransformMagic) {
		if err := bw.WriteByte(b); err != nil {
			return err
		}
	}
	return bw.WriteByte(byte(ct))
}

// writeCommentSegment emits a COM segment with the given payload.
func writeCommentSegment(bw *BitWriter, data []byte) error {
	if len(data) > maxMarkerSegmentLength-2 {
		return newError(KindInvalidArgument, "comment exceeds marker segment capacity")
	}
	if err := bw.WriteMarker(markerCOM); err != nil {
		return err
	}
	if err := bw.WriteUint16(uint16(2 + len(data))); err != nil {
		return err
	}
	_, err := bw.dst.Write(data)
	return err
}

// writeApplicationDataSegment emits an APPn segment (id in [0,15]).
func writeApplicationDataSegment(bw *BitWriter, id int, data []byte) error {
	if id < 0 || id > 15 {
		return newError(KindInvalidArgument, "application data id out of range")
	}
	if len(data) > maxMarkerSegmentLength-2 {
		return newError(KindInvalidArgument, "application data exceeds marker segment capacity")
	}
	if err := bw.WriteMarker(markerAPP0 + byte(id)); err != nil {
		return err
	}
	if err := bw.WriteUint16(uint16(2 + len(data))); err != nil {
		return err
	}
	_, err := bw.dst.Write(data)
	return err
}
