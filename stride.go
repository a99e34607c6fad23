package jpegls

// Byte-buffer views of the raster, grounded on charls'
// copy_from_line_buffer.hpp/copy_to_line_buffer.hpp and its
// charls_jpegls_decoder::get_destination_size contract: callers hand the
// codec a flat byte range plus a row stride, and rows are laid out planar
// for interleave none or pixel-interleaved otherwise. Samples wider than
// 8 bits occupy two little-endian bytes.

// bytesPerSample returns the destination width of one sample.
func bytesPerSample(bitsPerSample int) int {
	if bitsPerSample <= 8 {
		return 1
	}
	return 2
}

// MinimumStride returns the smallest legal row stride in bytes for the
// given frame and interleave mode: one component's row for planar
// (interleave none) output, a whole pixel row otherwise.
func MinimumStride(fi FrameInfo, interleave InterleaveMode) int {
	bps := bytesPerSample(fi.BitsPerSample)
	if interleave == InterleaveNone {
		return int(fi.Width) * bps
	}
	return int(fi.Width) * fi.ComponentCount * bps
}

// DestinationSize returns the byte count a decode with the given stride
// needs: stride times the row count, minus the unused tail of the final
// row. stride 0 selects the minimum stride.
func DestinationSize(fi FrameInfo, interleave InterleaveMode, stride int) (int, error) {
	minStride := MinimumStride(fi, interleave)
	if stride == 0 {
		stride = minStride
	}
	if stride < minStride {
		return 0, newError(KindInvalidArgument, "stride smaller than minimum for frame")
	}
	height := int(fi.Height)
	rows := height
	if interleave == InterleaveNone {
		rows = height * fi.ComponentCount
	}
	return stride*rows - (stride - minStride), nil
}

// CopyToBuffer writes the decoded samples into dst using the given row
// stride (0 = minimum). Rows are planar for interleave none, pixel-
// interleaved otherwise; bytes between each row's data and the stride
// boundary are left untouched.
func (d *DecodedImage) CopyToBuffer(dst []byte, stride int) (int, error) {
	fi := d.Frame
	minStride := MinimumStride(fi, d.Coding.InterleaveMode)
	if stride == 0 {
		stride = minStride
	}
	needed, err := DestinationSize(fi, d.Coding.InterleaveMode, stride)
	if err != nil {
		return 0, err
	}
	if len(dst) < needed {
		return 0, newError(KindDestinationTooSmall, "destination buffer smaller than required size")
	}

	width := int(fi.Width)
	height := int(fi.Height)
	nc := fi.ComponentCount
	bps := bytesPerSample(fi.BitsPerSample)

	putRow := func(rowStart int, samples []uint16) {
		off := rowStart
		for _, v := range samples {
			if bps == 1 {
				dst[off] = byte(v)
				off++
			} else {
				dst[off] = byte(v)
				dst[off+1] = byte(v >> 8)
				off += 2
			}
		}
	}

	if d.Coding.InterleaveMode == InterleaveNone && nc > 1 {
		row := make([]uint16, width)
		for c := 0; c < nc; c++ {
			for y := 0; y < height; y++ {
				for x := 0; x < width; x++ {
					row[x] = d.Samples[(y*width+x)*nc+c]
				}
				putRow((c*height+y)*stride, row)
			}
		}
		return needed, nil
	}

	for y := 0; y < height; y++ {
		putRow(y*stride, d.Samples[y*width*nc:(y+1)*width*nc])
	}
	return needed, nil
}

// EncodeBuffer compresses a byte-layout raster (same layout rules as
// CopyToBuffer, stride 0 = minimum) into dst. Unused high bits of each
// sample are masked off, so callers may pass buffers whose padding bits
// carry garbage.
func (e *Encoder) EncodeBuffer(dst []byte, src []byte, stride int) (int, error) {
	fi := e.frame
	minStride := MinimumStride(fi, e.coding.InterleaveMode)
	if stride == 0 {
		stride = minStride
	}
	needed, err := DestinationSize(fi, e.coding.InterleaveMode, stride)
	if err != nil {
		return 0, err
	}
	if len(src) < needed {
		return 0, newError(KindInvalidArgument, "source buffer smaller than frame requires")
	}

	width := int(fi.Width)
	height := int(fi.Height)
	nc := fi.ComponentCount
	bps := bytesPerSample(fi.BitsPerSample)
	mask := uint16((1 << uint(fi.BitsPerSample)) - 1)

	getSample := func(off int) uint16 {
		if bps == 1 {
			return uint16(src[off]) & mask
		}
		return (uint16(src[off]) | uint16(src[off+1])<<8) & mask
	}

	samples := make([]uint16, width*height*nc)
	if e.coding.InterleaveMode == InterleaveNone && nc > 1 {
		for c := 0; c < nc; c++ {
			for y := 0; y < height; y++ {
				rowStart := (c*height + y) * stride
				for x := 0; x < width; x++ {
					samples[(y*width+x)*nc+c] = getSample(rowStart + x*bps)
				}
			}
		}
	} else {
		for y := 0; y < height; y++ {
			rowStart := y * stride
			for i := 0; i < width*nc; i++ {
				samples[y*width*nc+i] = getSample(rowStart + i*bps)
			}
		}
	}
	return e.Encode(dst, samples)
}
