// Package dicomls wires the jpegls codec into DICOM datasets, reading native
// PixelData and JPEG-LS encoding it (or decoding a JPEG-LS bitstream back
// to native bytes) for the lossless and near-lossless transfer syntaxes — a
// pure-Go alternative to shelling out to dcmtk's dcmcjpls/dcmdjpls tools.
// Splicing an encapsulated PixelData element back into the dataset is not
// done here.
package dicomls

import (
	"fmt"
	"os"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// Transfer Syntax UIDs for JPEG-LS, per DICOM PS3.5 Annex A.4.14/A.4.15.
const (
	TransferSyntaxJPEGLSLossless    = "1.2.840.10008.1.2.4.80"
	TransferSyntaxJPEGLSNearLossless = "1.2.840.10008.1.2.4.81"
	TransferSyntaxExplicitVRLittleEndian = "1.2.840.10008.1.2.1"
)

// Dataset wraps a parsed DICOM dataset for JPEG-LS-focused access.
type Dataset struct {
	Data     dicom.Dataset
	FilePath string
}

// ReadDataset reads a DICOM file in full, including pixel data.
func ReadDataset(path string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("could not stat file: %w", err)
	}

	ds, err := dicom.Parse(file, info.Size(), nil)
	if err != nil {
		return nil, fmt.Errorf("could not parse DICOM: %w", err)
	}
	return &Dataset{Data: ds, FilePath: path}, nil
}

// ReadMetadata reads only the metadata, skipping pixel data processing.
func ReadMetadata(path string) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("could not stat file: %w", err)
	}

	ds, err := dicom.Parse(file, info.Size(), nil, dicom.SkipPixelData())
	if err != nil {
		return nil, fmt.Errorf("could not parse DICOM: %w", err)
	}
	return &Dataset{Data: ds, FilePath: path}, nil
}

// TransferSyntax returns the dataset's transfer syntax UID.
func (d *Dataset) TransferSyntax() string {
	elem, err := d.Data.FindElementByTag(tag.TransferSyntaxUID)
	if err != nil || elem.Value == nil {
		return ""
	}
	if strs, ok := elem.Value.GetValue().([]string); ok && len(strs) > 0 {
		return strs[0]
	}
	return ""
}

// IsJPEGLS reports whether the dataset's transfer syntax is one of the
// JPEG-LS variants.
func (d *Dataset) IsJPEGLS() bool {
	ts := d.TransferSyntax()
	return ts == TransferSyntaxJPEGLSLossless || ts == TransferSyntaxJPEGLSNearLossless
}

// Rows, Columns, SamplesPerPixel and BitsAllocated read the standard image
// description tags, with the conventional defaults when a tag is absent.
func (d *Dataset) Rows() int            { return d.intTag(tag.Rows, 0) }
func (d *Dataset) Columns() int         { return d.intTag(tag.Columns, 0) }
func (d *Dataset) SamplesPerPixel() int { return d.intTag(tag.SamplesPerPixel, 1) }
func (d *Dataset) BitsAllocated() int   { return d.intTag(tag.BitsAllocated, 8) }

func (d *Dataset) intTag(t tag.Tag, fallback int) int {
	elem, err := d.Data.FindElementByTag(t)
	if err != nil {
		return fallback
	}
	v := intFromElementValue(elem)
	if v == 0 {
		return fallback
	}
	return v
}

func intFromElementValue(elem *dicom.Element) int {
	if elem == nil || elem.Value == nil {
		return 0
	}
	switch v := elem.Value.GetValue().(type) {
	case []int:
		if len(v) > 0 {
			return v[0]
		}
	case int:
		return v
	case []uint16:
		if len(v) > 0 {
			return int(v[0])
		}
	case uint16:
		return int(v)
	}
	return 0
}

// Save writes the dataset to outputPath with VR verification relaxed;
// real-world DICOM files frequently don't strictly follow VR
// specifications.
func (d *Dataset) Save(outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("could not create output file: %w", err)
	}
	defer file.Close()

	return dicom.Write(file, d.Data,
		dicom.SkipVRVerification(),
		dicom.SkipValueTypeVerification(),
		dicom.DefaultMissingTransferSyntax(),
	)
}
