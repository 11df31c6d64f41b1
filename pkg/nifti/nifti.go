// Package nifti loads NIfTI-1 volumetric scan files (.nii and .nii.gz).
// It decodes the fixed 348-byte header, validates dimensionality, applies
// the header's intensity scaling, and produces a dense float64 volume with
// per-axis voxel spacing.
package nifti

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"

	"cardioscan/internal/models"
)

// headerSize is the fixed size of a NIfTI-1 header in bytes.
const headerSize = 348

// NIfTI-1 datatype codes for the voxel encodings this loader accepts.
const (
	dtUint8   = 2
	dtInt16   = 4
	dtInt32   = 8
	dtFloat32 = 16
	dtFloat64 = 64
	dtInt8    = 256
	dtUint16  = 512
	dtUint32  = 768
)

// header mirrors the NIfTI-1 on-disk header layout field for field, so the
// whole record can be decoded with a single binary.Read.
type header struct {
	SizeofHdr     int32
	DataTypeName  [10]byte
	DBName        [18]byte
	Extents       int32
	SessionError  int16
	Regular       byte
	DimInfo       byte
	Dim           [8]int16
	IntentP1      float32
	IntentP2      float32
	IntentP3      float32
	IntentCode    int16
	Datatype      int16
	Bitpix        int16
	SliceStart    int16
	Pixdim        [8]float32
	VoxOffset     float32
	SclSlope      float32
	SclInter      float32
	SliceEnd      int16
	SliceCode     byte
	XyztUnits     byte
	CalMax        float32
	CalMin        float32
	SliceDuration float32
	Toffset       float32
	Glmax         int32
	Glmin         int32
	Descrip       [80]byte
	AuxFile       [24]byte
	QformCode     int16
	SformCode     int16
	QuaternB      float32
	QuaternC      float32
	QuaternD      float32
	QoffsetX      float32
	QoffsetY      float32
	QoffsetZ      float32
	SrowX         [4]float32
	SrowY         [4]float32
	SrowZ         [4]float32
	IntentName    [16]byte
	Magic         [4]byte
}

// Load reads a NIfTI-1 file from disk and returns the contained volume.
//
// Any parse failure (unreadable file, bad magic, unknown voxel encoding,
// truncated data) is reported as a models.InvalidInputError, as is a volume
// with fewer than three spatial dimensions. Volumes with more than three
// dimensions are truncated to the first three axes.
func Load(path string) (*models.Volume, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &models.InvalidInputError{Reason: "cannot open scan file", Err: err}
	}
	defer f.Close()

	raw, err := readMaybeGzip(f)
	if err != nil {
		return nil, &models.InvalidInputError{Reason: "cannot read scan file", Err: err}
	}

	return Decode(raw)
}

// Decode parses an in-memory, already-decompressed NIfTI-1 byte stream.
func Decode(raw []byte) (*models.Volume, error) {
	if len(raw) < headerSize {
		return nil, &models.InvalidInputError{
			Reason: fmt.Sprintf("file too small for a NIfTI-1 header (%d bytes)", len(raw)),
		}
	}

	order, err := detectByteOrder(raw)
	if err != nil {
		return nil, &models.InvalidInputError{Reason: "unrecognized header", Err: err}
	}

	var hdr header
	if err := binary.Read(bytes.NewReader(raw[:headerSize]), order, &hdr); err != nil {
		return nil, &models.InvalidInputError{Reason: "cannot decode header", Err: err}
	}

	// "n+1" marks a single-file NIfTI; "ni1" pairs keep voxels in a
	// separate .img file, which this loader does not accept.
	if !(hdr.Magic[0] == 'n' && hdr.Magic[1] == '+' && hdr.Magic[2] == '1' && hdr.Magic[3] == 0) {
		return nil, &models.InvalidInputError{
			Reason: fmt.Sprintf("unsupported NIfTI magic %q", trimMagic(hdr.Magic)),
		}
	}

	ndim := int(hdr.Dim[0])
	if ndim < 3 {
		return nil, &models.InvalidInputError{Reason: "uploaded scan is not a 3D volume"}
	}
	if ndim > 7 {
		return nil, &models.InvalidInputError{
			Reason: fmt.Sprintf("header declares %d dimensions", ndim),
		}
	}

	nx, ny, nz := int(hdr.Dim[1]), int(hdr.Dim[2]), int(hdr.Dim[3])
	if nx <= 0 || ny <= 0 || nz <= 0 {
		return nil, &models.InvalidInputError{
			Reason: fmt.Sprintf("non-positive volume extents %d×%d×%d", nx, ny, nz),
		}
	}

	data, err := decodeVoxels(raw, &hdr, nx*ny*nz)
	if err != nil {
		return nil, err
	}

	return &models.Volume{
		Data:    data,
		Nx:      nx,
		Ny:      ny,
		Nz:      nz,
		Spacing: spacingFromHeader(&hdr),
	}, nil
}

// readMaybeGzip reads the whole stream, transparently decompressing when the
// gzip magic bytes are present. Compression is sniffed, not inferred from
// the filename.
func readMaybeGzip(r io.Reader) ([]byte, error) {
	br := newPeekReader(r)
	head, err := br.peek(2)
	if err != nil {
		return nil, err
	}

	if len(head) == 2 && head[0] == 0x1f && head[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, err
		}
		defer gz.Close()
		return io.ReadAll(gz)
	}

	return io.ReadAll(br)
}

// detectByteOrder decides endianness from sizeof_hdr, which must decode to
// 348 in exactly one byte order.
func detectByteOrder(raw []byte) (binary.ByteOrder, error) {
	if binary.LittleEndian.Uint32(raw[:4]) == headerSize {
		return binary.LittleEndian, nil
	}
	if binary.BigEndian.Uint32(raw[:4]) == headerSize {
		return binary.BigEndian, nil
	}
	return nil, fmt.Errorf("sizeof_hdr is not %d in either byte order", headerSize)
}

// spacingFromHeader extracts per-axis voxel spacing in mm. NIfTI headers
// sometimes carry zeroed or garbage pixdim entries; any unusable value
// falls back to the documented (1.0, 1.0, 1.0) default.
func spacingFromHeader(hdr *header) [3]float64 {
	spacing := [3]float64{
		float64(hdr.Pixdim[1]),
		float64(hdr.Pixdim[2]),
		float64(hdr.Pixdim[3]),
	}
	for _, s := range spacing {
		if s <= 0 || math.IsNaN(s) || math.IsInf(s, 0) {
			return [3]float64{1.0, 1.0, 1.0}
		}
	}
	return spacing
}

// decodeVoxels converts the raw voxel bytes into float64 intensities,
// applying the header's scl_slope/scl_inter affine when the slope is set.
// Only the first n voxels are read, which truncates >3D volumes to their
// first frame.
func decodeVoxels(raw []byte, hdr *header, n int) ([]float64, error) {
	width, err := voxelWidth(hdr.Datatype)
	if err != nil {
		return nil, &models.InvalidInputError{Reason: "unsupported voxel encoding", Err: err}
	}

	offset := int(hdr.VoxOffset)
	if offset < headerSize {
		offset = headerSize + 4 // minimum single-file data offset
	}
	if len(raw) < offset+n*width {
		return nil, &models.InvalidInputError{
			Reason: fmt.Sprintf("voxel data truncated: need %d bytes, have %d",
				offset+n*width, len(raw)),
		}
	}

	order, _ := detectByteOrder(raw)
	vox := raw[offset:]
	data := make([]float64, n)

	for i := 0; i < n; i++ {
		b := vox[i*width : (i+1)*width]
		var v float64
		switch hdr.Datatype {
		case dtUint8:
			v = float64(b[0])
		case dtInt8:
			v = float64(int8(b[0]))
		case dtInt16:
			v = float64(int16(order.Uint16(b)))
		case dtUint16:
			v = float64(order.Uint16(b))
		case dtInt32:
			v = float64(int32(order.Uint32(b)))
		case dtUint32:
			v = float64(order.Uint32(b))
		case dtFloat32:
			v = float64(math.Float32frombits(order.Uint32(b)))
		case dtFloat64:
			v = math.Float64frombits(order.Uint64(b))
		}
		data[i] = v
	}

	// nibabel get_fdata semantics: a zero slope means "unscaled".
	slope := float64(hdr.SclSlope)
	inter := float64(hdr.SclInter)
	if slope != 0 && (slope != 1 || inter != 0) {
		for i := range data {
			data[i] = data[i]*slope + inter
		}
	}

	return data, nil
}

// voxelWidth maps a NIfTI datatype code to its per-voxel byte width.
func voxelWidth(datatype int16) (int, error) {
	switch datatype {
	case dtUint8, dtInt8:
		return 1, nil
	case dtInt16, dtUint16:
		return 2, nil
	case dtInt32, dtUint32, dtFloat32:
		return 4, nil
	case dtFloat64:
		return 8, nil
	default:
		return 0, fmt.Errorf("datatype code %d", datatype)
	}
}

func trimMagic(magic [4]byte) string {
	return string(bytes.TrimRight(magic[:], "\x00"))
}

// peekReader lets readMaybeGzip look at the first bytes of a stream without
// consuming them, since gzip sniffing needs the magic back in the stream.
type peekReader struct {
	r      io.Reader
	buf    []byte
	offset int
}

func newPeekReader(r io.Reader) *peekReader {
	return &peekReader{r: r}
}

func (p *peekReader) peek(n int) ([]byte, error) {
	for len(p.buf) < n {
		chunk := make([]byte, n-len(p.buf))
		m, err := p.r.Read(chunk)
		p.buf = append(p.buf, chunk[:m]...)
		if err != nil {
			if err == io.EOF {
				return p.buf, nil
			}
			return nil, err
		}
	}
	return p.buf[:n], nil
}

func (p *peekReader) Read(b []byte) (int, error) {
	if p.offset < len(p.buf) {
		n := copy(b, p.buf[p.offset:])
		p.offset += n
		return n, nil
	}
	return p.r.Read(b)
}
