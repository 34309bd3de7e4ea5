package index

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"

	cmerrors "github.com/codemap-dev/codemap/internal/errors"
)

// binWriter serializes primitives into a buffer. Integers are uvarint,
// strings and byte slices are length-prefixed.
type binWriter struct {
	buf bytes.Buffer
}

func (w *binWriter) uint(v uint64) {
	var tmp [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(tmp[:], v)
	w.buf.Write(tmp[:n])
}

func (w *binWriter) int(v int) {
	w.uint(uint64(v))
}

func (w *binWriter) float(v float64) {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], math.Float64bits(v))
	w.buf.Write(tmp[:])
}

func (w *binWriter) str(s string) {
	w.uint(uint64(len(s)))
	w.buf.WriteString(s)
}

func (w *binWriter) bytes(b []byte) {
	w.uint(uint64(len(b)))
	w.buf.Write(b)
}

func (w *binWriter) data() []byte {
	return w.buf.Bytes()
}

// binReader mirrors binWriter. Every decode error surfaces as an index
// corruption error.
type binReader struct {
	r *bytes.Reader
}

func newBinReader(data []byte) *binReader {
	return &binReader{r: bytes.NewReader(data)}
}

func (r *binReader) uint() (uint64, error) {
	v, err := binary.ReadUvarint(r.r)
	if err != nil {
		return 0, cmerrors.IndexCorruptError("truncated varint", err)
	}
	return v, nil
}

func (r *binReader) int() (int, error) {
	v, err := r.uint()
	if err != nil {
		return 0, err
	}
	if v > math.MaxInt32 {
		return 0, cmerrors.IndexCorruptError("varint out of range", nil)
	}
	return int(v), nil
}

func (r *binReader) float() (float64, error) {
	var tmp [8]byte
	if _, err := io.ReadFull(r.r, tmp[:]); err != nil {
		return 0, cmerrors.IndexCorruptError("truncated float", err)
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(tmp[:])), nil
}

func (r *binReader) str() (string, error) {
	b, err := r.bytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *binReader) bytes() ([]byte, error) {
	n, err := r.uint()
	if err != nil {
		return nil, err
	}
	if n > uint64(r.r.Len()) {
		return nil, cmerrors.IndexCorruptError("length prefix exceeds data", nil)
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r.r, b); err != nil {
		return nil, cmerrors.IndexCorruptError("truncated bytes", err)
	}
	return b, nil
}
