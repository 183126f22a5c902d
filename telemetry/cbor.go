// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package telemetry

import (
	"errors"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeRFC3339Nano,
	}
	if encMode, err = encOpts.EncMode(); err != nil {
		panic(fmt.Sprintf("telemetry: cbor encoder mode: %v", err))
	}
	decOpts := cbor.DecOptions{
		DupMapKey:   cbor.DupMapKeyEnforcedAPF,
		IndefLength: cbor.IndefLengthForbidden,
	}
	if decMode, err = decOpts.DecMode(); err != nil {
		panic(fmt.Sprintf("telemetry: cbor decoder mode: %v", err))
	}
}

// Encode returns the CBOR encoding of s.
func Encode(s Sample) ([]byte, error) {
	b, err := encMode.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("telemetry: encode: %w", err)
	}
	return b, nil
}

// Decode parses one CBOR encoded Sample. Trailing bytes are an error.
func Decode(data []byte) (Sample, error) {
	var s Sample
	if err := decMode.Unmarshal(data, &s); err != nil {
		return Sample{}, fmt.Errorf("telemetry: decode: %w", err)
	}
	return s, nil
}

// Writer appends samples to a stream.
type Writer struct {
	enc *cbor.Encoder
	n   int
}

// NewWriter returns a Writer that writes to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{enc: encMode.NewEncoder(w)}
}

// Write appends s to the stream.
func (w *Writer) Write(s Sample) error {
	if err := w.enc.Encode(s); err != nil {
		return fmt.Errorf("telemetry: write sample %d: %w", w.n, err)
	}
	w.n++
	return nil
}

// Count returns the number of samples written.
func (w *Writer) Count() int {
	return w.n
}

// Reader reads samples back from a stream.
type Reader struct {
	dec *cbor.Decoder
}

// NewReader returns a Reader that reads from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{dec: decMode.NewDecoder(r)}
}

// Next returns the next sample, or io.EOF at the end of the stream.
func (r *Reader) Next() (Sample, error) {
	var s Sample
	if err := r.dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return Sample{}, io.EOF
		}
		return Sample{}, fmt.Errorf("telemetry: read: %w", err)
	}
	return s, nil
}
