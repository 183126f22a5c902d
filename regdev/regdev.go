// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package regdev implements register access to a device sitting behind an
// i2carb.Arbiter.
//
// Every method is one lease-scoped transaction. In particular WriteThenRead
// selects the register and reads it back under the same lease, so no other
// device on the bus can select a different register in between.
//
// Errors from the bus are returned unchanged; regdev never retries.
package regdev

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/loadcell/sensorboard/i2carb"
)

// ErrAddress is returned by New for addresses outside the 7-bit range.
var ErrAddress = errors.New("regdev: address is not 7-bit")

// Dev is a register-mapped device at a fixed bus address.
type Dev struct {
	arb  *i2carb.Arbiter
	addr uint16
}

// New returns a Dev talking to addr through arb.
func New(arb *i2carb.Arbiter, addr uint16) (*Dev, error) {
	if addr > 0x7f {
		return nil, fmt.Errorf("%w: 0x%x", ErrAddress, addr)
	}
	return &Dev{arb: arb, addr: addr}, nil
}

// Addr returns the device bus address.
func (d *Dev) Addr() uint16 {
	return d.addr
}

func (d *Dev) String() string {
	return fmt.Sprintf("regdev(0x%02x)", d.addr)
}

// WriteRegister writes data starting at register reg.
func (d *Dev) WriteRegister(reg byte, data []byte) error {
	w := make([]byte, 1+len(data))
	w[0] = reg
	copy(w[1:], data)
	return d.arb.Tx(d.addr, w, nil)
}

// WriteThenRead selects register reg and reads n bytes from it.
func (d *Dev) WriteThenRead(reg byte, n int) ([]byte, error) {
	r := make([]byte, n)
	if err := d.arb.Tx(d.addr, []byte{reg}, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Command writes w without a register index, for command driven parts.
func (d *Dev) Command(w []byte) error {
	return d.arb.Tx(d.addr, w, nil)
}

// Read reads n bytes without selecting a register first.
func (d *Dev) Read(n int) ([]byte, error) {
	r := make([]byte, n)
	if err := d.arb.Tx(d.addr, nil, r); err != nil {
		return nil, err
	}
	return r, nil
}

// ReadUint8 reads an 8 bit register.
func (d *Dev) ReadUint8(reg byte) (uint8, error) {
	b, err := d.WriteThenRead(reg, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// WriteUint8 writes an 8 bit register.
func (d *Dev) WriteUint8(reg byte, v uint8) error {
	return d.WriteRegister(reg, []byte{v})
}

// ReadUint16 reads a big endian 16 bit register.
func (d *Dev) ReadUint16(reg byte) (uint16, error) {
	b, err := d.WriteThenRead(reg, 2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// ReadInt16 reads a big endian two's complement 16 bit register.
func (d *Dev) ReadInt16(reg byte) (int16, error) {
	v, err := d.ReadUint16(reg)
	return int16(v), err
}

// WriteUint16 writes a big endian 16 bit register.
func (d *Dev) WriteUint16(reg byte, v uint16) error {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	return d.WriteRegister(reg, b[:])
}

// ReadUint24 reads a big endian 24 bit register.
func (d *Dev) ReadUint24(reg byte) (uint32, error) {
	b, err := d.WriteThenRead(reg, 3)
	if err != nil {
		return 0, err
	}
	return uint32(b[0])<<16 | uint32(b[1])<<8 | uint32(b[2]), nil
}
