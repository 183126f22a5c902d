// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package nau7802

import (
	"encoding/binary"
	"fmt"
	"time"

	"periph.io/x/conn/v3"

	"github.com/loadcell/sensorboard/i2carb"
	"github.com/loadcell/sensorboard/regdev"
)

// DefaultAddress is the fixed bus address of the NAU7802.
const DefaultAddress uint16 = 0x2a

// Opts holds the configuration options for the device.
type Opts struct {
	// Addr defaults to DefaultAddress when zero.
	Addr uint16
	// PollInterval is the delay before each status read while waiting for
	// power up or calibration. Default is 20ms.
	PollInterval time.Duration
	// PollAttempts bounds the number of status reads. Default is 50.
	PollAttempts int
	// Sleep is the delay provider. Default is time.Sleep.
	Sleep func(time.Duration)
}

// DefaultOpts holds the default configuration options for the device.
var DefaultOpts = Opts{
	Addr:         DefaultAddress,
	PollInterval: 20 * time.Millisecond,
	PollAttempts: 50,
	Sleep:        time.Sleep,
}

// Dev is a handle to a NAU7802 24 bit ADC.
//
// The driver keeps no copy of the device state: every query reads the
// registers again.
type Dev struct {
	d    *regdev.Dev
	opts Opts
}

// New returns a driver for the NAU7802 behind arb. opts can be nil.
//
// The device is not touched; call Initialize to bring it up.
func New(arb *i2carb.Arbiter, opts *Opts) (*Dev, error) {
	o := DefaultOpts
	if opts != nil {
		o = *opts
	}
	if o.Addr == 0 {
		o.Addr = DefaultAddress
	}
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultOpts.PollInterval
	}
	if o.PollAttempts <= 0 {
		o.PollAttempts = DefaultOpts.PollAttempts
	}
	if o.Sleep == nil {
		o.Sleep = time.Sleep
	}
	d, err := regdev.New(arb, o.Addr)
	if err != nil {
		return nil, fmt.Errorf("nau7802: %w", err)
	}
	return &Dev{d: d, opts: o}, nil
}

// Initialize resets the device, waits for it to power up and starts
// conversions with the internal LDO powering the analog side.
//
// If the device never reports ready, a *PowerUpTimeoutError carrying the
// last PU_CTRL value is returned after exactly Opts.PollAttempts reads.
func (d *Dev) Initialize() error {
	if err := d.d.WriteUint8(regPUCtrl, bitRR); err != nil {
		return err
	}
	if err := d.d.WriteUint8(regPUCtrl, bitPUD); err != nil {
		return err
	}
	status, ok, err := d.poll(regPUCtrl, func(v byte) bool { return v&bitPUR != 0 })
	if err != nil {
		return err
	}
	if !ok {
		return &PowerUpTimeoutError{Attempts: d.opts.PollAttempts, Status: status}
	}
	cfg := PUCtrl{AVDDS: true, PUA: true, PUD: true}
	if err := d.d.WriteUint8(regPUCtrl, cfg.Byte()); err != nil {
		return err
	}
	cfg.CS = true
	return d.d.WriteUint8(regPUCtrl, cfg.Byte())
}

// poll sleeps then reads reg until done returns true or the attempts run
// out. The bus is only leased for each read.
func (d *Dev) poll(reg byte, done func(byte) bool) (byte, bool, error) {
	var v byte
	for i := 0; i < d.opts.PollAttempts; i++ {
		d.opts.Sleep(d.opts.PollInterval)
		var err error
		if v, err = d.d.ReadUint8(reg); err != nil {
			return v, false, err
		}
		if done(v) {
			return v, true, nil
		}
	}
	return v, false, nil
}

// IsDataReady reports whether a new conversion result is available.
func (d *Dev) IsDataReady() (bool, error) {
	p, err := d.PUCtrl()
	return p.CR, err
}

// RevisionID returns the device revision, 0x0F for current silicon.
func (d *Dev) RevisionID() (byte, error) {
	v, err := d.d.ReadUint8(regRevision)
	return v & 0x0f, err
}

// PUCtrl reads the power-up control register.
func (d *Dev) PUCtrl() (PUCtrl, error) {
	v, err := d.d.ReadUint8(regPUCtrl)
	return ParsePUCtrl(v), err
}

// Ctrl1 reads the CTRL1 register.
func (d *Dev) Ctrl1() (Ctrl1, error) {
	v, err := d.d.ReadUint8(regCtrl1)
	return ParseCtrl1(v), err
}

// Ctrl2 reads the CTRL2 register.
func (d *Dev) Ctrl2() (Ctrl2, error) {
	v, err := d.d.ReadUint8(regCtrl2)
	return ParseCtrl2(v), err
}

// EnableLDO switches AVDD to the internal LDO.
func (d *Dev) EnableLDO() error {
	p, err := d.PUCtrl()
	if err != nil {
		return err
	}
	p.AVDDS = true
	return d.d.WriteUint8(regPUCtrl, p.Byte())
}

// SetLDOVoltage selects the internal LDO output voltage.
func (d *Dev) SetLDOVoltage(v LDOVoltage) error {
	c, err := d.Ctrl1()
	if err != nil {
		return err
	}
	c.LDO = v
	return d.d.WriteUint8(regCtrl1, c.Byte())
}

// SetGain selects the PGA gain. Calibrate afterwards.
func (d *Dev) SetGain(g Gain) error {
	c, err := d.Ctrl1()
	if err != nil {
		return err
	}
	c.Gain = g
	return d.d.WriteUint8(regCtrl1, c.Byte())
}

// SetConversionRate selects the output data rate. Calibrate afterwards.
func (d *Dev) SetConversionRate(r ConversionRate) error {
	if r.SamplesPerSecond() == 0 {
		return fmt.Errorf("nau7802: invalid conversion rate %d", r)
	}
	c, err := d.Ctrl2()
	if err != nil {
		return err
	}
	c.Rate = r
	c.Calibrate = false
	c.CalError = false
	return d.d.WriteUint8(regCtrl2, c.Byte())
}

// Calibrate runs an internal offset calibration of the active channel and
// waits for it to finish.
func (d *Dev) Calibrate() error {
	return d.CalibrateMode(CalInternal)
}

// CalibrateMode runs a calibration of the given kind and waits for it to
// finish.
func (d *Dev) CalibrateMode(m CalibrationMode) error {
	c, err := d.Ctrl2()
	if err != nil {
		return err
	}
	c.CalMode = m
	c.CalError = false
	c.Calibrate = true
	if err := d.d.WriteUint8(regCtrl2, c.Byte()); err != nil {
		return err
	}
	return d.waitCalibration()
}

func (d *Dev) waitCalibration() error {
	status, ok, err := d.poll(regCtrl2, func(v byte) bool { return v&bitCALS == 0 })
	if err != nil {
		return err
	}
	if !ok {
		return &CalibrationTimeoutError{Attempts: d.opts.PollAttempts, Status: status}
	}
	if status&bitCalErr != 0 {
		return &CalibrationError{Status: status}
	}
	return nil
}

// SelectChannel makes c the active input. Calibration is channel specific,
// so switching always runs an internal calibration, whatever CALMOD was left
// at by CalibrateMode.
//
// It returns false without writing anything when c is already active, and
// true once the switch and its calibration completed.
func (d *Dev) SelectChannel(c Channel) (bool, error) {
	ctrl2, err := d.Ctrl2()
	if err != nil {
		return false, err
	}
	if ctrl2.Channel() == c {
		return false, nil
	}
	ctrl2.ChannelB = c == ChannelB
	ctrl2.CalMode = CalInternal
	ctrl2.CalError = false
	ctrl2.Calibrate = true
	if err := d.d.WriteUint8(regCtrl2, ctrl2.Byte()); err != nil {
		return false, err
	}
	if err := d.waitCalibration(); err != nil {
		return false, err
	}
	return true, nil
}

// ReadADC returns the latest conversion as a signed 24 bit value.
//
// ErrDataNotReady is returned when the conversion-ready bit is clear, rather
// than a stale result.
func (d *Dev) ReadADC() (int32, error) {
	ready, err := d.IsDataReady()
	if err != nil {
		return 0, err
	}
	if !ready {
		return 0, ErrDataNotReady
	}
	b, err := d.d.WriteThenRead(regADCOB2, 3)
	if err != nil {
		return 0, err
	}
	return decode24([3]byte{b[0], b[1], b[2]}), nil
}

// SetOffset writes the 24 bit offset calibration of channel c.
func (d *Dev) SetOffset(c Channel, offset int32) error {
	if offset < minInt24 || offset > maxInt24 {
		return fmt.Errorf("%w: offset %d does not fit 24 bits", ErrOutOfRange, offset)
	}
	b := encode24(offset)
	for i, reg := range offsetRegisters(c) {
		if err := d.d.WriteUint8(reg, b[i]); err != nil {
			return err
		}
	}
	return nil
}

// Offset reads the 24 bit offset calibration of channel c.
func (d *Dev) Offset(c Channel) (int32, error) {
	var b [3]byte
	for i, reg := range offsetRegisters(c) {
		v, err := d.d.ReadUint8(reg)
		if err != nil {
			return 0, err
		}
		b[i] = v
	}
	return decode24(b), nil
}

// SetGainCalibration writes the 32 bit gain calibration of channel c.
func (d *Dev) SetGainCalibration(c Channel, gain int32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(gain))
	for i, reg := range gainRegisters(c) {
		if err := d.d.WriteUint8(reg, b[i]); err != nil {
			return err
		}
	}
	return nil
}

// GainCalibration reads the 32 bit gain calibration of channel c.
func (d *Dev) GainCalibration(c Channel) (int32, error) {
	var b [4]byte
	for i, reg := range gainRegisters(c) {
		v, err := d.d.ReadUint8(reg)
		if err != nil {
			return 0, err
		}
		b[i] = v
	}
	return int32(binary.BigEndian.Uint32(b[:])), nil
}

// PowerDown stops conversions and powers down both domains.
func (d *Dev) PowerDown() error {
	p, err := d.PUCtrl()
	if err != nil {
		return err
	}
	p.CS = false
	p.PUA = false
	p.PUD = false
	return d.d.WriteUint8(regPUCtrl, p.Byte())
}

// Halt powers the device down. Implements conn.Resource.
func (d *Dev) Halt() error {
	return d.PowerDown()
}

func (d *Dev) String() string {
	return fmt.Sprintf("nau7802(0x%02x)", d.d.Addr())
}

var _ conn.Resource = &Dev{}
