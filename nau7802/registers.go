// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package nau7802

import "fmt"

// Register map.
const (
	regPUCtrl   byte = 0x00
	regCtrl1    byte = 0x01
	regCtrl2    byte = 0x02
	regOCal1B2  byte = 0x03
	regOCal1B1  byte = 0x04
	regOCal1B0  byte = 0x05
	regGCal1B3  byte = 0x06
	regGCal1B2  byte = 0x07
	regGCal1B1  byte = 0x08
	regGCal1B0  byte = 0x09
	regOCal2B2  byte = 0x0a
	regOCal2B1  byte = 0x0b
	regOCal2B0  byte = 0x0c
	regGCal2B3  byte = 0x0d
	regGCal2B2  byte = 0x0e
	regGCal2B1  byte = 0x0f
	regGCal2B0  byte = 0x10
	regI2CCtrl  byte = 0x11
	regADCOB2   byte = 0x12
	regADCOB1   byte = 0x13
	regADCOB0   byte = 0x14
	regOTPB1    byte = 0x15
	regOTPB0    byte = 0x16
	regRevision byte = 0x1f
)

// PU_CTRL bits.
const (
	bitRR    byte = 1 << 0 // register reset
	bitPUD   byte = 1 << 1 // power up digital
	bitPUA   byte = 1 << 2 // power up analog
	bitPUR   byte = 1 << 3 // power up ready, read only
	bitCS    byte = 1 << 4 // cycle start
	bitCR    byte = 1 << 5 // cycle ready, read only
	bitOSCS  byte = 1 << 6 // external crystal
	bitAVDDS byte = 1 << 7 // internal LDO
)

// CTRL1 fields.
const (
	ctrl1GainMask  byte = 0x07
	ctrl1LDOShift       = 3
	ctrl1LDOMask   byte = 0x07 << ctrl1LDOShift
	bitDRDYSel     byte = 1 << 6
	bitCRP         byte = 1 << 7
)

// CTRL2 fields.
const (
	ctrl2CalModMask byte = 0x03
	bitCALS         byte = 1 << 2
	bitCalErr       byte = 1 << 3
	ctrl2CRSShift        = 4
	ctrl2CRSMask    byte = 0x07 << ctrl2CRSShift
	bitCHS          byte = 1 << 7
)

// PUCtrl is the power-up control register.
type PUCtrl struct {
	AVDDS bool // AVDD sourced from the internal LDO
	OSCS  bool // external crystal clock
	CR    bool // conversion ready, read only
	CS    bool // cycle start
	PUR   bool // power up ready, read only
	PUA   bool // analog power up
	PUD   bool // digital power up
	RR    bool // register reset
}

// ParsePUCtrl decodes a PU_CTRL register value.
func ParsePUCtrl(v byte) PUCtrl {
	return PUCtrl{
		AVDDS: v&bitAVDDS != 0,
		OSCS:  v&bitOSCS != 0,
		CR:    v&bitCR != 0,
		CS:    v&bitCS != 0,
		PUR:   v&bitPUR != 0,
		PUA:   v&bitPUA != 0,
		PUD:   v&bitPUD != 0,
		RR:    v&bitRR != 0,
	}
}

// Byte encodes the register value.
func (p PUCtrl) Byte() byte {
	var v byte
	v |= flag(p.AVDDS, bitAVDDS)
	v |= flag(p.OSCS, bitOSCS)
	v |= flag(p.CR, bitCR)
	v |= flag(p.CS, bitCS)
	v |= flag(p.PUR, bitPUR)
	v |= flag(p.PUA, bitPUA)
	v |= flag(p.PUD, bitPUD)
	v |= flag(p.RR, bitRR)
	return v
}

// LDOVoltage selects the internal LDO output.
type LDOVoltage byte

const (
	LDO4V5 LDOVoltage = iota
	LDO4V2
	LDO3V9
	LDO3V6
	LDO3V3
	LDO3V0
	LDO2V7
	LDO2V4
)

// Millivolts returns the nominal LDO output.
func (l LDOVoltage) Millivolts() int {
	return 4500 - 300*int(l&0x07)
}

func (l LDOVoltage) String() string {
	mv := l.Millivolts()
	return fmt.Sprintf("%d.%dV", mv/1000, mv%1000/100)
}

// Gain is the PGA gain.
type Gain byte

const (
	Gain1 Gain = iota
	Gain2
	Gain4
	Gain8
	Gain16
	Gain32
	Gain64
	Gain128
)

// Factor returns the multiplication factor, 1 to 128.
func (g Gain) Factor() int {
	return 1 << (g & 0x07)
}

func (g Gain) String() string {
	return fmt.Sprintf("x%d", g.Factor())
}

// Ctrl1 is the CTRL1 register.
type Ctrl1 struct {
	// CRP makes the conversion-ready pin active low.
	CRP bool
	// DRDYSel outputs the conversion clock on DRDY instead of ready.
	DRDYSel bool
	LDO     LDOVoltage
	Gain    Gain
}

// ParseCtrl1 decodes a CTRL1 register value.
func ParseCtrl1(v byte) Ctrl1 {
	return Ctrl1{
		CRP:     v&bitCRP != 0,
		DRDYSel: v&bitDRDYSel != 0,
		LDO:     LDOVoltage((v & ctrl1LDOMask) >> ctrl1LDOShift),
		Gain:    Gain(v & ctrl1GainMask),
	}
}

// Byte encodes the register value.
func (c Ctrl1) Byte() byte {
	return flag(c.CRP, bitCRP) |
		flag(c.DRDYSel, bitDRDYSel) |
		(byte(c.LDO)<<ctrl1LDOShift)&ctrl1LDOMask |
		byte(c.Gain)&ctrl1GainMask
}

// ConversionRate is the output data rate.
type ConversionRate byte

const (
	Rate10SPS  ConversionRate = 0
	Rate20SPS  ConversionRate = 1
	Rate40SPS  ConversionRate = 2
	Rate80SPS  ConversionRate = 3
	Rate320SPS ConversionRate = 7
)

// SamplesPerSecond returns the nominal rate, or 0 for a reserved code.
func (r ConversionRate) SamplesPerSecond() int {
	switch r {
	case Rate10SPS:
		return 10
	case Rate20SPS:
		return 20
	case Rate40SPS:
		return 40
	case Rate80SPS:
		return 80
	case Rate320SPS:
		return 320
	}
	return 0
}

func (r ConversionRate) String() string {
	return fmt.Sprintf("%dSPS", r.SamplesPerSecond())
}

// CalibrationMode selects what CALS calibrates.
type CalibrationMode byte

const (
	CalInternal CalibrationMode = 0
	CalOffset   CalibrationMode = 2
	CalGain     CalibrationMode = 3
)

// Channel is one of the two differential inputs.
type Channel byte

const (
	ChannelA Channel = iota
	ChannelB
)

func (c Channel) String() string {
	if c == ChannelB {
		return "B"
	}
	return "A"
}

// Ctrl2 is the CTRL2 register.
type Ctrl2 struct {
	// ChannelB selects input channel 2.
	ChannelB bool
	Rate     ConversionRate
	// CalError is set by the device when the last calibration failed.
	CalError bool
	// Calibrate requests a calibration; it reads back set while one runs.
	Calibrate bool
	CalMode   CalibrationMode
}

// ParseCtrl2 decodes a CTRL2 register value.
func ParseCtrl2(v byte) Ctrl2 {
	return Ctrl2{
		ChannelB:  v&bitCHS != 0,
		Rate:      ConversionRate((v & ctrl2CRSMask) >> ctrl2CRSShift),
		CalError:  v&bitCalErr != 0,
		Calibrate: v&bitCALS != 0,
		CalMode:   CalibrationMode(v & ctrl2CalModMask),
	}
}

// Byte encodes the register value.
func (c Ctrl2) Byte() byte {
	return flag(c.ChannelB, bitCHS) |
		(byte(c.Rate)<<ctrl2CRSShift)&ctrl2CRSMask |
		flag(c.CalError, bitCalErr) |
		flag(c.Calibrate, bitCALS) |
		byte(c.CalMode)&ctrl2CalModMask
}

// Channel returns the selected input.
func (c Ctrl2) Channel() Channel {
	if c.ChannelB {
		return ChannelB
	}
	return ChannelA
}

func flag(b bool, bit byte) byte {
	if b {
		return bit
	}
	return 0
}

// offsetRegisters and gainRegisters are in address order, most significant
// byte first.
func offsetRegisters(c Channel) [3]byte {
	if c == ChannelB {
		return [3]byte{regOCal2B2, regOCal2B1, regOCal2B0}
	}
	return [3]byte{regOCal1B2, regOCal1B1, regOCal1B0}
}

func gainRegisters(c Channel) [4]byte {
	if c == ChannelB {
		return [4]byte{regGCal2B3, regGCal2B2, regGCal2B1, regGCal2B0}
	}
	return [4]byte{regGCal1B3, regGCal1B2, regGCal1B1, regGCal1B0}
}

// decode24 sign extends a big endian 24 bit two's complement value. The
// bytes are left aligned in a 32 bit word and shifted back arithmetically.
func decode24(b [3]byte) int32 {
	return int32(uint32(b[0])<<24|uint32(b[1])<<16|uint32(b[2])<<8) >> 8
}

// encode24 returns the low 24 bits of v, big endian.
func encode24(v int32) [3]byte {
	return [3]byte{byte(v >> 16), byte(v >> 8), byte(v)}
}

const (
	minInt24 = -1 << 23
	maxInt24 = 1<<23 - 1
)
