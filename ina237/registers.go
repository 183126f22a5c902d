// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ina237

import (
	"errors"
	"fmt"
	"time"
)

// Register map.
const (
	regConfig         byte = 0x00
	regADCConfig      byte = 0x01
	regShuntCal       byte = 0x02
	regVShunt         byte = 0x04
	regVBus           byte = 0x05
	regDieTemp        byte = 0x06
	regCurrent        byte = 0x07
	regPower          byte = 0x08
	regDiagAlert      byte = 0x0b
	regSOVL           byte = 0x0c
	regSUVL           byte = 0x0d
	regBOVL           byte = 0x0e
	regBUVL           byte = 0x0f
	regTempLimit      byte = 0x10
	regPowerLimit     byte = 0x11
	regManufacturerID byte = 0x3e
)

// CONFIG layout: reset[15] | conversion_delay[9:6] | adc_range[4].
const (
	cfgResetBit    = 15
	cfgDelayShift  = 6
	cfgDelayMask   = 0x0f
	cfgRangeShift  = 4
	cfgRangeMask   = 0x01
	configUsedBits = 1<<cfgResetBit | cfgDelayMask<<cfgDelayShift | cfgRangeMask<<cfgRangeShift
)

// ADC_CONFIG layout: mode[15:12] | bus[11:9] | shunt[8:6] | temp[5:3] | avg[2:0].
const (
	adcModeShift  = 12
	adcModeMask   = 0x0f
	adcBusShift   = 9
	adcShuntShift = 6
	adcTempShift  = 3
	adcAvgShift   = 0
	adcFieldMask  = 0x07
)

// MaxConversionDelay is the largest delay the CONFIG register can hold.
const MaxConversionDelay = cfgDelayMask * 2 * time.Millisecond

// ADCRange selects the shunt full scale range.
type ADCRange uint8

const (
	// RangeHigh is ±163.84 mV, 5 µV per bit.
	RangeHigh ADCRange = 0
	// RangeLow is ±40.96 mV, 1.25 µV per bit.
	RangeLow ADCRange = 1
)

func (r ADCRange) String() string {
	if r == RangeLow {
		return "±40.96mV"
	}
	return "±163.84mV"
}

// Mode is the operating mode: shutdown, triggered or continuous conversion
// of a combination of bus voltage, shunt voltage and temperature.
type Mode uint8

const (
	ModeShutdown Mode = iota
	ModeTriggeredBus
	ModeTriggeredShunt
	ModeTriggeredShuntBus
	ModeTriggeredTemp
	ModeTriggeredTempBus
	ModeTriggeredTempShunt
	ModeTriggeredTempShuntBus
	ModeShutdown2
	ModeContinuousBus
	ModeContinuousShunt
	ModeContinuousShuntBus
	ModeContinuousTemp
	ModeContinuousTempBus
	ModeContinuousTempShunt
	ModeContinuousTempShuntBus
)

var modeNames = [...]string{
	"shutdown",
	"triggered bus",
	"triggered shunt",
	"triggered shunt+bus",
	"triggered temp",
	"triggered temp+bus",
	"triggered temp+shunt",
	"triggered temp+shunt+bus",
	"shutdown",
	"continuous bus",
	"continuous shunt",
	"continuous shunt+bus",
	"continuous temp",
	"continuous temp+bus",
	"continuous temp+shunt",
	"continuous temp+shunt+bus",
}

func (m Mode) String() string {
	if int(m) < len(modeNames) {
		return modeNames[m]
	}
	return fmt.Sprintf("Mode(%d)", uint8(m))
}

// ConversionTime is the duration of one ADC conversion.
type ConversionTime uint8

const (
	Conversion50us ConversionTime = iota
	Conversion84us
	Conversion150us
	Conversion280us
	Conversion540us
	Conversion1052us
	Conversion2074us
	Conversion4120us
)

var conversionTimes = [...]time.Duration{
	50 * time.Microsecond,
	84 * time.Microsecond,
	150 * time.Microsecond,
	280 * time.Microsecond,
	540 * time.Microsecond,
	1052 * time.Microsecond,
	2074 * time.Microsecond,
	4120 * time.Microsecond,
}

// Duration returns the conversion time.
func (c ConversionTime) Duration() time.Duration {
	return conversionTimes[c&adcFieldMask]
}

func (c ConversionTime) String() string {
	return c.Duration().String()
}

// Averaging is the number of conversions averaged per result.
type Averaging uint8

const (
	Avg1 Averaging = iota
	Avg4
	Avg16
	Avg64
	Avg128
	Avg256
	Avg512
	Avg1024
)

var averagingSamples = [...]int{1, 4, 16, 64, 128, 256, 512, 1024}

// Samples returns the averaging count.
func (a Averaging) Samples() int {
	return averagingSamples[a&adcFieldMask]
}

func (a Averaging) String() string {
	return fmt.Sprintf("%dx", a.Samples())
}

// ConfigurationRegisterValues holds every field of the CONFIG and
// ADC_CONFIG registers.
type ConfigurationRegisterValues struct {
	// Reset forces a device reset. All registers, SHUNT_CAL included,
	// return to their defaults.
	Reset bool
	// ConversionDelay is the initial delay in 2ms steps.
	ConversionDelay uint8
	ADCRange        ADCRange

	Mode                      Mode
	BusConversionTime         ConversionTime
	ShuntConversionTime       ConversionTime
	TemperatureConversionTime ConversionTime
	Averaging                 Averaging
}

// DefaultConfigurationRegisterValues returns the power-on configuration:
// continuous conversion of all channels, 1052µs conversions, no averaging.
func DefaultConfigurationRegisterValues() ConfigurationRegisterValues {
	return ConfigurationRegisterValues{
		ADCRange:                  RangeHigh,
		Mode:                      ModeContinuousTempShuntBus,
		BusConversionTime:         Conversion1052us,
		ShuntConversionTime:       Conversion1052us,
		TemperatureConversionTime: Conversion1052us,
		Averaging:                 Avg1,
	}
}

// ErrInvalidConfiguration is returned by Validate.
var ErrInvalidConfiguration = errors.New("ina237: invalid configuration")

// Validate reports fields that do not fit their register bits.
func (v ConfigurationRegisterValues) Validate() error {
	switch {
	case v.ConversionDelay > cfgDelayMask:
		return fmt.Errorf("%w: conversion delay %d steps exceeds %d", ErrInvalidConfiguration, v.ConversionDelay, cfgDelayMask)
	case v.ADCRange > RangeLow:
		return fmt.Errorf("%w: adc range %d", ErrInvalidConfiguration, v.ADCRange)
	case v.Mode > adcModeMask:
		return fmt.Errorf("%w: mode %d", ErrInvalidConfiguration, v.Mode)
	case v.BusConversionTime > adcFieldMask, v.ShuntConversionTime > adcFieldMask, v.TemperatureConversionTime > adcFieldMask:
		return fmt.Errorf("%w: conversion time", ErrInvalidConfiguration)
	case v.Averaging > adcFieldMask:
		return fmt.Errorf("%w: averaging %d", ErrInvalidConfiguration, v.Averaging)
	}
	return nil
}

// Configuration encodes the CONFIG register.
func (v ConfigurationRegisterValues) Configuration() uint16 {
	var w uint16
	if v.Reset {
		w |= 1 << cfgResetBit
	}
	w |= uint16(v.ConversionDelay&cfgDelayMask) << cfgDelayShift
	w |= uint16(v.ADCRange&cfgRangeMask) << cfgRangeShift
	return w
}

// ADCConfiguration encodes the ADC_CONFIG register.
func (v ConfigurationRegisterValues) ADCConfiguration() uint16 {
	return uint16(v.Mode&adcModeMask)<<adcModeShift |
		uint16(v.BusConversionTime&adcFieldMask)<<adcBusShift |
		uint16(v.ShuntConversionTime&adcFieldMask)<<adcShuntShift |
		uint16(v.TemperatureConversionTime&adcFieldMask)<<adcTempShift |
		uint16(v.Averaging&adcFieldMask)<<adcAvgShift
}

// ConversionDelayDuration returns the conversion delay as a duration.
func (v ConfigurationRegisterValues) ConversionDelayDuration() time.Duration {
	return time.Duration(v.ConversionDelay) * 2 * time.Millisecond
}

// ParseConfigurationRegisterValues decodes the CONFIG and ADC_CONFIG
// registers. Bits outside the documented fields are ignored.
func ParseConfigurationRegisterValues(config, adcConfig uint16) ConfigurationRegisterValues {
	return ConfigurationRegisterValues{
		Reset:           config&(1<<cfgResetBit) != 0,
		ConversionDelay: uint8(config>>cfgDelayShift) & cfgDelayMask,
		ADCRange:        ADCRange(config>>cfgRangeShift) & cfgRangeMask,

		Mode:                      Mode(adcConfig>>adcModeShift) & adcModeMask,
		BusConversionTime:         ConversionTime(adcConfig>>adcBusShift) & adcFieldMask,
		ShuntConversionTime:       ConversionTime(adcConfig>>adcShuntShift) & adcFieldMask,
		TemperatureConversionTime: ConversionTime(adcConfig>>adcTempShift) & adcFieldMask,
		Averaging:                 Averaging(adcConfig>>adcAvgShift) & adcFieldMask,
	}
}

// ConversionDelaySteps converts d to register steps, rounding down to 2ms.
func ConversionDelaySteps(d time.Duration) (uint8, error) {
	if d < 0 || d > MaxConversionDelay {
		return 0, fmt.Errorf("%w: conversion delay %s outside 0-%s", ErrInvalidConfiguration, d, MaxConversionDelay)
	}
	return uint8(d / (2 * time.Millisecond)), nil
}
