// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package sht4x reads a Sensirion SHT40/41/45 humidity and temperature
// sensor sharing an arbitrated I²C bus.
//
// The part is command driven: a command is written, the part measures for a
// few milliseconds, then six bytes (two CRC protected words) are read. The
// write and the read are separate transactions; the bus is free for other
// devices while the part measures.
//
// # Datasheet
//
// https://sensirion.com/media/documents/33FD6951/67EB9032/HT_DS_Datasheet_SHT4x_5.pdf
package sht4x

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/physic"

	"github.com/loadcell/sensorboard/i2carb"
	"github.com/loadcell/sensorboard/regdev"
)

// DefaultAddress is the address of the SHT40-AD1B.
const DefaultAddress uint16 = 0x44

// Precision selects measurement repeatability. Higher precision takes
// longer.
type Precision int

const (
	High Precision = iota
	Medium
	Low
)

const (
	cmdMeasureHigh      byte = 0xfd
	cmdMeasureMedium    byte = 0xf6
	cmdMeasureLow       byte = 0xe0
	cmdReadSerialNumber byte = 0x89
	cmdSoftReset        byte = 0x94

	countDivisor = float64(65535)

	minTemperature = -40*physic.Kelvin + physic.ZeroCelsius
	maxTemperature = 125*physic.Kelvin + physic.ZeroCelsius

	minRH = 0 * physic.PercentRH
	maxRH = 100 * physic.PercentRH
)

// command and the time the part needs before its answer can be read.
func (p Precision) command() (byte, time.Duration, error) {
	switch p {
	case High:
		return cmdMeasureHigh, 10 * time.Millisecond, nil
	case Medium:
		return cmdMeasureMedium, 5 * time.Millisecond, nil
	case Low:
		return cmdMeasureLow, 2 * time.Millisecond, nil
	}
	return 0, 0, fmt.Errorf("sht4x: invalid precision %d", p)
}

// ErrCRC is returned when a word read from the sensor fails its checksum.
var ErrCRC = errors.New("sht4x: crc mismatch")

// Dev is a handle to an SHT4x sensor.
type Dev struct {
	d *regdev.Dev
	// Sleep is the delay provider used while the part measures.
	Sleep func(time.Duration)
}

// New returns a driver for the sensor at addr behind arb.
func New(arb *i2carb.Arbiter, addr uint16) (*Dev, error) {
	d, err := regdev.New(arb, addr)
	if err != nil {
		return nil, fmt.Errorf("sht4x: %w", err)
	}
	return &Dev{d: d, Sleep: time.Sleep}, nil
}

// exchange writes cmd, waits delay without holding the bus, then reads the
// two checked words of the answer.
func (dev *Dev) exchange(cmd byte, delay time.Duration) (uint16, uint16, error) {
	if err := dev.d.Command([]byte{cmd}); err != nil {
		return 0, 0, err
	}
	dev.Sleep(delay)
	r, err := dev.d.Read(6)
	if err != nil {
		return 0, 0, err
	}
	if CRC8(r[:2]) != r[2] {
		return 0, 0, fmt.Errorf("%w in first word", ErrCRC)
	}
	if CRC8(r[3:5]) != r[5] {
		return 0, 0, fmt.Errorf("%w in second word", ErrCRC)
	}
	return uint16(r[0])<<8 | uint16(r[1]), uint16(r[3])<<8 | uint16(r[4]), nil
}

// Measure reads temperature and humidity at the given precision.
func (dev *Dev) Measure(p Precision, e *physic.Env) error {
	cmd, delay, err := p.command()
	if err != nil {
		return err
	}
	t, rh, err := dev.exchange(cmd, delay)
	if err != nil {
		return err
	}
	e.Temperature = countToTemp(t)
	e.Humidity = countToHumidity(rh)
	e.Pressure = 0
	return nil
}

// Sense reads at high precision. Implements physic.SenseEnv.
func (dev *Dev) Sense(e *physic.Env) error {
	return dev.Measure(High, e)
}

// SenseContinuous is not supported: sampling is driven by the caller so the
// shared bus stays single threaded.
func (dev *Dev) SenseContinuous(time.Duration) (<-chan physic.Env, error) {
	return nil, errors.New("sht4x: continuous sensing not supported")
}

// Precision implements physic.SenseEnv.
func (dev *Dev) Precision(e *physic.Env) {
	e.Temperature = physic.Kelvin / 100
	e.Humidity = physic.PercentRH / 100
	e.Pressure = 0
}

// HeaterPower is the heater dissipation.
type HeaterPower int

const (
	Power20mW HeaterPower = iota
	Power110mW
	Power200mW
)

// HeaterDuration is how long the heater stays on before the part measures.
type HeaterDuration time.Duration

const (
	Duration100ms = HeaterDuration(100 * time.Millisecond)
	Duration1s    = HeaterDuration(time.Second)
)

// heaterCommands is indexed by HeaterPower, then short or long duration.
var heaterCommands = [...][2]byte{
	Power20mW:  {0x15, 0x1e},
	Power110mW: {0x24, 0x2f},
	Power200mW: {0x32, 0x39},
}

// SetHeater runs the heater once and returns the high precision measurement
// the part takes when the pulse ends. The heater has a duty cycle limit of
// 10%; the caller paces successive pulses.
func (dev *Dev) SetHeater(p HeaterPower, d HeaterDuration) (physic.Env, error) {
	if p < Power20mW || p > Power200mW {
		return physic.Env{}, fmt.Errorf("sht4x: invalid heater power %d", p)
	}
	var idx int
	switch d {
	case Duration100ms:
	case Duration1s:
		idx = 1
	default:
		return physic.Env{}, fmt.Errorf("sht4x: invalid heater duration %s", time.Duration(d))
	}
	t, rh, err := dev.exchange(heaterCommands[p][idx], time.Duration(d)+10*time.Millisecond)
	if err != nil {
		return physic.Env{}, err
	}
	return physic.Env{Temperature: countToTemp(t), Humidity: countToHumidity(rh)}, nil
}

// SerialNumber returns the serial number set at the factory.
func (dev *Dev) SerialNumber() (uint32, error) {
	hi, lo, err := dev.exchange(cmdReadSerialNumber, 10*time.Millisecond)
	if err != nil {
		return 0, err
	}
	return uint32(hi)<<16 | uint32(lo), nil
}

// Reset issues a soft reset.
func (dev *Dev) Reset() error {
	if err := dev.d.Command([]byte{cmdSoftReset}); err != nil {
		return err
	}
	dev.Sleep(time.Millisecond)
	return nil
}

// Halt implements conn.Resource. The part idles between commands.
func (dev *Dev) Halt() error {
	return nil
}

func (dev *Dev) String() string {
	return fmt.Sprintf("sht4x(0x%02x)", dev.d.Addr())
}

// T = -45 + 175 * count / 65535
func countToTemp(count uint16) physic.Temperature {
	val := physic.Temperature(float64(physic.Kelvin)*(-45.0+175.0*(float64(count)/countDivisor))) + physic.ZeroCelsius
	return min(max(val, minTemperature), maxTemperature)
}

// RH = -6 + 125 * count / 65535, clamped to 0-100%
func countToHumidity(count uint16) physic.RelativeHumidity {
	val := physic.RelativeHumidity((-6.0 + 125.0*(float64(count)/countDivisor)) * float64(physic.PercentRH))
	return min(max(val, minRH), maxRH)
}

var _ conn.Resource = &Dev{}
var _ physic.SenseEnv = &Dev{}
