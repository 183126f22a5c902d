// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ina237

import (
	"errors"
	"fmt"
	"math"

	"periph.io/x/conn/v3"
	"periph.io/x/conn/v3/physic"

	"github.com/loadcell/sensorboard/i2carb"
	"github.com/loadcell/sensorboard/regdev"
)

const (
	// DefaultAddress is the address with A0 and A1 tied to GND.
	DefaultAddress uint16 = 0x40
	// ManufacturerTI is the MANUFACTURER_ID value, "TI" in ASCII.
	ManufacturerTI uint16 = 0x5449
	// DefaultCurrentLSB is used when Config.CurrentLSB is zero.
	DefaultCurrentLSB = physic.MicroAmpere

	maxShuntCal = 0x7fff
)

// Fixed register scale factors.
const (
	busVoltageLSB        = 3125 * physic.MicroVolt
	shuntVoltageLSBHigh  = 5 * physic.MicroVolt
	shuntVoltageLSBLow   = 1250 * physic.NanoVolt
	dieTemperaturePerRaw = 7812500 * physic.NanoKelvin // 125m°C per bit of [15:4]
)

// Config is the fixed configuration of one INA237.
type Config struct {
	// Addr defaults to DefaultAddress when zero.
	Addr uint16
	// ShuntCal is written to SHUNT_CAL by Initialize. See ShuntCalFor.
	ShuntCal uint16
	// CurrentLSB is the current represented by one bit of the CURRENT
	// register. It must match ShuntCal.
	CurrentLSB physic.ElectricCurrent
}

// Dev is a handle to an INA237 current, voltage and power monitor.
type Dev struct {
	d   *regdev.Dev
	cfg Config
	// rng is the shunt range last written by Initialize.
	rng ADCRange
}

// New returns a driver for the INA237 behind arb. The device is not touched;
// call Initialize.
func New(arb *i2carb.Arbiter, cfg Config) (*Dev, error) {
	if cfg.Addr == 0 {
		cfg.Addr = DefaultAddress
	}
	if cfg.CurrentLSB == 0 {
		cfg.CurrentLSB = DefaultCurrentLSB
	}
	if cfg.CurrentLSB < 0 {
		return nil, errors.New("ina237: negative current LSB")
	}
	if cfg.ShuntCal > maxShuntCal {
		return nil, fmt.Errorf("ina237: shunt calibration 0x%x exceeds 15 bits", cfg.ShuntCal)
	}
	d, err := regdev.New(arb, cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("ina237: %w", err)
	}
	return &Dev{d: d, cfg: cfg}, nil
}

// Initialize writes SHUNT_CAL, CONFIG and ADC_CONFIG, in that order.
//
// Setting v.Reset resets every register, SHUNT_CAL included; use Reset for
// that instead.
func (d *Dev) Initialize(v ConfigurationRegisterValues) error {
	if err := v.Validate(); err != nil {
		return err
	}
	if err := d.d.WriteUint16(regShuntCal, d.cfg.ShuntCal); err != nil {
		return err
	}
	if err := d.d.WriteUint16(regConfig, v.Configuration()); err != nil {
		return err
	}
	if err := d.d.WriteUint16(regADCConfig, v.ADCConfiguration()); err != nil {
		return err
	}
	d.rng = v.ADCRange
	return nil
}

// Reset returns every register to its power-on default.
func (d *Dev) Reset() error {
	v := ConfigurationRegisterValues{Reset: true}
	if err := d.d.WriteUint16(regConfig, v.Configuration()); err != nil {
		return err
	}
	d.rng = RangeHigh
	return nil
}

// Read returns one snapshot of bus voltage, shunt voltage, current and die
// temperature.
func (d *Dev) Read() (Measurement, error) {
	var m Measurement
	var err error
	if m.RawBusVoltage, err = d.d.ReadInt16(regVBus); err != nil {
		return Measurement{}, err
	}
	if m.RawShuntVoltage, err = d.d.ReadInt16(regVShunt); err != nil {
		return Measurement{}, err
	}
	if m.RawCurrent, err = d.d.ReadInt16(regCurrent); err != nil {
		return Measurement{}, err
	}
	if m.RawTemperature, err = d.d.ReadInt16(regDieTemp); err != nil {
		return Measurement{}, err
	}
	m.scale(d.rng, d.cfg.CurrentLSB)
	return m, nil
}

// Power reads the POWER register.
func (d *Dev) Power() (physic.Power, error) {
	raw, err := d.d.ReadUint24(regPower)
	if err != nil {
		return 0, err
	}
	return powerFromRaw(raw, d.cfg.CurrentLSB), nil
}

// powerFromRaw applies Power = 0.2 × CURRENT_LSB × POWER.
func powerFromRaw(raw uint32, lsb physic.ElectricCurrent) physic.Power {
	return physic.Power(int64(raw) * int64(lsb) / 5)
}

// ManufacturerID reads MANUFACTURER_ID, ManufacturerTI on genuine parts.
func (d *Dev) ManufacturerID() (uint16, error) {
	return d.d.ReadUint16(regManufacturerID)
}

// Configuration reads back the CONFIG register.
func (d *Dev) Configuration() (uint16, error) {
	return d.d.ReadUint16(regConfig)
}

// ADCConfiguration reads back the ADC_CONFIG register.
func (d *Dev) ADCConfiguration() (uint16, error) {
	return d.d.ReadUint16(regADCConfig)
}

// ShuntCal reads back the SHUNT_CAL register.
func (d *Dev) ShuntCal() (uint16, error) {
	return d.d.ReadUint16(regShuntCal)
}

// DiagAlert reads the DIAG_ALRT register.
func (d *Dev) DiagAlert() (uint16, error) {
	return d.d.ReadUint16(regDiagAlert)
}

// Halt puts the converter in shutdown mode, keeping the other ADC_CONFIG
// fields. Implements conn.Resource.
func (d *Dev) Halt() error {
	adc, err := d.ADCConfiguration()
	if err != nil {
		return err
	}
	v := ParseConfigurationRegisterValues(0, adc)
	v.Mode = ModeShutdown
	return d.d.WriteUint16(regADCConfig, v.ADCConfiguration())
}

func (d *Dev) String() string {
	return fmt.Sprintf("ina237(0x%02x)", d.d.Addr())
}

// ShuntCalFor returns the SHUNT_CAL value for the given current resolution
// and shunt resistor:
//
//	SHUNT_CAL = 819.2e6 × CURRENT_LSB × R_SHUNT, ×4 in RangeLow
func ShuntCalFor(currentLSB physic.ElectricCurrent, shunt physic.ElectricResistance, r ADCRange) (uint16, error) {
	if currentLSB <= 0 || shunt <= 0 {
		return 0, errors.New("ina237: current LSB and shunt must be positive")
	}
	v := 819.2e6 * (float64(currentLSB) / float64(physic.Ampere)) * (float64(shunt) / float64(physic.Ohm))
	if r == RangeLow {
		v *= 4
	}
	v = math.Round(v)
	if v < 1 || v > maxShuntCal {
		return 0, fmt.Errorf("ina237: shunt calibration %.0f outside 1-%d", v, maxShuntCal)
	}
	return uint16(v), nil
}

var _ conn.Resource = &Dev{}
