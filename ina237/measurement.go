// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package ina237

import (
	"fmt"

	"periph.io/x/conn/v3/physic"
)

// Measurement is one snapshot of the four measurement registers.
type Measurement struct {
	// Raw two's complement register values.
	RawBusVoltage   int16
	RawShuntVoltage int16
	RawCurrent      int16
	RawTemperature  int16

	BusVoltage   physic.ElectricPotential
	ShuntVoltage physic.ElectricPotential
	Current      physic.ElectricCurrent
	Temperature  physic.Temperature
}

func (m *Measurement) scale(r ADCRange, currentLSB physic.ElectricCurrent) {
	m.BusVoltage = physic.ElectricPotential(m.RawBusVoltage) * busVoltageLSB
	if r == RangeLow {
		m.ShuntVoltage = physic.ElectricPotential(m.RawShuntVoltage) * shuntVoltageLSBLow
	} else {
		m.ShuntVoltage = physic.ElectricPotential(m.RawShuntVoltage) * shuntVoltageLSBHigh
	}
	m.Current = physic.ElectricCurrent(m.RawCurrent) * currentLSB
	m.Temperature = physic.ZeroCelsius + physic.Temperature(m.RawTemperature)*dieTemperaturePerRaw
}

// The integer unit helpers round to the nearest unit, halves away from zero.

// BusMilliVolts returns the bus voltage in mV.
func (m Measurement) BusMilliVolts() int32 {
	return roundDiv(int64(m.BusVoltage), int64(physic.MilliVolt))
}

// ShuntMicroVolts returns the shunt voltage in µV.
func (m Measurement) ShuntMicroVolts() int32 {
	return roundDiv(int64(m.ShuntVoltage), int64(physic.MicroVolt))
}

// CurrentMicroAmps returns the current in µA.
func (m Measurement) CurrentMicroAmps() int32 {
	return roundDiv(int64(m.Current), int64(physic.MicroAmpere))
}

// TemperatureMilliCelsius returns the die temperature in m°C.
func (m Measurement) TemperatureMilliCelsius() int32 {
	return roundDiv(int64(m.Temperature-physic.ZeroCelsius), int64(physic.MilliKelvin))
}

func roundDiv(v, unit int64) int32 {
	if v < 0 {
		return int32((v - unit/2) / unit)
	}
	return int32((v + unit/2) / unit)
}

func (m Measurement) String() string {
	return fmt.Sprintf("%s %s %s %s", m.BusVoltage, m.ShuntVoltage, m.Current, m.Temperature)
}
