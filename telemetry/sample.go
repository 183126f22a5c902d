// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package telemetry

import (
	"fmt"
	"time"
)

// Sample is one reading of every sensor on the board. Fields of a sensor
// that failed during the tick are left zero and the sensor is named in
// Faults.
type Sample struct {
	Time    time.Time `cbor:"1,keyasint"`
	BoardID string    `cbor:"2,keyasint,omitempty"`

	// Power monitor.
	BusMilliVolts    int32 `cbor:"3,keyasint"`
	ShuntMicroVolts  int32 `cbor:"4,keyasint"`
	CurrentMicroAmps int32 `cbor:"5,keyasint"`
	DieMilliCelsius  int32 `cbor:"6,keyasint"`

	// Ambient sensor.
	AmbientMilliCelsius  int32 `cbor:"7,keyasint"`
	HumidityMilliPercent int32 `cbor:"8,keyasint"`

	// Load cell ADC. LoadReady is false when no new conversion was
	// available; LoadCounts then holds zero.
	LoadCounts int32 `cbor:"9,keyasint"`
	LoadReady  bool  `cbor:"10,keyasint"`

	Faults []string `cbor:"11,keyasint,omitempty"`
}

// Fault records that the named sensor failed during this tick.
func (s *Sample) Fault(sensor string, err error) {
	s.Faults = append(s.Faults, fmt.Sprintf("%s: %v", sensor, err))
}

// OK reports whether every sensor was read.
func (s *Sample) OK() bool {
	return len(s.Faults) == 0
}
