// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package sensorboard is a container for the drivers of a load cell board:
// a NAU7802 24 bit ADC, an INA237 power monitor and an SHT4x ambient sensor,
// all sharing one I²C bus through the i2carb arbiter.
//
// Drivers talk to their parts through regdev, which scopes every register
// access to a single bus lease. The sensorboard command brings the board up
// and streams telemetry samples.
package sensorboard
