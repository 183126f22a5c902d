// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package nau7802 controls a Nuvoton NAU7802 24 bit ADC for bridge sensors
// (load cells, strain gauges) over a shared I²C bus.
//
// Power up and calibration are polled with a bounded number of attempts. The
// bus lease is released between polls, so other devices on the bus are not
// starved while the ADC powers up or calibrates.
//
// # Datasheet
//
// https://www.nuvoton.com/resource-files/NAU7802%20Data%20Sheet%20V1.7.pdf
package nau7802
