// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package ina237 controls a Texas Instruments INA237 current, voltage and
// power monitor over a shared I²C bus.
//
// The configuration registers are built from ConfigurationRegisterValues;
// encoding and decoding of every bitfield live in registers.go.
//
// # Datasheet
//
// https://www.ti.com/lit/ds/symlink/ina237.pdf
package ina237
