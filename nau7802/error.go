// Copyright 2026 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package nau7802

import (
	"errors"
	"fmt"
)

// ErrDataNotReady is returned by ReadADC when no new conversion is
// available. Poll again later.
var ErrDataNotReady = errors.New("nau7802: conversion not ready")

// ErrOutOfRange is returned when a calibration value does not fit its
// registers.
var ErrOutOfRange = errors.New("nau7802: value out of range")

// PowerUpTimeoutError is returned by Initialize when the power up ready bit
// never set. Status is the last PU_CTRL value read.
type PowerUpTimeoutError struct {
	Attempts int
	Status   byte
}

func (e *PowerUpTimeoutError) Error() string {
	return fmt.Sprintf("nau7802: not powered up after %d polls (PU_CTRL=0x%02x)", e.Attempts, e.Status)
}

// CalibrationTimeoutError is returned when a calibration is still running
// after the poll budget. Status is the last CTRL2 value read.
type CalibrationTimeoutError struct {
	Attempts int
	Status   byte
}

func (e *CalibrationTimeoutError) Error() string {
	return fmt.Sprintf("nau7802: calibration still running after %d polls (CTRL2=0x%02x)", e.Attempts, e.Status)
}

// CalibrationError is returned when the device reports a failed calibration.
type CalibrationError struct {
	Status byte
}

func (e *CalibrationError) Error() string {
	return fmt.Sprintf("nau7802: calibration failed (CTRL2=0x%02x)", e.Status)
}
